// Package srs implements the structured reference string for the Sonic
// polynomial commitment scheme over BN254, along with the commit and open
// primitives defined over it.
//
// Commitments are alpha-shifted: a polynomial p bounded to degree max
// commits as g^(alpha * x^(d-max) * p(x)). The element g^alpha is
// deliberately absent from the string, so no committed polynomial can carry
// a nonzero constant coefficient. This is what forces the constant term of
// t(X, Y) to vanish.
package srs

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zksonic/sonic/poly"
)

var (
	// ErrConstantTerm reports a commitment attempt whose constant
	// coefficient is nonzero.
	ErrConstantTerm = errors.New("srs: polynomial carries a constant term")
	// ErrDegreeTooLarge reports a polynomial exceeding the degree window
	// supported by the reference string.
	ErrDegreeTooLarge = errors.New("srs: polynomial degree out of range")
)

// SRS is a structured reference string of size d.
//
// Index i of each positive table carries the i-th power of the trapdoor x;
// the negative tables carry powers of its inverse. Index 0 of the plain
// tables is the group generator.
type SRS struct {
	D int

	// GPositiveX[i] = g^(x^i), GNegativeX[i] = g^(x^-i)
	GPositiveX []bn254.G1Affine
	GNegativeX []bn254.G1Affine

	// GPositiveXAlpha[i] = g^(alpha x^(i+1)): g^alpha itself is absent.
	GPositiveXAlpha []bn254.G1Affine
	GNegativeXAlpha []bn254.G1Affine

	// HPositiveX[i] = h^(x^i), HNegativeX[i] = h^(x^-i)
	HPositiveX []bn254.G2Affine
	HNegativeX []bn254.G2Affine

	// HPositiveXAlpha[i] = h^(alpha x^i), HNegativeXAlpha[i] = h^(alpha x^-i)
	HPositiveXAlpha []bn254.G2Affine
	HNegativeXAlpha []bn254.G2Affine
}

// New creates a new SRS of size d with trapdoor values sampled from
// crypto/rand. Production parameters come from a setup ceremony; this
// constructor serves tests and local tooling.
func New(d int) (*SRS, error) {
	var x, alpha fr.Element
	if _, err := x.SetRandom(); err != nil {
		return nil, err
	}
	if _, err := alpha.SetRandom(); err != nil {
		return nil, err
	}
	return NewFixed(d, &x, &alpha), nil
}

// NewFixed creates a new SRS of size d from explicit trapdoor values.
func NewFixed(d int, x, alpha *fr.Element) *SRS {
	var xInv fr.Element
	xInv.Inverse(x)

	s := &SRS{
		D:               d,
		GPositiveX:      make([]bn254.G1Affine, d+1),
		GNegativeX:      make([]bn254.G1Affine, d+1),
		GPositiveXAlpha: make([]bn254.G1Affine, d),
		GNegativeXAlpha: make([]bn254.G1Affine, d),
		HPositiveX:      make([]bn254.G2Affine, d+1),
		HNegativeX:      make([]bn254.G2Affine, d+1),
		HPositiveXAlpha: make([]bn254.G2Affine, d+1),
		HNegativeXAlpha: make([]bn254.G2Affine, d+1),
	}

	_, _, g1, g2 := bn254.Generators()

	fillTables(d, x, alpha, &g1, &g2, s.GPositiveX, s.GPositiveXAlpha, s.HPositiveX, s.HPositiveXAlpha)
	fillTables(d, &xInv, alpha, &g1, &g2, s.GNegativeX, s.GNegativeXAlpha, s.HNegativeX, s.HNegativeXAlpha)

	return s
}

func fillTables(d int, x, alpha *fr.Element, g1 *bn254.G1Affine, g2 *bn254.G2Affine, gX, gXAlpha []bn254.G1Affine, hX, hXAlpha []bn254.G2Affine) {
	var cur, curAlpha fr.Element
	var exp big.Int
	cur.SetOne()
	for i := 0; i <= d; i++ {
		gX[i].ScalarMultiplication(g1, cur.BigInt(&exp))
		hX[i].ScalarMultiplication(g2, &exp)

		curAlpha.Mul(&cur, alpha)
		hXAlpha[i].ScalarMultiplication(g2, curAlpha.BigInt(&exp))
		if i >= 1 {
			gXAlpha[i-1].ScalarMultiplication(g1, &exp)
		}

		cur.Mul(&cur, x)
	}
}

// Commit commits to p with degree bound max, as g^(alpha x^(d-max) p(x)).
// The shifted constant coefficient must be zero: there is no g^alpha to
// pair it with.
func (s *SRS) Commit(max int, p poly.Laurent) (bn254.G1Affine, error) {
	shift := s.D - max

	points := make([]bn254.G1Affine, 0, len(p.Coeffs))
	scalars := make([]fr.Element, 0, len(p.Coeffs))
	for i := range p.Coeffs {
		if p.Coeffs[i].IsZero() {
			continue
		}

		e := shift + p.MinDeg + i
		switch {
		case e > 0:
			if e > s.D {
				return bn254.G1Affine{}, ErrDegreeTooLarge
			}
			points = append(points, s.GPositiveXAlpha[e-1])
		case e < 0:
			if -e > s.D {
				return bn254.G1Affine{}, ErrDegreeTooLarge
			}
			points = append(points, s.GNegativeXAlpha[-e-1])
		default:
			return bn254.G1Affine{}, ErrConstantTerm
		}
		scalars = append(scalars, p.Coeffs[i])
	}

	return s.multiExp(points, scalars)
}

// Open produces an opening of p at point z: the commitment g^(w(x)) to the
// quotient w = (p - p(z)) / (X - z).
func (s *SRS) Open(p poly.Laurent, z fr.Element) (bn254.G1Affine, error) {
	w := p.DivByLinear(z, p.Evaluate(z))

	points := make([]bn254.G1Affine, 0, len(w.Coeffs))
	scalars := make([]fr.Element, 0, len(w.Coeffs))
	for i := range w.Coeffs {
		if w.Coeffs[i].IsZero() {
			continue
		}

		e := w.MinDeg + i
		if e > s.D || -e > s.D {
			return bn254.G1Affine{}, ErrDegreeTooLarge
		}
		if e >= 0 {
			points = append(points, s.GPositiveX[e])
		} else {
			points = append(points, s.GNegativeX[-e])
		}
		scalars = append(scalars, w.Coeffs[i])
	}

	return s.multiExp(points, scalars)
}

func (s *SRS) multiExp(points []bn254.G1Affine, scalars []fr.Element) (bn254.G1Affine, error) {
	var res bn254.G1Affine
	if len(points) == 0 {
		return res, nil
	}
	if _, err := res.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return bn254.G1Affine{}, err
	}
	return res, nil
}
