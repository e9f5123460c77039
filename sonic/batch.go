package sonic

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zksonic/sonic/srs"
)

// claimTerm is one G1 point with its batching coefficient.
type claimTerm struct {
	point bn254.G1Affine
	coeff fr.Element
}

// Batch accumulates evaluation claims and settles them in a single pairing
// product check. Claims are grouped by the G2 element they pair against;
// each group collapses into one point via a multi-exponentiation.
//
// An opening claim p(z) = v against commitment C with coefficient r
// contributes r*(alpha*x*w - alpha*z*w + alpha*v - alpha*p) to the product
// exponent, which vanishes exactly when the opening witness w is the
// quotient (p - v)/(X - z).
type Batch struct {
	// opening witnesses, paired against h^(alpha x)
	alphaX []claimTerm
	// opening witnesses scaled by -z, paired against h^alpha
	alpha []claimTerm
	// full-degree commitments, paired against -h
	negH []claimTerm
	// degree-n bounded commitments, paired against -h^(x^(n-d))
	negXNMinusD []claimTerm

	// accumulated claimed values, committed as g^value against h^alpha
	value fr.Element
	g     bn254.G1Affine

	hAlphaX     bn254.G2Affine
	hAlpha      bn254.G2Affine
	hNeg        bn254.G2Affine
	hNegXNMinus bn254.G2Affine
}

// NewBatch creates a new empty Batch for circuits of size n.
func NewBatch(s *srs.SRS, n int) *Batch {
	b := &Batch{
		g:       s.GPositiveX[0],
		hAlphaX: s.HPositiveXAlpha[1],
		hAlpha:  s.HPositiveXAlpha[0],
	}
	b.hNeg.Neg(&s.HPositiveX[0])
	b.hNegXNMinus.Neg(&s.HNegativeX[s.D-n])
	return b
}

// AddOpening adds an opening witness p for an evaluation at point, with
// batching coefficient r.
func (b *Batch) AddOpening(p bn254.G1Affine, r fr.Element, point fr.Element) {
	b.alphaX = append(b.alphaX, claimTerm{point: p, coeff: r})

	var c fr.Element
	c.Mul(&r, &point)
	c.Neg(&c)
	b.alpha = append(b.alpha, claimTerm{point: p, coeff: c})
}

// AddOpeningValue adds a claimed evaluation value with batching
// coefficient r.
func (b *Batch) AddOpeningValue(v fr.Element, r fr.Element) {
	var tmp fr.Element
	tmp.Mul(&v, &r)
	b.value.Add(&b.value, &tmp)
}

// AddCommitment adds a full-degree commitment with batching coefficient r.
func (b *Batch) AddCommitment(c bn254.G1Affine, r fr.Element) {
	b.negH = append(b.negH, claimTerm{point: c, coeff: r})
}

// AddCommitmentMaxN adds a commitment bounded to degree n with batching
// coefficient r.
func (b *Batch) AddCommitmentMaxN(c bn254.G1Affine, r fr.Element) {
	b.negXNMinusD = append(b.negXNMinusD, claimTerm{point: c, coeff: r})
}

// CheckAll settles every accumulated claim in one pairing product check.
// An empty batch is vacuously valid.
func (b *Batch) CheckAll() bool {
	alpha := make([]claimTerm, len(b.alpha), len(b.alpha)+1)
	copy(alpha, b.alpha)
	alpha = append(alpha, claimTerm{point: b.g, coeff: b.value})

	var lhs []bn254.G1Affine
	var rhs []bn254.G2Affine
	for _, group := range []struct {
		terms []claimTerm
		h     bn254.G2Affine
	}{
		{b.alphaX, b.hAlphaX},
		{alpha, b.hAlpha},
		{b.negH, b.hNeg},
		{b.negXNMinusD, b.hNegXNMinus},
	} {
		acc, ok := collapse(group.terms)
		if !ok {
			return false
		}
		if acc.IsInfinity() {
			continue
		}
		lhs = append(lhs, acc)
		rhs = append(rhs, group.h)
	}

	if len(lhs) == 0 {
		return true
	}

	ok, err := bn254.PairingCheck(lhs, rhs)
	return err == nil && ok
}

func collapse(terms []claimTerm) (bn254.G1Affine, bool) {
	var acc bn254.G1Affine
	if len(terms) == 0 {
		return acc, true
	}

	points := make([]bn254.G1Affine, len(terms))
	scalars := make([]fr.Element, len(terms))
	for i, t := range terms {
		points[i] = t.point
		scalars[i] = t.coeff
	}

	if _, err := acc.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return bn254.G1Affine{}, false
	}
	return acc, true
}
