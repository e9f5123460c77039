// Package poly implements Laurent polynomial arithmetic over the BN254
// scalar field. Negative exponents are first-class: the wire polynomial
// r(X, Y) spans X^-2n .. X^n.
package poly

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Laurent is a polynomial with possibly negative exponents.
// Coeffs[i] is the coefficient of X^(MinDeg+i).
type Laurent struct {
	MinDeg int
	Coeffs []fr.Element
}

// NewLaurent creates a zero Laurent polynomial spanning X^minDeg .. X^maxDeg.
func NewLaurent(minDeg, maxDeg int) Laurent {
	if maxDeg < minDeg {
		panic("poly: maxDeg smaller than minDeg")
	}

	return Laurent{
		MinDeg: minDeg,
		Coeffs: make([]fr.Element, maxDeg-minDeg+1),
	}
}

// MaxDeg returns the largest exponent carried by p.
func (p Laurent) MaxDeg() int {
	return p.MinDeg + len(p.Coeffs) - 1
}

// Coeff returns the coefficient of X^d. Exponents outside the carried range
// are zero.
func (p Laurent) Coeff(d int) fr.Element {
	if d < p.MinDeg || d > p.MaxDeg() {
		return fr.Element{}
	}
	return p.Coeffs[d-p.MinDeg]
}

// SetCoeff sets the coefficient of X^d.
// Panics if d is outside the carried range.
func (p Laurent) SetCoeff(d int, c fr.Element) {
	if d < p.MinDeg || d > p.MaxDeg() {
		panic("poly: exponent out of range")
	}
	p.Coeffs[d-p.MinDeg] = c
}

// Copy returns a deep copy of p.
func (p Laurent) Copy() Laurent {
	coeffs := make([]fr.Element, len(p.Coeffs))
	copy(coeffs, p.Coeffs)
	return Laurent{MinDeg: p.MinDeg, Coeffs: coeffs}
}

// Evaluate returns p(x). When p carries negative exponents, x must be
// invertible.
func (p Laurent) Evaluate(x fr.Element) fr.Element {
	// Horner over the shifted coefficients, then multiply by x^MinDeg.
	var acc fr.Element
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		acc.Mul(&acc, &x)
		acc.Add(&acc, &p.Coeffs[i])
	}

	var shift fr.Element
	shift.Exp(x, big.NewInt(int64(p.MinDeg)))
	acc.Mul(&acc, &shift)
	return acc
}

// Add returns p + q.
func (p Laurent) Add(q Laurent) Laurent {
	pOut := NewLaurent(min(p.MinDeg, q.MinDeg), max(p.MaxDeg(), q.MaxDeg()))
	for i, c := range p.Coeffs {
		pOut.Coeffs[p.MinDeg+i-pOut.MinDeg] = c
	}
	for i := range q.Coeffs {
		j := q.MinDeg + i - pOut.MinDeg
		pOut.Coeffs[j].Add(&pOut.Coeffs[j], &q.Coeffs[i])
	}
	return pOut
}

// Mul returns p * q by direct convolution.
func (p Laurent) Mul(q Laurent) Laurent {
	pOut := NewLaurent(p.MinDeg+q.MinDeg, p.MaxDeg()+q.MaxDeg())
	var tmp fr.Element
	for i := range p.Coeffs {
		if p.Coeffs[i].IsZero() {
			continue
		}
		for j := range q.Coeffs {
			tmp.Mul(&p.Coeffs[i], &q.Coeffs[j])
			pOut.Coeffs[i+j].Add(&pOut.Coeffs[i+j], &tmp)
		}
	}
	return pOut
}

// ScalarMul returns p * c.
func (p Laurent) ScalarMul(c fr.Element) Laurent {
	pOut := NewLaurent(p.MinDeg, p.MaxDeg())
	for i := range p.Coeffs {
		pOut.Coeffs[i].Mul(&p.Coeffs[i], &c)
	}
	return pOut
}

// ScalePowers returns the polynomial whose coefficient of X^d is
// p's coefficient of X^d scaled by y^d, i.e. p(yX) expressed in X.
func (p Laurent) ScalePowers(y fr.Element) Laurent {
	pOut := NewLaurent(p.MinDeg, p.MaxDeg())

	var pow fr.Element
	pow.Exp(y, big.NewInt(int64(p.MinDeg)))
	for i := range p.Coeffs {
		pOut.Coeffs[i].Mul(&p.Coeffs[i], &pow)
		pow.Mul(&pow, &y)
	}
	return pOut
}

// DivByLinear returns the quotient (p - v) / (X - z), the opening witness
// polynomial for an evaluation claim p(z) = v. The division is exact only
// when v = p(z); callers supply v from Evaluate.
func (p Laurent) DivByLinear(z fr.Element, v fr.Element) Laurent {
	// Shift to an ordinary polynomial g with g(z) = 0, divide synthetically,
	// then shift back.
	f := p.Copy()
	if f.MinDeg > 0 || f.MaxDeg() < 0 {
		ext := NewLaurent(min(f.MinDeg, 0), max(f.MaxDeg(), 0))
		f = f.Add(ext)
	}
	c0 := f.Coeff(0)
	c0.Sub(&c0, &v)
	f.SetCoeff(0, c0)

	q := NewLaurent(f.MinDeg, f.MaxDeg()-1)
	var carry fr.Element
	for i := len(f.Coeffs) - 1; i >= 1; i-- {
		q.Coeffs[i-1] = f.Coeffs[i]
		q.Coeffs[i-1].Add(&q.Coeffs[i-1], &carry)
		carry.Mul(&q.Coeffs[i-1], &z)
	}
	return q
}
