package sonic

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zksonic/sonic/cs"
	"github.com/zksonic/sonic/poly"
)

// SxEval folds the synthesis event stream into the restriction s(X, y) for
// a fixed y. Wire coefficients of linear constraint q are scaled by
// y^(q+n); the output wire columns additionally carry the base terms
// -y^i - y^(-i) that cancel r(X, Y)'s cross terms.
type SxEval struct {
	cs.NoopBackend

	y fr.Element
	// y^(q+n) for the constraint currently being inserted
	yqn fr.Element

	// coefficients of X^-1 .. X^-n (left input wires)
	u []fr.Element
	// coefficients of X^1 .. X^n (right input wires)
	v []fr.Element
	// coefficients of X^(n+1) .. X^(2n) (output wires)
	w []fr.Element
}

// NewSxEval creates a new SxEval at y for a circuit with n gates.
func NewSxEval(y fr.Element, n int) *SxEval {
	var yInv fr.Element
	yInv.Inverse(&y)

	s := &SxEval{
		y: y,
		u: make([]fr.Element, n),
		v: make([]fr.Element, n),
		w: make([]fr.Element, n),
	}
	s.yqn.Exp(y, big.NewInt(int64(n)))

	tmp1, tmp2 := y, yInv
	for i := range s.w {
		s.w[i].Add(&tmp1, &tmp2)
		s.w[i].Neg(&s.w[i])
		tmp1.Mul(&tmp1, &y)
		tmp2.Mul(&tmp2, &yInv)
	}

	return s
}

// NewLinearConstraint implements [cs.Backend].
func (s *SxEval) NewLinearConstraint() {
	s.yqn.Mul(&s.yqn, &s.y)
}

// InsertCoefficient implements [cs.Backend].
func (s *SxEval) InsertCoefficient(v cs.Variable, c cs.Coeff) {
	var acc *fr.Element
	switch v.Wire {
	case cs.WireA:
		acc = &s.u[v.Index-1]
	case cs.WireB:
		acc = &s.v[v.Index-1]
	case cs.WireC:
		acc = &s.w[v.Index-1]
	}
	c.AddScaled(acc, &s.yqn)
}

// Poly returns s(X, y) as a Laurent polynomial spanning X^-n .. X^2n.
func (s *SxEval) Poly() poly.Laurent {
	n := len(s.u)
	p := poly.NewLaurent(-n, 2*n)
	for i := 0; i < n; i++ {
		p.SetCoeff(-(i + 1), s.u[i])
		p.SetCoeff(i+1, s.v[i])
		p.SetCoeff(n+i+1, s.w[i])
	}
	return p
}

// Finalize returns s(x, y).
func (s *SxEval) Finalize(x fr.Element) fr.Element {
	return s.Poly().Evaluate(x)
}

// SyEval folds the synthesis event stream into the restriction s(x, Y) for
// a fixed x. Each constraint q deposits its wire coefficients, scaled by
// the matching power of x, into the coefficient of Y^(q+n).
type SyEval struct {
	cs.NoopBackend

	n        int
	currentQ int

	// x^-1 .. x^-n
	a []fr.Element
	// x^1 .. x^n
	b []fr.Element
	// x^(n+1) .. x^(2n)
	c []fr.Element

	// coefficients of Y^1 .. Y^(n+q)
	pos []fr.Element
	// coefficients of Y^-1 .. Y^-n
	neg []fr.Element
}

// NewSyEval creates a new SyEval at x for a circuit with n gates and q
// linear constraints.
func NewSyEval(x fr.Element, n, q int) *SyEval {
	var xInv fr.Element
	xInv.Inverse(&x)

	s := &SyEval{
		n:   n,
		a:   make([]fr.Element, n),
		b:   make([]fr.Element, n),
		c:   make([]fr.Element, n),
		pos: make([]fr.Element, n+q),
		neg: make([]fr.Element, n),
	}

	tmp := xInv
	for i := range s.a {
		s.a[i] = tmp
		tmp.Mul(&tmp, &xInv)
	}
	tmp = x
	for i := range s.b {
		s.b[i] = tmp
		tmp.Mul(&tmp, &x)
	}
	for i := range s.c {
		s.c[i] = tmp

		// base terms -x^(i+n) (Y^i + Y^-i)
		s.pos[i].Neg(&tmp)
		s.neg[i].Neg(&tmp)

		tmp.Mul(&tmp, &x)
	}

	return s
}

// NewLinearConstraint implements [cs.Backend].
func (s *SyEval) NewLinearConstraint() {
	s.currentQ++
}

// InsertCoefficient implements [cs.Backend].
func (s *SyEval) InsertCoefficient(v cs.Variable, c cs.Coeff) {
	var scale *fr.Element
	switch v.Wire {
	case cs.WireA:
		scale = &s.a[v.Index-1]
	case cs.WireB:
		scale = &s.b[v.Index-1]
	case cs.WireC:
		scale = &s.c[v.Index-1]
	}
	c.AddScaled(&s.pos[s.n+s.currentQ-1], scale)
}

// Poly returns s(x, Y) as a Laurent polynomial spanning Y^-n .. Y^(n+q).
func (s *SyEval) Poly() poly.Laurent {
	p := poly.NewLaurent(-s.n, len(s.pos))
	for i := range s.neg {
		p.SetCoeff(-(i + 1), s.neg[i])
	}
	for i := range s.pos {
		p.SetCoeff(i+1, s.pos[i])
	}
	return p
}

// Finalize returns s(x, y).
func (s *SyEval) Finalize(y fr.Element) fr.Element {
	return s.Poly().Evaluate(y)
}
