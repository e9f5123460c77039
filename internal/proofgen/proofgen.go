// Package proofgen produces honest Sonic proofs, advice and aggregates for
// a satisfying circuit assignment. It exists for tests and local tooling;
// it is not a hardened prover.
package proofgen

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zksonic/sonic/cs"
	"github.com/zksonic/sonic/poly"
	"github.com/zksonic/sonic/sonic"
	"github.com/zksonic/sonic/srs"
	"github.com/zksonic/sonic/transcript"
)

// wires records the evaluated assignment of every gate wire.
type wires struct {
	cs.NoopBackend

	a []fr.Element
	b []fr.Element
	c []fr.Element
}

func (w *wires) NewMultiplicationGate() {
	w.a = append(w.a, fr.Element{})
	w.b = append(w.b, fr.Element{})
	w.c = append(w.c, fr.Element{})
}

func (w *wires) SetVar(v cs.Variable, value cs.Assignment) error {
	if value == nil {
		return nil
	}
	val, err := value()
	if err != nil {
		return err
	}
	switch v.Wire {
	case cs.WireA:
		w.a[v.Index-1] = val
	case cs.WireB:
		w.b[v.Index-1] = val
	case cs.WireC:
		w.c[v.Index-1] = val
	}
	return nil
}

func (w *wires) GetVar(v cs.Variable) (fr.Element, bool) {
	switch v.Wire {
	case cs.WireA:
		return w.a[v.Index-1], true
	case cs.WireB:
		return w.b[v.Index-1], true
	default:
		return w.c[v.Index-1], true
	}
}

// dimensions counts circuit structure.
type dimensions struct {
	cs.NoopBackend

	n int
	q int
}

func (d *dimensions) NewMultiplicationGate() { d.n++ }

func (d *dimensions) NewLinearConstraint() { d.q++ }

// wirePoly assembles r(X, 1) from the wire assignment: a_i at X^i, b_i at
// X^-i, c_i at X^-(n+i).
func wirePoly(w *wires) poly.Laurent {
	n := len(w.a)
	p := poly.NewLaurent(-2*n, n)
	for i := 0; i < n; i++ {
		p.SetCoeff(i+1, w.a[i])
		p.SetCoeff(-(i + 1), w.b[i])
		p.SetCoeff(-(n + i + 1), w.c[i])
	}
	return p
}

// CreateProof proves one instance of the circuit, using the assignments
// supplied during synthesis.
func CreateProof(circuit cs.Circuit, s *srs.SRS) (*sonic.Proof, error) {
	w := &wires{}
	if err := cs.Synthesize(w, circuit); err != nil {
		return nil, err
	}
	n := len(w.a)

	rx1 := wirePoly(w)
	r, err := s.Commit(n, rx1)
	if err != nil {
		return nil, err
	}

	t := transcript.New()
	t.WritePoint(&r)
	y := t.ChallengeScalar()

	sx := sonic.NewSxEval(y, n)
	if err := cs.Synthesize(sx, circuit); err != nil {
		return nil, err
	}

	// t(X, y) = r(X, 1) (r(X, y) + s(X, y)) - k(y). For a satisfying
	// assignment the constant coefficient of the product is exactly k(y),
	// so subtracting k(y) is zeroing it.
	txy := rx1.Mul(rx1.ScalePowers(y).Add(sx.Poly()))
	txy.SetCoeff(0, fr.Element{})

	tc, err := s.Commit(s.D, txy)
	if err != nil {
		return nil, err
	}

	t.WritePoint(&tc)
	z := t.ChallengeScalar()

	var zy fr.Element
	zy.Mul(&z, &y)

	rz := rx1.Evaluate(z)
	rzy := rx1.Evaluate(zy)

	t.WriteScalar(&rz)
	t.WriteScalar(&rzy)
	r1 := t.ChallengeScalar()

	zOpening, err := s.Open(txy.Add(rx1.ScalarMul(r1)), z)
	if err != nil {
		return nil, err
	}
	zyOpening, err := s.Open(rx1, zy)
	if err != nil {
		return nil, err
	}

	return &sonic.Proof{
		R:         r,
		T:         tc,
		RZ:        rz,
		RZY:       rzy,
		ZOpening:  zOpening,
		ZYOpening: zyOpening,
	}, nil
}

// CreateAdvice computes the s(z, y) advice for an existing proof, replaying
// its transcript to recover y and z.
func CreateAdvice(circuit cs.Circuit, proof *sonic.Proof, s *srs.SRS) (*sonic.SxyAdvice, error) {
	dim := &dimensions{}
	if err := cs.Synthesize(dim, circuit); err != nil {
		return nil, err
	}

	t := transcript.New()
	t.WritePoint(&proof.R)
	y := t.ChallengeScalar()
	t.WritePoint(&proof.T)
	z := t.ChallengeScalar()

	sx := sonic.NewSxEval(y, dim.n)
	if err := cs.Synthesize(sx, circuit); err != nil {
		return nil, err
	}
	sxp := sx.Poly()

	commit, err := s.Commit(s.D, sxp)
	if err != nil {
		return nil, err
	}
	opening, err := s.Open(sxp, z)
	if err != nil {
		return nil, err
	}

	return &sonic.SxyAdvice{
		S:       commit,
		Opening: opening,
		SZY:     sxp.Evaluate(z),
	}, nil
}

// CreateAggregate produces the aggregate argument for a batch of advised
// proofs, committing to s(z, Y) and opening it at every per-proof y.
func CreateAggregate(circuit cs.Circuit, proofs []sonic.AdvisedProof, s *srs.SRS) (*sonic.Aggregate, error) {
	dim := &dimensions{}
	if err := cs.Synthesize(dim, circuit); err != nil {
		return nil, err
	}

	t := transcript.New()

	yValues := make([]fr.Element, 0, len(proofs))
	for i := range proofs {
		sub := transcript.New()
		sub.WritePoint(&proofs[i].Proof.R)
		yValues = append(yValues, sub.ChallengeScalar())

		t.WritePoint(&proofs[i].Advice.S)
	}

	z := t.ChallengeScalar()

	sy := sonic.NewSyEval(z, dim.n, dim.q)
	if err := cs.Synthesize(sy, circuit); err != nil {
		return nil, err
	}
	syp := sy.Poly()

	c, err := s.Commit(s.D, syp)
	if err != nil {
		return nil, err
	}

	t.WritePoint(&c)
	w := t.ChallengeScalar()

	opening, err := s.Open(syp, w)
	if err != nil {
		return nil, err
	}

	cOpenings := make([]sonic.COpening, len(proofs))
	for i := range yValues {
		op, err := s.Open(syp, yValues[i])
		if err != nil {
			return nil, err
		}
		cOpenings[i] = sonic.COpening{
			Opening: op,
			Value:   syp.Evaluate(yValues[i]),
		}
	}

	// The verifier draws its batching coefficients from forks, which do
	// not advance the transcript; the per-proof r values are the next
	// challenges of the main stream.
	combined := poly.NewLaurent(-dim.n, 2*dim.n)
	for i := range proofs {
		r := t.ChallengeScalar()

		sx := sonic.NewSxEval(yValues[i], dim.n)
		if err := cs.Synthesize(sx, circuit); err != nil {
			return nil, err
		}
		combined = combined.Add(sx.Poly().ScalarMul(r))
	}

	sOpening, err := s.Open(combined, z)
	if err != nil {
		return nil, err
	}

	return &sonic.Aggregate{
		C:         c,
		Opening:   opening,
		COpenings: cOpenings,
		SOpening:  sOpening,
	}, nil
}
