package sonic

import (
	"errors"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zksonic/sonic/cs"
	"github.com/zksonic/sonic/logger"
	"github.com/zksonic/sonic/srs"
	"github.com/zksonic/sonic/transcript"
)

var (
	// ErrFinalized reports a claim added after CheckAll.
	ErrFinalized = errors.New("sonic: verifier already finalized")
	// ErrSRSTooSmall reports a circuit whose gate count exceeds the
	// reference string degree.
	ErrSRSTooSmall = errors.New("sonic: circuit does not fit reference string")
	// ErrInputCount reports a public input slice whose length does not
	// match the circuit's input wiring.
	ErrInputCount = errors.New("sonic: wrong number of public inputs")
	// ErrAggregateShape reports an aggregate whose opening count does not
	// match the number of proofs it covers.
	ErrAggregateShape = errors.New("sonic: aggregate does not match proof count")
)

// MultiVerifier verifies batches of Sonic proofs against a single circuit.
// It preprocesses the circuit once, accumulates evaluation claims from any
// mix of AddProof, AddProofWithAdvice and AddAggregate calls, and settles
// them all in CheckAll.
//
// A MultiVerifier is single-use: after CheckAll it accepts no further
// claims.
type MultiVerifier struct {
	circuit cs.Circuit
	batch   *Batch

	// k-power index per public input, in allocation order
	kMap []int
	n    int
	q    int

	finalized bool
}

// preprocess counts circuit structure without touching wire values.
type preprocess struct {
	cs.NoopBackend

	kMap []int
	n    int
	q    int

	seen *bitset.BitSet
	dup  bool
}

func (p *preprocess) NewMultiplicationGate() { p.n++ }

func (p *preprocess) NewLinearConstraint() { p.q++ }

func (p *preprocess) NewKPower(index int) {
	if p.seen.Test(uint(index)) {
		p.dup = true
	}
	p.seen.Set(uint(index))
	p.kMap = append(p.kMap, index)
}

// NewMultiVerifier creates a new MultiVerifier for the given circuit.
// The circuit is synthesized once to extract its gate count, constraint
// count and public input wiring.
func NewMultiVerifier(circuit cs.Circuit, s *srs.SRS) (*MultiVerifier, error) {
	p := &preprocess{seen: bitset.New(64)}
	if err := cs.Synthesize(p, circuit); err != nil {
		return nil, err
	}
	if p.dup {
		return nil, cs.ErrMalformedWiring
	}
	if p.n > s.D {
		return nil, ErrSRSTooSmall
	}

	log := logger.Logger()
	log.Debug().
		Int("n", p.n).
		Int("q", p.q).
		Int("inputs", len(p.kMap)).
		Msg("preprocessed circuit")

	return &MultiVerifier{
		circuit: circuit,
		batch:   NewBatch(s, p.n),
		kMap:    p.kMap,
		n:       p.n,
		q:       p.q,
	}, nil
}

// AddProof accumulates the claims of one proof. The s(z, y) evaluation is
// recomputed from the circuit.
func (v *MultiVerifier) AddProof(proof *Proof, inputs []fr.Element) error {
	_, err := v.addProof(proof, inputs, nil)
	return err
}

// AddProofWithAdvice accumulates the claims of one proof together with
// helper advice for s(z, y), sparing the circuit synthesis. The advice
// commitment is opened at z; its consistency with the circuit must be
// established separately through AddAggregate.
func (v *MultiVerifier) AddProofWithAdvice(proof *Proof, inputs []fr.Element, advice *SxyAdvice) error {
	z, err := v.addProof(proof, inputs, &advice.SZY)
	if err != nil {
		return err
	}

	t := transcript.New()
	t.WritePoint(&advice.Opening)
	t.WritePoint(&advice.S)
	t.WriteScalar(&advice.SZY)
	random := t.ChallengeScalar()

	v.batch.AddOpening(advice.Opening, random, z)
	v.batch.AddCommitment(advice.S, random)
	v.batch.AddOpeningValue(advice.SZY, random)

	return nil
}

// addProof replays the proof transcript, derives the challenges, and
// deposits the two opening claims into the batch. It returns the
// evaluation point z. A non-nil szy short-circuits the s(z, y)
// computation.
func (v *MultiVerifier) addProof(proof *Proof, inputs []fr.Element, szyHint *fr.Element) (fr.Element, error) {
	if v.finalized {
		return fr.Element{}, ErrFinalized
	}
	if len(inputs) != len(v.kMap)-1 {
		return fr.Element{}, ErrInputCount
	}

	t := transcript.New()

	t.WritePoint(&proof.R)
	y := t.ChallengeScalar()

	t.WritePoint(&proof.T)
	z := t.ChallengeScalar()

	t.WriteScalar(&proof.RZ)
	t.WriteScalar(&proof.RZY)
	r1 := t.ChallengeScalar()

	t.WritePoint(&proof.ZOpening)
	t.WritePoint(&proof.ZYOpening)

	ky := v.evalK(y, inputs)

	// All fallible work happens before any claim is registered, so an
	// error leaves the batch untouched.
	var szy fr.Element
	if szyHint != nil {
		szy = *szyHint
	} else {
		sx := NewSxEval(y, v.n)
		if err := cs.Synthesize(sx, v.circuit); err != nil {
			return fr.Element{}, err
		}
		szy = sx.Finalize(z)
	}

	// t(z, y) = r(z, 1) (r(z, y) + s(z, y)) - k(y)
	var tzy fr.Element
	tzy.Add(&proof.RZY, &szy)
	tzy.Mul(&tzy, &proof.RZ)
	tzy.Sub(&tzy, &ky)

	// Open r(X, 1) at zy, as a degree-n bounded commitment.
	{
		random := t.ChallengeScalar()
		var zy fr.Element
		zy.Mul(&z, &y)

		v.batch.AddOpening(proof.ZYOpening, random, zy)
		v.batch.AddCommitmentMaxN(proof.R, random)
		v.batch.AddOpeningValue(proof.RZY, random)
	}

	// Open t and r at z simultaneously; r1 keeps the two claims linearly
	// independent.
	{
		random := t.ChallengeScalar()

		v.batch.AddOpening(proof.ZOpening, random, z)
		v.batch.AddOpeningValue(tzy, random)
		v.batch.AddCommitment(proof.T, random)

		random.Mul(&random, &r1)

		v.batch.AddOpeningValue(proof.RZ, random)
		v.batch.AddCommitmentMaxN(proof.R, random)
	}

	return z, nil
}

// evalK computes k(y), the public input polynomial. Input wire i bound to
// k-power k carries input_i * y^(k+n); the constant wire contributes with
// input value 1.
func (v *MultiVerifier) evalK(y fr.Element, inputs []fr.Element) fr.Element {
	var ky, pow, term fr.Element

	one := fr.One()
	for i, exp := range v.kMap {
		input := &one
		if i > 0 {
			input = &inputs[i-1]
		}

		pow.Exp(y, big.NewInt(int64(exp+v.n)))
		term.Mul(&pow, input)
		ky.Add(&ky, &term)
	}

	return ky
}

// AddAggregate accumulates the claims tying a batch of advised proofs back
// to the circuit: the aggregate commitment C is opened at w and at every
// per-proof y, and the randomized combination of the advice commitments is
// opened at z.
func (v *MultiVerifier) AddAggregate(proofs []AdvisedProof, aggregate *Aggregate) error {
	if v.finalized {
		return ErrFinalized
	}
	if len(aggregate.COpenings) != len(proofs) {
		return ErrAggregateShape
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

	t.WritePoint(&aggregate.C)
	w := t.ChallengeScalar()

	sx := NewSxEval(w, v.n)
	if err := cs.Synthesize(sx, v.circuit); err != nil {
		return err
	}
	szw := sx.Finalize(z)

	// The batching challenges below are drawn from forks of the shared
	// transcript, so they all coincide with each other and with the first
	// per-proof challenge r. Kept as-is: changing the schedule would break
	// existing provers. A known Fiat-Shamir binding caveat.
	{
		random := t.Fork().ChallengeScalar()

		v.batch.AddOpening(aggregate.Opening, random, w)
		v.batch.AddCommitment(aggregate.C, random)
		v.batch.AddOpeningValue(szw, random)
	}

	for i := range aggregate.COpenings {
		random := t.Fork().ChallengeScalar()

		v.batch.AddOpening(aggregate.COpenings[i].Opening, random, yValues[i])
		v.batch.AddCommitment(aggregate.C, random)
		v.batch.AddOpeningValue(aggregate.COpenings[i].Value, random)
	}

	random := t.Fork().ChallengeScalar()

	var expected, tmp fr.Element
	for i := range proofs {
		r := t.ChallengeScalar()

		tmp.Mul(&aggregate.COpenings[i].Value, &r)
		expected.Add(&expected, &tmp)

		r.Mul(&r, &random)
		v.batch.AddCommitment(proofs[i].Advice.S, r)
	}

	v.batch.AddOpeningValue(expected, random)
	v.batch.AddOpening(aggregate.SOpening, random, z)

	return nil
}

// CheckAll settles every accumulated claim in one pairing product check.
//
// Panics when called twice.
func (v *MultiVerifier) CheckAll() bool {
	if v.finalized {
		panic("sonic: verifier already finalized")
	}
	v.finalized = true

	return v.batch.CheckAll()
}

// N returns the number of multiplication gates.
func (v *MultiVerifier) N() int {
	return v.n
}

// Q returns the number of linear constraints.
func (v *MultiVerifier) Q() int {
	return v.q
}

// KMap returns the k-power index of each public input, in allocation order.
func (v *MultiVerifier) KMap() []int {
	out := make([]int, len(v.kMap))
	copy(out, v.kMap)
	return out
}
