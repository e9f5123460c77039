package sonic_test

import (
	"errors"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"

	"github.com/zksonic/sonic/cs"
	"github.com/zksonic/sonic/internal/proofgen"
	"github.com/zksonic/sonic/sonic"
	"github.com/zksonic/sonic/srs"
)

func TestVerifyProof(t *testing.T) {
	circuit := newSumCircuit(1)

	proof, err := proofgen.CreateProof(circuit, testSRSInstance)
	assert.NoError(t, err)

	verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
	assert.NoError(t, err)

	assert.NoError(t, verifier.AddProof(proof, []fr.Element{circuit.Sum}))
	assert.True(t, verifier.CheckAll())
}

func TestVerifyManyProofs(t *testing.T) {
	circuit := newSumCircuit(0)
	verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
	assert.NoError(t, err)

	for seed := uint64(1); seed <= 3; seed++ {
		instance := newSumCircuit(seed)
		proof, err := proofgen.CreateProof(instance, testSRSInstance)
		assert.NoError(t, err)

		assert.NoError(t, verifier.AddProof(proof, []fr.Element{instance.Sum}))
	}

	assert.True(t, verifier.CheckAll())
}

func TestVerifyWrongInput(t *testing.T) {
	circuit := newSumCircuit(2)

	proof, err := proofgen.CreateProof(circuit, testSRSInstance)
	assert.NoError(t, err)

	verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
	assert.NoError(t, err)

	var wrong fr.Element
	wrong.Add(&circuit.Sum, &circuit.Sum)

	assert.NoError(t, verifier.AddProof(proof, []fr.Element{wrong}))
	assert.False(t, verifier.CheckAll())
}

func TestVerifyInputCount(t *testing.T) {
	circuit := newSumCircuit(3)

	proof, err := proofgen.CreateProof(circuit, testSRSInstance)
	assert.NoError(t, err)

	verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
	assert.NoError(t, err)

	err = verifier.AddProof(proof, nil)
	assert.ErrorIs(t, err, sonic.ErrInputCount)
}

func TestRejectTamperedProof(t *testing.T) {
	circuit := newSumCircuit(4)
	inputs := []fr.Element{circuit.Sum}

	proof, err := proofgen.CreateProof(circuit, testSRSInstance)
	assert.NoError(t, err)

	var one fr.Element
	one.SetOne()

	tampered := []struct {
		name   string
		mutate func(p *sonic.Proof)
	}{
		{"RZ", func(p *sonic.Proof) { p.RZ.Add(&p.RZ, &one) }},
		{"RZY", func(p *sonic.Proof) { p.RZY.Add(&p.RZY, &one) }},
		{"R", func(p *sonic.Proof) { p.R = p.T }},
		{"T", func(p *sonic.Proof) { p.T = p.R }},
		{"SwappedOpenings", func(p *sonic.Proof) {
			p.ZOpening, p.ZYOpening = p.ZYOpening, p.ZOpening
		}},
	}

	for _, tc := range tampered {
		t.Run(tc.name, func(t *testing.T) {
			bad := *proof
			tc.mutate(&bad)

			verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
			assert.NoError(t, err)

			assert.NoError(t, verifier.AddProof(&bad, inputs))
			assert.False(t, verifier.CheckAll())
		})
	}
}

func TestVerifyProofWithAdvice(t *testing.T) {
	circuit := newSumCircuit(5)

	proof, err := proofgen.CreateProof(circuit, testSRSInstance)
	assert.NoError(t, err)
	advice, err := proofgen.CreateAdvice(circuit, proof, testSRSInstance)
	assert.NoError(t, err)

	verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
	assert.NoError(t, err)

	assert.NoError(t, verifier.AddProofWithAdvice(proof, []fr.Element{circuit.Sum}, advice))
	assert.True(t, verifier.CheckAll())
}

func TestRejectTamperedAdvice(t *testing.T) {
	circuit := newSumCircuit(6)

	proof, err := proofgen.CreateProof(circuit, testSRSInstance)
	assert.NoError(t, err)
	advice, err := proofgen.CreateAdvice(circuit, proof, testSRSInstance)
	assert.NoError(t, err)

	var one fr.Element
	one.SetOne()
	bad := *advice
	bad.SZY.Add(&bad.SZY, &one)

	verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
	assert.NoError(t, err)

	assert.NoError(t, verifier.AddProofWithAdvice(proof, []fr.Element{circuit.Sum}, &bad))
	assert.False(t, verifier.CheckAll())
}

func advisedBatch(t *testing.T, seeds []uint64) ([]sonic.AdvisedProof, [][]fr.Element) {
	t.Helper()

	proofs := make([]sonic.AdvisedProof, 0, len(seeds))
	inputs := make([][]fr.Element, 0, len(seeds))
	for _, seed := range seeds {
		instance := newSumCircuit(seed)

		proof, err := proofgen.CreateProof(instance, testSRSInstance)
		assert.NoError(t, err)
		advice, err := proofgen.CreateAdvice(instance, proof, testSRSInstance)
		assert.NoError(t, err)

		proofs = append(proofs, sonic.AdvisedProof{Proof: *proof, Advice: *advice})
		inputs = append(inputs, []fr.Element{instance.Sum})
	}
	return proofs, inputs
}

func TestVerifyAggregate(t *testing.T) {
	circuit := newSumCircuit(0)
	proofs, inputs := advisedBatch(t, []uint64{7, 8, 9})

	aggregate, err := proofgen.CreateAggregate(circuit, proofs, testSRSInstance)
	assert.NoError(t, err)

	verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
	assert.NoError(t, err)

	for i := range proofs {
		assert.NoError(t, verifier.AddProofWithAdvice(&proofs[i].Proof, inputs[i], &proofs[i].Advice))
	}
	assert.NoError(t, verifier.AddAggregate(proofs, aggregate))

	assert.True(t, verifier.CheckAll())
}

func TestRejectTamperedAggregate(t *testing.T) {
	circuit := newSumCircuit(0)
	proofs, _ := advisedBatch(t, []uint64{10, 11})

	aggregate, err := proofgen.CreateAggregate(circuit, proofs, testSRSInstance)
	assert.NoError(t, err)

	var one fr.Element
	one.SetOne()
	aggregate.COpenings[0].Value.Add(&aggregate.COpenings[0].Value, &one)

	verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
	assert.NoError(t, err)

	assert.NoError(t, verifier.AddAggregate(proofs, aggregate))
	assert.False(t, verifier.CheckAll())
}

func TestAggregateShape(t *testing.T) {
	circuit := newSumCircuit(0)
	proofs, _ := advisedBatch(t, []uint64{12, 13})

	aggregate, err := proofgen.CreateAggregate(circuit, proofs, testSRSInstance)
	assert.NoError(t, err)
	aggregate.COpenings = aggregate.COpenings[:1]

	verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
	assert.NoError(t, err)

	err = verifier.AddAggregate(proofs, aggregate)
	assert.ErrorIs(t, err, sonic.ErrAggregateShape)
}

func TestFinalized(t *testing.T) {
	circuit := newSumCircuit(14)

	proof, err := proofgen.CreateProof(circuit, testSRSInstance)
	assert.NoError(t, err)

	verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
	assert.NoError(t, err)

	assert.NoError(t, verifier.AddProof(proof, []fr.Element{circuit.Sum}))
	assert.True(t, verifier.CheckAll())

	err = verifier.AddProof(proof, []fr.Element{circuit.Sum})
	assert.ErrorIs(t, err, sonic.ErrFinalized)

	assert.Panics(t, func() { verifier.CheckAll() })
}

// divergingCircuit synthesizes cleanly once, then fails on every later pass.
type divergingCircuit struct {
	inner  *sumCircuit
	passes int
}

func (c *divergingCircuit) Synthesize(sys cs.ConstraintSystem) error {
	c.passes++
	if c.passes > 1 {
		return errors.New("synthesis diverged")
	}
	return c.inner.Synthesize(sys)
}

func TestFailedSynthesisLeavesBatchClean(t *testing.T) {
	instance := newSumCircuit(16)

	proof, err := proofgen.CreateProof(instance, testSRSInstance)
	assert.NoError(t, err)

	// an invalid claim would flip the verdict if it reached the batch
	var one fr.Element
	one.SetOne()
	proof.RZY.Add(&proof.RZY, &one)

	verifier, err := sonic.NewMultiVerifier(&divergingCircuit{inner: instance}, testSRSInstance)
	assert.NoError(t, err)

	err = verifier.AddProof(proof, []fr.Element{instance.Sum})
	assert.Error(t, err)

	// the failed proof must not have deposited any of its claims
	assert.True(t, verifier.CheckAll())
}

func TestPreprocessing(t *testing.T) {
	verifier, err := sonic.NewMultiVerifier(newSumCircuit(0), testSRSInstance)
	assert.NoError(t, err)

	assert.Equal(t, 4, verifier.N())
	assert.Equal(t, 3, verifier.Q())
	assert.Equal(t, []int{1, 2}, verifier.KMap())
}

func TestSRSTooSmall(t *testing.T) {
	var x, alpha fr.Element
	x.SetUint64(0xabc1)
	alpha.SetUint64(0xabc2)
	tiny := srs.NewFixed(2, &x, &alpha)

	_, err := sonic.NewMultiVerifier(newSumCircuit(0), tiny)
	assert.ErrorIs(t, err, sonic.ErrSRSTooSmall)
}

func TestDeterministicVerification(t *testing.T) {
	circuit := newSumCircuit(15)

	proof, err := proofgen.CreateProof(circuit, testSRSInstance)
	assert.NoError(t, err)

	for i := 0; i < 2; i++ {
		verifier, err := sonic.NewMultiVerifier(circuit, testSRSInstance)
		assert.NoError(t, err)

		assert.NoError(t, verifier.AddProof(proof, []fr.Element{circuit.Sum}))
		assert.True(t, verifier.CheckAll())
	}
}
