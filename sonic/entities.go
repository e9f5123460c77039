// Package sonic implements a batched verifier for the Sonic argument.
//
// A MultiVerifier accumulates any number of proofs, advised proofs and
// aggregates into a single Batch of deferred pairing claims, then settles
// them all with one multi-exponentiation per claim class and a single
// pairing product check.
package sonic

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Proof is a Sonic proof for one circuit instance.
type Proof struct {
	// R commits to the wire polynomial r(X, 1), bounded to degree n.
	R bn254.G1Affine
	// T commits to t(X, y).
	T bn254.G1Affine

	// RZ is the claimed evaluation r(z, 1).
	RZ fr.Element
	// RZY is the claimed evaluation r(z, y) = r(zy, 1).
	RZY fr.Element

	// ZOpening opens t(X, y) + r1 * r(X, 1) at z.
	ZOpening bn254.G1Affine
	// ZYOpening opens r(X, 1) at zy.
	ZYOpening bn254.G1Affine
}

// SxyAdvice is helper-supplied advice sparing the verifier the evaluation
// of s(z, y). Its consistency with the circuit is not checked here; an
// Aggregate carries that check.
type SxyAdvice struct {
	// S commits to s(X, y).
	S bn254.G1Affine
	// Opening opens S at z.
	Opening bn254.G1Affine
	// SZY is the claimed evaluation s(z, y).
	SZY fr.Element
}

// AdvisedProof pairs a proof with the advice it was issued against.
type AdvisedProof struct {
	Proof  Proof
	Advice SxyAdvice
}

// COpening is an opening of the aggregate commitment C at one proof's
// y challenge.
type COpening struct {
	Opening bn254.G1Affine
	Value   fr.Element
}

// Aggregate ties the advice of a batch of proofs back to the circuit: it
// commits to s(z, Y) and opens it at every per-proof y, and opens the
// randomized combination of the advice commitments at z.
type Aggregate struct {
	// C commits to s(z, Y).
	C bn254.G1Affine
	// Opening opens C at w.
	Opening bn254.G1Affine
	// COpenings open C at each proof's y challenge, in proof order.
	COpenings []COpening
	// SOpening opens the r-combination of the advice commitments at z.
	SOpening bn254.G1Affine
}
