// Package cs defines the constraint system consumed by the batched verifier:
// circuits, the synthesis backend event sink, and the driver translating
// circuit definitions into backend events.
//
// A circuit is a relation over multiplication gates a_i * b_i = c_i and
// linear constraints over the gate wires. Synthesizing the same circuit
// twice yields an identical event sequence; preprocessing, evaluation and
// proving all rely on this.
package cs

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// ErrAssignmentMissing reports a variable used before a value was
	// assigned to it.
	ErrAssignmentMissing = errors.New("cs: variable assignment is missing")
	// ErrMalformedWiring reports a circuit emitting inconsistent public
	// input wiring during synthesis.
	ErrMalformedWiring = errors.New("cs: malformed public input wiring")
	// ErrInternalConsistency reports a circuit whose synthesis events
	// diverged between two passes.
	ErrInternalConsistency = errors.New("cs: synthesis events diverged between passes")
)

// Wire selects one of the three wires of a multiplication gate.
type Wire uint8

const (
	// WireA is the left input wire.
	WireA Wire = iota
	// WireB is the right input wire.
	WireB
	// WireC is the output wire.
	WireC
)

// Variable references a wire of a multiplication gate.
// Gate indices are 1-based.
type Variable struct {
	Wire  Wire
	Index int
}

// CoeffKind discriminates the sparse coefficient representation.
type CoeffKind uint8

const (
	// CoeffZero is the zero coefficient.
	CoeffZero CoeffKind = iota
	// CoeffOne is the coefficient 1.
	CoeffOne
	// CoeffNegativeOne is the coefficient -1.
	CoeffNegativeOne
	// CoeffFull is an arbitrary field coefficient.
	CoeffFull
)

// Coeff is a linear constraint coefficient. The common 0, 1 and -1 cases
// avoid a field multiplication when folded into an accumulator.
type Coeff struct {
	Kind  CoeffKind
	Value fr.Element
}

// OneCoeff returns the coefficient 1.
func OneCoeff() Coeff {
	return Coeff{Kind: CoeffOne}
}

// NegOneCoeff returns the coefficient -1.
func NegOneCoeff() Coeff {
	return Coeff{Kind: CoeffNegativeOne}
}

// FullCoeff returns an arbitrary field coefficient.
func FullCoeff(v fr.Element) Coeff {
	return Coeff{Kind: CoeffFull, Value: v}
}

// AddScaled adds coeff * scale into acc.
func (c Coeff) AddScaled(acc, scale *fr.Element) {
	switch c.Kind {
	case CoeffZero:
	case CoeffOne:
		acc.Add(acc, scale)
	case CoeffNegativeOne:
		acc.Sub(acc, scale)
	case CoeffFull:
		var tmp fr.Element
		tmp.Mul(&c.Value, scale)
		acc.Add(acc, &tmp)
	}
}

// Term is one summand of a linear combination.
type Term struct {
	Variable Variable
	Coeff    Coeff
}

// LinearCombination is a sparse linear combination of gate wires.
type LinearCombination []Term

// Add appends v with coefficient 1.
func (lc LinearCombination) Add(v Variable) LinearCombination {
	return append(lc, Term{Variable: v, Coeff: OneCoeff()})
}

// Sub appends v with coefficient -1.
func (lc LinearCombination) Sub(v Variable) LinearCombination {
	return append(lc, Term{Variable: v, Coeff: NegOneCoeff()})
}

// AddTerm appends v with an arbitrary coefficient.
func (lc LinearCombination) AddTerm(v Variable, c Coeff) LinearCombination {
	return append(lc, Term{Variable: v, Coeff: c})
}

// Assignment lazily supplies a wire value. Backends that only observe
// structure never invoke it.
type Assignment func() (fr.Element, error)

// Circuit is a relation to verify.
type Circuit interface {
	// Synthesize defines the relation against the given constraint system.
	Synthesize(cs ConstraintSystem) error
}

// ConstraintSystem is the capability a circuit synthesizes against.
type ConstraintSystem interface {
	// One returns the constant wire, fixed to the value 1.
	One() Variable
	// Alloc allocates a new wire.
	Alloc(value Assignment) (Variable, error)
	// AllocInput allocates a new public input wire.
	AllocInput(value Assignment) (Variable, error)
	// EnforceZero adds the linear constraint lc = 0.
	EnforceZero(lc LinearCombination)
	// Multiply allocates a full multiplication gate a * b = c.
	Multiply(values func() (a, b, c fr.Element, err error)) (Variable, Variable, Variable, error)
}

// Backend receives the synthesis event stream. Implementations vary by
// phase: preprocessing counts structure, evaluators fold coefficients,
// value backends track wire assignments.
type Backend interface {
	// NewMultiplicationGate records a new gate.
	NewMultiplicationGate()
	// NewLinearConstraint records a new linear constraint.
	NewLinearConstraint()
	// NewKPower records the k-power index bound to a public input wire.
	NewKPower(index int)
	// InsertCoefficient records one term of the current linear constraint.
	InsertCoefficient(v Variable, c Coeff)
	// GetVar returns the value of a wire, if tracked.
	GetVar(v Variable) (fr.Element, bool)
	// SetVar assigns a value to a wire. Backends that do not track values
	// must not invoke the assignment.
	SetVar(v Variable, value Assignment) error
}

// NoopBackend implements every Backend event as a no-op. Embed it to build
// phase-specific backends.
type NoopBackend struct{}

// NewMultiplicationGate implements [Backend].
func (NoopBackend) NewMultiplicationGate() {}

// NewLinearConstraint implements [Backend].
func (NoopBackend) NewLinearConstraint() {}

// NewKPower implements [Backend].
func (NoopBackend) NewKPower(index int) {}

// InsertCoefficient implements [Backend].
func (NoopBackend) InsertCoefficient(v Variable, c Coeff) {}

// GetVar implements [Backend].
func (NoopBackend) GetVar(v Variable) (fr.Element, bool) {
	return fr.Element{}, false
}

// SetVar implements [Backend].
func (NoopBackend) SetVar(v Variable, value Assignment) error {
	return nil
}
