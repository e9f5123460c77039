package cs

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Synthesize drives the circuit against backend, emitting one event per
// structural element in a deterministic order. The constant wire is
// allocated first as public input 0, so the first k-power index always
// refers to the constant wire. This ordering is a protocol invariant
// shared with the prover.
func Synthesize(backend Backend, circuit Circuit) error {
	s := &synthesizer{backend: backend}

	one, err := s.AllocInput(func() (fr.Element, error) {
		return fr.One(), nil
	})
	if err != nil {
		return err
	}
	if one != s.One() {
		return ErrInternalConsistency
	}

	return circuit.Synthesize(s)
}

// synthesizer translates ConstraintSystem calls into Backend events.
// Two consecutive Alloc calls share one multiplication gate: the first
// takes the A wire, the second the B wire, and the C wire is assigned
// their product.
type synthesizer struct {
	backend Backend

	// pending gate index whose A wire is filled, 0 if none
	current int

	n int
	q int
}

func (s *synthesizer) One() Variable {
	return Variable{Wire: WireA, Index: 1}
}

func (s *synthesizer) Alloc(value Assignment) (Variable, error) {
	if s.current != 0 {
		index := s.current
		s.current = 0

		varA := Variable{Wire: WireA, Index: index}
		varB := Variable{Wire: WireB, Index: index}
		varC := Variable{Wire: WireC, Index: index}

		valueA, okA := s.backend.GetVar(varA)
		var product fr.Element
		haveProduct := false

		if err := s.backend.SetVar(varB, func() (fr.Element, error) {
			valueB, err := value()
			if err != nil {
				return fr.Element{}, err
			}
			if !okA {
				return fr.Element{}, ErrAssignmentMissing
			}
			product.Mul(&valueA, &valueB)
			haveProduct = true
			return valueB, nil
		}); err != nil {
			return Variable{}, err
		}

		if err := s.backend.SetVar(varC, func() (fr.Element, error) {
			if !haveProduct {
				return fr.Element{}, ErrAssignmentMissing
			}
			return product, nil
		}); err != nil {
			return Variable{}, err
		}

		return varB, nil
	}

	s.n++
	s.backend.NewMultiplicationGate()
	index := s.n
	s.current = index

	varA := Variable{Wire: WireA, Index: index}
	if err := s.backend.SetVar(varA, value); err != nil {
		return Variable{}, err
	}

	return varA, nil
}

func (s *synthesizer) AllocInput(value Assignment) (Variable, error) {
	v, err := s.Alloc(value)
	if err != nil {
		return Variable{}, err
	}

	s.EnforceZero(LinearCombination{}.Add(v))
	s.backend.NewKPower(s.q)

	return v, nil
}

func (s *synthesizer) EnforceZero(lc LinearCombination) {
	s.q++
	s.backend.NewLinearConstraint()
	for _, t := range lc {
		s.backend.InsertCoefficient(t.Variable, t.Coeff)
	}
}

func (s *synthesizer) Multiply(values func() (a, b, c fr.Element, err error)) (Variable, Variable, Variable, error) {
	s.n++
	s.backend.NewMultiplicationGate()
	index := s.n

	varA := Variable{Wire: WireA, Index: index}
	varB := Variable{Wire: WireB, Index: index}
	varC := Variable{Wire: WireC, Index: index}

	var valueB, valueC fr.Element
	computed := false

	if err := s.backend.SetVar(varA, func() (fr.Element, error) {
		a, b, c, err := values()
		if err != nil {
			return fr.Element{}, err
		}
		valueB, valueC = b, c
		computed = true
		return a, nil
	}); err != nil {
		return Variable{}, Variable{}, Variable{}, err
	}

	if err := s.backend.SetVar(varB, func() (fr.Element, error) {
		if !computed {
			return fr.Element{}, ErrAssignmentMissing
		}
		return valueB, nil
	}); err != nil {
		return Variable{}, Variable{}, Variable{}, err
	}

	if err := s.backend.SetVar(varC, func() (fr.Element, error) {
		if !computed {
			return fr.Element{}, ErrAssignmentMissing
		}
		return valueC, nil
	}); err != nil {
		return Variable{}, Variable{}, Variable{}, err
	}

	return varA, varB, varC, nil
}
