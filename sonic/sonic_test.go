package sonic_test

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zksonic/sonic/cs"
	"github.com/zksonic/sonic/srs"
)

// testSRS is shared across the package tests. Fixed trapdoors keep the
// tests deterministic; real parameters come from a ceremony.
var testSRSInstance = func() *srs.SRS {
	var x, alpha fr.Element
	x.SetUint64(0xfeed_5eed_0001)
	alpha.SetUint64(0xfeed_5eed_0002)
	return srs.NewFixed(32, &x, &alpha)
}()

// sumCircuit constrains the public Sum to equal the sum of three products
// of secret factors: 4 gates, 3 linear constraints, one public input.
type sumCircuit struct {
	Factors [3][2]fr.Element
	Sum     fr.Element
}

func (c *sumCircuit) Synthesize(sys cs.ConstraintSystem) error {
	sum, err := sys.AllocInput(func() (fr.Element, error) {
		return c.Sum, nil
	})
	if err != nil {
		return err
	}

	lc := cs.LinearCombination{}
	for i := range c.Factors {
		a, b := c.Factors[i][0], c.Factors[i][1]

		_, _, prod, err := sys.Multiply(func() (fr.Element, fr.Element, fr.Element, error) {
			var p fr.Element
			p.Mul(&a, &b)
			return a, b, p, nil
		})
		if err != nil {
			return err
		}

		lc = lc.Add(prod)
	}

	sys.EnforceZero(lc.Sub(sum))
	return nil
}

// newSumCircuit builds a satisfied instance from a seed, so different
// seeds yield different witnesses and transcripts.
func newSumCircuit(seed uint64) *sumCircuit {
	c := &sumCircuit{}
	var prod fr.Element
	for i := range c.Factors {
		c.Factors[i][0].SetUint64(seed + uint64(10+i))
		c.Factors[i][1].SetUint64(seed + uint64(20+7*i))
		prod.Mul(&c.Factors[i][0], &c.Factors[i][1])
		c.Sum.Add(&c.Sum, &prod)
	}
	return c
}
