package order

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peanoproof/peano/nat"
)

func TestLessThanConcreteScenarios(t *testing.T) {
	tests := []struct {
		name string
		a, b nat.Nat
		want bool
	}{
		{name: "zero lt one", a: nat.Z(), b: nat.S(nat.Z()), want: true},
		{name: "one lt three", a: nat.MustFromInt(1), b: nat.MustFromInt(3), want: true},
		{name: "three lt two", a: nat.MustFromInt(3), b: nat.MustFromInt(2), want: false},
		{name: "zero lt zero", a: nat.Z(), b: nat.Z(), want: false},
		{name: "two lt two", a: nat.MustFromInt(2), b: nat.MustFromInt(2), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LessThan(tt.a, tt.b))
		})
	}
}

func TestZeroLessThanAnySuccessor(t *testing.T) {
	for d := 0; d <= 16; d++ {
		n := nat.MustFromInt(d)
		assert.Equal(t, d > 0, LessThan(nat.Z(), n), "Z < depth %d", d)
	}
}

func TestIrreflexivity(t *testing.T) {
	// N < N never holds; the base rule excludes Z < Z and the
	// inductive rule preserves the exclusion upward.
	for d := 0; d <= 12; d++ {
		n := nat.MustFromInt(d)
		assert.False(t, LessThan(n, n), "depth %d", d)
	}
}

func TestMonotonicityUnderSuccessor(t *testing.T) {
	for a := 0; a <= 9; a++ {
		for b := 0; b <= 9; b++ {
			na, nb := nat.MustFromInt(a), nat.MustFromInt(b)
			if !LessThan(na, nb) {
				continue
			}
			assert.True(t, LessThan(nat.S(na), nat.S(nb)),
				"S(%d) < S(%d) must follow from %d < %d", a, b, a, b)
		}
	}
}

func TestGreaterOrEqualRejected(t *testing.T) {
	for a := 0; a <= 9; a++ {
		for b := 0; b <= a; b++ {
			assert.False(t, LessThan(nat.MustFromInt(a), nat.MustFromInt(b)),
				"%d < %d must be false", a, b)
		}
	}
}

func TestLessThanMatchesIntegerOrder(t *testing.T) {
	for a := 0; a <= 12; a++ {
		for b := 0; b <= 12; b++ {
			assert.Equal(t, a < b, LessThan(nat.MustFromInt(a), nat.MustFromInt(b)),
				"%d < %d", a, b)
		}
	}
}

func TestLessThanDeep(t *testing.T) {
	const depth = 200000
	a := nat.MustFromInt(depth)
	b := nat.MustFromInt(depth + 1)
	assert.True(t, LessThan(a, b))
	assert.False(t, LessThan(b, a))
	assert.False(t, LessThan(a, a))
}

func TestDeriveAgreesWithLessThan(t *testing.T) {
	for a := 0; a <= 9; a++ {
		for b := 0; b <= 9; b++ {
			na, nb := nat.MustFromInt(a), nat.MustFromInt(b)
			d, err := Derive(na, nb)
			if LessThan(na, nb) {
				require.NoError(t, err, "%d < %d", a, b)
				require.NotNil(t, d)
			} else {
				require.Error(t, err, "%d < %d", a, b)
				assert.Nil(t, d)
				assert.True(t, errors.Is(err, ErrNotDerivable))
			}
		}
	}
}

func TestDeriveNotDerivableResidual(t *testing.T) {
	tests := []struct {
		name            string
		a, b            int
		residualLesser  string
		residualGreater string
	}{
		{name: "equal zero", a: 0, b: 0, residualLesser: "Z", residualGreater: "Z"},
		{name: "equal two", a: 2, b: 2, residualLesser: "Z", residualGreater: "Z"},
		{name: "three vs two", a: 3, b: 2, residualLesser: "S(Z)", residualGreater: "Z"},
		{name: "one vs zero", a: 1, b: 0, residualLesser: "S(Z)", residualGreater: "Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Derive(nat.MustFromInt(tt.a), nat.MustFromInt(tt.b))
			require.Error(t, err)

			var nde *NotDerivableError
			require.True(t, errors.As(err, &nde))
			assert.Equal(t, nat.Format(nat.MustFromInt(tt.a)), nde.Lesser)
			assert.Equal(t, nat.Format(nat.MustFromInt(tt.b)), nde.Greater)
			assert.Equal(t, tt.residualLesser, nde.ResidualLesser)
			assert.Equal(t, tt.residualGreater, nde.ResidualGreater)
			assert.Contains(t, nde.Error(), "not derivable")
		})
	}
}

func TestQueriesArePure(t *testing.T) {
	a, b := nat.MustFromInt(1), nat.MustFromInt(3)

	first := LessThan(a, b)
	d1, err := Derive(a, b)
	require.NoError(t, err)
	h1, err := d1.Hash()
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		assert.Equal(t, first, LessThan(a, b))

		d2, err := Derive(a, b)
		require.NoError(t, err)
		h2, err := d2.Hash()
		require.NoError(t, err)
		assert.Equal(t, h1, h2, "iteration %d", i)
		assert.Equal(t, d1.Steps, d2.Steps, "iteration %d", i)
	}
}

func TestRuleNames(t *testing.T) {
	assert.Equal(t, Rule("zero_lt_succ"), RuleZeroLtSucc)
	assert.Equal(t, Rule("succ_mono"), RuleSuccMono)
}

func ExampleLessThan() {
	one := nat.S(nat.Z())
	three := nat.S(nat.S(nat.S(nat.Z())))

	fmt.Println(LessThan(one, three))
	fmt.Println(LessThan(three, one))
	// Output:
	// true
	// false
}
