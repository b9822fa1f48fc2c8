// Package nat defines the inductive natural-number universe: a sealed
// sum type with exactly two variants, Zero and Succ. A value is a
// natural if and only if it is Zero or Succ applied to a natural, so
// every Nat reachable through this package's constructors is
// well-formed by construction.
//
// Depth is the bridge to ordinary integers: Succ(Succ(Zero)) has
// depth 2 and denotes 2. All traversals are iterative, so arbitrarily
// deep naturals never exhaust the call stack.
package nat

import (
	"fmt"
	"strings"
)

// Nat is a sealed interface over the two natural-number variants.
// Only Zero and Succ implement it. The nil interface value is not a
// natural; obtain values through Z, S, FromInt, or Parse.
type Nat interface {
	nat() // Sealed - only Zero and Succ implement it
}

// Zero is the base natural number. It has no substructure.
type Zero struct{}

func (Zero) nat() {}

// String returns the canonical notation for zero.
func (Zero) String() string { return "Z" }

// Succ is the successor variant: Succ{Pred: n} denotes n + 1.
// Pred must itself be a valid Nat; the sealed interface guarantees
// this for every value built through the exposed constructors.
type Succ struct {
	Pred Nat
}

func (Succ) nat() {}

// String returns the canonical successor notation, e.g. "S(S(Z))".
func (s Succ) String() string { return Format(s) }

// Z returns the Zero natural.
func Z() Nat { return Zero{} }

// S wraps n in one successor layer, denoting n + 1.
func S(n Nat) Nat { return Succ{Pred: n} }

// FromInt builds the natural of depth n, that is, S applied n times
// to Z. Negative values have no natural-number representation.
func FromInt(n int) (Nat, error) {
	if n < 0 {
		return nil, fmt.Errorf("nat: no natural number for %d", n)
	}
	v := Nat(Zero{})
	for i := 0; i < n; i++ {
		v = Succ{Pred: v}
	}
	return v, nil
}

// MustFromInt is FromInt for values known to be non-negative.
// It panics on error.
func MustFromInt(n int) Nat {
	v, err := FromInt(n)
	if err != nil {
		panic(err)
	}
	return v
}

// Depth returns the number of successor layers above Zero, which is
// exactly the integer n denotes.
func Depth(n Nat) int {
	d := 0
	for {
		s, ok := n.(Succ)
		if !ok {
			return d
		}
		d++
		n = s.Pred
	}
}

// IsZero reports whether n is the Zero variant.
func IsZero(n Nat) bool {
	_, ok := n.(Zero)
	return ok
}

// NonZero reports whether n is a successor. It holds for every Succ
// and never for Zero; within the sealed universe the two
// classifications partition all values.
func NonZero(n Nat) bool {
	_, ok := n.(Succ)
	return ok
}

// Equal reports structural equality. Two naturals are equal exactly
// when they have the same depth.
func Equal(a, b Nat) bool {
	for {
		sa, aok := a.(Succ)
		sb, bok := b.(Succ)
		if aok != bok {
			return false
		}
		if !aok {
			return true
		}
		a, b = sa.Pred, sb.Pred
	}
}

// Format renders n in canonical successor notation: "Z", "S(Z)",
// "S(S(Z))", and so on. Parse accepts everything Format produces.
func Format(n Nat) string {
	d := Depth(n)
	if d == 0 {
		return "Z"
	}
	var b strings.Builder
	b.Grow(3*d + 1)
	for i := 0; i < d; i++ {
		b.WriteString("S(")
	}
	b.WriteByte('Z')
	for i := 0; i < d; i++ {
		b.WriteByte(')')
	}
	return b.String()
}
