// Package order decides the strict less-than relation over Peano
// naturals and produces derivations as evidence.
//
// The relation is defined by exactly two rules:
//
//   - base: Z < N for any non-zero N
//   - inductive: S(A) < S(B) whenever A < B
//
// Deciding A < B peels one successor layer from each side at a time
// while both sides remain non-zero. If the left side reaches Z while
// the right side is still a successor, the base rule anchors the
// chain and the derivation succeeds. If both sides reach Z together,
// or the right side reaches Z first, no rule applies and the pair is
// not derivable. Each peel strictly shrinks the pair, so the search
// always terminates.
//
// Absence of a derivation is an expected outcome, not a fault:
// LessThan reports it as false, Derive as *NotDerivableError.
package order

import (
	"errors"
	"fmt"

	"github.com/peanoproof/peano/nat"
)

// Rule identifies one of the two derivation rules.
type Rule string

const (
	// RuleZeroLtSucc is the base rule: Z < N for any non-zero N.
	// It anchors every derivation and excludes Z < Z.
	RuleZeroLtSucc Rule = "zero_lt_succ"

	// RuleSuccMono is the inductive rule: S(A) < S(B) whenever
	// A < B. It only ever applies on top of an existing derivation
	// for the smaller pair.
	RuleSuccMono Rule = "succ_mono"
)

// ErrNotDerivable is the prover's single failure kind: no rule chain
// connects the queried pair to the base case.
var ErrNotDerivable = errors.New("relation not derivable")

// NotDerivableError reports a failed derivation for a concrete pair.
// Residual holds the pair at which the peel stopped: (Z, Z) for equal
// inputs, or a non-zero left with Z on the right when the left side
// is at least as large. It unwraps to ErrNotDerivable.
type NotDerivableError struct {
	Lesser          string
	Greater         string
	ResidualLesser  string
	ResidualGreater string
}

// Error implements the error interface.
func (e *NotDerivableError) Error() string {
	return fmt.Sprintf("%s < %s: relation not derivable (stuck at %s < %s)",
		e.Lesser, e.Greater, e.ResidualLesser, e.ResidualGreater)
}

// Unwrap lets errors.Is match ErrNotDerivable.
func (e *NotDerivableError) Unwrap() error { return ErrNotDerivable }

// LessThan reports whether a < b under the two rules. It is the
// boolean form of Derive: true exactly when a derivation exists.
// Pure and total; identical inputs always produce identical results.
func LessThan(a, b nat.Nat) bool {
	for {
		sa, aok := a.(nat.Succ)
		sb, bok := b.(nat.Succ)
		if !aok {
			// Left side reached Z: the base rule applies iff
			// the right side is still non-zero.
			return bok
		}
		if !bok {
			// Right side reached Z first; left is non-zero.
			return false
		}
		a, b = sa.Pred, sb.Pred
	}
}

// Derive attempts to build the derivation for a < b. On success it
// returns the full chain, base rule first. When no chain exists it
// returns a *NotDerivableError carrying the residual pair.
func Derive(a, b nat.Nat) (*Derivation, error) {
	// Peel one successor from each side while both are non-zero,
	// remembering each peeled pair so the chain can be emitted
	// base-first once the anchor is reached.
	type pair struct {
		lesser, greater nat.Nat
	}
	var peeled []pair

	la, gr := a, b
	for {
		sa, aok := la.(nat.Succ)
		sb, bok := gr.(nat.Succ)
		if !aok || !bok {
			break
		}
		peeled = append(peeled, pair{lesser: la, greater: gr})
		la, gr = sa.Pred, sb.Pred
	}

	if !nat.IsZero(la) || !nat.NonZero(gr) {
		return nil, &NotDerivableError{
			Lesser:          nat.Format(a),
			Greater:         nat.Format(b),
			ResidualLesser:  nat.Format(la),
			ResidualGreater: nat.Format(gr),
		}
	}

	steps := make([]Step, 0, len(peeled)+1)
	steps = append(steps, Step{
		Rule:    RuleZeroLtSucc,
		Lesser:  nat.Format(la),
		Greater: nat.Format(gr),
	})
	for i := len(peeled) - 1; i >= 0; i-- {
		steps = append(steps, Step{
			Rule:    RuleSuccMono,
			Lesser:  nat.Format(peeled[i].lesser),
			Greater: nat.Format(peeled[i].greater),
		})
	}

	return &Derivation{
		Lesser:  a,
		Greater: b,
		Steps:   steps,
	}, nil
}
