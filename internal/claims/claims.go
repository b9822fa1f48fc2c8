// Package claims compiles declarative claim suites from CUE into
// checkable form. A claim names a pair of naturals and the expected
// outcome of the less-than check:
//
//	claim: one_lt_three: {
//	    description: "one is strictly below three"
//	    lesser:      "S(Z)"
//	    greater:     3
//	    expect:      "holds"
//	}
//
// Terms may be written in successor notation or as non-negative
// integers. Suite order is source declaration order, which is what
// makes run provenance reproducible.
package claims

import (
	"fmt"

	"github.com/peanoproof/peano/internal/canon"
	"github.com/peanoproof/peano/nat"
)

// Expectation is the declared outcome of a claim.
type Expectation string

const (
	// ExpectHolds declares that the relation is derivable.
	ExpectHolds Expectation = "holds"
	// ExpectRejected declares that no derivation exists.
	ExpectRejected Expectation = "rejected"
)

// Claim is one compiled claim: a named pair plus its expectation.
type Claim struct {
	Name        string
	Description string
	Lesser      nat.Nat
	Greater     nat.Nat
	Expect      Expectation
}

// Suite is an ordered collection of claims. Order follows source
// declaration order.
type Suite struct {
	Claims []Claim
	Source string
}

// Merge concatenates suites in argument order into a new suite.
// Duplicate claim names across the inputs are caught by Validate,
// not here.
func Merge(suites ...*Suite) *Suite {
	merged := &Suite{}
	for _, s := range suites {
		if s == nil {
			continue
		}
		merged.Claims = append(merged.Claims, s.Claims...)
		if merged.Source == "" {
			merged.Source = s.Source
		}
	}
	return merged
}

// Hash computes the content-addressed identity of the suite: the
// domain-separated hash of the canonical JSON of every claim in
// order. Recorded on runs so replay can prove it verified the same
// suite.
func (s *Suite) Hash() (string, error) {
	list := make([]any, len(s.Claims))
	for i, c := range s.Claims {
		list[i] = map[string]any{
			"name":        c.Name,
			"description": c.Description,
			"lesser":      nat.Format(c.Lesser),
			"greater":     nat.Format(c.Greater),
			"expect":      string(c.Expect),
		}
	}

	payload, err := canon.MarshalCanonical(map[string]any{"claims": list})
	if err != nil {
		return "", fmt.Errorf("suite hash: %w", err)
	}

	return canon.HashWithDomain(canon.DomainSuite, payload), nil
}
