package order

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/peanoproof/peano/internal/canon"
	"github.com/peanoproof/peano/nat"
)

// Step is a single rule application. Lesser and Greater are the pair
// the step concludes, in canonical successor notation.
type Step struct {
	Rule    Rule   `json:"rule"`
	Lesser  string `json:"lesser"`
	Greater string `json:"greater"`
}

// Derivation is evidence that Lesser < Greater. Steps are ordered
// base-first: Steps[0] is always the base rule, every later step is
// one application of the inductive rule, and the final step concludes
// the queried pair. A valid derivation for a pair of depths (a, b)
// has exactly a+1 steps.
type Derivation struct {
	Lesser  nat.Nat
	Greater nat.Nat
	Steps   []Step
}

// Conclusion returns the proved pair in canonical successor notation.
func (d *Derivation) Conclusion() (lesser, greater string) {
	return nat.Format(d.Lesser), nat.Format(d.Greater)
}

// RenderText renders the derivation as a tree with the conclusion at
// the root and each premise nested one level below, ending at the
// base rule.
func (d *Derivation) RenderText() string {
	var b strings.Builder
	for i := len(d.Steps) - 1; i >= 0; i-- {
		step := d.Steps[i]
		level := len(d.Steps) - 1 - i
		switch {
		case level == 0:
			fmt.Fprintf(&b, "%s < %s  [%s]\n", step.Lesser, step.Greater, step.Rule)
		default:
			indent := strings.Repeat("    ", level-1)
			fmt.Fprintf(&b, "%s└── %s < %s  [%s]\n", indent, step.Lesser, step.Greater, step.Rule)
		}
	}
	return b.String()
}

type derivationJSON struct {
	Lesser  string `json:"lesser"`
	Greater string `json:"greater"`
	Steps   []Step `json:"steps"`
}

// MarshalJSON renders both endpoints in successor notation. This is
// display JSON; identity hashing goes through Hash.
func (d *Derivation) MarshalJSON() ([]byte, error) {
	return json.Marshal(derivationJSON{
		Lesser:  nat.Format(d.Lesser),
		Greater: nat.Format(d.Greater),
		Steps:   d.Steps,
	})
}

// Hash computes the content-addressed identity of the derivation:
// domain-separated SHA-256 over the canonical JSON of the conclusion
// and the full step chain. Two derivations hash equal exactly when
// they prove the same pair through the same chain.
func (d *Derivation) Hash() (string, error) {
	steps := make([]any, len(d.Steps))
	for i, s := range d.Steps {
		steps[i] = map[string]any{
			"rule":    string(s.Rule),
			"lesser":  s.Lesser,
			"greater": s.Greater,
		}
	}

	payload, err := canon.MarshalCanonical(map[string]any{
		"lesser":  nat.Format(d.Lesser),
		"greater": nat.Format(d.Greater),
		"steps":   steps,
	})
	if err != nil {
		return "", fmt.Errorf("derivation hash: %w", err)
	}

	return canon.HashWithDomain(canon.DomainDerivation, payload), nil
}
