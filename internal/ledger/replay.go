package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/peanoproof/peano/internal/canon"
	"github.com/peanoproof/peano/nat"
	"github.com/peanoproof/peano/order"
)

// Divergence reports one field where a recomputed check disagrees with
// its stored row. A clean replay produces none.
type Divergence struct {
	CheckID  string `json:"check_id"`
	Claim    string `json:"claim"`
	Seq      int64  `json:"seq"`
	Field    string `json:"field"`
	Stored   string `json:"stored"`
	Computed string `json:"computed"`
}

// String renders the divergence for log and CLI output.
func (d Divergence) String() string {
	return fmt.Sprintf("check %s (claim %q, seq %d): %s stored %q, recomputed %q",
		d.CheckID, d.Claim, d.Seq, d.Field, d.Stored, d.Computed)
}

// ReplayReport summarizes one determinism verification pass over a run.
type ReplayReport struct {
	RunToken    string       `json:"run_token"`
	Checks      int          `json:"checks"`
	Divergences []Divergence `json:"divergences,omitempty"`
}

// Clean reports whether the replay reproduced every stored check exactly.
func (r *ReplayReport) Clean() bool {
	return len(r.Divergences) == 0
}

// Replay re-derives every check of a run from its stored pair and
// compares the result against the recorded rows: outcome, depths, step
// chain, derivation hash, and the content-addressed check ID itself.
//
// Replay never mutates the ledger. Identical rules over identical
// inputs must reproduce the original run exactly; anything that does
// not match is returned as a Divergence rather than an error, because
// a divergent ledger is a finding, not a failure of the replay itself.
func (l *Ledger) Replay(ctx context.Context, runToken string) (*ReplayReport, error) {
	if _, err := l.GetRun(ctx, runToken); err != nil {
		return nil, fmt.Errorf("replay: run %q: %w", runToken, err)
	}

	checks, err := l.ListChecks(ctx, runToken, nil)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	report := &ReplayReport{
		RunToken: runToken,
		Checks:   len(checks),
	}

	for _, check := range checks {
		divs, err := l.replayCheck(ctx, check)
		if err != nil {
			return nil, err
		}
		report.Divergences = append(report.Divergences, divs...)
	}

	return report, nil
}

// replayCheck recomputes a single check and diffs it against its row.
func (l *Ledger) replayCheck(ctx context.Context, check CheckRecord) ([]Divergence, error) {
	lesser, err := nat.Parse(check.Lesser)
	if err != nil {
		return nil, fmt.Errorf("replay check %s: lesser: %w", check.ID, err)
	}
	greater, err := nat.Parse(check.Greater)
	if err != nil {
		return nil, fmt.Errorf("replay check %s: greater: %w", check.ID, err)
	}

	var divs []Divergence
	diverge := func(field, stored, computed string) {
		divs = append(divs, Divergence{
			CheckID:  check.ID,
			Claim:    check.Claim,
			Seq:      check.Seq,
			Field:    field,
			Stored:   stored,
			Computed: computed,
		})
	}

	if d := int64(nat.Depth(lesser)); d != check.LesserDepth {
		diverge("lesser_depth", strconv.FormatInt(check.LesserDepth, 10), strconv.FormatInt(d, 10))
	}
	if d := int64(nat.Depth(greater)); d != check.GreaterDepth {
		diverge("greater_depth", strconv.FormatInt(check.GreaterDepth, 10), strconv.FormatInt(d, 10))
	}

	deriv, derr := order.Derive(lesser, greater)
	outcome := OutcomeHolds
	if derr != nil {
		outcome = OutcomeRejected
	}

	if outcome != check.Outcome {
		// Remaining fields derive from the outcome; comparing them
		// after an outcome flip only repeats the same finding.
		diverge("outcome", string(check.Outcome), string(outcome))
		return divs, nil
	}

	if outcome == OutcomeHolds {
		hash, err := deriv.Hash()
		if err != nil {
			return nil, fmt.Errorf("replay check %s: %w", check.ID, err)
		}
		if hash != check.DerivationHash {
			diverge("derivation_hash", check.DerivationHash, hash)
		}
		if n := int64(len(deriv.Steps)); n != check.StepCount {
			diverge("step_count", strconv.FormatInt(check.StepCount, 10), strconv.FormatInt(n, 10))
		}

		stored, err := l.StepsForCheck(ctx, check.ID)
		if err != nil {
			return nil, fmt.Errorf("replay check %s: %w", check.ID, err)
		}
		if len(stored) != len(deriv.Steps) {
			diverge("steps",
				fmt.Sprintf("%d rows", len(stored)),
				fmt.Sprintf("%d steps", len(deriv.Steps)))
		} else {
			for i, step := range deriv.Steps {
				row := stored[i]
				if row.Rule != string(step.Rule) || row.Lesser != step.Lesser || row.Greater != step.Greater {
					diverge(fmt.Sprintf("step[%d]", i),
						fmt.Sprintf("%s %s < %s", row.Rule, row.Lesser, row.Greater),
						fmt.Sprintf("%s %s < %s", step.Rule, step.Lesser, step.Greater))
				}
			}
		}
	} else {
		// Rejected checks record no derivation.
		if check.DerivationHash != "" {
			diverge("derivation_hash", check.DerivationHash, "")
		}
		if check.StepCount != 0 {
			diverge("step_count", strconv.FormatInt(check.StepCount, 10), "0")
		}
	}

	id, err := canon.CheckID(check.RunToken, check.Claim, check.Lesser, check.Greater, string(outcome), check.Seq)
	if err != nil {
		return nil, fmt.Errorf("replay check %s: %w", check.ID, err)
	}
	if id != check.ID {
		diverge("id", check.ID, id)
	}

	return divs, nil
}

// ReplayAll replays every run in the ledger in token order and returns
// one report per run.
func (l *Ledger) ReplayAll(ctx context.Context) ([]*ReplayReport, error) {
	tokens, err := l.ListRunTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay all: %w", err)
	}

	reports := make([]*ReplayReport, 0, len(tokens))
	for _, token := range tokens {
		report, err := l.Replay(ctx, token)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}
