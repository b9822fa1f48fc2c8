package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peanoproof/peano/internal/canon"
	"github.com/peanoproof/peano/nat"
	"github.com/peanoproof/peano/order"
)

// TraceReport holds the full derivation for a pair. Derivation carries
// the exact canonical JSON bytes the derivation hash covers, so a
// reader can re-hash the payload and compare.
type TraceReport struct {
	Lesser         string          `json:"lesser"`
	Greater        string          `json:"greater"`
	Holds          bool            `json:"holds"`
	StepCount      int             `json:"step_count"`
	DerivationHash string          `json:"derivation_hash,omitempty"`
	Derivation     json.RawMessage `json:"derivation,omitempty"`

	// Residual pair where the peel got stuck, present on rejection.
	ResidualLesser  string `json:"residual_lesser,omitempty"`
	ResidualGreater string `json:"residual_greater,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <lesser> <greater>",
		Short: "Derive lesser < greater and print the full rule chain",
		Long: `Derive the relation and print the evidence.

Text output renders the derivation as a tree with the conclusion at
the root and the base rule at the deepest leaf. JSON output carries
the canonical derivation payload plus its content hash.

A rejected pair prints the residual pair where the simultaneous peel
got stuck and exits 1.

Examples:
  peano trace "S(Z)" "S(S(S(Z)))"
  peano trace 2 5 --format json
  peano trace 4 2`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runTrace(opts *RootOptions, lesserArg, greaterArg string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	lesser, greater, err := parseTermPair(formatter, lesserArg, greaterArg)
	if err != nil {
		return err
	}

	deriv, err := order.Derive(lesser, greater)
	if err != nil {
		var notDerivable *order.NotDerivableError
		if errors.As(err, &notDerivable) {
			return outputTraceRejected(formatter, notDerivable)
		}
		return WrapExitError(ExitCommandError, "derivation failed", err)
	}

	report := TraceReport{
		Lesser:    nat.Format(lesser),
		Greater:   nat.Format(greater),
		Holds:     true,
		StepCount: len(deriv.Steps),
	}
	report.DerivationHash, err = deriv.Hash()
	if err != nil {
		return WrapExitError(ExitCommandError, "hashing derivation", err)
	}
	report.Derivation, err = canonicalDerivation(deriv)
	if err != nil {
		return WrapExitError(ExitCommandError, "encoding derivation", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	return outputTraceText(formatter, deriv, report)
}

// canonicalDerivation produces the canonical JSON payload hashed by
// Derivation.Hash: sorted keys, successor-notation endpoints, steps
// base-first.
func canonicalDerivation(d *order.Derivation) (json.RawMessage, error) {
	steps := make([]any, len(d.Steps))
	for i, s := range d.Steps {
		steps[i] = map[string]any{
			"rule":    string(s.Rule),
			"lesser":  s.Lesser,
			"greater": s.Greater,
		}
	}
	lesser, greater := d.Conclusion()
	return canon.MarshalCanonical(map[string]any{
		"lesser":  lesser,
		"greater": greater,
		"steps":   steps,
	})
}

func outputTraceText(formatter *OutputFormatter, deriv *order.Derivation, report TraceReport) error {
	w := formatter.Writer

	fmt.Fprintf(w, "✓ %s < %s\n", report.Lesser, report.Greater)
	fmt.Fprintln(w)
	fmt.Fprint(w, deriv.RenderText())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "steps: %d\n", report.StepCount)
	fmt.Fprintf(w, "hash:  %s\n", truncateID(report.DerivationHash))

	if formatter.Verbose {
		fmt.Fprintf(w, "full hash: %s\n", report.DerivationHash)
	}
	return nil
}

func outputTraceRejected(formatter *OutputFormatter, notDerivable *order.NotDerivableError) error {
	report := TraceReport{
		Lesser:          notDerivable.Lesser,
		Greater:         notDerivable.Greater,
		Holds:           false,
		ResidualLesser:  notDerivable.ResidualLesser,
		ResidualGreater: notDerivable.ResidualGreater,
	}

	if formatter.Format == "json" {
		if err := encodeResponse(formatter, CLIResponse{
			Status: "error",
			Data:   report,
			Error: &CLIError{
				Code:    "E_REJECTED",
				Message: notDerivable.Error(),
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "relation not derivable")
	}

	fmt.Fprintf(formatter.Writer, "✗ %s < %s: not derivable\n", report.Lesser, report.Greater)
	fmt.Fprintf(formatter.Writer, "  stuck at %s < %s\n", report.ResidualLesser, report.ResidualGreater)
	return NewExitError(ExitFailure, "relation not derivable")
}

// truncateID truncates a long hash or ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
