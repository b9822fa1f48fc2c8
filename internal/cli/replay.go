package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peanoproof/peano/internal/ledger"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunToken string // optional - specific run only
}

// ReplayDivergence is one field-level disagreement between a stored
// check and its re-derivation.
type ReplayDivergence struct {
	CheckID  string `json:"check_id"`
	Claim    string `json:"claim"`
	Seq      int64  `json:"seq"`
	Field    string `json:"field"`
	Stored   string `json:"stored"`
	Computed string `json:"computed"`
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunToken      string             `json:"run_token"`
	Checks        int                `json:"checks"`
	Divergences   []ReplayDivergence `json:"divergences,omitempty"`
	Deterministic bool               `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-derive recorded runs and verify nothing drifted",
		Long: `Replay recorded runs against the native prover.

Every stored check is re-parsed and re-derived from scratch; outcome,
step chain, derivation hash, and content-addressed ID must all match
what the ledger recorded. A divergence means history no longer
reproduces, which is the one thing this tool exists to rule out.

Exit codes:
  0 - every replayed run matches its recording
  1 - divergences detected
  2 - command error (database not found, unknown run token)

Examples:
  peano replay --db ./peano.db
  peano replay --db ./peano.db --run nightly-01
  peano replay --db ./peano.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "replay a specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	led, err := ledger.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open ledger", err)
	}
	defer led.Close()

	var reports []*ledger.ReplayReport
	if opts.RunToken != "" {
		report, err := led.Replay(ctx, opts.RunToken)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", opts.RunToken), err)
		}
		reports = []*ledger.ReplayReport{report}
	} else {
		reports, err = led.ReplayAll(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay runs", err)
		}
	}

	if len(reports) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(cmd, ReplayResult{
				Runs:             []ReplayRunResult{},
				TotalRuns:        0,
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found in ledger.")
		return nil
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(reports)),
		TotalRuns:        len(reports),
		AllDeterministic: true,
	}

	for _, report := range reports {
		runResult := ReplayRunResult{
			RunToken:      report.RunToken,
			Checks:        report.Checks,
			Deterministic: report.Clean(),
		}
		for _, d := range report.Divergences {
			runResult.Divergences = append(runResult.Divergences, ReplayDivergence{
				CheckID:  d.CheckID,
				Claim:    d.Claim,
				Seq:      d.Seq,
				Field:    d.Field,
				Stored:   d.Stored,
				Computed: d.Computed,
			})
		}

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DIVERGENCE",
			Message: "replay diverged from recorded history",
		}
	}

	formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	if err := encodeResponse(formatter, response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay diverged from recorded history")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Run: %s\n", status, run.RunToken)
		fmt.Fprintf(w, "  Checks: %d, divergences: %d\n", run.Checks, len(run.Divergences))

		if verbose || !run.Deterministic {
			for _, d := range run.Divergences {
				fmt.Fprintf(w, "  - seq %d %s (%s): stored %s, computed %s\n",
					d.Seq, d.Claim, d.Field, truncateID(d.Stored), truncateID(d.Computed))
			}
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs replayed deterministically")
		return nil
	}

	fmt.Fprintln(w, "✗ Replay diverged from recorded history")
	return NewExitError(ExitFailure, "replay diverged from recorded history")
}
