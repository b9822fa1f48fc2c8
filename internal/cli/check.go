package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peanoproof/peano/internal/claims"
	"github.com/peanoproof/peano/nat"
	"github.com/peanoproof/peano/order"
)

// CheckReport holds the decision for a single pair.
type CheckReport struct {
	Lesser  string `json:"lesser"`
	Greater string `json:"greater"`
	Holds   bool   `json:"holds"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <lesser> <greater>",
		Short: "Decide whether lesser < greater",
		Long: `Decide whether the first natural is strictly below the second.

Terms may be written in successor notation or as decimal depths:
Z, S(Z), S(S(Z)), or equivalently 0, 1, 2.

Exit codes:
  0 - relation holds
  1 - relation rejected (not derivable)
  2 - command error (malformed term)

Examples:
  peano check "S(Z)" "S(S(Z))"
  peano check 1 2
  peano check 3 1 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, lesserArg, greaterArg string, cmd *cobra.Command) error {
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

	formatter.VerboseLog("checking %s < %s (depths %d, %d)",
		nat.Format(lesser), nat.Format(greater), nat.Depth(lesser), nat.Depth(greater))

	report := CheckReport{
		Lesser:  nat.Format(lesser),
		Greater: nat.Format(greater),
		Holds:   order.LessThan(lesser, greater),
	}

	if formatter.Format == "json" {
		return outputCheckJSON(formatter, report)
	}
	return outputCheckText(formatter, report)
}

// parseTermPair parses both term arguments, reporting the first
// malformed one as a command error.
func parseTermPair(formatter *OutputFormatter, lesserArg, greaterArg string) (lesser, greater nat.Nat, err error) {
	lesser, err = nat.Parse(lesserArg)
	if err != nil {
		_ = formatter.Error(claims.ErrMalformedTerm, err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "invalid lesser term", err)
	}
	greater, err = nat.Parse(greaterArg)
	if err != nil {
		_ = formatter.Error(claims.ErrMalformedTerm, err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "invalid greater term", err)
	}
	return lesser, greater, nil
}

func outputCheckJSON(formatter *OutputFormatter, report CheckReport) error {
	if report.Holds {
		if err := formatter.Success(report); err != nil {
			return err
		}
		return nil
	}

	if err := encodeResponse(formatter, CLIResponse{
		Status: "error",
		Data:   report,
		Error: &CLIError{
			Code:    "E_REJECTED",
			Message: fmt.Sprintf("%s < %s: relation not derivable", report.Lesser, report.Greater),
		},
	}); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "relation not derivable")
}

func outputCheckText(formatter *OutputFormatter, report CheckReport) error {
	if report.Holds {
		fmt.Fprintf(formatter.Writer, "✓ %s < %s\n", report.Lesser, report.Greater)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✗ %s < %s: not derivable\n", report.Lesser, report.Greater)
	return NewExitError(ExitFailure, "relation not derivable")
}
