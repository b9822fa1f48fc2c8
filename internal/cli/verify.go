package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/peanoproof/peano/internal/claims"
	"github.com/peanoproof/peano/internal/datalog"
	"github.com/peanoproof/peano/internal/ledger"
	"github.com/peanoproof/peano/internal/runner"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
	Engine   string
	RunToken string
}

// VerifyCheck is one claim's outcome in the verify report.
type VerifyCheck struct {
	Claim          string `json:"claim"`
	Lesser         string `json:"lesser"`
	Greater        string `json:"greater"`
	Outcome        string `json:"outcome"`
	Expect         string `json:"expect"`
	Pass           bool   `json:"pass"`
	Seq            int64  `json:"seq"`
	StepCount      int64  `json:"step_count"`
	DerivationHash string `json:"derivation_hash,omitempty"`
	ID             string `json:"id"`
}

// VerifyResult holds the overall verify report.
type VerifyResult struct {
	RunToken      string        `json:"run_token"`
	Engine        string        `json:"engine"`
	EngineVersion string        `json:"engine_version"`
	SuiteHash     string        `json:"suite_hash"`
	SuiteSource   string        `json:"suite_source"`
	Passed        int           `json:"passed"`
	Failed        int           `json:"failed"`
	Checks        []VerifyCheck `json:"checks"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <claims-path>",
		Short: "Check a claim suite against its expectations",
		Long: `Compile a claim suite and check every claim against its declared
expectation.

Each claim is decided by the selected engine and independently
re-derived by the native prover; any disagreement between the two is
a divergence and aborts the run. With --db, every check is recorded
in the provenance ledger for later replay.

Exit codes:
  0 - every claim landed on its expectation
  1 - failed expectations or engine divergence
  2 - command error (bad path, invalid suite, unknown engine)

Examples:
  peano verify examples/claims
  peano verify examples/claims --engine datalog
  peano verify examples/claims --db ./peano.db --run nightly-01`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite ledger (optional; omit for no persistence)")
	cmd.Flags().StringVar(&opts.Engine, "engine", "native", "decision engine (native|datalog)")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "fixed run token (default: generated UUIDv7)")

	return cmd
}

func runVerify(opts *VerifyOptions, path string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Compile and validate the suite before any checking.
	suite, loadErrors := loadSuite(path)
	if suite == nil {
		return WrapExitError(ExitCommandError, "failed to load claims", loadErrors[0])
	}
	if errs := toValidationErrors(loadErrors); len(errs) > 0 {
		return WrapExitError(ExitCommandError, "suite does not compile; run peano validate", errs[0])
	}
	if errs := claims.Validate(suite); len(errs) > 0 {
		return WrapExitError(ExitCommandError, "suite is invalid; run peano validate", errs[0])
	}
	slog.Info("suite compiled", "source", suite.Source, "claims", len(suite.Claims))

	backend, err := selectBackend(opts.Engine)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid engine", err)
	}

	runnerOpts := []runner.Option{runner.WithBackend(backend)}

	if opts.Database != "" {
		slog.Info("opening ledger", "path", opts.Database)
		led, err := ledger.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open ledger", err)
		}
		defer func() {
			if closeErr := led.Close(); closeErr != nil {
				slog.Error("error closing ledger", "error", closeErr)
			}
		}()
		runnerOpts = append(runnerOpts, runner.WithLedger(led))
	}

	if opts.RunToken != "" {
		runnerOpts = append(runnerOpts, runner.WithTokenGenerator(runner.NewFixedGenerator(opts.RunToken)))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report, err := runner.New(runnerOpts...).Run(ctx, suite)
	if err != nil {
		var divergence *runner.DivergenceError
		if errors.As(err, &divergence) {
			return outputDivergence(formatter, divergence)
		}
		return WrapExitError(ExitCommandError, "verification run failed", err)
	}

	result := buildVerifyResult(report)

	if opts.Format == "json" {
		return outputVerifyJSON(formatter, result)
	}
	return outputVerifyText(formatter, result, opts.Verbose)
}

// selectBackend maps the --engine flag to a decision backend.
func selectBackend(engine string) (runner.Backend, error) {
	switch engine {
	case "native":
		return runner.Native{}, nil
	case "datalog":
		return datalog.New()
	default:
		return nil, fmt.Errorf("unknown engine %q: must be native or datalog", engine)
	}
}

func buildVerifyResult(report *runner.Report) VerifyResult {
	result := VerifyResult{
		RunToken:      report.RunToken,
		Engine:        report.Engine,
		EngineVersion: report.EngineVersion,
		SuiteHash:     report.SuiteHash,
		SuiteSource:   report.SuiteSource,
		Passed:        report.Passed,
		Failed:        report.Failed,
		Checks:        make([]VerifyCheck, 0, len(report.Results)),
	}

	for _, res := range report.Results {
		result.Checks = append(result.Checks, VerifyCheck{
			Claim:          res.Claim,
			Lesser:         res.Lesser,
			Greater:        res.Greater,
			Outcome:        string(res.Outcome),
			Expect:         string(res.Expect),
			Pass:           res.Pass,
			Seq:            res.Seq,
			StepCount:      res.StepCount,
			DerivationHash: res.DerivationHash,
			ID:             res.ID,
		})
	}

	return result
}

// outputDivergence reports an engine disagreement. Divergence aborts
// the run, so there is no per-claim report to show.
func outputDivergence(formatter *OutputFormatter, divergence *runner.DivergenceError) error {
	if formatter.Format == "json" {
		if err := encodeResponse(formatter, CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    "E_DIVERGENCE",
				Message: divergence.Error(),
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "engine divergence")
	}

	fmt.Fprintf(formatter.Writer, "✗ Divergence on claim %s: %s < %s\n",
		divergence.Claim, divergence.Lesser, divergence.Greater)
	fmt.Fprintf(formatter.Writer, "  backend %s decided %v, native derivation says %v\n",
		divergence.Backend, divergence.BackendHolds, divergence.NativeHolds)
	return NewExitError(ExitFailure, "engine divergence")
}

// outputVerifyJSON outputs the verify result as JSON.
func outputVerifyJSON(formatter *OutputFormatter, result VerifyResult) error {
	response := CLIResponse{
		Status:   "ok",
		Data:     result,
		RunToken: result.RunToken,
	}

	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_VERIFY",
			Message: fmt.Sprintf("%d claim(s) failed verification", result.Failed),
		}
	}

	if err := encodeResponse(formatter, response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d claim(s) failed verification", result.Failed))
	}
	return nil
}

// outputVerifyText outputs the verify result as text.
func outputVerifyText(formatter *OutputFormatter, result VerifyResult, verbose bool) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Verify: %s (%d claim(s))\n", result.SuiteSource, len(result.Checks))
	fmt.Fprintf(w, "Run: %s [%s %s]\n", result.RunToken, result.Engine, result.EngineVersion)
	fmt.Fprintln(w)

	for _, check := range result.Checks {
		status := "✓"
		if !check.Pass {
			status = "✗"
		}

		fmt.Fprintf(w, "%s %s: %s < %s [%s]", status, check.Claim, check.Lesser, check.Greater, check.Outcome)
		if !check.Pass {
			fmt.Fprintf(w, " (expected %s)", check.Expect)
		}
		fmt.Fprintln(w)

		if verbose {
			fmt.Fprintf(w, "  seq: %d, steps: %d, id: %s\n", check.Seq, check.StepCount, truncateID(check.ID))
			if check.DerivationHash != "" {
				fmt.Fprintf(w, "  derivation: %s\n", truncateID(check.DerivationHash))
			}
		}
	}
	fmt.Fprintln(w)

	if result.Failed == 0 {
		fmt.Fprintf(w, "✓ All %d claim(s) verified\n", result.Passed)
		return nil
	}

	fmt.Fprintf(w, "✗ %d of %d claim(s) failed\n", result.Failed, result.Passed+result.Failed)
	return NewExitError(ExitFailure, fmt.Sprintf("%d claim(s) failed verification", result.Failed))
}
