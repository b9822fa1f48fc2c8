package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peanoproof/peano/internal/claims"
)

// ValidationResult holds validation results for a claim suite.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Claims int                      `json:"claims"`
	Errors []claims.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <claims-path>",
		Short: "Validate claim suites without checking them",
		Long: `Compile CUE claim suites and report schema problems without
running any checks.

The path may be a single .cue file or a directory; directories are
loaded as one CUE instance. Errors carry stable E-codes: load errors
in the E0xx range, per-claim validation errors in the E1xx range.

Exit codes:
  0 - all claims valid
  1 - validation errors found
  2 - command error (path missing, no CUE files, build failure)

Examples:
  peano validate examples/claims
  peano validate examples/claims/basics.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	suite, loadErrors := loadSuite(path)

	// A nil suite means nothing compiled at all (missing path, no CUE
	// files, broken build). Those are command-level errors.
	if suite == nil {
		if loadErr, ok := fatalLoadError(loadErrors); ok {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputValidateError(formatter, claims.ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Compiled %d claim(s) from %s", len(suite.Claims), path)
	for _, claim := range suite.Claims {
		formatter.VerboseLog("Validating claim: %s", claim.Name)
	}

	// Per-claim compile errors plus semantic validation, collected
	// rather than fail-fast.
	validationErrors := toValidationErrors(loadErrors)
	validationErrors = append(validationErrors, claims.Validate(suite)...)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, suite, validationErrors)
	}

	return outputValidateSuccess(formatter, suite)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, suite *claims.Suite) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Claims: len(suite.Claims)})
	}

	fmt.Fprintf(formatter.Writer, "✓ All claims valid (%d claim(s))\n", len(suite.Claims))
	return nil
}

// outputValidateError outputs a single load-stage error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Load failures are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs collected validation errors.
func outputValidationErrors(formatter *OutputFormatter, suite *claims.Suite, errs []claims.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Claims: len(suite.Claims),
			Errors: errs,
		}

		if err := encodeResponse(formatter, CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, err.Field, err.Message)
	}
	fmt.Fprintln(formatter.Writer)

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
