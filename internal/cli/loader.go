package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/peanoproof/peano/internal/claims"
)

// loadSuite compiles a claim suite from a path, dispatching on whether
// the path is a single CUE file or a directory of them. A nil suite
// means loading failed outright; a non-nil suite may still come with
// per-claim compile errors.
func loadSuite(path string) (*claims.Suite, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&claims.LoadError{
			Code:    claims.ErrCodeNotFound,
			Message: fmt.Sprintf("claims path not found: %s", path),
		}}
	}
	if err != nil {
		return nil, []error{&claims.LoadError{
			Code:    claims.ErrCodeNotFound,
			Message: fmt.Sprintf("error accessing claims path: %v", err),
		}}
	}

	if info.IsDir() {
		return claims.CompileDir(path)
	}
	return claims.CompileFile(path)
}

// toValidationErrors lowers load and compile errors into the same
// E-coded shape the validate command reports, so callers see one
// error vocabulary regardless of which stage tripped.
func toValidationErrors(errs []error) []claims.ValidationError {
	var out []claims.ValidationError
	for _, err := range errs {
		var loadErr *claims.LoadError
		var compileErr *claims.CompileError
		switch {
		case errors.As(err, &loadErr):
			out = append(out, claims.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
			})
		case errors.As(err, &compileErr):
			out = append(out, claims.ValidationError{
				Field:   compileErr.Field,
				Message: compileErr.Message,
				Code:    claims.CodeForField(compileErr.Field),
			})
		default:
			out = append(out, claims.ValidationError{
				Field:   "load",
				Message: err.Error(),
				Code:    claims.ErrCodeGeneric,
			})
		}
	}
	return out
}

// fatalLoadError reports whether the error slice describes a failure
// to produce any suite at all, as opposed to per-claim problems.
func fatalLoadError(errs []error) (*claims.LoadError, bool) {
	if len(errs) == 0 {
		return nil, false
	}
	var loadErr *claims.LoadError
	if errors.As(errs[0], &loadErr) {
		return loadErr, true
	}
	return nil, false
}
