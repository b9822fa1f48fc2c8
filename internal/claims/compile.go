package claims

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/peanoproof/peano/nat"
)

// Load error codes, unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeNoClaims    = "E007" // No claim block in the sources
)

// LoadError is an error raised while locating or building CUE
// sources, before individual claims are compiled.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CompileError is an error raised while lowering a single claim from
// its CUE value. Field names the offending claim field.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CodeForField maps a CompileError field to its stable error code for
// CLI display.
func CodeForField(field string) string {
	switch field {
	case "description":
		return ErrDescriptionEmpty
	case "lesser", "greater":
		return ErrTermMissing
	case "expect":
		return ErrInvalidExpect
	case "lesser.term", "greater.term":
		return ErrMalformedTerm
	default:
		return ErrCodeGeneric
	}
}

// CompileDir loads every CUE file under dir as one instance and
// compiles the claim block. All errors are collected; a partial suite
// is returned alongside them so callers can report as much as
// possible in one pass.
func CompileDir(dir string) (*Suite, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("claims directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing claims directory: %v", err)}}
	}
	if !info.IsDir() {
		return CompileFile(dir)
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	return compileValue(value, dir)
}

// CompileFile compiles the claim block of a single CUE file.
func CompileFile(path string) (*Suite, []error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("claims file not found: %s", path)}}
		}
		return nil, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading %s: %v", path, err)}}
	}
	return CompileString(string(src), path)
}

// CompileString compiles CUE source held in memory. The filename is
// used for error positions only.
func CompileString(src, filename string) (*Suite, []error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}
	return compileValue(value, filename)
}

// compileValue extracts and compiles the claim block from a built
// CUE value. Field iteration preserves source declaration order,
// which fixes the suite's execution order.
func compileValue(value cue.Value, source string) (*Suite, []error) {
	var errs []error
	suite := &Suite{Source: source}

	claimsVal := value.LookupPath(cue.ParsePath("claim"))
	if !claimsVal.Exists() {
		return suite, []error{&LoadError{Code: ErrCodeNoClaims, Message: "no claim block found"}}
	}

	iter, iterErr := claimsVal.Fields()
	if iterErr != nil {
		return suite, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating claims: %v", iterErr)}}
	}

	for iter.Next() {
		claim, compileErr := CompileClaim(iter.Value())
		if compileErr != nil {
			errs = append(errs, compileErr)
			continue
		}
		suite.Claims = append(suite.Claims, *claim)
	}

	if len(suite.Claims) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoClaims, Message: "claim block is empty"})
	}

	return suite, errs
}

// CompileClaim lowers one claim struct from its CUE value. The claim
// name comes from the struct label.
func CompileClaim(v cue.Value) (*Claim, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	claim := &Claim{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		claim.Name = labels[len(labels)-1].String()
	}

	descVal := v.LookupPath(cue.ParsePath("description"))
	if !descVal.Exists() {
		return nil, &CompileError{
			Field:   "description",
			Message: "description is required",
			Pos:     v.Pos(),
		}
	}
	desc, err := descVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	claim.Description = desc

	claim.Lesser, err = parseTerm(v, "lesser")
	if err != nil {
		return nil, err
	}
	claim.Greater, err = parseTerm(v, "greater")
	if err != nil {
		return nil, err
	}

	expectVal := v.LookupPath(cue.ParsePath("expect"))
	if !expectVal.Exists() {
		return nil, &CompileError{
			Field:   "expect",
			Message: "expect is required (holds or rejected)",
			Pos:     v.Pos(),
		}
	}
	expect, err := expectVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	claim.Expect = Expectation(expect)

	return claim, nil
}

// parseTerm reads a natural-number field, accepting an int or a
// successor-notation string.
func parseTerm(v cue.Value, field string) (nat.Nat, error) {
	termVal := v.LookupPath(cue.ParsePath(field))
	if !termVal.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}

	if i, err := termVal.Int64(); err == nil {
		if i < 0 {
			return nil, &CompileError{
				Field:   field + ".term",
				Message: fmt.Sprintf("no natural number for %d", i),
				Pos:     termVal.Pos(),
			}
		}
		return nat.MustFromInt(int(i)), nil
	}

	s, err := termVal.String()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "must be a non-negative int or a successor-notation string",
			Pos:     termVal.Pos(),
		}
	}

	n, err := nat.Parse(s)
	if err != nil {
		return nil, &CompileError{
			Field:   field + ".term",
			Message: err.Error(),
			Pos:     termVal.Pos(),
		}
	}
	return n, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
