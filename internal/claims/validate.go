package claims

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation error codes (E100-E199).
const (
	ErrUnsupportedType  = "E100" // unsupported type for validation
	ErrDescriptionEmpty = "E101" // description required
	ErrTermMissing      = "E102" // lesser/greater term absent
	ErrInvalidExpect    = "E103" // expect outside holds/rejected
	ErrDuplicateClaim   = "E104" // duplicate claim name in a suite
	ErrInvalidClaimName = "E105" // claim name not a valid identifier
	ErrMalformedTerm    = "E106" // term failed to parse
)

// claimNamePattern constrains claim names to snake_case identifiers.
// Names end up in golden files, ledger rows, and CLI output, so they
// must be stable and shell-safe.
var claimNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidationError represents a semantic validation error on a
// compiled claim or suite.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled claims against semantic rules. It returns
// all errors found rather than failing fast. Suites additionally get
// cross-claim checks (duplicate names).
func Validate(v any) []ValidationError {
	switch val := v.(type) {
	case *Suite:
		return validateSuite(val)
	case Suite:
		return validateSuite(&val)
	case *Claim:
		return validateClaim(val, "")
	case Claim:
		return validateClaim(&val, "")
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type: %T", v),
			Code:    ErrUnsupportedType,
		}}
	}
}

func validateSuite(s *Suite) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool, len(s.Claims))
	for i := range s.Claims {
		c := &s.Claims[i]
		prefix := fmt.Sprintf("claim.%s", c.Name)
		if c.Name == "" {
			prefix = fmt.Sprintf("claim[%d]", i)
		}

		if seen[c.Name] && c.Name != "" {
			errs = append(errs, ValidationError{
				Field:   prefix,
				Message: fmt.Sprintf("duplicate claim name %q", c.Name),
				Code:    ErrDuplicateClaim,
			})
		}
		seen[c.Name] = true

		errs = append(errs, validateClaim(c, prefix)...)
	}

	return errs
}

func validateClaim(c *Claim, prefix string) []ValidationError {
	var errs []ValidationError

	field := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}

	if !claimNamePattern.MatchString(c.Name) {
		errs = append(errs, ValidationError{
			Field:   field("name"),
			Message: fmt.Sprintf("claim name %q must match %s", c.Name, claimNamePattern.String()),
			Code:    ErrInvalidClaimName,
		})
	}

	if strings.TrimSpace(c.Description) == "" {
		errs = append(errs, ValidationError{
			Field:   field("description"),
			Message: "description is required and must be non-empty",
			Code:    ErrDescriptionEmpty,
		})
	}

	if c.Lesser == nil {
		errs = append(errs, ValidationError{
			Field:   field("lesser"),
			Message: "lesser term is missing",
			Code:    ErrTermMissing,
		})
	}
	if c.Greater == nil {
		errs = append(errs, ValidationError{
			Field:   field("greater"),
			Message: "greater term is missing",
			Code:    ErrTermMissing,
		})
	}

	if c.Expect != ExpectHolds && c.Expect != ExpectRejected {
		errs = append(errs, ValidationError{
			Field:   field("expect"),
			Message: fmt.Sprintf("expect must be %q or %q, got %q", ExpectHolds, ExpectRejected, c.Expect),
			Code:    ErrInvalidExpect,
		})
	}

	return errs
}
