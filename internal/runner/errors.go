package runner

import (
	"errors"
	"fmt"
)

// ErrEmptySuite is returned by Run when the suite has no claims.
var ErrEmptySuite = errors.New("runner: suite has no claims")

// DivergenceError reports that the deciding backend and the native
// prover disagreed on a pair. This is a run-aborting fault: provenance
// recorded under a disputed verdict would be worthless.
type DivergenceError struct {
	Claim        string
	Lesser       string
	Greater      string
	Backend      string
	BackendHolds bool
	NativeHolds  bool
}

// Error implements the error interface.
func (e *DivergenceError) Error() string {
	return fmt.Sprintf("backend divergence on claim %q (%s < %s): %s says %s, native says %s",
		e.Claim, e.Lesser, e.Greater, e.Backend,
		verdict(e.BackendHolds), verdict(e.NativeHolds))
}

// IsDivergence reports whether err is (or wraps) a DivergenceError.
func IsDivergence(err error) bool {
	var de *DivergenceError
	return errors.As(err, &de)
}

func verdict(holds bool) string {
	if holds {
		return "holds"
	}
	return "rejected"
}
