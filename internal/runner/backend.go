package runner

import (
	"context"

	"github.com/peanoproof/peano/nat"
	"github.com/peanoproof/peano/order"
)

// Backend decides the strict less-than relation for a pair of naturals.
//
// Implementations must be pure: the same pair always yields the same
// verdict. An error return means the backend itself failed (not that
// the relation was rejected) and aborts the run.
//
// Implemented by Native (the structural prover) and by the datalog
// engine in internal/datalog.
type Backend interface {
	// Name identifies the backend in run provenance ("native", "datalog").
	Name() string

	// Version is the backend version recorded on the run row.
	Version() string

	// Decide reports whether lesser < greater.
	Decide(ctx context.Context, lesser, greater nat.Nat) (bool, error)
}

// Native decides with the structural prover. It is the reference
// backend: every other backend is checked against it on each claim.
type Native struct{}

// Name implements Backend.
func (Native) Name() string { return "native" }

// Version implements Backend.
func (Native) Version() string { return EngineVersion }

// Decide implements Backend. It never returns an error: the prover is
// total over well-formed naturals.
func (Native) Decide(_ context.Context, lesser, greater nat.Nat) (bool, error) {
	return order.LessThan(lesser, greater), nil
}
