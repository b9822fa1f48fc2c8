// Package datalog answers less-than queries by bottom-up Datalog
// evaluation over the two derivation rules. It implements the same
// decision procedure as the order package but by a different route,
// which is what makes it useful as a differential backend: the two
// engines share no code beyond the Nat type, so agreement between
// them is evidence rather than tautology.
package datalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"github.com/peanoproof/peano/nat"
)

// Version is recorded in run headers produced with this backend.
const Version = "0.1.0"

// program encodes naturals as depths and the order as an IDB
// predicate. The zero(0) and succ(0, 1) anchor facts keep every
// predicate known to the analyzer; query-specific succ facts are
// seeded into the store at decision time, which is sound because
// Datalog evaluation is monotone in its fact base.
const program = `
zero(0).
succ(0, 1).

lt(X, S) :- zero(X), succ(P, S).
lt(SA, SB) :- succ(A, SA), succ(B, SB), lt(A, B).
`

// Engine is a runner backend that decides a < b by evaluating the
// rule program to fixpoint over a fact base just large enough to
// mention both operands. Parse and analysis happen once, in New;
// each Decide call evaluates against a fresh store so queries never
// observe one another's facts.
type Engine struct {
	mu   sync.Mutex
	info *analysis.ProgramInfo
}

// New parses and analyzes the rule program.
func New() (*Engine, error) {
	unit, err := parse.Unit(strings.NewReader(program))
	if err != nil {
		return nil, fmt.Errorf("datalog: parse program: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("datalog: analyze program: %w", err)
	}
	return &Engine{info: info}, nil
}

// Name implements runner.Backend.
func (e *Engine) Name() string { return "datalog" }

// Version implements runner.Backend.
func (e *Engine) Version() string { return Version }

// Decide reports whether lesser < greater holds under the rule
// program. The fact base is seeded with succ(i, i+1) for every i
// below the larger operand's depth, so the fixpoint contains exactly
// the lt pairs over naturals up to that bound.
func (e *Engine) Decide(ctx context.Context, lesser, greater nat.Nat) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	da := int64(nat.Depth(lesser))
	db := int64(nat.Depth(greater))
	bound := da
	if db > bound {
		bound = db
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	store := factstore.NewSimpleInMemoryStore()
	for i := int64(0); i < bound; i++ {
		store.Add(ast.NewAtom("succ", ast.Number(i), ast.Number(i+1)))
	}
	if _, err := engine.EvalProgramWithStats(e.info, store); err != nil {
		return false, fmt.Errorf("datalog: evaluate lt(%d, %d): %w", da, db, err)
	}

	return store.Contains(ast.NewAtom("lt", ast.Number(da), ast.Number(db))), nil
}
