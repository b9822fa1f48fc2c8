package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/peanoproof/peano/internal/canon"
	"github.com/peanoproof/peano/internal/testutil"
	"github.com/peanoproof/peano/nat"
	"github.com/peanoproof/peano/order"
)

// createTestLedger creates a file-backed ledger in a temp dir.
func createTestLedger(t *testing.T) *Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

// createTestRun creates a run header with minimal required fields.
func createTestRun(token string, startedSeq int64) RunRecord {
	return RunRecord{
		Token:         token,
		Engine:        "native",
		EngineVersion: "0.1.0",
		SuiteHash:     "suite-hash",
		SuiteSource:   "testdata/claims",
		StartedSeq:    startedSeq,
	}
}

// buildCheck derives lesser < greater for real and assembles the
// check row plus its step rows exactly as the runner would.
func buildCheck(t *testing.T, runToken, claim string, lesser, greater int, seq int64) (CheckRecord, []StepRecord) {
	t.Helper()

	ln := nat.MustFromInt(lesser)
	gn := nat.MustFromInt(greater)

	outcome := OutcomeRejected
	hash := ""
	var stepCount int64
	var steps []StepRecord

	if deriv, err := order.Derive(ln, gn); err == nil {
		outcome = OutcomeHolds
		h, err := deriv.Hash()
		if err != nil {
			t.Fatalf("Hash() failed: %v", err)
		}
		hash = h
		stepCount = int64(len(deriv.Steps))
		for i, s := range deriv.Steps {
			steps = append(steps, StepRecord{
				Idx:     int64(i),
				Rule:    string(s.Rule),
				Lesser:  s.Lesser,
				Greater: s.Greater,
			})
		}
	}

	check := CheckRecord{
		ID:             canon.MustCheckID(runToken, claim, nat.Format(ln), nat.Format(gn), string(outcome), seq),
		RunToken:       runToken,
		Seq:            seq,
		Claim:          claim,
		Lesser:         nat.Format(ln),
		Greater:        nat.Format(gn),
		LesserDepth:    int64(lesser),
		GreaterDepth:   int64(greater),
		Outcome:        outcome,
		StepCount:      stepCount,
		DerivationHash: hash,
	}
	return check, steps
}

// seedRun writes a run with the given (claim, lesser, greater) triples
// and returns the written check records in seq order. Seq stamping
// follows the runner: start, one per check, finish.
func seedRun(t *testing.T, l *Ledger, token string, triples [][3]any) []CheckRecord {
	t.Helper()
	ctx := context.Background()
	clock := testutil.NewDeterministicClock()

	if err := l.BeginRun(ctx, createTestRun(token, clock.Next())); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	var checks []CheckRecord
	for _, tr := range triples {
		check, steps := buildCheck(t, token, tr[0].(string), tr[1].(int), tr[2].(int), clock.Next())
		inserted, err := l.WriteCheck(ctx, check, steps)
		if err != nil {
			t.Fatalf("WriteCheck(%s) failed: %v", check.Claim, err)
		}
		if !inserted {
			t.Fatalf("WriteCheck(%s) inserted = false, want true", check.Claim)
		}
		checks = append(checks, check)
	}

	if err := l.FinishRun(ctx, token, clock.Next(), int64(len(triples))); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}

	return checks
}
