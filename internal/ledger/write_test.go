package ledger

import (
	"context"
	"strings"
	"testing"
)

func TestBeginRun_Basic(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	run := createTestRun("run-1", 1)
	if err := l.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	stored, err := l.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if stored.Engine != "native" {
		t.Errorf("engine = %q, want %q", stored.Engine, "native")
	}
	if stored.StartedSeq != 1 {
		t.Errorf("started_seq = %d, want 1", stored.StartedSeq)
	}
	if stored.Finished() {
		t.Error("Finished() = true for open run")
	}
}

func TestBeginRun_Idempotent(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	run := createTestRun("run-1", 1)
	if err := l.BeginRun(ctx, run); err != nil {
		t.Fatalf("first BeginRun() failed: %v", err)
	}
	// Second write with the same token is silently ignored
	run.SuiteHash = "different"
	if err := l.BeginRun(ctx, run); err != nil {
		t.Fatalf("second BeginRun() failed: %v", err)
	}

	stored, err := l.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if stored.SuiteHash != "suite-hash" {
		t.Errorf("suite_hash = %q, want original %q", stored.SuiteHash, "suite-hash")
	}
}

func TestWriteCheck_Basic(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	if err := l.BeginRun(ctx, createTestRun("run-1", 1)); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	check, steps := buildCheck(t, "run-1", "one_lt_three", 1, 3, 2)
	inserted, err := l.WriteCheck(ctx, check, steps)
	if err != nil {
		t.Fatalf("WriteCheck() failed: %v", err)
	}
	if !inserted {
		t.Fatal("inserted = false, want true")
	}

	stored, err := l.GetCheck(ctx, check.ID)
	if err != nil {
		t.Fatalf("GetCheck() failed: %v", err)
	}
	if stored.Claim != "one_lt_three" {
		t.Errorf("claim = %q, want %q", stored.Claim, "one_lt_three")
	}
	if stored.Lesser != "S(Z)" {
		t.Errorf("lesser = %q, want %q", stored.Lesser, "S(Z)")
	}
	if stored.Outcome != OutcomeHolds {
		t.Errorf("outcome = %q, want %q", stored.Outcome, OutcomeHolds)
	}
	if stored.StepCount != 2 {
		t.Errorf("step_count = %d, want 2", stored.StepCount)
	}
	if stored.DerivationHash == "" {
		t.Error("derivation_hash empty for accepted check")
	}
}

func TestWriteCheck_StepsPersisted(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	if err := l.BeginRun(ctx, createTestRun("run-1", 1)); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	check, steps := buildCheck(t, "run-1", "two_lt_four", 2, 4, 2)
	if _, err := l.WriteCheck(ctx, check, steps); err != nil {
		t.Fatalf("WriteCheck() failed: %v", err)
	}

	stored, err := l.StepsForCheck(ctx, check.ID)
	if err != nil {
		t.Fatalf("StepsForCheck() failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("len(steps) = %d, want 3", len(stored))
	}
	if stored[0].Rule != "zero_lt_succ" {
		t.Errorf("steps[0].rule = %q, want zero_lt_succ", stored[0].Rule)
	}
	for i := 1; i < len(stored); i++ {
		if stored[i].Rule != "succ_mono" {
			t.Errorf("steps[%d].rule = %q, want succ_mono", i, stored[i].Rule)
		}
	}
	// Final step concludes the queried pair
	last := stored[len(stored)-1]
	if last.Lesser != "S(S(Z))" || last.Greater != "S(S(S(S(Z))))" {
		t.Errorf("final step = %s < %s, want S(S(Z)) < S(S(S(S(Z))))", last.Lesser, last.Greater)
	}
}

func TestWriteCheck_RejectedHasNoSteps(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	if err := l.BeginRun(ctx, createTestRun("run-1", 1)); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	check, steps := buildCheck(t, "run-1", "three_not_lt_two", 3, 2, 2)
	if len(steps) != 0 {
		t.Fatalf("buildCheck returned %d steps for rejected pair, want 0", len(steps))
	}
	if check.DerivationHash != "" {
		t.Fatalf("derivation_hash = %q for rejected pair, want empty", check.DerivationHash)
	}

	if _, err := l.WriteCheck(ctx, check, steps); err != nil {
		t.Fatalf("WriteCheck() failed: %v", err)
	}

	stored, err := l.StepsForCheck(ctx, check.ID)
	if err != nil {
		t.Fatalf("StepsForCheck() failed: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("len(steps) = %d, want 0", len(stored))
	}
}

func TestWriteCheck_Idempotent(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	if err := l.BeginRun(ctx, createTestRun("run-1", 1)); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	check, steps := buildCheck(t, "run-1", "zero_lt_one", 0, 1, 2)

	inserted, err := l.WriteCheck(ctx, check, steps)
	if err != nil {
		t.Fatalf("first WriteCheck() failed: %v", err)
	}
	if !inserted {
		t.Fatal("first write: inserted = false, want true")
	}

	inserted, err = l.WriteCheck(ctx, check, steps)
	if err != nil {
		t.Fatalf("second WriteCheck() failed: %v", err)
	}
	if inserted {
		t.Fatal("second write: inserted = true, want false")
	}

	// Still exactly one row and one step chain
	var count int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM checks").Scan(&count); err != nil {
		t.Fatalf("count checks failed: %v", err)
	}
	if count != 1 {
		t.Errorf("checks rows = %d, want 1", count)
	}
	if err := l.db.QueryRow("SELECT COUNT(*) FROM derivation_steps").Scan(&count); err != nil {
		t.Fatalf("count steps failed: %v", err)
	}
	if count != 1 {
		t.Errorf("derivation_steps rows = %d, want 1", count)
	}
}

func TestWriteCheck_InvalidOutcome(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	if err := l.BeginRun(ctx, createTestRun("run-1", 1)); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}

	check, steps := buildCheck(t, "run-1", "zero_lt_one", 0, 1, 2)
	check.Outcome = "maybe"

	if _, err := l.WriteCheck(ctx, check, steps); err == nil {
		t.Fatal("WriteCheck() with invalid outcome succeeded, want error")
	}
}

func TestWriteCheck_UnknownRun(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	// No BeginRun: the foreign key on run_token must reject the write
	check, steps := buildCheck(t, "ghost-run", "zero_lt_one", 0, 1, 2)
	if _, err := l.WriteCheck(ctx, check, steps); err == nil {
		t.Fatal("WriteCheck() without run row succeeded, want FK error")
	}
}

func TestHasCheck(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	checks := seedRun(t, l, "run-1", [][3]any{{"zero_lt_one", 0, 1}})

	ok, err := l.HasCheck(ctx, checks[0].ID)
	if err != nil {
		t.Fatalf("HasCheck() failed: %v", err)
	}
	if !ok {
		t.Error("HasCheck(existing) = false, want true")
	}

	ok, err = l.HasCheck(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("HasCheck() failed: %v", err)
	}
	if ok {
		t.Error("HasCheck(missing) = true, want false")
	}
}

func TestFinishRun_Seals(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	seedRun(t, l, "run-1", [][3]any{{"zero_lt_one", 0, 1}, {"one_lt_three", 1, 3}})

	run, err := l.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() failed: %v", err)
	}
	if !run.Finished() {
		t.Fatal("Finished() = false after FinishRun")
	}
	if run.Checks != 2 {
		t.Errorf("checks = %d, want 2", run.Checks)
	}
	if run.FinishedSeq != 4 {
		t.Errorf("finished_seq = %d, want 4", run.FinishedSeq)
	}
}

func TestFinishRun_IdempotentSameValues(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	seedRun(t, l, "run-1", [][3]any{{"zero_lt_one", 0, 1}})

	// seedRun sealed at finished_seq=3, checks=1; repeating is a no-op
	if err := l.FinishRun(ctx, "run-1", 3, 1); err != nil {
		t.Errorf("repeated FinishRun() with same values = %v, want nil", err)
	}
}

func TestFinishRun_ConflictingSeal(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	seedRun(t, l, "run-1", [][3]any{{"zero_lt_one", 0, 1}})

	err := l.FinishRun(ctx, "run-1", 99, 7)
	if err == nil {
		t.Fatal("FinishRun() with conflicting values succeeded, want error")
	}
	if !strings.Contains(err.Error(), "already sealed") {
		t.Errorf("error = %q, want mention of already sealed", err)
	}
}

func TestFinishRun_UnknownToken(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	err := l.FinishRun(ctx, "ghost", 5, 1)
	if err == nil {
		t.Fatal("FinishRun() on unknown token succeeded, want error")
	}
	if !strings.Contains(err.Error(), "no run with token") {
		t.Errorf("error = %q, want mention of missing run", err)
	}
}
