package ledger

import (
	"context"
	"strings"
	"testing"
)

func TestReplay_Clean(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	seedRun(t, l, "run-1", [][3]any{
		{"zero_lt_one", 0, 1},
		{"one_lt_three", 1, 3},
		{"three_not_lt_two", 3, 2},
		{"zero_not_lt_zero", 0, 0},
		{"two_not_lt_two", 2, 2},
	})

	report, err := l.Replay(ctx, "run-1")
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}
	if report.Checks != 5 {
		t.Errorf("checks = %d, want 5", report.Checks)
	}
	if !report.Clean() {
		t.Fatalf("Clean() = false, divergences: %v", report.Divergences)
	}
}

func TestReplay_UnknownRun(t *testing.T) {
	l := createTestLedger(t)

	_, err := l.Replay(context.Background(), "ghost")
	if err == nil {
		t.Fatal("Replay() on unknown run succeeded, want error")
	}
}

func TestReplay_DetectsTamperedOutcome(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	checks := seedRun(t, l, "run-1", [][3]any{{"three_not_lt_two", 3, 2}})

	// Flip the stored verdict behind the ledger's back
	if _, err := l.db.Exec(`UPDATE checks SET outcome = 'holds' WHERE id = ?`, checks[0].ID); err != nil {
		t.Fatalf("tamper failed: %v", err)
	}

	report, err := l.Replay(ctx, "run-1")
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}
	if report.Clean() {
		t.Fatal("Clean() = true after tampering, want divergence")
	}

	found := false
	for _, d := range report.Divergences {
		if d.Field == "outcome" && d.Stored == "holds" && d.Computed == "rejected" {
			found = true
		}
	}
	if !found {
		t.Errorf("divergences = %v, want outcome holds→rejected", report.Divergences)
	}
}

func TestReplay_DetectsTamperedHash(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	checks := seedRun(t, l, "run-1", [][3]any{{"one_lt_three", 1, 3}})

	if _, err := l.db.Exec(`UPDATE checks SET derivation_hash = 'deadbeef' WHERE id = ?`, checks[0].ID); err != nil {
		t.Fatalf("tamper failed: %v", err)
	}

	report, err := l.Replay(ctx, "run-1")
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}

	found := false
	for _, d := range report.Divergences {
		if d.Field == "derivation_hash" && d.Stored == "deadbeef" {
			found = true
		}
	}
	if !found {
		t.Errorf("divergences = %v, want derivation_hash finding", report.Divergences)
	}
}

func TestReplay_DetectsTamperedStep(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	checks := seedRun(t, l, "run-1", [][3]any{{"two_lt_four", 2, 4}})

	// Rewrite the base axiom row to a different pair
	if _, err := l.db.Exec(`
		UPDATE derivation_steps SET lesser = 'S(Z)' WHERE check_id = ? AND idx = 0
	`, checks[0].ID); err != nil {
		t.Fatalf("tamper failed: %v", err)
	}

	report, err := l.Replay(ctx, "run-1")
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}

	found := false
	for _, d := range report.Divergences {
		if strings.HasPrefix(d.Field, "step[0]") {
			found = true
		}
	}
	if !found {
		t.Errorf("divergences = %v, want step[0] finding", report.Divergences)
	}
}

func TestReplay_DetectsTamperedPair(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	checks := seedRun(t, l, "run-1", [][3]any{{"zero_lt_one", 0, 1}})

	// Grow the stored greater term: outcome still holds, but depth,
	// hash, chain, and check ID all shift
	if _, err := l.db.Exec(`
		UPDATE checks SET greater = 'S(S(Z))' WHERE id = ?
	`, checks[0].ID); err != nil {
		t.Fatalf("tamper failed: %v", err)
	}

	report, err := l.Replay(ctx, "run-1")
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}
	if report.Clean() {
		t.Fatal("Clean() = true after pair tamper, want divergences")
	}

	fields := make(map[string]bool)
	for _, d := range report.Divergences {
		fields[d.Field] = true
	}
	for _, want := range []string{"greater_depth", "derivation_hash", "id"} {
		if !fields[want] {
			t.Errorf("missing %q divergence, got fields %v", want, fields)
		}
	}
}

func TestReplayAll(t *testing.T) {
	l := createTestLedger(t)
	ctx := context.Background()

	seedRun(t, l, "run-a", [][3]any{{"zero_lt_one", 0, 1}})
	seedRun(t, l, "run-b", [][3]any{{"one_lt_three", 1, 3}})

	reports, err := l.ReplayAll(ctx)
	if err != nil {
		t.Fatalf("ReplayAll() failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("len = %d, want 2", len(reports))
	}
	if reports[0].RunToken != "run-a" || reports[1].RunToken != "run-b" {
		t.Errorf("order = [%s %s], want [run-a run-b]", reports[0].RunToken, reports[1].RunToken)
	}
	for _, r := range reports {
		if !r.Clean() {
			t.Errorf("run %s: divergences %v, want clean", r.RunToken, r.Divergences)
		}
	}
}

func TestDivergence_String(t *testing.T) {
	d := Divergence{
		CheckID:  "abc123",
		Claim:    "zero_lt_one",
		Seq:      2,
		Field:    "outcome",
		Stored:   "holds",
		Computed: "rejected",
	}
	s := d.String()
	for _, fragment := range []string{"abc123", "zero_lt_one", "seq 2", "outcome", "holds", "rejected"} {
		if !strings.Contains(s, fragment) {
			t.Errorf("String() = %q, missing %q", s, fragment)
		}
	}
}
