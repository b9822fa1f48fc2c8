package ledger

import (
	"context"
	"fmt"
)

// BeginRun inserts the run header row.
// Uses ON CONFLICT(token) DO NOTHING for idempotency - re-opening a run
// with the same token is silently ignored, so a crashed run can be
// resumed by replaying its writes.
func (l *Ledger) BeginRun(ctx context.Context, run RunRecord) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs
		(token, engine, engine_version, suite_hash, suite_source, started_seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		run.Token,
		run.Engine,
		run.EngineVersion,
		run.SuiteHash,
		run.SuiteSource,
		run.StartedSeq,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}

	return nil
}

// FinishRun seals a run by recording its final seq and check count.
// Sealing is idempotent: once finished_seq is set, later calls with the
// same values are no-ops and conflicting values return an error.
func (l *Ledger) FinishRun(ctx context.Context, token string, finishedSeq, checks int64) error {
	result, err := l.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_seq = ?, checks = ?
		WHERE token = ? AND (finished_seq = 0 OR (finished_seq = ? AND checks = ?))
	`, finishedSeq, checks, token, finishedSeq, checks)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// No row updated: either the token is unknown or the run was already
	// sealed with different values. Distinguish for the caller.
	var existing int64
	err = l.db.QueryRowContext(ctx, `
		SELECT finished_seq FROM runs WHERE token = ?
	`, token).Scan(&existing)
	if err != nil {
		return fmt.Errorf("finish run: no run with token %q", token)
	}
	return fmt.Errorf("finish run: run %q already sealed at seq %d", token, existing)
}

// WriteCheck atomically writes a check row and its derivation steps in
// a single transaction. Returns whether a new row was inserted.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: the check ID is
// content-addressed, so an identical re-run lands on the existing row
// and the steps are not rewritten. If inserted=false the steps are NOT
// written (they are already present from the first insert).
//
// Note: The run referenced by RunToken must exist (foreign key constraint).
func (l *Ledger) WriteCheck(ctx context.Context, check CheckRecord, steps []StepRecord) (inserted bool, err error) {
	if !check.Outcome.Valid() {
		return false, fmt.Errorf("write check: invalid outcome %q", check.Outcome)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write check: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Step 1: Try to insert the check (claims the slot atomically via PK)
	result, err := tx.ExecContext(ctx, `
		INSERT INTO checks
		(id, run_token, seq, claim, lesser, greater, lesser_depth, greater_depth, outcome, step_count, derivation_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		check.ID,
		check.RunToken,
		check.Seq,
		check.Claim,
		check.Lesser,
		check.Greater,
		check.LesserDepth,
		check.GreaterDepth,
		string(check.Outcome),
		check.StepCount,
		check.DerivationHash,
	)
	if err != nil {
		return false, fmt.Errorf("write check: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write check: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Conflict - check already recorded, nothing more to do
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("write check: commit (existing): %w", err)
		}
		return false, nil
	}

	// Step 2: Write the derivation chain, base axiom first
	for i, step := range steps {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO derivation_steps
			(check_id, idx, rule, lesser, greater)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(check_id, idx) DO NOTHING
		`,
			check.ID,
			int64(i),
			step.Rule,
			step.Lesser,
			step.Greater,
		)
		if err != nil {
			return false, fmt.Errorf("write check: insert step %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write check: commit: %w", err)
	}

	return true, nil
}

// HasCheck reports whether a check with the given content-addressed ID
// already exists. Used for idempotency checks before expensive rebuilds.
func (l *Ledger) HasCheck(ctx context.Context, id string) (bool, error) {
	var count int
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM checks WHERE id = ?
	`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check exists: %w", err)
	}
	return count > 0, nil
}
