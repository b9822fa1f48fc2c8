package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// GetRun retrieves a run header by token.
// Returns sql.ErrNoRows if not found.
func (l *Ledger) GetRun(ctx context.Context, token string) (RunRecord, error) {
	var run RunRecord
	err := l.db.QueryRowContext(ctx, `
		SELECT token, engine, engine_version, suite_hash, suite_source, started_seq, finished_seq, checks
		FROM runs
		WHERE token = ?
	`, token).Scan(
		&run.Token, &run.Engine, &run.EngineVersion, &run.SuiteHash,
		&run.SuiteSource, &run.StartedSeq, &run.FinishedSeq, &run.Checks,
	)
	if err != nil {
		return RunRecord{}, err
	}
	return run, nil
}

// ListRuns returns all run headers ordered by started_seq, then token.
func (l *Ledger) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT token, engine, engine_version, suite_hash, suite_source, started_seq, finished_seq, checks
		FROM runs
		ORDER BY started_seq ASC, token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		if err := rows.Scan(
			&run.Token, &run.Engine, &run.EngineVersion, &run.SuiteHash,
			&run.SuiteSource, &run.StartedSeq, &run.FinishedSeq, &run.Checks,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Return empty slice instead of nil
	if runs == nil {
		runs = []RunRecord{}
	}

	return runs, nil
}

// ListRunTokens returns all distinct run tokens in the ledger.
// Results ordered alphabetically by token.
func (l *Ledger) ListRunTokens(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT token FROM runs
		ORDER BY token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list run tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan run token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run tokens: %w", err)
	}

	if tokens == nil {
		tokens = []string{}
	}

	return tokens, nil
}

// GetCheck retrieves a single check by its content-addressed ID.
// Returns sql.ErrNoRows if not found.
func (l *Ledger) GetCheck(ctx context.Context, id string) (CheckRecord, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, run_token, seq, claim, lesser, greater, lesser_depth, greater_depth, outcome, step_count, derivation_hash
		FROM checks
		WHERE id = ?
	`, id)

	return scanCheckRow(row)
}

// ListChecks returns all checks for a run token, optionally narrowed
// by filter. Results are ordered deterministically:
// ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no checks match.
func (l *Ledger) ListChecks(ctx context.Context, runToken string, filter Filter) ([]CheckRecord, error) {
	where, filterArgs, err := compileFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}

	query := `
		SELECT id, run_token, seq, claim, lesser, greater, lesser_depth, greater_depth, outcome, step_count, derivation_hash
		FROM checks
		WHERE run_token = ?`
	args := []any{runToken}
	if where != "" {
		query += " AND " + where
		args = append(args, filterArgs...)
	}
	query += `
		ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	var checks []CheckRecord
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, check)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checks: %w", err)
	}

	if checks == nil {
		checks = []CheckRecord{}
	}

	return checks, nil
}

// StepsForCheck returns the derivation chain for a check, base axiom
// first. Returns an empty slice for rejected checks, which record no
// derivation.
func (l *Ledger) StepsForCheck(ctx context.Context, checkID string) ([]StepRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT check_id, idx, rule, lesser, greater
		FROM derivation_steps
		WHERE check_id = ?
		ORDER BY idx ASC
	`, checkID)
	if err != nil {
		return nil, fmt.Errorf("query derivation steps: %w", err)
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var step StepRecord
		if err := rows.Scan(&step.CheckID, &step.Idx, &step.Rule, &step.Lesser, &step.Greater); err != nil {
			return nil, fmt.Errorf("scan derivation step: %w", err)
		}
		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate derivation steps: %w", err)
	}

	if steps == nil {
		steps = []StepRecord{}
	}

	return steps, nil
}

// CountOutcomes returns how many checks in a run landed on each
// outcome. Missing outcomes count as zero.
func (l *Ledger) CountOutcomes(ctx context.Context, runToken string) (holds, rejected int64, err error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*)
		FROM checks
		WHERE run_token = ?
		GROUP BY outcome
	`, runToken)
	if err != nil {
		return 0, 0, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var outcome string
		var count int64
		if err := rows.Scan(&outcome, &count); err != nil {
			return 0, 0, fmt.Errorf("scan outcome count: %w", err)
		}
		switch Outcome(outcome) {
		case OutcomeHolds:
			holds = count
		case OutcomeRejected:
			rejected = count
		}
	}

	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("iterate outcome counts: %w", err)
	}

	return holds, rejected, nil
}

// LastSeq returns the highest seq recorded in the ledger across runs
// and checks. Used for recovery to resume the logical clock from the
// correct position.
func (l *Ledger) LastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64

	var startSeq int64
	err := l.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(started_seq), 0) FROM runs
	`).Scan(&startSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq from runs: %w", err)
	}
	maxSeq = startSeq

	var finishSeq int64
	err = l.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(finished_seq), 0) FROM runs
	`).Scan(&finishSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq from runs: %w", err)
	}
	if finishSeq > maxSeq {
		maxSeq = finishSeq
	}

	var checkSeq int64
	err = l.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM checks
	`).Scan(&checkSeq)
	if err != nil {
		return 0, fmt.Errorf("get last seq from checks: %w", err)
	}
	if checkSeq > maxSeq {
		maxSeq = checkSeq
	}

	return maxSeq, nil
}

// scanCheck scans a result row into a CheckRecord.
func scanCheck(rows *sql.Rows) (CheckRecord, error) {
	var check CheckRecord
	var outcome string

	if err := rows.Scan(
		&check.ID, &check.RunToken, &check.Seq, &check.Claim,
		&check.Lesser, &check.Greater, &check.LesserDepth, &check.GreaterDepth,
		&outcome, &check.StepCount, &check.DerivationHash,
	); err != nil {
		return CheckRecord{}, fmt.Errorf("scan check: %w", err)
	}

	check.Outcome = Outcome(outcome)
	return check, nil
}

// scanCheckRow scans a single row into a CheckRecord.
func scanCheckRow(row *sql.Row) (CheckRecord, error) {
	var check CheckRecord
	var outcome string

	if err := row.Scan(
		&check.ID, &check.RunToken, &check.Seq, &check.Claim,
		&check.Lesser, &check.Greater, &check.LesserDepth, &check.GreaterDepth,
		&outcome, &check.StepCount, &check.DerivationHash,
	); err != nil {
		return CheckRecord{}, err
	}

	check.Outcome = Outcome(outcome)
	return check, nil
}
