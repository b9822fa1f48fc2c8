// Package ledger provides SQLite-backed durable storage for proof runs.
//
// The ledger implements an append-only provenance log with:
//   - Runs: One row per engine run (token, engine identity, suite hash)
//   - Checks: One row per checked claim (pair, outcome, derivation hash)
//   - Derivation Steps: The inference chain behind each accepted check
//
// # Invariants
//
// Content-addressed identity
//   - Check IDs are computed from (run_token, claim, pair, outcome, seq)
//     via canonical JSON and domain-separated SHA-256
//   - Identical inputs always produce identical rows, so every INSERT
//     carries ON CONFLICT DO NOTHING and re-running a run is a no-op
//
// Logical time
//   - All ordering uses seq INTEGER (logical clock), never timestamps
//   - Replay reproduces the exact original ordering regardless of wall time
//
// Deterministic query results
//   - All list queries include ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Rejected checks carry no derivation: step_count is 0 and
// derivation_hash is the empty string. Replay treats that absence as
// part of the recorded outcome.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content-addressed IDs are computed via internal/canon using RFC 8785
// canonical JSON and SHA-256 with domain separation.
package ledger
