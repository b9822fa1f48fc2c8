// Package harness runs declarative proof scenarios end to end.
//
// A scenario names a claim suite (CUE files, inline checks, or both),
// picks a deciding engine, runs the suite against a fresh in-memory
// ledger, and asserts on the resulting check trace.
//
// # Scenario Format
//
// Scenarios are YAML files with strict field checking:
//
//	name: basics
//	description: "Base and inductive rules on small pairs"
//	claims:
//	  - testdata/claims/basics.cue
//	checks:
//	  - lesser: "Z"
//	    greater: "S(Z)"
//	    expect: holds
//	engine: native
//	assertions:
//	  - type: check_contains
//	    lesser: "Z"
//	    greater: "S(Z)"
//	    outcome: holds
//	  - type: outcome_count
//	    outcome: holds
//	    count: 2
//	golden: basics
//	run_token: scenario-basics-01
//
// Claim file paths are read as written, so scenarios shipped with a
// package reference its testdata directly.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - check_contains: the trace holds a check for the pair, optionally
//     with a specific outcome
//   - check_order: the pairs appear in the trace as a subsequence
//   - outcome_count: exactly N checks landed on the outcome
//   - rule_count: the recorded derivations applied a rule exactly N times
//
// Assertion terms accept the same notations as the prover, so "2" and
// "S(S(Z))" name the same natural.
//
// # Deterministic Execution
//
// Every scenario runs with a fixed run token (scenario run_token or
// DefaultRunToken), a fresh logical clock, and a private in-memory
// SQLite ledger. The same scenario therefore produces byte-identical
// traces on every run, which is what makes golden comparison work.
// Golden files live under testdata/golden and hold the canonical JSON
// of the trace; regenerate them with:
//
//	go test ./internal/harness -update
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/basics.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.RunScenario(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
