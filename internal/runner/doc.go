// Package runner executes claim suites against a deciding backend and
// records provenance for every check.
//
// A run walks the suite in declaration order. Each claim costs exactly
// one backend decision plus one native derivation: the backend supplies
// the verdict, the native prover supplies the recorded evidence, and
// any disagreement between the two aborts the run as a divergence. For
// the native backend the two are the same computation, which makes the
// comparison free; for alternative backends it is a differential test
// executed on every single check.
//
// All ordering is logical. The run token comes from a TokenGenerator,
// seq numbers from a Clock, and check IDs from canonical JSON hashes,
// so two runs over the same suite with the same token and clock are
// byte-identical all the way into the ledger.
package runner
