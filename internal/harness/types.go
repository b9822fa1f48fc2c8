package harness

// CheckEvent is one executed check in run order. Terms are always in
// canonical successor notation; Rules lists the derivation's rule
// applications base-first and is empty for rejected pairs.
type CheckEvent struct {
	Claim          string   `json:"claim"`
	Lesser         string   `json:"lesser"`
	Greater        string   `json:"greater"`
	Outcome        string   `json:"outcome"`
	Expect         string   `json:"expect"`
	Pass           bool     `json:"pass"`
	Seq            int64    `json:"seq"`
	StepCount      int64    `json:"step_count"`
	Rules          []string `json:"rules,omitempty"`
	DerivationHash string   `json:"derivation_hash,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every claim landed on its expectation and
	// every assertion held.
	Pass bool `json:"pass"`

	// RunToken is the token the run was stamped with.
	RunToken string `json:"run_token"`

	// Engine is the backend that decided the checks.
	Engine string `json:"engine"`

	// Trace contains all executed checks in run order. Used by
	// assertions and golden comparison.
	Trace []CheckEvent `json:"trace"`

	// Errors lists failed expectations and assertions. Empty when
	// Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
