package ledger

// Outcome is the engine's verdict on one claim.
type Outcome string

const (
	// OutcomeHolds records that a derivation for lesser < greater exists.
	OutcomeHolds Outcome = "holds"
	// OutcomeRejected records that the relation is not derivable.
	OutcomeRejected Outcome = "rejected"
)

// Valid reports whether o is one of the two recorded outcomes.
func (o Outcome) Valid() bool {
	return o == OutcomeHolds || o == OutcomeRejected
}

// RunRecord is one row in the runs table.
type RunRecord struct {
	Token         string `json:"token"`
	Engine        string `json:"engine"`
	EngineVersion string `json:"engine_version"`
	SuiteHash     string `json:"suite_hash"`
	SuiteSource   string `json:"suite_source"`
	StartedSeq    int64  `json:"started_seq"`
	FinishedSeq   int64  `json:"finished_seq"` // 0 until FinishRun
	Checks        int64  `json:"checks"`       // 0 until FinishRun
}

// Finished reports whether FinishRun has sealed the run.
func (r RunRecord) Finished() bool {
	return r.FinishedSeq > 0
}

// CheckRecord is one row in the checks table. Both terms are stored in
// canonical successor notation alongside their depths so queries can
// filter without re-parsing.
type CheckRecord struct {
	ID             string  `json:"id"` // Content-addressed
	RunToken       string  `json:"run_token"`
	Seq            int64   `json:"seq"` // Logical clock
	Claim          string  `json:"claim"`
	Lesser         string  `json:"lesser"`
	Greater        string  `json:"greater"`
	LesserDepth    int64   `json:"lesser_depth"`
	GreaterDepth   int64   `json:"greater_depth"`
	Outcome        Outcome `json:"outcome"`
	StepCount      int64   `json:"step_count"`      // 0 when rejected
	DerivationHash string  `json:"derivation_hash"` // "" when rejected
}

// StepRecord is one row in the derivation_steps table. Idx is the
// position in the chain, 0 being the base axiom.
type StepRecord struct {
	CheckID string `json:"check_id"`
	Idx     int64  `json:"idx"`
	Rule    string `json:"rule"`
	Lesser  string `json:"lesser"`
	Greater string `json:"greater"`
}
