package runner

// Version constants stamped into run provenance.
const (
	// EngineVersion is the prover engine version.
	EngineVersion = "0.1.0"
)
