package testutil

// FixedTokens generates the same run token every time.
//
// This enables deterministic test execution and golden snapshot comparison.
// The same suite with the same FixedTokens produces byte-identical ledger rows.
//
// Unlike runner.FixedGenerator which returns tokens in sequence and panics
// when exhausted, this generator always returns the same token. This is
// useful for harness scenarios where every run should reuse one token.
//
// Thread-safety: FixedTokens is stateless and safe for concurrent use.
type FixedTokens struct {
	token string
}

// NewFixedTokens creates a new fixed run token generator.
//
// The token is typically set in the scenario YAML:
//
//	run_token: "test-run-00000000-0000-0000-0000-000000000001"
//
// If token is empty, Generate() returns "test-run-default".
func NewFixedTokens(token string) *FixedTokens {
	if token == "" {
		token = "test-run-default"
	}
	return &FixedTokens{token: token}
}

// Generate returns the fixed run token.
//
// Implements runner.TokenGenerator.
func (g *FixedTokens) Generate() string {
	return g.token
}
