package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peanoproof/peano/internal/ledger"
)

const verifySuite = `
claim: zero_under_one: {
	description: "zero is below one"
	lesser:      "Z"
	greater:     "S(Z)"
	expect:      "holds"
}

claim: three_not_under_two: {
	description: "three is not below two"
	lesser:      3
	greater:     2
	expect:      "rejected"
}
`

const failingSuite = `
claim: wishful: {
	description: "two is below one, allegedly"
	lesser:      2
	greater:     1
	expect:      "holds"
}
`

func executeVerify(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"verify"}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestVerifyAllPass(t *testing.T) {
	dir := writeClaims(t, "suite.cue", verifySuite)

	output, err := executeVerify(t, dir, "--run", "verify-test-1")
	require.NoError(t, err)

	assert.Contains(t, output, "Run: verify-test-1 [native")
	assert.Contains(t, output, "✓ zero_under_one: Z < S(Z) [holds]")
	assert.Contains(t, output, "✓ three_not_under_two: S(S(S(Z))) < S(S(Z)) [rejected]")
	assert.Contains(t, output, "✓ All 2 claim(s) verified")
}

func TestVerifyFailedExpectation(t *testing.T) {
	dir := writeClaims(t, "suite.cue", failingSuite)

	output, err := executeVerify(t, dir, "--run", "verify-test-2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, output, "✗ wishful: S(S(Z)) < S(Z) [rejected] (expected holds)")
	assert.Contains(t, output, "✗ 1 of 1 claim(s) failed")
}

func TestVerifyDatalogEngine(t *testing.T) {
	dir := writeClaims(t, "suite.cue", verifySuite)

	output, err := executeVerify(t, dir, "--engine", "datalog", "--run", "verify-test-3")
	require.NoError(t, err)

	assert.Contains(t, output, "[datalog")
	assert.Contains(t, output, "✓ All 2 claim(s) verified")
}

func TestVerifyUnknownEngine(t *testing.T) {
	dir := writeClaims(t, "suite.cue", verifySuite)

	_, err := executeVerify(t, dir, "--engine", "prolog")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown engine")
}

func TestVerifyNonExistentPath(t *testing.T) {
	_, err := executeVerify(t, "/nonexistent/claims")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerifyInvalidSuite(t *testing.T) {
	dir := writeClaims(t, "bad.cue", `
claim: broken: {
	description: ""
	lesser:      0
	greater:     1
	expect:      "holds"
}
`)

	_, err := executeVerify(t, dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "peano validate")
}

func TestVerifyPersistsToLedger(t *testing.T) {
	dir := writeClaims(t, "suite.cue", verifySuite)
	dbPath := filepath.Join(t.TempDir(), "peano.db")

	_, err := executeVerify(t, dir, "--db", dbPath, "--run", "verify-test-db")
	require.NoError(t, err)

	led, err := ledger.Open(dbPath)
	require.NoError(t, err)
	defer led.Close()

	ctx := context.Background()
	run, err := led.GetRun(ctx, "verify-test-db")
	require.NoError(t, err)
	assert.Equal(t, "native", run.Engine)
	assert.True(t, run.Finished())
	assert.Equal(t, int64(2), run.Checks)

	holds, rejected, err := led.CountOutcomes(ctx, "verify-test-db")
	require.NoError(t, err)
	assert.Equal(t, int64(1), holds)
	assert.Equal(t, int64(1), rejected)
}

func TestVerifyJSON(t *testing.T) {
	dir := writeClaims(t, "suite.cue", verifySuite)

	output, err := executeVerify(t, "--format", "json", dir, "--run", "verify-test-json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "verify-test-json", resp.RunToken)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["passed"])
	assert.Equal(t, float64(0), data["failed"])
	assert.Equal(t, "native", data["engine"])

	checks, ok := data["checks"].([]interface{})
	require.True(t, ok)
	require.Len(t, checks, 2)

	first, ok := checks[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "zero_under_one", first["claim"])
	assert.Equal(t, "holds", first["outcome"])
	assert.Equal(t, true, first["pass"])
	assert.NotEmpty(t, first["derivation_hash"])
}

func TestVerifyJSONFailure(t *testing.T) {
	dir := writeClaims(t, "suite.cue", failingSuite)

	output, err := executeVerify(t, "--format", "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_VERIFY", resp.Error.Code)
}

func TestVerifyFixedTokenIsDeterministic(t *testing.T) {
	dir := writeClaims(t, "suite.cue", verifySuite)

	first, err := executeVerify(t, dir, "--run", "same-token")
	require.NoError(t, err)
	second, err := executeVerify(t, dir, "--run", "same-token")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
