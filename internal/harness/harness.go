package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/peanoproof/peano/internal/claims"
	"github.com/peanoproof/peano/internal/datalog"
	"github.com/peanoproof/peano/internal/ledger"
	"github.com/peanoproof/peano/internal/runner"
	"github.com/peanoproof/peano/internal/testutil"
	"github.com/peanoproof/peano/nat"
)

// DefaultRunToken stamps scenario runs that do not pin their own
// token. A fixed default keeps golden traces byte-identical.
const DefaultRunToken = "scenario-run-default"

// RunScenario executes a scenario and returns its result.
//
// Each scenario runs against a private in-memory ledger with a fixed
// run token and a fresh logical clock, so identical scenarios produce
// identical traces. Failed expectations and failed assertions are
// collected in the result; an error is returned only when the
// scenario cannot run at all (unreadable claims, unknown engine,
// backend divergence).
func RunScenario(scenario *Scenario) (*Result, error) {
	led, err := ledger.OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("harness: open ledger: %w", err)
	}
	defer led.Close()

	backend, err := backendFor(scenario.Engine)
	if err != nil {
		return nil, fmt.Errorf("harness: %w", err)
	}

	suite, err := compileSuite(scenario)
	if err != nil {
		return nil, err
	}

	token := scenario.RunToken
	if token == "" {
		token = DefaultRunToken
	}

	// Runner logging belongs to production runs, not fixture output.
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer slog.SetDefault(prev)

	run := runner.New(
		runner.WithBackend(backend),
		runner.WithTokenGenerator(testutil.NewFixedTokens(token)),
		runner.WithLedger(led),
	)

	report, err := run.Run(context.Background(), suite)
	if err != nil {
		return nil, fmt.Errorf("harness: scenario %s: %w", scenario.Name, err)
	}

	result := buildResult(report)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// backendFor maps a scenario engine name to a runner backend.
func backendFor(engine string) (runner.Backend, error) {
	switch engine {
	case "", EngineNative:
		return runner.Native{}, nil
	case EngineDatalog:
		eng, err := datalog.New()
		if err != nil {
			return nil, fmt.Errorf("datalog backend: %w", err)
		}
		return eng, nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}

// compileSuite assembles the scenario's suite: compiled claim files
// first, inline checks after, in declaration order.
func compileSuite(scenario *Scenario) (*claims.Suite, error) {
	suites := make([]*claims.Suite, 0, len(scenario.Claims)+1)
	for _, path := range scenario.Claims {
		suite, errs := claims.CompileDir(path)
		if len(errs) > 0 {
			return nil, fmt.Errorf("harness: compile %s: %w", path, errs[0])
		}
		suites = append(suites, suite)
	}

	if len(scenario.Checks) > 0 {
		inline, err := inlineSuite(scenario.Checks)
		if err != nil {
			return nil, fmt.Errorf("harness: scenario %s: %w", scenario.Name, err)
		}
		suites = append(suites, inline)
	}

	suite := claims.Merge(suites...)
	if errs := claims.Validate(suite); len(errs) > 0 {
		return nil, fmt.Errorf("harness: invalid suite for scenario %s: %w", scenario.Name, errs[0])
	}
	return suite, nil
}

// inlineSuite lowers inline checks into a claim suite. Unnamed checks
// get positional names so ledger rows and assertion messages stay
// readable.
func inlineSuite(checks []CheckStep) (*claims.Suite, error) {
	suite := &claims.Suite{Source: "inline"}
	for i, step := range checks {
		lesser, err := nat.Parse(step.Lesser)
		if err != nil {
			return nil, fmt.Errorf("checks[%d].lesser: %w", i, err)
		}
		greater, err := nat.Parse(step.Greater)
		if err != nil {
			return nil, fmt.Errorf("checks[%d].greater: %w", i, err)
		}

		name := step.Name
		if name == "" {
			name = fmt.Sprintf("check_%d", i+1)
		}
		desc := step.Description
		if desc == "" {
			desc = fmt.Sprintf("%s < %s is %s", step.Lesser, step.Greater, step.Expect)
		}

		suite.Claims = append(suite.Claims, claims.Claim{
			Name:        name,
			Description: desc,
			Lesser:      lesser,
			Greater:     greater,
			Expect:      claims.Expectation(step.Expect),
		})
	}
	return suite, nil
}

// buildResult flattens a runner report into the harness trace form.
func buildResult(report *runner.Report) *Result {
	result := &Result{
		Pass:     true,
		RunToken: report.RunToken,
		Engine:   report.Engine,
		Trace:    make([]CheckEvent, 0, len(report.Results)),
	}

	for _, res := range report.Results {
		event := CheckEvent{
			Claim:          res.Claim,
			Lesser:         res.Lesser,
			Greater:        res.Greater,
			Outcome:        string(res.Outcome),
			Expect:         string(res.Expect),
			Pass:           res.Pass,
			Seq:            res.Seq,
			StepCount:      res.StepCount,
			DerivationHash: res.DerivationHash,
		}
		if res.Derivation != nil {
			event.Rules = make([]string, len(res.Derivation.Steps))
			for i, step := range res.Derivation.Steps {
				event.Rules[i] = string(step.Rule)
			}
		}
		result.Trace = append(result.Trace, event)

		if !res.Pass {
			result.AddError(fmt.Sprintf("claim %s: expected %s, got %s (%s < %s)",
				res.Claim, res.Expect, res.Outcome, res.Lesser, res.Greater))
		}
	}

	return result
}

// DirResult summarizes running every scenario in a directory.
type DirResult struct {
	TotalScenarios int               `json:"total_scenarios"`
	Passed         int               `json:"passed"`
	Failed         int               `json:"failed"`
	Failures       []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure pins a failed scenario to its errors.
type ScenarioFailure struct {
	Scenario string   `json:"scenario"`
	Errors   []string `json:"errors"`
}

// RunDir loads and runs every scenario in dir, in sorted file order.
// Scenario failures land in the result; an error is returned only
// when a scenario cannot be loaded or executed at all.
func RunDir(dir string) (*DirResult, error) {
	scenarios, err := LoadScenarioDir(dir)
	if err != nil {
		return nil, err
	}

	dirResult := &DirResult{TotalScenarios: len(scenarios)}
	for _, scenario := range scenarios {
		result, err := RunScenario(scenario)
		if err != nil {
			return nil, err
		}
		if result.Pass {
			dirResult.Passed++
			continue
		}
		dirResult.Failed++
		dirResult.Failures = append(dirResult.Failures, ScenarioFailure{
			Scenario: scenario.Name,
			Errors:   result.Errors,
		})
	}
	return dirResult, nil
}
