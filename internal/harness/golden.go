package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/peanoproof/peano/internal/canon"
)

// TraceSnapshot is the golden representation of a scenario run.
// It serializes through canonical JSON, so golden files are
// byte-stable across machines.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	RunToken     string       `json:"run_token"`
	Engine       string       `json:"engine"`
	Trace        []CheckEvent `json:"trace"`
}

// toCanonicalMap lowers the snapshot for canon.MarshalCanonical,
// which accepts only maps, slices, and scalar primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"claim":      event.Claim,
			"lesser":     event.Lesser,
			"greater":    event.Greater,
			"outcome":    event.Outcome,
			"expect":     event.Expect,
			"pass":       event.Pass,
			"seq":        event.Seq,
			"step_count": event.StepCount,
		}
		if len(event.Rules) > 0 {
			eventMap["rules"] = event.Rules
		}
		if event.DerivationHash != "" {
			eventMap["derivation_hash"] = event.DerivationHash
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"run_token":     s.RunToken,
		"engine":        s.Engine,
		"trace":         traceList,
	}
}

// RunWithGolden executes a scenario and compares its trace snapshot
// against testdata/golden/<name>.golden, where name is the scenario's
// golden field or its name. Regenerate golden files with:
//
//	go test ./internal/harness -update
//
// The executed result is returned so callers can also check
// assertions and expectations.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := RunScenario(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		RunToken:     result.RunToken,
		Engine:       result.Engine,
		Trace:        result.Trace,
	}
	payload, err := canon.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}

	name := scenario.Golden
	if name == "" {
		name = scenario.Name
	}
	goldenAssert(t, name, payload)

	return result, nil
}

// AssertGolden compares an already-executed result against the named
// golden file. Useful when the caller ran the scenario itself and
// wants the golden check without re-running.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: name,
		RunToken:     result.RunToken,
		Engine:       result.Engine,
		Trace:        result.Trace,
	}
	payload, err := canon.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	goldenAssert(t, name, payload)
	return nil
}

func goldenAssert(t *testing.T, name string, payload []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, payload)
}
