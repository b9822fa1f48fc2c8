package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/peanoproof/peano/internal/claims"
	"github.com/peanoproof/peano/nat"
	"github.com/peanoproof/peano/order"
)

// Engine names a scenario may select.
const (
	EngineNative  = "native"
	EngineDatalog = "datalog"
)

// Scenario is one declarative proof scenario: a claim suite, the
// engine that decides it, and the assertions on the resulting trace.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the
	// default golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Claims lists CUE claim files or directories to compile.
	// Paths are read as written.
	Claims []string `yaml:"claims,omitempty"`

	// Checks are inline claims, appended after the compiled files.
	Checks []CheckStep `yaml:"checks,omitempty"`

	// Engine selects the deciding backend. Empty means native.
	Engine string `yaml:"engine,omitempty"`

	// Assertions validate the final trace.
	// Supported types: check_contains, check_order, outcome_count,
	// rule_count.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Golden names the golden trace file under testdata/golden.
	// Empty falls back to Name when golden comparison is requested.
	Golden string `yaml:"golden,omitempty"`

	// RunToken is an optional fixed run token. If empty, runs are
	// stamped with DefaultRunToken so golden traces stay stable.
	RunToken string `yaml:"run_token,omitempty"`
}

// CheckStep is one inline claim. Terms accept successor notation and
// decimal literals, same as the prover.
type CheckStep struct {
	// Name is the claim name. Defaults to check_<position>.
	Name string `yaml:"name,omitempty"`

	// Description defaults to a rendering of the pair and expectation.
	Description string `yaml:"description,omitempty"`

	Lesser  string `yaml:"lesser"`
	Greater string `yaml:"greater"`

	// Expect is the declared outcome: holds or rejected.
	Expect string `yaml:"expect"`
}

// Assertion validates the trace of an executed scenario.
type Assertion struct {
	// Type selects the assertion:
	// - "check_contains": a check for the pair appears in the trace
	// - "check_order": the pairs appear as a subsequence of the trace
	// - "outcome_count": exactly Count checks landed on Outcome
	// - "rule_count": the derivations applied Rule exactly Count times
	Type string `yaml:"type"`

	// Lesser and Greater name the pair (check_contains).
	Lesser  string `yaml:"lesser,omitempty"`
	Greater string `yaml:"greater,omitempty"`

	// Outcome is "holds" or "rejected". Required for outcome_count,
	// optional for check_contains where empty matches either outcome.
	Outcome string `yaml:"outcome,omitempty"`

	// Pairs is the expected subsequence (check_order).
	Pairs []CheckPair `yaml:"pairs,omitempty"`

	// Rule is a derivation rule name (rule_count).
	Rule string `yaml:"rule,omitempty"`

	// Count is the expected number of occurrences (outcome_count,
	// rule_count).
	Count int `yaml:"count,omitempty"`
}

// CheckPair names one pair inside a check_order assertion.
type CheckPair struct {
	Lesser  string `yaml:"lesser"`
	Greater string `yaml:"greater"`
}

// Assertion type constants.
const (
	AssertCheckContains = "check_contains"
	AssertCheckOrder    = "check_order"
	AssertOutcomeCount  = "outcome_count"
	AssertRuleCount     = "rule_count"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos like "assertion:" fail loudly instead of
// silently dropping checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every .yaml/.yml scenario in dir, in sorted
// file order.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario directory: %w", err)
	}

	var scenarios []*Scenario
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		scenario, err := LoadScenario(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}

	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", dir)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Claims) == 0 && len(s.Checks) == 0 {
		return fmt.Errorf("scenario must declare claim files or inline checks")
	}

	switch s.Engine {
	case "", EngineNative, EngineDatalog:
	default:
		return fmt.Errorf("unknown engine %q: must be %s or %s", s.Engine, EngineNative, EngineDatalog)
	}

	if len(s.Assertions) == 0 && s.Golden == "" {
		return fmt.Errorf("scenario must declare assertions or a golden trace")
	}

	for _, path := range s.Claims {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("claim file not found: %s", path)
		}
	}

	for i, step := range s.Checks {
		if err := validateCheck(i, step); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateCheck validates one inline check.
func validateCheck(index int, step CheckStep) error {
	if _, err := nat.Parse(step.Lesser); err != nil {
		return fmt.Errorf("checks[%d].lesser: %w", index, err)
	}
	if _, err := nat.Parse(step.Greater); err != nil {
		return fmt.Errorf("checks[%d].greater: %w", index, err)
	}
	if !validOutcome(step.Expect) {
		return fmt.Errorf("checks[%d].expect: must be %q or %q, got %q",
			index, claims.ExpectHolds, claims.ExpectRejected, step.Expect)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)

	case AssertCheckContains:
		if a.Lesser == "" || a.Greater == "" {
			return fmt.Errorf("assertions[%d]: lesser and greater are required for %s", index, a.Type)
		}
		if _, err := nat.Parse(a.Lesser); err != nil {
			return fmt.Errorf("assertions[%d].lesser: %w", index, err)
		}
		if _, err := nat.Parse(a.Greater); err != nil {
			return fmt.Errorf("assertions[%d].greater: %w", index, err)
		}
		if a.Outcome != "" && !validOutcome(a.Outcome) {
			return fmt.Errorf("assertions[%d]: outcome must be %q or %q, got %q",
				index, claims.ExpectHolds, claims.ExpectRejected, a.Outcome)
		}

	case AssertCheckOrder:
		if len(a.Pairs) == 0 {
			return fmt.Errorf("assertions[%d]: pairs list is required for %s", index, a.Type)
		}
		for j, pair := range a.Pairs {
			if _, err := nat.Parse(pair.Lesser); err != nil {
				return fmt.Errorf("assertions[%d].pairs[%d].lesser: %w", index, j, err)
			}
			if _, err := nat.Parse(pair.Greater); err != nil {
				return fmt.Errorf("assertions[%d].pairs[%d].greater: %w", index, j, err)
			}
		}

	case AssertOutcomeCount:
		if !validOutcome(a.Outcome) {
			return fmt.Errorf("assertions[%d]: outcome must be %q or %q, got %q",
				index, claims.ExpectHolds, claims.ExpectRejected, a.Outcome)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}

	case AssertRuleCount:
		if a.Rule != string(order.RuleZeroLtSucc) && a.Rule != string(order.RuleSuccMono) {
			return fmt.Errorf("assertions[%d]: unknown rule %q: must be %s or %s",
				index, a.Rule, order.RuleZeroLtSucc, order.RuleSuccMono)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}

	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// validOutcome reports whether s is one of the two check outcomes.
// Outcomes share their vocabulary with claim expectations.
func validOutcome(s string) bool {
	e := claims.Expectation(s)
	return e == claims.ExpectHolds || e == claims.ExpectRejected
}
