package harness

import (
	"fmt"
	"strings"

	"github.com/peanoproof/peano/nat"
)

// AssertionError is returned when an assertion fails. It carries the
// full trace so the failure message shows what actually ran.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []CheckEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s: %s < %s [%s]\n",
			i+1, event.Claim, event.Lesser, event.Greater, event.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCheckContains:
			err = assertCheckContains(result.Trace, assertion)
		case AssertCheckOrder:
			err = assertCheckOrder(result.Trace, assertion)
		case AssertOutcomeCount:
			err = assertOutcomeCount(result.Trace, assertion)
		case AssertRuleCount:
			err = assertRuleCount(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// canonicalTerm normalizes an assertion term so "2" and "S(S(Z))"
// compare equal against trace events, which always hold canonical
// successor notation. Unparseable terms pass through; they were
// rejected at load time and can only reach here on hand-built input.
func canonicalTerm(s string) string {
	n, err := nat.Parse(s)
	if err != nil {
		return s
	}
	return nat.Format(n)
}

// assertCheckContains checks that the trace contains a check for the
// pair, with the asserted outcome when one is given.
func assertCheckContains(trace []CheckEvent, assertion Assertion) error {
	lesser := canonicalTerm(assertion.Lesser)
	greater := canonicalTerm(assertion.Greater)

	for _, event := range trace {
		if event.Lesser != lesser || event.Greater != greater {
			continue
		}
		if assertion.Outcome != "" && event.Outcome != assertion.Outcome {
			continue
		}
		return nil
	}

	expected := fmt.Sprintf("check %s < %s", lesser, greater)
	if assertion.Outcome != "" {
		expected += fmt.Sprintf(" with outcome %s", assertion.Outcome)
	}
	return &AssertionError{
		Type:     AssertCheckContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertCheckOrder checks that the pairs appear in the trace as a
// subsequence. Intervening checks are allowed; order is what counts.
func assertCheckOrder(trace []CheckEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next == len(assertion.Pairs) {
			break
		}
		pair := assertion.Pairs[next]
		if event.Lesser == canonicalTerm(pair.Lesser) && event.Greater == canonicalTerm(pair.Greater) {
			next++
		}
	}

	if next != len(assertion.Pairs) {
		pair := assertion.Pairs[next]
		return &AssertionError{
			Type:     AssertCheckOrder,
			Expected: fmt.Sprintf("pairs in trace order: %s", formatPairs(assertion.Pairs)),
			Actual: fmt.Sprintf("matched %d of %d pairs; %s < %s missing after the last match",
				next, len(assertion.Pairs), canonicalTerm(pair.Lesser), canonicalTerm(pair.Greater)),
			Trace: trace,
		}
	}

	return nil
}

// formatPairs renders a pair list for assertion messages.
func formatPairs(pairs []CheckPair) string {
	parts := make([]string, len(pairs))
	for i, pair := range pairs {
		parts[i] = fmt.Sprintf("%s < %s", canonicalTerm(pair.Lesser), canonicalTerm(pair.Greater))
	}
	return strings.Join(parts, ", ")
}

// assertOutcomeCount checks that exactly Count checks landed on the
// outcome.
func assertOutcomeCount(trace []CheckEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Outcome == assertion.Outcome {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertOutcomeCount,
			Expected: fmt.Sprintf("%d check(s) with outcome %s", assertion.Count, assertion.Outcome),
			Actual:   fmt.Sprintf("%d check(s)", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertRuleCount checks that the recorded derivations applied the
// rule exactly Count times across the whole trace.
func assertRuleCount(trace []CheckEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		for _, rule := range event.Rules {
			if rule == assertion.Rule {
				count++
			}
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertRuleCount,
			Expected: fmt.Sprintf("%d application(s) of %s", assertion.Count, assertion.Rule),
			Actual:   fmt.Sprintf("%d application(s)", count),
			Trace:    trace,
		}
	}

	return nil
}
