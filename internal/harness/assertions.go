package harness

import (
	"fmt"
	"strings"

	"github.com/axiomkit/axiom/internal/protocol"
)

// AssertionError is returned when an assertion fails.
// It includes enough context to debug the failure without re-running.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Facts    []protocol.Fact
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFinal facts:\n")
	for i, fact := range e.Facts {
		fmt.Fprintf(&buf, "  [%d] %s %v\n", i+1, fact.Tag, fact.Payload)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the final state and
// the diagnostics accumulated over the whole run. Returns one message per
// failed assertion; an empty slice means all passed.
func EvaluateAssertions(final protocol.State, diagnostics []protocol.Diagnostic, assertions []Assertion) []string {
	var errors []string

	for _, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertFactPresent:
			err = assertFactPresent(final.Facts, assertion)
		case AssertFactAbsent:
			err = assertFactAbsent(final.Facts, assertion)
		case AssertFactCount:
			err = assertFactCount(final.Facts, assertion)
		case AssertDiagnosticCount:
			err = assertDiagnosticCount(diagnostics, assertion)
		default:
			err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertFactPresent checks that a fact with the given tag and payload
// subset exists in the final fact log.
func assertFactPresent(facts []protocol.Fact, assertion Assertion) error {
	expected, err := convertPayload(assertion.Payload)
	if err != nil {
		return fmt.Errorf("fact_present: invalid payload: %w", err)
	}

	for _, fact := range facts {
		payload, ok := fact.Payload.(protocol.Object)
		if fact.Tag == assertion.Tag && ok && matchPayload(payload, expected) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertFactPresent,
		Expected: fmt.Sprintf("fact %q with payload %v", assertion.Tag, assertion.Payload),
		Actual:   "not found in final facts",
		Facts:    facts,
	}
}

// assertFactAbsent checks that no fact with the given tag and payload
// subset exists in the final fact log.
func assertFactAbsent(facts []protocol.Fact, assertion Assertion) error {
	expected, err := convertPayload(assertion.Payload)
	if err != nil {
		return fmt.Errorf("fact_absent: invalid payload: %w", err)
	}

	for _, fact := range facts {
		payload, ok := fact.Payload.(protocol.Object)
		if fact.Tag == assertion.Tag && ok && matchPayload(payload, expected) {
			return &AssertionError{
				Type:     AssertFactAbsent,
				Expected: fmt.Sprintf("no fact %q with payload %v", assertion.Tag, assertion.Payload),
				Actual:   "found in final facts",
				Facts:    facts,
			}
		}
	}

	return nil
}

// assertFactCount checks that facts with the given tag appear exactly
// Count times.
func assertFactCount(facts []protocol.Fact, assertion Assertion) error {
	count := 0
	for _, fact := range facts {
		if fact.Tag == assertion.Tag {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertFactCount,
			Expected: fmt.Sprintf("fact %q appears %d times", assertion.Tag, assertion.Count),
			Actual:   fmt.Sprintf("appears %d times", count),
			Facts:    facts,
		}
	}

	return nil
}

// assertDiagnosticCount checks that diagnostics of the given kind appear
// exactly Count times. An empty kind matches every diagnostic.
func assertDiagnosticCount(diagnostics []protocol.Diagnostic, assertion Assertion) error {
	count := 0
	for _, diag := range diagnostics {
		if assertion.Kind == "" || string(diag.Kind) == assertion.Kind {
			count++
		}
	}

	if count != assertion.Count {
		kind := assertion.Kind
		if kind == "" {
			kind = "any"
		}
		return &AssertionError{
			Type:     AssertDiagnosticCount,
			Expected: fmt.Sprintf("%d diagnostics of kind %q", assertion.Count, kind),
			Actual:   fmt.Sprintf("%d diagnostics", count),
		}
	}

	return nil
}

// matchPayload reports whether actual contains every field of expected
// with an equal value. Subset semantics: extra fields in actual are
// ignored.
func matchPayload(actual, expected protocol.Object) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !protocol.EqualValue(got, want) {
			return false
		}
	}
	return true
}
