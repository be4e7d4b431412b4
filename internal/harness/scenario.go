package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios dispatch event batches against a fresh engine and assert on
// the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps lists the event batches to dispatch, in order.
	Steps []StepSpec `yaml:"steps"`

	// Assertions validate the final facts and the accumulated diagnostics.
	// Supported types: fact_present, fact_absent, fact_count,
	// diagnostic_count.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// StepSpec is one engine step: a batch of events plus optional
// expectations about its immediate outcome.
type StepSpec struct {
	// Events is the batch dispatched in this step. May be empty, which
	// still runs rules and constraints against the current state.
	Events []EventSpec `yaml:"events"`

	// Rules optionally restricts the step to a subset of registered
	// rules. Empty means all rules in registration order.
	Rules []string `yaml:"rules,omitempty"`

	// Expect specifies the expected step outcome.
	// If nil, no per-step validation is performed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// EventSpec is a single event in YAML form.
type EventSpec struct {
	Tag string `yaml:"tag"`

	// Payload holds the event payload as parsed YAML. Values are
	// converted to protocol values before dispatch.
	Payload map[string]any `yaml:"payload,omitempty"`
}

// ExpectClause specifies expected per-step behavior.
// Counts are pointers so an omitted field means "don't check".
type ExpectClause struct {
	// FactsAdded is the expected number of facts this step appended.
	FactsAdded *int `yaml:"facts_added,omitempty"`

	// Diagnostics is the expected number of diagnostics this step
	// surfaced.
	Diagnostics *int `yaml:"diagnostics,omitempty"`
}

// Assertion validates the trace or final state after all steps ran.
type Assertion struct {
	// Type specifies the assertion type:
	// - "fact_present": a fact with Tag (and Payload subset) exists
	// - "fact_absent": no fact with Tag (and Payload subset) exists
	// - "fact_count": facts with Tag appear exactly Count times
	// - "diagnostic_count": diagnostics of Kind appear exactly Count times
	Type string `yaml:"type"`

	// Tag is the fact tag (fact_present, fact_absent, fact_count).
	Tag string `yaml:"tag,omitempty"`

	// Payload is a subset match on the fact payload. Only specified
	// fields are compared.
	Payload map[string]any `yaml:"payload,omitempty"`

	// Kind filters diagnostics (diagnostic_count). Empty matches all.
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of occurrences (fact_count,
	// diagnostic_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFactPresent     = "fact_present"
	AssertFactAbsent      = "fact_absent"
	AssertFactCount       = "fact_count"
	AssertDiagnosticCount = "diagnostic_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		for j, ev := range step.Events {
			if ev.Tag == "" {
				return fmt.Errorf("steps[%d].events[%d]: tag is required", i, j)
			}
		}
		if step.Expect != nil {
			if step.Expect.FactsAdded != nil && *step.Expect.FactsAdded < 0 {
				return fmt.Errorf("steps[%d].expect: facts_added must be non-negative", i)
			}
			if step.Expect.Diagnostics != nil && *step.Expect.Diagnostics < 0 {
				return fmt.Errorf("steps[%d].expect: diagnostics must be non-negative", i)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFactPresent, AssertFactAbsent:
		if a.Tag == "" {
			return fmt.Errorf("assertions[%d]: tag is required for %s", index, a.Type)
		}
	case AssertFactCount:
		if a.Tag == "" {
			return fmt.Errorf("assertions[%d]: tag is required for fact_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for fact_count", index)
		}
	case AssertDiagnosticCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for diagnostic_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
