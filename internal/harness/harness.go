package harness

import (
	"fmt"

	"github.com/axiomkit/axiom/internal/engine"
	"github.com/axiomkit/axiom/internal/protocol"
	"github.com/axiomkit/axiom/internal/registry"
)

// Run executes a scenario against a fresh engine and returns the result.
//
// Each scenario runs on its own engine built from the given registry and
// initial context, so scenarios are isolated from each other.
//
// Execution flow:
//  1. Build a fresh engine
//  2. Dispatch each step's event batch in order
//  3. Validate per-step expect clauses as steps complete
//  4. Evaluate assertions against the trace and final state
func Run[C any](scenario *Scenario, reg *registry.Registry[C], initial C) (*Result, error) {
	eng, err := engine.New(reg, initial)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	result := NewResult()
	var diagnostics []protocol.Diagnostic

	for i, step := range scenario.Steps {
		events, err := convertEvents(step.Events)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		before := len(eng.Facts())

		var opts []engine.StepOption
		if len(step.Rules) > 0 {
			opts = append(opts, engine.WithRuleIDs(step.Rules...))
		}
		stepResult := eng.Step(events, opts...)

		newFacts := stepResult.State.Facts[before:]
		diagnostics = append(diagnostics, stepResult.Diagnostics...)

		result.Trace = append(result.Trace, StepTrace{
			Step:        i + 1,
			Events:      events,
			NewFacts:    newFacts,
			Diagnostics: stepResult.Diagnostics,
		})

		validateExpect(result, i+1, step.Expect, len(newFacts), len(stepResult.Diagnostics))
	}

	result.Final = eng.State()

	for _, errMsg := range EvaluateAssertions(result.Final, diagnostics, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// validateExpect checks a step's expect clause against its actual outcome.
func validateExpect(result *Result, step int, expect *ExpectClause, factsAdded, diagnostics int) {
	if expect == nil {
		return
	}

	if expect.FactsAdded != nil && *expect.FactsAdded != factsAdded {
		result.AddError(fmt.Sprintf(
			"step %d: expected %d facts added, got %d",
			step, *expect.FactsAdded, factsAdded))
	}
	if expect.Diagnostics != nil && *expect.Diagnostics != diagnostics {
		result.AddError(fmt.Sprintf(
			"step %d: expected %d diagnostics, got %d",
			step, *expect.Diagnostics, diagnostics))
	}
}

// convertEvents converts YAML event specs to protocol events.
func convertEvents(specs []EventSpec) ([]protocol.Event, error) {
	events := make([]protocol.Event, len(specs))
	for i, spec := range specs {
		payload, err := convertPayload(spec.Payload)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", spec.Tag, err)
		}
		events[i] = protocol.Event{Tag: spec.Tag, Payload: payload}
	}
	return events, nil
}

// convertPayload converts a YAML-parsed map to a protocol object.
func convertPayload(payload map[string]any) (protocol.Object, error) {
	obj := make(protocol.Object, len(payload))
	for key, val := range payload {
		pv, err := protocol.FromAny(val)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		obj[key] = pv
	}
	return obj, nil
}
