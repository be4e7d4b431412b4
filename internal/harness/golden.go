package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/axiomkit/axiom/internal/protocol"
	"github.com/axiomkit/axiom/internal/registry"
)

// RunWithGolden executes a scenario and compares the full run trace
// against a golden file in testdata/golden/{scenario.Name}.golden.
//
// The snapshot is serialized with canonical JSON, so golden comparison
// is an exact byte-level determinism check across runs and platforms.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden[C any](t *testing.T, scenario *Scenario, reg *registry.Registry[C], initial C) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, reg, initial)
	if err != nil {
		return nil, err
	}

	snapshot, err := snapshotObject(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	traceJSON, err := protocol.MarshalCanonical(snapshot)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}

// snapshotObject flattens a result into a protocol object so the whole
// snapshot serializes through one canonical encoder.
func snapshotObject(name string, result *Result) (protocol.Object, error) {
	trace := make(protocol.Array, len(result.Trace))
	for i, step := range result.Trace {
		events := make(protocol.Array, len(step.Events))
		for j, ev := range step.Events {
			events[j] = protocol.Object{
				"tag":     protocol.String(ev.Tag),
				"payload": ev.Payload,
			}
		}

		facts := make(protocol.Array, len(step.NewFacts))
		for j, fact := range step.NewFacts {
			facts[j] = protocol.Object{
				"tag":     protocol.String(fact.Tag),
				"payload": fact.Payload,
			}
		}

		diags := make(protocol.Array, len(step.Diagnostics))
		for j, diag := range step.Diagnostics {
			d := protocol.Object{
				"kind":    protocol.String(diag.Kind),
				"message": protocol.String(diag.Message),
			}
			if diag.Data != nil {
				d["data"] = diag.Data
			}
			diags[j] = d
		}

		trace[i] = protocol.Object{
			"step":        protocol.Int(step.Step),
			"events":      events,
			"newFacts":    facts,
			"diagnostics": diags,
		}
	}

	finalJSON, err := protocol.MarshalCanonicalState(result.Final)
	if err != nil {
		return nil, err
	}
	final, err := protocol.UnmarshalValue(finalJSON)
	if err != nil {
		return nil, err
	}

	return protocol.Object{
		"scenarioName": protocol.String(name),
		"pass":         protocol.Bool(result.Pass),
		"trace":        trace,
		"final":        final,
	}, nil
}
