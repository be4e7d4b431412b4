package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomkit/axiom/internal/protocol"
	"github.com/axiomkit/axiom/internal/registry"
)

type echoCtx struct {
	Steps int `json:"steps"`
}

// newEchoRegistry builds a registry with one rule that counts steps and
// echoes each event as a fact, plus a constraint capping the fact log.
func newEchoRegistry(t *testing.T, maxFacts int) *registry.Registry[echoCtx] {
	t.Helper()

	reg := registry.New[echoCtx]()
	require.NoError(t, reg.RegisterRule(registry.RuleDescriptor[echoCtx]{
		ID:          "echo",
		Description: "echoes events as facts",
		Impl: func(_ protocol.State, ctx *echoCtx, events []protocol.Event) ([]protocol.Fact, error) {
			ctx.Steps++
			facts := make([]protocol.Fact, len(events))
			for i, ev := range events {
				facts[i] = protocol.Fact{Tag: ev.Tag, Payload: ev.Payload}
			}
			return facts, nil
		},
	}))
	if maxFacts > 0 {
		require.NoError(t, reg.RegisterConstraint(registry.ConstraintDescriptor[echoCtx]{
			ID:          "fact-cap",
			Description: "too many facts",
			Impl: func(state protocol.State, _ *echoCtx) error {
				if len(state.Facts) > maxFacts {
					return registry.ErrViolated
				}
				return nil
			},
		}))
	}
	return reg
}

func TestRunEchoScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/echo-basic.yaml")
	require.NoError(t, err)

	result, err := Run(scenario, newEchoRegistry(t, 0), echoCtx{})
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Len(t, result.Trace[0].NewFacts, 1)
	assert.Equal(t, "ping", result.Trace[0].NewFacts[0].Tag)
	assert.Len(t, result.Final.Facts, 2)
}

func TestRunConstraintScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/overflow-guard.yaml")
	require.NoError(t, err)

	result, err := Run(scenario, newEchoRegistry(t, 2), echoCtx{})
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	require.Len(t, result.Trace[1].Diagnostics, 1)
	diag := result.Trace[1].Diagnostics[0]
	assert.Equal(t, protocol.DiagnosticConstraintViolation, diag.Kind)
	assert.Equal(t, "too many facts", diag.Message)
}

func TestRunExpectMismatchFails(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: expect-mismatch
description: a wrong facts_added count fails the scenario
steps:
  - events:
      - tag: ping
    expect:
      facts_added: 5
`))
	require.NoError(t, err)

	result, err := Run(scenario, newEchoRegistry(t, 0), echoCtx{})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected 5 facts added, got 1")
}

func TestRunRuleSubset(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: rule-subset
description: a step can restrict which rules run
steps:
  - events:
      - tag: ping
    rules: [no-such-rule]
    expect:
      facts_added: 0
      diagnostics: 1
`))
	require.NoError(t, err)

	result, err := Run(scenario, newEchoRegistry(t, 0), echoCtx{})
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace[0].Diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticRuleError, result.Trace[0].Diagnostics[0].Kind)
}

func TestRunEmptyEventBatch(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: empty-batch
description: an empty batch still runs rules and constraints
steps:
  - events: []
    expect:
      facts_added: 0
      diagnostics: 0
`))
	require.NoError(t, err)

	result, err := Run(scenario, newEchoRegistry(t, 0), echoCtx{})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestConvertPayloadRejectsUnsupported(t *testing.T) {
	_, err := convertPayload(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}
