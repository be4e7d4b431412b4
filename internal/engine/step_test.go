package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomkit/axiom/internal/protocol"
	"github.com/axiomkit/axiom/internal/registry"
)

func TestStep_RuleIsolation(t *testing.T) {
	// Rule B throws; A and C must still run and diagnostics must reference
	// exactly B.
	reg := registry.New[counters]()
	require.NoError(t, reg.RegisterRule(emitRule("A", "X")))
	require.NoError(t, reg.RegisterRule(registry.RuleDescriptor[counters]{
		ID: "B",
		Impl: func(protocol.State, *counters, []protocol.Event) ([]protocol.Fact, error) {
			panic("boom")
		},
	}))
	require.NoError(t, reg.RegisterRule(emitRule("C", "Y")))

	e := newTestEngine(t, reg)
	result := e.Step(nil)

	tags := factTags(result.State.Facts)
	assert.Equal(t, []string{"X", "Y"}, tags)

	require.Len(t, result.Diagnostics, 1)
	d := result.Diagnostics[0]
	assert.Equal(t, protocol.DiagnosticRuleError, d.Kind)
	assert.Contains(t, d.Message, `"B"`)
	assert.Contains(t, d.Message, "boom")
}

func TestStep_RuleErrorReturn(t *testing.T) {
	reg := registry.New[counters]()
	require.NoError(t, reg.RegisterRule(registry.RuleDescriptor[counters]{
		ID: "failing",
		Impl: func(protocol.State, *counters, []protocol.Event) ([]protocol.Fact, error) {
			return nil, errors.New("bad input")
		},
	}))

	e := newTestEngine(t, reg)
	result := e.Step(nil)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticRuleError, result.Diagnostics[0].Kind)
	assert.Contains(t, result.Diagnostics[0].Message, "bad input")
}

func TestStep_MissingRuleIDTolerated(t *testing.T) {
	reg := registry.New[counters]()
	require.NoError(t, reg.RegisterRule(emitRule("A", "X")))

	e := newTestEngine(t, reg)
	result := e.Step(nil, WithRuleIDs("A", "ghost"))

	assert.Equal(t, []string{"X"}, factTags(result.State.Facts))
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticRuleError, result.Diagnostics[0].Kind)
	assert.Equal(t, `Rule "ghost" not found in registry`, result.Diagnostics[0].Message)
}

func TestStep_MissingConstraintIDTolerated(t *testing.T) {
	e := newTestEngine(t, registry.New[counters]())
	result := e.Step(nil, WithConstraintIDs("ghost"))

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticConstraintViolation, result.Diagnostics[0].Kind)
	assert.Equal(t, `Constraint "ghost" not found in registry`, result.Diagnostics[0].Message)
}

func TestStep_RulesSeeOldState_ConstraintsSeeNewState(t *testing.T) {
	reg := registry.New[counters]()

	var ruleSawFacts int
	require.NoError(t, reg.RegisterRule(registry.RuleDescriptor[counters]{
		ID: "observer",
		Impl: func(s protocol.State, _ *counters, _ []protocol.Event) ([]protocol.Fact, error) {
			ruleSawFacts = len(s.Facts)
			return []protocol.Fact{{Tag: "tick", Payload: protocol.Null{}}}, nil
		},
	}))
	require.NoError(t, reg.RegisterConstraint(registry.ConstraintDescriptor[counters]{
		ID:          "has-facts",
		Description: "at least one fact must exist",
		Impl: func(s protocol.State, _ *counters) error {
			if len(s.Facts) == 0 {
				return registry.ErrViolated
			}
			return nil
		},
	}))

	e := newTestEngine(t, reg)

	// Step 1: rule sees the empty pre-state, constraint sees the post-state
	// that already contains the emitted fact - so it passes on step 1.
	result := e.Step(nil)
	assert.Equal(t, 0, ruleSawFacts)
	assert.Empty(t, result.Diagnostics)

	// Step 2: rule now sees the fact from step 1.
	e.Step(nil)
	assert.Equal(t, 1, ruleSawFacts)
}

func TestStep_ConstraintFailsWhenNoRuleEmits(t *testing.T) {
	reg := registry.New[counters]()
	require.NoError(t, reg.RegisterConstraint(registry.ConstraintDescriptor[counters]{
		ID:          "has-facts",
		Description: "at least one fact must exist",
		Impl: func(s protocol.State, _ *counters) error {
			if len(s.Facts) == 0 {
				return registry.ErrViolated
			}
			return nil
		},
	}))

	e := newTestEngine(t, reg)
	result := e.Step(nil)

	require.Len(t, result.Diagnostics, 1)
	d := result.Diagnostics[0]
	assert.Equal(t, protocol.DiagnosticConstraintViolation, d.Kind)
	// ErrViolated reports the constraint's declared description
	assert.Equal(t, "at least one fact must exist", d.Message)
}

func TestStep_ViolationReportedNotRolledBack(t *testing.T) {
	reg := registry.New[counters]()
	require.NoError(t, reg.RegisterRule(emitRule("emitter", "item")))
	require.NoError(t, reg.RegisterConstraint(registry.ConstraintDescriptor[counters]{
		ID:          "maxFacts",
		Description: "fact list must not exceed 2",
		Impl: func(s protocol.State, _ *counters) error {
			if len(s.Facts) > 2 {
				return fmt.Errorf("too many facts: %d", len(s.Facts))
			}
			return nil
		},
	}))

	e := newTestEngine(t, reg)
	e.Step(nil)
	e.Step(nil)
	result := e.Step(nil)

	// Violation reported, facts NOT rolled back
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticConstraintViolation, result.Diagnostics[0].Kind)
	assert.Equal(t, "too many facts: 3", result.Diagnostics[0].Message)
	assert.Len(t, result.State.Facts, 3)
	assert.Len(t, e.Facts(), 3)
}

func TestStep_ConstraintPanicBecomesViolation(t *testing.T) {
	reg := registry.New[counters]()
	require.NoError(t, reg.RegisterConstraint(registry.ConstraintDescriptor[counters]{
		ID: "exploding",
		Impl: func(protocol.State, *counters) error {
			panic("kaboom")
		},
	}))

	e := newTestEngine(t, reg)
	result := e.Step(nil)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticConstraintViolation, result.Diagnostics[0].Kind)
	assert.Contains(t, result.Diagnostics[0].Message, "kaboom")
}

func TestStep_FactMonotonicity(t *testing.T) {
	reg := registry.New[counters]()
	require.NoError(t, reg.RegisterRule(emitRule("emitter", "tick")))

	e := newTestEngine(t, reg)
	prev := 0
	for i := 0; i < 5; i++ {
		result := e.Step(nil)
		assert.GreaterOrEqual(t, len(result.State.Facts), prev)
		prev = len(result.State.Facts)
	}
	assert.Equal(t, 5, prev)
}

func TestStep_EventsAreTransient(t *testing.T) {
	reg := registry.New[counters]()
	var seen []string
	require.NoError(t, reg.RegisterRule(registry.RuleDescriptor[counters]{
		ID: "listener",
		Impl: func(_ protocol.State, _ *counters, events []protocol.Event) ([]protocol.Fact, error) {
			for _, ev := range events {
				seen = append(seen, ev.Tag)
			}
			return nil, nil
		},
	}))

	e := newTestEngine(t, reg)
	result := e.Step([]protocol.Event{{Tag: "once", Payload: protocol.Null{}}})

	// Events reach rules but are never persisted in State
	assert.Equal(t, []string{"once"}, seen)
	assert.Empty(t, result.State.Facts)

	e.Step(nil)
	assert.Equal(t, []string{"once"}, seen)
}

func TestStep_ContextMutationReflectedInState(t *testing.T) {
	reg := registry.New[counters]()
	require.NoError(t, reg.RegisterRule(registry.RuleDescriptor[counters]{
		ID: "bump",
		Impl: func(_ protocol.State, ctx *counters, _ []protocol.Event) ([]protocol.Fact, error) {
			ctx.Steps++
			return nil, nil
		},
	}))

	e := newTestEngine(t, reg)
	result := e.Step(nil)

	assert.Equal(t, 1, e.Context().Steps)
	assert.Equal(t, protocol.Object{"steps": protocol.Int(1)}, result.State.Context)
}

func TestStep_PriorStateNotMutated(t *testing.T) {
	reg := registry.New[counters]()
	require.NoError(t, reg.RegisterRule(emitRule("emitter", "tick")))

	e := newTestEngine(t, reg)
	first := e.Step(nil).State
	require.Len(t, first.Facts, 1)

	e.Step(nil)

	// The state returned from step 1 is unaffected by step 2
	assert.Len(t, first.Facts, 1)
}

func TestStep_Determinism(t *testing.T) {
	build := func() *Engine[counters] {
		reg := registry.New[counters]()
		require.NoError(t, reg.RegisterRule(registry.RuleDescriptor[counters]{
			ID: "echo",
			Impl: func(_ protocol.State, ctx *counters, events []protocol.Event) ([]protocol.Fact, error) {
				ctx.Steps++
				facts := make([]protocol.Fact, 0, len(events))
				for _, ev := range events {
					facts = append(facts, protocol.Fact{Tag: "seen-" + ev.Tag, Payload: ev.Payload})
				}
				return facts, nil
			},
		}))
		require.NoError(t, reg.RegisterConstraint(registry.ConstraintDescriptor[counters]{
			ID:          "cap",
			Description: "fact cap",
			Impl: func(s protocol.State, _ *counters) error {
				if len(s.Facts) > 2 {
					return registry.ErrViolated
				}
				return nil
			},
		}))
		e, err := New(reg, counters{})
		require.NoError(t, err)
		return e
	}

	batches := [][]protocol.Event{
		{{Tag: "a", Payload: protocol.Int(1)}},
		{{Tag: "b", Payload: protocol.Object{"x": protocol.String("y")}}, {Tag: "c", Payload: protocol.Null{}}},
		nil,
	}

	e1, e2 := build(), build()
	for _, batch := range batches {
		r1 := e1.Step(batch)
		r2 := e2.Step(batch)

		s1, err := protocol.MarshalCanonicalState(r1.State)
		require.NoError(t, err)
		s2, err := protocol.MarshalCanonicalState(r2.State)
		require.NoError(t, err)
		assert.Equal(t, string(s1), string(s2), "states must be byte-identical")

		d1, err := protocol.MarshalCanonicalDiagnostics(r1.Diagnostics)
		require.NoError(t, err)
		d2, err := protocol.MarshalCanonicalDiagnostics(r2.Diagnostics)
		require.NoError(t, err)
		assert.Equal(t, string(d1), string(d2), "diagnostics must be byte-identical")
	}
}

func TestDispatch_DiscardsResult(t *testing.T) {
	reg := registry.New[counters]()
	require.NoError(t, reg.RegisterRule(emitRule("emitter", "tick")))

	e := newTestEngine(t, reg)
	e.Dispatch(nil)

	assert.Len(t, e.Facts(), 1)
}

func factTags(facts []protocol.Fact) []string {
	tags := make([]string, len(facts))
	for i, f := range facts {
		tags[i] = f.Tag
	}
	return tags
}
