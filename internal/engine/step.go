package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/axiomkit/axiom/internal/protocol"
	"github.com/axiomkit/axiom/internal/registry"
)

// StepResult is the outcome of one Step call: the new state and the
// diagnostics collected while producing it. Constraint violations are
// reported here, never enforced - the engine has no transactional abort
// mode, and deciding what to do with diagnostics is the caller's job.
type StepResult struct {
	State       protocol.State        `json:"state"`
	Diagnostics []protocol.Diagnostic `json:"diagnostics"`
}

// StepOption narrows one Step call to an explicit ordered subset of rule
// or constraint ids (partial re-evaluation).
type StepOption func(*stepConfig)

type stepConfig struct {
	ruleIDs       []string
	constraintIDs []string
}

// WithRuleIDs evaluates only the given rules, in the given order.
// Ids absent from the registry produce rule-error diagnostics.
func WithRuleIDs(ids ...string) StepOption {
	return func(c *stepConfig) {
		c.ruleIDs = ids
	}
}

// WithConstraintIDs checks only the given constraints, in the given order.
// Ids absent from the registry produce constraint-violation diagnostics.
func WithConstraintIDs(ids ...string) StepOption {
	return func(c *stepConfig) {
		c.constraintIDs = ids
	}
}

// Step runs one evaluation pass over the registered rules and constraints.
//
// Rules run against the pre-step fact set; constraints run against the
// post-step fact set. This ordering is load-bearing: constraints validate
// the result of rule execution, not the pre-state.
//
// Step never returns an error. Every failure mode converges into the
// returned diagnostics list.
func (e *Engine[C]) Step(events []protocol.Event, opts ...StepOption) StepResult {
	var cfg stepConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ruleIDs := cfg.ruleIDs
	if ruleIDs == nil {
		ruleIDs = e.reg.RuleIDs()
	}
	constraintIDs := cfg.constraintIDs
	if constraintIDs == nil {
		constraintIDs = e.reg.ConstraintIDs()
	}

	var diagnostics []protocol.Diagnostic

	// Phase 1: rules, against the OLD state
	prior := e.state
	var derived []protocol.Fact
	for _, id := range ruleIDs {
		desc := e.reg.Rule(id)
		if desc == nil {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Kind:    protocol.DiagnosticRuleError,
				Message: fmt.Sprintf("Rule %q not found in registry", id),
				Data:    protocol.Object{"ruleId": protocol.String(id)},
			})
			continue
		}

		facts, err := invokeRule(desc, prior, &e.context, events)
		if err != nil {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Kind:    protocol.DiagnosticRuleError,
				Message: fmt.Sprintf("rule %q: %s", id, err),
				Data:    protocol.Object{"ruleId": protocol.String(id)},
			})
			continue
		}
		derived = append(derived, facts...)
	}

	// Phase 2: immutable append - the prior State is never mutated in place
	next := prior.Clone()
	next.Facts = append(next.Facts, derived...)

	// Rules may mutate the typed context through their handle; reflect that
	// in the serialized mirror. On serialization failure the prior context
	// value is kept and the failure degrades to a diagnostic.
	if ctxValue, err := encodeContext(e.context); err != nil {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Kind:    protocol.DiagnosticRuleError,
			Message: fmt.Sprintf("context serialization failed: %s", err),
		})
	} else {
		next.Context = ctxValue
	}

	// Phase 3: constraints, against the NEW state
	for _, id := range constraintIDs {
		desc := e.reg.Constraint(id)
		if desc == nil {
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Kind:    protocol.DiagnosticConstraintViolation,
				Message: fmt.Sprintf("Constraint %q not found in registry", id),
				Data:    protocol.Object{"constraintId": protocol.String(id)},
			})
			continue
		}

		if err := invokeConstraint(desc, next, &e.context); err != nil {
			message := err.Error()
			if errors.Is(err, registry.ErrViolated) || message == "" {
				message = desc.Description
			}
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Kind:    protocol.DiagnosticConstraintViolation,
				Message: message,
				Data:    protocol.Object{"constraintId": protocol.String(id)},
			})
		}
	}

	// Phase 4: swap in the new state. Violations never roll back facts.
	e.state = next

	slog.Debug("step completed",
		"events", len(events),
		"derived_facts", len(derived),
		"total_facts", len(next.Facts),
		"diagnostics", len(diagnostics),
	)

	return StepResult{State: next.Clone(), Diagnostics: diagnostics}
}

// Dispatch is a fire-and-forget Step: the returned state and diagnostics
// are discarded.
func (e *Engine[C]) Dispatch(events []protocol.Event) {
	result := e.Step(events)
	if len(result.Diagnostics) > 0 {
		slog.Warn("dispatch discarded diagnostics",
			"count", len(result.Diagnostics),
		)
	}
}

// invokeRule runs a rule implementation behind a recover boundary.
// A panic converts to an error so one failing rule never aborts the step.
func invokeRule[C any](desc *registry.RuleDescriptor[C], state protocol.State, ctx *C, events []protocol.Event) (facts []protocol.Fact, err error) {
	defer func() {
		if r := recover(); r != nil {
			facts = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if desc.Impl == nil {
		return nil, fmt.Errorf("no implementation")
	}
	return desc.Impl(state, ctx, events)
}

// invokeConstraint runs a constraint implementation behind a recover
// boundary. Errors and panics are reported identically - both surface as
// constraint-violation diagnostics.
func invokeConstraint[C any](desc *registry.ConstraintDescriptor[C], state protocol.State, ctx *C) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if desc.Impl == nil {
		return fmt.Errorf("no implementation")
	}
	return desc.Impl(state, ctx)
}
