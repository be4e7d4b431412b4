package registry

import (
	"errors"

	"github.com/axiomkit/axiom/internal/protocol"
)

// RuleFunc derives new facts from the pre-step state, the typed context
// handle, and the events of the current step.
//
// Implementations are required to be referentially pure: no I/O, no
// mutation outside the returned slice and the context handle. This purity
// is a design contract, not something the engine enforces at runtime. A
// rule that needs I/O should emit a fact describing the need and let an
// external actor feed results back as events on a later step.
//
// A returned error (or a panic) is converted by the engine into a
// rule-error diagnostic; it never aborts the step.
type RuleFunc[C any] func(state protocol.State, ctx *C, events []protocol.Event) ([]protocol.Fact, error)

// ConstraintFunc checks that an invariant holds over the post-rule state.
//
// Return values:
//   - nil: the constraint passes
//   - ErrViolated: violation, reported with the descriptor's description
//   - any other error: violation, reported with the error's message
//
// A panic is likewise converted into a constraint-violation diagnostic.
type ConstraintFunc[C any] func(state protocol.State, ctx *C) error

// ErrViolated signals a constraint violation without a specific message.
// The engine substitutes the constraint's declared description.
var ErrViolated = errors.New("constraint violated")

// RuleDescriptor pairs a rule implementation with its identity and
// optional tag contract.
//
// Consumes and Emits declare which event/fact tags the rule reads and
// produces. They are purely informational: introspection and graph export
// read them, the engine does not.
type RuleDescriptor[C any] struct {
	ID          string
	Description string
	Impl        RuleFunc[C]
	Consumes    []string
	Emits       []string
	Meta        map[string]protocol.Value
}

// ConstraintDescriptor pairs a constraint implementation with its identity.
// Checks optionally declares the fact tags the constraint inspects.
type ConstraintDescriptor[C any] struct {
	ID          string
	Description string
	Impl        ConstraintFunc[C]
	Checks      []string
	Meta        map[string]protocol.Value
}

// Module groups rules and constraints for bulk registration.
type Module[C any] struct {
	Name        string
	Rules       []RuleDescriptor[C]
	Constraints []ConstraintDescriptor[C]
	Meta        map[string]protocol.Value
}
