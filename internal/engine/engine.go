package engine

import (
	"encoding/json"
	"fmt"

	"github.com/axiomkit/axiom/internal/protocol"
	"github.com/axiomkit/axiom/internal/registry"
)

// Engine owns the current State and its typed context mirror, and exposes
// the Step/Dispatch transition.
//
// The type parameter C is the application's context type. It must be
// JSON-serializable: State.Context is derived by serializing the typed
// context so the State envelope stays fully portable.
//
// INVARIANTS:
//   - State.ProtocolVersion always equals protocol.ProtocolVersion
//   - The internal State is never handed out by reference; accessors clone
//   - Step never panics and never returns an error; failures degrade to
//     diagnostics
type Engine[C any] struct {
	reg     *registry.Registry[C]
	context C
	state   protocol.State
}

// Option configures engine construction and Reset.
type Option[C any] func(*options)

type options struct {
	facts         []protocol.Fact
	meta          map[string]protocol.Value
	schemaVersion string
}

// WithFacts seeds the engine with initial facts.
func WithFacts[C any](facts ...protocol.Fact) Option[C] {
	return func(o *options) {
		o.facts = append(o.facts, facts...)
	}
}

// WithMeta seeds the engine's State.Meta map.
func WithMeta[C any](meta map[string]protocol.Value) Option[C] {
	return func(o *options) {
		o.meta = meta
	}
}

// WithSchemaVersion sets the "$version" envelope key on produced states.
func WithSchemaVersion[C any](version string) Option[C] {
	return func(o *options) {
		o.schemaVersion = version
	}
}

// New constructs an engine with an initial typed context and a registry.
//
// The registry is taken by reference and must not be mutated after
// construction. Construction fails only when the context cannot be
// serialized to JSON - the one malformed-options failure mode.
func New[C any](reg *registry.Registry[C], initial C, opts ...Option[C]) (*Engine[C], error) {
	if reg == nil {
		return nil, fmt.Errorf("engine: registry is required")
	}

	e := &Engine[C]{reg: reg}
	if err := e.initialize(initial, opts...); err != nil {
		return nil, err
	}
	return e, nil
}

// initialize builds a fresh State from the context and options.
// Shared by New and Reset so both produce identical results.
func (e *Engine[C]) initialize(initial C, opts ...Option[C]) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctxValue, err := encodeContext(initial)
	if err != nil {
		return fmt.Errorf("engine: serialize context: %w", err)
	}

	state := protocol.State{
		SchemaVersion:   o.schemaVersion,
		Context:         ctxValue,
		Facts:           make([]protocol.Fact, 0, len(o.facts)),
		ProtocolVersion: protocol.ProtocolVersion,
	}
	for _, f := range o.facts {
		state.Facts = append(state.Facts, protocol.Fact{
			Tag:     f.Tag,
			Payload: protocol.CloneValue(f.Payload),
		})
	}
	if o.meta != nil {
		state.Meta = make(map[string]protocol.Value, len(o.meta))
		for k, v := range o.meta {
			state.Meta[k] = protocol.CloneValue(v)
		}
	}

	e.context = initial
	e.state = state
	return nil
}

// Reset fully reinitializes context and State as if freshly constructed.
// An escape hatch, not part of the rule-driven happy path.
func (e *Engine[C]) Reset(initial C, opts ...Option[C]) error {
	return e.initialize(initial, opts...)
}

// UpdateContext replaces the typed context via a pure transform function
// and re-serializes it into State.Context.
// An escape hatch, not part of the rule-driven happy path.
func (e *Engine[C]) UpdateContext(update func(C) C) error {
	next := update(e.context)
	ctxValue, err := encodeContext(next)
	if err != nil {
		return fmt.Errorf("engine: serialize context: %w", err)
	}
	e.context = next
	e.state.Context = ctxValue
	return nil
}

// AddFacts appends facts directly, bypassing rules.
// An escape hatch for exceptional cases.
func (e *Engine[C]) AddFacts(facts ...protocol.Fact) {
	for _, f := range facts {
		e.state.Facts = append(e.state.Facts, protocol.Fact{
			Tag:     f.Tag,
			Payload: protocol.CloneValue(f.Payload),
		})
	}
}

// ClearFacts drops the accumulated fact list. Fact growth management is the
// caller's responsibility; this is the documented pruning escape hatch.
func (e *Engine[C]) ClearFacts() {
	e.state.Facts = e.state.Facts[:0]
}

// State returns a defensive copy of the current state.
func (e *Engine[C]) State() protocol.State {
	return e.state.Clone()
}

// Context returns the current typed context value.
// The returned value is a shallow copy; treat reference-typed fields as
// read-only.
func (e *Engine[C]) Context() C {
	return e.context
}

// Facts returns a defensive copy of the accumulated facts.
func (e *Engine[C]) Facts() []protocol.Fact {
	out := make([]protocol.Fact, len(e.state.Facts))
	for i, f := range e.state.Facts {
		out[i] = protocol.Fact{Tag: f.Tag, Payload: protocol.CloneValue(f.Payload)}
	}
	return out
}

// Registry returns the registry the engine evaluates against.
func (e *Engine[C]) Registry() *registry.Registry[C] {
	return e.reg
}

// encodeContext serializes the typed context to a protocol Value via JSON.
func encodeContext[C any](ctx C) (protocol.Value, error) {
	data, err := json.Marshal(ctx)
	if err != nil {
		return nil, err
	}
	return protocol.UnmarshalValue(data)
}
