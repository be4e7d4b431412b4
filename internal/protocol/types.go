package protocol

import (
	"encoding/json"
	"fmt"
)

// Fact is a tagged, immutable proposition. Facts accumulate in State.Facts;
// they are never mutated, only appended. Uniqueness is NOT enforced -
// duplicate facts with the same tag and payload may coexist, and
// de-duplication, if desired, is a rule's responsibility.
type Fact struct {
	Tag     string `json:"tag"`
	Payload Value  `json:"payload"`
}

// Event is a tagged, immutable occurrence. Events are transient: they exist
// only for the duration of one Step call and are never persisted in State.
type Event struct {
	Tag     string `json:"tag"`
	Payload Value  `json:"payload"`
}

// NewFact creates a Fact with the given tag and payload.
func NewFact(tag string, payload Value) Fact {
	return Fact{Tag: tag, Payload: payload}
}

// NewEvent creates an Event with the given tag and payload.
func NewEvent(tag string, payload Value) Event {
	return Event{Tag: tag, Payload: payload}
}

// DiagnosticKind categorizes a Diagnostic entry.
type DiagnosticKind string

const (
	// DiagnosticRuleError reports a missing rule id or an error raised by a
	// rule implementation during a step.
	DiagnosticRuleError DiagnosticKind = "rule-error"

	// DiagnosticConstraintViolation reports a missing constraint id, an
	// error raised by a constraint implementation, or a reported violation.
	DiagnosticConstraintViolation DiagnosticKind = "constraint-violation"
)

// Diagnostic is a non-fatal report of a rule or constraint level problem
// encountered during a step. Diagnostics are produced fresh on each Step
// call and never persisted into State.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
	Data    Value          `json:"data,omitempty"`
}

// State is the portable engine state envelope.
//
// Context is an opaque, engine-agnostic application payload, serialized so
// that State is fully JSON-portable even though call sites also manipulate
// a strongly-typed in-memory context mirror.
//
// ProtocolVersion must equal the engine's compiled protocol version for any
// State the engine accepts as its own; a mismatch is a warning condition for
// schema-level consumers, not a hard engine failure.
type State struct {
	SchemaVersion   string           `json:"$version,omitempty"`
	Context         Value            `json:"context"`
	Facts           []Fact           `json:"facts"`
	Meta            map[string]Value `json:"meta,omitempty"`
	ProtocolVersion string           `json:"protocolVersion"`
}

// Clone returns a deep copy of the state. The engine hands out clones from
// all accessors so callers can never mutate the live state by reference.
func (s State) Clone() State {
	out := State{
		SchemaVersion:   s.SchemaVersion,
		Context:         CloneValue(s.Context),
		ProtocolVersion: s.ProtocolVersion,
	}
	if s.Facts != nil {
		out.Facts = make([]Fact, len(s.Facts))
		for i, f := range s.Facts {
			out.Facts[i] = Fact{Tag: f.Tag, Payload: CloneValue(f.Payload)}
		}
	}
	if s.Meta != nil {
		out.Meta = make(map[string]Value, len(s.Meta))
		for k, v := range s.Meta {
			out.Meta[k] = CloneValue(v)
		}
	}
	return out
}

// Equal reports structural equality of two states.
func (s State) Equal(other State) bool {
	if s.SchemaVersion != other.SchemaVersion ||
		s.ProtocolVersion != other.ProtocolVersion ||
		len(s.Facts) != len(other.Facts) ||
		len(s.Meta) != len(other.Meta) {
		return false
	}
	if !EqualValue(s.Context, other.Context) {
		return false
	}
	for i := range s.Facts {
		if s.Facts[i].Tag != other.Facts[i].Tag ||
			!EqualValue(s.Facts[i].Payload, other.Facts[i].Payload) {
			return false
		}
	}
	for k, v := range s.Meta {
		ov, ok := other.Meta[k]
		if !ok || !EqualValue(v, ov) {
			return false
		}
	}
	return true
}

// canonicalObject converts the state to an Object for canonical marshaling.
func (s State) canonicalObject() Object {
	facts := make(Array, len(s.Facts))
	for i, f := range s.Facts {
		facts[i] = f.canonicalObject()
	}

	obj := Object{
		"context":         contextOrNull(s.Context),
		"facts":           facts,
		"protocolVersion": String(s.ProtocolVersion),
	}
	if s.SchemaVersion != "" {
		obj["$version"] = String(s.SchemaVersion)
	}
	if len(s.Meta) > 0 {
		meta := make(Object, len(s.Meta))
		for k, v := range s.Meta {
			meta[k] = v
		}
		obj["meta"] = meta
	}
	return obj
}

func (f Fact) canonicalObject() Object {
	return Object{
		"tag":     String(f.Tag),
		"payload": contextOrNull(f.Payload),
	}
}

// contextOrNull maps an unset Value to explicit JSON null.
func contextOrNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}

// MarshalCanonicalState produces the canonical JSON bytes of a state.
// Used for state hashing and byte-identical determinism comparison.
func MarshalCanonicalState(s State) ([]byte, error) {
	return MarshalCanonical(s.canonicalObject())
}

// MarshalCanonicalEvents produces canonical JSON bytes for an event batch.
func MarshalCanonicalEvents(events []Event) ([]byte, error) {
	arr := make(Array, len(events))
	for i, ev := range events {
		arr[i] = Object{
			"tag":     String(ev.Tag),
			"payload": contextOrNull(ev.Payload),
		}
	}
	return MarshalCanonical(arr)
}

// MarshalCanonicalDiagnostics produces canonical JSON bytes for diagnostics.
func MarshalCanonicalDiagnostics(diags []Diagnostic) ([]byte, error) {
	arr := make(Array, len(diags))
	for i, d := range diags {
		obj := Object{
			"kind":    String(string(d.Kind)),
			"message": String(d.Message),
		}
		if d.Data != nil {
			obj["data"] = d.Data
		}
		arr[i] = obj
	}
	return MarshalCanonical(arr)
}

// UnmarshalJSON implements json.Unmarshaler for Fact.
// Required because Payload is an interface type.
func (f *Fact) UnmarshalJSON(data []byte) error {
	var raw struct {
		Tag     string          `json:"tag"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Tag = raw.Tag
	if len(raw.Payload) == 0 {
		f.Payload = Null{}
		return nil
	}
	payload, err := UnmarshalValue(raw.Payload)
	if err != nil {
		return fmt.Errorf("fact %q payload: %w", raw.Tag, err)
	}
	f.Payload = payload
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Event.
func (e *Event) UnmarshalJSON(data []byte) error {
	var f Fact
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	e.Tag = f.Tag
	e.Payload = f.Payload
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Diagnostic.
func (d *Diagnostic) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind    string          `json:"kind"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Kind = DiagnosticKind(raw.Kind)
	d.Message = raw.Message
	if len(raw.Data) > 0 {
		v, err := UnmarshalValue(raw.Data)
		if err != nil {
			return fmt.Errorf("diagnostic data: %w", err)
		}
		d.Data = v
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for State.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw struct {
		SchemaVersion   string                     `json:"$version"`
		Context         json.RawMessage            `json:"context"`
		Facts           []Fact                     `json:"facts"`
		Meta            map[string]json.RawMessage `json:"meta"`
		ProtocolVersion string                     `json:"protocolVersion"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.SchemaVersion = raw.SchemaVersion
	s.ProtocolVersion = raw.ProtocolVersion
	s.Facts = raw.Facts

	if len(raw.Context) > 0 {
		ctx, err := UnmarshalValue(raw.Context)
		if err != nil {
			return fmt.Errorf("state context: %w", err)
		}
		s.Context = ctx
	} else {
		s.Context = Null{}
	}

	s.Meta = nil
	if raw.Meta != nil {
		s.Meta = make(map[string]Value, len(raw.Meta))
		for k, v := range raw.Meta {
			mv, err := UnmarshalValue(v)
			if err != nil {
				return fmt.Errorf("state meta %q: %w", k, err)
			}
			s.Meta[k] = mv
		}
	}
	return nil
}
