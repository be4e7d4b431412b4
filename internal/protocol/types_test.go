package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() State {
	return State{
		SchemaVersion: EnvelopeVersion,
		Context:       Object{"user": String("alice"), "count": Int(3)},
		Facts: []Fact{
			{Tag: "order-placed", Payload: Object{"sku": String("widget"), "qty": Int(2)}},
			{Tag: "stock-reserved", Payload: Null{}},
		},
		Meta:            map[string]Value{"origin": String("test")},
		ProtocolVersion: ProtocolVersion,
	}
}

func TestState_JSONRoundTrip(t *testing.T) {
	orig := sampleState()

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, orig.Equal(back), "round-tripped state must be structurally equal")
}

func TestState_JSONRoundTrip_IntegralFloatPayload(t *testing.T) {
	// An integral Float collapses to an integer on the wire and comes
	// back as Int; the state must still compare equal to itself.
	orig := State{
		SchemaVersion: EnvelopeVersion,
		Context:       Object{"steps": Int(0)},
		Facts: []Fact{
			{Tag: "measured", Payload: Object{"celsius": Float(2)}},
			{Tag: "adjusted", Payload: Float(-7)},
		},
		ProtocolVersion: ProtocolVersion,
	}

	data, err := MarshalCanonicalState(orig)
	require.NoError(t, err)

	var back State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.IsType(t, Int(0), back.Facts[1].Payload)
	assert.True(t, orig.Equal(back), "integral float payload must survive the round-trip")
}

func TestState_WireShape(t *testing.T) {
	data, err := json.Marshal(sampleState())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	// The wire format is fixed: camelCase keys, "$version" envelope key
	assert.Contains(t, raw, "$version")
	assert.Contains(t, raw, "context")
	assert.Contains(t, raw, "facts")
	assert.Contains(t, raw, "meta")
	assert.Contains(t, raw, "protocolVersion")
}

func TestState_Clone_Independence(t *testing.T) {
	orig := sampleState()
	clone := orig.Clone()

	clone.Facts = append(clone.Facts, Fact{Tag: "extra", Payload: Null{}})
	clone.Facts[0].Payload.(Object)["sku"] = String("mutated")
	clone.Meta["origin"] = String("mutated")

	assert.Len(t, orig.Facts, 2)
	assert.Equal(t, String("widget"), orig.Facts[0].Payload.(Object)["sku"])
	assert.Equal(t, String("test"), orig.Meta["origin"])
}

func TestState_UnmarshalMissingContext(t *testing.T) {
	var s State
	require.NoError(t, json.Unmarshal([]byte(`{"facts":[],"protocolVersion":"1.0.0"}`), &s))
	assert.Equal(t, Null{}, s.Context)
}

func TestDiagnostic_JSONRoundTrip(t *testing.T) {
	orig := Diagnostic{
		Kind:    DiagnosticRuleError,
		Message: `Rule "missing" not found in registry`,
		Data:    Object{"ruleId": String("missing")},
	}

	data, err := json.Marshal(orig)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"rule-error","message":"Rule \"missing\" not found in registry","data":{"ruleId":"missing"}}`, string(data))

	var back Diagnostic
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, orig.Kind, back.Kind)
	assert.Equal(t, orig.Message, back.Message)
	assert.True(t, EqualValue(orig.Data, back.Data))
}

func TestDiagnostic_OmitsEmptyData(t *testing.T) {
	data, err := json.Marshal(Diagnostic{Kind: DiagnosticConstraintViolation, Message: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"constraint-violation","message":"boom"}`, string(data))
}

func TestMarshalCanonicalState_Stable(t *testing.T) {
	s := sampleState()

	first, err := MarshalCanonicalState(s)
	require.NoError(t, err)
	again, err := MarshalCanonicalState(s.Clone())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(again))
}

func TestMarshalCanonicalEvents_EmptyBatch(t *testing.T) {
	data, err := MarshalCanonicalEvents(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
