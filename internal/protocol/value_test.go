package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalValue_Scalars(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Value
	}{
		{"string", `"hello"`, String("hello")},
		{"int", `42`, Int(42)},
		{"negative int", `-7`, Int(-7)},
		{"float", `3.5`, Float(3.5)},
		{"exponent", `1e3`, Float(1000)},
		{"bool true", `true`, Bool(true)},
		{"bool false", `false`, Bool(false)},
		{"null", `null`, Null{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalValue([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalValue_Composite(t *testing.T) {
	got, err := UnmarshalValue([]byte(`{"items":[1,"two",{"three":3}],"ok":true}`))
	require.NoError(t, err)

	want := Object{
		"items": Array{Int(1), String("two"), Object{"three": Int(3)}},
		"ok":    Bool(true),
	}
	assert.Equal(t, want, got)
}

func TestObject_SortedKeys_UTF16Order(t *testing.T) {
	// U+FF21 (FULLWIDTH A) sorts after "z" in UTF-16 code units, and
	// U+1D306 (surrogate pair) sorts between BMP characters and nothing -
	// the key point is stability, not intuition.
	obj := Object{
		"b":  Int(1),
		"a":  Int(2),
		"Ａ": Int(3),
	}

	keys := obj.SortedKeys()
	assert.Equal(t, []string{"a", "b", "Ａ"}, keys)
}

func TestObject_MarshalJSON_SortedKeys(t *testing.T) {
	obj := Object{"z": Int(1), "a": Int(2), "m": Int(3)}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"m":3,"z":1}`, string(data))
}

func TestFromAny_FoldsIntegralFloats(t *testing.T) {
	// encoding/json without UseNumber yields float64 for every number
	v, err := FromAny(float64(5))
	require.NoError(t, err)
	assert.Equal(t, Int(5), v)

	v, err = FromAny(float64(5.5))
	require.NoError(t, err)
	assert.Equal(t, Float(5.5), v)
}

func TestFromAny_Nested(t *testing.T) {
	v, err := FromAny(map[string]any{
		"name":  "cart",
		"count": 5,
		"tags":  []any{"a", "b"},
		"empty": nil,
	})
	require.NoError(t, err)

	want := Object{
		"name":  String("cart"),
		"count": Int(5),
		"tags":  Array{String("a"), String("b")},
		"empty": Null{},
	}
	assert.Equal(t, want, v)
}

func TestFromAny_UnsupportedType(t *testing.T) {
	_, err := FromAny(make(chan int))
	assert.Error(t, err)
}

func TestCloneValue_Independence(t *testing.T) {
	orig := Object{"list": Array{Int(1), Int(2)}}
	clone := CloneValue(orig).(Object)

	clone["list"].(Array)[0] = Int(99)
	clone["extra"] = Bool(true)

	assert.Equal(t, Int(1), orig["list"].(Array)[0])
	assert.NotContains(t, orig, "extra")
}

func TestEqualValue(t *testing.T) {
	a := Object{"x": Array{Int(1), Float(2.5), Null{}}}
	b := Object{"x": Array{Int(1), Float(2.5), Null{}}}
	c := Object{"x": Array{Int(1), Float(2.5), Bool(false)}}

	assert.True(t, EqualValue(a, b))
	assert.False(t, EqualValue(a, c))
}

func TestEqualValue_NumberFolding(t *testing.T) {
	// Int and an integral Float print identically on the wire, so they
	// must compare equal in memory too.
	assert.True(t, EqualValue(Int(1), Float(1)))
	assert.True(t, EqualValue(Float(2), Int(2)))
	assert.True(t, EqualValue(Float(-3), Int(-3)))

	assert.False(t, EqualValue(Int(1), Float(1.5)))
	assert.False(t, EqualValue(Float(2.5), Int(2)))
	// 1e21 prints in exponent form and never collapses to an integer
	assert.False(t, EqualValue(Float(1e21), Int(0)))

	// 2^60 prints as its shortest round-trip decimal, which is the
	// integer an unmarshal of that wire form yields
	assert.True(t, EqualValue(Float(1<<60), Int(1152921504606847000)))
}
