package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJSONRoundTrip_Invariant5 checks invariant 5: for any value built from
// the supported subset, decode(encode(v)) is structurally equal to v.
func TestJSONRoundTrip_Invariant5(t *testing.T) {
	cases := []Value{
		&IntValue{V: -17},
		&BoolValue{V: true},
		&StringValue{V: "hello world"},
		Unit(),
		&ListValue{Elements: []Value{&IntValue{V: 1}, &IntValue{V: 2}, &IntValue{V: 3}}},
		NewConstructor("Point", []string{"x", "y"}, map[string]Value{
			"x": &IntValue{V: 1}, "y": &IntValue{V: -2},
		}),
		NewConstructor("Circle", []string{"r"}, map[string]Value{
			"r": NewConstructor("Radius", []string{"mm"}, map[string]Value{"mm": &IntValue{V: 5}}),
		}),
		Some(&StringValue{V: "x"}),
		None(),
	}
	for _, v := range cases {
		encoded, err := EncodeJSON(v)
		require.NoError(t, err)
		decoded, err := DecodeJSON(encoded)
		require.NoError(t, err)
		assert.True(t, Equals(v, decoded), "round-trip mismatch for %s: got %s", v.String(), decoded.String())
	}
}

func TestDecodeJSON_PlainObjectBecomesObjectVariant(t *testing.T) {
	v, err := DecodeJSON(`{"a": 1, "b": "two"}`)
	require.NoError(t, err)
	cv, ok := v.(*ConstructorValue)
	require.True(t, ok)
	assert.Equal(t, "Object", cv.Tag)
	a, ok := cv.Field("a")
	require.True(t, ok)
	assert.Equal(t, 1, a.(*IntValue).V)
}

func TestDecodeJSON_ConstructorTagRoundTrips(t *testing.T) {
	v, err := DecodeJSON(`{"_constructor": "Some", "value": 9}`)
	require.NoError(t, err)
	cv, ok := v.(*ConstructorValue)
	require.True(t, ok)
	assert.Equal(t, "Some", cv.Tag)
}

func TestEncodeJSON_ListOfConstructors(t *testing.T) {
	list := &ListValue{Elements: []Value{
		NewConstructor("A", []string{"n"}, map[string]Value{"n": &IntValue{V: 1}}),
		NewConstructor("B", []string{"n"}, map[string]Value{"n": &IntValue{V: 2}}),
	}}
	encoded, err := EncodeJSON(list)
	require.NoError(t, err)
	decoded, err := DecodeJSON(encoded)
	require.NoError(t, err)
	assert.True(t, Equals(list, decoded))
}
