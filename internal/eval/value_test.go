package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cappallo/aura/internal/ast"
)

func TestEquals_Reflexive(t *testing.T) {
	vals := []Value{
		&IntValue{V: 42},
		&BoolValue{V: true},
		&StringValue{V: "hello"},
		Unit(),
		&ListValue{Elements: []Value{&IntValue{V: 1}, &IntValue{V: 2}}},
		NewConstructor("Point", []string{"x", "y"}, map[string]Value{
			"x": &IntValue{V: 1}, "y": &IntValue{V: 2},
		}),
		&ActorRefValue{ID: 7, ActorName: "Counter"},
	}
	for _, v := range vals {
		assert.True(t, Equals(v, v), "%v should equal itself", v)
	}
}

func TestEquals_Symmetric(t *testing.T) {
	a := NewConstructor("Circle", []string{"r"}, map[string]Value{"r": &IntValue{V: 5}})
	b := NewConstructor("Circle", []string{"r"}, map[string]Value{"r": &IntValue{V: 5}})
	assert.True(t, Equals(a, b))
	assert.True(t, Equals(b, a))
}

func TestEquals_DistinguishesKindsAndContent(t *testing.T) {
	assert.False(t, Equals(&IntValue{V: 1}, &IntValue{V: 2}))
	assert.False(t, Equals(&IntValue{V: 1}, &BoolValue{V: true}))
	assert.False(t, Equals(
		NewConstructor("A", nil, map[string]Value{}),
		NewConstructor("B", nil, map[string]Value{}),
	))
	assert.False(t, Equals(&ActorRefValue{ID: 1}, &ActorRefValue{ID: 2}))
}

func TestEquals_ListsElementWise(t *testing.T) {
	a := &ListValue{Elements: []Value{&IntValue{V: 1}, &IntValue{V: 2}}}
	b := &ListValue{Elements: []Value{&IntValue{V: 1}, &IntValue{V: 2}}}
	c := &ListValue{Elements: []Value{&IntValue{V: 2}, &IntValue{V: 1}}}
	assert.True(t, Equals(a, b))
	assert.False(t, Equals(a, c))
}

func TestOptionBridge(t *testing.T) {
	none := None()
	assert.Equal(t, "None", none.Tag)
	some := Some(&IntValue{V: 3})
	v, ok := some.Field("value")
	require.True(t, ok)
	assert.Equal(t, 3, v.(*IntValue).V)
}

func TestDefaultValue_Primitives(t *testing.T) {
	assert.Equal(t, 0, DefaultValue(&ast.NamedType{Name: "Int"}, nil).(*IntValue).V)
	assert.Equal(t, false, DefaultValue(&ast.NamedType{Name: "Bool"}, nil).(*BoolValue).V)
	assert.Equal(t, "", DefaultValue(&ast.NamedType{Name: "String"}, nil).(*StringValue).V)
	opt := DefaultValue(&ast.OptionType{Inner: &ast.NamedType{Name: "Int"}}, nil)
	assert.Equal(t, "None", opt.(*ConstructorValue).Tag)
}
