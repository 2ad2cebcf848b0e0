package eval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cappallo/aura/internal/ast"
)

// Value is a runtime value. There are exactly seven kinds: integer,
// boolean, string, list, constructor (records and sum-type variants
// share this one representation), actor reference, and unit. There is no
// FloatValue — machine arithmetic is integer-only throughout this module,
// including the property engine's generators and shrinkers.
type Value interface {
	Kind() string
	String() string
}

// IntValue is a machine-sized signed integer.
type IntValue struct{ V int }

func (*IntValue) Kind() string     { return "Int" }
func (v *IntValue) String() string { return strconv.Itoa(v.V) }

// BoolValue is a boolean.
type BoolValue struct{ V bool }

func (*BoolValue) Kind() string { return "Bool" }
func (v *BoolValue) String() string {
	if v.V {
		return "true"
	}
	return "false"
}

// StringValue is a Unicode string.
type StringValue struct{ V string }

func (*StringValue) Kind() string     { return "String" }
func (v *StringValue) String() string { return strconv.Quote(v.V) }

// UnitValue is the singleton unit value.
type UnitValue struct{}

func (*UnitValue) Kind() string     { return "Unit" }
func (*UnitValue) String() string   { return "()" }

// unit is the single shared UnitValue instance; evaluator code may freely
// return a fresh &UnitValue{} too since it carries no state.
var unit = &UnitValue{}

// Unit returns the canonical unit value.
func Unit() Value { return unit }

// ListValue is an ordered, homogeneous-by-convention list.
type ListValue struct{ Elements []Value }

func (*ListValue) Kind() string { return "List" }
func (v *ListValue) String() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ConstructorValue is a tagged record: a constructor name plus an ordered
// set of named fields. It represents both plain record instances and
// sum-type variants. FieldNames preserves the declaration's field order
// so pretty-printing, JSON encoding and equality are deterministic.
type ConstructorValue struct {
	Tag        string
	FieldNames []string
	Fields     map[string]Value
}

// NewConstructor builds a ConstructorValue from an ordered (name, value)
// sequence, preserving that order.
func NewConstructor(tag string, names []string, values map[string]Value) *ConstructorValue {
	return &ConstructorValue{Tag: tag, FieldNames: names, Fields: values}
}

func (c *ConstructorValue) Kind() string { return c.Tag }
func (c *ConstructorValue) String() string {
	if len(c.FieldNames) == 0 {
		return c.Tag
	}
	parts := make([]string, len(c.FieldNames))
	for i, name := range c.FieldNames {
		parts[i] = fmt.Sprintf("%s: %s", name, c.Fields[name].String())
	}
	return c.Tag + "{" + strings.Join(parts, ", ") + "}"
}

// Field retrieves a named field, for convenience at call sites that
// already know the constructor shape (e.g. the Option bridge).
func (c *ConstructorValue) Field(name string) (Value, bool) {
	v, ok := c.Fields[name]
	return v, ok
}

// ActorRefValue is a reference to a live (or since-terminated) actor
// instance, identified by its monotonically increasing id.
type ActorRefValue struct {
	ID        int64
	ActorName string
}

func (*ActorRefValue) Kind() string     { return "ActorRef" }
func (v *ActorRefValue) String() string { return fmt.Sprintf("<actor %s#%d>", v.ActorName, v.ID) }

// ---------------------------------------------------------------------
// Option bridge: None/Some are the two built-in constructors the
// evaluator synthesizes for "T?" types and for operations that can fail
// to produce a value (str.at, list head, ...). They are plain
// ConstructorValues, not a distinct Value kind, so everything above
// (equality, JSON, pattern matching) treats them uniformly.
// ---------------------------------------------------------------------

// None is the nullary option constructor.
func None() *ConstructorValue {
	return &ConstructorValue{Tag: "None", FieldNames: nil, Fields: map[string]Value{}}
}

// Some wraps a single value in the one-arity option constructor.
func Some(v Value) *ConstructorValue {
	return &ConstructorValue{Tag: "Some", FieldNames: []string{"value"}, Fields: map[string]Value{"value": v}}
}

// ---------------------------------------------------------------------
// Structural equality
// ---------------------------------------------------------------------

// Equals reports whether two values compare equal: lists element-wise,
// constructors by tag plus per-field recursive equality (field order does
// not matter — a tag fixes the field set), actor refs by numeric id, unit
// as a singleton, and everything else by kind plus content.
func Equals(a, b Value) bool {
	switch av := a.(type) {
	case *IntValue:
		bv, ok := b.(*IntValue)
		return ok && av.V == bv.V
	case *BoolValue:
		bv, ok := b.(*BoolValue)
		return ok && av.V == bv.V
	case *StringValue:
		bv, ok := b.(*StringValue)
		return ok && av.V == bv.V
	case *UnitValue:
		_, ok := b.(*UnitValue)
		return ok
	case *ListValue:
		bv, ok := b.(*ListValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equals(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *ConstructorValue:
		bv, ok := b.(*ConstructorValue)
		if !ok || av.Tag != bv.Tag || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for name, v := range av.Fields {
			ov, ok := bv.Fields[name]
			if !ok || !Equals(v, ov) {
				return false
			}
		}
		return true
	case *ActorRefValue:
		bv, ok := b.(*ActorRefValue)
		return ok && av.ID == bv.ID
	default:
		return false
	}
}

// ---------------------------------------------------------------------
// Default-value synthesis
// ---------------------------------------------------------------------

// TypeIndex is the minimal read interface the default-value synthesizer
// and the property generator need from the declaration indexes — it is
// satisfied by *runtime.Runtime without either package importing the
// other's concrete type.
type TypeIndex interface {
	LookupType(name string) (ast.Decl, bool)
}

// DefaultValue synthesizes a zero-like value for a declared type
// expression: 0 for Int, false for Bool, "" for String, an empty list for
// List<T>, None for an option type, and a recursively-defaulted record or
// first-variant construction for a user-declared type. Recursion is
// capped to guard against mutually-recursive type declarations; past the
// cap it falls back to Unit-shaped defaults.
func DefaultValue(t ast.TypeExpr, types TypeIndex) Value {
	return defaultValueDepth(t, types, 0)
}

const defaultValueMaxDepth = 16

func defaultValueDepth(t ast.TypeExpr, types TypeIndex, depth int) Value {
	if depth > defaultValueMaxDepth {
		return Unit()
	}
	switch te := t.(type) {
	case *ast.OptionType:
		return None()
	case *ast.NamedType:
		switch te.Name {
		case "Int":
			return &IntValue{V: 0}
		case "Bool":
			return &BoolValue{V: false}
		case "String":
			return &StringValue{V: ""}
		case "Unit":
			return Unit()
		case "List":
			return &ListValue{Elements: []Value{}}
		case "ActorRef":
			return &ActorRefValue{ID: -1, ActorName: ""}
		}
		if types == nil {
			return Unit()
		}
		decl, ok := types.LookupType(te.Name)
		if !ok {
			return Unit()
		}
		switch d := decl.(type) {
		case *ast.RecordTypeDecl:
			return defaultRecord(te.Name, d.Fields, types, depth+1)
		case *ast.SumTypeDecl:
			if len(d.Variants) == 0 {
				return &ConstructorValue{Tag: te.Name}
			}
			v := d.Variants[0]
			return defaultRecord(v.CtorName, v.Fields, types, depth+1)
		case *ast.SchemaDecl:
			fields := make([]ast.Field, len(d.Fields))
			for i, f := range d.Fields {
				fields[i] = ast.Field{Name: f.Name, Type: f.Type}
			}
			return defaultRecord(te.Name, fields, types, depth+1)
		default:
			return Unit()
		}
	default:
		return Unit()
	}
}

func defaultRecord(tag string, fields []ast.Field, types TypeIndex, depth int) *ConstructorValue {
	names := make([]string, len(fields))
	vals := make(map[string]Value, len(fields))
	for i, f := range fields {
		names[i] = f.Name
		vals[f.Name] = defaultValueDepth(f.Type, types, depth)
	}
	return &ConstructorValue{Tag: tag, FieldNames: names, Fields: vals}
}

// ---------------------------------------------------------------------
// Deterministic display helpers (used by Log.* built-ins and test output)
// ---------------------------------------------------------------------

// SortedFieldNames returns a constructor's field names sorted for display
// contexts where declaration order isn't available (e.g. values decoded
// from arbitrary JSON).
func SortedFieldNames(c *ConstructorValue) []string {
	if len(c.FieldNames) == len(c.Fields) {
		return c.FieldNames
	}
	names := make([]string, 0, len(c.Fields))
	for n := range c.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
