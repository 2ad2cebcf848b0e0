package property

import (
	"github.com/cappallo/aura/internal/ast"
	"github.com/cappallo/aura/internal/eval"
)

// MaxDepth is the default recursion cap for type-directed generation: past
// it, generation falls back to the type's default value rather than
// unwinding the call stack on a mutually-recursive type declaration.
const MaxDepth = 4

const noneProbability = 0.3

// Generate produces one random value of type t, using rng for every
// random choice and types to look up user-declared record/sum/schema
// shapes. depth tracks recursion and is capped at MaxDepth.
func Generate(t ast.TypeExpr, types eval.TypeIndex, rng *RNG, depth int) eval.Value {
	if depth >= MaxDepth {
		return eval.DefaultValue(t, types)
	}

	switch te := t.(type) {
	case *ast.OptionType:
		if rng.Chance(noneProbability) {
			return eval.None()
		}
		return eval.Some(Generate(te.Inner, types, rng, depth+1))

	case *ast.NamedType:
		switch te.Name {
		case "Int":
			return &eval.IntValue{V: rng.IntRange(-20, 20)}
		case "Bool":
			return &eval.BoolValue{V: rng.Bool()}
		case "String":
			return &eval.StringValue{V: genString(rng)}
		case "Unit":
			return eval.Unit()
		case "List":
			var elemType ast.TypeExpr = &ast.NamedType{Name: "Int"}
			if len(te.Args) > 0 {
				elemType = te.Args[0]
			}
			n := rng.IntRange(0, 3)
			elems := make([]eval.Value, n)
			for i := range elems {
				elems[i] = Generate(elemType, types, rng, depth+1)
			}
			return &eval.ListValue{Elements: elems}
		case "ActorRef":
			return &eval.ActorRefValue{ID: -1, ActorName: ""}
		}
		if types == nil {
			return eval.Unit()
		}
		decl, ok := types.LookupType(te.Name)
		if !ok {
			return eval.Unit()
		}
		switch d := decl.(type) {
		case *ast.RecordTypeDecl:
			return genRecord(te.Name, d.Fields, types, rng, depth+1)
		case *ast.SumTypeDecl:
			if len(d.Variants) == 0 {
				return &eval.ConstructorValue{Tag: te.Name}
			}
			v := d.Variants[rng.Intn(len(d.Variants))]
			return genRecord(v.CtorName, v.Fields, types, rng, depth+1)
		case *ast.SchemaDecl:
			fields := make([]ast.Field, len(d.Fields))
			for i, f := range d.Fields {
				if f.Optional && rng.Chance(noneProbability) {
					fields[i] = ast.Field{Name: f.Name, Type: &ast.OptionType{Inner: f.Type}}
					continue
				}
				fields[i] = ast.Field{Name: f.Name, Type: f.Type}
			}
			return genRecord(te.Name, fields, types, rng, depth+1)
		default:
			return eval.Unit()
		}
	default:
		return eval.Unit()
	}
}

func genRecord(tag string, fields []ast.Field, types eval.TypeIndex, rng *RNG, depth int) *eval.ConstructorValue {
	names := make([]string, len(fields))
	vals := make(map[string]eval.Value, len(fields))
	for i, f := range fields {
		names[i] = f.Name
		vals[f.Name] = Generate(f.Type, types, rng, depth)
	}
	return &eval.ConstructorValue{Tag: tag, FieldNames: names, Fields: vals}
}

const lowercase = "abcdefghijklmnopqrstuvwxyz"

func genString(rng *RNG) string {
	n := rng.IntRange(0, 5)
	b := make([]byte, n)
	for i := range b {
		b[i] = lowercase[rng.Intn(len(lowercase))]
	}
	return string(b)
}
