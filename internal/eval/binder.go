package eval

import (
	"fmt"

	"github.com/cappallo/aura/internal/aerr"
	"github.com/cappallo/aura/internal/ast"
)

// ArgEvaluator evaluates one actual-argument expression, bound to the
// named parameter, to a Value. The binder calls it in actual-argument
// source order, not parameter order, so side effects in argument
// expressions observe the order written at the call site. Knowing the
// target parameter name before evaluation lets a caller special-case one
// parameter (e.g. a built-in's FuncRefParam) without evaluating its
// expression the ordinary way.
type ArgEvaluator func(paramName string, expr ast.Expr) (Value, error)

// BindArguments aligns a call's mixed positional/named actual arguments
// against an ordered parameter-name list. It is shared by user functions,
// built-ins, actor spawn and actor message dispatch, so it only knows
// about names and Args — callers supply eval to turn an Arg's expression
// into a Value.
//
// Diagnosed, in the order encountered: a positional actual following a
// named one; an unknown parameter name; the same parameter bound twice;
// too many positional actuals; a parameter left unbound at the end.
func BindArguments(params []string, args []ast.Arg, eval ArgEvaluator) (map[string]Value, error) {
	bound := make(map[string]Value, len(params))
	nextPositional := 0
	seenNamed := false

	for _, arg := range args {
		var pname string
		if arg.Name == "" {
			if seenNamed {
				return nil, bindErr("positional argument after a named argument")
			}
			if nextPositional >= len(params) {
				return nil, bindErr(fmt.Sprintf("too many arguments: expected %d", len(params)))
			}
			pname = params[nextPositional]
			nextPositional++
		} else {
			seenNamed = true
			if !containsName(params, arg.Name) {
				return nil, bindErr(fmt.Sprintf("unknown parameter %q", arg.Name))
			}
			pname = arg.Name
		}

		if _, dup := bound[pname]; dup {
			return nil, bindErr(fmt.Sprintf("parameter %q bound twice", pname))
		}
		v, err := eval(pname, arg.Value)
		if err != nil {
			return nil, err
		}
		bound[pname] = v
	}

	for _, p := range params {
		if _, ok := bound[p]; !ok {
			return nil, bindErr(fmt.Sprintf("missing parameter %q", p))
		}
	}

	return bound, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func bindErr(msg string) error {
	return aerr.Wrap(aerr.New(aerr.EVA007, aerr.KindWrongArity, "argument binding failed: "+msg, nil))
}

// FieldNames extracts a parameter-name list, in declaration order, from an
// ordered Field slice — the common shape shared by function params, actor
// constructor params and handler params.
func FieldNames(fields []ast.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
