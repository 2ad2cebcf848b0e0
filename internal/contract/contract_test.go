package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cappallo/aura/internal/ast"
	"github.com/cappallo/aura/internal/eval"
)

// fakeEvaluator interprets just enough expression shapes (Var, IntLit,
// "n >= k" BinaryOp) to exercise the enforcer without pulling in the full
// runtime evaluator.
type fakeEvaluator struct{}

func (fakeEvaluator) EvalPure(expr ast.Expr, env *eval.Environment) (eval.Value, error) {
	switch e := expr.(type) {
	case *ast.Var:
		v, ok := env.Get(e.Name)
		if !ok {
			return nil, assertNever("unbound " + e.Name)
		}
		return v, nil
	case *ast.IntLit:
		return &eval.IntValue{V: e.Value}, nil
	case *ast.BinaryOp:
		l, err := fakeEvaluator{}.EvalPure(e.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := fakeEvaluator{}.EvalPure(e.Right, env)
		if err != nil {
			return nil, err
		}
		li, ri := l.(*eval.IntValue).V, r.(*eval.IntValue).V
		switch e.Op {
		case ">=":
			return &eval.BoolValue{V: li >= ri}, nil
		default:
			return nil, assertNever("unsupported op " + e.Op)
		}
	}
	return nil, assertNever("unsupported expr")
}

type errString string

func (e errString) Error() string { return string(e) }

func assertNever(msg string) error { return errString(msg) }

// fibContract grounds scenario S1: "requires n >= 0; ensures result >= 0".
func fibContract() *ast.ContractDecl {
	return &ast.ContractDecl{
		Name: "fib",
		Requires: []ast.Expr{
			&ast.BinaryOp{Op: ">=", Left: &ast.Var{Name: "n"}, Right: &ast.IntLit{Value: 0}},
		},
		Ensures: []ast.Expr{
			&ast.BinaryOp{Op: ">=", Left: &ast.Var{Name: "result"}, Right: &ast.IntLit{Value: 0}},
		},
	}
}

func TestCheckRequires_Passes(t *testing.T) {
	e := New()
	e.Contracts["main.fib"] = fibContract()
	env := eval.NewEnvironment()
	env.Set("n", &eval.IntValue{V: 5})
	err := e.CheckRequires("main.fib", env, fakeEvaluator{})
	assert.NoError(t, err)
}

func TestCheckRequires_Fails(t *testing.T) {
	e := New()
	e.Contracts["main.fib"] = fibContract()
	env := eval.NewEnvironment()
	env.Set("n", &eval.IntValue{V: -1})
	err := e.CheckRequires("main.fib", env, fakeEvaluator{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires")
}

func TestCheckEnsures_Passes(t *testing.T) {
	e := New()
	e.Contracts["main.fib"] = fibContract()
	env := eval.NewEnvironment()
	env.Set("n", &eval.IntValue{V: 5})
	err := e.CheckEnsures("main.fib", env, &eval.IntValue{V: 8}, fakeEvaluator{})
	assert.NoError(t, err)
}

func TestCheckEnsures_Fails(t *testing.T) {
	e := New()
	e.Contracts["main.fib"] = fibContract()
	env := eval.NewEnvironment()
	env.Set("n", &eval.IntValue{V: 5})
	err := e.CheckEnsures("main.fib", env, &eval.IntValue{V: -1}, fakeEvaluator{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensures")
}

func TestHas_ReportsPresenceOnly(t *testing.T) {
	e := New()
	assert.False(t, e.Has("main.fib"))
	e.Contracts["main.fib"] = fibContract()
	assert.True(t, e.Has("main.fib"))
	assert.False(t, e.Has("main.other"))
}

func TestCheckRequires_NoContractIsSuccess(t *testing.T) {
	e := New()
	env := eval.NewEnvironment()
	assert.NoError(t, e.CheckRequires("main.untouched", env, fakeEvaluator{}))
}
