package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cappallo/aura/internal/ast"
)

func litEval(t *testing.T) ArgEvaluator {
	return func(paramName string, expr ast.Expr) (Value, error) {
		switch e := expr.(type) {
		case *ast.IntLit:
			return &IntValue{V: e.Value}, nil
		case *ast.BoolLit:
			return &BoolValue{V: e.Value}, nil
		default:
			t.Fatalf("unexpected expr kind %T", expr)
			return nil, nil
		}
	}
}

func TestBindArguments_AllPositional(t *testing.T) {
	params := []string{"a", "b", "c"}
	args := []ast.Arg{
		{Value: &ast.IntLit{Value: 1}},
		{Value: &ast.IntLit{Value: 2}},
		{Value: &ast.IntLit{Value: 3}},
	}
	bound, err := BindArguments(params, args, litEval(t))
	require.NoError(t, err)
	assert.Equal(t, 1, bound["a"].(*IntValue).V)
	assert.Equal(t, 2, bound["b"].(*IntValue).V)
	assert.Equal(t, 3, bound["c"].(*IntValue).V)
}

func TestBindArguments_NamedOutOfOrder(t *testing.T) {
	params := []string{"a", "b"}
	args := []ast.Arg{
		{Name: "b", Value: &ast.IntLit{Value: 2}},
		{Name: "a", Value: &ast.IntLit{Value: 1}},
	}
	bound, err := BindArguments(params, args, litEval(t))
	require.NoError(t, err)
	assert.Equal(t, 1, bound["a"].(*IntValue).V)
	assert.Equal(t, 2, bound["b"].(*IntValue).V)
}

func TestBindArguments_MixedPositionalThenNamed(t *testing.T) {
	params := []string{"a", "b", "c"}
	args := []ast.Arg{
		{Value: &ast.IntLit{Value: 1}},
		{Name: "c", Value: &ast.IntLit{Value: 3}},
		{Name: "b", Value: &ast.IntLit{Value: 2}},
	}
	bound, err := BindArguments(params, args, litEval(t))
	require.NoError(t, err)
	assert.Equal(t, 1, bound["a"].(*IntValue).V)
	assert.Equal(t, 2, bound["b"].(*IntValue).V)
	assert.Equal(t, 3, bound["c"].(*IntValue).V)
}

func TestBindArguments_PositionalAfterNamedIsRejected(t *testing.T) {
	params := []string{"a", "b"}
	args := []ast.Arg{
		{Name: "a", Value: &ast.IntLit{Value: 1}},
		{Value: &ast.IntLit{Value: 2}},
	}
	_, err := BindArguments(params, args, litEval(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positional argument after a named argument")
}

func TestBindArguments_UnknownName(t *testing.T) {
	params := []string{"a"}
	args := []ast.Arg{{Name: "z", Value: &ast.IntLit{Value: 1}}}
	_, err := BindArguments(params, args, litEval(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown parameter "z"`)
}

func TestBindArguments_DuplicateBinding(t *testing.T) {
	params := []string{"a", "b"}
	args := []ast.Arg{
		{Value: &ast.IntLit{Value: 1}},
		{Name: "a", Value: &ast.IntLit{Value: 2}},
	}
	_, err := BindArguments(params, args, litEval(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `bound twice`)
}

func TestBindArguments_TooManyPositional(t *testing.T) {
	params := []string{"a"}
	args := []ast.Arg{
		{Value: &ast.IntLit{Value: 1}},
		{Value: &ast.IntLit{Value: 2}},
	}
	_, err := BindArguments(params, args, litEval(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many arguments")
}

func TestBindArguments_MissingParameter(t *testing.T) {
	params := []string{"a", "b"}
	args := []ast.Arg{{Value: &ast.IntLit{Value: 1}}}
	_, err := BindArguments(params, args, litEval(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing parameter "b"`)
}

func TestFieldNames_PreservesOrder(t *testing.T) {
	fields := []ast.Field{{Name: "x"}, {Name: "y"}, {Name: "z"}}
	assert.Equal(t, []string{"x", "y", "z"}, FieldNames(fields))
}
