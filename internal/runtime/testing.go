package runtime

import (
	"github.com/cappallo/aura/internal/ast"
	"github.com/cappallo/aura/internal/eval"
	"github.com/cappallo/aura/internal/property"
)

// TestResult reports the outcome of running one `test` declaration.
type TestResult struct {
	Name   string
	Passed bool
	Err    error
}

// RunTests runs every test declaration indexed from the primary module,
// in declaration order, each against a fresh empty environment.
func (e *Evaluator) RunTests() []TestResult {
	results := make([]TestResult, 0, len(e.RT.Tests))
	for _, td := range e.RT.Tests {
		e.RT.CurrentModule = e.RT.PrimaryModule
		_, err := e.runBlockAsBody(eval.NewEnvironment(), td.Body)
		results = append(results, TestResult{Name: td.Name, Passed: err == nil, Err: err})
	}
	return results
}

// RunProperties runs every property declaration indexed from the primary
// module through the property engine, using the runtime's own Runner
// implementation and configured generation/shrink caps.
func (e *Evaluator) RunProperties() []*property.Result {
	results := make([]*property.Result, 0, len(e.RT.Properties))
	for _, pd := range e.RT.Properties {
		results = append(results, property.RunProperty(pd, e.RT, e, e.RT.PropertyConfig))
	}
	return results
}

// RunBody implements property.Runner: run a property's body with a fixed
// parameter binding, in a fresh environment seeded from params.
func (e *Evaluator) RunBody(body *ast.Block, params map[string]eval.Value) error {
	env := eval.NewEnvironment()
	for k, v := range params {
		env.Set(k, v)
	}
	e.RT.CurrentModule = e.RT.PrimaryModule
	_, err := e.runBlockAsBody(env, body)
	return err
}

// EvalPredicate implements property.Runner: evaluate a parameter's
// generation predicate against the parameters produced so far.
func (e *Evaluator) EvalPredicate(pred ast.Expr, params map[string]eval.Value) (bool, error) {
	env := eval.NewEnvironment()
	for k, v := range params {
		env.Set(k, v)
	}
	e.RT.CurrentModule = e.RT.PrimaryModule
	v, err := e.EvalExpr(env, pred)
	if err != nil {
		return false, err
	}
	b, ok := v.(*eval.BoolValue)
	if !ok {
		return false, nonBoolean("property predicate", pred.Position())
	}
	return b.V, nil
}
