package runtime

import (
	"strconv"
	"strings"

	"github.com/cappallo/aura/internal/ast"
	"github.com/cappallo/aura/internal/builtins"
	"github.com/cappallo/aura/internal/eval"
)

// cutLast splits name at its final '.', reporting whether one was found —
// used to recognize "target.send", "ActorName.spawn" and
// "ActorName.HandlerName" call-site shapes without needing a dedicated
// AST node for any of them (a dotted Var.Name is already one string).
func cutLast(name string) (prefix, suffix string, ok bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// lookupActor resolves an actor declaration by bare or qualified name,
// trying the name as given, then resolved against CurrentModule.
func (e *Evaluator) lookupActor(name string) (*actorEntry, bool) {
	if ae, ok := e.RT.Actors[name]; ok {
		return ae, true
	}
	q := e.RT.Resolver.Resolve(e.RT.CurrentModule, name)
	ae, ok := e.RT.Actors[q]
	return ae, ok
}

// evalCall implements the five-step dispatch order from §4.3: built-in,
// actor-send-sugar, actor-spawn, actor synchronous handler, then a plain
// qualified function call.
func (e *Evaluator) evalCall(env *eval.Environment, call *ast.Call) (eval.Value, error) {
	v, ok := call.Callee.(*ast.Var)
	if !ok {
		return nil, wrongType("call target must be a plain name")
	}
	name := v.Name

	if spec, ok := builtins.Lookup(name); ok {
		return e.callBuiltin(env, spec, call.Args)
	}

	prefix, suffix, hasDot := cutLast(name)

	if hasDot && suffix == "send" {
		if target, ok := env.Get(prefix); ok {
			if ref, ok := target.(*eval.ActorRefValue); ok {
				return e.evalSend(env, ref, call.Args)
			}
		}
	}

	if hasDot && suffix == "spawn" {
		if ae, ok := e.lookupActor(prefix); ok {
			return e.evalSpawn(env, ae, call.Args)
		}
	}

	if hasDot {
		if ae, ok := e.lookupActor(prefix); ok {
			if hd, ok := ae.Decl.HandlerFor(suffix); ok && hd.Sync {
				return e.evalSyncHandlerCall(env, hd, call.Args)
			}
		}
	}

	qualified := e.RT.Resolver.Resolve(e.RT.CurrentModule, name)
	fe, ok := e.RT.Functions[qualified]
	if !ok {
		return nil, unknownFunction(name, call.Pos)
	}
	return e.callFunction(fe, env, call.Args)
}

// callBuiltin binds call-site args against a built-in's fixed parameter
// list, special-casing the one FuncRefParam (if any) so it receives an
// *eval.FuncRef carrying the resolved qualified function name instead of
// an evaluated value — the referenced function has no first-class value
// form in this language.
func (e *Evaluator) callBuiltin(env *eval.Environment, spec *builtins.Spec, args []ast.Arg) (eval.Value, error) {
	argEval := func(paramName string, expr ast.Expr) (eval.Value, error) {
		if spec.FuncRefParam != "" && paramName == spec.FuncRefParam {
			fv, ok := expr.(*ast.Var)
			if !ok {
				return nil, wrongType("expected a function name for parameter '" + paramName + "'")
			}
			qualified := e.RT.Resolver.Resolve(e.RT.CurrentModule, fv.Name)
			return &eval.FuncRef{Name: qualified}, nil
		}
		return e.EvalExpr(env, expr)
	}
	bound, err := eval.BindArguments(spec.Params, args, argEval)
	if err != nil {
		return nil, err
	}
	return spec.Fn(e, bound)
}

// callFunction evaluates a user function call from call-site argument
// expressions, enforcing any registered contract around the call.
func (e *Evaluator) callFunction(fe *funcEntry, callerEnv *eval.Environment, args []ast.Arg) (eval.Value, error) {
	params := eval.FieldNames(fe.Decl.Params)
	bound, err := eval.BindArguments(params, args, func(_ string, expr ast.Expr) (eval.Value, error) {
		return e.EvalExpr(callerEnv, expr)
	})
	if err != nil {
		return nil, err
	}
	return e.invokeFunction(fe, bound)
}

// callFunctionValues evaluates a user function call from already-computed
// argument values, positional in declaration order — the shape
// list.map/filter/fold and the parallel_* builtins need via CallNamed.
func (e *Evaluator) callFunctionValues(fe *funcEntry, values []eval.Value) (eval.Value, error) {
	params := eval.FieldNames(fe.Decl.Params)
	if len(values) != len(params) {
		return nil, wrongArity("function '" + fe.Qualified + "' expects " + strconv.Itoa(len(params)) + " argument(s)")
	}
	bound := make(map[string]eval.Value, len(params))
	for i, p := range params {
		bound[p] = values[i]
	}
	return e.invokeFunction(fe, bound)
}

func (e *Evaluator) invokeFunction(fe *funcEntry, bound map[string]eval.Value) (eval.Value, error) {
	paramEnv := eval.NewEnvironment()
	for k, v := range bound {
		paramEnv.Set(k, v)
	}

	hasContract := e.RT.Contracts.Has(fe.Qualified)
	if hasContract {
		if err := e.RT.Contracts.CheckRequires(fe.Qualified, paramEnv, e); err != nil {
			return nil, err
		}
	}

	savedModule := e.RT.CurrentModule
	e.RT.CurrentModule = fe.Module
	e.depth++
	e.trace("call", fe.Qualified, nil)
	result, err := e.runBlockAsBody(paramEnv, fe.Decl.Body)
	e.depth--
	e.RT.CurrentModule = savedModule
	if err != nil {
		return nil, err
	}

	if hasContract {
		if err := e.RT.Contracts.CheckEnsures(fe.Qualified, paramEnv, result, e); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// CallFunction is the public entry point the CLI uses to invoke a named
// function with literal argument values (the `run`/`explain` commands).
// name may be bare (resolved against the primary module) or qualified.
func (e *Evaluator) CallFunction(name string, args []eval.Value) (eval.Value, error) {
	fe, ok := e.RT.Functions[name]
	if !ok {
		q := e.RT.Resolver.Resolve(e.RT.PrimaryModule, name)
		fe, ok = e.RT.Functions[q]
	}
	if !ok {
		return nil, unknownFunction(name, ast.Pos{})
	}
	return e.callFunctionValues(fe, args)
}

// ---------------------------------------------------------------------
// builtins.Context / contract.ExprEvaluator
// ---------------------------------------------------------------------

// CallNamed implements builtins.Context: invoke a function already
// resolved to a qualified name (as produced by callBuiltin's FuncRefParam
// handling) with already-evaluated arguments.
func (e *Evaluator) CallNamed(name string, args []eval.Value) (eval.Value, error) {
	fe, ok := e.RT.Functions[name]
	if !ok {
		return nil, unknownFunction(name, ast.Pos{})
	}
	return e.callFunctionValues(fe, args)
}

// IsPure implements builtins.Context: the parallel_* purity gate.
func (e *Evaluator) IsPure(name string) (bool, bool) {
	fe, ok := e.RT.Functions[name]
	if !ok {
		return false, false
	}
	return fe.Decl.IsPure(), true
}

// EvalPure implements contract.ExprEvaluator: requires/ensures clauses
// are ordinary expressions, evaluated in the clause's parameter (or
// parameter+result) environment. The type checker has already rejected
// effectful calls inside a contract clause, so this trusts it and simply
// reuses EvalExpr.
func (e *Evaluator) EvalPure(expr ast.Expr, env *eval.Environment) (eval.Value, error) {
	return e.EvalExpr(env, expr)
}

