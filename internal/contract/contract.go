// Package contract enforces design-by-contract clauses attached to a
// function declaration: on entry, every requires clause must evaluate
// true in the parameter environment; after a normal return, every ensures
// clause must evaluate true in that same environment extended with
// result. Contracts never call effectful functions — the type checker
// rejects that, so this package trusts it.
package contract

import (
	"github.com/cappallo/aura/internal/aerr"
	"github.com/cappallo/aura/internal/ast"
	"github.com/cappallo/aura/internal/eval"
)

// ExprEvaluator is the minimal callback the enforcer needs from the
// evaluator: evaluate a boolean clause expression in a given environment.
// Defining it here (rather than importing the evaluator's package)
// keeps contract a leaf package with no dependency on runtime.
type ExprEvaluator interface {
	EvalPure(expr ast.Expr, env *eval.Environment) (eval.Value, error)
}

// Enforcer holds the qualified-name -> contract index built at assembly
// time.
type Enforcer struct {
	Contracts map[string]*ast.ContractDecl
}

// New builds an empty Enforcer; callers populate Contracts directly (the
// runtime assembler owns index construction).
func New() *Enforcer {
	return &Enforcer{Contracts: make(map[string]*ast.ContractDecl)}
}

// CheckRequires evaluates every requires clause of qualifiedName's
// contract (if any) in paramEnv. A non-boolean or false result is a
// contract failure; no contract at all is success.
func (e *Enforcer) CheckRequires(qualifiedName string, paramEnv *eval.Environment, ev ExprEvaluator) error {
	c, ok := e.Contracts[qualifiedName]
	if !ok {
		return nil
	}
	for _, clause := range c.Requires {
		v, err := ev.EvalPure(clause, paramEnv)
		if err != nil {
			return err
		}
		b, ok := v.(*eval.BoolValue)
		if !ok {
			return aerr.Wrap(aerr.New(aerr.CTR003, aerr.KindNonBoolean,
				"requires clause of '"+qualifiedName+"' did not evaluate to a boolean", locOf(clause)))
		}
		if !b.V {
			return aerr.Wrap(aerr.New(aerr.CTR001, aerr.KindContractRequires,
				"Contract requires clause failed for '"+qualifiedName+"'", locOf(clause)))
		}
	}
	return nil
}

// CheckEnsures evaluates every ensures clause of qualifiedName's contract
// (if any) in paramEnv extended with "result" bound to the function's
// return value.
func (e *Enforcer) CheckEnsures(qualifiedName string, paramEnv *eval.Environment, result eval.Value, ev ExprEvaluator) error {
	c, ok := e.Contracts[qualifiedName]
	if !ok {
		return nil
	}
	resultEnv := paramEnv.Extend("result", result)
	for _, clause := range c.Ensures {
		v, err := ev.EvalPure(clause, resultEnv)
		if err != nil {
			return err
		}
		b, ok := v.(*eval.BoolValue)
		if !ok {
			return aerr.Wrap(aerr.New(aerr.CTR003, aerr.KindNonBoolean,
				"ensures clause of '"+qualifiedName+"' did not evaluate to a boolean", locOf(clause)))
		}
		if !b.V {
			return aerr.Wrap(aerr.New(aerr.CTR002, aerr.KindContractEnsures,
				"Contract ensures clause failed for '"+qualifiedName+"'", locOf(clause)))
		}
	}
	return nil
}

// Has reports whether qualifiedName has a registered contract, so the
// evaluator can skip environment setup entirely for the common
// contract-free call.
func (e *Enforcer) Has(qualifiedName string) bool {
	_, ok := e.Contracts[qualifiedName]
	return ok
}

func locOf(e ast.Expr) *aerr.Location {
	p := e.Position()
	return &aerr.Location{File: p.File, Line: p.Line, Column: p.Column}
}
