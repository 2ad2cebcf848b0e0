package runtime

import (
	"fmt"

	"github.com/cappallo/aura/internal/ast"
	"github.com/cappallo/aura/internal/eval"
)

// Evaluator walks an already-assembled Runtime's declarations. It holds
// no state of its own beyond a trace-depth counter — everything else
// lives on the Runtime so CallFunction can be invoked repeatedly (once
// per test, once per property trial) against the same assembled indexes.
type Evaluator struct {
	RT    *Runtime
	depth int
}

// NewEvaluator builds an Evaluator over an assembled Runtime.
func NewEvaluator(rt *Runtime) *Evaluator {
	return &Evaluator{RT: rt}
}

// returnSignal is how an in-flight `return` statement unwinds to the call
// boundary that started evaluating the enclosing body. It is carried as
// an error so it propagates through ordinary Go control flow across
// nested blocks, if/match expressions, and async tasks without a second
// parallel return channel.
type returnSignal struct{ value eval.Value }

func (r *returnSignal) Error() string { return "return outside a function body" }

// runBlockAsBody evaluates body as the full body of a function, test,
// property, or actor handler, unwrapping a returnSignal into its value.
func (e *Evaluator) runBlockAsBody(env *eval.Environment, body *ast.Block) (eval.Value, error) {
	v, err := e.EvalBlock(env, body)
	if rs, ok := err.(*returnSignal); ok {
		return rs.value, nil
	}
	return v, err
}

// runBlockAsBodyWithEnv is runBlockAsBody plus the final threaded
// environment, for callers (actor handler dispatch) that need to observe
// bindings the body produced beyond its return value.
func (e *Evaluator) runBlockAsBodyWithEnv(env *eval.Environment, body *ast.Block) (eval.Value, *eval.Environment, error) {
	v, finalEnv, err := e.evalBlockWithEnv(env, body)
	if rs, ok := err.(*returnSignal); ok {
		return rs.value, finalEnv, nil
	}
	return v, finalEnv, err
}

// EvalBlock executes body's statements in order, threading let bindings
// through the environment. The block's value is its last expression
// statement's value, or Unit if empty or the last statement did not
// produce one.
func (e *Evaluator) EvalBlock(env *eval.Environment, body *ast.Block) (eval.Value, error) {
	v, _, err := e.evalBlockWithEnv(env, body)
	return v, err
}

// evalBlockWithEnv is EvalBlock plus the final threaded environment — a
// handler body has no return-value channel for its state-field updates,
// only `let name = ...` shadowing within the block, so runHandler needs
// the environment the block actually finished in to read state fields
// back out, not just its trailing expression value.
func (e *Evaluator) evalBlockWithEnv(env *eval.Environment, body *ast.Block) (eval.Value, *eval.Environment, error) {
	cur := env
	last := eval.Unit()
	sawExpr := false
	for _, stmt := range body.Stmts {
		newEnv, v, isExpr, err := e.execStmt(cur, stmt)
		if err != nil {
			return nil, cur, err
		}
		cur = newEnv
		if isExpr {
			last = v
			sawExpr = true
		} else {
			sawExpr = false
		}
	}
	if !sawExpr {
		return eval.Unit(), cur, nil
	}
	return last, cur, nil
}

// execStmt evaluates one statement, returning the environment subsequent
// statements in the same block should use, the statement's value (only
// meaningful when isExpr is true), and any error — including, for
// ReturnStmt, a *returnSignal.
func (e *Evaluator) execStmt(env *eval.Environment, stmt ast.Stmt) (_ *eval.Environment, _ eval.Value, isExpr bool, err error) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		v, err := e.EvalExpr(env, s.Value)
		if err != nil {
			return env, nil, false, err
		}
		e.trace("let", s.Name, v)
		return env.Extend(s.Name, v), nil, false, nil

	case *ast.ReturnStmt:
		v, err := e.EvalExpr(env, s.Value)
		if err != nil {
			return env, nil, false, err
		}
		e.trace("return", "", v)
		return env, nil, false, &returnSignal{value: v}

	case *ast.ExprStmt:
		v, err := e.EvalExpr(env, s.Value)
		if err != nil {
			return env, nil, false, err
		}
		e.trace("expr", "", v)
		return env, v, true, nil

	case *ast.MatchStmt:
		v, err := e.matchAndRun(env, s.Scrutinee, s.Cases)
		if err != nil {
			return env, nil, false, err
		}
		e.trace("match", "", v)
		return env, v, true, nil

	case *ast.AsyncGroupStmt:
		v, err := e.runAsyncGroup(env, s)
		if err != nil {
			return env, nil, false, err
		}
		return env, v, true, nil

	default:
		return env, nil, false, fmt.Errorf("runtime: unsupported statement %T", stmt)
	}
}

// EvalExpr evaluates expr to a Value. Calls may perform effects (actor
// sends, builtins); every other expression is pure computation.
func (e *Evaluator) EvalExpr(env *eval.Environment, expr ast.Expr) (eval.Value, error) {
	switch ex := expr.(type) {
	case *ast.IntLit:
		return &eval.IntValue{V: ex.Value}, nil
	case *ast.BoolLit:
		return &eval.BoolValue{V: ex.Value}, nil
	case *ast.StringLit:
		return &eval.StringValue{V: ex.Value}, nil
	case *ast.UnitLit:
		return eval.Unit(), nil

	case *ast.ListLit:
		elems := make([]eval.Value, len(ex.Elements))
		for i, el := range ex.Elements {
			v, err := e.EvalExpr(env, el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &eval.ListValue{Elements: elems}, nil

	case *ast.Var:
		v, ok := env.Get(ex.Name)
		if !ok {
			return nil, unknownVariable(ex.Name, ex.Pos)
		}
		return v, nil

	case *ast.BinaryOp:
		l, err := e.EvalExpr(env, ex.Left)
		if err != nil {
			return nil, err
		}
		r, err := e.EvalExpr(env, ex.Right)
		if err != nil {
			return nil, err
		}
		return evalBinary(ex.Op, l, r, ex.Pos)

	case *ast.If:
		cond, err := e.EvalExpr(env, ex.Cond)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(*eval.BoolValue)
		if !ok {
			return nil, nonBoolean("if condition must be Bool", ex.Pos)
		}
		if b.V {
			return e.EvalBlock(env.NewChildEnvironment(), ex.Then)
		}
		if ex.Else != nil {
			return e.EvalBlock(env.NewChildEnvironment(), ex.Else)
		}
		return eval.Unit(), nil

	case *ast.Match:
		return e.matchAndRun(env, ex.Scrutinee, ex.Cases)

	case *ast.Call:
		return e.evalCall(env, ex)

	case *ast.RecordExpr:
		return e.evalRecordExpr(env, ex)

	case *ast.FieldAccess:
		target, err := e.EvalExpr(env, ex.Target)
		if err != nil {
			return nil, err
		}
		cv, ok := target.(*eval.ConstructorValue)
		if !ok {
			return nil, fieldAccessFailed(ex.Field, ex.Pos)
		}
		v, ok := cv.Field(ex.Field)
		if !ok {
			return nil, fieldAccessFailed(ex.Field, ex.Pos)
		}
		return v, nil

	case *ast.Index:
		target, err := e.EvalExpr(env, ex.Target)
		if err != nil {
			return nil, err
		}
		lst, ok := target.(*eval.ListValue)
		if !ok {
			return nil, wrongType("index target must be a list")
		}
		idxVal, err := e.EvalExpr(env, ex.Index)
		if err != nil {
			return nil, err
		}
		idx, ok := idxVal.(*eval.IntValue)
		if !ok {
			return nil, wrongType("index must be an Int")
		}
		if idx.V < 0 || idx.V >= len(lst.Elements) {
			return nil, indexOutOfBounds(idx.V, len(lst.Elements), ex.Pos)
		}
		return lst.Elements[idx.V], nil

	case *ast.Hole:
		return nil, unfilledHole(ex.Pos)

	default:
		return nil, fmt.Errorf("runtime: unsupported expression %T", expr)
	}
}

// evalRecordExpr builds a constructor value, preferring the declared
// field order over call-site order when the tag names a known type.
func (e *Evaluator) evalRecordExpr(env *eval.Environment, re *ast.RecordExpr) (eval.Value, error) {
	vals := make(map[string]eval.Value, len(re.Fields))
	order := make([]string, 0, len(re.Fields))
	for _, f := range re.Fields {
		v, err := e.EvalExpr(env, f.Value)
		if err != nil {
			return nil, err
		}
		vals[f.Name] = v
		order = append(order, f.Name)
	}
	if names, ok := e.RT.ConstructorFields[re.Tag]; ok {
		order = names
	}
	return eval.NewConstructor(re.Tag, order, vals), nil
}

// matchAndRun evaluates scrutinee once and tries cases in source order,
// shared between match expressions and match statements.
func (e *Evaluator) matchAndRun(env *eval.Environment, scrutinee ast.Expr, cases []ast.MatchCase) (eval.Value, error) {
	sv, err := e.EvalExpr(env, scrutinee)
	if err != nil {
		return nil, err
	}
	for _, c := range cases {
		bindings := map[string]eval.Value{}
		if !matchPattern(c.Pattern, sv, bindings) {
			continue
		}
		caseEnv := env
		for name, v := range bindings {
			caseEnv = caseEnv.Extend(name, v)
		}
		if c.Guard != nil {
			gv, err := e.EvalExpr(caseEnv, c.Guard)
			if err != nil {
				return nil, err
			}
			gb, ok := gv.(*eval.BoolValue)
			if !ok {
				return nil, nonBoolean("match guard must evaluate to Bool", c.Guard.Position())
			}
			if !gb.V {
				continue
			}
		}
		return e.EvalBlock(caseEnv, c.Body)
	}
	return nil, nonExhaustiveMatch(scrutinee.Position())
}

// matchPattern reports whether pat matches v, recording any bindings it
// introduces. It never partially commits: a failed nested field match
// means the whole pattern failed, regardless of bindings already added to
// the map (callers discard bindings on a false return).
func matchPattern(pat ast.Pattern, v eval.Value, bindings map[string]eval.Value) bool {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true

	case *ast.VarPattern:
		bindings[p.Name] = v
		return true

	case *ast.LitPattern:
		switch lit := p.Value.(type) {
		case int:
			iv, ok := v.(*eval.IntValue)
			return ok && iv.V == lit
		case bool:
			bv, ok := v.(*eval.BoolValue)
			return ok && bv.V == lit
		case string:
			sv, ok := v.(*eval.StringValue)
			return ok && sv.V == lit
		default:
			return false
		}

	case *ast.ConstructorPattern:
		cv, ok := v.(*eval.ConstructorValue)
		if !ok || cv.Tag != p.Tag {
			return false
		}
		for _, fp := range p.Fields {
			fv, ok := cv.Fields[fp.Name]
			if !ok {
				return false
			}
			if !matchPattern(fp.Pattern, fv, bindings) {
				return false
			}
		}
		return true

	default:
		return false
	}
}

// floorDiv implements the spec's "floor of signed quotient," which
// differs from Go's truncating `/` whenever the operands have opposite
// signs and do not divide evenly.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func evalBinary(op string, l, r eval.Value, pos ast.Pos) (eval.Value, error) {
	switch op {
	case "+", "-", "*", "/":
		li, ok := l.(*eval.IntValue)
		if !ok {
			return nil, wrongType("left operand of '" + op + "' must be Int")
		}
		ri, ok := r.(*eval.IntValue)
		if !ok {
			return nil, wrongType("right operand of '" + op + "' must be Int")
		}
		switch op {
		case "+":
			return &eval.IntValue{V: li.V + ri.V}, nil
		case "-":
			return &eval.IntValue{V: li.V - ri.V}, nil
		case "*":
			return &eval.IntValue{V: li.V * ri.V}, nil
		default: // "/"
			if ri.V == 0 {
				return nil, divisionByZero(pos)
			}
			return &eval.IntValue{V: floorDiv(li.V, ri.V)}, nil
		}

	case "==":
		return &eval.BoolValue{V: eval.Equals(l, r)}, nil
	case "!=":
		return &eval.BoolValue{V: !eval.Equals(l, r)}, nil

	case "<", "<=", ">", ">=":
		li, ok := l.(*eval.IntValue)
		if !ok {
			return nil, wrongType("left operand of '" + op + "' must be Int")
		}
		ri, ok := r.(*eval.IntValue)
		if !ok {
			return nil, wrongType("right operand of '" + op + "' must be Int")
		}
		switch op {
		case "<":
			return &eval.BoolValue{V: li.V < ri.V}, nil
		case "<=":
			return &eval.BoolValue{V: li.V <= ri.V}, nil
		case ">":
			return &eval.BoolValue{V: li.V > ri.V}, nil
		default: // ">="
			return &eval.BoolValue{V: li.V >= ri.V}, nil
		}

	case "&&", "||":
		lb, ok := l.(*eval.BoolValue)
		if !ok {
			return nil, wrongType("left operand of '" + op + "' must be Bool")
		}
		rb, ok := r.(*eval.BoolValue)
		if !ok {
			return nil, wrongType("right operand of '" + op + "' must be Bool")
		}
		if op == "&&" {
			return &eval.BoolValue{V: lb.V && rb.V}, nil
		}
		return &eval.BoolValue{V: lb.V || rb.V}, nil

	default:
		return nil, fmt.Errorf("runtime: unsupported operator %q", op)
	}
}

// asyncTask tracks one `async { ... }` block's cooperative progress: its
// own environment (extended independently of its siblings) and a cursor
// into its statement list.
type asyncTask struct {
	body      *ast.Block
	env       *eval.Environment
	cursor    int
	done      bool
	cancelled bool
}

// runAsyncGroup interleaves each task's statements round-robin, one
// statement per task per round, cancelling every sibling the instant any
// task raises; that error is then returned and Body does not run. When
// every task has finished without error, Body runs at the outer group's
// environment — so a `return` written there first drains every scheduled
// task, per §5.
func (e *Evaluator) runAsyncGroup(env *eval.Environment, group *ast.AsyncGroupStmt) (eval.Value, error) {
	tasks := make([]*asyncTask, len(group.Tasks))
	for i, t := range group.Tasks {
		tasks[i] = &asyncTask{body: t.Body, env: env.NewChildEnvironment()}
	}

	remaining := len(tasks)
	var firstErr error
	for remaining > 0 && firstErr == nil {
		progressed := false
		for _, t := range tasks {
			if t.done || t.cancelled {
				continue
			}
			if t.cursor >= len(t.body.Stmts) {
				t.done = true
				remaining--
				continue
			}
			stmt := t.body.Stmts[t.cursor]
			newEnv, _, _, err := e.execStmt(t.env, stmt)
			if err != nil {
				if _, ok := err.(*returnSignal); ok {
					err = fmt.Errorf("runtime: return is not permitted inside an async task")
				}
				firstErr = err
				t.cancelled = true
				for _, other := range tasks {
					if other != t && !other.done {
						other.cancelled = true
					}
				}
				break
			}
			t.env = newEnv
			t.cursor++
			progressed = true
		}
		if !progressed && firstErr == nil {
			break
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return e.EvalBlock(env, group.Body)
}

func (e *Evaluator) trace(stepType, desc string, v eval.Value) {
	if !e.RT.Tracing {
		return
	}
	e.RT.Traces = append(e.RT.Traces, TraceEntry{StepType: stepType, Description: desc, Value: v, Depth: e.depth})
}
