// Package builtins registers the fixed table of named intrinsics described
// in spec §4.4: list/string/math utilities, the JSON codec, logging,
// pure higher-order iterators and their purity-gated parallel variants,
// assertion helpers, and scheduler controls. Every entry has fixed arity
// and fixed parameter names so it accepts both positional and named call
// syntax through the same argument binder the rest of the evaluator uses.
package builtins

import (
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/unicode/norm"

	"github.com/cappallo/aura/internal/aerr"
	"github.com/cappallo/aura/internal/eval"
)

// Context is what a builtin needs from the surrounding runtime: calling a
// user function by name (for list.map/filter/fold and the parallel_*
// family), checking purity (the parallel_* gate), emitting a log event,
// and driving the actor scheduler's deterministic controls.
type Context interface {
	CallNamed(name string, args []eval.Value) (eval.Value, error)
	IsPure(name string) (pure bool, exists bool)
	LogEvent(level, label string, payload eval.Value)
	Flush() (int, error)
	Step() (bool, error)
	Stop(actorRef eval.Value) error
}

// Impl is a builtin's implementation: given the call context and the
// bound (name -> value) arguments, produce a result or an error.
type Impl func(ctx Context, args map[string]eval.Value) (eval.Value, error)

// Spec is one registered builtin.
type Spec struct {
	Name string
	// Params is the fixed, ordered parameter-name list — also the
	// arity.
	Params []string
	// FuncRefParam names the one parameter (if any) that must be
	// supplied as a bare function-name reference rather than an
	// evaluated value; the evaluator special-cases binding for it,
	// passing an *eval.FuncRef.
	FuncRefParam string
	Fn           Impl
}

var registry = map[string]*Spec{}

func register(s *Spec) {
	registry[s.Name] = s
}

// Lookup returns the registered spec for name, if any.
func Lookup(name string) (*Spec, bool) {
	s, ok := registry[name]
	return s, ok
}

// Names returns every registered builtin name.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	registerListBuiltins()
	registerStringBuiltins()
	registerMathBuiltins()
	registerAssertBuiltins()
	registerJSONBuiltins()
	registerLogBuiltins()
	registerConcurrentBuiltins()
}

// ---------------------------------------------------------------------
// list.*
// ---------------------------------------------------------------------

func registerListBuiltins() {
	register(&Spec{Name: "list.len", Params: []string{"list"}, Fn: listLen})
	register(&Spec{Name: "list.map", Params: []string{"list", "fn"}, FuncRefParam: "fn", Fn: listMap})
	register(&Spec{Name: "list.filter", Params: []string{"list", "fn"}, FuncRefParam: "fn", Fn: listFilter})
	register(&Spec{Name: "list.fold", Params: []string{"list", "init", "fn"}, FuncRefParam: "fn", Fn: listFold})

	register(&Spec{Name: "parallel_map", Params: []string{"list", "fn"}, FuncRefParam: "fn", Fn: pureGate(listMap)})
	register(&Spec{Name: "parallel_filter", Params: []string{"list", "fn"}, FuncRefParam: "fn", Fn: pureGate(listFilter)})
	register(&Spec{Name: "parallel_fold", Params: []string{"list", "init", "fn"}, FuncRefParam: "fn", Fn: pureGate(listFold)})
	register(&Spec{Name: "parallel_for_each", Params: []string{"list", "fn"}, FuncRefParam: "fn", Fn: pureGate(listForEach)})
}

func asList(v eval.Value) (*eval.ListValue, error) {
	l, ok := v.(*eval.ListValue)
	if !ok {
		return nil, wrongType("expected a list, got " + v.Kind())
	}
	return l, nil
}

func funcName(v eval.Value) (string, error) {
	ref, ok := v.(*eval.FuncRef)
	if !ok {
		return "", wrongType("expected a function reference")
	}
	return ref.Name, nil
}

func listLen(_ Context, args map[string]eval.Value) (eval.Value, error) {
	l, err := asList(args["list"])
	if err != nil {
		return nil, err
	}
	return &eval.IntValue{V: len(l.Elements)}, nil
}

func listMap(ctx Context, args map[string]eval.Value) (eval.Value, error) {
	l, err := asList(args["list"])
	if err != nil {
		return nil, err
	}
	name, err := funcName(args["fn"])
	if err != nil {
		return nil, err
	}
	out := make([]eval.Value, len(l.Elements))
	for i, e := range l.Elements {
		v, err := ctx.CallNamed(name, []eval.Value{e})
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return &eval.ListValue{Elements: out}, nil
}

func listFilter(ctx Context, args map[string]eval.Value) (eval.Value, error) {
	l, err := asList(args["list"])
	if err != nil {
		return nil, err
	}
	name, err := funcName(args["fn"])
	if err != nil {
		return nil, err
	}
	var out []eval.Value
	for _, e := range l.Elements {
		v, err := ctx.CallNamed(name, []eval.Value{e})
		if err != nil {
			return nil, err
		}
		b, ok := v.(*eval.BoolValue)
		if !ok {
			return nil, wrongType("list.filter predicate must return Bool")
		}
		if b.V {
			out = append(out, e)
		}
	}
	if out == nil {
		out = []eval.Value{}
	}
	return &eval.ListValue{Elements: out}, nil
}

func listFold(ctx Context, args map[string]eval.Value) (eval.Value, error) {
	l, err := asList(args["list"])
	if err != nil {
		return nil, err
	}
	name, err := funcName(args["fn"])
	if err != nil {
		return nil, err
	}
	acc := args["init"]
	for _, e := range l.Elements {
		acc, err = ctx.CallNamed(name, []eval.Value{acc, e})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func listForEach(ctx Context, args map[string]eval.Value) (eval.Value, error) {
	l, err := asList(args["list"])
	if err != nil {
		return nil, err
	}
	name, err := funcName(args["fn"])
	if err != nil {
		return nil, err
	}
	for _, e := range l.Elements {
		v, err := ctx.CallNamed(name, []eval.Value{e})
		if err != nil {
			return nil, err
		}
		if _, ok := v.(*eval.UnitValue); !ok {
			return nil, wrongType("for_each action must return Unit")
		}
	}
	return eval.Unit(), nil
}

// pureGate wraps a sequential implementation with the purity check the
// parallel_* family requires: the referenced function must declare zero
// effects. The sequential and parallel variants share identical
// semantics (spec §5) — only the gate differs.
func pureGate(inner Impl) Impl {
	return func(ctx Context, args map[string]eval.Value) (eval.Value, error) {
		name, err := funcName(args["fn"])
		if err != nil {
			return nil, err
		}
		pure, exists := ctx.IsPure(name)
		if !exists {
			return nil, unknownFunc(name)
		}
		if !pure {
			return nil, wrongType(fmt.Sprintf("parallel variant requires a pure function; %q declares effects", name))
		}
		return inner(ctx, args)
	}
}

// ---------------------------------------------------------------------
// str.*
// ---------------------------------------------------------------------

func registerStringBuiltins() {
	register(&Spec{Name: "str.concat", Params: []string{"left", "right"}, Fn: strConcat})
	register(&Spec{Name: "str.len", Params: []string{"text"}, Fn: strLen})
	register(&Spec{Name: "str.slice", Params: []string{"text", "start", "end"}, Fn: strSlice})
	register(&Spec{Name: "str.at", Params: []string{"text", "index"}, Fn: strAt})
}

func asString(v eval.Value) (string, error) {
	s, ok := v.(*eval.StringValue)
	if !ok {
		return "", wrongType("expected a string, got " + v.Kind())
	}
	return norm.NFC.String(s.V), nil
}

func asInt(v eval.Value) (int, error) {
	i, ok := v.(*eval.IntValue)
	if !ok {
		return 0, wrongType("expected an Int, got " + v.Kind())
	}
	return i.V, nil
}

func strConcat(_ Context, args map[string]eval.Value) (eval.Value, error) {
	l, err := asString(args["left"])
	if err != nil {
		return nil, err
	}
	r, err := asString(args["right"])
	if err != nil {
		return nil, err
	}
	return &eval.StringValue{V: l + r}, nil
}

func strLen(_ Context, args map[string]eval.Value) (eval.Value, error) {
	s, err := asString(args["text"])
	if err != nil {
		return nil, err
	}
	return &eval.IntValue{V: len([]rune(s))}, nil
}

func strSlice(_ Context, args map[string]eval.Value) (eval.Value, error) {
	s, err := asString(args["text"])
	if err != nil {
		return nil, err
	}
	start, err := asInt(args["start"])
	if err != nil {
		return nil, err
	}
	end, err := asInt(args["end"])
	if err != nil {
		return nil, err
	}
	r := []rune(s)
	start = clamp(start, 0, len(r))
	end = clamp(end, 0, len(r))
	if end < start {
		end = start
	}
	return &eval.StringValue{V: string(r[start:end])}, nil
}

func strAt(_ Context, args map[string]eval.Value) (eval.Value, error) {
	s, err := asString(args["text"])
	if err != nil {
		return nil, err
	}
	idx, err := asInt(args["index"])
	if err != nil {
		return nil, err
	}
	r := []rune(s)
	if idx < 0 || idx >= len(r) {
		return eval.None(), nil
	}
	return eval.Some(&eval.StringValue{V: string(r[idx])}), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ---------------------------------------------------------------------
// math.*
// ---------------------------------------------------------------------

func registerMathBuiltins() {
	register(&Spec{Name: "math.abs", Params: []string{"n"}, Fn: mathAbs})
	register(&Spec{Name: "math.min", Params: []string{"a", "b"}, Fn: mathMin})
	register(&Spec{Name: "math.max", Params: []string{"a", "b"}, Fn: mathMax})
}

func mathAbs(_ Context, args map[string]eval.Value) (eval.Value, error) {
	n, err := asInt(args["n"])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = -n
	}
	return &eval.IntValue{V: n}, nil
}

func mathMin(_ Context, args map[string]eval.Value) (eval.Value, error) {
	a, err := asInt(args["a"])
	if err != nil {
		return nil, err
	}
	b, err := asInt(args["b"])
	if err != nil {
		return nil, err
	}
	if a < b {
		return &eval.IntValue{V: a}, nil
	}
	return &eval.IntValue{V: b}, nil
}

func mathMax(_ Context, args map[string]eval.Value) (eval.Value, error) {
	a, err := asInt(args["a"])
	if err != nil {
		return nil, err
	}
	b, err := asInt(args["b"])
	if err != nil {
		return nil, err
	}
	if a > b {
		return &eval.IntValue{V: a}, nil
	}
	return &eval.IntValue{V: b}, nil
}

// ---------------------------------------------------------------------
// assert / test.assert_equal
// ---------------------------------------------------------------------

func registerAssertBuiltins() {
	register(&Spec{Name: "assert", Params: []string{"condition"}, Fn: assertFn})
	register(&Spec{Name: "test.assert_equal", Params: []string{"expected", "actual"}, Fn: assertEqual})
}

func assertFn(_ Context, args map[string]eval.Value) (eval.Value, error) {
	b, ok := args["condition"].(*eval.BoolValue)
	if !ok {
		return nil, wrongType("assert requires a Bool condition")
	}
	if !b.V {
		return nil, assertionFailed("Assertion failed")
	}
	return eval.Unit(), nil
}

func assertEqual(_ Context, args map[string]eval.Value) (eval.Value, error) {
	expected := args["expected"]
	actual := args["actual"]
	if eval.Equals(expected, actual) {
		return eval.Unit(), nil
	}
	expJSON, _ := eval.ToJSON(expected)
	actJSON, _ := eval.ToJSON(actual)
	diff := cmp.Diff(expJSON, actJSON)
	msg := fmt.Sprintf("Assertion failed: expected %s, got %s", expected.String(), actual.String())
	if diff != "" {
		msg += "\n" + diff
	}
	return nil, assertionFailed(msg)
}

// ---------------------------------------------------------------------
// json.*
// ---------------------------------------------------------------------

func registerJSONBuiltins() {
	register(&Spec{Name: "json.encode", Params: []string{"value"}, Fn: jsonEncode})
	register(&Spec{Name: "json.decode", Params: []string{"text"}, Fn: jsonDecode})
}

func jsonEncode(_ Context, args map[string]eval.Value) (eval.Value, error) {
	s, err := eval.EncodeJSON(args["value"])
	if err != nil {
		return nil, err
	}
	return &eval.StringValue{V: s}, nil
}

func jsonDecode(_ Context, args map[string]eval.Value) (eval.Value, error) {
	s, err := asString(args["text"])
	if err != nil {
		return nil, err
	}
	return eval.DecodeJSON(s)
}

// ---------------------------------------------------------------------
// Log.*
// ---------------------------------------------------------------------

func registerLogBuiltins() {
	register(&Spec{Name: "Log.debug", Params: []string{"label", "payload"}, Fn: logDebug})
	register(&Spec{Name: "Log.trace", Params: []string{"label", "payload"}, Fn: logTrace})
}

func logDebug(ctx Context, args map[string]eval.Value) (eval.Value, error) {
	return logEvent(ctx, "debug", args)
}

func logTrace(ctx Context, args map[string]eval.Value) (eval.Value, error) {
	return logEvent(ctx, "trace", args)
}

func logEvent(ctx Context, level string, args map[string]eval.Value) (eval.Value, error) {
	label, err := asString(args["label"])
	if err != nil {
		return nil, err
	}
	ctx.LogEvent(level, label, args["payload"])
	return eval.Unit(), nil
}

// ---------------------------------------------------------------------
// Concurrent.*
// ---------------------------------------------------------------------

func registerConcurrentBuiltins() {
	register(&Spec{Name: "Concurrent.flush", Params: []string{}, Fn: concurrentFlush})
	register(&Spec{Name: "Concurrent.step", Params: []string{}, Fn: concurrentStep})
	register(&Spec{Name: "Concurrent.stop", Params: []string{"actor"}, Fn: concurrentStop})
}

func concurrentFlush(ctx Context, _ map[string]eval.Value) (eval.Value, error) {
	n, err := ctx.Flush()
	if err != nil {
		return nil, err
	}
	return &eval.IntValue{V: n}, nil
}

func concurrentStep(ctx Context, _ map[string]eval.Value) (eval.Value, error) {
	ran, err := ctx.Step()
	if err != nil {
		return nil, err
	}
	return &eval.BoolValue{V: ran}, nil
}

func concurrentStop(ctx Context, args map[string]eval.Value) (eval.Value, error) {
	if _, ok := args["actor"].(*eval.ActorRefValue); !ok {
		return nil, wrongType("Concurrent.stop requires an ActorRef")
	}
	if err := ctx.Stop(args["actor"]); err != nil {
		return nil, err
	}
	return eval.Unit(), nil
}

// ---------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------

func wrongType(msg string) error {
	return aerr.Wrap(aerr.New(aerr.EVA004, aerr.KindWrongOperandType, msg, nil))
}

func unknownFunc(name string) error {
	return aerr.Wrap(aerr.New(aerr.EVA002, aerr.KindUnknownFunction, "unknown function '"+name+"'", nil))
}

func assertionFailed(msg string) error {
	return aerr.Wrap(aerr.New(aerr.RT005, aerr.KindAssertionFailed, msg, nil))
}
