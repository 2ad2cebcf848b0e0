package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cappallo/aura/internal/eval"
)

// fakeContext is a minimal builtins.Context for driving Impl functions
// directly, without a full runtime.Evaluator. funcs maps a qualified
// function name to a plain Go implementation, so list.map/filter/fold
// and the parallel_* family can be exercised without an AST.
type fakeContext struct {
	funcs    map[string]func([]eval.Value) (eval.Value, error)
	pure     map[string]bool
	logs     []logged
	flushN   int
	flushErr error
	stepRan  bool
	stepErr  error
	stopped  eval.Value
	stopErr  error
}

type logged struct {
	level, label string
	payload      eval.Value
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		funcs: map[string]func([]eval.Value) (eval.Value, error){},
		pure:  map[string]bool{},
	}
}

func (c *fakeContext) CallNamed(name string, args []eval.Value) (eval.Value, error) {
	fn, ok := c.funcs[name]
	if !ok {
		return nil, wrongType("unknown function '" + name + "'")
	}
	return fn(args)
}

func (c *fakeContext) IsPure(name string) (bool, bool) {
	pure, ok := c.pure[name]
	return pure, ok
}

func (c *fakeContext) LogEvent(level, label string, payload eval.Value) {
	c.logs = append(c.logs, logged{level, label, payload})
}

func (c *fakeContext) Flush() (int, error) { return c.flushN, c.flushErr }
func (c *fakeContext) Step() (bool, error) { return c.stepRan, c.stepErr }
func (c *fakeContext) Stop(actorRef eval.Value) error {
	c.stopped = actorRef
	return c.stopErr
}

func intList(vs ...int) *eval.ListValue {
	elems := make([]eval.Value, len(vs))
	for i, v := range vs {
		elems[i] = &eval.IntValue{V: v}
	}
	return &eval.ListValue{Elements: elems}
}

func intsOf(t *testing.T, l *eval.ListValue) []int {
	t.Helper()
	out := make([]int, len(l.Elements))
	for i, e := range l.Elements {
		out[i] = e.(*eval.IntValue).V
	}
	return out
}

func funcRef(name string) eval.Value { return &eval.FuncRef{Name: name} }

// ---------------------------------------------------------------------
// list.*
// ---------------------------------------------------------------------

func TestListLen(t *testing.T) {
	spec, ok := Lookup("list.len")
	require.True(t, ok)
	v, err := spec.Fn(newFakeContext(), map[string]eval.Value{"list": intList(1, 2, 3)})
	require.NoError(t, err)
	assert.Equal(t, 3, v.(*eval.IntValue).V)
}

func TestListLen_WrongType(t *testing.T) {
	spec, ok := Lookup("list.len")
	require.True(t, ok)
	_, err := spec.Fn(newFakeContext(), map[string]eval.Value{"list": &eval.IntValue{V: 1}})
	require.Error(t, err)
}

func TestListMap(t *testing.T) {
	ctx := newFakeContext()
	ctx.funcs["double"] = func(args []eval.Value) (eval.Value, error) {
		return &eval.IntValue{V: args[0].(*eval.IntValue).V * 2}, nil
	}
	spec, ok := Lookup("list.map")
	require.True(t, ok)
	v, err := spec.Fn(ctx, map[string]eval.Value{"list": intList(1, 2, 3), "fn": funcRef("double")})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, intsOf(t, v.(*eval.ListValue)))
}

func TestListFilter(t *testing.T) {
	ctx := newFakeContext()
	ctx.funcs["isEven"] = func(args []eval.Value) (eval.Value, error) {
		return &eval.BoolValue{V: args[0].(*eval.IntValue).V%2 == 0}, nil
	}
	spec, ok := Lookup("list.filter")
	require.True(t, ok)
	v, err := spec.Fn(ctx, map[string]eval.Value{"list": intList(1, 2, 3, 4), "fn": funcRef("isEven")})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, intsOf(t, v.(*eval.ListValue)))
}

func TestListFilter_NonBoolPredicateFails(t *testing.T) {
	ctx := newFakeContext()
	ctx.funcs["notBool"] = func(args []eval.Value) (eval.Value, error) {
		return &eval.IntValue{V: 1}, nil
	}
	spec, ok := Lookup("list.filter")
	require.True(t, ok)
	_, err := spec.Fn(ctx, map[string]eval.Value{"list": intList(1), "fn": funcRef("notBool")})
	require.Error(t, err)
}

func TestListFold(t *testing.T) {
	ctx := newFakeContext()
	ctx.funcs["add"] = func(args []eval.Value) (eval.Value, error) {
		return &eval.IntValue{V: args[0].(*eval.IntValue).V + args[1].(*eval.IntValue).V}, nil
	}
	spec, ok := Lookup("list.fold")
	require.True(t, ok)
	v, err := spec.Fn(ctx, map[string]eval.Value{
		"list": intList(1, 2, 3, 4), "init": &eval.IntValue{V: 0}, "fn": funcRef("add"),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, v.(*eval.IntValue).V)
}

func TestListForEach_RequiresUnitResult(t *testing.T) {
	ctx := newFakeContext()
	ctx.funcs["sideEffect"] = func(args []eval.Value) (eval.Value, error) {
		return eval.Unit(), nil
	}
	spec, ok := Lookup("parallel_for_each")
	require.True(t, ok)
	ctx.pure["sideEffect"] = true
	v, err := spec.Fn(ctx, map[string]eval.Value{"list": intList(1, 2), "fn": funcRef("sideEffect")})
	require.NoError(t, err)
	assert.Equal(t, "Unit", v.Kind())
}

func TestListForEach_NonUnitResultFails(t *testing.T) {
	ctx := newFakeContext()
	ctx.funcs["notUnit"] = func(args []eval.Value) (eval.Value, error) {
		return &eval.IntValue{V: 1}, nil
	}
	ctx.pure["notUnit"] = true
	spec, ok := Lookup("parallel_for_each")
	require.True(t, ok)
	_, err := spec.Fn(ctx, map[string]eval.Value{"list": intList(1), "fn": funcRef("notUnit")})
	require.Error(t, err)
}

// ---------------------------------------------------------------------
// parallel_* purity gate
// ---------------------------------------------------------------------

func TestParallelMap_PureFunctionRunsSequentialSemantics(t *testing.T) {
	ctx := newFakeContext()
	ctx.funcs["double"] = func(args []eval.Value) (eval.Value, error) {
		return &eval.IntValue{V: args[0].(*eval.IntValue).V * 2}, nil
	}
	ctx.pure["double"] = true
	spec, ok := Lookup("parallel_map")
	require.True(t, ok)
	v, err := spec.Fn(ctx, map[string]eval.Value{"list": intList(1, 2, 3), "fn": funcRef("double")})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, intsOf(t, v.(*eval.ListValue)))
}

func TestParallelMap_EffectfulFunctionRejected(t *testing.T) {
	ctx := newFakeContext()
	ctx.funcs["double"] = func(args []eval.Value) (eval.Value, error) {
		return &eval.IntValue{V: args[0].(*eval.IntValue).V * 2}, nil
	}
	ctx.pure["double"] = false
	spec, ok := Lookup("parallel_map")
	require.True(t, ok)
	_, err := spec.Fn(ctx, map[string]eval.Value{"list": intList(1), "fn": funcRef("double")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares effects")
}

func TestParallelFold_UnknownFunctionRejected(t *testing.T) {
	ctx := newFakeContext()
	spec, ok := Lookup("parallel_fold")
	require.True(t, ok)
	_, err := spec.Fn(ctx, map[string]eval.Value{
		"list": intList(1), "init": &eval.IntValue{V: 0}, "fn": funcRef("missing"),
	})
	require.Error(t, err)
}

// ---------------------------------------------------------------------
// str.*
// ---------------------------------------------------------------------

func TestStrConcat(t *testing.T) {
	spec, ok := Lookup("str.concat")
	require.True(t, ok)
	v, err := spec.Fn(newFakeContext(), map[string]eval.Value{
		"left": &eval.StringValue{V: "foo"}, "right": &eval.StringValue{V: "bar"},
	})
	require.NoError(t, err)
	assert.Equal(t, "foobar", v.(*eval.StringValue).V)
}

func TestStrLen_CountsCodePointsNotBytes(t *testing.T) {
	spec, ok := Lookup("str.len")
	require.True(t, ok)
	v, err := spec.Fn(newFakeContext(), map[string]eval.Value{"text": &eval.StringValue{V: "héllo"}})
	require.NoError(t, err)
	assert.Equal(t, 5, v.(*eval.IntValue).V)
}

func TestStrSlice_HalfOpenRange(t *testing.T) {
	spec, ok := Lookup("str.slice")
	require.True(t, ok)
	v, err := spec.Fn(newFakeContext(), map[string]eval.Value{
		"text": &eval.StringValue{V: "hello"}, "start": &eval.IntValue{V: 1}, "end": &eval.IntValue{V: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, "ell", v.(*eval.StringValue).V)
}

func TestStrSlice_OutOfRangeClamps(t *testing.T) {
	spec, ok := Lookup("str.slice")
	require.True(t, ok)
	v, err := spec.Fn(newFakeContext(), map[string]eval.Value{
		"text": &eval.StringValue{V: "hi"}, "start": &eval.IntValue{V: -5}, "end": &eval.IntValue{V: 99},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", v.(*eval.StringValue).V)
}

func TestStrAt_InRangeReturnsSome(t *testing.T) {
	spec, ok := Lookup("str.at")
	require.True(t, ok)
	v, err := spec.Fn(newFakeContext(), map[string]eval.Value{
		"text": &eval.StringValue{V: "abc"}, "index": &eval.IntValue{V: 1},
	})
	require.NoError(t, err)
	cv := v.(*eval.ConstructorValue)
	assert.Equal(t, "Some", cv.Tag)
	assert.Equal(t, "b", cv.Fields["value"].(*eval.StringValue).V)
}

func TestStrAt_OutOfRangeReturnsNone(t *testing.T) {
	spec, ok := Lookup("str.at")
	require.True(t, ok)
	v, err := spec.Fn(newFakeContext(), map[string]eval.Value{
		"text": &eval.StringValue{V: "abc"}, "index": &eval.IntValue{V: 9},
	})
	require.NoError(t, err)
	assert.Equal(t, "None", v.(*eval.ConstructorValue).Tag)
}

// ---------------------------------------------------------------------
// math.*
// ---------------------------------------------------------------------

func TestMathAbs(t *testing.T) {
	spec, ok := Lookup("math.abs")
	require.True(t, ok)
	v, err := spec.Fn(newFakeContext(), map[string]eval.Value{"n": &eval.IntValue{V: -7}})
	require.NoError(t, err)
	assert.Equal(t, 7, v.(*eval.IntValue).V)
}

func TestMathMinMax(t *testing.T) {
	minSpec, ok := Lookup("math.min")
	require.True(t, ok)
	maxSpec, ok := Lookup("math.max")
	require.True(t, ok)
	args := map[string]eval.Value{"a": &eval.IntValue{V: 3}, "b": &eval.IntValue{V: 9}}

	minV, err := minSpec.Fn(newFakeContext(), args)
	require.NoError(t, err)
	assert.Equal(t, 3, minV.(*eval.IntValue).V)

	maxV, err := maxSpec.Fn(newFakeContext(), args)
	require.NoError(t, err)
	assert.Equal(t, 9, maxV.(*eval.IntValue).V)
}

// ---------------------------------------------------------------------
// assert / test.assert_equal
// ---------------------------------------------------------------------

func TestAssert_TrueSucceeds(t *testing.T) {
	spec, ok := Lookup("assert")
	require.True(t, ok)
	v, err := spec.Fn(newFakeContext(), map[string]eval.Value{"condition": &eval.BoolValue{V: true}})
	require.NoError(t, err)
	assert.Equal(t, "Unit", v.Kind())
}

func TestAssert_FalseFails(t *testing.T) {
	spec, ok := Lookup("assert")
	require.True(t, ok)
	_, err := spec.Fn(newFakeContext(), map[string]eval.Value{"condition": &eval.BoolValue{V: false}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Assertion failed")
}

func TestAssertEqual_EqualValuesPass(t *testing.T) {
	spec, ok := Lookup("test.assert_equal")
	require.True(t, ok)
	_, err := spec.Fn(newFakeContext(), map[string]eval.Value{
		"expected": &eval.IntValue{V: 5}, "actual": &eval.IntValue{V: 5},
	})
	require.NoError(t, err)
}

func TestAssertEqual_UnequalValuesFailWithDiff(t *testing.T) {
	spec, ok := Lookup("test.assert_equal")
	require.True(t, ok)
	_, err := spec.Fn(newFakeContext(), map[string]eval.Value{
		"expected": &eval.IntValue{V: 5}, "actual": &eval.IntValue{V: 6},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Assertion failed")
}

// ---------------------------------------------------------------------
// json.*
// ---------------------------------------------------------------------

func TestJSONEncodeDecode_RoundTrip(t *testing.T) {
	encodeSpec, ok := Lookup("json.encode")
	require.True(t, ok)
	decodeSpec, ok := Lookup("json.decode")
	require.True(t, ok)

	original := eval.NewConstructor("Point", []string{"x", "y"}, map[string]eval.Value{
		"x": &eval.IntValue{V: 1}, "y": &eval.IntValue{V: 2},
	})
	encoded, err := encodeSpec.Fn(newFakeContext(), map[string]eval.Value{"value": original})
	require.NoError(t, err)

	decoded, err := decodeSpec.Fn(newFakeContext(), map[string]eval.Value{"text": encoded})
	require.NoError(t, err)
	assert.True(t, eval.Equals(original, decoded))
}

func TestJSONDecode_InvalidTextFails(t *testing.T) {
	spec, ok := Lookup("json.decode")
	require.True(t, ok)
	_, err := spec.Fn(newFakeContext(), map[string]eval.Value{"text": &eval.StringValue{V: "{not json"}})
	require.Error(t, err)
}

// ---------------------------------------------------------------------
// Log.*
// ---------------------------------------------------------------------

func TestLogDebugAndTrace_RecordLevelAndPayload(t *testing.T) {
	ctx := newFakeContext()
	debugSpec, ok := Lookup("Log.debug")
	require.True(t, ok)
	traceSpec, ok := Lookup("Log.trace")
	require.True(t, ok)

	payload := &eval.IntValue{V: 42}
	_, err := debugSpec.Fn(ctx, map[string]eval.Value{"label": &eval.StringValue{V: "a"}, "payload": payload})
	require.NoError(t, err)
	_, err = traceSpec.Fn(ctx, map[string]eval.Value{"label": &eval.StringValue{V: "b"}, "payload": payload})
	require.NoError(t, err)

	require.Len(t, ctx.logs, 2)
	assert.Equal(t, "debug", ctx.logs[0].level)
	assert.Equal(t, "a", ctx.logs[0].label)
	assert.Equal(t, "trace", ctx.logs[1].level)
	assert.Equal(t, "b", ctx.logs[1].label)
}

// ---------------------------------------------------------------------
// Concurrent.*
// ---------------------------------------------------------------------

func TestConcurrentFlush_ReturnsDeliveryCount(t *testing.T) {
	ctx := newFakeContext()
	ctx.flushN = 3
	spec, ok := Lookup("Concurrent.flush")
	require.True(t, ok)
	v, err := spec.Fn(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, v.(*eval.IntValue).V)
}

func TestConcurrentStep_ReturnsWhetherOneRan(t *testing.T) {
	ctx := newFakeContext()
	ctx.stepRan = true
	spec, ok := Lookup("Concurrent.step")
	require.True(t, ok)
	v, err := spec.Fn(ctx, nil)
	require.NoError(t, err)
	assert.True(t, v.(*eval.BoolValue).V)
}

func TestConcurrentStop_TerminatesActor(t *testing.T) {
	ctx := newFakeContext()
	spec, ok := Lookup("Concurrent.stop")
	require.True(t, ok)
	ref := &eval.ActorRefValue{ID: 7, ActorName: "Worker"}
	v, err := spec.Fn(ctx, map[string]eval.Value{"actor": ref})
	require.NoError(t, err)
	assert.Equal(t, "Unit", v.Kind())
	assert.Same(t, ref, ctx.stopped)
}

func TestConcurrentStop_NonActorRefRejected(t *testing.T) {
	ctx := newFakeContext()
	spec, ok := Lookup("Concurrent.stop")
	require.True(t, ok)
	_, err := spec.Fn(ctx, map[string]eval.Value{"actor": &eval.IntValue{V: 1}})
	require.Error(t, err)
}

// ---------------------------------------------------------------------
// Registry shape
// ---------------------------------------------------------------------

func TestNames_IncludesEveryRegisteredBuiltin(t *testing.T) {
	names := Names()
	for _, want := range []string{
		"list.len", "list.map", "list.filter", "list.fold",
		"parallel_map", "parallel_filter", "parallel_fold", "parallel_for_each",
		"str.concat", "str.len", "str.slice", "str.at",
		"math.abs", "math.min", "math.max",
		"assert", "test.assert_equal",
		"json.encode", "json.decode",
		"Log.debug", "Log.trace",
		"Concurrent.flush", "Concurrent.step", "Concurrent.stop",
	} {
		assert.Contains(t, names, want)
	}
}
