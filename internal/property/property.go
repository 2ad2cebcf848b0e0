// Package property implements the property-testing engine: seeded random
// generation of typed parameters (optionally constrained by a predicate,
// retried up to a cap), running the property body, and — on a
// counterexample — type-directed shrinking toward a minimal failing
// input.
package property

import (
	"fmt"

	"github.com/cappallo/aura/internal/ast"
	"github.com/cappallo/aura/internal/eval"
)

// DefaultIterations is used when a property declares no explicit count.
const DefaultIterations = 50

// DefaultGenAttemptCap bounds retries of a predicate-constrained
// generation before it is reported as a generation failure.
const DefaultGenAttemptCap = 100

// DefaultShrinkAttemptCap bounds the total number of shrink candidates
// tried while minimizing a counterexample.
const DefaultShrinkAttemptCap = 100

// Runner is the callback surface the engine needs from the evaluator: run
// the property body with a fixed parameter binding, and evaluate one
// parameter's predicate given the parameters generated so far.
type Runner interface {
	RunBody(body *ast.Block, params map[string]eval.Value) error
	EvalPredicate(pred ast.Expr, params map[string]eval.Value) (bool, error)
}

// Result reports the outcome of running one property declaration.
type Result struct {
	Passed            bool
	Iterations        int
	FailureMessage    string
	Counterexample    map[string]eval.Value
	GenerationFailure bool
}

// Config bundles the engine's tunable caps so callers (the CLI, tests)
// can override them without changing RunProperty's signature.
type Config struct {
	DefaultIterations int
	GenAttemptCap     int
	ShrinkAttemptCap  int
	Seed              uint32
}

// DefaultConfig returns the spec-mandated defaults.
func DefaultConfig(seed uint32) Config {
	return Config{
		DefaultIterations: DefaultIterations,
		GenAttemptCap:     DefaultGenAttemptCap,
		ShrinkAttemptCap:  DefaultShrinkAttemptCap,
		Seed:              seed,
	}
}

// RunProperty drives N trials of decl, generating parameters with rng,
// running the body through runner, and shrinking the first
// counterexample found.
func RunProperty(decl *ast.PropertyDecl, types eval.TypeIndex, runner Runner, cfg Config) *Result {
	n := decl.Iterations
	if n == 0 {
		n = cfg.DefaultIterations
	}
	rng := NewRNG(cfg.Seed)

	for iter := 0; iter < n; iter++ {
		params := make(map[string]eval.Value, len(decl.Params))
		for _, p := range decl.Params {
			v, failMsg, failed := generateOne(p, types, rng, params, runner, cfg.GenAttemptCap)
			if failed {
				return &Result{GenerationFailure: true, FailureMessage: failMsg, Iterations: iter}
			}
			params[p.Name] = v
		}

		if err := runner.RunBody(decl.Body, params); err != nil {
			shrunk, msg := shrinkParams(decl, runner, params, err.Error(), cfg.ShrinkAttemptCap)
			return &Result{Iterations: iter + 1, FailureMessage: msg, Counterexample: shrunk}
		}
	}
	return &Result{Passed: true, Iterations: n}
}

func generateOne(p ast.PropertyParam, types eval.TypeIndex, rng *RNG, soFar map[string]eval.Value, runner Runner, cap int) (eval.Value, string, bool) {
	var v eval.Value
	for attempt := 0; ; attempt++ {
		v = Generate(p.Type, types, rng, 0)
		if p.Predicate == nil {
			return v, "", false
		}
		trial := withParam(soFar, p.Name, v)
		ok, err := runner.EvalPredicate(p.Predicate, trial)
		if err == nil && ok {
			return v, "", false
		}
		if attempt+1 >= cap {
			return nil, fmt.Sprintf("generation failed for parameter %q after %d attempts", p.Name, cap), true
		}
	}
}

func shrinkParams(decl *ast.PropertyDecl, runner Runner, failing map[string]eval.Value, msg string, cap int) (map[string]eval.Value, string) {
	current := cloneParams(failing)
	attempts := 0

	for {
		improved := false
		for _, p := range decl.Params {
			for _, cand := range candidates(current[p.Name]) {
				if attempts >= cap {
					return current, msg
				}
				attempts++

				trial := withParam(current, p.Name, cand)
				if p.Predicate != nil {
					ok, err := runner.EvalPredicate(p.Predicate, trial)
					if err != nil || !ok {
						continue
					}
				}
				if rerr := runner.RunBody(decl.Body, trial); rerr != nil {
					current = trial
					msg = rerr.Error()
					improved = true
					break
				}
			}
			if improved {
				break
			}
		}
		if !improved {
			return current, msg
		}
	}
}

func cloneParams(m map[string]eval.Value) map[string]eval.Value {
	out := make(map[string]eval.Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func withParam(m map[string]eval.Value, name string, v eval.Value) map[string]eval.Value {
	out := cloneParams(m)
	out[name] = v
	return out
}
