package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cappallo/aura/internal/aerr"
	"github.com/cappallo/aura/internal/ast"
	"github.com/cappallo/aura/internal/astio"
	"github.com/cappallo/aura/internal/config"
	"github.com/cappallo/aura/internal/eval"
	"github.com/cappallo/aura/internal/runtime"
)

// errExternalParserRequired is returned when --input=source is given: this
// module ships no surface parser (spec §1 scope), so source-text input
// produces this clear diagnostic instead of a hand-rolled parser.
var errExternalParserRequired = fmt.Errorf("external parser required: this build only reads already-built AST-JSON (pass --input=ast)")

// loadModules reads the primary module from path plus, for a richer
// multi-module run, any sibling "*.ast.json" files in the same directory
// (a convention this thin reader adopts since the full AST-JSON loader's
// import-resolution semantics are out of scope). The primary module's own
// file is never double-loaded.
func loadModules(path string) (primary *ast.Module, all []*ast.Module, err error) {
	if flagInput == "source" {
		return nil, nil, errExternalParserRequired
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read %q: %w", path, err)
	}
	primary, err = astio.DecodeModule(data)
	if err != nil {
		return nil, nil, err
	}
	all = []*ast.Module{primary}

	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return primary, all, nil
	}
	absPath, _ := filepath.Abs(path)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ast.json") {
			continue
		}
		siblingPath := filepath.Join(dir, entry.Name())
		if absSibling, _ := filepath.Abs(siblingPath); absSibling == absPath {
			continue
		}
		siblingData, err := os.ReadFile(siblingPath)
		if err != nil {
			continue
		}
		m, err := astio.DecodeModule(siblingData)
		if err != nil {
			continue
		}
		all = append(all, m)
	}
	return primary, all, nil
}

// buildRuntime assembles a Runtime from the file at path and applies the
// config overlay (if present) plus any --seed override.
func buildRuntime(path string) (*runtime.Runtime, error) {
	primary, modules, err := loadModules(path)
	if err != nil {
		return nil, err
	}
	rt, err := runtime.Assemble(modules, primary.Name.String())
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if cfg.SchedulerMode == "deterministic" {
		rt.SchedulerMode = runtime.Deterministic
	}
	seed := uint32(config.IntOr(cfg.Seed, 1))
	if flagSeed != 0 {
		seed = uint32(flagSeed)
	}
	rt.PropertyConfig.Seed = seed
	if cfg.PropertyIters != nil {
		rt.PropertyConfig.DefaultIterations = *cfg.PropertyIters
	}
	if cfg.ShrinkCap != nil {
		rt.PropertyConfig.ShrinkAttemptCap = *cfg.ShrinkCap
	}
	if cfg.GenAttemptCap != nil {
		rt.PropertyConfig.GenAttemptCap = *cfg.GenAttemptCap
	}

	if flagFormat == "json" {
		rt.OutputMode = runtime.JSONOutput
	}
	if cfg.OutputFormat == "json" && flagFormat == "" {
		rt.OutputMode = runtime.JSONOutput
	}
	return rt, nil
}

// parseCLIArgs translates JSON-literal argument strings into runtime
// values per §6: only numbers (truncated to integers), booleans, strings
// and arrays translate.
func parseCLIArgs(raw []string) ([]eval.Value, error) {
	out := make([]eval.Value, len(raw))
	for i, a := range raw {
		var tree interface{}
		if err := json.Unmarshal([]byte(a), &tree); err != nil {
			return nil, fmt.Errorf("argument %q is not a valid JSON literal: %w", a, err)
		}
		switch tree.(type) {
		case float64, bool, string, []interface{}:
			v, err := eval.FromJSON(tree)
			if err != nil {
				return nil, err
			}
			out[i] = v
		default:
			return nil, fmt.Errorf("argument %q must be a number, boolean, string or array", a)
		}
	}
	return out, nil
}

// reportErr renders err (as a structured aerr.Report when possible) and
// returns the process exit code it implies — always 1 for this CLI.
func reportErr(err error) int {
	rep, ok := aerr.AsReport(err)
	if !ok {
		rep = aerr.New("RT000", "internal error", err.Error(), nil)
	}
	if flagFormat == "json" {
		out := jsonResult{Status: "error", Errors: []*aerr.Report{rep}}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Fprintln(os.Stderr, red(rep.TextLine()))
	}
	return 1
}

// jsonResult is the top-level structured output object (spec §6).
type jsonResult struct {
	Status string         `json:"status"`
	Result interface{}    `json:"result,omitempty"`
	Errors []*aerr.Report `json:"errors,omitempty"`
	Logs   []logRecord    `json:"logs,omitempty"`
	Traces []traceRecord  `json:"traces,omitempty"`
}

type logRecord struct {
	Level   string      `json:"level"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type traceRecord struct {
	StepType    string      `json:"stepType"`
	Description string      `json:"description"`
	Value       interface{} `json:"value,omitempty"`
	Depth       int         `json:"depth"`
}

func logsToRecords(logs []runtime.LogEntry) []logRecord {
	out := make([]logRecord, len(logs))
	for i, l := range logs {
		var data interface{}
		if l.Payload != nil {
			data, _ = eval.ToJSON(l.Payload)
		}
		out[i] = logRecord{Level: l.Level, Message: l.Label, Data: data}
	}
	return out
}

func tracesToRecords(traces []runtime.TraceEntry) []traceRecord {
	out := make([]traceRecord, len(traces))
	for i, t := range traces {
		var val interface{}
		if t.Value != nil {
			val, _ = eval.ToJSON(t.Value)
		}
		out[i] = traceRecord{StepType: t.StepType, Description: t.Description, Value: val, Depth: t.Depth}
	}
	return out
}
