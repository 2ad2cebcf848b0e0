package main

import (
	"encoding/json"
	"fmt"

	"github.com/cappallo/aura/internal/eval"
	"github.com/cappallo/aura/internal/runtime"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file> <module.fn> [args...]",
		Short: "Call a named function with literal JSON arguments",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRun(args[0], args[1], args[2:], false)
		},
	}
}

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <file> <module.fn> [args...]",
		Short: "Like run, but with tracing enabled, emitting per-step records",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRun(args[0], args[1], args[2:], true)
		},
	}
}

func doRun(file, fn string, rawArgs []string, trace bool) error {
	rt, err := buildRuntime(file)
	if err != nil {
		exitCode = reportErr(err)
		return nil
	}
	rt.Tracing = trace

	argVals, err := parseCLIArgs(rawArgs)
	if err != nil {
		exitCode = reportErr(err)
		return nil
	}

	ev := runtime.NewEvaluator(rt)
	result, err := ev.CallFunction(fn, argVals)
	if err != nil {
		exitCode = reportErr(err)
		return nil
	}

	if flagFormat == "json" {
		resJSON, _ := eval.ToJSON(result)
		out := jsonResult{
			Status: "success",
			Result: resJSON,
			Logs:   logsToRecords(rt.Logs),
			Traces: tracesToRecords(rt.Traces),
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(result.String())
	if trace {
		for _, t := range rt.Traces {
			fmt.Printf("  [%s] %s%s\n", t.StepType, t.Description, traceValueSuffix(t))
		}
	}
	exitCode = 0
	return nil
}

func traceValueSuffix(t runtime.TraceEntry) string {
	if t.Value == nil {
		return ""
	}
	return " = " + t.Value.String()
}
