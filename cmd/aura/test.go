package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cappallo/aura/internal/aerr"
	"github.com/cappallo/aura/internal/eval"
	"github.com/cappallo/aura/internal/runtime"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
)

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <file>",
		Short: "Run every test and property declared in the primary module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doTest(args[0])
		},
	}
}

type testOutcome struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"` // "test" | "property"
	Passed         bool   `json:"passed"`
	Message        string `json:"message,omitempty"`
	Counterexample interface{} `json:"counterexample,omitempty"`
}

func doTest(file string) error {
	rt, err := buildRuntime(file)
	if err != nil {
		exitCode = reportErr(err)
		return nil
	}

	ev := runtime.NewEvaluator(rt)
	testResults := ev.RunTests()
	propResults := ev.RunProperties()

	outcomes := make([]testOutcome, 0, len(testResults)+len(propResults))
	allPassed := true
	for _, tr := range testResults {
		o := testOutcome{Name: tr.Name, Kind: "test", Passed: tr.Passed}
		if !tr.Passed {
			allPassed = false
			o.Message = tr.Err.Error()
		}
		outcomes = append(outcomes, o)
	}
	for i, pr := range propResults {
		name := rt.Properties[i].Name
		o := testOutcome{Name: name, Kind: "property", Passed: pr.Passed}
		if !pr.Passed {
			allPassed = false
			o.Message = pr.FailureMessage
			if pr.GenerationFailure {
				o.Message = "generation failure: " + o.Message
			}
			if pr.Counterexample != nil {
				cx := make(map[string]interface{}, len(pr.Counterexample))
				for k, v := range pr.Counterexample {
					cx[k], _ = eval.ToJSON(v)
				}
				o.Counterexample = cx
			}
		}
		outcomes = append(outcomes, o)
	}

	if flagFormat == "json" {
		printJSONTestResults(outcomes, allPassed, rt)
	} else {
		printTextTestResults(outcomes)
	}

	if allPassed {
		exitCode = 0
	} else {
		exitCode = 1
	}
	return nil
}

func printTextTestResults(outcomes []testOutcome) {
	for _, o := range outcomes {
		if o.Passed {
			fmt.Printf("%s %s %s\n", green("PASS"), o.Kind, o.Name)
			continue
		}
		fmt.Printf("%s %s %s: %s\n", red("FAIL"), o.Kind, o.Name, o.Message)
		if o.Counterexample != nil {
			cx, _ := json.Marshal(o.Counterexample)
			fmt.Printf("       counterexample: %s\n", string(cx))
		}
	}
}

func printJSONTestResults(outcomes []testOutcome, allPassed bool, rt *runtime.Runtime) {
	status := "success"
	var errs []*aerr.Report
	if !allPassed {
		status = "error"
		for _, o := range outcomes {
			if !o.Passed {
				code := "RT005"
				if o.Kind == "property" {
					code = aerr.PROP001
				}
				errs = append(errs, aerr.New(code, "test failure", o.Name+": "+o.Message, nil))
			}
		}
	}
	out := struct {
		Status  string         `json:"status"`
		Results []testOutcome  `json:"result"`
		Errors  []*aerr.Report `json:"errors,omitempty"`
		Logs    []logRecord    `json:"logs,omitempty"`
	}{Status: status, Results: outcomes, Errors: errs, Logs: logsToRecords(rt.Logs)}
	data, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(data))
}
