package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cappallo/aura/internal/aerr"
)

// notAvailable reports the structured "not available in this build" error
// for the two commands (check, format) whose real implementation is an
// external collaborator (spec §1/§6): the type checker and the formatter.
// This module declares no interface for either, so both commands always
// return this error.
func notAvailable(component string) error {
	return aerr.Wrap(aerr.New("EXT001", "external component unavailable",
		component+" is not available in this build: this module ships the execution core only", nil).
		WithHint("wire in a concrete " + component + " implementation to enable this command"))
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Type-check a file (requires an external type checker)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportUnavailable("type checker")
		},
	}
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <file>",
		Short: "Pretty-print a file (requires an external formatter)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportUnavailable("formatter")
		},
	}
}

func reportUnavailable(component string) error {
	err := notAvailable(component)
	if flagFormat == "json" {
		rep, _ := aerr.AsReport(err)
		out := jsonResult{Status: "error", Errors: []*aerr.Report{rep}}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Fprintln(os.Stderr, red(err.Error()))
	}
	exitCode = 1
	return nil
}
