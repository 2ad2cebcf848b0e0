// Command aura is the execution-core CLI: run/test/check/explain/format
// over an already-built module AST, grounded on the teacher's
// cmd/ailang flag-driven main but promoted to github.com/spf13/cobra
// subcommands (the shape three other pack repos use for exactly this
// kind of multi-command CLI).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is set by ldflags at build time.
var Version = "dev"

var (
	flagFormat string // "text" | "json"
	flagInput  string // "source" | "ast"
	flagConfig string
	flagSeed   int

	red = color.New(color.FgRed).SprintFunc()

	// exitCode lets a subcommand report a non-zero process exit (test
	// failure, runtime error, CLI misuse — spec §6) without invoking
	// os.Exit itself, so deferred cleanup in cobra's Execute still runs.
	exitCode = 0
)

func main() {
	root := &cobra.Command{
		Use:     "aura",
		Short:   "Execution core for the Aura language: run, test, check, explain, format",
		Version: Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagFormat, "format", "text", `output format: "text" or "json"`)
	root.PersistentFlags().StringVar(&flagInput, "input", "ast", `input kind: "source" or "ast"`)
	root.PersistentFlags().StringVar(&flagConfig, "config", "aura.config.yaml", "path to an optional YAML config overlay")
	root.PersistentFlags().IntVar(&flagSeed, "seed", 0, "override the property engine / RNG seed")
	root.PersistentFlags().Lookup("seed").DefValue = "from config"

	root.AddCommand(newRunCmd())
	root.AddCommand(newTestCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newExplainCmd())
	root.AddCommand(newFormatCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
