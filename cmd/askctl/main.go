// Command askctl answers interview questions from the terminal and manages
// API tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"interview-assistant/internal/app"
)

// Swapped out in tests.
var (
	buildDeps  = app.Build
	loadConfig = app.LoadConfig
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "askctl",
		Short:         "Technical interview assistant CLI",
		Long:          "askctl answers technical interview questions as short numbered lists, renders them to PDF and mints API tokens.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAskCmd(), newTokenCmd(), newNormalizeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
