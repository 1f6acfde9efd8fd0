package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wayfind",
		Short: "Inspect and exercise wayfind route tables",
		Long: `Wayfind is a client-side navigation dispatcher for Go.

This tool loads a route manifest (JSON) and lets you inspect the
resulting route table without running an application:

  • List routes in scan order, with priorities
  • Match a path against the table and show extracted parameters
  • Generate a URL from a named route`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		routesCmd(),
		matchCmd(),
		urlCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
