// Command nhdnet is a thin invocation surface over the library: the CLI
// itself is not core scope, but the library needs a real entry point
// beyond tests (spec.md §1). Subcommands return their errors through
// RunE; main prints the error to stderr and exits with status 1.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nhdnet",
	Short: "Aquatic network connectivity analysis over NHD flowline data",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
