// Command optiqctl is a small operator CLI around the optimizer's cost
// model and configuration: what-if cost estimates for a hypothetical
// table, and inspection of the tunables spec §6 names.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/optiq/internal/config"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:           "optiqctl",
	Short:         "Inspect and probe the optiq access-path cost model",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON")
	rootCmd.AddCommand(costCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(ahiCmd)

	if err := config.Initialize(); err != nil {
		fmt.Fprintln(os.Stderr, "optiqctl: "+err.Error())
		os.Exit(1)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}
