package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/steveyegge/optiq/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the optimizer/AHI tunables spec §6 names",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved value of every known config key",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := config.Snapshot()

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		keys := make([]string, 0, len(snap))
		for k := range snap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "%-32s %v\n", k, snap[k])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Override a config key for this process only",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Set(args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
