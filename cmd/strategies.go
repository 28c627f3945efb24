package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/emsim/core/strategy"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the available dispatch strategies",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range strategy.Names() {
			info := strategy.Describe(name)
			fmt.Printf("%-16s  %-10s  %s (%s)\n", name, info.Complexity, info.Description, info.SuitedFor)
		}
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
