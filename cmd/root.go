package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "emsim",
	Short: "Microgrid energy-dispatch simulator",
	Long: `emsim simulates and compares energy-dispatch strategies for a
microgrid of a solar generator, a battery and a grid connection.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
