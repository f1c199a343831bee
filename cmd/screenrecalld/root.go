package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "screenrecalld",
	Short: "screenrecalld - a local screen-memory evidence engine",
	Long: `screenrecalld captures the screen on an activity-aware cadence,
normalizes and extracts derived evidence from each surviving frame, and
answers natural-language queries against that evidence over a loopback
HTTP API.

Every write is append-only and hash-chained; nothing is deleted or
rewritten in place, and the query path never touches raw media or
schedules new extraction.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
