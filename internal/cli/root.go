// Package cli implements the berth command-line interface using Cobra.
// Each subcommand maps to one tracker operation (create, ps, kill, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "berth",
	Short: "berth — cluster task-state tracker",
	Long: `berth tracks every task a cluster scheduler has in flight:
where it runs, its lifecycle state and its health, backed by a
persistent store that survives restarts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
