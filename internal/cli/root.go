// Package cli implements the Spikewise command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "spikewise",
	Short: "Spikewise — sugar habit tracking backend",
	Long: `Spikewise is the backend for the sugar habit tracker.
It scores consumption events, keeps streaks and badges, and serves
insights over a device-keyed HTTP API.`,
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
