// Package cli wires the printwatch commands.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	outputFmt string
)

// NewRootCommand creates the root command.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "printwatch",
		Short: "Printer log monitoring and alerting",
		Long: `PrintWatch polls a 3D-printer controller's log stream, groups recurring
messages into deduplicated entries, and tracks warning/error conditions as
lifecycle-managed alerts with an HTTP API for UIs.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "output format (text, json)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newJobsCommand())
	rootCmd.AddCommand(newEventsCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version == "" || version == "dev" {
				version = "development"
			}
			if commit == "" || commit == "none" {
				commit = "local-build"
			}
			if date == "" || date == "unknown" {
				date = "local-build"
			}
			fmt.Printf("PrintWatch %s (%s) built on %s\n", version, commit, date)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func isVerbose() bool {
	return verbose
}

func logLevel(configured string) string {
	if verbose {
		return "debug"
	}
	return configured
}
