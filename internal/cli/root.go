// Package cli defines the command tree and binds flags onto the runtime
// configuration. Commands stay thin: they validate, wire up the logger, and
// hand off to the internal packages.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stixforge/stixforge/internal/config"
)

// Build metadata, injected via main.
var (
	buildVersion = "dev"
	buildCommit  = "unknown"
)

// Execute runs the command tree and returns the process exit code.
func Execute(version, commit string) int {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "stixforge",
		Short:         "Batch-convert threat intel text reports into STIX bundles",
		Long:          "stixforge normalizes directories of threat intel text reports and\ndrives the txt2stix engine across files, modes, and extraction types.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newBatchCmd(),
		newNormalizeCmd(),
		newCatalogCmd(),
		newCheckCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stixforge %s (%s)\n", buildVersion, buildCommit)
		},
	}
}

// addCommonFlags binds the display and logging flags shared by commands that
// produce output through the logger.
func addCommonFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "verbose output")
	f.StringVar((*string)(&cfg.ColorMode), "color", string(cfg.ColorMode), "color output: auto, always, never")
	f.StringVar(&cfg.LogFile, "log-file", "", "append plain-text log to this file")
}
