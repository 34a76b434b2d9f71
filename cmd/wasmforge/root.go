// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for wasmforge.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"wasmforge-cli/internal/config"
	"wasmforge-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// crateDir overrides the crate directory (default: current directory)
	crateDir string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "wasmforge",
		Short: "A packaging orchestrator for wasm-pack output directories",
		Long: TitleStyle.Render("wasmforge") + SubtitleStyle.Render(" - A packaging orchestrator for wasm-pack output directories") + `

wasmforge wraps 'wasm-pack build' and repairs its output directory so
that hand-authored metadata survives repeated rebuilds: the npm manifest
and README are round-tripped unchanged across every build, and the
generated .gitignore is rewritten so packed tarballs stay untracked
while the managed files remain under version control.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'wasmforge build' from your crate directory
  2. Edit pkg/package.json or pkg/README.md by hand
  3. Rebuild at will - your edits survive

` + SubtitleStyle.Render("Examples:") + `
  wasmforge build           Rebuild the output directory
  wasmforge build --force   Rebuild, discarding stale backups
  wasmforge status          Inspect managed files and backup slots
  wasmforge watch           Rebuild on source changes
  wasmforge readme          Render the managed README in the terminal`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <crate>/wasmforge.yaml)")
	rootCmd.PersistentFlags().StringVar(&crateDir, "crate-dir", "", "crate directory containing Cargo.toml (default is the current directory)")

	// Add subcommands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(readmeCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadConfig resolves the project configuration from the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFilePath: cfgFile,
		CrateDir:       crateDir,
	})
	if err != nil {
		return nil, err
	}
	if !verbose && cfg.UI.Verbose {
		verbose = true
	}
	return cfg, nil
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// render their suggestions; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
