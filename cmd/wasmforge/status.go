// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wasmforge-cli/internal/config"
	"wasmforge-cli/internal/reconcile"

	"github.com/spf13/cobra"
)

// statusCmd inspects the output directory without mutating anything.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show managed files, backup slots, and ignore-file conformance",
	Long: `Inspect the output directory without changing it.

Reports which managed files are present, whether stale backup slots from
a previous failed build exist, and whether the generated .gitignore
carries the expected content.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		renderSuggestions(err)
		return err
	}

	outDir := cfg.OutputPath()
	fmt.Printf("%s %s\n", SubtitleStyle.Render("Output directory:"), CmdStyle.Render(outDir))

	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		fmt.Println("  not built yet")
	} else {
		for _, pattern := range cfg.ManagedFiles {
			if _, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(pattern))); err == nil {
				fmt.Printf("  %s %s (managed)\n", SuccessStyle.Render("✓"), pattern)
			} else {
				fmt.Printf("  %s %s (managed, absent)\n", SubtitleStyle.Render("·"), pattern)
			}
		}
		printIgnoreStatus(cfg)
	}

	slots, err := reconcile.ListSlots(outDir)
	if err != nil {
		return err
	}
	if len(slots) > 0 {
		fmt.Println()
		fmt.Println(WarningStyle.Render("Stale backup slots from a previous failed build:"))
		for _, slot := range slots {
			fmt.Printf("  %s\n", filepath.Join(reconcile.SlotDir(outDir), slot))
		}
		fmt.Println(SubtitleStyle.Render("Recover with 'wasmforge clean --restore' or discard with 'wasmforge clean --discard'."))
	}

	return nil
}

// printIgnoreStatus reports whether the generated ignore-file holds the
// expected content.
func printIgnoreStatus(cfg *config.Config) {
	path := filepath.Join(cfg.OutputPath(), cfg.IgnoreFile)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("  %s %s (missing)\n", WarningStyle.Render("!"), cfg.IgnoreFile)
		return
	}

	want, _, err := resolveIgnoreGlob(cfg)
	if err != nil {
		fmt.Printf("  %s %s (cannot determine expected content)\n", SubtitleStyle.Render("·"), cfg.IgnoreFile)
		return
	}

	if strings.TrimSpace(string(data)) == want {
		fmt.Printf("  %s %s (%s)\n", SuccessStyle.Render("✓"), cfg.IgnoreFile, want)
	} else {
		fmt.Printf("  %s %s holds %q, next build rewrites it to %q\n",
			WarningStyle.Render("!"), cfg.IgnoreFile, strings.TrimSpace(string(data)), want)
	}
}
