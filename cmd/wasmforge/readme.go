// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"wasmforge-cli/internal/issue"
	"wasmforge-cli/internal/render"

	"github.com/spf13/cobra"
)

var (
	readmeWidth int

	// readmeCmd renders the managed README in the terminal.
	readmeCmd = &cobra.Command{
		Use:   "readme",
		Short: "Render the managed README.md in the terminal",
		Long: `Render the output directory's README.md in the terminal.

Convenient for checking the hand-authored docs that wasmforge preserves
across rebuilds, styled the way npm consumers will roughly see them.`,
		Args: cobra.NoArgs,
		RunE: runReadme,
	}
)

func init() {
	readmeCmd.Flags().IntVar(&readmeWidth, "width", 100, "word wrap width (0 disables wrapping)")
}

func runReadme(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		renderSuggestions(err)
		return err
	}

	path := filepath.Join(cfg.OutputPath(), "README.md")
	data, err := os.ReadFile(path)
	if err != nil {
		readErr := issue.NewErrorContext().
			WithOperation("read README").
			WithResource(path).
			WithSuggestion("Run 'wasmforge build' first").
			Wrap(err).
			BuildError()
		renderSuggestions(readErr)
		return readErr
	}

	out, err := render.Markdown(string(data), render.Options{Width: readmeWidth})
	if err != nil {
		return issue.WrapWithContext(err, "render README", path)
	}

	fmt.Print(out)
	return nil
}
