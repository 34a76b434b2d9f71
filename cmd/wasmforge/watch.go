// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"wasmforge-cli/internal/backend"
	"wasmforge-cli/internal/reconcile"
	"wasmforge-cli/internal/watch"

	"github.com/spf13/cobra"
)

// watchCmd rebuilds whenever crate sources change.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild whenever crate sources change",
	Long: `Watch the crate sources and rerun the build on change.

Changes are debounced so a burst of editor writes triggers a single
rebuild. The output directory and its backup slots are never watched;
the rebuild's own writes do not retrigger it. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		renderSuggestions(err)
		return err
	}
	logger := newLogger(verbose)

	ignoreGlob, _, err := resolveIgnoreGlob(cfg)
	if err != nil {
		renderSuggestions(err)
		return err
	}

	env, err := buildEnv(cfg)
	if err != nil {
		return err
	}

	if wp := backend.New(cfg); !wp.Available() {
		err := backendMissingError(cfg.Backend.Command)
		renderSuggestions(err)
		return err
	}

	rebuild := func(ctx context.Context, changed []string) error {
		logger.Info("rebuilding", "changed", len(changed))

		wp := backend.New(cfg)
		wp.Env = env

		r := reconcile.New(reconcile.Options{
			Config:     cfg,
			Backend:    wp,
			IgnoreGlob: ignoreGlob,
			Hooks:      newHookRunner(cfg, env),
			// A failed rebuild leaves stale slots behind; the next save
			// should retry the build rather than refuse, so the watch
			// loop always forces.
			Force:  true,
			Logger: logger,
		})
		if _, err := r.Run(ctx); err != nil {
			fmt.Printf("%s Rebuild failed: %v\n", ErrorStyle.Render("✗"), err)
			return nil
		}

		fmt.Printf("%s Rebuilt %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(cfg.OutputPath()))
		return nil
	}

	w, err := watch.New(watch.Config{
		BaseDir:  cfg.CrateDir,
		Patterns: cfg.Watch.Patterns,
		Ignore:   watch.OutputIgnores(cfg.OutputDir),
		Debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		OnChange: rebuild,
		Stderr:   os.Stderr,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s Watching %s for changes (Ctrl-C to stop)\n",
		SubtitleStyle.Render("·"), CmdStyle.Render(cfg.CrateDir))

	return w.Run(cmd.Context())
}
