// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"wasmforge-cli/internal/backend"
	"wasmforge-cli/internal/config"
	"wasmforge-cli/internal/crate"
	"wasmforge-cli/internal/envfile"
	"wasmforge-cli/internal/hook"
	"wasmforge-cli/internal/issue"
	"wasmforge-cli/internal/reconcile"

	"github.com/spf13/cobra"
)

var (
	buildForce    bool
	buildTarget   string
	buildOutDir   string
	buildFeatures []string

	// buildCmd runs one full reconciliation: preserve, compile, fix, restore.
	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Rebuild the output directory, keeping hand-authored files intact",
		Long: `Rebuild the WASM package output directory.

Managed files (by default package.json and README.md) are preserved in
backup slots before wasm-pack replaces the directory, and moved back
afterwards, so hand-authored content survives byte for byte. The
generated .gitignore is rewritten with a crate-prefix glob so packed
tarballs stay untracked.

If wasm-pack fails, the backup slots are left on disk as recovery
material; a later build refuses to overwrite them unless --force is
given (see 'wasmforge clean' for explicit recovery).`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "overwrite stale backup slots from a previous failed run")
	buildCmd.Flags().StringVar(&buildTarget, "target", "", "override the build target (web, bundler, nodejs, deno, no-modules)")
	buildCmd.Flags().StringVar(&buildOutDir, "out-dir", "", "override the output directory")
	buildCmd.Flags().StringSliceVar(&buildFeatures, "features", nil, "override the cargo features")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		renderSuggestions(err)
		return err
	}
	applyBuildOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(verbose)

	ignoreGlob, meta, err := resolveIgnoreGlob(cfg)
	if err != nil {
		renderSuggestions(err)
		return err
	}

	env, err := buildEnv(cfg)
	if err != nil {
		return err
	}

	wp := backend.New(cfg)
	wp.Env = env

	if !wp.Available() {
		err := backendMissingError(cfg.Backend.Command)
		renderSuggestions(err)
		return err
	}

	r := reconcile.New(reconcile.Options{
		Config:     cfg,
		Backend:    wp,
		IgnoreGlob: ignoreGlob,
		Hooks:      newHookRunner(cfg, env),
		Force:      buildForce,
		Logger:     logger,
	})

	report, err := r.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, reconcile.ErrStaleBackup) {
			renderSuggestions(issue.NewErrorContext().
				WithOperation("start build").
				WithSuggestion("Run 'wasmforge clean --restore' to put the backed-up files back").
				WithSuggestion("Run 'wasmforge clean --discard' to delete them").
				WithSuggestion("Or pass --force to overwrite them").
				Wrap(err).
				Build())
			return err
		}
		var backendErr *reconcile.BackendFailedError
		if errors.As(err, &backendErr) {
			code := backendErr.ExitCode
			if code == 0 {
				code = 1
			}
			return &ExitError{Code: code, Err: err}
		}
		return err
	}

	printBuildSummary(cfg, meta, report)
	return nil
}

// applyBuildOverrides layers the build command's flags over the loaded
// configuration.
func applyBuildOverrides(cfg *config.Config) {
	if buildTarget != "" {
		cfg.Backend.Target = config.Target(buildTarget)
	}
	if buildOutDir != "" {
		cfg.OutputDir = buildOutDir
	}
	if buildFeatures != nil {
		cfg.Backend.Features = buildFeatures
	}
}

// resolveIgnoreGlob picks the content for the generated ignore-file: an
// explicitly configured glob wins, otherwise it is derived from the crate
// name in Cargo.toml ("<name>-*").
func resolveIgnoreGlob(cfg *config.Config) (string, *crate.Metadata, error) {
	meta, metaErr := crate.Load(cfg.CrateDir)

	if cfg.IgnoreGlob != "" {
		return cfg.IgnoreGlob, meta, nil
	}
	if metaErr != nil {
		return "", nil, issue.NewErrorContext().
			WithOperation("derive ignore glob").
			WithResource(filepath.Join(cfg.CrateDir, crate.ManifestName)).
			WithSuggestion("Run from the crate root, or pass --crate-dir").
			WithSuggestion("Or set ignore_glob in wasmforge.yaml").
			Wrap(metaErr).
			BuildError()
	}
	return meta.IgnoreGlob(), meta, nil
}

// backendMissingError reports an absent backend binary before any pipeline
// step touches the output directory.
func backendMissingError(command string) error {
	return issue.NewErrorContext().
		WithOperation("locate build backend").
		WithResource(command).
		WithSuggestion("Install wasm-pack: cargo install wasm-pack").
		WithSuggestion("Or point backend.command in wasmforge.yaml at the binary").
		BuildError()
}

// buildEnv merges the configured dotenv files over the parent environment
// for the backend and hooks.
func buildEnv(cfg *config.Config) ([]string, error) {
	if len(cfg.EnvFiles) == 0 {
		return nil, nil
	}

	extra := map[string]string{}
	if err := envfile.LoadAll(extra, cfg.EnvFiles, cfg.CrateDir); err != nil {
		return nil, err
	}
	return append(os.Environ(), envfile.ToSlice(extra)...), nil
}

// newHookRunner wires the hook interpreter, or returns nil when no hooks
// are configured.
func newHookRunner(cfg *config.Config, env []string) *hook.Runner {
	if len(cfg.Hooks.Pre) == 0 && len(cfg.Hooks.Post) == 0 {
		return nil
	}
	if env == nil {
		env = os.Environ()
	}
	return &hook.Runner{
		Dir:    cfg.CrateDir,
		Env:    env,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// printBuildSummary confirms the output location and suggests next steps.
// Informational only.
func printBuildSummary(cfg *config.Config, meta *crate.Metadata, report *reconcile.Report) {
	name := cfg.OutputDir
	if meta != nil {
		name = meta.String()
	}
	fmt.Printf("%s Built %s into %s\n", SuccessStyle.Render("✓"), name, CmdStyle.Render(cfg.OutputPath()))

	if len(report.Restored) > 0 {
		fmt.Printf("  kept %d managed file(s): %v\n", len(report.Restored), report.Restored)
	}

	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	switch cfg.Backend.Target {
	case config.TargetNodeJS:
		fmt.Println("  " + CmdStyle.Render(fmt.Sprintf("node -e \"require('./%s')\"", cfg.OutputDir)))
	default:
		fmt.Println("  " + CmdStyle.Render("python3 -m http.server") + SubtitleStyle.Render("  # then import the module from a page"))
	}
	fmt.Println("  " + CmdStyle.Render(fmt.Sprintf("npm pack ./%s", cfg.OutputDir)) + SubtitleStyle.Render("  # tarballs are already git-ignored"))
}

// renderSuggestions prints an ActionableError's suggestions to stderr so
// they are not lost when only err.Error() reaches the terminal.
func renderSuggestions(err error) {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && len(ae.Suggestions) > 0 {
		fmt.Fprintln(os.Stderr, WarningStyle.Render(formatErrorForDisplay(err, verbose)))
	}
}
