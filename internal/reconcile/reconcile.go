// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"wasmforge-cli/internal/backend"
	"wasmforge-cli/internal/config"
	"wasmforge-cli/internal/hook"
	"wasmforge-cli/internal/issue"
)

// Step names, in pipeline order. Preserve must complete before the backend
// runs, the ignore-file fix must follow the backend, and restore is last so
// managed content always reflects the pre-run version.
const (
	StepHooksPre     StepName = "pre-hooks"
	StepCheckBackups StepName = "check-backups"
	StepPreserve     StepName = "preserve"
	StepBackend      StepName = "backend"
	StepFixIgnore    StepName = "fix-ignore"
	StepRestore      StepName = "restore"
	StepHooksPost    StepName = "post-hooks"
)

type (
	// StepName identifies one stage of the reconciliation pipeline.
	StepName string

	// StepResult records the outcome of one executed step.
	StepResult struct {
		Step StepName
		Err  error
	}

	// Backend invokes the compiler that repopulates the output directory.
	Backend interface {
		Invoke(ctx context.Context) *backend.Result
	}

	// Options configures a Reconciler.
	Options struct {
		// Config is the resolved project configuration (required).
		Config *config.Config
		// Backend runs the compiler (required).
		Backend Backend
		// IgnoreGlob is the content written to the generated ignore-file,
		// without trailing newline.
		IgnoreGlob string
		// Hooks runs pre/post snippets. Nil disables hooks.
		Hooks *hook.Runner
		// Force overwrites stale backup slots from a prior failed run
		// instead of refusing to proceed.
		Force bool
		// Logger receives step-level progress. Nil discards.
		Logger *log.Logger
	}

	// Reconciler round-trips managed files across one backend invocation.
	Reconciler struct {
		cfg        *config.Config
		backend    Backend
		hooks      *hook.Runner
		ignoreGlob string
		force      bool
		logger     *log.Logger
	}

	// Report describes a reconciliation run. Steps holds every step that
	// executed, in order; on failure the last entry carries the error.
	Report struct {
		Steps []StepResult
		// Preserved are managed files copied to backup slots, relative to
		// the output directory.
		Preserved []string
		// Restored are managed files moved back after the build.
		Restored []string
		// BackendExitCode is the compiler's exit code.
		BackendExitCode int
		// IgnorePath is the rewritten generated-only file.
		IgnorePath string
	}
)

// New creates a Reconciler from options.
func New(opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reconciler{
		cfg:        opts.Config,
		backend:    opts.Backend,
		hooks:      opts.Hooks,
		ignoreGlob: opts.IgnoreGlob,
		force:      opts.Force,
		logger:     logger,
	}
}

// Run executes the pipeline. The returned Report is valid even on failure
// and records which steps ran. A backend failure aborts before fix-ignore
// and restore, leaving backup slots on disk as recovery material.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	steps := []struct {
		name StepName
		run  func(ctx context.Context, report *Report) error
	}{
		{StepHooksPre, r.runPreHooks},
		{StepCheckBackups, r.checkBackups},
		{StepPreserve, r.preserve},
		{StepBackend, r.invokeBackend},
		{StepFixIgnore, r.fixIgnore},
		{StepRestore, r.restore},
		{StepHooksPost, r.runPostHooks},
	}

	for _, step := range steps {
		r.logger.Debug("running step", "step", step.name)
		err := step.run(ctx, report)
		report.Steps = append(report.Steps, StepResult{Step: step.name, Err: err})
		if err != nil {
			r.logger.Error("step failed", "step", step.name, "err", err)
			return report, err
		}
	}

	return report, nil
}

func (r *Reconciler) runPreHooks(ctx context.Context, _ *Report) error {
	if r.hooks == nil {
		return nil
	}
	return r.hooks.RunAll(ctx, "pre", r.cfg.Hooks.Pre)
}

// checkBackups enforces the stale-slot policy: slots left by a prior failed
// run block a new run unless forced, so recovery data is never silently
// overwritten.
func (r *Reconciler) checkBackups(_ context.Context, _ *Report) error {
	outDir := r.cfg.OutputPath()

	stale, err := HasSlots(outDir)
	if err != nil {
		return err
	}
	if !stale {
		return nil
	}

	if !r.force {
		return &StaleBackupError{SlotDir: SlotDir(outDir)}
	}

	r.logger.Warn("overwriting stale backup slots", "dir", SlotDir(outDir))
	if _, err := DiscardSlots(outDir); err != nil {
		return err
	}
	return nil
}

func (r *Reconciler) preserve(_ context.Context, report *Report) error {
	outDir := r.cfg.OutputPath()

	files, err := matchManaged(outDir, r.cfg.ManagedFiles)
	if err != nil {
		return err
	}
	if err := preserveAll(outDir, files); err != nil {
		return err
	}

	report.Preserved = files
	for _, f := range files {
		r.logger.Debug("preserved managed file", "file", f)
	}
	return nil
}

func (r *Reconciler) invokeBackend(ctx context.Context, report *Report) error {
	res := r.backend.Invoke(ctx)
	report.BackendExitCode = res.ExitCode
	if !res.Success() {
		return &BackendFailedError{ExitCode: res.ExitCode, Cause: res.Error}
	}
	return nil
}

// fixIgnore unconditionally replaces the generated ignore-file. The
// backend's default ("*") would keep the whole output directory out of
// version control; the prefix glob only excludes packed tarballs.
func (r *Reconciler) fixIgnore(_ context.Context, report *Report) error {
	path := filepath.Join(r.cfg.OutputPath(), r.cfg.IgnoreFile)

	if err := os.WriteFile(path, []byte(r.ignoreGlob+"\n"), 0o644); err != nil {
		return issue.WrapWithContext(err, "rewrite ignore file", path)
	}

	report.IgnorePath = path
	return nil
}

func (r *Reconciler) restore(_ context.Context, report *Report) error {
	restored, err := RestoreSlots(r.cfg.OutputPath())
	if err != nil {
		return err
	}

	report.Restored = restored
	for _, f := range restored {
		r.logger.Debug("restored managed file", "file", f)
	}
	return nil
}

func (r *Reconciler) runPostHooks(ctx context.Context, _ *Report) error {
	if r.hooks == nil {
		return nil
	}
	return r.hooks.RunAll(ctx, "post", r.cfg.Hooks.Post)
}
