// SPDX-License-Identifier: MPL-2.0

package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"wasmforge-cli/internal/config"
)

// WasmPack invokes wasm-pack to cross-compile the crate into a
// distributable WASM module.
type WasmPack struct {
	// Command is the wasm-pack binary name or path.
	Command string
	// Target is the build target (--target).
	Target config.Target
	// Features are cargo features forwarded after "--".
	Features []string
	// ExtraArgs are appended after the fixed wasm-pack arguments.
	ExtraArgs []string

	// CrateDir is the working directory for the invocation.
	CrateDir string
	// OutDir is the output directory (--out-dir), relative to CrateDir.
	OutDir string

	// Env is the full process environment (KEY=VALUE). Nil inherits the
	// parent environment.
	Env []string

	// Stdout and Stderr receive the backend's streams. Nil values default
	// to the parent process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// New builds a WasmPack invoker from configuration.
func New(cfg *config.Config) *WasmPack {
	return &WasmPack{
		Command:   cfg.Backend.Command,
		Target:    cfg.Backend.Target,
		Features:  cfg.Backend.Features,
		ExtraArgs: cfg.Backend.ExtraArgs,
		CrateDir:  cfg.CrateDir,
		OutDir:    cfg.OutputDir,
	}
}

// Available reports whether the backend binary can be found.
func (w *WasmPack) Available() bool {
	_, err := exec.LookPath(w.Command)
	return err == nil
}

// Args returns the full argument list for the invocation, excluding the
// command itself. Cargo features go after the "--" separator, which
// wasm-pack forwards to cargo.
func (w *WasmPack) Args() []string {
	args := []string{"build", "--target", string(w.Target), "--out-dir", w.OutDir}
	args = append(args, w.ExtraArgs...)

	if len(w.Features) > 0 {
		args = append(args, "--", "--features", strings.Join(w.Features, ","))
	}

	return args
}

// Invoke runs the backend to completion. The returned Result carries the
// backend's exit code; a non-nil Error means the invocation itself failed
// (binary missing, context canceled) rather than the build.
func (w *WasmPack) Invoke(ctx context.Context) *Result {
	cmd := exec.CommandContext(ctx, w.Command, w.Args()...)
	cmd.Dir = w.CrateDir

	if w.Env != nil {
		cmd.Env = w.Env
	}

	cmd.Stdout = w.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = w.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return NewExitCodeResult(exitErr.ExitCode())
		}
		return NewErrorResult(1, fmt.Errorf("failed to run %s: %w", w.Command, err))
	}

	return NewSuccessResult()
}
