// SPDX-License-Identifier: MPL-2.0

// Package hook runs pre- and post-build shell snippets through the embedded
// mvdan/sh interpreter, so hooks behave identically on every platform
// without requiring a system shell.
package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ExitError reports a hook that ran to completion with a non-zero status.
type ExitError struct {
	// Name identifies the hook (e.g. "pre[0]").
	Name string
	// Code is the shell exit status.
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("hook %s exited with status %d", e.Name, e.Code)
}

// Runner executes hook snippets in a fixed directory and environment.
type Runner struct {
	// Dir is the working directory for hooks.
	Dir string
	// Env is the full environment (KEY=VALUE) visible to hooks.
	Env []string
	// Stdout and Stderr receive hook output.
	Stdout io.Writer
	Stderr io.Writer
}

// Run parses and executes a single hook snippet. The name appears in parse
// and exit errors to identify the failing hook.
func (r *Runner) Run(ctx context.Context, name, script string) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		return fmt.Errorf("hook %s: syntax error: %w", name, err)
	}

	opts := []interp.RunnerOption{
		interp.Dir(r.Dir),
		interp.Env(expand.ListEnviron(r.Env...)),
		interp.StdIO(nil, r.Stdout, r.Stderr),
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("hook %s: create interpreter: %w", name, err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &ExitError{Name: name, Code: int(status)}
		}
		return fmt.Errorf("hook %s: %w", name, err)
	}

	return nil
}

// RunAll executes hook snippets in order, stopping at the first failure.
// The phase ("pre" or "post") names the hooks in error messages.
func (r *Runner) RunAll(ctx context.Context, phase string, scripts []string) error {
	for i, script := range scripts {
		name := fmt.Sprintf("%s[%d]", phase, i)
		if err := r.Run(ctx, name, script); err != nil {
			return err
		}
	}
	return nil
}
