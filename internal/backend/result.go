// SPDX-License-Identifier: MPL-2.0

package backend

// Result is the outcome of a backend invocation.
type Result struct {
	// ExitCode is the backend's exit code (0 on success).
	ExitCode int
	// Error is set when the invocation itself failed, as opposed to the
	// backend running and reporting a build failure via its exit code.
	Error error
}

// Success reports whether the invocation completed with exit code 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Error == nil
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than infrastructure failures.
func NewExitCodeResult(code int) *Result {
	return &Result{ExitCode: code}
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code int, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}
