// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleBackup is returned when backup slots from a previous failed
	// run are present and the run was not forced.
	ErrStaleBackup = errors.New("stale backup slots present")

	// ErrBackendFailed is the sentinel wrapped by BackendFailedError.
	ErrBackendFailed = errors.New("backend invocation failed")
)

type (
	// StaleBackupError reports leftover backup slots from a prior failed
	// run. The reconciler refuses to overwrite them silently; the user
	// decides via 'clean --restore', 'clean --discard', or '--force'.
	StaleBackupError struct {
		// SlotDir is the backup slot directory that already exists.
		SlotDir string
	}

	// BackendFailedError reports a compiler backend run that did not
	// succeed. Backup slots are intentionally left on disk when this
	// error is returned.
	BackendFailedError struct {
		// ExitCode is the backend's exit code.
		ExitCode int
		// Cause is the invocation error, if the backend could not be run
		// at all (nil for a plain non-zero exit).
		Cause error
	}
)

// Error implements the error interface.
func (e *StaleBackupError) Error() string {
	return fmt.Sprintf("backup slots from a previous failed run exist in %s", e.SlotDir)
}

// Unwrap returns the sentinel for errors.Is() checks.
func (e *StaleBackupError) Unwrap() error {
	return ErrStaleBackup
}

// Error implements the error interface.
func (e *BackendFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend invocation failed: %s", e.Cause)
	}
	return fmt.Sprintf("backend exited with status %d", e.ExitCode)
}

// Unwrap returns the sentinel and cause chain for errors.Is/As.
func (e *BackendFailedError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrBackendFailed, e.Cause}
	}
	return []error{ErrBackendFailed}
}
