// SPDX-License-Identifier: MPL-2.0

// Package reconcile implements the output-directory reconciler: the
// idempotent merge between generator-owned and human-owned files across a
// backend rebuild.
//
// A run is an explicit ordered pipeline of named steps: pre-hooks, backup
// conflict check, preserve, backend invocation, ignore-file fix, restore,
// post-hooks. Preserve copies every managed file out of the output directory
// before the backend clobbers it; restore moves the copies back afterwards,
// so managed content always reflects the pre-run version byte for byte. The
// generated ignore-file is rewritten with fixed content on every run,
// regardless of what the backend put there.
//
// The pipeline is strictly sequential and stops at the first failure. A
// backend failure deliberately leaves the backup slots on disk: they are the
// recovery material for the clobbered managed files.
package reconcile
