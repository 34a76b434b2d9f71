// SPDX-License-Identifier: MPL-2.0

// Package issue provides structured, user-facing errors. An ActionableError
// carries the failed operation, the resource involved, and suggestions for
// fixing the problem, so the CLI layer can render something more helpful
// than a bare error string.
package issue
