// SPDX-License-Identifier: MPL-2.0

// Package backend invokes the external compiler (wasm-pack) that populates
// the output directory. The invocation is synchronous; it runs to completion
// or fails, and its exit code propagates to the process exit status. No
// retries.
package backend
