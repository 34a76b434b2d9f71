// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Verbose mode lowers the level to debug
// so per-step reconciler progress becomes visible.
func newLogger(verboseMode bool) *log.Logger {
	level := log.InfoLevel
	if verboseMode {
		level = log.DebugLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})
}
