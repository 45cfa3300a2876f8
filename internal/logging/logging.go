// Package logging builds the leveled loggers used across atelier.
//
// Each component gets its own prefixed logger so remote-call failures
// (best-effort persists, compensating deletes, degraded session loads)
// can be traced back to the layer that swallowed them.
package logging

import (
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var verbose atomic.Bool

// SetVerbose switches all loggers created afterwards to debug level.
func SetVerbose(on bool) {
	verbose.Store(on)
}

// New returns a logger prefixed with the given component name.
func New(component string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          component,
	})
	if verbose.Load() {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
