// Package kernellog provides the kernel's structured logging setup.
//
// The geometric kernel is a library with no host-facing surface, so it never
// configures a global logger: callers inject one (or accept the no-op
// default). The kernel logs only at Debug: the facade's wall-solid build
// and the intersection cache's expiry sweep; warnings and recoveries are
// not logged.
package kernellog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu      sync.RWMutex
	current *zap.Logger = zap.NewNop()
)

// Set installs the logger used by kernel packages. Passing nil restores the
// no-op logger.
func Set(logger *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	current = logger
}

// Get returns the currently installed logger.
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// NewDevelopment builds a human-readable development logger, convenient for
// hosts that haven't wired their own zap.Logger yet.
func NewDevelopment() (*zap.Logger, error) {
	return zap.NewDevelopment()
}
