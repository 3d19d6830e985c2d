// Package glog is an opt-in, process-wide diagnostic logger for the
// compiler and matcher. It wraps zerolog but never touches zerolog's own
// global state: until Enable is called, every log call is a no-op, and
// package init does nothing observable to the host process.
package glog

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var (
	enabled int32
	logger  = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Enable turns on logging at the given level. Safe to call from multiple
// goroutines; the last call wins.
func Enable(level zerolog.Level) {
	logger = logger.Level(level)
	atomic.StoreInt32(&enabled, 1)
}

// Disable turns logging back off. Subsequent log calls are no-ops again.
func Disable() {
	atomic.StoreInt32(&enabled, 0)
}

// Enabled reports whether logging is currently turned on.
func Enabled() bool {
	return atomic.LoadInt32(&enabled) != 0
}

// Debugf logs a formatted debug message if logging is enabled.
func Debugf(format string, args ...any) {
	if !Enabled() {
		return
	}
	logger.Debug().Msgf(format, args...)
}

// Infof logs a formatted info message if logging is enabled.
func Infof(format string, args ...any) {
	if !Enabled() {
		return
	}
	logger.Info().Msgf(format, args...)
}

// Warnf logs a formatted warning message if logging is enabled.
func Warnf(format string, args ...any) {
	if !Enabled() {
		return
	}
	logger.Warn().Msgf(format, args...)
}
