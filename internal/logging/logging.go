// Package logging provides structured logging for devsync using slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	defaultLogger *slog.Logger
	defaultOnce   sync.Once
)

// Options configures the logger behavior.
type Options struct {
	// Level sets the minimum log level. Defaults to slog.LevelInfo.
	Level slog.Level
	// Output sets the output destination. Defaults to os.Stderr.
	Output io.Writer
	// JSON enables JSON output format. Defaults to false (text format).
	JSON bool
}

// New creates a new logger with the given options.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	return slog.New(handler)
}

// Default returns the default logger, creating it if necessary.
// The default logger writes text output to stderr at Info level.
func Default() *slog.Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(Options{Level: slog.LevelInfo})
	})
	return defaultLogger
}

// SetDefault sets the default logger and also sets it as slog's default.
func SetDefault(logger *slog.Logger) {
	// Trigger the once so Default() won't overwrite our logger
	defaultOnce.Do(func() {})
	defaultLogger = logger
	slog.SetDefault(logger)
}

// Common attribute keys for consistent logging across the codebase.
const (
	KeyUser      = "user"
	KeyDevice    = "device"
	KeySession   = "session"
	KeyEntry     = "entry"
	KeyConflict  = "conflict"
	KeyPolicy    = "policy"
	KeyOperation = "operation"
	KeyError     = "error"
)

// User returns a slog attribute for the owning user identity.
func User(id string) slog.Attr {
	return slog.String(KeyUser, id)
}

// Device returns a slog attribute for a device identity.
func Device(id string) slog.Attr {
	return slog.String(KeyDevice, id)
}

// Session returns a slog attribute for a session identity.
func Session(id string) slog.Attr {
	return slog.String(KeySession, id)
}

// Entry returns a slog attribute for an entry identity.
func Entry(id string) slog.Attr {
	return slog.String(KeyEntry, id)
}

// Conflict returns a slog attribute for a conflict identity.
func Conflict(id string) slog.Attr {
	return slog.String(KeyConflict, id)
}

// Policy returns a slog attribute for a resolution policy.
func Policy(p string) slog.Attr {
	return slog.String(KeyPolicy, p)
}

// Operation returns a slog attribute for the operation being performed.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Err returns a slog attribute for error logging.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyError, err)
}
