// Package logger provides leveled logging for scopefind. The terminal is
// owned by the UI, so records go to a file chosen with --log-file and are
// discarded otherwise. Debug records are only written in verbose mode.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = io.Discard
	log               = newLogger(io.Discard, false)
)

func newLogger(w io.Writer, v bool) *slog.Logger {
	level := slog.LevelInfo
	if v {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbose enables or disables debug records.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	log = newLogger(output, verbose)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the destination for log records. Useful for testing.
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = newLogger(output, verbose)
}

// OpenFile directs log records to path, appending. The returned file must
// be closed by the caller.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	SetOutput(f)
	return f, nil
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Enabled reports whether records at level would be written.
func Enabled(level slog.Level) bool {
	return current().Enabled(context.Background(), level)
}

// Debug logs at debug level; attrs are slog key/value pairs.
func Debug(msg string, attrs ...any) { current().Debug(msg, attrs...) }

// Info logs at info level.
func Info(msg string, attrs ...any) { current().Info(msg, attrs...) }

// Warn logs at warn level.
func Warn(msg string, attrs ...any) { current().Warn(msg, attrs...) }

// Error logs at error level.
func Error(msg string, attrs ...any) { current().Error(msg, attrs...) }
