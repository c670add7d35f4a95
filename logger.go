package rhi

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for rhi and every backend.
// By default, rhi produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by rhi:
//   - [slog.LevelDebug]: native calls, descriptor sizes, submissions
//   - [slog.LevelInfo]: lifecycle events (adapter selected, device opened)
//   - [slog.LevelWarn]: non-fatal issues (fallback adapter, leaked resources)
//
// Example:
//
//	rhi.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	watchersMu.RLock()
	ws := make([]loggerSetter, 0, len(watchers))
	for w := range watchers {
		ws = append(ws, w)
	}
	watchersMu.RUnlock()
	for _, w := range ws {
		w.SetLogger(l)
	}
}

// Logger returns the current logger used by rhi.
// Backends call this to share the same logger configuration.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by components that cache a derived logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

var (
	watchersMu sync.RWMutex
	watchers   = make(map[loggerSetter]struct{})
)

// WatchLogger registers s to receive the current logger now and on every
// later SetLogger call. The returned function stops the updates.
func WatchLogger(s interface{ SetLogger(*slog.Logger) }) (stop func()) {
	watchersMu.Lock()
	watchers[s] = struct{}{}
	watchersMu.Unlock()
	s.SetLogger(Logger())
	return func() {
		watchersMu.Lock()
		delete(watchers, s)
		watchersMu.Unlock()
	}
}
