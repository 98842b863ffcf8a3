package chessboard

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/chessboard/internal/layer"
	"github.com/gogpu/chessboard/internal/present"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
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

// SetLogger configures the logger for chessboard and its internal packages.
// By default chessboard produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent
// default.
//
// Log levels used by chessboard:
//   - [slog.LevelDebug]: pipeline construction, buffer sizes, surface configuration
//   - [slog.LevelInfo]: adapter selection, engine lifecycle
//   - [slog.LevelWarn]: dropped frames, surface reconfiguration, release errors
//
// Example:
//
//	chessboard.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	layer.SetLogger(l)
	present.SetLogger(l)
}

// Logger returns the current logger used by chessboard.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
