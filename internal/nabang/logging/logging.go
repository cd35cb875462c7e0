// Package logging provides structured logging for nabang's own diagnostics
// using Go's slog package. It is deliberately separate from the
// spec-mandated stdout protocol the valid package and the Writer façade's
// Trace/Valid calls write: that protocol is plain, line-oriented text meant
// for an external tool to grep, and must not be interleaved with structured
// log records.
package logging

import (
	"log/slog"
	"os"
	"time"
)

var defaultLogger *slog.Logger

func init() {
	Init(LevelInfo, FormatText)
}

// Level is a logging verbosity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Format selects the slog.Handler used for output.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// Init (re)configures the global logger. writer.Get calls this once at
// startup based on internal/nabang/config; the Reader façade and the New
// constructors do not call it.
func Init(level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// Get returns the global logger instance.
func Get() *slog.Logger { return defaultLogger }

// PageRotated logs a PageWriter rotation from one page index to the next.
func PageRotated(path string, fromIdx, toIdx int, pageID uint32) {
	defaultLogger.Debug("page_rotated", "path", path, "from_page", fromIdx, "to_page", toIdx, "page_id", pageID)
}

// WriterStarted logs a Writer façade coming up against a fresh backing file.
func WriterStarted(path string, fileSize int) {
	defaultLogger.Info("writer_started", "path", path, "file_size", fileSize)
}

// WriterClosed logs an orderly Writer façade shutdown.
func WriterClosed(path string) {
	defaultLogger.Info("writer_closed", "path", path)
}

// ReaderRecovered logs a Reader façade opening the backing file for the
// first time, whether or not earlier attempts found it absent.
func ReaderRecovered(path string) {
	defaultLogger.Info("reader_recovered", "path", path)
}

// ReaderExited logs a Reader façade observing an orderly writer shutdown.
func ReaderExited(path string) {
	defaultLogger.Info("reader_exited", "path", path)
}
