// Package writer provides the process-singleton Writer façade: the
// application-facing entry point that turns typed event calls (stamp,
// scope begin/end, trace, valid, set/add value) into units appended to
// the circular log.
package writer

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DavidKo3/nabang/internal/nabang/config"
	"github.com/DavidKo3/nabang/internal/nabang/filemap"
	"github.com/DavidKo3/nabang/internal/nabang/logging"
	"github.com/DavidKo3/nabang/internal/nabang/ring"
	"github.com/DavidKo3/nabang/internal/nabang/valid"
	"github.com/DavidKo3/nabang/internal/nabang/wire"
)

// Level is a trace severity, printed alongside the TraceST unit.
type Level int32

const (
	Info Level = iota
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Writer wraps a FileMap opened for writing and a PageWriter, and is the
// only thing in a process that appends units to the log. Construct one
// per process via Get; Writer is not safe to share across processes.
type Writer struct {
	fm       *filemap.FileMap
	pw       *ring.PageWriter
	path     string
	validDir string
	start    time.Time
	validSeq atomic.Int32
}

var (
	once         sync.Once
	singleton    *Writer
	singletonErr error
)

// Get returns the process-wide Writer, creating (and truncating) the
// backing file on first call. Subsequent calls return the same instance.
func Get() (*Writer, error) {
	once.Do(func() {
		cfg := config.FromEnv()
		logging.Init(cfg.LogLevel, logging.FormatText)
		singleton, singletonErr = New(cfg)
	})
	return singleton, singletonErr
}

// New constructs a Writer directly from cfg, bypassing the process
// singleton. Exercised by tests and by callers that want several
// independent Writers in one process (e.g. test harnesses).
func New(cfg config.Config) (*Writer, error) {
	fm, err := filemap.OpenWrite(cfg.LogPath, cfg.FileSize)
	if err != nil {
		return nil, fmt.Errorf("writer: %w", err)
	}
	logging.WriterStarted(cfg.LogPath, cfg.FileSize)
	return &Writer{
		fm:       fm,
		pw:       ring.NewPageWriter(),
		path:     cfg.LogPath,
		validDir: cfg.ValidDir,
		start:    time.Now(),
	}, nil
}

// Close marks the writer's current page ActivityExited and releases the
// mapping. A Reader observing this page transitions to ring.ExitProgram.
func (w *Writer) Close() error {
	logging.WriterClosed(w.path)
	if err := w.pw.Close(); err != nil {
		return err
	}
	return w.fm.Close()
}

func (w *Writer) nowNanos() int64 {
	return int64(time.Since(w.start))
}

// Stamp records a StampST unit: name plus the current monotonic timestamp.
func (w *Writer) Stamp(name string) error {
	return w.emitNameTime(wire.StampST, name, w.nowNanos())
}

// ScopeBegin records a ScopeBeginST unit.
func (w *Writer) ScopeBegin(name string) error {
	return w.emitNameTime(wire.ScopeBeginST, name, w.nowNanos())
}

// ScopeEnd records a ScopeEndST unit.
func (w *Writer) ScopeEnd(name string) error {
	return w.emitNameTime(wire.ScopeEndST, name, w.nowNanos())
}

// Scope emits ScopeBeginST for name and returns a handle whose Close emits
// the matching ScopeEndST. Typical use: s, err := w.Scope("outer"), then
// defer s.Close().
type Scope struct {
	w    *Writer
	name string
}

// Scope opens a scope named name, emitting ScopeBeginST immediately.
func (w *Writer) Scope(name string) (*Scope, error) {
	if err := w.ScopeBegin(name); err != nil {
		return nil, err
	}
	return &Scope{w: w, name: name}, nil
}

// Close emits the ScopeEndST closing this scope. Safe to call via defer on
// every exit path, including after an error further up the call stack.
func (s *Scope) Close() error {
	return s.w.ScopeEnd(s.name)
}

// Trace records a TraceST unit and echoes the formatted message to stdout
// prefixed with the severity, the line external tooling greps for.
func (w *Writer) Trace(level Level, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stdout, "<%s> %s\n", level, msg)
	return w.emitNameInt32(wire.TraceST, msg, int32(level))
}

// SetValueString records a SetValueSS unit.
func (w *Writer) SetValueString(name, value string) error {
	return w.emitPairStrings(wire.SetValueSS, name, value)
}

// SetValueInt records a SetValueST unit.
func (w *Writer) SetValueInt(name string, value int32) error {
	return w.emitNameInt32(wire.SetValueST, name, value)
}

// AddValueInt records an AddValueST unit.
func (w *Writer) AddValueInt(name string, delta int32) error {
	return w.emitNameInt32(wire.AddValueST, name, delta)
}

// Valid does nothing if *condition is already true. Otherwise it records a
// ValidST unit and blocks on the out-of-band rendezvous described in
// internal/nabang/valid until an external operator answers. If the operator resolves the condition true,
// *condition is updated in place.
func (w *Writer) Valid(ctx context.Context, condition *bool, format string, args ...any) error {
	if *condition {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	seq := int(w.validSeq.Add(1) - 1)
	if err := w.emitNameInt32(wire.ValidST, msg, int32(seq)); err != nil {
		return err
	}
	resolved, err := valid.Await(ctx, os.Stdout, seq, msg, w.validDir)
	if err != nil {
		return err
	}
	if resolved {
		*condition = true
	}
	return nil
}

func (w *Writer) emitNameTime(funcID wire.FuncID, name string, ts int64) error {
	size := wire.StringSize(name) + wire.Int64Size()
	dst, err := w.pw.WriteLock(w.fm, uint16(funcID), size)
	if err != nil {
		return err
	}
	n := wire.PutString(dst, name)
	wire.PutInt64(dst[n:], ts)
	return w.pw.WriteUnlock()
}

func (w *Writer) emitNameInt32(funcID wire.FuncID, name string, v int32) error {
	size := wire.StringSize(name) + wire.Int32Size()
	dst, err := w.pw.WriteLock(w.fm, uint16(funcID), size)
	if err != nil {
		return err
	}
	n := wire.PutString(dst, name)
	wire.PutInt32(dst[n:], v)
	return w.pw.WriteUnlock()
}

func (w *Writer) emitPairStrings(funcID wire.FuncID, a, b string) error {
	size := wire.StringSize(a) + wire.StringSize(b)
	dst, err := w.pw.WriteLock(w.fm, uint16(funcID), size)
	if err != nil {
		return err
	}
	n := wire.PutString(dst, a)
	wire.PutString(dst[n:], b)
	return w.pw.WriteUnlock()
}
