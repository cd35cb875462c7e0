// Package reader provides the process-singleton Reader façade: the
// application-facing entry point a viewer process uses to consume events
// out of the circular log, tolerating the Writer not having started yet,
// being mid-write, or having exited.
package reader

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/DavidKo3/nabang/internal/nabang/config"
	"github.com/DavidKo3/nabang/internal/nabang/filemap"
	"github.com/DavidKo3/nabang/internal/nabang/logging"
	"github.com/DavidKo3/nabang/internal/nabang/ring"
	"github.com/DavidKo3/nabang/internal/nabang/wire"
)

// Event is a decoded unit handed to a ReadOnce callback or yielded from
// Events. Which fields are meaningful depends on FuncID.
type Event struct {
	FuncID wire.FuncID
	Name   string // first string argument, for every event type
	Value  string // second string argument, SetValueSS only
	Int32  int32  // Trace/Valid/SetValueST/AddValueST payload
	Int64  int64  // Stamp/ScopeBegin/ScopeEnd timestamp, nanoseconds
}

// Reader wraps a FileMap opened for reading and a PageReader. Unlike the
// Writer, construction never fails outright: if the backing file does not
// exist yet, ReadOnce returns ring.LogNotFound and keeps retrying the open
// on every subsequent call, so a Reader started before its Writer
// eventually recovers (see DESIGN.md's note on this spec open question).
type Reader struct {
	mu         sync.Mutex
	cfg        config.Config
	fm         *filemap.FileMap
	pr         *ring.PageReader
	opened     bool
	exitLogged bool
}

var (
	once      sync.Once
	singleton *Reader
)

// Get returns the process-wide Reader, configured from the environment.
func Get() *Reader {
	once.Do(func() {
		singleton = New(config.FromEnv())
	})
	return singleton
}

// New constructs a Reader directly from cfg, bypassing the process
// singleton.
func New(cfg config.Config) *Reader {
	return &Reader{cfg: cfg}
}

// ReadOnce decodes the next unit in sequence, if any, invoking cb with it,
// and returns one of ring.Readed, ring.Unreaded, ring.ExitProgram or
// ring.LogNotFound.
func (r *Reader) ReadOnce(cb func(Event)) ring.ReadResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.opened {
		fm, err := filemap.OpenRead(r.cfg.LogPath)
		if err != nil {
			return ring.LogNotFound
		}
		logging.ReaderRecovered(r.cfg.LogPath)
		r.fm = fm
		r.pr = ring.NewPageReader()
		r.pr.Open(r.fm)
		r.opened = true
	}

	result := r.pr.ReadOnce(func(funcID uint16, payload []byte) {
		cb(decodeEvent(wire.FuncID(funcID), payload))
	})
	if result == ring.ExitProgram && !r.exitLogged {
		logging.ReaderExited(r.cfg.LogPath)
		r.exitLogged = true
	}
	return result
}

// Events returns a lazy, non-restartable sequence of events: it polls
// ReadOnce every pollInterval while the result is Unreaded or LogNotFound,
// yields an Event for every Readed result, and stops (without yielding
// further) on ExitProgram or ctx cancellation. This is the range-over-func
// alternative to the callback-based ReadOnce, equivalent and preferable
// for idiomatic consumption.
func (r *Reader) Events(ctx context.Context, pollInterval time.Duration) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			var ev Event
			got := false
			switch result := r.ReadOnce(func(e Event) { ev, got = e, true }); result {
			case ring.Readed:
				if got && !yield(ev) {
					return
				}
			case ring.ExitProgram:
				return
			case ring.Unreaded, ring.LogNotFound:
				select {
				case <-ctx.Done():
					return
				case <-time.After(pollInterval):
				}
			}
		}
	}
}

func decodeEvent(funcID wire.FuncID, payload []byte) Event {
	switch funcID {
	case wire.StampST, wire.ScopeBeginST, wire.ScopeEndST:
		name, n := wire.ParseString(payload)
		ts, _ := wire.ParseInt64(payload[n:])
		return Event{FuncID: funcID, Name: name, Int64: ts}
	case wire.TraceST, wire.ValidST, wire.SetValueST, wire.AddValueST:
		name, n := wire.ParseString(payload)
		v, _ := wire.ParseInt32(payload[n:])
		return Event{FuncID: funcID, Name: name, Int32: v}
	case wire.SetValueSS:
		a, n := wire.ParseString(payload)
		b, _ := wire.ParseString(payload[n:])
		return Event{FuncID: funcID, Name: a, Value: b}
	default:
		return Event{FuncID: funcID}
	}
}
