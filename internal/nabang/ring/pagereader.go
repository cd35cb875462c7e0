package ring

import (
	"github.com/DavidKo3/nabang/internal/nabang/codec"
	"github.com/DavidKo3/nabang/internal/nabang/filemap"
)

// PageReader drives the single reader side of the circular log. It tracks
// which page it currently has mapped and how far into that page it has
// consumed units, and advances to the next page (wrapping modulo
// codec.PageCount) once the current one is exhausted and the writer has
// moved off it.
//
// Mirrors LogPageReaderP::readOnce/loadPage from the original: loadPage
// maps a candidate page and inspects its header without committing to it
// unless the header looks initialized; readOnce decides whether the
// currently mapped page still has unread units, is exhausted but still
// being written to (Unreaded), is exhausted and closed (advance to the
// next page), or was closed in an orderly shutdown (ExitProgram, sticky).
type PageReader struct {
	fm      *filemap.FileMap
	view    *filemap.View
	pageIdx int
	cursor  int
	pageEnd int
	pageID  uint32
	busy    bool
	opened  bool
	exited  bool

	// pendingExit records that the currently mapped page's header already
	// reads ActivityExited, without forcing ExitProgram before the units
	// already buffered in that page have been parsed.
	pendingExit bool
}

// NewPageReader returns a PageReader not yet pointed at any page. Open must
// be called before ReadOnce.
func NewPageReader() *PageReader {
	return &PageReader{}
}

// Open maps page 0 and primes the reader's cursor. Mirrors the original
// reader's open(), which loads the first page unconditionally rather than
// lazily on first read.
func (r *PageReader) Open(fm *filemap.FileMap) ReadResult {
	r.fm = fm
	r.pageIdx = 0
	result := r.loadPage()
	r.opened = result != Unreaded
	if result == ExitProgram {
		r.exited = true
	}
	return result
}

// ReadOnce decodes the next unit in sequence, if any, and invokes cb with
// its FuncID and payload slice. The payload slice is only valid for the
// duration of the call; cb must copy anything it needs to keep.
func (r *PageReader) ReadOnce(cb func(funcID uint16, payload []byte)) ReadResult {
	if r.exited {
		return ExitProgram
	}
	if !r.opened {
		// The writer may not have initialized page 0 yet when Open was
		// first called; keep re-probing it instead of latching Unreaded
		// forever, so a Reader started before its Writer recovers once
		// the file map gets initialized.
		result := r.loadPage()
		if result == Unreaded {
			return Unreaded
		}
		r.opened = true
		if result == ExitProgram {
			r.exited = true
			return ExitProgram
		}
	}

	if r.cursor == r.pageEnd {
		if r.pendingExit {
			// The page's header already read ActivityExited on a previous
			// load, and every unit it held has now been parsed.
			r.exited = true
			return ExitProgram
		}
		if r.busy {
			// Current page is still being written to; re-read its header
			// for a possibly larger packing count.
			_, activity, packingCount := loadHeader(r.view.Bytes)
			r.busy = activity == codec.ActivityActive
			r.pageEnd = codec.ContentLength(packingCount)
			r.pendingExit = activity == codec.ActivityExited
			if r.cursor == r.pageEnd {
				if r.pendingExit {
					r.exited = true
					return ExitProgram
				}
				return Unreaded
			}
		} else {
			oldIdx := r.pageIdx
			r.pageIdx = (r.pageIdx + 1) % codec.PageCount
			result := r.loadPage()
			switch result {
			case Unreaded:
				r.pageIdx = oldIdx
				return Unreaded
			case ExitProgram:
				r.exited = true
				return ExitProgram
			}
			if r.cursor == r.pageEnd {
				// The writer has opened the next page but not yet
				// published a unit in it.
				return Unreaded
			}
		}
	}

	uh := codec.DecodeUnitHeader(r.view.Bytes[r.cursor:])
	payloadStart := r.cursor + codec.UnitHeaderSize
	payloadLen := codec.Pack * int(uh.PackingCount)
	cb(uh.FuncID, r.view.Bytes[payloadStart:payloadStart+payloadLen])
	r.cursor += codec.UnitHeaderSize + payloadLen
	return Readed
}

// loadPage maps r.pageIdx and inspects its header. It only commits the new
// mapping as the reader's current page if the header's first byte is
// codec.PageCode; otherwise the page has never been written and the
// mapping is discarded, returning Unreaded.
func (r *PageReader) loadPage() ReadResult {
	view, err := r.fm.ViewRead(r.pageIdx*codec.PageSize, codec.PageSize)
	if err != nil {
		return Unreaded
	}
	if view.Bytes[0] != codec.PageCode {
		return Unreaded
	}

	_, activity, packingCount := loadHeader(view.Bytes)
	r.view = view
	r.cursor = codec.PageHeaderSize
	r.pageEnd = codec.ContentLength(packingCount)
	r.pageID = loadPageID(view.Bytes)
	r.busy = activity == codec.ActivityActive
	r.pendingExit = activity == codec.ActivityExited

	// A page closed in an orderly shutdown only reports ExitProgram once
	// every unit it holds has been read; otherwise the caller would drop
	// whatever was written before the close.
	if r.pendingExit && r.cursor == r.pageEnd {
		return ExitProgram
	}
	return Readed
}

// PageID returns the advisory rotation counter of the page the reader is
// currently positioned on.
func (r *PageReader) PageID() uint32 { return r.pageID }
