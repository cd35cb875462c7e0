package ring

import (
	"fmt"
	"sync"

	"github.com/DavidKo3/nabang/internal/nabang/codec"
	"github.com/DavidKo3/nabang/internal/nabang/filemap"
)

// PageWriter drives the single writer side of the circular log: it owns the
// current page, decides when a page is full and rotation to the next page
// (wrapping modulo codec.PageCount) is needed, and exposes the two-phase
// WriteLock/WriteUnlock pair that brackets every unit a caller appends.
//
// The split mirrors the original LogPageWriterP::writeLock/writeUnlock pair:
// WriteLock reserves room and hands back a slice for the caller to fill in
// place; WriteUnlock publishes the new page header once the caller is done.
// WriteLock takes an internal mutex that WriteUnlock releases, so
// goroutines sharing a PageWriter append one unit at a time; the Writer
// façade above it is the single point of entry.
type PageWriter struct {
	mu sync.Mutex

	fm      *filemap.FileMap
	view    *filemap.View
	pageIdx int
	cursor  int
	pageID  uint32

	pendingEnd int
	locked     bool
}

// NewPageWriter returns a PageWriter with no page open yet. The first call
// to WriteLock opens page 0.
func NewPageWriter() *PageWriter {
	return &PageWriter{pageIdx: -1}
}

// WriteLock reserves space for a unit carrying payloadBytes bytes of
// payload tagged funcID, rotating to a new page first if the current one
// cannot fit it, and returns the payload region for the caller to fill.
// The PageWriter is locked until the matching WriteUnlock call.
func (w *PageWriter) WriteLock(fm *filemap.FileMap, funcID uint16, payloadBytes int) ([]byte, error) {
	w.mu.Lock()
	w.locked = true

	packedLen := codec.Packed(payloadBytes)
	needed := codec.UnitHeaderSize + packedLen
	if needed > codec.PageSize-codec.PageHeaderSize {
		w.locked = false
		w.mu.Unlock()
		return nil, fmt.Errorf("ring: unit of %d bytes cannot fit in a %d byte page", needed, codec.PageSize)
	}

	if w.view == nil || w.cursor+needed > codec.PageSize {
		if err := w.rotate(fm); err != nil {
			w.locked = false
			w.mu.Unlock()
			return nil, err
		}
	}

	codec.EncodeUnitHeader(w.view.Bytes[w.cursor:], codec.UnitHeader{
		PackingCount: uint16(packedLen / codec.Pack),
		FuncID:       funcID,
	})
	payloadStart := w.cursor + codec.UnitHeaderSize
	w.pendingEnd = payloadStart + packedLen
	return w.view.Bytes[payloadStart:w.pendingEnd], nil
}

// WriteUnlock publishes the unit reserved by the preceding WriteLock call:
// it advances the cursor past it, atomically republishes the page header
// with the new packing count, flushes the used prefix of the page, and
// releases the lock.
func (w *PageWriter) WriteUnlock() error {
	if !w.locked {
		return fmt.Errorf("ring: WriteUnlock without a matching WriteLock")
	}
	defer func() {
		w.locked = false
		w.mu.Unlock()
	}()

	w.cursor = w.pendingEnd
	packingCount := uint16((w.cursor - codec.PageHeaderSize) / codec.Pack)
	storeHeader(w.view.Bytes, codec.PageCode, codec.ActivityActive, packingCount)
	return w.fm.Flush(w.view, w.cursor)
}

// Close marks the page the writer currently holds as ActivityExited, the
// orderly-shutdown terminal state a Reader recognizes as ExitProgram. Safe
// to call even if no page was ever opened.
func (w *PageWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.view == nil {
		return nil
	}
	packingCount := uint16((w.cursor - codec.PageHeaderSize) / codec.Pack)
	storeHeader(w.view.Bytes, codec.PageCode, codec.ActivityExited, packingCount)
	return w.fm.Flush(w.view, w.cursor)
}

// rotate closes the current page (if any) as ActivityClosed and opens the
// next one in ring order as ActivityActive. Caller must hold w.mu.
func (w *PageWriter) rotate(fm *filemap.FileMap) error {
	w.fm = fm

	if w.view != nil {
		packingCount := uint16((w.cursor - codec.PageHeaderSize) / codec.Pack)
		storeHeader(w.view.Bytes, codec.PageCode, codec.ActivityClosed, packingCount)
		if err := fm.Flush(w.view, codec.PageHeaderSize); err != nil {
			return err
		}
		w.pageIdx = (w.pageIdx + 1) % codec.PageCount
	} else {
		w.pageIdx = 0
	}

	view, err := fm.ViewWrite(w.pageIdx*codec.PageSize, codec.PageSize)
	if err != nil {
		return fmt.Errorf("ring: opening page %d: %w", w.pageIdx, err)
	}
	w.view = view
	w.cursor = codec.PageHeaderSize

	storeHeader(view.Bytes, codec.PageCode, codec.ActivityActive, 0)
	storePageID(view.Bytes, w.pageID)
	w.pageID++

	return fm.Flush(view, codec.PageHeaderSize)
}
