package ring

import (
	"sync/atomic"
	"unsafe"

	"github.com/DavidKo3/nabang/internal/nabang/codec"
)

// This file carries the memory-ordering discipline a cross-process ring
// needs without a kernel mutex: a writer's header rewrite must be
// release-ordered with respect to the payload bytes it guards, and a
// reader's header read must be acquire-ordered with respect to the payload
// bytes it is about to parse.
//
// codec.PageHeader's Code, Activity and PackingCount fields occupy exactly
// the first 4 bytes of a page — one native word — so they can be updated
// and observed with a single sync/atomic access instead of three
// independent byte/halfword stores, which Go's atomic package does not
// offer below 32 bits anyway. PageID, at offset 4, gets the same treatment
// for symmetry even though it is advisory only.
//
// Every page comes from a page-aligned mmap offset (a multiple of
// codec.PageSize, itself a multiple of the host page size), so the first
// eight bytes of page are always 4-byte aligned for the atomic casts below.

func headerWord(page []byte) *uint32 {
	return (*uint32)(unsafe.Pointer(&page[0]))
}

func pageIDWord(page []byte) *uint32 {
	return (*uint32)(unsafe.Pointer(&page[4]))
}

func packHeaderWord(code, activity byte, packingCount uint16) uint32 {
	return uint32(code) | uint32(activity)<<8 | uint32(packingCount)<<16
}

// storeHeader atomically (release) publishes code/activity/packingCount for
// page. Callers must have already stored any payload bytes the new
// packingCount makes visible.
func storeHeader(page []byte, code, activity byte, packingCount uint16) {
	atomic.StoreUint32(headerWord(page), packHeaderWord(code, activity, packingCount))
}

// loadHeader atomically (acquire) reads code/activity/packingCount for page.
// A reader that observes a given packingCount here is guaranteed to see the
// payload bytes behind it, provided the writer used storeHeader to publish
// them.
func loadHeader(page []byte) (code, activity byte, packingCount uint16) {
	word := atomic.LoadUint32(headerWord(page))
	return byte(word), byte(word >> 8), uint16(word >> 16)
}

func storePageID(page []byte, id uint32) {
	atomic.StoreUint32(pageIDWord(page), id)
}

func loadPageID(page []byte) uint32 {
	return atomic.LoadUint32(pageIDWord(page))
}

var _ = codec.PageHeaderSize // keep codec imported for the doc reference above
