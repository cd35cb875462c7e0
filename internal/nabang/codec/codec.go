// Package codec implements the on-disk layout of the nabang circular log:
// fixed-size page and unit headers, little-endian, packed to a 4-byte quantum.
// Everything here is a pure function over byte slices; none of it touches a
// file or a mapping, and none of it is aware of the writer/reader protocol
// that uses it.
package codec

import "encoding/binary"

const (
	// Pack is the packing quantum: every payload length is rounded up to a
	// multiple of this many bytes before it is written.
	Pack = 4

	// FileSize is the fixed size of the backing file.
	FileSize = 5 * 256 * 4096

	// PageSize is the fixed size of one page within the backing file.
	PageSize = 64 * 1024

	// PageCount is the number of pages the backing file is partitioned into.
	PageCount = FileSize / PageSize

	// PageHeaderSize is the byte size of a PageHeader on the wire.
	PageHeaderSize = 8

	// UnitHeaderSize is the byte size of a UnitHeader on the wire.
	UnitHeaderSize = 4
)

// Page activity codes, stored in PageHeader.Activity.
const (
	ActivityActive byte = '+' // writer currently appending to this page
	ActivityClosed byte = '-' // writer moved on; page contents are frozen
	ActivityExited byte = '/' // writer is exiting; last page it will ever touch
)

// PageCode is the sentinel byte that marks a page as initialized.
const PageCode byte = '#'

func init() {
	if FileSize != PageCount*PageSize {
		panic("codec: FileSize is not an exact multiple of PageSize")
	}
}

// Packed rounds n up to the nearest multiple of Pack.
func Packed(n int) int {
	return (n + Pack - 1) / Pack * Pack
}

// PageHeader is the fixed 8-byte header at the start of every page.
type PageHeader struct {
	Code         byte   // PageCode once the page has been initialized
	Activity     byte   // ActivityActive / ActivityClosed / ActivityExited
	PackingCount uint16 // packing units occupied by the unit region
	PageID       uint32 // advisory page-rotation counter
}

// EncodePageHeader writes h into buf[0:PageHeaderSize].
func EncodePageHeader(buf []byte, h PageHeader) {
	_ = buf[PageHeaderSize-1] // bounds check hint
	buf[0] = h.Code
	buf[1] = h.Activity
	binary.LittleEndian.PutUint16(buf[2:4], h.PackingCount)
	binary.LittleEndian.PutUint32(buf[4:8], h.PageID)
}

// DecodePageHeader reads a PageHeader from buf[0:PageHeaderSize].
func DecodePageHeader(buf []byte) PageHeader {
	_ = buf[PageHeaderSize-1]
	return PageHeader{
		Code:         buf[0],
		Activity:     buf[1],
		PackingCount: binary.LittleEndian.Uint16(buf[2:4]),
		PageID:       binary.LittleEndian.Uint32(buf[4:8]),
	}
}

// UnitHeader is the fixed 4-byte header that precedes every unit payload.
type UnitHeader struct {
	PackingCount uint16 // size of the payload in packing units
	FuncID       uint16 // enumerated event type tag
}

// EncodeUnitHeader writes h into buf[0:UnitHeaderSize].
func EncodeUnitHeader(buf []byte, h UnitHeader) {
	_ = buf[UnitHeaderSize-1]
	binary.LittleEndian.PutUint16(buf[0:2], h.PackingCount)
	binary.LittleEndian.PutUint16(buf[2:4], h.FuncID)
}

// DecodeUnitHeader reads a UnitHeader from buf[0:UnitHeaderSize].
func DecodeUnitHeader(buf []byte) UnitHeader {
	_ = buf[UnitHeaderSize-1]
	return UnitHeader{
		PackingCount: binary.LittleEndian.Uint16(buf[0:2]),
		FuncID:       binary.LittleEndian.Uint16(buf[2:4]),
	}
}

// ContentLength returns the byte length of the in-use portion of a page
// given its packing count: the header plus Pack*packingCount bytes of units.
func ContentLength(packingCount uint16) int {
	return PageHeaderSize + Pack*int(packingCount)
}
