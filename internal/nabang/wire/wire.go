// Package wire encodes and decodes the event payloads carried inside a
// nabang unit: the (string, int) and (string, string) argument pairs the
// Writer façade's event recorders produce and the Reader façade's parse
// helpers consume. Header framing lives in codec; this package only knows
// about payload bytes.
package wire

import (
	"encoding/binary"

	"github.com/DavidKo3/nabang/internal/nabang/codec"
)

// FuncID is the stable wire tag identifying an event's shape.
type FuncID uint16

// Event type tags, in wire order.
const (
	StampST    FuncID = 0
	ScopeBeginST FuncID = 1
	ScopeEndST   FuncID = 2
	TraceST      FuncID = 3
	ValidST      FuncID = 4
	SetValueSS   FuncID = 5
	SetValueST   FuncID = 6
	AddValueST   FuncID = 7
)

func (f FuncID) String() string {
	switch f {
	case StampST:
		return "StampST"
	case ScopeBeginST:
		return "ScopeBeginST"
	case ScopeEndST:
		return "ScopeEndST"
	case TraceST:
		return "TraceST"
	case ValidST:
		return "ValidST"
	case SetValueSS:
		return "SetValueSS"
	case SetValueST:
		return "SetValueST"
	case AddValueST:
		return "AddValueST"
	default:
		return "FuncID(unknown)"
	}
}

// StringSize returns the packed byte size of a string payload: a 2-byte
// length prefix, the string bytes, one trailing NUL, all packed to codec.Pack.
func StringSize(s string) int {
	return codec.Packed(2 + len(s) + 1)
}

// Int32Size and Int64Size return the packed byte size of an integer payload.
// Since codec.Pack is 4, these never need extra padding beyond the value
// itself (Int64Size still rounds for symmetry with a future wider Pack).
func Int32Size() int { return codec.Packed(4) }
func Int64Size() int { return codec.Packed(8) }

// PutString writes s packed into dst (which must be at least StringSize(s)
// bytes) and returns the number of bytes consumed.
func PutString(dst []byte, s string) int {
	n := StringSize(s)
	_ = dst[n-1]
	binary.LittleEndian.PutUint16(dst[0:2], uint16(len(s)))
	copy(dst[2:2+len(s)], s)
	dst[2+len(s)] = 0
	return n
}

// PutInt32 writes v packed into dst and returns the number of bytes consumed.
func PutInt32(dst []byte, v int32) int {
	n := Int32Size()
	_ = dst[n-1]
	binary.LittleEndian.PutUint32(dst[0:4], uint32(v))
	return n
}

// PutInt64 writes v packed into dst and returns the number of bytes consumed.
func PutInt64(dst []byte, v int64) int {
	n := Int64Size()
	_ = dst[n-1]
	binary.LittleEndian.PutUint64(dst[0:8], uint64(v))
	return n
}

// ParseString reads a length-prefixed, NUL-terminated, packed string
// starting at p and returns the decoded string along with the number of
// bytes the encoding occupied (so a caller can advance its cursor).
func ParseString(p []byte) (string, int) {
	length := int(binary.LittleEndian.Uint16(p[0:2]))
	s := string(p[2 : 2+length])
	return s, codec.Packed(2 + length + 1)
}

// ParseInt32 reads a packed int32 starting at p and returns the value and
// the number of bytes the encoding occupied.
func ParseInt32(p []byte) (int32, int) {
	return int32(binary.LittleEndian.Uint32(p[0:4])), Int32Size()
}

// ParseInt64 reads a packed int64 starting at p and returns the value and
// the number of bytes the encoding occupied.
func ParseInt64(p []byte) (int64, int) {
	return int64(binary.LittleEndian.Uint64(p[0:8])), Int64Size()
}
