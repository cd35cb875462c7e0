//go:build !linux

package filemap

import (
	"errors"
	"os"
)

// ErrUnsupported is returned on platforms without a wired mmap
// implementation. The circular log relies on POSIX shared mappings;
// Windows support is out of scope.
var ErrUnsupported = errors.New("filemap: mmap not supported on this platform")

func init() {
	mmapFile = func(f *os.File, size int, writable bool) ([]byte, error) {
		return nil, ErrUnsupported
	}
	munmapMem = func(mem []byte) error { return ErrUnsupported }
	msyncRange = func(mem []byte, async bool) error { return ErrUnsupported }
}
