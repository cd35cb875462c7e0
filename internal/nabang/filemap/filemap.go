// Package filemap owns the OS file handle and shared memory mapping behind
// the nabang backing file, and hands out page-aligned byte windows into it.
// No user-space cache sits between a View's bytes and what another process
// mapping the same file sees; coherency is whatever the platform's shared
// mapping gives us.
package filemap

import (
	"errors"
	"fmt"
	"os"
)

// ErrClosed is returned by operations on a FileMap whose handle has already
// been released.
var ErrClosed = errors.New("filemap: closed")

// platform-specific functions, assigned from init() by the build-tagged
// files in this package.
var (
	mmapFile   func(f *os.File, size int, writable bool) ([]byte, error)
	munmapMem  func(mem []byte) error
	msyncRange func(mem []byte, async bool) error
)

// FileMap wraps a fixed-size backing file and its single whole-file shared
// mapping. Per-page Views are slices into that one mapping rather than
// independent mmap calls, which is both simpler and avoids paying a
// mmap/munmap syscall on every page rotation.
type FileMap struct {
	file     *os.File
	mem      []byte
	size     int
	writable bool
	closed   bool
}

// OpenWrite creates (truncating any existing contents) a file at path sized
// to exactly size bytes, and maps it read-write. Used by the Writer façade;
// the file is discarded and recreated on every Writer start, per spec.
func OpenWrite(path string, size int) (*FileMap, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("filemap: create %s: %w", path, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, fmt.Errorf("filemap: resize %s to %d: %w", path, size, err)
	}
	mem, err := mmapFile(f, size, true)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("filemap: mmap %s: %w", path, err)
	}
	return &FileMap{file: f, mem: mem, size: size, writable: true}, nil
}

// OpenRead opens an existing file at path read-only and maps it. Callers
// (the Reader façade) should treat a non-nil error as "the log does not
// exist yet" rather than a fatal condition.
func OpenRead(path string) (*FileMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("filemap: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("filemap: stat %s: %w", path, err)
	}
	size := int(info.Size())
	mem, err := mmapFile(f, size, false)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("filemap: mmap %s: %w", path, err)
	}
	return &FileMap{file: f, mem: mem, size: size, writable: false}, nil
}

// Size returns the total mapped size in bytes.
func (fm *FileMap) Size() int { return fm.size }

// View is a byte window into a FileMap's mapping, rooted at a page-aligned
// offset. Multiple disjoint Views may be live simultaneously.
type View struct {
	fm     *FileMap
	Offset int
	Bytes  []byte
}

// ViewWrite returns a writable window [offset, offset+length) into the
// mapping. The FileMap must have been opened with OpenWrite.
func (fm *FileMap) ViewWrite(offset, length int) (*View, error) {
	if fm.closed {
		return nil, ErrClosed
	}
	if !fm.writable {
		return nil, errors.New("filemap: ViewWrite on a read-only mapping")
	}
	if offset < 0 || length < 0 || offset+length > fm.size {
		return nil, fmt.Errorf("filemap: view [%d,%d) out of range [0,%d)", offset, offset+length, fm.size)
	}
	return &View{fm: fm, Offset: offset, Bytes: fm.mem[offset : offset+length]}, nil
}

// ViewRead returns a window [offset, offset+length) into the mapping for
// reading. Works on mappings opened with either OpenWrite or OpenRead.
func (fm *FileMap) ViewRead(offset, length int) (*View, error) {
	if fm.closed {
		return nil, ErrClosed
	}
	if offset < 0 || length < 0 || offset+length > fm.size {
		return nil, fmt.Errorf("filemap: view [%d,%d) out of range [0,%d)", offset, offset+length, fm.size)
	}
	return &View{fm: fm, Offset: offset, Bytes: fm.mem[offset : offset+length]}, nil
}

// Flush requests an asynchronous flush of the first length bytes of the
// given view to the backing file. Best-effort; does not block on durable
// storage.
func (fm *FileMap) Flush(v *View, length int) error {
	if fm.closed {
		return ErrClosed
	}
	if length > len(v.Bytes) {
		length = len(v.Bytes)
	}
	return msyncRange(v.Bytes[:length], true)
}

// Close releases the mapping and the underlying file handle. Safe to call
// more than once.
func (fm *FileMap) Close() error {
	if fm.closed {
		return nil
	}
	fm.closed = true
	var firstErr error
	if fm.mem != nil {
		if err := munmapMem(fm.mem); err != nil {
			firstErr = err
		}
		fm.mem = nil
	}
	if err := fm.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
