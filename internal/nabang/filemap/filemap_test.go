//go:build linux

package filemap

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), fmt.Sprintf("nabang-test-%d.blog", time.Now().UnixNano()))
}

func TestOpenWriteCreatesExactSize(t *testing.T) {
	path := tempPath(t)
	fm, err := OpenWrite(path, 4096)
	if err != nil {
		t.Fatalf("OpenWrite error: %v", err)
	}
	defer fm.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat error: %v", err)
	}
	if info.Size() != 4096 {
		t.Fatalf("file size = %d, want 4096", info.Size())
	}
}

func TestViewWriteThenReadByAnotherMapSeesTheBytes(t *testing.T) {
	path := tempPath(t)
	wfm, err := OpenWrite(path, 4096)
	if err != nil {
		t.Fatalf("OpenWrite error: %v", err)
	}
	defer wfm.Close()

	v, err := wfm.ViewWrite(0, 16)
	if err != nil {
		t.Fatalf("ViewWrite error: %v", err)
	}
	copy(v.Bytes, []byte("hello-nabang-log"))
	if err := wfm.Flush(v, 16); err != nil {
		t.Fatalf("Flush error: %v", err)
	}

	rfm, err := OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead error: %v", err)
	}
	defer rfm.Close()

	rv, err := rfm.ViewRead(0, 16)
	if err != nil {
		t.Fatalf("ViewRead error: %v", err)
	}
	if string(rv.Bytes) != "hello-nabang-log" {
		t.Fatalf("read back %q, want %q", rv.Bytes, "hello-nabang-log")
	}
}

func TestOpenReadMissingFile(t *testing.T) {
	path := tempPath(t)
	if _, err := OpenRead(path); err == nil {
		t.Fatalf("OpenRead on a missing file: want error, got nil")
	}
}

func TestViewOutOfRange(t *testing.T) {
	path := tempPath(t)
	fm, err := OpenWrite(path, 4096)
	if err != nil {
		t.Fatalf("OpenWrite error: %v", err)
	}
	defer fm.Close()

	if _, err := fm.ViewWrite(4000, 1000); err == nil {
		t.Fatalf("ViewWrite past end of mapping: want error, got nil")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	path := tempPath(t)
	fm, err := OpenWrite(path, 4096)
	if err != nil {
		t.Fatalf("OpenWrite error: %v", err)
	}
	if err := fm.Close(); err != nil {
		t.Fatalf("first Close error: %v", err)
	}
	if err := fm.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
}
