package ring

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DavidKo3/nabang/internal/nabang/codec"
	"github.com/DavidKo3/nabang/internal/nabang/filemap"
)

func openTestFile(t *testing.T) (*filemap.FileMap, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ring-test.blog")
	fm, err := filemap.OpenWrite(path, codec.FileSize)
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	t.Cleanup(func() { fm.Close() })
	return fm, path
}

func writeUnit(t *testing.T, w *PageWriter, fm *filemap.FileMap, funcID uint16, payload []byte) {
	t.Helper()
	dst, err := w.WriteLock(fm, funcID, len(payload))
	if err != nil {
		t.Fatalf("WriteLock: %v", err)
	}
	copy(dst, payload)
	if err := w.WriteUnlock(); err != nil {
		t.Fatalf("WriteUnlock: %v", err)
	}
}

func TestSingleUnitRoundTrip(t *testing.T) {
	fm, _ := openTestFile(t)
	w := NewPageWriter()
	writeUnit(t, w, fm, 3, []byte("abcd"))

	r := NewPageReader()
	if res := r.Open(fm); res != Readed {
		t.Fatalf("Open = %v, want Readed", res)
	}

	var gotFunc uint16
	var gotPayload []byte
	res := r.ReadOnce(func(funcID uint16, payload []byte) {
		gotFunc = funcID
		gotPayload = append([]byte(nil), payload...)
	})
	if res != Readed {
		t.Fatalf("ReadOnce = %v, want Readed", res)
	}
	if gotFunc != 3 {
		t.Fatalf("funcID = %d, want 3", gotFunc)
	}
	if string(gotPayload) != "abcd" {
		t.Fatalf("payload = %q, want %q", gotPayload, "abcd")
	}

	if res := r.ReadOnce(func(uint16, []byte) {}); res != Unreaded {
		t.Fatalf("ReadOnce at end = %v, want Unreaded", res)
	}
}

func TestPageRotationAcrossManyUnits(t *testing.T) {
	fm, _ := openTestFile(t)
	w := NewPageWriter()

	const n = 5000
	payload := make([]byte, 16)
	for i := 0; i < n; i++ {
		copy(payload, fmt.Sprintf("evt-%06d", i))
		writeUnit(t, w, fm, 3, payload)
	}

	r := NewPageReader()
	if res := r.Open(fm); res != Readed {
		t.Fatalf("Open = %v, want Readed", res)
	}

	for i := 0; i < n; i++ {
		want := fmt.Sprintf("evt-%06d", i)
		var got string
		res := r.ReadOnce(func(_ uint16, p []byte) {
			got = string(p[:len(want)])
		})
		if res != Readed {
			t.Fatalf("unit %d: ReadOnce = %v, want Readed", i, res)
		}
		if got != want {
			t.Fatalf("unit %d: payload = %q, want %q", i, got, want)
		}
	}

	if res := r.ReadOnce(func(uint16, []byte) {}); res != Unreaded {
		t.Fatalf("ReadOnce after draining = %v, want Unreaded", res)
	}
}

func TestRingWrapAroundPastPageCount(t *testing.T) {
	fm, _ := openTestFile(t)
	w := NewPageWriter()
	r := NewPageReader()

	// Write one full ring's worth of pages plus a handful more, so the
	// writer wraps back to page index 0 at least once, with the reader only
	// having opened the first page; then drain the reader until it stops
	// returning Readed.
	unitsPerPage := (codec.PageSize - codec.PageHeaderSize) / (codec.UnitHeaderSize + codec.Pack)
	totalUnits := unitsPerPage * (codec.PageCount + 4)

	opened := false
	payload := []byte("xxxx")
	for i := 0; i < totalUnits; i++ {
		writeUnit(t, w, fm, 5, payload)
		if !opened {
			if res := r.Open(fm); res == Readed {
				opened = true
			}
		}
	}
	if !opened {
		t.Fatalf("reader never observed an initialized page")
	}

	read := 0
	for {
		res := r.ReadOnce(func(uint16, []byte) {})
		if res == Readed {
			read++
			continue
		}
		break
	}
	if read == 0 {
		t.Fatalf("wrap-around test read 0 units")
	}
	if read > totalUnits {
		t.Fatalf("read %d units, more than the %d written", read, totalUnits)
	}
}

func TestOrderlyExitReportedOnceSticky(t *testing.T) {
	fm, _ := openTestFile(t)
	w := NewPageWriter()
	writeUnit(t, w, fm, 1, nil)
	writeUnit(t, w, fm, 2, nil)
	writeUnit(t, w, fm, 3, nil)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := NewPageReader()
	if res := r.Open(fm); res != Readed {
		t.Fatalf("Open = %v, want Readed", res)
	}

	for i := 0; i < 3; i++ {
		if res := r.ReadOnce(func(uint16, []byte) {}); res != Readed {
			t.Fatalf("unit %d: ReadOnce = %v, want Readed", i, res)
		}
	}

	if res := r.ReadOnce(func(uint16, []byte) {}); res != ExitProgram {
		t.Fatalf("ReadOnce after last unit = %v, want ExitProgram", res)
	}
	if res := r.ReadOnce(func(uint16, []byte) {}); res != ExitProgram {
		t.Fatalf("ReadOnce after ExitProgram = %v, want ExitProgram again", res)
	}
}

func TestReaderBeforeWriterRecoversOnceInitialized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring-before.blog")

	// No writer has created the file yet.
	if _, err := filemap.OpenRead(path); err == nil {
		t.Fatalf("OpenRead on a nonexistent file: want error, got nil")
	}

	fm, err := filemap.OpenWrite(path, codec.FileSize)
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	defer fm.Close()

	r := NewPageReader()
	if res := r.Open(fm); res != Unreaded {
		t.Fatalf("Open before any unit written = %v, want Unreaded", res)
	}

	w := NewPageWriter()
	writeUnit(t, w, fm, 9, []byte("late"))

	res := r.ReadOnce(func(funcID uint16, payload []byte) {
		if funcID != 9 || string(payload) != "late" {
			t.Fatalf("got funcID=%d payload=%q", funcID, payload)
		}
	})
	if res != Readed {
		t.Fatalf("ReadOnce after recovery = %v, want Readed", res)
	}
}

func TestWriteLockRejectsOversizedUnit(t *testing.T) {
	fm, _ := openTestFile(t)
	w := NewPageWriter()
	_, err := w.WriteLock(fm, 1, codec.PageSize)
	if err == nil {
		t.Fatalf("WriteLock with an oversized payload: want error, got nil")
	}
}
