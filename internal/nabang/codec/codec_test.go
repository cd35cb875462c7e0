package codec

import "testing"

func TestPackedRounding(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 0}, {1, 4}, {2, 4}, {3, 4}, {4, 4}, {5, 8}, {8, 8}, {9, 12},
	}
	for _, c := range cases {
		if got := Packed(c.in); got != c.want {
			t.Errorf("Packed(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestPackedIdempotentAndMonotonic(t *testing.T) {
	for n := 0; n < 200; n++ {
		p := Packed(n)
		if p%Pack != 0 {
			t.Fatalf("Packed(%d) = %d is not a multiple of Pack", n, p)
		}
		if p < n {
			t.Fatalf("Packed(%d) = %d is less than n", n, p)
		}
		if Packed(p) != p {
			t.Fatalf("Packed(%d) = %d, not idempotent: Packed(%d) = %d", n, p, p, Packed(p))
		}
	}
}

func TestPageHeaderRoundTrip(t *testing.T) {
	h := PageHeader{Code: PageCode, Activity: ActivityActive, PackingCount: 1234, PageID: 9}
	buf := make([]byte, PageHeaderSize)
	EncodePageHeader(buf, h)
	got := DecodePageHeader(buf)
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestPageHeaderWireLayout(t *testing.T) {
	buf := make([]byte, PageHeaderSize)
	EncodePageHeader(buf, PageHeader{Code: '#', Activity: '+', PackingCount: 0x0102, PageID: 0x04030201})
	want := []byte{'#', '+', 0x02, 0x01, 0x01, 0x02, 0x03, 0x04}
	for i, b := range want {
		if buf[i] != b {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x (little-endian layout)", i, buf[i], b)
		}
	}
}

func TestUnitHeaderRoundTrip(t *testing.T) {
	h := UnitHeader{PackingCount: 7, FuncID: 3}
	buf := make([]byte, UnitHeaderSize)
	EncodeUnitHeader(buf, h)
	got := DecodeUnitHeader(buf)
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestContentLengthBoundedByPageSize(t *testing.T) {
	maxPackingUnits := (PageSize - PageHeaderSize) / Pack
	if ContentLength(uint16(maxPackingUnits)) > PageSize {
		t.Fatalf("ContentLength at max packing units exceeds PageSize")
	}
}

func TestLayoutConstants(t *testing.T) {
	if FileSize != 5*256*4096 {
		t.Fatalf("FileSize = %d, want %d", FileSize, 5*256*4096)
	}
	if PageSize != 64*1024 {
		t.Fatalf("PageSize = %d, want %d", PageSize, 64*1024)
	}
	if PageCount != 80 {
		t.Fatalf("PageCount = %d, want 80", PageCount)
	}
}
