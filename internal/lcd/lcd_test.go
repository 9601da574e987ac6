package lcd

import "testing"

func TestSelectPicksController(t *testing.T) {
	s := NewSurface()
	s.Select(0x0B) // controller 3, bit 3 set: command mode
	if s.active != 3 {
		t.Fatalf("active controller = %d, want 3", s.active)
	}
	if !s.chips[3].commandMode {
		t.Fatal("expected command mode after Select with bit 3 set")
	}
}

func TestDataInCommandModeResetsCursor(t *testing.T) {
	s := NewSurface()
	s.Select(0x08) // controller 0, command mode
	s.Data(5)
	if s.chips[0].cursor != 5 {
		t.Fatalf("cursor = %d, want 5", s.chips[0].cursor)
	}
}

func TestDataInDataModeWritesColumnAndAdvances(t *testing.T) {
	s := NewSurface()
	s.Select(0x00) // controller 0, data mode
	s.Data(0xAA)
	if s.chips[0].columns[0][0] != 0xAA {
		t.Fatalf("column 0 byte 0 = %#02x, want 0xaa", s.chips[0].columns[0][0])
	}
	if s.chips[0].cursor != 1 {
		t.Fatalf("cursor after one write = %d, want 1", s.chips[0].cursor)
	}
}

func TestPixelMatchesWrittenColumn(t *testing.T) {
	s := NewSurface()
	s.Select(0x00)
	s.Data(0x01) // bit 0 lit

	if !s.Pixel(0, 0) {
		t.Fatal("expected pixel (0,0) lit")
	}
	if s.Pixel(0, 1) {
		t.Fatal("expected pixel (0,1) unlit")
	}
}

func TestPixelOutOfBoundsIsFalse(t *testing.T) {
	s := NewSurface()
	if s.Pixel(-1, 0) || s.Pixel(Width, 0) || s.Pixel(0, Height) {
		t.Fatal("out-of-bounds Pixel reads should be false")
	}
}

func TestSnapshotSizeMatchesDimensions(t *testing.T) {
	s := NewSurface()
	stride := (Width + 7) / 8
	got := s.Snapshot()
	if len(got) != stride*Height {
		t.Fatalf("Snapshot() len = %d, want %d", len(got), stride*Height)
	}
}
