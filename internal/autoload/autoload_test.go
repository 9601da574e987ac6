package autoload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hx20emu/hx20/internal/hd6301"
)

func drain(t *testing.T, l *Loader, mem *hd6301.Memory) []byte {
	t.Helper()
	var got []byte
	for i := 0; i < 10000 && !l.Done(); i++ {
		mem.RAM[kyispn] = 0x02
		l.Tick(mem)
		if mem.RAM[kyispn] == 0x01 {
			got = append(got, mem.RAM[kyistk+1])
		}
	}
	if !l.Done() {
		t.Fatalf("loader never reached Done() after 10000 ticks")
	}
	return got
}

func TestBasicFileAppendsRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.bas")
	if err := os.WriteFile(path, []byte("10 PRINT\r"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	warp := false
	l, err := NewBasicFile(path, &warp)
	if err != nil {
		t.Fatalf("NewBasicFile returned error: %v", err)
	}
	if !warp {
		t.Fatal("expected warp to be forced on while autoload is staged")
	}

	mem := hd6301.NewMemory(true, hd6301.RAMMaxDefault)
	got := drain(t, l, mem)

	want := "10 PRINT\rRUN\r"
	if string(got) != want {
		t.Fatalf("injected %q, want %q", got, want)
	}
	if warp {
		t.Fatal("expected warp to be restored to its prior value once autoload finishes")
	}
}

func TestBasicFileModeCharIsTwo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.bas")
	os.WriteFile(path, []byte("A\r"), 0o644)

	l, err := NewBasicFile(path, nil)
	if err != nil {
		t.Fatalf("NewBasicFile returned error: %v", err)
	}
	if l.modeChar() != '2' {
		t.Fatalf("BASIC mode char = %q, want '2'", l.modeChar())
	}
}

func TestSRecordTranslatesToMonitorCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.s19")
	// S1 record: length 5 (2 addr + 2 data + 1 checksum), addr 0x1000, data AA BB.
	record := "S1051000AABB00\n"
	if err := os.WriteFile(path, []byte(record), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	l, err := NewSRecord(path, nil)
	if err != nil {
		t.Fatalf("NewSRecord returned error: %v", err)
	}
	if l.modeChar() != '1' {
		t.Fatalf("S-record mode char = %q, want '1'", l.modeChar())
	}

	mem := hd6301.NewMemory(true, hd6301.RAMMaxDefault)
	got := drain(t, l, mem)

	want := "S1000\rAA\rBB\r.\r"
	if string(got) != want {
		t.Fatalf("injected %q, want %q", got, want)
	}
}

func TestArmSetsStagingCellsOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.bas")
	os.WriteFile(path, []byte("X\r"), 0o644)

	l, err := NewBasicFile(path, nil)
	if err != nil {
		t.Fatalf("NewBasicFile returned error: %v", err)
	}

	mem := hd6301.NewMemory(true, hd6301.RAMMaxDefault)
	mem.RAM[kyispn] = 0x02
	l.Tick(mem)

	if mem.RAM[kyisfl] != 0x0A {
		t.Errorf("KYISFL = %#x, want 0x0A", mem.RAM[kyisfl])
	}
	if mem.RAM[kyiscn] != 0x02 {
		t.Errorf("KYISCN = %d, want 2", mem.RAM[kyiscn])
	}
	if mem.RAM[kyistk] != '2' {
		t.Errorf("KYISTK[0] = %q, want '2'", mem.RAM[kyistk])
	}
}
