package pacing

import "testing"

func TestMaybeWaitFirstCallJustPrimesState(t *testing.T) {
	p := NewPacer()
	p.MaybeWait(1000, 8192)
	if !p.started {
		t.Fatal("expected Pacer to be started after the first call")
	}
	if p.lastCounter != 1000 {
		t.Fatalf("lastCounter = %d, want 1000", p.lastCounter)
	}
}

func TestMaybeWaitBelowThresholdDoesNotAccumulateForever(t *testing.T) {
	p := NewPacer()
	p.MaybeWait(0, 8192)
	p.MaybeWait(100, 8192) // delta 100 < threshold, returns immediately
	if p.cycles != 100 {
		t.Fatalf("cycles = %d, want 100", p.cycles)
	}
}

func TestMaybeWaitHandlesCounterWraparound(t *testing.T) {
	p := NewPacer()
	p.MaybeWait(65530, 8192)
	p.MaybeWait(10, 8192) // wraps past 65535
	want := uint64(10 - 65530 + 65536)
	if p.cycles != want {
		t.Fatalf("cycles after wraparound = %d, want %d", p.cycles, want)
	}
}
