package printer

import (
	"bytes"
	"testing"
)

func TestExecuteFlushesBlankRowAfterFullCycle(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	var port1 byte // motor power bit clear: motor running; no head-driver bits set
	// A full cycle is more ticks than the 16-bit sync counter holds, so
	// advance it one head step per call.
	var sync uint16
	for i := 0; i < cycleLength; i++ {
		sync += pulseTiming + 1
		p.Execute(sync, &port1)
	}
	p.Close()

	want := make([]byte, dots)
	for i := range want {
		want[i] = ' '
	}
	want = append(want, '\n')
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("flushed row = %q, want %q", buf.Bytes(), want)
	}
}

func TestExecuteIgnoresStepsWhileMotorOff(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	port1 := byte(portMotorPower)
	var sync uint16
	for i := 0; i < cycleLength; i++ {
		sync += pulseTiming + 1
		p.Execute(sync, &port1)
	}
	p.Close()

	if buf.Len() != 0 {
		t.Fatalf("expected no output while motor power held off, got %q", buf.Bytes())
	}
	if p.headPos != 0 {
		t.Fatalf("headPos = %d, want 0 (should not advance while motor is off)", p.headPos)
	}
}

func TestExecuteTogglesTimingBitEachStep(t *testing.T) {
	p := New(&bytes.Buffer{})

	var port1 byte
	p.Execute(uint16(pulseTiming+1), &port1)
	if port1&portTimingOut == 0 {
		t.Fatalf("expected timing bit set after first head step, port1=%#02x", port1)
	}

	p.Execute(uint16(2*(pulseTiming+1)), &port1)
	if port1&portTimingOut != 0 {
		t.Fatalf("expected timing bit cleared after second head step, port1=%#02x", port1)
	}
}

func TestSampleHeadMarksDotColumn(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	// Bit 0x08 marks the leftmost quarter of the head (columns 0..35);
	// hold it for the three steps needed to reach headPos==2, the
	// first sampled column (sampleHead reads headPos before it is
	// incremented, so headPos must already be 2 when it fires).
	port1 := byte(0x08)
	p.Execute(uint16(3*(pulseTiming+1)), &port1)

	if p.dotLine[0] != '#' {
		t.Fatalf("dotLine[0] = %q, want '#'", p.dotLine[0])
	}
}
