package hd6301

import "fmt"

// Trace is the per-CPU disassembly ring buffer (spec §4.10): a fixed
// number of most-recent instruction entries, formatted the way
// original_source/hd6301.c's hd6301_trace does, for dumping after a
// fatal panic or on operator request.
const TraceBufferSize = 1024

type traceEntry struct {
	used bool
	line string
}

type Trace struct {
	entries [TraceBufferSize]traceEntry
	next    int
}

// NewTrace allocates an empty ring buffer.
func NewTrace() *Trace { return &Trace{} }

// Add formats one instruction's pre-execution register snapshot plus
// its mnemonic and appends it to the ring, matching the layout
// "PC=%04x A:B=%04x X=%04x SP=%04x CCR=%02x(11%c%c%c%c%c%c) [%d] %s".
func (t *Trace) Add(c *MCU, mnemonic string) {
	flag := func(set bool, ch byte) byte {
		if set {
			return ch
		}
		return '-'
	}
	line := fmt.Sprintf(
		"PC=%04x A:B=%04x X=%04x SP=%04x CCR=%02x(11%c%c%c%c%c%c) [%d] %s",
		c.PC, c.D(), c.X, c.SP, c.CCR(),
		flag(c.H, 'H'), flag(c.I, 'I'), flag(c.N, 'N'),
		flag(c.Z, 'Z'), flag(c.V, 'V'), flag(c.C, 'C'),
		c.ID, mnemonic,
	)
	t.entries[t.next] = traceEntry{used: true, line: line}
	t.next = (t.next + 1) % TraceBufferSize
}

// Dump returns the ring contents in chronological order, oldest first,
// skipping unused slots (spec §4.10).
func (t *Trace) Dump() []string {
	out := make([]string, 0, TraceBufferSize)
	for i := 0; i < TraceBufferSize; i++ {
		idx := (t.next + i) % TraceBufferSize
		if t.entries[idx].used {
			out = append(out, t.entries[idx].line)
		}
	}
	return out
}
