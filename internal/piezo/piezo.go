// Package piezo emulates the slave MCU's 1-bit piezo speaker output
// (spec §4.7), grounded on original_source/piezo.c: a ring FIFO of
// +1/0/-1 samples clocked from the slave's sync counter, averaged down
// to the host sample rate by a fixed oversampling factor, with an
// off-tick counter that fades the idle level to silence instead of a
// held DC level.
package piezo

const (
	// SampleFactor is the number of internal (MCU-clock-rate) samples
	// averaged into one host-rate output sample.
	SampleFactor = 14
	fifoSize     = 32768
	// OffTickCount is the number of consecutive low ticks before the
	// output is considered idle and silenced rather than held at -1.
	OffTickCount = 2000
)

// FIFO is a ring buffer of signed 8-bit samples produced by Execute and
// drained by a host audio Sink at the host sample rate.
type FIFO struct {
	buf        [fifoSize]int8
	head, tail int

	syncCatchup uint16
	offTicks    int
	port1Bit    byte // which Port 1 bit carries the speaker drive (0x20 on the hardware)
}

// NewFIFO builds an empty FIFO. portBit is the Port 1 bit mask the
// speaker driver toggles (0x20 on the real hardware).
func NewFIFO(portBit byte) *FIFO {
	return &FIFO{offTicks: OffTickCount, port1Bit: portBit}
}

func (f *FIFO) write(sample int8) {
	next := (f.head + 1) % fifoSize
	if next == f.tail {
		return // full, drop
	}
	f.buf[f.head] = sample
	f.head = next
}

// Read pops the oldest sample, or 0 if the FIFO is empty.
func (f *FIFO) Read() int8 {
	if f.tail == f.head {
		return 0
	}
	s := f.buf[f.tail]
	f.tail = (f.tail + 1) % fifoSize
	return s
}

// Execute advances the FIFO to match syncCounter, sampling port1 on
// every elapsed tick (spec §4.7; original_source/piezo.c's
// piezo_execute loop).
func (f *FIFO) Execute(syncCounter uint16, port1 byte) {
	for f.syncCatchup != syncCounter {
		if port1&f.port1Bit != 0 {
			f.write(1)
			f.offTicks = 0
		} else if f.offTicks >= OffTickCount {
			f.write(0)
		} else {
			f.write(-1)
			f.offTicks++
		}
		f.syncCatchup++
	}
}

// ReadAveraged drains SampleFactor raw samples and returns their mean,
// the shape a host audio callback pulls at its own sample rate
// (original_source/piezo.c's piezo_callback).
func (f *FIFO) ReadAveraged() float32 {
	var sum int16
	for i := 0; i < SampleFactor; i++ {
		sum += int16(f.Read())
	}
	return float32(sum) / float32(SampleFactor)
}
