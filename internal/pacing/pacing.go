// Package pacing throttles the emulator to real time (spec §4.9): the
// HX-20's MCUs run at a fixed, known clock rate, so once the bus has
// advanced further ahead of wall-clock than a threshold's worth of
// cycles, it sleeps off the difference rather than free-running as
// fast as the host allows.
package pacing

import "time"

// ClockHz is the HD6301's machine-cycle rate on the HX-20, the rate the
// sync counter advances at (the same 612900 Hz the cassette and printer
// timing use).
const ClockHz = 612900

// Pacer tracks wall-clock drift against an elapsed cycle count.
type Pacer struct {
	start       time.Time
	started     bool
	lastCounter uint16
	cycles      uint64
}

func NewPacer() *Pacer { return &Pacer{} }

// MaybeWait accounts for the cycles elapsed since the last call (taken
// from the wrapping 16-bit sync counter) and, once the accumulated
// overrun since Pacer was created exceeds threshold cycles' worth of
// wall-clock time, sleeps to catch the host back up to real time.
func (p *Pacer) MaybeWait(syncCounter uint16, threshold uint16) {
	if !p.started {
		p.start = time.Now()
		p.started = true
		p.lastCounter = syncCounter
		return
	}

	delta := syncCounter - p.lastCounter // wraps correctly for uint16
	p.lastCounter = syncCounter
	p.cycles += uint64(delta)

	wantElapsed := time.Duration(p.cycles) * time.Second / ClockHz
	ahead := wantElapsed - time.Since(p.start)
	if ahead < time.Duration(threshold)*time.Second/ClockHz {
		return
	}
	time.Sleep(ahead)
}
