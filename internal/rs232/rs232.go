// Package rs232 emulates the HX-20's RS-232 bit-banged serial
// interface (spec §4.4): the master MCU drives save framing on Port 2
// bit 1, sampled whenever the master flags P21 as driven, and the
// slave MCU's Port 2 bit 0 carries the replayed load line, clocked one
// bit per 512-tick slot (about 1200 baud).
// Grounded on original_source/rs232.c.
package rs232

import (
	"bufio"
	"fmt"
	"os"

	"github.com/hx20emu/hx20/internal/hd6301"
)

const (
	portSaveBit = 0x02 // master Port 2 bit 1
	portLoadBit = 0x01 // slave Port 2 bit 0
	eofByte     = 0x1A
	baudSlot    = 512
)

// Link holds the independent save and load bit-banging state machines.
type Link struct {
	save *saveState
	load *loadState

	syncCatchup uint16
}

func NewLink() *Link { return &Link{} }

type saveState struct {
	w     *bufio.Writer
	f     *os.File
	state int
	byte  int
}

// StartSave creates (or truncates) filename to receive captured RS-232
// bytes.
func (l *Link) StartSave(filename string) error {
	if l.save != nil {
		return fmt.Errorf("rs232: save already in progress")
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	l.save = &saveState{w: bufio.NewWriter(f), f: f}
	return nil
}

type loadState struct {
	r          *bufio.Reader
	f          *os.File
	bitState   int // -1 = just-opened init state
	byteValue  int
	eofPending bool
	syncCount  uint16
}

// StartLoad opens filename for byte-at-a-time replay onto the load
// line.
func (l *Link) StartLoad(filename string) error {
	if l.load != nil {
		return fmt.Errorf("rs232: load already in progress")
	}
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	// original_source/rs232.c keeps sync_counter primed to 512 whenever
	// no load is in progress, so the first tick after a load starts
	// fires immediately instead of waiting out a full baud period.
	l.load = &loadState{r: bufio.NewReader(f), f: f, bitState: -1, syncCount: baudSlot}
	return nil
}

// Execute advances both state machines to match the slave's
// sync_counter, reading the master's Port 2 save bit and writing the
// slave's Port 2 load bit (spec §4.4; original_source/rs232.c's
// rs232_execute loop).
func (l *Link) Execute(syncCounter uint16, master *hd6301.MCU, masterMem *hd6301.Memory, slaveMem *hd6301.Memory) {
	for l.syncCatchup != syncCounter {
		l.executeSave(master, masterMem)
		l.executeLoad(slaveMem)
		l.syncCatchup++
	}
}

func (l *Link) executeSave(master *hd6301.MCU, masterMem *hd6301.Memory) {
	if l.save == nil || !master.P21Set {
		return
	}
	bit := masterMem.RAM[hd6301.RegPort2]&portSaveBit != 0

	s := l.save
	switch {
	case s.state == 0:
		if !bit {
			s.byte = 0
			s.state++
		}
	case s.state >= 1 && s.state <= 8:
		if bit {
			s.byte |= 1 << (s.state - 1)
		}
		s.state++
	case s.state == 9:
		if s.byte == eofByte {
			s.w.Flush()
			s.f.Close()
			l.save = nil
		} else {
			s.w.WriteByte(byte(s.byte))
		}
		if l.save != nil {
			l.save.state = 0
		}
	}
	master.P21Set = false
}

func (l *Link) executeLoad(slaveMem *hd6301.Memory) {
	if l.load == nil {
		return
	}
	ld := l.load
	ld.syncCount++
	if ld.syncCount <= baudSlot {
		return
	}
	ld.syncCount = 0

	switch {
	case ld.bitState == -1:
		slaveMem.RAM[hd6301.RegPort2] |= portLoadBit
	case ld.bitState == 0:
		b, err := ld.r.ReadByte()
		if err != nil {
			ld.eofPending = true
			ld.byteValue = eofByte
		} else {
			ld.byteValue = int(b)
		}
		slaveMem.RAM[hd6301.RegPort2] &^= portLoadBit
	case ld.bitState >= 1 && ld.bitState <= 8:
		if (ld.byteValue>>(ld.bitState-1))&1 != 0 {
			slaveMem.RAM[hd6301.RegPort2] |= portLoadBit
		} else {
			slaveMem.RAM[hd6301.RegPort2] &^= portLoadBit
		}
	case ld.bitState == 9 || ld.bitState == 10:
		slaveMem.RAM[hd6301.RegPort2] |= portLoadBit
	}

	ld.bitState++
	if ld.bitState >= 11 {
		ld.bitState = 0
		if ld.eofPending {
			ld.f.Close()
			l.load = nil
		}
	}
}
