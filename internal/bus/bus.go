// Package bus coordinates the two HD6301 cores and every peripheral
// hanging off them into the single macro-tick loop spec §2/§4.3
// describes: step master, step slave, exchange one SCI byte in each
// direction (either MCU-to-MCU over the internal link or master-to-
// external-TTY when Port 2 bit 2 selects the external path), tick every
// peripheral against the slave's free-running sync counter, mirror the
// slave's printer-busy line back to the master, and apply wall-clock
// pacing unless running in warp mode. Grounded on the teacher's
// machine_bus.go for its overall shape (a single struct gluing CPU and
// peripherals with an atomic panic/break flag), generalized from a
// 32-bit memory-mapped bus to this machine's two-MCU serial topology.
package bus

import (
	"fmt"
	"sync/atomic"

	"github.com/hx20emu/hx20/internal/cassette"
	"github.com/hx20emu/hx20/internal/hd6301"
	"github.com/hx20emu/hx20/internal/pacing"
	"github.com/hx20emu/hx20/internal/piezo"
	"github.com/hx20emu/hx20/internal/printer"
	"github.com/hx20emu/hx20/internal/rs232"
	"github.com/hx20emu/hx20/internal/serialbridge"
	"github.com/hx20emu/hx20/internal/trace"
)

const (
	// masterPort2SCISelect is P22: 1 selects the internal master<->slave
	// SCI link, 0 selects the external TTY bridge (spec §4.3/§4.8).
	masterPort2SCISelect = 0x04

	// slavePort3BusyBit (P34) mirrors to masterPort1BusyBit (P12) every
	// macro-tick, carrying the printer's busy/ready status across the
	// serial channel's physical wiring (spec §2).
	slavePort3BusyBit = 0x10
	masterPort1BusyBit = 0x04

	// pacingThreshold is how many cycles the emulation may run ahead of
	// wall-clock time before the bus sleeps to match it, unless running
	// in warp mode (spec §4.9).
	pacingThreshold = 8192
)

// pacer is the narrow interface Machine needs from a wall-clock pacer
// (spec §4.9), satisfied by *pacing.Pacer. Kept separate so tests can
// substitute a fake that records which counter it was fed.
type pacer interface {
	MaybeWait(syncCounter uint16, threshold uint16)
}

// Machine owns both cores, their memories, and every peripheral wired
// to the slave's serial/port lines.
type Machine struct {
	Master    *hd6301.MCU
	MasterMem *hd6301.Memory
	Slave     *hd6301.MCU
	SlaveMem  *hd6301.Memory

	RS232    *rs232.Link
	Cassette *cassette.Deck
	Printer  *printer.Printer
	Piezo    *piezo.FIFO
	External *serialbridge.Bridge // nil when no --tty was given

	SCITrace *trace.SCIRing
	Pacer    pacer

	Warp bool

	// panicked and panicMsg carry a fatal condition raised by either core
	// (spec §7): DAA/WAI/SWI, or a debugger-requested break. The message
	// accompanies it for the debugger prompt.
	panicked atomic.Bool
	panicMsg atomic.Value // string

	// onTick, if set, is invoked once per macro-tick after both cores
	// have stepped; used by autoload/auto-key injection.
	onTick func(m *Machine)
}

// New wires a Machine together. Both cores must already be reset.
func New(master, slave *hd6301.MCU, masterMem, slaveMem *hd6301.Memory) *Machine {
	m := &Machine{
		Master:    master,
		MasterMem: masterMem,
		Slave:     slave,
		SlaveMem:  slaveMem,
		RS232:     rs232.NewLink(),
		Cassette:  cassette.NewDeck(),
		Piezo:     piezo.NewFIFO(0x20),
		SCITrace:  trace.NewSCIRing(),
		Pacer:     pacing.NewPacer(),
	}
	master.OnFatal = m.fatal
	slave.OnFatal = m.fatal
	return m
}

// OnTick registers a callback invoked once per macro-tick, after the
// peripherals have all been serviced (spec §6: autoload/auto-key
// injection hooks in here).
func (m *Machine) OnTick(fn func(*Machine)) { m.onTick = fn }

func (m *Machine) fatal(cpu *hd6301.MCU, msg string) {
	which := "master"
	if cpu == m.Slave {
		which = "slave"
	}
	m.panicMsg.Store(fmt.Sprintf("%s: %s @ PC=%04x", which, msg, cpu.PC))
	m.panicked.Store(true)
}

// Panicked reports whether a fatal condition is outstanding (spec §7).
func (m *Machine) Panicked() bool { return m.panicked.Load() }

// PanicMessage returns the most recent fatal message, or "" if none.
func (m *Machine) PanicMessage() string {
	if v := m.panicMsg.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// Break requests a transition to the debugger on the next macro-tick
// boundary, the same path a fatal panic takes (spec §7).
func (m *Machine) Break(reason string) {
	m.panicMsg.Store(reason)
	m.panicked.Store(true)
}

// ClearPanic resumes execution after the debugger has handled a break
// or fatal condition.
func (m *Machine) ClearPanic() {
	m.panicked.Store(false)
	m.panicMsg.Store("")
}

// Tick runs exactly one macro-tick: one master instruction, one slave
// instruction, SCI byte exchange, peripheral service, busy-line mirror,
// the tick callback, and pacing. It returns false once a fatal/break
// condition is pending so the caller can enter the debugger.
func (m *Machine) Tick() bool {
	if m.panicked.Load() {
		return false
	}

	m.Master.Step(m.MasterMem)
	m.Slave.Step(m.SlaveMem)

	m.exchangeSCI()

	m.RS232.Execute(m.Slave.SyncCounter, m.Master, m.MasterMem, m.SlaveMem)
	m.Cassette.Execute(m.Slave.SyncCounter, &m.SlaveMem.RAM[hd6301.RegPort3])
	if m.Printer != nil {
		m.Printer.Execute(m.Slave.SyncCounter, &m.SlaveMem.RAM[hd6301.RegPort1])
	}
	m.Piezo.Execute(m.Slave.SyncCounter, m.SlaveMem.RAM[hd6301.RegPort1])
	if m.External != nil {
		m.External.Execute(m.Master, m.MasterMem)
	}

	m.mirrorBusyLine()

	if m.onTick != nil {
		m.onTick(m)
	}

	if !m.Warp {
		m.Pacer.MaybeWait(m.Master.SyncCounter, pacingThreshold)
	}

	return !m.panicked.Load()
}

// exchangeSCI moves a pending transmit byte from whichever core has one
// staged into the other core's receiver, when the master's P22 selects
// the internal link (spec §4.3). When P22 selects the external path,
// the master's transmit shift register is left for the serial bridge
// to drain instead.
func (m *Machine) exchangeSCI() {
	internal := m.MasterMem.RAM[hd6301.RegPort2]&masterPort2SCISelect != 0

	if m.Slave.TxShiftRegister >= 0 {
		m.SCITrace.Add(trace.DirSlaveToMaster, byte(m.Slave.TxShiftRegister), m.Slave.Counter)
		m.Master.SCIReceive(m.MasterMem, byte(m.Slave.TxShiftRegister))
		m.Slave.TxShiftRegister = -1
	}

	if internal && m.Master.TxShiftRegister >= 0 {
		m.SCITrace.Add(trace.DirMasterToSlave, byte(m.Master.TxShiftRegister), m.Master.Counter)
		m.Slave.SCIReceive(m.SlaveMem, byte(m.Master.TxShiftRegister))
		m.Master.TxShiftRegister = -1
	}
}

// mirrorBusyLine reflects the slave's printer-busy output (P34) onto
// the master's input (P12), the two MCUs' only direct port-level
// coupling besides the SCI link (spec §2).
func (m *Machine) mirrorBusyLine() {
	busy := m.SlaveMem.RAM[hd6301.RegPort3]&slavePort3BusyBit != 0
	if busy {
		m.MasterMem.RAM[hd6301.RegPort1] |= masterPort1BusyBit
	} else {
		m.MasterMem.RAM[hd6301.RegPort1] &^= masterPort1BusyBit
	}
}
