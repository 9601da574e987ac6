package hd6301

import "time"

// LCDSink receives the two entry points of the LCD boundary (spec §6).
// The rendering side (eight controllers over a 120x32 virtual surface)
// lives with an external collaborator; this package only forwards bytes.
type LCDSink interface {
	Select(value byte)
	Data(value byte)
}

// KeyboardGates exposes the row-input side of the 8x2 keyboard matrix
// boundary (spec §6). Gate A carries rows 0-7, Gate B carries rows 8, 9,
// PWSW and, in bit 7, the LCD serial pixel readback.
type KeyboardGates interface {
	GateA() byte
	GateB() byte
}

// Clock supplies wall-clock time for the RTC read-through window. Tests
// substitute a fixed time; production wires time.Now.
type Clock func() time.Time

// Memory is the flat 64 KiB address space owned by one MCU. Reads and
// writes to the register file (0x00-0x14) route through the owning MCU
// so that its two-step arm/clear protocols and port DDR gating apply;
// everything else is either a plain byte array, the RTC window, or (on
// the master) the keyboard/LCD windows.
//
// original_source/mem.c routes register accesses as address < 0x20;
// 0x15-0x1F are unused/reserved register-file cells the HD6301 never
// assigns, so routing stops at RegRAMCtrl (0x14) instead — behaviorally
// identical, since no code ever reads or writes those addresses.
type Memory struct {
	RAM      [65536]byte
	RAMMax   uint16 // writes above this address are ignored; it addresses ROM
	IsMaster bool
	owner    *MCU

	LCD      LCDSink
	Keyboard KeyboardGates
	Now      Clock
}

// NewMemory constructs a Memory for one MCU. ramMax must be one of
// RAMMaxDefault/RAMMaxExpansion on the master, or 0 on the slave (spec
// §3: "only registers and internal RAM are writable").
func NewMemory(isMaster bool, ramMax uint16) *Memory {
	return &Memory{IsMaster: isMaster, RAMMax: ramMax, Now: time.Now}
}

func (m *Memory) bind(cpu *MCU) { m.owner = cpu }

// Read returns the byte at address, applying register read-notify side
// effects and the RTC/keyboard read-through on the master.
func (m *Memory) Read(address uint16) byte {
	if address <= RegRAMCtrl {
		if m.owner != nil {
			m.owner.registerReadNotify(m, address)
		}
		return m.RAM[address]
	}
	if m.IsMaster {
		switch {
		case address == MasterIOKRTNGateA:
			if m.Keyboard != nil {
				return m.Keyboard.GateA()
			}
			return 0xFF
		case address == MasterIOKRTNGateB:
			if m.Keyboard != nil {
				return m.Keyboard.GateB()
			}
			return 0xFF
		case address >= MasterRTCSeconds && address <= MasterRTCRegD:
			return m.readRTC(address)
		}
	}
	return m.RAM[address]
}

// Write stores a byte at address, applying register write dispatch and
// the keyboard/LCD forwarding windows on the master. Writes above
// RAMMax are dropped (they address ROM, spec §4.2).
func (m *Memory) Write(address uint16, value byte) {
	if address <= RegRAMCtrl {
		if m.owner != nil && m.owner.registerWrite(m, address, value) {
			return
		}
		m.RAM[address] = value
		return
	}
	if m.IsMaster {
		switch address {
		case MasterIOLCDData:
			if m.LCD != nil {
				m.LCD.Data(value)
			}
			return
		case MasterIOPort26:
			// Mirrors into its feedback address, not into itself.
			m.RAM[MasterIOPort26FB] = value
			if m.LCD != nil {
				m.LCD.Select(value)
			}
			return
		}
	}
	if address > m.RAMMax {
		return
	}
	m.RAM[address] = value
}

// ReadArea copies size bytes starting at address, used by ROM loaders
// and the debugger's memory dump.
func (m *Memory) ReadArea(address uint16, out []byte) {
	for i := range out {
		out[i] = m.RAM[int(address)+i]
	}
}

// WriteArea stages raw bytes directly into backing RAM, bypassing the
// write-protection above RAMMax — used by ROM/autoload loaders, which
// are explicitly allowed to write ROM addresses (spec §3: "everything
// above ram_max is ... not writable by the program but is writable by
// loaders").
func (m *Memory) WriteArea(address uint16, data []byte) {
	for i, b := range data {
		m.RAM[int(address)+i] = b
	}
}

// ScanLine returns the keyboard scan line currently selected via the
// KSC_GATE port. It is a plain RAM cell; the provider polls it rather
// than being write-notified (original_source/mem.c never special-cases
// this address on write).
func (m *Memory) ScanLine() byte { return m.RAM[MasterIOKSCGate] }

// PortDataWrite applies a data-direction-register-gated write: bits
// whose DDR is 0 are inputs and keep their previous value (spec §4.2).
func (m *Memory) PortDataWrite(portAddr, ddrAddr uint16, value byte) {
	ddr := m.RAM[ddrAddr]
	prev := m.RAM[portAddr]
	m.RAM[portAddr] = (value & ddr) | (prev &^ ddr)
}
