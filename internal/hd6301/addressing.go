package hd6301

// Operand fetch/address-resolution helpers for the six addressing
// modes named in spec §4.1. Every opcode wrapper in opcodes.go composes
// one of these with a shared ALU helper from flags.go, instead of
// inlining address computation per opcode as original_source does.

func fetchImm8(c *MCU, mem *Memory) byte {
	v := mem.Read(c.PC)
	c.PC++
	return v
}

func fetchImm16(c *MCU, mem *Memory) uint16 {
	hi := mem.Read(c.PC)
	lo := mem.Read(c.PC + 1)
	c.PC += 2
	return uint16(hi)<<8 | uint16(lo)
}

func dirAddr(c *MCU, mem *Memory) uint16 {
	a := uint16(mem.Read(c.PC))
	c.PC++
	return a
}

func extAddr(c *MCU, mem *Memory) uint16 { return fetchImm16(c, mem) }

func idxAddr(c *MCU, mem *Memory) uint16 {
	d := uint16(mem.Read(c.PC))
	c.PC++
	return c.X + d
}

// relTarget resolves a relative branch target: a signed 8-bit offset
// added to the PC of the instruction following the operand byte.
func relTarget(c *MCU, mem *Memory) uint16 {
	d := int8(mem.Read(c.PC))
	c.PC++
	return uint16(int32(c.PC) + int32(d))
}

func dirVal(c *MCU, mem *Memory) byte { return mem.Read(dirAddr(c, mem)) }
func extVal(c *MCU, mem *Memory) byte { return mem.Read(extAddr(c, mem)) }
func idxVal(c *MCU, mem *Memory) byte { return mem.Read(idxAddr(c, mem)) }

func dirVal16(c *MCU, mem *Memory) uint16 {
	a := dirAddr(c, mem)
	return uint16(mem.Read(a))<<8 | uint16(mem.Read(a+1))
}
func extVal16(c *MCU, mem *Memory) uint16 {
	a := extAddr(c, mem)
	return uint16(mem.Read(a))<<8 | uint16(mem.Read(a+1))
}
func idxVal16(c *MCU, mem *Memory) uint16 {
	a := idxAddr(c, mem)
	return uint16(mem.Read(a))<<8 | uint16(mem.Read(a+1))
}

func write16(mem *Memory, addr, v uint16) {
	mem.Write(addr, byte(v>>8))
	mem.Write(addr+1, byte(v))
}

// push/pop operate on the descending stack, matching enterInterrupt's
// convention.
func push8(c *MCU, mem *Memory, v byte) {
	mem.Write(c.SP, v)
	c.SP--
}
func pop8(c *MCU, mem *Memory) byte {
	c.SP++
	return mem.Read(c.SP)
}
func push16(c *MCU, mem *Memory, v uint16) {
	push8(c, mem, byte(v))
	push8(c, mem, byte(v>>8))
}
func pop16(c *MCU, mem *Memory) uint16 {
	hi := pop8(c, mem)
	lo := pop8(c, mem)
	return uint16(hi)<<8 | uint16(lo)
}

// Branch predicates (spec §4.1, §8 P2). BRN is always-untaken.
var branchPredicate = map[byte]func(c *MCU) bool{
	0x20: func(c *MCU) bool { return true },                 // BRA
	0x21: func(c *MCU) bool { return false },                // BRN
	0x22: func(c *MCU) bool { return !c.C && !c.Z },         // BHI
	0x23: func(c *MCU) bool { return c.C || c.Z },           // BLS
	0x24: func(c *MCU) bool { return !c.C },                 // BCC/BHS
	0x25: func(c *MCU) bool { return c.C },                  // BCS/BLO
	0x26: func(c *MCU) bool { return !c.Z },                 // BNE
	0x27: func(c *MCU) bool { return c.Z },                  // BEQ
	0x28: func(c *MCU) bool { return !c.V },                 // BVC
	0x29: func(c *MCU) bool { return c.V },                  // BVS
	0x2A: func(c *MCU) bool { return !c.N },                 // BPL
	0x2B: func(c *MCU) bool { return c.N },                  // BMI
	0x2C: func(c *MCU) bool { return (c.N == c.V) },         // BGE
	0x2D: func(c *MCU) bool { return (c.N != c.V) },         // BLT
	0x2E: func(c *MCU) bool { return !c.Z && (c.N == c.V) }, // BGT
	0x2F: func(c *MCU) bool { return c.Z || (c.N != c.V) },  // BLE
}
