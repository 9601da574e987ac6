package hd6301

// Dispatch table construction. opcodeTable mirrors original_source's
// opcode_function[256] and cycleTable mirrors its opcode_cycles[256]
// (spec §4.1: "an implementer must reproduce it bit-for-bit"). Unlike
// the original, which spells out a distinct named function per
// addressing-mode variant of every opcode (hundreds of near-duplicate
// bodies), each entry here is a short closure composing one addressing
// helper from addressing.go with one shared ALU helper from flags.go.
// A nil table slot traps (spec §4.1: "unassigned cells trap").

type opFunc func(c *MCU, mem *Memory)

var opcodeTable [256]opFunc
var cycleTable [256]uint8
var mnemonicTable [256]string

// cycleCosts is original_source/hd6301.c's opcode_cycles[256], copied
// verbatim; it is the authoritative timing table regardless of which
// opcodes above fill each slot.
var cycleCosts = [256]uint8{
	0, 1, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x00-0x0F
	1, 1, 0, 0, 0, 0, 1, 1, 2, 2, 4, 1, 0, 0, 0, 0, // 0x10-0x1F
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, // 0x20-0x2F
	1, 1, 3, 3, 1, 1, 4, 4, 4, 5, 1, 10, 5, 7, 9, 12, // 0x30-0x3F
	1, 0, 0, 1, 1, 0, 1, 1, 1, 1, 1, 0, 1, 1, 0, 1, // 0x40-0x4F
	1, 0, 0, 1, 1, 0, 1, 1, 1, 1, 1, 0, 1, 1, 0, 1, // 0x50-0x5F
	6, 7, 7, 6, 6, 7, 6, 6, 6, 6, 6, 5, 6, 4, 3, 5, // 0x60-0x6F
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 4, 6, 4, 3, 5, // 0x70-0x7F
	2, 2, 2, 3, 2, 2, 2, 0, 2, 2, 2, 2, 3, 5, 3, 0, // 0x80-0x8F
	3, 3, 3, 4, 3, 3, 3, 3, 3, 3, 3, 3, 4, 5, 4, 4, // 0x90-0x9F
	4, 4, 4, 5, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 5, 5, // 0xA0-0xAF
	4, 4, 4, 5, 4, 4, 4, 4, 4, 4, 4, 4, 5, 6, 5, 5, // 0xB0-0xBF
	2, 2, 2, 3, 2, 2, 2, 0, 2, 2, 2, 2, 3, 0, 3, 0, // 0xC0-0xCF
	3, 3, 3, 4, 3, 3, 3, 3, 3, 3, 3, 3, 4, 4, 4, 4, // 0xD0-0xDF
	4, 4, 4, 5, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 5, 5, // 0xE0-0xEF
	4, 4, 4, 5, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 5, 5, // 0xF0-0xFF
}

func op(code byte, mnemonic string, fn opFunc) {
	opcodeTable[code] = fn
	mnemonicTable[code] = mnemonic
}

func init() {
	cycleTable = cycleCosts

	op(0x01, "nop", func(c *MCU, mem *Memory) {})
	op(0x04, "lsrd", func(c *MCU, mem *Memory) { c.SetD(c.lsrOp16(c.D())) })
	op(0x05, "asld", func(c *MCU, mem *Memory) { c.SetD(c.aslOp16(c.D())) })
	op(0x06, "tap", func(c *MCU, mem *Memory) { c.SetCCR(c.A) })
	op(0x07, "tpa", func(c *MCU, mem *Memory) { c.A = c.CCR() })
	op(0x08, "inx", func(c *MCU, mem *Memory) { c.X++; c.Z = c.X == 0 })
	op(0x09, "dex", func(c *MCU, mem *Memory) { c.X--; c.Z = c.X == 0 })
	op(0x0A, "clv", func(c *MCU, mem *Memory) { c.V = false })
	op(0x0B, "sev", func(c *MCU, mem *Memory) { c.V = true })
	op(0x0C, "clc", func(c *MCU, mem *Memory) { c.C = false })
	op(0x0D, "sec", func(c *MCU, mem *Memory) { c.C = true })
	op(0x0E, "cli", func(c *MCU, mem *Memory) { c.I = false })
	op(0x0F, "sei", func(c *MCU, mem *Memory) { c.I = true })
	op(0x10, "sba", func(c *MCU, mem *Memory) { c.A = c.sub8(c.A, c.B, false) })
	op(0x11, "cba", func(c *MCU, mem *Memory) { c.cmp8(c.A, c.B) })
	op(0x16, "tab", func(c *MCU, mem *Memory) { c.B = c.lda8(c.A) })
	op(0x17, "tba", func(c *MCU, mem *Memory) { c.A = c.lda8(c.B) })
	op(0x18, "xgdx", func(c *MCU, mem *Memory) { d := c.D(); c.SetD(c.X); c.X = d })
	op(0x19, "daa", func(c *MCU, mem *Memory) { c.fatal(mem, "DAA not implemented") })
	op(0x1A, "slp", func(c *MCU, mem *Memory) { c.Sleeping = true })
	op(0x1B, "aba", func(c *MCU, mem *Memory) { c.A = c.add8(c.A, c.B, false) })

	for code, pred := range branchPredicate {
		code, pred := code, pred
		op(code, branchMnemonic[code], func(c *MCU, mem *Memory) {
			target := relTarget(c, mem)
			if pred(c) {
				c.PC = target
			}
		})
	}

	op(0x30, "tsx", func(c *MCU, mem *Memory) { c.X = c.SP + 1 })
	op(0x31, "ins", func(c *MCU, mem *Memory) { c.SP++ })
	op(0x32, "pula", func(c *MCU, mem *Memory) { c.A = pop8(c, mem) })
	op(0x33, "pulb", func(c *MCU, mem *Memory) { c.B = pop8(c, mem) })
	op(0x34, "des", func(c *MCU, mem *Memory) { c.SP-- })
	op(0x35, "txs", func(c *MCU, mem *Memory) { c.SP = c.X - 1 })
	op(0x36, "psha", func(c *MCU, mem *Memory) { push8(c, mem, c.A) })
	op(0x37, "pshb", func(c *MCU, mem *Memory) { push8(c, mem, c.B) })
	op(0x38, "pulx", func(c *MCU, mem *Memory) { c.X = pop16(c, mem) })
	op(0x39, "rts", func(c *MCU, mem *Memory) { c.PC = pop16(c, mem) })
	op(0x3A, "abx", func(c *MCU, mem *Memory) { c.X += uint16(c.B) })
	op(0x3B, "rti", func(c *MCU, mem *Memory) {
		c.SetCCR(pop8(c, mem))
		c.B = pop8(c, mem)
		c.A = pop8(c, mem)
		c.X = pop16(c, mem)
		c.PC = pop16(c, mem)
	})
	op(0x3C, "pshx", func(c *MCU, mem *Memory) { push16(c, mem, c.X) })
	op(0x3D, "mul", func(c *MCU, mem *Memory) {
		r := uint16(c.A) * uint16(c.B)
		c.SetD(r)
		c.C = r&0x80 != 0
	})
	op(0x3E, "wai", func(c *MCU, mem *Memory) { c.fatal(mem, "WAI not implemented") })
	op(0x3F, "swi", func(c *MCU, mem *Memory) { c.fatal(mem, "SWI not implemented") })

	registerInherentALU(0x40, "a", func(c *MCU) byte { return c.A }, func(c *MCU, v byte) { c.A = v })
	registerInherentALU(0x50, "b", func(c *MCU) byte { return c.B }, func(c *MCU, v byte) { c.B = v })
	registerIndexedExtendedRMW()
	registerAccumulatorFamily()
	registerBvsDFamily()
	registerAIMOIMEIMTIM()
}

func (c *MCU) fatal(mem *Memory, msg string) {
	if c.OnFatal != nil {
		c.OnFatal(c, msg)
	}
}

func (c *MCU) lsrOp16(v uint16) uint16 {
	c.C = v&0x0001 != 0
	r := v >> 1
	c.N = false
	c.Z = r == 0
	c.V = c.N != c.C
	return r
}
func (c *MCU) aslOp16(v uint16) uint16 {
	c.C = v&0x8000 != 0
	r := v << 1
	c.N = bit15(uint32(r))
	c.Z = r == 0
	c.V = c.N != c.C
	return r
}

var branchMnemonic = map[byte]string{
	0x20: "bra", 0x21: "brn", 0x22: "bhi", 0x23: "bls",
	0x24: "bcc", 0x25: "bcs", 0x26: "bne", 0x27: "beq",
	0x28: "bvc", 0x29: "bvs", 0x2A: "bpl", 0x2B: "bmi",
	0x2C: "bge", 0x2D: "blt", 0x2E: "bgt", 0x2F: "ble",
}

// registerInherentALU fills the 0x40-0x4F (A) / 0x50-0x5F (B) single
// accumulator read-modify-write block.
func registerInherentALU(base byte, accName string, get func(c *MCU) byte, set func(c *MCU, v byte)) {
	op(base+0x00, "neg"+accName, func(c *MCU, mem *Memory) { set(c, c.negOp(get(c))) })
	op(base+0x03, "com"+accName, func(c *MCU, mem *Memory) { set(c, c.comOp(get(c))) })
	op(base+0x04, "lsr"+accName, func(c *MCU, mem *Memory) { set(c, c.lsrOp(get(c))) })
	op(base+0x06, "ror"+accName, func(c *MCU, mem *Memory) { set(c, c.rorOp(get(c))) })
	op(base+0x07, "asr"+accName, func(c *MCU, mem *Memory) { set(c, c.asrOp(get(c))) })
	op(base+0x08, "asl"+accName, func(c *MCU, mem *Memory) { set(c, c.aslOp(get(c))) })
	op(base+0x09, "rol"+accName, func(c *MCU, mem *Memory) { set(c, c.rolOp(get(c))) })
	op(base+0x0A, "dec"+accName, func(c *MCU, mem *Memory) { set(c, c.decOp(get(c))) })
	op(base+0x0C, "inc"+accName, func(c *MCU, mem *Memory) { set(c, c.incOp(get(c))) })
	op(base+0x0D, "tst"+accName, func(c *MCU, mem *Memory) { c.tstOp(get(c)) })
	op(base+0x0F, "clr"+accName, func(c *MCU, mem *Memory) { set(c, c.clrOp()) })
}

// registerIndexedExtendedRMW fills 0x60-0x6F (indexed) and 0x70-0x7F
// (extended) read-modify-write operations plus JMP, sharing one set of
// ALU calls parameterised only by the address-resolution function.
func registerIndexedExtendedRMW() {
	modes := []struct {
		base    byte
		suffix  string
		addr    func(c *MCU, mem *Memory) uint16
	}{
		{0x60, "idx", idxAddr},
		{0x70, "ext", extAddr},
	}
	for _, m := range modes {
		addr := m.addr
		op(m.base+0x00, "neg"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); mem.Write(a, c.negOp(mem.Read(a))) })
		op(m.base+0x03, "com"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); mem.Write(a, c.comOp(mem.Read(a))) })
		op(m.base+0x04, "lsr"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); mem.Write(a, c.lsrOp(mem.Read(a))) })
		op(m.base+0x06, "ror"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); mem.Write(a, c.rorOp(mem.Read(a))) })
		op(m.base+0x07, "asr"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); mem.Write(a, c.asrOp(mem.Read(a))) })
		op(m.base+0x08, "asl"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); mem.Write(a, c.aslOp(mem.Read(a))) })
		op(m.base+0x09, "rol"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); mem.Write(a, c.rolOp(mem.Read(a))) })
		op(m.base+0x0A, "dec"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); mem.Write(a, c.decOp(mem.Read(a))) })
		op(m.base+0x0C, "inc"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); mem.Write(a, c.incOp(mem.Read(a))) })
		op(m.base+0x0D, "tst"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); c.tstOp(mem.Read(a)) })
		op(m.base+0x0E, "jmp"+m.suffix, func(c *MCU, mem *Memory) { c.PC = addr(c, mem) })
		op(m.base+0x0F, "clr"+m.suffix, func(c *MCU, mem *Memory) { a := addr(c, mem); mem.Write(a, c.clrOp()) })
	}
}

// registerAccumulatorFamily fills the 0x80-0xBF (accumulator A) and
// 0xC0-0xFF (accumulator B) eight-bit immediate/direct/indexed/extended
// blocks, which share an identical per-slot shape (spec §4.1 table).
func registerAccumulatorFamily() {
	type acc struct {
		name string
		get  func(c *MCU) byte
		set  func(c *MCU, v byte)
		base byte
	}
	accs := []acc{
		{"a", func(c *MCU) byte { return c.A }, func(c *MCU, v byte) { c.A = v }, 0x80},
		{"b", func(c *MCU) byte { return c.B }, func(c *MCU, v byte) { c.B = v }, 0xC0},
	}
	type mode struct {
		suffix string
		offset byte
		fetch  func(c *MCU, mem *Memory) byte
		addr   func(c *MCU, mem *Memory) uint16
		isImm  bool
	}
	modes := []mode{
		{"imm", 0x00, fetchImm8, nil, true},
		{"dir", 0x10, dirVal, dirAddr, false},
		{"idx", 0x20, idxVal, idxAddr, false},
		{"ext", 0x30, extVal, extAddr, false},
	}
	for _, a := range accs {
		a := a
		for _, m := range modes {
			m := m
			fetch := m.fetch
			op(a.base+m.offset+0x00, "sub"+a.name+m.suffix, func(c *MCU, mem *Memory) { v := fetch(c, mem); a.set(c, c.sub8(a.get(c), v, false)) })
			op(a.base+m.offset+0x01, "cmp"+a.name+m.suffix, func(c *MCU, mem *Memory) { v := fetch(c, mem); c.cmp8(a.get(c), v) })
			op(a.base+m.offset+0x02, "sbc"+a.name+m.suffix, func(c *MCU, mem *Memory) { v := fetch(c, mem); a.set(c, c.sub8(a.get(c), v, c.C)) })
			op(a.base+m.offset+0x04, "and"+a.name+m.suffix, func(c *MCU, mem *Memory) { v := fetch(c, mem); a.set(c, c.and8(a.get(c), v)) })
			op(a.base+m.offset+0x05, "bit"+a.name+m.suffix, func(c *MCU, mem *Memory) { v := fetch(c, mem); c.bit8(a.get(c), v) })
			op(a.base+m.offset+0x06, "lda"+a.name+m.suffix, func(c *MCU, mem *Memory) { v := fetch(c, mem); a.set(c, c.lda8(v)) })
			if !m.isImm {
				addr := m.addr
				op(a.base+m.offset+0x07, "sta"+a.name+m.suffix, func(c *MCU, mem *Memory) { mem.Write(addr(c, mem), c.lda8(a.get(c))) })
			}
			op(a.base+m.offset+0x08, "eor"+a.name+m.suffix, func(c *MCU, mem *Memory) { v := fetch(c, mem); a.set(c, c.eor8(a.get(c), v)) })
			op(a.base+m.offset+0x09, "adc"+a.name+m.suffix, func(c *MCU, mem *Memory) { v := fetch(c, mem); a.set(c, c.add8(a.get(c), v, c.C)) })
			op(a.base+m.offset+0x0A, "ora"+a.name+m.suffix, func(c *MCU, mem *Memory) { v := fetch(c, mem); a.set(c, c.ora8(a.get(c), v)) })
			op(a.base+m.offset+0x0B, "add"+a.name+m.suffix, func(c *MCU, mem *Memory) { v := fetch(c, mem); a.set(c, c.add8(a.get(c), v, false)) })
		}
	}
}

// registerBvsDFamily fills the 16-bit/index/stack-pointer slots that
// differ between the A-block (CPX, BSR/JSR, LDS, STS) and the B-block
// (ADDD, LDD/STD, LDX/STX) at offsets 0x0C-0x0F of each addressing mode.
func registerBvsDFamily() {
	fetch16 := func(imm, dirv, idxv, extv func(c *MCU, mem *Memory) uint16) [4]func(c *MCU, mem *Memory) uint16 {
		return [4]func(c *MCU, mem *Memory) uint16{imm, dirv, idxv, extv}
	}
	addr16 := [4]func(c *MCU, mem *Memory) uint16{nil, dirAddr, idxAddr, extAddr}
	bases := [4]byte{0x80, 0x90, 0xA0, 0xB0}
	suffixes := [4]string{"imm", "dir", "idx", "ext"}

	// A-block: SUBD (0x83/93/A3/B3), CPX (0x8C/9C/AC/BC), BSR(0x8D)/
	// JSR(0x9D/AD/BD), LDS (0x8E-BE), STS (0x9F/AF/BF).
	subdFetch := fetch16(fetchImm16, dirVal16, idxVal16, extVal16)
	for i := 0; i < 4; i++ {
		i := i
		op(bases[i]+0x03, "subd"+suffixes[i], func(c *MCU, mem *Memory) { v := subdFetch[i](c, mem); c.SetD(c.sub16(c.D(), v)) })
		op(bases[i]+0x0C, "cpx"+suffixes[i], func(c *MCU, mem *Memory) { v := subdFetch[i](c, mem); c.cpx16(c.X, v) })
		op(bases[i]+0x0E, "lds"+suffixes[i], func(c *MCU, mem *Memory) { v := subdFetch[i](c, mem); c.SP = c.ld16(v) })
		if i > 0 {
			a := addr16[i]
			op(bases[i]+0x0F, "sts"+suffixes[i], func(c *MCU, mem *Memory) { write16(mem, a(c, mem), c.ld16(c.SP)) })
		}
	}
	op(0x8D, "bsr", func(c *MCU, mem *Memory) {
		target := relTarget(c, mem)
		push16(c, mem, c.PC)
		c.PC = target
	})
	op(0x9D, "jsr", func(c *MCU, mem *Memory) { a := dirAddr(c, mem); push16(c, mem, c.PC); c.PC = a })
	op(0xAD, "jsr", func(c *MCU, mem *Memory) { a := idxAddr(c, mem); push16(c, mem, c.PC); c.PC = a })
	op(0xBD, "jsr", func(c *MCU, mem *Memory) { a := extAddr(c, mem); push16(c, mem, c.PC); c.PC = a })

	// B-block: ADDD (0xC3-F3), LDD/STD (0xCC-FC / D/D/D), LDX/STX
	// (0xCE-FE / F/F/F).
	bBases := [4]byte{0xC0, 0xD0, 0xE0, 0xF0}
	for i := 0; i < 4; i++ {
		i := i
		addFetch := fetch16(fetchImm16, dirVal16, idxVal16, extVal16)[i]
		op(bBases[i]+0x03, "addd"+suffixes[i], func(c *MCU, mem *Memory) { v := addFetch(c, mem); c.SetD(c.add16(c.D(), v)) })
		op(bBases[i]+0x0C, "ldd"+suffixes[i], func(c *MCU, mem *Memory) { v := addFetch(c, mem); c.SetD(c.ld16(v)) })
		op(bBases[i]+0x0E, "ldx"+suffixes[i], func(c *MCU, mem *Memory) { v := addFetch(c, mem); c.X = c.ld16(v) })
		if i > 0 {
			a := addr16[i]
			op(bBases[i]+0x0D, "std"+suffixes[i], func(c *MCU, mem *Memory) { write16(mem, a(c, mem), c.ld16(c.D())) })
			op(bBases[i]+0x0F, "stx"+suffixes[i], func(c *MCU, mem *Memory) { write16(mem, a(c, mem), c.ld16(c.X)) })
		}
	}
}

// registerAIMOIMEIMTIM fills the HD6301-specific immediate-and-direct /
// immediate-and-indexed logic-on-memory opcodes: AIM (AND), OIM (OR),
// EIM (XOR), TIM (test), each taking an immediate mask byte followed by
// the addressed byte.
func registerAIMOIMEIMTIM() {
	type entry struct {
		idxCode, dirCode byte
		mnemonic         string
		apply            func(c *MCU, mask, v byte) byte
		storesResult     bool
	}
	entries := []entry{
		{0x61, 0x71, "aim", func(c *MCU, mask, v byte) byte { return c.and8(v, mask) }, true},
		{0x62, 0x72, "oim", func(c *MCU, mask, v byte) byte { return c.ora8(v, mask) }, true},
		{0x65, 0x75, "eim", func(c *MCU, mask, v byte) byte { return c.eor8(v, mask) }, true},
		{0x6B, 0x7B, "tim", func(c *MCU, mask, v byte) byte { c.and8(v, mask); return v }, false},
	}
	for _, e := range entries {
		e := e
		op(e.idxCode, e.mnemonic+"idx", func(c *MCU, mem *Memory) {
			mask := fetchImm8(c, mem)
			a := idxAddr(c, mem)
			r := e.apply(c, mask, mem.Read(a))
			if e.storesResult {
				mem.Write(a, r)
			}
		})
		op(e.dirCode, e.mnemonic+"dir", func(c *MCU, mem *Memory) {
			mask := fetchImm8(c, mem)
			a := dirAddr(c, mem)
			r := e.apply(c, mask, mem.Read(a))
			if e.storesResult {
				mem.Write(a, r)
			}
		})
	}
}
