// Package debugger implements the interactive break prompt (spec §7):
// a line-oriented REPL that dumps CPU/port/trace state and can load or
// save RS-232 and cassette files while the machine is halted. Grounded
// on original_source/debugger.c's command table, translated from its
// strtok-based single-shot parser to bufio.Scanner plus strings.Fields.
package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hx20emu/hx20/internal/bus"
	"github.com/hx20emu/hx20/internal/hd6301"
	"github.com/hx20emu/hx20/internal/hostfile"
)

// workingDir is where debugger load/save commands are sandboxed to,
// matching the teacher's file_io.go base-directory guard.
const workingDir = "."

// Debugger owns the prompt's I/O streams; the running machine is passed
// to Run, and it has no state of its own between sessions.
type Debugger struct {
	in  *bufio.Scanner
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Debugger {
	return &Debugger{in: bufio.NewScanner(in), out: out}
}

// Run prompts and executes commands until one returns control to the
// machine loop. step reports whether execution should single-step one
// macro-tick before returning here again (the "s" command), as opposed
// to running free until the next break ("c"). quit reports that the
// operator typed "q" (or closed stdin): original_source/debugger.c
// calls exit(EXIT_SUCCESS) directly from its command loop, so here the
// machine loop is expected to terminate the process with a 0 exit code
// instead of resuming (spec §7).
func (d *Debugger) Run(m *bus.Machine) (step, quit bool) {
	fmt.Fprintln(d.out)
	for {
		fmt.Fprintf(d.out, "%04x:%04x> ", m.Master.Counter, m.Master.PC)

		if !d.in.Scan() {
			return false, true
		}
		fields := strings.Fields(d.in.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd[0] {
		case 'q':
			return false, true
		case '?', 'h':
			d.help()
		case 'c':
			return false, false
		case 's':
			return true, false
		case 'w':
			m.Warp = !m.Warp
			if m.Warp {
				fmt.Fprintln(d.out, "Warp Mode: On")
			} else {
				fmt.Fprintln(d.out, "Warp Mode: Off")
			}
		case 't':
			fmt.Fprintln(d.out, "Master Trace:")
			d.dumpTrace(m.Master.Trace)
		case 'r':
			fmt.Fprintln(d.out, "Slave Trace:")
			d.dumpTrace(m.Slave.Trace)
		case 'm':
			fmt.Fprintln(d.out, "Master RAM:")
			dumpRAM(d.out, m.MasterMem, 0x0000, 0x7FFF)
		case 'n':
			fmt.Fprintln(d.out, "Slave RAM:")
			dumpRAM(d.out, m.SlaveMem, 0x0000, 0x01FF)
		case 'p':
			fmt.Fprintln(d.out, "Master Ports:")
			dumpPorts(d.out, m.MasterMem)
		case 'o':
			fmt.Fprintln(d.out, "Slave Ports:")
			dumpPorts(d.out, m.SlaveMem)
		case 'x':
			dumpMCU(d.out, m.Master)
			dumpMCU(d.out, m.Slave)
		case 'v':
			dumpVariables(d.out, m.MasterMem)
		case 'u':
			for _, line := range m.SCITrace.Dump() {
				fmt.Fprintln(d.out, line)
			}
		case 'l':
			d.withSandboxedPath(args, "Specify filename!", func(path string) error {
				if err := m.RS232.StartLoad(path); err != nil {
					return fmt.Errorf("Failed to load file into RS-232! %w", err)
				}
				return nil
			})
		case 'k':
			d.withSandboxedPath(args, "Specify filename!", func(path string) error {
				if err := m.RS232.StartSave(path); err != nil {
					return fmt.Errorf("Failed to save file from RS-232! %w", err)
				}
				return nil
			})
		case 'g':
			d.withSandboxedPath(args, "Specify filename!", func(path string) error {
				if err := m.Cassette.StartLoad(path); err != nil {
					return fmt.Errorf("Failed to load cassette file! %w", err)
				}
				return nil
			})
		case 'f':
			d.withSandboxedPath(args, "Specify filename!", func(path string) error {
				if err := m.Cassette.StartSave(path); err != nil {
					return fmt.Errorf("Failed to save cassette file! %w", err)
				}
				return nil
			})
		}
	}
}

// withSandboxedPath resolves args[0] under workingDir before calling
// fn, so debugger-driven load/save commands can't escape the directory
// the emulator was started in.
func (d *Debugger) withSandboxedPath(args []string, missingMsg string, fn func(path string) error) {
	if len(args) < 1 {
		fmt.Fprintln(d.out, missingMsg)
		return
	}
	path, err := hostfile.SafeJoin(workingDir, args[0])
	if err != nil {
		fmt.Fprintln(d.out, err)
		return
	}
	if err := fn(path); err != nil {
		fmt.Fprintln(d.out, err)
	}
}

func (d *Debugger) help() {
	fmt.Fprintln(d.out, "Debugger Commands:")
	fmt.Fprintln(d.out, "  q        - Quit")
	fmt.Fprintln(d.out, "  ? | h    - Help")
	fmt.Fprintln(d.out, "  c        - Continue")
	fmt.Fprintln(d.out, "  s        - Step")
	fmt.Fprintln(d.out, "  w        - Warp Mode Toggle")
	fmt.Fprintln(d.out, "  t        - Master MCU Trace")
	fmt.Fprintln(d.out, "  r        - Slave MCU Trace")
	fmt.Fprintln(d.out, "  m        - Master MCU RAM")
	fmt.Fprintln(d.out, "  n        - Slave MCU RAM")
	fmt.Fprintln(d.out, "  p        - Master MCU Ports")
	fmt.Fprintln(d.out, "  o        - Slave MCU Ports")
	fmt.Fprintln(d.out, "  x        - MCU Internals")
	fmt.Fprintln(d.out, "  v        - Variables")
	fmt.Fprintln(d.out, "  u        - SCI Trace")
	fmt.Fprintln(d.out, "  l <file> - Load file into RS-232")
	fmt.Fprintln(d.out, "  k <file> - Save file from RS-232")
	fmt.Fprintln(d.out, "  g <file> - Load file into External Cassette In")
	fmt.Fprintln(d.out, "  f <file> - Save file from External Cassette Out")
}

func (d *Debugger) dumpTrace(t *hd6301.Trace) {
	if t == nil {
		return
	}
	for _, line := range t.Dump() {
		fmt.Fprintln(d.out, line)
	}
}

func dumpRAM(w io.Writer, mem *hd6301.Memory, lo, hi int) {
	const perLine = 16
	for addr := lo; addr <= hi; addr += perLine {
		fmt.Fprintf(w, "%04x:", addr)
		end := addr + perLine
		if end > hi+1 {
			end = hi + 1
		}
		for a := addr; a < end; a++ {
			fmt.Fprintf(w, " %02x", mem.RAM[a])
		}
		fmt.Fprintln(w)
	}
}

func bit(v byte, n uint) byte { return (v >> n) & 1 }

func dumpPortSet(w io.Writer, no int, direction, value byte) {
	for i := uint(0); i < 8; i++ {
		in, out := byte(' '), byte(' ')
		if bit(direction, i) == 0 {
			in = '<'
		} else {
			out = '>'
		}
		fmt.Fprintf(w, "  P%d%d %c--%c %d\n", no, i, in, out, bit(value, i))
	}
}

func dumpPorts(w io.Writer, mem *hd6301.Memory) {
	dumpPortSet(w, 1, mem.RAM[hd6301.RegDDR1], mem.RAM[hd6301.RegPort1])
	dumpPortSet(w, 2, mem.RAM[hd6301.RegDDR2], mem.RAM[hd6301.RegPort2])
	dumpPortSet(w, 3, mem.RAM[hd6301.RegDDR3], mem.RAM[hd6301.RegPort3])
	dumpPortSet(w, 4, mem.RAM[hd6301.RegDDR4], mem.RAM[hd6301.RegPort4])

	tcsr := mem.RAM[hd6301.RegTCSR]
	fmt.Fprintf(w, "  TCSR.OLVL : %d\n", bit(tcsr, hd6301.TCSROLVL))
	fmt.Fprintf(w, "  TCSR.IEDG : %d\n", bit(tcsr, hd6301.TCSRIEDG))
	fmt.Fprintf(w, "  TCSR.ETOI : %d\n", bit(tcsr, hd6301.TCSRETOI))
	fmt.Fprintf(w, "  TCSR.EOCI : %d\n", bit(tcsr, hd6301.TCSREOCI))
	fmt.Fprintf(w, "  TCSR.EICI : %d\n", bit(tcsr, hd6301.TCSREICI))
	fmt.Fprintf(w, "  TCSR.TOF  : %d\n", bit(tcsr, hd6301.TCSRTOF))
	fmt.Fprintf(w, "  TCSR.OCF  : %d\n", bit(tcsr, hd6301.TCSROCF))
	fmt.Fprintf(w, "  TCSR.ICF  : %d\n", bit(tcsr, hd6301.TCSRICF))

	p3csr := mem.RAM[hd6301.RegP3CSR]
	fmt.Fprintf(w, "  P3CSR.LATCH : %d\n", bit(p3csr, hd6301.P3CSRLatch))
	fmt.Fprintf(w, "  P3CSR.OSS   : %d\n", bit(p3csr, hd6301.P3CSROSS))
	fmt.Fprintf(w, "  P3CSR.IS3I  : %d\n", bit(p3csr, hd6301.P3CSRIS3I))
	fmt.Fprintf(w, "  P3CSR.IS3   : %d\n", bit(p3csr, hd6301.P3CSRIS3))

	rmcr := mem.RAM[hd6301.RegRMCR]
	fmt.Fprintf(w, "  RMCR.SS0 : %d\n", bit(rmcr, 0))
	fmt.Fprintf(w, "  RMCR.SS1 : %d\n", bit(rmcr, 1))
	fmt.Fprintf(w, "  RMCR.CC0 : %d\n", bit(rmcr, 2))
	fmt.Fprintf(w, "  RMCR.CC1 : %d\n", bit(rmcr, 3))

	trcsr := mem.RAM[hd6301.RegTRCSR]
	fmt.Fprintf(w, "  TRCSR.WU   : %d\n", bit(trcsr, hd6301.TRCSRWU))
	fmt.Fprintf(w, "  TRCSR.TE   : %d\n", bit(trcsr, hd6301.TRCSRTE))
	fmt.Fprintf(w, "  TRCSR.TIE  : %d\n", bit(trcsr, hd6301.TRCSRTIE))
	fmt.Fprintf(w, "  TRCSR.RE   : %d\n", bit(trcsr, hd6301.TRCSRRE))
	fmt.Fprintf(w, "  TRCSR.RIE  : %d\n", bit(trcsr, hd6301.TRCSRRIE))
	fmt.Fprintf(w, "  TRCSR.TDRE : %d\n", bit(trcsr, hd6301.TRCSRTDRE))
	fmt.Fprintf(w, "  TRCSR.ORFE : %d\n", bit(trcsr, hd6301.TRCSRORFE))
	fmt.Fprintf(w, "  TRCSR.RDRF : %d\n", bit(trcsr, hd6301.TRCSRRDRF))

	ramCtrl := mem.RAM[hd6301.RegRAMCtrl]
	fmt.Fprintf(w, "  RAM.RAME : %d\n", bit(ramCtrl, hd6301.RAMCtrlRAME))
	fmt.Fprintf(w, "  RAM.STBY : %d\n", bit(ramCtrl, hd6301.RAMCtrlSTBY))

	fmt.Fprintf(w, "  FRC : 0x%02x%02x\n", mem.RAM[hd6301.RegFRCHigh], mem.RAM[hd6301.RegFRCLow])
	fmt.Fprintf(w, "  OCR : 0x%02x%02x\n", mem.RAM[hd6301.RegOCRHigh], mem.RAM[hd6301.RegOCRLow])
	fmt.Fprintf(w, "  ICR : 0x%02x%02x\n", mem.RAM[hd6301.RegICRHigh], mem.RAM[hd6301.RegICRLow])
	fmt.Fprintf(w, "  RDR : 0x%02x\n", mem.RAM[hd6301.RegRDR])
	fmt.Fprintf(w, "  TDR : 0x%02x\n", mem.RAM[hd6301.RegTDR])
}

func dumpMCU(w io.Writer, c *hd6301.MCU) {
	fmt.Fprintf(w, "PC=%04x A:B=%04x X=%04x SP=%04x CCR=%02x Counter=%d\n",
		c.PC, c.D(), c.X, c.SP, c.CCR(), c.Counter)
}

func dumpKTB(w io.Writer, mem *hd6301.Memory, address int) {
	for i := 0; i < 10; i++ {
		v := mem.RAM[address+i]
		fmt.Fprintf(w, "    %c%c%c%c%c%c%c%c\n",
			bit01(v, 0), bit01(v, 1), bit01(v, 2), bit01(v, 3),
			bit01(v, 4), bit01(v, 5), bit01(v, 6), bit01(v, 7))
	}
}

func bit01(v byte, n uint) byte {
	if bit(v, n) != 0 {
		return '1'
	}
	return '0'
}

// dumpVariables prints the master's keyboard-driver working state,
// the zero-page cells original_source/debugger.c calls "v" for (spec
// §6's keyboard matrix/autoload staging cells).
func dumpVariables(w io.Writer, mem *hd6301.Memory) {
	fmt.Fprintln(w, "Keyboard:")
	fmt.Fprintf(w, "  KSTKSZ: %d\n", mem.RAM[0x140])
	fmt.Fprintf(w, "  KICNT1: %d\n", mem.RAM[0x141])
	fmt.Fprintf(w, "  KICNT2: %d\n", mem.RAM[0x142])
	fmt.Fprintf(w, "  KICNTM: %d\n", int(mem.RAM[0x143])*0x100+int(mem.RAM[0x144]))
	fmt.Fprintln(w, "  NEWKTB:")
	dumpKTB(w, mem, 0x145)
	fmt.Fprintln(w, "  OLDKTB:")
	dumpKTB(w, mem, 0x14F)
	fmt.Fprintln(w, "  CHKKTB:")
	dumpKTB(w, mem, 0x159)
	fmt.Fprintf(w, "  KYISAD: 0x%02x%02x\n", mem.RAM[0x163], mem.RAM[0x164])
	fmt.Fprintf(w, "  KYISFL: 0x%02x\n", mem.RAM[0x165])
	fmt.Fprintf(w, "  KYISCN: %d\n", mem.RAM[0x166])
	fmt.Fprintf(w, "  KYISPN: %d\n", mem.RAM[0x167])
	fmt.Fprintf(w, "  STKCNT: %d\n", mem.RAM[0x168])
	fmt.Fprintf(w, "  KEYMOD: 0x%02x\n", mem.RAM[0x169])
	fmt.Fprintf(w, "  ONKFLG: 0x%02x\n", mem.RAM[0x16A])
	fmt.Fprintf(w, "  KPRFLG: %d\n", mem.RAM[0x16B])
	fmt.Fprintf(w, "  KEYRPT: %d\n", mem.RAM[0x16C])
	fmt.Fprintf(w, "  CKEYRD: 0x%02x%02x\n", mem.RAM[0x16D], mem.RAM[0x16E])
	fmt.Fprintln(w, "  KYISTK:")
	for i := 0; i < 18; i++ {
		if i%9 == 0 {
			fmt.Fprint(w, "    ")
		}
		fmt.Fprintf(w, "0x%02x,", mem.RAM[0x16F+i])
		if i%9 == 8 {
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}
