// Package autoload stages a BASIC program or S-record file into the
// master's keyboard-injection zero page so it runs as though typed at
// the keyboard, the same trick original_source/main.c uses to drive
// the machine to a running program without a human present. Grounded
// on main.c's autoload_execute() and the KYIS* staging cells it pokes.
package autoload

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hx20emu/hx20/internal/hd6301"
)

// Zero-page addresses the ROM's keyboard driver polls for injected
// keystrokes (spec §6, confirmed against main.c).
const (
	kyisfl = 0x165 // set once: signals "autoload in progress" to the ROM
	kyiscn = 0x166 // set once: injection mode selector
	kyistk = 0x16F // 2-byte stack: kyistk[0]=mode char, kyistk[1]=next key
	kyispn = 0x167 // gate: ROM sets 2 when ready for a new key; we ack with 1
)

// Kind selects which staged program the state machine is driving.
type Kind int

const (
	None Kind = iota
	BasicFile
	SRecord
)

// state is the autoload state machine (main.c's autoload_state_t).
type state int

const (
	stNone state = iota
	stBasicFile
	stBasicRun
	stSrecNext
	stSrecLine
	stEnd
)

// Loader drives one autoload session: it injects characters into the
// master's zero page, one per macro-tick once the ROM signals it's
// ready, until the staged program (and, for BASIC files, the trailing
// "RUN" command) has been fully typed in.
type Loader struct {
	kind  Kind
	state state

	// BASIC file source: raw bytes fed one at a time, then "RUN\r".
	basic    []byte
	basicPos int
	trailer  string
	trailPos int

	// S-record source: each accepted S1 line becomes one MONITOR
	// "S<addr><CR>byte<CR>byte<CR>....<CR>" command, fed one line at a
	// time so the MONITOR has a chance to process each before the next
	// arrives (main.c never queues more than one line ahead).
	lines   []string
	linePos int
	lineBuf string
	lineAt  int

	// savedWarp is the warp-mode flag from before autoload began; it is
	// forced on for the duration (spec §6) and restored at stEnd.
	savedWarp bool
	warp      *bool
}

// NewBasicFile stages a plain-text BASIC program for typed entry,
// followed by "RUN" once the last line has been injected.
func NewBasicFile(path string, warp *bool) (*Loader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("autoload: reading %q: %w", path, err)
	}
	l := &Loader{kind: BasicFile, state: stBasicFile, basic: data, trailer: "RUN\r", warp: warp}
	l.arm()
	return l, nil
}

// NewSRecord stages an S-record file, translating each S1 data record
// into a MONITOR "S" load command fed one line at a time.
func NewSRecord(path string, warp *bool) (*Loader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("autoload: reading %q: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		rec := strings.TrimSpace(sc.Text())
		if len(rec) < 8 || rec[0] != 'S' || rec[1] != '1' {
			continue // only S1 (16-bit data) records are loadable
		}
		cmd, err := translateS1(rec)
		if err != nil {
			return nil, fmt.Errorf("autoload: %q: %w", path, err)
		}
		lines = append(lines, cmd)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("autoload: reading %q: %w", path, err)
	}

	l := &Loader{kind: SRecord, state: stSrecNext, lines: lines, warp: warp}
	l.arm()
	return l, nil
}

// translateS1 turns an S1 record "S1 LL AAAA DD DD ... CC" into a
// MONITOR load command "S<addr>\r<byte>\r<byte>\r...\r.\r" (spec §6;
// the trailing "." ends the MONITOR's byte-entry loop).
func translateS1(rec string) (string, error) {
	byteAt := func(i int) (byte, error) {
		v, err := strconv.ParseUint(rec[i:i+2], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("malformed S-record %q: %w", rec, err)
		}
		return byte(v), nil
	}
	length, err := byteAt(2)
	if err != nil {
		return "", err
	}
	addrHi, err := byteAt(4)
	if err != nil {
		return "", err
	}
	addrLo, err := byteAt(6)
	if err != nil {
		return "", err
	}
	addr := uint16(addrHi)<<8 | uint16(addrLo)

	dataLen := int(length) - 3 // minus 2 address bytes, 1 checksum byte
	if dataLen < 0 || 8+dataLen*2 > len(rec) {
		return "", fmt.Errorf("S-record %q: bad length field", rec)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "S%04X\r", addr)
	for i := 0; i < dataLen; i++ {
		v, err := byteAt(8 + i*2)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%02X\r", v)
	}
	b.WriteString(".\r")
	return b.String(), nil
}

// arm forces warp mode on for the duration of the injection, saving the
// prior setting (main.c's autoload_start()); the staging cells the ROM
// checks are poked by Tick.
func (l *Loader) arm() {
	if l.warp != nil {
		l.savedWarp = *l.warp
		*l.warp = true
	}
}

// modeChar selects which of the ROM's two entry points the first
// staged keystroke lands on: '2' drops into BASIC's direct-entry line,
// '1' drops into the MONITOR (main.c's AUTOLOAD_BASIC_FILE vs.
// AUTOLOAD_SREC_NEXT initial stacked character).
func (l *Loader) modeChar() byte {
	if l.kind == SRecord {
		return '1'
	}
	return '2'
}

// Done reports whether the staged program has been fully injected.
func (l *Loader) Done() bool { return l.state == stEnd }

// Tick runs once per macro-tick (bus.Machine.OnTick): it (re)pokes the
// staging cells whenever kyisfl does not hold 0x0A, which includes the
// very first call, then injects the next character whenever the ROM
// signals kyispn == 2.
func (l *Loader) Tick(mem *hd6301.Memory) {
	if l.state == stEnd {
		return
	}

	if mem.RAM[kyisfl] != 0x0A {
		mem.RAM[kyisfl] = 0x0A
		mem.RAM[kyiscn] = 0x02
		mem.RAM[kyistk] = l.modeChar()
	}

	if mem.RAM[kyispn] != 0x02 {
		return
	}

	ch, more := l.next()
	mem.RAM[kyistk+1] = ch
	mem.RAM[kyispn] = 0x01
	if !more {
		l.finish()
	}
}

// next returns the next character to inject and whether any remain
// after it, advancing through basic-file-then-trailer or
// s-record-line-then-line sub-state as appropriate.
func (l *Loader) next() (byte, bool) {
	switch l.kind {
	case BasicFile:
		return l.nextBasic()
	case SRecord:
		return l.nextSrec()
	default:
		return 0, false
	}
}

func (l *Loader) nextBasic() (byte, bool) {
	if l.basicPos < len(l.basic) {
		ch := l.basic[l.basicPos]
		l.basicPos++
		if l.basicPos == len(l.basic) {
			l.state = stBasicRun
		}
		return ch, l.basicPos < len(l.basic) || l.trailPos < len(l.trailer)
	}
	ch := l.trailer[l.trailPos]
	l.trailPos++
	return ch, l.trailPos < len(l.trailer)
}

func (l *Loader) nextSrec() (byte, bool) {
	for l.lineAt >= len(l.lineBuf) {
		if l.linePos >= len(l.lines) {
			return 0, false
		}
		l.lineBuf = l.lines[l.linePos]
		l.linePos++
		l.lineAt = 0
		l.state = stSrecLine
	}
	ch := l.lineBuf[l.lineAt]
	l.lineAt++
	more := l.lineAt < len(l.lineBuf) || l.linePos < len(l.lines)
	return ch, more
}

func (l *Loader) finish() {
	l.state = stEnd
	if l.warp != nil {
		*l.warp = l.savedWarp
	}
}
