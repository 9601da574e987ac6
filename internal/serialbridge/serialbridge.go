// Package serialbridge emulates the master MCU's external SCI link
// (spec §4.8): a TTY device opened in raw mode at 38400 baud, feeding
// a pair of byte FIFOs that are drained into/out of hd6301.MCU's SCI
// registers on a 128-cycle cadence. Grounded on
// original_source/serial.c, with raw-mode setup adapted from the
// teacher's terminal_host.go (golang.org/x/term).
package serialbridge

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/hx20emu/hx20/internal/hd6301"
	"github.com/hx20emu/hx20/internal/trace"
)

const (
	rxFIFOSize = 16384
	txFIFOSize = 1024
	syncPeriod = 128
)

type byteRing struct {
	buf        []byte
	head, tail int
}

func newRing(size int) *byteRing { return &byteRing{buf: make([]byte, size)} }

func (r *byteRing) write(b byte) {
	next := (r.head + 1) % len(r.buf)
	if next == r.tail {
		return
	}
	r.buf[r.head] = b
	r.head = next
}

func (r *byteRing) read() (byte, bool) {
	if r.tail == r.head {
		return 0, false
	}
	b := r.buf[r.tail]
	r.tail = (r.tail + 1) % len(r.buf)
	return b, true
}

// Bridge owns the external TTY descriptor and the RX/TX FIFOs that
// decouple the blocking-free host read/write calls from the cycle-
// exact SCI cadence.
type Bridge struct {
	fd         int
	oldState   *term.State
	rx         *byteRing
	tx         *byteRing
	Trace      *trace.SCIRing // optional; nil disables SCI tracing
}

// Open puts ttyPath into raw mode at 38400 baud and returns a Bridge
// ready to be polled from Execute.
func Open(ttyPath string) (*Bridge, error) {
	f, err := os.OpenFile(ttyPath, os.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	fd := int(f.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := setBaud38400(fd); err != nil {
		term.Restore(fd, oldState)
		f.Close()
		return nil, err
	}

	return &Bridge{
		fd:       fd,
		oldState: oldState,
		rx:       newRing(rxFIFOSize),
		tx:       newRing(txFIFOSize),
	}, nil
}

// setBaud38400 sets both line speeds to 38400, matching
// original_source/serial.c's serial_init (cfsetispeed/cfsetospeed).
// term.MakeRaw only clears line-discipline flags; it never touches the
// speed fields, so this must happen as a second ioctl round-trip.
func setBaud38400(fd int) error {
	tios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("serialbridge: reading termios: %w", err)
	}
	tios.Ispeed = unix.B38400
	tios.Ospeed = unix.B38400
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, tios); err != nil {
		return fmt.Errorf("serialbridge: setting 38400 baud: %w", err)
	}
	return nil
}

// Close restores the TTY's prior terminal state.
func (b *Bridge) Close() error {
	if b.oldState != nil {
		return term.Restore(b.fd, b.oldState)
	}
	return nil
}

// Execute drains master's transmit shift register into the TX FIFO,
// exchanges one byte each way every 128 cycles, and polls the host
// descriptor for newly arrived bytes (spec §4.8; original_source/
// serial.c's serial_execute).
func (b *Bridge) Execute(master *hd6301.MCU, masterMem *hd6301.Memory) {
	if master.TxShiftRegister >= 0 {
		if b.Trace != nil {
			b.Trace.Add(trace.DirMasterToExt, byte(master.TxShiftRegister), master.Counter)
		}
		b.tx.write(byte(master.TxShiftRegister))
		master.TxShiftRegister = -1
	}

	if master.SyncCounter%syncPeriod == 0 {
		if rxByte, ok := b.rx.read(); ok {
			if b.Trace != nil {
				b.Trace.Add(trace.DirExtToMaster, rxByte, master.Counter)
			}
			master.SCIReceive(masterMem, rxByte)
		}
		if txByte, ok := b.tx.read(); ok {
			syscall.Write(b.fd, []byte{txByte})
		}
	}

	var in [1]byte
	n, _ := syscall.Read(b.fd, in[:])
	if n == 1 {
		b.rx.write(in[0])
	}
}
