// Package cassette emulates the slave MCU's cassette interface (spec
// §4.5): WAV capture of the save line and WAV replay onto the load
// line, both resampled between the machine's internal clock and the
// host WAV sample rate. Grounded on original_source/cassette.c.
package cassette

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

const (
	internalSampleRate = 612900 // HX-20 clock speed
	wavSampleRate       = 44100
	saveIdleStop        = 500000 // internal ticks of sustained low before auto-stop

	portSaveLine = 0x08 // P33, sampled for save
	portLoadLine = 0x04 // P32, driven for load
)

// wavHeader is the 44-byte canonical PCM WAV header, fields exactly as
// original_source/cassette.c's wav_header_t lays them out.
type wavHeader struct {
	Riff          [4]byte
	ChunkSize     uint32
	Wave          [4]byte
	Fmt           [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Data          [4]byte
	Subchunk2Size uint32
}

func newHeader() wavHeader {
	h := wavHeader{
		Subchunk1Size: 16,
		AudioFormat:   1,
		Channels:      1,
		SampleRate:    wavSampleRate,
		ByteRate:      wavSampleRate,
		BlockAlign:    1,
		BitsPerSample: 8,
	}
	copy(h.Riff[:], "RIFF")
	copy(h.Wave[:], "WAVE")
	copy(h.Fmt[:], "fmt ")
	copy(h.Data[:], "data")
	return h
}

// Deck holds the independent save and load streams; both may be active
// at once, matching the original's two separate file handles.
type Deck struct {
	save   *saveStream
	load   *loadStream

	syncCatchup uint16
}

// NewDeck constructs an idle cassette deck.
func NewDeck() *Deck { return &Deck{} }

type saveStream struct {
	f                *os.File
	w                *bufio.Writer
	sampleCount      uint32
	internalCount    uint32
	idleCount        uint32
	highSeen         bool
}

// StartSave truncates/creates filename and begins writing a WAV
// capture of the save line (spec §6: cassette save command).
func (d *Deck) StartSave(filename string) error {
	if d.save != nil {
		return fmt.Errorf("cassette: save already in progress")
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	h := newHeader()
	if err := binary.Write(f, binary.LittleEndian, &h); err != nil {
		f.Close()
		return err
	}
	d.save = &saveStream{f: f, w: bufio.NewWriter(f)}
	return nil
}

func (d *Deck) stopSave() {
	s := d.save
	d.save = nil
	s.w.Flush()
	subchunk2 := s.sampleCount
	chunk := subchunk2 + 36
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], chunk)
	s.f.WriteAt(buf[:], 4)
	binary.LittleEndian.PutUint32(buf[:], subchunk2)
	s.f.WriteAt(buf[:], 40)
	s.f.Close()
}

func (s *saveStream) sample(level bool) {
	if s.internalCount%(internalSampleRate/wavSampleRate) == 0 {
		var b byte
		if level {
			b = 0xFF
		}
		s.w.WriteByte(b)
		s.sampleCount++
	}
	s.internalCount++
}

type loadStream struct {
	f             *os.File
	r             *bufio.Reader
	internalCount uint32
	sample        byte
}

// StartLoad opens filename for WAV replay onto the load line (spec §6:
// cassette load command). The header is validated against the fixed
// mono/8-bit/44100Hz format original_source/cassette.c requires.
func (d *Deck) StartLoad(filename string) error {
	if d.load != nil {
		return fmt.Errorf("cassette: load already in progress")
	}
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	var h wavHeader
	if err := binary.Read(f, binary.LittleEndian, &h); err != nil {
		f.Close()
		return fmt.Errorf("cassette: unable to read header: %w", err)
	}
	if h.Riff[0] != 'R' {
		f.Close()
		return fmt.Errorf("cassette: not a WAV file")
	}
	if h.SampleRate != wavSampleRate {
		f.Close()
		return fmt.Errorf("cassette: unsupported sample rate %d", h.SampleRate)
	}
	if h.Channels != 1 {
		f.Close()
		return fmt.Errorf("cassette: unsupported channel count %d", h.Channels)
	}
	if h.BitsPerSample != 8 {
		f.Close()
		return fmt.Errorf("cassette: unsupported bits-per-sample %d", h.BitsPerSample)
	}
	d.load = &loadStream{f: f, r: bufio.NewReader(f)}
	return nil
}

func (l *loadStream) nextBit() bool {
	if l.internalCount%(internalSampleRate/wavSampleRate) == 0 {
		b, err := l.r.ReadByte()
		if err != nil {
			l.f.Close()
			l.f = nil
			b = 0
			l.sample = 0
		} else {
			l.sample = b
		}
	}
	l.internalCount++
	return l.sample > 128
}

// Execute advances both streams to match syncCounter, sampling/driving
// port3 each tick (spec §4.5; original_source/cassette.c's
// cassette_execute loop).
func (d *Deck) Execute(syncCounter uint16, port3 *byte) {
	for d.syncCatchup != syncCounter {
		if d.save != nil {
			if *port3&portSaveLine != 0 {
				d.save.sample(true)
				d.save.idleCount = 0
				d.save.highSeen = true
			} else if d.save.highSeen {
				d.save.sample(false)
				d.save.idleCount++
				if d.save.idleCount >= saveIdleStop {
					d.stopSave()
				}
			}
		}
		if d.load != nil {
			if d.load.nextBit() {
				*port3 |= portLoadLine
			} else {
				*port3 &^= portLoadLine
			}
			if d.load.f == nil {
				d.load = nil
			}
		}
		d.syncCatchup++
	}
}
