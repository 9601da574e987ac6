package cassette

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestStartSaveWritesWAVHeader(t *testing.T) {
	d := NewDeck()
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := d.StartSave(path); err != nil {
		t.Fatalf("StartSave returned error: %v", err)
	}

	port3 := byte(portSaveLine)
	d.Execute(1, &port3)

	if err := d.StartSave(path); err == nil {
		t.Fatal("expected an error starting a second concurrent save")
	}

	// Drive enough low ticks to trigger auto-stop and the header backpatch.
	// Execute takes the wrapping 16-bit sync counter, so advance it one
	// tick per call.
	port3 = 0
	sync := uint16(1)
	for i := 0; i < saveIdleStop+1; i++ {
		sync++
		d.Execute(sync, &port3)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved WAV: %v", err)
	}
	if len(data) < 44 {
		t.Fatalf("saved file too short to contain a WAV header: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE magic in header: %q", data[0:12])
	}
}

func TestStartLoadRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notwav.bin")
	if err := os.WriteFile(path, []byte("not a wav file at all, long enough"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	d := NewDeck()
	if err := d.StartLoad(path); err == nil {
		t.Fatal("expected an error loading a non-WAV file")
	}
}

func TestStartLoadRejectsWrongFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	h := newHeader()
	h.Channels = 2
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	writeHeader(t, f, h)
	f.Close()

	d := NewDeck()
	if err := d.StartLoad(path); err == nil {
		t.Fatal("expected an error loading a stereo WAV")
	}
}

func TestLoadDrivesPort3FromSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	h := newHeader()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	writeHeader(t, f, h)
	f.Write([]byte{0xFF, 0x00})
	f.Close()

	d := NewDeck()
	if err := d.StartLoad(path); err != nil {
		t.Fatalf("StartLoad returned error: %v", err)
	}

	var port3 byte
	step := uint16(internalSampleRate / wavSampleRate)
	d.Execute(step, &port3)
	if port3&portLoadLine == 0 {
		t.Fatalf("expected load line driven high for the first (0xff) sample, port3=%#02x", port3)
	}
}

func writeHeader(t *testing.T, f *os.File, h wavHeader) {
	t.Helper()
	if err := binary.Write(f, binary.LittleEndian, &h); err != nil {
		t.Fatalf("writing WAV header: %v", err)
	}
}
