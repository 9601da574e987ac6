package main

import (
	"github.com/hx20emu/hx20/internal/bus"
	"github.com/hx20emu/hx20/internal/piezo"
)

// piezoSink owns the host audio device backing the slave's speaker
// FIFO; its concrete implementation (oto-backed or headless) is chosen
// by the piezo package's build tags, mirroring the teacher's
// audio_backend_oto.go/audio_backend_headless.go split.
type piezoSink struct {
	sink *piezo.Sink
}

func newPiezoSink(m *bus.Machine) (*piezoSink, error) {
	sink, err := piezo.NewSink()
	if err != nil {
		return nil, err
	}
	sink.Attach(m.Piezo)
	sink.Start()
	return &piezoSink{sink: sink}, nil
}

func (p *piezoSink) Close() error {
	p.sink.Stop()
	p.sink.Close()
	return nil
}
