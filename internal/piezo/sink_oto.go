//go:build !headless

// Host audio sink backed by github.com/ebitengine/oto/v3, adapted from
// the teacher's audio_backend_oto.go: an atomic chip pointer lets the
// oto callback goroutine pull samples lock-free while the emulator
// thread keeps running the FIFO.
package piezo

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const sampleRate = 44100

// Sink streams a FIFO's averaged samples to the host speaker.
type Sink struct {
	ctx     *oto.Context
	player  *oto.Player
	fifo    atomic.Pointer[FIFO]
	mu      sync.Mutex
	started bool
}

// NewSink opens the host audio device. Volume scales the signed sample
// range into a comfortable listening level, matching the teacher's
// AUDIO_VOLUME-style constant in spirit.
func NewSink() (*Sink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	s := &Sink{ctx: ctx}
	s.player = ctx.NewPlayer(s)
	return s, nil
}

// Attach swaps in the FIFO this sink reads from; nil silences output.
func (s *Sink) Attach(f *FIFO) { s.fifo.Store(f) }

// Read implements io.Reader for oto's player pull model.
func (s *Sink) Read(p []byte) (int, error) {
	f := s.fifo.Load()
	if f == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	samples := len(p) / 4
	const volume = 16.0 / 128.0
	for i := 0; i < samples; i++ {
		v := f.ReadAveraged() * volume
		putFloat32LE(p[i*4:], v)
	}
	return len(p), nil
}

func putFloat32LE(b []byte, v float32) {
	bits := math.Float32bits(v)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}

func (s *Sink) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.player.Play()
		s.started = true
	}
}

func (s *Sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		s.player.Pause()
		s.started = false
	}
}

func (s *Sink) Close() {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.player.Close()
}
