//go:build headless

// Headless stand-in for the oto-backed sink, adapted from the
// teacher's audio_backend_headless.go: same surface, no device.
package piezo

type Sink struct {
	started bool
}

func NewSink() (*Sink, error) { return &Sink{}, nil }

func (s *Sink) Attach(f *FIFO) {}

func (s *Sink) Start() { s.started = true }
func (s *Sink) Stop()  { s.started = false }
func (s *Sink) Close() { s.started = false }
