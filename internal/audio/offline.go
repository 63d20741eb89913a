package audio

import "sync"

// OfflineBackend opens sinks that never pull. The owner advances the
// source by hand, which makes rendering and tests deterministic.
type OfflineBackend struct{}

func (OfflineBackend) Name() string { return NameOffline }

func (OfflineBackend) Open(int, SampleSource) (Sink, error) {
	return &offlineSink{}, nil
}

type offlineSink struct {
	mu      sync.Mutex
	playing bool
}

func (s *offlineSink) Play()  { s.set(true) }
func (s *offlineSink) Pause() { s.set(false) }

func (s *offlineSink) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *offlineSink) Close() error {
	s.set(false)
	return nil
}

func (s *offlineSink) set(v bool) {
	s.mu.Lock()
	s.playing = v
	s.mu.Unlock()
}
