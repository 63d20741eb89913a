package audio

import (
	"sync"
	"time"
)

// NullBackend pulls from the source in real time and discards the output.
// It keeps the engine clock moving on hosts without an audio device.
type NullBackend struct{}

func (NullBackend) Name() string { return NameNull }

// nullTick is how much audio the null sink pulls per wakeup.
const nullTick = 20 * time.Millisecond

func (NullBackend) Open(sampleRate int, src SampleSource) (Sink, error) {
	s := &nullSink{
		reader: NewStreamReader(src),
		frames: sampleRate * int(nullTick) / int(time.Second),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.loop()
	return s, nil
}

type nullSink struct {
	reader *StreamReader
	frames int

	mu      sync.Mutex
	playing bool
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

func (s *nullSink) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(nullTick)
	defer ticker.Stop()
	buf := make([]byte, s.frames*bytesPerFrame)
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.IsPlaying() {
				_, _ = s.reader.Read(buf)
			}
		}
	}
}

func (s *nullSink) Play() {
	s.mu.Lock()
	s.playing = !s.closed
	s.mu.Unlock()
}

func (s *nullSink) Pause() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
}

func (s *nullSink) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *nullSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.playing = false
	s.mu.Unlock()
	close(s.done)
	s.wg.Wait()
	return nil
}
