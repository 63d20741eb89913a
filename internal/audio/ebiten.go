package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// EbitenBackend plays through an ebiten audio context.
type EbitenBackend struct{}

func (EbitenBackend) Name() string { return NameEbiten }

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				audioContextErr = fmt.Errorf("ebiten audio context: %v", r)
			}
		}()
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("%w: %d Hz (requested %d Hz)", ErrSampleRate, audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func (EbitenBackend) Open(sampleRate int, src SampleSource) (Sink, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(src)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	pl.SetBufferSize(100 * time.Millisecond)
	return &ebitenSink{player: pl, reader: reader}, nil
}

type ebitenSink struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

func (s *ebitenSink) Play()           { s.player.Play() }
func (s *ebitenSink) Pause()          { s.player.Pause() }
func (s *ebitenSink) IsPlaying() bool { return s.player.IsPlaying() }

func (s *ebitenSink) Close() error {
	s.player.Pause()
	if err := s.player.Close(); err != nil {
		return err
	}
	return s.reader.Close()
}
