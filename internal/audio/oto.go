package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoBackend plays through an oto context directly, without ebiten's mixer.
type OtoBackend struct{}

func (OtoBackend) Name() string { return NameOto }

var (
	otoContextOnce sync.Once
	otoContext     *oto.Context
	otoContextErr  error
	otoSampleRate  int
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoContextOnce.Do(func() {
		otoSampleRate = sampleRate
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
			BufferSize:   50 * time.Millisecond,
		})
		if err != nil {
			otoContextErr = fmt.Errorf("oto context: %w", err)
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoContextErr != nil {
		return nil, otoContextErr
	}
	if otoSampleRate != sampleRate {
		return nil, fmt.Errorf("%w: %d Hz (requested %d Hz)", ErrSampleRate, otoSampleRate, sampleRate)
	}
	return otoContext, nil
}

func (OtoBackend) Open(sampleRate int, src SampleSource) (Sink, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(src)
	return &otoSink{ctx: ctx, player: ctx.NewPlayer(reader), reader: reader}, nil
}

type otoSink struct {
	ctx    *oto.Context
	player *oto.Player
	reader *StreamReader
}

func (s *otoSink) Play()           { s.player.Play() }
func (s *otoSink) Pause()          { s.player.Pause() }
func (s *otoSink) IsPlaying() bool { return s.player.IsPlaying() }

func (s *otoSink) Close() error {
	s.player.Pause()
	if err := s.player.Close(); err != nil {
		return err
	}
	return s.reader.Close()
}

// Suspend pauses the whole device context.
func (s *otoSink) Suspend() error { return s.ctx.Suspend() }

func (s *otoSink) Resume() error { return s.ctx.Resume() }
