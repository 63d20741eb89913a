package layers

import (
	"github.com/cbegin/ambient-go/internal/dsp"
	"github.com/cbegin/ambient-go/internal/lfo"
	"github.com/cbegin/ambient-go/internal/voice"
)

const (
	textureLevel    = 0.02
	textureFadeIn   = 3.0
	textureCutoff   = 800.0
	textureSeconds  = 2.0
	textureSmoothHz = 4000.0
	textureMin      = 8.0
	textureMax      = 12.0
)

type texture struct {
	id  voice.ID
	lfo *lfo.LFO
}

// textureTick keeps the noise bed alive and lets its filter wander.
func (s *Scheduler) textureTick() {
	s.synth(voice.KindTexture, s.ensureTexture)
	if s.texture.lfo != nil {
		s.texture.lfo.Set(s.between(150, 400), s.between(0.03, 0.1), lfo.ShapeDrift)
	}
	s.after(s.between(textureMin, textureMax), TimerTexture, s.textureTick)
}

// ensureTexture starts the looped noise unit unless one is already live.
func (s *Scheduler) ensureTexture() {
	if _, ok := s.units.Get(s.texture.id); ok {
		return
	}
	sr := s.g.SampleRate()
	now := s.g.Now()
	buf := dsp.NewNoiseBuffer(s.rng, sr, textureSeconds, textureSmoothHz)
	v := voice.New(voice.KindTexture, voice.Input{Source: dsp.NewNoiseLoop(buf, now), Level: 1})
	v.Filter = dsp.NewLowpass(sr, textureCutoff)

	mod := &lfo.LFO{}
	mod.Seed(s.rng.Float64() * 1000)
	mod.Set(300, 0.05, lfo.ShapeDrift)
	rate := float64(sr)
	v.Modulate = func(v *voice.Voice, _ float64) {
		v.Filter.Offset = mod.Sample(rate)
	}
	v.Gain.SetValueAtTime(0, now)
	v.Gain.LinearRampToValueAtTime(textureLevel, now+textureFadeIn)
	s.texture = texture{id: s.add(v), lfo: mod}
}
