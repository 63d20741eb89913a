package layers

import (
	"github.com/cbegin/ambient-go/internal/chord"
	"github.com/cbegin/ambient-go/internal/dsp"
	"github.com/cbegin/ambient-go/internal/voice"
)

const (
	padCrossfade = 4.0
	padFadeInMin = 4.0
	padFadeInMax = 4.5
	padDetune    = 1.003
	padLevel     = 0.06
	padJitter    = 0.2
)

// padTick emits the next chord and reschedules after the chord period,
// jittered by up to 20% either way.
func (s *Scheduler) padTick() {
	s.emitChord()
	period := float64(s.params.ChordPeriodMs()) / 1000
	s.after(period*s.between(1-padJitter, 1+padJitter), TimerPad, s.padTick)
}

func (s *Scheduler) emitChord() {
	ch := s.chord.Advance()
	now := s.g.Now()
	s.units.FadeKind(voice.KindPad, now, padCrossfade)
	for _, freq := range ch.Notes {
		s.synth(voice.KindPad, func() { s.padUnit(freq, now) })
	}
	if ch.Changed {
		s.log.Debug("chord changed", "layer", string(voice.KindPad), "index", ch.Index, "notes", ch.Notes)
		s.emit(EventChordChanged, ch.Notes)
		s.feed.Publish(ch)
	}
}

// padUnit is one chord tone: the selected timbre plus a slightly detuned
// sine partner through a shared lowpass.
func (s *Scheduler) padUnit(freq, now float64) {
	sr := s.g.SampleRate()
	primary := dsp.NewOscillator(sr, s.params.Timbre().Waveform(), freq, now)
	partner := dsp.NewOscillator(sr, dsp.WaveSine, freq*padDetune, now)
	v := voice.New(voice.KindPad,
		voice.Input{Source: primary, Level: 0.5},
		voice.Input{Source: partner, Level: 0.5},
	)
	v.Filter = dsp.NewLowpass(sr, s.params.FilterHz())
	v.Gain.SetValueAtTime(0, now)
	v.Gain.LinearRampToValueAtTime(padLevel, now+s.between(padFadeInMin, padFadeInMax))
	s.add(v)
}

// onChordChange restarts a running arpeggio against the new chord.
func (s *Scheduler) onChordChange(c chord.Change) {
	if !s.playing || !s.arp.active {
		return
	}
	s.stopSequence()
	s.startSequence(c.Notes)
}
