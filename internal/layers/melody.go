package layers

import (
	"github.com/cbegin/ambient-go/internal/dsp"
	"github.com/cbegin/ambient-go/internal/effects"
	"github.com/cbegin/ambient-go/internal/voice"
)

// melodyScale is C major pentatonic from C4, plus C5.
var melodyScale = []float64{261.63, 293.66, 329.63, 392.00, 440.00, 523.25}

const (
	melodyFirstMin = 2.0
	melodyFirstMax = 4.0
	melodyMin      = 10.0
	melodyMax      = 15.0
	phraseMin      = 3
	phraseMax      = 5
	noteSpacingMin = 0.8
	noteSpacingMax = 1.0
	melodyDecay    = 3.0
	melodyLevel    = 0.05
	melodyCleanup  = 3.5

	echoDelay    = 0.375
	echoFeedback = 0.3
	echoLevel    = 0.3
)

func (s *Scheduler) scheduleMelody(lo, hi float64) {
	s.after(s.between(lo, hi), TimerMelody, s.melodyTick)
}

// melodyTick lays out one phrase as individually timed notes and schedules
// the next phrase.
func (s *Scheduler) melodyTick() {
	n := phraseMin + s.rng.Intn(phraseMax-phraseMin+1)
	offset := 0.0
	for i := 0; i < n; i++ {
		freq := melodyScale[s.rng.Intn(len(melodyScale))]
		play := func() { s.synth(voice.KindMelody, func() { s.melodyNote(freq) }) }
		if i == 0 {
			play()
		} else {
			s.after(offset, TimerMelodyNote, play)
		}
		offset += s.between(noteSpacingMin, noteSpacingMax)
	}
	s.scheduleMelody(melodyMin, melodyMax)
}

func (s *Scheduler) melodyNote(freq float64) {
	sr := s.g.SampleRate()
	now := s.g.Now()
	osc := dsp.NewOscillator(sr, dsp.WaveSine, freq, now)
	osc.Stop(now + melodyDecay)
	v := voice.New(voice.KindMelody, voice.Input{Source: osc, Level: 1}).
		WithEcho(effects.NewEcho(sr, echoDelay, echoFeedback, echoLevel), sr)
	v.Gain.SetValueAtTime(0, now)
	v.Gain.LinearRampToValueAtTime(melodyLevel, now+0.05)
	v.Gain.ExponentialRampToValueAtTime(0.001, now+melodyDecay)
	id := s.add(v)
	s.cleanupAfter(id, melodyCleanup)
}
