package layers

import (
	"github.com/cbegin/ambient-go/internal/dsp"
	"github.com/cbegin/ambient-go/internal/effects"
	"github.com/cbegin/ambient-go/internal/voice"
)

// bassRoots is the sub-bass root cycle: C2, A1, F1, G1.
var bassRoots = []float64{65.41, 55.00, 43.65, 49.00}

const (
	bassMin      = 6.0
	bassMax      = 8.0
	bassDetune   = 1.004
	bassDrive    = 2.5
	bassCutoff   = 180.0
	bassAttack   = 0.4
	bassHold     = 1.2
	bassDecay    = 6.5
	bassLevel    = 0.12
	bassLifetime = 7.0
)

type bassline struct {
	step int
}

func (s *Scheduler) bassTick() {
	s.synth(voice.KindBass, s.bassNote)
	s.after(s.between(bassMin, bassMax), TimerBass, s.bassTick)
}

func (s *Scheduler) bassNote() {
	root := bassRoots[s.bass.step%len(bassRoots)]
	s.bass.step++

	sr := s.g.SampleRate()
	now := s.g.Now()
	a := dsp.NewOscillator(sr, dsp.WaveSine, root, now)
	b := dsp.NewOscillator(sr, dsp.WaveTriangle, root*bassDetune, now)
	v := voice.New(voice.KindBass,
		voice.Input{Source: a, Level: 0.6},
		voice.Input{Source: b, Level: 0.4},
	)
	v.Shaper = effects.NewShaper(bassDrive)
	v.Filter = dsp.NewLowpass(sr, bassCutoff)
	v.Gain.SetValueAtTime(0, now)
	v.Gain.LinearRampToValueAtTime(bassLevel, now+bassAttack)
	v.Gain.SetValueAtTime(bassLevel, now+bassAttack+bassHold)
	v.Gain.ExponentialRampToValueAtTime(0.001, now+bassDecay)
	v.Stop(now + bassLifetime)
	id := s.add(v)
	s.cleanupAfter(id, bassLifetime)
}
