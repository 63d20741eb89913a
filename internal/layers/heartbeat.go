package layers

import (
	"github.com/cbegin/ambient-go/internal/dsp"
	"github.com/cbegin/ambient-go/internal/voice"
)

const (
	heartbeatPeriod = 3.0
	heartbeatOffset = 0.35
	heartbeatFade   = 0.1
	beatHigh        = 60.0
	beatLow         = 30.0
	beatDrop        = 0.15
	beatDecay       = 0.3
	beatLevel       = 0.5
)

// heartbeatTick plays a beat pair and reschedules.
func (s *Scheduler) heartbeatTick() {
	if !s.params.HeartbeatEnabled() {
		return
	}
	now := s.g.Now()
	s.synth(voice.KindHeartbeat, func() { s.beat(now) })
	s.synth(voice.KindHeartbeat, func() { s.beat(now + heartbeatOffset) })
	s.emit(EventHeartbeatBeat, nil)
	s.after(heartbeatPeriod, TimerHeartbeat, s.heartbeatTick)
}

// beat is one pulse starting at start: a sine dropping an octave under a
// sharp envelope.
func (s *Scheduler) beat(start float64) {
	sr := s.g.SampleRate()
	osc := dsp.NewOscillator(sr, dsp.WaveSine, beatHigh, start)
	osc.Freq.SetValueAtTime(beatHigh, start)
	osc.Freq.ExponentialRampToValueAtTime(beatLow, start+beatDrop)
	osc.Stop(start + beatDecay + 0.05)
	v := voice.New(voice.KindHeartbeat, voice.Input{Source: osc, Level: 1})
	v.Gain.SetValueAtTime(0, start)
	v.Gain.LinearRampToValueAtTime(beatLevel, start+0.01)
	v.Gain.ExponentialRampToValueAtTime(0.001, start+beatDecay)
	id := s.add(v)
	s.cleanupAfter(id, start-s.g.Now()+beatDecay+0.1)
}

func (s *Scheduler) stopHeartbeat() {
	s.units.FadeKind(voice.KindHeartbeat, s.g.Now(), heartbeatFade)
	s.timers.CancelKind(TimerHeartbeat)
}
