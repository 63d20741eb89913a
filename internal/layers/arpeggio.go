package layers

import (
	"github.com/cbegin/ambient-go/internal/chord"
	"github.com/cbegin/ambient-go/internal/dsp"
	"github.com/cbegin/ambient-go/internal/voice"
)

const (
	arpNote    = 0.25
	arpGap     = 0.05
	arpAttack  = 0.02
	arpRelease = 0.05
	arpLevel   = 0.05
	arpFade    = 0.15
	arpFilter  = 3000.0
)

type arpeggio struct {
	active  bool
	pattern chord.Notes
	step    int
}

// startArpeggio marks the layer active and starts a sequence on the sounding
// chord. With nothing sounding yet, the next chord change starts it.
func (s *Scheduler) startArpeggio() {
	if s.arp.active {
		return
	}
	s.arp.active = true
	if notes := s.chord.Current(); len(notes) > 0 {
		s.startSequence(notes)
	}
}

func (s *Scheduler) startSequence(notes chord.Notes) {
	s.arp.pattern = chord.Arpeggio(notes)
	s.arp.step = 0
	s.emit(EventArpeggioStarted, notes)
	s.arpTick()
}

// stopSequence cancels pending notes and fades the sounding ones quickly.
// The layer stays active.
func (s *Scheduler) stopSequence() {
	s.timers.CancelKind(TimerArpeggioNote)
	s.units.FadeKind(voice.KindArpeggio, s.g.Now(), arpFade)
	s.arp.pattern = nil
	s.arp.step = 0
	s.emit(EventArpeggioStopped, nil)
}

func (s *Scheduler) arpTick() {
	if !s.playing || !s.arp.active || len(s.arp.pattern) == 0 {
		return
	}
	freq := s.arp.pattern[s.arp.step%len(s.arp.pattern)]
	s.arp.step++
	s.synth(voice.KindArpeggio, func() { s.arpUnit(freq) })
	s.after(arpNote+arpGap, TimerArpeggioNote, s.arpTick)
}

func (s *Scheduler) arpUnit(freq float64) {
	sr := s.g.SampleRate()
	now := s.g.Now()
	osc := dsp.NewOscillator(sr, dsp.WaveTriangle, freq, now)
	osc.Stop(now + arpNote + arpRelease)
	v := voice.New(voice.KindArpeggio, voice.Input{Source: osc, Level: 1})
	v.Filter = dsp.NewLowpass(sr, min(arpFilter, s.params.FilterHz()*1.5))
	v.Gain.SetValueAtTime(0, now)
	v.Gain.LinearRampToValueAtTime(arpLevel, now+arpAttack)
	v.Gain.SetValueAtTime(arpLevel, now+arpNote-arpRelease)
	v.Gain.ExponentialRampToValueAtTime(0.001, now+arpNote)
	id := s.add(v)
	s.cleanupAfter(id, arpNote+arpRelease+0.05)
}
