// Package layers runs the six generative layers against a shared timer
// registry and a shared registry of live units.
package layers

import (
	"fmt"
	"log/slog"
	"math/rand"
	"runtime/debug"

	"github.com/cbegin/ambient-go/internal/chord"
	"github.com/cbegin/ambient-go/internal/graph"
	"github.com/cbegin/ambient-go/internal/params"
	"github.com/cbegin/ambient-go/internal/sched"
	"github.com/cbegin/ambient-go/internal/voice"
)

// Timer kinds. Every pending callback carries one so groups can be canceled
// without disturbing the rest.
const (
	TimerPad          sched.Kind = "pad"
	TimerBass         sched.Kind = "bass"
	TimerMelody       sched.Kind = "melody"
	TimerMelodyNote   sched.Kind = "melody_note"
	TimerTexture      sched.Kind = "texture"
	TimerHeartbeat    sched.Kind = "heartbeat"
	TimerArpeggioNote sched.Kind = "arpeggio_note"
	TimerCleanup      sched.Kind = "cleanup"
)

// StopFade is how long every live unit takes to fade out on a full stop.
const StopFade = 1.0

type EventKind int

const (
	EventChordChanged EventKind = iota
	EventArpeggioStarted
	EventArpeggioStopped
	EventHeartbeatBeat
)

// Event reports something a layer did. Time is on the graph clock.
type Event struct {
	Kind  EventKind
	Time  float64
	Chord chord.Notes
}

type Config struct {
	Graph  *graph.Graph
	Params *params.Store
	Chord  *chord.State
	Rand   *rand.Rand
	Logger *slog.Logger
	// OnEvent is called synchronously from the scheduling goroutine.
	OnEvent func(Event)
}

// Scheduler owns playback state and drives every layer. Timer callbacks run
// from Process, one at a time, interleaved with rendering so each fires on
// the exact frame it was scheduled for.
//
// Scheduler is not safe for concurrent use; the engine serializes access.
type Scheduler struct {
	g       *graph.Graph
	params  *params.Store
	chord   *chord.State
	feed    chord.Feed
	timers  *sched.Registry
	units   *voice.Registry
	rng     *rand.Rand
	log     *slog.Logger
	onEvent func(Event)

	playing bool

	arp     arpeggio
	texture texture
	bass    bassline
}

func New(cfg Config) *Scheduler {
	if cfg.Chord == nil {
		cfg.Chord = chord.NewState(chord.Progression)
	}
	if cfg.Params == nil {
		cfg.Params = params.NewStore()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Scheduler{
		g:       cfg.Graph,
		params:  cfg.Params,
		chord:   cfg.Chord,
		timers:  sched.New(),
		units:   voice.NewRegistry(),
		rng:     cfg.Rand,
		log:     cfg.Logger,
		onEvent: cfg.OnEvent,
	}
	s.feed.Subscribe(s.onChordChange)
	return s
}

// Process renders interleaved stereo frames into dst, firing every timer on
// the frame its deadline falls on. A trailing half frame is zeroed.
func (s *Scheduler) Process(dst []float32) {
	for len(dst) >= 2 {
		s.timers.RunDue(s.g.Frame())
		frames := len(dst) / 2
		if next, ok := s.timers.Next(); ok {
			if d := next - s.g.Frame(); d < int64(frames) {
				frames = int(d)
			}
		}
		s.g.Render(dst[:2*frames])
		dst = dst[2*frames:]
	}
	clear(dst)
}

func (s *Scheduler) Playing() bool { return s.playing }

// Start begins every layer, Pad first so a chord is sounding before anything
// reads it. Starting while playing is a no-op that returns false.
func (s *Scheduler) Start() bool {
	if s.playing {
		return false
	}
	s.playing = true
	s.padTick()
	s.bassTick()
	s.textureTick()
	s.scheduleMelody(melodyFirstMin, melodyFirstMax)
	if s.params.HeartbeatEnabled() {
		s.heartbeatTick()
	}
	if s.params.ArpeggioEnabled() {
		s.startArpeggio()
	}
	s.log.Debug("layers started", "chord", s.chord.Current())
	return true
}

// Stop cancels every pending timer and fades every live unit out over
// StopFade seconds. Stopping while stopped is a no-op that returns false.
func (s *Scheduler) Stop() bool {
	if !s.playing {
		return false
	}
	s.playing = false
	timers := s.timers.CancelAll()
	units := s.units.FadeAll(s.g.Now(), StopFade)
	s.chord.Reset()
	s.arp = arpeggio{}
	s.texture = texture{}
	s.log.Debug("layers stopped", "timers", timers, "units", units)
	return true
}

// SetHeartbeat stores the flag and starts or sweeps the layer when playing.
func (s *Scheduler) SetHeartbeat(enabled bool) {
	s.params.SetHeartbeat(enabled)
	if !s.playing {
		return
	}
	if enabled {
		if s.timers.Count(TimerHeartbeat) == 0 {
			s.heartbeatTick()
		}
		return
	}
	s.stopHeartbeat()
}

// SetArpeggio stores the flag and starts or stops the sequence when playing.
func (s *Scheduler) SetArpeggio(enabled bool) {
	s.params.SetArpeggio(enabled)
	if !s.playing {
		return
	}
	if enabled {
		s.startArpeggio()
		return
	}
	if s.arp.active {
		s.stopSequence()
	}
	s.arp = arpeggio{}
}

// Timers exposes the pending timer registry for inspection.
func (s *Scheduler) Timers() *sched.Registry { return s.timers }

// Units exposes the live unit registry for inspection.
func (s *Scheduler) Units() *voice.Registry { return s.units }

// after schedules fn sec seconds from now. The callback is dropped if
// playback has stopped by the time it fires.
func (s *Scheduler) after(sec float64, kind sched.Kind, fn func()) sched.ID {
	at := s.g.Frame() + s.g.Frames(sec)
	return s.timers.At(at, kind, func() {
		if !s.playing {
			return
		}
		fn()
	})
}

// add registers v and connects it to the graph.
func (s *Scheduler) add(v *voice.Voice) voice.ID {
	id := s.units.Add(v)
	s.g.Connect(v)
	return id
}

// cleanupAfter drops id from the registry once its envelope has finished.
// Firing after a stop is harmless.
func (s *Scheduler) cleanupAfter(id voice.ID, sec float64) {
	s.timers.At(s.g.Frame()+s.g.Frames(sec), TimerCleanup, func() {
		s.units.Remove(id)
	})
}

// synth runs one unit synthesis step. A fault is logged and swallowed so the
// caller's reschedule always happens.
func (s *Scheduler) synth(kind voice.Kind, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("unit synthesis failed",
				"layer", string(kind),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (s *Scheduler) emit(kind EventKind, notes chord.Notes) {
	if s.onEvent != nil {
		s.onEvent(Event{Kind: kind, Time: s.g.Now(), Chord: notes})
	}
}

// between returns a uniform value in [lo, hi).
func (s *Scheduler) between(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
