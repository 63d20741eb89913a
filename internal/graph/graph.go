// Package graph is the shared signal path every voice renders into: a master
// gain, a master bus, an analysis tap and the connection to the output device.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cbegin/ambient-go/internal/audio"
	"github.com/cbegin/ambient-go/internal/dsp"
	"github.com/cbegin/ambient-go/internal/effects"
	"github.com/cbegin/ambient-go/internal/voice"
)

var (
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrDeviceSuspended   = errors.New("audio device suspended")
	ErrClosed            = errors.New("audio graph closed")
)

// VolumeTimeConst is the time constant of master gain changes, in seconds.
const VolumeTimeConst = 0.08

// Graph owns the sample clock and the render list.
//
// Render state (clock, voices, master gain) is not locked here: the owner
// serializes Render, Connect and SetVolume. Device state has its own mutex
// and may be driven from any goroutine, but never while the owner holds the
// lock the device's pull path needs.
type Graph struct {
	sampleRate int

	frame    int64
	master   *dsp.Param
	bus      *effects.Chain
	analyser *dsp.Analyser
	voices   []*voice.Voice
	tap      []float64

	devMu     sync.Mutex
	backend   audio.Backend
	sink      audio.Sink
	devErr    error
	suspended bool
	closed    bool
}

func New(sampleRate int, backend audio.Backend) *Graph {
	if backend == nil {
		backend = audio.EbitenBackend{}
	}
	return &Graph{
		sampleRate: sampleRate,
		master:     dsp.NewParam(0),
		bus: effects.NewChain(
			effects.NewReverb(sampleRate, 0.6, 0.5, 0.18),
			effects.NewLimiter(sampleRate, -1, 5, 250),
		),
		analyser: dsp.NewAnalyser(),
		backend:  backend,
	}
}

func (g *Graph) SampleRate() int { return g.sampleRate }

// Frame is the sample clock: the number of frames rendered so far.
func (g *Graph) Frame() int64 { return g.frame }

// Now is the sample clock in seconds.
func (g *Graph) Now() float64 { return float64(g.frame) / float64(g.sampleRate) }

// Frames converts seconds into a frame count.
func (g *Graph) Frames(seconds float64) int64 {
	return int64(seconds*float64(g.sampleRate) + 0.5)
}

// Activate connects the output device on first call and returns the analysis
// tap. A failed first connection is sticky: every later call reports
// ErrDeviceUnavailable without retrying. On later calls a paused or suspended
// device is resumed; a failed resume reports ErrDeviceSuspended and can be
// retried.
func (g *Graph) Activate(src audio.SampleSource) (*dsp.Analyser, error) {
	g.devMu.Lock()
	defer g.devMu.Unlock()

	if g.closed {
		return nil, ErrClosed
	}
	if g.devErr != nil {
		return nil, g.devErr
	}
	if g.sink == nil {
		sink, err := g.backend.Open(g.sampleRate, src)
		if err != nil {
			g.devErr = fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, g.backend.Name(), err)
			return nil, g.devErr
		}
		g.sink = sink
	}
	if g.suspended {
		if s, ok := g.sink.(audio.Suspender); ok {
			if err := s.Resume(); err != nil {
				return g.analyser, fmt.Errorf("%w: %v", ErrDeviceSuspended, err)
			}
		}
		g.suspended = false
	}
	if !g.sink.IsPlaying() {
		g.sink.Play()
	}
	return g.analyser, nil
}

// Active reports whether a device connection exists.
func (g *Graph) Active() bool {
	g.devMu.Lock()
	defer g.devMu.Unlock()
	return g.sink != nil
}

// Suspend pauses the device. The sample clock stops with it.
func (g *Graph) Suspend() error {
	g.devMu.Lock()
	defer g.devMu.Unlock()
	if g.sink == nil {
		if g.devErr != nil {
			return g.devErr
		}
		return nil
	}
	if g.suspended {
		return nil
	}
	g.sink.Pause()
	if s, ok := g.sink.(audio.Suspender); ok {
		if err := s.Suspend(); err != nil {
			return err
		}
	}
	g.suspended = true
	return nil
}

// Resume undoes Suspend.
func (g *Graph) Resume() error {
	g.devMu.Lock()
	defer g.devMu.Unlock()
	if g.sink == nil {
		if g.devErr != nil {
			return g.devErr
		}
		return nil
	}
	if g.suspended {
		if s, ok := g.sink.(audio.Suspender); ok {
			if err := s.Resume(); err != nil {
				return fmt.Errorf("%w: %v", ErrDeviceSuspended, err)
			}
		}
		g.suspended = false
	}
	g.sink.Play()
	return nil
}

// Suspended reports whether the device is suspended.
func (g *Graph) Suspended() bool {
	g.devMu.Lock()
	defer g.devMu.Unlock()
	return g.suspended
}

// Close releases the device. The graph cannot be activated again.
func (g *Graph) Close() error {
	g.devMu.Lock()
	defer g.devMu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	if g.sink == nil {
		return nil
	}
	err := g.sink.Close()
	g.sink = nil
	return err
}

// Analyser returns the analysis tap. It exists before activation.
func (g *Graph) Analyser() *dsp.Analyser { return g.analyser }

// Connect adds v to the render list. It renders until v.Done.
func (g *Graph) Connect(v *voice.Voice) {
	g.voices = append(g.voices, v)
}

// Connected returns the number of voices still on the render list.
func (g *Graph) Connected() int { return len(g.voices) }

// SetVolume ramps the master gain toward v (or silence when muted) with an
// exponential approach starting now.
func (g *Graph) SetVolume(v float64, muted bool) {
	target := v
	if muted {
		target = 0
	}
	now := g.Now()
	g.master.CancelAndHoldAtTime(now)
	g.master.SetTargetAtTime(target, now, VolumeTimeConst)
}

// MasterGain returns the master gain at the current clock.
func (g *Graph) MasterGain() float64 { return g.master.ValueAt(g.Now()) }

// MasterGainAt evaluates the master gain curve at t seconds.
func (g *Graph) MasterGainAt(t float64) float64 { return g.master.ValueAt(t) }

// Render mixes every connected voice into interleaved stereo dst, advancing
// the clock by len(dst)/2 frames.
func (g *Graph) Render(dst []float32) {
	frames := len(dst) / 2
	if frames == 0 {
		return
	}
	if cap(g.tap) < frames {
		g.tap = make([]float64, frames)
	}
	tap := g.tap[:frames]
	sr := float64(g.sampleRate)
	for i := 0; i < frames; i++ {
		t := float64(g.frame) / sr
		var mix float64
		for _, v := range g.voices {
			mix += v.Render(t)
		}
		out := g.bus.Process(mix * g.master.ValueAt(t))
		tap[i] = out
		s := float32(out)
		dst[2*i] = s
		dst[2*i+1] = s
		g.frame++
	}
	g.analyser.Push(tap...)
	g.prune()
}

func (g *Graph) prune() {
	now := g.Now()
	kept := g.voices[:0]
	for _, v := range g.voices {
		if !v.Done(now) {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(g.voices); i++ {
		g.voices[i] = nil
	}
	g.voices = kept
}
