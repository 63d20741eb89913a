// Package voice holds synthesis units and the registry of live units.
package voice

import (
	"math"

	"github.com/cbegin/ambient-go/internal/dsp"
	"github.com/cbegin/ambient-go/internal/effects"
)

// Kind tags a unit with the layer that created it.
type Kind string

const (
	KindPad       Kind = "pad"
	KindBass      Kind = "bass"
	KindMelody    Kind = "melody"
	KindTexture   Kind = "texture"
	KindHeartbeat Kind = "heartbeat"
	KindArpeggio  Kind = "arpeggio"
)

// Kinds lists every layer kind in start order.
var Kinds = []Kind{KindPad, KindBass, KindTexture, KindMelody, KindHeartbeat, KindArpeggio}

// Stoppable is a source that can be halted at a graph time.
type Stoppable interface {
	dsp.Source
	Stop(t float64)
	StopTime() float64
}

// Input is one source feeding a voice at a fixed level.
type Input struct {
	Source Stoppable
	Level  float64
}

// Voice is one time-bounded synthesis unit:
//
//	sources -> [shaper] -> [lowpass] -> gain envelope -> dry + [echo]
//
// Every path ends in the voice output, which the graph sums into the master gain.
type Voice struct {
	Kind   Kind
	inputs []Input
	Shaper *effects.Shaper
	Filter *dsp.Lowpass
	Gain   *dsp.Param
	echo   *effects.Echo
	// Modulate, when set, runs once per sample before the filter.
	Modulate func(v *Voice, t float64)

	tail float64
}

// New returns a voice whose gain envelope starts at zero.
func New(kind Kind, inputs ...Input) *Voice {
	return &Voice{Kind: kind, inputs: inputs, Gain: dsp.NewParam(0)}
}

// WithEcho routes the enveloped signal through an additional echo path.
func (v *Voice) WithEcho(e *effects.Echo, sampleRate int) *Voice {
	v.echo = e
	v.tail = e.Tail(sampleRate)
	return v
}

// Render produces the voice output at graph time t.
func (v *Voice) Render(t float64) float64 {
	var x float64
	for _, in := range v.inputs {
		x += in.Source.Sample(t) * in.Level
	}
	if v.Shaper != nil {
		x = v.Shaper.Process(x)
	}
	if v.Modulate != nil {
		v.Modulate(v, t)
	}
	if v.Filter != nil {
		x = v.Filter.Process(x, t)
	}
	x *= v.Gain.ValueAt(t)
	if v.echo != nil {
		x += v.echo.Process(x)
	}
	return x
}

// Stop halts every source at t.
func (v *Voice) Stop(t float64) {
	for _, in := range v.inputs {
		in.Source.Stop(t)
	}
}

// StopTime is the latest scheduled stop across sources (+Inf if any source runs open-ended).
func (v *Voice) StopTime() float64 {
	end := math.Inf(-1)
	for _, in := range v.inputs {
		end = math.Max(end, in.Source.StopTime())
	}
	return end
}

// Done reports whether the voice is silent for good at t, echo tail included.
func (v *Voice) Done(t float64) bool {
	return t >= v.StopTime()+v.tail
}

// FadeOut ramps the gain from its current value to silence over dur seconds
// and halts the sources when the ramp completes.
func (v *Voice) FadeOut(now, dur float64) {
	v.Gain.CancelAndHoldAtTime(now)
	v.Gain.LinearRampToValueAtTime(0, now+dur)
	v.Stop(now + dur)
}
