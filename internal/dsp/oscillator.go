package dsp

import "math"

const twoPi = math.Pi * 2

// Waveform selects an oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
	WaveSquare
	WaveSawtooth
)

// Source produces one mono sample for the graph time t (seconds).
type Source interface {
	Sample(t float64) float64
}

// Oscillator is a naive phase-accumulating oscillator with an automatable
// frequency. It is silent outside its [start, stop) window.
type Oscillator struct {
	wave       Waveform
	Freq       *Param
	phase      float64 // [0, 1)
	sampleRate float64
	start      float64
	stop       float64
}

// NewOscillator creates an oscillator that starts sounding at start.
func NewOscillator(sampleRate int, wave Waveform, freq, start float64) *Oscillator {
	return &Oscillator{
		wave:       wave,
		Freq:       NewParam(freq),
		sampleRate: float64(sampleRate),
		start:      start,
		stop:       math.Inf(1),
	}
}

// Stop schedules the oscillator to halt at t. An earlier stop always wins.
func (o *Oscillator) Stop(t float64) {
	if t < o.stop {
		o.stop = t
	}
}

// StopTime returns the scheduled halt time (+Inf if none).
func (o *Oscillator) StopTime() float64 { return o.stop }

func (o *Oscillator) Sample(t float64) float64 {
	if t < o.start || t >= o.stop {
		return 0
	}
	v := waveValue(o.wave, o.phase)
	o.phase += o.Freq.ValueAt(t) / o.sampleRate
	o.phase -= math.Floor(o.phase)
	return v
}

func waveValue(wave Waveform, phase float64) float64 {
	switch wave {
	case WaveTriangle:
		if phase < 0.5 {
			return 4.0*phase - 1.0
		}
		return 3.0 - 4.0*phase
	case WaveSquare:
		if phase < 0.5 {
			return 1.0
		}
		return -1.0
	case WaveSawtooth:
		return 2.0*phase - 1.0
	default:
		return math.Sin(twoPi * phase)
	}
}
