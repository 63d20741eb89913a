package dsp

import (
	"math"
	"math/rand"
)

// NoiseLoop plays a pre-rendered noise buffer in a continuous loop.
type NoiseLoop struct {
	buf   []float64
	pos   int
	start float64
	stop  float64
}

// NewNoiseBuffer renders seconds of white noise through a one-pole lowpass at
// smoothHz, normalised to peak 1. The same rng state always yields the same buffer.
func NewNoiseBuffer(rng *rand.Rand, sampleRate int, seconds, smoothHz float64) []float64 {
	n := int(seconds * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	buf := make([]float64, n)
	alpha := onePoleAlpha(sampleRate, smoothHz)
	var lp, peak float64
	for i := range buf {
		white := rng.Float64()*2 - 1
		if alpha > 0 {
			lp += alpha * (white - lp)
			buf[i] = lp
		} else {
			buf[i] = white
		}
		if a := math.Abs(buf[i]); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		for i := range buf {
			buf[i] /= peak
		}
	}
	return buf
}

// NewNoiseLoop loops buf from start until stopped.
func NewNoiseLoop(buf []float64, start float64) *NoiseLoop {
	return &NoiseLoop{buf: buf, start: start, stop: math.Inf(1)}
}

// Stop schedules the loop to halt at t. An earlier stop always wins.
func (n *NoiseLoop) Stop(t float64) {
	if t < n.stop {
		n.stop = t
	}
}

// StopTime returns the scheduled halt time (+Inf if none).
func (n *NoiseLoop) StopTime() float64 { return n.stop }

func (n *NoiseLoop) Sample(t float64) float64 {
	if t < n.start || t >= n.stop || len(n.buf) == 0 {
		return 0
	}
	v := n.buf[n.pos]
	n.pos++
	if n.pos >= len(n.buf) {
		n.pos = 0
	}
	return v
}
