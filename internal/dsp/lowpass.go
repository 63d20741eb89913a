package dsp

import "math"

const minCutoff = 20.0

// Lowpass is two cascaded one-pole lowpass stages (12 dB/oct) with an
// automatable cutoff. Coefficients are recomputed only when the cutoff moves.
type Lowpass struct {
	Cutoff *Param
	// Offset is added to Cutoff each sample, e.g. by an LFO.
	Offset     float64
	sampleRate int
	lastCutoff float64
	alpha      float64
	s1, s2     float64
}

// NewLowpass creates a lowpass at cutoffHz.
func NewLowpass(sampleRate int, cutoffHz float64) *Lowpass {
	lp := &Lowpass{Cutoff: NewParam(cutoffHz), sampleRate: sampleRate, lastCutoff: -1}
	return lp
}

// Process filters one sample at graph time t.
func (lp *Lowpass) Process(in, t float64) float64 {
	c := math.Max(lp.Cutoff.ValueAt(t)+lp.Offset, minCutoff)
	if math.Abs(c-lp.lastCutoff) > 0.5 {
		lp.lastCutoff = c
		lp.alpha = onePoleAlpha(lp.sampleRate, c)
	}
	lp.s1 += lp.alpha * (in - lp.s1)
	lp.s2 += lp.alpha * (lp.s1 - lp.s2)
	return lp.s2
}

// onePoleAlpha returns the smoothing coefficient for an RC lowpass at cutoff.
// Cutoffs at or above Nyquist are pulled just below it; zero disables filtering.
func onePoleAlpha(sampleRate int, cutoff float64) float64 {
	if cutoff <= 0 {
		return 0
	}
	nyquist := float64(sampleRate) / 2
	if cutoff > nyquist*0.95 {
		cutoff = nyquist * 0.95
	}
	rc := 1.0 / (twoPi * cutoff)
	dt := 1.0 / float64(sampleRate)
	return dt / (rc + dt)
}
