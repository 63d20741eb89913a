package dsp

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	// AnalyserSize is the FFT length of the analysis tap.
	AnalyserSize = 256
	// AnalyserBins is the number of frequency bins in a snapshot.
	AnalyserBins = AnalyserSize / 2

	minDecibels = -100.0
	maxDecibels = -30.0
	smoothing   = 0.8
)

// Analyser keeps the most recent AnalyserSize output samples and turns them
// into a smoothed magnitude spectrum on demand. Push is called from the render
// path, Snapshot from any goroutine.
type Analyser struct {
	mu       sync.Mutex
	ring     [AnalyserSize]float64
	pos      int
	window   []float64
	smoothed [AnalyserBins]float64
	scratch  []float64
}

func NewAnalyser() *Analyser {
	return &Analyser{
		window:  window.Hann(AnalyserSize),
		scratch: make([]float64, AnalyserSize),
	}
}

// Push appends rendered mono samples to the ring.
func (a *Analyser) Push(samples ...float64) {
	a.mu.Lock()
	for _, s := range samples {
		a.ring[a.pos] = s
		a.pos = (a.pos + 1) % AnalyserSize
	}
	a.mu.Unlock()
}

// Snapshot returns per-bin levels in [0, 1], mapped from the
// [-100 dB, -30 dB] range with temporal smoothing between calls.
func (a *Analyser) Snapshot() [AnalyserBins]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i < AnalyserSize; i++ {
		a.scratch[i] = a.ring[(a.pos+i)%AnalyserSize] * a.window[i]
	}
	spectrum := fft.FFTReal(a.scratch)

	var out [AnalyserBins]float64
	for i := 0; i < AnalyserBins; i++ {
		mag := cmplx.Abs(spectrum[i]) / AnalyserSize
		a.smoothed[i] = smoothing*a.smoothed[i] + (1-smoothing)*mag
		db := minDecibels
		if a.smoothed[i] > 0 {
			db = 20 * math.Log10(a.smoothed[i])
		}
		level := (db - minDecibels) / (maxDecibels - minDecibels)
		out[i] = math.Max(0, math.Min(1, level))
	}
	return out
}

// Level returns the RMS of the buffered samples.
func (a *Analyser) Level() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var sum float64
	for _, s := range a.ring {
		sum += s * s
	}
	return math.Sqrt(sum / AnalyserSize)
}
