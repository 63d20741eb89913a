package lfo

import "math"

// Shape selects the modulation curve.
type Shape int

const (
	ShapeSine Shape = iota
	ShapeTriangle
	// ShapeDrift glides between pseudo-random points once per cycle.
	ShapeDrift
)

// LFO is a low-frequency oscillator that produces per-sample modulation.
type LFO struct {
	depth  float64 // output swings within [-depth, +depth]
	rateHz float64
	shape  Shape
	phase  float64 // [0, 1)
	from   float64 // drift start point in [-1, 1]
	to     float64 // drift end point in [-1, 1]
	seed   float64
}

// Set configures the LFO. Unknown shapes fall back to sine. The phase is kept
// so retuning a running LFO does not jump.
func (l *LFO) Set(depth, rateHz float64, shape Shape) {
	l.depth = depth
	l.rateHz = rateHz
	if shape < ShapeSine || shape > ShapeDrift {
		shape = ShapeSine
	}
	l.shape = shape
}

// Seed sets the starting point of the drift sequence.
func (l *LFO) Seed(seed float64) {
	l.seed = seed
	l.from = 0
	l.to = hash(seed)
}

// Sample advances the LFO by one sample and returns a value in [-depth, +depth].
// Returns 0 if depth or rate is zero.
func (l *LFO) Sample(sampleRate float64) float64 {
	if l.depth == 0 || l.rateHz == 0 || sampleRate == 0 {
		return 0
	}

	var v float64
	switch l.shape {
	case ShapeTriangle:
		if l.phase < 0.5 {
			v = 4.0*l.phase - 1.0
		} else {
			v = 3.0 - 4.0*l.phase
		}
	case ShapeDrift:
		// Cosine interpolation keeps the glide free of corners.
		mix := (1 - math.Cos(math.Pi*l.phase)) / 2
		v = l.from + (l.to-l.from)*mix
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}

	l.phase += l.rateHz / sampleRate
	for l.phase >= 1.0 {
		l.phase -= 1.0
		if l.shape == ShapeDrift {
			l.seed++
			l.from = l.to
			l.to = hash(l.seed)
		}
	}
	return v * l.depth
}

// Active returns true if the LFO has non-zero depth and rate.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.rateHz != 0
}

// Reset zeros the LFO phase and drift points.
func (l *LFO) Reset() {
	l.phase = 0
	l.from = 0
	l.to = 0
}

// hash maps a seed to [-1, 1) with a sine-based hash.
func hash(seed float64) float64 {
	h := math.Sin(seed*12.9898+78.233) * 43758.5453
	h -= math.Floor(h)
	return h*2.0 - 1.0
}
