package effects

import "math"

// Shaper is a soft-clipping waveshaper: tanh(drive*x), normalised so a full
// scale input still peaks at 1. Input beyond full scale is clipped first.
type Shaper struct {
	drive float64
	norm  float64
}

// NewShaper creates a waveshaper. drive <= 1 is close to transparent; the bass
// layer uses ~2-3 for a warm, rounded edge.
func NewShaper(drive float64) *Shaper {
	if drive <= 0 {
		drive = 1
	}
	return &Shaper{drive: drive, norm: 1 / math.Tanh(drive)}
}

func (s *Shaper) Process(x float64) float64 {
	return math.Tanh(clamp(x, -1, 1)*s.drive) * s.norm
}

func (s *Shaper) Reset() {}
