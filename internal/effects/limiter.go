package effects

import "math"

// Limiter keeps the master bus under a ceiling with a fast-attack,
// slow-release envelope follower.
type Limiter struct {
	ceiling float64
	attack  float64 // coefficient
	release float64 // coefficient
	env     float64
}

// NewLimiter creates a limiter.
// ceilingDB: output ceiling in dBFS (e.g., -1)
// attackMs: attack time in ms
// releaseMs: release time in ms
func NewLimiter(sampleRate int, ceilingDB, attackMs, releaseMs float64) *Limiter {
	sr := float64(sampleRate)
	return &Limiter{
		ceiling: math.Pow(10, ceilingDB/20),
		attack:  1.0 - math.Exp(-1.0/(attackMs*sr/1000.0)),
		release: 1.0 - math.Exp(-1.0/(releaseMs*sr/1000.0)),
	}
}

func (l *Limiter) Process(x float64) float64 {
	abs := math.Abs(x)
	if abs > l.env {
		l.env += l.attack * (abs - l.env)
	} else {
		l.env += l.release * (abs - l.env)
	}
	if l.env > l.ceiling {
		x *= l.ceiling / l.env
	}
	// Whatever slips past the follower is clipped hard.
	return clamp(x, -1, 1)
}

func (l *Limiter) Reset() {
	l.env = 0
}
