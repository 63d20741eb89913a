package effects

// Reverb is a small Schroeder network (four parallel combs into two series
// allpasses) that gives the master bus some room.
type Reverb struct {
	combs   [4]combFilter
	allpass [2]allpassFilter
	wet     float64
}

type combFilter struct {
	buf []float64
	pos int
	fb  float64
	lp  float64 // one-pole damping inside the feedback loop
}

type allpassFilter struct {
	buf []float64
	pos int
}

// NewReverb creates a reverb.
// roomSize: 0..1 scales the delay lengths
// decay: 0..0.95 comb feedback
// wet: wet/dry mix 0..1
func NewReverb(sampleRate int, roomSize, decay, wet float64) *Reverb {
	base := int(float64(sampleRate) * clamp(roomSize, 0, 1) * 0.05)
	if base < 10 {
		base = 10
	}
	fb := clamp(decay, 0, 0.95)
	r := &Reverb{wet: clamp(wet, 0, 1)}
	combLens := [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000}
	for i := range r.combs {
		r.combs[i] = combFilter{buf: make([]float64, combLens[i]), fb: fb}
	}
	apLens := [2]int{max(base*347/1000, 1), max(base*213/1000, 1)}
	for i := range r.allpass {
		r.allpass[i] = allpassFilter{buf: make([]float64, apLens[i])}
	}
	return r
}

func (r *Reverb) Process(x float64) float64 {
	var out float64
	for i := range r.combs {
		out += r.combs[i].process(x)
	}
	out *= 0.25
	for i := range r.allpass {
		out = r.allpass[i].process(out)
	}
	return x*(1-r.wet) + out*r.wet
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		clear(r.combs[i].buf)
		r.combs[i].pos = 0
		r.combs[i].lp = 0
	}
	for i := range r.allpass {
		clear(r.allpass[i].buf)
		r.allpass[i].pos = 0
	}
}

func (c *combFilter) process(in float64) float64 {
	out := c.buf[c.pos]
	c.lp += 0.3 * (out - c.lp)
	c.buf[c.pos] = in + c.lp*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpassFilter) process(in float64) float64 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*0.5
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}
