package effects

// Echo is the delayed, attenuated copy of a signal that melody notes send
// alongside their dry path. Process returns only the wet echo; callers mix it
// with the dry signal themselves.
type Echo struct {
	buf      []float64
	pos      int
	feedback float64
	level    float64
}

// NewEcho creates an echo line.
// delaySec: echo spacing in seconds
// feedback: how much of each echo feeds the next, 0..0.95
// level: output attenuation of the echo path, 0..1
func NewEcho(sampleRate int, delaySec, feedback, level float64) *Echo {
	samples := int(delaySec * float64(sampleRate))
	if samples < 1 {
		samples = 1
	}
	return &Echo{
		buf:      make([]float64, samples),
		feedback: clamp(feedback, 0, 0.95),
		level:    clamp(level, 0, 1),
	}
}

func (e *Echo) Process(x float64) float64 {
	delayed := e.buf[e.pos]
	e.buf[e.pos] = x + delayed*e.feedback
	e.pos++
	if e.pos >= len(e.buf) {
		e.pos = 0
	}
	return delayed * e.level
}

// Tail is how long the echo keeps ringing after its input goes silent,
// measured until it decays below roughly -60 dB.
func (e *Echo) Tail(sampleRate int) float64 {
	delay := float64(len(e.buf)) / float64(sampleRate)
	if e.feedback <= 0 {
		return delay
	}
	repeats := 1
	for g := e.level; g > 0.001 && repeats < 64; g *= e.feedback {
		repeats++
	}
	return delay * float64(repeats)
}

func (e *Echo) Reset() {
	for i := range e.buf {
		e.buf[i] = 0
	}
	e.pos = 0
}
