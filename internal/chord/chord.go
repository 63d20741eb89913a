// Package chord tracks the pad layer's chord progression and announces
// chord changes to interested layers.
package chord

import "slices"

// Notes is a chord as a set of frequencies in Hz. Values handed out by this
// package are copies; callers may keep them.
type Notes []float64

// Equal reports whether two chords contain the same frequencies in order.
func (n Notes) Equal(other Notes) bool {
	return slices.Equal(n, other)
}

// Progression is the fixed cycle the pad walks through: Cmaj, Am, Fmaj, Gmaj.
var Progression = []Notes{
	{130.81, 164.81, 196.00},
	{110.00, 130.81, 164.81},
	{87.31, 110.00, 130.81},
	{98.00, 123.47, 146.83},
}

// Change describes one pad emission.
type Change struct {
	Index    int // index of the emitted chord in the progression
	Notes    Notes
	Previous Notes
	Changed  bool
}

// State is the progression cursor plus the currently sounding chord.
// Current and the next Advance swap the whole chord at once, so a reader
// never observes a mix of old and new frequencies.
//
// State is not safe for concurrent use; the engine serializes access.
type State struct {
	progression []Notes
	index       int
	current     Notes
	previous    Notes
}

// NewState starts at the first chord of progression with nothing sounding.
func NewState(progression []Notes) *State {
	if len(progression) == 0 {
		progression = Progression
	}
	return &State{progression: progression}
}

// Advance emits the chord at the cursor, records it as current and moves the
// cursor on. The first emission always reports a change.
func (s *State) Advance() Change {
	idx := s.index
	next := slices.Clone(s.progression[idx])
	changed := !next.Equal(s.current)
	s.previous = s.current
	s.current = next
	s.index = (s.index + 1) % len(s.progression)
	return Change{
		Index:    idx,
		Notes:    slices.Clone(next),
		Previous: slices.Clone(s.previous),
		Changed:  changed,
	}
}

// Current returns a copy of the sounding chord, or nil before the first emission.
func (s *State) Current() Notes {
	return slices.Clone(s.current)
}

// Previous returns a copy of the prior emission.
func (s *State) Previous() Notes {
	return slices.Clone(s.previous)
}

// Index returns the cursor: the progression index the next Advance will emit.
func (s *State) Index() int { return s.index }

// Reset clears the sounding chord. The cursor is kept so a restarted session
// continues the progression.
func (s *State) Reset() {
	s.current = nil
	s.previous = nil
}

// Arpeggio derives the arpeggio pattern for a chord: the chord tones in
// ascending order followed by the root raised an octave.
func Arpeggio(notes Notes) Notes {
	if len(notes) == 0 {
		return nil
	}
	out := slices.Clone(notes)
	slices.Sort(out)
	return append(out, out[0]*2)
}
