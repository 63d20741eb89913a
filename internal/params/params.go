// Package params holds the live-tunable generation parameters and their
// serializable snapshot.
package params

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cbegin/ambient-go/internal/dsp"
)

// Timbre is the pad oscillator shape.
type Timbre string

const (
	TimbreSine     Timbre = "sine"
	TimbreTriangle Timbre = "triangle"
	TimbreSquare   Timbre = "square"
	TimbreSawtooth Timbre = "sawtooth"
)

const (
	MinFilterHz = 100.0
	MaxFilterHz = 10000.0
	// UI sliders only expose this narrower range.
	UIMinFilterHz = 200
	UIMaxFilterHz = 8000

	MinChordPeriodMs = 4000
	MaxChordPeriodMs = 30000

	DefaultTimbre        = TimbreTriangle
	DefaultFilterHz      = 2000.0
	DefaultChordPeriodMs = 12000
	DefaultVolume        = 0.7
)

var ErrInvalidTimbre = errors.New("invalid oscillator timbre")

// ParseTimbre accepts the four timbre names, case-insensitively.
func ParseTimbre(name string) (Timbre, error) {
	switch t := Timbre(strings.ToLower(strings.TrimSpace(name))); t {
	case TimbreSine, TimbreTriangle, TimbreSquare, TimbreSawtooth:
		return t, nil
	}
	return "", fmt.Errorf("%w %q (expected sine|triangle|square|sawtooth)", ErrInvalidTimbre, name)
}

// Waveform maps the timbre onto an oscillator shape.
func (t Timbre) Waveform() dsp.Waveform {
	switch t {
	case TimbreSine:
		return dsp.WaveSine
	case TimbreSquare:
		return dsp.WaveSquare
	case TimbreSawtooth:
		return dsp.WaveSawtooth
	default:
		return dsp.WaveTriangle
	}
}

// Store is the process-wide parameter set. Layers read it when they
// synthesize a new unit; nothing already sounding is changed by a setter.
//
// Store is not safe for concurrent use; the engine serializes access.
type Store struct {
	timbre        Timbre
	filterHz      float64
	chordPeriodMs int
	volume        float64
	muted         bool
	heartbeat     bool
	arpeggio      bool
}

// NewStore returns a store holding the defaults.
func NewStore() *Store {
	return &Store{
		timbre:        DefaultTimbre,
		filterHz:      DefaultFilterHz,
		chordPeriodMs: DefaultChordPeriodMs,
		volume:        DefaultVolume,
	}
}

func (s *Store) Timbre() Timbre         { return s.timbre }
func (s *Store) FilterHz() float64      { return s.filterHz }
func (s *Store) ChordPeriodMs() int     { return s.chordPeriodMs }
func (s *Store) Volume() float64        { return s.volume }
func (s *Store) Muted() bool            { return s.muted }
func (s *Store) HeartbeatEnabled() bool { return s.heartbeat }
func (s *Store) ArpeggioEnabled() bool  { return s.arpeggio }

// SetTimbre rejects unknown names and leaves the current timbre unchanged.
func (s *Store) SetTimbre(name string) error {
	t, err := ParseTimbre(name)
	if err != nil {
		return err
	}
	s.timbre = t
	return nil
}

// SetFilterHz clamps into [MinFilterHz, MaxFilterHz] and returns the stored value.
func (s *Store) SetFilterHz(hz float64) float64 {
	s.filterHz = ClampFilterHz(hz)
	return s.filterHz
}

// SetChordPeriodMs clamps into [MinChordPeriodMs, MaxChordPeriodMs] and returns the stored value.
func (s *Store) SetChordPeriodMs(ms int) int {
	s.chordPeriodMs = ClampChordPeriodMs(ms)
	return s.chordPeriodMs
}

// SetVolume clamps into [0, 1] and returns the stored value.
func (s *Store) SetVolume(v float64) float64 {
	s.volume = ClampVolume(v)
	return s.volume
}

func (s *Store) SetMuted(muted bool)       { s.muted = muted }
func (s *Store) SetHeartbeat(enabled bool) { s.heartbeat = enabled }
func (s *Store) SetArpeggio(enabled bool)  { s.arpeggio = enabled }

func ClampFilterHz(hz float64) float64 {
	if hz != hz { // NaN
		return DefaultFilterHz
	}
	return min(max(hz, MinFilterHz), MaxFilterHz)
}

func ClampChordPeriodMs(ms int) int {
	return min(max(ms, MinChordPeriodMs), MaxChordPeriodMs)
}

func ClampVolume(v float64) float64 {
	if v != v {
		return 0
	}
	return min(max(v, 0), 1)
}

// VolumeFromPercent maps the 0-100 control surface scale onto 0.0-1.0.
func VolumeFromPercent(pct int) float64 {
	return ClampVolume(float64(pct) / 100)
}

// InvertChordSlider maps a slider position in [min, max] onto the chord period
// range backwards, so moving the slider right makes chords change faster.
func InvertChordSlider(pos int) int {
	pos = ClampChordPeriodMs(pos)
	return MinChordPeriodMs + MaxChordPeriodMs - pos
}
