package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var ErrMalformedSettings = errors.New("malformed settings")

// Settings is a flat, immutable snapshot of every tunable parameter and
// layer toggle. It holds only numbers, strings and booleans.
type Settings struct {
	OscillatorTimbre   Timbre  `json:"oscillatorTimbre"`
	FilterBrightnessHz float64 `json:"filterBrightnessHz"`
	ChordPeriodMs      int     `json:"chordPeriodMs"`
	Volume             float64 `json:"volume"`
	Muted              bool    `json:"muted"`
	HeartbeatEnabled   bool    `json:"heartbeatEnabled"`
	ArpeggioEnabled    bool    `json:"arpeggioEnabled"`
}

// DefaultSettings is the snapshot of a fresh Store.
func DefaultSettings() Settings {
	return NewStore().Snapshot()
}

// Snapshot bundles the store into a Settings value.
func (s *Store) Snapshot() Settings {
	return Settings{
		OscillatorTimbre:   s.timbre,
		FilterBrightnessHz: s.filterHz,
		ChordPeriodMs:      s.chordPeriodMs,
		Volume:             s.volume,
		Muted:              s.muted,
		HeartbeatEnabled:   s.heartbeat,
		ArpeggioEnabled:    s.arpeggio,
	}
}

// Validate rejects snapshots that cannot be applied: an unknown timbre or a
// NaN where a number is expected. Out-of-range numbers are left to the
// setters, which clamp.
func (st Settings) Validate() error {
	if _, err := ParseTimbre(string(st.OscillatorTimbre)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSettings, err)
	}
	if math.IsNaN(st.FilterBrightnessHz) {
		return fmt.Errorf("%w: filterBrightnessHz is NaN", ErrMalformedSettings)
	}
	if math.IsNaN(st.Volume) {
		return fmt.Errorf("%w: volume is NaN", ErrMalformedSettings)
	}
	return nil
}

// Clamped returns st with every number pulled into its valid range.
func (st Settings) Clamped() Settings {
	st.FilterBrightnessHz = ClampFilterHz(st.FilterBrightnessHz)
	st.ChordPeriodMs = ClampChordPeriodMs(st.ChordPeriodMs)
	st.Volume = ClampVolume(st.Volume)
	return st
}

// Encode serializes a snapshot to JSON.
func Encode(st Settings) ([]byte, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(st)
}

// Decode parses a JSON snapshot. Fields missing from the document keep their
// default values, unknown fields are ignored and out-of-range numbers are
// clamped.
func Decode(data []byte) (Settings, error) {
	st := DefaultSettings()
	if err := json.Unmarshal(data, &st); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrMalformedSettings, err)
	}
	if err := st.Validate(); err != nil {
		return Settings{}, err
	}
	st.OscillatorTimbre, _ = ParseTimbre(string(st.OscillatorTimbre))
	return st.Clamped(), nil
}
