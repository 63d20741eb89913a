package params

import (
	"errors"
	"math"
	"testing"
)

func TestSettersClamp(t *testing.T) {
	s := NewStore()
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"filter below", s.SetFilterHz(-5), 100},
		{"filter above", s.SetFilterHz(999999), 10000},
		{"filter in range", s.SetFilterHz(440), 440},
		{"filter NaN", s.SetFilterHz(math.NaN()), DefaultFilterHz},
		{"chord below", float64(s.SetChordPeriodMs(1)), 4000},
		{"chord above", float64(s.SetChordPeriodMs(999999)), 30000},
		{"chord in range", float64(s.SetChordPeriodMs(9000)), 9000},
		{"volume below", s.SetVolume(-1), 0},
		{"volume above", s.SetVolume(3), 1},
		{"volume percent", VolumeFromPercent(35), 0.35},
		{"volume percent above", VolumeFromPercent(250), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if math.Abs(tc.got-tc.want) > 1e-12 {
				t.Fatalf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestInvalidTimbreLeavesValue(t *testing.T) {
	s := NewStore()
	if err := s.SetTimbre("Sawtooth"); err != nil {
		t.Fatalf("valid timbre rejected: %v", err)
	}
	err := s.SetTimbre("kazoo")
	if !errors.Is(err, ErrInvalidTimbre) {
		t.Fatalf("err = %v, want ErrInvalidTimbre", err)
	}
	if s.Timbre() != TimbreSawtooth {
		t.Fatalf("timbre = %q, want sawtooth", s.Timbre())
	}
}

func TestDefaults(t *testing.T) {
	want := Settings{
		OscillatorTimbre:   TimbreTriangle,
		FilterBrightnessHz: 2000,
		ChordPeriodMs:      12000,
		Volume:             0.7,
	}
	if got := DefaultSettings(); got != want {
		t.Fatalf("defaults = %+v, want %+v", got, want)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := NewStore()
	s.SetTimbre("square")
	s.SetFilterHz(3300)
	s.SetChordPeriodMs(7000)
	s.SetVolume(0.25)
	s.SetMuted(true)
	s.SetArpeggio(true)

	data, err := Encode(s.Snapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != s.Snapshot() {
		t.Fatalf("round trip = %+v, want %+v", got, s.Snapshot())
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"not json", "{volume:"},
		{"bad timbre", `{"oscillatorTimbre":"kazoo"}`},
		{"wrong type", `{"muted":"yes"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode([]byte(tc.doc)); !errors.Is(err, ErrMalformedSettings) {
				t.Fatalf("err = %v, want ErrMalformedSettings", err)
			}
		})
	}
}

func TestDecodeClampsOutOfRange(t *testing.T) {
	got, err := Decode([]byte(`{"filterBrightnessHz":5,"chordPeriodMs":100,"volume":7}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FilterBrightnessHz != MinFilterHz || got.ChordPeriodMs != MinChordPeriodMs || got.Volume != 1 {
		t.Fatalf("got %+v, want clamped values", got)
	}
}

func TestValidateRejectsNaN(t *testing.T) {
	st := DefaultSettings()
	st.Volume = math.NaN()
	if err := st.Validate(); !errors.Is(err, ErrMalformedSettings) {
		t.Fatalf("err = %v, want ErrMalformedSettings", err)
	}
	st = DefaultSettings()
	st.FilterBrightnessHz = 1e9
	if err := st.Validate(); err != nil {
		t.Fatalf("out-of-range filter should validate, got %v", err)
	}
}

func TestDecodePartialKeepsDefaults(t *testing.T) {
	got, err := Decode([]byte(`{"oscillatorTimbre":"SINE","heartbeatEnabled":true}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := DefaultSettings()
	want.OscillatorTimbre = TimbreSine
	want.HeartbeatEnabled = true
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestInvertChordSlider(t *testing.T) {
	if got := InvertChordSlider(MinChordPeriodMs); got != MaxChordPeriodMs {
		t.Fatalf("slider min = %d, want %d", got, MaxChordPeriodMs)
	}
	if got := InvertChordSlider(26000); got != 8000 {
		t.Fatalf("slider 26000 = %d, want 8000", got)
	}
}
