package main

import (
	"fmt"
	"os"
	"strings"

	ambient "github.com/cbegin/ambient-go"
	"github.com/cbegin/ambient-go/internal/params"
	"golang.org/x/term"
)

const quickPreset = "quick"

var timbres = []string{ambient.TimbreSine, ambient.TimbreTriangle, ambient.TimbreSquare, ambient.TimbreSawtooth}

const helpText = "keys: space start/stop  m mute  h heartbeat  a arpeggio  t timbre\r\n" +
	"      [ ] filter  - + volume  < > chord speed  s/l save/load preset  q quit\r\n"

// runKeys reads single keystrokes in raw mode until q or Ctrl-C.
func runKeys(eng *ambient.Engine) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	fmt.Print(helpText)
	status(eng, "playing")
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil
		}
		if n == 0 {
			continue
		}
		if done := handleKey(eng, buf[0]); done {
			eng.Stop()
			fmt.Print("\r\n")
			return nil
		}
	}
}

func handleKey(eng *ambient.Engine, key byte) bool {
	st := eng.Settings()
	switch key {
	case 'q', 3: // Ctrl-C
		return true
	case ' ':
		if eng.IsPlaying() {
			eng.Stop()
			status(eng, "stopped")
			return false
		}
		if err := eng.Start(); err != nil {
			status(eng, err.Error())
			return false
		}
		status(eng, "playing")
	case 'm':
		muted, err := eng.ToggleMute()
		status(eng, fmt.Sprintf("muted=%v%s", muted, errSuffix(err)))
	case 'h':
		status(eng, fmt.Sprintf("heartbeat=%v", eng.ToggleHeartbeat()))
	case 'a':
		status(eng, fmt.Sprintf("arpeggio=%v", eng.ToggleArpeggiator()))
	case 't':
		next := timbres[0]
		for i, name := range timbres {
			if name == string(st.OscillatorTimbre) {
				next = timbres[(i+1)%len(timbres)]
			}
		}
		eng.SetOscillatorTimbre(next)
		status(eng, "timbre="+next)
	case '[', ']':
		step := 200.0
		if key == '[' {
			step = -step
		}
		hz := min(max(st.FilterBrightnessHz+step, params.UIMinFilterHz), params.UIMaxFilterHz)
		status(eng, fmt.Sprintf("filter=%.0fHz", eng.SetFilterBrightness(hz)))
	case '-', '+', '=':
		pct := int(st.Volume*100 + 0.5)
		if key == '-' {
			pct -= 5
		} else {
			pct += 5
		}
		err := eng.SetVolumePercent(pct)
		status(eng, fmt.Sprintf("volume=%d%%%s", int(eng.Volume()*100+0.5), errSuffix(err)))
	case '<', ',', '>', '.':
		// The chord slider runs backwards: right means faster changes.
		pos := params.InvertChordSlider(st.ChordPeriodMs)
		if key == '>' || key == '.' {
			pos += 2000
		} else {
			pos -= 2000
		}
		ms := eng.SetChordPeriod(params.InvertChordSlider(pos))
		status(eng, fmt.Sprintf("chord period=%dms", ms))
	case 's':
		status(eng, "saved preset "+quickPreset+errSuffix(eng.SavePreset(quickPreset)))
	case 'l':
		status(eng, "loaded preset "+quickPreset+errSuffix(eng.LoadPreset(quickPreset)))
	case '?':
		fmt.Print(helpText)
	}
	return false
}

func status(eng *ambient.Engine, msg string) {
	chordNames := make([]string, 0, 3)
	for _, f := range eng.CurrentChord() {
		chordNames = append(chordNames, fmt.Sprintf("%.0f", f))
	}
	fmt.Printf("\r\x1b[K%s  [chord %s]", msg, strings.Join(chordNames, "/"))
}

func errSuffix(err error) string {
	if err == nil {
		return ""
	}
	return " (" + err.Error() + ")"
}
