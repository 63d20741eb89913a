package layers

import (
	"bytes"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/cbegin/ambient-go/internal/audio"
	"github.com/cbegin/ambient-go/internal/chord"
	"github.com/cbegin/ambient-go/internal/graph"
	"github.com/cbegin/ambient-go/internal/params"
	"github.com/cbegin/ambient-go/internal/sched"
	"github.com/cbegin/ambient-go/internal/voice"
)

const testRate = 8000

type harness struct {
	s      *Scheduler
	g      *graph.Graph
	params *params.Store
	events []Event
}

func newHarness(t *testing.T, logger *slog.Logger) *harness {
	t.Helper()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &harness{
		g:      graph.New(testRate, audio.OfflineBackend{}),
		params: params.NewStore(),
	}
	h.s = New(Config{
		Graph:   h.g,
		Params:  h.params,
		Rand:    rand.New(rand.NewSource(7)),
		Logger:  logger,
		OnEvent: func(e Event) { h.events = append(h.events, e) },
	})
	h.g.SetVolume(h.params.Volume(), false)
	return h
}

// advance renders sec seconds in device-sized blocks.
func (h *harness) advance(sec float64) {
	frames := int(sec * testRate)
	buf := make([]float32, 2*512)
	for frames > 0 {
		n := min(frames, 512)
		h.s.Process(buf[:2*n])
		frames -= n
	}
}

func (h *harness) count(kind EventKind) int {
	n := 0
	for _, e := range h.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestStartSchedulesBaseLayers(t *testing.T) {
	h := newHarness(t, nil)
	if !h.s.Start() {
		t.Fatal("Start returned false")
	}
	timers := h.s.Timers()
	for _, kind := range []sched.Kind{TimerPad, TimerBass, TimerTexture, TimerMelody} {
		if n := timers.Count(kind); n < 1 {
			t.Errorf("%s has %d pending timers, want >= 1", kind, n)
		}
	}
	if n := timers.Count(TimerHeartbeat); n != 0 {
		t.Errorf("heartbeat timers = %d, want 0", n)
	}
	if n := timers.Count(TimerArpeggioNote); n != 0 {
		t.Errorf("arpeggio timers = %d, want 0", n)
	}

	units := h.s.Units()
	if got := units.Count(voice.KindPad); got != len(chord.Progression[0]) {
		t.Errorf("pad units = %d, want %d", got, len(chord.Progression[0]))
	}
	if got := units.Count(voice.KindTexture); got != 1 {
		t.Errorf("texture units = %d, want 1", got)
	}
	if got := units.Count(voice.KindBass); got != 1 {
		t.Errorf("bass units = %d, want 1", got)
	}
	if got := units.Count(voice.KindHeartbeat) + units.Count(voice.KindArpeggio); got != 0 {
		t.Errorf("optional layer units = %d, want 0", got)
	}
	if !h.s.chord.Current().Equal(chord.Progression[0]) {
		t.Errorf("current chord = %v", h.s.chord.Current())
	}
}

func TestStartIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	h.s.Start()
	pending := h.s.Timers().Len()
	if h.s.Start() {
		t.Fatal("second Start should be a no-op")
	}
	if h.s.Timers().Len() != pending {
		t.Fatalf("timers = %d after second Start, want %d", h.s.Timers().Len(), pending)
	}
	if got := h.s.Units().Count(voice.KindPad); got != 3 {
		t.Fatalf("pad units = %d, want 3", got)
	}
}

func TestStopDrainsEverythingAndIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	h.params.SetHeartbeat(true)
	h.params.SetArpeggio(true)
	h.s.Start()
	h.advance(5)

	if !h.s.Stop() {
		t.Fatal("Stop returned false while playing")
	}
	check := func(label string) {
		t.Helper()
		if h.s.Playing() {
			t.Fatalf("%s: still playing", label)
		}
		if n := h.s.Timers().Len(); n != 0 {
			t.Fatalf("%s: %d timers pending", label, n)
		}
		if n := h.s.Units().Len(); n != 0 {
			t.Fatalf("%s: %d units registered", label, n)
		}
	}
	check("first stop")
	if h.s.Stop() {
		t.Fatal("second Stop should be a no-op")
	}
	check("second stop")

	seen := len(h.events)
	h.advance(5)
	if len(h.events) != seen {
		t.Fatalf("layers kept emitting after stop: %v", h.events[seen:])
	}
	if n := h.g.Connected(); n != 0 {
		t.Fatalf("%d voices still rendering 5s after stop", n)
	}
	if len(h.s.chord.Current()) != 0 {
		t.Fatal("chord should be cleared on stop")
	}
}

func TestArpeggioStartsAfterChord(t *testing.T) {
	h := newHarness(t, nil)
	h.s.SetArpeggio(true)
	if h.s.Timers().Len() != 0 || len(h.events) != 0 {
		t.Fatal("toggling while stopped must not schedule anything")
	}
	h.s.Start()

	chordAt, arpAt := -1, -1
	for i, e := range h.events {
		switch {
		case e.Kind == EventChordChanged && chordAt < 0:
			chordAt = i
		case e.Kind == EventArpeggioStarted && arpAt < 0:
			arpAt = i
		}
	}
	if chordAt < 0 || arpAt < 0 || arpAt < chordAt {
		t.Fatalf("events out of order: %+v", h.events)
	}
	if !h.events[arpAt].Chord.Equal(chord.Progression[0]) {
		t.Fatalf("arpeggio started on %v", h.events[arpAt].Chord)
	}
	if h.s.Units().Count(voice.KindArpeggio) != 1 || h.s.Timers().Count(TimerArpeggioNote) != 1 {
		t.Fatal("arpeggio should be sounding its first note with the next one pending")
	}
}

func TestArpeggioToggleOffMidSequence(t *testing.T) {
	h := newHarness(t, nil)
	h.params.SetArpeggio(true)
	h.s.Start()
	h.advance(1.1)

	h.s.SetArpeggio(false)
	if n := h.s.Units().Count(voice.KindArpeggio); n != 0 {
		t.Fatalf("arpeggio units = %d, want 0", n)
	}
	if n := h.s.Timers().Count(TimerArpeggioNote); n != 0 {
		t.Fatalf("arpeggio_note timers = %d, want 0", n)
	}
	h.advance(2)
	if n := h.s.Units().Count(voice.KindArpeggio); n != 0 {
		t.Fatalf("arpeggio units reappeared: %d", n)
	}
	if h.count(EventArpeggioStarted) != 1 || h.count(EventArpeggioStopped) != 1 {
		t.Fatalf("events = %+v", h.events)
	}
}

func TestChordChangeRestartsArpeggioOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.params.SetChordPeriodMs(params.MinChordPeriodMs)
	h.params.SetArpeggio(true)
	h.s.Start()
	h.events = nil

	// The next chord lands 3.2-4.8s in; the one after that not before 6.4s.
	h.advance(5)

	var kinds []EventKind
	var restarted chord.Notes
	for _, e := range h.events {
		kinds = append(kinds, e.Kind)
		if e.Kind == EventArpeggioStarted {
			restarted = e.Chord
		}
	}
	want := []EventKind{EventChordChanged, EventArpeggioStopped, EventArpeggioStarted}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
	if !restarted.Equal(chord.Progression[1]) {
		t.Fatalf("arpeggio restarted on %v, want %v", restarted, chord.Progression[1])
	}
	if !h.events[0].Chord.Equal(restarted) {
		t.Fatal("arpeggio must follow the chord that was just emitted")
	}
}

func TestHeartbeatToggle(t *testing.T) {
	h := newHarness(t, nil)
	h.s.Start()
	h.advance(1)

	h.s.SetHeartbeat(true)
	if n := h.s.Units().Count(voice.KindHeartbeat); n != 2 {
		t.Fatalf("heartbeat units = %d, want 2", n)
	}
	if h.count(EventHeartbeatBeat) != 1 {
		t.Fatalf("beats = %d, want 1", h.count(EventHeartbeatBeat))
	}
	h.advance(0.2)

	h.s.SetHeartbeat(false)
	if n := h.s.Units().Count(voice.KindHeartbeat); n != 0 {
		t.Fatalf("heartbeat units after toggle off = %d, want 0", n)
	}
	if n := h.s.Timers().Count(TimerHeartbeat); n != 0 {
		t.Fatalf("heartbeat timers after toggle off = %d, want 0", n)
	}
	h.advance(4)
	if h.count(EventHeartbeatBeat) != 1 {
		t.Fatal("a beat pair fired after toggle off")
	}
}

func TestHeartbeatRepeats(t *testing.T) {
	h := newHarness(t, nil)
	h.params.SetHeartbeat(true)
	h.s.Start()
	h.advance(6.5)
	if n := h.count(EventHeartbeatBeat); n != 3 {
		t.Fatalf("beats = %d in 6.5s, want 3", n)
	}
	if n := h.s.Timers().Count(TimerHeartbeat); n != 1 {
		t.Fatalf("heartbeat timers = %d, want 1", n)
	}
}

func TestTextureStaysSingleton(t *testing.T) {
	h := newHarness(t, nil)
	h.s.Start()
	h.advance(25)
	if n := h.s.Units().Count(voice.KindTexture); n != 1 {
		t.Fatalf("texture units = %d, want 1", n)
	}
	if n := h.s.Timers().Count(TimerTexture); n != 1 {
		t.Fatalf("texture timers = %d, want 1", n)
	}
}

func TestMelodyPhrasePlays(t *testing.T) {
	h := newHarness(t, nil)
	h.s.Start()
	h.advance(4.5)
	if n := h.s.Units().Count(voice.KindMelody); n < 1 {
		t.Fatalf("melody units = %d, want >= 1", n)
	}
	if n := h.s.Timers().Count(TimerMelody); n != 1 {
		t.Fatalf("melody timers = %d, want 1", n)
	}
}

func TestTimersFireOnExactFrame(t *testing.T) {
	h := newHarness(t, nil)
	h.s.Start()
	start := h.g.Frame()
	var fired int64 = -1
	h.s.after(0.5, "mark", func() { fired = h.g.Frame() })
	h.advance(1)
	if want := start + testRate/2; fired != want {
		t.Fatalf("fired at frame %d, want %d", fired, want)
	}
}

func TestSynthesisFaultIsContained(t *testing.T) {
	var buf bytes.Buffer
	h := newHarness(t, slog.New(slog.NewTextHandler(&buf, nil)))
	h.s.synth(voice.KindBass, func() { panic("boom") })
	if !strings.Contains(buf.String(), "unit synthesis failed") || !strings.Contains(buf.String(), "boom") {
		t.Fatalf("log = %q", buf.String())
	}
}

func TestFailingLayerKeepsRescheduling(t *testing.T) {
	var buf bytes.Buffer
	h := newHarness(t, slog.New(slog.NewTextHandler(&buf, nil)))
	roots := bassRoots
	bassRoots = nil
	t.Cleanup(func() { bassRoots = roots })

	h.s.Start()
	for i := 0; i < 10; i++ {
		h.advance(2)
		if n := h.s.Timers().Count(TimerBass); n != 1 {
			t.Fatalf("after %ds bass timers = %d, want 1", 2*(i+1), n)
		}
	}
	if n := h.s.Units().Count(voice.KindBass); n != 0 {
		t.Fatalf("bass units = %d, want 0", n)
	}
	if got := strings.Count(buf.String(), "unit synthesis failed"); got < 2 {
		t.Fatalf("logged %d synthesis failures over 20s, want >= 2", got)
	}
	if n := h.s.Timers().Count(TimerPad); n != 1 {
		t.Fatalf("pad timers = %d, want 1", n)
	}
}

func TestProcessZeroesTrailingHalfFrame(t *testing.T) {
	h := newHarness(t, nil)
	h.s.Start()
	buf := make([]float32, 9)
	buf[8] = 42
	start := h.g.Frame()
	h.s.Process(buf)
	if buf[8] != 0 {
		t.Fatalf("trailing sample = %v, want 0", buf[8])
	}
	if got := h.g.Frame() - start; got != 4 {
		t.Fatalf("advanced %d frames, want 4", got)
	}
}

func TestPlaybackIsAudible(t *testing.T) {
	h := newHarness(t, nil)
	h.s.Start()
	h.advance(5)
	if lvl := h.g.Analyser().Level(); lvl <= 0 {
		t.Fatalf("output level = %v, want > 0", lvl)
	}
}
