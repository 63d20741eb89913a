package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/cbegin/ambient-go/internal/audio"
	"github.com/cbegin/ambient-go/internal/dsp"
	"github.com/cbegin/ambient-go/internal/voice"
)

type fakeSink struct {
	playing   bool
	plays     int
	closed    bool
	resumeErr error
	suspends  int
	resumes   int
}

func (s *fakeSink) Play()           { s.playing = true; s.plays++ }
func (s *fakeSink) Pause()          { s.playing = false }
func (s *fakeSink) IsPlaying() bool { return s.playing }
func (s *fakeSink) Close() error    { s.closed = true; return nil }
func (s *fakeSink) Suspend() error  { s.suspends++; return nil }
func (s *fakeSink) Resume() error {
	s.resumes++
	return s.resumeErr
}

type fakeBackend struct {
	opens int
	err   error
	sink  *fakeSink
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Open(int, audio.SampleSource) (audio.Sink, error) {
	b.opens++
	if b.err != nil {
		return nil, b.err
	}
	return b.sink, nil
}

func TestActivateIsIdempotent(t *testing.T) {
	b := &fakeBackend{sink: &fakeSink{}}
	g := New(8000, b)
	a1, err := g.Activate(nil)
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	a2, err := g.Activate(nil)
	if err != nil {
		t.Fatalf("second Activate: %v", err)
	}
	if a1 != a2 || a1 == nil {
		t.Fatal("Activate should hand out the same analysis tap")
	}
	if b.opens != 1 {
		t.Fatalf("device opened %d times, want 1", b.opens)
	}
	if b.sink.plays != 1 {
		t.Fatalf("Play called %d times while already playing, want 1", b.sink.plays)
	}
}

func TestActivateFailureIsSticky(t *testing.T) {
	b := &fakeBackend{err: errors.New("no device")}
	g := New(8000, b)
	for i := 0; i < 3; i++ {
		if _, err := g.Activate(nil); !errors.Is(err, ErrDeviceUnavailable) {
			t.Fatalf("attempt %d: err = %v, want ErrDeviceUnavailable", i, err)
		}
	}
	if b.opens != 1 {
		t.Fatalf("opens = %d, want 1 (no retry)", b.opens)
	}
	if g.Active() {
		t.Fatal("graph should stay uninitialized")
	}
	if err := g.Suspend(); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("Suspend err = %v", err)
	}
}

func TestActivateResumesSuspendedDevice(t *testing.T) {
	sink := &fakeSink{resumeErr: errors.New("blocked")}
	g := New(8000, &fakeBackend{sink: sink})
	if _, err := g.Activate(nil); err != nil {
		t.Fatal(err)
	}
	if err := g.Suspend(); err != nil {
		t.Fatal(err)
	}
	if !g.Suspended() || sink.playing {
		t.Fatal("Suspend should pause the sink")
	}
	if _, err := g.Activate(nil); !errors.Is(err, ErrDeviceSuspended) {
		t.Fatalf("err = %v, want ErrDeviceSuspended", err)
	}
	sink.resumeErr = nil
	if _, err := g.Activate(nil); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if g.Suspended() || !sink.playing {
		t.Fatal("retry should resume and play")
	}
	if sink.resumes != 2 {
		t.Fatalf("resumes = %d, want 2", sink.resumes)
	}
}

func TestCloseReleasesSink(t *testing.T) {
	sink := &fakeSink{}
	g := New(8000, &fakeBackend{sink: sink})
	if _, err := g.Activate(nil); err != nil {
		t.Fatal(err)
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}
	if !sink.closed {
		t.Fatal("sink not closed")
	}
	if _, err := g.Activate(nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("Activate after Close err = %v", err)
	}
}

func TestVolumeRampsWithoutSteps(t *testing.T) {
	const sr = 8000
	g := New(sr, audio.OfflineBackend{})
	buf := make([]float32, 2*sr/10)

	check := func(target float64) {
		t.Helper()
		g.SetVolume(target, false)
		prev := g.MasterGain()
		for block := 0; block < 10; block++ {
			start := g.Frame()
			g.Render(buf)
			for f := start; f < g.Frame(); f++ {
				cur := g.MasterGainAt(float64(f) / sr)
				if math.Abs(cur-prev) > 0.01 {
					t.Fatalf("gain jumped %v -> %v at frame %d", prev, cur, f)
				}
				prev = cur
			}
		}
		if math.Abs(g.MasterGain()-target) > 1e-3 {
			t.Fatalf("gain = %v after 1s, want ~%v", g.MasterGain(), target)
		}
	}
	check(1)
	check(0)
	check(1)
}

func TestMutedGraphIsSilent(t *testing.T) {
	const sr = 8000
	g := New(sr, audio.OfflineBackend{})
	g.SetVolume(0.7, true)
	v := voice.New(voice.KindPad, voice.Input{Source: dsp.NewOscillator(sr, dsp.WaveSine, 440, 0), Level: 1})
	v.Gain.SetValueAtTime(1, 0)
	g.Connect(v)
	buf := make([]float32, 2*sr/2)
	g.Render(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %v while muted", i, s)
		}
	}
}

func TestRenderMixesAndPrunesVoices(t *testing.T) {
	const sr = 8000
	g := New(sr, audio.OfflineBackend{})
	g.SetVolume(1, false)
	v := voice.New(voice.KindMelody, voice.Input{Source: dsp.NewOscillator(sr, dsp.WaveSine, 440, 0), Level: 0.5})
	v.Gain.SetValueAtTime(1, 0)
	v.Stop(0.25)
	g.Connect(v)

	buf := make([]float32, 2*sr/10)
	g.Render(buf)
	var peak float64
	for i := 0; i < len(buf); i += 2 {
		if buf[i] != buf[i+1] {
			t.Fatalf("channels differ at %d", i)
		}
		peak = math.Max(peak, math.Abs(float64(buf[i])))
	}
	if peak == 0 {
		t.Fatal("connected voice produced no output")
	}
	if g.Connected() != 1 {
		t.Fatalf("voice pruned early")
	}
	for i := 0; i < 3; i++ {
		g.Render(buf)
	}
	if g.Connected() != 0 {
		t.Fatalf("connected = %d after stop time, want 0", g.Connected())
	}
	if g.Frame() != 4*sr/10 {
		t.Fatalf("frame = %d", g.Frame())
	}
	if g.Analyser().Level() < 0 {
		t.Fatal("negative level")
	}
}
