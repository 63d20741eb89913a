// Package ambient is a generative ambient-audio engine. It layers a chordal
// pad, a sub-bass line, sparse melodies, a noise bed and optional heartbeat
// and arpeggio layers, each on its own timer, into one output device.
package ambient

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/cbegin/ambient-go/internal/audio"
	"github.com/cbegin/ambient-go/internal/chord"
	"github.com/cbegin/ambient-go/internal/dsp"
	"github.com/cbegin/ambient-go/internal/graph"
	"github.com/cbegin/ambient-go/internal/layers"
	"github.com/cbegin/ambient-go/internal/params"
	"github.com/cbegin/ambient-go/internal/store"
)

// Settings is a flat snapshot of every tunable parameter and layer toggle.
type Settings = params.Settings

// Timbre names accepted by SetOscillatorTimbre.
const (
	TimbreSine     = string(params.TimbreSine)
	TimbreTriangle = string(params.TimbreTriangle)
	TimbreSquare   = string(params.TimbreSquare)
	TimbreSawtooth = string(params.TimbreSawtooth)
)

// SpectrumBins is the length of a Spectrum snapshot.
const SpectrumBins = dsp.AnalyserBins

// DefaultSettings returns the settings of a fresh engine.
func DefaultSettings() Settings { return params.DefaultSettings() }

// Engine owns one audio session. Its methods are safe for concurrent use.
//
// The device pulls samples through Process, which holds the engine lock
// while timer callbacks fire and frames render; control calls take the same
// lock, so layer callbacks and setters never interleave. Device open, resume
// and close happen without the engine lock held.
type Engine struct {
	mu         sync.Mutex
	sampleRate int
	graph      *graph.Graph
	params     *params.Store
	chord      *chord.State
	layers     *layers.Scheduler
	log        *slog.Logger
	sampleTap  func([]float32)

	store      store.Store
	keyPrefix  string
	restoreErr error

	deviceReported bool

	eventCh   chan Event
	eventChMu sync.Mutex
}

func New(opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidParameter)
	}
	backend, err := audio.ForName(cfg.backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if !cfg.seeded {
		cfg.seed = time.Now().UnixNano()
	}

	e := &Engine{
		sampleRate: cfg.sampleRate,
		graph:      graph.New(cfg.sampleRate, backend),
		params:     params.NewStore(),
		chord:      chord.NewState(chord.Progression),
		log:        cfg.logger,
		sampleTap:  cfg.sampleTap,
		store:      cfg.store,
		keyPrefix:  cfg.keyPrefix,
	}
	e.layers = layers.New(layers.Config{
		Graph:   e.graph,
		Params:  e.params,
		Chord:   e.chord,
		Rand:    rand.New(rand.NewSource(cfg.seed)),
		Logger:  cfg.logger.With("component", "layers"),
		OnEvent: func(ev layers.Event) { e.sendEvent(fromLayerEvent(ev)) },
	})
	e.restoreErr = e.restore()
	e.graph.SetVolume(e.params.Volume(), e.params.Muted())
	e.log.Debug("engine created", "sampleRate", cfg.sampleRate, "backend", backend.Name(), "seed", cfg.seed)
	return e, nil
}

// Process renders interleaved stereo frames. Output devices call it; offline
// callers may call it directly.
func (e *Engine) Process(dst []float32) {
	e.mu.Lock()
	e.layers.Process(dst)
	e.mu.Unlock()
	if e.sampleTap != nil {
		e.sampleTap(dst)
	}
}

func (e *Engine) SampleRate() int { return e.sampleRate }

// Activate connects the output device, resuming it if the platform suspended
// it. It is idempotent.
func (e *Engine) Activate() error {
	return e.activate()
}

func (e *Engine) activate() error {
	_, err := e.graph.Activate(e)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, graph.ErrDeviceUnavailable):
		e.mu.Lock()
		first := !e.deviceReported
		e.deviceReported = true
		e.mu.Unlock()
		err = fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		if first {
			e.log.Error("audio output unavailable", "err", err)
			e.sendEvent(Event{Kind: EventDeviceStatus, Err: err})
		}
		return err
	case errors.Is(err, graph.ErrDeviceSuspended):
		err = fmt.Errorf("%w: %v", ErrDeviceSuspended, err)
		e.log.Warn("audio output did not resume", "err", err)
		e.sendEvent(Event{Kind: EventDeviceStatus, Err: err})
		return err
	case errors.Is(err, graph.ErrClosed):
		return ErrClosed
	default:
		return err
	}
}

// Start activates the device and starts every enabled layer. Starting while
// playing is a no-op.
func (e *Engine) Start() error {
	if err := e.activate(); err != nil {
		return err
	}
	e.mu.Lock()
	started := false
	if !e.layers.Playing() {
		e.graph.SetVolume(e.params.Volume(), e.params.Muted())
		started = e.layers.Start()
	}
	now := e.graph.Now()
	e.mu.Unlock()
	if started {
		e.log.Info("playback started")
		e.sendEvent(Event{Kind: EventPlaybackStarted, Time: now})
	}
	return nil
}

// Stop cancels every pending layer callback and fades all sound out over a
// second. Stopping while stopped is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	stopped := e.layers.Stop()
	now := e.graph.Now()
	e.mu.Unlock()
	if stopped {
		e.log.Info("playback stopped")
		e.sendEvent(Event{Kind: EventPlaybackStopped, Time: now})
	}
}

func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layers.Playing()
}

// SetOscillatorTimbre selects the pad waveform. Unknown names are rejected
// and the current timbre is kept.
func (e *Engine) SetOscillatorTimbre(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.params.SetTimbre(name); err != nil {
		e.log.Warn("rejected oscillator timbre", "value", name)
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return nil
}

// SetFilterBrightness sets the pad lowpass cutoff, clamped to 100-10000 Hz,
// and returns the stored value. Sounding units keep their cutoff.
func (e *Engine) SetFilterBrightness(hz float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.SetFilterHz(hz)
}

// SetChordPeriod sets the chord change interval, clamped to 4000-30000 ms,
// and returns the stored value.
func (e *Engine) SetChordPeriod(ms int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.SetChordPeriodMs(ms)
}

// SetVolume ramps the master gain to v, clamped to 0-1, and persists it.
// The new volume applies even when persisting fails.
func (e *Engine) SetVolume(v float64) error {
	e.mu.Lock()
	v = e.params.SetVolume(v)
	e.graph.SetVolume(v, e.params.Muted())
	e.mu.Unlock()
	return e.persistVolume(v)
}

// SetVolumePercent maps a 0-100 control value onto SetVolume.
func (e *Engine) SetVolumePercent(pct int) error {
	return e.SetVolume(params.VolumeFromPercent(pct))
}

func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.Volume()
}

// ToggleMute flips mute, ramping the master gain, and persists the new state.
func (e *Engine) ToggleMute() (bool, error) {
	e.mu.Lock()
	muted := e.toggleMuteLocked()
	e.mu.Unlock()
	return muted, e.persistMuted(muted)
}

func (e *Engine) toggleMuteLocked() bool {
	muted := !e.params.Muted()
	e.params.SetMuted(muted)
	e.graph.SetVolume(e.params.Volume(), muted)
	return muted
}

func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.Muted()
}

// ToggleHeartbeat flips the heartbeat layer and returns the new state. While
// playing the layer starts or is swept immediately.
func (e *Engine) ToggleHeartbeat() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	enabled := !e.params.HeartbeatEnabled()
	e.layers.SetHeartbeat(enabled)
	return enabled
}

// ToggleArpeggiator flips the arpeggio layer and returns the new state.
func (e *Engine) ToggleArpeggiator() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	enabled := !e.params.ArpeggioEnabled()
	e.layers.SetArpeggio(enabled)
	return enabled
}

// Settings returns a snapshot of every parameter and toggle.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params.Snapshot()
}

// ApplySettings installs st. Volume is always reapplied; mute and the two
// layer toggles are edge-triggered and only flipped when they differ.
// Out-of-range numbers are clamped like the individual setters do. An unknown
// timbre or a NaN is rejected before anything changes.
func (e *Engine) ApplySettings(st Settings) error {
	if err := st.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	e.mu.Lock()
	vol := e.params.SetVolume(st.Volume)
	e.graph.SetVolume(vol, e.params.Muted())
	muted := e.params.Muted()
	if st.Muted != muted {
		muted = e.toggleMuteLocked()
	}
	if err := e.params.SetTimbre(string(st.OscillatorTimbre)); err != nil {
		e.log.Warn("keeping current timbre", "timbre", st.OscillatorTimbre, "err", err)
	}
	e.params.SetFilterHz(st.FilterBrightnessHz)
	e.params.SetChordPeriodMs(st.ChordPeriodMs)
	if st.HeartbeatEnabled != e.params.HeartbeatEnabled() {
		e.layers.SetHeartbeat(st.HeartbeatEnabled)
	}
	if st.ArpeggioEnabled != e.params.ArpeggioEnabled() {
		e.layers.SetArpeggio(st.ArpeggioEnabled)
	}
	e.mu.Unlock()
	return errors.Join(e.persistVolume(vol), e.persistMuted(muted))
}

// CurrentChord returns the sounding pad chord, or nil while stopped.
func (e *Engine) CurrentChord() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chord.Current()
}

// Spectrum returns the output spectrum as levels in [0, 1]. Visualizers may
// poll it from any goroutine.
func (e *Engine) Spectrum() [SpectrumBins]float64 {
	return e.graph.Analyser().Snapshot()
}

// Level returns the RMS of the most recent output.
func (e *Engine) Level() float64 {
	return e.graph.Analyser().Level()
}

// Suspend pauses the device to save power. The engine clock stops with it.
func (e *Engine) Suspend() error {
	if err := e.graph.Suspend(); err != nil {
		return e.deviceError(err)
	}
	e.sendEvent(Event{Kind: EventDeviceStatus})
	return nil
}

// Resume undoes Suspend.
func (e *Engine) Resume() error {
	if err := e.graph.Resume(); err != nil {
		return e.deviceError(err)
	}
	e.sendEvent(Event{Kind: EventDeviceStatus})
	return nil
}

func (e *Engine) deviceError(err error) error {
	switch {
	case errors.Is(err, graph.ErrDeviceUnavailable):
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	case errors.Is(err, graph.ErrDeviceSuspended):
		return fmt.Errorf("%w: %v", ErrDeviceSuspended, err)
	default:
		return err
	}
}

// Close stops playback and releases the device.
func (e *Engine) Close() error {
	e.Stop()
	err := e.graph.Close()
	e.eventChMu.Lock()
	if e.eventCh != nil {
		close(e.eventCh)
		e.eventCh = nil
	}
	e.eventChMu.Unlock()
	return err
}
