package ambient

import (
	"log/slog"

	"github.com/cbegin/ambient-go/internal/audio"
	"github.com/cbegin/ambient-go/internal/store"
)

const (
	DefaultSampleRate = 48000
	DefaultKeyPrefix  = "ambient:"
)

// Backend names accepted by WithBackend.
const (
	BackendEbiten  = audio.NameEbiten
	BackendOto     = audio.NameOto
	BackendNull    = audio.NameNull
	BackendOffline = audio.NameOffline
)

type Option func(*engineConfig)

type engineConfig struct {
	sampleRate int
	backend    string
	logger     *slog.Logger
	seed       int64
	seeded     bool
	store      store.Store
	keyPrefix  string
	sampleTap  func([]float32)
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		sampleRate: DefaultSampleRate,
		backend:    BackendEbiten,
		store:      store.NewMemoryStore(),
		keyPrefix:  DefaultKeyPrefix,
	}
}

func WithSampleRate(sampleRate int) Option {
	return func(cfg *engineConfig) {
		cfg.sampleRate = sampleRate
	}
}

// WithBackend selects the output: ebiten (default), oto, null or offline.
func WithBackend(name string) Option {
	return func(cfg *engineConfig) {
		cfg.backend = name
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *engineConfig) {
		cfg.logger = logger
	}
}

// WithSeed fixes the random source behind timing jitter and note choice.
func WithSeed(seed int64) Option {
	return func(cfg *engineConfig) {
		cfg.seed = seed
		cfg.seeded = true
	}
}

// WithStore sets where presets and volume/mute persist. Passing nil disables
// persistence; preset calls then fail with ErrNoStore.
func WithStore(s store.Store) Option {
	return func(cfg *engineConfig) {
		cfg.store = s
	}
}

// WithKeyPrefix namespaces every persisted key.
func WithKeyPrefix(prefix string) Option {
	return func(cfg *engineConfig) {
		cfg.keyPrefix = prefix
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) Option {
	return func(cfg *engineConfig) {
		cfg.sampleTap = tap
	}
}
