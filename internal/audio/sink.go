package audio

import (
	"errors"
	"fmt"
	"strings"
)

// Sink is an open connection to an output device.
type Sink interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// Suspender is implemented by sinks whose whole device context can be
// suspended to save power.
type Suspender interface {
	Suspend() error
	Resume() error
}

// Backend opens sinks that pull from a SampleSource.
type Backend interface {
	Name() string
	Open(sampleRate int, src SampleSource) (Sink, error)
}

// Sentinel errors
var (
	ErrUnknownBackend = errors.New("unknown audio backend")
	ErrSampleRate     = errors.New("audio context already initialized at a different sample rate")
)

// Backend names accepted by ForName.
const (
	NameEbiten  = "ebiten"
	NameOto     = "oto"
	NameNull    = "null"
	NameOffline = "offline"
)

// ForName resolves a backend by name.
func ForName(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameEbiten:
		return EbitenBackend{}, nil
	case NameOto:
		return OtoBackend{}, nil
	case NameNull:
		return NullBackend{}, nil
	case NameOffline:
		return OfflineBackend{}, nil
	default:
		return nil, fmt.Errorf("%w %q (expected ebiten|oto|null|offline)", ErrUnknownBackend, name)
	}
}
