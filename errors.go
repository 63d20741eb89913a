package ambient

import "errors"

var (
	// ErrDeviceUnavailable means the platform audio output could not be
	// opened. It is sticky for the life of the engine.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrDeviceSuspended means the device refused to resume. Retrying Start
	// or Activate tries again.
	ErrDeviceSuspended  = errors.New("audio device suspended")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrPersistence      = errors.New("persistence failure")
	ErrPresetNotFound   = errors.New("preset not found")
	ErrNoStore          = errors.New("no persistence store configured")
	ErrClosed           = errors.New("engine closed")
)
