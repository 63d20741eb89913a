package ambient

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cbegin/ambient-go/internal/params"
	"github.com/cbegin/ambient-go/internal/store"
)

const (
	volumeKey    = "volume"
	mutedKey     = "muted"
	presetPrefix = "preset:"
)

func (e *Engine) key(name string) string { return e.keyPrefix + name }

func (e *Engine) presetKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty preset name", ErrInvalidParameter)
	}
	return e.key(presetPrefix + name), nil
}

// SavePreset stores the current settings under name, replacing any preset
// with the same name.
func (e *Engine) SavePreset(name string) error {
	if e.store == nil {
		return ErrNoStore
	}
	key, err := e.presetKey(name)
	if err != nil {
		return err
	}
	raw, err := params.Encode(e.Settings())
	if err != nil {
		return fmt.Errorf("%w: encode preset %q: %v", ErrPersistence, name, err)
	}
	if err := e.store.Set(key, string(raw)); err != nil {
		return fmt.Errorf("%w: save preset %q: %v", ErrPersistence, name, err)
	}
	e.log.Info("preset saved", "name", name)
	return nil
}

// LoadPreset applies the preset stored under name. A missing or malformed
// preset leaves the engine untouched.
func (e *Engine) LoadPreset(name string) error {
	if e.store == nil {
		return ErrNoStore
	}
	key, err := e.presetKey(name)
	if err != nil {
		return err
	}
	raw, ok, err := e.store.Get(key)
	if err != nil {
		return fmt.Errorf("%w: load preset %q: %v", ErrPersistence, name, err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	st, err := params.Decode([]byte(raw))
	if err != nil {
		e.log.Warn("malformed preset", "name", name, "err", err)
		return fmt.Errorf("%w: preset %q: %w", ErrPersistence, name, err)
	}
	if err := e.ApplySettings(st); err != nil {
		return err
	}
	e.log.Info("preset loaded", "name", name)
	return nil
}

func (e *Engine) DeletePreset(name string) error {
	if e.store == nil {
		return ErrNoStore
	}
	key, err := e.presetKey(name)
	if err != nil {
		return err
	}
	if err := e.store.Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %q", ErrPresetNotFound, name)
		}
		return fmt.Errorf("%w: delete preset %q: %v", ErrPersistence, name, err)
	}
	return nil
}

// Presets lists saved preset names in order.
func (e *Engine) Presets() ([]string, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	prefix := e.key(presetPrefix)
	keys, err := e.store.Keys(prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: list presets: %v", ErrPersistence, err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(names)
	return names, nil
}

// RestoreErr reports a malformed or unreadable persisted volume or mute
// value found when the engine was created. Defaults were used instead.
func (e *Engine) RestoreErr() error { return e.restoreErr }

func (e *Engine) persistVolume(v float64) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Set(e.key(volumeKey), strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		e.log.Warn("persist volume", "err", err)
		return fmt.Errorf("%w: save volume: %v", ErrPersistence, err)
	}
	return nil
}

func (e *Engine) persistMuted(muted bool) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Set(e.key(mutedKey), strconv.FormatBool(muted)); err != nil {
		e.log.Warn("persist mute", "err", err)
		return fmt.Errorf("%w: save mute: %v", ErrPersistence, err)
	}
	return nil
}

// restore loads persisted volume and mute. Missing keys keep the defaults.
func (e *Engine) restore() error {
	if e.store == nil {
		return nil
	}
	var errs []error
	if raw, ok, err := e.store.Get(e.key(volumeKey)); err != nil {
		errs = append(errs, fmt.Errorf("%w: read volume: %v", ErrPersistence, err))
	} else if ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || v != params.ClampVolume(v) {
			errs = append(errs, fmt.Errorf("%w: malformed volume %q", ErrPersistence, raw))
		} else {
			e.params.SetVolume(v)
		}
	}
	if raw, ok, err := e.store.Get(e.key(mutedKey)); err != nil {
		errs = append(errs, fmt.Errorf("%w: read mute: %v", ErrPersistence, err))
	} else if ok {
		muted, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: malformed mute %q", ErrPersistence, raw))
		} else {
			e.params.SetMuted(muted)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		e.log.Warn("restoring persisted state", "err", err)
	}
	return err
}
