package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every key in one JSON object on disk. Each write rewrites
// the file through a temporary sibling and a rename, so a crash never leaves
// a half-written document behind.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// OpenFile loads path, treating a missing file as empty.
func OpenFile(path string) (*FileStore, error) {
	fsStore := &FileStore{path: path, data: make(map[string]string)}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fsStore, nil
	case err != nil:
		return nil, fmt.Errorf("read store %s: %w", path, err)
	}
	if len(raw) == 0 {
		return fsStore, nil
	}
	if err := json.Unmarshal(raw, &fsStore.data); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", path, err)
	}
	if fsStore.data == nil {
		fsStore.data = make(map[string]string)
	}
	return fsStore, nil
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, had := f.data[key]
	f.data[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = old
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.data[key]
	if !ok {
		return ErrNotFound
	}
	delete(f.data, key)
	if err := f.flush(); err != nil {
		f.data[key] = old
		return err
	}
	return nil
}

func (f *FileStore) Keys(prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return matchKeys(f.data, prefix), nil
}

func (f *FileStore) flush() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}
