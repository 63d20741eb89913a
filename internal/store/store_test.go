package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	if _, ok, err := s.Get("missing"); ok || err != nil {
		t.Fatalf("Get(missing) = ok:%v err:%v", ok, err)
	}
	for _, kv := range [][2]string{{"a:preset:one", "1"}, {"a:preset:two", "2"}, {"a:volume", "0.5"}, {"b:preset:x", "x"}} {
		if err := s.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("Set(%s): %v", kv[0], err)
		}
	}
	if v, ok, _ := s.Get("a:volume"); !ok || v != "0.5" {
		t.Fatalf("Get(a:volume) = %q,%v", v, ok)
	}
	keys, err := s.Keys("a:preset:")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a:preset:one", "a:preset:two"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	if err := s.Delete("a:preset:one"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("a:preset:one"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ambient.json")
	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	exerciseStore(t, s)

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	keys, _ := reopened.Keys("")
	if want := []string{"a:preset:two", "a:volume", "b:preset:x"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("reopened keys = %v, want %v", keys, want)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temporary files left behind: %v", matches)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFileStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if keys, _ := s.Keys(""); len(keys) != 0 {
		t.Fatalf("keys = %v", keys)
	}
}
