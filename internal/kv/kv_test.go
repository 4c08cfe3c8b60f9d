package kv

import (
	"errors"
	"path/filepath"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFile(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	sqlite, err := NewSQLite(filepath.Join(dir, "kv.db"))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestStoreConformance(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			if _, err := store.Get("match.runtime"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound for missing key, got %v", err)
			}

			if err := store.Set("match.runtime", `{"status":"active"}`); err != nil {
				t.Fatalf("set failed: %v", err)
			}
			got, err := store.Get("match.runtime")
			if err != nil || got != `{"status":"active"}` {
				t.Fatalf("unexpected get result %q err=%v", got, err)
			}

			if err := store.Set("match.runtime", `{"status":"finished"}`); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			got, _ = store.Get("match.runtime")
			if got != `{"status":"finished"}` {
				t.Fatalf("expected overwritten value, got %q", got)
			}

			if err := store.Remove("match.runtime"); err != nil {
				t.Fatalf("remove failed: %v", err)
			}
			if _, err := store.Get("match.runtime"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after remove, got %v", err)
			}
			if err := store.Remove("match.runtime"); err != nil {
				t.Fatalf("removing absent key must not fail, got %v", err)
			}
		})
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		driver string
		path   string
	}{
		{DriverMemory, ""},
		{DriverFile, filepath.Join(dir, "files")},
		{DriverSQLite, filepath.Join(dir, "kv.db")},
	}

	for _, tt := range tests {
		store, err := Open(tt.driver, tt.path)
		if err != nil {
			t.Fatalf("open %s: %v", tt.driver, err)
		}
		if err := store.Set("k", "v"); err != nil {
			t.Fatalf("%s set: %v", tt.driver, err)
		}
		if got, err := store.Get("k"); err != nil || got != "v" {
			t.Fatalf("%s get: %q err=%v", tt.driver, got, err)
		}
		store.Close()
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("postgres", ""); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
