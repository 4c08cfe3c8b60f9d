package kv

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	store, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Set("match.runtime", "payload"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("match.runtime")
	if err != nil || got != "payload" {
		t.Fatalf("expected persisted value, got %q err=%v", got, err)
	}
}

func TestSQLiteUpsertKeepsSingleRow(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	for i := 0; i < 5; i++ {
		if err := store.Set("k", "v"); err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM kv WHERE key = 'k'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row after upserts, got %d", count)
	}
}

func TestNewSQLiteRequiresPath(t *testing.T) {
	if _, err := NewSQLite(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestSQLiteGetMissing(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if _, err := store.Get("absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
