package kv

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File stores one JSON file per key under a base directory. Writes go
// through a temp file and rename so readers never observe a partial value,
// and a write whose bytes match the current file is skipped.
type File struct {
	base string
}

// NewFile constructs a file store rooted at base, creating the directory if
// needed.
func NewFile(base string) (*File, error) {
	if base == "" {
		return nil, fmt.Errorf("kv: file store requires a base directory")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("kv: create base dir: %w", err)
	}
	return &File{base: base}, nil
}

func (f *File) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("kv: invalid key %q", key)
	}
	return filepath.Join(f.base, key+".json"), nil
}

// Get returns the stored value for key or ErrNotFound.
func (f *File) Get(key string) (string, error) {
	target, err := f.pathFor(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// Set writes value atomically.
func (f *File) Set(key, value string) error {
	target, err := f.pathFor(key)
	if err != nil {
		return err
	}
	data := []byte(value)

	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return nil
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

// Remove deletes the key's file; an absent key is not an error.
func (f *File) Remove(key string) error {
	target, err := f.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close is a no-op.
func (f *File) Close() error { return nil }

// BasePath exposes the store root (primarily for testing).
func (f *File) BasePath() string {
	if f == nil {
		return ""
	}
	return f.base
}
