// Package kv provides the durable string stores the persistence layer
// writes through. The match keys hold small JSON payloads; the store only
// sees opaque strings.
package kv

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when a key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a durable string key-value store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open builds a Store for the configured driver. path is the base directory
// for the file driver and the database file for sqlite; the memory driver
// ignores it.
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(path)
	case DriverSQLite:
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", driver)
	}
}
