// Package teststubs provides shared test doubles for collaborator
// interfaces.
package teststubs

import (
	"sync"

	"padel-score-service/internal/kv"
)

// StubKV is a test double for kv.Store with injectable per-op errors and
// operation recording.
type StubKV struct {
	mu sync.Mutex

	Data      map[string]string
	GetErr    error
	SetErr    error
	RemoveErr error
	CloseErr  error

	// OnSet, when set, runs after each successful Set with the lock
	// released; tests use it to inject writes racing a drain.
	OnSet func(key string)

	Ops        []string
	setCounts  map[string]int
	CloseCalls int
}

// NewStubKV returns an empty recording store.
func NewStubKV() *StubKV {
	return &StubKV{
		Data:      make(map[string]string),
		setCounts: make(map[string]int),
	}
}

// Get returns the configured error or the stored value.
func (s *StubKV) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Ops = append(s.Ops, "get "+key)
	if s.GetErr != nil {
		return "", s.GetErr
	}
	v, ok := s.Data[key]
	if !ok {
		return "", kv.ErrNotFound
	}
	return v, nil
}

// Set stores the value while tracking per-key write counts.
func (s *StubKV) Set(key, value string) error {
	s.mu.Lock()
	s.Ops = append(s.Ops, "set "+key)
	if s.SetErr != nil {
		err := s.SetErr
		s.mu.Unlock()
		return err
	}
	s.Data[key] = value
	s.setCounts[key]++
	hook := s.OnSet
	s.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	return nil
}

// Remove deletes the key.
func (s *StubKV) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Ops = append(s.Ops, "remove "+key)
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	delete(s.Data, key)
	return nil
}

// Close counts calls and returns the configured error.
func (s *StubKV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CloseCalls++
	return s.CloseErr
}

// SetCount reports how many successful Set calls the key received.
func (s *StubKV) SetCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setCounts[key]
}

// Value returns the stored value for key.
func (s *StubKV) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.Data[key]
	return v, ok
}
