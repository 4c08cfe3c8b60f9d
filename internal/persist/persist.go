// Package persist owns both durable representations of the match and the
// debounced write path feeding them. Callers never touch the underlying
// stores directly; the synchronizer is the single place that keeps the
// runtime blob and the schema snapshot describing the same logical state.
package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"padel-score-service/internal/domain/match"
	"padel-score-service/internal/kv"
	"padel-score-service/internal/logging"
	"padel-score-service/internal/metrics"
	"padel-score-service/internal/scheduler"
	"padel-score-service/internal/schema"
)

const (
	// KeyRuntime holds the full runtime state blob.
	KeyRuntime = "match.runtime"
	// KeySnapshot holds the versioned schema snapshot.
	KeySnapshot = "match.snapshot"

	// DefaultWindow is the debounce window between a score tap and the
	// terminal write it produces.
	DefaultWindow = 180 * time.Millisecond
)

// Restore sources, in preference order.
const (
	SourceRuntime  = "runtime"
	SourceSnapshot = "snapshot"
	SourceVolatile = "volatile"
	SourceNone     = "none"
)

type pendingWrite struct {
	state     match.State
	blob      string
	signature string
}

// Synchronizer debounces match-state writes into a single pending slot and
// commits each drained entry to both durable keys plus the volatile mirror.
type Synchronizer struct {
	store    kv.Store
	volatile *kv.Memory
	sched    scheduler.Scheduler
	window   time.Duration
	logger   *slog.Logger
	metrics  *metrics.Recorder

	mu            sync.Mutex
	pending       *pendingWrite
	lastCommitted string

	// drainMu serializes drains; holding it for the whole loop also makes
	// Flush and Close block until the terminal write landed.
	drainMu sync.Mutex

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the write path.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether persistence is keeping up. A fresh synchronizer
// that has not written yet is ready; repeated flush failures are not.
func (s Status) IsReady() bool {
	return s.ConsecutiveFailures < 3
}

// New constructs a Synchronizer with sane defaults.
func New(store kv.Store, volatile *kv.Memory, sched scheduler.Scheduler, logger *slog.Logger, recorder *metrics.Recorder, window time.Duration) *Synchronizer {
	if volatile == nil {
		volatile = kv.NewMemory()
	}
	if sched == nil {
		sched = scheduler.NewTimer()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Synchronizer{
		store:    store,
		volatile: volatile,
		sched:    sched,
		window:   window,
		logger:   logger,
		metrics:  recorder,
	}
}

// Enqueue replaces the pending slot with st. A forced enqueue cancels any
// armed timer and drains immediately; otherwise the debounce timer is armed
// if it is not already.
func (s *Synchronizer) Enqueue(st match.State, force bool) {
	blob, err := json.Marshal(st)
	if err != nil {
		logging.Error(s.logger, "state marshal failed, write dropped", err, logging.FieldMatchID, st.MatchID)
		return
	}

	s.mu.Lock()
	if s.pending != nil {
		s.metrics.RecordCoalesced()
	}
	s.pending = &pendingWrite{
		state:     st.Clone(),
		blob:      string(blob),
		signature: signature(blob),
	}
	s.mu.Unlock()

	if force {
		s.sched.Cancel()
		s.drain()
		return
	}
	s.sched.Schedule(s.window, s.drain)
}

// Flush cancels the debounce timer and commits any pending write now.
func (s *Synchronizer) Flush() {
	s.sched.Cancel()
	s.drain()
}

// Close stops the timer and drains outstanding work.
func (s *Synchronizer) Close() error {
	s.sched.Cancel()
	s.drain()
	return nil
}

// drain empties the pending slot, committing each entry unless its signature
// matches the last committed write. Work queued while a write is in flight is
// picked up before returning; an I/O failure leaves the entry queued for the
// next enqueue or flush instead of spinning against a broken store.
func (s *Synchronizer) drain() {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	for {
		s.mu.Lock()
		pw := s.pending
		s.pending = nil
		last := s.lastCommitted
		s.mu.Unlock()

		if pw == nil {
			return
		}

		if pw.signature == last {
			s.metrics.RecordWriteSkipped()
			logging.Debug(s.logger, "write skipped, state unchanged", logging.FieldMatchID, pw.state.MatchID)
			continue
		}

		start := time.Now()
		err := s.commit(pw)
		s.metrics.RecordFlush(time.Since(start), err)
		if err != nil {
			logging.Error(s.logger, "flush failed, will retry on next enqueue", err,
				logging.FieldMatchID, pw.state.MatchID,
				logging.FieldDurationMS, time.Since(start).Milliseconds(),
			)
			s.recordFailure(err, start)
			s.mu.Lock()
			s.lastCommitted = ""
			if s.pending == nil {
				s.pending = pw
			}
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.lastCommitted = pw.signature
		s.mu.Unlock()
		s.recordSuccess(start)
		logging.Debug(s.logger, "state flushed",
			logging.FieldMatchID, pw.state.MatchID,
			logging.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
}

// commit writes the runtime blob, then the schema snapshot, then mirrors the
// snapshot into the volatile slot.
func (s *Synchronizer) commit(pw *pendingWrite) error {
	if err := s.store.Set(KeyRuntime, pw.blob); err != nil {
		return err
	}

	raw, err := json.Marshal(schema.Encode(pw.state))
	if err != nil {
		return err
	}
	if err := s.store.Set(KeySnapshot, string(raw)); err != nil {
		return err
	}

	_ = s.volatile.Set(KeySnapshot, string(raw))
	return nil
}

// Restore loads the most recently persisted match, preferring the runtime
// blob, then the schema snapshot, then the volatile mirror. Unreadable or
// invalid payloads degrade to the next source.
func (s *Synchronizer) Restore() (match.State, string, bool) {
	if raw, err := s.store.Get(KeyRuntime); err == nil {
		st, decodeErr := match.FromJSON([]byte(raw))
		if decodeErr == nil {
			s.metrics.RecordRestore(SourceRuntime)
			return st, SourceRuntime, true
		}
		logging.Warn(s.logger, "runtime blob unreadable, trying snapshot", "error", decodeErr)
	} else if !errors.Is(err, kv.ErrNotFound) {
		logging.Warn(s.logger, "runtime read failed, trying snapshot", "error", err)
	}

	if raw, err := s.store.Get(KeySnapshot); err == nil {
		st, decodeErr := schema.DecodeJSON([]byte(raw))
		if decodeErr == nil {
			s.metrics.RecordRestore(SourceSnapshot)
			return st, SourceSnapshot, true
		}
		logging.Warn(s.logger, "snapshot unreadable, trying volatile mirror", "error", decodeErr)
	} else if !errors.Is(err, kv.ErrNotFound) {
		logging.Warn(s.logger, "snapshot read failed, trying volatile mirror", "error", err)
	}

	if raw, err := s.volatile.Get(KeySnapshot); err == nil {
		st, decodeErr := schema.DecodeJSON([]byte(raw))
		if decodeErr == nil {
			s.metrics.RecordRestore(SourceVolatile)
			return st, SourceVolatile, true
		}
	}

	s.metrics.RecordRestore(SourceNone)
	return match.State{}, SourceNone, false
}

// RecoverPending re-issues both writes from the volatile mirror when it holds
// an active match. This covers the one teardown path where the normal close
// hook did not run; a finished or absent mirror leaves the stores alone.
func (s *Synchronizer) RecoverPending() {
	raw, err := s.volatile.Get(KeySnapshot)
	if err != nil {
		return
	}
	st, err := schema.DecodeJSON([]byte(raw))
	if err != nil || st.Finished() {
		return
	}
	s.Enqueue(st, true)
}

// ClearSaved removes both durable records and the volatile mirror, and
// forgets the pending slot so a later identical state is written again.
func (s *Synchronizer) ClearSaved() error {
	s.sched.Cancel()

	s.mu.Lock()
	s.pending = nil
	s.lastCommitted = ""
	s.mu.Unlock()

	runtimeErr := s.store.Remove(KeyRuntime)
	snapshotErr := s.store.Remove(KeySnapshot)
	_ = s.volatile.Remove(KeySnapshot)
	return errors.Join(runtimeErr, snapshotErr)
}

// Status returns a snapshot of the write path's recent health.
func (s *Synchronizer) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Synchronizer) recordSuccess(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures = 0
	s.status.LastError = ""
	s.status.LastAttempt = at
	s.status.LastSuccess = at
}

func (s *Synchronizer) recordFailure(err error, at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures++
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.status.LastAttempt = at
}

func signature(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}
