package metrics

import (
	"sync"
	"time"
)

type persistStats struct {
	writes        int
	skipped       int
	coalesced     int
	errors        int
	lastFlushTime time.Duration
}

// Recorder captures lightweight, in-memory metrics about scoring and
// persistence activity. It is intentionally simple so it can be swapped for a
// real backend later.
type Recorder struct {
	mu        sync.Mutex
	points    map[string]int
	undos     map[string]int
	restores  map[string]int
	persist   persistStats
	wsClients int
	otel      *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		points:   make(map[string]int),
		undos:    make(map[string]int),
		restores: make(map[string]int),
		otel:     otel,
	}
}

// RecordPoint counts a scored point attributed to a team.
func (r *Recorder) RecordPoint(team string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.points[team]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordPoint(team)
	}
}

// RecordUndo counts an undo operation by kind ("last" or "team").
func (r *Recorder) RecordUndo(kind string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.undos[kind]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordUndo(kind)
	}
}

// RecordFlush tracks a persistence flush attempt and its duration.
func (r *Recorder) RecordFlush(duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	if err != nil {
		r.persist.errors++
	} else {
		r.persist.writes++
	}
	r.persist.lastFlushTime = duration
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordFlush(duration, err)
	}
}

// RecordWriteSkipped counts a flush that was dropped because the payload
// matched the last committed one.
func (r *Recorder) RecordWriteSkipped() {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.persist.skipped++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordWriteSkipped()
	}
}

// RecordCoalesced counts a pending write replaced before it was flushed.
func (r *Recorder) RecordCoalesced() {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.persist.coalesced++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCoalesced()
	}
}

// RecordRestore counts a boot-time restore by source
// ("runtime", "snapshot", "volatile", or "none").
func (r *Recorder) RecordRestore(source string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.restores[source]++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRestore(source)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// WSClientConnected tracks a live-update client attaching.
func (r *Recorder) WSClientConnected() {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.wsClients++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordWSDelta(1)
	}
}

// WSClientDisconnected tracks a live-update client detaching.
func (r *Recorder) WSClientDisconnected() {
	if r == nil {
		return
	}

	r.mu.Lock()
	if r.wsClients > 0 {
		r.wsClients--
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordWSDelta(-1)
	}
}

// Points returns the total points recorded for a team.
func (r *Recorder) Points(team string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.points[team]
}

// Undos returns the total undo operations recorded for a kind.
func (r *Recorder) Undos(kind string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.undos[kind]
}

// Restores returns the total restores recorded for a source.
func (r *Recorder) Restores(source string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restores[source]
}

// WSClients returns the number of currently attached live-update clients.
func (r *Recorder) WSClients() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wsClients
}

// PersistSnapshot is a copy of the current persistence counters.
type PersistSnapshot struct {
	Writes        int
	Skipped       int
	Coalesced     int
	Errors        int
	LastFlushTime time.Duration
}

func (r *Recorder) PersistSnapshot() PersistSnapshot {
	if r == nil {
		return PersistSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return PersistSnapshot{
		Writes:        r.persist.writes,
		Skipped:       r.persist.skipped,
		Coalesced:     r.persist.coalesced,
		Errors:        r.persist.errors,
		LastFlushTime: r.persist.lastFlushTime,
	}
}
