// Package matchlog keeps a bounded log of finished matches in the shared
// durable store.
package matchlog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"padel-score-service/internal/domain/match"
	"padel-score-service/internal/kv"
	"padel-score-service/internal/logging"
	"padel-score-service/internal/timeutil"
)

const (
	// Key is the durable slot the finished-match log lives under.
	Key = "match.log"
	// DefaultLimit bounds how many finished matches are retained.
	DefaultLimit = 25
)

// Entry is one finished match.
type Entry struct {
	MatchID    string           `json:"matchId"`
	WinnerTeam match.TeamID     `json:"winnerTeam"`
	TeamA      string           `json:"teamA"`
	TeamB      string           `json:"teamB"`
	SetsWon    match.SetsWon    `json:"setsWon"`
	SetHistory []match.SetScore `json:"setHistory"`
	FinishedAt int64            `json:"finishedAt"`
}

// FromState builds a log entry from a finished match.
func FromState(st match.State, at time.Time) Entry {
	return Entry{
		MatchID:    st.MatchID,
		WinnerTeam: st.Winner,
		TeamA:      st.Teams.TeamA.Label,
		TeamB:      st.Teams.TeamB.Label,
		SetsWon:    st.SetsWon,
		SetHistory: append([]match.SetScore(nil), st.SetHistory...),
		FinishedAt: timeutil.UnixMS(at),
	}
}

// Log appends finished matches to a single durable key, dropping the oldest
// entries past the limit. Reads tolerate absent or corrupt payloads by
// starting over empty.
type Log struct {
	store  kv.Store
	limit  int
	logger *slog.Logger

	mu sync.Mutex
}

// New constructs a Log with sane defaults.
func New(store kv.Store, limit int, logger *slog.Logger) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{store: store, limit: limit, logger: logger}
}

// Append records entry, trimming the log to the configured limit. A match
// that finishes again after an undo replaces its earlier record.
func (l *Log) Append(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.read()
	if entry.MatchID != "" {
		for i, e := range entries {
			if e.MatchID == entry.MatchID {
				entries = append(entries[:i], entries[i+1:]...)
				break
			}
		}
	}
	entries = append(entries, entry)
	if len(entries) > l.limit {
		entries = entries[len(entries)-l.limit:]
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return l.store.Set(Key, string(raw))
}

// Recent returns the logged matches, most recent first.
func (l *Log) Recent() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.read()
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

func (l *Log) read() []Entry {
	raw, err := l.store.Get(Key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			logging.Warn(l.logger, "match log unreadable, starting empty", "error", err)
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logging.Warn(l.logger, "match log corrupt, starting empty", "error", err)
		return nil
	}
	return entries
}
