// Package history keeps the undo log: a LIFO stack of deep match-state
// snapshots, one per applied scoring action. Entries are validated on the
// way in because every snapshot must later survive the persistence codec
// without loss; a snapshot that cannot is rejected loudly at push time.
package history

import (
	"fmt"

	"padel-score-service/internal/domain/match"
)

// Entry is one undo-log record: the state as it was before a scoring action,
// tagged with the team whose action replaced it. Actor may be empty on
// entries that predate actor tagging; team-targeted undo then falls back to
// trial attribution.
type Entry struct {
	State match.State
	Actor match.TeamID
}

// StructuralError reports a snapshot that would not round-trip through the
// persistence codec. It is the only error class this package raises, and it
// is never swallowed: truncating a snapshot silently would corrupt undo.
type StructuralError struct {
	Op     string
	Reason error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("history %s: structurally invalid snapshot: %v", e.Op, e.Reason)
}

func (e *StructuralError) Unwrap() error { return e.Reason }

// Stack is the undo log. It is not safe for concurrent use; the owning
// service serializes access.
type Stack struct {
	entries []Entry
}

// NewStack returns an empty undo log.
func NewStack() *Stack {
	return &Stack{}
}

// Push validates the entry, stores an independent deep copy, and returns
// another independent copy. Neither the caller's value nor the stored one
// can be mutated to affect the other.
func (s *Stack) Push(entry Entry) (Entry, error) {
	if entry.Actor != "" && !entry.Actor.Valid() {
		return Entry{}, &StructuralError{Op: "push", Reason: fmt.Errorf("unknown actor %q", entry.Actor)}
	}
	if err := entry.State.Validate(); err != nil {
		return Entry{}, &StructuralError{Op: "push", Reason: err}
	}
	stored := Entry{State: entry.State.Clone(), Actor: entry.Actor}
	s.entries = append(s.entries, stored)
	return Entry{State: stored.State.Clone(), Actor: stored.Actor}, nil
}

// Pop removes and returns a deep copy of the most recent snapshot. The
// second return is false when the stack is empty.
func (s *Stack) Pop() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	last := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return Entry{State: last.State.Clone(), Actor: last.Actor}, true
}

// Entries returns deep copies of every snapshot, oldest first, leaving the
// stack untouched. Team-targeted undo reads the full timeline through this
// so an aborted reconstruction never disturbs the log.
func (s *Stack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	for i, entry := range s.entries {
		out[i] = Entry{State: entry.State.Clone(), Actor: entry.Actor}
	}
	return out
}

// ReplaceFrom swaps in the contents of other, leaving other empty. The
// replay that rebuilds an undo log installs it through this in one step,
// only after the full replay has succeeded.
func (s *Stack) ReplaceFrom(other *Stack) {
	s.entries = other.entries
	other.entries = nil
}

// Clear drops every snapshot.
func (s *Stack) Clear() {
	s.entries = nil
}

// Size returns the number of stored snapshots.
func (s *Stack) Size() int {
	return len(s.entries)
}

// IsEmpty reports whether the log holds no snapshots.
func (s *Stack) IsEmpty() bool {
	return len(s.entries) == 0
}
