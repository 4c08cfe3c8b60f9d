package history

import (
	"errors"
	"testing"
	"time"

	"padel-score-service/internal/domain/match"
)

var historyNow = time.Date(2024, time.March, 10, 18, 30, 0, 0, time.UTC)

func validState() match.State {
	return match.New("Home", "Away", 2, historyNow)
}

func TestPushStoresIndependentCopy(t *testing.T) {
	stack := NewStack()
	st := validState()
	st.SetHistory = []match.SetScore{{Number: 1, TeamAGames: 6, TeamBGames: 4}}
	st.SetsWon = match.SetsWon{TeamA: 1}
	st.CurrentSet.Number = 2
	st.CurrentSetNumber = 2

	returned, err := stack.Push(Entry{State: st, Actor: match.TeamA})
	if err != nil {
		t.Fatalf("push failed: %v", err)
	}

	st.SetHistory[0].TeamAGames = 99
	returned.State.SetHistory[0].TeamBGames = 99

	popped, ok := stack.Pop()
	if !ok {
		t.Fatalf("expected entry on stack")
	}
	if popped.State.SetHistory[0].TeamAGames != 6 || popped.State.SetHistory[0].TeamBGames != 4 {
		t.Fatalf("stored snapshot was mutated through caller copies: %+v", popped.State.SetHistory)
	}
	if popped.Actor != match.TeamA {
		t.Fatalf("expected actor %q got %q", match.TeamA, popped.Actor)
	}
}

func TestPushRejectsInvalidSnapshot(t *testing.T) {
	stack := NewStack()
	st := validState()
	st.Winner = match.TeamA

	_, err := stack.Push(Entry{State: st})
	if err == nil {
		t.Fatalf("expected structural error")
	}
	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("expected *StructuralError, got %T", err)
	}
	if stack.Size() != 0 {
		t.Fatalf("rejected push must not grow the stack, size=%d", stack.Size())
	}
}

func TestPushRejectsUnknownActor(t *testing.T) {
	stack := NewStack()

	_, err := stack.Push(Entry{State: validState(), Actor: match.TeamID("referee")})
	var structural *StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("expected *StructuralError, got %v", err)
	}
}

func TestPopOrderAndEmpty(t *testing.T) {
	stack := NewStack()

	first := validState()
	second := validState()
	second.TeamA.Points = match.Fifteen

	if _, err := stack.Push(Entry{State: first, Actor: match.TeamA}); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if _, err := stack.Push(Entry{State: second, Actor: match.TeamB}); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	entry, ok := stack.Pop()
	if !ok || entry.State.TeamA.Points != match.Fifteen {
		t.Fatalf("expected most recent snapshot first, got %+v ok=%v", entry.State.TeamA, ok)
	}
	entry, ok = stack.Pop()
	if !ok || entry.State.TeamA.Points != match.Love {
		t.Fatalf("expected oldest snapshot second, got %+v ok=%v", entry.State.TeamA, ok)
	}
	if _, ok := stack.Pop(); ok {
		t.Fatalf("expected empty stack to report no entry")
	}
	if !stack.IsEmpty() {
		t.Fatalf("expected empty stack")
	}
}

func TestEntriesIsOldestFirstAndNonDestructive(t *testing.T) {
	stack := NewStack()
	states := make([]match.State, 3)
	for i := range states {
		st := validState()
		st.TeamB.Points = match.Point(i * 15)
		states[i] = st
		if _, err := stack.Push(Entry{State: st, Actor: match.TeamB}); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}

	entries := stack.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, entry := range entries {
		if !entry.State.EqualStrict(states[i]) {
			t.Fatalf("entry %d out of order", i)
		}
	}
	if stack.Size() != 3 {
		t.Fatalf("Entries must not drain the stack, size=%d", stack.Size())
	}

	entries[0].State.TeamB.Points = match.Forty
	fresh := stack.Entries()
	if fresh[0].State.TeamB.Points != match.Love {
		t.Fatalf("returned entries share storage with the stack")
	}
}

func TestReplaceFrom(t *testing.T) {
	stack := NewStack()
	if _, err := stack.Push(Entry{State: validState(), Actor: match.TeamA}); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	rebuilt := NewStack()
	replacement := validState()
	replacement.TeamA.Points = match.Thirty
	if _, err := rebuilt.Push(Entry{State: replacement, Actor: match.TeamB}); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	stack.ReplaceFrom(rebuilt)

	if stack.Size() != 1 {
		t.Fatalf("expected replaced stack size 1, got %d", stack.Size())
	}
	entry, _ := stack.Pop()
	if entry.State.TeamA.Points != match.Thirty || entry.Actor != match.TeamB {
		t.Fatalf("unexpected replaced entry: %+v", entry)
	}
	if !rebuilt.IsEmpty() {
		t.Fatalf("source stack should be emptied by ReplaceFrom")
	}
}

func TestClear(t *testing.T) {
	stack := NewStack()
	for i := 0; i < 4; i++ {
		if _, err := stack.Push(Entry{State: validState()}); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}

	stack.Clear()

	if !stack.IsEmpty() || stack.Size() != 0 {
		t.Fatalf("expected cleared stack, size=%d", stack.Size())
	}
}
