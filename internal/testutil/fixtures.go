package testutil

import (
	"time"

	"padel-score-service/internal/domain/match"
	"padel-score-service/internal/history"
	"padel-score-service/internal/scoring"
)

// FixedNow is the timestamp most fixtures are stamped with.
var FixedNow = time.Date(2024, time.March, 10, 18, 30, 0, 0, time.UTC)

// NewMatch returns a fresh best-of-three match with default labels.
func NewMatch() match.State {
	return match.New("Team A", "Team B", 2, FixedNow)
}

// ScoredMatch applies the given taps to a fresh match and returns the
// resulting state together with the undo log that accumulated.
func ScoredMatch(taps ...match.TeamID) (match.State, *history.Stack) {
	h := history.NewStack()
	st := NewMatch()
	for _, team := range taps {
		st = scoring.AddPoint(st, team, h, FixedNow)
	}
	return st, h
}

// FinishedMatch plays teamA through a straight-sets win.
func FinishedMatch() (match.State, *history.Stack) {
	h := history.NewStack()
	st := NewMatch()
	for !st.Finished() {
		st = scoring.AddPoint(st, match.TeamA, h, FixedNow)
	}
	return st, h
}
