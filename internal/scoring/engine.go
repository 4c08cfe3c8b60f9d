// Package scoring holds the pure match state machine. Every operation takes
// the current state and returns the next one; callers own the single live
// state and replace it wholesale after each call. The undo log records one
// snapshot per applied action and is the only collaborator the engine
// touches.
package scoring

import (
	"time"

	"padel-score-service/internal/domain/match"
	"padel-score-service/internal/history"
	"padel-score-service/internal/timeutil"
)

// AddPoint awards one rally point to team and returns the resulting state.
// The pre-transition state is pushed onto the undo log, tagged with the
// acting team. Scoring a finished match is a no-op and leaves the log
// untouched.
func AddPoint(st match.State, team match.TeamID, h *history.Stack, at time.Time) match.State {
	if !team.Valid() || st.Finished() {
		return st
	}
	if _, err := h.Push(history.Entry{State: st, Actor: team}); err != nil {
		// A state the undo log rejects cannot round-trip through
		// persistence either; refuse to transform it.
		return st
	}

	next := st.Clone()
	next.UpdatedAt = timeutil.UnixMS(at)

	if next.Mode == match.ModeTieBreak {
		return scoreTieBreak(next, team)
	}
	return scoreRegular(next, team)
}

// RemovePoint rolls back the single most recent scoring action, whichever
// team it belonged to, by restoring the latest undo snapshot verbatim. With
// an empty log the current state is returned unchanged.
func RemovePoint(st match.State, h *history.Stack) match.State {
	entry, ok := h.Pop()
	if !ok {
		return st
	}
	return entry.State
}

// RemovePointForTeam undoes the most recent action attributable to team
// while keeping the other side's later points. It reads the full undo
// timeline, tags every transition with its acting team (stored tag first,
// trial application as the fallback for untagged entries), drops the most
// recent transition owned by team, and replays the remainder from the
// oldest snapshot, rebuilding state and log together. If any transition
// cannot be attributed, or team owns none of them, state and log are left
// exactly as they were.
func RemovePointForTeam(st match.State, h *history.Stack, team match.TeamID, at time.Time) match.State {
	if !team.Valid() {
		return st
	}
	entries := h.Entries()
	if len(entries) == 0 {
		return st
	}

	timeline := make([]match.State, 0, len(entries)+1)
	for _, entry := range entries {
		timeline = append(timeline, entry.State)
	}
	timeline = append(timeline, st.Clone())

	actors := make([]match.TeamID, len(entries))
	for i, entry := range entries {
		actor := entry.Actor
		if actor == "" {
			actor = attributeTransition(timeline[i], timeline[i+1], at)
		}
		if !actor.Valid() {
			return st
		}
		actors[i] = actor
	}

	target := -1
	for i := len(actors) - 1; i >= 0; i-- {
		if actors[i] == team {
			target = i
			break
		}
	}
	if target == -1 {
		return st
	}

	rebuilt := history.NewStack()
	next := timeline[0]
	for i, actor := range actors {
		if i == target {
			continue
		}
		next = AddPoint(next, actor, rebuilt, at)
	}
	h.ReplaceFrom(rebuilt)
	return next
}

// attributeTransition infers which team's point turned before into after by
// trial-applying AddPoint for each candidate. Symmetric positions where
// both candidates reproduce the same state resolve to teamA; stored actor
// tags exist to keep real logs out of that situation.
func attributeTransition(before, after match.State, at time.Time) match.TeamID {
	for _, candidate := range []match.TeamID{match.TeamA, match.TeamB} {
		scratch := history.NewStack()
		if AddPoint(before, candidate, scratch, at).Equal(after) {
			return candidate
		}
	}
	return ""
}

func scoreRegular(next match.State, team match.TeamID) match.State {
	us := sideOf(&next, team)
	them := sideOf(&next, team.Opponent())

	switch us.Points {
	case match.Love:
		us.Points = match.Fifteen
	case match.Fifteen:
		us.Points = match.Thirty
	case match.Thirty:
		us.Points = match.Forty
	case match.Forty:
		switch them.Points {
		case match.Advantage:
			// Deuce rule: winning the point against advantage cancels
			// it instead of advancing.
			them.Points = match.Forty
		case match.Forty:
			us.Points = match.Advantage
		default:
			return winGame(next, team)
		}
	case match.Advantage:
		return winGame(next, team)
	}
	return next
}

func scoreTieBreak(next match.State, team match.TeamID) match.State {
	us := sideOf(&next, team)
	them := sideOf(&next, team.Opponent())

	us.Points++
	if us.Points >= 7 && us.Points-them.Points >= 2 {
		return winGame(next, team)
	}
	return next
}

// winGame credits one game to team, resets both sides' points, and settles
// any set or match that the game completes.
func winGame(next match.State, team match.TeamID) match.State {
	if team == match.TeamA {
		next.TeamA.Games++
		next.CurrentSet.TeamAGames++
	} else {
		next.TeamB.Games++
		next.CurrentSet.TeamBGames++
	}
	next.TeamA.Points = match.Love
	next.TeamB.Points = match.Love
	next.Mode = match.ModeRegular

	games := next.CurrentSet.Games(team)
	oppGames := next.CurrentSet.Games(team.Opponent())
	switch {
	case games >= 6 && games-oppGames >= 2:
		return winSet(next, team)
	case games == 7:
		// 7-6: the game just won was the tie-break.
		return winSet(next, team)
	case games == 6 && oppGames == 6:
		next.Mode = match.ModeTieBreak
	}
	return next
}

func winSet(next match.State, team match.TeamID) match.State {
	next.SetHistory = append(next.SetHistory, next.CurrentSet)
	if team == match.TeamA {
		next.SetsWon.TeamA++
	} else {
		next.SetsWon.TeamB++
	}

	if next.SetsWon.For(team) == next.SetsNeededToWin {
		// Terminal: the final set's score stays visible, no reset.
		next.Status = match.StatusFinished
		next.Winner = team
		return next
	}

	next.CurrentSet = match.SetScore{Number: next.CurrentSet.Number + 1}
	next.CurrentSetNumber = next.CurrentSet.Number
	next.TeamA = match.Side{}
	next.TeamB = match.Side{}
	return next
}

func sideOf(st *match.State, team match.TeamID) *match.Side {
	if team == match.TeamA {
		return &st.TeamA
	}
	return &st.TeamB
}
