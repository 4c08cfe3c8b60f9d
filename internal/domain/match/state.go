package match

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"padel-score-service/internal/timeutil"
)

// State is the runtime representation of one match. It is plain data: the
// scoring engine is the only component that derives new states from it, and
// callers replace their copy wholesale after each transition.
type State struct {
	MatchID          string     `json:"matchId,omitempty"`
	Teams            Teams      `json:"teams"`
	TeamA            Side       `json:"teamA"`
	TeamB            Side       `json:"teamB"`
	CurrentSet       SetScore   `json:"currentSetStatus"`
	CurrentSetNumber int        `json:"currentSet"`
	Mode             GameMode   `json:"gameMode,omitempty"`
	SetsNeededToWin  int        `json:"setsNeededToWin"`
	SetsWon          SetsWon    `json:"setsWon"`
	SetHistory       []SetScore `json:"setHistory"`
	Status           Status     `json:"status"`
	Winner           TeamID     `json:"winner,omitempty"`
	UpdatedAt        int64      `json:"updatedAt"`
}

// DefaultSetsNeededToWin is the best-of-three default.
const DefaultSetsNeededToWin = 2

// New returns a fresh active match at love-love with a generated match ID.
func New(labelA, labelB string, setsNeededToWin int, now time.Time) State {
	if setsNeededToWin <= 0 {
		setsNeededToWin = DefaultSetsNeededToWin
	}
	if labelA == "" {
		labelA = "Team A"
	}
	if labelB == "" {
		labelB = "Team B"
	}
	return State{
		MatchID: uuid.NewString(),
		Teams: Teams{
			TeamA: TeamInfo{ID: TeamA, Label: labelA},
			TeamB: TeamInfo{ID: TeamB, Label: labelB},
		},
		CurrentSet:       SetScore{Number: 1},
		CurrentSetNumber: 1,
		Mode:             ModeRegular,
		SetsNeededToWin:  setsNeededToWin,
		SetHistory:       []SetScore{},
		Status:           StatusActive,
		UpdatedAt:        timeutil.UnixMS(now),
	}
}

// Clone returns a deep copy; mutating either copy never affects the other.
func (s State) Clone() State {
	out := s
	if s.SetHistory != nil {
		out.SetHistory = make([]SetScore, len(s.SetHistory))
		copy(out.SetHistory, s.SetHistory)
	}
	return out
}

// Side returns the live score of the given team.
func (s State) Side(team TeamID) Side {
	if team == TeamA {
		return s.TeamA
	}
	return s.TeamB
}

// Finished reports whether the match has been won.
func (s State) Finished() bool {
	return s.Status == StatusFinished
}

// Equal compares two states by score-relevant value, ignoring MatchID and
// UpdatedAt. This is the equality used for codec round-trips and for
// attributing undo-log transitions to an acting team.
func (s State) Equal(other State) bool {
	return s.Teams == other.Teams &&
		s.TeamA == other.TeamA &&
		s.TeamB == other.TeamB &&
		s.CurrentSet == other.CurrentSet &&
		s.CurrentSetNumber == other.CurrentSetNumber &&
		s.Mode == other.Mode &&
		s.SetsNeededToWin == other.SetsNeededToWin &&
		s.SetsWon == other.SetsWon &&
		s.Status == other.Status &&
		s.Winner == other.Winner &&
		slices.Equal(s.SetHistory, other.SetHistory)
}

// EqualStrict additionally compares MatchID and UpdatedAt. Undo restores a
// snapshot verbatim, so the round-trip guarantee holds under this equality.
func (s State) EqualStrict(other State) bool {
	return s.Equal(other) && s.MatchID == other.MatchID && s.UpdatedAt == other.UpdatedAt
}

// Validate checks the structural invariants every persisted or restored
// state must satisfy.
func (s State) Validate() error {
	if s.SetsNeededToWin < 1 {
		return fmt.Errorf("setsNeededToWin must be >= 1, got %d", s.SetsNeededToWin)
	}
	switch s.Status {
	case StatusActive:
		if s.Winner != "" {
			return fmt.Errorf("active match must not carry winner %q", s.Winner)
		}
	case StatusFinished:
		if !s.Winner.Valid() {
			return fmt.Errorf("finished match carries invalid winner %q", s.Winner)
		}
		if s.SetsWon.For(s.Winner) != s.SetsNeededToWin {
			return fmt.Errorf("winner %q holds %d sets, needs %d",
				s.Winner, s.SetsWon.For(s.Winner), s.SetsNeededToWin)
		}
	default:
		return fmt.Errorf("unknown match status %q", s.Status)
	}
	if got, want := s.SetsWon.Total(), len(s.SetHistory); got != want {
		return fmt.Errorf("setsWon total %d does not match %d recorded sets", got, want)
	}
	if s.CurrentSet.Number < 1 {
		return fmt.Errorf("current set number must be >= 1, got %d", s.CurrentSet.Number)
	}
	if s.CurrentSetNumber != s.CurrentSet.Number {
		return fmt.Errorf("currentSet %d out of step with set status number %d",
			s.CurrentSetNumber, s.CurrentSet.Number)
	}
	if s.CurrentSet.TeamAGames < 0 || s.CurrentSet.TeamBGames < 0 {
		return fmt.Errorf("negative game count in current set %+v", s.CurrentSet)
	}
	if s.TeamA.Games != s.CurrentSet.TeamAGames || s.TeamB.Games != s.CurrentSet.TeamBGames {
		return fmt.Errorf("side game counts %d-%d out of step with current set %d-%d",
			s.TeamA.Games, s.TeamB.Games, s.CurrentSet.TeamAGames, s.CurrentSet.TeamBGames)
	}
	for _, entry := range s.SetHistory {
		if entry.TeamAGames < 0 || entry.TeamBGames < 0 {
			return fmt.Errorf("negative game count in recorded set %+v", entry)
		}
	}
	switch s.Mode {
	case ModeRegular:
		for _, team := range []TeamID{TeamA, TeamB} {
			if !validRegularPoint(s.Side(team).Points) {
				return fmt.Errorf("%s points %d not a regular-game value", team, s.Side(team).Points)
			}
		}
	case ModeTieBreak:
		if s.TeamA.Points < 0 || s.TeamB.Points < 0 {
			return fmt.Errorf("negative tie-break count %d-%d", s.TeamA.Points, s.TeamB.Points)
		}
	default:
		return fmt.Errorf("unknown game mode %q", s.Mode)
	}
	return nil
}

func validRegularPoint(p Point) bool {
	switch p {
	case Love, Fifteen, Thirty, Forty, Advantage, GameWon:
		return true
	}
	return false
}

// FromJSON decodes a runtime blob, normalizes legacy payloads, and validates
// the result. Callers treat any error as "no saved match".
func FromJSON(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, err
	}
	st.Normalize()
	if err := st.Validate(); err != nil {
		return State{}, err
	}
	return st, nil
}

// Normalize fills fields older payloads did not carry: the explicit game
// mode (inferred once from a 6-6 set), the mirrored set number, team IDs,
// and a non-nil set history.
func (s *State) Normalize() {
	if s.Mode == "" {
		if s.CurrentSet.TeamAGames == 6 && s.CurrentSet.TeamBGames == 6 {
			s.Mode = ModeTieBreak
		} else {
			s.Mode = ModeRegular
		}
	}
	if s.CurrentSetNumber == 0 {
		s.CurrentSetNumber = s.CurrentSet.Number
	}
	if s.Teams.TeamA.ID == "" {
		s.Teams.TeamA.ID = TeamA
	}
	if s.Teams.TeamB.ID == "" {
		s.Teams.TeamB.ID = TeamB
	}
	if s.SetHistory == nil {
		s.SetHistory = []SetScore{}
	}
}
