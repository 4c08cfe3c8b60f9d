// Package schema is the versioned storage-stable encoding of match state.
// The snapshot carries the same score facts as the runtime form in a shape
// that survives schema evolution; the two representations are kept
// observationally equivalent by this codec, not byte-identical.
package schema

import (
	"encoding/json"
	"fmt"

	"padel-score-service/internal/domain/match"
)

// Version is the current snapshot schema version.
const Version = 1

// TeamValues is a per-team integer pair, the shape every snapshot section
// uses for scores.
type TeamValues struct {
	TeamA int `json:"teamA"`
	TeamB int `json:"teamB"`
}

// SetState is one set in snapshot form, current or completed.
type SetState struct {
	Number int        `json:"number"`
	Games  TeamValues `json:"games"`
}

// GameState is the game in progress. Points use the shared integer
// encoding: 0/15/30/40, 50 for advantage, 60 for a just-won game, raw
// counts during a tie-break.
type GameState struct {
	Points TeamValues `json:"points"`
}

// Snapshot is the persisted schema form. Team labels and the match ID are
// deliberately absent; only the runtime blob carries them.
type Snapshot struct {
	Status          string     `json:"status"`
	WinnerTeam      string     `json:"winnerTeam,omitempty"`
	SetsToPlay      int        `json:"setsToPlay"`
	SetsNeededToWin int        `json:"setsNeededToWin"`
	SetsWon         TeamValues `json:"setsWon"`
	CurrentSet      SetState   `json:"currentSet"`
	CurrentGame     GameState  `json:"currentGame"`
	SetHistory      []SetState `json:"setHistory"`
	SchemaVersion   int        `json:"schemaVersion"`
	UpdatedAt       int64      `json:"updatedAt"`
}

// DecodeError reports a snapshot payload that is present but unusable.
// Callers treat it as "no data" and fall back to a fresh match.
type DecodeError struct {
	Reason error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("schema decode: %v", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Reason }

func decodeErrorf(format string, args ...any) *DecodeError {
	return &DecodeError{Reason: fmt.Errorf(format, args...)}
}

// Encode converts a runtime state into its versioned snapshot.
func Encode(st match.State) Snapshot {
	snap := Snapshot{
		Status:          string(st.Status),
		SetsToPlay:      2*st.SetsNeededToWin - 1,
		SetsNeededToWin: st.SetsNeededToWin,
		SetsWon:         TeamValues{TeamA: st.SetsWon.TeamA, TeamB: st.SetsWon.TeamB},
		CurrentSet: SetState{
			Number: st.CurrentSet.Number,
			Games:  TeamValues{TeamA: st.CurrentSet.TeamAGames, TeamB: st.CurrentSet.TeamBGames},
		},
		CurrentGame: GameState{
			Points: TeamValues{TeamA: int(st.TeamA.Points), TeamB: int(st.TeamB.Points)},
		},
		SetHistory:    make([]SetState, 0, len(st.SetHistory)),
		SchemaVersion: Version,
		UpdatedAt:     st.UpdatedAt,
	}
	for _, set := range st.SetHistory {
		snap.SetHistory = append(snap.SetHistory, SetState{
			Number: set.Number,
			Games:  TeamValues{TeamA: set.TeamAGames, TeamB: set.TeamBGames},
		})
	}
	if st.Status == match.StatusFinished {
		snap.WinnerTeam = string(st.Winner)
	}
	return snap
}

// Decode reconstructs a runtime state from a snapshot. Tie-break point
// semantics are selected structurally, by both current-set game counts
// standing at 6. The result is validated; any violation comes back as a
// *DecodeError.
func Decode(snap Snapshot) (match.State, error) {
	if snap.SchemaVersion != Version {
		return match.State{}, decodeErrorf("unsupported schemaVersion %d", snap.SchemaVersion)
	}

	st := match.State{
		Teams: match.DefaultTeams(),
		TeamA: match.Side{
			Points: match.Point(snap.CurrentGame.Points.TeamA),
			Games:  snap.CurrentSet.Games.TeamA,
		},
		TeamB: match.Side{
			Points: match.Point(snap.CurrentGame.Points.TeamB),
			Games:  snap.CurrentSet.Games.TeamB,
		},
		CurrentSet: match.SetScore{
			Number:     snap.CurrentSet.Number,
			TeamAGames: snap.CurrentSet.Games.TeamA,
			TeamBGames: snap.CurrentSet.Games.TeamB,
		},
		CurrentSetNumber: snap.CurrentSet.Number,
		SetsNeededToWin:  snap.SetsNeededToWin,
		SetsWon:          match.SetsWon{TeamA: snap.SetsWon.TeamA, TeamB: snap.SetsWon.TeamB},
		SetHistory:       make([]match.SetScore, 0, len(snap.SetHistory)),
		Status:           match.Status(snap.Status),
		Winner:           match.TeamID(snap.WinnerTeam),
		UpdatedAt:        snap.UpdatedAt,
	}
	for _, set := range snap.SetHistory {
		st.SetHistory = append(st.SetHistory, match.SetScore{
			Number:     set.Number,
			TeamAGames: set.Games.TeamA,
			TeamBGames: set.Games.TeamB,
		})
	}

	st.Normalize()
	if err := st.Validate(); err != nil {
		return match.State{}, &DecodeError{Reason: err}
	}
	return st, nil
}

// DecodeJSON parses and decodes a snapshot payload in one step.
func DecodeJSON(data []byte) (match.State, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return match.State{}, &DecodeError{Reason: err}
	}
	return Decode(snap)
}
