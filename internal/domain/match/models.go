package match

// TeamID names one of the two sides of a match.
type TeamID string

const (
	TeamA TeamID = "teamA"
	TeamB TeamID = "teamB"
)

// Opponent returns the other side.
func (t TeamID) Opponent() TeamID {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// Valid reports whether the value is one of the two known sides.
func (t TeamID) Valid() bool {
	return t == TeamA || t == TeamB
}

// Point is the per-team point value within the current game. Both persisted
// representations share this integer encoding: 0/15/30/40 for a regular game,
// 50 for advantage, 60 for a just-won game, and a raw rally count during a
// tie-break.
type Point int

const (
	Love      Point = 0
	Fifteen   Point = 15
	Thirty    Point = 30
	Forty     Point = 40
	Advantage Point = 50
	GameWon   Point = 60
)

// GameMode selects how Point values are interpreted for the current game.
// The scoring engine switches the mode explicitly when a set reaches 6-6
// instead of re-deriving it from game counts at every read site.
type GameMode string

const (
	ModeRegular  GameMode = "regular"
	ModeTieBreak GameMode = "tiebreak"
)

// Status mirrors the shared contract for match lifecycle states.
type Status string

const (
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// TeamInfo carries the stable identifier and display label of one side.
type TeamInfo struct {
	ID    TeamID `json:"id"`
	Label string `json:"label"`
}

// Teams pairs both sides' info.
type Teams struct {
	TeamA TeamInfo `json:"teamA"`
	TeamB TeamInfo `json:"teamB"`
}

// DefaultTeams returns both sides with their placeholder labels, used when a
// persisted payload does not carry labels of its own.
func DefaultTeams() Teams {
	return Teams{
		TeamA: TeamInfo{ID: TeamA, Label: "Team A"},
		TeamB: TeamInfo{ID: TeamB, Label: "Team B"},
	}
}

// Side is one team's live score: current-game points and current-set games.
type Side struct {
	Points Point `json:"points"`
	Games  int   `json:"games"`
}

// SetScore describes one set. It serves both as the set in progress and,
// once appended to the set history, as an immutable finalized entry.
type SetScore struct {
	Number     int `json:"number"`
	TeamAGames int `json:"teamAGames"`
	TeamBGames int `json:"teamBGames"`
}

// Games returns the game count for the given side.
func (s SetScore) Games(team TeamID) int {
	if team == TeamA {
		return s.TeamAGames
	}
	return s.TeamBGames
}

// SetsWon counts completed sets per side.
type SetsWon struct {
	TeamA int `json:"teamA"`
	TeamB int `json:"teamB"`
}

// For returns the count for the given side.
func (s SetsWon) For(team TeamID) int {
	if team == TeamA {
		return s.TeamA
	}
	return s.TeamB
}

// Total is the number of completed sets.
func (s SetsWon) Total() int {
	return s.TeamA + s.TeamB
}
