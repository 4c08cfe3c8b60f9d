package config

// MatchConfig seeds the match a fresh boot starts with.
type MatchConfig struct {
	LabelA          string
	LabelB          string
	SetsNeededToWin int
}

func loadMatch() MatchConfig {
	return MatchConfig{
		LabelA:          envOrDefault(envTeamALabel, defaultTeamALabel),
		LabelB:          envOrDefault(envTeamBLabel, defaultTeamBLabel),
		SetsNeededToWin: intEnvOrDefault(envSetsToWin, defaultSetsToWin),
	}
}
