package config

import "time"

const (
	envPort          = "PORT"
	envTeamALabel    = "TEAM_A_LABEL"
	envTeamBLabel    = "TEAM_B_LABEL"
	envSetsToWin     = "SETS_NEEDED_TO_WIN"
	envPersistWindow = "PERSIST_WINDOW"
	envStoreDriver   = "STORE_DRIVER"
	envStorePath     = "STORE_PATH"
	envMatchLogLimit = "MATCH_LOG_LIMIT"
	envMetricsPort   = "METRICS_PORT"
	envMetricsOn     = "METRICS_ENABLED"
	envOtelEndpoint  = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService   = "OTEL_SERVICE_NAME"
	envOtelInsecure  = "OTEL_EXPORTER_OTLP_INSECURE"
	envAdminToken    = "ADMIN_TOKEN"
	envCORSOrigins   = "CORS_ALLOWED_ORIGINS"

	defaultPort       = "4000"
	defaultTeamALabel = "Team A"
	defaultTeamBLabel = "Team B"
	defaultSetsToWin  = 2
	// Window between a score tap and the write it produces; taps inside the
	// window coalesce into one write.
	defaultPersistWindow = 180 * Duration(time.Millisecond)
	defaultStoreDriver   = "sqlite"
	defaultStorePath     = "data/match.db"
	defaultMatchLogLimit = 25
	defaultMetricsPort   = "9090"
)

var defaultCORSOrigins = []string{"*"}
