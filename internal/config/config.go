package config

import "github.com/joho/godotenv"

// Config holds runtime configuration for the server.
type Config struct {
	Port        string
	Match       MatchConfig
	Persist     PersistConfig
	Metrics     MetricsConfig
	AdminToken  string
	CORSOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        envOrDefault(envPort, defaultPort),
		Match:       loadMatch(),
		Persist:     loadPersist(),
		Metrics:     loadMetrics(),
		AdminToken:  envOrDefault(envAdminToken, ""),
		CORSOrigins: listEnvOrDefault(envCORSOrigins, defaultCORSOrigins),
	}
}
