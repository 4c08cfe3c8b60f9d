package config

import "time"

// PersistConfig controls the durable store and the debounced write path.
type PersistConfig struct {
	Window    time.Duration
	Driver    string // sqlite | file | memory
	StorePath string
	LogLimit  int
}

func loadPersist() PersistConfig {
	return PersistConfig{
		Window:    durationEnvOrDefault(envPersistWindow, defaultPersistWindow),
		Driver:    envOrDefault(envStoreDriver, defaultStoreDriver),
		StorePath: envOrDefault(envStorePath, defaultStorePath),
		LogLimit:  intEnvOrDefault(envMatchLogLimit, defaultMatchLogLimit),
	}
}
