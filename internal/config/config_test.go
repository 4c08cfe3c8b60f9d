package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.Match.LabelA != defaultTeamALabel || cfg.Match.LabelB != defaultTeamBLabel {
		t.Fatalf("expected default labels, got %q/%q", cfg.Match.LabelA, cfg.Match.LabelB)
	}
	if cfg.Match.SetsNeededToWin != defaultSetsToWin {
		t.Fatalf("expected default sets to win %d, got %d", defaultSetsToWin, cfg.Match.SetsNeededToWin)
	}
	if cfg.Persist.Window != defaultPersistWindow {
		t.Fatalf("expected default persist window %s, got %s", defaultPersistWindow, cfg.Persist.Window)
	}
	if cfg.Persist.Driver != defaultStoreDriver {
		t.Fatalf("expected default driver %s, got %s", defaultStoreDriver, cfg.Persist.Driver)
	}
	if cfg.Persist.LogLimit != defaultMatchLogLimit {
		t.Fatalf("expected default log limit %d, got %d", defaultMatchLogLimit, cfg.Persist.LogLimit)
	}
	if cfg.AdminToken != "" {
		t.Fatalf("expected empty admin token by default, got %s", cfg.AdminToken)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("expected wildcard cors default, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(envPort, "5000")
	t.Setenv(envTeamALabel, "Casa")
	t.Setenv(envTeamBLabel, "Visita")
	t.Setenv(envSetsToWin, "3")
	t.Setenv(envPersistWindow, "250ms")
	t.Setenv(envStoreDriver, "file")
	t.Setenv(envStorePath, "/tmp/scores")
	t.Setenv(envMatchLogLimit, "5")
	t.Setenv(envAdminToken, "secret")
	t.Setenv(envCORSOrigins, "http://a.local, http://b.local")

	cfg := Load()

	if cfg.Port != "5000" {
		t.Fatalf("expected port 5000, got %s", cfg.Port)
	}
	if cfg.Match.LabelA != "Casa" || cfg.Match.LabelB != "Visita" {
		t.Fatalf("expected label overrides, got %q/%q", cfg.Match.LabelA, cfg.Match.LabelB)
	}
	if cfg.Match.SetsNeededToWin != 3 {
		t.Fatalf("expected 3 sets to win, got %d", cfg.Match.SetsNeededToWin)
	}
	if cfg.Persist.Window != 250*time.Millisecond {
		t.Fatalf("expected 250ms window, got %s", cfg.Persist.Window)
	}
	if cfg.Persist.Driver != "file" || cfg.Persist.StorePath != "/tmp/scores" {
		t.Fatalf("expected store overrides, got %s %s", cfg.Persist.Driver, cfg.Persist.StorePath)
	}
	if cfg.Persist.LogLimit != 5 {
		t.Fatalf("expected log limit 5, got %d", cfg.Persist.LogLimit)
	}
	if cfg.AdminToken != "secret" {
		t.Fatalf("expected admin token override, got %s", cfg.AdminToken)
	}
	want := []string{"http://a.local", "http://b.local"}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != want[0] || cfg.CORSOrigins[1] != want[1] {
		t.Fatalf("expected cors overrides %v, got %v", want, cfg.CORSOrigins)
	}
}

func TestLoadInvalidWindowFallsBack(t *testing.T) {
	t.Setenv(envPersistWindow, "not-a-duration")

	cfg := Load()

	if cfg.Persist.Window != defaultPersistWindow {
		t.Fatalf("expected default window on invalid value, got %s", cfg.Persist.Window)
	}
}

func TestLoadNonPositiveWindowFallsBack(t *testing.T) {
	t.Setenv(envPersistWindow, "0s")

	cfg := Load()

	if cfg.Persist.Window != defaultPersistWindow {
		t.Fatalf("expected default window on non-positive value, got %s", cfg.Persist.Window)
	}
}

func TestLoadMetricsDefaults(t *testing.T) {
	cfg := Load()

	if !cfg.Metrics.Enabled {
		t.Fatal("expected metrics enabled by default")
	}
	if cfg.Metrics.Port != defaultMetricsPort {
		t.Fatalf("expected default metrics port %s, got %s", defaultMetricsPort, cfg.Metrics.Port)
	}
	if cfg.Metrics.ServiceName != "padel-score-service" {
		t.Fatalf("expected default service name, got %s", cfg.Metrics.ServiceName)
	}
}
