package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/julianstephens/proofstreak/internal/constants"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proofstreak.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Driver != constants.DriverSQLite {
		t.Errorf("Driver = %q, want sqlite", cfg.Driver)
	}
	if cfg.ProofTTL != constants.DefaultProofTTL {
		t.Errorf("ProofTTL = %v, want %v", cfg.ProofTTL, constants.DefaultProofTTL)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
driver: bolt
database: /tmp/streaks.bolt
listen: ":9000"
admins: [900, 901]
timezone: Europe/Berlin
proofTTL: 5m
redis:
  addr: localhost:6379
webhook:
  url: http://gateway/send
  secret: from-file
`)
	t.Setenv("PROOFSTREAK_WEBHOOK_SECRET", "from-env")
	t.Setenv("PROOFSTREAK_SWEEP_WORKERS", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Driver != constants.DriverBolt || cfg.Database != "/tmp/streaks.bolt" {
		t.Errorf("storage = %s %s", cfg.Driver, cfg.Database)
	}
	if !slices.Equal(cfg.Admins, []int64{900, 901}) {
		t.Errorf("Admins = %v", cfg.Admins)
	}
	if cfg.ProofTTL != 5*time.Minute {
		t.Errorf("ProofTTL = %v, want 5m", cfg.ProofTTL)
	}
	if cfg.Webhook.Secret != "from-env" {
		t.Errorf("env should override file, got %q", cfg.Webhook.Secret)
	}
	if cfg.SweepWorkers != 3 {
		t.Errorf("SweepWorkers = %d, want 3", cfg.SweepWorkers)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadEnvAdmins(t *testing.T) {
	t.Setenv("PROOFSTREAK_ADMINS", "1,2,3")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(cfg.Admins, []int64{1, 2, 3}) {
		t.Errorf("Admins = %v", cfg.Admins)
	}
}

func TestLoadInfersPostgres(t *testing.T) {
	t.Setenv("PROOFSTREAK_DATABASE", "postgres://streaks@localhost:5432/proofstreak")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Driver != constants.DriverPostgres {
		t.Errorf("Driver = %q, want postgres", cfg.Driver)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown driver", "driver: mongo\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
		{"zero workers", "sweepWorkers: -1\n"},
		{"bad log format", "logFormat: xml\n"},
		{"bad yaml", "driver: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDriverFor(t *testing.T) {
	tests := map[string]string{
		"postgresql://u@h/db":   constants.DriverPostgres,
		"postgres://u@h/db":     constants.DriverPostgres,
		"/var/lib/streaks.bolt": constants.DriverBolt,
		"/var/lib/streaks.db":   constants.DriverSQLite,
		"host=localhost user=streaks dbname=proofstreak": constants.DriverPostgres,
		"keyring": constants.DriverSQLite,
	}
	for in, want := range tests {
		if got := DriverFor(in); got != want {
			t.Errorf("DriverFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := ExpandHome("~/x/y.db"); got != "/home/tester/x/y.db" {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs/y.db"); got != "/abs/y.db" {
		t.Errorf("ExpandHome should leave absolute paths, got %q", got)
	}
}
