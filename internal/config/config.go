// Package config resolves runtime settings from defaults, an optional YAML
// file and PROOFSTREAK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/proofstreak/internal/constants"
	"github.com/julianstephens/proofstreak/internal/utils"
)

const EnvPrefix = "PROOFSTREAK_"

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type WebhookConfig struct {
	URL    string `yaml:"url" env:"URL"`
	Secret string `yaml:"secret" env:"SECRET"`
}

type Config struct {
	Driver       string        `yaml:"driver" env:"DRIVER"`
	Database     string        `yaml:"database" env:"DATABASE"`
	Listen       string        `yaml:"listen" env:"LISTEN"`
	Admins       []int64       `yaml:"admins" env:"ADMINS"`
	Timezone     string        `yaml:"timezone" env:"TIMEZONE"`
	ProofTTL     time.Duration `yaml:"proofTTL" env:"PROOF_TTL"`
	SweepWorkers int           `yaml:"sweepWorkers" env:"SWEEP_WORKERS"`
	Debug        bool          `yaml:"debug" env:"DEBUG"`
	LogDir       string        `yaml:"logDir" env:"LOG_DIR"`
	LogFormat    string        `yaml:"logFormat" env:"LOG_FORMAT"` // text or json
	Redis        RedisConfig   `yaml:"redis" envPrefix:"REDIS_"`
	Webhook      WebhookConfig `yaml:"webhook" envPrefix:"WEBHOOK_"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Driver:       constants.DriverSQLite,
		Database:     constants.DefaultConfigPath,
		Listen:       constants.DefaultListenAddr,
		Timezone:     constants.DefaultTimezone,
		ProofTTL:     constants.DefaultProofTTL,
		SweepWorkers: constants.DefaultSweepWorkers,
		LogDir:       constants.DefaultLogDir,
		LogFormat:    "text",
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(ExpandHome(path))
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Driver == "" || (cfg.Driver == constants.DriverSQLite && IsPostgresDSN(cfg.Database)) {
		cfg.Driver = DriverFor(cfg.Database)
	}
	cfg.Database = ExpandHome(cfg.Database)
	cfg.LogDir = ExpandHome(cfg.LogDir)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Driver {
	case constants.DriverSQLite, constants.DriverPostgres, constants.DriverBolt:
	default:
		return fmt.Errorf("config: unknown driver %q (expected sqlite, postgres or bolt)", c.Driver)
	}
	if c.Database == "" {
		return errors.New("config: database is required")
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("config: invalid timezone %q", c.Timezone)
	}
	if c.ProofTTL <= 0 {
		return errors.New("config: proofTTL must be positive")
	}
	if c.SweepWorkers <= 0 {
		return errors.New("config: sweepWorkers must be positive")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: logFormat must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// IsPostgresDSN reports whether s looks like a PostgreSQL URL.
func IsPostgresDSN(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// isKeyValueDSN reports whether s is a libpq key=value string such as
// "host=localhost dbname=proofstreak".
func isKeyValueDSN(s string) bool {
	for _, field := range strings.Fields(s) {
		key, _, ok := strings.Cut(field, "=")
		if ok && (key == "host" || key == "dbname") {
			return true
		}
	}
	return false
}

// DriverFor guesses the storage driver from the database location.
func DriverFor(database string) string {
	switch {
	case IsPostgresDSN(database), isKeyValueDSN(database):
		return constants.DriverPostgres
	case strings.HasSuffix(database, ".bolt"):
		return constants.DriverBolt
	default:
		return constants.DriverSQLite
	}
}

func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
