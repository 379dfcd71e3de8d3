package constants

import "time"

const (
	AppName            = "proofstreak"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/proofstreak/proofstreak.db"
	Version            = "v0.1.0"
	DefaultLogDir      = "~/.config/proofstreak/logs"
	DefaultListenAddr  = ":8080"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Habit defaults
	DefaultNotificationTime = "09:00"
	DefaultTimezone         = "UTC"

	// Enrichment fallbacks
	UnknownHabitName = "Unknown"
	GenericHabitName = "your habit"

	// Notify constants
	NotifyTimeout       = 5 * time.Second
	NotifySecretHeader  = "X-Proofstreak-Secret"
	DefaultSweepWorkers = 8

	// Proof cache
	DefaultProofTTL       = 10 * time.Minute
	ProofCacheKeyPrefix   = "proofstreak:proof"
	DefaultRedisOpTimeout = 2 * time.Second

	// Storage drivers
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)
