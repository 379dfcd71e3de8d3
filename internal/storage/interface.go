package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/proofstreak/internal/models"
)

var (
	// ErrNotFound is returned by point lookups when no record matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateDay is returned by AddSubmission when the (user, habit, day)
	// slot is already held by a pending or approved submission.
	ErrDuplicateDay = errors.New("submission already exists for this day")
)

type HabitStore interface {
	AddHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	GetHabitsForUser(ctx context.Context, userID int64, includeInactive bool) ([]models.Habit, error)
	// GetHabitsByNotificationTime returns active habits of every user due at hhmm.
	GetHabitsByNotificationTime(ctx context.Context, hhmm string) ([]models.Habit, error)
	// UpdateHabit overwrites the mutable fields of an existing habit. It reports
	// false when no habit with that id exists.
	UpdateHabit(ctx context.Context, habit models.Habit) (bool, error)
	SetHabitActive(ctx context.Context, id string, active bool) (bool, error)
	DeleteHabit(ctx context.Context, id string) (bool, error)
}

type SubmissionStore interface {
	AddSubmission(ctx context.Context, sub models.Submission) error
	GetSubmission(ctx context.Context, id string) (models.Submission, error)
	GetPendingSubmissions(ctx context.Context) ([]models.Submission, error)
	GetSubmissionsForUser(ctx context.Context, userID int64, filter models.SubmissionFilter) ([]models.Submission, error)
	// HasActiveSubmission reports whether a pending or approved submission holds the day.
	HasActiveSubmission(ctx context.Context, userID int64, habitID, day string) (bool, error)
	// ReviewSubmission applies review only if the submission is still pending.
	ReviewSubmission(ctx context.Context, id string, review models.Review) (bool, error)
}

type StreakStore interface {
	GetOrCreateStreak(ctx context.Context, userID int64, habitID string) (models.Streak, error)
	GetStreak(ctx context.Context, userID int64, habitID string) (models.Streak, error)
	GetStreaksForUser(ctx context.Context, userID int64) ([]models.Streak, error)
	// IncrementStreak atomically bumps current and total, stamps day and raises longest.
	IncrementStreak(ctx context.Context, userID int64, habitID, day string) (bool, error)
	ResetStreak(ctx context.Context, userID int64, habitID string) (bool, error)
	RaiseLongestStreak(ctx context.Context, userID int64, habitID string, candidate int) (bool, error)
	DeleteStreak(ctx context.Context, userID int64, habitID string) (bool, error)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	HabitStore
	SubmissionStore
	StreakStore

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by providers with a versioned schema.
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}
