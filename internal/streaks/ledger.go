// Package streaks keeps the running approval streak for each (user, habit)
// pair and decides when a gap in approvals breaks it.
package streaks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/proofstreak/internal/constants"
	"github.com/julianstephens/proofstreak/internal/logger"
	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/storage"
	"github.com/julianstephens/proofstreak/internal/utils"
)

type Ledger struct {
	store storage.StreakStore
	clock utils.Clock
}

func NewLedger(store storage.StreakStore, clock utils.Clock) *Ledger {
	return &Ledger{store: store, clock: clock}
}

// IsMissed reports whether the streak was broken: the last approval happened
// before yesterday. A streak that was never approved has nothing to break.
func IsMissed(lastApproved *string, today time.Time) bool {
	if lastApproved == nil {
		return false
	}
	yesterday := utils.StartOfDay(today).AddDate(0, 0, -1).Format(constants.DateFormat)
	// YYYY-MM-DD compares lexically in calendar order.
	return *lastApproved < yesterday
}

// AtRisk reports whether the streak survives only if the habit is approved
// today.
func AtRisk(streak models.Streak, today time.Time) bool {
	if streak.LastApprovedDate == nil || streak.CurrentStreak == 0 {
		return false
	}
	yesterday := utils.StartOfDay(today).AddDate(0, 0, -1).Format(constants.DateFormat)
	return *streak.LastApprovedDate == yesterday
}

// GetOrCreate returns the streak for the pair, creating a zeroed one on first
// access. Concurrent callers always observe the same record.
func (l *Ledger) GetOrCreate(ctx context.Context, userID int64, habitID string) (models.Streak, error) {
	streak, err := l.store.GetOrCreateStreak(ctx, userID, habitID)
	if err != nil {
		return models.Streak{}, fmt.Errorf("failed to get or create streak: %w", err)
	}
	return streak, nil
}

// Get returns nil when the pair has no streak yet.
func (l *Ledger) Get(ctx context.Context, userID int64, habitID string) (*models.Streak, error) {
	streak, err := l.store.GetStreak(ctx, userID, habitID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return &streak, nil
}

// Increment records one approval on day. It reports false when the pair has
// no streak record.
func (l *Ledger) Increment(ctx context.Context, userID int64, habitID, day string) (bool, error) {
	ok, err := l.store.IncrementStreak(ctx, userID, habitID, day)
	if err != nil {
		return false, fmt.Errorf("failed to increment streak: %w", err)
	}
	return ok, nil
}

// Reset zeroes the current streak. Longest and total are kept.
func (l *Ledger) Reset(ctx context.Context, userID int64, habitID string) (bool, error) {
	ok, err := l.store.ResetStreak(ctx, userID, habitID)
	if err != nil {
		return false, fmt.Errorf("failed to reset streak: %w", err)
	}
	return ok, nil
}

func (l *Ledger) RaiseLongestIfGreater(ctx context.Context, userID int64, habitID string, candidate int) (bool, error) {
	ok, err := l.store.RaiseLongestStreak(ctx, userID, habitID, candidate)
	if err != nil {
		return false, fmt.Errorf("failed to raise longest streak: %w", err)
	}
	return ok, nil
}

func (l *Ledger) ListForUser(ctx context.Context, userID int64) ([]models.Streak, error) {
	streaks, err := l.store.GetStreaksForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list streaks for user %d: %w", userID, err)
	}
	return streaks, nil
}

func (l *Ledger) Delete(ctx context.Context, userID int64, habitID string) (bool, error) {
	ok, err := l.store.DeleteStreak(ctx, userID, habitID)
	if err != nil {
		return false, fmt.Errorf("failed to delete streak: %w", err)
	}
	return ok, nil
}

// ResetIfMissed zeroes the current streak when the last approval is older
// than yesterday. It reports whether a reset was applied.
func (l *Ledger) ResetIfMissed(ctx context.Context, userID int64, habitID string) (bool, error) {
	streak, err := l.Get(ctx, userID, habitID)
	if err != nil || streak == nil {
		return false, err
	}
	if !IsMissed(streak.LastApprovedDate, l.clock.Today()) {
		return false, nil
	}

	reset, err := l.Reset(ctx, userID, habitID)
	if err != nil {
		return false, err
	}
	if reset {
		logger.Info("Streak reset after missed day", "user", userID, "habit", habitID, "last_approved", *streak.LastApprovedDate)
	}
	return reset, nil
}

// OnApproval applies the missed-day reset and then counts today's approval.
// The reset must run first so an approval after a gap restarts at 1.
func (l *Ledger) OnApproval(ctx context.Context, userID int64, habitID string) (models.Streak, error) {
	if _, err := l.ResetIfMissed(ctx, userID, habitID); err != nil {
		return models.Streak{}, err
	}
	if _, err := l.GetOrCreate(ctx, userID, habitID); err != nil {
		return models.Streak{}, err
	}
	if _, err := l.Increment(ctx, userID, habitID, l.clock.TodayString()); err != nil {
		return models.Streak{}, err
	}
	return l.GetOrCreate(ctx, userID, habitID)
}

// Progress pairs a habit with its streak. Streak is zeroed when the habit was
// never approved.
type Progress struct {
	Habit  models.Habit  `json:"habit"`
	Streak models.Streak `json:"streak"`
}

// Progress reads the streak of every habit without creating missing ones.
func (l *Ledger) Progress(ctx context.Context, habits []models.Habit) ([]Progress, error) {
	out := make([]Progress, 0, len(habits))
	for _, h := range habits {
		streak, err := l.Get(ctx, h.UserID, h.ID)
		if err != nil {
			return nil, err
		}
		p := Progress{Habit: h, Streak: models.NewStreak(h.UserID, h.ID)}
		if streak != nil {
			p.Streak = *streak
		}
		out = append(out, p)
	}
	return out, nil
}
