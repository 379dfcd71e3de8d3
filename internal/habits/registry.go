// Package habits owns habit definitions per user.
package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/proofstreak/internal/constants"
	apperrors "github.com/julianstephens/proofstreak/internal/errors"
	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/storage"
	"github.com/julianstephens/proofstreak/internal/utils"
)

type Registry struct {
	store storage.HabitStore
	clock utils.Clock
}

func NewRegistry(store storage.HabitStore, clock utils.Clock) *Registry {
	return &Registry{store: store, clock: clock}
}

func validate(name, notificationTime, timezone string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.Invalid("habit name cannot be empty")
	}
	if !utils.ValidateTimeFormat(notificationTime) {
		return apperrors.Invalid("invalid notification time %q (expected HH:MM)", notificationTime)
	}
	if !utils.ValidateTimezone(timezone) {
		return apperrors.Invalid("unknown timezone %q", timezone)
	}
	return nil
}

// Create registers a new active habit and returns its id. Duplicate names are
// allowed. An empty timezone is stored as UTC.
func (r *Registry) Create(ctx context.Context, userID int64, name, notificationTime, timezone string) (string, error) {
	name = strings.TrimSpace(name)
	if timezone == "" {
		timezone = constants.DefaultTimezone
	}
	if err := validate(name, notificationTime, timezone); err != nil {
		return "", err
	}

	habit := models.Habit{
		ID:               uuid.New().String(),
		UserID:           userID,
		Name:             name,
		NotificationTime: notificationTime,
		Timezone:         timezone,
		Active:           true,
		CreatedAt:        r.clock.Current().UTC(),
	}
	if err := r.store.AddHabit(ctx, habit); err != nil {
		return "", fmt.Errorf("failed to add habit: %w", err)
	}
	return habit.ID, nil
}

// Get returns nil when no habit has the given id.
func (r *Registry) Get(ctx context.Context, id string) (*models.Habit, error) {
	habit, err := r.store.GetHabit(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit %s: %w", id, err)
	}
	return &habit, nil
}

func (r *Registry) ListForUser(ctx context.Context, userID int64, includeInactive bool) ([]models.Habit, error) {
	habits, err := r.store.GetHabitsForUser(ctx, userID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits for user %d: %w", userID, err)
	}
	return habits, nil
}

// Update overwrites only the fields present in patch. It reports true iff the
// stored habit actually changed.
func (r *Registry) Update(ctx context.Context, id string, patch models.HabitPatch) (bool, error) {
	if patch.Empty() {
		return false, nil
	}

	current, err := r.Get(ctx, id)
	if err != nil || current == nil {
		return false, err
	}

	updated, changed := patch.Apply(*current)
	if !changed {
		return false, nil
	}
	updated.Name = strings.TrimSpace(updated.Name)
	if err := validate(updated.Name, updated.NotificationTime, updated.Timezone); err != nil {
		return false, err
	}

	ok, err := r.store.UpdateHabit(ctx, updated)
	if err != nil {
		return false, fmt.Errorf("failed to update habit %s: %w", id, err)
	}
	return ok, nil
}

// Deactivate soft-deletes a habit. A second call reports false.
func (r *Registry) Deactivate(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.SetHabitActive(ctx, id, false)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate habit %s: %w", id, err)
	}
	return ok, nil
}

func (r *Registry) Reactivate(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.SetHabitActive(ctx, id, true)
	if err != nil {
		return false, fmt.Errorf("failed to reactivate habit %s: %w", id, err)
	}
	return ok, nil
}

// Delete permanently removes the habit. Streaks and submissions that
// reference it are left in place.
func (r *Registry) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.DeleteHabit(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete habit %s: %w", id, err)
	}
	return ok, nil
}

// ListDueAt returns every active habit, across all users, whose reminder is
// set for hhmm.
func (r *Registry) ListDueAt(ctx context.Context, hhmm string) ([]models.Habit, error) {
	habits, err := r.store.GetHabitsByNotificationTime(ctx, hhmm)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits due at %s: %w", hhmm, err)
	}
	return habits, nil
}
