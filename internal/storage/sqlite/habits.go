package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/storage"
)

const habitColumns = "id, user_id, name, notification_time, timezone, is_active, created_at"

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var createdAt string
	if err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.NotificationTime, &h.Timezone, &h.Active, &createdAt); err != nil {
		return models.Habit{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.CreatedAt = t
	return h, nil
}

func (s *Store) queryHabits(ctx context.Context, query string, args ...any) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.UserID, habit.Name, habit.NotificationTime, habit.Timezone, habit.Active,
		habit.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	return h, err
}

func (s *Store) GetHabitsForUser(ctx context.Context, userID int64, includeInactive bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = ?`
	if !includeInactive {
		query += " AND is_active = 1"
	}
	query += " ORDER BY created_at, rowid"
	return s.queryHabits(ctx, query, userID)
}

func (s *Store) GetHabitsByNotificationTime(ctx context.Context, hhmm string) ([]models.Habit, error) {
	return s.queryHabits(ctx, `
		SELECT `+habitColumns+` FROM habits
		WHERE notification_time = ? AND is_active = 1
		ORDER BY created_at, rowid`, hhmm)
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE habits SET name = ?, notification_time = ?, timezone = ?, is_active = ?
		WHERE id = ?`,
		habit.Name, habit.NotificationTime, habit.Timezone, habit.Active, habit.ID)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func (s *Store) SetHabitActive(ctx context.Context, id string, active bool) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE habits SET is_active = ? WHERE id = ? AND is_active <> ?`,
		active, id, active)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func (s *Store) DeleteHabit(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return affected(result)
}
