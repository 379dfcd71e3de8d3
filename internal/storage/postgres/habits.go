package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/storage"
)

const habitColumns = "id, user_id, name, notification_time, timezone, is_active, created_at"

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	if err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.NotificationTime, &h.Timezone, &h.Active, &h.CreatedAt); err != nil {
		return models.Habit{}, err
	}
	h.CreatedAt = h.CreatedAt.UTC()
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
		INSERT INTO habits (id, user_id, name, notification_time, timezone, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		habit.ID, habit.UserID, habit.Name, habit.NotificationTime, habit.Timezone, habit.Active, habit.CreatedAt.UTC())
	return err
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	return h, err
}

func (s *Store) GetHabitsForUser(ctx context.Context, userID int64, includeInactive bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1`
	if !includeInactive {
		query += " AND is_active"
	}
	query += " ORDER BY created_at, seq"
	return s.queryHabits(ctx, query, userID)
}

func (s *Store) GetHabitsByNotificationTime(ctx context.Context, hhmm string) ([]models.Habit, error) {
	return s.queryHabits(ctx, `
		SELECT `+habitColumns+` FROM habits
		WHERE notification_time = $1 AND is_active
		ORDER BY created_at, seq`, hhmm)
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE habits SET name = $1, notification_time = $2, timezone = $3, is_active = $4
		WHERE id = $5`,
		habit.Name, habit.NotificationTime, habit.Timezone, habit.Active, habit.ID)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func (s *Store) SetHabitActive(ctx context.Context, id string, active bool) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE habits SET is_active = $1 WHERE id = $2 AND is_active <> $1`, active, id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func (s *Store) DeleteHabit(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return affected(result)
}
