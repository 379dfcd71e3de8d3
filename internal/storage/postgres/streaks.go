package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/storage"
)

const streakColumns = "user_id, habit_id, current_streak, longest_streak, total_approved, to_char(last_approved_date, 'YYYY-MM-DD')"

func scanStreak(row scanner) (models.Streak, error) {
	var st models.Streak
	var last sql.NullString
	if err := row.Scan(&st.UserID, &st.HabitID, &st.CurrentStreak, &st.LongestStreak, &st.TotalApproved, &last); err != nil {
		return models.Streak{}, err
	}
	if last.Valid {
		d := last.String
		st.LastApprovedDate = &d
	}
	return st, nil
}

func (s *Store) GetOrCreateStreak(ctx context.Context, userID int64, habitID string) (models.Streak, error) {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO streaks (user_id, habit_id) VALUES ($1, $2)
		ON CONFLICT (user_id, habit_id) DO NOTHING`, userID, habitID); err != nil {
		return models.Streak{}, err
	}
	return s.GetStreak(ctx, userID, habitID)
}

func (s *Store) GetStreak(ctx context.Context, userID int64, habitID string) (models.Streak, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+streakColumns+` FROM streaks WHERE user_id = $1 AND habit_id = $2`, userID, habitID)
	st, err := scanStreak(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Streak{}, storage.ErrNotFound
	}
	return st, err
}

func (s *Store) GetStreaksForUser(ctx context.Context, userID int64) ([]models.Streak, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+streakColumns+` FROM streaks WHERE user_id = $1 ORDER BY habit_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	streaks := []models.Streak{}
	for rows.Next() {
		st, err := scanStreak(rows)
		if err != nil {
			return nil, err
		}
		streaks = append(streaks, st)
	}
	return streaks, rows.Err()
}

func (s *Store) IncrementStreak(ctx context.Context, userID int64, habitID, day string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE streaks SET
			current_streak = current_streak + 1,
			total_approved = total_approved + 1,
			last_approved_date = $1::date,
			longest_streak = GREATEST(longest_streak, current_streak + 1)
		WHERE user_id = $2 AND habit_id = $3`, day, userID, habitID)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func (s *Store) ResetStreak(ctx context.Context, userID int64, habitID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE streaks SET current_streak = 0
		WHERE user_id = $1 AND habit_id = $2 AND current_streak <> 0`, userID, habitID)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func (s *Store) RaiseLongestStreak(ctx context.Context, userID int64, habitID string, candidate int) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE streaks SET longest_streak = $1
		WHERE user_id = $2 AND habit_id = $3 AND longest_streak < $1`, candidate, userID, habitID)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func (s *Store) DeleteStreak(ctx context.Context, userID int64, habitID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM streaks WHERE user_id = $1 AND habit_id = $2`, userID, habitID)
	if err != nil {
		return false, err
	}
	return affected(result)
}

var (
	_ storage.Provider = (*Store)(nil)
	_ storage.Migrator = (*Store)(nil)
)
