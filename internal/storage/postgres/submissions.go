package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/storage"
)

const submissionColumns = "id, habit_id, user_id, proof_token, to_char(day, 'YYYY-MM-DD'), submitted_at, status, reviewed_by, reviewed_at, rejection_reason"

func scanSubmission(row scanner) (models.Submission, error) {
	var sub models.Submission
	var status string
	var reviewedBy sql.NullInt64
	var reviewedAt sql.NullTime
	var reason sql.NullString

	err := row.Scan(&sub.ID, &sub.HabitID, &sub.UserID, &sub.ProofToken, &sub.Day,
		&sub.SubmittedAt, &status, &reviewedBy, &reviewedAt, &reason)
	if err != nil {
		return models.Submission{}, err
	}

	sub.Status = models.SubmissionStatus(status)
	sub.SubmittedAt = sub.SubmittedAt.UTC()
	if reviewedBy.Valid {
		v := reviewedBy.Int64
		sub.ReviewedBy = &v
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time.UTC()
		sub.ReviewedAt = &t
	}
	if reason.Valid {
		r := reason.String
		sub.RejectionReason = &r
	}
	return sub, nil
}

func (s *Store) querySubmissions(ctx context.Context, query string, args ...any) ([]models.Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *Store) AddSubmission(ctx context.Context, sub models.Submission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, habit_id, user_id, proof_token, day, submitted_at, status)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7)`,
		sub.ID, sub.HabitID, sub.UserID, sub.ProofToken, sub.Day, sub.SubmittedAt.UTC(), string(sub.Status))
	if err != nil && isUniqueViolation(err) {
		return storage.ErrDuplicateDay
	}
	return err
}

func (s *Store) GetSubmission(ctx context.Context, id string) (models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Submission{}, storage.ErrNotFound
	}
	return sub, err
}

func (s *Store) GetPendingSubmissions(ctx context.Context) ([]models.Submission, error) {
	return s.querySubmissions(ctx, `
		SELECT `+submissionColumns+` FROM submissions
		WHERE status = $1 ORDER BY submitted_at, id`, string(models.StatusPending))
}

func (s *Store) GetSubmissionsForUser(ctx context.Context, userID int64, filter models.SubmissionFilter) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.HabitID != "" {
		args = append(args, filter.HabitID)
		query += fmt.Sprintf(" AND habit_id = $%d", len(args))
	}
	query += " ORDER BY submitted_at, id"
	return s.querySubmissions(ctx, query, args...)
}

func (s *Store) HasActiveSubmission(ctx context.Context, userID int64, habitID, day string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM submissions
			WHERE user_id = $1 AND habit_id = $2 AND day = $3::date AND status IN ('pending', 'approved')
		)`, userID, habitID, day).Scan(&exists)
	return exists, err
}

func (s *Store) ReviewSubmission(ctx context.Context, id string, review models.Review) (bool, error) {
	var reason sql.NullString
	if review.Reason != nil {
		reason = sql.NullString{String: *review.Reason, Valid: true}
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE submissions
		SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4
		WHERE id = $5 AND status = 'pending'`,
		string(review.Status), review.ReviewerID, review.ReviewedAt.UTC(), reason, id)
	if err != nil {
		return false, err
	}
	return affected(result)
}
