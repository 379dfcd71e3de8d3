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

const submissionColumns = "id, habit_id, user_id, proof_token, day, submitted_at, status, reviewed_by, reviewed_at, rejection_reason"

func scanSubmission(row scanner) (models.Submission, error) {
	var sub models.Submission
	var submittedAt, status string
	var reviewedBy sql.NullInt64
	var reviewedAt, reason sql.NullString

	err := row.Scan(&sub.ID, &sub.HabitID, &sub.UserID, &sub.ProofToken, &sub.Day,
		&submittedAt, &status, &reviewedBy, &reviewedAt, &reason)
	if err != nil {
		return models.Submission{}, err
	}

	sub.Status = models.SubmissionStatus(status)
	sub.SubmittedAt, err = time.Parse(time.RFC3339, submittedAt)
	if err != nil {
		return models.Submission{}, fmt.Errorf("failed to parse submitted_at for submission %s: %w", sub.ID, err)
	}
	if reviewedBy.Valid {
		v := reviewedBy.Int64
		sub.ReviewedBy = &v
	}
	if reviewedAt.Valid {
		t, err := time.Parse(time.RFC3339, reviewedAt.String)
		if err != nil {
			return models.Submission{}, fmt.Errorf("failed to parse reviewed_at for submission %s: %w", sub.ID, err)
		}
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
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.HabitID, sub.UserID, sub.ProofToken, sub.Day,
		sub.SubmittedAt.UTC().Format(time.RFC3339), string(sub.Status))
	if err != nil && isUniqueViolation(err) {
		return storage.ErrDuplicateDay
	}
	return err
}

func (s *Store) GetSubmission(ctx context.Context, id string) (models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Submission{}, storage.ErrNotFound
	}
	return sub, err
}

func (s *Store) GetPendingSubmissions(ctx context.Context) ([]models.Submission, error) {
	return s.querySubmissions(ctx, `
		SELECT `+submissionColumns+` FROM submissions
		WHERE status = ? ORDER BY submitted_at, rowid`, string(models.StatusPending))
}

func (s *Store) GetSubmissionsForUser(ctx context.Context, userID int64, filter models.SubmissionFilter) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id = ?`
	args := []any{userID}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.HabitID != "" {
		query += " AND habit_id = ?"
		args = append(args, filter.HabitID)
	}
	query += " ORDER BY submitted_at, rowid"
	return s.querySubmissions(ctx, query, args...)
}

func (s *Store) HasActiveSubmission(ctx context.Context, userID int64, habitID, day string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM submissions
		WHERE user_id = ? AND habit_id = ? AND day = ? AND status IN (?, ?)`,
		userID, habitID, day, string(models.StatusPending), string(models.StatusApproved)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ReviewSubmission(ctx context.Context, id string, review models.Review) (bool, error) {
	var reason sql.NullString
	if review.Reason != nil {
		reason = sql.NullString{String: *review.Reason, Valid: true}
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE submissions
		SET status = ?, reviewed_by = ?, reviewed_at = ?, rejection_reason = ?
		WHERE id = ? AND status = ?`,
		string(review.Status), review.ReviewerID, review.ReviewedAt.UTC().Format(time.RFC3339), reason,
		id, string(models.StatusPending))
	if err != nil {
		return false, err
	}
	return affected(result)
}
