// Package submissions runs proof submission and admin review, and updates
// streaks when proof is approved.
package submissions

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/proofstreak/internal/constants"
	apperrors "github.com/julianstephens/proofstreak/internal/errors"
	"github.com/julianstephens/proofstreak/internal/habits"
	"github.com/julianstephens/proofstreak/internal/logger"
	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/notify"
	"github.com/julianstephens/proofstreak/internal/pending"
	"github.com/julianstephens/proofstreak/internal/storage"
	"github.com/julianstephens/proofstreak/internal/streaks"
	"github.com/julianstephens/proofstreak/internal/utils"
)

// ErrUnauthorized is returned when a non-admin tries to review a submission.
var ErrUnauthorized = errors.New("only admins can review submissions")

type Options struct {
	Store   storage.SubmissionStore
	Habits  *habits.Registry
	Ledger  *streaks.Ledger
	Channel notify.Channel
	Cache   pending.Cache
	Clock   utils.Clock

	// Admins receive every new submission and may approve or reject.
	// ForwardWorkers bounds concurrent sends when forwarding to them.
	Admins         []int64
	ForwardWorkers int
}

type Workflow struct {
	store          storage.SubmissionStore
	habits         *habits.Registry
	ledger         *streaks.Ledger
	channel        notify.Channel
	cache          pending.Cache
	clock          utils.Clock
	admins         []int64
	forwardWorkers int
}

func New(opts Options) *Workflow {
	w := &Workflow{
		store:          opts.Store,
		habits:         opts.Habits,
		ledger:         opts.Ledger,
		channel:        opts.Channel,
		cache:          opts.Cache,
		clock:          opts.Clock,
		admins:         slices.Clone(opts.Admins),
		forwardWorkers: opts.ForwardWorkers,
	}
	if w.channel == nil {
		w.channel = notify.Log{}
	}
	if w.cache == nil {
		w.cache = pending.NewMemory(constants.DefaultProofTTL)
	}
	if w.forwardWorkers <= 0 {
		w.forwardWorkers = constants.DefaultSweepWorkers
	}
	return w
}

func (w *Workflow) IsAdmin(userID int64) bool {
	return slices.Contains(w.admins, userID)
}

// Submit records pending proof for habitID on today's date. It fails with a
// validation error when the proof is missing, the habit does not exist, or a
// pending or approved submission already holds today. Rejected submissions
// do not block a resubmission.
func (w *Workflow) Submit(ctx context.Context, userID int64, habitID, proofToken string) (string, error) {
	if strings.TrimSpace(proofToken) == "" {
		return "", apperrors.ErrPhotoRequired
	}

	habit, err := w.habits.Get(ctx, habitID)
	if err != nil {
		return "", err
	}
	if habit == nil {
		return "", apperrors.ErrHabitNotFound
	}

	now := w.clock.Current()
	day := w.clock.DayOf(now)

	held, err := w.store.HasActiveSubmission(ctx, userID, habitID, day)
	if err != nil {
		return "", fmt.Errorf("failed to check today's submissions: %w", err)
	}
	if held {
		return "", apperrors.ErrAlreadySubmitted
	}

	sub := models.Submission{
		ID:          uuid.New().String(),
		HabitID:     habitID,
		UserID:      userID,
		ProofToken:  proofToken,
		Day:         day,
		SubmittedAt: now.UTC(),
		Status:      models.StatusPending,
	}
	// The check above is advisory; the store's one-per-day constraint decides
	// races between concurrent submits.
	if err := w.store.AddSubmission(ctx, sub); err != nil {
		if errors.Is(err, storage.ErrDuplicateDay) {
			return "", apperrors.ErrAlreadySubmitted
		}
		return "", fmt.Errorf("failed to add submission: %w", err)
	}

	logger.Info("Submission received", "submission", sub.ID, "user", userID, "habit", habitID, "day", day)
	return sub.ID, nil
}

// Approve moves a pending submission to approved, counts the approval on the
// streak and notifies the user. It reports false if the submission does not
// exist or was already reviewed. If the streak update fails after the
// transition, Approve reports true together with the error.
func (w *Workflow) Approve(ctx context.Context, submissionID string, reviewerID int64) (bool, error) {
	sub, ok, err := w.review(ctx, submissionID, models.Review{
		Status:     models.StatusApproved,
		ReviewerID: reviewerID,
	})
	if err != nil || !ok {
		return false, err
	}

	streak, err := w.ledger.OnApproval(ctx, sub.UserID, sub.HabitID)
	if err != nil {
		return true, fmt.Errorf("submission %s approved but streak update failed: %w", submissionID, err)
	}
	logger.Info("Submission approved", "submission", submissionID, "reviewer", reviewerID,
		"current_streak", streak.CurrentStreak, "longest_streak", streak.LongestStreak)

	w.notifyText(ctx, sub.UserID, approvalMessage(w.habitName(ctx, sub.HabitID, constants.GenericHabitName), streak))
	return true, nil
}

// Reject moves a pending submission to rejected and notifies the user with
// the reason, if any. Streaks are not touched.
func (w *Workflow) Reject(ctx context.Context, submissionID string, reviewerID int64, reason *string) (bool, error) {
	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if trimmed == "" {
			reason = nil
		} else {
			reason = &trimmed
		}
	}

	sub, ok, err := w.review(ctx, submissionID, models.Review{
		Status:     models.StatusRejected,
		ReviewerID: reviewerID,
		Reason:     reason,
	})
	if err != nil || !ok {
		return false, err
	}
	logger.Info("Submission rejected", "submission", submissionID, "reviewer", reviewerID)

	w.notifyText(ctx, sub.UserID, rejectionMessage(w.habitName(ctx, sub.HabitID, constants.GenericHabitName), reason))
	return true, nil
}

// review applies a conditional pending -> terminal transition. A missing or
// already reviewed submission is a no-op.
func (w *Workflow) review(ctx context.Context, submissionID string, review models.Review) (models.Submission, bool, error) {
	sub, err := w.store.GetSubmission(ctx, submissionID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Submission{}, false, nil
	}
	if err != nil {
		return models.Submission{}, false, fmt.Errorf("failed to get submission %s: %w", submissionID, err)
	}

	review.ReviewedAt = w.clock.Current().UTC()
	ok, err := w.store.ReviewSubmission(ctx, submissionID, review)
	if err != nil {
		return models.Submission{}, false, fmt.Errorf("failed to review submission %s: %w", submissionID, err)
	}
	if !ok {
		logger.Debug("Submission already reviewed", "submission", submissionID, "status", sub.Status)
		return models.Submission{}, false, nil
	}
	return sub, true, nil
}

func (w *Workflow) GetPending(ctx context.Context) ([]models.Submission, error) {
	subs, err := w.store.GetPendingSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}
	return subs, nil
}

// GetDetails returns the submission with its habit's name, or nil when the
// submission does not exist.
func (w *Workflow) GetDetails(ctx context.Context, submissionID string) (*models.SubmissionDetails, error) {
	sub, err := w.store.GetSubmission(ctx, submissionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission %s: %w", submissionID, err)
	}
	return &models.SubmissionDetails{
		Submission: sub,
		HabitName:  w.habitName(ctx, sub.HabitID, constants.UnknownHabitName),
	}, nil
}

func (w *Workflow) ListForUser(ctx context.Context, userID int64, filter models.SubmissionFilter) ([]models.Submission, error) {
	subs, err := w.store.GetSubmissionsForUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions for user %d: %w", userID, err)
	}
	return subs, nil
}

// HasSubmissionToday reports whether a pending or approved submission holds
// today's slot for the habit.
func (w *Workflow) HasSubmissionToday(ctx context.Context, userID int64, habitID string) (bool, error) {
	held, err := w.store.HasActiveSubmission(ctx, userID, habitID, w.clock.TodayString())
	if err != nil {
		return false, fmt.Errorf("failed to check today's submissions: %w", err)
	}
	return held, nil
}

// habitName resolves a display name, falling back when the habit was deleted
// or cannot be read.
func (w *Workflow) habitName(ctx context.Context, habitID, fallback string) string {
	habit, err := w.habits.Get(ctx, habitID)
	if err != nil {
		logger.Warn("Failed to look up habit name", "habit", habitID, "error", err)
		return fallback
	}
	if habit == nil {
		return fallback
	}
	return habit.Name
}

func (w *Workflow) notifyText(ctx context.Context, recipientID int64, text string) {
	if err := w.channel.SendText(ctx, recipientID, text); err != nil {
		logger.Warn("Failed to notify user", "recipient", recipientID, "error", err)
	}
}
