package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"go.etcd.io/bbolt"

	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/storage"
)

type submissionRecord struct {
	models.Submission
	Seq uint64 `json:"seq"`
}

// dayKey indexes the submission holding a (user, habit, day) slot.
func dayKey(userID int64, habitID, day string) []byte {
	return fmt.Appendf(nil, "%d/%s/%s", userID, habitID, day)
}

func (s *Store) collectSubmissions(ctx context.Context, keep func(models.Submission) bool) ([]models.Submission, error) {
	var records []submissionRecord
	err := s.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, submissionBucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			var r submissionRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("unmarshal submission %s: %w", k, err)
			}
			if keep(r.Submission) {
				records = append(records, r)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(records, func(a, b submissionRecord) int {
		if c := a.SubmittedAt.Compare(b.SubmittedAt); c != 0 {
			return c
		}
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	subs := make([]models.Submission, 0, len(records))
	for _, r := range records {
		subs = append(subs, r.Submission)
	}
	return subs, nil
}

func (s *Store) AddSubmission(ctx context.Context, sub models.Submission) error {
	return s.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, submissionBucket)
		if err != nil {
			return err
		}
		idx, err := bucket(tx, dayIndexBucket)
		if err != nil {
			return err
		}

		key := dayKey(sub.UserID, sub.HabitID, sub.Day)
		if sub.Status.OccupiesDay() {
			if idx.Get(key) != nil {
				return storage.ErrDuplicateDay
			}
			if err := idx.Put(key, []byte(sub.ID)); err != nil {
				return err
			}
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		sub.SubmittedAt = sub.SubmittedAt.UTC()
		return putJSON(b, []byte(sub.ID), submissionRecord{Submission: sub, Seq: seq})
	})
}

func (s *Store) GetSubmission(ctx context.Context, id string) (models.Submission, error) {
	var r submissionRecord
	err := s.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, submissionBucket)
		if err != nil {
			return err
		}
		found, err := getJSON(b, []byte(id), &r)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return models.Submission{}, err
	}
	return r.Submission, nil
}

func (s *Store) GetPendingSubmissions(ctx context.Context) ([]models.Submission, error) {
	return s.collectSubmissions(ctx, func(sub models.Submission) bool {
		return sub.Status == models.StatusPending
	})
}

func (s *Store) GetSubmissionsForUser(ctx context.Context, userID int64, filter models.SubmissionFilter) ([]models.Submission, error) {
	return s.collectSubmissions(ctx, func(sub models.Submission) bool {
		return sub.UserID == userID && filter.Matches(sub)
	})
}

func (s *Store) HasActiveSubmission(ctx context.Context, userID int64, habitID, day string) (bool, error) {
	held := false
	err := s.view(ctx, func(tx *bbolt.Tx) error {
		idx, err := bucket(tx, dayIndexBucket)
		if err != nil {
			return err
		}
		held = idx.Get(dayKey(userID, habitID, day)) != nil
		return nil
	})
	return held, err
}

func (s *Store) ReviewSubmission(ctx context.Context, id string, review models.Review) (bool, error) {
	applied := false
	err := s.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, submissionBucket)
		if err != nil {
			return err
		}
		var r submissionRecord
		found, err := getJSON(b, []byte(id), &r)
		if err != nil || !found {
			return err
		}
		if !r.Status.CanTransition(review.Status) {
			return nil
		}

		reviewer := review.ReviewerID
		reviewedAt := review.ReviewedAt.UTC()
		r.Status = review.Status
		r.ReviewedBy = &reviewer
		r.ReviewedAt = &reviewedAt
		r.RejectionReason = review.Reason

		if !r.Status.OccupiesDay() {
			idx, err := bucket(tx, dayIndexBucket)
			if err != nil {
				return err
			}
			if err := idx.Delete(dayKey(r.UserID, r.HabitID, r.Day)); err != nil {
				return err
			}
		}
		applied = true
		return putJSON(b, []byte(id), r)
	})
	return applied, err
}
