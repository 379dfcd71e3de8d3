package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"

	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/storage"
)

func streakKey(userID int64, habitID string) []byte {
	return fmt.Appendf(nil, "%d/%s", userID, habitID)
}

func (s *Store) GetOrCreateStreak(ctx context.Context, userID int64, habitID string) (models.Streak, error) {
	var st models.Streak
	err := s.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, streakBucket)
		if err != nil {
			return err
		}
		key := streakKey(userID, habitID)
		found, err := getJSON(b, key, &st)
		if err != nil || found {
			return err
		}
		st = models.NewStreak(userID, habitID)
		return putJSON(b, key, st)
	})
	if err != nil {
		return models.Streak{}, err
	}
	return st, nil
}

func (s *Store) GetStreak(ctx context.Context, userID int64, habitID string) (models.Streak, error) {
	var st models.Streak
	err := s.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, streakBucket)
		if err != nil {
			return err
		}
		found, err := getJSON(b, streakKey(userID, habitID), &st)
		if err != nil {
			return err
		}
		if !found {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return models.Streak{}, err
	}
	return st, nil
}

func (s *Store) GetStreaksForUser(ctx context.Context, userID int64) ([]models.Streak, error) {
	streaks := []models.Streak{}
	prefix := []byte(strconv.FormatInt(userID, 10) + "/")
	err := s.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, streakBucket)
		if err != nil {
			return err
		}
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var st models.Streak
			if err := json.Unmarshal(v, &st); err != nil {
				return fmt.Errorf("unmarshal streak %s: %w", k, err)
			}
			streaks = append(streaks, st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return streaks, nil
}

// modifyStreak runs fn against the stored streak inside one write
// transaction and persists it if fn reports a change.
func (s *Store) modifyStreak(ctx context.Context, userID int64, habitID string, fn func(*models.Streak) bool) (bool, error) {
	changed := false
	err := s.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, streakBucket)
		if err != nil {
			return err
		}
		key := streakKey(userID, habitID)
		var st models.Streak
		found, err := getJSON(b, key, &st)
		if err != nil || !found {
			return err
		}
		if !fn(&st) {
			return nil
		}
		changed = true
		return putJSON(b, key, st)
	})
	return changed, err
}

func (s *Store) IncrementStreak(ctx context.Context, userID int64, habitID, day string) (bool, error) {
	return s.modifyStreak(ctx, userID, habitID, func(st *models.Streak) bool {
		*st = st.Incremented(day)
		return true
	})
}

func (s *Store) ResetStreak(ctx context.Context, userID int64, habitID string) (bool, error) {
	return s.modifyStreak(ctx, userID, habitID, func(st *models.Streak) bool {
		if st.CurrentStreak == 0 {
			return false
		}
		st.CurrentStreak = 0
		return true
	})
}

func (s *Store) RaiseLongestStreak(ctx context.Context, userID int64, habitID string, candidate int) (bool, error) {
	return s.modifyStreak(ctx, userID, habitID, func(st *models.Streak) bool {
		if st.LongestStreak >= candidate {
			return false
		}
		st.LongestStreak = candidate
		return true
	})
}

func (s *Store) DeleteStreak(ctx context.Context, userID int64, habitID string) (bool, error) {
	deleted := false
	err := s.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, streakBucket)
		if err != nil {
			return err
		}
		key := streakKey(userID, habitID)
		if b.Get(key) == nil {
			return nil
		}
		deleted = true
		return b.Delete(key)
	})
	return deleted, err
}

var _ storage.Provider = (*Store)(nil)
