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

// habitRecord pins insertion order, since bbolt iterates keys bytewise.
type habitRecord struct {
	models.Habit
	Seq uint64 `json:"seq"`
}

func sortHabits(records []habitRecord) []models.Habit {
	slices.SortFunc(records, func(a, b habitRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
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
	habits := make([]models.Habit, 0, len(records))
	for _, r := range records {
		habits = append(habits, r.Habit)
	}
	return habits
}

func (s *Store) collectHabits(ctx context.Context, keep func(models.Habit) bool) ([]models.Habit, error) {
	var records []habitRecord
	err := s.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, habitBucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			var r habitRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("unmarshal habit %s: %w", k, err)
			}
			if keep(r.Habit) {
				records = append(records, r)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return sortHabits(records), nil
}

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) error {
	return s.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, habitBucket)
		if err != nil {
			return err
		}
		if b.Get([]byte(habit.ID)) != nil {
			return fmt.Errorf("habit %s already exists", habit.ID)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		habit.CreatedAt = habit.CreatedAt.UTC()
		return putJSON(b, []byte(habit.ID), habitRecord{Habit: habit, Seq: seq})
	})
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	var r habitRecord
	err := s.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, habitBucket)
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
		return models.Habit{}, err
	}
	return r.Habit, nil
}

func (s *Store) GetHabitsForUser(ctx context.Context, userID int64, includeInactive bool) ([]models.Habit, error) {
	return s.collectHabits(ctx, func(h models.Habit) bool {
		return h.UserID == userID && (includeInactive || h.Active)
	})
}

func (s *Store) GetHabitsByNotificationTime(ctx context.Context, hhmm string) ([]models.Habit, error) {
	return s.collectHabits(ctx, func(h models.Habit) bool {
		return h.Active && h.NotificationTime == hhmm
	})
}

// modifyHabit loads the habit record under id, applies fn and writes it back
// if fn reports a change.
func (s *Store) modifyHabit(ctx context.Context, id string, fn func(*models.Habit) bool) (bool, error) {
	changed := false
	err := s.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, habitBucket)
		if err != nil {
			return err
		}
		var r habitRecord
		found, err := getJSON(b, []byte(id), &r)
		if err != nil || !found {
			return err
		}
		if !fn(&r.Habit) {
			return nil
		}
		changed = true
		return putJSON(b, []byte(id), r)
	})
	return changed, err
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) (bool, error) {
	return s.modifyHabit(ctx, habit.ID, func(h *models.Habit) bool {
		h.Name = habit.Name
		h.NotificationTime = habit.NotificationTime
		h.Timezone = habit.Timezone
		h.Active = habit.Active
		return true
	})
}

func (s *Store) SetHabitActive(ctx context.Context, id string, active bool) (bool, error) {
	return s.modifyHabit(ctx, id, func(h *models.Habit) bool {
		if h.Active == active {
			return false
		}
		h.Active = active
		return true
	})
}

func (s *Store) DeleteHabit(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, habitBucket)
		if err != nil {
			return err
		}
		if b.Get([]byte(id)) == nil {
			return nil
		}
		deleted = true
		return b.Delete([]byte(id))
	})
	return deleted, err
}
