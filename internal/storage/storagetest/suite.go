// Package storagetest holds the behavioural checks every storage.Provider
// backend must pass.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/storage"
)

// Factory returns a freshly initialized, empty store. The suite closes it.
type Factory func(t *testing.T) storage.Provider

var base = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func Run(t *testing.T, newStore Factory) {
	t.Run("Habits", func(t *testing.T) { testHabits(t, newStore(t)) })
	t.Run("HabitActivation", func(t *testing.T) { testHabitActivation(t, newStore(t)) })
	t.Run("Submissions", func(t *testing.T) { testSubmissions(t, newStore(t)) })
	t.Run("SubmissionReview", func(t *testing.T) { testSubmissionReview(t, newStore(t)) })
	t.Run("Streaks", func(t *testing.T) { testStreaks(t, newStore(t)) })
	t.Run("ConcurrentStreakIncrement", func(t *testing.T) { testConcurrentIncrement(t, newStore(t)) })
	t.Run("ConcurrentSameDaySubmit", func(t *testing.T) { testConcurrentSubmit(t, newStore(t)) })
}

func habit(id string, userID int64, hhmm string, offset time.Duration) models.Habit {
	return models.Habit{
		ID:               id,
		UserID:           userID,
		Name:             "Habit " + id,
		NotificationTime: hhmm,
		Timezone:         "UTC",
		Active:           true,
		CreatedAt:        base.Add(offset),
	}
}

func submission(id, habitID string, userID int64, day string) models.Submission {
	return models.Submission{
		ID:          id,
		HabitID:     habitID,
		UserID:      userID,
		ProofToken:  "photo-" + id,
		Day:         day,
		SubmittedAt: base,
		Status:      models.StatusPending,
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func habitID(h models.Habit) string           { return h.ID }
func submissionID(s models.Submission) string { return s.ID }

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testHabits(t *testing.T, store storage.Provider) {
	defer store.Close()
	ctx := context.Background()

	// Same created_at for h1 and h2: insertion order breaks the tie.
	for _, h := range []models.Habit{
		habit("h1", 1, "09:00", 0),
		habit("h2", 1, "20:00", 0),
		habit("h3", 2, "09:00", time.Minute),
		habit("h0", 1, "09:00", -time.Minute),
	} {
		if err := store.AddHabit(ctx, h); err != nil {
			t.Fatalf("add habit %s: %v", h.ID, err)
		}
	}

	got, err := store.GetHabit(ctx, "h1")
	if err != nil {
		t.Fatalf("get habit: %v", err)
	}
	if got.Name != "Habit h1" || got.UserID != 1 || !got.Active || got.NotificationTime != "09:00" {
		t.Errorf("unexpected habit %+v", got)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, base)
	}

	if _, err := store.GetHabit(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	list, err := store.GetHabitsForUser(ctx, 1, false)
	if err != nil {
		t.Fatalf("list habits: %v", err)
	}
	if want := []string{"h0", "h1", "h2"}; !equal(ids(list, habitID), want) {
		t.Errorf("user habits = %v, want %v", ids(list, habitID), want)
	}

	due, err := store.GetHabitsByNotificationTime(ctx, "09:00")
	if err != nil {
		t.Fatalf("due habits: %v", err)
	}
	if want := []string{"h0", "h1", "h3"}; !equal(ids(due, habitID), want) {
		t.Errorf("due habits = %v, want %v", ids(due, habitID), want)
	}

	got.Name = "Morning run"
	got.NotificationTime = "07:30"
	ok, err := store.UpdateHabit(ctx, got)
	if err != nil || !ok {
		t.Fatalf("update habit: ok=%v err=%v", ok, err)
	}
	got, _ = store.GetHabit(ctx, "h1")
	if got.Name != "Morning run" || got.NotificationTime != "07:30" {
		t.Errorf("update not persisted: %+v", got)
	}
	if ok, _ := store.UpdateHabit(ctx, habit("missing", 1, "09:00", 0)); ok {
		t.Error("update of missing habit should report false")
	}

	ok, err = store.DeleteHabit(ctx, "h2")
	if err != nil || !ok {
		t.Fatalf("delete habit: ok=%v err=%v", ok, err)
	}
	if ok, _ := store.DeleteHabit(ctx, "h2"); ok {
		t.Error("second delete should report false")
	}
	if _, err := store.GetHabit(ctx, "h2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted habit still readable: %v", err)
	}
}

func testHabitActivation(t *testing.T, store storage.Provider) {
	defer store.Close()
	ctx := context.Background()

	if err := store.AddHabit(ctx, habit("h1", 1, "09:00", 0)); err != nil {
		t.Fatalf("add habit: %v", err)
	}

	tests := []struct {
		name   string
		active bool
		want   bool
	}{
		{"deactivate", false, true},
		{"deactivate again", false, false},
		{"reactivate", true, true},
		{"reactivate again", true, false},
		{"deactivate once more", false, true},
	}
	for _, tt := range tests {
		ok, err := store.SetHabitActive(ctx, "h1", tt.active)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if ok != tt.want {
			t.Errorf("%s: modified = %v, want %v", tt.name, ok, tt.want)
		}
	}

	if ok, _ := store.SetHabitActive(ctx, "missing", false); ok {
		t.Error("missing habit should not be modified")
	}

	active, _ := store.GetHabitsForUser(ctx, 1, false)
	if len(active) != 0 {
		t.Errorf("inactive habit listed as active: %v", ids(active, habitID))
	}
	all, _ := store.GetHabitsForUser(ctx, 1, true)
	if len(all) != 1 || all[0].Active {
		t.Errorf("expected one inactive habit, got %+v", all)
	}
	due, _ := store.GetHabitsByNotificationTime(ctx, "09:00")
	if len(due) != 0 {
		t.Error("inactive habits must not be due")
	}
}

func testSubmissions(t *testing.T, store storage.Provider) {
	defer store.Close()
	ctx := context.Background()

	first := submission("s1", "h1", 1, "2026-03-01")
	if err := store.AddSubmission(ctx, first); err != nil {
		t.Fatalf("add submission: %v", err)
	}

	dup := submission("s2", "h1", 1, "2026-03-01")
	if err := store.AddSubmission(ctx, dup); !errors.Is(err, storage.ErrDuplicateDay) {
		t.Fatalf("expected ErrDuplicateDay, got %v", err)
	}

	held, err := store.HasActiveSubmission(ctx, 1, "h1", "2026-03-01")
	if err != nil || !held {
		t.Fatalf("day should be held: held=%v err=%v", held, err)
	}
	if held, _ := store.HasActiveSubmission(ctx, 1, "h1", "2026-03-02"); held {
		t.Error("next day should be free")
	}

	// Other habit and other user are independent slots.
	other := submission("s3", "h2", 1, "2026-03-01")
	other.SubmittedAt = base.Add(time.Minute)
	if err := store.AddSubmission(ctx, other); err != nil {
		t.Fatalf("add other habit: %v", err)
	}
	otherUser := submission("s4", "h1", 2, "2026-03-01")
	otherUser.SubmittedAt = base.Add(-time.Minute)
	if err := store.AddSubmission(ctx, otherUser); err != nil {
		t.Fatalf("add other user: %v", err)
	}

	got, err := store.GetSubmission(ctx, "s1")
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if got.Status != models.StatusPending || got.ProofToken != "photo-s1" || got.Day != "2026-03-01" {
		t.Errorf("unexpected submission %+v", got)
	}
	if got.ReviewedBy != nil || got.ReviewedAt != nil || got.RejectionReason != nil {
		t.Errorf("pending submission carries review fields: %+v", got)
	}
	if _, err := store.GetSubmission(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	pending, err := store.GetPendingSubmissions(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if want := []string{"s4", "s1", "s3"}; !equal(ids(pending, submissionID), want) {
		t.Errorf("pending = %v, want %v", ids(pending, submissionID), want)
	}

	mine, err := store.GetSubmissionsForUser(ctx, 1, models.SubmissionFilter{})
	if err != nil {
		t.Fatalf("user submissions: %v", err)
	}
	if want := []string{"s1", "s3"}; !equal(ids(mine, submissionID), want) {
		t.Errorf("user submissions = %v, want %v", ids(mine, submissionID), want)
	}
	onlyH2, _ := store.GetSubmissionsForUser(ctx, 1, models.SubmissionFilter{HabitID: "h2"})
	if want := []string{"s3"}; !equal(ids(onlyH2, submissionID), want) {
		t.Errorf("filtered by habit = %v, want %v", ids(onlyH2, submissionID), want)
	}
	approved := models.StatusApproved
	none, _ := store.GetSubmissionsForUser(ctx, 1, models.SubmissionFilter{Status: &approved})
	if len(none) != 0 {
		t.Errorf("no submissions should be approved yet, got %v", ids(none, submissionID))
	}
}

func testSubmissionReview(t *testing.T, store storage.Provider) {
	defer store.Close()
	ctx := context.Background()
	reviewedAt := base.Add(time.Hour)

	if err := store.AddSubmission(ctx, submission("s1", "h1", 1, "2026-03-01")); err != nil {
		t.Fatalf("add submission: %v", err)
	}

	reason := "blurry"
	ok, err := store.ReviewSubmission(ctx, "s1", models.Review{
		Status: models.StatusRejected, ReviewerID: 99, ReviewedAt: reviewedAt, Reason: &reason,
	})
	if err != nil || !ok {
		t.Fatalf("reject: ok=%v err=%v", ok, err)
	}

	got, _ := store.GetSubmission(ctx, "s1")
	if got.Status != models.StatusRejected {
		t.Errorf("status = %s, want rejected", got.Status)
	}
	if got.RejectionReason == nil || *got.RejectionReason != "blurry" {
		t.Errorf("rejection reason = %v", got.RejectionReason)
	}
	if got.ReviewedBy == nil || *got.ReviewedBy != 99 {
		t.Errorf("reviewed by = %v", got.ReviewedBy)
	}
	if got.ReviewedAt == nil || !got.ReviewedAt.Equal(reviewedAt) {
		t.Errorf("reviewed at = %v", got.ReviewedAt)
	}

	// A reviewed submission is terminal.
	ok, err = store.ReviewSubmission(ctx, "s1", models.Review{
		Status: models.StatusApproved, ReviewerID: 99, ReviewedAt: reviewedAt,
	})
	if err != nil || ok {
		t.Fatalf("second review: ok=%v err=%v", ok, err)
	}
	if ok, _ := store.ReviewSubmission(ctx, "missing", models.Review{Status: models.StatusApproved}); ok {
		t.Error("review of missing submission should report false")
	}

	// Rejection frees the day.
	if held, _ := store.HasActiveSubmission(ctx, 1, "h1", "2026-03-01"); held {
		t.Error("rejected submission still holds the day")
	}
	if err := store.AddSubmission(ctx, submission("s2", "h1", 1, "2026-03-01")); err != nil {
		t.Fatalf("resubmit after rejection: %v", err)
	}
	ok, err = store.ReviewSubmission(ctx, "s2", models.Review{
		Status: models.StatusApproved, ReviewerID: 99, ReviewedAt: reviewedAt,
	})
	if err != nil || !ok {
		t.Fatalf("approve: ok=%v err=%v", ok, err)
	}
	if err := store.AddSubmission(ctx, submission("s3", "h1", 1, "2026-03-01")); !errors.Is(err, storage.ErrDuplicateDay) {
		t.Errorf("approved submission must hold the day, got %v", err)
	}

	pending, _ := store.GetPendingSubmissions(ctx)
	if len(pending) != 0 {
		t.Errorf("no submissions should be pending, got %v", ids(pending, submissionID))
	}
}

func testStreaks(t *testing.T, store storage.Provider) {
	defer store.Close()
	ctx := context.Background()

	if _, err := store.GetStreak(ctx, 1, "h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	st, err := store.GetOrCreateStreak(ctx, 1, "h1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if st.CurrentStreak != 0 || st.LongestStreak != 0 || st.TotalApproved != 0 || st.LastApprovedDate != nil {
		t.Errorf("new streak not zeroed: %+v", st)
	}

	if ok, _ := store.ResetStreak(ctx, 1, "h1"); ok {
		t.Error("reset of zero streak should report false")
	}

	for _, day := range []string{"2026-03-01", "2026-03-02"} {
		ok, err := store.IncrementStreak(ctx, 1, "h1", day)
		if err != nil || !ok {
			t.Fatalf("increment %s: ok=%v err=%v", day, ok, err)
		}
	}
	st, _ = store.GetOrCreateStreak(ctx, 1, "h1")
	if st.CurrentStreak != 2 || st.LongestStreak != 2 || st.TotalApproved != 2 {
		t.Errorf("after two approvals: %+v", st)
	}
	if st.LastApprovedDate == nil || *st.LastApprovedDate != "2026-03-02" {
		t.Errorf("last approved date = %v", st.LastApprovedDate)
	}

	ok, err := store.ResetStreak(ctx, 1, "h1")
	if err != nil || !ok {
		t.Fatalf("reset: ok=%v err=%v", ok, err)
	}
	if _, err := store.IncrementStreak(ctx, 1, "h1", "2026-03-04"); err != nil {
		t.Fatalf("increment after reset: %v", err)
	}
	st, _ = store.GetStreak(ctx, 1, "h1")
	if st.CurrentStreak != 1 || st.LongestStreak != 2 || st.TotalApproved != 3 {
		t.Errorf("after reset and approval: %+v", st)
	}

	if ok, _ := store.RaiseLongestStreak(ctx, 1, "h1", 2); ok {
		t.Error("raise to equal value should report false")
	}
	if ok, _ := store.RaiseLongestStreak(ctx, 1, "h1", 5); !ok {
		t.Error("raise to greater value should report true")
	}
	st, _ = store.GetStreak(ctx, 1, "h1")
	if st.LongestStreak != 5 {
		t.Errorf("longest = %d, want 5", st.LongestStreak)
	}

	if ok, _ := store.IncrementStreak(ctx, 1, "missing", "2026-03-04"); ok {
		t.Error("increment of missing streak should report false")
	}

	if _, err := store.GetOrCreateStreak(ctx, 1, "h2"); err != nil {
		t.Fatalf("create second streak: %v", err)
	}
	if _, err := store.GetOrCreateStreak(ctx, 12, "h1"); err != nil {
		t.Fatalf("create other user streak: %v", err)
	}
	list, err := store.GetStreaksForUser(ctx, 1)
	if err != nil {
		t.Fatalf("list streaks: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("user 1 streaks = %d, want 2", len(list))
	}

	ok, err = store.DeleteStreak(ctx, 1, "h2")
	if err != nil || !ok {
		t.Fatalf("delete streak: ok=%v err=%v", ok, err)
	}
	if ok, _ := store.DeleteStreak(ctx, 1, "h2"); ok {
		t.Error("second delete should report false")
	}
}

func testConcurrentIncrement(t *testing.T, store storage.Provider) {
	defer store.Close()
	ctx := context.Background()
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers*2)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.GetOrCreateStreak(ctx, 1, "h1"); err != nil {
				errs <- err
				return
			}
			if _, err := store.IncrementStreak(ctx, 1, "h1", "2026-03-01"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent increment: %v", err)
	}

	st, err := store.GetStreak(ctx, 1, "h1")
	if err != nil {
		t.Fatalf("get streak: %v", err)
	}
	if st.CurrentStreak != workers || st.TotalApproved != workers || st.LongestStreak != workers {
		t.Errorf("lost updates: %+v", st)
	}
}

func testConcurrentSubmit(t *testing.T, store storage.Provider) {
	defer store.Close()
	ctx := context.Background()
	const workers = 8

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, duplicates := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.AddSubmission(ctx, submission(fmt.Sprintf("s%d", i), "h1", 1, "2026-03-01"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, storage.ErrDuplicateDay):
				duplicates++
			default:
				t.Errorf("submit %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if accepted != 1 || duplicates != workers-1 {
		t.Errorf("accepted=%d duplicates=%d, want 1 and %d", accepted, duplicates, workers-1)
	}
}
