package streaks

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/storage/sqlite"
	"github.com/julianstephens/proofstreak/internal/utils"
)

func strPtr(s string) *string { return &s }

// setupLedger returns a ledger whose clock can be moved with the returned setter.
func setupLedger(t *testing.T, start time.Time) (*Ledger, func(time.Time)) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	now := start
	clock := utils.Clock{Now: func() time.Time { return now }, Location: time.UTC}
	return NewLedger(store, clock), func(t time.Time) { now = t }
}

func TestIsMissed(t *testing.T) {
	today := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	firstOfMonth := time.Date(2026, 3, 1, 0, 5, 0, 0, time.UTC)

	tests := []struct {
		name  string
		last  *string
		today time.Time
		want  bool
	}{
		{"never approved", nil, today, false},
		{"approved today", strPtr("2026-03-10"), today, false},
		{"approved yesterday", strPtr("2026-03-09"), today, false},
		{"one missed day", strPtr("2026-03-08"), today, true},
		{"long gap", strPtr("2025-12-31"), today, true},
		{"yesterday across month boundary", strPtr("2026-02-28"), firstOfMonth, false},
		{"missed across month boundary", strPtr("2026-02-27"), firstOfMonth, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMissed(tt.last, tt.today); got != tt.want {
				t.Errorf("IsMissed(%v) = %v, want %v", tt.last, got, tt.want)
			}
		})
	}
}

func TestAtRisk(t *testing.T) {
	today := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		streak models.Streak
		want   bool
	}{
		{"no approvals", models.Streak{}, false},
		{"approved yesterday", models.Streak{CurrentStreak: 3, LastApprovedDate: strPtr("2026-03-09")}, true},
		{"approved today", models.Streak{CurrentStreak: 3, LastApprovedDate: strPtr("2026-03-10")}, false},
		{"already broken", models.Streak{CurrentStreak: 3, LastApprovedDate: strPtr("2026-03-07")}, false},
		{"reset to zero", models.Streak{CurrentStreak: 0, LastApprovedDate: strPtr("2026-03-09")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AtRisk(tt.streak, today); got != tt.want {
				t.Errorf("AtRisk() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDoesNotCreate(t *testing.T) {
	l, _ := setupLedger(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	s, err := l.Get(ctx, 1, "h1")
	if err != nil || s != nil {
		t.Fatalf("expected nil streak, got %v, %v", s, err)
	}
	list, _ := l.ListForUser(ctx, 1)
	if len(list) != 0 {
		t.Error("Get must not create a streak")
	}
}

func TestIncrementRequiresRecord(t *testing.T) {
	l, _ := setupLedger(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ok, err := l.Increment(context.Background(), 1, "h1", "2026-03-01")
	if err != nil || ok {
		t.Errorf("increment without record: %v, %v", ok, err)
	}
}

func TestConsecutiveApprovals(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l, setNow := setupLedger(t, day1)
	ctx := context.Background()

	for k := 1; k <= 5; k++ {
		setNow(day1.AddDate(0, 0, k-1))
		s, err := l.OnApproval(ctx, 1, "h1")
		if err != nil {
			t.Fatalf("approval %d: %v", k, err)
		}
		if s.CurrentStreak != k || s.LongestStreak != k || s.TotalApproved != k {
			t.Fatalf("after %d approvals: %+v", k, s)
		}
		if s.LongestStreak < s.CurrentStreak {
			t.Fatalf("longest below current: %+v", s)
		}
	}
}

func TestMissedDayScenario(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l, setNow := setupLedger(t, day1)
	ctx := context.Background()

	s, _ := l.OnApproval(ctx, 1, "h1")
	if s.CurrentStreak != 1 || s.LongestStreak != 1 || s.TotalApproved != 1 {
		t.Fatalf("day 1: %+v", s)
	}

	setNow(day1.AddDate(0, 0, 1))
	s, _ = l.OnApproval(ctx, 1, "h1")
	if s.CurrentStreak != 2 || s.LongestStreak != 2 {
		t.Fatalf("day 2: %+v", s)
	}

	// Day 3 skipped.
	setNow(day1.AddDate(0, 0, 3))
	reset, err := l.ResetIfMissed(ctx, 1, "h1")
	if err != nil || !reset {
		t.Fatalf("day 4 reset: %v, %v", reset, err)
	}
	got, _ := l.Get(ctx, 1, "h1")
	if got.CurrentStreak != 0 || got.LongestStreak != 2 || got.TotalApproved != 2 {
		t.Fatalf("after reset: %+v", got)
	}

	s, _ = l.OnApproval(ctx, 1, "h1")
	if s.CurrentStreak != 1 || s.LongestStreak != 2 || s.TotalApproved != 3 {
		t.Fatalf("day 4 approval: %+v", s)
	}
	if *s.LastApprovedDate != "2026-03-04" {
		t.Errorf("last approved = %s", *s.LastApprovedDate)
	}
}

func TestApprovalAfterGapRestartsAtOne(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l, setNow := setupLedger(t, day1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		setNow(day1.AddDate(0, 0, i))
		_, _ = l.OnApproval(ctx, 1, "h1")
	}
	// No explicit reset: OnApproval must apply it before incrementing.
	setNow(day1.AddDate(0, 0, 10))
	s, err := l.OnApproval(ctx, 1, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if s.CurrentStreak != 1 || s.LongestStreak != 3 || s.TotalApproved != 4 {
		t.Errorf("after gap: %+v", s)
	}
}

func TestResetIfMissedNoGap(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	l, setNow := setupLedger(t, day1)
	ctx := context.Background()

	_, _ = l.OnApproval(ctx, 1, "h1")

	for _, now := range []time.Time{day1, day1.Add(2 * time.Minute), day1.AddDate(0, 0, 1)} {
		setNow(now)
		reset, err := l.ResetIfMissed(ctx, 1, "h1")
		if err != nil || reset {
			t.Errorf("at %v: reset=%v err=%v", now, reset, err)
		}
	}

	if reset, _ := l.ResetIfMissed(ctx, 2, "never"); reset {
		t.Error("a streak that does not exist cannot be reset")
	}
}

func TestResetKeepsLongestAndTotal(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l, setNow := setupLedger(t, day1)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		setNow(day1.AddDate(0, 0, i))
		_, _ = l.OnApproval(ctx, 1, "h1")
	}
	ok, err := l.Reset(ctx, 1, "h1")
	if err != nil || !ok {
		t.Fatalf("reset: %v, %v", ok, err)
	}
	if ok, _ := l.Reset(ctx, 1, "h1"); ok {
		t.Error("resetting a zero streak should report false")
	}
	s, _ := l.Get(ctx, 1, "h1")
	if s.CurrentStreak != 0 || s.LongestStreak != 4 || s.TotalApproved != 4 {
		t.Errorf("after reset: %+v", s)
	}
}

func TestRaiseLongestIfGreater(t *testing.T) {
	l, _ := setupLedger(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	_, _ = l.GetOrCreate(ctx, 1, "h1")

	tests := []struct {
		candidate int
		want      bool
		longest   int
	}{
		{3, true, 3},
		{2, false, 3},
		{3, false, 3},
		{7, true, 7},
	}
	for _, tt := range tests {
		ok, err := l.RaiseLongestIfGreater(ctx, 1, "h1", tt.candidate)
		if err != nil {
			t.Fatal(err)
		}
		if ok != tt.want {
			t.Errorf("raise(%d) = %v, want %v", tt.candidate, ok, tt.want)
		}
		s, _ := l.Get(ctx, 1, "h1")
		if s.LongestStreak != tt.longest {
			t.Errorf("after raise(%d): longest = %d, want %d", tt.candidate, s.LongestStreak, tt.longest)
		}
	}
}

func TestConcurrentGetOrCreate(t *testing.T) {
	l, _ := setupLedger(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.GetOrCreate(ctx, 1, "h1"); err != nil {
				t.Errorf("get or create: %v", err)
			}
		}()
	}
	wg.Wait()

	list, _ := l.ListForUser(ctx, 1)
	if len(list) != 1 {
		t.Errorf("expected exactly one streak, got %d", len(list))
	}
}

func TestDelete(t *testing.T) {
	l, _ := setupLedger(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	_, _ = l.GetOrCreate(ctx, 1, "h1")

	if ok, _ := l.Delete(ctx, 1, "h1"); !ok {
		t.Error("delete should report true")
	}
	if ok, _ := l.Delete(ctx, 1, "h1"); ok {
		t.Error("second delete should report false")
	}
}

func TestProgress(t *testing.T) {
	l, _ := setupLedger(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	habits := []models.Habit{
		{ID: "h1", UserID: 1, Name: "Exercise"},
		{ID: "h2", UserID: 1, Name: "Read"},
	}
	if _, err := l.OnApproval(ctx, 1, "h1"); err != nil {
		t.Fatal(err)
	}

	progress, err := l.Progress(ctx, habits)
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(progress))
	}
	if progress[0].Streak.CurrentStreak != 1 || progress[0].Habit.Name != "Exercise" {
		t.Errorf("h1 progress = %+v", progress[0])
	}
	if progress[1].Streak.CurrentStreak != 0 || progress[1].Streak.HabitID != "h2" {
		t.Errorf("h2 progress = %+v", progress[1])
	}

	if s, _ := l.Get(ctx, 1, "h2"); s != nil {
		t.Error("Progress must not create streaks")
	}
}
