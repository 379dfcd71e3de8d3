package validation

import (
	"strings"
	"testing"

	"github.com/julianstephens/proofstreak/internal/models"
)

func hasConflict(result ValidationResult, kind ConflictType) bool {
	return hasType(result.Conflicts, kind)
}

func hasNote(result ValidationResult, kind ConflictType) bool {
	return hasType(result.Notes, kind)
}

func hasType(list []Conflict, kind ConflictType) bool {
	for _, c := range list {
		if c.Type == kind {
			return true
		}
	}
	return false
}

func TestValidateHabits(t *testing.T) {
	tests := []struct {
		name   string
		habits []models.Habit
		want   ConflictType
	}{
		{
			name:   "invalid time",
			habits: []models.Habit{{ID: "1", Name: "Run", NotificationTime: "25:00", Timezone: "UTC", Active: true}},
			want:   ConflictInvalidNotificationTime,
		},
		{
			name:   "invalid timezone",
			habits: []models.Habit{{ID: "1", Name: "Run", NotificationTime: "07:00", Timezone: "Mars/Olympus", Active: true}},
			want:   ConflictInvalidTimezone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New().ValidateHabits(tt.habits)
			if !hasConflict(result, tt.want) {
				t.Errorf("expected %s, got %+v", tt.want, result.Conflicts)
			}
		})
	}
}

func TestValidateHabitsDuplicateNamesAllowed(t *testing.T) {
	result := New().ValidateHabits([]models.Habit{
		{ID: "1", Name: "Read", NotificationTime: "21:00", Timezone: "UTC", Active: true},
		{ID: "2", Name: "read", NotificationTime: "22:00", Timezone: "UTC", Active: true},
	})
	if result.HasConflicts() {
		t.Errorf("unexpected conflicts: %+v", result.Conflicts)
	}
	if !hasNote(result, ConflictDuplicateHabitName) {
		t.Errorf("expected duplicate name note, got %+v", result.Notes)
	}

	result = New().ValidateHabits([]models.Habit{
		{ID: "1", Name: "Read", NotificationTime: "21:00", Timezone: "UTC", Active: true},
		{ID: "2", Name: "Read", NotificationTime: "21:00", Timezone: "UTC", Active: false},
	})
	if result.HasConflicts() || len(result.Notes) != 0 {
		t.Errorf("inactive duplicate should be silent: %+v %+v", result.Conflicts, result.Notes)
	}
}

func TestValidateSubmissions(t *testing.T) {
	habits := []models.Habit{{ID: "h1", Name: "Run", NotificationTime: "07:00", Timezone: "UTC", Active: true}}
	subs := []models.Submission{
		{ID: "s1", HabitID: "h1", Day: "2026-03-01", Status: models.StatusApproved},
		{ID: "s2", HabitID: "h1", Day: "2026-03-01", Status: models.StatusRejected},
		{ID: "s3", HabitID: "h1", Day: "2026-03-02", Status: models.StatusPending},
	}

	if result := New().ValidateSubmissions(habits, subs); result.HasConflicts() {
		t.Errorf("rejected submissions must not hold the day: %+v", result.Conflicts)
	}

	subs = append(subs,
		models.Submission{ID: "s4", HabitID: "h1", Day: "2026-03-02", Status: models.StatusApproved},
		models.Submission{ID: "s5", HabitID: "gone", Day: "2026-03-02", Status: models.StatusRejected},
	)
	result := New().ValidateSubmissions(habits, subs)
	if !hasConflict(result, ConflictDuplicateDay) {
		t.Error("expected duplicate day conflict")
	}
	if hasConflict(result, ConflictUnknownHabit) || !hasNote(result, ConflictUnknownHabit) {
		t.Errorf("orphaned submission should be a note: %+v", result)
	}
}

func TestValidateStreaks(t *testing.T) {
	day := "2026-03-01"
	habits := []models.Habit{{ID: "h1"}}

	tests := []struct {
		name   string
		streak models.Streak
		want   ConflictType
	}{
		{"current above longest", models.Streak{HabitID: "h1", CurrentStreak: 3, LongestStreak: 2, TotalApproved: 3, LastApprovedDate: &day}, ConflictStreakInconsistent},
		{"current above total", models.Streak{HabitID: "h1", CurrentStreak: 3, LongestStreak: 3, TotalApproved: 1, LastApprovedDate: &day}, ConflictStreakInconsistent},
		{"run without day", models.Streak{HabitID: "h1", CurrentStreak: 1, LongestStreak: 1, TotalApproved: 1}, ConflictStreakInconsistent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := New().ValidateStreaks(habits, []models.Streak{tt.streak})
			if !hasConflict(result, tt.want) {
				t.Errorf("expected %s, got %+v", tt.want, result.Conflicts)
			}
		})
	}

	ok := models.Streak{HabitID: "h1", CurrentStreak: 2, LongestStreak: 5, TotalApproved: 9, LastApprovedDate: &day}
	if result := New().ValidateStreaks(habits, []models.Streak{ok}); result.HasConflicts() {
		t.Errorf("unexpected conflicts: %+v", result.Conflicts)
	}

	orphan := models.Streak{HabitID: "h2", CurrentStreak: 1, LongestStreak: 1, TotalApproved: 1, LastApprovedDate: &day}
	result := New().ValidateStreaks(habits, []models.Streak{orphan})
	if result.HasConflicts() || !hasNote(result, ConflictOrphanStreak) {
		t.Errorf("orphaned streak should be a note: %+v", result)
	}
}

func TestFormatReport(t *testing.T) {
	empty := New().Validate(nil, nil, nil)
	if empty.FormatReport() != "No conflicts detected." {
		t.Errorf("empty report = %q", empty.FormatReport())
	}

	result := New().Validate(
		[]models.Habit{{ID: "h1", Name: "Run", NotificationTime: "7am", Timezone: "UTC", Active: true}},
		nil, nil,
	)
	report := result.FormatReport()
	if !strings.HasPrefix(report, "Conflicts detected:") || !strings.Contains(report, "invalid notification time: 7am") {
		t.Errorf("report = %q", report)
	}

	noted := New().Validate(nil, []models.Submission{{ID: "s1", HabitID: "gone", Day: "2026-03-01", Status: models.StatusApproved}}, nil)
	report = noted.FormatReport()
	if !strings.HasPrefix(report, "No conflicts detected.") || !strings.Contains(report, "Notes:\n- Submission s1 references unknown habit gone") {
		t.Errorf("report = %q", report)
	}
}
