package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidNotificationTime ConflictType = "invalid_notification_time"
	ConflictInvalidTimezone         ConflictType = "invalid_timezone"
	ConflictDuplicateHabitName      ConflictType = "duplicate_habit_name"
	ConflictDuplicateDay            ConflictType = "duplicate_day"
	ConflictUnknownHabit            ConflictType = "unknown_habit"
	ConflictStreakInconsistent      ConflictType = "streak_inconsistent"
	ConflictOrphanStreak            ConflictType = "orphan_streak"
)

// Conflict represents one inconsistency in a user's stored records
type Conflict struct {
	Type        ConflictType
	Description string
	Day         string   // YYYY-MM-DD (if applicable)
	HabitIDs    []string // Habits involved
	IDs         []string // Submissions involved
}

// ValidationResult contains all detected conflicts. Notes hold states that
// are allowed but worth a look, such as records orphaned by a hard delete;
// they never count as conflicts.
type ValidationResult struct {
	Conflicts []Conflict
	Notes     []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	var report strings.Builder
	if !vr.HasConflicts() {
		report.WriteString("No conflicts detected.")
	} else {
		report.WriteString("Conflicts detected:\n")
		for _, conflict := range vr.Conflicts {
			fmt.Fprintf(&report, "- %s\n", conflict.Description)
		}
	}
	if len(vr.Notes) > 0 {
		if !vr.HasConflicts() {
			report.WriteString("\n")
		}
		report.WriteString("Notes:\n")
		for _, note := range vr.Notes {
			fmt.Fprintf(&report, "- %s\n", note.Description)
		}
	}
	return report.String()
}

// Validator checks one user's habits, submissions and streaks against each other.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateHabits checks habit fields. Active habits sharing a name are noted.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	names := make(map[string][]string)
	for _, habit := range habits {
		if !utils.ValidateTimeFormat(habit.NotificationTime) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidNotificationTime,
				Description: fmt.Sprintf("Habit \"%s\" has invalid notification time: %s", habit.Name, habit.NotificationTime),
				HabitIDs:    []string{habit.ID},
			})
		}
		if !utils.ValidateTimezone(habit.Timezone) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidTimezone,
				Description: fmt.Sprintf("Habit \"%s\" has invalid timezone: %s", habit.Name, habit.Timezone),
				HabitIDs:    []string{habit.ID},
			})
		}
		if habit.Active && habit.Name != "" {
			key := strings.ToLower(habit.Name)
			names[key] = append(names[key], habit.ID)
		}
	}

	keys := make([]string, 0, len(names))
	for name := range names {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	for _, name := range keys {
		if ids := names[name]; len(ids) > 1 {
			result.Notes = append(result.Notes, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("Duplicate active habit name: \"%s\" (IDs: %v)", name, ids),
				HabitIDs:    ids,
			})
		}
	}

	return result
}

// ValidateSubmissions checks that no day is held by more than one pending or
// approved submission. Submissions left by a deleted habit are noted.
func (v *Validator) ValidateSubmissions(habits []models.Habit, subs []models.Submission) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	known := make(map[string]bool, len(habits))
	for _, habit := range habits {
		known[habit.ID] = true
	}

	type slot struct{ habitID, day string }
	holders := make(map[slot][]string)
	var order []slot
	for _, sub := range subs {
		if !known[sub.HabitID] {
			result.Notes = append(result.Notes, Conflict{
				Type:        ConflictUnknownHabit,
				Description: fmt.Sprintf("Submission %s references unknown habit %s", sub.ID, sub.HabitID),
				Day:         sub.Day,
				HabitIDs:    []string{sub.HabitID},
				IDs:         []string{sub.ID},
			})
		}
		if !sub.Status.OccupiesDay() {
			continue
		}
		key := slot{sub.HabitID, sub.Day}
		if _, seen := holders[key]; !seen {
			order = append(order, key)
		}
		holders[key] = append(holders[key], sub.ID)
	}

	for _, key := range order {
		if ids := holders[key]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateDay,
				Description: fmt.Sprintf("Habit %s has %d active submissions on %s (IDs: %v)", key.habitID, len(ids), key.day, ids),
				Day:         key.day,
				HabitIDs:    []string{key.habitID},
				IDs:         ids,
			})
		}
	}

	return result
}

// ValidateStreaks checks counter ordering. Streaks of deleted habits are noted.
func (v *Validator) ValidateStreaks(habits []models.Habit, streaks []models.Streak) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	known := make(map[string]bool, len(habits))
	for _, habit := range habits {
		known[habit.ID] = true
	}

	for _, streak := range streaks {
		if !known[streak.HabitID] {
			result.Notes = append(result.Notes, Conflict{
				Type:        ConflictOrphanStreak,
				Description: fmt.Sprintf("Streak record for unknown habit %s", streak.HabitID),
				HabitIDs:    []string{streak.HabitID},
			})
		}
		if streak.CurrentStreak < 0 || streak.LongestStreak < streak.CurrentStreak || streak.TotalApproved < streak.CurrentStreak {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type: ConflictStreakInconsistent,
				Description: fmt.Sprintf("Streak for habit %s is inconsistent: current=%d longest=%d total=%d",
					streak.HabitID, streak.CurrentStreak, streak.LongestStreak, streak.TotalApproved),
				HabitIDs: []string{streak.HabitID},
			})
		}
		if streak.CurrentStreak > 0 && streak.LastApprovedDate == nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictStreakInconsistent,
				Description: fmt.Sprintf("Streak for habit %s has a current run but no approved day", streak.HabitID),
				HabitIDs:    []string{streak.HabitID},
			})
		}
	}

	return result
}

// Validate runs every check over one user's records.
func (v *Validator) Validate(habits []models.Habit, subs []models.Submission, streaks []models.Streak) ValidationResult {
	all := ValidationResult{Conflicts: []Conflict{}}
	for _, r := range []ValidationResult{
		v.ValidateHabits(habits),
		v.ValidateSubmissions(habits, subs),
		v.ValidateStreaks(habits, streaks),
	} {
		all.Conflicts = append(all.Conflicts, r.Conflicts...)
		all.Notes = append(all.Notes, r.Notes...)
	}
	return all
}
