package models

// Streak is the running approval state for one (user, habit) pair.
type Streak struct {
	UserID           int64   `json:"user_id"`
	HabitID          string  `json:"habit_id"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	TotalApproved    int     `json:"total_approved"`
	LastApprovedDate *string `json:"last_approved_date,omitempty"` // YYYY-MM-DD
}

// NewStreak returns the zeroed streak used by get-or-create.
func NewStreak(userID int64, habitID string) Streak {
	return Streak{UserID: userID, HabitID: habitID}
}

// Incremented returns the streak after one more approval on day.
func (s Streak) Incremented(day string) Streak {
	s.CurrentStreak++
	s.TotalApproved++
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	d := day
	s.LastApprovedDate = &d
	return s
}
