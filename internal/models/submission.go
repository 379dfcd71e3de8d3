package models

import "time"

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a submission may move from s to next.
// Only pending submissions can be reviewed; approved and rejected are terminal.
func (s SubmissionStatus) CanTransition(next SubmissionStatus) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

// OccupiesDay reports whether a submission in this status blocks another
// submission for the same habit on the same day.
func (s SubmissionStatus) OccupiesDay() bool {
	return s == StatusPending || s == StatusApproved
}

type Submission struct {
	ID              string           `json:"id"`
	HabitID         string           `json:"habit_id"`
	UserID          int64            `json:"user_id"`
	ProofToken      string           `json:"proof_token"`
	Day             string           `json:"day"` // YYYY-MM-DD of SubmittedAt in the evaluation location
	SubmittedAt     time.Time        `json:"submitted_at"`
	Status          SubmissionStatus `json:"status"`
	ReviewedBy      *int64           `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time       `json:"reviewed_at,omitempty"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
}

// Review is the set of fields written by a single approve or reject.
type Review struct {
	Status     SubmissionStatus
	ReviewerID int64
	ReviewedAt time.Time
	Reason     *string
}

// SubmissionDetails is a submission enriched with its habit's display name.
type SubmissionDetails struct {
	Submission
	HabitName string `json:"habit_name"`
}

// SubmissionFilter narrows a user's submission history. Zero values match everything.
type SubmissionFilter struct {
	Status  *SubmissionStatus
	HabitID string
}

func (f SubmissionFilter) Matches(s Submission) bool {
	if f.Status != nil && s.Status != *f.Status {
		return false
	}
	if f.HabitID != "" && s.HabitID != f.HabitID {
		return false
	}
	return true
}
