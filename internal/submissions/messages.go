package submissions

import (
	"fmt"
	"strings"

	"github.com/julianstephens/proofstreak/internal/models"
)

func approvalMessage(habitName string, streak models.Streak) string {
	return fmt.Sprintf(
		"Your submission for '%s' has been approved!\n\nCurrent streak: %d day(s)\nLongest streak: %d day(s)\n\nKeep up the great work!",
		habitName, streak.CurrentStreak, streak.LongestStreak,
	)
}

func rejectionMessage(habitName string, reason *string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your submission for '%s' has been rejected.", habitName)
	if reason != nil {
		fmt.Fprintf(&b, "\n\nReason: %s", *reason)
	}
	b.WriteString("\n\nPlease submit a new proof photo.")
	return b.String()
}

func reviewCaption(firstName string, userID int64, habitName, submissionID string) string {
	return fmt.Sprintf(
		"New submission for review\n\nUser: %s (ID: %d)\nHabit: %s\nSubmission ID: %s",
		firstName, userID, habitName, submissionID,
	)
}

// ReceiptMessage is the acknowledgement shown to the user after a photo was
// accepted for review.
func ReceiptMessage(habitName string) string {
	return fmt.Sprintf("Your proof for '%s' has been submitted!\n\nStatus: Pending review\n\nYou'll be notified once it's reviewed.", habitName)
}

// ChoicePrompt asks a user with several active habits which one a photo is for.
const ChoicePrompt = "Which habit is this submission for?\n\nSelect from the options below:"
