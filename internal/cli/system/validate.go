package system

import (
	"fmt"

	"github.com/julianstephens/proofstreak/internal/cli"
	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/validation"
)

type ValidateCmd struct {
	UserID int64 `arg:"" help:"User whose records to check."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	bg := ctx.Background()

	habits, err := ctx.Store.GetHabitsForUser(bg, cmd.UserID, true)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	subs, err := ctx.Store.GetSubmissionsForUser(bg, cmd.UserID, models.SubmissionFilter{})
	if err != nil {
		return fmt.Errorf("failed to load submissions: %w", err)
	}
	streaks, err := ctx.Store.GetStreaksForUser(bg, cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to load streaks: %w", err)
	}

	ctx.Printf("Validating %d habit(s), %d submission(s) and %d streak(s) for user %d...\n",
		len(habits), len(subs), len(streaks), cmd.UserID)
	result := validation.New().Validate(habits, subs, streaks)

	ctx.Println()
	ctx.Println(result.FormatReport())
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found", len(result.Conflicts))
	}
	return nil
}
