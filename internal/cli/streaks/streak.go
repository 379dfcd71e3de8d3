package streaks

import (
	"fmt"
	"text/tabwriter"

	"github.com/julianstephens/proofstreak/internal/cli"
)

type StreakCmd struct {
	Show StreakShowCmd `cmd:"" help:"Show the streak for one habit."`
	List StreakListCmd `cmd:"" help:"Show progress across a user's active habits."`
}

type StreakShowCmd struct {
	UserID  int64  `arg:"" help:"User id."`
	HabitID string `arg:"" help:"Habit id."`
}

func (c *StreakShowCmd) Run(ctx *cli.Context) error {
	streak, err := ctx.Ledger.Get(ctx.Background(), c.UserID, c.HabitID)
	if err != nil {
		return err
	}
	if streak == nil {
		ctx.Println("No approvals yet.")
		return nil
	}
	ctx.Printf("Current streak: %d day(s)\n", streak.CurrentStreak)
	ctx.Printf("Longest streak: %d day(s)\n", streak.LongestStreak)
	ctx.Printf("Total approved: %d\n", streak.TotalApproved)
	ctx.Printf("Last approved:  %s\n", cli.FormatDay(streak.LastApprovedDate))
	return nil
}

type StreakListCmd struct {
	UserID int64 `arg:"" help:"User id."`
}

func (c *StreakListCmd) Run(ctx *cli.Context) error {
	active, err := ctx.Habits.ListForUser(ctx.Background(), c.UserID, false)
	if err != nil {
		return err
	}
	if len(active) == 0 {
		ctx.Println("No active habits.")
		return nil
	}
	progress, err := ctx.Ledger.Progress(ctx.Background(), active)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HABIT\tCURRENT\tLONGEST\tTOTAL\tLAST")
	for _, p := range progress {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", p.Habit.Name, p.Streak.CurrentStreak, p.Streak.LongestStreak, p.Streak.TotalApproved, cli.FormatDay(p.Streak.LastApprovedDate))
	}
	return w.Flush()
}
