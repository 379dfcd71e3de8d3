package system

import (
	"github.com/julianstephens/proofstreak/internal/cli"
	"github.com/julianstephens/proofstreak/internal/reminders"
)

// RemindCmd runs one reminder sweep. It is meant to be invoked every minute
// by cron or a systemd timer.
type RemindCmd struct {
	At     string `help:"HH:MM to sweep (default: current minute)."`
	DryRun bool   `help:"Log reminders instead of sending them."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	sweeper := ctx.Sweeper
	if c.DryRun {
		sweeper = reminders.NewSweeper(reminders.Options{
			Habits:      ctx.Habits,
			Ledger:      ctx.Ledger,
			Submissions: ctx.Store,
			Clock:       ctx.Clock,
			Workers:     ctx.Config.SweepWorkers,
			DryRun:      true,
		})
	}

	at := c.At
	if at == "" {
		at = sweeper.CurrentMinute()
	}

	sent, err := sweeper.Run(ctx.Background(), at)
	if err != nil {
		return err
	}
	ctx.Printf("Sent %d reminder(s) for %s\n", sent, at)
	return nil
}
