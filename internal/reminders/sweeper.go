// Package reminders sends the daily nudge for habits due at a given minute.
package reminders

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/proofstreak/internal/constants"
	"github.com/julianstephens/proofstreak/internal/habits"
	"github.com/julianstephens/proofstreak/internal/logger"
	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/notify"
	"github.com/julianstephens/proofstreak/internal/storage"
	"github.com/julianstephens/proofstreak/internal/streaks"
	"github.com/julianstephens/proofstreak/internal/utils"
)

type Options struct {
	Habits      *habits.Registry
	Ledger      *streaks.Ledger
	Submissions storage.SubmissionStore
	Channel     notify.Channel
	Clock       utils.Clock
	Workers     int
	DryRun      bool // log instead of sending; dry-run reminders still count
}

type Sweeper struct {
	habits      *habits.Registry
	ledger      *streaks.Ledger
	submissions storage.SubmissionStore
	channel     notify.Channel
	clock       utils.Clock
	workers     int
	dryRun      bool
}

func NewSweeper(opts Options) *Sweeper {
	s := &Sweeper{
		habits:      opts.Habits,
		ledger:      opts.Ledger,
		submissions: opts.Submissions,
		channel:     opts.Channel,
		clock:       opts.Clock,
		workers:     opts.Workers,
		dryRun:      opts.DryRun,
	}
	if s.channel == nil || s.dryRun {
		s.channel = notify.Log{}
	}
	if s.workers <= 0 {
		s.workers = constants.DefaultSweepWorkers
	}
	return s
}

// Run reminds every active habit due at hhmm whose owner has not submitted
// today. Failed sends are logged and skipped. It returns the number of
// reminders sent.
func (s *Sweeper) Run(ctx context.Context, hhmm string) (int, error) {
	if !utils.ValidateTimeFormat(hhmm) {
		return 0, fmt.Errorf("invalid sweep time %q (expected HH:MM)", hhmm)
	}

	due, err := s.habits.ListDueAt(ctx, hhmm)
	if err != nil {
		return 0, err
	}

	today := s.clock.Today()
	day := s.clock.TodayString()

	var sent atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, habit := range due {
		g.Go(func() error {
			held, err := s.submissions.HasActiveSubmission(gctx, habit.UserID, habit.ID, day)
			if err != nil {
				return fmt.Errorf("failed to check submissions for habit %s: %w", habit.ID, err)
			}
			if held {
				return nil
			}

			streak, err := s.ledger.Get(gctx, habit.UserID, habit.ID)
			if err != nil {
				return err
			}
			text := Message(habit, streak, today)

			if err := s.channel.SendText(gctx, habit.UserID, text); err != nil {
				logger.Warn("Failed to send reminder", "user", habit.UserID, "habit", habit.ID, "error", err)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(sent.Load()), err
	}

	logger.Info("Reminder sweep finished", "time", hhmm, "due", len(due), "sent", sent.Load(), "dry_run", s.dryRun)
	return int(sent.Load()), nil
}

// Message renders the reminder for habit. streak may be nil when the habit
// was never approved.
func Message(habit models.Habit, streak *models.Streak, today time.Time) string {
	current := 0
	atRisk := false
	if streak != nil {
		current = streak.CurrentStreak
		atRisk = streaks.AtRisk(*streak, today)
	}

	lines := []string{
		fmt.Sprintf("Time for your daily habit: %s!", habit.Name),
		"",
	}
	if current > 0 {
		lines = append(lines, fmt.Sprintf("Current streak: %d day(s)", current))
		if atRisk {
			lines = append(lines, "Don't lose your streak! Submit your proof today.")
		}
	} else {
		lines = append(lines, "Start building your streak today!")
	}
	lines = append(lines, "", "Reply with a photo to submit your proof.")
	return strings.Join(lines, "\n")
}

// CurrentMinute is the HH:MM a sweep triggered now should use.
func (s *Sweeper) CurrentMinute() string {
	return s.clock.MinuteString()
}
