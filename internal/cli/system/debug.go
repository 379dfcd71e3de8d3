package system

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/proofstreak/internal/cli"
	"github.com/julianstephens/proofstreak/internal/storage"
)

type DebugCmd struct {
	DBPath         DebugDBPathCmd         `cmd:"" name:"db-path" help:"Show database path."`
	DumpHabit      DebugDumpHabitCmd      `cmd:"" help:"Dump a habit as JSON."`
	DumpSubmission DebugDumpSubmissionCmd `cmd:"" help:"Dump a submission as JSON."`
	DumpStreak     DebugDumpStreakCmd     `cmd:"" help:"Dump a streak record as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return dump(ctx, map[string]string{
		"driver": ctx.Config.Driver,
		"path":   ctx.Store.GetConfigPath(),
	})
}

type DebugDumpHabitCmd struct {
	ID string `arg:"" help:"ID of the habit to dump."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Store.GetHabit(ctx.Background(), cmd.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("habit not found: %s", cmd.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to get habit: %w", err)
	}
	return dump(ctx, habit)
}

type DebugDumpSubmissionCmd struct {
	ID string `arg:"" help:"ID of the submission to dump."`
}

func (cmd *DebugDumpSubmissionCmd) Run(ctx *cli.Context) error {
	sub, err := ctx.Store.GetSubmission(ctx.Background(), cmd.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("submission not found: %s", cmd.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to get submission: %w", err)
	}
	return dump(ctx, sub)
}

type DebugDumpStreakCmd struct {
	UserID  int64  `arg:"" help:"Owner of the streak."`
	HabitID string `arg:"" help:"Habit the streak tracks."`
}

func (cmd *DebugDumpStreakCmd) Run(ctx *cli.Context) error {
	streak, err := ctx.Store.GetStreak(ctx.Background(), cmd.UserID, cmd.HabitID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no streak record for user %d and habit %s", cmd.UserID, cmd.HabitID)
	}
	if err != nil {
		return fmt.Errorf("failed to get streak: %w", err)
	}
	return dump(ctx, streak)
}

func dump(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
