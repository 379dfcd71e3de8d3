package streaks

import (
	"strings"
	"testing"

	"github.com/julianstephens/proofstreak/internal/cli/clitest"
)

func TestStreakCommands(t *testing.T) {
	env := clitest.New(t)
	ctx := env.Ctx.Background()

	exercise, _ := env.Ctx.Habits.Create(ctx, 1, "Exercise", "09:00", "UTC")
	_, _ = env.Ctx.Habits.Create(ctx, 1, "Read", "21:00", "UTC")

	_ = (&StreakShowCmd{UserID: 1, HabitID: exercise}).Run(env.Ctx)
	if out := env.Output(); !strings.Contains(out, "No approvals yet.") {
		t.Errorf("show before approval = %q", out)
	}

	sub, err := env.Ctx.Workflow.Submit(ctx, 1, exercise, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := env.Ctx.Workflow.Approve(ctx, sub, clitest.Admin); err != nil {
		t.Fatal(err)
	}

	_ = (&StreakShowCmd{UserID: 1, HabitID: exercise}).Run(env.Ctx)
	out := env.Output()
	for _, want := range []string{"Current streak: 1 day(s)", "Longest streak: 1 day(s)", "Last approved:  2026-03-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q: %q", want, out)
		}
	}

	if err := (&StreakListCmd{UserID: 1}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out = env.Output()
	if !strings.Contains(out, "Exercise") || !strings.Contains(out, "Read") || !strings.Contains(out, "never") {
		t.Errorf("list output = %q", out)
	}

	_ = (&StreakListCmd{UserID: 2}).Run(env.Ctx)
	if out := env.Output(); !strings.Contains(out, "No active habits.") {
		t.Errorf("empty list output = %q", out)
	}
}
