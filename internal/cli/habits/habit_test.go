package habits

import (
	"strings"
	"testing"

	"github.com/julianstephens/proofstreak/internal/cli/clitest"
)

func ptr(s string) *string { return &s }

func TestHabitLifecycle(t *testing.T) {
	env := clitest.New(t)

	if err := (&HabitAddCmd{UserID: 1, Name: "Exercise", Time: "07:30", Timezone: "UTC"}).Run(env.Ctx); err != nil {
		t.Fatalf("add: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, `Added habit "Exercise"`) {
		t.Errorf("unexpected add output: %q", out)
	}

	habits, _ := env.Ctx.Habits.ListForUser(env.Ctx.Background(), 1, true)
	if len(habits) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(habits))
	}
	id := habits[0].ID

	if err := (&HabitListCmd{UserID: 1}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out := env.Output()
	if !strings.Contains(out, "Exercise") || !strings.Contains(out, "07:30") || !strings.Contains(out, "active") {
		t.Errorf("list output missing habit: %q", out)
	}

	if err := (&HabitEditCmd{ID: id, Name: ptr("Morning run")}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "Updated") {
		t.Errorf("edit output = %q", out)
	}
	if err := (&HabitEditCmd{ID: id, Name: ptr("Morning run")}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "unchanged") {
		t.Errorf("same-value edit should be unchanged, got %q", out)
	}
	if err := (&HabitEditCmd{ID: id}).Run(env.Ctx); err == nil {
		t.Error("edit without fields should fail")
	}

	_ = (&HabitDeactivateCmd{ID: id}).Run(env.Ctx)
	_ = (&HabitDeactivateCmd{ID: id}).Run(env.Ctx)
	out = env.Output()
	if !strings.Contains(out, "Deactivated") || !strings.Contains(out, "already inactive") {
		t.Errorf("deactivate output = %q", out)
	}

	_ = (&HabitListCmd{UserID: 1}).Run(env.Ctx)
	if out := env.Output(); !strings.Contains(out, "No habits found.") {
		t.Errorf("inactive habit should be hidden: %q", out)
	}
	_ = (&HabitListCmd{UserID: 1, All: true}).Run(env.Ctx)
	if out := env.Output(); !strings.Contains(out, "inactive") {
		t.Errorf("--all should show inactive habit: %q", out)
	}

	_ = (&HabitReactivateCmd{ID: id}).Run(env.Ctx)
	if out := env.Output(); !strings.Contains(out, "Reactivated") {
		t.Errorf("reactivate output = %q", out)
	}

	_ = (&HabitDeleteCmd{ID: id}).Run(env.Ctx)
	_ = (&HabitDeleteCmd{ID: id}).Run(env.Ctx)
	out = env.Output()
	if !strings.Contains(out, "Deleted habit") || !strings.Contains(out, "not found") {
		t.Errorf("delete output = %q", out)
	}
}

func TestHabitAddInvalid(t *testing.T) {
	env := clitest.New(t)
	tests := []HabitAddCmd{
		{UserID: 1, Name: "  ", Time: "09:00"},
		{UserID: 1, Name: "Read", Time: "9pm"},
		{UserID: 1, Name: "Read", Time: "09:00", Timezone: "Nowhere/City"},
	}
	for _, cmd := range tests {
		if err := cmd.Run(env.Ctx); err == nil {
			t.Errorf("expected error for %+v", cmd)
		}
	}
}
