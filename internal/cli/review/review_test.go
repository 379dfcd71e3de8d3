package review

import (
	"errors"
	"strings"
	"testing"

	"github.com/julianstephens/proofstreak/internal/cli/clitest"
	apperrors "github.com/julianstephens/proofstreak/internal/errors"
	"github.com/julianstephens/proofstreak/internal/submissions"
)

func setupHabit(t *testing.T, env *clitest.Env) string {
	t.Helper()
	id, err := env.Ctx.Habits.Create(env.Ctx.Background(), 1, "Exercise", "09:00", "UTC")
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func pendingID(t *testing.T, env *clitest.Env) string {
	t.Helper()
	subs, err := env.Ctx.Workflow.GetPending(env.Ctx.Background())
	if err != nil || len(subs) != 1 {
		t.Fatalf("expected one pending submission, got %d (%v)", len(subs), err)
	}
	return subs[0].ID
}

func TestSubmitAndApprove(t *testing.T) {
	env := clitest.New(t)
	habitID := setupHabit(t, env)

	if err := (&SubmitCmd{UserID: 1, HabitID: habitID, Proof: "p1"}).Run(env.Ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	err := (&SubmitCmd{UserID: 1, HabitID: habitID, Proof: "p2"}).Run(env.Ctx)
	if !errors.Is(err, apperrors.ErrAlreadySubmitted) {
		t.Errorf("second submit error = %v, want ErrAlreadySubmitted", err)
	}
	env.Output()

	_ = (&PendingCmd{}).Run(env.Ctx)
	if out := env.Output(); !strings.Contains(out, "pending") {
		t.Errorf("pending output = %q", out)
	}

	subID := pendingID(t, env)
	if err := (&ApproveCmd{ID: subID, Reviewer: 5}).Run(env.Ctx); !errors.Is(err, submissions.ErrUnauthorized) {
		t.Errorf("non-admin approve error = %v", err)
	}
	if err := (&ApproveCmd{ID: subID, Reviewer: clitest.Admin}).Run(env.Ctx); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := (&ApproveCmd{ID: subID, Reviewer: clitest.Admin}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out := env.Output()
	if !strings.Contains(out, "Approved submission") || !strings.Contains(out, "already reviewed") {
		t.Errorf("approve output = %q", out)
	}

	msgs := env.Channel.To(1)
	if len(msgs) != 1 || !strings.Contains(msgs[0].Text, "approved") {
		t.Errorf("user should be notified of approval, got %+v", msgs)
	}

	_ = (&ShowCmd{ID: subID}).Run(env.Ctx)
	out = env.Output()
	for _, want := range []string{"Exercise", "approved", "Reviewed:   by 900"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q: %q", want, out)
		}
	}
}

func TestReject(t *testing.T) {
	env := clitest.New(t)
	habitID := setupHabit(t, env)
	_ = (&SubmitCmd{UserID: 1, HabitID: habitID, Proof: "p1"}).Run(env.Ctx)
	subID := pendingID(t, env)

	if err := (&RejectCmd{ID: subID, Reviewer: clitest.Admin, Reason: "blurry"}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	_ = (&ShowCmd{ID: subID}).Run(env.Ctx)
	if out := env.Output(); !strings.Contains(out, "Reason:     blurry") {
		t.Errorf("show output = %q", out)
	}

	if err := (&SubmitCmd{UserID: 1, HabitID: habitID, Proof: "p2"}).Run(env.Ctx); err != nil {
		t.Errorf("resubmit after rejection: %v", err)
	}
}

func TestHistory(t *testing.T) {
	env := clitest.New(t)
	habitID := setupHabit(t, env)
	_ = (&SubmitCmd{UserID: 1, HabitID: habitID, Proof: "p1"}).Run(env.Ctx)
	env.Output()

	if err := (&HistoryCmd{UserID: 1, Status: "approved"}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "No submissions found.") {
		t.Errorf("history output = %q", out)
	}
	_ = (&HistoryCmd{UserID: 1, Status: "PENDING"}).Run(env.Ctx)
	if out := env.Output(); !strings.Contains(out, habitID) {
		t.Errorf("history output = %q", out)
	}
	if err := (&HistoryCmd{UserID: 1, Status: "lost"}).Run(env.Ctx); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestShowMissing(t *testing.T) {
	env := clitest.New(t)
	if err := (&ShowCmd{ID: "nope"}).Run(env.Ctx); err == nil {
		t.Error("expected error for missing submission")
	}
}
