package submissions

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/julianstephens/proofstreak/internal/errors"
	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/pending"
)

func TestHandlePhotoNoActiveHabits(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	id := f.habit(t, user, "Exercise")
	_, _ = f.registry.Deactivate(ctx, id)

	_, err := f.wf.HandlePhoto(ctx, PhotoEvent{UserID: user, FirstName: "Ana", ProofToken: "p1"})
	if !errors.Is(err, apperrors.ErrNoActiveHabits) {
		t.Fatalf("expected ErrNoActiveHabits, got %v", err)
	}
	subs, _ := f.wf.ListForUser(ctx, user, models.SubmissionFilter{})
	if len(subs) != 0 {
		t.Errorf("no submission should be created, got %d", len(subs))
	}
	if len(f.channel.Messages()) != 0 {
		t.Error("nothing should be forwarded")
	}
}

func TestHandlePhotoSingleHabit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	habitID := f.habit(t, user, "Exercise")

	out, err := f.wf.HandlePhoto(ctx, PhotoEvent{UserID: user, FirstName: "Ana", ProofToken: "p1"})
	if err != nil {
		t.Fatalf("handle photo: %v", err)
	}
	if out.NeedsChoice() || out.SubmissionID == "" || out.Habit == nil || out.Habit.ID != habitID {
		t.Fatalf("unexpected outcome %+v", out)
	}

	for _, a := range []int64{admin, admin2} {
		msgs := f.channel.To(a)
		if len(msgs) != 1 {
			t.Fatalf("admin %d got %d messages", a, len(msgs))
		}
		m := msgs[0]
		if m.PhotoToken != "p1" {
			t.Errorf("forwarded photo = %q", m.PhotoToken)
		}
		for _, want := range []string{"User: Ana (ID: 1)", "Habit: Exercise", "Submission ID: " + out.SubmissionID} {
			if !strings.Contains(m.Caption, want) {
				t.Errorf("caption %q missing %q", m.Caption, want)
			}
		}
		if len(m.Buttons) != 2 ||
			m.Buttons[0].Payload != "approve:"+out.SubmissionID ||
			m.Buttons[1].Payload != "reject:"+out.SubmissionID {
			t.Errorf("unexpected buttons %+v", m.Buttons)
		}
	}
}

func TestHandlePhotoAdminUnreachable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.habit(t, user, "Exercise")
	f.channel.Fail = map[int64]bool{admin: true}

	out, err := f.wf.HandlePhoto(ctx, PhotoEvent{UserID: user, ProofToken: "p1"})
	if err != nil || out.SubmissionID == "" {
		t.Fatalf("handle photo: %+v, %v", out, err)
	}
	if len(f.channel.To(admin2)) != 1 {
		t.Error("remaining admins should still receive the submission")
	}
}

func TestHandlePhotoAlreadySubmitted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.habit(t, user, "Exercise")

	if _, err := f.wf.HandlePhoto(ctx, PhotoEvent{UserID: user, ProofToken: "p1"}); err != nil {
		t.Fatal(err)
	}
	f.channel.Reset()
	_, err := f.wf.HandlePhoto(ctx, PhotoEvent{UserID: user, ProofToken: "p2"})
	if !errors.Is(err, apperrors.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	if len(f.channel.Messages()) != 0 {
		t.Error("duplicate should not be forwarded")
	}
}

func TestHandlePhotoMultipleHabits(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.habit(t, user, "Exercise")
	b := f.habit(t, user, "Read")

	out, err := f.wf.HandlePhoto(ctx, PhotoEvent{UserID: user, FirstName: "Ana", ProofToken: "p1"})
	if err != nil {
		t.Fatalf("handle photo: %v", err)
	}
	if !out.NeedsChoice() || out.SubmissionID != "" {
		t.Fatalf("expected choices, got %+v", out)
	}
	if len(out.Choices) != 2 || out.Choices[0].Payload != "submit:"+a || out.Choices[1].Payload != "submit:"+b {
		t.Errorf("unexpected choices %+v", out.Choices)
	}
	if out.Choices[1].Name != "Read" {
		t.Errorf("choice label = %q", out.Choices[1].Name)
	}

	res, err := f.wf.HandleAction(ctx, user, out.Choices[1].Payload, nil)
	if err != nil {
		t.Fatalf("confirm habit: %v", err)
	}
	if !res.Applied || res.Photo == nil || res.Photo.Habit.ID != b {
		t.Fatalf("unexpected result %+v", res)
	}

	sub, _ := f.wf.GetDetails(ctx, res.Photo.SubmissionID)
	if sub.HabitID != b || sub.ProofToken != "p1" || sub.Status != models.StatusPending {
		t.Errorf("unexpected submission %+v", sub)
	}
	if msgs := f.channel.To(admin); len(msgs) != 1 || !strings.Contains(msgs[0].Caption, "User: Ana") {
		t.Errorf("admin forwarding after confirmation: %+v", msgs)
	}

	// The cached proof is consumed by the first confirmation.
	if _, err := f.wf.ConfirmHabit(ctx, user, a); !errors.Is(err, pending.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestConfirmHabitWithoutPhoto(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	habitID := f.habit(t, user, "Exercise")

	_, err := f.wf.HandleAction(ctx, user, "submit:"+habitID, nil)
	if !errors.Is(err, pending.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestConfirmHabitUnknownHabit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.habit(t, user, "Exercise")
	f.habit(t, user, "Read")

	if _, err := f.wf.HandlePhoto(ctx, PhotoEvent{UserID: user, ProofToken: "p1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.wf.ConfirmHabit(ctx, user, "gone"); !errors.Is(err, apperrors.ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestHandleActionReview(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	habitID := f.habit(t, user, "Exercise")
	id, _ := f.wf.Submit(ctx, user, habitID, "p1")

	if _, err := f.wf.HandleAction(ctx, user, "approve:"+id, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-admin approve: expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.wf.HandleAction(ctx, user, "reject:"+id, nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-admin reject: expected ErrUnauthorized, got %v", err)
	}

	res, err := f.wf.HandleAction(ctx, admin, "approve:"+id, nil)
	if err != nil || !res.Applied {
		t.Fatalf("admin approve: %+v, %v", res, err)
	}
	// A second tap on the same button is a benign no-op.
	res, err = f.wf.HandleAction(ctx, admin2, "reject:"+id, nil)
	if err != nil || res.Applied {
		t.Fatalf("second tap: %+v, %v", res, err)
	}

	if _, err := f.wf.HandleAction(ctx, admin, "archive:"+id, nil); err == nil {
		t.Error("unknown verb should be refused")
	}
}

func TestHandlePhotoRequiresProof(t *testing.T) {
	f := setup(t)
	f.habit(t, user, "Exercise")
	if _, err := f.wf.HandlePhoto(context.Background(), PhotoEvent{UserID: user}); !errors.Is(err, apperrors.ErrPhotoRequired) {
		t.Errorf("expected ErrPhotoRequired, got %v", err)
	}
}
