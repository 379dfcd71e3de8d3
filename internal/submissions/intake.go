package submissions

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/proofstreak/internal/actions"
	apperrors "github.com/julianstephens/proofstreak/internal/errors"
	"github.com/julianstephens/proofstreak/internal/logger"
	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/notify"
	"github.com/julianstephens/proofstreak/internal/pending"
)

// PhotoEvent is an incoming proof photo.
type PhotoEvent struct {
	UserID     int64  `json:"user_id"`
	FirstName  string `json:"first_name"`
	ProofToken string `json:"proof_token"`
}

// HabitChoice is one button offered when the sender has several active habits.
type HabitChoice struct {
	HabitID string `json:"habit_id"`
	Name    string `json:"name"`
	Payload string `json:"payload"`
}

// PhotoOutcome is either a created submission or, when the habit is
// ambiguous, the choices to present.
type PhotoOutcome struct {
	SubmissionID string        `json:"submission_id,omitempty"`
	Habit        *models.Habit `json:"habit,omitempty"`
	Choices      []HabitChoice `json:"choices,omitempty"`
}

// NeedsChoice reports whether the user must pick a habit before the proof
// is submitted.
func (o PhotoOutcome) NeedsChoice() bool {
	return len(o.Choices) > 0
}

// HandlePhoto routes a proof photo. With no active habits it fails with
// ErrNoActiveHabits and creates nothing. With exactly one it submits and
// forwards to admins. With several it caches the proof and returns the
// choices, to be resolved by ConfirmHabit.
func (w *Workflow) HandlePhoto(ctx context.Context, event PhotoEvent) (PhotoOutcome, error) {
	if strings.TrimSpace(event.ProofToken) == "" {
		return PhotoOutcome{}, apperrors.ErrPhotoRequired
	}

	active, err := w.habits.ListForUser(ctx, event.UserID, false)
	if err != nil {
		return PhotoOutcome{}, err
	}

	switch len(active) {
	case 0:
		return PhotoOutcome{}, apperrors.ErrNoActiveHabits
	case 1:
		return w.submitAndForward(ctx, event, active[0])
	}

	proof := pending.Proof{ProofToken: event.ProofToken, FirstName: event.FirstName}
	if err := w.cache.Put(ctx, event.UserID, proof); err != nil {
		return PhotoOutcome{}, fmt.Errorf("failed to cache proof: %w", err)
	}

	choices := make([]HabitChoice, 0, len(active))
	for _, h := range active {
		choices = append(choices, HabitChoice{
			HabitID: h.ID,
			Name:    h.Name,
			Payload: actions.New(actions.Submit, h.ID).String(),
		})
	}
	return PhotoOutcome{Choices: choices}, nil
}

// ConfirmHabit submits the proof cached for userID against habitID. It
// returns pending.ErrSessionExpired when nothing is cached.
func (w *Workflow) ConfirmHabit(ctx context.Context, userID int64, habitID string) (PhotoOutcome, error) {
	proof, err := w.cache.Take(ctx, userID)
	if err != nil {
		return PhotoOutcome{}, err
	}

	habit, err := w.habits.Get(ctx, habitID)
	if err != nil {
		return PhotoOutcome{}, err
	}
	if habit == nil {
		return PhotoOutcome{}, apperrors.ErrHabitNotFound
	}

	return w.submitAndForward(ctx, PhotoEvent{
		UserID:     userID,
		FirstName:  proof.FirstName,
		ProofToken: proof.ProofToken,
	}, *habit)
}

func (w *Workflow) submitAndForward(ctx context.Context, event PhotoEvent, habit models.Habit) (PhotoOutcome, error) {
	id, err := w.Submit(ctx, event.UserID, habit.ID, event.ProofToken)
	if err != nil {
		return PhotoOutcome{}, err
	}
	w.forwardToAdmins(ctx, event, habit, id)
	return PhotoOutcome{SubmissionID: id, Habit: &habit}, nil
}

// forwardToAdmins sends the proof with approve and reject buttons to every
// admin. A failed recipient does not stop the others.
func (w *Workflow) forwardToAdmins(ctx context.Context, event PhotoEvent, habit models.Habit, submissionID string) {
	caption := reviewCaption(event.FirstName, event.UserID, habit.Name, submissionID)
	buttons := []notify.Button{
		{Label: "Approve", Payload: actions.New(actions.Approve, submissionID).String()},
		{Label: "Reject", Payload: actions.New(actions.Reject, submissionID).String()},
	}

	var g errgroup.Group
	g.SetLimit(w.forwardWorkers)
	for _, admin := range w.admins {
		g.Go(func() error {
			if err := w.channel.SendPhoto(ctx, admin, event.ProofToken, caption, buttons); err != nil {
				logger.Warn("Failed to forward submission to admin", "admin", admin, "submission", submissionID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ActionResult describes what a button press did. Applied is false when the
// target was missing or already reviewed.
type ActionResult struct {
	Action  actions.Action `json:"-"`
	Applied bool           `json:"applied"`
	Photo   *PhotoOutcome  `json:"photo,omitempty"`
}

// HandleAction dispatches a "<verb>:<id>" button payload pressed by actorID.
// Approve and reject require an admin; submit confirms the actor's cached
// proof. reason is only used by reject.
func (w *Workflow) HandleAction(ctx context.Context, actorID int64, payload string, reason *string) (ActionResult, error) {
	action, err := actions.Parse(payload)
	if err != nil {
		return ActionResult{}, err
	}
	result := ActionResult{Action: action}

	switch action.Verb {
	case actions.Approve:
		if !w.IsAdmin(actorID) {
			return result, ErrUnauthorized
		}
		result.Applied, err = w.Approve(ctx, action.ID, actorID)
	case actions.Reject:
		if !w.IsAdmin(actorID) {
			return result, ErrUnauthorized
		}
		result.Applied, err = w.Reject(ctx, action.ID, actorID, reason)
	case actions.Submit:
		var outcome PhotoOutcome
		outcome, err = w.ConfirmHabit(ctx, actorID, action.ID)
		if err == nil {
			result.Applied = true
			result.Photo = &outcome
		}
	}
	return result, err
}
