package review

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/julianstephens/proofstreak/internal/cli"
	"github.com/julianstephens/proofstreak/internal/models"
	"github.com/julianstephens/proofstreak/internal/submissions"
)

type SubmitCmd struct {
	UserID  int64  `arg:"" help:"Submitter's chat user id."`
	HabitID string `arg:"" help:"Habit id."`
	Proof   string `arg:"" help:"Opaque proof photo token."`
}

func (c *SubmitCmd) Run(ctx *cli.Context) error {
	id, err := ctx.Workflow.Submit(ctx.Background(), c.UserID, c.HabitID, c.Proof)
	if err != nil {
		return err
	}
	ctx.Printf("Submitted proof %s, awaiting review\n", id)
	return nil
}

type ReviewCmd struct {
	Pending PendingCmd `cmd:"" help:"List submissions awaiting review." default:"1"`
	Show    ShowCmd    `cmd:"" help:"Show a submission."`
	Approve ApproveCmd `cmd:"" help:"Approve a pending submission."`
	Reject  RejectCmd  `cmd:"" help:"Reject a pending submission."`
	History HistoryCmd `cmd:"" help:"List a user's submissions."`
}

type PendingCmd struct{}

func (c *PendingCmd) Run(ctx *cli.Context) error {
	subs, err := ctx.Workflow.GetPending(ctx.Background())
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		ctx.Println("No pending submissions.")
		return nil
	}
	return printSubmissions(ctx, subs)
}

type ShowCmd struct {
	ID string `arg:"" help:"Submission id."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	details, err := ctx.Workflow.GetDetails(ctx.Background(), c.ID)
	if err != nil {
		return err
	}
	if details == nil {
		return fmt.Errorf("submission %s not found", c.ID)
	}

	ctx.Printf("Submission: %s\n", details.ID)
	ctx.Printf("Habit:      %s (%s)\n", details.HabitName, details.HabitID)
	ctx.Printf("User:       %d\n", details.UserID)
	ctx.Printf("Day:        %s\n", details.Day)
	ctx.Printf("Submitted:  %s\n", details.SubmittedAt.Format(time.RFC3339))
	ctx.Printf("Status:     %s\n", details.Status)
	if details.ReviewedBy != nil {
		ctx.Printf("Reviewed:   by %d", *details.ReviewedBy)
		if details.ReviewedAt != nil {
			ctx.Printf(" at %s", details.ReviewedAt.Format(time.RFC3339))
		}
		ctx.Println()
	}
	if details.RejectionReason != nil {
		ctx.Printf("Reason:     %s\n", *details.RejectionReason)
	}
	return nil
}

type ApproveCmd struct {
	ID       string `arg:"" help:"Submission id."`
	Reviewer int64  `required:"" help:"Admin user id recorded as the reviewer."`
}

func (c *ApproveCmd) Run(ctx *cli.Context) error {
	if !ctx.Workflow.IsAdmin(c.Reviewer) {
		return submissions.ErrUnauthorized
	}
	ok, err := ctx.Workflow.Approve(ctx.Background(), c.ID, c.Reviewer)
	if ok && err != nil {
		return fmt.Errorf("submission approved but streak update failed: %w", err)
	}
	if err != nil {
		return err
	}
	if !ok {
		ctx.Printf("Submission %s is missing or already reviewed.\n", c.ID)
		return nil
	}
	ctx.Printf("Approved submission %s\n", c.ID)
	return nil
}

type RejectCmd struct {
	ID       string `arg:"" help:"Submission id."`
	Reviewer int64  `required:"" help:"Admin user id recorded as the reviewer."`
	Reason   string `help:"Reason shown to the user."`
}

func (c *RejectCmd) Run(ctx *cli.Context) error {
	if !ctx.Workflow.IsAdmin(c.Reviewer) {
		return submissions.ErrUnauthorized
	}
	var reason *string
	if strings.TrimSpace(c.Reason) != "" {
		reason = &c.Reason
	}
	ok, err := ctx.Workflow.Reject(ctx.Background(), c.ID, c.Reviewer, reason)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Printf("Submission %s is missing or already reviewed.\n", c.ID)
		return nil
	}
	ctx.Printf("Rejected submission %s\n", c.ID)
	return nil
}

type HistoryCmd struct {
	UserID int64  `arg:"" help:"User id."`
	Status string `help:"Only show this status (pending, approved or rejected)."`
	Habit  string `help:"Only show this habit id."`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	filter := models.SubmissionFilter{HabitID: c.Habit}
	if c.Status != "" {
		status := models.SubmissionStatus(strings.ToLower(c.Status))
		if !status.Valid() {
			return fmt.Errorf("invalid status %q (expected pending, approved or rejected)", c.Status)
		}
		filter.Status = &status
	}
	subs, err := ctx.Workflow.ListForUser(ctx.Background(), c.UserID, filter)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		ctx.Println("No submissions found.")
		return nil
	}
	return printSubmissions(ctx, subs)
}

func printSubmissions(ctx *cli.Context, subs []models.Submission) error {
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSER\tHABIT\tDAY\tSTATUS")
	for _, s := range subs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", s.ID, s.UserID, s.HabitID, s.Day, s.Status)
	}
	return w.Flush()
}
