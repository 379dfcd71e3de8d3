package habits

import (
	"fmt"
	"text/tabwriter"

	"github.com/julianstephens/proofstreak/internal/cli"
	"github.com/julianstephens/proofstreak/internal/models"
)

type HabitCmd struct {
	Add        HabitAddCmd        `cmd:"" help:"Add a new habit."`
	List       HabitListCmd       `cmd:"" help:"List a user's habits."`
	Edit       HabitEditCmd       `cmd:"" help:"Edit a habit."`
	Deactivate HabitDeactivateCmd `cmd:"" help:"Stop tracking a habit (soft delete)."`
	Reactivate HabitReactivateCmd `cmd:"" help:"Resume tracking a deactivated habit."`
	Delete     HabitDeleteCmd     `cmd:"" help:"Permanently delete a habit."`
}

type HabitAddCmd struct {
	UserID   int64  `arg:"" help:"Owner's chat user id."`
	Name     string `arg:"" help:"Habit name."`
	Time     string `help:"Daily reminder time (HH:MM)." default:"09:00"`
	Timezone string `help:"IANA timezone label." default:"UTC"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	id, err := ctx.Habits.Create(ctx.Background(), c.UserID, c.Name, c.Time, c.Timezone)
	if err != nil {
		return err
	}
	ctx.Printf("Added habit %q (%s), reminder at %s\n", c.Name, id, c.Time)
	return nil
}

type HabitListCmd struct {
	UserID int64 `arg:"" help:"Owner's chat user id."`
	All    bool  `help:"Include deactivated habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Habits.ListForUser(ctx.Background(), c.UserID, c.All)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tTIMEZONE\tSTATUS")
	for _, h := range habits {
		status := "active"
		if !h.Active {
			status = "inactive"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", h.ID, h.Name, h.NotificationTime, h.Timezone, status)
	}
	return w.Flush()
}

type HabitEditCmd struct {
	ID       string  `arg:"" help:"Habit id."`
	Name     *string `help:"New name."`
	Time     *string `help:"New reminder time (HH:MM)."`
	Timezone *string `help:"New timezone."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	patch := models.HabitPatch{Name: c.Name, NotificationTime: c.Time, Timezone: c.Timezone}
	if patch.Empty() {
		return fmt.Errorf("nothing to update: pass --name, --time or --timezone")
	}
	updated, err := ctx.Habits.Update(ctx.Background(), c.ID, patch)
	if err != nil {
		return err
	}
	if !updated {
		ctx.Printf("Habit %s unchanged.\n", c.ID)
		return nil
	}
	ctx.Printf("Updated habit %s\n", c.ID)
	return nil
}

type HabitDeactivateCmd struct {
	ID string `arg:"" help:"Habit id."`
}

func (c *HabitDeactivateCmd) Run(ctx *cli.Context) error {
	ok, err := ctx.Habits.Deactivate(ctx.Background(), c.ID)
	if err != nil {
		return err
	}
	report(ctx, ok, "Deactivated habit %s\n", "Habit %s is missing or already inactive.\n", c.ID)
	return nil
}

type HabitReactivateCmd struct {
	ID string `arg:"" help:"Habit id."`
}

func (c *HabitReactivateCmd) Run(ctx *cli.Context) error {
	ok, err := ctx.Habits.Reactivate(ctx.Background(), c.ID)
	if err != nil {
		return err
	}
	report(ctx, ok, "Reactivated habit %s\n", "Habit %s is missing or already active.\n", c.ID)
	return nil
}

type HabitDeleteCmd struct {
	ID string `arg:"" help:"Habit id."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	ok, err := ctx.Habits.Delete(ctx.Background(), c.ID)
	if err != nil {
		return err
	}
	report(ctx, ok, "Deleted habit %s\n", "Habit %s not found.\n", c.ID)
	return nil
}

func report(ctx *cli.Context, ok bool, done, skipped, id string) {
	if ok {
		ctx.Printf(done, id)
		return
	}
	ctx.Printf(skipped, id)
}
