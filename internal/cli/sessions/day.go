package sessions

import (
	"context"

	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/scheduler"
	"github.com/julianstephens/hotset/internal/utils"
)

type DayStartCmd struct {
	SessionID string `arg:"" help:"Session ID."`
	At        string `help:"Call time actually reached (HH:MM or RFC 3339). Defaults to now."`
}

func (c *DayStartCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	now, err := ctx.SessionTime(bg, c.SessionID, c.At)
	if err != nil {
		return err
	}
	res, err := ctx.Service.StartDay(bg, c.SessionID, now)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Day started at %s\n\n", utils.FormatClock(now, res.Session.Timezone))
	ctx.RenderResult(res)
	return nil
}

type DayWrapCmd struct {
	SessionID string `arg:"" help:"Session ID."`
	At        string `help:"Wrap time (HH:MM or RFC 3339). Defaults to now."`
}

func (c *DayWrapCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	now, err := ctx.SessionTime(bg, c.SessionID, c.At)
	if err != nil {
		return err
	}
	res, err := ctx.Service.RecordWrap(bg, c.SessionID, now)
	if err != nil {
		return err
	}
	sum, err := ctx.Service.GetDaySummary(bg, c.SessionID)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Wrapped day %d at %s\n", res.Session.DayNumber, utils.FormatClock(now, res.Session.Timezone))
	ctx.Printf("  Scenes: %d completed, %d skipped, %d swapped out\n", sum.ScenesCompleted, sum.ScenesSkipped, sum.ScenesSwappedOut)
	ctx.Printf("  Shooting time: %dm, variance %s\n", sum.TotalShootingMinutes, utils.FormatSignedMinutes(sum.CumulativeVariance))
	return nil
}

// SummaryCmd prints the day summary as JSON for the reporting module.
type SummaryCmd struct {
	SessionID string `arg:"" help:"Session ID."`
}

func (c *SummaryCmd) Run(ctx *cli.Context) error {
	sum, err := ctx.Service.GetDaySummary(context.Background(), c.SessionID)
	if err != nil {
		return err
	}
	return printJSON(ctx, sum)
}

type ScheduleCmd struct {
	SessionID string `arg:"" help:"Session ID."`
	At        string `help:"Project from this time (HH:MM or RFC 3339). Defaults to now."`
	JSON      bool   `help:"Print the projected schedule as JSON." name:"json"`
}

func (c *ScheduleCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	now, err := ctx.SessionTime(bg, c.SessionID, c.At)
	if err != nil {
		return err
	}
	projected, err := ctx.Service.GetProjectedSchedule(bg, c.SessionID, now)
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(ctx, projected)
	}
	session, err := ctx.Service.GetSession(bg, c.SessionID)
	if err != nil {
		return err
	}
	ctx.Printf("%s", cli.RenderSchedule(projected, session.Timezone))
	return nil
}

type VarianceCmd struct {
	SessionID string `arg:"" help:"Session ID."`
	At        string `help:"Evaluate at this time (HH:MM or RFC 3339). Defaults to now."`
	JSON      bool   `help:"Print the report as JSON." name:"json"`
}

func (c *VarianceCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	now, err := ctx.SessionTime(bg, c.SessionID, c.At)
	if err != nil {
		return err
	}
	report, err := ctx.Service.GetVariance(bg, c.SessionID, now)
	if err != nil {
		return err
	}
	if c.JSON {
		return printJSON(ctx, report)
	}
	ctx.Printf("%s", cli.RenderVariance(report))

	projected, err := ctx.Service.GetProjectedSchedule(bg, c.SessionID, now)
	if err != nil {
		return err
	}
	if cur, ok := scheduler.Current(projected); ok {
		session, err := ctx.Service.GetSession(bg, c.SessionID)
		if err != nil {
			return err
		}
		ctx.Printf("Now:        %s (%s, ends %s)\n", cur.Name, cur.Status, utils.FormatClock(cur.ProjectedEndTime, session.Timezone))
	}
	return nil
}
