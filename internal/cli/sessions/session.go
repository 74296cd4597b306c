package sessions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/config"
	"github.com/julianstephens/hotset/internal/hotset"
	"github.com/julianstephens/hotset/internal/utils"
)

type SessionCreateCmd struct {
	Template string `arg:"" help:"Day template file (.yaml, .yml or .toml)." type:"existingfile"`
	DryRun   bool   `help:"Validate the template without creating a session."`
}

func (c *SessionCreateCmd) Run(ctx *cli.Context) error {
	tmpl, err := config.LoadTemplate(c.Template)
	if err != nil {
		return err
	}

	result := ctx.Service.ValidateTemplate(tmpl)
	if result.HasConflicts() {
		ctx.Printf("%s", result.FormatReport())
	}
	if c.DryRun {
		if result.HasErrors() {
			return result.Err()
		}
		ctx.Println("✓ Template is valid")
		return nil
	}

	snap, err := ctx.Service.CreateSession(context.Background(), tmpl)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Created session %s (day %d, %d items)\n", snap.Session.ID, snap.Session.DayNumber, len(snap.Items))
	return nil
}

type SessionListCmd struct{}

func (c *SessionListCmd) Run(ctx *cli.Context) error {
	sessions, err := ctx.Service.ListSessions(context.Background())
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		ctx.Println("No sessions. Create one with 'hotset session create <template>'.")
		return nil
	}
	for _, s := range sessions {
		ctx.Printf("Day %-3d %-12s %s  call %s  %s\n",
			s.DayNumber,
			s.Status,
			s.PlannedCallTime.Format("2006-01-02"),
			utils.FormatClock(s.PlannedCallTime, s.Timezone),
			s.ID,
		)
	}
	return nil
}

type SessionShowCmd struct {
	SessionID string `arg:"" help:"Session ID."`
	At        string `help:"Evaluate at this time (HH:MM or RFC 3339). Defaults to now."`
	JSON      bool   `help:"Print the raw snapshot as JSON." name:"json"`
}

func (c *SessionShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if c.JSON {
		snap, err := ctx.Service.GetSnapshot(bg, c.SessionID)
		if err != nil {
			return err
		}
		return printJSON(ctx, snap)
	}

	now, err := ctx.SessionTime(bg, c.SessionID, c.At)
	if err != nil {
		return err
	}
	session, err := ctx.Service.GetSession(bg, c.SessionID)
	if err != nil {
		return err
	}
	projected, err := ctx.Service.GetProjectedSchedule(bg, c.SessionID, now)
	if err != nil {
		return err
	}
	ctx.RenderResult(hotset.Result{Session: session, Projected: projected})
	return nil
}

type SessionDeleteCmd struct {
	SessionID string `arg:"" help:"Session ID."`
	Yes       bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *SessionDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	session, err := ctx.Service.GetSession(bg, c.SessionID)
	if err != nil {
		return err
	}
	ok, err := cli.Confirm(c.Yes,
		fmt.Sprintf("Delete day %d (%s)?", session.DayNumber, session.ProductionDayID),
		"The session and all of its schedule items are removed.")
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}
	if err := ctx.Service.DeleteSession(bg, c.SessionID); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted session %s\n", c.SessionID)
	return nil
}

func printJSON(ctx *cli.Context, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	ctx.Println(string(data))
	return nil
}
