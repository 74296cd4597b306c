package items

import (
	"context"
	"time"

	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/hotset"
	"github.com/julianstephens/hotset/internal/models"
)

type ItemStartCmd struct {
	ItemID string `arg:"" help:"Scene or block ID."`
	At     string `help:"Start time (HH:MM or RFC 3339). Defaults to now."`
}

func (c *ItemStartCmd) Run(ctx *cli.Context) error {
	return mutateItem(ctx, c.ItemID, c.At, func(bg context.Context, now time.Time) (hotset.Result, error) {
		return ctx.Service.StartItem(bg, c.ItemID, now)
	})
}

type ItemCompleteCmd struct {
	ItemID  string `arg:"" help:"Scene or block ID."`
	At      string `help:"Completion time (HH:MM or RFC 3339). Defaults to now."`
	Minutes int    `help:"Actual minutes, when the wall clock does not reflect the work." default:"-1"`
}

func (c *ItemCompleteCmd) Run(ctx *cli.Context) error {
	return mutateItem(ctx, c.ItemID, c.At, func(bg context.Context, now time.Time) (hotset.Result, error) {
		var actual *int
		if c.Minutes >= 0 {
			actual = &c.Minutes
		}
		return ctx.Service.CompleteItem(bg, c.ItemID, actual, now)
	})
}

type ItemSkipCmd struct {
	ItemID string `arg:"" help:"Scene or block ID."`
	Reason string `help:"Why the item was skipped." short:"r"`
	At     string `help:"Skip time (HH:MM or RFC 3339). Defaults to now."`
}

func (c *ItemSkipCmd) Run(ctx *cli.Context) error {
	return mutateItem(ctx, c.ItemID, c.At, func(bg context.Context, now time.Time) (hotset.Result, error) {
		return ctx.Service.SkipItem(bg, c.ItemID, c.Reason, now)
	})
}

type ItemAdjustCmd struct {
	ItemID string `arg:"" help:"Block ID."`
	Start  string `arg:"" help:"New start (HH:MM or RFC 3339)."`
	End    string `arg:"" help:"New end (HH:MM or RFC 3339)."`
}

func (c *ItemAdjustCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	start, err := ctx.ItemTime(bg, c.ItemID, c.Start)
	if err != nil {
		return err
	}
	end, err := ctx.ItemTime(bg, c.ItemID, c.End)
	if err != nil {
		return err
	}
	return mutateItem(ctx, c.ItemID, "", func(bg context.Context, now time.Time) (hotset.Result, error) {
		return ctx.Service.AdjustBlockTime(bg, c.ItemID, start, end, now)
	})
}

type ItemMoveCmd struct {
	ItemID string `arg:"" help:"Item to move."`
	After  string `help:"Place after this item. Omit to move to the front."`
}

func (c *ItemMoveCmd) Run(ctx *cli.Context) error {
	return mutateItem(ctx, c.ItemID, "", func(bg context.Context, now time.Time) (hotset.Result, error) {
		return ctx.Service.MoveItem(bg, c.ItemID, c.After, now)
	})
}

type ItemDeleteCmd struct {
	ItemID string `arg:"" help:"Pending block ID."`
	Yes    bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ItemDeleteCmd) Run(ctx *cli.Context) error {
	ok, err := cli.Confirm(c.Yes, "Delete this block?", c.ItemID)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}
	return mutateItem(ctx, c.ItemID, "", func(bg context.Context, now time.Time) (hotset.Result, error) {
		return ctx.Service.DeleteBlock(bg, c.ItemID, now)
	})
}

type ActivityInsertCmd struct {
	SessionID string `arg:"" help:"Session ID."`
	Name      string `arg:"" help:"Activity name."`
	Minutes   int    `arg:"" help:"Duration in minutes."`
	Type      string `help:"Block type." default:"activity" enum:"activity,meal,company_move,camera_reset,lighting_reset,crew_call,first_shot,wrap"`
	After     string `help:"Insert after this item. Omit to append."`
	At        string `help:"Evaluate at this time (HH:MM or RFC 3339). Defaults to now."`
}

func (c *ActivityInsertCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	now, err := ctx.SessionTime(bg, c.SessionID, c.At)
	if err != nil {
		return err
	}
	res, err := ctx.Service.InsertActivity(bg, c.SessionID, hotset.ActivitySpec{
		BlockType:       models.BlockType(c.Type),
		Name:            c.Name,
		DurationMinutes: c.Minutes,
		InsertAfterID:   c.After,
	}, now)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Inserted %s (%dm)\n\n", c.Name, c.Minutes)
	ctx.RenderResult(res)
	return nil
}

func mutateItem(ctx *cli.Context, itemID, at string, fn func(context.Context, time.Time) (hotset.Result, error)) error {
	bg := context.Background()
	now, err := ctx.ItemTime(bg, itemID, at)
	if err != nil {
		return err
	}
	res, err := fn(bg, now)
	if err != nil {
		return err
	}
	if i := findProjected(res, itemID); i >= 0 {
		p := res.Projected[i]
		ctx.Printf("✓ %s: %s\n\n", p.Name, p.Status)
	} else {
		ctx.Printf("✓ Updated %s\n\n", itemID)
	}
	ctx.RenderResult(res)
	return nil
}

func findProjected(res hotset.Result, itemID string) int {
	for i, p := range res.Projected {
		if p.ItemID == itemID {
			return i
		}
	}
	return -1
}
