package swaps

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/hotset/internal/cli"
)

type SwapSuggestCmd struct {
	SessionID string `arg:"" help:"Session of the scene to replace."`
	SceneID   string `arg:"" help:"Scene to replace."`
	Limit     int    `help:"Maximum candidates. Defaults to the policy limit." default:"0"`
}

func (c *SwapSuggestCmd) Run(ctx *cli.Context) error {
	candidates, err := ctx.Service.GetSwapSuggestions(context.Background(), c.SessionID, c.SceneID, c.Limit)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		ctx.Println("No open days have a pending scene to swap in.")
		return nil
	}
	for i, s := range candidates {
		reasons := make([]string, len(s.MatchReasons))
		for j, r := range s.MatchReasons {
			reasons[j] = strings.ReplaceAll(string(r), "_", " ")
		}
		ctx.Printf("%d. Sc. %s %s  day %d  %dm  %.2f (%s)\n", i+1, s.SceneNumber, s.SetName, s.DayNumber, s.EstimatedMinutes, s.MatchScore, s.Bucket())
		if len(reasons) > 0 {
			ctx.Printf("   %s\n", strings.Join(reasons, ", "))
		}
		ctx.Printf("   hotset swap run %s %s %s %s\n", c.SessionID, c.SceneID, s.SceneID, s.SessionID)
	}
	return nil
}

type SwapRunCmd struct {
	SessionID       string `arg:"" help:"Session of the scene going out."`
	SceneOutID      string `arg:"" help:"Scene leaving this day."`
	SceneInID       string `arg:"" help:"Scene coming in from the source day."`
	SourceSessionID string `arg:"" help:"Session the incoming scene belongs to."`
	At              string `help:"Swap time (HH:MM or RFC 3339). Defaults to now."`
	Yes             bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *SwapRunCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	now, err := ctx.SessionTime(bg, c.SessionID, c.At)
	if err != nil {
		return err
	}

	ok, err := cli.Confirm(c.Yes, "Swap these scenes between days?",
		fmt.Sprintf("%s leaves this day and %s comes in from %s. Both days are written together.", c.SceneOutID, c.SceneInID, c.SourceSessionID))
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Swap cancelled.")
		return nil
	}

	res, err := ctx.Service.SwapScenes(bg, c.SessionID, c.SceneOutID, c.SceneInID, c.SourceSessionID, now)
	if err != nil {
		return err
	}
	ctx.Println("✓ Scenes swapped")
	ctx.Println()
	ctx.RenderResult(res.Target)
	ctx.Println()
	ctx.RenderResult(res.Source)
	return nil
}
