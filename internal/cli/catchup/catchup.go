package catchup

import (
	"context"
	"fmt"

	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/models"
)

type SuggestCmd struct {
	SessionID string `arg:"" help:"Session ID."`
	At        string `help:"Evaluate at this time (HH:MM or RFC 3339). Defaults to now."`
}

func (c *SuggestCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	now, err := ctx.SessionTime(bg, c.SessionID, c.At)
	if err != nil {
		return err
	}
	report, err := ctx.Service.GetVariance(bg, c.SessionID, now)
	if err != nil {
		return err
	}
	ctx.Printf("%s\n", cli.RenderVariance(report))

	suggestions, err := ctx.Service.GetCatchUpSuggestions(bg, c.SessionID, now)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		ctx.Println("✅ Nothing to recover.")
		return nil
	}
	for i, s := range suggestions {
		displaySuggestion(ctx, i+1, s)
	}
	return nil
}

type ApplyCmd struct {
	SessionID    string `arg:"" help:"Session ID."`
	SuggestionID string `arg:"" help:"Suggestion ID from 'hotset suggest'."`
	At           string `help:"Evaluate at this time (HH:MM or RFC 3339). Defaults to now."`
	Yes          bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *ApplyCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	now, err := ctx.SessionTime(bg, c.SessionID, c.At)
	if err != nil {
		return err
	}

	suggestions, err := ctx.Service.GetCatchUpSuggestions(bg, c.SessionID, now)
	if err != nil {
		return err
	}
	var target *models.Suggestion
	for i := range suggestions {
		if suggestions[i].ID == c.SuggestionID {
			target = &suggestions[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("suggestion %q is no longer offered, run 'hotset suggest %s' again", c.SuggestionID, c.SessionID)
	}
	if !target.Actionable {
		return fmt.Errorf("%s is advisory and cannot be applied", target.Type)
	}
	if target.Type == models.SuggestSceneMove {
		return fmt.Errorf("scene moves are made with 'hotset swap suggest %s <scene>'", c.SessionID)
	}

	desc := target.Description
	if target.ComplianceNote != "" {
		desc += "\n" + target.ComplianceNote
	}
	ok, err := cli.Confirm(c.Yes, "Apply this suggestion?", desc)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Not applied.")
		return nil
	}

	res, err := ctx.Service.ApplySuggestion(bg, c.SessionID, c.SuggestionID, now)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Applied %s\n\n", target.Type)
	ctx.RenderResult(res)
	return nil
}

func displaySuggestion(ctx *cli.Context, num int, s models.Suggestion) {
	var icon string
	switch s.Type {
	case models.SuggestShortenMeal:
		icon = "🍽️ "
	case models.SuggestSkipActivity:
		icon = "⏭️ "
	case models.SuggestCombineSetups, models.SuggestSceneConsolidation:
		icon = "🔗"
	case models.SuggestCutScene, models.SuggestSceneMove:
		icon = "✂️ "
	case models.SuggestExtendDay:
		icon = "⏱️ "
	default:
		icon = "⚠️ "
	}

	ctx.Printf("%d. %s %s\n", num, icon, s.Description)
	if s.TimeSavedMinutes > 0 {
		ctx.Printf("   Saves: %dm  Impact: %s\n", s.TimeSavedMinutes, s.Impact)
	} else {
		ctx.Printf("   Impact: %s\n", s.Impact)
	}
	if s.ComplianceNote != "" {
		ctx.Printf("   Note: %s\n", s.ComplianceNote)
	}
	switch {
	case s.Type == models.SuggestSceneMove:
		ctx.Printf("   Swap: hotset swap suggest <session> %s\n", s.ActionData["item_id"])
	case s.Actionable:
		ctx.Printf("   Apply: hotset apply <session> %s\n", s.ID)
	}
	ctx.Println()
}
