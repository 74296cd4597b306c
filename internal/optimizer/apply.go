package optimizer

import (
	"fmt"
	"time"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/lifecycle"
	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/utils"
)

// CutSceneReason is recorded as the skip reason of a scene cut to recover time.
const CutSceneReason = "cut to recover time"

// Apply performs the change a suggestion describes on snap. Warnings cannot
// be applied, and scene moves are carried out through a scene swap.
func Apply(snap *models.Snapshot, s models.Suggestion, now time.Time) error {
	if !s.Actionable {
		return apperr.NewValidation("suggestion", "%s is a warning and cannot be applied", s.ID)
	}

	switch s.Type {
	case models.SuggestShortenMeal:
		return lifecycle.SetPlannedMinutes(snap, stringField(s, "item_id"), intField(s, "proposed_minutes"))

	case models.SuggestSkipActivity:
		return lifecycle.Skip(snap, stringField(s, "item_id"), "skipped to recover time", now)

	case models.SuggestCombineSetups:
		overlap := intField(s, "overlap_each")
		ids := stringsField(s, "item_ids")
		if len(ids) < 2 {
			return apperr.NewValidation("suggestion", "%s has no scenes to combine", s.ID)
		}
		work := snap.Clone()
		for _, id := range ids[1:] {
			if err := lifecycle.ShareSetup(&work, id, overlap); err != nil {
				return err
			}
		}
		*snap = work
		return nil

	case models.SuggestSceneConsolidation:
		id := stringField(s, "item_id")
		work := snap.Clone()
		if err := lifecycle.Move(&work, id, stringField(s, "after_id")); err != nil {
			return err
		}
		if err := lifecycle.ShareSetup(&work, id, intField(s, "reduce_minutes")); err != nil {
			return err
		}
		*snap = work
		return nil

	case models.SuggestCutScene:
		return lifecycle.Skip(snap, stringField(s, "item_id"), CutSceneReason, now)

	case models.SuggestSceneMove:
		return apperr.NewInvalidState("scene move suggestion", s.ID, "", "apply")

	case models.SuggestExtendDay:
		if snap.Session.IsReadOnly() {
			return apperr.NewInvalidState("session", snap.Session.ID, string(snap.Session.Status), "extend")
		}
		wrap, ok := s.ActionData["planned_wrap"].(time.Time)
		if !ok {
			if snap.Session.PlannedWrapTime == nil {
				return apperr.NewValidation("suggestion", "%s has no planned wrap to extend", s.ID)
			}
			wrap = *snap.Session.PlannedWrapTime
		}
		extended := utils.AddMinutes(wrap, intField(s, "minutes")).UTC()
		snap.Session.PlannedWrapTime = &extended
		return nil

	default:
		return apperr.NewValidation("suggestion", "unknown suggestion type %q", s.Type)
	}
}

func stringField(s models.Suggestion, key string) string {
	v, _ := s.ActionData[key].(string)
	return v
}

// intField accepts float64 as well, for suggestions that went through JSON.
func intField(s models.Suggestion, key string) int {
	switch v := s.ActionData[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func stringsField(s models.Suggestion, key string) []string {
	switch v := s.ActionData[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, fmt.Sprint(e))
		}
		return out
	default:
		return nil
	}
}
