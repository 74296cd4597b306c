// Package optimizer generates ranked catch-up suggestions for a day that is
// running behind, and applies a chosen suggestion to a snapshot.
package optimizer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/scheduler"
	"github.com/julianstephens/hotset/internal/utils"
	"github.com/julianstephens/hotset/internal/variance"
)

// Generator builds catch-up suggestions. It holds no state besides the
// policy, so Generate is safe for concurrent use.
type Generator struct {
	policy    models.Policy
	scheduler *scheduler.Scheduler
	variance  *variance.Engine
}

// NewGenerator creates a new Generator
func NewGenerator(policy models.Policy) *Generator {
	return &Generator{
		policy:    policy,
		scheduler: scheduler.New(),
		variance:  variance.New(policy),
	}
}

// Generate returns the suggestions for snap at now. Identical input always
// yields identical, identically ordered output.
//
// When the day is behind, actionable time savers are taken in rank order
// until they cover the deficit. If they cannot, scenes to cut or move are
// proposed and an extend_day suggestion absorbs what is left. Compliance
// warnings come last and are produced even when the day is on schedule.
func (g *Generator) Generate(snap models.Snapshot, now time.Time) []models.Suggestion {
	if snap.Session.IsReadOnly() {
		return nil
	}

	projected := g.scheduler.Build(snap, now)
	deviation := g.variance.RealTimeDeviation(snap.Session, snap.Items, now)
	warnings := g.warnings(snap, projected)

	if !g.variance.IsBehind(deviation) {
		return warnings
	}
	need := -deviation

	savers := g.timeSavers(snap)
	Rank(savers)

	var out []models.Suggestion
	covered := 0
	for _, s := range savers {
		if covered >= need {
			break
		}
		out = append(out, s)
		covered += s.TimeSavedMinutes
	}

	if covered < need {
		remaining := need - covered
		out = append(out, g.humanDecisions(snap, remaining)...)
		out = append(out, g.extendDay(snap, projected, remaining))
	}

	return append(out, warnings...)
}

// Rank orders suggestions by time saved (most first), then impact (least
// disruptive first), then id.
func Rank(s []models.Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].TimeSavedMinutes != s[j].TimeSavedMinutes {
			return s[i].TimeSavedMinutes > s[j].TimeSavedMinutes
		}
		if s[i].Impact.Rank() != s[j].Impact.Rank() {
			return s[i].Impact.Rank() < s[j].Impact.Rank()
		}
		return s[i].ID < s[j].ID
	})
}

// Find returns the suggestion with the given id.
func Find(suggestions []models.Suggestion, id string) (models.Suggestion, bool) {
	for _, s := range suggestions {
		if s.ID == id {
			return s, true
		}
	}
	return models.Suggestion{}, false
}

func (g *Generator) timeSavers(snap models.Snapshot) []models.Suggestion {
	var out []models.Suggestion
	pending := pendingItems(snap.Items)

	for _, item := range pending {
		switch {
		case item.IsBlock() && item.BlockType == models.BlockMeal:
			if s, ok := g.shortenMeal(item); ok {
				out = append(out, s)
			}
		case item.IsBlock() && item.BlockType == models.BlockActivity && !item.Essential:
			if item.PlannedMinutes() > 0 {
				out = append(out, skipActivity(item))
			}
		}
	}

	out = append(out, g.combineSetups(pending)...)
	out = append(out, g.consolidations(pending)...)
	return out
}

func (g *Generator) shortenMeal(item models.ScheduleItem) (models.Suggestion, bool) {
	planned := item.PlannedMinutes()
	if planned <= g.policy.MinMealMinutes {
		return models.Suggestion{}, false
	}
	return models.Suggestion{
		ID:               suggestionID(models.SuggestShortenMeal, item.ID),
		Type:             models.SuggestShortenMeal,
		Description:      fmt.Sprintf("Shorten %s from %d to %d minutes", item.Label(), planned, g.policy.MinMealMinutes),
		TimeSavedMinutes: planned - g.policy.MinMealMinutes,
		Impact:           models.ImpactMedium,
		ComplianceNote: fmt.Sprintf("Meal breaks may not drop below %d minutes; confirm the applicable union agreement before shortening",
			g.policy.MinMealMinutes),
		Actionable: true,
		ActionData: map[string]interface{}{
			"item_id":          item.ID,
			"current_minutes":  planned,
			"proposed_minutes": g.policy.MinMealMinutes,
		},
	}, true
}

func skipActivity(item models.ScheduleItem) models.Suggestion {
	return models.Suggestion{
		ID:               suggestionID(models.SuggestSkipActivity, item.ID),
		Type:             models.SuggestSkipActivity,
		Description:      fmt.Sprintf("Skip %s (%d minutes)", item.Label(), item.PlannedMinutes()),
		TimeSavedMinutes: item.PlannedMinutes(),
		Impact:           models.ImpactLow,
		Actionable:       true,
		ActionData:       map[string]interface{}{"item_id": item.ID},
	}
}

// combineSetups finds runs of back-to-back pending scenes on the same set.
// Every scene after the first in a run shares the previous setup, unless it
// already had its setup reduced.
func (g *Generator) combineSetups(pending []models.ScheduleItem) []models.Suggestion {
	if g.policy.SetupOverlapMin <= 0 {
		return nil
	}
	var out []models.Suggestion
	for i := 0; i < len(pending); {
		j := i + 1
		for j < len(pending) && sameSet(pending[i], pending[j]) {
			j++
		}
		if run := pending[i:j]; len(run) >= 2 {
			ids := []string{run[0].ID}
			saved := 0
			for _, sc := range run[1:] {
				if sc.SetupReducedMinutes > 0 {
					continue
				}
				ids = append(ids, sc.ID)
				saved += min(g.policy.SetupOverlapMin, sc.EstimatedMinutes)
			}
			if len(ids) >= 2 && saved > 0 {
				out = append(out, models.Suggestion{
					ID:   suggestionID(models.SuggestCombineSetups, ids...),
					Type: models.SuggestCombineSetups,
					Description: fmt.Sprintf("Combine setups for %d consecutive scenes on %s",
						len(run), run[0].SetName),
					TimeSavedMinutes: saved,
					Impact:           models.ImpactLow,
					Actionable:       true,
					ActionData: map[string]interface{}{
						"item_ids":     ids,
						"overlap_each": g.policy.SetupOverlapMin,
						"set_name":     run[0].SetName,
					},
				})
			}
		}
		i = j
	}
	return out
}

// consolidations pairs each pending scene with the closest earlier pending
// scene on the same set when something else is scheduled between them.
func (g *Generator) consolidations(pending []models.ScheduleItem) []models.Suggestion {
	if g.policy.SetupOverlapMin <= 0 {
		return nil
	}
	var out []models.Suggestion
	lastOnSet := map[string]int{}
	for i, item := range pending {
		if !item.IsScene() || item.SetName == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(item.SetName))
		if prev, ok := lastOnSet[key]; ok && prev != i-1 && item.SetupReducedMinutes == 0 {
			anchor := pending[prev]
			saved := min(g.policy.SetupOverlapMin, item.EstimatedMinutes)
			if saved > 0 {
				out = append(out, models.Suggestion{
					ID:               suggestionID(models.SuggestSceneConsolidation, anchor.ID, item.ID),
					Type:             models.SuggestSceneConsolidation,
					Description:      fmt.Sprintf("Shoot %s right after %s to stay on %s", item.Label(), anchor.Label(), item.SetName),
					TimeSavedMinutes: saved,
					Impact:           models.ImpactMedium,
					Actionable:       true,
					ActionData: map[string]interface{}{
						"item_id":        item.ID,
						"after_id":       anchor.ID,
						"reduce_minutes": saved,
					},
				})
			}
		}
		lastOnSet[key] = i
	}
	return out
}

// humanDecisions proposes cutting or moving the longest pending scenes until
// their combined length could cover the remaining deficit.
func (g *Generator) humanDecisions(snap models.Snapshot, remaining int) []models.Suggestion {
	var scenes []models.ScheduleItem
	for _, item := range pendingItems(snap.Items) {
		if item.IsScene() && item.EstimatedMinutes > 0 {
			scenes = append(scenes, item)
		}
	}
	sort.SliceStable(scenes, func(i, j int) bool {
		if scenes[i].EstimatedMinutes != scenes[j].EstimatedMinutes {
			return scenes[i].EstimatedMinutes > scenes[j].EstimatedMinutes
		}
		return scenes[i].ID < scenes[j].ID
	})

	var out []models.Suggestion
	potential := 0
	for _, sc := range scenes {
		if potential >= remaining {
			break
		}
		potential += sc.EstimatedMinutes
		out = append(out,
			models.Suggestion{
				ID:          suggestionID(models.SuggestCutScene, sc.ID),
				Type:        models.SuggestCutScene,
				Description: fmt.Sprintf("Cut %s (%d minutes); needs sign-off from the director and producer", sc.Label(), sc.EstimatedMinutes),
				Impact:      models.ImpactHigh,
				Actionable:  true,
				ActionData:  map[string]interface{}{"item_id": sc.ID, "potential_minutes": sc.EstimatedMinutes},
			},
			models.Suggestion{
				ID:          suggestionID(models.SuggestSceneMove, sc.ID),
				Type:        models.SuggestSceneMove,
				Description: fmt.Sprintf("Move %s to another day (%d minutes); see swap suggestions", sc.Label(), sc.EstimatedMinutes),
				Impact:      models.ImpactHigh,
				Actionable:  true,
				ActionData:  map[string]interface{}{"item_id": sc.ID, "potential_minutes": sc.EstimatedMinutes},
			},
		)
	}
	return out
}

func (g *Generator) extendDay(snap models.Snapshot, projected []models.ProjectedItem, minutes int) models.Suggestion {
	call := snap.Session.PlannedCallTime
	if snap.Session.ActualStartTime != nil {
		call = *snap.Session.ActualStartTime
	}
	wrap := plannedWrap(snap, projected)
	workday := utils.MinutesBetween(call, wrap) + minutes

	note := fmt.Sprintf("Extending the day adds %d minutes of overtime; workday becomes %d minutes", minutes, workday)
	if workday > g.policy.MaxWorkdayMinutes {
		note += fmt.Sprintf(", over the %d-minute maximum", g.policy.MaxWorkdayMinutes)
	}

	return models.Suggestion{
		ID:               suggestionID(models.SuggestExtendDay, snap.Session.ID),
		Type:             models.SuggestExtendDay,
		Description:      fmt.Sprintf("Extend wrap by %d minutes to %s", minutes, utils.FormatClock(utils.AddMinutes(wrap, minutes), snap.Session.Timezone)),
		TimeSavedMinutes: minutes,
		Impact:           models.ImpactHigh,
		ComplianceNote:   note,
		Actionable:       true,
		ActionData: map[string]interface{}{
			"minutes":      minutes,
			"planned_wrap": wrap,
		},
	}
}

func (g *Generator) warnings(snap models.Snapshot, projected []models.ProjectedItem) []models.Suggestion {
	var out []models.Suggestion
	if s, ok := g.mealPenalty(snap, projected); ok {
		out = append(out, s)
	}
	if s, ok := g.wrapExtension(snap, projected); ok {
		out = append(out, s)
	}
	return out
}

// mealPenalty warns when the next meal is projected to start later than the
// meal interval allows, counted from day start or the end of the last meal.
func (g *Generator) mealPenalty(snap models.Snapshot, projected []models.ProjectedItem) (models.Suggestion, bool) {
	anchor := snap.Session.PlannedCallTime
	if snap.Session.ActualStartTime != nil {
		anchor = *snap.Session.ActualStartTime
	}

	var next *models.ProjectedItem
	for i := range projected {
		p := &projected[i]
		if p.Type != string(models.BlockMeal) {
			continue
		}
		if p.Status == models.ItemCompleted || p.Status == models.ItemInProgress {
			anchor = p.ProjectedEndTime
			next = nil
			continue
		}
		if p.Status == models.ItemPending && next == nil {
			next = p
		}
	}

	deadline := utils.AddMinutes(anchor, g.policy.MealIntervalMin)
	tz := snap.Session.Timezone

	if next != nil {
		if !next.ProjectedStartTime.After(deadline) {
			return models.Suggestion{}, false
		}
		late := utils.MinutesBetween(deadline, next.ProjectedStartTime)
		return models.Suggestion{
			ID:             suggestionID(models.SuggestMealPenaltyWarning, next.ItemID),
			Type:           models.SuggestMealPenaltyWarning,
			Description:    fmt.Sprintf("%s is projected at %s, %d minutes past the meal deadline of %s", next.Name, utils.FormatClock(next.ProjectedStartTime, tz), late, utils.FormatClock(deadline, tz)),
			Impact:         models.ImpactHigh,
			ComplianceNote: fmt.Sprintf("Crew must be fed within %d minutes; meal penalties may apply", g.policy.MealIntervalMin),
			ActionData:     map[string]interface{}{"item_id": next.ItemID, "minutes_late": late},
		}, true
	}

	wrap := scheduler.ProjectedWrap(projected, snap.Session.PlannedCallTime)
	if !wrap.After(deadline) {
		return models.Suggestion{}, false
	}
	late := utils.MinutesBetween(deadline, wrap)
	return models.Suggestion{
		ID:             suggestionID(models.SuggestMealPenaltyWarning, snap.Session.ID),
		Type:           models.SuggestMealPenaltyWarning,
		Description:    fmt.Sprintf("No meal scheduled before the %s deadline; the day runs %d minutes past it", utils.FormatClock(deadline, tz), late),
		Impact:         models.ImpactHigh,
		ComplianceNote: fmt.Sprintf("Crew must be fed within %d minutes; meal penalties may apply", g.policy.MealIntervalMin),
		ActionData:     map[string]interface{}{"minutes_late": late},
	}, true
}

func (g *Generator) wrapExtension(snap models.Snapshot, projected []models.ProjectedItem) (models.Suggestion, bool) {
	if snap.Session.PlannedWrapTime == nil || len(projected) == 0 {
		return models.Suggestion{}, false
	}
	planned := *snap.Session.PlannedWrapTime
	wrap := scheduler.ProjectedWrap(projected, snap.Session.PlannedCallTime)
	if !wrap.After(planned) {
		return models.Suggestion{}, false
	}
	over := utils.MinutesBetween(planned, wrap)
	tz := snap.Session.Timezone

	call := snap.Session.PlannedCallTime
	if snap.Session.ActualStartTime != nil {
		call = *snap.Session.ActualStartTime
	}
	note := fmt.Sprintf("Overtime of %d minutes past planned wrap", over)
	if workday := utils.MinutesBetween(call, wrap); workday > g.policy.MaxWorkdayMinutes {
		note += fmt.Sprintf("; %d-minute workday exceeds the %d-minute maximum", workday, g.policy.MaxWorkdayMinutes)
	}

	return models.Suggestion{
		ID:             suggestionID(models.SuggestWrapExtensionWarning, snap.Session.ID),
		Type:           models.SuggestWrapExtensionWarning,
		Description:    fmt.Sprintf("Projected wrap %s is %d minutes past planned wrap %s", utils.FormatClock(wrap, tz), over, utils.FormatClock(planned, tz)),
		Impact:         models.ImpactHigh,
		ComplianceNote: note,
		ActionData:     map[string]interface{}{"overrun_minutes": over},
	}, true
}

func plannedWrap(snap models.Snapshot, projected []models.ProjectedItem) time.Time {
	if snap.Session.PlannedWrapTime != nil {
		return *snap.Session.PlannedWrapTime
	}
	if len(projected) == 0 {
		return snap.Session.PlannedCallTime
	}
	return projected[len(projected)-1].PlannedEndTime()
}

func pendingItems(items []models.ScheduleItem) []models.ScheduleItem {
	var out []models.ScheduleItem
	for _, item := range items {
		if item.Status == models.ItemPending {
			out = append(out, item)
		}
	}
	return out
}

func sameSet(a, b models.ScheduleItem) bool {
	if !a.IsScene() || !b.IsScene() || a.SetName == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a.SetName), strings.TrimSpace(b.SetName))
}

func suggestionID(t models.SuggestionType, ids ...string) string {
	return string(t) + ":" + strings.Join(ids, ",")
}
