// Package swap scores scenes from other shoot days as replacements for a
// scene on the active day.
package swap

import (
	"math"
	"sort"
	"strings"

	"github.com/julianstephens/hotset/internal/models"
)

// Matcher scores swap candidates with additive, capped criteria.
type Matcher struct {
	weights models.SwapWeights
}

func NewMatcher(weights models.SwapWeights) *Matcher {
	return &Matcher{weights: weights}
}

// Score rates candidate against target on a 0-100 scale. dayDistance is the
// absolute difference between the two days' numbers.
func (m *Matcher) Score(target, candidate models.ScheduleItem, dayDistance int) (float64, []models.MatchReason) {
	var score float64
	var reasons []models.MatchReason

	if pts := m.durationPoints(target.EstimatedMinutes, candidate.EstimatedMinutes); pts > 0 {
		score += pts
		reasons = append(reasons, models.ReasonDuration)
	}
	if matches(target.SetName, candidate.SetName) {
		score += m.weights.SameSet
		reasons = append(reasons, models.ReasonSameSet)
	}
	if pts := m.adjacencyPoints(dayDistance); pts > 0 {
		score += pts
		reasons = append(reasons, models.ReasonAdjacent)
	}
	if matches(target.IntExt, candidate.IntExt) {
		score += m.weights.IntExt
		reasons = append(reasons, models.ReasonIntExt)
	}
	if matches(target.TimeOfDay, candidate.TimeOfDay) {
		score += m.weights.TimeOfDay
		reasons = append(reasons, models.ReasonTimeOfDay)
	}

	if score > 100 {
		score = 100
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return math.Round(score*100) / 100, reasons
}

// durationPoints gives full credit up to DurationFull minutes of difference,
// falling linearly to zero at DurationZero.
func (m *Matcher) durationPoints(a, b int) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	full, zero := m.weights.DurationFull, m.weights.DurationZero
	switch {
	case diff <= full:
		return m.weights.Duration
	case diff >= zero:
		return 0
	default:
		return m.weights.Duration * float64(zero-diff) / float64(zero-full)
	}
}

// adjacencyPoints rewards neighbouring days: full weight one day apart, one
// step less for each further day, nothing past MaxDayDistance.
func (m *Matcher) adjacencyPoints(distance int) float64 {
	far := m.weights.MaxDayDistance
	if distance < 1 || distance > far {
		return 0
	}
	return m.weights.Adjacency * (1 - float64(distance-1)/float64(far))
}

// Suggest scores every pending scene of the other days against the target
// scene and returns the best limit of them. Wrapped days and the target's
// own day are ignored.
func (m *Matcher) Suggest(target models.ScheduleItem, targetDay models.Session, others []models.Snapshot, limit int) []models.SwapSuggestion {
	type ranked struct {
		models.SwapSuggestion
		distance int
	}
	var all []ranked

	for _, day := range others {
		if day.Session.ID == targetDay.ID || day.Session.IsReadOnly() {
			continue
		}
		distance := day.Session.DayNumber - targetDay.DayNumber
		if distance < 0 {
			distance = -distance
		}
		for _, item := range day.Items {
			if !item.IsScene() || item.Status != models.ItemPending {
				continue
			}
			score, reasons := m.Score(target, item, distance)
			if reasons == nil {
				reasons = []models.MatchReason{}
			}
			all = append(all, ranked{
				SwapSuggestion: models.SwapSuggestion{
					SceneID:          item.ID,
					SessionID:        day.Session.ID,
					ProductionDayID:  day.Session.ProductionDayID,
					DayNumber:        day.Session.DayNumber,
					SceneNumber:      item.SceneNumber,
					SetName:          item.SetName,
					MatchScore:       score,
					MatchReasons:     reasons,
					EstimatedMinutes: item.EstimatedMinutes,
				},
				distance: distance,
			})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].MatchScore != all[j].MatchScore {
			return all[i].MatchScore > all[j].MatchScore
		}
		if all[i].distance != all[j].distance {
			return all[i].distance < all[j].distance
		}
		return all[i].SceneID < all[j].SceneID
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]models.SwapSuggestion, len(all))
	for i := range all {
		out[i] = all[i].SwapSuggestion
	}
	return out
}

func matches(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}
