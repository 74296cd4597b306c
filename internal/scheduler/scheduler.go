// Package scheduler derives the live projected timeline from a session's
// ordered schedule items.
package scheduler

import (
	"time"

	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/utils"
)

type Scheduler struct{}

func New() *Scheduler {
	return &Scheduler{}
}

// Build reflows the day in a single pass over the items in Position order.
// now is only consulted for the in-progress item, whose projected end never
// lies in the past.
func (s *Scheduler) Build(snap models.Snapshot, now time.Time) []models.ProjectedItem {
	now = now.UTC()
	out := make([]models.ProjectedItem, 0, len(snap.Items))

	plannedCursor := snap.Session.PlannedCallTime.UTC()
	projectedCursor := plannedCursor
	if snap.Session.ActualStartTime != nil {
		projectedCursor = snap.Session.ActualStartTime.UTC()
	}

	currentIdx := -1
	firstPendingIdx := -1

	for i, item := range snap.Items {
		planned := item.PlannedMinutes()

		// Step 1: planned position. Fixed blocks anchor the plan; everything
		// else follows the previous planned end.
		plannedStart := plannedCursor
		if item.IsBlock() && item.ExpectedStartTime != nil {
			plannedStart = item.ExpectedStartTime.UTC()
		}
		if i == 0 && snap.Session.ActualStartTime == nil {
			projectedCursor = plannedStart
		}
		plannedCursor = utils.AddMinutes(plannedStart, planned)

		p := models.ProjectedItem{
			ItemID:                 item.ID,
			Kind:                   item.Kind,
			Type:                   item.TypeName(),
			Name:                   item.Label(),
			Description:            describe(item),
			PlannedStartTime:       plannedStart,
			PlannedDurationMinutes: planned,
			ActualStartTime:        item.ActualStartTime,
			ActualDurationMinutes:  item.ActualDurationMinutes,
			Status:                 item.Status,
		}

		// Step 2: projected position from actuals where they exist.
		switch item.Status {
		case models.ItemCompleted:
			start := projectedCursor
			if item.ActualStartTime != nil {
				start = item.ActualStartTime.UTC()
			}
			actual := planned
			if item.ActualDurationMinutes != nil {
				actual = *item.ActualDurationMinutes
			}
			end := utils.AddMinutes(start, actual)
			if item.ActualEndTime != nil {
				end = item.ActualEndTime.UTC()
			}
			p.ProjectedStartTime, p.ProjectedEndTime = start, end
			p.VarianceFromPlan = planned - actual

		case models.ItemInProgress:
			start := projectedCursor
			if item.ActualStartTime != nil {
				start = item.ActualStartTime.UTC()
			}
			end := utils.AddMinutes(start, planned)
			if now.After(end) {
				end = now
			}
			p.ProjectedStartTime, p.ProjectedEndTime = start, end
			currentIdx = i

		case models.ItemSkipped, models.ItemSwappedOut:
			// Zero-length marker, unless the item ran for a while before it
			// was abandoned.
			start, end := projectedCursor, projectedCursor
			if item.ActualStartTime != nil && item.ActualEndTime != nil {
				start, end = item.ActualStartTime.UTC(), item.ActualEndTime.UTC()
			}
			p.ProjectedStartTime, p.ProjectedEndTime = start, end

		default:
			p.ProjectedStartTime = projectedCursor
			p.ProjectedEndTime = utils.AddMinutes(projectedCursor, planned)
			if firstPendingIdx < 0 {
				firstPendingIdx = i
			}
		}

		projectedCursor = p.ProjectedEndTime
		out = append(out, p)
	}

	if currentIdx < 0 {
		currentIdx = firstPendingIdx
	}
	if currentIdx >= 0 && snap.Session.Status != models.SessionWrapped {
		out[currentIdx].IsCurrent = true
	}
	return out
}

// ProjectedWrap is the projected end of the last item, or the planned call
// time for an empty day.
func ProjectedWrap(items []models.ProjectedItem, call time.Time) time.Time {
	if len(items) == 0 {
		return call
	}
	return items[len(items)-1].ProjectedEndTime
}

// Current returns the item flagged IsCurrent.
func Current(items []models.ProjectedItem) (models.ProjectedItem, bool) {
	for _, p := range items {
		if p.IsCurrent {
			return p, true
		}
	}
	return models.ProjectedItem{}, false
}

func describe(item models.ScheduleItem) string {
	if item.IsScene() {
		if item.IntExt != "" || item.TimeOfDay != "" {
			prefix := item.IntExt
			if item.TimeOfDay != "" {
				if prefix != "" {
					prefix += " "
				}
				prefix += item.TimeOfDay
			}
			if item.Description == "" {
				return prefix
			}
			return prefix + " - " + item.Description
		}
		return item.Description
	}
	if item.LocationName != "" && item.Notes != "" {
		return item.LocationName + " - " + item.Notes
	}
	if item.LocationName != "" {
		return item.LocationName
	}
	return item.Notes
}
