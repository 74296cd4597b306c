// Package variance computes how far a shoot day is ahead of or behind plan.
//
// Two metrics are reported. Cumulative variance is the time gained or lost on
// work that is already finished. Real-time deviation compares planned
// progress with the wall clock, so it also captures an overrunning current
// item and idle gaps between items. Positive values mean ahead in both.
package variance

import (
	"time"

	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/utils"
)

type Status string

const (
	StatusAhead               Status = "ahead"
	StatusOnSchedule          Status = "on_schedule"
	StatusBehind              Status = "behind"
	StatusSignificantlyBehind Status = "significantly_behind"
)

// Report bundles both metrics for one session at one instant.
type Report struct {
	SessionID          string    `json:"session_id"`
	CumulativeVariance int       `json:"cumulative_variance"`
	RealTimeDeviation  int       `json:"real_time_deviation"`
	Status             Status    `json:"status"`
	CompletedItems     int       `json:"completed_items"`
	RemainingItems     int       `json:"remaining_items"`
	ComputedAt         time.Time `json:"computed_at"`
}

// Engine classifies variance against the configured thresholds.
type Engine struct {
	tolerance   int
	significant int
}

func New(policy models.Policy) *Engine {
	return &Engine{
		tolerance:   policy.OnScheduleToleranceMin,
		significant: policy.SignificantlyBehindMin,
	}
}

// CumulativeVariance sums planned minus actual duration over completed items.
// Skipped and swapped-out items contribute nothing.
func (e *Engine) CumulativeVariance(items []models.ScheduleItem) int {
	total := 0
	for _, item := range items {
		if item.Status != models.ItemCompleted {
			continue
		}
		actual := item.PlannedMinutes()
		if item.ActualDurationMinutes != nil {
			actual = *item.ActualDurationMinutes
		}
		total += item.PlannedMinutes() - actual
	}
	return total
}

// RealTimeDeviation is the planned minutes of work the crew has got through
// minus the wall-clock minutes since the day started. A day that has not
// started yet is behind by however long its call time has passed. For a
// wrapped day the clock stops at wrap.
func (e *Engine) RealTimeDeviation(session models.Session, items []models.ScheduleItem, now time.Time) int {
	if session.ActualStartTime == nil {
		late := utils.MinutesBetween(session.PlannedCallTime, now)
		if late < 0 {
			return 0
		}
		return -late
	}
	if session.ActualWrapTime != nil && now.After(*session.ActualWrapTime) {
		now = *session.ActualWrapTime
	}

	elapsed := utils.MinutesBetween(*session.ActualStartTime, now)
	if elapsed < 0 {
		elapsed = 0
	}

	progress := 0
	for _, item := range items {
		switch item.Status {
		case models.ItemCompleted, models.ItemSkipped:
			progress += item.PlannedMinutes()
		case models.ItemInProgress:
			if item.ActualStartTime == nil {
				continue
			}
			running := utils.MinutesBetween(*item.ActualStartTime, now)
			if running < 0 {
				running = 0
			}
			if running > item.PlannedMinutes() {
				running = item.PlannedMinutes()
			}
			progress += running
		}
	}
	return progress - elapsed
}

// Classify maps a deviation onto a status. |v| within tolerance is on
// schedule; below -significant is significantly behind.
func (e *Engine) Classify(v int) Status {
	switch {
	case v > e.tolerance:
		return StatusAhead
	case v >= -e.tolerance:
		return StatusOnSchedule
	case v >= -e.significant:
		return StatusBehind
	default:
		return StatusSignificantlyBehind
	}
}

// IsBehind reports whether a deviation should trigger catch-up suggestions.
func (e *Engine) IsBehind(v int) bool {
	return v < -e.tolerance
}

// Report computes both metrics for snap at now. The status follows the
// real-time deviation.
func (e *Engine) Report(snap models.Snapshot, now time.Time) Report {
	r := Report{
		SessionID:          snap.Session.ID,
		CumulativeVariance: e.CumulativeVariance(snap.Items),
		RealTimeDeviation:  e.RealTimeDeviation(snap.Session, snap.Items, now),
		ComputedAt:         now.UTC(),
	}
	r.Status = e.Classify(r.RealTimeDeviation)
	for _, item := range snap.Items {
		switch item.Status {
		case models.ItemCompleted:
			r.CompletedItems++
		case models.ItemPending, models.ItemInProgress:
			r.RemainingItems++
		}
	}
	return r
}
