package models

import "time"

// ProjectedItem is one row of the live timeline. It is derived from the
// ordered items on every read and never persisted.
type ProjectedItem struct {
	ItemID                 string     `json:"item_id"`
	Kind                   ItemKind   `json:"kind"`
	Type                   string     `json:"type"`
	Name                   string     `json:"name"`
	Description            string     `json:"description,omitempty"`
	PlannedStartTime       time.Time  `json:"planned_start_time"`
	PlannedDurationMinutes int        `json:"planned_duration_minutes"`
	ProjectedStartTime     time.Time  `json:"projected_start_time"`
	ProjectedEndTime       time.Time  `json:"projected_end_time"`
	ActualStartTime        *time.Time `json:"actual_start_time,omitempty"`
	ActualDurationMinutes  *int       `json:"actual_duration_minutes,omitempty"`
	Status                 ItemStatus `json:"status"`
	VarianceFromPlan       int        `json:"variance_from_plan"`
	IsCurrent              bool       `json:"is_current"`
}

// PlannedEndTime is PlannedStartTime plus the planned duration.
func (p ProjectedItem) PlannedEndTime() time.Time {
	return p.PlannedStartTime.Add(time.Duration(p.PlannedDurationMinutes) * time.Minute)
}
