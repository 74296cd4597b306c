package models

import "time"

type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionWrapped    SessionStatus = "wrapped"
)

type DayType string

const (
	DayTypeShoot      DayType = "shoot"
	DayTypeSplit      DayType = "split"
	DayTypeNight      DayType = "night"
	DayTypeSecondUnit DayType = "second_unit"
)

// Session is the live state of one shoot day (the "hot set"). All times are
// UTC; Timezone is an IANA name used only for display.
type Session struct {
	ID              string        `json:"id"`
	ProductionDayID string        `json:"production_day_id"`
	DayNumber       int           `json:"day_number"`
	DayType         DayType       `json:"day_type"`
	Timezone        string        `json:"timezone"`
	PlannedCallTime time.Time     `json:"planned_call_time"`
	PlannedWrapTime *time.Time    `json:"planned_wrap_time,omitempty"`
	ActualStartTime *time.Time    `json:"actual_start_time,omitempty"`
	ActualWrapTime  *time.Time    `json:"actual_wrap_time,omitempty"`
	Status          SessionStatus `json:"status"`
	Version         int           `json:"version"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsReadOnly reports whether the session has been archived by a wrap.
func (s Session) IsReadOnly() bool {
	return s.Status == SessionWrapped
}

// Snapshot is a session together with its ordered schedule items, as read in
// one consistent view. Items are sorted by Position.
type Snapshot struct {
	Session Session        `json:"session"`
	Items   []ScheduleItem `json:"items"`
}

// Item returns the index of the item with the given id, or -1.
func (s Snapshot) Item(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy that can be mutated without touching s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Session: s.Session, Items: make([]ScheduleItem, len(s.Items))}
	for i, item := range s.Items {
		out.Items[i] = item.Clone()
	}
	if s.Session.PlannedWrapTime != nil {
		t := *s.Session.PlannedWrapTime
		out.Session.PlannedWrapTime = &t
	}
	if s.Session.ActualStartTime != nil {
		t := *s.Session.ActualStartTime
		out.Session.ActualStartTime = &t
	}
	if s.Session.ActualWrapTime != nil {
		t := *s.Session.ActualWrapTime
		out.Session.ActualWrapTime = &t
	}
	return out
}

// DaySummary is the read-only finalized view handed to the reporting module.
type DaySummary struct {
	SessionID            string     `json:"session_id"`
	ProductionDayID      string     `json:"production_day_id"`
	DayNumber            int        `json:"day_number"`
	Status               string     `json:"status"`
	CallTime             *time.Time `json:"call_time,omitempty"`
	WrapTime             *time.Time `json:"wrap_time,omitempty"`
	TotalShootingMinutes int        `json:"total_shooting_minutes"`
	ScenesCompleted      int        `json:"scenes_completed"`
	ScenesSkipped        int        `json:"scenes_skipped"`
	ScenesSwappedOut     int        `json:"scenes_swapped_out"`
	CumulativeVariance   int        `json:"cumulative_variance"`
}
