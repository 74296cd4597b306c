package models

import "time"

type ItemKind string

const (
	ItemKindBlock ItemKind = "block"
	ItemKindScene ItemKind = "scene"
)

type ItemStatus string

const (
	ItemPending    ItemStatus = "pending"
	ItemInProgress ItemStatus = "in_progress"
	ItemCompleted  ItemStatus = "completed"
	ItemSkipped    ItemStatus = "skipped"
	// ItemSwappedOut marks a scene that left this day through a swap. It is
	// terminal and kept for audit.
	ItemSwappedOut ItemStatus = "swapped_out"
)

// IsTerminal reports whether no further transitions are possible.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemCompleted || s == ItemSkipped || s == ItemSwappedOut
}

type BlockType string

const (
	BlockMeal          BlockType = "meal"
	BlockCompanyMove   BlockType = "company_move"
	BlockCameraReset   BlockType = "camera_reset"
	BlockLightingReset BlockType = "lighting_reset"
	BlockActivity      BlockType = "activity"
	BlockCrewCall      BlockType = "crew_call"
	BlockFirstShot     BlockType = "first_shot"
	BlockWrap          BlockType = "wrap"
)

var blockTypes = map[BlockType]bool{
	BlockMeal: true, BlockCompanyMove: true, BlockCameraReset: true, BlockLightingReset: true,
	BlockActivity: true, BlockCrewCall: true, BlockFirstShot: true, BlockWrap: true,
}

func (b BlockType) IsValid() bool {
	return blockTypes[b]
}

// ScheduleItem is either a block (meal, move, reset, ...) or a scene. Both
// variants share one lifecycle; Kind selects which variant fields apply.
type ScheduleItem struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Kind      ItemKind   `json:"kind"`
	Position  int        `json:"position"`
	Status    ItemStatus `json:"status"`

	ActualStartTime       *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime         *time.Time `json:"actual_end_time,omitempty"`
	ActualDurationMinutes *int       `json:"actual_duration_minutes,omitempty"`
	SkipReason            string     `json:"skip_reason,omitempty"`
	Notes                 string     `json:"notes,omitempty"`

	// Block variant
	BlockType               BlockType  `json:"block_type,omitempty"`
	Name                    string     `json:"name,omitempty"`
	ExpectedStartTime       *time.Time `json:"expected_start_time,omitempty"`
	ExpectedEndTime         *time.Time `json:"expected_end_time,omitempty"`
	ExpectedDurationMinutes int        `json:"expected_duration_minutes,omitempty"`
	LocationName            string     `json:"location_name,omitempty"`
	Essential               bool       `json:"essential,omitempty"`

	// Scene variant
	SceneNumber      string `json:"scene_number,omitempty"`
	IntExt           string `json:"int_ext,omitempty"`
	SetName          string `json:"set_name,omitempty"`
	Description      string `json:"description,omitempty"`
	TimeOfDay        string `json:"time_of_day,omitempty"`
	EstimatedMinutes int    `json:"estimated_minutes,omitempty"`
	OriginItemID     string `json:"origin_item_id,omitempty"`
	// SetupReducedMinutes is what was taken off EstimatedMinutes because the
	// scene shares the setup of the scene before it. A scene is reduced once.
	SetupReducedMinutes int `json:"setup_reduced_minutes,omitempty"`
}

func (it ScheduleItem) IsScene() bool { return it.Kind == ItemKindScene }
func (it ScheduleItem) IsBlock() bool { return it.Kind == ItemKindBlock }

// PlannedMinutes is the planned duration of either variant.
func (it ScheduleItem) PlannedMinutes() int {
	if it.Kind == ItemKindScene {
		return it.EstimatedMinutes
	}
	return it.ExpectedDurationMinutes
}

// Label is a short human-readable name.
func (it ScheduleItem) Label() string {
	if it.Kind == ItemKindScene {
		if it.SetName != "" {
			return "Sc. " + it.SceneNumber + " " + it.SetName
		}
		return "Sc. " + it.SceneNumber
	}
	if it.Name != "" {
		return it.Name
	}
	return string(it.BlockType)
}

// TypeName returns the block type for blocks and "scene" for scenes.
func (it ScheduleItem) TypeName() string {
	if it.Kind == ItemKindScene {
		return string(ItemKindScene)
	}
	return string(it.BlockType)
}

// Location is the block location or the scene's set.
func (it ScheduleItem) Location() string {
	if it.Kind == ItemKindScene {
		return it.SetName
	}
	return it.LocationName
}

// Clone returns a copy with its own pointer fields.
func (it ScheduleItem) Clone() ScheduleItem {
	out := it
	out.ActualStartTime = cloneTime(it.ActualStartTime)
	out.ActualEndTime = cloneTime(it.ActualEndTime)
	out.ExpectedStartTime = cloneTime(it.ExpectedStartTime)
	out.ExpectedEndTime = cloneTime(it.ExpectedEndTime)
	if it.ActualDurationMinutes != nil {
		d := *it.ActualDurationMinutes
		out.ActualDurationMinutes = &d
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
