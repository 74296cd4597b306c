package models

// SessionTemplate is the pre-shoot plan for one day as supplied by the
// roster/scene-breakdown provider. Clock times are HH:MM in Timezone on Date;
// times earlier than CallTime roll over to the next day.
type SessionTemplate struct {
	ProductionDayID string         `json:"production_day_id" yaml:"production_day_id" toml:"production_day_id"`
	DayNumber       int            `json:"day_number" yaml:"day_number" toml:"day_number"`
	DayType         DayType        `json:"day_type" yaml:"day_type" toml:"day_type"`
	Timezone        string         `json:"timezone" yaml:"timezone" toml:"timezone"`
	Date            string         `json:"date" yaml:"date" toml:"date"`
	CallTime        string         `json:"call_time" yaml:"call_time" toml:"call_time"`
	WrapTime        string         `json:"wrap_time,omitempty" yaml:"wrap_time,omitempty" toml:"wrap_time,omitempty"`
	Items           []TemplateItem `json:"items" yaml:"items" toml:"items"`
}

// TemplateItem is one block or scene of a SessionTemplate.
type TemplateItem struct {
	Kind            ItemKind  `json:"kind" yaml:"kind" toml:"kind"`
	BlockType       BlockType `json:"block_type,omitempty" yaml:"block_type,omitempty" toml:"block_type,omitempty"`
	Name            string    `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Start           string    `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	End             string    `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty" yaml:"duration_minutes,omitempty" toml:"duration_minutes,omitempty"`
	Location        string    `json:"location,omitempty" yaml:"location,omitempty" toml:"location,omitempty"`
	Essential       bool      `json:"essential,omitempty" yaml:"essential,omitempty" toml:"essential,omitempty"`
	Notes           string    `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`

	SceneNumber      string `json:"scene_number,omitempty" yaml:"scene_number,omitempty" toml:"scene_number,omitempty"`
	IntExt           string `json:"int_ext,omitempty" yaml:"int_ext,omitempty" toml:"int_ext,omitempty"`
	SetName          string `json:"set_name,omitempty" yaml:"set_name,omitempty" toml:"set_name,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	TimeOfDay        string `json:"time_of_day,omitempty" yaml:"time_of_day,omitempty" toml:"time_of_day,omitempty"`
	EstimatedMinutes int    `json:"estimated_minutes,omitempty" yaml:"estimated_minutes,omitempty" toml:"estimated_minutes,omitempty"`
}
