package models

// Policy holds the externally configured thresholds used by the variance
// engine, the catch-up generator and the swap matcher.
type Policy struct {
	OnScheduleToleranceMin int `json:"on_schedule_tolerance_min" yaml:"on_schedule_tolerance_min" toml:"on_schedule_tolerance_min"`
	SignificantlyBehindMin int `json:"significantly_behind_min" yaml:"significantly_behind_min" toml:"significantly_behind_min"`

	MinMealMinutes    int `json:"min_meal_minutes" yaml:"min_meal_minutes" toml:"min_meal_minutes"`
	MealIntervalMin   int `json:"meal_interval_min" yaml:"meal_interval_min" toml:"meal_interval_min"`
	MaxWorkdayMinutes int `json:"max_workday_minutes" yaml:"max_workday_minutes" toml:"max_workday_minutes"`
	SetupOverlapMin   int `json:"setup_overlap_min" yaml:"setup_overlap_min" toml:"setup_overlap_min"`

	Swap SwapWeights `json:"swap" yaml:"swap" toml:"swap"`
}

// SwapWeights configures the scene swap score.
type SwapWeights struct {
	Duration       float64 `json:"duration" yaml:"duration" toml:"duration"`
	SameSet        float64 `json:"same_set" yaml:"same_set" toml:"same_set"`
	Adjacency      float64 `json:"adjacency" yaml:"adjacency" toml:"adjacency"`
	IntExt         float64 `json:"int_ext" yaml:"int_ext" toml:"int_ext"`
	TimeOfDay      float64 `json:"time_of_day" yaml:"time_of_day" toml:"time_of_day"`
	DurationFull   int     `json:"duration_full_min" yaml:"duration_full_min" toml:"duration_full_min"`
	DurationZero   int     `json:"duration_zero_min" yaml:"duration_zero_min" toml:"duration_zero_min"`
	MaxDayDistance int     `json:"max_day_distance" yaml:"max_day_distance" toml:"max_day_distance"`
	Limit          int     `json:"limit" yaml:"limit" toml:"limit"`
}
