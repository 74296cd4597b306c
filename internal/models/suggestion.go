package models

type SuggestionType string

const (
	SuggestShortenMeal          SuggestionType = "shorten_meal"
	SuggestSkipActivity         SuggestionType = "skip_activity"
	SuggestCombineSetups        SuggestionType = "combine_setups"
	SuggestSceneConsolidation   SuggestionType = "scene_consolidation"
	SuggestCutScene             SuggestionType = "cut_scene"
	SuggestSceneMove            SuggestionType = "scene_move"
	SuggestExtendDay            SuggestionType = "extend_day"
	SuggestMealPenaltyWarning   SuggestionType = "meal_penalty_warning"
	SuggestWrapExtensionWarning SuggestionType = "wrap_extension_warning"
)

type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Rank orders impacts low < medium < high.
func (i Impact) Rank() int {
	switch i {
	case ImpactLow:
		return 0
	case ImpactMedium:
		return 1
	default:
		return 2
	}
}

// Suggestion is a proposed schedule change to recover lost time. Suggestions
// are regenerated on each request; the ID is stable for identical input.
type Suggestion struct {
	ID               string                 `json:"id"`
	Type             SuggestionType         `json:"type"`
	Description      string                 `json:"description"`
	TimeSavedMinutes int                    `json:"time_saved_minutes"`
	Impact           Impact                 `json:"impact"`
	ComplianceNote   string                 `json:"compliance_note,omitempty"`
	Actionable       bool                   `json:"actionable"`
	ActionData       map[string]interface{} `json:"action_data,omitempty"`
}

type MatchReason string

const (
	ReasonDuration  MatchReason = "duration_match"
	ReasonSameSet   MatchReason = "same_set"
	ReasonAdjacent  MatchReason = "adjacent_day"
	ReasonIntExt    MatchReason = "int_ext_match"
	ReasonTimeOfDay MatchReason = "time_of_day_match"
)

type MatchBucket string

const (
	BucketGreat MatchBucket = "great"
	BucketGood  MatchBucket = "good"
	BucketFair  MatchBucket = "fair"
)

// SwapSuggestion is a candidate scene from another day scored against a
// target scene.
type SwapSuggestion struct {
	SceneID          string        `json:"scene_id"`
	SessionID        string        `json:"session_id"`
	ProductionDayID  string        `json:"production_day_id"`
	DayNumber        int           `json:"day_number"`
	SceneNumber      string        `json:"scene_number"`
	SetName          string        `json:"set_name,omitempty"`
	MatchScore       float64       `json:"match_score"`
	MatchReasons     []MatchReason `json:"match_reasons"`
	EstimatedMinutes int           `json:"estimated_minutes"`
}

// Bucket maps the continuous score onto the display buckets.
func (s SwapSuggestion) Bucket() MatchBucket {
	switch {
	case s.MatchScore >= 70:
		return BucketGreat
	case s.MatchScore >= 40:
		return BucketGood
	default:
		return BucketFair
	}
}
