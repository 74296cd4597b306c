package swap

import (
	"reflect"
	"testing"

	"github.com/julianstephens/hotset/internal/config"
	"github.com/julianstephens/hotset/internal/models"
)

func scene(id, set string, minutes int) models.ScheduleItem {
	return models.ScheduleItem{ID: id, Kind: models.ItemKindScene, SceneNumber: id, SetName: set,
		EstimatedMinutes: minutes, Status: models.ItemPending}
}

func session(id string, dayNumber int) models.Session {
	return models.Session{ID: id, ProductionDayID: "pd-" + id, DayNumber: dayNumber, Status: models.SessionNotStarted}
}

func TestScore(t *testing.T) {
	m := NewMatcher(config.Default().Swap)
	target := scene("t", "Kitchen", 30)
	target.IntExt = "INT"
	target.TimeOfDay = "DAY"

	full := scene("c", "kitchen", 40)
	full.IntExt = "int"
	full.TimeOfDay = "Day"

	tests := []struct {
		name        string
		candidate   models.ScheduleItem
		distance    int
		wantScore   float64
		wantReasons []models.MatchReason
	}{
		{
			name:      "everything matches",
			candidate: full,
			distance:  1,
			wantScore: 100,
			wantReasons: []models.MatchReason{
				models.ReasonAdjacent, models.ReasonDuration, models.ReasonIntExt,
				models.ReasonSameSet, models.ReasonTimeOfDay,
			},
		},
		{
			name:        "duration falls off linearly",
			candidate:   scene("c", "Street", 81),
			distance:    9,
			wantScore:   8,
			wantReasons: []models.MatchReason{models.ReasonDuration},
		},
		{
			name:        "no match at all",
			candidate:   scene("c", "Street", 120),
			distance:    5,
			wantScore:   0,
			wantReasons: nil,
		},
		{
			name:        "adjacency decreases with distance",
			candidate:   scene("c", "Street", 120),
			distance:    3,
			wantScore:   10,
			wantReasons: []models.MatchReason{models.ReasonAdjacent},
		},
		{
			name:        "same day number earns no adjacency",
			candidate:   scene("c", "Kitchen", 90),
			distance:    0,
			wantScore:   25,
			wantReasons: []models.MatchReason{models.ReasonSameSet},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := m.Score(target, tt.candidate, tt.distance)
			if score != tt.wantScore {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if !reflect.DeepEqual(reasons, tt.wantReasons) {
				t.Errorf("reasons = %v, want %v", reasons, tt.wantReasons)
			}
		})
	}
}

func TestSuggest_Ranking(t *testing.T) {
	m := NewMatcher(config.Default().Swap)
	target := scene("t", "Kitchen", 30)
	active := session("d5", 5)

	strong := scene("strong", "Kitchen", 40) // 10 minutes off, same set, next day
	weak := scene("weak", "Street", 80)      // 50 minutes off, no set, far away
	done := scene("done", "Kitchen", 30)
	done.Status = models.ItemCompleted

	wrapped := session("d4", 4)
	wrapped.Status = models.SessionWrapped

	others := []models.Snapshot{
		{Session: session("d12", 12), Items: []models.ScheduleItem{weak}},
		{Session: session("d6", 6), Items: []models.ScheduleItem{strong, done}},
		{Session: wrapped, Items: []models.ScheduleItem{scene("archived", "Kitchen", 30)}},
		{Session: active, Items: []models.ScheduleItem{scene("own", "Kitchen", 30)}},
	}

	got := m.Suggest(target, active, others, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(got), got)
	}
	if got[0].SceneID != "strong" || got[1].SceneID != "weak" {
		t.Fatalf("order = %s, %s; want strong, weak", got[0].SceneID, got[1].SceneID)
	}
	if got[0].MatchScore <= got[1].MatchScore {
		t.Errorf("scores not descending: %v, %v", got[0].MatchScore, got[1].MatchScore)
	}
	if got[0].Bucket() != models.BucketGreat {
		t.Errorf("strong bucket = %s, want great", got[0].Bucket())
	}
	if got[1].Bucket() != models.BucketFair {
		t.Errorf("weak bucket = %s, want fair", got[1].Bucket())
	}
	if got[0].DayNumber != 6 || got[0].SessionID != "d6" || got[0].ProductionDayID != "pd-d6" {
		t.Errorf("unexpected source fields: %+v", got[0])
	}
	if got[1].MatchReasons == nil {
		t.Error("match reasons should be an empty set, not nil")
	}
}

func TestSuggest_TieBreaksAndLimit(t *testing.T) {
	m := NewMatcher(config.Default().Swap)
	target := scene("t", "", 30)
	active := session("d5", 5)

	others := []models.Snapshot{
		{Session: session("d9", 9), Items: []models.ScheduleItem{scene("b", "", 30)}},
		{Session: session("d1", 1), Items: []models.ScheduleItem{scene("a", "", 30)}},
		{Session: session("d7", 7), Items: []models.ScheduleItem{scene("z", "", 30), scene("y", "", 30)}},
	}
	got := m.Suggest(target, active, others, 3)
	var ids []string
	for _, s := range got {
		ids = append(ids, s.SceneID)
	}
	want := []string{"y", "z", "a"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}
}

func TestBuckets(t *testing.T) {
	tests := []struct {
		score float64
		want  models.MatchBucket
	}{
		{100, models.BucketGreat},
		{70, models.BucketGreat},
		{69.99, models.BucketGood},
		{40, models.BucketGood},
		{39.5, models.BucketFair},
		{0, models.BucketFair},
	}
	for _, tt := range tests {
		if got := (models.SwapSuggestion{MatchScore: tt.score}).Bucket(); got != tt.want {
			t.Errorf("Bucket(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
