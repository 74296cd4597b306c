package lifecycle

import (
	"testing"
	"time"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/models"
)

var call = time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC)

func newSnapshot(status models.SessionStatus) *models.Snapshot {
	s := &models.Snapshot{
		Session: models.Session{ID: "s1", PlannedCallTime: call, Status: status, Version: 1},
		Items: []models.ScheduleItem{
			{ID: "b1", Kind: models.ItemKindBlock, BlockType: models.BlockCrewCall, ExpectedDurationMinutes: 30, Status: models.ItemPending},
			{ID: "sc1", Kind: models.ItemKindScene, SceneNumber: "1", SetName: "Kitchen", EstimatedMinutes: 60, Status: models.ItemPending},
			{ID: "m1", Kind: models.ItemKindBlock, BlockType: models.BlockMeal, ExpectedDurationMinutes: 60, Status: models.ItemPending},
			{ID: "sc2", Kind: models.ItemKindScene, SceneNumber: "2", SetName: "Kitchen", EstimatedMinutes: 45, Status: models.ItemPending},
		},
	}
	if status != models.SessionNotStarted {
		t := call
		s.Session.ActualStartTime = &t
	}
	Resequence(s.Items)
	return s
}

func ids(items []models.ScheduleItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func assertOrder(t *testing.T, items []models.ScheduleItem, want ...string) {
	t.Helper()
	got := ids(items)
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
		if items[i].Position != i {
			t.Errorf("item %s has position %d, want %d", items[i].ID, items[i].Position, i)
		}
	}
}

func TestStartDay(t *testing.T) {
	s := newSnapshot(models.SessionNotStarted)
	if err := StartDay(s, call.Add(5*time.Minute)); err != nil {
		t.Fatalf("StartDay() error = %v", err)
	}
	if s.Session.Status != models.SessionInProgress || s.Session.ActualStartTime == nil {
		t.Fatalf("session not started: %+v", s.Session)
	}
	if err := StartDay(s, call); !apperr.IsInvalidState(err) {
		t.Errorf("second StartDay() error = %v, want InvalidStateError", err)
	}
}

func TestStartRequiresRunningSession(t *testing.T) {
	s := newSnapshot(models.SessionNotStarted)
	if err := Start(s, "b1", call); !apperr.IsInvalidState(err) {
		t.Errorf("Start() before day start error = %v, want InvalidStateError", err)
	}
}

func TestSingleInProgress(t *testing.T) {
	s := newSnapshot(models.SessionInProgress)
	if err := Start(s, "b1", call); err != nil {
		t.Fatalf("Start(b1) error = %v", err)
	}
	err := Start(s, "sc1", call.Add(time.Minute))
	if !apperr.IsInvalidState(err) {
		t.Fatalf("Start(sc1) error = %v, want InvalidStateError", err)
	}
	if s.Items[1].Status != models.ItemPending {
		t.Errorf("rejected start changed status to %s", s.Items[1].Status)
	}

	count := 0
	for _, it := range s.Items {
		if it.Status == models.ItemInProgress {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly 1 in_progress item, got %d", count)
	}

	if err := Complete(s, "b1", nil, call.Add(30*time.Minute)); err != nil {
		t.Fatalf("Complete(b1) error = %v", err)
	}
	if err := Start(s, "sc1", call.Add(30*time.Minute)); err != nil {
		t.Errorf("Start(sc1) after completion error = %v", err)
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name    string
		actual  *int
		now     time.Time
		want    int
		wantErr bool
	}{
		{name: "explicit duration", actual: intPtr(42), now: call.Add(90 * time.Minute), want: 42},
		{name: "wall clock duration", now: call.Add(37 * time.Minute), want: 37},
		{name: "negative duration", actual: intPtr(-1), now: call, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSnapshot(models.SessionInProgress)
			if err := Start(s, "sc1", call); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			err := Complete(s, "sc1", tt.actual, tt.now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Complete() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !apperr.IsValidation(err) {
					t.Errorf("expected ValidationError, got %v", err)
				}
				return
			}
			item := s.Items[1]
			if item.Status != models.ItemCompleted {
				t.Errorf("status = %s, want completed", item.Status)
			}
			if *item.ActualDurationMinutes != tt.want {
				t.Errorf("duration = %d, want %d", *item.ActualDurationMinutes, tt.want)
			}
			if !item.ActualEndTime.Equal(call.Add(time.Duration(tt.want) * time.Minute)) {
				t.Errorf("end = %v", item.ActualEndTime)
			}
		})
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	s := newSnapshot(models.SessionInProgress)
	if err := Skip(s, "sc1", "weather", call); err != nil {
		t.Fatalf("Skip() error = %v", err)
	}
	if err := SwapOut(s, "sc2"); err != nil {
		t.Fatalf("SwapOut() error = %v", err)
	}

	for _, id := range []string{"sc1", "sc2"} {
		if err := Start(s, id, call); !apperr.IsInvalidState(err) {
			t.Errorf("Start(%s) error = %v, want InvalidStateError", id, err)
		}
		if err := Skip(s, id, "", call); !apperr.IsInvalidState(err) {
			t.Errorf("Skip(%s) error = %v, want InvalidStateError", id, err)
		}
		if err := SetPlannedMinutes(s, id, 10); !apperr.IsInvalidState(err) {
			t.Errorf("SetPlannedMinutes(%s) error = %v, want InvalidStateError", id, err)
		}
	}
	if s.Items[1].SkipReason != "weather" {
		t.Errorf("skip reason = %q", s.Items[1].SkipReason)
	}
}

func TestSkipInProgressRecordsEnd(t *testing.T) {
	s := newSnapshot(models.SessionInProgress)
	_ = Start(s, "sc1", call)
	now := call.Add(20 * time.Minute)
	if err := Skip(s, "sc1", "lost light", now); err != nil {
		t.Fatalf("Skip() error = %v", err)
	}
	if s.Items[1].ActualEndTime == nil || !s.Items[1].ActualEndTime.Equal(now) {
		t.Errorf("end time = %v, want %v", s.Items[1].ActualEndTime, now)
	}
}

func TestSwapOutRejectsBlocks(t *testing.T) {
	s := newSnapshot(models.SessionInProgress)
	if err := SwapOut(s, "m1"); !apperr.IsValidation(err) {
		t.Errorf("SwapOut(block) error = %v, want ValidationError", err)
	}
}

func TestAdjust(t *testing.T) {
	s := newSnapshot(models.SessionInProgress)
	start := call.Add(5 * time.Hour)

	if err := Adjust(s, "m1", start, start.Add(45*time.Minute)); err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}
	if got := s.Items[2].ExpectedDurationMinutes; got != 45 {
		t.Errorf("duration = %d, want 45", got)
	}
	if err := Adjust(s, "m1", start, start); !apperr.IsValidation(err) {
		t.Errorf("Adjust(end == start) error = %v, want ValidationError", err)
	}
	if err := Adjust(s, "sc1", start, start.Add(time.Hour)); !apperr.IsValidation(err) {
		t.Errorf("Adjust(scene) error = %v, want ValidationError", err)
	}
	if err := Adjust(s, "nope", start, start.Add(time.Hour)); !apperr.IsNotFound(err) {
		t.Errorf("Adjust(unknown) error = %v, want NotFoundError", err)
	}

	_ = Start(s, "m1", call)
	if err := Adjust(s, "m1", start, start.Add(time.Hour)); !apperr.IsInvalidState(err) {
		t.Errorf("Adjust(in_progress) error = %v, want InvalidStateError", err)
	}
}

func TestInsertAfter(t *testing.T) {
	s := newSnapshot(models.SessionInProgress)
	_ = Start(s, "b1", call)
	_ = Complete(s, "b1", nil, call.Add(30*time.Minute))

	block, err := NewBlock(s.Session.ID, models.BlockActivity, "Safety meeting", 15)
	if err != nil {
		t.Fatalf("NewBlock() error = %v", err)
	}
	if block.Essential {
		t.Error("activity blocks should default to non-essential")
	}
	if err := InsertAfter(s, "b1", block); err != nil {
		t.Fatalf("InsertAfter() error = %v", err)
	}
	assertOrder(t, s.Items, "b1", block.ID, "sc1", "m1", "sc2")
	if s.Items[1].Status != models.ItemPending || s.Items[1].SessionID != "s1" {
		t.Errorf("inserted item = %+v", s.Items[1])
	}

	tail, _ := NewBlock(s.Session.ID, models.BlockWrap, "Wrap", 10)
	if err := InsertAfter(s, "", tail); err != nil {
		t.Fatalf("InsertAfter(end) error = %v", err)
	}
	if s.Items[len(s.Items)-1].ID != tail.ID {
		t.Errorf("empty anchor should append")
	}
	if err := InsertAfter(s, "missing", block); !apperr.IsNotFound(err) {
		t.Errorf("InsertAfter(missing) error = %v, want NotFoundError", err)
	}
	if err := InsertAfter(s, "b1", block); !apperr.IsValidation(err) {
		t.Errorf("duplicate insert error = %v, want ValidationError", err)
	}
}

func TestNewBlockValidation(t *testing.T) {
	if _, err := NewBlock("s1", "coffee", "x", 10); !apperr.IsValidation(err) {
		t.Errorf("unknown type error = %v", err)
	}
	if _, err := NewBlock("s1", models.BlockActivity, "x", 0); !apperr.IsValidation(err) {
		t.Errorf("zero duration error = %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newSnapshot(models.SessionInProgress)
	if err := Delete(s, "sc1"); !apperr.IsValidation(err) {
		t.Errorf("Delete(scene) error = %v, want ValidationError", err)
	}
	if err := Delete(s, "m1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertOrder(t, s.Items, "b1", "sc1", "sc2")

	_ = Start(s, "b1", call)
	if err := Delete(s, "b1"); !apperr.IsInvalidState(err) {
		t.Errorf("Delete(in_progress) error = %v, want InvalidStateError", err)
	}
}

func TestMove(t *testing.T) {
	s := newSnapshot(models.SessionInProgress)
	if err := Move(s, "sc2", "sc1"); err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	assertOrder(t, s.Items, "b1", "sc1", "sc2", "m1")

	if err := Move(s, "m1", ""); err != nil {
		t.Fatalf("Move(front) error = %v", err)
	}
	assertOrder(t, s.Items, "m1", "b1", "sc1", "sc2")

	if err := Move(s, "sc1", "sc1"); !apperr.IsValidation(err) {
		t.Errorf("Move(self) error = %v, want ValidationError", err)
	}
}

func TestWrap(t *testing.T) {
	s := newSnapshot(models.SessionInProgress)
	_ = Start(s, "b1", call)
	if err := Wrap(s, call.Add(time.Hour)); !apperr.IsInvalidState(err) {
		t.Fatalf("Wrap() with running item error = %v, want InvalidStateError", err)
	}
	_ = Complete(s, "b1", nil, call.Add(30*time.Minute))
	if err := Wrap(s, call.Add(time.Hour)); err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	if !s.Session.IsReadOnly() {
		t.Fatal("wrapped session should be read-only")
	}

	block, _ := NewBlock("s1", models.BlockActivity, "late", 10)
	checks := map[string]error{
		"start":  Start(s, "sc1", call),
		"skip":   Skip(s, "sc1", "", call),
		"insert": InsertAfter(s, "", block),
		"delete": Delete(s, "m1"),
		"wrap":   Wrap(s, call),
	}
	for op, err := range checks {
		if !apperr.IsInvalidState(err) {
			t.Errorf("%s on wrapped day error = %v, want InvalidStateError", op, err)
		}
	}
}

func TestShareSetup(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		minutes int
		wantEst int
		wantErr func(error) bool
	}{
		{name: "reduces estimate", id: "sc2", minutes: 15, wantEst: 30},
		{name: "capped at estimate", id: "sc2", minutes: 90, wantEst: 0},
		{name: "block", id: "m1", minutes: 15, wantErr: apperr.IsValidation},
		{name: "no overlap", id: "sc2", minutes: 0, wantErr: apperr.IsValidation},
		{name: "unknown", id: "nope", minutes: 15, wantErr: apperr.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSnapshot(models.SessionInProgress)
			err := ShareSetup(s, tt.id, tt.minutes)
			if tt.wantErr != nil {
				if !tt.wantErr(err) {
					t.Fatalf("ShareSetup() error = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ShareSetup() error = %v", err)
			}
			sc := s.Items[3]
			if sc.EstimatedMinutes != tt.wantEst || sc.SetupReducedMinutes != 45-tt.wantEst {
				t.Errorf("estimate = %d, reduced = %d", sc.EstimatedMinutes, sc.SetupReducedMinutes)
			}
		})
	}
}

func TestShareSetupOnlyOnce(t *testing.T) {
	s := newSnapshot(models.SessionInProgress)
	if err := ShareSetup(s, "sc2", 15); err != nil {
		t.Fatal(err)
	}
	if err := ShareSetup(s, "sc2", 15); !apperr.IsInvalidState(err) {
		t.Fatalf("second ShareSetup() error = %v, want InvalidStateError", err)
	}
	if s.Items[3].EstimatedMinutes != 30 {
		t.Errorf("estimate = %d, want 30", s.Items[3].EstimatedMinutes)
	}
}

func intPtr(v int) *int { return &v }
