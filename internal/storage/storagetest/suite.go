// Package storagetest holds the behavior every storage.Provider must share,
// run by each backend's tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/storage"
)

var call = time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC)

// Snapshot builds a not-started day with a crew call, two scenes and lunch.
func Snapshot(id string, day int) models.Snapshot {
	wrap := call.Add(12 * time.Hour)
	start := call.Add(6 * time.Hour)
	end := start.Add(30 * time.Minute)
	return models.Snapshot{
		Session: models.Session{
			ID:              id,
			ProductionDayID: "prod-" + id,
			DayNumber:       day,
			DayType:         models.DayTypeShoot,
			Timezone:        "America/Los_Angeles",
			PlannedCallTime: call.AddDate(0, 0, day-1),
			PlannedWrapTime: &wrap,
			Status:          models.SessionNotStarted,
			Version:         1,
		},
		Items: []models.ScheduleItem{
			{ID: id + "-call", Kind: models.ItemKindBlock, Status: models.ItemPending, BlockType: models.BlockCrewCall, Name: "Crew call", ExpectedDurationMinutes: 30, Essential: true},
			{ID: id + "-s1", Kind: models.ItemKindScene, Status: models.ItemPending, SceneNumber: "12A", IntExt: "INT", SetName: "Kitchen", TimeOfDay: "DAY", EstimatedMinutes: 90},
			{ID: id + "-lunch", Kind: models.ItemKindBlock, Status: models.ItemPending, BlockType: models.BlockMeal, Name: "Lunch", ExpectedStartTime: &start, ExpectedEndTime: &end, ExpectedDurationMinutes: 30, Essential: true},
			{ID: id + "-s2", Kind: models.ItemKindScene, Status: models.ItemPending, SceneNumber: "14", IntExt: "EXT", SetName: "Street", TimeOfDay: "NIGHT", EstimatedMinutes: 60},
		},
	}
}

// Run exercises a fresh provider returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) storage.Provider) {
	ctx := context.Background()

	t.Run("CreateAndGetSnapshot", func(t *testing.T) {
		p := open(t)
		want := Snapshot("day-1", 1)
		if err := p.CreateSession(ctx, want); err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}

		got, err := p.GetSnapshot(ctx, "day-1")
		if err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if got.Session.Version != 1 {
			t.Errorf("Version = %d, want 1", got.Session.Version)
		}
		if !got.Session.PlannedCallTime.Equal(want.Session.PlannedCallTime) {
			t.Errorf("PlannedCallTime = %v, want %v", got.Session.PlannedCallTime, want.Session.PlannedCallTime)
		}
		if got.Session.PlannedWrapTime == nil || !got.Session.PlannedWrapTime.Equal(*want.Session.PlannedWrapTime) {
			t.Errorf("PlannedWrapTime = %v, want %v", got.Session.PlannedWrapTime, want.Session.PlannedWrapTime)
		}
		if len(got.Items) != len(want.Items) {
			t.Fatalf("got %d items, want %d", len(got.Items), len(want.Items))
		}
		for i, it := range got.Items {
			if it.ID != want.Items[i].ID || it.Position != i {
				t.Errorf("item %d = %s@%d, want %s@%d", i, it.ID, it.Position, want.Items[i].ID, i)
			}
			if it.SessionID != "day-1" {
				t.Errorf("item %s SessionID = %q", it.ID, it.SessionID)
			}
		}
		lunch := got.Items[2]
		if !lunch.Essential || lunch.ExpectedStartTime == nil || lunch.ActualStartTime != nil {
			t.Errorf("lunch block not round-tripped: %+v", lunch)
		}
		if got.Items[1].SetName != "Kitchen" || got.Items[1].EstimatedMinutes != 90 {
			t.Errorf("scene not round-tripped: %+v", got.Items[1])
		}
	})

	t.Run("MissingSession", func(t *testing.T) {
		p := open(t)
		if _, err := p.GetSnapshot(ctx, "nope"); !apperr.IsNotFound(err) {
			t.Errorf("GetSnapshot() error = %v, want not found", err)
		}
		if _, err := p.GetSession(ctx, "nope"); !apperr.IsNotFound(err) {
			t.Errorf("GetSession() error = %v, want not found", err)
		}
		if err := p.DeleteSession(ctx, "nope"); !apperr.IsNotFound(err) {
			t.Errorf("DeleteSession() error = %v, want not found", err)
		}
		if _, err := p.FindItemSession(ctx, "nope"); !apperr.IsNotFound(err) {
			t.Errorf("FindItemSession() error = %v, want not found", err)
		}
	})

	t.Run("SaveSnapshotBumpsVersion", func(t *testing.T) {
		p := open(t)
		snap := Snapshot("day-1", 1)
		if err := p.CreateSession(ctx, snap); err != nil {
			t.Fatal(err)
		}

		started := call.Add(2 * time.Minute)
		actual := 25
		snap.Session.Status = models.SessionInProgress
		snap.Session.ActualStartTime = &started
		snap.Items[0].Status = models.ItemCompleted
		snap.Items[0].ActualStartTime = &started
		snap.Items[0].ActualDurationMinutes = &actual
		snap.Items[3].EstimatedMinutes = 45
		snap.Items[3].SetupReducedMinutes = 15

		saved, err := p.SaveSnapshot(ctx, snap, 1)
		if err != nil {
			t.Fatalf("SaveSnapshot() error = %v", err)
		}
		if saved.Session.Version != 2 {
			t.Errorf("Version = %d, want 2", saved.Session.Version)
		}

		got, err := p.GetSnapshot(ctx, "day-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Session.Status != models.SessionInProgress || got.Session.Version != 2 {
			t.Errorf("session = %s v%d, want in_progress v2", got.Session.Status, got.Session.Version)
		}
		if d := got.Items[0].ActualDurationMinutes; d == nil || *d != 25 {
			t.Errorf("ActualDurationMinutes = %v, want 25", d)
		}
		if sc := got.Items[3]; sc.EstimatedMinutes != 45 || sc.SetupReducedMinutes != 15 {
			t.Errorf("scene = %d min (setup reduced %d), want 45 (15)", sc.EstimatedMinutes, sc.SetupReducedMinutes)
		}
	})

	t.Run("StaleVersionConflicts", func(t *testing.T) {
		p := open(t)
		snap := Snapshot("day-1", 1)
		if err := p.CreateSession(ctx, snap); err != nil {
			t.Fatal(err)
		}
		if _, err := p.SaveSnapshot(ctx, snap, 1); err != nil {
			t.Fatal(err)
		}

		snap.Items = snap.Items[:1]
		_, err := p.SaveSnapshot(ctx, snap, 1)
		if !apperr.IsConflict(err) {
			t.Fatalf("SaveSnapshot() error = %v, want conflict", err)
		}

		got, err := p.GetSnapshot(ctx, "day-1")
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Items) != 4 {
			t.Errorf("stale write changed items: got %d, want 4", len(got.Items))
		}
	})

	t.Run("SaveUnknownSession", func(t *testing.T) {
		p := open(t)
		if _, err := p.SaveSnapshot(ctx, Snapshot("ghost", 1), 1); !apperr.IsNotFound(err) {
			t.Errorf("SaveSnapshot() error = %v, want not found", err)
		}
	})

	t.Run("ReorderResequences", func(t *testing.T) {
		p := open(t)
		snap := Snapshot("day-1", 1)
		if err := p.CreateSession(ctx, snap); err != nil {
			t.Fatal(err)
		}
		snap.Items[1], snap.Items[3] = snap.Items[3], snap.Items[1]
		if _, err := p.SaveSnapshot(ctx, snap, 1); err != nil {
			t.Fatalf("SaveSnapshot() error = %v", err)
		}
		got, err := p.GetSnapshot(ctx, "day-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Items[1].ID != "day-1-s2" || got.Items[3].ID != "day-1-s1" {
			t.Errorf("order = %s, %s; want day-1-s2, day-1-s1", got.Items[1].ID, got.Items[3].ID)
		}
	})

	t.Run("ListOpenSnapshots", func(t *testing.T) {
		p := open(t)
		days := []struct {
			id  string
			day int
		}{{"day-2", 2}, {"day-1", 1}, {"day-3", 3}}
		for _, d := range days {
			if err := p.CreateSession(ctx, Snapshot(d.id, d.day)); err != nil {
				t.Fatal(err)
			}
		}
		wrapped, err := p.GetSnapshot(ctx, "day-3")
		if err != nil {
			t.Fatal(err)
		}
		wrapped.Session.Status = models.SessionWrapped
		if _, err := p.SaveSnapshot(ctx, wrapped, wrapped.Session.Version); err != nil {
			t.Fatal(err)
		}

		openDays, err := p.ListOpenSnapshots(ctx)
		if err != nil {
			t.Fatalf("ListOpenSnapshots() error = %v", err)
		}
		if len(openDays) != 2 {
			t.Fatalf("got %d open days, want 2", len(openDays))
		}
		if openDays[0].Session.ID != "day-1" || openDays[1].Session.ID != "day-2" {
			t.Errorf("order = %s, %s; want day-1, day-2", openDays[0].Session.ID, openDays[1].Session.ID)
		}
		if len(openDays[0].Items) != 4 {
			t.Errorf("day-1 has %d items, want 4", len(openDays[0].Items))
		}

		all, err := p.ListSessions(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 3 {
			t.Errorf("ListSessions() = %d sessions, want 3", len(all))
		}
	})

	t.Run("SaveSwapAtomic", func(t *testing.T) {
		p := open(t)
		target, source := Snapshot("day-1", 1), Snapshot("day-2", 2)
		for _, s := range []models.Snapshot{target, source} {
			if err := p.CreateSession(ctx, s); err != nil {
				t.Fatal(err)
			}
		}

		moved := source.Items[1]
		moved.ID = "copy-of-day-2-s1"
		moved.OriginItemID = source.Items[1].ID
		target.Items = append(target.Items, moved)
		source.Items[1].Status = models.ItemSwappedOut

		outT, outS, err := p.SaveSwap(ctx, target, 1, source, 1)
		if err != nil {
			t.Fatalf("SaveSwap() error = %v", err)
		}
		if outT.Session.Version != 2 || outS.Session.Version != 2 {
			t.Errorf("versions = %d, %d; want 2, 2", outT.Session.Version, outS.Session.Version)
		}
		owner, err := p.FindItemSession(ctx, "copy-of-day-2-s1")
		if err != nil || owner != "day-1" {
			t.Errorf("FindItemSession() = %q, %v; want day-1", owner, err)
		}
	})

	t.Run("SaveSwapRollsBackBothSides", func(t *testing.T) {
		p := open(t)
		target, source := Snapshot("day-1", 1), Snapshot("day-2", 2)
		for _, s := range []models.Snapshot{target, source} {
			if err := p.CreateSession(ctx, s); err != nil {
				t.Fatal(err)
			}
		}
		// Someone else edits day-2 first.
		if _, err := p.SaveSnapshot(ctx, source, 1); err != nil {
			t.Fatal(err)
		}

		target.Items = target.Items[:2]
		source.Items = source.Items[:2]
		_, _, err := p.SaveSwap(ctx, target, 1, source, 1)
		if !apperr.IsCrossDay(err) || !apperr.IsConflict(err) {
			t.Fatalf("SaveSwap() error = %v, want cross-day conflict", err)
		}

		got, err := p.GetSnapshot(ctx, "day-1")
		if err != nil {
			t.Fatal(err)
		}
		if got.Session.Version != 1 || len(got.Items) != 4 {
			t.Errorf("target changed: v%d with %d items", got.Session.Version, len(got.Items))
		}
	})

	t.Run("DeleteSession", func(t *testing.T) {
		p := open(t)
		if err := p.CreateSession(ctx, Snapshot("day-1", 1)); err != nil {
			t.Fatal(err)
		}
		if err := p.DeleteSession(ctx, "day-1"); err != nil {
			t.Fatalf("DeleteSession() error = %v", err)
		}
		if _, err := p.FindItemSession(ctx, "day-1-s1"); !apperr.IsNotFound(err) {
			t.Errorf("items survived delete: %v", err)
		}
	})
}
