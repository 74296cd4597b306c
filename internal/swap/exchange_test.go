package swap

import (
	"errors"
	"sort"
	"testing"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/lifecycle"
	"github.com/julianstephens/hotset/internal/models"
)

func dayWith(id string, number int, items ...models.ScheduleItem) *models.Snapshot {
	snap := &models.Snapshot{Session: session(id, number), Items: items}
	for i := range snap.Items {
		snap.Items[i].SessionID = id
	}
	lifecycle.Resequence(snap.Items)
	return snap
}

func pendingScenes(s *models.Snapshot) []string {
	var out []string
	for _, it := range s.Items {
		if it.IsScene() && it.Status == models.ItemPending {
			out = append(out, it.SceneNumber)
		}
	}
	sort.Strings(out)
	return out
}

func findPending(t *testing.T, s *models.Snapshot, sceneNumber string) models.ScheduleItem {
	t.Helper()
	for _, it := range s.Items {
		if it.SceneNumber == sceneNumber && it.Status == models.ItemPending {
			return it
		}
	}
	t.Fatalf("no pending scene %s on %s", sceneNumber, s.Session.ID)
	return models.ScheduleItem{}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExchange(t *testing.T) {
	day1 := dayWith("d1", 1, scene("1", "Kitchen", 30), scene("A", "Kitchen", 45), scene("2", "Street", 20))
	day2 := dayWith("d2", 2, scene("B", "Office", 40), scene("3", "Office", 30))

	if err := Exchange(day1, "A", day2, "B"); err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}

	if day1.Items[1].Status != models.ItemSwappedOut || day2.Items[0].Status != models.ItemSwappedOut {
		t.Fatal("originals should be swapped_out")
	}
	in := day1.Items[2]
	if in.SceneNumber != "B" || in.Status != models.ItemPending || in.SessionID != "d1" || in.OriginItemID != "B" {
		t.Errorf("incoming copy on day 1 = %+v", in)
	}
	out := day2.Items[1]
	if out.SceneNumber != "A" || out.Status != models.ItemPending || out.SessionID != "d2" || out.OriginItemID != "A" {
		t.Errorf("outgoing copy on day 2 = %+v", out)
	}
	for i, it := range day1.Items {
		if it.Position != i {
			t.Errorf("day 1 position %d = %d", i, it.Position)
		}
	}
}

func TestExchange_RoundTripRestoresSceneSets(t *testing.T) {
	day1 := dayWith("d1", 1, scene("1", "Kitchen", 30), scene("A", "Kitchen", 45))
	day2 := dayWith("d2", 2, scene("B", "Office", 40), scene("3", "Office", 30))
	before1, before2 := pendingScenes(day1), pendingScenes(day2)

	if err := Exchange(day1, "A", day2, "B"); err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	back := findPending(t, day1, "B")
	forth := findPending(t, day2, "A")
	if err := Exchange(day1, back.ID, day2, forth.ID); err != nil {
		t.Fatalf("swap back error = %v", err)
	}

	if got := pendingScenes(day1); !equal(got, before1) {
		t.Errorf("day 1 scenes = %v, want %v", got, before1)
	}
	if got := pendingScenes(day2); !equal(got, before2) {
		t.Errorf("day 2 scenes = %v, want %v", got, before2)
	}
	if restored := findPending(t, day1, "A"); restored.OriginItemID != "A" {
		t.Errorf("origin should point to the first scene, got %q", restored.OriginItemID)
	}
}

func TestExchange_FailureLeavesBothDaysUntouched(t *testing.T) {
	started := scene("B", "Office", 40)
	started.Status = models.ItemInProgress

	tests := []struct {
		name  string
		out   string
		in    string
		check func(error) bool
		side  apperr.SwapSide
	}{
		{name: "candidate not pending", out: "A", in: "B", check: apperr.IsInvalidState, side: apperr.SwapSideSource},
		{name: "unknown scene", out: "A", in: "nope", check: apperr.IsNotFound, side: apperr.SwapSideSource},
		{name: "candidate is a block", out: "A", in: "meal", check: apperr.IsValidation, side: apperr.SwapSideSource},
		{name: "unknown outgoing scene", out: "nope", in: "B", check: apperr.IsNotFound, side: apperr.SwapSideTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day1 := dayWith("d1", 1, scene("A", "Kitchen", 45))
			meal := models.ScheduleItem{ID: "meal", Kind: models.ItemKindBlock, BlockType: models.BlockMeal, Status: models.ItemPending}
			day2 := dayWith("d2", 2, started, meal)
			orig1, orig2 := day1.Clone(), day2.Clone()

			err := Exchange(day1, tt.out, day2, tt.in)
			if !tt.check(err) {
				t.Fatalf("Exchange() error = %v", err)
			}
			var cross *apperr.CrossDayTransactionError
			if !errors.As(err, &cross) || cross.Side != tt.side {
				t.Errorf("Exchange() error = %v, want a %s side failure", err, tt.side)
			}
			if len(day1.Items) != len(orig1.Items) || day1.Items[0].Status != orig1.Items[0].Status {
				t.Error("target day changed after a failed exchange")
			}
			if len(day2.Items) != len(orig2.Items) {
				t.Error("source day changed after a failed exchange")
			}
		})
	}

	day := dayWith("d1", 1, scene("A", "Kitchen", 45), scene("C", "Kitchen", 45))
	if err := Exchange(day, "A", day, "C"); !apperr.IsValidation(err) {
		t.Errorf("same-day exchange error = %v, want ValidationError", err)
	}
}

func TestExchange_CopyDropsSharedSetup(t *testing.T) {
	shared := scene("A", "Kitchen", 30)
	shared.SetupReducedMinutes = 15
	day1 := dayWith("d1", 1, scene("1", "Kitchen", 30), shared)
	day2 := dayWith("d2", 2, scene("B", "Office", 40))

	if err := Exchange(day1, "A", day2, "B"); err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	moved := findPending(t, day2, "A")
	if moved.EstimatedMinutes != 45 || moved.SetupReducedMinutes != 0 {
		t.Errorf("moved scene = %d min (setup reduced %d), want 45 (0)", moved.EstimatedMinutes, moved.SetupReducedMinutes)
	}
}
