package items

import (
	"context"
	"strings"
	"testing"

	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/cli/clitest"
	"github.com/julianstephens/hotset/internal/config"
	"github.com/julianstephens/hotset/internal/models"
)

func startedDay(t *testing.T, ctx *cli.Context) models.Snapshot {
	t.Helper()
	bg := context.Background()
	tmpl, err := config.LoadTemplate(clitest.WriteTemplate(t))
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	snap, err := ctx.Service.CreateSession(bg, tmpl)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := ctx.Service.StartDay(bg, snap.Session.ID, clitest.Call); err != nil {
		t.Fatalf("StartDay() error = %v", err)
	}
	return snap
}

func itemID(t *testing.T, snap models.Snapshot, label string) string {
	t.Helper()
	for _, it := range snap.Items {
		if it.SceneNumber == label || it.Name == label {
			return it.ID
		}
	}
	t.Fatalf("no item %q", label)
	return ""
}

func TestItemCommands(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	snap := startedDay(t, ctx)
	breakfast := itemID(t, snap, "Breakfast")

	steps := []struct {
		name string
		cmd  interface{ Run(*cli.Context) error }
		want string
	}{
		{"start", &ItemStartCmd{ItemID: breakfast, At: "06:00"}, "Breakfast: in_progress"},
		{"complete", &ItemCompleteCmd{ItemID: breakfast, At: "06:50", Minutes: -1}, "Breakfast: completed"},
		{"skip", &ItemSkipCmd{ItemID: itemID(t, snap, "2"), Reason: "lost light"}, "Sc. 2 Street: skipped"},
		{"move", &ItemMoveCmd{ItemID: itemID(t, snap, "3"), After: breakfast}, "Sc. 3 Office: pending"},
	}
	for _, s := range steps {
		out.Reset()
		if err := s.cmd.Run(ctx); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if !strings.Contains(out.String(), s.want) {
			t.Errorf("%s output missing %q:\n%s", s.name, s.want, out.String())
		}
	}

	after, _ := ctx.Service.GetSnapshot(context.Background(), snap.Session.ID)
	if got := after.Items[1].SceneNumber; got != "3" {
		t.Errorf("item after breakfast = Sc. %s, want Sc. 3", got)
	}
	if got := after.Items[0].ActualDurationMinutes; got == nil || *got != 50 {
		t.Errorf("breakfast actual = %v, want 50", got)
	}
}

func TestCompleteWithMinutes(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	snap := startedDay(t, ctx)
	breakfast := itemID(t, snap, "Breakfast")

	if err := (&ItemStartCmd{ItemID: breakfast, At: "06:00"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&ItemCompleteCmd{ItemID: breakfast, At: "07:30", Minutes: 45}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	after, _ := ctx.Service.GetSnapshot(context.Background(), snap.Session.ID)
	if got := after.Items[0].ActualDurationMinutes; got == nil || *got != 45 {
		t.Errorf("breakfast actual = %v, want 45", got)
	}
}

func TestActivityInsertAndDelete(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	snap := startedDay(t, ctx)

	cmd := &ActivityInsertCmd{SessionID: snap.Session.ID, Name: "Company move", Minutes: 20, Type: "company_move", After: itemID(t, snap, "1")}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if !strings.Contains(out.String(), "Inserted Company move (20m)") {
		t.Errorf("output = %q", out.String())
	}

	after, _ := ctx.Service.GetSnapshot(context.Background(), snap.Session.ID)
	move := after.Items[2]
	if move.Name != "Company move" || move.BlockType != models.BlockCompanyMove {
		t.Fatalf("items[2] = %+v, want the company move", move)
	}

	if err := (&ItemDeleteCmd{ItemID: move.ID, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	after, _ = ctx.Service.GetSnapshot(context.Background(), snap.Session.ID)
	if len(after.Items) != len(snap.Items) {
		t.Errorf("%d items after delete, want %d", len(after.Items), len(snap.Items))
	}
}

func TestAdjustBlock(t *testing.T) {
	ctx, _ := clitest.NewContext(t)
	snap := startedDay(t, ctx)
	lunch := itemID(t, snap, "Lunch")

	if err := (&ItemAdjustCmd{ItemID: lunch, Start: "12:00", End: "12:45"}).Run(ctx); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	after, _ := ctx.Service.GetSnapshot(context.Background(), snap.Session.ID)
	got := after.Items[after.Item(lunch)]
	if got.ExpectedDurationMinutes != 45 {
		t.Errorf("lunch = %d minutes, want 45", got.ExpectedDurationMinutes)
	}

	if err := (&ItemAdjustCmd{ItemID: lunch, Start: "12:00", End: "noon"}).Run(ctx); err == nil {
		t.Error("adjust with an unreadable time should fail")
	}
}
