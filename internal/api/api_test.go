package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/hotset/internal/config"
	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/hotset"
	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/storage/sqlite"
	"github.com/julianstephens/hotset/internal/variance"
)

var call = time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC)

func at(min int) string {
	return call.Add(time.Duration(min) * time.Minute).Format(time.RFC3339)
}

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "hotset.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := hotset.New(store, config.Default())
	srv := httptest.NewServer(NewRouter(NewHandler(svc, func() time.Time { return call })))
	t.Cleanup(srv.Close)
	return srv
}

func template() models.SessionTemplate {
	return models.SessionTemplate{
		ProductionDayID: "pd-1",
		DayNumber:       1,
		Timezone:        "UTC",
		Date:            "2026-03-09",
		CallTime:        "06:00",
		WrapTime:        "18:00",
		Items: []models.TemplateItem{
			{Kind: models.ItemKindBlock, BlockType: models.BlockMeal, Name: "Breakfast", DurationMinutes: 60},
			{Kind: models.ItemKindScene, SceneNumber: "1", SetName: "Kitchen", IntExt: "INT", TimeOfDay: "DAY", EstimatedMinutes: 30},
			{Kind: models.ItemKindScene, SceneNumber: "2", SetName: "Street", IntExt: "EXT", TimeOfDay: "DAY", EstimatedMinutes: 30},
			{Kind: models.ItemKindBlock, BlockType: models.BlockMeal, Name: "Lunch", DurationMinutes: 60},
			{Kind: models.ItemKindScene, SceneNumber: "3", SetName: "Office", IntExt: "INT", TimeOfDay: "DAY", EstimatedMinutes: 45},
		},
	}
}

// do sends body as JSON and decodes the response into out when non-nil.
func do(t *testing.T, method, url string, body, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
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

func createSession(t *testing.T, base string) models.Snapshot {
	t.Helper()
	var snap models.Snapshot
	if code := do(t, http.MethodPost, base+"/sessions", template(), &snap); code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", code)
	}
	return snap
}

func TestHealth(t *testing.T) {
	srv := setupServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestShootDayFlow(t *testing.T) {
	srv := setupServer(t)
	base := srv.URL
	snap := createSession(t, base)
	sid := snap.Session.ID

	steps := []struct {
		path string
		body interface{}
	}{
		{"/sessions/" + sid + "/start?at=" + at(0), nil},
		{"/items/" + itemID(t, snap, "Breakfast") + "/start?at=" + at(0), nil},
		{"/items/" + itemID(t, snap, "Breakfast") + "/complete?at=" + at(60), nil},
		{"/items/" + itemID(t, snap, "1") + "/start?at=" + at(60), nil},
		{"/items/" + itemID(t, snap, "1") + "/complete?at=" + at(105), completeRequest{ActualMinutes: intPtr(45)}},
	}
	for _, s := range steps {
		var res hotset.Result
		if code := do(t, http.MethodPost, base+s.path, s.body, &res); code != http.StatusOK {
			t.Fatalf("POST %s status = %d, want 200", s.path, code)
		}
	}

	var report variance.Report
	if code := do(t, http.MethodGet, base+"/sessions/"+sid+"/variance?at="+at(110), nil, &report); code != http.StatusOK {
		t.Fatalf("variance status = %d", code)
	}
	if report.CumulativeVariance != -15 || report.RealTimeDeviation != -20 {
		t.Errorf("variance = %d / %d, want -15 / -20", report.CumulativeVariance, report.RealTimeDeviation)
	}
	if report.Status != variance.StatusBehind {
		t.Errorf("status = %q, want %q", report.Status, variance.StatusBehind)
	}

	var suggestions []models.Suggestion
	do(t, http.MethodGet, base+"/sessions/"+sid+"/suggestions?at="+at(110), nil, &suggestions)
	var mealID string
	for _, s := range suggestions {
		if s.Type == models.SuggestShortenMeal {
			mealID = s.ID
		}
	}
	if mealID == "" {
		t.Fatalf("no shorten_meal suggestion in %+v", suggestions)
	}

	var applied hotset.Result
	if code := do(t, http.MethodPost, base+"/sessions/"+sid+"/suggestions/"+mealID+"/apply?at="+at(110), nil, &applied); code != http.StatusOK {
		t.Fatalf("apply status = %d", code)
	}
	lunch := -1
	for _, p := range applied.Projected {
		if p.Name == "Lunch" {
			lunch = p.PlannedDurationMinutes
		}
	}
	if lunch != 30 {
		t.Errorf("lunch duration = %d, want 30", lunch)
	}

	var schedule []models.ProjectedItem
	if code := do(t, http.MethodGet, base+"/sessions/"+sid+"/schedule?at="+at(110), nil, &schedule); code != http.StatusOK {
		t.Fatalf("schedule status = %d", code)
	}
	if len(schedule) != len(snap.Items) {
		t.Errorf("schedule has %d items, want %d", len(schedule), len(snap.Items))
	}
}

func TestErrorStatus(t *testing.T) {
	srv := setupServer(t)
	base := srv.URL
	snap := createSession(t, base)
	sid := snap.Session.ID

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		wantCode int
		wantKind string
	}{
		{"unknown session", http.MethodGet, "/sessions/missing", nil, http.StatusNotFound, "not_found"},
		{"unknown item", http.MethodPost, "/items/missing/start", nil, http.StatusNotFound, "not_found"},
		{"complete pending item", http.MethodPost, "/items/" + itemID(t, snap, "2") + "/complete", nil, http.StatusUnprocessableEntity, "invalid_state"},
		{"delete scene", http.MethodDelete, "/items/" + itemID(t, snap, "2"), nil, http.StatusUnprocessableEntity, "validation"},
		{"bad at", http.MethodGet, "/sessions/" + sid + "/variance?at=noon", nil, http.StatusBadRequest, "bad_request"},
		{"bad limit", http.MethodGet, "/sessions/" + sid + "/scenes/x/swaps?limit=many", nil, http.StatusBadRequest, "bad_request"},
		{"unknown field", http.MethodPost, "/sessions/" + sid + "/activities", map[string]string{"colour": "red"}, http.StatusBadRequest, "bad_request"},
		{"unknown suggestion", http.MethodPost, "/sessions/" + sid + "/suggestions/nope/apply", nil, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got errorResponse
			code := do(t, tt.method, base+tt.path, tt.body, &got)
			if code != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", code, tt.wantCode, got.Error)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestInvalidTemplate(t *testing.T) {
	srv := setupServer(t)
	tmpl := template()
	tmpl.CallTime = "25:00"

	var got errorResponse
	if code := do(t, http.MethodPost, srv.URL+"/sessions", tmpl, &got); code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 (%s)", code, got.Error)
	}
}

func TestInsertAndDeleteActivity(t *testing.T) {
	srv := setupServer(t)
	base := srv.URL
	snap := createSession(t, base)
	sid := snap.Session.ID

	var res hotset.Result
	spec := hotset.ActivitySpec{Name: "Company move", DurationMinutes: 15, InsertAfterID: itemID(t, snap, "1")}
	if code := do(t, http.MethodPost, base+"/sessions/"+sid+"/activities", spec, &res); code != http.StatusOK {
		t.Fatalf("insert status = %d", code)
	}
	var inserted string
	for _, p := range res.Projected {
		if p.Name == "Company move" {
			inserted = p.ItemID
		}
	}
	if inserted == "" {
		t.Fatal("inserted activity missing from projection")
	}
	if code := do(t, http.MethodDelete, base+"/items/"+inserted, nil, &res); code != http.StatusOK {
		t.Fatalf("delete status = %d", code)
	}
	if len(res.Projected) != len(snap.Items) {
		t.Errorf("projected %d items after delete, want %d", len(res.Projected), len(snap.Items))
	}
}

func TestListAndDeleteSession(t *testing.T) {
	srv := setupServer(t)
	base := srv.URL
	snap := createSession(t, base)

	var sessions []models.Session
	do(t, http.MethodGet, base+"/sessions", nil, &sessions)
	if len(sessions) != 1 || sessions[0].ID != snap.Session.ID {
		t.Fatalf("sessions = %+v", sessions)
	}
	if code := do(t, http.MethodDelete, base+"/sessions/"+snap.Session.ID, nil, nil); code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", code)
	}
	if code := do(t, http.MethodGet, base+"/sessions/"+snap.Session.ID, nil, nil); code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.NewNotFound("session", "x"), http.StatusNotFound},
		{apperr.NewConflict("x", 1, 2), http.StatusConflict},
		{&apperr.CrossDayTransactionError{Side: apperr.SwapSideSource, SessionID: "x", Err: errors.New("boom")}, http.StatusConflict},
		{&apperr.CrossDayTransactionError{Side: apperr.SwapSideSource, SessionID: "x", Err: apperr.NewInvalidState("scene", "y", "completed", "swap out")}, http.StatusUnprocessableEntity},
		{apperr.NewInvalidState("scene", "x", "completed", "start"), http.StatusUnprocessableEntity},
		{apperr.NewValidation("name", "required"), http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", apperr.NewNotFound("item", "y")), http.StatusNotFound},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func intPtr(v int) *int { return &v }
