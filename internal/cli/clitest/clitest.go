// Package clitest builds command contexts over a temporary SQLite store.
package clitest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/hotset/internal/backup"
	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/config"
	"github.com/julianstephens/hotset/internal/hotset"
	"github.com/julianstephens/hotset/internal/storage/sqlite"
)

// Call is the planned crew call of Template.
var Call = time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC)

// Template is a five-item day: breakfast, Sc. 1, Sc. 2, lunch, Sc. 3.
const Template = `production_day_id: pd-1
day_number: 1
timezone: UTC
date: "2026-03-09"
call_time: "06:00"
wrap_time: "18:00"
items:
  - kind: block
    block_type: meal
    name: Breakfast
    duration_minutes: 60
  - kind: scene
    scene_number: "1"
    set_name: Kitchen
    int_ext: INT
    time_of_day: DAY
    estimated_minutes: 30
  - kind: scene
    scene_number: "2"
    set_name: Street
    int_ext: EXT
    time_of_day: DAY
    estimated_minutes: 30
  - kind: block
    block_type: meal
    name: Lunch
    duration_minutes: 60
  - kind: scene
    scene_number: "3"
    set_name: Office
    int_ext: INT
    time_of_day: DAY
    estimated_minutes: 45
`

// NewContext returns an initialized context whose output goes to the
// returned buffer and whose clock reads Call.
func NewContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "hotset.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	policy := config.Default()
	mgr := backup.NewManager(dbPath)
	out := &bytes.Buffer{}
	return &cli.Context{
		Store:   store,
		Service: hotset.New(store, policy, hotset.WithBackups(mgr)),
		Policy:  policy,
		Backups: mgr,
		Now:     func() time.Time { return Call },
		Out:     out,
	}, out
}

// WriteTemplate writes Template to a temporary YAML file.
func WriteTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "day1.yaml")
	if err := os.WriteFile(path, []byte(Template), 0644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	return path
}
