package e2e

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const serverStartTimeout = 15 * time.Second

const dayTemplate = `production_day_id: pd-e2e
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
    estimated_minutes: 30
  - kind: block
    block_type: meal
    name: Lunch
    duration_minutes: 60
  - kind: scene
    scene_number: "2"
    set_name: Street
    estimated_minutes: 45
`

type env struct {
	cli  string
	vars []string
	dir  string
}

func setup(t *testing.T) env {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}
	binDir := os.Getenv("HOTSET_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	cliPath := filepath.Join(binDir, "hotset")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("hotset binary not found at %s, build it with 'go build -o bin/hotset ./cmd/hotset'", cliPath)
	}

	tempDir := t.TempDir()
	var vars []string
	for _, e := range os.Environ() {
		if !strings.HasPrefix(e, "HOME=") && !strings.HasPrefix(e, "HOTSET_") {
			vars = append(vars, e)
		}
	}
	vars = append(vars,
		"HOME="+tempDir,
		"HOTSET_CONFIG="+filepath.Join(tempDir, "hotset", "policy.yaml"),
	)
	return env{cli: cliPath, vars: vars, dir: tempDir}
}

func (e env) run(t *testing.T, args ...string) string {
	t.Helper()
	db := filepath.Join(e.dir, "hotset", "hotset.db")
	cmd := exec.Command(e.cli, append([]string{"--db", db}, args...)...)
	cmd.Env = e.vars
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("hotset %v failed: %v\nOutput: %s", args, err, out)
	}
	return string(out)
}

type snapshot struct {
	Session struct {
		ID string `json:"id"`
	} `json:"session"`
	Items []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		SceneNumber string `json:"scene_number"`
	} `json:"items"`
}

func (s snapshot) item(t *testing.T, label string) string {
	t.Helper()
	for _, it := range s.Items {
		if it.Name == label || it.SceneNumber == label {
			return it.ID
		}
	}
	t.Fatalf("no item %q", label)
	return ""
}

func TestShootDayWorkflow(t *testing.T) {
	e := setup(t)

	t.Log("Initializing storage...")
	e.run(t, "init")

	tmplPath := filepath.Join(e.dir, "day1.yaml")
	if err := os.WriteFile(tmplPath, []byte(dayTemplate), 0644); err != nil {
		t.Fatal(err)
	}
	e.run(t, "session", "create", tmplPath)

	list := strings.Fields(strings.TrimSpace(e.run(t, "session", "list")))
	sessionID := list[len(list)-1]

	var snap snapshot
	if err := json.Unmarshal([]byte(e.run(t, "session", "show", sessionID, "--json")), &snap); err != nil {
		t.Fatalf("session show --json is not JSON: %v", err)
	}

	t.Log("Running the morning...")
	e.run(t, "day", "start", sessionID, "--at", "06:00")
	e.run(t, "item", "start", snap.item(t, "Breakfast"), "--at", "06:00")
	e.run(t, "item", "complete", snap.item(t, "Breakfast"), "--at", "07:00")
	e.run(t, "item", "start", snap.item(t, "1"), "--at", "07:00")
	e.run(t, "item", "complete", snap.item(t, "1"), "--at", "07:45", "--minutes", "45")

	out := e.run(t, "variance", sessionID, "--at", "07:50")
	if !strings.Contains(out, "-15m") || !strings.Contains(out, "-20m") {
		t.Errorf("variance output:\n%s", out)
	}

	out = e.run(t, "suggest", sessionID, "--at", "07:50")
	if !strings.Contains(out, "Shorten Lunch") {
		t.Errorf("suggest output:\n%s", out)
	}
	e.run(t, "apply", sessionID, "shorten_meal:"+snap.item(t, "Lunch"), "--at", "07:50", "--yes")

	t.Log("Wrapping...")
	e.run(t, "item", "skip", snap.item(t, "Lunch"), "--at", "08:00")
	e.run(t, "item", "skip", snap.item(t, "2"), "--reason", "lost light", "--at", "08:00")
	e.run(t, "day", "wrap", sessionID, "--at", "08:00")

	var summary struct {
		ScenesCompleted    int `json:"scenes_completed"`
		ScenesSkipped      int `json:"scenes_skipped"`
		CumulativeVariance int `json:"cumulative_variance"`
	}
	if err := json.Unmarshal([]byte(e.run(t, "summary", sessionID)), &summary); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if summary.ScenesCompleted != 1 || summary.ScenesSkipped != 1 || summary.CumulativeVariance != -15 {
		t.Errorf("summary = %+v", summary)
	}

	if out := e.run(t, "backup", "list"); !strings.Contains(out, "wrap") {
		t.Errorf("expected a wrap backup:\n%s", out)
	}
}

func TestServeHealth(t *testing.T) {
	e := setup(t)
	e.run(t, "init")

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	cmd := exec.Command(e.cli, "--db", filepath.Join(e.dir, "hotset", "hotset.db"), "serve", "--addr", addr)
	cmd.Env = e.vars
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer func() {
		cmd.Process.Signal(os.Interrupt)
		cmd.Wait()
	}()

	url := fmt.Sprintf("http://%s/health", addr)
	deadline := time.Now().Add(serverStartTimeout)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("health status = %d", resp.StatusCode)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s: %v", url, err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
