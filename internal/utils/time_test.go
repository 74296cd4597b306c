package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: ""},
		{name: "Local returns local", timezone: "Local"},
		{name: "valid timezone UTC", timezone: "UTC"},
		{name: "valid timezone America/Los_Angeles", timezone: "America/Los_Angeles"},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestResolveShootClock(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	call := time.Date(2026, 10, 18, 18, 0, 0, 0, loc)

	tests := []struct {
		name  string
		clock string
		want  time.Time
	}{
		{name: "same evening", clock: "21:30", want: time.Date(2026, 10, 18, 21, 30, 0, 0, loc)},
		{name: "exactly at call", clock: "18:00", want: call},
		{name: "after midnight rolls over", clock: "02:15", want: time.Date(2026, 10, 19, 2, 15, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveShootClock(call, tt.clock, loc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ResolveShootClock() = %v, want %v", got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("expected UTC result, got %v", got.Location())
			}
		})
	}

	if _, err := ResolveShootClock(call, "25:00", loc); err == nil {
		t.Error("expected error for invalid clock")
	}
}

func TestMinutesBetween(t *testing.T) {
	base := time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC)
	tests := []struct {
		end  time.Time
		want int
	}{
		{base.Add(45 * time.Minute), 45},
		{base.Add(44*time.Minute + 40*time.Second), 45},
		{base.Add(-10 * time.Minute), -10},
		{base, 0},
	}
	for _, tt := range tests {
		if got := MinutesBetween(base, tt.end); got != tt.want {
			t.Errorf("MinutesBetween(%v) = %d, want %d", tt.end, got, tt.want)
		}
	}
}

func TestFormatClockAndSigned(t *testing.T) {
	ts := time.Date(2026, 10, 18, 13, 5, 0, 0, time.UTC)
	if got := FormatClock(ts, "UTC"); got != "13:05" {
		t.Errorf("FormatClock() = %q", got)
	}
	if got := FormatClock(ts, "Not/AZone"); got != "13:05" {
		t.Errorf("FormatClock() fallback = %q", got)
	}
	if got := FormatSignedMinutes(12); got != "+12m" {
		t.Errorf("FormatSignedMinutes(12) = %q", got)
	}
	if got := FormatSignedMinutes(-7); got != "-7m" {
		t.Errorf("FormatSignedMinutes(-7) = %q", got)
	}
	if got := FormatSignedMinutes(0); got != "0m" {
		t.Errorf("FormatSignedMinutes(0) = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandHome("~/.config/hotset/hotset.db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, ".config/hotset/hotset.db"); got != want {
		t.Errorf("ExpandHome() = %q, want %q", got, want)
	}
	if got, _ := ExpandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("absolute path changed: %q", got)
	}
}
