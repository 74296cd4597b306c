package utils

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/hotset/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// CombineDateAndTime combines a date string (YYYY-MM-DD) and time string (HH:MM)
// into a single time.Time in the specified timezone.
func CombineDateAndTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	date, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}

	timeOfDay, err := ParseTime(timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %w", err)
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), 0, 0,
		loc,
	), nil
}

// ResolveShootClock resolves an HH:MM clock reading on a shoot day that
// started at call. Readings earlier than the call roll over to the next
// calendar day, so a 02:00 wrap after an 18:00 call lands the morning after.
// The result is in UTC.
func ResolveShootClock(call time.Time, clock string, loc *time.Location) (time.Time, error) {
	local := call.In(loc)
	t, err := CombineDateAndTime(local.Format(constants.DateFormat), clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	if t.Before(local) {
		t = t.AddDate(0, 0, 1)
	}
	return t.UTC(), nil
}

// MinutesBetween returns the whole minutes from start to end, rounded to the
// nearest minute. It is negative when end is before start.
func MinutesBetween(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

// AddMinutes adds a minute count to t.
func AddMinutes(t time.Time, minutes int) time.Time {
	return t.Add(time.Duration(minutes) * time.Minute)
}

// FormatClock renders t as HH:MM in the given IANA timezone, falling back to
// UTC when the zone cannot be loaded.
func FormatClock(t time.Time, timezone string) string {
	loc, err := LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format(constants.TimeFormat)
}

// FormatSignedMinutes renders a variance such as "+12m" or "-7m".
func FormatSignedMinutes(m int) string {
	if m > 0 {
		return fmt.Sprintf("+%dm", m)
	}
	return fmt.Sprintf("%dm", m)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
