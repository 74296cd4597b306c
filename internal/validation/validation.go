package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/utils"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMissingField           ConflictType = "missing_field"
	ConflictInvalidDateTime        ConflictType = "invalid_datetime"
	ConflictInvalidDuration        ConflictType = "invalid_duration"
	ConflictUnknownKind            ConflictType = "unknown_kind"
	ConflictUnknownBlockType       ConflictType = "unknown_block_type"
	ConflictDuplicateSceneNumber   ConflictType = "duplicate_scene_number"
	ConflictEndBeforeStart         ConflictType = "end_before_start"
	ConflictOverlappingFixedBlocks ConflictType = "overlapping_fixed_blocks"
	ConflictExceedsWorkday         ConflictType = "exceeds_workday"
)

// Severity separates problems that block session creation from ones that
// are only reported.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Conflict represents a detected problem in a session template
type Conflict struct {
	Type        ConflictType `json:"type"`
	Severity    Severity     `json:"severity"`
	Description string       `json:"description"`
	Items       []int        `json:"items,omitempty"` // template item indexes involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict `json:"conflicts"`
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// HasErrors returns true if any conflict blocks session creation
func (vr *ValidationResult) HasErrors() bool {
	for _, c := range vr.Conflicts {
		if c.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err returns a ValidationError describing every error-level conflict, or nil.
func (vr *ValidationResult) Err() error {
	var msgs []string
	for _, c := range vr.Conflicts {
		if c.Severity == SeverityError {
			msgs = append(msgs, c.Description)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return &apperr.ValidationError{Field: "template", Message: strings.Join(msgs, "; ")}
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- [%s] %s\n", conflict.Severity, conflict.Description)
	}
	return report
}

// Validator validates session templates
type Validator struct {
	maxWorkdayMinutes int
}

// New creates a new Validator. A positive maxWorkdayMinutes enables the
// workday length warning.
func New(maxWorkdayMinutes int) *Validator {
	return &Validator{maxWorkdayMinutes: maxWorkdayMinutes}
}

type window struct {
	idx        int
	name       string
	start, end time.Time
}

// ValidateTemplate checks a session template before it is expanded.
func (v *Validator) ValidateTemplate(tmpl models.SessionTemplate) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}
	add := func(t ConflictType, sev Severity, items []int, format string, args ...interface{}) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type: t, Severity: sev, Items: items, Description: fmt.Sprintf(format, args...),
		})
	}

	if tmpl.ProductionDayID == "" {
		add(ConflictMissingField, SeverityError, nil, "production_day_id is required")
	}
	if tmpl.DayNumber < 0 {
		add(ConflictMissingField, SeverityError, nil, "day_number must not be negative, got %d", tmpl.DayNumber)
	}

	loc, err := utils.LoadLocation(tmpl.Timezone)
	if err != nil {
		add(ConflictInvalidDateTime, SeverityError, nil, "unknown timezone %q", tmpl.Timezone)
		loc = time.UTC
	}

	call, err := utils.CombineDateAndTime(tmpl.Date, tmpl.CallTime, loc)
	callOK := err == nil
	if !callOK {
		add(ConflictInvalidDateTime, SeverityError, nil, "invalid date/call_time %q %q: %v", tmpl.Date, tmpl.CallTime, err)
	}

	resolve := func(clock string) (time.Time, bool) {
		if !callOK {
			return time.Time{}, false
		}
		t, err := utils.ResolveShootClock(call, clock, loc)
		return t, err == nil
	}

	totalPlanned := 0
	scenes := make(map[string][]int)
	var fixed []window

	for i, item := range tmpl.Items {
		label := itemLabel(i, item)

		switch item.Kind {
		case models.ItemKindScene:
			if item.SceneNumber == "" {
				add(ConflictMissingField, SeverityError, []int{i}, "%s has no scene_number", label)
			} else {
				scenes[item.SceneNumber] = append(scenes[item.SceneNumber], i)
			}
			if item.EstimatedMinutes < 0 {
				add(ConflictInvalidDuration, SeverityError, []int{i}, "%s has negative estimated_minutes %d", label, item.EstimatedMinutes)
			} else {
				totalPlanned += item.EstimatedMinutes
			}

		case models.ItemKindBlock:
			if !item.BlockType.IsValid() {
				add(ConflictUnknownBlockType, SeverityError, []int{i}, "%s has unknown block_type %q", label, item.BlockType)
			}
			if item.DurationMinutes < 0 {
				add(ConflictInvalidDuration, SeverityError, []int{i}, "%s has negative duration_minutes %d", label, item.DurationMinutes)
			}

			var start, end time.Time
			var hasStart, hasEnd bool
			if item.Start != "" {
				if start, hasStart = resolve(item.Start); !hasStart && callOK {
					add(ConflictInvalidDateTime, SeverityError, []int{i}, "%s has invalid start time %q", label, item.Start)
				}
			}
			if item.End != "" {
				if end, hasEnd = resolve(item.End); !hasEnd && callOK {
					add(ConflictInvalidDateTime, SeverityError, []int{i}, "%s has invalid end time %q", label, item.End)
				}
			}

			minutes := item.DurationMinutes
			if hasStart && hasEnd {
				if !end.After(start) {
					add(ConflictEndBeforeStart, SeverityError, []int{i}, "%s ends at %s, not after its start %s", label, item.End, item.Start)
				} else {
					minutes = utils.MinutesBetween(start, end)
					fixed = append(fixed, window{idx: i, name: label, start: start, end: end})
				}
			}
			if minutes <= 0 && !(hasStart && hasEnd) {
				add(ConflictInvalidDuration, SeverityError, []int{i}, "%s needs a positive duration_minutes or start and end", label)
			}
			if minutes > 0 {
				totalPlanned += minutes
			}

		default:
			add(ConflictUnknownKind, SeverityError, []int{i}, "item %d has unknown kind %q (want block or scene)", i, item.Kind)
		}
	}

	// Duplicate scene numbers
	numbers := make([]string, 0, len(scenes))
	for n := range scenes {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	for _, n := range numbers {
		if idxs := scenes[n]; len(idxs) > 1 {
			add(ConflictDuplicateSceneNumber, SeverityError, idxs, "scene %s appears %d times", n, len(idxs))
		}
	}

	// Overlapping fixed blocks
	sort.Slice(fixed, func(i, j int) bool { return fixed[i].start.Before(fixed[j].start) })
	for i := 1; i < len(fixed); i++ {
		prev, cur := fixed[i-1], fixed[i]
		if cur.start.Before(prev.end) {
			add(ConflictOverlappingFixedBlocks, SeverityWarning, []int{prev.idx, cur.idx},
				"%s overlaps %s", prev.name, cur.name)
		}
	}

	if tmpl.WrapTime != "" {
		wrap, ok := resolve(tmpl.WrapTime)
		if !ok && callOK {
			add(ConflictInvalidDateTime, SeverityError, nil, "invalid wrap_time %q", tmpl.WrapTime)
		}
		if ok && v.maxWorkdayMinutes > 0 {
			if workday := utils.MinutesBetween(call, wrap); workday > v.maxWorkdayMinutes {
				add(ConflictExceedsWorkday, SeverityWarning, nil,
					"planned workday of %d minutes exceeds the %d-minute maximum", workday, v.maxWorkdayMinutes)
			}
		}
	} else if v.maxWorkdayMinutes > 0 && totalPlanned > v.maxWorkdayMinutes {
		add(ConflictExceedsWorkday, SeverityWarning, nil,
			"planned work of %d minutes exceeds the %d-minute maximum", totalPlanned, v.maxWorkdayMinutes)
	}

	return result
}

func itemLabel(i int, item models.TemplateItem) string {
	if item.Kind == models.ItemKindScene {
		return fmt.Sprintf("scene %q (item %d)", item.SceneNumber, i)
	}
	if item.Name != "" {
		return fmt.Sprintf("block %q (item %d)", item.Name, i)
	}
	return fmt.Sprintf("%s block (item %d)", item.BlockType, i)
}
