package hotset

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/hotset/internal/lifecycle"
	"github.com/julianstephens/hotset/internal/logger"
	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/notifier"
	"github.com/julianstephens/hotset/internal/utils"
	"github.com/julianstephens/hotset/internal/validation"
	"github.com/julianstephens/hotset/internal/variance"
)

// CreateSession validates a day template and stores it as a not-started
// session. Warnings are logged, errors reject the template.
func (s *Service) CreateSession(ctx context.Context, tmpl models.SessionTemplate) (models.Snapshot, error) {
	result := s.validator.ValidateTemplate(tmpl)
	if result.HasErrors() {
		return models.Snapshot{}, result.Err()
	}
	for _, c := range result.Conflicts {
		logger.Warn("Template warning", "production_day", tmpl.ProductionDayID, "type", c.Type, "detail", c.Description)
	}

	snap, err := expand(tmpl)
	if err != nil {
		return models.Snapshot{}, err
	}
	if err := s.store.CreateSession(ctx, snap); err != nil {
		return models.Snapshot{}, err
	}
	logger.Info("Created session", "session", snap.Session.ID, "day", snap.Session.DayNumber, "items", len(snap.Items))
	return s.store.GetSnapshot(ctx, snap.Session.ID)
}

// expand turns a validated template into a snapshot. Clock times before the
// call roll over to the next day.
func expand(tmpl models.SessionTemplate) (models.Snapshot, error) {
	loc, err := utils.LoadLocation(tmpl.Timezone)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("invalid timezone %q: %w", tmpl.Timezone, err)
	}
	call, err := utils.CombineDateAndTime(tmpl.Date, tmpl.CallTime, loc)
	if err != nil {
		return models.Snapshot{}, err
	}

	dayType := tmpl.DayType
	if dayType == "" {
		dayType = models.DayTypeShoot
	}
	session := models.Session{
		ID:              uuid.New().String(),
		ProductionDayID: tmpl.ProductionDayID,
		DayNumber:       tmpl.DayNumber,
		DayType:         dayType,
		Timezone:        tmpl.Timezone,
		PlannedCallTime: call.UTC(),
		Status:          models.SessionNotStarted,
		Version:         1,
	}
	if tmpl.WrapTime != "" {
		wrap, err := utils.ResolveShootClock(call, tmpl.WrapTime, loc)
		if err != nil {
			return models.Snapshot{}, err
		}
		session.PlannedWrapTime = &wrap
	}

	items := make([]models.ScheduleItem, 0, len(tmpl.Items))
	for _, ti := range tmpl.Items {
		item := models.ScheduleItem{
			ID:        uuid.New().String(),
			SessionID: session.ID,
			Kind:      ti.Kind,
			Status:    models.ItemPending,
			Notes:     ti.Notes,
		}
		if ti.Kind == models.ItemKindScene {
			item.SceneNumber = ti.SceneNumber
			item.IntExt = ti.IntExt
			item.SetName = ti.SetName
			item.Description = ti.Description
			item.TimeOfDay = ti.TimeOfDay
			item.EstimatedMinutes = ti.EstimatedMinutes
		} else {
			item.BlockType = ti.BlockType
			item.Name = ti.Name
			item.LocationName = ti.Location
			item.Essential = ti.Essential || ti.BlockType != models.BlockActivity
			item.ExpectedDurationMinutes = ti.DurationMinutes
			if ti.Start != "" {
				start, err := utils.ResolveShootClock(call, ti.Start, loc)
				if err != nil {
					return models.Snapshot{}, err
				}
				item.ExpectedStartTime = &start
			}
			if ti.End != "" {
				end, err := utils.ResolveShootClock(call, ti.End, loc)
				if err != nil {
					return models.Snapshot{}, err
				}
				item.ExpectedEndTime = &end
			}
			if item.ExpectedStartTime != nil && item.ExpectedEndTime != nil {
				item.ExpectedDurationMinutes = utils.MinutesBetween(*item.ExpectedStartTime, *item.ExpectedEndTime)
			}
		}
		items = append(items, item)
	}
	lifecycle.Resequence(items)

	return models.Snapshot{Session: session, Items: items}, nil
}

// ValidateTemplate reports template problems without storing anything.
func (s *Service) ValidateTemplate(tmpl models.SessionTemplate) validation.ValidationResult {
	return s.validator.ValidateTemplate(tmpl)
}

func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	return s.store.DeleteSession(ctx, sessionID)
}

// GetDaySummary is the read-only view handed to reporting. Shooting minutes
// count completed scenes only.
func (s *Service) GetDaySummary(ctx context.Context, sessionID string) (models.DaySummary, error) {
	snap, err := s.store.GetSnapshot(ctx, sessionID)
	if err != nil {
		return models.DaySummary{}, err
	}
	sum := models.DaySummary{
		SessionID:          snap.Session.ID,
		ProductionDayID:    snap.Session.ProductionDayID,
		DayNumber:          snap.Session.DayNumber,
		Status:             string(snap.Session.Status),
		CallTime:           snap.Session.ActualStartTime,
		WrapTime:           snap.Session.ActualWrapTime,
		CumulativeVariance: s.variance.CumulativeVariance(snap.Items),
	}
	for _, it := range snap.Items {
		if !it.IsScene() {
			continue
		}
		switch it.Status {
		case models.ItemCompleted:
			sum.ScenesCompleted++
			if it.ActualDurationMinutes != nil {
				sum.TotalShootingMinutes += *it.ActualDurationMinutes
			}
		case models.ItemSkipped:
			sum.ScenesSkipped++
		case models.ItemSwappedOut:
			sum.ScenesSwappedOut++
		}
	}
	return sum, nil
}

func dayTitle(sessionID string, dayNumber int) string {
	if dayNumber > 0 {
		return fmt.Sprintf("Day %d", dayNumber)
	}
	return "Session " + sessionID
}

func behindAlert(session models.Session, report variance.Report) notifier.Alert {
	return notifier.Alert{
		SessionID: session.ID,
		Level:     notifier.LevelWarning,
		Title:     dayTitle(session.ID, session.DayNumber) + " significantly behind",
		Text: fmt.Sprintf("Running %s against the clock (%s on completed work).",
			utils.FormatSignedMinutes(report.RealTimeDeviation), utils.FormatSignedMinutes(report.CumulativeVariance)),
	}
}

func wrapAlert(sum models.DaySummary) notifier.Alert {
	wrap := "now"
	if sum.WrapTime != nil {
		wrap = sum.WrapTime.Format(time.Kitchen)
	}
	return notifier.Alert{
		SessionID: sum.SessionID,
		Level:     notifier.LevelInfo,
		Title:     dayTitle(sum.SessionID, sum.DayNumber) + " wrapped",
		Text: fmt.Sprintf("Wrapped at %s UTC: %d scenes completed, %d skipped, %s variance.",
			wrap, sum.ScenesCompleted, sum.ScenesSkipped, utils.FormatSignedMinutes(sum.CumulativeVariance)),
	}
}
