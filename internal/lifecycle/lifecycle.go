// Package lifecycle is the only place that changes session and schedule item
// state. Every operation works on an in-memory snapshot and either applies the
// whole change or returns an error and leaves the snapshot untouched.
package lifecycle

import (
	"time"

	"github.com/google/uuid"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/utils"
)

const (
	entitySession = "session"
	entityItem    = "item"
	entityBlock   = "block"
	entityScene   = "scene"
)

// StartDay marks the first real activity of the day.
func StartDay(s *models.Snapshot, now time.Time) error {
	if s.Session.Status != models.SessionNotStarted {
		return apperr.NewInvalidState(entitySession, s.Session.ID, string(s.Session.Status), "start")
	}
	t := now.UTC()
	s.Session.ActualStartTime = &t
	s.Session.Status = models.SessionInProgress
	return nil
}

// Wrap ends the day. The session becomes read-only.
func Wrap(s *models.Snapshot, now time.Time) error {
	if s.Session.Status != models.SessionInProgress {
		return apperr.NewInvalidState(entitySession, s.Session.ID, string(s.Session.Status), "wrap")
	}
	if i := inProgressIndex(s.Items); i >= 0 {
		return apperr.NewInvalidState(entityItem, s.Items[i].ID, string(models.ItemInProgress), "wrap day while")
	}
	t := now.UTC()
	s.Session.ActualWrapTime = &t
	s.Session.Status = models.SessionWrapped
	return nil
}

// Start moves a pending item to in_progress. The session must be running and
// no other item may be in progress.
func Start(s *models.Snapshot, itemID string, now time.Time) error {
	idx, err := lookup(s, itemID)
	if err != nil {
		return err
	}
	if s.Session.Status != models.SessionInProgress {
		return apperr.NewInvalidState(entitySession, s.Session.ID, string(s.Session.Status), "start an item in")
	}
	item := &s.Items[idx]
	if item.Status != models.ItemPending {
		return apperr.NewInvalidState(entityName(*item), item.ID, string(item.Status), "start")
	}
	if other := inProgressIndex(s.Items); other >= 0 {
		return apperr.NewInvalidState(entityName(s.Items[other]), s.Items[other].ID, string(models.ItemInProgress),
			"start "+item.ID+" while")
	}
	t := now.UTC()
	item.Status = models.ItemInProgress
	item.ActualStartTime = &t
	return nil
}

// Complete finishes an in-progress item. When actualMinutes is nil the
// duration is the wall-clock time since the item started.
func Complete(s *models.Snapshot, itemID string, actualMinutes *int, now time.Time) error {
	idx, err := lookup(s, itemID)
	if err != nil {
		return err
	}
	item := &s.Items[idx]
	if item.Status != models.ItemInProgress {
		return apperr.NewInvalidState(entityName(*item), item.ID, string(item.Status), "complete")
	}

	var minutes int
	if actualMinutes != nil {
		if *actualMinutes < 0 {
			return apperr.NewValidation("actual_duration_minutes", "must not be negative, got %d", *actualMinutes)
		}
		minutes = *actualMinutes
	} else {
		minutes = utils.MinutesBetween(*item.ActualStartTime, now)
		if minutes < 0 {
			minutes = 0
		}
	}

	end := utils.AddMinutes(*item.ActualStartTime, minutes)
	item.Status = models.ItemCompleted
	item.ActualEndTime = &end
	item.ActualDurationMinutes = &minutes
	return nil
}

// Skip abandons a pending or in-progress item. A skipped item contributes
// nothing to cumulative variance.
func Skip(s *models.Snapshot, itemID, reason string, now time.Time) error {
	idx, err := lookup(s, itemID)
	if err != nil {
		return err
	}
	item := &s.Items[idx]
	if item.Status.IsTerminal() {
		return apperr.NewInvalidState(entityName(*item), item.ID, string(item.Status), "skip")
	}
	if item.Status == models.ItemInProgress {
		t := now.UTC()
		item.ActualEndTime = &t
	}
	item.Status = models.ItemSkipped
	item.SkipReason = reason
	return nil
}

// SwapOut marks a pending scene as moved to another day.
func SwapOut(s *models.Snapshot, sceneID string) error {
	idx, err := lookup(s, sceneID)
	if err != nil {
		return err
	}
	item := &s.Items[idx]
	if !item.IsScene() {
		return apperr.NewValidation("scene_id", "%s is not a scene", sceneID)
	}
	if item.Status != models.ItemPending {
		return apperr.NewInvalidState(entityScene, item.ID, string(item.Status), "swap out")
	}
	item.Status = models.ItemSwappedOut
	return nil
}

// Adjust moves a pending block to a new fixed window.
func Adjust(s *models.Snapshot, blockID string, start, end time.Time) error {
	idx, err := lookupPending(s, blockID, "adjust")
	if err != nil {
		return err
	}
	item := &s.Items[idx]
	if !item.IsBlock() {
		return apperr.NewValidation("block_id", "%s is not a block", blockID)
	}
	if !end.After(start) {
		return apperr.NewValidation("end_time", "must be after start time")
	}
	st, et := start.UTC(), end.UTC()
	item.ExpectedStartTime = &st
	item.ExpectedEndTime = &et
	item.ExpectedDurationMinutes = utils.MinutesBetween(st, et)
	return nil
}

// SetPlannedMinutes changes the planned duration of a pending item. A fixed
// block window is shortened from its end.
func SetPlannedMinutes(s *models.Snapshot, itemID string, minutes int) error {
	if minutes < 0 {
		return apperr.NewValidation("duration_minutes", "must not be negative, got %d", minutes)
	}
	idx, err := lookupPending(s, itemID, "resize")
	if err != nil {
		return err
	}
	item := &s.Items[idx]
	if item.IsScene() {
		item.EstimatedMinutes = minutes
		return nil
	}
	item.ExpectedDurationMinutes = minutes
	if item.ExpectedStartTime != nil {
		end := utils.AddMinutes(*item.ExpectedStartTime, minutes)
		item.ExpectedEndTime = &end
	}
	return nil
}

// ShareSetup takes up to minutes off a pending scene's estimate because it
// reuses the setup of the scene before it, and records the reduction.
func ShareSetup(s *models.Snapshot, sceneID string, minutes int) error {
	if minutes <= 0 {
		return apperr.NewValidation("overlap_minutes", "must be positive, got %d", minutes)
	}
	idx, err := lookupPending(s, sceneID, "share setup for")
	if err != nil {
		return err
	}
	item := &s.Items[idx]
	if !item.IsScene() {
		return apperr.NewValidation("scene_id", "%s is not a scene", sceneID)
	}
	if item.SetupReducedMinutes > 0 {
		return apperr.NewInvalidState(entityScene, item.ID, "", "share setup again for")
	}
	cut := min(minutes, item.EstimatedMinutes)
	item.EstimatedMinutes -= cut
	item.SetupReducedMinutes = cut
	return nil
}

// NewBlock builds a pending block for insertion.
func NewBlock(sessionID string, blockType models.BlockType, name string, minutes int) (models.ScheduleItem, error) {
	if !blockType.IsValid() {
		return models.ScheduleItem{}, apperr.NewValidation("block_type", "unknown block type %q", blockType)
	}
	if minutes <= 0 {
		return models.ScheduleItem{}, apperr.NewValidation("duration_minutes", "must be positive, got %d", minutes)
	}
	return models.ScheduleItem{
		ID:                      uuid.New().String(),
		SessionID:               sessionID,
		Kind:                    models.ItemKindBlock,
		Status:                  models.ItemPending,
		BlockType:               blockType,
		Name:                    name,
		ExpectedDurationMinutes: minutes,
		Essential:               blockType != models.BlockActivity,
	}, nil
}

// InsertAfter inserts a new pending item directly after afterID, or at the
// end of the day when afterID is empty. The anchor may be in any state.
func InsertAfter(s *models.Snapshot, afterID string, item models.ScheduleItem) error {
	if s.Session.IsReadOnly() {
		return readOnly(s)
	}
	at := len(s.Items)
	if afterID != "" {
		idx := s.Item(afterID)
		if idx < 0 {
			return apperr.NewNotFound(entityItem, afterID)
		}
		at = idx + 1
	}
	return InsertAt(s, at, item)
}

// InsertAt inserts a new pending item at index at.
func InsertAt(s *models.Snapshot, at int, item models.ScheduleItem) error {
	if s.Session.IsReadOnly() {
		return readOnly(s)
	}
	if at < 0 || at > len(s.Items) {
		return apperr.NewValidation("position", "index %d out of range", at)
	}
	if s.Item(item.ID) >= 0 {
		return apperr.NewValidation("id", "item %s already exists", item.ID)
	}
	item.SessionID = s.Session.ID
	item.Status = models.ItemPending
	item.ActualStartTime = nil
	item.ActualEndTime = nil
	item.ActualDurationMinutes = nil

	s.Items = append(s.Items, models.ScheduleItem{})
	copy(s.Items[at+1:], s.Items[at:])
	s.Items[at] = item
	Resequence(s.Items)
	return nil
}

// Delete removes a pending block.
func Delete(s *models.Snapshot, blockID string) error {
	idx, err := lookupPending(s, blockID, "delete")
	if err != nil {
		return err
	}
	if !s.Items[idx].IsBlock() {
		return apperr.NewValidation("block_id", "%s is not a block; scenes are skipped or swapped, not deleted", blockID)
	}
	s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
	Resequence(s.Items)
	return nil
}

// Move relocates a pending item so it sits directly after afterID.
func Move(s *models.Snapshot, itemID, afterID string) error {
	idx, err := lookupPending(s, itemID, "move")
	if err != nil {
		return err
	}
	if itemID == afterID {
		return apperr.NewValidation("after_id", "cannot move an item after itself")
	}
	item := s.Items[idx]
	if afterID != "" && s.Item(afterID) < 0 {
		return apperr.NewNotFound(entityItem, afterID)
	}

	rest := append(s.Items[:idx:idx], s.Items[idx+1:]...)
	at := 0
	if afterID != "" {
		for i := range rest {
			if rest[i].ID == afterID {
				at = i + 1
				break
			}
		}
	}
	out := make([]models.ScheduleItem, 0, len(s.Items))
	out = append(out, rest[:at]...)
	out = append(out, item)
	out = append(out, rest[at:]...)
	s.Items = out
	Resequence(s.Items)
	return nil
}

// Resequence rewrites Position as 0..n-1 in slice order.
func Resequence(items []models.ScheduleItem) {
	for i := range items {
		items[i].Position = i
	}
}

func inProgressIndex(items []models.ScheduleItem) int {
	for i := range items {
		if items[i].Status == models.ItemInProgress {
			return i
		}
	}
	return -1
}

func lookup(s *models.Snapshot, id string) (int, error) {
	if s.Session.IsReadOnly() {
		return -1, readOnly(s)
	}
	idx := s.Item(id)
	if idx < 0 {
		return -1, apperr.NewNotFound(entityItem, id)
	}
	return idx, nil
}

func lookupPending(s *models.Snapshot, id, op string) (int, error) {
	idx, err := lookup(s, id)
	if err != nil {
		return -1, err
	}
	if item := s.Items[idx]; item.Status != models.ItemPending {
		return -1, apperr.NewInvalidState(entityName(item), item.ID, string(item.Status), op)
	}
	return idx, nil
}

func readOnly(s *models.Snapshot) error {
	return apperr.NewInvalidState(entitySession, s.Session.ID, string(s.Session.Status), "modify")
}

func entityName(item models.ScheduleItem) string {
	if item.IsScene() {
		return entityScene
	}
	return entityBlock
}
