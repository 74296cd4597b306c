package sqlcore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/models"
)

const itemColumns = `id, session_id, kind, position, status, actual_start_time, actual_end_time,
	actual_duration_minutes, skip_reason, notes, block_type, name, expected_start_time, expected_end_time,
	expected_duration_minutes, location_name, essential, scene_number, int_ext, set_name, description,
	time_of_day, estimated_minutes, origin_item_id, setup_reduced_minutes`

func scanItem(row rowScanner) (models.ScheduleItem, error) {
	var it models.ScheduleItem
	var kind, status, blockType string
	var actualStart, actualEnd, expectedStart, expectedEnd nullTime
	var actualDuration sql.NullInt64

	err := row.Scan(&it.ID, &it.SessionID, &kind, &it.Position, &status, &actualStart, &actualEnd,
		&actualDuration, &it.SkipReason, &it.Notes, &blockType, &it.Name, &expectedStart, &expectedEnd,
		&it.ExpectedDurationMinutes, &it.LocationName, &it.Essential, &it.SceneNumber, &it.IntExt, &it.SetName,
		&it.Description, &it.TimeOfDay, &it.EstimatedMinutes, &it.OriginItemID, &it.SetupReducedMinutes)
	if err != nil {
		return models.ScheduleItem{}, err
	}
	it.Kind = models.ItemKind(kind)
	it.Status = models.ItemStatus(status)
	it.BlockType = models.BlockType(blockType)
	it.ActualStartTime = actualStart.ptr()
	it.ActualEndTime = actualEnd.ptr()
	it.ActualDurationMinutes = intPtr(actualDuration)
	it.ExpectedStartTime = expectedStart.ptr()
	it.ExpectedEndTime = expectedEnd.ptr()
	return it, nil
}

// insertItems writes items in slice order; Position is taken from the index.
func (c *Core) insertItems(ctx context.Context, tx *sql.Tx, sessionID string, items []models.ScheduleItem) error {
	if len(items) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, c.rebind(`INSERT INTO schedule_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, it := range items {
		_, err := stmt.ExecContext(ctx,
			it.ID, sessionID, string(it.Kind), i, string(it.Status),
			c.nullTimeArg(it.ActualStartTime), c.nullTimeArg(it.ActualEndTime), nullInt(it.ActualDurationMinutes),
			it.SkipReason, it.Notes, string(it.BlockType), it.Name,
			c.nullTimeArg(it.ExpectedStartTime), c.nullTimeArg(it.ExpectedEndTime), it.ExpectedDurationMinutes,
			it.LocationName, it.Essential, it.SceneNumber, it.IntExt, it.SetName, it.Description,
			it.TimeOfDay, it.EstimatedMinutes, it.OriginItemID, it.SetupReducedMinutes)
		if err != nil {
			return fmt.Errorf("failed to insert item %s: %w", it.ID, err)
		}
	}
	return nil
}

func (c *Core) listItems(ctx context.Context, q queryer, sessionID string) ([]models.ScheduleItem, error) {
	rows, err := q.QueryContext(ctx, c.rebind(`SELECT `+itemColumns+` FROM schedule_items
		WHERE session_id = ? ORDER BY position`), sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of session %s: %w", sessionID, err)
	}
	defer rows.Close()

	items := []models.ScheduleItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// FindItemSession returns the id of the session that owns an item.
func (c *Core) FindItemSession(ctx context.Context, itemID string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	var sessionID string
	err := c.db.QueryRowContext(ctx, c.rebind(`SELECT session_id FROM schedule_items WHERE id = ?`), itemID).Scan(&sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.NewNotFound("item", itemID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to find item %s: %w", itemID, err)
	}
	return sessionID, nil
}
