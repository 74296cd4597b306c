package sqlcore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/models"
)

const sessionColumns = `id, production_day_id, day_number, day_type, timezone, planned_call_time,
	planned_wrap_time, actual_start_time, actual_wrap_time, status, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	var call, created, updated nullTime
	var plannedWrap, actualStart, actualWrap nullTime
	var dayType, status string

	err := row.Scan(&s.ID, &s.ProductionDayID, &s.DayNumber, &dayType, &s.Timezone, &call,
		&plannedWrap, &actualStart, &actualWrap, &status, &s.Version, &created, &updated)
	if err != nil {
		return models.Session{}, err
	}
	s.DayType = models.DayType(dayType)
	s.Status = models.SessionStatus(status)
	s.PlannedCallTime = call.Time
	s.PlannedWrapTime = plannedWrap.ptr()
	s.ActualStartTime = actualStart.ptr()
	s.ActualWrapTime = actualWrap.ptr()
	s.CreatedAt = created.Time
	s.UpdatedAt = updated.Time
	return s, nil
}

// CreateSession inserts a new session with its items.
func (c *Core) CreateSession(ctx context.Context, snap models.Snapshot) error {
	if err := c.ready(); err != nil {
		return err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s := snap.Session
	now := c.now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	if s.Version == 0 {
		s.Version = 1
	}

	_, err = tx.ExecContext(ctx, c.rebind(`INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		s.ID, s.ProductionDayID, s.DayNumber, string(s.DayType), s.Timezone, c.timeArg(s.PlannedCallTime),
		c.nullTimeArg(s.PlannedWrapTime), c.nullTimeArg(s.ActualStartTime), c.nullTimeArg(s.ActualWrapTime),
		string(s.Status), s.Version, c.timeArg(s.CreatedAt), c.timeArg(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert session %s: %w", s.ID, err)
	}

	if err := c.insertItems(ctx, tx, s.ID, snap.Items); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *Core) GetSession(ctx context.Context, id string) (models.Session, error) {
	if err := c.ready(); err != nil {
		return models.Session{}, err
	}
	return c.getSession(ctx, c.db, id)
}

func (c *Core) getSession(ctx context.Context, q queryer, id string) (models.Session, error) {
	row := q.QueryRowContext(ctx, c.rebind(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`), id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, apperr.NewNotFound("session", id)
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return s, nil
}

// ListSessions returns all sessions ordered by day number and call time.
func (c *Core) ListSessions(ctx context.Context) ([]models.Session, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY day_number, planned_call_time, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session and all of its items.
func (c *Core) DeleteSession(ctx context.Context, id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, c.rebind(`DELETE FROM schedule_items WHERE session_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete items of session %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, c.rebind(`DELETE FROM sessions WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NewNotFound("session", id)
	}
	return tx.Commit()
}

// updateSession bumps the version of a session row if it still carries
// expectedVersion.
func (c *Core) updateSession(ctx context.Context, tx *sql.Tx, s models.Session, expectedVersion int) (models.Session, error) {
	now := c.now().UTC()
	res, err := tx.ExecContext(ctx, c.rebind(`UPDATE sessions SET
			production_day_id = ?, day_number = ?, day_type = ?, timezone = ?, planned_call_time = ?,
			planned_wrap_time = ?, actual_start_time = ?, actual_wrap_time = ?, status = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`),
		s.ProductionDayID, s.DayNumber, string(s.DayType), s.Timezone, c.timeArg(s.PlannedCallTime),
		c.nullTimeArg(s.PlannedWrapTime), c.nullTimeArg(s.ActualStartTime), c.nullTimeArg(s.ActualWrapTime),
		string(s.Status), c.timeArg(now), s.ID, expectedVersion)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to update session %s: %w", s.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to update session %s: %w", s.ID, err)
	}
	if n == 0 {
		var actual int
		err := tx.QueryRowContext(ctx, c.rebind(`SELECT version FROM sessions WHERE id = ?`), s.ID).Scan(&actual)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, apperr.NewNotFound("session", s.ID)
		}
		if err != nil {
			return models.Session{}, fmt.Errorf("failed to read version of session %s: %w", s.ID, err)
		}
		return models.Session{}, apperr.NewConflict(s.ID, expectedVersion, actual)
	}

	s.Version = expectedVersion + 1
	s.UpdatedAt = now
	return s, nil
}
