package sqlcore

import (
	"context"
	"database/sql"
	"fmt"

	apperr "github.com/julianstephens/hotset/internal/errors"
	"github.com/julianstephens/hotset/internal/models"
)

// GetSnapshot reads a session and its items in one transaction.
func (c *Core) GetSnapshot(ctx context.Context, sessionID string) (models.Snapshot, error) {
	if err := c.ready(); err != nil {
		return models.Snapshot{}, err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	s, err := c.getSession(ctx, tx, sessionID)
	if err != nil {
		return models.Snapshot{}, err
	}
	items, err := c.listItems(ctx, tx, sessionID)
	if err != nil {
		return models.Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}
	return models.Snapshot{Session: s, Items: items}, nil
}

// ListOpenSnapshots returns every session that has not wrapped.
func (c *Core) ListOpenSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, c.rebind(`SELECT `+sessionColumns+` FROM sessions
		WHERE status <> ? ORDER BY day_number, planned_call_time, id`), string(models.SessionWrapped))
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	snaps := make([]models.Snapshot, 0, len(sessions))
	for _, s := range sessions {
		items, err := c.listItems(ctx, tx, s.ID)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, models.Snapshot{Session: s, Items: items})
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	return snaps, nil
}

// SaveSnapshot replaces the session row and all of its items if the stored
// version still equals expectedVersion.
func (c *Core) SaveSnapshot(ctx context.Context, snap models.Snapshot, expectedVersion int) (models.Snapshot, error) {
	if err := c.ready(); err != nil {
		return models.Snapshot{}, err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	out, err := c.writeSnapshot(ctx, tx, snap, expectedVersion)
	if err != nil {
		return models.Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to commit session %s: %w", snap.Session.ID, err)
	}
	return out, nil
}

// SaveSwap writes both sides of a scene swap atomically. A failure on either
// side rolls back both and is reported as a CrossDayTransactionError.
func (c *Core) SaveSwap(ctx context.Context, target models.Snapshot, targetVersion int, source models.Snapshot, sourceVersion int) (models.Snapshot, models.Snapshot, error) {
	if err := c.ready(); err != nil {
		return models.Snapshot{}, models.Snapshot{}, err
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Snapshot{}, models.Snapshot{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	outTarget, err := c.writeSnapshot(ctx, tx, target, targetVersion)
	if err != nil {
		return models.Snapshot{}, models.Snapshot{}, &apperr.CrossDayTransactionError{
			Side: apperr.SwapSideTarget, SessionID: target.Session.ID, Err: err,
		}
	}
	outSource, err := c.writeSnapshot(ctx, tx, source, sourceVersion)
	if err != nil {
		return models.Snapshot{}, models.Snapshot{}, &apperr.CrossDayTransactionError{
			Side: apperr.SwapSideSource, SessionID: source.Session.ID, Err: err,
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Snapshot{}, models.Snapshot{}, &apperr.CrossDayTransactionError{
			Side: apperr.SwapSideSource, SessionID: source.Session.ID, Err: err,
		}
	}
	return outTarget, outSource, nil
}

func (c *Core) writeSnapshot(ctx context.Context, tx *sql.Tx, snap models.Snapshot, expectedVersion int) (models.Snapshot, error) {
	s, err := c.updateSession(ctx, tx, snap.Session, expectedVersion)
	if err != nil {
		return models.Snapshot{}, err
	}
	if _, err := tx.ExecContext(ctx, c.rebind(`DELETE FROM schedule_items WHERE session_id = ?`), s.ID); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to clear items of session %s: %w", s.ID, err)
	}
	if err := c.insertItems(ctx, tx, s.ID, snap.Items); err != nil {
		return models.Snapshot{}, err
	}

	out := snap.Clone()
	out.Session.Version = s.Version
	out.Session.UpdatedAt = s.UpdatedAt
	for i := range out.Items {
		out.Items[i].Position = i
		out.Items[i].SessionID = s.ID
	}
	return out, nil
}
