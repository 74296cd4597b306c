package storage

import (
	"context"

	"github.com/julianstephens/hotset/internal/models"
)

// Provider persists shoot-day sessions and their schedule items.
//
// Every write that changes an existing session is guarded by the version the
// caller read: SaveSnapshot and SaveSwap fail with a ConflictError when the
// stored version has moved on, and write nothing.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Sessions
	CreateSession(ctx context.Context, snap models.Snapshot) error
	GetSession(ctx context.Context, id string) (models.Session, error)
	ListSessions(ctx context.Context) ([]models.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// Snapshots
	GetSnapshot(ctx context.Context, sessionID string) (models.Snapshot, error)
	// ListOpenSnapshots returns every session that has not wrapped, with items.
	ListOpenSnapshots(ctx context.Context) ([]models.Snapshot, error)
	// SaveSnapshot replaces the session row and its items and returns the
	// snapshot with its new version.
	SaveSnapshot(ctx context.Context, snap models.Snapshot, expectedVersion int) (models.Snapshot, error)
	// SaveSwap writes both sides of a scene swap in one transaction.
	SaveSwap(ctx context.Context, target models.Snapshot, targetVersion int, source models.Snapshot, sourceVersion int) (models.Snapshot, models.Snapshot, error)

	// Items
	FindItemSession(ctx context.Context, itemID string) (string, error)
}
