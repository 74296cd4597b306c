package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/hotset/internal/logger"
	"github.com/julianstephens/hotset/internal/migration"
	"github.com/julianstephens/hotset/internal/storage/sqlcore"
	"github.com/julianstephens/hotset/internal/utils"
	"github.com/julianstephens/hotset/migrations"
)

// Store is the single-file SQLite backend.
type Store struct {
	sqlcore.Core
	path string
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init() error {
	path, err := utils.ExpandHome(s.path)
	if err != nil {
		return err
	}
	s.path = path

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	s.Attach(db, sqlcore.SQLite)

	if err := s.runMigrations(context.Background()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.DB() != nil {
		return nil
	}
	path, err := utils.ExpandHome(s.path)
	if err != nil {
		return err
	}
	s.path = path

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'hotset init' first")
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	s.Attach(db, sqlcore.SQLite)

	return s.validateSchemaVersion(context.Background())
}

func (s *Store) Close() error {
	if db := s.DB(); db != nil {
		return db.Close()
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// open returns a handle limited to one connection so that writers
// serialize instead of failing with SQLITE_BUSY.
func (s *Store) open() (*sql.DB, error) {
	dsn := s.path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.DB(), subFS), nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	_, err = r.Apply(ctx, func(msg string) {
		logger.Info(msg)
	})
	return err
}

func (s *Store) validateSchemaVersion(ctx context.Context) error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	st, err := r.Status(ctx)
	if err != nil {
		return err
	}
	if st.Current > st.Latest {
		return r.Validate(ctx)
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("database schema version (%d) is behind (%d), run 'hotset init' to migrate", st.Current, st.Latest)
	}
	return nil
}

// Migrator opens the database without checking its schema version and
// returns its migration runner.
func (s *Store) Migrator() (*migration.Runner, error) {
	if s.DB() == nil {
		path, err := utils.ExpandHome(s.path)
		if err != nil {
			return nil, err
		}
		s.path = path
		if _, err := os.Stat(s.path); os.IsNotExist(err) {
			return nil, fmt.Errorf("storage not initialized, run 'hotset init' first")
		}
		db, err := s.open()
		if err != nil {
			return nil, err
		}
		s.Attach(db, sqlcore.SQLite)
	}
	return s.runner()
}
