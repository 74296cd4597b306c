package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/migration"
	"github.com/julianstephens/hotset/internal/storage"
)

// migratable is implemented by both the SQLite and PostgreSQL stores.
type migratable interface {
	Migrator() (*migration.Runner, error)
}

func migrator(store storage.Provider) (*migration.Runner, error) {
	m, ok := store.(migratable)
	if !ok {
		return nil, fmt.Errorf("storage backend %T does not support migrations", store)
	}
	return m.Migrator()
}

type MigrateCmd struct {
	Status bool `help:"Show the schema version without applying anything."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	r, err := migrator(ctx.Store)
	if err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	defer ctx.Store.Close()

	if c.Status {
		st, err := r.Status(bg)
		if err != nil {
			return err
		}
		ctx.Printf("Schema version %d of %d, %d pending\n", st.Current, st.Latest, len(st.Pending))
		for _, m := range st.Pending {
			ctx.Printf("  pending: %03d %s\n", m.Version, m.Name)
		}
		return nil
	}

	count, err := r.Apply(bg, func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
