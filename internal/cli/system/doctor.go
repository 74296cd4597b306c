package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/hotset/internal/cli"
	"github.com/julianstephens/hotset/internal/config"
	"github.com/julianstephens/hotset/internal/migration"
	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/utils"
)

type DoctorCmd struct{}

type check struct {
	name    string
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	// warn reports a failure without failing the command.
	warn    bool
	run     func(context.Context, *cli.Context, *migration.Status) error
}

var checks = []check{
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Open sessions", needsDB: true, run: checkOpenSessions},
	{name: "Policy", run: checkPolicy},
	{name: "Backups present", warn: true, run: checkBackupsPresent},
	{name: "Clock", run: checkClock},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	status, err := checkDBReachable(bg, ctx)
	if err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && status == nil {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(bg, ctx, status)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		return errors.New("one or more checks failed")
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkDBReachable(ctx context.Context, c *cli.Context) (*migration.Status, error) {
	r, err := migrator(c.Store)
	if err != nil {
		return nil, err
	}
	st, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func checkSchemaVersion(_ context.Context, _ *cli.Context, st *migration.Status) error {
	if st.Current > st.Latest {
		return fmt.Errorf("database schema version (%d) is newer than this binary supports (%d), upgrade hotset", st.Current, st.Latest)
	}
	return nil
}

func checkMigrationsComplete(_ context.Context, _ *cli.Context, st *migration.Status) error {
	if len(st.Pending) > 0 {
		return fmt.Errorf("%d migration(s) pending, run 'hotset migrate'", len(st.Pending))
	}
	return nil
}

// checkOpenSessions verifies the invariants the live tracker relies on for
// every day that has not wrapped.
func checkOpenSessions(ctx context.Context, c *cli.Context, st *migration.Status) error {
	if len(st.Pending) > 0 || st.Current > st.Latest {
		return errors.New("schema not current")
	}
	snaps, err := c.Store.ListOpenSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sessions: %w", err)
	}
	for _, snap := range snaps {
		if _, err := utils.LoadLocation(snap.Session.Timezone); err != nil {
			return fmt.Errorf("session %s: %w", snap.Session.ID, err)
		}
		running := 0
		for i, it := range snap.Items {
			if it.Position != i {
				return fmt.Errorf("session %s: item %s at position %d, want %d", snap.Session.ID, it.ID, it.Position, i)
			}
			if it.Status == models.ItemInProgress {
				running++
			}
		}
		if running > 1 {
			return fmt.Errorf("session %s: %d items in progress", snap.Session.ID, running)
		}
	}
	return nil
}

func checkPolicy(_ context.Context, c *cli.Context, _ *migration.Status) error {
	return config.Validate(c.Policy)
}

func checkBackupsPresent(_ context.Context, c *cli.Context, _ *migration.Status) error {
	if c.Backups == nil {
		return errors.New("no local backups for PostgreSQL storage, back up the server separately")
	}
	list, err := c.Backups.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(list) == 0 {
		return errors.New("no backups found - consider creating one with 'hotset backup create'")
	}
	return nil
}

func checkClock(_ context.Context, _ *cli.Context, _ *migration.Status) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
