package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/hotset/internal/backup"
	"github.com/julianstephens/hotset/internal/hotset"
	"github.com/julianstephens/hotset/internal/models"
	"github.com/julianstephens/hotset/internal/storage"
	"github.com/julianstephens/hotset/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	Store   storage.Provider
	Service *hotset.Service
	Policy  models.Policy
	// Backups is nil for PostgreSQL, which is backed up server-side.
	Backups *backup.Manager
	// Profile is the keyring profile chosen with --profile.
	Profile string
	Now     func() time.Time
	Out     io.Writer
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.writer(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.writer(), args...)
}

func (c *Context) writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

// SessionTime resolves an --at value for a session. Empty means now; an
// RFC 3339 timestamp is taken as is; HH:MM is read on the session's shoot
// day in its timezone.
func (c *Context) SessionTime(ctx context.Context, sessionID, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return c.now(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	session, err := c.Service.GetSession(ctx, sessionID)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := utils.LoadLocation(session.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	t, err := utils.ResolveShootClock(session.PlannedCallTime, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want HH:MM or RFC 3339", value)
	}
	return t, nil
}

// ItemTime is SessionTime for the session that owns itemID.
func (c *Context) ItemTime(ctx context.Context, itemID, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return c.now(), nil
	}
	sessionID, err := c.Store.FindItemSession(ctx, itemID)
	if err != nil {
		return time.Time{}, err
	}
	return c.SessionTime(ctx, sessionID, value)
}
