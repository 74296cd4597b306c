// Package sqlcore holds the session and schedule item queries shared by the
// SQLite and PostgreSQL stores. Queries are written with ? placeholders and
// rebound for the active dialect.
package sqlcore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Core implements the data operations of storage.Provider on a *sql.DB.
type Core struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// Attach binds an open database to the core.
func (c *Core) Attach(db *sql.DB, dialect Dialect) {
	c.db = db
	c.dialect = dialect
	if c.now == nil {
		c.now = time.Now
	}
}

// DB returns the attached database handle.
func (c *Core) DB() *sql.DB {
	return c.db
}

// SetClock overrides the clock used for created_at and updated_at.
func (c *Core) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Core) ready() error {
	if c.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

// rebind converts ? placeholders to $N for PostgreSQL.
func (c *Core) rebind(query string) string {
	if c.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timeArg encodes a timestamp for the dialect: RFC 3339 text in SQLite,
// native timestamptz in PostgreSQL. Times are always stored in UTC.
func (c *Core) timeArg(t time.Time) interface{} {
	if c.dialect == Postgres {
		return t.UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func (c *Core) nullTimeArg(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return c.timeArg(*t)
}

// nullTime scans both text and native timestamp columns.
type nullTime struct {
	Time  time.Time
	Valid bool
}

func (n *nullTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = v.UTC(), true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", value)
	}
}

func (n *nullTime) parse(s string) error {
	if s == "" {
		n.Time, n.Valid = time.Time{}, false
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	n.Time, n.Valid = t.UTC(), true
	return nil
}

func (n nullTime) ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
