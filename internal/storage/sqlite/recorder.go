package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/lilacgalaxy/vts-face-tracker/internal/monitoring"
	"github.com/lilacgalaxy/vts-face-tracker/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Pragmas go in the DSN so every pooled connection gets them.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

func dsn(path string) string {
	var b strings.Builder
	b.WriteString("file:")
	b.WriteString(path)
	for i, p := range pragmas {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString("_pragma=")
		b.WriteString(p)
	}
	return b.String()
}

// Recorder persists output parameter lists per session.
type Recorder struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock sets the clock used to stamp sessions.
func WithClock(c timeutil.Clock) Option {
	return func(r *Recorder) { r.clock = c }
}

// Open opens or creates the database at path and migrates it to the latest
// schema version.
func Open(path string, opts ...Option) (*Recorder, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open recorder database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open recorder database %s: %w", path, err)
	}

	r := &Recorder{db: db, clock: timeutil.RealClock{}}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// MigrateUp applies pending migrations. It is a no-op on an up to date
// database.
func (r *Recorder) MigrateUp() error {
	m, err := r.newMigrate()
	if err != nil {
		return err
	}
	// m is not closed: that would close r.db as well.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version, or 0 for an empty
// database.
func (r *Recorder) SchemaVersion() (uint, bool, error) {
	m, err := r.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (r *Recorder) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(r.db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (migrateLogger) Verbose() bool { return false }
