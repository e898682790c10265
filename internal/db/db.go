package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/notepane/notepane/internal/config"
	"github.com/notepane/notepane/internal/errors"
)

// Dialect identifies the SQL flavour behind a Store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Target is a parsed connection string.
type Target struct {
	Driver  string // database/sql driver name
	DSN     string // driver-specific data source
	Dialect Dialect
}

// ParseDatabaseURL maps a connection string to a driver and DSN.
// postgres:// and postgresql:// URLs use pgx; sqlite:// URLs and bare paths use SQLite.
func ParseDatabaseURL(raw string) (*Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.NewInvalidRequest("DATABASE_URL is not set")
	}

	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return &Target{Driver: "pgx", DSN: raw, Dialect: DialectPostgres}, nil
	}

	path := raw
	if rest, ok := strings.CutPrefix(raw, "sqlite://"); ok {
		path = rest
	}
	if path == "" {
		return nil, errors.NewInvalidRequest("sqlite path must not be empty")
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		// Every operation opens its own connection, so an in-memory database
		// would be empty on the next request.
		return nil, errors.NewInvalidRequest("in-memory sqlite databases are not supported")
	}

	// Pragmas in the connection string apply to every new connection.
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	return &Target{Driver: "sqlite", DSN: dsn, Dialect: DialectSQLite}, nil
}

// RedactDatabaseURL hides the password of a URL-style connection string.
func RedactDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

// Store provides note persistence over a single database target.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open prepares a Store for cfg.DatabaseURL without touching the network.
// Connection failures surface on the first operation.
func Open(cfg *config.Config) (*Store, error) {
	target, err := ParseDatabaseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if target.Dialect == DialectSQLite {
		if err := ensureParentDir(target.DSN); err != nil {
			return nil, err
		}
	}

	database, err := sql.Open(target.Driver, target.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: database, dialect: target.Dialect}
	ConfigurePool(database, cfg)
	return s, nil
}

// Init opens the Store and applies the schema.
func Init(ctx context.Context, cfg *config.Config) (*Store, error) {
	s, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// ConfigurePool applies connection settings from config.
// Unless DBReuseConns is set, no connection is kept idle: each operation's
// connection is closed when the operation returns.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil || !cfg.ReuseConns() {
		db.SetMaxIdleConns(0)
	}
	if cfg != nil && cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect returns the SQL dialect of the store.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Stats returns connection statistics.
func (s *Store) Stats() sql.DBStats {
	return s.db.Stats()
}

// Ping opens a connection and verifies the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// withConn acquires a dedicated connection for one operation and always
// releases it. Errors other than *errors.NoteError become storage errors.
func (s *Store) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return errors.NewStorage(err)
	}
	defer conn.Close()

	if err := fn(conn); err != nil {
		var nErr *errors.NoteError
		if stderrors.As(err, &nErr) {
			return nErr
		}
		return errors.NewStorage(err)
	}
	return nil
}

// rebind rewrites ? placeholders into the dialect's form.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ensureParentDir creates the directory holding a SQLite database file.
func ensureParentDir(dsn string) error {
	path, _, _ := strings.Cut(dsn, "?")
	path = strings.TrimPrefix(path, "file:")
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}
