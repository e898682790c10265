package db

import (
	"context"
	"database/sql"
	"fmt"
)

const sqliteNotesTable = `
CREATE TABLE IF NOT EXISTS notes (
  id            INTEGER PRIMARY KEY AUTOINCREMENT,
  user_email    VARCHAR(255),
  note_text     TEXT NOT NULL,
  created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  email_subject VARCHAR(500),
  email_sender  VARCHAR(255)
)`

const postgresNotesTable = `
CREATE TABLE IF NOT EXISTS notes (
  id            SERIAL PRIMARY KEY,
  user_email    VARCHAR(255),
  note_text     TEXT NOT NULL,
  created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  email_subject VARCHAR(500),
  email_sender  VARCHAR(255)
)`

var notesIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_user_email ON notes(user_email)`,
	`CREATE INDEX IF NOT EXISTS idx_created_at ON notes(created_at DESC)`,
}

// optionalColumns were added after the first deployments; older tables may lack them.
var optionalColumns = []struct {
	name string
	typ  string
}{
	{"email_subject", "VARCHAR(500)"},
	{"email_sender", "VARCHAR(255)"},
}

// Migrate creates the notes table and its indexes if they do not exist,
// and adds optional columns missing from tables created by older versions.
func (s *Store) Migrate(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sql.Conn) error {
		table := sqliteNotesTable
		if s.dialect == DialectPostgres {
			table = postgresNotesTable
		}
		if _, err := conn.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("create notes table: %w", err)
		}

		existing, err := s.columns(ctx, conn)
		if err != nil {
			return err
		}
		for _, col := range optionalColumns {
			if existing[col.name] {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE notes ADD COLUMN %s %s", col.name, col.typ)
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("add column %s: %w", col.name, err)
			}
		}

		for _, stmt := range notesIndexes {
			if _, err := conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create index: %w", err)
			}
		}
		return nil
	})
}

// columns returns the set of column names on the notes table.
func (s *Store) columns(ctx context.Context, conn *sql.Conn) (map[string]bool, error) {
	query := `SELECT name FROM pragma_table_info('notes')`
	if s.dialect == DialectPostgres {
		query = `SELECT column_name FROM information_schema.columns
			WHERE table_name = 'notes' AND table_schema = current_schema()`
	}

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notes columns: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
