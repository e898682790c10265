package db

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/notepane/notepane/internal/errors"
	"github.com/notepane/notepane/internal/note"
)

// Insert stores a new note and returns the id assigned by the database.
// CreatedAt is left to the column default.
func (s *Store) Insert(ctx context.Context, n *note.Note) (int64, error) {
	query := s.rebind(`
		INSERT INTO notes (user_email, note_text, email_subject, email_sender)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)

	var id int64
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, query,
			n.UserEmail, n.NoteText, toNullString(n.EmailSubject), toNullString(n.EmailSender),
		).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Summary returns the total note count and the most recent notes by id,
// reading both over the same connection. Recent notes carry only ID and UserEmail.
func (s *Store) Summary(ctx context.Context, recent int) (int, []note.Note, error) {
	countQuery := `SELECT COUNT(*) FROM notes`
	recentQuery := s.rebind(`SELECT id, user_email FROM notes ORDER BY id DESC LIMIT ?`)

	var count int
	var notes []note.Note
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		if err := conn.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
			return err
		}

		rows, err := conn.QueryContext(ctx, recentQuery, recent)
		if err != nil {
			return err
		}
		defer rows.Close()

		notes = make([]note.Note, 0, recent)
		for rows.Next() {
			var n note.Note
			var email sql.NullString
			if err := rows.Scan(&n.ID, &email); err != nil {
				return err
			}
			n.UserEmail = note.DisplayEmail(fromNullString(email))
			notes = append(notes, n)
		}
		return rows.Err()
	})
	if err != nil {
		return 0, nil, err
	}
	return count, notes, nil
}

// ListRecent returns up to limit notes, newest first by creation time.
// Ties on created_at fall back to descending id.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]note.Note, error) {
	query := s.rebind(`
		SELECT id, user_email, note_text, created_at, email_subject, email_sender
		FROM notes
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)

	var notes []note.Note
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		notes = make([]note.Note, 0, limit)
		for rows.Next() {
			n, err := scanNote(rows)
			if err != nil {
				return err
			}
			notes = append(notes, *n)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// GetByID retrieves a single note.
func (s *Store) GetByID(ctx context.Context, id int64) (*note.Note, error) {
	query := s.rebind(`
		SELECT id, user_email, note_text, created_at, email_subject, email_sender
		FROM notes
		WHERE id = ?
	`)

	var n *note.Note
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		n, err = scanNote(conn.QueryRowContext(ctx, query, id))
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFound(id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanNote scans a full notes row.
func scanNote(row scanner) (*note.Note, error) {
	var n note.Note
	var email, subject, sender sql.NullString
	var createdAt sql.NullTime

	if err := row.Scan(&n.ID, &email, &n.NoteText, &createdAt, &subject, &sender); err != nil {
		return nil, err
	}

	n.UserEmail = note.DisplayEmail(fromNullString(email))
	if createdAt.Valid {
		n.CreatedAt = createdAt.Time
	}
	n.EmailSubject = fromNullString(subject)
	n.EmailSender = fromNullString(sender)
	return &n, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
