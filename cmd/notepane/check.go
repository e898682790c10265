package main

import (
	"context"
	"fmt"
	"io"

	"github.com/notepane/notepane/internal/config"
	"github.com/notepane/notepane/internal/db"
	"github.com/notepane/notepane/internal/errors"
	"github.com/notepane/notepane/internal/note"
	"github.com/notepane/notepane/internal/ops"
)

// checkPreviewChars is the preview length in the check report.
const checkPreviewChars = 50

// runCheck connects to the configured database, ensures the schema and
// prints the note count with the most recent notes.
func runCheck(ctx context.Context, w io.Writer, cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(w, "DATABASE_URL: missing")
		return errors.NewInvalidRequest("DATABASE_URL is not set")
	}
	fmt.Fprintln(w, "DATABASE_URL: found")
	fmt.Fprintf(w, "  %s\n", db.RedactDatabaseURL(cfg.DatabaseURL))

	fmt.Fprintln(w, "\nTesting database connection...")
	store, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "Connection successful (%s)\n", store.Dialect())

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, "Table ready")

	stats, err := ops.Stats(ctx, store)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Found %d notes\n", stats.Total)

	recent, err := store.ListRecent(ctx, ops.RecentCount)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nRecent notes:")
	for _, n := range recent {
		fmt.Fprintf(w, "  ID %d: %s - %s\n", n.ID, n.UserEmail, note.Preview(n.NoteText, checkPreviewChars))
	}

	fmt.Fprintln(w, "\nEverything working.")
	return nil
}
