package ops

import (
	"context"
	"fmt"

	"github.com/notepane/notepane/internal/config"
	"github.com/notepane/notepane/internal/db"
	"github.com/notepane/notepane/internal/errors"
	"github.com/notepane/notepane/internal/note"
)

// SaveInput contains parameters for the Save operation.
// Field names follow the task pane's JSON payload.
type SaveInput struct {
	Text      string  `json:"text"`
	UserEmail *string `json:"userEmail"` // default: "anonymous"
	Subject   *string `json:"subject"`
	Sender    *string `json:"sender"`
}

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	Status string `json:"status"`
	ID     int64  `json:"id"`
}

// Save validates and persists a new note.
// Blank text is rejected before storage is touched.
func Save(ctx context.Context, store *db.Store, cfg *config.Config, input SaveInput) (*SaveOutput, error) {
	text := note.NormalizeText(input.Text)
	if text == "" {
		return nil, errors.NewInvalidRequest(EmptyTextMessage)
	}

	if cfg != nil && cfg.MaxNoteChars > 0 {
		if chars := note.CountChars(text); chars > cfg.MaxNoteChars {
			e := errors.NewInvalidRequest(fmt.Sprintf("note text exceeds %d characters", cfg.MaxNoteChars))
			e.Details = map[string]any{"max_chars": cfg.MaxNoteChars, "actual_chars": chars}
			return nil, e
		}
	}

	email := ""
	if input.UserEmail != nil {
		email = *input.UserEmail
	}

	n := &note.Note{
		UserEmail:    note.NormalizeEmail(email),
		NoteText:     text,
		EmailSubject: note.CleanOptional(input.Subject),
		EmailSender:  note.CleanOptional(input.Sender),
	}

	id, err := store.Insert(ctx, n)
	if err != nil {
		return nil, err
	}

	return &SaveOutput{Status: StatusSaved, ID: id}, nil
}
