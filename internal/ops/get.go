package ops

import (
	"context"
	"time"

	"github.com/notepane/notepane/internal/db"
	"github.com/notepane/notepane/internal/errors"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID int64
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	ID           int64     `json:"id"`
	UserEmail    string    `json:"user_email"`
	NoteText     string    `json:"note_text"`
	CreatedAt    time.Time `json:"created_at"`
	EmailSubject *string   `json:"email_subject,omitempty"`
	EmailSender  *string   `json:"email_sender,omitempty"`
}

// Get retrieves a single note by id.
func Get(ctx context.Context, store *db.Store, input GetInput) (*GetOutput, error) {
	if input.ID <= 0 {
		return nil, errors.NewInvalidRequest("id must be a positive integer")
	}

	n, err := store.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &GetOutput{
		ID:           n.ID,
		UserEmail:    n.UserEmail,
		NoteText:     n.NoteText,
		CreatedAt:    n.CreatedAt,
		EmailSubject: n.EmailSubject,
		EmailSender:  n.EmailSender,
	}, nil
}
