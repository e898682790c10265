package ops

import (
	"context"
	"testing"

	"github.com/notepane/notepane/internal/config"
	"github.com/notepane/notepane/internal/errors"
)

func TestGet_HappyPath(t *testing.T) {
	store := setupStore(t)

	saved, err := Save(context.Background(), store, config.DefaultConfig(), SaveInput{
		Text:      "# Heading\n\nbody",
		UserEmail: stringPtr("a@x.com"),
		Sender:    stringPtr("boss@x.com"),
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	output, err := Get(context.Background(), store, GetInput{ID: saved.ID})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if output.NoteText != "# Heading\n\nbody" {
		t.Errorf("NoteText = %q", output.NoteText)
	}
	if output.EmailSender == nil || *output.EmailSender != "boss@x.com" {
		t.Errorf("EmailSender = %v, want boss@x.com", output.EmailSender)
	}
	if output.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestGet_NotFound(t *testing.T) {
	store := setupStore(t)

	_, err := Get(context.Background(), store, GetInput{ID: 42})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("Get error = %v, want NOT_FOUND", err)
	}
}

func TestGet_InvalidID(t *testing.T) {
	store := setupStore(t)

	for _, id := range []int64{0, -1} {
		_, err := Get(context.Background(), store, GetInput{ID: id})
		if !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("Get(%d) error = %v, want INVALID_REQUEST", id, err)
		}
	}
}
