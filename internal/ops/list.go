package ops

import (
	"context"

	"github.com/notepane/notepane/internal/config"
	"github.com/notepane/notepane/internal/db"
	"github.com/notepane/notepane/internal/note"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit int // default and max: cfg.EffectiveListLimit()
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []note.Summary `json:"items"`
	Limit int            `json:"limit"`
	Sort  string         `json:"sort"`
}

// List retrieves note summaries, newest first.
func List(ctx context.Context, store *db.Store, cfg *config.Config, input ListInput) (*ListOutput, error) {
	limit := ClampListLimit(cfg, input.Limit)

	notes, err := store.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	// Ensure we return an empty array rather than nil
	items := make([]note.Summary, 0, len(notes))
	for i := range notes {
		items = append(items, notes[i].ToSummary())
	}

	return &ListOutput{
		Items: items,
		Limit: limit,
		Sort:  "created_at_desc",
	}, nil
}

// ClampListLimit applies the configured cap to a requested limit.
// Zero, negative and over-cap requests get the cap.
func ClampListLimit(cfg *config.Config, requested int) int {
	limit := config.MaxListLimit
	if cfg != nil {
		limit = cfg.EffectiveListLimit()
	}
	if requested > 0 && requested < limit {
		return requested
	}
	return limit
}
