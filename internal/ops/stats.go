package ops

import (
	"context"

	"github.com/notepane/notepane/internal/db"
)

// RecentNote identifies one of the most recently saved notes.
type RecentNote struct {
	ID        int64  `json:"id"`
	UserEmail string `json:"user_email"`
}

// StatsOutput contains the result of the Stats operation.
type StatsOutput struct {
	Total  int          `json:"total"`
	Recent []RecentNote `json:"recent"`
}

// Stats reports the total note count and the RecentCount newest notes by id.
func Stats(ctx context.Context, store *db.Store) (*StatsOutput, error) {
	total, notes, err := store.Summary(ctx, RecentCount)
	if err != nil {
		return nil, err
	}

	recent := make([]RecentNote, 0, len(notes))
	for _, n := range notes {
		recent = append(recent, RecentNote{ID: n.ID, UserEmail: n.UserEmail})
	}

	return &StatsOutput{Total: total, Recent: recent}, nil
}
