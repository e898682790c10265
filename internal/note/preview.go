package note

import "time"

const (
	// PreviewChars is the maximum preview length in characters.
	PreviewChars = 80

	// Ellipsis marks a truncated preview.
	Ellipsis = "..."
)

// Preview truncates text to max characters, appending Ellipsis when it was cut.
// Text of max characters or fewer is returned unmodified.
func Preview(text string, max int) string {
	if max <= 0 || CountChars(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + Ellipsis
}

// Summary is a note's display form used by the list and health views.
type Summary struct {
	ID        int64     `json:"id"`
	UserEmail string    `json:"user_email"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"created_at"`
}

// ToSummary converts a Note to a Summary with a PreviewChars-long preview.
func (n *Note) ToSummary() Summary {
	return Summary{
		ID:        n.ID,
		UserEmail: NormalizeEmail(n.UserEmail),
		Preview:   Preview(n.NoteText, PreviewChars),
		CreatedAt: n.CreatedAt,
	}
}
