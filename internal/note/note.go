package note

import "time"

// AnonymousEmail is stored and displayed when a note has no owner email.
const AnonymousEmail = "anonymous"

// Note represents a text entry saved from the task pane.
type Note struct {
	// ID is assigned by storage on insert and increases monotonically
	ID int64

	// UserEmail is the mailbox owner's address, or AnonymousEmail
	UserEmail string

	// NoteText is the trimmed, non-empty note body
	NoteText string

	// CreatedAt is set by storage at insert time and never changes
	CreatedAt time.Time

	// EmailSubject is the subject of the mail item the note was taken on (nullable)
	EmailSubject *string

	// EmailSender is the sender of the mail item the note was taken on (nullable)
	EmailSender *string
}
