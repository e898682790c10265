package note

import (
	"strings"
	"unicode/utf8"
)

// NormalizeText trims surrounding whitespace from note text.
// An empty result means the note must be rejected.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeEmail returns the trimmed email, or AnonymousEmail when it is blank.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return AnonymousEmail
	}
	return s
}

// DisplayEmail maps a nullable stored email to its display form.
func DisplayEmail(s *string) string {
	if s == nil {
		return AnonymousEmail
	}
	return NormalizeEmail(*s)
}

// CleanOptional trims an optional string and drops it when empty.
func CleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}
