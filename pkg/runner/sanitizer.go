package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxEventSize bounds event names read from users.
const DefaultMaxEventSize = 256

var (
	ErrEventTooLarge = errors.New("event exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("event contains invalid UTF-8 sequences")
	ErrEmptyEvent    = errors.New("event is empty")
)

// SanitizeEvent cleans an event name read from a user: it enforces the size
// limit, validates UTF-8, strips every control character (ANSI escapes, NUL,
// newlines) and trims surrounding space.
// A limit <= 0 means DefaultMaxEventSize.
func SanitizeEvent(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxEventSize
	}
	// Reject rather than truncate: a truncated name could match another event.
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrEventTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return "", ErrEmptyEvent
	}
	return clean, nil
}
