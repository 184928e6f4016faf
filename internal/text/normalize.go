package text

import (
	"errors"
	"strings"
)

// ErrEmptyText is returned when the input text is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// Normalize prepares extracted document text for segmentation and
// synthesis. It strips a UTF-8 BOM, normalizes line endings to \n, trims
// surrounding whitespace, and rejects empty or whitespace-only input.
func Normalize(s string) (string, error) {
	s = strings.TrimPrefix(s, "\ufeff")

	// CRLF -> LF, then bare CR -> LF, so paragraph detection only ever
	// has to look for "\n\n".
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyText
	}

	return s, nil
}
