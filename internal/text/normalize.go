// Package text validates and splits raw input before it enters the
// preprocessing pipeline.
package text

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyText is returned when the input text is empty or whitespace-only.
	ErrEmptyText = errors.New("text is empty")
	// ErrInvalidUTF8 is returned when the input is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("text is not valid UTF-8")
)

// Normalize prepares raw input text for the pipeline.
// It rejects invalid UTF-8, normalizes line endings to \n, trims surrounding
// whitespace, and rejects empty or whitespace-only input.
func Normalize(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}

	// Normalize line endings: CRLF → LF, then bare CR → LF.
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.TrimSpace(s)

	if s == "" {
		return "", ErrEmptyText
	}

	return s, nil
}
