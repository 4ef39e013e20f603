package ingest

import (
	"errors"
	"strings"
)

// ErrEmptyMessage is returned when neither the freeform text nor any file
// fragment contributes content to the turn.
var ErrEmptyMessage = errors.New("message must include text or files")

// Combine merges freeform text with extracted document fragments into the
// content of a single user turn. Fragments keep the order the files arrived in.
func Combine(text string, fragments []string) (string, error) {
	parts := make([]string, 0, len(fragments)+1)
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, t)
	}
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}

	combined := strings.Join(parts, "\n\n")
	if combined == "" {
		return "", ErrEmptyMessage
	}
	return combined, nil
}
