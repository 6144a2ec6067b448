package webhook

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("webhook not found")
	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid webhook id")
	// ErrInvalidCursor is returned for page cursors this server did not issue.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrInvalidLimit is returned for page sizes outside [1, MaxLimit].
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrMalformedRequest is returned when a captured request cannot be recorded.
	ErrMalformedRequest = errors.New("malformed request")
)

// ParseID validates id and returns it in canonical lower-case form.
func ParseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return parsed.String(), nil
}
