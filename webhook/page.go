package webhook

import (
	"fmt"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageRequest asks for at most Limit summaries older than After.
type PageRequest struct {
	Limit int
	After *Cursor
}

// Page is one slice of the listing. NextCursor is nil on the last page.
type Page struct {
	Webhooks   []Summary
	NextCursor *Cursor
}

// NewPageRequest validates the raw limit and cursor query values. Empty
// values mean "not given".
func NewPageRequest(limit, cursor string) (PageRequest, error) {
	req := PageRequest{Limit: DefaultLimit}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return PageRequest{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidLimit, limit)
		}
		req.Limit = n
	}
	if err := req.Validate(); err != nil {
		return PageRequest{}, err
	}
	if cursor != "" {
		c, err := DecodeCursor(cursor)
		if err != nil {
			return PageRequest{}, err
		}
		req.After = &c
	}
	return req, nil
}

func (r PageRequest) Validate() error {
	if r.Limit < 1 || r.Limit > MaxLimit {
		return fmt.Errorf("%w: must be between 1 and %d (got %d)", ErrInvalidLimit, MaxLimit, r.Limit)
	}
	return nil
}
