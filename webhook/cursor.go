package webhook

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const cursorVersion = 1

// Cursor marks the last row of a page in (CreatedAt, ID) order.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

type cursorToken struct {
	V  int    `json:"v"`
	T  string `json:"t"`
	ID string `json:"id"`
}

// CursorOf returns the cursor positioned on s.
func CursorOf(s Summary) Cursor {
	return Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw, _ := json.Marshal(cursorToken{
		V:  cursorVersion,
		T:  c.CreatedAt.UTC().Format(time.RFC3339Nano),
		ID: c.ID,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token produced by Encode.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: not base64url", ErrInvalidCursor)
	}
	var t cursorToken
	if err := json.Unmarshal(raw, &t); err != nil {
		return Cursor{}, fmt.Errorf("%w: not a cursor document", ErrInvalidCursor)
	}
	if t.V != cursorVersion {
		return Cursor{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidCursor, t.V)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, t.T)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad timestamp", ErrInvalidCursor)
	}
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad id", ErrInvalidCursor)
	}
	return Cursor{CreatedAt: createdAt.UTC(), ID: id.String()}, nil
}
