package webhook

import (
	"context"
)

/* Small, focused interfaces
 * Storage adapters implement all of them, the services depend on what they use
 */

// Reader provides read operations for captured requests
type Reader interface {
	// Get returns ErrNotFound when the id is unknown.
	Get(ctx context.Context, id string) (Webhook, error)
	/* Page returns up to limit summaries strictly older than after
	 * (all of them when after is nil), newest first
	 */
	Page(ctx context.Context, limit int, after *Cursor) ([]Summary, error)
	// GetMany ignores unknown ids and orders the result newest first.
	GetMany(ctx context.Context, ids []string) ([]Webhook, error)
	Count(ctx context.Context) (int64, error)
}

// Writer provides write operations for captured requests
type Writer interface {
	/* Store inserts the record and returns it as persisted
	 * A zero CreatedAt is filled in by the store
	 */
	Store(ctx context.Context, webhook Webhook) (Webhook, error)
	StoreBatch(ctx context.Context, webhooks []Webhook) (int, error)
	// Delete returns ErrNotFound when nothing was removed.
	Delete(ctx context.Context, id string) error
}

type Repository interface {
	Reader
	Writer
	Close(ctx context.Context) error
}

// Notifier is told about every stored capture.
type Notifier interface {
	Notify(ctx context.Context, webhook Webhook) error
}
