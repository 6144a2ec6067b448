package metrics

import "context"

// RecordCounter is implemented by the webhook store.
type RecordCounter interface {
	Count(ctx context.Context) (int64, error)
}

// FeedLengther is implemented by the capture feed.
type FeedLengther interface {
	Len(ctx context.Context) (int64, error)
}

// StoreCollector implements Collector on top of the store and the optional feed
type StoreCollector struct {
	records RecordCounter
	feed    FeedLengther
}

// NewStoreCollector creates a collector. feed may be nil.
func NewStoreCollector(records RecordCounter, feed FeedLengther) *StoreCollector {
	return &StoreCollector{
		records: records,
		feed:    feed,
	}
}

func (c *StoreCollector) GetRecordCount(ctx context.Context) (int64, error) {
	return c.records.Count(ctx)
}

func (c *StoreCollector) GetFeedLength(ctx context.Context) (int64, error) {
	if c.feed == nil {
		return 0, ErrFeedDisabled
	}
	return c.feed.Len(ctx)
}
