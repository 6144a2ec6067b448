package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-inspector/webhook"
	"github.com/redis/go-redis/v9"
)

/* Capture feed on Redis Streams
 * Every stored capture is appended to one stream so that other processes
 * can follow the traffic live. The database stays the source of truth:
 * the stream is trimmed approximately to maxLen entries
 */

// StreamKey is the stream every capture is appended to.
const StreamKey = "webhooks:captured"

// Tail start positions.
const (
	FromNow   = "$"
	FromStart = "0"
)

// Event is one feed entry.
type Event struct {
	StreamID      string
	ID            string
	Method        string
	Pathname      string
	IP            string
	ContentType   string
	ContentLength string
	BodyBytes     int
	CreatedAt     time.Time
}

type Feed struct {
	client *redis.Client
	maxLen int64
}

// NewFeed connects to Redis and checks the connection
func NewFeed(addr, password string, db int, maxLen int64) (*Feed, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return NewFeedFromClient(client, maxLen), nil
}

// NewFeedFromClient wraps an existing client
func NewFeedFromClient(client *redis.Client, maxLen int64) *Feed {
	return &Feed{
		client: client,
		maxLen: maxLen,
	}
}

// Notify appends the capture to the stream. It implements webhook.Notifier.
func (f *Feed) Notify(ctx context.Context, wh webhook.Webhook) error {
	values := map[string]interface{}{
		"id":         wh.ID,
		"method":     wh.Method,
		"pathname":   wh.Pathname,
		"ip":         wh.IP,
		"body_bytes": len(wh.BodyText()),
		"created_at": wh.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if wh.ContentType != nil {
		values["content_type"] = *wh.ContentType
	}
	if wh.ContentLength != nil {
		values["content_length"] = strconv.FormatInt(*wh.ContentLength, 10)
	}

	args := &redis.XAddArgs{
		Stream: StreamKey,
		Values: values,
	}
	if f.maxLen > 0 {
		args.MaxLen = f.maxLen
		args.Approx = true
	}
	if err := f.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("adding to stream: %w", err)
	}
	return nil
}

/* Tail reads the entries that follow lastID, waiting up to block for new
 * ones (0 waits forever, a negative duration does not wait). It returns the
 * events and the id to pass on the next call
 */
func (f *Feed) Tail(ctx context.Context, lastID string, count int64, block time.Duration) ([]Event, string, error) {
	streams, err := f.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{StreamKey, lastID},
		Count:   count,
		Block:   block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, lastID, nil
	}
	if err != nil {
		return nil, lastID, fmt.Errorf("reading stream: %w", err)
	}

	var events []Event
	next := lastID
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			events = append(events, parseEvent(msg))
			next = msg.ID
		}
	}
	return events, next, nil
}

// Len returns the number of entries currently kept in the stream
func (f *Feed) Len(ctx context.Context) (int64, error) {
	n, err := f.client.XLen(ctx, StreamKey).Result()
	if err != nil {
		return 0, fmt.Errorf("getting stream length: %w", err)
	}
	return n, nil
}

// Close closes the Redis connection
func (f *Feed) Close(ctx context.Context) error {
	return f.client.Close()
}

func parseEvent(msg redis.XMessage) Event {
	str := func(key string) string {
		v, _ := msg.Values[key].(string)
		return v
	}
	ev := Event{
		StreamID:      msg.ID,
		ID:            str("id"),
		Method:        str("method"),
		Pathname:      str("pathname"),
		IP:            str("ip"),
		ContentType:   str("content_type"),
		ContentLength: str("content_length"),
	}
	ev.BodyBytes, _ = strconv.Atoi(str("body_bytes"))
	ev.CreatedAt, _ = time.Parse(time.RFC3339Nano, str("created_at"))
	return ev
}
