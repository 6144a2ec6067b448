package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	n   int64
	err error
}

func (f fakeCounter) Count(context.Context) (int64, error) { return f.n, f.err }

type fakeFeed struct{ n int64 }

func (f fakeFeed) Len(context.Context) (int64, error) { return f.n, nil }

func TestStoreCollector(t *testing.T) {
	ctx := context.Background()

	t.Run("reports records and feed length", func(t *testing.T) {
		c := NewStoreCollector(fakeCounter{n: 42}, fakeFeed{n: 7})

		records, err := c.GetRecordCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(42), records)

		feed, err := c.GetFeedLength(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), feed)
	})

	t.Run("no feed", func(t *testing.T) {
		c := NewStoreCollector(fakeCounter{n: 1}, nil)

		_, err := c.GetFeedLength(ctx)
		assert.ErrorIs(t, err, ErrFeedDisabled)
	})

	t.Run("store failure", func(t *testing.T) {
		c := NewStoreCollector(fakeCounter{err: errors.New("db down")}, nil)

		_, err := c.GetRecordCount(ctx)
		assert.EqualError(t, err, "db down")
	})
}

func TestOTelExporter(t *testing.T) {
	ctx := context.Background()
	exporter, err := NewOTelExporter(NewStoreCollector(fakeCounter{n: 3}, fakeFeed{n: 2}))
	require.NoError(t, err)
	defer exporter.Shutdown(ctx)

	exporter.RecordCapture(ctx, http.MethodPost)
	exporter.RecordCapture(ctx, http.MethodPost)
	exporter.RecordGeneration(ctx, OutcomeSuccess)

	rec := httptest.NewRecorder()
	exporter.ServeHTTP().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "webhook_records")
	assert.Contains(t, text, "webhook_feed_length")
	assert.Contains(t, text, "webhook_captures")
	assert.Contains(t, text, `http_request_method="POST"`)
	assert.Contains(t, text, `outcome="success"`)
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	r.RecordCapture(context.Background(), http.MethodGet)
	r.RecordGeneration(context.Background(), OutcomeError)
}
