package metrics

import (
	"context"
	"errors"
)

// ErrFeedDisabled is returned by collectors running without a capture feed.
var ErrFeedDisabled = errors.New("capture feed disabled")

// Collector defines the interface for collecting gauges from the system.
type Collector interface {
	// GetRecordCount returns how many captured requests are stored
	GetRecordCount(ctx context.Context) (int64, error)

	// GetFeedLength returns the capture feed length, or ErrFeedDisabled
	GetFeedLength(ctx context.Context) (int64, error)
}

// Generation outcomes reported to RecordGeneration.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalid       = "invalid"
	OutcomeDisabled      = "disabled"
	OutcomeNotFound      = "not_found"
	OutcomeUpstreamError = "upstream_error"
	OutcomeError         = "error"
)

// Recorder counts events as they happen.
type Recorder interface {
	RecordCapture(ctx context.Context, method string)
	RecordGeneration(ctx context.Context, outcome string)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordCapture(context.Context, string)    {}
func (NopRecorder) RecordGeneration(context.Context, string) {}
