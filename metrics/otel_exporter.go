package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *promclient.Registry
	collector     Collector

	// OTel meters and instruments
	meter            metric.Meter
	recordsGauge     metric.Int64ObservableGauge
	feedLengthGauge  metric.Int64ObservableGauge
	capturesCounter  metric.Int64Counter
	generationsCount metric.Int64Counter
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	registry := promclient.NewRegistry()

	// Create Prometheus exporter
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	// Create meter provider
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	// Create meter with service info
	meter := meterProvider.Meter(
		"webhook-inspector",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		registry:      registry,
		collector:     collector,
		meter:         meter,
	}

	// Register metrics instruments
	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.recordsGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.records",
		metric.WithDescription("Number of captured requests in the store"),
		metric.WithUnit("{webhooks}"),
		metric.WithInt64Callback(oe.observeRecords),
	)
	if err != nil {
		return fmt.Errorf("creating records gauge: %w", err)
	}

	oe.feedLengthGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.feed.length",
		metric.WithDescription("Number of entries kept in the capture feed stream"),
		metric.WithUnit("{entries}"),
		metric.WithInt64Callback(oe.observeFeedLength),
	)
	if err != nil {
		return fmt.Errorf("creating feed length gauge: %w", err)
	}

	oe.capturesCounter, err = oe.meter.Int64Counter(
		"webhook.captures",
		metric.WithDescription("Number of captured requests by HTTP method"),
		metric.WithUnit("{webhooks}"),
	)
	if err != nil {
		return fmt.Errorf("creating captures counter: %w", err)
	}

	oe.generationsCount, err = oe.meter.Int64Counter(
		"webhook.generations",
		metric.WithDescription("Number of handler generation requests by outcome"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return fmt.Errorf("creating generations counter: %w", err)
	}

	return nil
}

// observeRecords is a callback that reports the stored record count
func (oe *OTelExporter) observeRecords(ctx context.Context, observer metric.Int64Observer) error {
	n, err := oe.collector.GetRecordCount(ctx)
	if err != nil {
		return err
	}
	observer.Observe(n)
	return nil
}

// observeFeedLength is a callback that reports the capture feed length
func (oe *OTelExporter) observeFeedLength(ctx context.Context, observer metric.Int64Observer) error {
	n, err := oe.collector.GetFeedLength(ctx)
	if errors.Is(err, ErrFeedDisabled) {
		return nil
	}
	if err != nil {
		return err
	}
	observer.Observe(n)
	return nil
}

// RecordCapture counts one captured request
func (oe *OTelExporter) RecordCapture(ctx context.Context, method string) {
	oe.capturesCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.request.method", method),
	))
}

// RecordGeneration counts one generation request
func (oe *OTelExporter) RecordGeneration(ctx context.Context, outcome string) {
	oe.generationsCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
