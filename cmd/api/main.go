package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelsud/webhook-inspector/config"
	"github.com/marcelsud/webhook-inspector/generate"
	"github.com/marcelsud/webhook-inspector/generate/gemini"
	"github.com/marcelsud/webhook-inspector/internal/http/chi"
	"github.com/marcelsud/webhook-inspector/metrics"
	"github.com/marcelsud/webhook-inspector/webhook"
	"github.com/marcelsud/webhook-inspector/webhook/redis"
	"github.com/marcelsud/webhook-inspector/webhook/store"
)

const TIMEOUT = 30 * time.Second

/* main.go wires the packages together: config, storage, the optional capture
 * feed and text generator, metrics and the HTTP server.
 * Imports only go down: the app imports the business layers, which import storage.
 */

// @title       Webhook Inspector API
// @version     1.0
// @description Captures arbitrary HTTP requests and serves them back for inspection and handler generation.
// @BasePath    /
func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}
	logger := chi.NewLogger(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	repo, err := store.Open(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("opening store")
		return
	}
	defer repo.Close(context.Background())
	if err := repo.MigrateUp(); err != nil {
		logger.Error().Err(err).Msg("applying migrations")
		return
	}

	serviceOpts := []webhook.Option{webhook.WithLogger(logger)}
	var feed *redis.Feed
	if cfg.CaptureFeedEnabled() {
		feed, err = redis.NewFeed(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CaptureFeedMaxLen)
		if err != nil {
			logger.Error().Err(err).Msg("connecting to capture feed")
			return
		}
		defer feed.Close(context.Background())
		serviceOpts = append(serviceOpts, webhook.WithNotifier(feed))
	}
	webhookService := webhook.NewService(repo, serviceOpts...)

	var generator generate.Generator
	if cfg.GenerationEnabled() {
		generator = gemini.NewClient(cfg.GeminiAPIKey,
			gemini.WithModel(cfg.GeminiModel),
			gemini.WithTimeout(cfg.GeminiTimeout),
		)
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, handler generation disabled")
	}
	generateService := generate.NewService(repo, generator)

	// a nil *Feed must not reach the FeedLengther interface
	var collector *metrics.StoreCollector
	if feed != nil {
		collector = metrics.NewStoreCollector(repo, feed)
	} else {
		collector = metrics.NewStoreCollector(repo, nil)
	}
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		logger.Error().Err(err).Msg("creating metrics exporter")
		return
	}
	defer exporter.Shutdown(context.Background())

	r := chi.Handlers(ctx, chi.Options{
		Logger:       logger,
		MaxBodyBytes: cfg.CaptureMaxBodyBytes,
		TrustProxy:   cfg.TrustProxy,
		Recorder:     exporter,
		Metrics:      exporter.ServeHTTP(),
	}, webhookService, generateService)
	srv := &http.Server{
		ReadTimeout:  TIMEOUT,
		WriteTimeout: TIMEOUT + cfg.GeminiTimeout,
		Addr:         cfg.Addr(),
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	logger.Info().Str("addr", cfg.Addr()).Bool("generation", cfg.GenerationEnabled()).Bool("capture_feed", feed != nil).Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("serving http")
		return
	}
	err = <-errShutdown
	if err != nil {
		logger.Error().Err(err).Msg("shutting down")
		return
	}
	logger.Info().Msg("server stopped")
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
	}
}
