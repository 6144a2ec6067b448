package chi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog"
	_ "github.com/marcelsud/webhook-inspector/docs" // registers the OpenAPI document
	"github.com/marcelsud/webhook-inspector/generate"
	"github.com/marcelsud/webhook-inspector/metrics"
	"github.com/marcelsud/webhook-inspector/webhook"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	TIMEOUT = 30 * time.Second

	// maxGenerateBodyBytes caps the JSON body of POST /api/generate.
	maxGenerateBodyBytes = 1 << 20
)

type Options struct {
	Logger       zerolog.Logger
	MaxBodyBytes int64
	TrustProxy   bool
	Recorder     metrics.Recorder
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

// DefaultOptions returns options for tests and tools: no logging, default body cap.
func DefaultOptions() Options {
	return Options{
		Logger:       zerolog.Nop(),
		MaxBodyBytes: 10 << 20,
		Recorder:     metrics.NopRecorder{},
	}
}

// NewLogger creates the service logger used for access and error logs.
func NewLogger(level string, json bool) zerolog.Logger {
	return httplog.NewLogger("webhook-inspector", httplog.Options{
		LogLevel: level,
		JSON:     json,
		Concise:  true,
	})
}

// Handlers sets up the inspector API routes
func Handlers(ctx context.Context, opts Options, webhookService webhook.UseCase, generateService generate.UseCase) *chi.Mux {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NopRecorder{}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultOptions().MaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(httplog.RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(corsExceptCapture(webhook.CapturePrefix))
	// capture runs ahead of routing: chi answers 405 to methods it does not know
	r.Use(captureAnyMethod(webhook.CapturePrefix, captureWebhook(webhookService, opts)))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusMovedPermanently)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("doc.json")))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(TIMEOUT))
			r.Get("/webhooks", listWebhooks(webhookService, opts).ServeHTTP)
			r.Get("/webhooks/{id}", getWebhook(webhookService, opts).ServeHTTP)
			r.Delete("/webhooks/{id}", deleteWebhook(webhookService, opts).ServeHTTP)
		})
		// bounded by the generator's own timeout
		r.Post("/generate", postGenerate(generateService, opts).ServeHTTP)
	})

	return r
}

// corsExceptCapture applies CORS to everything but the capture routes, so
// that preflight requests sent there are recorded like any other request.
func corsExceptCapture(prefix string) func(http.Handler) http.Handler {
	withCORS := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	})
	return func(next http.Handler) http.Handler {
		h := withCORS(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isCapturePath(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
			h.ServeHTTP(w, r)
		})
	}
}

// captureAnyMethod hands every request under prefix to capture, whatever
// its method.
func captureAnyMethod(prefix string, capture http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isCapturePath(r.URL.Path, prefix) {
				capture.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isCapturePath(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
