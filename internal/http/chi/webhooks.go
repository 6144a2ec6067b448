package chi

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhook-inspector/webhook"
)

/* HTTP layer DTOs for the inspector API
 * Separate from domain entities to avoid leaking internal structure
 */

type captureResponse struct {
	ID string `json:"id"`
}

type summaryResponse struct {
	ID            string    `json:"id"`
	Method        string    `json:"method"`
	Pathname      string    `json:"pathname"`
	IP            string    `json:"ip"`
	StatusCode    int       `json:"statusCode"`
	ContentType   *string   `json:"contentType"`
	ContentLength *int64    `json:"contentLength"`
	CreatedAt     time.Time `json:"createdAt"`
}

type listResponse struct {
	Webhooks   []summaryResponse `json:"webhooks"`
	NextCursor *string           `json:"nextCursor"`
}

type webhookResponse struct {
	ID            string            `json:"id"`
	Method        string            `json:"method"`
	Pathname      string            `json:"pathname"`
	IP            string            `json:"ip"`
	StatusCode    int               `json:"statusCode"`
	ContentType   *string           `json:"contentType"`
	ContentLength *int64            `json:"contentLength"`
	QueryParams   map[string]string `json:"queryParams"`
	Headers       map[string]string `json:"headers"`
	Body          *string           `json:"body"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func toSummaryResponse(s webhook.Summary) summaryResponse {
	return summaryResponse{
		ID:            s.ID,
		Method:        s.Method,
		Pathname:      s.Pathname,
		IP:            s.IP,
		StatusCode:    s.StatusCode,
		ContentType:   s.ContentType,
		ContentLength: s.ContentLength,
		CreatedAt:     s.CreatedAt.UTC(),
	}
}

func toWebhookResponse(wh webhook.Webhook) webhookResponse {
	query := wh.QueryParams
	if query == nil {
		query = map[string]string{}
	}
	headers := wh.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	return webhookResponse{
		ID:            wh.ID,
		Method:        wh.Method,
		Pathname:      wh.Pathname,
		IP:            wh.IP,
		StatusCode:    wh.StatusCode,
		ContentType:   wh.ContentType,
		ContentLength: wh.ContentLength,
		QueryParams:   query,
		Headers:       headers,
		Body:          wh.Body,
		CreatedAt:     wh.CreatedAt.UTC(),
	}
}

// captureWebhook handles ANY /api/capture and /api/capture/*
//
// @Summary Capture a request
// @Description Stores any request sent under /api/capture, whatever its method, headers or body.
// @Tags capture
// @Accept */*
// @Produce json
// @Param path path string true "Path recorded as the pathname"
// @Success 201 {object} captureResponse
// @Failure 413 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/capture/{path} [post]
// @Router /api/capture/{path} [put]
// @Router /api/capture/{path} [patch]
// @Router /api/capture/{path} [get]
// @Router /api/capture/{path} [delete]
func captureWebhook(webhookService webhook.UseCase, opts Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge,
					fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
				return
			}
			writeError(w, http.StatusBadRequest, codeInvalidArgument, "failed to read request body")
			return
		}
		defer r.Body.Close()

		id, err := webhookService.Capture(r.Context(), webhook.Capture{
			Method:           r.Method,
			URL:              r.URL,
			Host:             r.Host,
			Header:           r.Header,
			TransferEncoding: r.TransferEncoding,
			Trailer:          slices.Sorted(maps.Keys(r.Trailer)),
			RemoteAddr:       r.RemoteAddr,
			Body:             body,
		})
		if err != nil {
			respondError(w, r, opts.Logger, err)
			return
		}
		opts.Recorder.RecordCapture(r.Context(), r.Method)

		writeJSON(w, http.StatusCreated, captureResponse{ID: id})
	})
}

// listWebhooks handles GET /api/webhooks?limit=&cursor=
//
// @Summary List captured requests
// @Description Newest first. Pass nextCursor back as cursor to read the following page.
// @Tags webhooks
// @Produce json
// @Param limit query int false "Page size (1-100)" default(20)
// @Param cursor query string false "Opaque cursor from a previous page"
// @Success 200 {object} listResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/webhooks [get]
func listWebhooks(webhookService webhook.UseCase, opts Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		req, err := webhook.NewPageRequest(query.Get("limit"), query.Get("cursor"))
		if err != nil {
			respondError(w, r, opts.Logger, err)
			return
		}

		page, err := webhookService.List(r.Context(), req)
		if err != nil {
			respondError(w, r, opts.Logger, err)
			return
		}

		result := listResponse{Webhooks: make([]summaryResponse, 0, len(page.Webhooks))}
		for _, s := range page.Webhooks {
			result.Webhooks = append(result.Webhooks, toSummaryResponse(s))
		}
		if page.NextCursor != nil {
			next := page.NextCursor.Encode()
			result.NextCursor = &next
		}
		writeJSON(w, http.StatusOK, result)
	})
}

// getWebhook handles GET /api/webhooks/{id}
//
// @Summary Get a captured request
// @Tags webhooks
// @Produce json
// @Param id path string true "Webhook ID (UUIDv7)"
// @Success 200 {object} webhookResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/webhooks/{id} [get]
func getWebhook(webhookService webhook.UseCase, opts Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wh, err := webhookService.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, opts.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toWebhookResponse(wh))
	})
}

// deleteWebhook handles DELETE /api/webhooks/{id}
//
// @Summary Delete a captured request
// @Tags webhooks
// @Param id path string true "Webhook ID (UUIDv7)"
// @Success 204
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/webhooks/{id} [delete]
func deleteWebhook(webhookService webhook.UseCase, opts Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := webhookService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondError(w, r, opts.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
