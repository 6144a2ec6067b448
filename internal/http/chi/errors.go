package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/marcelsud/webhook-inspector/generate"
	"github.com/marcelsud/webhook-inspector/webhook"
	"github.com/rs/zerolog"
)

const (
	codeInvalidArgument    = "INVALID_ARGUMENT"
	codeNotFound           = "NOT_FOUND"
	codePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	codeInternal           = "INTERNAL"
	codeUpstreamError      = "UPSTREAM_ERROR"
	codeGenerationDisabled = "GENERATION_DISABLED"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// statusFor maps domain errors to a status code and envelope code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, webhook.ErrInvalidID),
		errors.Is(err, webhook.ErrInvalidCursor),
		errors.Is(err, webhook.ErrInvalidLimit),
		errors.Is(err, webhook.ErrMalformedRequest),
		errors.Is(err, generate.ErrInvalidRequest):
		return http.StatusBadRequest, codeInvalidArgument
	case errors.Is(err, webhook.ErrNotFound),
		errors.Is(err, generate.ErrNoWebhooks):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, generate.ErrUpstream):
		return http.StatusBadGateway, codeUpstreamError
	case errors.Is(err, generate.ErrDisabled):
		return http.StatusServiceUnavailable, codeGenerationDisabled
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// respondError writes the error envelope. Server-side failures are logged
// with the request id and their details stay out of the response.
func respondError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Msg("request failed")
		switch status {
		case http.StatusBadGateway:
			message = generate.ErrUpstream.Error()
		case http.StatusServiceUnavailable:
			message = generate.ErrDisabled.Error()
		default:
			message = "internal server error"
		}
	}
	writeError(w, status, code, message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
