package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/marcelsud/webhook-inspector/generate"
	"github.com/marcelsud/webhook-inspector/metrics"
)

type generateRequest struct {
	WebhookIDs []string `json:"webhookIds"`
}

type generateResponse struct {
	Code string `json:"code"`
}

// decodeGenerateRequest accepts exactly one JSON object holding only webhookIds.
func decodeGenerateRequest(r io.Reader) (generateRequest, error) {
	var req generateRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return generateRequest{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return generateRequest{}, err
		}
		return generateRequest{}, errors.New("body must contain a single JSON object")
	}
	return req, nil
}

func generationOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, generate.ErrInvalidRequest):
		return metrics.OutcomeInvalid
	case errors.Is(err, generate.ErrDisabled):
		return metrics.OutcomeDisabled
	case errors.Is(err, generate.ErrNoWebhooks):
		return metrics.OutcomeNotFound
	case errors.Is(err, generate.ErrUpstream):
		return metrics.OutcomeUpstreamError
	default:
		return metrics.OutcomeError
	}
}

// postGenerate handles POST /api/generate
//
// @Summary Generate a handler from captured requests
// @Description Sends the bodies of the given webhooks to the text generator and returns TypeScript source.
// @Tags generate
// @Accept json
// @Produce json
// @Param request body generateRequest true "Webhook IDs"
// @Success 201 {object} generateResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 413 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/generate [post]
func postGenerate(generateService generate.UseCase, opts Options) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxGenerateBodyBytes)
		defer r.Body.Close()

		req, err := decodeGenerateRequest(r.Body)
		if err != nil {
			opts.Recorder.RecordGeneration(r.Context(), metrics.OutcomeInvalid)
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge,
					fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
				return
			}
			writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid request body: "+err.Error())
			return
		}

		code, err := generateService.Generate(r.Context(), req.WebhookIDs)
		opts.Recorder.RecordGeneration(r.Context(), generationOutcome(err))
		if err != nil {
			respondError(w, r, opts.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, generateResponse{Code: code})
	})
}
