package chi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marcelsud/webhook-inspector/generate"
	genmocks "github.com/marcelsud/webhook-inspector/generate/mocks"
	"github.com/marcelsud/webhook-inspector/metrics"
	"github.com/marcelsud/webhook-inspector/webhook/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPostGenerate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		g := genmocks.NewUseCase(t)
		g.On("Generate", mock.Anything, []string{testID}).Return("export const handler = 1", nil)

		h, rec := newTestHandler(t, mocks.NewUseCase(t), g)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"webhookIds":["`+testID+`"]}`)))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"code":"export const handler = 1"}`, w.Body.String())
		assert.Equal(t, []string{metrics.OutcomeSuccess}, rec.generations)
	})

	t.Run("error - malformed bodies", func(t *testing.T) {
		bodies := []string{
			``,
			`not json`,
			`{"webhookIds":["` + testID + `"],"extra":true}`,
			`{"webhookIds":["` + testID + `"]}{"webhookIds":[]}`,
			`{"webhookIds":"` + testID + `"}`,
		}
		for _, body := range bodies {
			g := genmocks.NewUseCase(t)
			h, _ := newTestHandler(t, mocks.NewUseCase(t), g)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.Equal(t, codeInvalidArgument, decodeError(t, w).Code)
		}
	})

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		outcome string
	}{
		{"error - invalid ids", fmt.Errorf("%w: webhookIds must not be empty", generate.ErrInvalidRequest), http.StatusBadRequest, codeInvalidArgument, metrics.OutcomeInvalid},
		{"error - no webhooks", generate.ErrNoWebhooks, http.StatusNotFound, codeNotFound, metrics.OutcomeNotFound},
		{"error - upstream", fmt.Errorf("%w: %w", generate.ErrUpstream, errors.New("quota exceeded")), http.StatusBadGateway, codeUpstreamError, metrics.OutcomeUpstreamError},
		{"error - disabled", generate.ErrDisabled, http.StatusServiceUnavailable, codeGenerationDisabled, metrics.OutcomeDisabled},
		{"error - unexpected", errors.New("boom"), http.StatusInternalServerError, codeInternal, metrics.OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := genmocks.NewUseCase(t)
			g.On("Generate", mock.Anything, mock.Anything).Return("", tt.err)

			h, rec := newTestHandler(t, mocks.NewUseCase(t), g)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"webhookIds":[]}`)))

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Message, "quota exceeded")
			assert.Equal(t, []string{tt.outcome}, rec.generations)
		})
	}
}

func TestPostGenerate_BodyTooLarge(t *testing.T) {
	h, _ := newTestHandler(t, mocks.NewUseCase(t), genmocks.NewUseCase(t))
	body := `{"webhookIds":["` + strings.Repeat("a", maxGenerateBodyBytes) + `"]}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, codePayloadTooLarge, decodeError(t, w).Code)
}
