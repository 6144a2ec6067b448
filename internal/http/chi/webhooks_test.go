package chi

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcelsud/webhook-inspector/generate"
	genmocks "github.com/marcelsud/webhook-inspector/generate/mocks"
	"github.com/marcelsud/webhook-inspector/webhook"
	"github.com/marcelsud/webhook-inspector/webhook/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testID = "0190a5d2-6c4e-7b1a-9f3e-2d4c5b6a7e8f"

type countingRecorder struct {
	captures    []string
	generations []string
}

func (c *countingRecorder) RecordCapture(_ context.Context, method string) {
	c.captures = append(c.captures, method)
}

func (c *countingRecorder) RecordGeneration(_ context.Context, outcome string) {
	c.generations = append(c.generations, outcome)
}

func newTestHandler(t *testing.T, ws webhook.UseCase, gs generate.UseCase) (http.Handler, *countingRecorder) {
	t.Helper()
	rec := &countingRecorder{}
	opts := DefaultOptions()
	opts.Recorder = rec
	opts.MaxBodyBytes = 64
	return Handlers(context.Background(), opts, ws, gs), rec
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, mocks.NewUseCase(t), genmocks.NewUseCase(t))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestDocs(t *testing.T) {
	h, _ := newTestHandler(t, mocks.NewUseCase(t), genmocks.NewUseCase(t))

	t.Run("success - openapi document lists the api", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var doc struct {
			Swagger string                    `json:"swagger"`
			Paths   map[string]map[string]any `json:"paths"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
		assert.Equal(t, "2.0", doc.Swagger)
		assert.Contains(t, doc.Paths["/api/webhooks"], "get")
		assert.Contains(t, doc.Paths["/api/webhooks/{id}"], "get")
		assert.Contains(t, doc.Paths["/api/webhooks/{id}"], "delete")
		assert.Contains(t, doc.Paths["/api/generate"], "post")
		assert.Contains(t, doc.Paths["/api/capture/{path}"], "post")
	})

	t.Run("success - ui", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "swagger-ui")
	})

	t.Run("success - bare path redirects to the ui", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs", nil))
		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "/docs/index.html", w.Header().Get("Location"))
	})
}

func TestCaptureWebhook(t *testing.T) {
	t.Run("success - any method and nested path", func(t *testing.T) {
		methods := []string{
			http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodGet, http.MethodDelete, http.MethodOptions,
			"PURGE", "SEARCH", "QUERY", "MKCALENDAR", "MERGE", "NOTIFY", "SUBSCRIBE", "ACL", "FOO",
		}
		for _, method := range methods {
			s := mocks.NewUseCase(t)
			s.On("Capture", mock.Anything, webhook.MatchCapture(func(c webhook.Capture) bool {
				return c.Method == method &&
					c.URL.Path == "/api/capture/stripe/events" &&
					c.URL.RawQuery == "a=1" &&
					string(c.Body) == `{"ok":true}` &&
					c.Header.Get("X-Custom") == "yes"
			})).Return(testID, nil).Once()

			h, rec := newTestHandler(t, s, genmocks.NewUseCase(t))
			req := httptest.NewRequest(method, "/api/capture/stripe/events?a=1", strings.NewReader(`{"ok":true}`))
			req.Header.Set("X-Custom", "yes")
			req.Header.Set("Origin", "https://example.com")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, http.StatusCreated, w.Code, method)
			assert.JSONEq(t, `{"id":"`+testID+`"}`, w.Body.String())
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, []string{method}, rec.captures)
		}
	})

	t.Run("success - prefix itself", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Capture", mock.Anything, webhook.MatchCapture(func(c webhook.Capture) bool {
			return c.URL.Path == "/api/capture" && len(c.Body) == 0
		})).Return(testID, nil)

		h, _ := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/capture", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("success - unknown method is stored once", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Capture", mock.Anything, webhook.MatchCapture(func(c webhook.Capture) bool {
			return c.Method == "BREW" && c.URL.Path == "/api/capture/orders/42"
		})).Return(testID, nil).Once()

		h, rec := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("BREW", "/api/capture/orders/42", strings.NewReader("coffee")))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, []string{"BREW"}, rec.captures)
	})

	t.Run("error - unknown method outside capture is not routed", func(t *testing.T) {
		h, _ := newTestHandler(t, mocks.NewUseCase(t), genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("BREW", "/api/webhooks", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("success - chunked trailer names reach the capture", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Capture", mock.Anything, webhook.MatchCapture(func(c webhook.Capture) bool {
			return c.Header.Get("Trailer") == "" &&
				assert.ObjectsAreEqual([]string{"X-Checksum"}, c.Trailer) &&
				assert.ObjectsAreEqual([]string{"chunked"}, c.TransferEncoding) &&
				string(c.Body) == "abc"
		})).Return(testID, nil).Once()

		raw := "POST /api/capture/stream HTTP/1.1\r\n" +
			"Host: example.test\r\n" +
			"Transfer-Encoding: chunked\r\n" +
			"Trailer: X-Checksum\r\n" +
			"\r\n" +
			"3\r\nabc\r\n0\r\nX-Checksum: 900150983cd24fb0\r\n\r\n"
		req, err := http.ReadRequest(bufio.NewReader(strings.NewReader(raw)))
		require.NoError(t, err)

		h, _ := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("error - body too large", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		h, rec := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/capture/big", strings.NewReader(strings.Repeat("x", 65))))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, codePayloadTooLarge, decodeError(t, w).Code)
		assert.Empty(t, rec.captures)
		s.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything)
	})

	t.Run("error - storage failure is internal", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Capture", mock.Anything, mock.Anything).Return("", fmt.Errorf("storing webhook: %w", errors.New("connection refused")))

		h, _ := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/capture/x", strings.NewReader("hi")))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, codeInternal, body.Code)
		assert.NotContains(t, body.Message, "connection refused")
	})
}

func TestListWebhooks(t *testing.T) {
	created := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	contentType := "application/json"

	t.Run("success - default limit and next cursor", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		next := webhook.Cursor{CreatedAt: created, ID: testID}
		s.On("List", mock.Anything, webhook.PageRequest{Limit: webhook.DefaultLimit}).Return(webhook.Page{
			Webhooks: []webhook.Summary{{
				ID: testID, Method: "POST", Pathname: "/stripe", IP: "10.0.0.1",
				StatusCode: 200, ContentType: &contentType, CreatedAt: created,
			}},
			NextCursor: &next,
		}, nil)

		h, _ := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/webhooks", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, next.Encode(), resp["nextCursor"])
		items := resp["webhooks"].([]any)
		require.Len(t, items, 1)
		item := items[0].(map[string]any)
		assert.Equal(t, testID, item["id"])
		assert.Equal(t, "/stripe", item["pathname"])
		assert.Equal(t, float64(200), item["statusCode"])
		assert.Nil(t, item["contentLength"])
		assert.NotContains(t, item, "body")
	})

	t.Run("success - empty page", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("List", mock.Anything, webhook.PageRequest{Limit: 5}).Return(webhook.Page{Webhooks: []webhook.Summary{}}, nil)

		h, _ := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/webhooks?limit=5", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"webhooks":[],"nextCursor":null}`, w.Body.String())
	})

	t.Run("error - invalid limit", func(t *testing.T) {
		for _, limit := range []string{"0", "101", "abc", "-1"} {
			h, _ := newTestHandler(t, mocks.NewUseCase(t), genmocks.NewUseCase(t))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/webhooks?limit="+limit, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, limit)
			assert.Equal(t, codeInvalidArgument, decodeError(t, w).Code)
		}
	})

	t.Run("error - invalid cursor", func(t *testing.T) {
		h, _ := newTestHandler(t, mocks.NewUseCase(t), genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/webhooks?cursor=not-a-cursor", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success - cors headers on the api", func(t *testing.T) {
		h, _ := newTestHandler(t, mocks.NewUseCase(t), genmocks.NewUseCase(t))
		req := httptest.NewRequest(http.MethodOptions, "/api/webhooks", nil)
		req.Header.Set("Origin", "https://ui.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestGetWebhook(t *testing.T) {
	body := `{"type":"charge.succeeded"}`
	created := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Get", mock.Anything, testID).Return(webhook.Webhook{
			ID: testID, Method: "POST", Pathname: "/", IP: "10.0.0.1", StatusCode: 200,
			Headers: map[string]string{"host": "example.com"}, Body: &body, CreatedAt: created,
		}, nil)

		h, _ := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/webhooks/"+testID, nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp webhookResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, testID, resp.ID)
		assert.Equal(t, body, *resp.Body)
		assert.Equal(t, "example.com", resp.Headers["host"])
		assert.NotNil(t, resp.QueryParams)
		assert.True(t, created.Equal(resp.CreatedAt))
	})

	t.Run("error - malformed id", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Get", mock.Anything, "nope").Return(webhook.Webhook{}, fmt.Errorf("%w: nope", webhook.ErrInvalidID))

		h, _ := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/webhooks/nope", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error - not found", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Get", mock.Anything, testID).Return(webhook.Webhook{}, fmt.Errorf("getting webhook: %w", webhook.ErrNotFound))

		h, _ := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/webhooks/"+testID, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, codeNotFound, decodeError(t, w).Code)
	})
}

func TestDeleteWebhook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Delete", mock.Anything, testID).Return(nil)

		h, _ := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/webhooks/"+testID, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("error - not found", func(t *testing.T) {
		s := mocks.NewUseCase(t)
		s.On("Delete", mock.Anything, testID).Return(fmt.Errorf("deleting webhook: %w", webhook.ErrNotFound))

		h, _ := newTestHandler(t, s, genmocks.NewUseCase(t))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/webhooks/"+testID, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestIsCapturePath(t *testing.T) {
	assert.True(t, isCapturePath("/api/capture", webhook.CapturePrefix))
	assert.True(t, isCapturePath("/api/capture/", webhook.CapturePrefix))
	assert.True(t, isCapturePath("/api/capture/a/b", webhook.CapturePrefix))
	assert.False(t, isCapturePath("/api/captured", webhook.CapturePrefix))
	assert.False(t, isCapturePath("/api/webhooks", webhook.CapturePrefix))
}
