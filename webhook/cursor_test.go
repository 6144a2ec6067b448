package webhook_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-inspector/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	t.Run("success - round trip keeps sub-second precision", func(t *testing.T) {
		c := webhook.Cursor{
			CreatedAt: time.Date(2025, 6, 7, 8, 9, 10, 123456000, time.FixedZone("BRT", -3*3600)),
			ID:        uuid.NewString(),
		}

		decoded, err := webhook.DecodeCursor(c.Encode())
		require.NoError(t, err)
		assert.True(t, c.CreatedAt.Equal(decoded.CreatedAt))
		assert.Equal(t, time.UTC, decoded.CreatedAt.Location())
		assert.Equal(t, c.ID, decoded.ID)
	})

	t.Run("success - token is url safe", func(t *testing.T) {
		c := webhook.Cursor{CreatedAt: time.Now(), ID: uuid.NewString()}
		assert.NotContains(t, c.Encode(), "=")
		assert.NotContains(t, c.Encode(), "+")
		assert.NotContains(t, c.Encode(), "/")
	})

	invalid := map[string]string{
		"not base64":      "%%%",
		"not json":        base64.RawURLEncoding.EncodeToString([]byte("nope")),
		"unknown version": base64.RawURLEncoding.EncodeToString([]byte(`{"v":2,"t":"2025-01-01T00:00:00Z","id":"0190a6a4-8c00-7000-8000-000000000000"}`)),
		"bad time":        base64.RawURLEncoding.EncodeToString([]byte(`{"v":1,"t":"yesterday","id":"0190a6a4-8c00-7000-8000-000000000000"}`)),
		"bad id":          base64.RawURLEncoding.EncodeToString([]byte(`{"v":1,"t":"2025-01-01T00:00:00Z","id":"42"}`)),
	}
	for name, token := range invalid {
		t.Run("error - "+name, func(t *testing.T) {
			_, err := webhook.DecodeCursor(token)
			assert.ErrorIs(t, err, webhook.ErrInvalidCursor)
		})
	}
}

func TestNewPageRequest(t *testing.T) {
	t.Run("success - defaults", func(t *testing.T) {
		req, err := webhook.NewPageRequest("", "")
		require.NoError(t, err)
		assert.Equal(t, webhook.DefaultLimit, req.Limit)
		assert.Nil(t, req.After)
	})

	t.Run("success - limit and cursor", func(t *testing.T) {
		c := webhook.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.NewString()}
		req, err := webhook.NewPageRequest("100", c.Encode())
		require.NoError(t, err)
		assert.Equal(t, 100, req.Limit)
		require.NotNil(t, req.After)
		assert.Equal(t, c.ID, req.After.ID)
	})

	for _, limit := range []string{"0", "101", "-3", "ten", "1.5"} {
		t.Run("error - limit "+limit, func(t *testing.T) {
			_, err := webhook.NewPageRequest(limit, "")
			assert.ErrorIs(t, err, webhook.ErrInvalidLimit)
		})
	}

	t.Run("error - bad cursor", func(t *testing.T) {
		_, err := webhook.NewPageRequest("10", "garbage!")
		assert.ErrorIs(t, err, webhook.ErrInvalidCursor)
	})
}
