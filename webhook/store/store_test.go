package store_test

import (
	"context"
	"testing"

	"github.com/marcelsud/webhook-inspector/config"
	"github.com/marcelsud/webhook-inspector/webhook/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		url    string
		driver store.Driver
		dsn    string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", store.Postgres, "postgres://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://localhost/db", store.Postgres, "postgresql://localhost/db"},
		{"sqlite://./data/webhooks.db", store.SQLite, "./data/webhooks.db"},
		{"file:webhooks.db?cache=shared", store.SQLite, "file:webhooks.db?cache=shared"},
		{":memory:", store.SQLite, ":memory:"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, dsn, err := store.Resolve(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
		})
	}

	for _, bad := range []string{"mysql://localhost/db", "sqlite://", "webhooks.db"} {
		t.Run("error - "+bad, func(t *testing.T) {
			_, _, err := store.Resolve(bad)
			assert.Error(t, err)
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	s, err := store.Open(&config.Config{DatabaseURL: ":memory:"})
	require.NoError(t, err)
	defer s.Close(context.Background())

	require.NoError(t, s.MigrateUp())
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
