package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcelsud/webhook-inspector/webhook"
	_ "modernc.org/sqlite" // SQLite driver
)

/*
SQLite Repository Implementation

Same contract as the PostgreSQL repository, for single-node setups and tests:
- placeholders ? instead of $1
- created_at is stored as microseconds since the epoch so that keyset
  comparisons stay integer comparisons
- one connection: SQLite has a single writer anyway
*/

type Repository struct {
	DB *sql.DB
}

const (
	webhookColumns = "id, method, pathname, ip, status_code, content_type, content_length, query_params, headers, body, created_at"
	summaryColumns = "id, method, pathname, ip, status_code, content_type, content_length, created_at"
)

const insertQuery = `
		INSERT INTO webhooks (id, method, pathname, ip, status_code, content_type, content_length, query_params, headers, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CAST(unixepoch('subsec') * 1000000 AS INTEGER)))
		RETURNING created_at
	`

// NewRepository opens (or creates) the database at dsn. Use ":memory:" for
// a throwaway database.
func NewRepository(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	return &Repository{DB: db}, nil
}

func toMicros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebhook(s rowScanner) (webhook.Webhook, error) {
	var (
		wh            webhook.Webhook
		contentType   sql.NullString
		contentLength sql.NullInt64
		queryParams   string
		headers       string
		body          []byte
		createdAt     int64
	)
	err := s.Scan(
		&wh.ID,
		&wh.Method,
		&wh.Pathname,
		&wh.IP,
		&wh.StatusCode,
		&contentType,
		&contentLength,
		&queryParams,
		&headers,
		&body,
		&createdAt,
	)
	if err != nil {
		return webhook.Webhook{}, err
	}
	if err := json.Unmarshal([]byte(headers), &wh.Headers); err != nil {
		return webhook.Webhook{}, fmt.Errorf("decoding headers: %w", err)
	}
	if err := json.Unmarshal([]byte(queryParams), &wh.QueryParams); err != nil {
		return webhook.Webhook{}, fmt.Errorf("decoding query params: %w", err)
	}
	if contentType.Valid {
		wh.ContentType = &contentType.String
	}
	if contentLength.Valid {
		wh.ContentLength = &contentLength.Int64
	}
	if body != nil {
		text := string(body)
		wh.Body = &text
	}
	wh.CreatedAt = fromMicros(createdAt)
	return wh, nil
}

func scanSummary(s rowScanner) (webhook.Summary, error) {
	var (
		sum           webhook.Summary
		contentType   sql.NullString
		contentLength sql.NullInt64
		createdAt     int64
	)
	err := s.Scan(
		&sum.ID,
		&sum.Method,
		&sum.Pathname,
		&sum.IP,
		&sum.StatusCode,
		&contentType,
		&contentLength,
		&createdAt,
	)
	if err != nil {
		return webhook.Summary{}, err
	}
	if contentType.Valid {
		sum.ContentType = &contentType.String
	}
	if contentLength.Valid {
		sum.ContentLength = &contentLength.Int64
	}
	sum.CreatedAt = fromMicros(createdAt)
	return sum, nil
}

func insertArgs(wh webhook.Webhook) ([]any, error) {
	headers, err := encodeMap(wh.Headers)
	if err != nil {
		return nil, fmt.Errorf("encoding headers: %w", err)
	}
	queryParams, err := encodeMap(wh.QueryParams)
	if err != nil {
		return nil, fmt.Errorf("encoding query params: %w", err)
	}
	var contentType sql.NullString
	if wh.ContentType != nil {
		contentType = sql.NullString{String: *wh.ContentType, Valid: true}
	}
	var contentLength sql.NullInt64
	if wh.ContentLength != nil {
		contentLength = sql.NullInt64{Int64: *wh.ContentLength, Valid: true}
	}
	var body any
	if wh.Body != nil {
		body = []byte(*wh.Body)
	}
	var createdAt sql.NullInt64
	if !wh.CreatedAt.IsZero() {
		createdAt = sql.NullInt64{Int64: toMicros(wh.CreatedAt), Valid: true}
	}

	return []any{
		wh.ID,
		wh.Method,
		wh.Pathname,
		wh.IP,
		wh.StatusCode,
		contentType,
		contentLength,
		queryParams,
		headers,
		body,
		createdAt,
	}, nil
}

func encodeMap(m map[string]string) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Repository) Get(ctx context.Context, id string) (webhook.Webhook, error) {
	query := "SELECT " + webhookColumns + " FROM webhooks WHERE id = ?"

	wh, err := scanWebhook(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.Webhook{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.Webhook{}, fmt.Errorf("selecting webhook: %w", err)
	}
	return wh, nil
}

func (r *Repository) Page(ctx context.Context, limit int, after *webhook.Cursor) ([]webhook.Summary, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if after == nil {
		query := "SELECT " + summaryColumns + " FROM webhooks ORDER BY created_at DESC, id DESC LIMIT ?"
		rows, err = r.DB.QueryContext(ctx, query, limit)
	} else {
		query := "SELECT " + summaryColumns + " FROM webhooks WHERE (created_at, id) < (?, ?) ORDER BY created_at DESC, id DESC LIMIT ?"
		rows, err = r.DB.QueryContext(ctx, query, toMicros(after.CreatedAt), after.ID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("selecting webhooks: %w", err)
	}
	defer rows.Close()

	summaries := make([]webhook.Summary, 0, limit)
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning webhook: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating webhooks: %w", err)
	}
	return summaries, nil
}

func (r *Repository) GetMany(ctx context.Context, ids []string) ([]webhook.Webhook, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := "SELECT " + webhookColumns + " FROM webhooks WHERE id IN (" + placeholders + ") ORDER BY created_at DESC, id DESC"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("selecting webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []webhook.Webhook
	for rows.Next() {
		wh, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning webhook: %w", err)
		}
		webhooks = append(webhooks, wh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating webhooks: %w", err)
	}
	return webhooks, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM webhooks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting webhooks: %w", err)
	}
	return n, nil
}

func (r *Repository) Store(ctx context.Context, wh webhook.Webhook) (webhook.Webhook, error) {
	args, err := insertArgs(wh)
	if err != nil {
		return webhook.Webhook{}, err
	}
	var createdAt int64
	if err := r.DB.QueryRowContext(ctx, insertQuery, args...).Scan(&createdAt); err != nil {
		return webhook.Webhook{}, fmt.Errorf("inserting webhook: %w", err)
	}
	wh.CreatedAt = fromMicros(createdAt)
	return wh, nil
}

func (r *Repository) StoreBatch(ctx context.Context, webhooks []webhook.Webhook) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, wh := range webhooks {
		args, err := insertArgs(wh)
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("inserting webhook %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing batch: %w", err)
	}
	return len(webhooks), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM webhooks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return webhook.ErrNotFound
	}
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}
