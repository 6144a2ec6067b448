package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq" // PostgreSQL driver
	"github.com/marcelsud/webhook-inspector/webhook"
)

/*
PostgreSQL Repository Implementation

- placeholders $1, $2 ao invés de ?
- body em BYTEA: o payload é guardado byte a byte, mesmo quando não é UTF-8
- headers e query params em JSONB
- paginação por keyset em (created_at, id), servida pelo índice composto
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, now()))
		RETURNING created_at
	`

// NewRepository cria uma nova instância do repositório PostgreSQL com pool padrão (25, 5, 5 min)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig opens and pings the database.
// maxOpenConns: maximum simultaneous connections (0 = unlimited)
// maxIdleConns: idle connections kept in the pool
// maxLifeMinutes: how long a connection may be reused
func NewRepositoryWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	// Configurar pool de conexões
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
	}

	return &Repository{
		DB: db,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebhook(s rowScanner) (webhook.Webhook, error) {
	var (
		wh            webhook.Webhook
		contentType   sql.NullString
		contentLength sql.NullInt64
		queryParams   []byte
		headers       []byte
		body          []byte
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
		&wh.CreatedAt,
	)
	if err != nil {
		return webhook.Webhook{}, err
	}
	if err := json.Unmarshal(headers, &wh.Headers); err != nil {
		return webhook.Webhook{}, fmt.Errorf("decoding headers: %w", err)
	}
	if err := json.Unmarshal(queryParams, &wh.QueryParams); err != nil {
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
	wh.CreatedAt = wh.CreatedAt.UTC()
	return wh, nil
}

func scanSummary(s rowScanner) (webhook.Summary, error) {
	var (
		sum           webhook.Summary
		contentType   sql.NullString
		contentLength sql.NullInt64
	)
	err := s.Scan(
		&sum.ID,
		&sum.Method,
		&sum.Pathname,
		&sum.IP,
		&sum.StatusCode,
		&contentType,
		&contentLength,
		&sum.CreatedAt,
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
	sum.CreatedAt = sum.CreatedAt.UTC()
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
	// nil interface, not a nil []byte, so the driver sends NULL
	var body any
	if wh.Body != nil {
		body = []byte(*wh.Body)
	}
	createdAt := sql.NullTime{Time: wh.CreatedAt, Valid: !wh.CreatedAt.IsZero()}

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

// Get busca um webhook por ID
func (r *Repository) Get(ctx context.Context, id string) (webhook.Webhook, error) {
	query := "SELECT " + webhookColumns + " FROM webhooks WHERE id = $1"

	wh, err := scanWebhook(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return webhook.Webhook{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.Webhook{}, fmt.Errorf("selecting webhook: %w", err)
	}
	return wh, nil
}

// Page returns up to limit summaries strictly older than after, newest first
func (r *Repository) Page(ctx context.Context, limit int, after *webhook.Cursor) ([]webhook.Summary, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if after == nil {
		query := "SELECT " + summaryColumns + " FROM webhooks ORDER BY created_at DESC, id DESC LIMIT $1"
		rows, err = r.DB.QueryContext(ctx, query, limit)
	} else {
		query := "SELECT " + summaryColumns + " FROM webhooks WHERE (created_at, id) < ($1, $2) ORDER BY created_at DESC, id DESC LIMIT $3"
		rows, err = r.DB.QueryContext(ctx, query, after.CreatedAt, after.ID, limit)
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

// GetMany loads the given ids, ignoring unknown ones
func (r *Repository) GetMany(ctx context.Context, ids []string) ([]webhook.Webhook, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := "SELECT " + webhookColumns + " FROM webhooks WHERE id = ANY($1) ORDER BY created_at DESC, id DESC"

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
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

// Count returns how many records are stored
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM webhooks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting webhooks: %w", err)
	}
	return n, nil
}

// Store insere um webhook e devolve o registro com created_at preenchido
func (r *Repository) Store(ctx context.Context, wh webhook.Webhook) (webhook.Webhook, error) {
	args, err := insertArgs(wh)
	if err != nil {
		return webhook.Webhook{}, err
	}
	var createdAt time.Time
	if err := r.DB.QueryRowContext(ctx, insertQuery, args...).Scan(&createdAt); err != nil {
		return webhook.Webhook{}, fmt.Errorf("inserting webhook: %w", err)
	}
	wh.CreatedAt = createdAt.UTC()
	return wh, nil
}

// StoreBatch inserts all records in one transaction
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

// Delete remove um webhook por ID
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM webhooks WHERE id = $1", id)
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

// Close fecha a conexão com o banco de dados
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}
