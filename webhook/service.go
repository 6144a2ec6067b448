package webhook

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the operations behind the HTTP API
type UseCase interface {
	Capture(ctx context.Context, c Capture) (string, error)
	List(ctx context.Context, req PageRequest) (Page, error)
	Get(ctx context.Context, id string) (Webhook, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	Repo     Repository
	Notifier Notifier
	Prefix   string
	logger   zerolog.Logger
}

type Option func(*Service)

// WithNotifier publishes every stored capture to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.Notifier = n
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPrefix overrides CapturePrefix.
func WithPrefix(prefix string) Option {
	return func(s *Service) {
		s.Prefix = prefix
	}
}

// NewService creates a new webhook service with dependency injection
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		Repo:   repo,
		Prefix: CapturePrefix,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capture records the request and returns the id of the new record
func (s *Service) Capture(ctx context.Context, c Capture) (string, error) {
	webhook, err := Normalize(c, s.Prefix)
	if err != nil {
		return "", fmt.Errorf("normalizing request: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	webhook.ID = id.String()

	stored, err := s.Repo.Store(ctx, webhook)
	if err != nil {
		return "", fmt.Errorf("storing webhook: %w", err)
	}

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, stored); err != nil {
			s.logger.Warn().Err(err).Str("webhook_id", stored.ID).Msg("publishing capture")
		}
	}
	return stored.ID, nil
}

// List returns one page of summaries, newest first
func (s *Service) List(ctx context.Context, req PageRequest) (Page, error) {
	if err := req.Validate(); err != nil {
		return Page{}, err
	}
	rows, err := s.Repo.Page(ctx, req.Limit+1, req.After)
	if err != nil {
		return Page{}, fmt.Errorf("listing webhooks: %w", err)
	}
	page := Page{Webhooks: rows}
	if len(rows) > req.Limit {
		page.Webhooks = rows[:req.Limit]
		next := CursorOf(rows[req.Limit-1])
		page.NextCursor = &next
	}
	if page.Webhooks == nil {
		page.Webhooks = []Summary{}
	}
	return page, nil
}

// Get returns the full record
func (s *Service) Get(ctx context.Context, id string) (Webhook, error) {
	id, err := ParseID(id)
	if err != nil {
		return Webhook{}, err
	}
	webhook, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Webhook{}, fmt.Errorf("getting webhook: %w", err)
	}
	return webhook, nil
}

// Delete removes the record
func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}
	return nil
}
