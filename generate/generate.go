package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marcelsud/webhook-inspector/webhook"
)

// MaxWebhookIDs caps how many records one generation may read.
const MaxWebhookIDs = 100

var (
	// ErrDisabled is returned when no text-generation backend is configured.
	ErrDisabled = errors.New("handler generation is disabled")
	// ErrInvalidRequest is returned for an empty, oversized or malformed id list.
	ErrInvalidRequest = errors.New("invalid generation request")
	// ErrNoWebhooks is returned when none of the requested ids exist.
	ErrNoWebhooks = errors.New("no webhooks found for the given ids")
	// ErrUpstream wraps failures of the text-generation backend.
	ErrUpstream = errors.New("text generation failed")
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Source loads the records whose bodies feed the prompt.
type Source interface {
	GetMany(ctx context.Context, ids []string) ([]webhook.Webhook, error)
}

// UseCase generates handler code from captured bodies
type UseCase interface {
	Generate(ctx context.Context, webhookIDs []string) (string, error)
}

type Service struct {
	Source    Source
	Generator Generator
}

// NewService wires the generation use case. A nil generator disables it.
func NewService(source Source, generator Generator) *Service {
	return &Service{
		Source:    source,
		Generator: generator,
	}
}

// Generate builds the prompt from the selected bodies and returns the
// generated code as is.
func (s *Service) Generate(ctx context.Context, webhookIDs []string) (string, error) {
	if s.Generator == nil {
		return "", ErrDisabled
	}
	ids, err := validateIDs(webhookIDs)
	if err != nil {
		return "", err
	}

	webhooks, err := s.Source.GetMany(ctx, ids)
	if err != nil {
		return "", fmt.Errorf("loading webhooks: %w", err)
	}
	if len(webhooks) == 0 {
		return "", ErrNoWebhooks
	}

	bodies := make([]string, len(webhooks))
	for i, wh := range webhooks {
		bodies[i] = wh.BodyText()
	}

	code, err := s.Generator.Generate(ctx, BuildHandlerPrompt(bodies))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return code, nil
}

func validateIDs(webhookIDs []string) ([]string, error) {
	if len(webhookIDs) == 0 {
		return nil, fmt.Errorf("%w: webhookIds must not be empty", ErrInvalidRequest)
	}
	if len(webhookIDs) > MaxWebhookIDs {
		return nil, fmt.Errorf("%w: at most %d webhookIds are allowed", ErrInvalidRequest, MaxWebhookIDs)
	}
	ids := make([]string, len(webhookIDs))
	for i, raw := range webhookIDs {
		id, err := webhook.ParseID(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: webhookIds[%d] is not a uuid", ErrInvalidRequest, i)
		}
		ids[i] = id
	}
	return ids, nil
}
