package seed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/marcelsud/webhook-inspector/webhook"
	"github.com/marcelsud/webhook-inspector/webhook/signature"
)

const (
	// DefaultCount is how many records a seed run inserts.
	DefaultCount = 75
	// recentCount records land within the last twelve hours, the rest 1 to 5 days back.
	recentCount = 15

	stripeAPIVersion = "2024-10-28.acacia"
	stripeUserAgent  = "Stripe/1.0 (+https://stripe.com/docs/webhooks)"
)

// Generator builds fake Stripe deliveries, signed with a per-generator
// secret. The same seed and clock give the same records, ids aside.
type Generator struct {
	faker  *gofakeit.Faker
	now    time.Time
	secret signature.Secret
}

func NewGenerator(seed uint64, now time.Time) *Generator {
	g := &Generator{
		faker: gofakeit.New(seed),
		now:   now.UTC(),
	}
	g.secret, _ = signature.ParseSecret(signature.SecretPrefix + g.alnum(32))
	return g
}

// Secret is the key the stripe-signature headers were computed with.
func (g *Generator) Secret() signature.Secret {
	return g.secret
}

// Batch returns n records with explicit creation times.
func (g *Generator) Batch(n int) ([]webhook.Webhook, error) {
	out := make([]webhook.Webhook, 0, n)
	for i := 0; i < n; i++ {
		wh, err := g.Webhook(g.createdAt(i))
		if err != nil {
			return nil, fmt.Errorf("generating record %d: %w", i, err)
		}
		out = append(out, wh)
	}
	return out, nil
}

func (g *Generator) createdAt(index int) time.Time {
	f := g.faker
	if index < recentCount {
		at := g.now.
			Add(-time.Duration(f.IntRange(0, 12)) * time.Hour).
			Add(-time.Duration(f.IntRange(0, 59)) * time.Minute).
			Add(-time.Duration(f.IntRange(0, 59)) * time.Second)
		return at
	}
	day := g.now.AddDate(0, 0, -f.IntRange(1, 5))
	return time.Date(day.Year(), day.Month(), day.Day(),
		f.IntRange(0, 23), f.IntRange(0, 59), f.IntRange(0, 59), 0, time.UTC)
}

// Webhook builds one record as if Stripe had delivered it at createdAt.
func (g *Generator) Webhook(createdAt time.Time) (webhook.Webhook, error) {
	f := g.faker
	eventType := f.RandomString(StripeEvents)
	if err := ValidateEventType(eventType); err != nil {
		return webhook.Webhook{}, err
	}

	raw, err := json.Marshal(g.event(eventType, createdAt))
	if err != nil {
		return webhook.Webhook{}, fmt.Errorf("marshaling event: %w", err)
	}
	body := string(raw)

	id, err := uuid.NewV7()
	if err != nil {
		return webhook.Webhook{}, fmt.Errorf("generating id: %w", err)
	}

	contentType := "application/json"
	contentLength := int64(len(raw))
	return webhook.Webhook{
		ID:            id.String(),
		Method:        http.MethodPost,
		Pathname:      f.RandomString(Pathnames),
		IP:            f.IPv4Address(),
		StatusCode:    webhook.CapturedStatusCode,
		ContentType:   &contentType,
		ContentLength: &contentLength,
		QueryParams:   map[string]string{},
		Headers: map[string]string{
			"content-type":     contentType,
			"content-length":   strconv.FormatInt(contentLength, 10),
			"stripe-signature": signature.Header(g.secret, createdAt, raw),
			"user-agent":       stripeUserAgent,
		},
		Body:      &body,
		CreatedAt: createdAt,
	}, nil
}

func (g *Generator) alnum(n int) string {
	return g.faker.Regex(fmt.Sprintf("[a-zA-Z0-9]{%d}", n))
}

func (g *Generator) unix(from, to time.Time) int64 {
	return g.faker.DateRange(from, to).Unix()
}

func (g *Generator) event(eventType string, createdAt time.Time) map[string]any {
	f := g.faker
	chargeID := "ch_" + g.alnum(24)
	customerID := "cus_" + g.alnum(14)
	paymentIntentID := "pi_" + g.alnum(24)
	subscriptionID := "sub_" + g.alnum(14)

	event := map[string]any{
		"id":          "evt_" + g.alnum(24),
		"object":      "event",
		"api_version": stripeAPIVersion,
		"created":     createdAt.Unix(),
		"type":        eventType,
		"livemode":    false,
	}

	var object map[string]any
	switch {
	case strings.HasPrefix(eventType, "payment_intent"):
		status := "requires_payment_method"
		if strings.Contains(eventType, "succeeded") {
			status = "succeeded"
		}
		object = map[string]any{
			"id":          paymentIntentID,
			"object":      "payment_intent",
			"amount":      f.IntRange(1000, 100000),
			"currency":    "usd",
			"customer":    customerID,
			"status":      status,
			"description": f.ProductName(),
		}
	case strings.HasPrefix(eventType, "charge.dispute"):
		status := "needs_response"
		if strings.Contains(eventType, "closed") {
			status = "won"
		}
		object = map[string]any{
			"id":       "dp_" + g.alnum(24),
			"object":   "dispute",
			"charge":   chargeID,
			"amount":   f.IntRange(1000, 50000),
			"currency": "usd",
			"status":   status,
			"reason":   f.RandomString([]string{"fraudulent", "unrecognized", "duplicate"}),
		}
	case strings.HasPrefix(eventType, "charge"):
		status := "failed"
		if strings.Contains(eventType, "succeeded") {
			status = "succeeded"
		}
		object = map[string]any{
			"id":             chargeID,
			"object":         "charge",
			"amount":         f.IntRange(1000, 100000),
			"currency":       "usd",
			"customer":       customerID,
			"status":         status,
			"payment_method": "pm_" + g.alnum(24),
		}
	case strings.HasPrefix(eventType, "customer.subscription"):
		object = map[string]any{
			"id":                   subscriptionID,
			"object":               "subscription",
			"customer":             customerID,
			"status":               "active",
			"current_period_start": g.unix(createdAt.AddDate(0, 0, -30), createdAt),
			"current_period_end":   g.unix(createdAt, createdAt.AddDate(1, 0, 0)),
			"items": map[string]any{
				"data": []any{
					map[string]any{
						"id": "si_" + g.alnum(14),
						"price": map[string]any{
							"id":          "price_" + g.alnum(24),
							"unit_amount": f.IntRange(999, 9999),
							"currency":    "usd",
							"recurring":   map[string]any{"interval": "month"},
						},
					},
				},
			},
		}
	case strings.HasPrefix(eventType, "customer"):
		object = map[string]any{
			"id":      customerID,
			"object":  "customer",
			"email":   f.Email(),
			"name":    f.Name(),
			"created": g.unix(createdAt.AddDate(-2, 0, 0), createdAt),
		}
	case strings.HasPrefix(eventType, "invoice"):
		paid := strings.Contains(eventType, "paid")
		amountPaid, status := 0, "open"
		if paid {
			amountPaid, status = f.IntRange(1000, 50000), "paid"
		}
		object = map[string]any{
			"id":           "in_" + g.alnum(24),
			"object":       "invoice",
			"customer":     customerID,
			"subscription": subscriptionID,
			"amount_due":   f.IntRange(1000, 50000),
			"amount_paid":  amountPaid,
			"currency":     "usd",
			"status":       status,
		}
	case strings.HasPrefix(eventType, "checkout.session"):
		paymentStatus := "unpaid"
		if strings.Contains(eventType, "completed") {
			paymentStatus = "paid"
		}
		object = map[string]any{
			"id":             "cs_" + g.alnum(24),
			"object":         "checkout.session",
			"customer":       customerID,
			"payment_intent": paymentIntentID,
			"amount_total":   f.IntRange(1000, 100000),
			"currency":       "usd",
			"payment_status": paymentStatus,
		}
	case strings.HasPrefix(eventType, "payout"):
		status := "in_transit"
		switch {
		case strings.Contains(eventType, "paid"):
			status = "paid"
		case strings.Contains(eventType, "failed"):
			status = "failed"
		}
		object = map[string]any{
			"id":           "po_" + g.alnum(24),
			"object":       "payout",
			"amount":       f.IntRange(10000, 500000),
			"currency":     "usd",
			"status":       status,
			"arrival_date": g.unix(createdAt, createdAt.AddDate(0, 0, 7)),
		}
	}
	if object != nil {
		event["data"] = map[string]any{"object": object}
	}
	return event
}
