package seed

import (
	"fmt"
	"regexp"
)

// eventTypePattern validates event types: hierarchical, full-stop delimited, [a-zA-Z0-9_.]
var eventTypePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)*$`)

// StripeEvents are the event types the seeder picks from.
var StripeEvents = []string{
	"payment_intent.succeeded",
	"payment_intent.created",
	"payment_intent.payment_failed",
	"charge.succeeded",
	"charge.failed",
	"charge.refunded",
	"customer.created",
	"customer.updated",
	"customer.deleted",
	"customer.subscription.created",
	"customer.subscription.updated",
	"customer.subscription.deleted",
	"customer.subscription.trial_will_end",
	"invoice.created",
	"invoice.finalized",
	"invoice.paid",
	"invoice.payment_failed",
	"invoice.payment_action_required",
	"checkout.session.completed",
	"checkout.session.async_payment_succeeded",
	"checkout.session.async_payment_failed",
	"charge.dispute.created",
	"charge.dispute.updated",
	"charge.dispute.closed",
	"payout.created",
	"payout.paid",
	"payout.failed",
}

// Pathnames are the receiver paths the seeded requests pretend to hit.
var Pathnames = []string{
	"/webhooks/stripe",
	"/api/webhooks/stripe",
	"/stripe/webhook",
	"/api/stripe/events",
	"/webhooks/payments",
	"/payments/stripe/webhook",
	"/v1/webhooks/stripe",
	"/integrations/stripe/webhook",
}

// ValidateEventType validates an event type format
func ValidateEventType(eventType string) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if !eventTypePattern.MatchString(eventType) {
		return fmt.Errorf("event type must be hierarchical and contain only [a-zA-Z0-9_.]: %s", eventType)
	}
	return nil
}
