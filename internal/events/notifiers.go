package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/freshkart/backend-cart/internal/obs"
)

// LogNotifier writes emitted events to the structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.Info().
		Str("topic", event.Topic).
		Str("session_id", event.SessionID.String()).
		Fields(event.Payload).
		Msg("domain_event")
	return nil
}

// MetricsNotifier increments Prometheus counters for offer-related events.
type MetricsNotifier struct{}

// Notify implements Notifier.
func (MetricsNotifier) Notify(_ context.Context, event Event) error {
	if event.Topic == TopicGiftSelected && obs.GiftOfferSelectedTotal != nil {
		obs.GiftOfferSelectedTotal.Inc()
	}
	return nil
}
