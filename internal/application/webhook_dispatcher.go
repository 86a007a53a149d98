package application

import (
	"context"
	"fmt"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"github.com/rs/zerolog"
)

// WebhookDispatcher routes verified webhook events to the handlers registered for their topic
type WebhookDispatcher struct {
	handlers []ports.WebhookHandler
	metrics  ports.MetricsRecorder
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates a dispatcher with no handlers
func NewWebhookDispatcher(metrics ports.MetricsRecorder, logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		metrics: metricsOrNop(metrics),
		logger:  logger,
	}
}

// RegisterHandler adds a handler. Handlers run in registration order.
func (d *WebhookDispatcher) RegisterHandler(h ports.WebhookHandler) {
	d.handlers = append(d.handlers, h)
}

// Dispatch runs every handler accepting the event's topic. Topics nobody handles
// are acknowledged and ignored.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	err := d.dispatch(ctx, event)
	d.metrics.ObserveWebhook(event.Topic, err)
	return err
}

func (d *WebhookDispatcher) dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	handled := false
	for _, h := range d.handlers {
		if !h.CanHandle(event.Topic) {
			continue
		}
		handled = true
		if err := h.Handle(ctx, event); err != nil {
			return fmt.Errorf("failed to handle %s webhook: %w", event.Topic, err)
		}
	}

	if !handled {
		d.logger.Debug().
			Str("topic", event.Topic).
			Str("shop", event.Shop).
			Msg("No handler registered for webhook topic")
	}
	return nil
}
