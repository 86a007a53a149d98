package webhook_handlers

import (
	"context"
	"errors"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"github.com/rs/zerolog"
)

// SyncRecorder records webhook-triggered sync jobs
type SyncRecorder interface {
	RecordWebhookTrigger(ctx context.Context, tenant *domain.Tenant, jobType domain.SyncJobType) (*domain.SyncJob, error)
}

// ResourceSyncHandler turns product, inventory, order and location change
// notifications into sync jobs for every tenant connected to the shop
type ResourceSyncHandler struct {
	logger  zerolog.Logger
	tenants ports.TenantRepository
	sync    SyncRecorder
}

// NewResourceSyncHandler creates a new resource change webhook handler
func NewResourceSyncHandler(logger zerolog.Logger, tenants ports.TenantRepository, sync SyncRecorder) *ResourceSyncHandler {
	return &ResourceSyncHandler{
		logger:  logger,
		tenants: tenants,
		sync:    sync,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *ResourceSyncHandler) CanHandle(topic string) bool {
	_, ok := domain.SyncJobTypeForTopic(topic)
	return ok
}

// Handle records a sync job for each active, sync-enabled tenant of the shop.
// Tenants that already have a running job are skipped.
func (h *ResourceSyncHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	jobType, ok := domain.SyncJobTypeForTopic(event.Topic)
	if !ok {
		return nil
	}

	tenants, err := h.tenants.ListByShopDomain(ctx, event.Shop)
	if err != nil {
		return err
	}

	var errs []error
	for _, t := range tenants {
		if t.Status != domain.TenantStatusActive || !t.SyncEnabled {
			continue
		}
		job, err := h.sync.RecordWebhookTrigger(ctx, t, jobType)
		if errors.Is(err, domain.ErrConflict) {
			h.logger.Debug().
				Str("tenant_id", t.ID).
				Str("topic", event.Topic).
				Msg("Sync already running, webhook trigger skipped")
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		h.logger.Info().
			Str("topic", event.Topic).
			Str("shop", event.Shop).
			Str("tenant_id", t.ID).
			Str("job_id", job.ID).
			Msg("Recorded webhook-triggered sync job")
	}

	return errors.Join(errs...)
}
