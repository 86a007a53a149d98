package webhook_handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"github.com/rs/zerolog"
)

// UninstalledMessage is recorded on tenants whose shop removed the app
const UninstalledMessage = "App uninstalled from Shopify"

// AppUninstalledHandler handles app uninstalled webhook events
type AppUninstalledHandler struct {
	logger  zerolog.Logger
	tenants ports.TenantRepository
	now     func() time.Time
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(logger zerolog.Logger, tenants ports.TenantRepository) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		logger:  logger,
		tenants: tenants,
		now:     time.Now,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == domain.TopicAppUninstalled
}

// Handle marks every tenant of the shop inactive and stops its syncs. The token is
// already revoked by Shopify at this point; the tenant is kept so the workspace can
// see why it stopped.
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shopDomain := event.Shop
	if shopDomain == "" {
		var shopData struct {
			Domain          string `json:"domain"`
			MyshopifyDomain string `json:"myshopify_domain"`
		}
		if err := json.Unmarshal(event.Payload, &shopData); err != nil {
			return fmt.Errorf("failed to parse app uninstalled webhook payload: %w", err)
		}
		shopDomain = shopData.MyshopifyDomain
		if shopDomain == "" {
			shopDomain = shopData.Domain
		}
	}
	if shopDomain == "" {
		h.logger.Warn().Str("topic", event.Topic).Msg("App uninstalled webhook without shop domain")
		return nil
	}

	tenants, err := h.tenants.ListByShopDomain(ctx, shopDomain)
	if err != nil {
		return err
	}

	msg := UninstalledMessage
	disabled := false
	var errs []error
	for _, t := range tenants {
		err := h.tenants.UpdateStatus(ctx, t.ID, ports.TenantStatusUpdate{
			Status:       domain.TenantStatusInactive,
			ErrorMessage: &msg,
			SyncEnabled:  &disabled,
			UpdatedAt:    h.now(),
		})
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, err)
			continue
		}
		h.logger.Info().
			Str("shop", shopDomain).
			Str("tenant_id", t.ID).
			Str("workspace_id", t.WorkspaceID).
			Msg("Marked tenant inactive after uninstall")
	}

	return errors.Join(errs...)
}
