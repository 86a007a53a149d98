package domain

import "strings"

// WebhookEvent is a verified webhook delivery from Shopify
type WebhookEvent struct {
	Topic   string
	Shop    string
	Payload []byte
}

// Webhook topics handled by the connector
const (
	TopicAppUninstalled = "app/uninstalled"
)

// SyncJobTypeForTopic maps a resource webhook topic ("products/update") to the sync job
// type that refreshes that resource. ok is false for topics that do not trigger a sync.
func SyncJobTypeForTopic(topic string) (SyncJobType, bool) {
	resource, _, found := strings.Cut(topic, "/")
	if !found {
		return "", false
	}
	switch resource {
	case "products":
		return SyncJobTypeProducts, true
	case "inventory_levels", "inventory_items":
		return SyncJobTypeInventory, true
	case "orders":
		return SyncJobTypeOrders, true
	case "locations":
		return SyncJobTypeLocations, true
	}
	return "", false
}
