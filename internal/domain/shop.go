package domain

import "strconv"

// ShopInfo is the subset of the Shopify shop resource used when onboarding a tenant
type ShopInfo struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Domain          string `json:"domain"`
	MyshopifyDomain string `json:"myshopify_domain"`
	Currency        string `json:"currency"`
	IanaTimezone    string `json:"iana_timezone"`
	PlanName        string `json:"plan_name"`
	PlanDisplayName string `json:"plan_display_name"`
}

// IDString returns the shop id in the form stored on tenants
func (s *ShopInfo) IDString() string {
	return strconv.FormatInt(s.ID, 10)
}

// Scopes requested during authorization
var ShopifyScopes = []string{
	"read_products",
	"read_inventory",
	"read_locations",
	"read_orders",
}
