package domain

import (
	"regexp"
	"strings"
	"time"
)

// ShopDomainSuffix is the canonical suffix every connected shop domain carries
const ShopDomainSuffix = ".myshopify.com"

// TenantStatus is the connection state of a tenant
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
	TenantStatusError    TenantStatus = "error"
	TenantStatusPending  TenantStatus = "pending"
)

// Tenant represents a Shopify store connected to one workspace
type Tenant struct {
	ID              string       `json:"id"`
	WorkspaceID     string       `json:"workspaceId"`
	UserID          string       `json:"userId"` // installer
	ShopDomain      string       `json:"shopDomain"`
	ShopID          string       `json:"shopId"`
	ShopName        string       `json:"shopName"`
	ShopEmail       *string      `json:"shopEmail"`
	ShopCurrency    string       `json:"shopCurrency"`
	ShopTimezone    *string      `json:"shopTimezone"`
	AccessToken     string       `json:"-"` // ciphertext envelope, never leaves the service
	Scopes          string       `json:"scopes"`
	Status          TenantStatus `json:"status"`
	InstalledAt     time.Time    `json:"installedAt"`
	LastSyncAt      *time.Time   `json:"lastSyncAt"`
	SyncEnabled     bool         `json:"syncEnabled"`
	ErrorMessage    *string      `json:"errorMessage"`
	PlanName        *string      `json:"planName"`
	PlanDisplayName *string      `json:"shopifyPlanDisplayName"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// Sanitized returns a copy of the tenant without its access token
func (t *Tenant) Sanitized() *Tenant {
	c := *t
	c.AccessToken = ""
	return &c
}

// NewTenantFromShop builds the tenant created at the end of a successful authorization
func NewTenantFromShop(state *OAuthState, shop *ShopInfo, encryptedToken, scopes string, now time.Time) *Tenant {
	return &Tenant{
		WorkspaceID:     state.WorkspaceID,
		UserID:          state.UserID,
		ShopDomain:      state.ShopDomain,
		ShopID:          shop.IDString(),
		ShopName:        shop.Name,
		ShopEmail:       optional(shop.Email),
		ShopCurrency:    shop.Currency,
		ShopTimezone:    optional(shop.IanaTimezone),
		AccessToken:     encryptedToken,
		Scopes:          scopes,
		Status:          TenantStatusActive,
		InstalledAt:     now,
		LastSyncAt:      nil,
		SyncEnabled:     true,
		ErrorMessage:    nil,
		PlanName:        optional(shop.PlanName),
		PlanDisplayName: optional(shop.PlanDisplayName),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

// NormalizeShopDomain turns user input such as "https://MyStore/" or "mystore" into
// "mystore.myshopify.com" and rejects anything that is not a shop domain afterwards.
func NormalizeShopDomain(raw string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimSuffix(d, "/")
	if d == "" {
		return "", Errorf(ErrValidation, "shop domain is required")
	}
	if !strings.Contains(d, ShopDomainSuffix) {
		d += ShopDomainSuffix
	}
	if !shopDomainPattern.MatchString(d) {
		return "", Errorf(ErrValidation, "invalid shop domain %q", raw)
	}
	return d, nil
}
