package entity

import (
	"time"

	"shopify-workspace-connector/internal/domain"
)

// MongoTenantDoc represents a connected store in MongoDB
type MongoTenantDoc struct {
	ID              string     `bson:"_id"`
	WorkspaceID     string     `bson:"workspaceId"`
	UserID          string     `bson:"userId"`
	ShopDomain      string     `bson:"shopDomain"`
	ShopID          string     `bson:"shopId"`
	ShopName        string     `bson:"shopName"`
	ShopEmail       *string    `bson:"shopEmail"`
	ShopCurrency    string     `bson:"shopCurrency"`
	ShopTimezone    *string    `bson:"shopTimezone"`
	AccessToken     string     `bson:"accessToken"`
	Scopes          string     `bson:"scopes"`
	Status          string     `bson:"status"`
	InstalledAt     time.Time  `bson:"installedAt"`
	LastSyncAt      *time.Time `bson:"lastSyncAt"`
	SyncEnabled     bool       `bson:"syncEnabled"`
	ErrorMessage    *string    `bson:"errorMessage"`
	PlanName        *string    `bson:"planName"`
	PlanDisplayName *string    `bson:"shopifyPlanDisplayName"`
	CreatedAt       time.Time  `bson:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoTenantDoc) ToDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:              d.ID,
		WorkspaceID:     d.WorkspaceID,
		UserID:          d.UserID,
		ShopDomain:      d.ShopDomain,
		ShopID:          d.ShopID,
		ShopName:        d.ShopName,
		ShopEmail:       d.ShopEmail,
		ShopCurrency:    d.ShopCurrency,
		ShopTimezone:    d.ShopTimezone,
		AccessToken:     d.AccessToken,
		Scopes:          d.Scopes,
		Status:          domain.TenantStatus(d.Status),
		InstalledAt:     d.InstalledAt,
		LastSyncAt:      d.LastSyncAt,
		SyncEnabled:     d.SyncEnabled,
		ErrorMessage:    d.ErrorMessage,
		PlanName:        d.PlanName,
		PlanDisplayName: d.PlanDisplayName,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// MongoTenantDocFromDomain converts a domain entity to a MongoDB document
func MongoTenantDocFromDomain(t *domain.Tenant) *MongoTenantDoc {
	return &MongoTenantDoc{
		ID:              t.ID,
		WorkspaceID:     t.WorkspaceID,
		UserID:          t.UserID,
		ShopDomain:      t.ShopDomain,
		ShopID:          t.ShopID,
		ShopName:        t.ShopName,
		ShopEmail:       t.ShopEmail,
		ShopCurrency:    t.ShopCurrency,
		ShopTimezone:    t.ShopTimezone,
		AccessToken:     t.AccessToken,
		Scopes:          t.Scopes,
		Status:          string(t.Status),
		InstalledAt:     t.InstalledAt,
		LastSyncAt:      t.LastSyncAt,
		SyncEnabled:     t.SyncEnabled,
		ErrorMessage:    t.ErrorMessage,
		PlanName:        t.PlanName,
		PlanDisplayName: t.PlanDisplayName,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
