package ports

import (
	"context"
	"time"

	"shopify-workspace-connector/internal/domain"
)

// Repositories return (nil, nil) when a record does not exist, the way the Mongo
// adapters translate mongo.ErrNoDocuments. Create returns an error wrapping
// domain.ErrConflict when a uniqueness rule enforced by the store is violated.

// OAuthStateRepository defines the interface for authorization state persistence
type OAuthStateRepository interface {
	Create(ctx context.Context, state *domain.OAuthState) error
	Get(ctx context.Context, id string) (*domain.OAuthState, error)
	Delete(ctx context.Context, id string) error
}

// TenantRepository defines the interface for connected store persistence
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	Get(ctx context.Context, id string) (*domain.Tenant, error)
	Delete(ctx context.Context, id string) error

	// ListByWorkspace returns the workspace's tenants, newest first
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Tenant, error)
	// ExistsInWorkspace reports whether shopDomain is already connected to the workspace
	ExistsInWorkspace(ctx context.Context, workspaceID, shopDomain string) (bool, error)
	// ListByShopDomain returns tenants of a shop across all workspaces
	ListByShopDomain(ctx context.Context, shopDomain string) ([]*domain.Tenant, error)

	// UpdateStatus returns an error wrapping domain.ErrNotFound when no tenant has the id
	UpdateStatus(ctx context.Context, id string, update TenantStatusUpdate) error
}

// TenantStatusUpdate carries the fields changed by a status transition.
// A nil ErrorMessage clears the stored message; a nil SyncEnabled leaves it unchanged.
type TenantStatusUpdate struct {
	Status       domain.TenantStatus
	ErrorMessage *string
	SyncEnabled  *bool
	UpdatedAt    time.Time
}

// SyncJobRepository defines the interface for sync job persistence
type SyncJobRepository interface {
	Create(ctx context.Context, job *domain.SyncJob) error
	Get(ctx context.Context, id string) (*domain.SyncJob, error)

	// List applies equality filters, orders newest first and honours query.Limit
	List(ctx context.Context, query domain.SyncJobQuery) ([]*domain.SyncJob, error)
	// HasRunning reports whether the tenant has a job in status running
	HasRunning(ctx context.Context, tenantID string) (bool, error)
}

// MembershipOracle answers whether a user belongs to a workspace and with which role.
// It returns (nil, nil) for non-members.
type MembershipOracle interface {
	GetMember(ctx context.Context, workspaceID, userID string) (*domain.Member, error)
}
