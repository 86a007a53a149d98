package application

import (
	"context"
	"time"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"github.com/rs/zerolog"
)

// TenantService exposes connected stores to workspace members
type TenantService struct {
	tenants  ports.TenantRepository
	members  ports.MembershipOracle
	verifier ports.ConnectionVerifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewTenantService creates a new tenant registry service
func NewTenantService(
	tenants ports.TenantRepository,
	members ports.MembershipOracle,
	verifier ports.ConnectionVerifier,
	logger zerolog.Logger,
) *TenantService {
	return &TenantService{
		tenants:  tenants,
		members:  members,
		verifier: verifier,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns the workspace's tenants, newest first, without access tokens
func (s *TenantService) List(ctx context.Context, workspaceID, userID string) ([]*domain.Tenant, error) {
	if workspaceID == "" {
		return nil, domain.Errorf(domain.ErrValidation, "workspace ID is required")
	}
	if _, err := requireMember(ctx, s.members, workspaceID, userID); err != nil {
		return nil, err
	}

	tenants, err := s.tenants.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Tenant, len(tenants))
	for i, t := range tenants {
		out[i] = t.Sanitized()
	}
	return out, nil
}

// Get returns one tenant if the caller belongs to its workspace
func (s *TenantService) Get(ctx context.Context, tenantID, userID string) (*domain.Tenant, error) {
	tenant, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if _, err := requireMember(ctx, s.members, tenant.WorkspaceID, userID); err != nil {
		return nil, err
	}
	return tenant.Sanitized(), nil
}

// Disconnect deletes the tenant. Only workspace admins may disconnect.
// The Shopify token is not revoked and sync jobs are kept for history.
func (s *TenantService) Disconnect(ctx context.Context, tenantID, userID string) error {
	tenant, err := s.load(ctx, tenantID)
	if err != nil {
		return err
	}
	member, err := requireMember(ctx, s.members, tenant.WorkspaceID, userID)
	if err != nil {
		return err
	}
	if !member.IsAdmin() {
		return domain.Errorf(domain.ErrUnauthorized, "Unauthorized")
	}

	if err := s.tenants.Delete(ctx, tenant.ID); err != nil {
		return err
	}

	s.logger.Info().
		Str("tenant_id", tenant.ID).
		Str("workspace_id", tenant.WorkspaceID).
		Str("shop", tenant.ShopDomain).
		Str("user_id", userID).
		Msg("Disconnected Shopify store")
	return nil
}

// Verify checks the stored credentials against Shopify and records the result on
// the tenant: active when the shop can be read, error with a message otherwise.
func (s *TenantService) Verify(ctx context.Context, tenantID, userID string) (*domain.Tenant, error) {
	tenant, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if _, err := requireMember(ctx, s.members, tenant.WorkspaceID, userID); err != nil {
		return nil, err
	}

	update := ports.TenantStatusUpdate{Status: domain.TenantStatusActive, UpdatedAt: s.now()}
	if _, verr := s.verifier.VerifyConnection(ctx, tenant); verr != nil {
		msg := verr.Error()
		update.Status = domain.TenantStatusError
		update.ErrorMessage = &msg
		s.logger.Warn().
			Err(verr).
			Str("tenant_id", tenant.ID).
			Msg("Shopify connection check failed")
	}

	if err := s.tenants.UpdateStatus(ctx, tenant.ID, update); err != nil {
		return nil, err
	}

	tenant.Status = update.Status
	tenant.ErrorMessage = update.ErrorMessage
	tenant.UpdatedAt = update.UpdatedAt
	return tenant.Sanitized(), nil
}

func (s *TenantService) load(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "Tenant not found")
	}
	return tenant, nil
}
