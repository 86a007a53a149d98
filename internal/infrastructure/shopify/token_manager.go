package shopify

import (
	"context"
	"fmt"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"github.com/rs/zerolog"
)

// TokenManager checks that stored tenant credentials still work.
// Shopify offline tokens do not expire but are revoked on uninstall.
type TokenManager struct {
	encryptionSvc ports.EncryptionService
	oauth         ports.ShopifyOAuthClient
	logger        zerolog.Logger
}

// NewTokenManager creates a new token manager
func NewTokenManager(encryptionSvc ports.EncryptionService, oauth ports.ShopifyOAuthClient, logger zerolog.Logger) *TokenManager {
	return &TokenManager{
		encryptionSvc: encryptionSvc,
		oauth:         oauth,
		logger:        logger,
	}
}

var _ ports.ConnectionVerifier = (*TokenManager)(nil)

// DecryptToken decrypts an access token after retrieval
func (tm *TokenManager) DecryptToken(encryptedToken string) (string, error) {
	if encryptedToken == "" {
		return "", domain.Errorf(domain.ErrDecryption, "encrypted token cannot be empty")
	}
	return tm.encryptionSvc.Decrypt(encryptedToken)
}

// VerifyConnection decrypts the tenant's token and reads the shop with it.
// The shop info is returned so callers can refresh tenant metadata.
func (tm *TokenManager) VerifyConnection(ctx context.Context, tenant *domain.Tenant) (*domain.ShopInfo, error) {
	token, err := tm.DecryptToken(tenant.AccessToken)
	if err != nil {
		tm.logger.Error().
			Err(err).
			Str("tenant_id", tenant.ID).
			Msg("Stored access token could not be decrypted")
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}

	shop := tm.oauth.FetchShopInfo(ctx, tenant.ShopDomain, token)
	if shop == nil {
		tm.logger.Warn().
			Str("tenant_id", tenant.ID).
			Str("shop", tenant.ShopDomain).
			Msg("Token validation failed: shop could not be read")
		return nil, domain.Errorf(domain.ErrUpstream, "shop %s could not be read with the stored token", tenant.ShopDomain)
	}

	tm.logger.Debug().
		Str("shop", tenant.ShopDomain).
		Msg("Token validation successful")
	return shop, nil
}
