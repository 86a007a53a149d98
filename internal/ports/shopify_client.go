package ports

import (
	"context"

	"shopify-workspace-connector/internal/domain"
)

// TokenResponse is Shopify's answer to an authorization code exchange
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// ShopifyOAuthClient defines the provider side of the authorization handshake
type ShopifyOAuthClient interface {
	AuthorizeURL(shop, state, redirectURI string, scopes []string) string
	ExchangeToken(ctx context.Context, shop, code string) (*TokenResponse, error)
	// FetchShopInfo returns nil when the shop cannot be read with the token
	FetchShopInfo(ctx context.Context, shop, accessToken string) *domain.ShopInfo
}

// EncryptionService encrypts secrets stored at rest
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(envelope string) (string, error)
}

// ConnectionVerifier checks a tenant's stored credentials against Shopify
type ConnectionVerifier interface {
	VerifyConnection(ctx context.Context, tenant *domain.Tenant) (*domain.ShopInfo, error)
}

// SignatureVerifier checks Shopify's HMAC signatures
type SignatureVerifier interface {
	VerifyQuery(params map[string]string) bool
	VerifyWebhook(payload []byte, header string) error
}
