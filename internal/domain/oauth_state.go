package domain

import "time"

// OAuthStateTTL is how long an authorization flow may take before its state is rejected
const OAuthStateTTL = 10 * time.Minute

// OAuthState is the single-use record proving an authorization flow was started by us.
// ID is the state token sent to Shopify and is also the lookup key.
type OAuthState struct {
	ID          string    `json:"id" bson:"_id"`
	WorkspaceID string    `json:"workspaceId" bson:"workspaceId"`
	UserID      string    `json:"userId" bson:"userId"`
	ShopDomain  string    `json:"shopDomain" bson:"shopDomain"`
	Nonce       string    `json:"nonce" bson:"nonce"`
	ExpiresAt   time.Time `json:"expiresAt" bson:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// IsExpired reports whether the state is past its expiry at the given instant
func (s *OAuthState) IsExpired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
