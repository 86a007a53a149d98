package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"github.com/rs/zerolog"
)

// OAuthClient runs the app side of the Shopify authorization code grant
type OAuthClient struct {
	apiKey    string
	apiSecret string
	opts      []StoreOption
	observer  CallObserver
	logger    zerolog.Logger
}

// NewOAuthClient creates the OAuth adapter. opts are applied to every Shopify client it creates.
func NewOAuthClient(apiKey, apiSecret string, logger zerolog.Logger, opts ...StoreOption) *OAuthClient {
	return &OAuthClient{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		opts:      opts,
		observer:  buildOptions(opts).observer,
		logger:    logger,
	}
}

var _ ports.ShopifyOAuthClient = (*OAuthClient)(nil)

// AuthorizeURL builds the consent screen URL. Shopify expects scopes comma-separated with no spaces.
func (c *OAuthClient) AuthorizeURL(shop, state, redirectURI string, scopes []string) string {
	scopesStr := strings.Join(scopes, ",")

	query := url.Values{}
	query.Set("client_id", c.apiKey)
	query.Set("scope", scopesStr)
	query.Set("redirect_uri", redirectURI)
	query.Set("state", state)

	c.logger.Debug().
		Str("shop", shop).
		Str("scopes", scopesStr).
		Msg("Generated OAuth authorization URL")

	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shop, query.Encode())
}

type accessTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
}

// ExchangeToken trades an authorization code for a permanent access token.
// The request goes through go-shopify so transport errors and non-2xx answers are
// classified the same way as REST calls; retries are disabled since a code is single-use.
func (c *OAuthClient) ExchangeToken(ctx context.Context, shop, code string) (*ports.TokenResponse, error) {
	o := buildOptions(c.opts)
	client, err := newGoShopifyClient(shop, "", o, false)
	if err != nil {
		return nil, err
	}

	req, err := client.NewRequest(ctx, http.MethodPost, "admin/oauth/access_token", accessTokenRequest{
		ClientID:     c.apiKey,
		ClientSecret: c.apiSecret,
		Code:         code,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	var token ports.TokenResponse
	err = client.Do(req, &token)
	if err != nil {
		err = translateError(err)
	}
	c.observer.ObserveShopifyCall("oauth.access_token", err)
	if err != nil {
		c.logger.Warn().Err(err).Str("shop", shop).Msg("Token exchange failed")
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	if token.AccessToken == "" {
		return nil, domain.Errorf(domain.ErrUpstream, "token response for %s carried no access token", shop)
	}
	return &token, nil
}

// FetchShopInfo reads the shop resource with a freshly issued token. Any failure is
// logged and reported as nil so the caller can decide how to surface it.
func (c *OAuthClient) FetchShopInfo(ctx context.Context, shop, accessToken string) *domain.ShopInfo {
	store, err := NewStoreClient(shop, accessToken, c.opts...)
	if err != nil {
		c.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to create store client")
		return nil
	}
	info, err := store.GetShop(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to fetch shop info")
		return nil
	}
	return info
}
