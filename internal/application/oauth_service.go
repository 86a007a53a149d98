package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"github.com/rs/zerolog"
)

// CallbackPath is where Shopify redirects after consent, relative to the app URL
const CallbackPath = "/api/shopify/callback"

// CallbackRequest carries the query parameters of an authorization callback.
// Query holds every parameter as received and is what the HMAC is computed over.
type CallbackRequest struct {
	Code  string
	Shop  string
	State string
	Query map[string]string
}

// OAuthService runs the store connection handshake
type OAuthService struct {
	states     ports.OAuthStateRepository
	tenants    ports.TenantRepository
	members    ports.MembershipOracle
	shopify    ports.ShopifyOAuthClient
	verifier   ports.SignatureVerifier
	encryption ports.EncryptionService
	metrics    ports.MetricsRecorder
	appURL     string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewOAuthService creates a new authorization service
func NewOAuthService(
	states ports.OAuthStateRepository,
	tenants ports.TenantRepository,
	members ports.MembershipOracle,
	shopify ports.ShopifyOAuthClient,
	verifier ports.SignatureVerifier,
	encryption ports.EncryptionService,
	metrics ports.MetricsRecorder,
	appURL string,
	logger zerolog.Logger,
) *OAuthService {
	return &OAuthService{
		states:     states,
		tenants:    tenants,
		members:    members,
		shopify:    shopify,
		verifier:   verifier,
		encryption: encryption,
		metrics:    metricsOrNop(metrics),
		appURL:     strings.TrimSuffix(appURL, "/"),
		logger:     logger,
		now:        time.Now,
	}
}

// RedirectURI is the callback URL registered with Shopify
func (s *OAuthService) RedirectURI() string {
	return s.appURL + CallbackPath
}

// Initiate records a fresh authorization state and returns the consent URL
func (s *OAuthService) Initiate(ctx context.Context, workspaceID, userID, rawShopDomain string) (string, error) {
	shop, err := domain.NormalizeShopDomain(rawShopDomain)
	if err != nil {
		return "", err
	}
	if workspaceID == "" {
		return "", domain.Errorf(domain.ErrValidation, "workspace ID is required")
	}

	if _, err := requireMember(ctx, s.members, workspaceID, userID); err != nil {
		return "", err
	}

	exists, err := s.tenants.ExistsInWorkspace(ctx, workspaceID, shop)
	if err != nil {
		return "", err
	}
	if exists {
		return "", domain.Errorf(domain.ErrConflict, "This Shopify store is already connected to this workspace")
	}

	stateToken, err := randomHex(16)
	if err != nil {
		return "", err
	}
	nonce, err := randomHex(16)
	if err != nil {
		return "", err
	}

	now := s.now()
	state := &domain.OAuthState{
		ID:          stateToken,
		WorkspaceID: workspaceID,
		UserID:      userID,
		ShopDomain:  shop,
		Nonce:       nonce,
		ExpiresAt:   now.Add(domain.OAuthStateTTL),
		CreatedAt:   now,
	}
	if err := s.states.Create(ctx, state); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	s.logger.Info().
		Str("workspace_id", workspaceID).
		Str("shop", shop).
		Msg("Started Shopify authorization")

	return s.shopify.AuthorizeURL(shop, stateToken, s.RedirectURI(), domain.ShopifyScopes), nil
}

// Callback completes the handshake and returns the path to redirect the browser to.
// It never returns an error: every failure maps to an error page code.
func (s *OAuthService) Callback(ctx context.Context, req CallbackRequest) string {
	var state *domain.OAuthState
	if req.State != "" {
		var err error
		state, err = s.states.Get(ctx, req.State)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to load oauth state")
			state = nil
		}
	}

	decision := domain.EvaluateCallback(state, req.Shop, s.verifier.VerifyQuery(req.Query), s.now())
	if decision.DeleteState {
		s.deleteState(ctx, state.ID)
	}
	if decision.Outcome != domain.CallbackProceed {
		s.logger.Warn().
			Str("shop", req.Shop).
			Str("outcome", string(decision.Outcome)).
			Msg("Rejected authorization callback")
		return s.fail(decision.Outcome)
	}

	token, err := s.shopify.ExchangeToken(ctx, state.ShopDomain, req.Code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", state.ShopDomain).Msg("Failed to exchange token")
		return s.fail(domain.CallbackTokenExchangeFailed)
	}

	shop := s.shopify.FetchShopInfo(ctx, state.ShopDomain, token.AccessToken)
	if shop == nil {
		return s.fail(domain.CallbackShopInfoFailed)
	}

	encrypted, err := s.encryption.Encrypt(token.AccessToken)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encrypt access token")
		return s.fail(domain.CallbackServerError)
	}

	scopes := token.Scope
	if scopes == "" {
		scopes = strings.Join(domain.ShopifyScopes, ",")
	}
	tenant := domain.NewTenantFromShop(state, shop, encrypted, scopes, s.now())
	if err := s.tenants.Create(ctx, tenant); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return s.fail(domain.CallbackAlreadyConnected)
		}
		s.logger.Error().Err(err).Str("shop", state.ShopDomain).Msg("Failed to create tenant")
		return s.fail(domain.CallbackServerError)
	}

	s.deleteState(ctx, state.ID)

	s.logger.Info().
		Str("tenant_id", tenant.ID).
		Str("workspace_id", tenant.WorkspaceID).
		Str("shop", tenant.ShopDomain).
		Msg("Connected Shopify store")
	s.metrics.ObserveCallback(domain.CallbackProceed)

	return fmt.Sprintf("/workspaces/%s/integrations/shopify?success=true", url.PathEscape(tenant.WorkspaceID))
}

func (s *OAuthService) deleteState(ctx context.Context, id string) {
	if err := s.states.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to delete oauth state")
	}
}

func (s *OAuthService) fail(outcome domain.CallbackOutcome) string {
	s.metrics.ObserveCallback(outcome)
	return ErrorRedirect(outcome)
}

// ErrorRedirect is the error page path for a failed callback
func ErrorRedirect(outcome domain.CallbackOutcome) string {
	return "/error?code=" + url.QueryEscape(string(outcome))
}
