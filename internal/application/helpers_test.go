package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/infrastructure/encryption"
	"shopify-workspace-connector/internal/infrastructure/lock"
	"shopify-workspace-connector/internal/infrastructure/repository/memory"
	"shopify-workspace-connector/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type stubShopify struct {
	token       *ports.TokenResponse
	exchangeErr error
	shop        *domain.ShopInfo
	codes       []string
}

func (s *stubShopify) AuthorizeURL(shop, state, redirectURI string, scopes []string) string {
	return "https://" + shop + "/admin/oauth/authorize?state=" + state + "&redirect_uri=" + redirectURI
}

func (s *stubShopify) ExchangeToken(_ context.Context, _ string, code string) (*ports.TokenResponse, error) {
	s.codes = append(s.codes, code)
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	return s.token, nil
}

func (s *stubShopify) FetchShopInfo(context.Context, string, string) *domain.ShopInfo {
	return s.shop
}

type stubVerifier struct {
	valid bool
}

func (v stubVerifier) VerifyQuery(map[string]string) bool { return v.valid }

func (v stubVerifier) VerifyWebhook([]byte, string) error {
	if !v.valid {
		return errors.New("invalid signature")
	}
	return nil
}

type stubConnection struct {
	err error
}

func (s stubConnection) VerifyConnection(context.Context, *domain.Tenant) (*domain.ShopInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ShopInfo{ID: 1}, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []*domain.SyncJob
	err  error
}

func (p *recordingPublisher) PublishSyncJob(_ context.Context, job *domain.SyncJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	return p.err
}

type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string, time.Duration) (func(), error) {
	return nil, ports.ErrLockHeld
}

// fixture wires the services over in-memory adapters
type fixture struct {
	states    *memory.OAuthStateRepository
	tenants   *memory.TenantRepository
	jobs      *memory.SyncJobRepository
	members   *memory.MembershipOracle
	shopify   *stubShopify
	codec     *encryption.Service
	publisher *recordingPublisher

	oauth   *OAuthService
	tenant  *TenantService
	syncSvc *SyncService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	codec, err := encryption.NewService(testKey)
	require.NoError(t, err)

	f := &fixture{
		states:    memory.NewOAuthStateRepository(),
		tenants:   memory.NewTenantRepository(),
		jobs:      memory.NewSyncJobRepository(),
		members:   memory.NewMembershipOracle(),
		codec:     codec,
		publisher: &recordingPublisher{},
		shopify: &stubShopify{
			token: &ports.TokenResponse{AccessToken: "shpat_secret", Scope: "read_products,read_orders"},
			shop: &domain.ShopInfo{
				ID:              548380009,
				Name:            "Acme",
				Email:           "owner@acme.test",
				Currency:        "EUR",
				IanaTimezone:    "Europe/Madrid",
				PlanName:        "basic",
				PlanDisplayName: "Basic",
			},
		},
	}
	logger := zerolog.Nop()
	f.oauth = NewOAuthService(f.states, f.tenants, f.members, f.shopify, stubVerifier{valid: true}, codec, nil, "https://app.example.com/", logger)
	f.oauth.now = func() time.Time { return fixedNow }
	f.tenant = NewTenantService(f.tenants, f.members, stubConnection{}, logger)
	f.tenant.now = func() time.Time { return fixedNow }
	f.syncSvc = NewSyncService(f.tenants, f.jobs, f.members, lock.NewMemoryLocker(), f.publisher, nil, logger)
	f.syncSvc.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) addTenant(t *testing.T, workspaceID, shop string) *domain.Tenant {
	t.Helper()
	tenant := &domain.Tenant{
		WorkspaceID: workspaceID,
		UserID:      "installer",
		ShopDomain:  shop,
		AccessToken: "enc",
		Status:      domain.TenantStatusActive,
		SyncEnabled: true,
		CreatedAt:   fixedNow,
	}
	require.NoError(t, f.tenants.Create(context.Background(), tenant))
	return tenant
}
