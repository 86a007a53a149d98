package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"shopify-workspace-connector/internal/application"
	"shopify-workspace-connector/internal/application/webhook_handlers"
	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/infrastructure/encryption"
	"shopify-workspace-connector/internal/infrastructure/lock"
	"shopify-workspace-connector/internal/infrastructure/metrics"
	"shopify-workspace-connector/internal/infrastructure/middleware"
	"shopify-workspace-connector/internal/infrastructure/queue"
	"shopify-workspace-connector/internal/infrastructure/repository/memory"
	"shopify-workspace-connector/internal/infrastructure/shopify"
	"shopify-workspace-connector/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "shpss_test_secret"
	testKey    = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	testAppURL = "https://connector.example.com"
)

// fakeShopify keeps the real consent URL builder and answers the network calls locally
type fakeShopify struct {
	*shopify.OAuthClient
}

func (fakeShopify) ExchangeToken(context.Context, string, string) (*ports.TokenResponse, error) {
	return &ports.TokenResponse{AccessToken: "shpat_live", Scope: "read_products,read_orders"}, nil
}

func (fakeShopify) FetchShopInfo(_ context.Context, shop, _ string) *domain.ShopInfo {
	return &domain.ShopInfo{ID: 42, Name: "Acme", Domain: shop, Currency: "EUR"}
}

type testServer struct {
	handler http.Handler
	states  *memory.OAuthStateRepository
	tenants *memory.TenantRepository
	jobs    *memory.SyncJobRepository
	members *memory.MembershipOracle
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zerolog.Nop()
	codec, err := encryption.NewService(testKey)
	require.NoError(t, err)

	s := &testServer{
		states:  memory.NewOAuthStateRepository(),
		tenants: memory.NewTenantRepository(),
		jobs:    memory.NewSyncJobRepository(),
		members: memory.NewMembershipOracle(),
	}
	m := metrics.New()
	client := fakeShopify{shopify.NewOAuthClient("api-key", testSecret, logger)}
	verifier := shopify.NewVerifier(testSecret)

	oauth := application.NewOAuthService(s.states, s.tenants, s.members, client, verifier, codec, m, testAppURL, logger)
	tenants := application.NewTenantService(s.tenants, s.members, shopify.NewTokenManager(codec, client, logger), logger)
	syncSvc := application.NewSyncService(s.tenants, s.jobs, s.members, lock.NewMemoryLocker(), queue.NopPublisher{}, m, logger)

	dispatcher := application.NewWebhookDispatcher(m, logger)
	dispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(logger, s.tenants))
	dispatcher.RegisterHandler(webhook_handlers.NewResourceSyncHandler(logger, s.tenants, syncSvc))

	s.handler = NewRouter(RouterConfig{
		Shopify:     NewShopifyHandler(oauth, tenants, syncSvc, dispatcher, verifier, logger),
		Metrics:     m.Handler(),
		CORSOrigins: []string{"*"},
		Logger:      logger,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// addTenant stores an active tenant directly
func (s *testServer) addTenant(t *testing.T, workspaceID, shop string) *domain.Tenant {
	t.Helper()
	tenant := &domain.Tenant{
		WorkspaceID: workspaceID,
		ShopDomain:  shop,
		AccessToken: "enc",
		Status:      domain.TenantStatusActive,
		SyncEnabled: true,
	}
	require.NoError(t, s.tenants.Create(context.Background(), tenant))
	return tenant
}

// decodeData unwraps a {data: ...} envelope into out
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

// signedQuery encodes params and appends the hmac Shopify would send
func signedQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	values := url.Values{}
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
		values.Set(k, params[k])
	}
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	values.Set("hmac", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
