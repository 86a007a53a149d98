package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"shopify-workspace-connector/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stateTokenPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

// initAuth starts a flow and returns the state token from the consent URL
func initAuth(t *testing.T, s *testServer, workspaceID, userID, shop string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/shopify/auth/init", userID, map[string]string{
		"shopDomain":  shop,
		"workspaceId": workspaceID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp initAuthResponse
	decodeData(t, rec, &resp)
	authURL, err := url.Parse(resp.AuthURL)
	require.NoError(t, err)
	return authURL.Query().Get("state")
}

func TestInitAuth(t *testing.T) {
	s := newTestServer(t)
	s.members.AddMember("w1", "u1", "MEMBER")

	rec := s.do(t, http.MethodPost, "/api/shopify/auth/init", "u1", map[string]string{
		"shopDomain":  "https://Acme/",
		"workspaceId": "w1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp initAuthResponse
	decodeData(t, rec, &resp)
	authURL, err := url.Parse(resp.AuthURL)
	require.NoError(t, err)
	assert.Equal(t, "acme.myshopify.com", authURL.Host)
	assert.Equal(t, "/admin/oauth/authorize", authURL.Path)

	q := authURL.Query()
	assert.Regexp(t, stateTokenPattern, q.Get("state"))
	assert.Equal(t, testAppURL+"/api/shopify/callback", q.Get("redirect_uri"))
	assert.True(t, strings.HasSuffix(q.Get("redirect_uri"), "/api/shopify/callback"))
	assert.Equal(t, "api-key", q.Get("client_id"))
	assert.Contains(t, q.Get("scope"), "read_products")
	assert.Equal(t, 1, s.states.Len())
}

func TestInitAuth_Errors(t *testing.T) {
	s := newTestServer(t)
	s.members.AddMember("w1", "u1", "MEMBER")
	s.addTenant(t, "w1", "acme.myshopify.com")

	tests := []struct {
		name   string
		user   string
		body   any
		status int
		msg    string
	}{
		{"no caller", "", map[string]string{"shopDomain": "other", "workspaceId": "w1"}, http.StatusUnauthorized, "Unauthorized"},
		{"not a member", "u2", map[string]string{"shopDomain": "other", "workspaceId": "w1"}, http.StatusUnauthorized, "Unauthorized"},
		{"missing shop", "u1", map[string]string{"workspaceId": "w1"}, http.StatusBadRequest, "shopDomain is required"},
		{"bad shop", "u1", map[string]string{"shopDomain": "bad_shop!", "workspaceId": "w1"}, http.StatusBadRequest, ""},
		{"already connected", "u1", map[string]string{"shopDomain": "acme", "workspaceId": "w1"}, http.StatusBadRequest, "This Shopify store is already connected to this workspace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/shopify/auth/init", tt.user, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, decodeError(t, rec))
			}
		})
	}
	assert.Zero(t, s.states.Len())
}

func TestCallback_ConnectsStore(t *testing.T) {
	s := newTestServer(t)
	s.members.AddMember("w1", "u1", "MEMBER")
	state := initAuth(t, s, "w1", "u1", "acme")

	query := signedQuery(map[string]string{
		"code":      "auth-code",
		"shop":      "acme.myshopify.com",
		"state":     state,
		"timestamp": "1709294400",
	})
	rec := s.do(t, http.MethodGet, "/api/shopify/callback?"+query, "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/workspaces/w1/integrations/shopify?success=true", rec.Header().Get("Location"))
	assert.Zero(t, s.states.Len())

	rec = s.do(t, http.MethodGet, "/api/shopify/tenants?workspaceId=w1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "accessToken")
	assert.NotContains(t, rec.Body.String(), "shpat_live")

	var resp tenantsResponse
	decodeData(t, rec, &resp)
	require.Len(t, resp.Tenants, 1)
	tenant := resp.Tenants[0]
	assert.Equal(t, "acme.myshopify.com", tenant.ShopDomain)
	assert.Equal(t, "42", tenant.ShopID)
	assert.Equal(t, "read_products,read_orders", tenant.Scopes)
	assert.Equal(t, domain.TenantStatusActive, tenant.Status)

	stored, err := s.tenants.Get(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "shpat_live", stored.AccessToken)

	// the state is single use
	rec = s.do(t, http.MethodGet, "/api/shopify/callback?"+query, "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/error?code=invalid_state", rec.Header().Get("Location"))
}

func TestCallback_Rejections(t *testing.T) {
	s := newTestServer(t)
	s.members.AddMember("w1", "u1", "MEMBER")

	state := initAuth(t, s, "w1", "u1", "acme")
	tampered := signedQuery(map[string]string{"code": "c", "shop": "acme.myshopify.com", "state": state})
	tampered = strings.Replace(tampered, "code=c", "code=d", 1)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"unknown state", signedQuery(map[string]string{"code": "c", "shop": "acme.myshopify.com", "state": "nope"}), "invalid_state"},
		{"missing parameters", "", "invalid_state"},
		{"shop mismatch", signedQuery(map[string]string{"code": "c", "shop": "evil.myshopify.com", "state": state}), "shop_mismatch"},
		{"tampered", tampered, "invalid_hmac"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/shopify/callback?"+tt.query, "", nil)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/error?code="+tt.want, rec.Header().Get("Location"))
		})
	}

	rec := s.do(t, http.MethodGet, "/api/shopify/tenants?workspaceId=w1", "u1", nil)
	var resp tenantsResponse
	decodeData(t, rec, &resp)
	assert.Empty(t, resp.Tenants)
}

func TestTenantEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.members.AddMember("w1", "member", "MEMBER")
	s.members.AddMember("w1", "admin", domain.RoleAdmin)
	s.members.AddMember("w2", "outsider", domain.RoleAdmin)
	tenant := s.addTenant(t, "w1", "acme.myshopify.com")
	path := "/api/shopify/tenants/" + tenant.ID

	rec := s.do(t, http.MethodGet, path, "member", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Tenant
	decodeData(t, rec, &got)
	assert.Equal(t, tenant.ID, got.ID)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, path, "outsider", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/shopify/tenants", "member", nil).Code)

	rec = s.do(t, http.MethodDelete, path, "member", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeError(t, rec))
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodDelete, path, "outsider", nil).Code)

	rec = s.do(t, http.MethodDelete, path, "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"success":true}}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, path, "member", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Tenant not found", decodeError(t, rec))
}

func TestVerifyTenant(t *testing.T) {
	s := newTestServer(t)
	s.members.AddMember("w1", "u1", "MEMBER")
	tenant := s.addTenant(t, "w1", "acme.myshopify.com")

	// the stored token is not a valid envelope, so the check fails
	rec := s.do(t, http.MethodPost, "/api/shopify/tenants/"+tenant.ID+"/verify", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Tenant
	decodeData(t, rec, &got)
	assert.Equal(t, domain.TenantStatusError, got.Status)
	assert.NotNil(t, got.ErrorMessage)
}

func TestTriggerSync(t *testing.T) {
	s := newTestServer(t)
	s.members.AddMember("w1", "u1", "MEMBER")
	tenant := s.addTenant(t, "w1", "acme.myshopify.com")
	path := "/api/shopify/tenants/" + tenant.ID + "/sync"

	rec := s.do(t, http.MethodPost, path, "u1", map[string]string{"jobType": "products"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp syncJobResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, domain.SyncJobStatusPending, resp.SyncJob.Status)
	assert.Equal(t, domain.SyncTriggerManual, resp.SyncJob.TriggerType)

	rec = s.do(t, http.MethodPost, path, "u1", map[string]string{"jobType": "customers"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "jobType must be one of")

	running := domain.NewSyncJob(tenant, domain.SyncJobTypeFull, domain.SyncTriggerManual, resp.SyncJob.CreatedAt)
	running.Status = domain.SyncJobStatusRunning
	require.NoError(t, s.jobs.Create(context.Background(), running))

	rec = s.do(t, http.MethodPost, path, "u1", map[string]string{"jobType": "orders"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "A sync job is already running", decodeError(t, rec))

	rec = s.do(t, http.MethodPost, "/api/shopify/tenants/missing/sync", "u1", map[string]string{"jobType": "orders"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSyncJobs(t *testing.T) {
	s := newTestServer(t)
	s.members.AddMember("w1", "u1", "MEMBER")
	tenant := s.addTenant(t, "w1", "acme.myshopify.com")
	for i := 0; i < 105; i++ {
		require.NoError(t, s.jobs.Create(context.Background(), domain.NewSyncJob(tenant, domain.SyncJobTypeProducts, domain.SyncTriggerManual, fixedTime(i))))
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"&limit=500", 100},
		{"&limit=5", 5},
		{"&limit=5&status=running", 0},
		{"&tenantId=" + tenant.ID + "&limit=3", 3},
	}
	for _, tt := range tests {
		t.Run("query"+tt.query, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/shopify/sync-jobs?workspaceId=w1"+tt.query, "u1", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			var resp syncJobsResponse
			decodeData(t, rec, &resp)
			assert.Len(t, resp.SyncJobs, tt.want)
		})
	}

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/shopify/sync-jobs?workspaceId=w1&limit=ten", "u1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/shopify/sync-jobs?workspaceId=w1&status=stuck", "u1", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/shopify/sync-jobs?workspaceId=w1", "", nil).Code)
}

func TestWebhooks(t *testing.T) {
	s := newTestServer(t)
	tenant := s.addTenant(t, "w1", "acme.myshopify.com")

	send := func(topic string, body []byte, signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/shopify/webhooks", bytes.NewReader(body))
		req.Header.Set(HeaderTopic, topic)
		req.Header.Set(HeaderShopDomain, "acme.myshopify.com")
		req.Header.Set(HeaderHmac, signature)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	body := []byte(`{"id":1,"title":"Shirt"}`)
	assert.Equal(t, http.StatusUnauthorized, send("products/update", body, "bogus").Code)

	rec := send("products/update", body, signWebhook(body))
	require.Equal(t, http.StatusOK, rec.Code)
	jobs, err := s.jobs.List(context.Background(), domain.SyncJobQuery{WorkspaceID: "w1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.SyncTriggerWebhook, jobs[0].TriggerType)

	uninstall := []byte(`{"myshopify_domain":"acme.myshopify.com"}`)
	require.Equal(t, http.StatusOK, send(domain.TopicAppUninstalled, uninstall, signWebhook(uninstall)).Code)
	stored, _ := s.tenants.Get(context.Background(), tenant.ID)
	assert.Equal(t, domain.TenantStatusInactive, stored.Status)

	assert.Equal(t, http.StatusBadRequest, send("", body, signWebhook(body)).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/shopify/callback", "", nil)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shopify_connector_oauth_callbacks_total{outcome="invalid_state"} 1`)
}

func fixedTime(i int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Second)
}
