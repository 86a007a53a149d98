package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"shopify-workspace-connector/internal/application"
	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Shopify webhook headers
const (
	HeaderHmac       = "X-Shopify-Hmac-Sha256"
	HeaderTopic      = "X-Shopify-Topic"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
)

const (
	maxBodyBytes    = 1 << 20
	maxWebhookBytes = 5 << 20
)

// ShopifyHandler serves the connector's REST surface
type ShopifyHandler struct {
	oauth    *application.OAuthService
	tenants  *application.TenantService
	sync     *application.SyncService
	webhooks *application.WebhookDispatcher
	verifier ports.SignatureVerifier
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewShopifyHandler creates a new handler over the application services
func NewShopifyHandler(
	oauth *application.OAuthService,
	tenants *application.TenantService,
	sync *application.SyncService,
	webhooks *application.WebhookDispatcher,
	verifier ports.SignatureVerifier,
	logger zerolog.Logger,
) *ShopifyHandler {
	return &ShopifyHandler{
		oauth:    oauth,
		tenants:  tenants,
		sync:     sync,
		webhooks: webhooks,
		verifier: verifier,
		validate: newValidator(),
		logger:   logger,
	}
}

// Routes returns the router to mount under /api/shopify
func (h *ShopifyHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/auth/init", h.initAuth)
	r.Get("/callback", h.callback)
	r.Get("/tenants", h.listTenants)
	r.Route("/tenants/{tenantId}", func(r chi.Router) {
		r.Get("/", h.getTenant)
		r.Delete("/", h.disconnectTenant)
		r.Post("/verify", h.verifyTenant)
		r.Post("/sync", h.triggerSync)
	})
	r.Get("/sync-jobs", h.listSyncJobs)
	r.Post("/webhooks", h.receiveWebhook)
	return r
}

// decode reads a JSON body into dst and validates it
func (h *ShopifyHandler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return domain.Errorf(domain.ErrValidation, "invalid request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func (h *ShopifyHandler) initAuth(w http.ResponseWriter, r *http.Request) {
	var req initAuthRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	userID := domain.GetUserIDFromContext(r.Context())
	authURL, err := h.oauth.Initiate(r.Context(), req.WorkspaceID, userID, req.ShopDomain)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, initAuthResponse{AuthURL: authURL})
}

// callback always redirects; failures carry an error code instead of a body
func (h *ShopifyHandler) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	target := h.oauth.Callback(r.Context(), application.CallbackRequest{
		Code:  q.Get("code"),
		Shop:  q.Get("shop"),
		State: q.Get("state"),
		Query: params,
	})
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *ShopifyHandler) listTenants(w http.ResponseWriter, r *http.Request) {
	userID := domain.GetUserIDFromContext(r.Context())
	tenants, err := h.tenants.List(r.Context(), r.URL.Query().Get("workspaceId"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, tenantsResponse{Tenants: tenants})
}

func (h *ShopifyHandler) getTenant(w http.ResponseWriter, r *http.Request) {
	userID := domain.GetUserIDFromContext(r.Context())
	tenant, err := h.tenants.Get(r.Context(), chi.URLParam(r, "tenantId"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, tenant)
}

func (h *ShopifyHandler) disconnectTenant(w http.ResponseWriter, r *http.Request) {
	userID := domain.GetUserIDFromContext(r.Context())
	if err := h.tenants.Disconnect(r.Context(), chi.URLParam(r, "tenantId"), userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, successResponse{Success: true})
}

func (h *ShopifyHandler) verifyTenant(w http.ResponseWriter, r *http.Request) {
	userID := domain.GetUserIDFromContext(r.Context())
	tenant, err := h.tenants.Verify(r.Context(), chi.URLParam(r, "tenantId"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, tenant)
}

func (h *ShopifyHandler) triggerSync(w http.ResponseWriter, r *http.Request) {
	var req triggerSyncRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	userID := domain.GetUserIDFromContext(r.Context())
	job, err := h.sync.Trigger(r.Context(), chi.URLParam(r, "tenantId"), domain.SyncJobType(req.JobType), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, syncJobResponse{SyncJob: job})
}

func (h *ShopifyHandler) listSyncJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.SyncJobQuery{
		WorkspaceID: q.Get("workspaceId"),
		TenantID:    q.Get("tenantId"),
		Status:      domain.SyncJobStatus(q.Get("status")),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, domain.Errorf(domain.ErrValidation, "limit must be an integer"))
			return
		}
		query.Limit = limit
	}

	userID := domain.GetUserIDFromContext(r.Context())
	jobs, err := h.sync.List(r.Context(), userID, query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []*domain.SyncJob{}
	}
	writeData(w, http.StatusOK, syncJobsResponse{SyncJobs: jobs})
}

// receiveWebhook verifies the raw body before anything parses it
func (h *ShopifyHandler) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := h.verifier.VerifyWebhook(payload, r.Header.Get(HeaderHmac)); err != nil {
		h.logger.Warn().
			Str("topic", r.Header.Get(HeaderTopic)).
			Str("shop", r.Header.Get(HeaderShopDomain)).
			Msg("Webhook signature verification failed")
		writeErrorMessage(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	topic := r.Header.Get(HeaderTopic)
	if topic == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Missing "+HeaderTopic+" header")
		return
	}

	event := &domain.WebhookEvent{
		Topic:   topic,
		Shop:    r.Header.Get(HeaderShopDomain),
		Payload: payload,
	}
	if err := h.webhooks.Dispatch(r.Context(), event); err != nil {
		h.logger.Error().
			Err(err).
			Str("topic", topic).
			Str("shop", event.Shop).
			Msg("Failed to dispatch webhook event")
		// non-2xx makes Shopify retry the delivery
		writeErrorMessage(w, http.StatusInternalServerError, "Failed to process webhook event")
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"received": true})
}
