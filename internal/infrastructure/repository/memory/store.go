// Package memory provides in-process repositories with the same contracts as the
// MongoDB adapters, including their uniqueness rules.
package memory

import (
	"context"
	"sort"
	"sync"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"github.com/google/uuid"
)

// OAuthStateRepository is an in-memory ports.OAuthStateRepository
type OAuthStateRepository struct {
	mu     sync.RWMutex
	states map[string]domain.OAuthState
}

func NewOAuthStateRepository() *OAuthStateRepository {
	return &OAuthStateRepository{states: make(map[string]domain.OAuthState)}
}

var _ ports.OAuthStateRepository = (*OAuthStateRepository)(nil)

func (r *OAuthStateRepository) Create(_ context.Context, state *domain.OAuthState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.states[state.ID]; ok {
		return domain.Errorf(domain.ErrConflict, "oauth state already exists")
	}
	r.states[state.ID] = *state
	return nil
}

func (r *OAuthStateRepository) Get(_ context.Context, id string) (*domain.OAuthState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.states[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *OAuthStateRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, id)
	return nil
}

// Len returns the number of stored states
func (r *OAuthStateRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}

// TenantRepository is an in-memory ports.TenantRepository
type TenantRepository struct {
	mu      sync.RWMutex
	tenants map[string]domain.Tenant
}

func NewTenantRepository() *TenantRepository {
	return &TenantRepository{tenants: make(map[string]domain.Tenant)}
}

var _ ports.TenantRepository = (*TenantRepository)(nil)

func (r *TenantRepository) Create(_ context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tenants {
		if t.WorkspaceID == tenant.WorkspaceID && t.ShopDomain == tenant.ShopDomain {
			return domain.Errorf(domain.ErrConflict, "create tenant: record already exists")
		}
	}
	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	r.tenants[tenant.ID] = *tenant
	return nil
}

func (r *TenantRepository) Get(_ context.Context, id string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TenantRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tenants[id]; !ok {
		return domain.Errorf(domain.ErrNotFound, "tenant not found")
	}
	delete(r.tenants, id)
	return nil
}

func (r *TenantRepository) ListByWorkspace(_ context.Context, workspaceID string) ([]*domain.Tenant, error) {
	return r.filter(func(t *domain.Tenant) bool { return t.WorkspaceID == workspaceID }), nil
}

func (r *TenantRepository) ExistsInWorkspace(_ context.Context, workspaceID, shopDomain string) (bool, error) {
	found := r.filter(func(t *domain.Tenant) bool {
		return t.WorkspaceID == workspaceID && t.ShopDomain == shopDomain
	})
	return len(found) > 0, nil
}

func (r *TenantRepository) ListByShopDomain(_ context.Context, shopDomain string) ([]*domain.Tenant, error) {
	return r.filter(func(t *domain.Tenant) bool { return t.ShopDomain == shopDomain }), nil
}

func (r *TenantRepository) UpdateStatus(_ context.Context, id string, update ports.TenantStatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return domain.Errorf(domain.ErrNotFound, "tenant not found")
	}
	t.Status = update.Status
	t.ErrorMessage = update.ErrorMessage
	if update.SyncEnabled != nil {
		t.SyncEnabled = *update.SyncEnabled
	}
	t.UpdatedAt = update.UpdatedAt
	r.tenants[id] = t
	return nil
}

// filter returns copies of matching tenants, newest first
func (r *TenantRepository) filter(match func(*domain.Tenant) bool) []*domain.Tenant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Tenant, 0)
	for _, t := range r.tenants {
		t := t
		if match(&t) {
			out = append(out, &t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// SyncJobRepository is an in-memory ports.SyncJobRepository
type SyncJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]domain.SyncJob
	seq  int
	// insertion order breaks createdAt ties so "newest first" is deterministic
	order map[string]int
}

func NewSyncJobRepository() *SyncJobRepository {
	return &SyncJobRepository{jobs: make(map[string]domain.SyncJob), order: make(map[string]int)}
}

var _ ports.SyncJobRepository = (*SyncJobRepository)(nil)

func (r *SyncJobRepository) Create(_ context.Context, job *domain.SyncJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.Status == domain.SyncJobStatusRunning {
		for _, j := range r.jobs {
			if j.TenantID == job.TenantID && j.Status == domain.SyncJobStatusRunning {
				return domain.Errorf(domain.ErrConflict, "create sync job: record already exists")
			}
		}
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.seq++
	r.order[job.ID] = r.seq
	r.jobs[job.ID] = *job
	return nil
}

func (r *SyncJobRepository) Get(_ context.Context, id string) (*domain.SyncJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

func (r *SyncJobRepository) List(_ context.Context, query domain.SyncJobQuery) ([]*domain.SyncJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.SyncJob, 0)
	for _, j := range r.jobs {
		j := j
		if j.WorkspaceID != query.WorkspaceID {
			continue
		}
		if query.TenantID != "" && j.TenantID != query.TenantID {
			continue
		}
		if query.Status != "" && j.Status != query.Status {
			continue
		}
		out = append(out, &j)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return r.order[out[a].ID] > r.order[out[b].ID]
		}
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (r *SyncJobRepository) HasRunning(_ context.Context, tenantID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, j := range r.jobs {
		if j.TenantID == tenantID && j.Status == domain.SyncJobStatusRunning {
			return true, nil
		}
	}
	return false, nil
}

// MembershipOracle is an in-memory ports.MembershipOracle
type MembershipOracle struct {
	mu      sync.RWMutex
	members map[[2]string]domain.Member
}

func NewMembershipOracle() *MembershipOracle {
	return &MembershipOracle{members: make(map[[2]string]domain.Member)}
}

var _ ports.MembershipOracle = (*MembershipOracle)(nil)

// AddMember records a membership, replacing any previous role
func (o *MembershipOracle) AddMember(workspaceID, userID, role string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.members[[2]string{workspaceID, userID}] = domain.Member{WorkspaceID: workspaceID, UserID: userID, Role: role}
}

func (o *MembershipOracle) GetMember(_ context.Context, workspaceID, userID string) (*domain.Member, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	m, ok := o.members[[2]string{workspaceID, userID}]
	if !ok {
		return nil, nil
	}
	return &m, nil
}
