package domain

import "time"

// SyncJobType is the kind of data a sync job pulls
type SyncJobType string

const (
	SyncJobTypeProducts  SyncJobType = "products"
	SyncJobTypeInventory SyncJobType = "inventory"
	SyncJobTypeOrders    SyncJobType = "orders"
	SyncJobTypeLocations SyncJobType = "locations"
	SyncJobTypeFull      SyncJobType = "full"
)

// Valid reports whether t is a known job type
func (t SyncJobType) Valid() bool {
	switch t {
	case SyncJobTypeProducts, SyncJobTypeInventory, SyncJobTypeOrders, SyncJobTypeLocations, SyncJobTypeFull:
		return true
	}
	return false
}

// SyncTriggerType records what caused a sync job to be created
type SyncTriggerType string

const (
	SyncTriggerManual    SyncTriggerType = "manual"
	SyncTriggerScheduled SyncTriggerType = "scheduled"
	SyncTriggerWebhook   SyncTriggerType = "webhook"
)

// SyncJobStatus is the lifecycle state of a sync job
type SyncJobStatus string

const (
	SyncJobStatusPending   SyncJobStatus = "pending"
	SyncJobStatusRunning   SyncJobStatus = "running"
	SyncJobStatusCompleted SyncJobStatus = "completed"
	SyncJobStatusFailed    SyncJobStatus = "failed"
	SyncJobStatusCancelled SyncJobStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s SyncJobStatus) Valid() bool {
	switch s {
	case SyncJobStatusPending, SyncJobStatusRunning, SyncJobStatusCompleted, SyncJobStatusFailed, SyncJobStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether a job has not reached a terminal status yet
func (s SyncJobStatus) IsActive() bool {
	return s == SyncJobStatusPending || s == SyncJobStatusRunning
}

// SyncJob records one attempt to pull data from a tenant's store.
// Only the worker moves a job past pending.
type SyncJob struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenantId"`
	WorkspaceID      string          `json:"workspaceId"`
	JobType          SyncJobType     `json:"jobType"`
	TriggerType      SyncTriggerType `json:"triggerType"`
	Status           SyncJobStatus   `json:"status"`
	Progress         int             `json:"progress"`
	StartedAt        *time.Time      `json:"startedAt"`
	CompletedAt      *time.Time      `json:"completedAt"`
	RecordsProcessed int             `json:"recordsProcessed"`
	RecordsFailed    int             `json:"recordsFailed"`
	ErrorLog         *string         `json:"errorLog"`
	Cursor           *string         `json:"cursor"`
	PageInfo         *string         `json:"pageInfo"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// NewSyncJob creates a pending job with zeroed counters
func NewSyncJob(tenant *Tenant, jobType SyncJobType, trigger SyncTriggerType, now time.Time) *SyncJob {
	return &SyncJob{
		TenantID:    tenant.ID,
		WorkspaceID: tenant.WorkspaceID,
		JobType:     jobType,
		TriggerType: trigger,
		Status:      SyncJobStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

const (
	DefaultSyncJobLimit = 20
	MaxSyncJobLimit     = 100
)

// SyncJobQuery filters a workspace's sync jobs. Empty fields are not filtered on.
type SyncJobQuery struct {
	WorkspaceID string
	TenantID    string
	Status      SyncJobStatus
	Limit       int
}

// ClampSyncJobLimit keeps a requested page size within [1, MaxSyncJobLimit]
func ClampSyncJobLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxSyncJobLimit {
		return MaxSyncJobLimit
	}
	return limit
}
