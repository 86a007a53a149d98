package entity

import (
	"time"

	"shopify-workspace-connector/internal/domain"
)

// MongoSyncJobDoc represents a sync job in MongoDB
type MongoSyncJobDoc struct {
	ID               string     `bson:"_id"`
	TenantID         string     `bson:"tenantId"`
	WorkspaceID      string     `bson:"workspaceId"`
	JobType          string     `bson:"jobType"`
	TriggerType      string     `bson:"triggerType"`
	Status           string     `bson:"status"`
	Progress         int        `bson:"progress"`
	StartedAt        *time.Time `bson:"startedAt"`
	CompletedAt      *time.Time `bson:"completedAt"`
	RecordsProcessed int        `bson:"recordsProcessed"`
	RecordsFailed    int        `bson:"recordsFailed"`
	ErrorLog         *string    `bson:"errorLog"`
	Cursor           *string    `bson:"cursor"`
	PageInfo         *string    `bson:"pageInfo"`
	CreatedAt        time.Time  `bson:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoSyncJobDoc) ToDomain() *domain.SyncJob {
	return &domain.SyncJob{
		ID:               d.ID,
		TenantID:         d.TenantID,
		WorkspaceID:      d.WorkspaceID,
		JobType:          domain.SyncJobType(d.JobType),
		TriggerType:      domain.SyncTriggerType(d.TriggerType),
		Status:           domain.SyncJobStatus(d.Status),
		Progress:         d.Progress,
		StartedAt:        d.StartedAt,
		CompletedAt:      d.CompletedAt,
		RecordsProcessed: d.RecordsProcessed,
		RecordsFailed:    d.RecordsFailed,
		ErrorLog:         d.ErrorLog,
		Cursor:           d.Cursor,
		PageInfo:         d.PageInfo,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// MongoSyncJobDocFromDomain converts a domain entity to a MongoDB document
func MongoSyncJobDocFromDomain(j *domain.SyncJob) *MongoSyncJobDoc {
	return &MongoSyncJobDoc{
		ID:               j.ID,
		TenantID:         j.TenantID,
		WorkspaceID:      j.WorkspaceID,
		JobType:          string(j.JobType),
		TriggerType:      string(j.TriggerType),
		Status:           string(j.Status),
		Progress:         j.Progress,
		StartedAt:        j.StartedAt,
		CompletedAt:      j.CompletedAt,
		RecordsProcessed: j.RecordsProcessed,
		RecordsFailed:    j.RecordsFailed,
		ErrorLog:         j.ErrorLog,
		Cursor:           j.Cursor,
		PageInfo:         j.PageInfo,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
	}
}
