package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"github.com/rs/zerolog"
)

// admissionLockTTL bounds how long a crashed request can block a tenant's admissions
const admissionLockTTL = 30 * time.Second

var errSyncRunning = domain.Errorf(domain.ErrConflict, "A sync job is already running")

// SyncService admits and lists sync jobs. Execution belongs to the external worker.
type SyncService struct {
	tenants   ports.TenantRepository
	jobs      ports.SyncJobRepository
	members   ports.MembershipOracle
	locker    ports.Locker
	publisher ports.SyncJobPublisher
	metrics   ports.MetricsRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSyncService creates a new sync job service
func NewSyncService(
	tenants ports.TenantRepository,
	jobs ports.SyncJobRepository,
	members ports.MembershipOracle,
	locker ports.Locker,
	publisher ports.SyncJobPublisher,
	metrics ports.MetricsRecorder,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		tenants:   tenants,
		jobs:      jobs,
		members:   members,
		locker:    locker,
		publisher: publisher,
		metrics:   metricsOrNop(metrics),
		logger:    logger,
		now:       time.Now,
	}
}

// Trigger records a manual sync job for the tenant
func (s *SyncService) Trigger(ctx context.Context, tenantID string, jobType domain.SyncJobType, userID string) (*domain.SyncJob, error) {
	job, err := s.trigger(ctx, tenantID, jobType, userID)
	s.metrics.ObserveSyncTrigger(domain.SyncTriggerManual, err)
	return job, err
}

func (s *SyncService) trigger(ctx context.Context, tenantID string, jobType domain.SyncJobType, userID string) (*domain.SyncJob, error) {
	if !jobType.Valid() {
		return nil, domain.Errorf(domain.ErrValidation, "invalid job type %q", jobType)
	}

	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.Errorf(domain.ErrNotFound, "Tenant not found")
	}

	if _, err := requireMember(ctx, s.members, tenant.WorkspaceID, userID); err != nil {
		return nil, err
	}

	return s.admit(ctx, tenant, jobType, domain.SyncTriggerManual)
}

// RecordWebhookTrigger records a webhook-triggered job. The caller has already
// authenticated the delivery, so no membership check applies.
func (s *SyncService) RecordWebhookTrigger(ctx context.Context, tenant *domain.Tenant, jobType domain.SyncJobType) (*domain.SyncJob, error) {
	job, err := s.admit(ctx, tenant, jobType, domain.SyncTriggerWebhook)
	s.metrics.ObserveSyncTrigger(domain.SyncTriggerWebhook, err)
	return job, err
}

// admit creates a pending job unless the tenant has one running. The check and the
// insert run under a per-tenant lock.
func (s *SyncService) admit(ctx context.Context, tenant *domain.Tenant, jobType domain.SyncJobType, trigger domain.SyncTriggerType) (*domain.SyncJob, error) {
	release, err := s.locker.Acquire(ctx, "sync:"+tenant.ID, admissionLockTTL)
	if errors.Is(err, ports.ErrLockHeld) {
		return nil, errSyncRunning
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire admission lock: %w", err)
	}
	defer release()

	running, err := s.jobs.HasRunning(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	if running {
		return nil, errSyncRunning
	}

	job := domain.NewSyncJob(tenant, jobType, trigger, s.now())
	if err := s.jobs.Create(ctx, job); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, errSyncRunning
		}
		return nil, err
	}

	if err := s.publisher.PublishSyncJob(ctx, job); err != nil {
		// the job stays recorded
		s.logger.Error().
			Err(err).
			Str("job_id", job.ID).
			Str("tenant_id", tenant.ID).
			Msg("Failed to publish sync job")
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("tenant_id", tenant.ID).
		Str("job_type", string(jobType)).
		Str("trigger", string(trigger)).
		Msg("Recorded sync job")
	return job, nil
}

// List returns the workspace's jobs matching query, newest first. A zero limit
// means the default page size; anything else is clamped to [1, 100].
func (s *SyncService) List(ctx context.Context, userID string, query domain.SyncJobQuery) ([]*domain.SyncJob, error) {
	if query.WorkspaceID == "" {
		return nil, domain.Errorf(domain.ErrValidation, "workspace ID is required")
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, domain.Errorf(domain.ErrValidation, "invalid status %q", query.Status)
	}
	if _, err := requireMember(ctx, s.members, query.WorkspaceID, userID); err != nil {
		return nil, err
	}

	if query.Limit == 0 {
		query.Limit = domain.DefaultSyncJobLimit
	}
	query.Limit = domain.ClampSyncJobLimit(query.Limit)

	return s.jobs.List(ctx, query)
}
