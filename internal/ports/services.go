package ports

import (
	"context"
	"errors"
	"time"

	"shopify-workspace-connector/internal/domain"
)

// ErrLockHeld is returned by Locker.Acquire when another holder owns the key
var ErrLockHeld = errors.New("lock is held by another owner")

// Locker serializes critical sections across processes
type Locker interface {
	// Acquire takes the lock for ttl. The returned release func is safe to call once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// SyncJobPublisher hands recorded jobs to the external sync worker
type SyncJobPublisher interface {
	PublishSyncJob(ctx context.Context, job *domain.SyncJob) error
}

// WebhookHandler processes webhook events for the topics it accepts
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// MetricsRecorder counts business outcomes
type MetricsRecorder interface {
	ObserveCallback(outcome domain.CallbackOutcome)
	ObserveSyncTrigger(trigger domain.SyncTriggerType, err error)
	ObserveWebhook(topic string, err error)
}
