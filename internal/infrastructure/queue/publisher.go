// Package queue hands recorded sync jobs to the external sync worker over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// SyncRequestedQueue is the durable queue the sync worker consumes
const SyncRequestedQueue = "shopify.sync.requested"

// SyncJobRequested is the message body published for every recorded job
type SyncJobRequested struct {
	JobID       string                 `json:"jobId"`
	TenantID    string                 `json:"tenantId"`
	WorkspaceID string                 `json:"workspaceId"`
	JobType     domain.SyncJobType     `json:"jobType"`
	TriggerType domain.SyncTriggerType `json:"triggerType"`
	RequestedAt time.Time              `json:"requestedAt"`
}

// RabbitPublisher publishes SyncJobRequested messages. A connection is opened per
// publish; sync triggers are user-initiated and infrequent.
type RabbitPublisher struct {
	url    string
	queue  string
	logger zerolog.Logger
}

// NewRabbitPublisher creates a publisher for the broker at url
func NewRabbitPublisher(url string, logger zerolog.Logger) *RabbitPublisher {
	return &RabbitPublisher{url: url, queue: SyncRequestedQueue, logger: logger}
}

var _ ports.SyncJobPublisher = (*RabbitPublisher)(nil)

// PublishSyncJob declares the queue and publishes a persistent message for job
func (p *RabbitPublisher) PublishSyncJob(ctx context.Context, job *domain.SyncJob) error {
	msg, err := newPublishing(job, time.Now().UTC())
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", p.queue, err)
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		msg,
	); err != nil {
		return fmt.Errorf("failed to publish sync job %s: %w", job.ID, err)
	}

	p.logger.Debug().
		Str("job_id", job.ID).
		Str("tenant_id", job.TenantID).
		Str("job_type", string(job.JobType)).
		Msg("Published sync job request")
	return nil
}

func newPublishing(job *domain.SyncJob, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(SyncJobRequested{
		JobID:       job.ID,
		TenantID:    job.TenantID,
		WorkspaceID: job.WorkspaceID,
		JobType:     job.JobType,
		TriggerType: job.TriggerType,
		RequestedAt: now,
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal sync job request: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    now,
		Type:         "SyncJobRequested",
		Body:         body,
	}, nil
}

// NopPublisher drops every job. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSyncJob(context.Context, *domain.SyncJob) error { return nil }
