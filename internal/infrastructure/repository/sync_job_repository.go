package repository

import (
	"context"
	"errors"
	"fmt"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/infrastructure/repository/entity"
	"shopify-workspace-connector/internal/ports"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSyncJobRepository implements SyncJobRepository using MongoDB
type MongoSyncJobRepository struct {
	collection *mongo.Collection
}

// NewMongoSyncJobRepository creates a new MongoDB sync job repository
func NewMongoSyncJobRepository(db *mongo.Database) ports.SyncJobRepository {
	return &MongoSyncJobRepository{
		collection: db.Collection(SyncJobsCollection),
	}
}

// Create inserts a job and assigns its ID
func (r *MongoSyncJobRepository) Create(ctx context.Context, job *domain.SyncJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if _, err := r.collection.InsertOne(ctx, entity.MongoSyncJobDocFromDomain(job)); err != nil {
		return wrapWriteError("create sync job", err)
	}
	return nil
}

// Get retrieves a job by ID
func (r *MongoSyncJobRepository) Get(ctx context.Context, id string) (*domain.SyncJob, error) {
	var doc entity.MongoSyncJobDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync job: %w", err)
	}
	return doc.ToDomain(), nil
}

// List retrieves jobs matching the query, newest first
func (r *MongoSyncJobRepository) List(ctx context.Context, query domain.SyncJobQuery) ([]*domain.SyncJob, error) {
	cursor, err := r.collection.Find(ctx, syncJobFilter(query), syncJobFindOptions(query))
	if err != nil {
		return nil, fmt.Errorf("failed to list sync jobs: %w", err)
	}
	defer cursor.Close(ctx)

	jobs := make([]*domain.SyncJob, 0)
	for cursor.Next(ctx) {
		var doc entity.MongoSyncJobDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode sync job: %w", err)
		}
		jobs = append(jobs, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return jobs, nil
}

// HasRunning reports whether the tenant has a running job
func (r *MongoSyncJobRepository) HasRunning(ctx context.Context, tenantID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx,
		bson.M{"tenantId": tenantID, "status": string(domain.SyncJobStatusRunning)},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check running sync jobs: %w", err)
	}
	return count > 0, nil
}

func syncJobFilter(query domain.SyncJobQuery) bson.M {
	filter := bson.M{"workspaceId": query.WorkspaceID}
	if query.TenantID != "" {
		filter["tenantId"] = query.TenantID
	}
	if query.Status != "" {
		filter["status"] = string(query.Status)
	}
	return filter
}

func syncJobFindOptions(query domain.SyncJobQuery) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}
	return opts
}
