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

// MongoTenantRepository implements TenantRepository using MongoDB
type MongoTenantRepository struct {
	collection *mongo.Collection
}

// NewMongoTenantRepository creates a new MongoDB tenant repository
func NewMongoTenantRepository(db *mongo.Database) ports.TenantRepository {
	return &MongoTenantRepository{
		collection: db.Collection(TenantsCollection),
	}
}

// Create inserts a tenant and assigns its ID. A second tenant for the same
// workspace and shop violates the unique index and yields domain.ErrConflict.
func (r *MongoTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	doc := entity.MongoTenantDocFromDomain(tenant)

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return wrapWriteError("create tenant", err)
	}
	return nil
}

// Get retrieves a tenant by ID
func (r *MongoTenantRepository) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	var doc entity.MongoTenantDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return doc.ToDomain(), nil
}

// Delete deletes a tenant by ID
func (r *MongoTenantRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.Errorf(domain.ErrNotFound, "tenant not found")
	}
	return nil
}

// ListByWorkspace retrieves the workspace's tenants, newest first
func (r *MongoTenantRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Tenant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"workspaceId": workspaceID}, opts)
}

// ExistsInWorkspace reports whether the shop is connected to the workspace
func (r *MongoTenantRepository) ExistsInWorkspace(ctx context.Context, workspaceID, shopDomain string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx,
		bson.M{"workspaceId": workspaceID, "shopDomain": shopDomain},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check tenant existence: %w", err)
	}
	return count > 0, nil
}

// ListByShopDomain retrieves tenants of a shop across workspaces
func (r *MongoTenantRepository) ListByShopDomain(ctx context.Context, shopDomain string) ([]*domain.Tenant, error) {
	return r.find(ctx, bson.M{"shopDomain": shopDomain}, options.Find())
}

// UpdateStatus applies a status transition
func (r *MongoTenantRepository) UpdateStatus(ctx context.Context, id string, update ports.TenantStatusUpdate) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, tenantStatusUpdateDoc(update))
	if err != nil {
		return fmt.Errorf("failed to update tenant status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.Errorf(domain.ErrNotFound, "tenant not found")
	}
	return nil
}

func tenantStatusUpdateDoc(update ports.TenantStatusUpdate) bson.M {
	set := bson.M{
		"status":       string(update.Status),
		"errorMessage": update.ErrorMessage,
		"updatedAt":    update.UpdatedAt,
	}
	if update.SyncEnabled != nil {
		set["syncEnabled"] = *update.SyncEnabled
	}
	return bson.M{"$set": set}
}

func (r *MongoTenantRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Tenant, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer cursor.Close(ctx)

	tenants := make([]*domain.Tenant, 0)
	for cursor.Next(ctx) {
		var doc entity.MongoTenantDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode tenant: %w", err)
		}
		tenants = append(tenants, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return tenants, nil
}
