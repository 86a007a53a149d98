package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	OAuthStatesCollection = "shopify_oauth_states"
	TenantsCollection     = "shopify_tenants"
	SyncJobsCollection    = "shopify_sync_jobs"
	MembersCollection     = "workspace_members"
)

// collectionIndexes lists the indexes each collection needs. The unique ones back
// invariants the services only pre-check.
func collectionIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		OAuthStatesCollection: {
			{
				Keys:    bson.D{{Key: "expiresAt", Value: 1}},
				Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
			},
		},
		TenantsCollection: {
			{
				Keys:    bson.D{{Key: "workspaceId", Value: 1}, {Key: "shopDomain", Value: 1}},
				Options: options.Index().SetName("workspace_shop_unique").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "workspaceId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("workspace_created"),
			},
			{
				Keys:    bson.D{{Key: "shopDomain", Value: 1}},
				Options: options.Index().SetName("shop_domain"),
			},
		},
		SyncJobsCollection: {
			{
				Keys: bson.D{{Key: "tenantId", Value: 1}},
				Options: options.Index().
					SetName("tenant_running_unique").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": "running"}),
			},
			{
				Keys:    bson.D{{Key: "workspaceId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("workspace_created"),
			},
		},
		MembersCollection: {
			{
				Keys:    bson.D{{Key: "workspaceId", Value: 1}, {Key: "userId", Value: 1}},
				Options: options.Index().SetName("workspace_user_unique").SetUnique(true),
			},
		},
	}
}

// EnsureIndexes creates every index the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range collectionIndexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
