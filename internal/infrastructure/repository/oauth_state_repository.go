package repository

import (
	"context"
	"errors"
	"fmt"

	"shopify-workspace-connector/internal/domain"
	"shopify-workspace-connector/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoOAuthStateRepository implements OAuthStateRepository using MongoDB
type MongoOAuthStateRepository struct {
	collection *mongo.Collection
}

// NewMongoOAuthStateRepository creates a new MongoDB authorization state repository
func NewMongoOAuthStateRepository(db *mongo.Database) ports.OAuthStateRepository {
	return &MongoOAuthStateRepository{
		collection: db.Collection(OAuthStatesCollection),
	}
}

// Create stores a new state
func (r *MongoOAuthStateRepository) Create(ctx context.Context, state *domain.OAuthState) error {
	if _, err := r.collection.InsertOne(ctx, state); err != nil {
		return wrapWriteError("create oauth state", err)
	}
	return nil
}

// Get retrieves a state by its token
func (r *MongoOAuthStateRepository) Get(ctx context.Context, id string) (*domain.OAuthState, error) {
	var state domain.OAuthState
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth state: %w", err)
	}
	return &state, nil
}

// Delete removes a state. Deleting a missing state is not an error.
func (r *MongoOAuthStateRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete oauth state: %w", err)
	}
	return nil
}
