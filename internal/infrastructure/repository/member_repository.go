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

// MongoMemberRepository answers membership questions from the workspace members
// collection maintained by the workspace service.
type MongoMemberRepository struct {
	collection *mongo.Collection
}

// NewMongoMemberRepository creates a new MongoDB membership oracle
func NewMongoMemberRepository(db *mongo.Database) ports.MembershipOracle {
	return &MongoMemberRepository{
		collection: db.Collection(MembersCollection),
	}
}

// GetMember returns the membership or nil when the user is not a member
func (r *MongoMemberRepository) GetMember(ctx context.Context, workspaceID, userID string) (*domain.Member, error) {
	if workspaceID == "" || userID == "" {
		return nil, nil
	}
	var member domain.Member
	err := r.collection.FindOne(ctx, bson.M{"workspaceId": workspaceID, "userId": userID}).Decode(&member)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}
