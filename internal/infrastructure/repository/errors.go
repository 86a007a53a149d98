package repository

import (
	"fmt"

	"shopify-workspace-connector/internal/domain"

	"go.mongodb.org/mongo-driver/mongo"
)

// wrapWriteError maps unique index violations to domain.ErrConflict
func wrapWriteError(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to %s: %w", op, domain.Errorf(domain.ErrConflict, "%s: record already exists", op))
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
