package userRepo

import (
	"context"

	"creatorhub/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDWithProjection retrieves a user by its unique ID with a projection.
	GetByIDWithProjection(ctx context.Context, id string, projection bson.M) (*models.User, error)
	// UpdateTier sets the subscription tier granted to a user.
	UpdateTier(ctx context.Context, id, tier string) error
}
