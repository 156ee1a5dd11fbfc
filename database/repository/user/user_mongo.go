package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creatorhub/database"
	"creatorhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrUserNotFound is returned when no user matches.
var ErrUserNotFound = errors.New("user not found")

// MongoUserRepo implements UserRepository using MongoDB.
type MongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	repo := &MongoUserRepo{coll: db.Collection("users")}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// GetByIDWithProjection retrieves a user by its unique ID using a projection.
// Pass nil for projection to retrieve the full document.
func (r *MongoUserRepo) GetByIDWithProjection(ctx context.Context, id string, projection bson.M) (*models.User, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}

	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"id": id}, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return &user, nil
}

// GetByID retrieves a user by its unique ID (full document).
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.GetByIDWithProjection(ctx, id, nil)
}

// UpdateTier sets the user's tier.
func (r *MongoUserRepo) UpdateTier(ctx context.Context, id, tier string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"tier": tier, "updated_at": time.Now()}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update tier for user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, ErrUserNotFound)
	}
	return nil
}
