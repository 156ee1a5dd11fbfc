package userRepo

import (
	"context"
	"fmt"
	"time"

	"creatorhub/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userIndexes lists the lookups the profile, suggestion and tier paths depend on.
// Accounts created through phone sign-in may lack an email or username, hence sparse.
func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "tier", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
}

func (r *MongoUserRepo) ensureIndexes() error {
	ctx, cancel := database.NewContext(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateMany(ctx, userIndexes()); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}
