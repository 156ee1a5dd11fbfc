package subscriptionRepo

import (
	"context"
	"fmt"
	"time"

	"creatorhub/database"
	"creatorhub/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSubscriptionRepo implements SubscriptionRepository using MongoDB.
type MongoSubscriptionRepo struct {
	coll *mongo.Collection
}

func NewMongoSubscriptionRepo(db *mongo.Database) *MongoSubscriptionRepo {
	repo := &MongoSubscriptionRepo{coll: db.Collection("subscriptions")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create subscription indexes: %v\n", err)
	}
	return repo
}

// Insert stores rec. A record whose Stripe subscription is already stored fails with
// ErrDuplicateSubscription.
func (r *MongoSubscriptionRepo) Insert(ctx context.Context, rec *models.SubscriptionRecord) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return insertError(rec, err)
	}
	return nil
}
