package subscriptionRepo

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

// ErrDuplicateSubscription reports that a record for the same Stripe subscription is
// already stored.
var ErrDuplicateSubscription = errors.New("subscription already recorded")

// ensureIndexes makes stripe_subscription_id unique so a redelivered checkout webhook
// cannot record the same subscription twice.
func (r *MongoSubscriptionRepo) ensureIndexes() error {
	ctx, cancel := database.NewContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stripe_subscription_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription indexes: %w", err)
	}
	return nil
}

// insertError maps a driver error from InsertOne onto the repository's errors.
func insertError(rec *models.SubscriptionRecord, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("subscription %s: %w", rec.StripeSubscriptionID, ErrDuplicateSubscription)
	}
	return fmt.Errorf("failed to insert subscription for user %s: %w", rec.UserID, err)
}
