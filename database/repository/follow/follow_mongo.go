package followRepo

import (
	"context"
	"fmt"
	"time"

	"creatorhub/database"
	"creatorhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoFollowRepo implements FollowRepository using MongoDB.
type MongoFollowRepo struct {
	coll *mongo.Collection
}

func NewMongoFollowRepo(db *mongo.Database) *MongoFollowRepo {
	repo := &MongoFollowRepo{coll: db.Collection("follows")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create follow indexes: %v\n", err)
	}
	return repo
}

func (r *MongoFollowRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "follower_id", Value: 1}, {Key: "following_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoFollowRepo) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"following_id": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"follower_id": followerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load following for %s: %w", followerID, err)
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		var f models.Follow
		if err := cursor.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode follow: %w", err)
		}
		ids = append(ids, f.FollowingID)
	}
	return ids, cursor.Err()
}

func (r *MongoFollowRepo) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	ctx, cancel := database.NewContext(ctx, 3*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx,
		bson.M{"follower_id": followerID, "following_id": followingID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check follow status: %w", err)
	}
	return n > 0, nil
}

func (r *MongoFollowRepo) Follow(ctx context.Context, followerID, followingID string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"follower_id": followerID, "following_id": followingID}
	update := bson.M{"$setOnInsert": models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now(),
	}}
	if _, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to follow %s: %w", followingID, err)
	}
	return nil
}

func (r *MongoFollowRepo) Unfollow(ctx context.Context, followerID, followingID string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"follower_id": followerID, "following_id": followingID}); err != nil {
		return fmt.Errorf("failed to unfollow %s: %w", followingID, err)
	}
	return nil
}
