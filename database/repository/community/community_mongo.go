package communityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creatorhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCommunityRepo implements CommunityRepository with multi-document transactions.
type MongoCommunityRepo struct {
	client      *mongo.Client
	communities *mongo.Collection
	members     *mongo.Collection
}

func NewMongoCommunityRepo(client *mongo.Client, db *mongo.Database) *MongoCommunityRepo {
	repo := &MongoCommunityRepo{
		client:      client,
		communities: db.Collection("communities"),
		members:     db.Collection("community_members"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := repo.members.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "community_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		fmt.Printf("failed to create community member indexes: %v\n", err)
	}
	return repo
}

func (r *MongoCommunityRepo) Join(ctx context.Context, communityID, userID string) (int64, error) {
	return r.withCounter(ctx, communityID, 1, func(sc mongo.SessionContext) error {
		_, err := r.members.InsertOne(sc, models.CommunityMember{
			CommunityID: communityID,
			UserID:      userID,
			JoinedAt:    time.Now(),
		})
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyMember
		}
		return err
	})
}

func (r *MongoCommunityRepo) Leave(ctx context.Context, communityID, userID string) (int64, error) {
	return r.withCounter(ctx, communityID, -1, func(sc mongo.SessionContext) error {
		res, err := r.members.DeleteOne(sc, bson.M{"community_id": communityID, "user_id": userID})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrNotMember
		}
		return nil
	})
}

// withCounter runs the membership change and the counter update in one transaction.
func (r *MongoCommunityRepo) withCounter(ctx context.Context, communityID string, delta int64, change func(mongo.SessionContext) error) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := change(sc); err != nil {
			return nil, err
		}

		var updated models.Community
		err := r.communities.FindOneAndUpdate(sc,
			bson.M{"id": communityID},
			bson.M{"$inc": bson.M{"member_count": delta}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCommunityNotFound
		}
		if err != nil {
			return nil, err
		}
		return updated.MemberCount, nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyMember) || errors.Is(err, ErrNotMember) || errors.Is(err, ErrCommunityNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("community %s membership change failed: %w", communityID, err)
	}
	return result.(int64), nil
}
