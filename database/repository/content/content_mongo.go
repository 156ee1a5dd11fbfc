package contentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creatorhub/database"
	"creatorhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// MongoContentRepo implements ContentRepository using MongoDB.
type MongoContentRepo struct {
	coll *mongo.Collection
}

// NewMongoContentRepo creates a new instance of ContentRepository using MongoDB.
func NewMongoContentRepo(db *mongo.Database) *MongoContentRepo {
	repo := &MongoContentRepo{coll: db.Collection("content")}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create content indexes: %v\n", err)
	}
	return repo
}

// Collection exposes the backing collection for the change-stream watcher.
func (r *MongoContentRepo) Collection() *mongo.Collection {
	return r.coll
}

// FetchPage pages through published rows by descending ObjectID. The cursor is the hex
// ObjectID of the last row of the previous page.
func (r *MongoContentRepo) FetchPage(ctx context.Context, q PageQuery) (*Page, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	size := normalizePageSize(q.PageSize)
	filter := bson.M{"status": models.StatusPublished}
	if q.Cursor != "" {
		oid, err := primitive.ObjectIDFromHex(q.Cursor)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCursor, q.Cursor)
		}
		filter["_id"] = bson.M{"$lt": oid}
	}

	// One extra row tells us whether another page exists.
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(size + 1))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query content page: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.ContentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode content page: %w", err)
	}

	return buildPage(records, size, q.Cursor), nil
}

// buildPage trims the look-ahead row and derives the next cursor.
func buildPage(records []models.ContentRecord, size int, prevCursor string) *Page {
	page := &Page{NextCursor: prevCursor}
	if len(records) > size {
		page.HasMore = true
		records = records[:size]
	}
	if len(records) > 0 {
		page.NextCursor = records[len(records)-1].OID.Hex()
	}
	page.Records = records
	return page
}

func normalizePageSize(size int) int {
	if size <= 0 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

// Create inserts a new content row.
func (r *MongoContentRepo) Create(ctx context.Context, rec *models.ContentRecord) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	res, err := r.coll.InsertOne(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to create content %s: %w", rec.ID, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.OID = oid
	}
	return nil
}

// GetByID retrieves a content row by its public id.
func (r *MongoContentRepo) GetByID(ctx context.Context, id string) (*models.ContentRecord, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var rec models.ContentRecord
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch content with id %s: %w", id, err)
	}
	return &rec, nil
}
