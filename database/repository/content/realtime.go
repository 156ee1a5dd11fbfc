package contentRepo

import (
	"context"
	"time"

	"creatorhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	minWatchBackoff = 500 * time.Millisecond
	maxWatchBackoff = 30 * time.Second
)

// ChangeStreamWatcher streams published inserts from the content collection.
type ChangeStreamWatcher struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

func NewChangeStreamWatcher(coll *mongo.Collection, logger *zap.Logger) *ChangeStreamWatcher {
	return &ChangeStreamWatcher{coll: coll, logger: logger}
}

type insertEvent struct {
	FullDocument models.ContentRecord `bson:"fullDocument"`
}

// publishedInsertPipeline matches "published row inserted" change events.
func publishedInsertPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: "insert"},
			{Key: "fullDocument.status", Value: models.StatusPublished},
		}}},
	}
}

// Watch emits inserted published rows until ctx is cancelled, reconnecting with
// exponential backoff whenever the change stream fails. The returned channel is closed
// when the watcher stops.
func (w *ChangeStreamWatcher) Watch(ctx context.Context) <-chan models.ContentRecord {
	out := make(chan models.ContentRecord, 64)

	go func() {
		defer close(out)
		backoff := minWatchBackoff

		for ctx.Err() == nil {
			delivered, err := w.stream(ctx, out)
			if ctx.Err() != nil {
				return
			}
			if delivered {
				backoff = minWatchBackoff
			}
			w.logger.Warn("content change stream interrupted, reconnecting",
				zap.Error(err), zap.Duration("backoff", backoff))

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = NextBackoff(backoff, maxWatchBackoff)
		}
	}()

	return out
}

// stream runs one change stream until it errors. delivered reports whether at least one
// event got through, which resets the backoff.
func (w *ChangeStreamWatcher) stream(ctx context.Context, out chan<- models.ContentRecord) (delivered bool, err error) {
	cs, err := w.coll.Watch(ctx, publishedInsertPipeline(), options.ChangeStream())
	if err != nil {
		return false, err
	}
	defer cs.Close(context.Background())

	w.logger.Info("content change stream connected")
	for cs.Next(ctx) {
		var ev insertEvent
		if err := cs.Decode(&ev); err != nil {
			w.logger.Error("failed to decode change event", zap.Error(err))
			continue
		}
		select {
		case out <- ev.FullDocument:
			delivered = true
		case <-ctx.Done():
			return delivered, ctx.Err()
		}
	}
	return delivered, cs.Err()
}

// NextBackoff doubles cur, capped at limit.
func NextBackoff(cur, limit time.Duration) time.Duration {
	next := cur * 2
	if next > limit || next <= 0 {
		return limit
	}
	return next
}
