// File: services/feed/utils/cache.go
package feedUtils

import (
	"context"
	"encoding/json"
	"time"

	"creatorhub/models"
	"creatorhub/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisPrefetchCache keeps a ready-made first page per viewer so that reopening the feed
// can skip the database round trip.
type RedisPrefetchCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisPrefetchCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisPrefetchCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisPrefetchCache{client: client, ttl: ttl, logger: logger}
}

// ForViewer scopes the cache to a single viewer's first page.
func (c *RedisPrefetchCache) ForViewer(viewerID string) *ViewerPrefetch {
	return &ViewerPrefetch{cache: c, key: PrefetchKey(viewerID)}
}

func PrefetchKey(viewerID string) string {
	if viewerID == "" {
		viewerID = utils.AnonymousViewer
	}
	return utils.FeedPrefetchPrefix + viewerID
}

// ViewerPrefetch is the per-viewer view a feed loader consumes.
type ViewerPrefetch struct {
	cache *RedisPrefetchCache
	key   string
}

// GetCachedFeed returns the cached page. Misses, Redis errors and corrupt entries all
// read as "nothing cached".
func (p *ViewerPrefetch) GetCachedFeed(ctx context.Context) (*models.PrefetchedFeed, bool) {
	val, err := p.cache.client.Get(ctx, p.key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		p.cache.logger.Warn("prefetch cache read failed", zap.String("key", p.key), zap.Error(err))
		return nil, false
	}

	var cached models.PrefetchedFeed
	if err := json.Unmarshal(val, &cached); err != nil {
		p.cache.logger.Warn("corrupt prefetch entry", zap.String("key", p.key), zap.Error(err))
		return nil, false
	}
	return &cached, len(cached.Items) > 0
}

// StoreFeed caches a first page along with the cursor that continues it.
func (p *ViewerPrefetch) StoreFeed(ctx context.Context, feed models.PrefetchedFeed) error {
	data, err := json.Marshal(feed)
	if err != nil {
		return err
	}
	return p.cache.client.Set(ctx, p.key, data, p.cache.ttl).Err()
}
