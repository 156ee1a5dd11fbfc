package feedUtils

import (
	"context"
	"testing"
	"time"

	"creatorhub/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestPrefetchKey(t *testing.T) {
	assert.Equal(t, "feed:prefetch:u1", PrefetchKey("u1"))
	assert.Equal(t, "feed:prefetch:anon", PrefetchKey(""))
}

// An unreachable Redis must read as a cache miss so the loader falls back to the store.
func TestPrefetchUnavailableRedisIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	cache := NewRedisPrefetchCache(client, time.Minute, nil)
	p := cache.ForViewer("u1")

	cached, ok := p.GetCachedFeed(context.Background())
	assert.False(t, ok)
	assert.Nil(t, cached)

	err := p.StoreFeed(context.Background(), models.PrefetchedFeed{
		Items:      []models.ContentItem{{ID: "a"}},
		NextCursor: "c1",
		HasMore:    true,
	})
	assert.Error(t, err)
}
