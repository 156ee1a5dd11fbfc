package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	contentRepo "creatorhub/database/repository/content"
	"creatorhub/models"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []contentRepo.PageQuery
	fetch func(ctx context.Context, q contentRepo.PageQuery) (*contentRepo.Page, error)
}

func (f *fakeSource) FetchPage(ctx context.Context, q contentRepo.PageQuery) (*contentRepo.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	fn := f.fetch
	f.mu.Unlock()
	return fn(ctx, q)
}

func (f *fakeSource) Calls() []contentRepo.PageQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]contentRepo.PageQuery, len(f.calls))
	copy(out, f.calls)
	return out
}

// pagedSource serves pages keyed by the cursor they are requested with.
func pagedSource(pages map[string]*contentRepo.Page) *fakeSource {
	return &fakeSource{fetch: func(_ context.Context, q contentRepo.PageQuery) (*contentRepo.Page, error) {
		p, ok := pages[q.Cursor]
		if !ok {
			return nil, fmt.Errorf("no page for cursor %q", q.Cursor)
		}
		return p, nil
	}}
}

func failingSource(err error) *fakeSource {
	return &fakeSource{fetch: func(context.Context, contentRepo.PageQuery) (*contentRepo.Page, error) {
		return nil, err
	}}
}

type fakeCache struct {
	feed   *models.PrefetchedFeed
	stored []models.PrefetchedFeed
	mu     sync.Mutex
}

// cachedPage builds a cache entry from records the way a previous first page stored it.
func cachedPage(t *testing.T, nextCursor string, hasMore bool, recs ...models.ContentRecord) *fakeCache {
	t.Helper()
	items := make([]models.ContentItem, 0, len(recs))
	for _, rec := range recs {
		item, err := Transform(rec)
		if err != nil {
			t.Fatalf("transform %s: %v", rec.ID, err)
		}
		items = append(items, item)
	}
	return &fakeCache{feed: &models.PrefetchedFeed{Items: items, NextCursor: nextCursor, HasMore: hasMore}}
}

func (c *fakeCache) GetCachedFeed(context.Context) (*models.PrefetchedFeed, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feed, c.feed != nil && len(c.feed.Items) > 0
}

func (c *fakeCache) StoreFeed(_ context.Context, feed models.PrefetchedFeed) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = append(c.stored, feed)
	return nil
}

type fakeRealtime struct {
	ch           chan models.ContentRecord
	err          error
	hold         chan struct{}
	subscribes   atomic.Int32
	unsubscribed atomic.Int32
}

func newFakeRealtime() *fakeRealtime {
	return &fakeRealtime{ch: make(chan models.ContentRecord, 8)}
}

func (f *fakeRealtime) Subscribe(context.Context) (<-chan models.ContentRecord, func(), error) {
	f.subscribes.Add(1)
	if f.hold != nil {
		<-f.hold
	}
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.ch, func() { f.unsubscribed.Add(1) }, nil
}

type fakeFollows struct {
	idsCalls    atomic.Int32
	following   func(ctx context.Context, followerID string) ([]string, error)
	isFollowing func(ctx context.Context, followerID, followingID string) (bool, error)
}

func (f *fakeFollows) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	f.idsCalls.Add(1)
	return f.following(ctx, followerID)
}

func (f *fakeFollows) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return f.isFollowing(ctx, followerID, followingID)
}

func followsOf(ids ...string) *fakeFollows {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return &fakeFollows{
		following: func(context.Context, string) ([]string, error) { return ids, nil },
		isFollowing: func(_ context.Context, _, followingID string) (bool, error) {
			return set[followingID], nil
		},
	}
}

func post(id, creator string) models.ContentRecord {
	return models.ContentRecord{
		ID:          id,
		CreatorID:   creator,
		ContentType: string(models.ContentTypePost),
		Status:      models.StatusPublished,
		Content:     "body of " + id,
	}
}

func page(cursor string, hasMore bool, recs ...models.ContentRecord) *contentRepo.Page {
	return &contentRepo.Page{Records: recs, NextCursor: cursor, HasMore: hasMore}
}

func ids(items []models.ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
