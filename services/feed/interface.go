package feed

import (
	"context"

	contentRepo "creatorhub/database/repository/content"
	"creatorhub/models"
)

// ContentSource pages through stored content rows.
type ContentSource interface {
	FetchPage(ctx context.Context, q contentRepo.PageQuery) (*contentRepo.Page, error)
}

// PrefetchCache is an optional short-lived store holding a ready-made first page and the
// cursor of the page after it.
type PrefetchCache interface {
	GetCachedFeed(ctx context.Context) (*models.PrefetchedFeed, bool)
}

// PrefetchWriter is implemented by caches that accept a freshly loaded first page.
type PrefetchWriter interface {
	StoreFeed(ctx context.Context, feed models.PrefetchedFeed) error
}

// RealtimeSource delivers inserted published rows. The returned func releases the
// subscription; it is safe to call more than once.
type RealtimeSource interface {
	Subscribe(ctx context.Context) (<-chan models.ContentRecord, func(), error)
}

// FollowGraph answers follow questions for the following feed.
type FollowGraph interface {
	FollowingIDs(ctx context.Context, followerID string) ([]string, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
}

// Feed is the contract shared by both feed loaders.
type Feed interface {
	LoadInitial(ctx context.Context)
	LoadMore(ctx context.Context)
	Retry(ctx context.Context) error
	Refresh(ctx context.Context)
	AddNewPost(rec models.ContentRecord) (bool, error)
	State() State
}
