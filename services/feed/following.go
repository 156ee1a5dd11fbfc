package feed

import (
	"context"
	"sync"

	"creatorhub/models"

	"go.uber.org/zap"
)

// FollowingFeedLoader narrows the general feed to creators the viewer follows.
//
// Pages are filtered after they are fetched, so a page can come back short or empty
// while HasMore and the cursor still describe the unfiltered page.
type FollowingFeedLoader struct {
	*FeedLoader

	follows FollowGraph

	setMu     sync.RWMutex
	following map[string]struct{}
	loaded    bool
}

// NewFollowingFeedLoader builds a following loader. With no viewer the loader is
// permanently loaded and empty and every operation is a no-op.
func NewFollowingFeedLoader(cfg LoaderConfig, follows FollowGraph) *FollowingFeedLoader {
	if cfg.Name == "" {
		cfg.Name = "following"
	}
	fl := &FollowingFeedLoader{
		FeedLoader: NewFeedLoader(cfg),
		follows:    follows,
		following:  make(map[string]struct{}),
	}

	if cfg.ViewerID == "" || follows == nil {
		fl.disabled = true
		fl.status = StatusLoaded
		fl.hasMore = false
		return fl
	}

	fl.prepare = fl.loadFollowing
	fl.filter = fl.filterPage
	fl.gate = fl.acceptEvent
	return fl
}

// FollowingSet returns the creator ids the loader filters by, once known.
func (fl *FollowingFeedLoader) FollowingSet() []string {
	fl.setMu.RLock()
	defer fl.setMu.RUnlock()
	ids := make([]string, 0, len(fl.following))
	for id := range fl.following {
		ids = append(ids, id)
	}
	return ids
}

// ensureFollowing loads the follow set the first time it is needed. A failed lookup is
// not cached so the next load tries again.
func (fl *FollowingFeedLoader) ensureFollowing(ctx context.Context) (map[string]struct{}, error) {
	fl.setMu.RLock()
	if fl.loaded {
		set := fl.following
		fl.setMu.RUnlock()
		return set, nil
	}
	fl.setMu.RUnlock()

	ids, err := fl.follows.FollowingIDs(ctx, fl.cfg.ViewerID)
	if err != nil {
		return nil, &NetworkError{Op: "load following set", Err: err}
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	fl.setMu.Lock()
	fl.following = set
	fl.loaded = true
	fl.setMu.Unlock()

	fl.logger.Debug("following set loaded", zap.Int("creators", len(set)))
	return set, nil
}

// loadFollowing makes sure the follow set is known before the first content fetch.
func (fl *FollowingFeedLoader) loadFollowing(ctx context.Context) error {
	_, err := fl.ensureFollowing(ctx)
	return err
}

func (fl *FollowingFeedLoader) filterPage(ctx context.Context, records []models.ContentRecord) ([]models.ContentRecord, error) {
	set, err := fl.ensureFollowing(ctx)
	if err != nil {
		return nil, err
	}
	kept := make([]models.ContentRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := set[rec.CreatorID]; ok {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}

// acceptEvent asks the follow graph directly so that follows made after the set was
// loaded still reach the feed. A confirmed creator joins the in-memory set, which keeps
// later pages and AddNewPost in agreement with what realtime showed.
func (fl *FollowingFeedLoader) acceptEvent(ctx context.Context, rec models.ContentRecord) bool {
	ok, err := fl.follows.IsFollowing(ctx, fl.cfg.ViewerID, rec.CreatorID)
	if err != nil {
		fl.logger.Warn("follow check failed; dropping realtime item",
			zap.String("creator", rec.CreatorID), zap.Error(err))
		return false
	}
	if ok {
		fl.rememberFollow(rec.CreatorID)
	}
	return ok
}

// rememberFollow adds creatorID to a loaded follow set. The set is replaced rather than
// mutated because filterPage ranges over it without holding setMu.
func (fl *FollowingFeedLoader) rememberFollow(creatorID string) {
	fl.setMu.Lock()
	defer fl.setMu.Unlock()
	if !fl.loaded {
		return
	}
	if _, ok := fl.following[creatorID]; ok {
		return
	}
	set := make(map[string]struct{}, len(fl.following)+1)
	for id := range fl.following {
		set[id] = struct{}{}
	}
	set[creatorID] = struct{}{}
	fl.following = set
}

// AddNewPost only accepts posts by creators in the in-memory follow set. It does no I/O,
// so a follow made after the set loaded is only seen here once a realtime event from that
// creator has been confirmed, or after the follow set is reloaded.
func (fl *FollowingFeedLoader) AddNewPost(rec models.ContentRecord) (bool, error) {
	if fl.disabled {
		return false, nil
	}
	fl.setMu.RLock()
	_, ok := fl.following[rec.CreatorID]
	fl.setMu.RUnlock()
	if !ok {
		return false, nil
	}
	return fl.FeedLoader.AddNewPost(rec)
}
