package feed

import (
	"context"
	"errors"
	"sync"

	contentRepo "creatorhub/database/repository/content"
	"creatorhub/models"

	"go.uber.org/zap"
)

// Status is the loader's position in its state machine.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

type operation int

const (
	opInitial operation = iota
	opMore
)

// State is a point-in-time copy of a loader.
type State struct {
	Items      []models.ContentItem `json:"items"`
	Status     Status               `json:"status"`
	Loading    bool                 `json:"loading"`
	HasMore    bool                 `json:"hasMore"`
	Cursor     string               `json:"cursor,omitempty"`
	Error      string               `json:"error,omitempty"`
	RetryCount int                  `json:"retryCount"`
	CanRetry   bool                 `json:"canRetry"`
	Err        error                `json:"-"`
}

// LoaderConfig wires a loader to its collaborators. Cache, Realtime and OnChange are optional.
type LoaderConfig struct {
	Name     string
	ViewerID string
	PageSize int
	Source   ContentSource
	Cache    PrefetchCache
	Realtime RealtimeSource
	Logger   *zap.Logger
	OnChange func(State)
}

// fetchHook runs before every store call; an error aborts the fetch.
type fetchHook func(ctx context.Context) error

// pageFilter narrows a fetched page before it is transformed.
type pageFilter func(ctx context.Context, records []models.ContentRecord) ([]models.ContentRecord, error)

// eventGate decides whether a realtime insert may be prepended.
type eventGate func(ctx context.Context, rec models.ContentRecord) bool

// FeedLoader owns one cursor-paginated feed: its items, cursor, loading guard, retry
// budget and realtime subscription. All methods are safe for concurrent use.
type FeedLoader struct {
	cfg    LoaderConfig
	logger  *zap.Logger
	prepare fetchHook
	filter  pageFilter
	gate    eventGate

	mu         sync.Mutex
	status     Status
	items      []models.ContentItem
	ids        map[string]struct{}
	hasMore    bool
	cursor     string
	err        error
	retryCount int
	lastOp     operation
	disabled   bool
	closed     bool

	starting     bool
	stopRealtime func()
	realtimeDone chan struct{}
}

// NewFeedLoader creates an idle loader for the general feed.
func NewFeedLoader(cfg LoaderConfig) *FeedLoader {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "feed"
	}
	return &FeedLoader{
		cfg:     cfg,
		logger:  logger.With(zap.String("feed", cfg.Name), zap.String("viewer", cfg.ViewerID)),
		status:  StatusIdle,
		ids:     make(map[string]struct{}),
		hasMore: true,
	}
}

// State returns a copy of the loader's current state.
func (l *FeedLoader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *FeedLoader) snapshotLocked() State {
	items := make([]models.ContentItem, len(l.items))
	copy(items, l.items)

	st := State{
		Items:      items,
		Status:     l.status,
		Loading:    l.status == StatusLoading,
		HasMore:    l.hasMore,
		Cursor:     l.cursor,
		RetryCount: l.retryCount,
		CanRetry:   !l.disabled && l.status == StatusFailed && l.retryCount < MaxRetries,
		Err:        l.err,
	}
	if l.err != nil {
		st.Error = l.err.Error()
	}
	return st
}

func (l *FeedLoader) notify() {
	if l.cfg.OnChange == nil {
		return
	}
	l.cfg.OnChange(l.State())
}

// beginLocked claims the loading guard. It must run before any I/O so that a second
// caller arriving mid-fetch sees the loader busy and returns.
func (l *FeedLoader) beginLocked(op operation, retry bool) bool {
	if l.disabled || l.closed || l.status == StatusLoading {
		return false
	}
	l.status = StatusLoading
	l.lastOp = op
	if !retry {
		l.err = nil
	}
	return true
}

// LoadInitial replaces the list with the first page. A populated prefetch cache
// short-circuits the store call. Calls made while a fetch is in flight are ignored.
func (l *FeedLoader) LoadInitial(ctx context.Context) {
	l.mu.Lock()
	if !l.beginLocked(opInitial, false) {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()
	l.notify()

	if l.loadFromCache(ctx) {
		return
	}
	l.fetchInitial(ctx, false)
}

// Refresh discards everything, restores the retry budget and loads the first page from
// the store, bypassing the prefetch cache.
func (l *FeedLoader) Refresh(ctx context.Context) {
	l.mu.Lock()
	if l.disabled || l.closed || l.status == StatusLoading {
		l.mu.Unlock()
		return
	}
	l.items = nil
	l.ids = make(map[string]struct{})
	l.cursor = ""
	l.hasMore = true
	l.retryCount = 0
	l.beginLocked(opInitial, false)
	l.mu.Unlock()
	l.notify()

	l.fetchInitial(ctx, false)
}

// LoadMore appends the page after the current cursor. It does nothing while a fetch is in
// flight or once the store has reported no more rows.
func (l *FeedLoader) LoadMore(ctx context.Context) {
	l.mu.Lock()
	if !l.hasMore || !l.beginLocked(opMore, false) {
		l.mu.Unlock()
		return
	}
	cursor := l.cursor
	l.mu.Unlock()
	l.notify()

	l.fetchMore(ctx, cursor, false)
}

// Retry re-issues the operation that failed last: the first page after a failed initial
// load, or the same page (same cursor) after a failed LoadMore. Each call spends one unit
// of the budget; once MaxRetries retries have failed in a row it returns ErrRetryExhausted.
func (l *FeedLoader) Retry(ctx context.Context) error {
	l.mu.Lock()
	if l.disabled || l.closed || l.status != StatusFailed {
		l.mu.Unlock()
		return nil
	}
	if l.retryCount >= MaxRetries {
		l.mu.Unlock()
		return ErrRetryExhausted
	}
	l.retryCount++
	op := l.lastOp
	cursor := l.cursor
	l.beginLocked(op, true)
	l.mu.Unlock()
	l.notify()

	if op == opMore {
		l.fetchMore(ctx, cursor, true)
	} else {
		l.fetchInitial(ctx, true)
	}
	return nil
}

func (l *FeedLoader) loadFromCache(ctx context.Context) bool {
	if l.cfg.Cache == nil {
		return false
	}
	cached, ok := l.cfg.Cache.GetCachedFeed(ctx)
	if !ok || cached == nil || len(cached.Items) == 0 {
		return false
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return true
	}
	l.items = nil
	l.ids = make(map[string]struct{})
	l.appendUniqueLocked(cached.Items)
	// Paging resumes after the cached page; newer rows arrive through refresh or realtime.
	l.cursor = cached.NextCursor
	l.hasMore = cached.HasMore
	l.succeedLocked()
	l.mu.Unlock()

	l.logger.Debug("feed served from prefetch cache",
		zap.Int("items", len(cached.Items)), zap.String("cursor", cached.NextCursor))
	l.notify()
	return true
}

func (l *FeedLoader) fetchInitial(ctx context.Context, retry bool) {
	page, items, err := l.fetch(ctx, "")

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if err != nil {
		l.failLocked(err)
		l.mu.Unlock()
		l.logger.Warn("initial feed load failed", zap.Error(err), zap.Bool("retry", retry))
		l.notify()
		return
	}
	l.items = nil
	l.ids = make(map[string]struct{})
	l.appendUniqueLocked(items)
	l.cursor = page.NextCursor
	l.hasMore = page.HasMore
	l.succeedLocked()
	l.mu.Unlock()
	l.notify()

	if w, ok := l.cfg.Cache.(PrefetchWriter); ok && len(items) > 0 {
		snapshot := models.PrefetchedFeed{Items: items, NextCursor: page.NextCursor, HasMore: page.HasMore}
		if err := w.StoreFeed(ctx, snapshot); err != nil {
			l.logger.Warn("failed to store prefetch feed", zap.Error(err))
		}
	}
}

func (l *FeedLoader) fetchMore(ctx context.Context, cursor string, retry bool) {
	page, items, err := l.fetch(ctx, cursor)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if err != nil {
		// The cursor is left untouched so the next attempt asks for the same page.
		l.failLocked(err)
		l.mu.Unlock()
		l.logger.Warn("feed load more failed", zap.Error(err), zap.String("cursor", cursor), zap.Bool("retry", retry))
		l.notify()
		return
	}
	l.appendUniqueLocked(items)
	l.cursor = page.NextCursor
	l.hasMore = page.HasMore
	l.succeedLocked()
	l.mu.Unlock()
	l.notify()
}

// fetch runs the prepare hook, performs the store call, applies the page filter and
// transforms the rows.
func (l *FeedLoader) fetch(ctx context.Context, cursor string) (*contentRepo.Page, []models.ContentItem, error) {
	if l.prepare != nil {
		if err := l.prepare(ctx); err != nil {
			return nil, nil, err
		}
	}
	page, err := l.cfg.Source.FetchPage(ctx, contentRepo.PageQuery{
		Cursor:   cursor,
		PageSize: l.cfg.PageSize,
		ViewerID: l.cfg.ViewerID,
	})
	if err != nil {
		return nil, nil, &NetworkError{Op: "fetch feed page", Err: err}
	}

	records := page.Records
	if l.filter != nil {
		records, err = l.filter(ctx, records)
		if err != nil {
			return nil, nil, err
		}
	}
	return page, l.transformAll(records), nil
}

// transformAll maps rows, skipping those the transformer rejects.
func (l *FeedLoader) transformAll(records []models.ContentRecord) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(records))
	for _, rec := range records {
		item, err := Transform(rec)
		if err != nil {
			l.logger.Error("skipping unmappable record", zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items
}

func (l *FeedLoader) appendUniqueLocked(items []models.ContentItem) {
	for _, item := range items {
		if _, dup := l.ids[item.ID]; dup {
			continue
		}
		l.ids[item.ID] = struct{}{}
		l.items = append(l.items, item)
	}
}

func (l *FeedLoader) succeedLocked() {
	l.status = StatusLoaded
	l.err = nil
	l.retryCount = 0
}

// failLocked leaves retryCount alone; only Retry charges the budget.
func (l *FeedLoader) failLocked(err error) {
	l.status = StatusFailed
	l.err = err
}

// AddNewPost transforms rec and puts it at the head of the list unless an item with the
// same id is already present. Direct inserts and realtime pushes both come through here.
func (l *FeedLoader) AddNewPost(rec models.ContentRecord) (bool, error) {
	item, err := Transform(rec)
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	if l.disabled || l.closed {
		l.mu.Unlock()
		return false, nil
	}
	if _, dup := l.ids[item.ID]; dup {
		l.mu.Unlock()
		return false, nil
	}
	l.ids[item.ID] = struct{}{}
	l.items = append([]models.ContentItem{item}, l.items...)
	l.mu.Unlock()

	l.notify()
	return true, nil
}

// Start opens the realtime subscription. Failing to subscribe is logged; the feed keeps
// working through explicit loads.
func (l *FeedLoader) Start(ctx context.Context) {
	if l.cfg.Realtime == nil {
		return
	}
	l.mu.Lock()
	if l.disabled || l.closed || l.starting || l.stopRealtime != nil {
		l.mu.Unlock()
		return
	}
	// The claim holds across Subscribe so a concurrent Start cannot open a second one.
	l.starting = true
	l.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	events, unsubscribe, err := l.cfg.Realtime.Subscribe(subCtx)
	if err != nil {
		cancel()
		l.mu.Lock()
		l.starting = false
		l.mu.Unlock()
		l.logger.Warn("realtime subscription failed", zap.Error(err))
		return
	}

	done := make(chan struct{})
	l.mu.Lock()
	l.starting = false
	if l.closed {
		l.mu.Unlock()
		cancel()
		unsubscribe()
		return
	}
	l.stopRealtime = func() {
		cancel()
		unsubscribe()
	}
	l.realtimeDone = done
	l.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-subCtx.Done():
				return
			case rec, ok := <-events:
				if !ok {
					l.logger.Info("realtime channel closed")
					return
				}
				l.handleRealtime(subCtx, rec)
			}
		}
	}()
}

func (l *FeedLoader) handleRealtime(ctx context.Context, rec models.ContentRecord) {
	if l.gate != nil && !l.gate(ctx, rec) {
		return
	}
	if _, err := l.AddNewPost(rec); err != nil {
		var mapErr *MappingError
		if errors.As(err, &mapErr) {
			l.logger.Error("dropping unmappable realtime record", zap.Error(err))
			return
		}
		l.logger.Warn("realtime insert failed", zap.Error(err))
	}
}

// Close releases the realtime subscription and stops applying results of in-flight
// fetches. It is idempotent.
func (l *FeedLoader) Close() {
	l.mu.Lock()
	l.closed = true
	stop, done := l.stopRealtime, l.realtimeDone
	l.stopRealtime, l.realtimeDone = nil, nil
	l.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
}
