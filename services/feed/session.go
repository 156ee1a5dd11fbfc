package feed

import (
	"context"
	"sync"
	"time"

	"creatorhub/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionDeps are the collaborators shared by every session's loaders.
type SessionDeps struct {
	Source   ContentSource
	Follows  FollowGraph
	Realtime RealtimeSource
	// Prefetch returns the viewer-scoped prefetch cache, or nil for none.
	Prefetch func(viewerID string) PrefetchCache
	Logger   *zap.Logger
}

type SessionConfig struct {
	PageSize         int
	SuggestionStride int
	IdleTimeout      time.Duration
	Tiers            TierPolicy
}

// Update is pushed to stream listeners whenever one of a session's loaders changes.
type Update struct {
	Tab   Tab   `json:"tab"`
	State State `json:"state"`
}

// View is a loader state prepared for a client: tier gating applied and profile
// suggestions interleaved.
type View struct {
	SessionID string `json:"sessionId"`
	Tab       Tab    `json:"tab"`
	ActiveTab Tab    `json:"activeTab"`
	State
}

// Session is one viewer's live pair of feeds.
type Session struct {
	ID        string
	ViewerID  string
	CreatedAt time.Time

	coord  *Coordinator
	cancel context.CancelFunc
	cfg    SessionConfig

	mu         sync.Mutex
	viewerTier string
	lastSeen   time.Time
	listeners  map[chan Update]struct{}
	closed     bool
}

func (s *Session) Coordinator() *Coordinator {
	return s.coord
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SetViewerTier changes the tier used for gating, e.g. after a completed checkout.
func (s *Session) SetViewerTier(tier string) {
	s.mu.Lock()
	s.viewerTier = tier
	s.mu.Unlock()
}

func (s *Session) ViewerTier() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewerTier
}

// View renders tab's state. An empty tab means the active one.
func (s *Session) View(tab Tab) (View, error) {
	if tab == "" {
		tab = s.coord.ActiveTab()
	}
	loader, err := s.coord.Loader(tab)
	if err != nil {
		return View{}, err
	}
	return View{
		SessionID: s.ID,
		Tab:       tab,
		ActiveTab: s.coord.ActiveTab(),
		State:     s.render(loader.State()),
	}, nil
}

func (s *Session) render(st State) State {
	items := s.cfg.Tiers.Apply(st.Items, s.ViewerID, s.ViewerTier())
	st.Items = SuggestionInserter{Stride: s.cfg.SuggestionStride}.Insert(items, 0)
	return st
}

// Listen registers a stream listener. The returned func unregisters it.
func (s *Session) Listen() (<-chan Update, func()) {
	ch := make(chan Update, 8)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.listeners[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.listeners[ch]; ok {
				delete(s.listeners, ch)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
}

// publish fans an update out without blocking; slow listeners miss intermediate states.
func (s *Session) publish(tab Tab, st State) {
	u := Update{Tab: tab, State: s.render(st)}
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.listeners {
		select {
		case ch <- u:
		default:
		}
	}
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for ch := range s.listeners {
		close(ch)
	}
	s.listeners = nil
	s.mu.Unlock()

	s.coord.Close()
	s.cancel()
}

// SessionManager owns all live feed sessions.
type SessionManager struct {
	deps   SessionDeps
	cfg    SessionConfig
	logger *zap.Logger
	now    func() time.Time

	baseCtx context.Context

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates a registry whose sessions live at most as long as ctx.
func NewSessionManager(ctx context.Context, deps SessionDeps, cfg SessionConfig) *SessionManager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 15 * time.Minute
	}
	return &SessionManager{
		deps:     deps,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		baseCtx:  ctx,
		sessions: make(map[string]*Session),
	}
}

// Create builds both loaders for the viewer, opens their realtime subscriptions and loads
// the first page of each. An empty viewerID yields an anonymous session whose following
// tab stays empty.
func (m *SessionManager) Create(ctx context.Context, viewerID, viewerTier string) (*Session, error) {
	sessCtx, cancel := context.WithCancel(m.baseCtx)
	now := m.now()
	s := &Session{
		ID:         uuid.NewString(),
		ViewerID:   viewerID,
		CreatedAt:  now,
		cancel:     cancel,
		cfg:        m.cfg,
		viewerTier: viewerTier,
		lastSeen:   now,
		listeners:  make(map[chan Update]struct{}),
	}

	var cache PrefetchCache
	if m.deps.Prefetch != nil {
		cache = m.deps.Prefetch(viewerID)
	}
	logger := m.logger.With(zap.String("session", s.ID))

	forYou := NewFeedLoader(LoaderConfig{
		Name:     string(TabForYou),
		ViewerID: viewerID,
		PageSize: m.cfg.PageSize,
		Source:   m.deps.Source,
		Cache:    cache,
		Realtime: m.deps.Realtime,
		Logger:   logger,
		OnChange: func(st State) { s.publish(TabForYou, st) },
	})
	following := NewFollowingFeedLoader(LoaderConfig{
		Name:     string(TabFollowing),
		ViewerID: viewerID,
		PageSize: m.cfg.PageSize,
		Source:   m.deps.Source,
		Realtime: m.deps.Realtime,
		Logger:   logger,
		OnChange: func(st State) { s.publish(TabFollowing, st) },
	}, m.deps.Follows)
	s.coord = NewCoordinator(forYou, following)

	s.coord.Start(sessCtx)
	s.coord.LoadInitial(ctx)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	logger.Info("feed session opened", zap.String("viewer", viewerID))
	return s, nil
}

// Get returns the session if it exists and belongs to viewerID.
func (m *SessionManager) Get(id, viewerID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.ViewerID != viewerID {
		return nil, ErrSessionNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Close tears the session down and releases its realtime subscriptions.
func (m *SessionManager) Close(id, viewerID string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.ViewerID != viewerID {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	s.close()
	m.logger.Info("feed session closed", zap.String("session", id))
	return nil
}

// SessionsForViewer lists the viewer's live sessions.
func (m *SessionManager) SessionsForViewer(viewerID string) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Session
	for _, s := range m.sessions {
		if s.ViewerID == viewerID {
			out = append(out, s)
		}
	}
	return out
}

// Broadcast prepends rec to every session of viewerID, the way a freshly created post shows
// up for its author before the realtime echo arrives.
func (m *SessionManager) Broadcast(viewerID string, rec models.ContentRecord) int {
	added := 0
	for _, s := range m.SessionsForViewer(viewerID) {
		ok, err := s.coord.AddNewPost(rec)
		if err != nil {
			m.logger.Warn("broadcast to session failed", zap.String("session", s.ID), zap.Error(err))
			continue
		}
		if ok {
			added++
		}
	}
	return added
}

// UpdateViewerTier changes the gating tier on all of a viewer's sessions.
func (m *SessionManager) UpdateViewerTier(viewerID, tier string) {
	for _, s := range m.SessionsForViewer(viewerID) {
		s.SetViewerTier(tier)
	}
}

// Sweep closes sessions idle for longer than the configured timeout and returns how many
// were closed.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.close()
	}
	return len(stale)
}

// Len is the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll shuts every session down.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.close()
	}
}
