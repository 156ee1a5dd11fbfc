package realtime

import (
	"context"
	"errors"
	"sync"

	"creatorhub/models"

	"go.uber.org/zap"
)

// ErrHubClosed is returned when subscribing to a hub that has stopped.
var ErrHubClosed = errors.New("realtime hub closed")

const subscriberBuffer = 32

// Hub fans one stream of published inserts out to many feed subscribers, so all sessions
// share a single change stream on the content collection.
type Hub struct {
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[int]chan models.ContentRecord
	nextID int
	closed bool
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{logger: logger, subs: make(map[int]chan models.ContentRecord)}
}

// Run forwards records from source until ctx is done or source closes, then closes every
// subscriber channel.
func (h *Hub) Run(ctx context.Context, source <-chan models.ContentRecord) {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-source:
			if !ok {
				h.logger.Info("realtime source closed")
				return
			}
			h.broadcast(rec)
		}
	}
}

// broadcast never blocks on a slow subscriber; a full buffer drops the event for it.
func (h *Hub) broadcast(rec models.ContentRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- rec:
		default:
			h.logger.Warn("realtime subscriber lagging, event dropped",
				zap.Int("subscriber", id), zap.String("record", rec.ID))
		}
	}
}

// Subscribe registers a subscriber. The subscription ends when ctx is done or the
// returned func is called, whichever comes first.
func (h *Hub) Subscribe(ctx context.Context) (<-chan models.ContentRecord, func(), error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, nil, ErrHubClosed
	}
	id := h.nextID
	h.nextID++
	ch := make(chan models.ContentRecord, subscriberBuffer)
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() { h.remove(id) })
	}
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	return ch, unsubscribe, nil
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Subscribers is the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
