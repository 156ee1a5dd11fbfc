package realtime

import (
	"context"
	"testing"
	"time"

	"creatorhub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan models.ContentRecord) models.ContentRecord {
	t.Helper()
	select {
	case rec := <-ch:
		return rec
	case <-time.After(time.Second):
		t.Fatal("no record received")
		return models.ContentRecord{}
	}
}

func TestHubFansOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(nil)
	source := make(chan models.ContentRecord)
	go h.Run(ctx, source)

	a, stopA, err := h.Subscribe(ctx)
	require.NoError(t, err)
	defer stopA()
	b, stopB, err := h.Subscribe(ctx)
	require.NoError(t, err)
	defer stopB()
	assert.Equal(t, 2, h.Subscribers())

	source <- models.ContentRecord{ID: "p1"}

	assert.Equal(t, "p1", recv(t, a).ID)
	assert.Equal(t, "p1", recv(t, b).ID)
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub(nil)
	ch, stop, err := h.Subscribe(context.Background())
	require.NoError(t, err)

	stop()
	stop()

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, h.Subscribers())
}

func TestHubSubscriptionEndsWithContext(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	_, _, err := h.Subscribe(ctx)
	require.NoError(t, err)

	cancel()
	assert.Eventually(t, func() bool { return h.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubDropsForLaggingSubscriber(t *testing.T) {
	h := NewHub(nil)
	ch, stop, err := h.Subscribe(context.Background())
	require.NoError(t, err)
	defer stop()

	for i := 0; i < subscriberBuffer+5; i++ {
		h.broadcast(models.ContentRecord{ID: "x"})
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHubClosesSubscribersWhenSourceEnds(t *testing.T) {
	h := NewHub(nil)
	ch, _, err := h.Subscribe(context.Background())
	require.NoError(t, err)

	source := make(chan models.ContentRecord)
	close(source)
	h.Run(context.Background(), source)

	_, open := <-ch
	assert.False(t, open)

	_, _, err = h.Subscribe(context.Background())
	assert.ErrorIs(t, err, ErrHubClosed)
}
