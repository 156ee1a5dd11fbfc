package cron

import (
	"context"
	"errors"
	"testing"

	"creatorhub/models"
	"creatorhub/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubNotifier struct {
	got []models.SubscriptionActivatedPayload
	err error
}

func (s *stubNotifier) SendUserPushNotification(context.Context, string, string, string, map[string]string) error {
	return nil
}

func (s *stubNotifier) NotifySubscriptionActivated(_ context.Context, p models.SubscriptionActivatedPayload) error {
	s.got = append(s.got, p)
	return s.err
}

func TestSubscriptionHandlerNotifies(t *testing.T) {
	n := &stubNotifier{}
	handler := handleSubscriptionActivated(n, zap.NewNop())

	task, _, err := tasks.NewSubscriptionActivatedTask(models.SubscriptionActivatedPayload{
		SubscriptionID: "sub_1", UserID: "u1", Tier: "premium",
	})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Len(t, n.got, 1)
	assert.Equal(t, "sub_1", n.got[0].SubscriptionID)
}

func TestSubscriptionHandlerSkipsBadPayload(t *testing.T) {
	handler := handleSubscriptionActivated(&stubNotifier{}, zap.NewNop())

	err := handler(context.Background(), asynq.NewTask(tasks.TypeSubscriptionActivated, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSubscriptionHandlerRetriesOnSendFailure(t *testing.T) {
	n := &stubNotifier{err: errors.New("fcm down")}
	handler := handleSubscriptionActivated(n, zap.NewNop())

	task, _, err := tasks.NewSubscriptionActivatedTask(models.SubscriptionActivatedPayload{SubscriptionID: "sub_1", UserID: "u1"})
	require.NoError(t, err)

	assert.ErrorIs(t, handler(context.Background(), task), n.err)
}
