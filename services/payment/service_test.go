package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	subscriptionRepo "creatorhub/database/repository/subscription"
	"creatorhub/models"
	"creatorhub/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testSecret = "whsec_test"

type fakeTiers struct {
	calls [][2]string
	err   error
}

func (f *fakeTiers) UpdateTier(_ context.Context, userID, tier string) error {
	f.calls = append(f.calls, [2]string{userID, tier})
	return f.err
}

type fakeSubs struct {
	records []*models.SubscriptionRecord
}

// Insert enforces the same uniqueness on the Stripe subscription id as the Mongo index.
func (f *fakeSubs) Insert(_ context.Context, rec *models.SubscriptionRecord) error {
	for _, r := range f.records {
		if rec.StripeSubscriptionID != "" && r.StripeSubscriptionID == rec.StripeSubscriptionID {
			return fmt.Errorf("subscription %s: %w", rec.StripeSubscriptionID, subscriptionRepo.ErrDuplicateSubscription)
		}
	}
	f.records = append(f.records, rec)
	return nil
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, f.err
}

type fakeProcessor struct {
	params CheckoutParams
}

func (f *fakeProcessor) CreateCheckoutSession(_ context.Context, p CheckoutParams) (*models.CheckoutSession, error) {
	f.params = p
	return &models.CheckoutSession{SessionID: "cs_1", URL: "https://checkout.test/cs_1"}, nil
}

func newTestService() (*DefaultPaymentService, *fakeTiers, *fakeSubs, *fakeQueue) {
	tiers, subs, queue := &fakeTiers{}, &fakeSubs{}, &fakeQueue{}
	svc := NewPaymentService(Config{WebhookSecret: testSecret}, &fakeProcessor{}, tiers, subs, queue, nil)
	return svc, tiers, subs, queue
}

func checkoutEvent(metadata string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_1",
    "object": "checkout.session",
    "subscription": "sub_123",
    "customer": "cus_9",
    "metadata": %s
  }}
}`, metadata))
}

func sign(payload []byte) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
	}).Header
}

func TestWebhookGrantsTier(t *testing.T) {
	svc, tiers, subs, queue := newTestService()
	payload := checkoutEvent(`{"user_id": "u1", "tier": "premium", "creator_id": "c1"}`)

	res, err := svc.HandleWebhook(context.Background(), payload, sign(payload))
	require.NoError(t, err)

	assert.True(t, res.Handled)
	assert.Equal(t, "checkout.session.completed", res.Type)
	assert.Equal(t, [][2]string{{"u1", "premium"}}, tiers.calls)
	require.Len(t, subs.records, 1)
	rec := subs.records[0]
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "c1", rec.CreatorID)
	assert.Equal(t, "sub_123", rec.StripeSubscriptionID)
	assert.Equal(t, "cus_9", rec.StripeCustomerID)
	assert.Equal(t, "active", rec.Status)
	assert.NotEmpty(t, rec.ID)

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, tasks.TypeSubscriptionActivated, queue.tasks[0].Type())
	p, err := tasks.ParseSubscriptionActivated(queue.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, "sub_123", p.SubscriptionID)
}

func TestWebhookMissingMetadataWritesNothing(t *testing.T) {
	svc, tiers, subs, queue := newTestService()
	payload := checkoutEvent(`{"tier": "premium"}`)

	_, err := svc.HandleWebhook(context.Background(), payload, sign(payload))

	var payloadErr *WebhookPayloadError
	require.ErrorAs(t, err, &payloadErr)
	assert.Equal(t, []string{"user_id"}, payloadErr.Missing)
	assert.Empty(t, tiers.calls)
	assert.Empty(t, subs.records)
	assert.Empty(t, queue.tasks)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc, tiers, _, _ := newTestService()
	payload := checkoutEvent(`{"user_id": "u1", "tier": "premium"}`)

	_, err := svc.HandleWebhook(context.Background(), payload, "")
	var sigErr *WebhookSignatureError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "missing signature", sigErr.Reason)

	_, err = svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, "invalid signature", sigErr.Reason)

	tampered := checkoutEvent(`{"user_id": "u2", "tier": "premium"}`)
	_, err = svc.HandleWebhook(context.Background(), tampered, sign(payload))
	require.ErrorAs(t, err, &sigErr)

	assert.Empty(t, tiers.calls)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	svc, tiers, _, _ := newTestService()
	payload := []byte(`{"id": "evt_2", "object": "event", "type": "invoice.paid", "data": {"object": {}}}`)

	res, err := svc.HandleWebhook(context.Background(), payload, sign(payload))
	require.NoError(t, err)
	assert.False(t, res.Handled)
	assert.Equal(t, "invoice.paid", res.Type)
	assert.Empty(t, tiers.calls)
}

func TestWebhookDuplicateTaskIsNotAnError(t *testing.T) {
	svc, _, subs, queue := newTestService()
	queue.err = asynq.ErrTaskIDConflict
	payload := checkoutEvent(`{"user_id": "u1", "tier": "basic"}`)

	res, err := svc.HandleWebhook(context.Background(), payload, sign(payload))
	require.NoError(t, err)
	assert.True(t, res.Handled)
	assert.Len(t, subs.records, 1)
}

func TestWebhookRedeliveryIsAcknowledged(t *testing.T) {
	svc, tiers, subs, queue := newTestService()
	payload := checkoutEvent(`{"user_id": "u1", "tier": "premium"}`)

	first, err := svc.HandleWebhook(context.Background(), payload, sign(payload))
	require.NoError(t, err)
	assert.True(t, first.Handled)
	assert.False(t, first.Duplicate)

	again, err := svc.HandleWebhook(context.Background(), payload, sign(payload))
	require.NoError(t, err)
	assert.True(t, again.Handled)
	assert.True(t, again.Duplicate)

	assert.Len(t, subs.records, 1)
	assert.Equal(t, [][2]string{{"u1", "premium"}, {"u1", "premium"}}, tiers.calls)
	// Both deliveries enqueue under the same task id, so asynq keeps one.
	require.Len(t, queue.tasks, 2)
	p1, err := tasks.ParseSubscriptionActivated(queue.tasks[0])
	require.NoError(t, err)
	p2, err := tasks.ParseSubscriptionActivated(queue.tasks[1])
	require.NoError(t, err)
	assert.Equal(t, p1.SubscriptionID, p2.SubscriptionID)
}

func TestWebhookTierUpdateFailure(t *testing.T) {
	svc, tiers, subs, _ := newTestService()
	tiers.err = errors.New("mongo down")
	payload := checkoutEvent(`{"user_id": "u1", "tier": "basic"}`)

	_, err := svc.HandleWebhook(context.Background(), payload, sign(payload))
	require.Error(t, err)
	assert.ErrorIs(t, err, tiers.err)
	assert.Empty(t, subs.records)
}

func TestCreateCheckoutCarriesMetadata(t *testing.T) {
	proc := &fakeProcessor{}
	svc := NewPaymentService(Config{SuccessURL: "https://app/ok", CancelURL: "https://app/cancel"}, proc, &fakeTiers{}, &fakeSubs{}, nil, nil)

	sess, err := svc.CreateCheckout(context.Background(), "u1", "u1@example.com",
		models.CheckoutRequest{PriceID: "price_1", Tier: "premium", CreatorID: "c1"})
	require.NoError(t, err)

	assert.Equal(t, "cs_1", sess.SessionID)
	assert.Equal(t, "price_1", proc.params.PriceID)
	assert.Equal(t, "https://app/ok", proc.params.SuccessURL)
	assert.Equal(t, map[string]string{"user_id": "u1", "tier": "premium", "creator_id": "c1"}, proc.params.Metadata)

	_, err = svc.CreateCheckout(context.Background(), "", "", models.CheckoutRequest{PriceID: "price_1", Tier: "premium"})
	assert.Error(t, err)
}
