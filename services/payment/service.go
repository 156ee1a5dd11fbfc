package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	subscriptionRepo "creatorhub/database/repository/subscription"
	"creatorhub/models"
	"creatorhub/services/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const (
	metaUserID         = "user_id"
	metaTier           = "tier"
	metaCreatorID      = "creator_id"
	metaSubscriptionID = "subscription_id"
	metaCustomerID     = "customer_id"
)

// PaymentService starts checkouts and applies their completion webhooks.
type PaymentService interface {
	CreateCheckout(ctx context.Context, viewerID, viewerEmail string, req models.CheckoutRequest) (*models.CheckoutSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)
}

// WebhookResult summarizes what a webhook delivery did.
type WebhookResult struct {
	EventID string
	Type    string
	Handled bool
	// Duplicate is set when the subscription had already been recorded by an earlier
	// delivery of the same checkout.
	Duplicate bool
	Record    *models.SubscriptionRecord
}

type Config struct {
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// DefaultPaymentService wires the processor to the user and subscription stores.
type DefaultPaymentService struct {
	cfg       Config
	processor CheckoutProcessor
	users     TierUpdater
	subs      SubscriptionStore
	queue     TaskEnqueuer
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService builds the service. queue may be nil, in which case no follow-up
// notification is scheduled.
func NewPaymentService(cfg Config, processor CheckoutProcessor, users TierUpdater, subs SubscriptionStore, queue TaskEnqueuer, logger *zap.Logger) *DefaultPaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultPaymentService{
		cfg:       cfg,
		processor: processor,
		users:     users,
		subs:      subs,
		queue:     queue,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *DefaultPaymentService) CreateCheckout(ctx context.Context, viewerID, viewerEmail string, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	if viewerID == "" {
		return nil, errors.New("checkout requires a signed-in viewer")
	}
	meta := map[string]string{
		metaUserID: viewerID,
		metaTier:   req.Tier,
	}
	if req.CreatorID != "" {
		meta[metaCreatorID] = req.CreatorID
	}

	sess, err := s.processor.CreateCheckoutSession(ctx, CheckoutParams{
		PriceID:     req.PriceID,
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
		ViewerEmail: viewerEmail,
		Metadata:    meta,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("checkout session created",
		zap.String("user", viewerID), zap.String("tier", req.Tier), zap.String("session", sess.SessionID))
	return sess, nil
}

// HandleWebhook authenticates a processor event and, for completed checkouts, grants the
// tier and records the subscription. Nothing is written unless the signature and the
// metadata both check out.
func (s *DefaultPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, &WebhookSignatureError{Reason: "missing signature"}
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, &WebhookSignatureError{Reason: "invalid signature", Err: err}
	}

	result := &WebhookResult{EventID: event.ID, Type: string(event.Type)}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		s.logger.Debug("ignoring webhook event", zap.String("type", result.Type), zap.String("event", event.ID))
		return result, nil
	}
	if event.Data == nil {
		return nil, &WebhookPayloadError{Err: errors.New("event has no data")}
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, &WebhookPayloadError{Err: fmt.Errorf("decode checkout session: %w", err)}
	}

	rec, err := subscriptionFromSession(&cs)
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.NewString()
	rec.Status = "active"
	rec.CreatedAt = s.now()

	if err := s.users.UpdateTier(ctx, rec.UserID, rec.Tier); err != nil {
		return nil, fmt.Errorf("grant tier: %w", err)
	}
	err = s.subs.Insert(ctx, rec)
	switch {
	case errors.Is(err, subscriptionRepo.ErrDuplicateSubscription):
		// Stripe redelivers until it sees a 2xx; the tier grant above is idempotent.
		s.logger.Info("subscription already recorded",
			zap.String("event", event.ID),
			zap.String("user", rec.UserID),
			zap.String("subscription", rec.StripeSubscriptionID))
		result.Duplicate = true
	case err != nil:
		return nil, fmt.Errorf("record subscription: %w", err)
	default:
		s.logger.Info("subscription activated",
			zap.String("event", event.ID),
			zap.String("user", rec.UserID),
			zap.String("tier", rec.Tier),
			zap.String("subscription", rec.StripeSubscriptionID))
	}

	s.enqueueActivated(ctx, rec)

	result.Handled = true
	result.Record = rec
	return result, nil
}

// subscriptionFromSession reads the checkout metadata, falling back to the session's own
// subscription and customer references.
func subscriptionFromSession(cs *stripe.CheckoutSession) (*models.SubscriptionRecord, error) {
	meta := cs.Metadata
	rec := &models.SubscriptionRecord{
		UserID:               meta[metaUserID],
		Tier:                 meta[metaTier],
		CreatorID:            meta[metaCreatorID],
		StripeSubscriptionID: meta[metaSubscriptionID],
		StripeCustomerID:     meta[metaCustomerID],
	}
	if rec.StripeSubscriptionID == "" && cs.Subscription != nil {
		rec.StripeSubscriptionID = cs.Subscription.ID
	}
	if rec.StripeCustomerID == "" && cs.Customer != nil {
		rec.StripeCustomerID = cs.Customer.ID
	}

	var missing []string
	if rec.UserID == "" {
		missing = append(missing, metaUserID)
	}
	if rec.Tier == "" {
		missing = append(missing, metaTier)
	}
	if len(missing) > 0 {
		return nil, &WebhookPayloadError{Missing: missing}
	}
	return rec, nil
}

func (s *DefaultPaymentService) enqueueActivated(ctx context.Context, rec *models.SubscriptionRecord) {
	if s.queue == nil {
		return
	}
	subID := rec.StripeSubscriptionID
	if subID == "" {
		subID = rec.ID
	}
	task, opts, err := tasks.NewSubscriptionActivatedTask(models.SubscriptionActivatedPayload{
		SubscriptionID: subID,
		UserID:         rec.UserID,
		CreatorID:      rec.CreatorID,
		Tier:           rec.Tier,
	})
	if err != nil {
		s.logger.Error("failed to build subscription task", zap.Error(err))
		return
	}
	if _, err := s.queue.EnqueueContext(ctx, task, opts...); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		s.logger.Warn("failed to enqueue subscription notification", zap.Error(err))
	}
}
