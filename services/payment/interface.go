package payment

import (
	"context"

	"creatorhub/models"

	"github.com/hibiken/asynq"
)

// CheckoutProcessor opens hosted checkout pages with the payment processor.
type CheckoutProcessor interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutParams) (*models.CheckoutSession, error)
}

// CheckoutParams describes one subscription checkout.
type CheckoutParams struct {
	PriceID     string
	SuccessURL  string
	CancelURL   string
	ViewerEmail string
	Metadata    map[string]string
}

// TierUpdater grants a tier to a user.
type TierUpdater interface {
	UpdateTier(ctx context.Context, userID, tier string) error
}

// SubscriptionStore records completed subscriptions.
type SubscriptionStore interface {
	Insert(ctx context.Context, rec *models.SubscriptionRecord) error
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
