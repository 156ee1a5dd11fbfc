package subscriptionRepo

import (
	"context"

	"creatorhub/models"
)

// SubscriptionRepository stores subscription records created by completed checkouts.
type SubscriptionRepository interface {
	// Insert fails with ErrDuplicateSubscription when the Stripe subscription is already stored.
	Insert(ctx context.Context, rec *models.SubscriptionRecord) error
}
