package models

import "time"

// SubscriptionRecord is inserted when a checkout completes.
type SubscriptionRecord struct {
	ID                   string    `bson:"id" json:"id"`
	UserID               string    `bson:"user_id" json:"userId"`
	CreatorID            string    `bson:"creator_id,omitempty" json:"creatorId,omitempty"`
	Tier                 string    `bson:"tier" json:"tier"`
	StripeSubscriptionID string    `bson:"stripe_subscription_id,omitempty" json:"stripeSubscriptionId"`
	StripeCustomerID     string    `bson:"stripe_customer_id" json:"stripeCustomerId"`
	Status               string    `bson:"status" json:"status"`
	CreatedAt            time.Time `bson:"created_at" json:"createdAt"`
}

// CheckoutRequest is what a viewer sends to start a subscription checkout.
type CheckoutRequest struct {
	PriceID   string `json:"priceId" binding:"required"`
	Tier      string `json:"tier" binding:"required"`
	CreatorID string `json:"creatorId"`
}

// CheckoutSession is the processor's answer to a checkout request.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// SubscriptionActivatedPayload is the job payload sent after a completed checkout.
type SubscriptionActivatedPayload struct {
	SubscriptionID string `json:"subscriptionId"`
	UserID         string `json:"userId"`
	CreatorID      string `json:"creatorId"`
	Tier           string `json:"tier"`
}
