package payment

import (
	"context"
	"fmt"

	"creatorhub/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// StripeProcessor implements CheckoutProcessor with Stripe Checkout in subscription mode.
// stripe.Key must be set before use.
type StripeProcessor struct{}

func NewStripeProcessor() *StripeProcessor {
	return &StripeProcessor{}
}

func (p *StripeProcessor) CreateCheckoutSession(ctx context.Context, req CheckoutParams) (*models.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata:   req.Metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: req.Metadata,
		},
	}
	if req.ViewerEmail != "" {
		params.CustomerEmail = stripe.String(req.ViewerEmail)
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}
	return &models.CheckoutSession{SessionID: s.ID, URL: s.URL}, nil
}
