package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway on top of the Stripe API.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	log           *zap.Logger
}

var _ Gateway = (*StripeGateway)(nil)

// NewStripeGateway creates a gateway for the given secret key.
func NewStripeGateway(secretKey, webhookSecret string, log *zap.Logger) *StripeGateway {
	return &StripeGateway{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
		log:           log,
	}
}

func (g *StripeGateway) EnsureCustomer(ctx context.Context, customerID, email, name string) (string, error) {
	if customerID != "" {
		return customerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	customer, err := g.api.Customers.New(params)
	if err != nil {
		g.log.Error("failed to create stripe customer", zap.Error(err))
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	g.log.Info("stripe customer created", zap.String("customer_id", customer.ID))
	return customer.ID, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ProductName),
						Description: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: req.Metadata,
		},
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.log.Error("failed to create checkout session", zap.Error(err))
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	g.log.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.Int64("amount_cents", req.AmountCents))

	return fromStripeSession(session), nil
}

func (g *StripeGateway) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	return fromStripeSession(session), nil
}

func (g *StripeGateway) FindCheckoutSessionByPaymentIntent(ctx context.Context, paymentIntentID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := g.api.CheckoutSessions.List(params)
	if iter.Next() {
		return fromStripeSession(iter.CheckoutSession()), nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list checkout sessions: %w", err)
	}

	return nil, ErrSessionNotFound
}

func (g *StripeGateway) ExpireCheckoutSession(ctx context.Context, id string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx

	if _, err := g.api.CheckoutSessions.Expire(id, params); err != nil {
		return fmt.Errorf("failed to expire checkout session: %w", err)
	}

	g.log.Info("checkout session expired", zap.String("session_id", id))
	return nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		g.log.Warn("webhook signature verification failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return eventFromStripe(ev)
}
