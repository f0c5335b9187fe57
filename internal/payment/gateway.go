// Package payment wraps the card processor behind a small Gateway interface.
package payment

import (
	"Launchpad-Backend/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
	ErrSessionNotFound  = errors.New("checkout session not found")
)

// Metadata keys attached to every checkout session.
const (
	MetaUserID   = "user_id"
	MetaCodeName = "code_name"
	MetaDuration = "duration"
)

// Event types the webhook acts on.
const (
	EventCheckoutCompleted      = "checkout.session.completed"
	EventCheckoutExpired        = "checkout.session.expired"
	EventCheckoutAsyncSucceeded = "checkout.session.async_payment_succeeded"
	EventCheckoutAsyncFailed    = "checkout.session.async_payment_failed"
	EventPaymentSucceeded       = "payment_intent.succeeded"
	EventPaymentFailed          = "payment_intent.payment_failed"
)

const (
	sessionStatusOpen        = "open"
	sessionPaymentStatusPaid = "paid"
)

// CheckoutRequest describes one placement purchase.
type CheckoutRequest struct {
	CustomerID  string
	ProductName string
	Description string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is the processor-side view of a checkout.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
	AmountTotal     int64
	Status          string
	PaymentStatus   string
	Metadata        map[string]string
}

// IsPaid reports whether the processor confirmed the payment.
func (s *CheckoutSession) IsPaid() bool {
	return s.PaymentStatus == sessionPaymentStatusPaid
}

// IsOpen reports whether the session can still be paid.
func (s *CheckoutSession) IsOpen() bool {
	return s.Status == sessionStatusOpen
}

// Event is a verified webhook notification reduced to what placements need.
type Event struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	// Outcome is empty for event types that carry no payment result.
	Outcome domain.PaymentStatus
}

// Gateway is the card processor used for placement checkout.
type Gateway interface {
	// EnsureCustomer returns customerID when set, otherwise creates a customer.
	EnsureCustomer(ctx context.Context, customerID, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	// FindCheckoutSessionByPaymentIntent returns ErrSessionNotFound when no session matches.
	FindCheckoutSessionByPaymentIntent(ctx context.Context, paymentIntentID string) (*CheckoutSession, error)
	ExpireCheckoutSession(ctx context.Context, id string) error
	// ParseWebhook verifies the signature and decodes the event.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

func fromStripeSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		AmountTotal:   s.AmountTotal,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out
}

// eventFromStripe maps a processor event to an Event.
func eventFromStripe(ev stripe.Event) (*Event, error) {
	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted, EventCheckoutExpired, EventCheckoutAsyncSucceeded, EventCheckoutAsyncFailed:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("%w: failed to decode checkout session: %v", ErrInvalidPayload, err)
		}
		out.SessionID = session.ID
		if session.PaymentIntent != nil {
			out.PaymentIntentID = session.PaymentIntent.ID
		}
		switch out.Type {
		case EventCheckoutCompleted:
			// delayed payment methods complete the session before the money arrives
			if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
				out.Outcome = domain.PaymentStatusPaid
			}
		case EventCheckoutAsyncSucceeded:
			out.Outcome = domain.PaymentStatusPaid
		default:
			out.Outcome = domain.PaymentStatusFailed
		}

	case EventPaymentSucceeded, EventPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: failed to decode payment intent: %v", ErrInvalidPayload, err)
		}
		out.PaymentIntentID = intent.ID
		if out.Type == EventPaymentSucceeded {
			out.Outcome = domain.PaymentStatusPaid
		} else {
			out.Outcome = domain.PaymentStatusFailed
		}
	}

	return out, nil
}
