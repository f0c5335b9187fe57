package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// TestGateway is an in-process Gateway for local runs and tests. No money
// moves; sessions live in memory.
type TestGateway struct {
	mu            sync.Mutex
	sessions      map[string]*CheckoutSession
	customers     map[string]string
	webhookSecret string
	autoComplete  bool
	log           *zap.Logger

	// Fail makes the next calls return this error when set.
	Fail error
}

var _ Gateway = (*TestGateway)(nil)

// NewTestGateway creates a test gateway. With autoComplete every new session
// is reported as paid, which mirrors a buyer finishing checkout at once.
func NewTestGateway(webhookSecret string, autoComplete bool, log *zap.Logger) *TestGateway {
	return &TestGateway{
		sessions:      make(map[string]*CheckoutSession),
		customers:     make(map[string]string),
		webhookSecret: webhookSecret,
		autoComplete:  autoComplete,
		log:           log,
	}
}

func (g *TestGateway) EnsureCustomer(_ context.Context, customerID, email, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Fail != nil {
		return "", g.Fail
	}
	if customerID != "" {
		return customerID, nil
	}
	if id, ok := g.customers[email]; ok {
		return id, nil
	}

	id := "cus_test_" + compactID()
	g.customers[email] = id
	return id, nil
}

func (g *TestGateway) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Fail != nil {
		return nil, g.Fail
	}

	id := "cs_test_" + compactID()
	session := &CheckoutSession{
		ID:              id,
		URL:             strings.ReplaceAll(req.SuccessURL, "{CHECKOUT_SESSION_ID}", id),
		PaymentIntentID: "pi_test_" + compactID(),
		AmountTotal:     req.AmountCents,
		Status:          sessionStatusOpen,
		PaymentStatus:   "unpaid",
		Metadata:        req.Metadata,
	}
	if g.autoComplete {
		session.Status = "complete"
		session.PaymentStatus = sessionPaymentStatusPaid
	}
	g.sessions[id] = session

	g.log.Info("test checkout session created",
		zap.String("session_id", id),
		zap.Int64("amount_cents", req.AmountCents),
		zap.Bool("test_mode", true))

	out := *session
	return &out, nil
}

func (g *TestGateway) GetCheckoutSession(_ context.Context, id string) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Fail != nil {
		return nil, g.Fail
	}
	session, ok := g.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := *session
	return &out, nil
}

func (g *TestGateway) FindCheckoutSessionByPaymentIntent(_ context.Context, paymentIntentID string) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Fail != nil {
		return nil, g.Fail
	}
	for _, session := range g.sessions {
		if session.PaymentIntentID == paymentIntentID {
			out := *session
			return &out, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (g *TestGateway) ExpireCheckoutSession(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Fail != nil {
		return g.Fail
	}
	session, ok := g.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if session.Status != sessionStatusOpen {
		return fmt.Errorf("checkout session %s is %s and cannot be expired", id, session.Status)
	}
	session.Status = "expired"
	return nil
}

// ParseWebhook verifies the signature when a secret is configured and
// otherwise accepts the raw event.
func (g *TestGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	var ev stripe.Event
	if g.webhookSecret != "" {
		verified, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		ev = verified
	} else if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return eventFromStripe(ev)
}

// Complete marks a session as paid.
func (g *TestGateway) Complete(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if session, ok := g.sessions[id]; ok {
		session.Status = "complete"
		session.PaymentStatus = sessionPaymentStatusPaid
	}
}

// Session returns a copy of a stored session.
func (g *TestGateway) Session(id string) (*CheckoutSession, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	session, ok := g.sessions[id]
	if !ok {
		return nil, false
	}
	out := *session
	return &out, true
}

func compactID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
