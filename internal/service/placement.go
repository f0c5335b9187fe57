package service

import (
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/metrics"
	"Launchpad-Backend/internal/payment"
	"Launchpad-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CheckoutInput is a request to buy a slot lease.
type CheckoutInput struct {
	CodeName string `json:"codeName" validate:"required,max=20"`
	Duration int    `json:"duration" validate:"required"`
}

// CheckoutResult is returned after a checkout session was opened.
type CheckoutResult struct {
	SessionID string            `json:"sessionId"`
	URL       string            `json:"url"`
	Placement *domain.Placement `json:"placement"`
}

// ContentUpdate holds the creative fields of a placement. Nil fields are left as is.
type ContentUpdate struct {
	Title         *string `json:"title" validate:"omitempty,max=60"`
	Tagline       *string `json:"tagline" validate:"omitempty,max=120"`
	LogoURL       *string `json:"logoUrl" validate:"omitempty,http_url,max=500"`
	BackgroundURL *string `json:"backgroundUrl" validate:"omitempty,http_url,max=500"`
	WebsiteURL    *string `json:"websiteUrl" validate:"omitempty,http_url,max=500"`
}

// PlacementService sells slot leases and keeps their payment state in sync
// with the payment processor.
type PlacementService struct {
	storage repository.Storage
	gateway payment.Gateway
	config  *config.Payment
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewPlacementService(storage repository.Storage, gateway payment.Gateway, cfg *config.Payment, m *metrics.Metrics, log *zap.Logger) *PlacementService {
	return &PlacementService{
		storage: storage,
		gateway: gateway,
		config:  cfg,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// ListSlots returns the slot catalog with prices and current availability.
func (s *PlacementService) ListSlots(ctx context.Context) ([]domain.SlotAvailability, error) {
	slots, err := s.storage.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	now := s.now().UTC()
	out := make([]domain.SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		holder, err := s.storage.FindSlotHolder(ctx, slot.Code, now, now)
		if err != nil {
			return nil, fmt.Errorf("failed to check slot %s: %w", slot.Code, err)
		}

		short, _ := domain.PriceFor(slot.BasePrice, domain.DurationShort)
		long, _ := domain.PriceFor(slot.BasePrice, domain.DurationLong)
		entry := domain.SlotAvailability{
			Slot:       slot,
			Available:  holder == nil,
			PriceShort: short,
			PriceLong:  long,
		}
		if holder != nil {
			from := holder.EndDate
			entry.AvailableFrom = &from
		}
		out = append(out, entry)
	}
	return out, nil
}

// CreateCheckout reserves a slot for the user and opens a checkout session.
func (s *PlacementService) CreateCheckout(ctx context.Context, userID int64, in CheckoutInput) (*CheckoutResult, error) {
	in.CodeName = strings.ToUpper(strings.TrimSpace(in.CodeName))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !domain.ValidDuration(in.Duration) {
		return nil, &ValidationError{Message: domain.ErrInvalidDuration.Error()}
	}

	slot, err := s.storage.GetSlot(ctx, in.CodeName)
	if err != nil {
		return nil, err
	}

	price, err := domain.PriceFor(slot.BasePrice, in.Duration)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	now := s.now().UTC()
	start, end := domain.LeaseWindow(now, in.Duration)

	from, to := domain.BookingWindow(start, in.Duration)
	holder, err := s.storage.FindSlotHolder(ctx, slot.Code, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot availability: %w", err)
	}
	if holder != nil {
		return nil, repository.ErrSlotUnavailable
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		CustomerID:  customerID,
		ProductName: fmt.Sprintf("%s placement (%d days)", slot.DisplayName, in.Duration),
		Description: fmt.Sprintf("Slot %s", slot.Code),
		AmountCents: domain.AmountCents(price),
		Currency:    s.config.Currency,
		SuccessURL:  s.config.SuccessURL,
		CancelURL:   s.config.CancelURL,
		Metadata: map[string]string{
			payment.MetaUserID:   strconv.FormatInt(userID, 10),
			payment.MetaCodeName: slot.Code,
			payment.MetaDuration: strconv.Itoa(in.Duration),
		},
	})
	if err != nil {
		s.metrics.RecordCheckout("error")
		s.log.Error("failed to create checkout session",
			zap.Int64("user_id", userID),
			zap.String("code_name", slot.Code),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	placement := &domain.Placement{
		CodeName:        slot.Code,
		Status:          domain.PlacementStatusInactive,
		PaymentStatus:   domain.PaymentStatusPending,
		StartDate:       start,
		EndDate:         end,
		Price:           price,
		Duration:        in.Duration,
		UserID:          userID,
		PaymentIntentID: session.ID,
	}
	if prev, err := s.reusablePlacement(ctx, userID, slot.Code); err != nil {
		s.log.Warn("failed to look up previous checkout", zap.Int64("user_id", userID), zap.Error(err))
	} else if prev != nil && s.retireSession(ctx, prev.PaymentIntentID) {
		placement.ID = prev.ID
	}

	if err := s.storage.ReservePlacement(ctx, placement); err != nil {
		s.expireSession(ctx, session.ID)
		if errors.Is(err, repository.ErrSlotUnavailable) {
			s.metrics.RecordCheckout("conflict")
			return nil, err
		}
		s.metrics.RecordCheckout("error")
		s.log.Error("placement not saved after checkout session was created",
			zap.String("session_id", session.ID),
			zap.Int64("user_id", userID),
			zap.String("code_name", slot.Code),
			zap.Error(err))
		return nil, fmt.Errorf("failed to reserve placement: %w", err)
	}

	s.metrics.RecordCheckout("created")
	s.log.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.Int64("placement_id", placement.ID),
		zap.Int64("user_id", userID),
		zap.Int64("price", price))

	return &CheckoutResult{
		SessionID: session.ID,
		URL:       session.URL,
		Placement: placement,
	}, nil
}

func (s *PlacementService) ensureCustomer(ctx context.Context, user *domain.User) (string, error) {
	existing := ""
	if user.StripeCustomerID != nil {
		existing = *user.StripeCustomerID
	}

	customerID, err := s.gateway.EnsureCustomer(ctx, existing, user.Email, user.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	if customerID != existing {
		user.StripeCustomerID = &customerID
		if err := s.storage.UpdateUser(ctx, user); err != nil {
			s.log.Warn("failed to store customer id", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}
	return customerID, nil
}

// reusablePlacement returns the user's newest draft or pending placement for code.
func (s *PlacementService) reusablePlacement(ctx context.Context, userID int64, code string) (*domain.Placement, error) {
	placements, err := s.storage.ListUserPlacements(ctx, userID)
	if err != nil {
		return nil, err
	}
	var newest *domain.Placement
	for _, p := range placements {
		if p.CodeName == code && p.IsReusableDraft() && (newest == nil || p.ID > newest.ID) {
			newest = p
		}
	}
	return newest, nil
}

// retireSession expires the session of a placement about to be reused. A row
// whose session cannot be expired keeps it, so a late payment still finds its
// placement.
func (s *PlacementService) retireSession(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return true
	}
	if err := s.gateway.ExpireCheckoutSession(ctx, sessionID); err != nil {
		s.log.Info("previous checkout session kept",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return false
	}
	return true
}

// expireSession closes a session whose placement could not be saved. Failures
// are logged; the session expires at the processor on its own.
func (s *PlacementService) expireSession(ctx context.Context, sessionID string) {
	if err := s.gateway.ExpireCheckoutSession(ctx, sessionID); err != nil {
		s.log.Warn("failed to expire checkout session",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

// HandleWebhook verifies a processor notification and applies its payment
// outcome. Events that carry no outcome or refer to unknown placements are
// acknowledged without changes.
func (s *PlacementService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	log := s.log.With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type))
	if ev.Outcome == "" {
		log.Debug("webhook event ignored")
		return nil
	}

	sessionID := ev.SessionID
	if sessionID == "" && ev.PaymentIntentID != "" {
		session, err := s.gateway.FindCheckoutSessionByPaymentIntent(ctx, ev.PaymentIntentID)
		if errors.Is(err, payment.ErrSessionNotFound) {
			log.Info("no checkout session for payment intent", zap.String("payment_intent_id", ev.PaymentIntentID))
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentProvider, err)
		}
		sessionID = session.ID
	}
	if sessionID == "" {
		log.Warn("webhook event without session reference")
		return nil
	}

	_, err = s.applyOutcome(ctx, sessionID, ev.Outcome)
	if errors.Is(err, repository.ErrPlacementNotFound) {
		log.Info("webhook for unknown placement", zap.String("session_id", sessionID))
		return nil
	}
	return err
}

// ConfirmSession re-reads a session from the processor after the buyer was
// redirected back and applies its outcome.
func (s *PlacementService) ConfirmSession(ctx context.Context, sessionID string) (*domain.Placement, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, invalidf("session_id is required")
	}

	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if errors.Is(err, payment.ErrSessionNotFound) {
		return nil, repository.ErrPlacementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	switch {
	case session.IsPaid():
		return s.applyOutcome(ctx, session.ID, domain.PaymentStatusPaid)
	case session.Status == "expired":
		return s.applyOutcome(ctx, session.ID, domain.PaymentStatusFailed)
	default:
		return s.storage.GetPlacementBySession(ctx, session.ID)
	}
}

func (s *PlacementService) applyOutcome(ctx context.Context, sessionID string, outcome domain.PaymentStatus) (*domain.Placement, error) {
	placement, err := s.storage.ApplyPlacementPayment(ctx, sessionID, outcome)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPayment(string(outcome))
	s.log.Info("placement payment updated",
		zap.Int64("placement_id", placement.ID),
		zap.String("session_id", sessionID),
		zap.String("outcome", string(outcome)),
		zap.String("payment_status", string(placement.PaymentStatus)),
		zap.String("status", string(placement.Status)))
	return placement, nil
}

// SetStatus switches an owned placement between active and inactive.
// Activation requires a confirmed payment.
func (s *PlacementService) SetStatus(ctx context.Context, userID, id int64, status domain.PlacementStatus) (*domain.Placement, error) {
	if status != domain.PlacementStatusActive && status != domain.PlacementStatusInactive {
		return nil, invalidf("status must be one of: active inactive")
	}

	placement, err := s.storage.ModifyPlacement(ctx, id, func(p *domain.Placement) error {
		if p.UserID != userID {
			return ErrForbidden
		}
		if p.Status == domain.PlacementStatusExpired {
			return ErrPlacementExpired
		}
		if status == domain.PlacementStatusActive && !p.IsPaid() {
			return ErrPaymentRequired
		}
		p.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placement, nil
}

// UpdateContent edits the creative of an owned placement. Afterwards the
// placement is active only when it is paid and every creative field is set.
func (s *PlacementService) UpdateContent(ctx context.Context, userID, id int64, in ContentUpdate) (*domain.Placement, error) {
	trimPtr(in.Title)
	trimPtr(in.Tagline)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	placement, err := s.storage.ModifyPlacement(ctx, id, func(p *domain.Placement) error {
		if p.UserID != userID {
			return ErrForbidden
		}
		if in.Title != nil {
			p.Title = *in.Title
		}
		if in.Tagline != nil {
			p.Tagline = *in.Tagline
		}
		if in.LogoURL != nil {
			p.LogoURL = *in.LogoURL
		}
		if in.BackgroundURL != nil {
			p.BackgroundURL = *in.BackgroundURL
		}
		if in.WebsiteURL != nil {
			p.WebsiteURL = *in.WebsiteURL
		}

		if p.Status != domain.PlacementStatusExpired {
			if p.IsPaid() && p.HasCreative() {
				p.Status = domain.PlacementStatusActive
			} else {
				p.Status = domain.PlacementStatusInactive
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placement, nil
}

// ListMine returns every placement of userID, newest first.
func (s *PlacementService) ListMine(ctx context.Context, userID int64) ([]*domain.Placement, error) {
	placements, err := s.storage.ListUserPlacements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list placements: %w", err)
	}
	if placements == nil {
		placements = []*domain.Placement{}
	}
	return placements, nil
}

// ListActive returns the placements on display right now, grouped by position.
func (s *PlacementService) ListActive(ctx context.Context) (*domain.ActivePlacements, error) {
	slots, err := s.storage.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	positions := make(map[string]domain.SlotPosition, len(slots))
	for _, slot := range slots {
		positions[slot.Code] = slot.Position
	}

	live, err := s.storage.ListLivePlacements(ctx, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list live placements: %w", err)
	}

	out := &domain.ActivePlacements{
		Hero:  []*domain.Placement{},
		Left:  []*domain.Placement{},
		Right: []*domain.Placement{},
	}
	for _, p := range live {
		switch positions[p.CodeName] {
		case domain.SlotPositionHero:
			out.Hero = append(out.Hero, p)
		case domain.SlotPositionLeft:
			out.Left = append(out.Left, p)
		case domain.SlotPositionRight:
			out.Right = append(out.Right, p)
		}
	}
	return out, nil
}

// ExpireOverdue marks leases whose end date has passed as expired.
func (s *PlacementService) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.storage.ExpirePlacements(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire placements: %w", err)
	}

	s.metrics.RecordExpired(n)
	if n > 0 {
		s.log.Info("placements expired", zap.Int64("count", n))
	}
	return n, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
