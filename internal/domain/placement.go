package domain

import (
	"errors"
	"math"
	"time"
)

var ErrInvalidDuration = errors.New("duration must be 15 or 30 days")

const (
	DurationShort = 15
	DurationLong  = 30

	// shortDurationFactor discounts the 15-day lease.
	shortDurationFactor = 0.7
	// bufferDays is added to the end date of every lease.
	bufferDays = 1
)

// SlotCategory groups slots by price class.
type SlotCategory string

const (
	SlotCategoryHero    SlotCategory = "hero"
	SlotCategorySidebar SlotCategory = "sidebar"
)

// SlotPosition is where on the page the slot renders.
type SlotPosition string

const (
	SlotPositionHero  SlotPosition = "hero"
	SlotPositionLeft  SlotPosition = "left"
	SlotPositionRight SlotPosition = "right"
)

// PlacementSlot is one purchasable slot of the catalog.
type PlacementSlot struct {
	ID          int16        `gorm:"primaryKey;column:id" json:"id"`
	Code        string       `gorm:"column:code;size:20;uniqueIndex;not null" json:"code"`
	Category    SlotCategory `gorm:"column:category;size:20;not null" json:"category"`
	Position    SlotPosition `gorm:"column:position;size:20;not null" json:"position"`
	DisplayName string       `gorm:"column:display_name;size:50;not null" json:"displayName"`
	BasePrice   int64        `gorm:"column:base_price;not null" json:"basePrice"`
	IsActive    bool         `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

// TableName returns the GORM table name.
func (PlacementSlot) TableName() string {
	return "placement_slots"
}

// PlacementStatus is the display state of a placement.
type PlacementStatus string

const (
	PlacementStatusActive   PlacementStatus = "active"
	PlacementStatusInactive PlacementStatus = "inactive"
	PlacementStatusExpired  PlacementStatus = "expired"
)

// Valid reports whether s is a known status.
func (s PlacementStatus) Valid() bool {
	switch s {
	case PlacementStatusActive, PlacementStatusInactive, PlacementStatusExpired:
		return true
	}
	return false
}

// PaymentStatus is the payment state of a placement.
type PaymentStatus string

const (
	PaymentStatusDraft    PaymentStatus = "draft"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Placement is a purchased advertising slot lease.
type Placement struct {
	ID              int64           `gorm:"primaryKey;column:id" json:"id"`
	CodeName        string          `gorm:"column:code_name;size:20;not null;index" json:"codeName"`
	Status          PlacementStatus `gorm:"column:status;size:20;not null;default:'inactive';index" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"column:payment_status;size:20;not null;default:'draft'" json:"paymentStatus"`
	StartDate       time.Time       `gorm:"column:start_date;not null" json:"startDate"`
	EndDate         time.Time       `gorm:"column:end_date;not null;index" json:"endDate"`
	Price           int64           `gorm:"column:price;not null" json:"price"`
	Duration        int             `gorm:"column:duration;not null" json:"duration"`
	UserID          int64           `gorm:"column:user_id;not null;index" json:"userId"`
	PaymentIntentID string          `gorm:"column:payment_intent_id;size:255;index" json:"paymentIntentId,omitempty"`
	Title           string          `gorm:"column:title;size:60" json:"title,omitempty"`
	Tagline         string          `gorm:"column:tagline;size:120" json:"tagline,omitempty"`
	LogoURL         string          `gorm:"column:logo_url;size:500" json:"logoUrl,omitempty"`
	BackgroundURL   string          `gorm:"column:background_url;size:500" json:"backgroundUrl,omitempty"`
	WebsiteURL      string          `gorm:"column:website_url;size:500" json:"websiteUrl,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (Placement) TableName() string {
	return "placements"
}

// IsPaid reports whether payment was confirmed.
func (p *Placement) IsPaid() bool {
	return p.PaymentStatus == PaymentStatusPaid
}

// HoldsSlot reports whether the placement blocks its code for other buyers.
func (p *Placement) HoldsSlot() bool {
	return p.IsPaid() && (p.Status == PlacementStatusActive || p.Status == PlacementStatusInactive)
}

// Overlaps reports whether the lease intersects [start, end].
func (p *Placement) Overlaps(start, end time.Time) bool {
	return !p.StartDate.After(end) && !p.EndDate.Before(start)
}

// HasCreative reports whether every required creative field is filled.
func (p *Placement) HasCreative() bool {
	return p.Title != "" && p.Tagline != "" && p.LogoURL != "" && p.BackgroundURL != "" && p.WebsiteURL != ""
}

// IsReusableDraft reports whether a checkout may overwrite this row.
func (p *Placement) IsReusableDraft() bool {
	return p.PaymentStatus == PaymentStatusDraft || p.PaymentStatus == PaymentStatusPending
}

// ApplyPayment sets the payment outcome and the status it implies. Setting
// the same outcome twice leaves the placement unchanged. A failure never
// overrides a confirmed payment and an expired lease stays expired.
func (p *Placement) ApplyPayment(outcome PaymentStatus) {
	if outcome == PaymentStatusFailed && p.IsPaid() {
		return
	}
	p.PaymentStatus = outcome
	if p.Status == PlacementStatusExpired {
		return
	}
	switch outcome {
	case PaymentStatusPaid:
		p.Status = PlacementStatusActive
	case PaymentStatusFailed, PaymentStatusRefunded:
		p.Status = PlacementStatusInactive
	}
}

// ValidDuration reports whether days is an offered lease length.
func ValidDuration(days int) bool {
	return days == DurationShort || days == DurationLong
}

// PriceFor returns the lease price in whole currency units.
func PriceFor(basePrice int64, duration int) (int64, error) {
	switch duration {
	case DurationShort:
		return int64(math.Round(float64(basePrice) * shortDurationFactor)), nil
	case DurationLong:
		return basePrice, nil
	default:
		return 0, ErrInvalidDuration
	}
}

// AmountCents converts a whole-unit price to the processor's minor units.
func AmountCents(price int64) int64 {
	return price * 100
}

// LeaseWindow returns the start and end of a lease bought at now.
func LeaseWindow(now time.Time, duration int) (time.Time, time.Time) {
	return now, now.AddDate(0, 0, duration+bufferDays)
}

// BookingWindow is the range checked for exclusivity when a lease starting
// at start is requested. The display buffer is not part of it.
func BookingWindow(start time.Time, duration int) (time.Time, time.Time) {
	return start, start.AddDate(0, 0, duration)
}

// BookingWindow returns the exclusivity range of this placement's request.
func (p *Placement) BookingWindow() (time.Time, time.Time) {
	return BookingWindow(p.StartDate, p.Duration)
}

// ActivePlacements groups live placements by page position.
type ActivePlacements struct {
	Hero  []*Placement `json:"hero"`
	Left  []*Placement `json:"left"`
	Right []*Placement `json:"right"`
}

// SlotAvailability is a catalog entry with its current lease state.
type SlotAvailability struct {
	Slot          *PlacementSlot `json:"slot"`
	Available     bool           `json:"available"`
	AvailableFrom *time.Time     `json:"availableFrom,omitempty"`
	PriceShort    int64          `json:"price15"`
	PriceLong     int64          `json:"price30"`
}
