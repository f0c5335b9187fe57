package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceFor(t *testing.T) {
	tests := []struct {
		name     string
		base     int64
		duration int
		want     int64
		wantErr  bool
	}{
		{name: "hero 15 days", base: 599, duration: 15, want: 419},
		{name: "hero 30 days", base: 599, duration: 30, want: 599},
		{name: "sidebar 15 days", base: 299, duration: 15, want: 209},
		{name: "sidebar 30 days", base: 299, duration: 30, want: 299},
		{name: "7 days rejected", base: 599, duration: 7, wantErr: true},
		{name: "zero rejected", base: 599, duration: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PriceFor(tt.base, tt.duration)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDuration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, int64(41900), AmountCents(419))
}

func TestLeaseWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	start, end := LeaseWindow(now, 15)

	assert.Equal(t, now, start)
	assert.Equal(t, time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC), end)
}

func TestBookingWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	start, end := LeaseWindow(now, 30)
	p := &Placement{StartDate: start, EndDate: end, Duration: 30}

	from, to := p.BookingWindow()
	assert.Equal(t, now, from)
	assert.Equal(t, time.Date(2024, 5, 31, 10, 0, 0, 0, time.UTC), to)

	wantFrom, wantTo := BookingWindow(now, 30)
	assert.Equal(t, wantFrom, from)
	assert.Equal(t, wantTo, to)
	assert.True(t, to.Before(p.EndDate))
}

func TestPlacement_HoldsSlot(t *testing.T) {
	tests := []struct {
		name    string
		status  PlacementStatus
		payment PaymentStatus
		want    bool
	}{
		{"paid active", PlacementStatusActive, PaymentStatusPaid, true},
		{"paid inactive", PlacementStatusInactive, PaymentStatusPaid, true},
		{"paid expired", PlacementStatusExpired, PaymentStatusPaid, false},
		{"pending inactive", PlacementStatusInactive, PaymentStatusPending, false},
		{"failed inactive", PlacementStatusInactive, PaymentStatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Placement{Status: tt.status, PaymentStatus: tt.payment}
			assert.Equal(t, tt.want, p.HoldsSlot())
		})
	}
}

func TestPlacement_Overlaps(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC) }
	p := &Placement{StartDate: day(10), EndDate: day(20)}

	assert.True(t, p.Overlaps(day(1), day(10)))
	assert.True(t, p.Overlaps(day(15), day(16)))
	assert.True(t, p.Overlaps(day(20), day(30)))
	assert.False(t, p.Overlaps(day(1), day(9)))
	assert.False(t, p.Overlaps(day(21), day(30)))
}

func TestPlacement_HasCreative(t *testing.T) {
	p := &Placement{Title: "t", Tagline: "g", LogoURL: "l", BackgroundURL: "b", WebsiteURL: "w"}
	assert.True(t, p.HasCreative())

	p.BackgroundURL = ""
	assert.False(t, p.HasCreative())
}

func TestPlacement_ApplyPayment(t *testing.T) {
	t.Run("paid activates", func(t *testing.T) {
		p := &Placement{Status: PlacementStatusInactive, PaymentStatus: PaymentStatusPending}
		p.ApplyPayment(PaymentStatusPaid)
		assert.Equal(t, PaymentStatusPaid, p.PaymentStatus)
		assert.Equal(t, PlacementStatusActive, p.Status)
	})

	t.Run("applying twice is the same as once", func(t *testing.T) {
		once := &Placement{Status: PlacementStatusInactive, PaymentStatus: PaymentStatusPending}
		once.ApplyPayment(PaymentStatusPaid)

		twice := &Placement{Status: PlacementStatusInactive, PaymentStatus: PaymentStatusPending}
		twice.ApplyPayment(PaymentStatusPaid)
		twice.ApplyPayment(PaymentStatusPaid)

		assert.Equal(t, once, twice)
	})

	t.Run("failure deactivates pending", func(t *testing.T) {
		p := &Placement{Status: PlacementStatusInactive, PaymentStatus: PaymentStatusPending}
		p.ApplyPayment(PaymentStatusFailed)
		assert.Equal(t, PaymentStatusFailed, p.PaymentStatus)
		assert.Equal(t, PlacementStatusInactive, p.Status)
	})

	t.Run("failure after payment is ignored", func(t *testing.T) {
		p := &Placement{Status: PlacementStatusActive, PaymentStatus: PaymentStatusPaid}
		p.ApplyPayment(PaymentStatusFailed)
		assert.Equal(t, PaymentStatusPaid, p.PaymentStatus)
		assert.Equal(t, PlacementStatusActive, p.Status)
	})

	t.Run("expired stays expired", func(t *testing.T) {
		p := &Placement{Status: PlacementStatusExpired, PaymentStatus: PaymentStatusPaid}
		p.ApplyPayment(PaymentStatusPaid)
		assert.Equal(t, PlacementStatusExpired, p.Status)
	})
}
