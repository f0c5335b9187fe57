package service

import (
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/metrics"
	"Launchpad-Backend/internal/payment"
	"Launchpad-Backend/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testSlots() []domain.PlacementSlot {
	return []domain.PlacementSlot{
		{Code: "HERO-001", Category: domain.SlotCategoryHero, Position: domain.SlotPositionHero, DisplayName: "Hero", BasePrice: 599, IsActive: true},
		{Code: "LEFT-001", Category: domain.SlotCategorySidebar, Position: domain.SlotPositionLeft, DisplayName: "Left sidebar 1", BasePrice: 299, IsActive: true},
		{Code: "RIGHT-001", Category: domain.SlotCategorySidebar, Position: domain.SlotPositionRight, DisplayName: "Right sidebar 1", BasePrice: 299, IsActive: true},
	}
}

func newStorage() *memory.MemStorage {
	storage := memory.New()
	storage.SeedSlots(testSlots())
	return storage
}

func createUser(t *testing.T, storage *memory.MemStorage, email string) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, Name: "Test User", RegistrationSource: "email", IsActive: true}
	require.NoError(t, storage.CreateUser(context.Background(), user))
	return user
}

func testPaymentConfig() *config.Payment {
	return &config.Payment{
		Currency:     "usd",
		SuccessURL:   "http://localhost:8080/api/placements/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:    "http://localhost:3000/placements?canceled=1",
		DashboardURL: "http://localhost:3000/dashboard/placements",
	}
}

func newPlacementService(storage *memory.MemStorage, gateway payment.Gateway) *PlacementService {
	svc := NewPlacementService(storage, gateway, testPaymentConfig(), metrics.New(nil), zap.NewNop())
	svc.now = fixedClock
	return svc
}

func ptr[T any](v T) *T { return &v }
