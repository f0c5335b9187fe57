package service

import (
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/metrics"
	"Launchpad-Backend/internal/repository"
	"Launchpad-Backend/internal/repository/memory"
	"Launchpad-Backend/pkg/useragent"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockClickStore is a mock implementation of repository.ClickStore
type MockClickStore struct {
	mock.Mock
}

func (m *MockClickStore) RecordEvent(ctx context.Context, launchID int64, sessionID string, clickType domain.ClickType, now time.Time) (bool, error) {
	args := m.Called(ctx, launchID, sessionID, clickType, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockClickStore) GetClickRecord(ctx context.Context, launchID int64) (*domain.ClickRecord, error) {
	args := m.Called(ctx, launchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClickRecord), args.Error(1)
}

func (m *MockClickStore) GetClickRecords(ctx context.Context, launchIDs []int64) (map[int64]*domain.ClickRecord, error) {
	args := m.Called(ctx, launchIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*domain.ClickRecord), args.Error(1)
}

func setupClickService(t *testing.T, clicks repository.ClickStore) (*ClickService, *domain.Launch) {
	t.Helper()
	storage := memory.New()
	launch := &domain.Launch{Slug: "tracked", Name: "Tracked", WebsiteURL: "https://example.com", Categories: domain.CategoryList{"ai"}}
	require.NoError(t, storage.CreateLaunch(context.Background(), launch))

	ua, err := useragent.NewParser("", zap.NewNop())
	require.NoError(t, err)

	svc := NewClickService(clicks, storage, ua, metrics.New(nil), zap.NewNop())
	svc.now = fixedClock
	return svc, launch
}

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestClickService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("dedup per session day and type", func(t *testing.T) {
		svc, launch := setupClickService(t, memory.NewClickStore())
		in := RecordInput{LaunchID: launch.ID, SessionID: "sess-1", Type: domain.ClickTypeClick, UserAgent: browserUA}

		result, err := svc.Record(ctx, in)
		require.NoError(t, err)
		assert.True(t, result.Recorded)

		result, err = svc.Record(ctx, in)
		require.NoError(t, err)
		assert.False(t, result.Recorded)
		assert.Equal(t, ReasonDuplicate, result.Reason)

		in.Type = domain.ClickTypeOutbound
		result, err = svc.Record(ctx, in)
		require.NoError(t, err)
		assert.True(t, result.Recorded)

		stats, err := svc.Stats(ctx, launch.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.AllTime)
		assert.Equal(t, int64(1), stats.Today)
		assert.Equal(t, int64(1), stats.AllTimeOutbound)
	})

	t.Run("bots are not counted", func(t *testing.T) {
		clicks := new(MockClickStore)
		svc, launch := setupClickService(t, clicks)

		result, err := svc.Record(ctx, RecordInput{
			LaunchID:  launch.ID,
			SessionID: "sess-1",
			Type:      domain.ClickTypeClick,
			UserAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		})
		require.NoError(t, err)
		assert.False(t, result.Recorded)
		assert.Equal(t, ReasonBot, result.Reason)
		clicks.AssertNotCalled(t, "RecordEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("device class is recorded", func(t *testing.T) {
		svc, launch := setupClickService(t, memory.NewClickStore())

		_, err := svc.Record(ctx, RecordInput{LaunchID: launch.ID, SessionID: "sess-1", Type: domain.ClickTypeClick, UserAgent: browserUA})
		require.NoError(t, err)
		_, err = svc.Record(ctx, RecordInput{
			LaunchID:  launch.ID,
			SessionID: "sess-2",
			Type:      domain.ClickTypeClick,
			UserAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		svc.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		body := rec.Body.String()
		assert.Contains(t, body, `launchpad_click_events_total{device="desktop",result="recorded",type="click"} 1`)
		assert.Contains(t, body, `launchpad_click_events_total{device="bot",result="bot",type="click"} 1`)
	})

	t.Run("empty user agent is counted", func(t *testing.T) {
		clicks := new(MockClickStore)
		svc, launch := setupClickService(t, clicks)
		clicks.On("RecordEvent", mock.Anything, launch.ID, "sess-1", domain.ClickTypeClick, testNow).Return(true, nil)

		result, err := svc.Record(ctx, RecordInput{LaunchID: launch.ID, SessionID: "sess-1", Type: domain.ClickTypeClick})
		require.NoError(t, err)
		assert.True(t, result.Recorded)
		clicks.AssertExpectations(t)
	})

	t.Run("unknown launch", func(t *testing.T) {
		clicks := new(MockClickStore)
		svc, _ := setupClickService(t, clicks)

		_, err := svc.Record(ctx, RecordInput{LaunchID: 999, SessionID: "sess-1", Type: domain.ClickTypeClick})
		assert.ErrorIs(t, err, repository.ErrLaunchNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		svc, launch := setupClickService(t, new(MockClickStore))
		var ve *ValidationError

		_, err := svc.Record(ctx, RecordInput{LaunchID: launch.ID, Type: domain.ClickTypeClick})
		assert.ErrorAs(t, err, &ve)

		_, err = svc.Record(ctx, RecordInput{LaunchID: launch.ID, SessionID: "s", Type: "view"})
		assert.ErrorAs(t, err, &ve)

		_, err = svc.Record(ctx, RecordInput{SessionID: "s", Type: domain.ClickTypeClick})
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("store error", func(t *testing.T) {
		clicks := new(MockClickStore)
		svc, launch := setupClickService(t, clicks)
		clicks.On("RecordEvent", mock.Anything, launch.ID, "sess-1", domain.ClickTypeClick, testNow).
			Return(false, errors.New("connection reset"))

		_, err := svc.Record(ctx, RecordInput{LaunchID: launch.ID, SessionID: "sess-1", Type: domain.ClickTypeClick})
		assert.Error(t, err)
	})
}

func TestClickService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("no events yields zeros", func(t *testing.T) {
		clicks := new(MockClickStore)
		svc, _ := setupClickService(t, clicks)
		clicks.On("GetClickRecord", mock.Anything, int64(42)).Return(nil, nil)

		stats, err := svc.Stats(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, domain.ClickStats{}, stats)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc, _ := setupClickService(t, new(MockClickStore))

		_, err := svc.Stats(ctx, 0)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("batch fills missing ids", func(t *testing.T) {
		clicks := new(MockClickStore)
		svc, _ := setupClickService(t, clicks)
		clicks.On("GetClickRecords", mock.Anything, []int64{1, 2}).Return(map[int64]*domain.ClickRecord{
			1: {LaunchID: 1, AllTime: 5, DailyClicks: []domain.DailyCount{{Date: "2024-05-15", Clicks: 2}}},
		}, nil)

		stats, err := svc.BatchStats(ctx, []int64{1, 2})
		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, int64(5), stats[1].AllTime)
		assert.Equal(t, int64(2), stats[1].Today)
		assert.Equal(t, domain.ClickStats{}, stats[2])
	})

	t.Run("batch limits", func(t *testing.T) {
		svc, _ := setupClickService(t, new(MockClickStore))
		var ve *ValidationError

		_, err := svc.BatchStats(ctx, nil)
		assert.ErrorAs(t, err, &ve)

		ids := make([]int64, 101)
		for i := range ids {
			ids[i] = int64(i + 1)
		}
		_, err = svc.BatchStats(ctx, ids)
		assert.ErrorAs(t, err, &ve)

		_, err = svc.BatchStats(ctx, []int64{1, -1})
		assert.ErrorAs(t, err, &ve)
	})
}
