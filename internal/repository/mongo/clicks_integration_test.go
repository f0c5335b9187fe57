//go:build integration

package mongo

import (
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/database"
	"Launchpad-Backend/internal/domain"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func setupClickStore(t *testing.T) *ClickStore {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mongo container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "mongodb")
	require.NoError(t, err)

	log := zap.NewNop()
	client, err := database.NewMongoClient(ctx, &config.Mongo{
		URI:            endpoint,
		Database:       "launchpad_test",
		MaxPoolSize:    20,
		ConnectTimeout: 10 * time.Second,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseMongo(context.Background(), client, log) })

	store := NewClickStore(client.Database("launchpad_test"), log)
	require.NoError(t, store.EnsureIndexes(ctx))
	return store
}

func TestClickStore_Integration(t *testing.T) {
	store := setupClickStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	t.Run("same session same day counts once", func(t *testing.T) {
		accepted, err := store.RecordEvent(ctx, 1, "s1", domain.ClickTypeClick, now)
		require.NoError(t, err)
		assert.True(t, accepted)

		accepted, err = store.RecordEvent(ctx, 1, "s1", domain.ClickTypeClick, now.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, accepted)

		accepted, err = store.RecordEvent(ctx, 1, "s1", domain.ClickTypeClick, now.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.True(t, accepted)

		record, err := store.GetClickRecord(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, int64(2), record.AllTime)
		assert.Len(t, record.DailyClicks, 2)
	})

	t.Run("concurrent first events on a new launch", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := store.RecordEvent(ctx, 2, fmt.Sprintf("visitor-%d", i), domain.ClickTypeOutbound, now)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		record, err := store.GetClickRecord(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, int64(25), record.AllTimeOutbound)
		require.Len(t, record.DailyOutboundClicks, 1)
		assert.Equal(t, int64(25), record.DailyOutboundClicks[0].Clicks)
	})

	t.Run("batch lookup skips launches without events", func(t *testing.T) {
		records, err := store.GetClickRecords(ctx, []int64{1, 2, 3})
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Nil(t, records[3])
	})
}
