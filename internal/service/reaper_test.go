package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrineapp/partner-go/config"
	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/domain/model"
)

// fakeReaperRepo is a simple in-memory implementation for testing.
type fakeReaperRepo struct {
	mu     sync.Mutex
	calls  map[model.NotificationStatus]int
	counts map[model.NotificationStatus]int64
	params []core.DeleteOldNotificationsParams
	err    error
}

func newFakeReaperRepo() *fakeReaperRepo {
	return &fakeReaperRepo{
		calls:  make(map[model.NotificationStatus]int),
		counts: make(map[model.NotificationStatus]int64),
	}
}

func (f *fakeReaperRepo) DeleteOldNotifications(
	_ context.Context,
	params core.DeleteOldNotificationsParams,
) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.params = append(f.params, params)
	if f.err != nil {
		return 0, f.err
	}

	f.calls[params.Status]++
	// Return the configured count on the first call per status, then 0 to
	// simulate batch exhaustion.
	if f.calls[params.Status] == 1 {
		return f.counts[params.Status], nil
	}
	return 0, nil
}

func reaperTestConfig() config.ReaperConfig {
	return config.ReaperConfig{
		Interval:        5 * time.Minute,
		DeliveredMaxAge: 7 * 24 * time.Hour,
		FailedMaxAge:    30 * 24 * time.Hour,
		BatchSize:       1000,
	}
}

func TestNewReaperService(t *testing.T) {
	t.Run("creates service with valid options", func(t *testing.T) {
		svc, err := NewReaperService(ReaperServiceOptions{
			Repo:   newFakeReaperRepo(),
			Config: reaperTestConfig(),
			Logger: slog.Default(),
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("returns error when repo is nil", func(t *testing.T) {
		_, err := NewReaperService(ReaperServiceOptions{
			Config: reaperTestConfig(),
		})
		require.Error(t, err)
	})
}

func TestReaperService_RunCleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("prunes delivered and failed rows with their own max age", func(t *testing.T) {
		repo := newFakeReaperRepo()
		repo.counts[model.NotificationStatusDelivered] = 12
		repo.counts[model.NotificationStatusFailed] = 3

		svc, err := NewReaperService(ReaperServiceOptions{
			Repo:   repo,
			Config: reaperTestConfig(),
			Logger: slog.Default(),
		})
		require.NoError(t, err)

		require.NoError(t, svc.runCleanup(ctx))

		var sawDelivered, sawFailed bool
		for _, p := range repo.params {
			assert.Equal(t, 1000, p.BatchSize)
			switch p.Status {
			case model.NotificationStatusDelivered:
				sawDelivered = true
				assert.Equal(t, 7*24*time.Hour, p.MaxAge)
			case model.NotificationStatusFailed:
				sawFailed = true
				assert.Equal(t, 30*24*time.Hour, p.MaxAge)
			}
		}
		assert.True(t, sawDelivered)
		assert.True(t, sawFailed)
	})

	t.Run("loops until a batch comes back empty", func(t *testing.T) {
		repo := newFakeReaperRepo()
		repo.counts[model.NotificationStatusDelivered] = 1000

		svc, err := NewReaperService(ReaperServiceOptions{
			Repo:   repo,
			Config: reaperTestConfig(),
		})
		require.NoError(t, err)

		require.NoError(t, svc.runCleanup(ctx))
		// First call returns 1000, second returns 0 and stops the loop.
		assert.Equal(t, 2, repo.calls[model.NotificationStatusDelivered])
	})

	t.Run("repo errors are reported but do not panic", func(t *testing.T) {
		repo := newFakeReaperRepo()
		repo.err = errors.New("connection reset")

		svc, err := NewReaperService(ReaperServiceOptions{
			Repo:   repo,
			Config: reaperTestConfig(),
			Logger: slog.Default(),
		})
		require.NoError(t, err)

		cleanupErr := svc.runCleanup(ctx)
		require.Error(t, cleanupErr)
		assert.Contains(t, cleanupErr.Error(), "cleanup failed")
	})
}

func TestReaperService_Run_GracefulShutdown(t *testing.T) {
	repo := newFakeReaperRepo()
	svc, err := NewReaperService(ReaperServiceOptions{
		Repo:   repo,
		Config: reaperTestConfig(),
		Logger: slog.Default(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case runErr := <-done:
		assert.NoError(t, runErr)
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop after context cancellation")
	}
}
