package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	"github.com/vitrineapp/partner-go/internal/domain/queue"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
	"github.com/vitrineapp/partner-go/internal/mocks"
	"go.uber.org/mock/gomock"
)

type stubNotifier struct {
	subscribeCalls int
	stopCalled     bool
}

func (s *stubNotifier) Subscribe() (func(), <-chan struct{}) {
	s.subscribeCalls++
	ch := make(chan struct{})
	unsub := func() {
		select {
		case <-ch:
		default:
		}
		close(ch)
	}
	return unsub, ch
}

func (s *stubNotifier) StopAll() {
	s.stopCalled = true
}

var _ queue.Notifier = (*stubNotifier)(nil)

func newTestNotificationService(t *testing.T, q *mocks.MockNotificationQueue) (*NotificationService, *stubNotifier) {
	t.Helper()
	notifier := &stubNotifier{}
	svc := MustNewNotificationService(NotificationServiceOptions{
		Queue:        q,
		DefaultLease: 60 * time.Second,
		Notifier:     notifier,
	})
	return svc, notifier
}

func TestNewNotificationService(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("requires queue", func(t *testing.T) {
		_, err := NewNotificationService(NotificationServiceOptions{
			DefaultLease: time.Minute,
		})
		require.Error(t, err)
	})

	t.Run("requires positive default lease", func(t *testing.T) {
		_, err := NewNotificationService(NotificationServiceOptions{
			Queue: mocks.NewMockNotificationQueue(ctrl),
		})
		require.Error(t, err)
	})
}

func TestNotificationService_Enqueue(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	t.Run("valid request", func(t *testing.T) {
		q := mocks.NewMockNotificationQueue(ctrl)
		svc, _ := newTestNotificationService(t, q)

		req := &model.EnqueueNotificationRequest{
			Kind:      model.KindPartnerWelcome,
			Recipient: "a@x.com",
			Context:   model.NotificationContext{model.ContextKeyPartnerName: "Atelier Dupont"},
		}
		q.EXPECT().Enqueue(ctx, req).Return(&model.NotificationJob{ID: "n-1"}, nil)

		job, err := svc.Enqueue(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "n-1", job.ID)
	})

	t.Run("missing required context key", func(t *testing.T) {
		q := mocks.NewMockNotificationQueue(ctrl)
		svc, _ := newTestNotificationService(t, q)

		_, err := svc.Enqueue(ctx, &model.EnqueueNotificationRequest{
			Kind:      model.KindPartnerWelcome,
			Recipient: "a@x.com",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown kind", func(t *testing.T) {
		q := mocks.NewMockNotificationQueue(ctrl)
		svc, _ := newTestNotificationService(t, q)

		_, err := svc.Enqueue(ctx, &model.EnqueueNotificationRequest{
			Kind:      "partner-birthday",
			Recipient: "a@x.com",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestNotificationService_ReserveNext(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	t.Run("resolves default lease", func(t *testing.T) {
		q := mocks.NewMockNotificationQueue(ctrl)
		svc, _ := newTestNotificationService(t, q)

		q.EXPECT().ReserveNext(ctx, 60).Return(&model.NotificationJob{ID: "n-1"}, nil)

		job, err := svc.ReserveNext(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, "n-1", job.ID)
	})

	t.Run("empty queue passes sentinel through", func(t *testing.T) {
		q := mocks.NewMockNotificationQueue(ctrl)
		svc, _ := newTestNotificationService(t, q)

		q.EXPECT().ReserveNext(ctx, gomock.Any()).Return(nil, model.ErrNoNotificationsAvailable)

		_, err := svc.ReserveNext(ctx, 30*time.Second)
		require.ErrorIs(t, err, model.ErrNoNotificationsAvailable)
	})
}

func TestNotificationService_CompleteAndFail(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	t.Run("complete", func(t *testing.T) {
		q := mocks.NewMockNotificationQueue(ctrl)
		svc, _ := newTestNotificationService(t, q)

		q.EXPECT().Complete(ctx, "n-1").Return(true, nil)

		ok, err := svc.Complete(ctx, "n-1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("fail requires message", func(t *testing.T) {
		q := mocks.NewMockNotificationQueue(ctrl)
		svc, _ := newTestNotificationService(t, q)

		_, err := svc.Fail(ctx, "n-1", "")
		require.Error(t, err)
	})

	t.Run("fail forwards message", func(t *testing.T) {
		q := mocks.NewMockNotificationQueue(ctrl)
		svc, _ := newTestNotificationService(t, q)

		q.EXPECT().Fail(ctx, "n-1", "smtp timeout").Return(true, nil)

		ok, err := svc.Fail(ctx, "n-1", "smtp timeout")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestNotificationService_SubscribeAndStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := mocks.NewMockNotificationQueue(ctrl)
	svc, notifier := newTestNotificationService(t, q)

	unsub, ch := svc.Subscribe()
	assert.NotNil(t, ch)
	assert.Equal(t, 1, notifier.subscribeCalls)
	unsub()

	svc.StopNotifier()
	assert.True(t, notifier.stopCalled)
}

func TestNotificationService_ListFailed(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	q := mocks.NewMockNotificationQueue(ctrl)
	svc, _ := newTestNotificationService(t, q)

	// Zero limit normalizes to the default page size.
	q.EXPECT().ListFailed(ctx, 50, 0).Return([]*model.NotificationJob{{ID: "n-1"}}, nil)

	jobs, err := svc.ListFailed(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}
