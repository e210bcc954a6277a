package notifyworker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
	"github.com/vitrineapp/partner-go/internal/mocks"
	"go.uber.org/mock/gomock"
)

type stubRenderer struct {
	err error
}

func (s *stubRenderer) Render(model.NotificationKind, model.NotificationContext) (*core.RenderedMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &core.RenderedMessage{Subject: "Bienvenue sur Vitrine", HTML: "<p>Bonjour</p>"}, nil
}

type stubTransport struct {
	mu   sync.Mutex
	sent []core.SendMailParams
	err  error
}

func (s *stubTransport) Send(_ context.Context, params core.SendMailParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, params)
	return nil
}

func (s *stubTransport) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type stubLimiter struct {
	allowed bool
}

func (s *stubLimiter) Allow(context.Context, string) (bool, error) {
	return s.allowed, nil
}

func welcomeJob() *model.NotificationJob {
	return &model.NotificationJob{
		ID:        "n-1",
		Kind:      model.KindPartnerWelcome,
		Recipient: "owner@x.com",
		Context:   model.NotificationContext{model.ContextKeyPartnerName: "Atelier Dupont"},
		Status:    model.NotificationStatusProcessing,
	}
}

// runnerHarness runs the worker until done is signaled, then cancels.
type runnerHarness struct {
	queue     *mocks.MockNotificationQueue
	transport *stubTransport
	renderer  *stubRenderer
	limiter   core.RecipientLimiter
	done      chan struct{}
}

func newHarness(t *testing.T) *runnerHarness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &runnerHarness{
		queue:     mocks.NewMockNotificationQueue(ctrl),
		transport: &stubTransport{},
		renderer:  &stubRenderer{},
		done:      make(chan struct{}),
	}

	// Idle workers park on the LISTEN waiter until shutdown.
	h.queue.EXPECT().
		WaitForNotification(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}).
		AnyTimes()

	return h
}

// expectSingleJob arranges for exactly one reservation to succeed and every
// later reservation to find the queue empty.
func (h *runnerHarness) expectSingleJob(job *model.NotificationJob) {
	first := h.queue.EXPECT().ReserveNext(gomock.Any(), gomock.Any()).Return(job, nil)
	h.queue.EXPECT().
		ReserveNext(gomock.Any(), gomock.Any()).
		Return(nil, model.ErrNoNotificationsAvailable).
		AnyTimes().
		After(first)
}

func (h *runnerHarness) signalDone() {
	close(h.done)
}

func (h *runnerHarness) run(t *testing.T) {
	t.Helper()

	runner, err := NewRunner(RunnerOptions{
		Queue:     h.queue,
		Transport: h.transport,
		Renderer:  h.renderer,
		Limiter:   h.limiter,
		Lease:     5 * time.Second,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		select {
		case <-h.done:
		case <-ctx.Done():
		}
		cancel()
	}()

	require.NoError(t, runner.Run(ctx))
}

func TestNewRunner(t *testing.T) {
	t.Run("requires a queue source", func(t *testing.T) {
		_, err := NewRunner(RunnerOptions{Transport: &stubTransport{}})
		require.Error(t, err)
	})

	t.Run("requires transport", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		_, err := NewRunner(RunnerOptions{Queue: mocks.NewMockNotificationQueue(ctrl)})
		require.Error(t, err)
	})
}

func TestRunner_DeliversAndCompletes(t *testing.T) {
	h := newHarness(t)
	h.expectSingleJob(welcomeJob())
	h.queue.EXPECT().
		Complete(gomock.Any(), "n-1").
		DoAndReturn(func(context.Context, string) (bool, error) {
			h.signalDone()
			return true, nil
		})

	h.run(t)

	require.Equal(t, 1, h.transport.sentCount())
	assert.Equal(t, "owner@x.com", h.transport.sent[0].To)
	assert.Equal(t, "Bienvenue sur Vitrine", h.transport.sent[0].Subject)
}

func TestRunner_RenderFailureIsPermanent(t *testing.T) {
	h := newHarness(t)
	h.renderer.err = apperrors.TemplateNotFoundf("no template registered for kind %q", "partner-welcome")
	h.expectSingleJob(welcomeJob())
	h.queue.EXPECT().
		FailPermanently(gomock.Any(), "n-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, errMsg string) (bool, error) {
			assert.Contains(t, errMsg, "render")
			h.signalDone()
			return true, nil
		})

	h.run(t)

	assert.Zero(t, h.transport.sentCount())
}

func TestRunner_PermanentSendFailure(t *testing.T) {
	h := newHarness(t)
	h.transport.err = apperrors.PermanentFailuref("mail provider rejected message: status 422")
	h.expectSingleJob(welcomeJob())
	h.queue.EXPECT().
		FailPermanently(gomock.Any(), "n-1", gomock.Any()).
		DoAndReturn(func(context.Context, string, string) (bool, error) {
			h.signalDone()
			return true, nil
		})

	h.run(t)
}

func TestRunner_TransientSendFailureRetries(t *testing.T) {
	h := newHarness(t)
	h.transport.err = apperrors.TransportFailure("send mail request", nil)
	h.expectSingleJob(welcomeJob())
	h.queue.EXPECT().
		Fail(gomock.Any(), "n-1", gomock.Any()).
		DoAndReturn(func(context.Context, string, string) (bool, error) {
			h.signalDone()
			return true, nil
		})

	h.run(t)
}

func TestRunner_RateLimitedReleasesWithoutAttempt(t *testing.T) {
	h := newHarness(t)
	h.limiter = &stubLimiter{allowed: false}
	h.expectSingleJob(welcomeJob())
	h.queue.EXPECT().
		Release(gomock.Any(), "n-1", 60).
		DoAndReturn(func(context.Context, string, int) (bool, error) {
			h.signalDone()
			return true, nil
		})

	h.run(t)

	assert.Zero(t, h.transport.sentCount())
}
