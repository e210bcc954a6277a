package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	"github.com/vitrineapp/partner-go/internal/domain/queue"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
)

// NotificationServiceOptions groups dependencies for NotificationService.
type NotificationServiceOptions struct {
	Queue           core.NotificationQueue // Required: notification queue
	DefaultLease    time.Duration          // Required unless LeasePolicy is set
	Logger          *slog.Logger           // Optional: structured logger
	LeasePolicy     *queue.LeasePolicy     // Optional: override default lease policy
	Notifier        queue.Notifier         // Optional: custom availability notifier
	NotifierOptions queue.NotifierOptions  // Optional: configure default notifier behaviour
}

// NotificationService provides business logic for the notification pipeline:
// validated enqueues, reservation and lease management, pub/sub wakeups, and
// the inspection surface over failed jobs.
type NotificationService struct {
	queue       core.NotificationQueue
	leasePolicy *queue.LeasePolicy
	notifier    queue.Notifier
	logger      *slog.Logger
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(opts NotificationServiceOptions) (*NotificationService, error) {
	if opts.Queue == nil {
		return nil, errors.New("NotificationQueue is required")
	}

	var leasePolicy *queue.LeasePolicy
	switch {
	case opts.LeasePolicy != nil:
		leasePolicy = opts.LeasePolicy
	case opts.DefaultLease > 0:
		var err error
		leasePolicy, err = queue.NewLeasePolicy(opts.DefaultLease)
		if err != nil {
			return nil, fmt.Errorf("create lease policy: %w", err)
		}
	default:
		return nil, errors.New("DefaultLease must be positive")
	}

	notifier := opts.Notifier
	if notifier == nil {
		options := opts.NotifierOptions
		if options.Waiter == nil {
			options.Waiter = opts.Queue
		}
		var err error
		notifier, err = queue.NewNotifier(options)
		if err != nil {
			return nil, fmt.Errorf("create notification notifier: %w", err)
		}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "notification_service")
		logger.Debug("NotificationService initialized",
			"default_lease", leasePolicy.Default(),
		)
	}

	return &NotificationService{
		queue:       opts.Queue,
		leasePolicy: leasePolicy,
		notifier:    notifier,
		logger:      logger,
	}, nil
}

// MustNewNotificationService constructs a new NotificationService and panics on error.
func MustNewNotificationService(opts NotificationServiceOptions) *NotificationService {
	svc, err := NewNotificationService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create NotificationService: %v", err))
	}
	return svc
}

// Enqueue validates and enqueues a notification job.
func (s *NotificationService) Enqueue(
	ctx context.Context,
	req *model.EnqueueNotificationRequest,
) (*model.NotificationJob, error) {
	if req == nil {
		return nil, apperrors.Validation("enqueue request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	job, err := s.queue.Enqueue(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("enqueue notification: %w", err)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "notification enqueued",
			"id", job.ID,
			"kind", job.Kind,
		)
	}
	return job, nil
}

// ReserveNext reserves the next available notification for processing.
// Returns model.ErrNoNotificationsAvailable when the queue is empty.
func (s *NotificationService) ReserveNext(ctx context.Context, lease time.Duration) (*model.NotificationJob, error) {
	decision := s.leasePolicy.Resolve(lease)
	if decision.Clamped() && s.logger != nil {
		s.logger.DebugContext(ctx, "clamped sub-second lease duration to 1 second",
			"requested_duration", decision.Requested)
	}

	job, err := s.queue.ReserveNext(ctx, decision.Seconds)
	if err != nil {
		if errors.Is(err, model.ErrNoNotificationsAvailable) {
			return nil, err
		}
		return nil, fmt.Errorf("reserve next notification: %w", err)
	}

	if s.logger != nil && job != nil {
		s.logger.DebugContext(ctx, "notification reserved",
			"id", job.ID,
			"kind", job.Kind,
			"lease_seconds", decision.Seconds,
		)
	}
	return job, nil
}

// Subscribe creates a subscription for availability wakeups. Returns an
// unsubscribe function and a channel that receives wakeups.
func (s *NotificationService) Subscribe() (func(), <-chan struct{}) {
	if s.notifier == nil {
		ch := make(chan struct{})
		close(ch)
		return func() {}, ch
	}
	return s.notifier.Subscribe()
}

// Heartbeat extends the lease on a reserved notification.
func (s *NotificationService) Heartbeat(ctx context.Context, id string, extend time.Duration) (bool, error) {
	decision := s.leasePolicy.Resolve(extend)

	updated, err := s.queue.Heartbeat(ctx, id, decision.Seconds)
	if err != nil {
		return false, fmt.Errorf("heartbeat notification %s: %w", id, err)
	}
	return updated, nil
}

// Complete marks a notification as delivered.
func (s *NotificationService) Complete(ctx context.Context, id string) (bool, error) {
	completed, err := s.queue.Complete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("complete notification %s: %w", id, err)
	}

	if s.logger != nil && completed {
		s.logger.DebugContext(ctx, "notification delivered", "id", id)
	}
	return completed, nil
}

// Fail records a delivery failure. The queue reschedules with backoff while
// attempts remain and marks the job failed once they are exhausted.
func (s *NotificationService) Fail(ctx context.Context, id, errMsg string) (bool, error) {
	if errMsg == "" {
		return false, errors.New("error message required")
	}

	failed, err := s.queue.Fail(ctx, id, errMsg)
	if err != nil {
		return false, fmt.Errorf("fail notification %s: %w", id, err)
	}

	if s.logger != nil && failed {
		s.logger.DebugContext(ctx, "notification delivery failed", "id", id, "error", errMsg)
	}
	return failed, nil
}

// FailPermanently marks a reserved notification failed regardless of
// remaining attempts. For defects retrying cannot fix, such as a missing
// template.
func (s *NotificationService) FailPermanently(ctx context.Context, id, errMsg string) (bool, error) {
	if errMsg == "" {
		return false, errors.New("error message required")
	}

	failed, err := s.queue.FailPermanently(ctx, id, errMsg)
	if err != nil {
		return false, fmt.Errorf("fail notification permanently %s: %w", id, err)
	}
	return failed, nil
}

// Release returns a reserved notification to pending without counting an
// attempt, rescheduled delay into the future. Used when delivery was never
// tried, such as a rate-limited recipient.
func (s *NotificationService) Release(ctx context.Context, id string, delay time.Duration) (bool, error) {
	if delay < 0 {
		delay = 0
	}

	released, err := s.queue.Release(ctx, id, int(delay/time.Second))
	if err != nil {
		return false, fmt.Errorf("release notification %s: %w", id, err)
	}

	if s.logger != nil && released {
		s.logger.DebugContext(ctx, "notification released", "id", id, "delay", delay)
	}
	return released, nil
}

// GetByID retrieves a notification job by id.
func (s *NotificationService) GetByID(ctx context.Context, id string) (*model.NotificationJob, error) {
	return s.queue.GetByID(ctx, id)
}

// Stats returns queue counters by status.
func (s *NotificationService) Stats(ctx context.Context) (*model.NotificationStats, error) {
	return s.queue.Stats(ctx)
}

// ListFailed returns permanently failed notifications for inspection.
// Failed jobs are never re-enqueued automatically.
func (s *NotificationService) ListFailed(ctx context.Context, limit, offset int) ([]*model.NotificationJob, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.queue.ListFailed(ctx, limit, offset)
}

// Delete removes a notification job after manual remediation.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	return s.queue.Delete(ctx, id)
}

// StopNotifier cancels the availability listener and closes all subscriber
// channels. Called during shutdown.
func (s *NotificationService) StopNotifier() {
	if s.notifier != nil {
		s.notifier.StopAll()
	}
}
