// Package notifyworker pulls notification jobs off the queue and delivers
// them as mail.
package notifyworker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/data"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
	"github.com/vitrineapp/partner-go/internal/mailtemplate"
	"github.com/vitrineapp/partner-go/internal/service"
	"golang.org/x/sync/errgroup"
)

// RunnerOptions configures the notification worker adapter.
type RunnerOptions struct {
	DB     *sql.DB
	Logger *slog.Logger

	// Transport delivers rendered mail; required.
	Transport core.MailTransport

	// Job processing settings
	Lease       time.Duration // per-job lease duration; defaults to 30s
	Concurrency int           // number of worker goroutines; defaults to 1

	// RateLimitDelay is how far a rate-limited job is pushed back before the
	// next delivery try; defaults to 1m.
	RateLimitDelay time.Duration

	// Optional dependency injections (useful for tests/decoupling)
	Queue         core.NotificationQueue
	Renderer      core.TemplateRenderer
	Limiter       core.RecipientLimiter
	Notifications *service.NotificationService
}

// Runner reserves notification jobs and runs them through the delivery
// pipeline: render, rate-limit check, send, settle.
type Runner struct {
	notifications *service.NotificationService
	renderer      core.TemplateRenderer
	transport     core.MailTransport
	limiter       core.RecipientLimiter
	logger        *slog.Logger
	lease         time.Duration
	limitDelay    time.Duration
	workers       int
}

// NewRunner wires the queue service and constructs a notification worker.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.DB == nil && opts.Queue == nil && opts.Notifications == nil {
		return nil, errors.New("either DB, Queue, or Notifications must be provided")
	}
	if opts.Transport == nil {
		return nil, errors.New("mail transport is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lease := opts.Lease
	if lease <= 0 {
		lease = 30 * time.Second
	}
	workers := opts.Concurrency
	if workers <= 0 {
		workers = 1
	}
	limitDelay := opts.RateLimitDelay
	if limitDelay <= 0 {
		limitDelay = time.Minute
	}

	notifications := opts.Notifications
	if notifications == nil {
		q := opts.Queue
		if q == nil {
			q = data.NewNotificationRepo(opts.DB, data.NotificationRepoConfig{Logger: opts.Logger})
		}
		svc, err := service.NewNotificationService(service.NotificationServiceOptions{
			Queue:        q,
			DefaultLease: lease,
			Logger:       opts.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create notification service: %w", err)
		}
		notifications = svc
	}

	renderer := opts.Renderer
	if renderer == nil {
		engine, err := mailtemplate.NewEngine(mailtemplate.EngineConfig{Logger: opts.Logger})
		if err != nil {
			return nil, fmt.Errorf("create template engine: %w", err)
		}
		renderer = engine
	}

	return &Runner{
		notifications: notifications,
		renderer:      renderer,
		transport:     opts.Transport,
		limiter:       opts.Limiter,
		logger:        logger.With("component", "notify_worker"),
		lease:         lease,
		limitDelay:    limitDelay,
		workers:       workers,
	}, nil
}

// Run starts worker goroutines and processes jobs until the context is
// cancelled. Returns nil on graceful shutdown.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting notification worker", "workers", r.workers, "lease", r.lease)
	defer r.notifications.StopNotifier()

	group, gctx := errgroup.WithContext(ctx)
	for i := 0; i < r.workers; i++ {
		group.Go(func() error { return r.workerLoop(gctx) })
	}

	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *Runner) workerLoop(ctx context.Context) error {
	unsub, wake := r.notifications.Subscribe()
	defer unsub()

	for ctx.Err() == nil {
		job, err := r.notifications.ReserveNext(ctx, r.lease)
		switch {
		case err == nil:
			if job != nil {
				r.processJob(ctx, job)
			}
		case errors.Is(err, model.ErrNoNotificationsAvailable):
			if !r.waitForWake(ctx, wake) {
				return ctx.Err()
			}
		default:
			return fmt.Errorf("reserve next: %w", err)
		}
	}
	return ctx.Err()
}

// waitForWake blocks until a wakeup arrives or the context ends. The notifier
// falls back to polling internally, so a missed pg_notify cannot strand a
// scheduled job forever.
func (r *Runner) waitForWake(ctx context.Context, wake <-chan struct{}) bool {
	select {
	case <-ctx.Done():
		return false
	case <-wake:
		return true
	}
}

// processJob runs a single reserved job through render, rate-limit, and send.
// Settlement never propagates an error out of the loop: a broken job is
// failed, a healthy queue keeps moving.
func (r *Runner) processJob(ctx context.Context, job *model.NotificationJob) {
	msg, err := r.renderer.Render(job.Kind, job.Context)
	if err != nil {
		// A missing template cannot succeed on retry. Park the job as failed
		// with the render error for operator inspection.
		r.failPermanently(ctx, job, fmt.Sprintf("render: %v", err))
		return
	}

	if r.limiter != nil {
		allowed, limitErr := r.limiter.Allow(ctx, job.Recipient)
		if limitErr != nil {
			r.logger.WarnContext(ctx, "recipient limiter check failed, proceeding",
				"notification_id", job.ID,
				"error", limitErr,
			)
		} else if !allowed {
			// Delivery was never tried; push the job back without burning an
			// attempt.
			if _, relErr := r.notifications.Release(ctx, job.ID, r.limitDelay); relErr != nil {
				r.logger.ErrorContext(ctx, "release rate-limited notification",
					"notification_id", job.ID,
					"error", relErr,
				)
			}
			return
		}
	}

	sendErr := r.transport.Send(ctx, core.SendMailParams{
		To:      job.Recipient,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if sendErr != nil {
		if apperrors.IsPermanentFailure(sendErr) {
			r.failPermanently(ctx, job, sendErr.Error())
			return
		}
		if _, failErr := r.notifications.Fail(ctx, job.ID, sendErr.Error()); failErr != nil {
			r.logger.ErrorContext(ctx, "fail notification",
				"notification_id", job.ID,
				"error", failErr,
				"original_error", sendErr,
			)
		}
		return
	}

	if _, err := r.notifications.Complete(ctx, job.ID); err != nil {
		r.logger.ErrorContext(ctx, "complete notification",
			"notification_id", job.ID,
			"error", err,
		)
	}
}

func (r *Runner) failPermanently(ctx context.Context, job *model.NotificationJob, msg string) {
	if _, err := r.notifications.FailPermanently(ctx, job.ID, msg); err != nil {
		r.logger.ErrorContext(ctx, "fail notification permanently",
			"notification_id", job.ID,
			"error", err,
		)
	}
}
