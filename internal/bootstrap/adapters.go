package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vitrineapp/partner-go/config"
	"github.com/vitrineapp/partner-go/internal/adapters/mailer"
	"github.com/vitrineapp/partner-go/internal/adapters/notifyworker"
	"github.com/vitrineapp/partner-go/internal/adapters/payments"
	"github.com/vitrineapp/partner-go/internal/adapters/reaper"
	redisadapter "github.com/vitrineapp/partner-go/internal/adapters/redis"
	"github.com/vitrineapp/partner-go/internal/core"
)

// NotifyWorkerConfig contains configuration for the notification worker.
type NotifyWorkerConfig struct {
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
	Worker      config.NotifyWorkerConfig
	Mail        config.MailConfig
}

// RunNotifyWorker starts the notification delivery worker.
func RunNotifyWorker(ctx context.Context, cfg NotifyWorkerConfig) error {
	transport, err := mailer.NewResendTransport(mailer.ResendTransportOptions{
		APIKey:      cfg.Mail.ResendAPIKey,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("create mail transport: %w", err)
	}

	limiter, err := buildRecipientLimiter(cfg.RedisClient, cfg.Worker, cfg.Logger)
	if err != nil {
		return fmt.Errorf("create recipient limiter: %w", err)
	}

	runner, err := notifyworker.NewRunner(notifyworker.RunnerOptions{
		DB:             cfg.DB,
		Logger:         cfg.Logger,
		Transport:      transport,
		Lease:          cfg.Worker.JobLease,
		Concurrency:    cfg.Worker.Concurrency,
		RateLimitDelay: cfg.Worker.RateLimitDelay,
		Limiter:        limiter,
	})
	if err != nil {
		return fmt.Errorf("create notify worker runner: %w", err)
	}

	return runner.Run(ctx)
}

// buildRecipientLimiter wires the per-recipient rate limiter when Redis is
// available and a positive cap is configured. A zero cap disables limiting.
//
//nolint:ireturn // Returning the port interface is required for runner injection.
func buildRecipientLimiter(
	client redis.UniversalClient,
	cfg config.NotifyWorkerConfig,
	logger *slog.Logger,
) (core.RecipientLimiter, error) {
	if cfg.RecipientMaxPerHour <= 0 {
		return nil, nil
	}
	if client == nil {
		if logger != nil {
			logger.Warn("recipient rate limiting disabled: no redis client configured")
		}
		return nil, nil
	}

	limiter, err := redisadapter.NewRecipientLimiter(redisadapter.RecipientLimiterOptions{
		Client:       client,
		MaxPerWindow: cfg.RecipientMaxPerHour,
		Window:       time.Hour,
	})
	if err != nil {
		return nil, err
	}
	return limiter, nil
}

// BuildPaymentProvider wires the payment platform client from configuration.
// Returns nil when the provider is not configured, which disables payment
// onboarding without failing startup.
//
//nolint:ireturn // Returning the port interface is required for service injection.
func BuildPaymentProvider(cfg config.PaymentsConfig, logger *slog.Logger) (core.PaymentProvider, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		if logger != nil {
			logger.Info("payment provider not configured; payment onboarding disabled")
		}
		return nil, nil
	}

	client, err := payments.NewClient(payments.ClientOptions{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		ReturnURL: cfg.ReturnURL,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment client: %w", err)
	}
	return client, nil
}

// ReaperConfig contains configuration for the reaper.
type ReaperConfig struct {
	DB     *sql.DB
	Logger *slog.Logger
	Config config.ReaperConfig
}

// RunReaper starts the reaper service.
func RunReaper(ctx context.Context, cfg ReaperConfig) error {
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		DB:     cfg.DB,
		Config: cfg.Config,
		Logger: cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("create reaper runner: %w", err)
	}

	return runner.Run(ctx)
}
