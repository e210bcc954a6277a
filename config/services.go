package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeNotifyWorker runs the notification delivery worker.
	ServiceModeNotifyWorker ServiceMode = "notify-worker"
	// ServiceModeReaper runs the notification reaper for cleanup.
	ServiceModeReaper ServiceMode = "reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeNotifyWorker,
		ServiceModeReaper,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	parts := strings.Split(servicesStr, ",")
	for _, part := range parts {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeNotifyWorker, ServiceModeReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: notify-worker, reaper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// NotifyWorkerConfig contains notification worker service configuration.
type NotifyWorkerConfig struct {
	// Concurrency is the number of worker goroutines.
	Concurrency int `env:"NOTIFY_WORKER_CONCURRENCY" envDefault:"2"`

	// JobLease is the duration to lease a notification job.
	JobLease time.Duration `env:"NOTIFY_WORKER_JOB_LEASE" envDefault:"30s"`

	// RateLimitDelay is how far a rate-limited job is rescheduled.
	RateLimitDelay time.Duration `env:"NOTIFY_WORKER_RATE_LIMIT_DELAY" envDefault:"1m"`

	// RecipientMaxPerHour caps deliveries per recipient per hour.
	// Zero disables the per-recipient limiter.
	RecipientMaxPerHour int `env:"NOTIFY_WORKER_RECIPIENT_MAX_PER_HOUR" envDefault:"30"`
}

// Sanitize applies guardrails to notification worker configuration values.
func (n *NotifyWorkerConfig) Sanitize() {
	if n.Concurrency < 1 {
		n.Concurrency = 1
	}
	if n.JobLease < 5*time.Second {
		n.JobLease = 5 * time.Second
	}
	if n.RateLimitDelay < time.Second {
		n.RateLimitDelay = time.Second
	}
	if n.RecipientMaxPerHour < 0 {
		n.RecipientMaxPerHour = 0
	}
}

// ReaperConfig contains notification reaper service configuration.
type ReaperConfig struct {
	// Interval is the reaper tick interval.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"5m"`

	// DeliveredMaxAge is the maximum age for delivered notifications before deletion.
	DeliveredMaxAge time.Duration `env:"REAPER_DELIVERED_MAX_AGE" envDefault:"168h"` // 7 days

	// FailedMaxAge is the maximum age for failed notifications before deletion.
	// Failed rows keep their last_error for inspection, so they are retained
	// longer than delivered ones.
	FailedMaxAge time.Duration `env:"REAPER_FAILED_MAX_AGE" envDefault:"720h"` // 30 days

	// BatchSize is the maximum number of rows to process per operation.
	// Batching prevents long locks and I/O spikes on large tables.
	BatchSize int `env:"REAPER_BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	// Enforce minimum intervals to prevent excessive database load
	if r.Interval < 1*time.Minute {
		r.Interval = 1 * time.Minute
	}
	if r.DeliveredMaxAge < 1*time.Hour {
		r.DeliveredMaxAge = 1 * time.Hour
	}
	if r.FailedMaxAge < 1*time.Hour {
		r.FailedMaxAge = 1 * time.Hour
	}

	// Enforce batch size bounds to prevent excessive locks or inefficiency
	if r.BatchSize < 1 {
		r.BatchSize = 1
	}
	if r.BatchSize > 10000 {
		r.BatchSize = 10000
	}
}
