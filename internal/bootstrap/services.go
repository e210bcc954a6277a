package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vitrineapp/partner-go/config"
	"github.com/vitrineapp/partner-go/internal/data"
	"github.com/vitrineapp/partner-go/internal/data/cryptoutil"
	"github.com/vitrineapp/partner-go/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Registration  *service.RegistrationService
	Lifecycle     *service.LifecycleService
	Catalog       *service.CatalogService
	Notifications *service.NotificationService
	Payments      *service.PaymentService
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB            *sql.DB
	Redis         redis.UniversalClient
	PartnerRepo   *data.PartnerRepo
	CredRepo      *data.CredentialRepo
	OfferingRepo  *data.OfferingRepo
	RegRepo       *data.RegistrationRepo
	NotifRepo     *data.NotificationRepo
	Hasher        *cryptoutil.BcryptHasher
	Notifications *service.NotificationService
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient, logger *slog.Logger) *serviceRepositories {
	partnerRepo := data.NewPartnerRepo(db)
	credRepo := data.NewCredentialRepo(db)
	notifRepo := data.NewNotificationRepo(db, data.NotificationRepoConfig{Logger: logger})

	return &serviceRepositories{
		DB:           db,
		Redis:        redisClient,
		PartnerRepo:  partnerRepo,
		CredRepo:     credRepo,
		OfferingRepo: data.NewOfferingRepo(db),
		RegRepo:      data.NewRegistrationRepo(db, partnerRepo, credRepo),
		NotifRepo:    notifRepo,
		Hasher:       cryptoutil.NewBcryptHasher(0),
	}
}

func newNotificationService(repos *serviceRepositories, logger *slog.Logger) *service.NotificationService {
	return service.MustNewNotificationService(service.NotificationServiceOptions{
		Queue:        repos.NotifRepo,
		DefaultLease: 30 * time.Second,
		Logger:       logger,
	})
}

func newRegistrationService(repos *serviceRepositories, logger *slog.Logger) (*service.RegistrationService, error) {
	return service.NewRegistrationService(service.RegistrationServiceOptions{
		Stores: service.RegistrationStores{
			Store:       repos.RegRepo,
			Partners:    repos.PartnerRepo,
			Credentials: repos.CredRepo,
		},
		Side: service.RegistrationSideEffects{
			Queue:  repos.NotifRepo,
			Hasher: repos.Hasher,
		},
		Logger: logger,
	})
}

func newLifecycleService(repos *serviceRepositories, payments *service.PaymentService, logger *slog.Logger) (*service.LifecycleService, error) {
	deps := service.LifecycleDeps{
		Partners:    repos.PartnerRepo,
		Credentials: repos.CredRepo,
		Queue:       repos.NotifRepo,
	}
	if payments != nil {
		deps.OnSuspend = payments.HandleSuspension
	}
	return service.NewLifecycleService(service.LifecycleServiceOptions{
		Deps:   deps,
		Logger: logger,
	})
}

func newCatalogService(repos *serviceRepositories, logger *slog.Logger) (*service.CatalogService, error) {
	return service.NewCatalogService(service.CatalogServiceOptions{
		Offerings: repos.OfferingRepo,
		Partners:  repos.PartnerRepo,
		Logger:    logger,
	})
}

func newPaymentService(repos *serviceRepositories, cfg config.PaymentsConfig, logger *slog.Logger) (*service.PaymentService, error) {
	provider, err := BuildPaymentProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return service.NewPaymentService(service.PaymentServiceOptions{
		Partners: repos.PartnerRepo,
		Provider: provider,
		Logger:   logger,
	})
}

// NewServices wires the full service container from shared dependencies.
// The payment service is optional: without provider configuration the
// container carries a nil Payments entry and suspension skips its hook.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service dependencies are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	repos := buildRepositories(deps.DB, deps.RedisClient, logger)
	repos.Notifications = newNotificationService(repos, logger)

	payments, err := newPaymentService(repos, appCfg.Payments, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire payment service: %w", err)
	}

	registration, err := newRegistrationService(repos, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire registration service: %w", err)
	}

	lifecycle, err := newLifecycleService(repos, payments, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire lifecycle service: %w", err)
	}

	catalog, err := newCatalogService(repos, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire catalog service: %w", err)
	}

	return ServiceContainer{
		Registration:  registration,
		Lifecycle:     lifecycle,
		Catalog:       catalog,
		Notifications: repos.Notifications,
		Payments:      payments,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				if deps.logger != nil {
					deps.logger.WarnContext(
						ctx,
						"dropping background service error",
						"service",
						descriptor.name,
						"error",
						errMsg,
					)
				} else {
					slog.Default().WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
				}
			}
		}
	}()

	if deps.logger != nil {
		deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	} else {
		slog.Default().InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	}

	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

func newNotifyWorkerBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeNotifyWorker,
		name: "notify worker",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			var workerCfg config.NotifyWorkerConfig
			var mailCfg config.MailConfig
			if deps.cfg.Config != nil {
				workerCfg = deps.cfg.Config.NotifyWorker
				mailCfg = deps.cfg.Config.Mail
			}
			return RunNotifyWorker(ctx, NotifyWorkerConfig{
				DB:          deps.cfg.DB,
				RedisClient: deps.cfg.RedisClient,
				Logger:      deps.logger,
				Worker:      workerCfg,
				Mail:        mailCfg,
			})
		},
	}
}

func newReaperBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeReaper,
		name: "reaper",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			var reaperCfg config.ReaperConfig
			if deps.cfg.Config != nil {
				reaperCfg = deps.cfg.Config.Reaper
			}
			return RunReaper(ctx, ReaperConfig{
				DB:     deps.cfg.DB,
				Logger: deps.logger,
				Config: reaperCfg,
			})
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newNotifyWorkerBackgroundService(deps),
		newReaperBackgroundService(deps),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	ctx := context.Background()
	serviceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	// Determine which services are enabled
	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	deps := &serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	}
	handles := startBackgroundServices(deps, buildBackgroundServices(deps))

	// Wait for shutdown signal or error
	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		logger:      logger,
		backgrounds: handles,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	modes := []config.ServiceMode{
		config.ServiceModeNotifyWorker,
		config.ServiceModeReaper,
	}

	count := 0
	for _, mode := range modes {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	size := errorChannelCapacity(enabled) + 1
	if size < 1 {
		return 1
	}
	return size
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		gracefulStop(cfg)
		return nil
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		gracefulStop(cfg)
		return err
	}
}

// gracefulStop waits for background services to finish.
func gracefulStop(cfg shutdownConfig) {
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
