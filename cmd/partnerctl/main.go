// Command partnerctl is the operator CLI for the partner platform. It talks
// straight to the database through the same services the daemon uses, so the
// lifecycle and catalog rules apply identically from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"log/slog"

	"github.com/vitrineapp/partner-go/config"
	"github.com/vitrineapp/partner-go/internal/bootstrap"
	"github.com/vitrineapp/partner-go/internal/data"
	"github.com/vitrineapp/partner-go/internal/devseed"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultCommandTimeout = 30 * time.Second

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrate,
		},
		"seed-dev": {
			name:        "seed-dev",
			description: "Seed development data (demo partner with offerings)",
			run:         runSeedDev,
		},
		"register-partner": {
			name:        "register-partner",
			description: "Register a partner together with its owner credential",
			run:         runRegisterPartner,
		},
		"approve-partner": {
			name:        "approve-partner",
			description: "Approve a pending partner",
			run:         runApprovePartner,
		},
		"reject-partner": {
			name:        "reject-partner",
			description: "Reject a pending partner with an optional reason",
			run:         runRejectPartner,
		},
		"suspend-partner": {
			name:        "suspend-partner",
			description: "Suspend an approved partner",
			run:         runSuspendPartner,
		},
		"list-partners": {
			name:        "list-partners",
			description: "List partners filtered by status or name",
			run:         runListPartners,
		},
		"set-commission": {
			name:        "set-commission",
			description: "Update the commission rate of a partner",
			run:         runSetCommission,
		},
		"delete-partner": {
			name:        "delete-partner",
			description: "Soft-delete a partner",
			run:         runDeletePartner,
		},
		"add-offering": {
			name:        "add-offering",
			description: "Add a catalog offering for an approved partner",
			run:         runAddOffering,
		},
		"list-offerings": {
			name:        "list-offerings",
			description: "List the catalog offerings of a partner",
			run:         runListOfferings,
		},
		"remove-offering": {
			name:        "remove-offering",
			description: "Remove a catalog offering",
			run:         runRemoveOffering,
		},
		"payments-onboard": {
			name:        "payments-onboard",
			description: "Start payment onboarding for an approved partner",
			run:         runPaymentsOnboard,
		},
		"payments-status": {
			name:        "payments-status",
			description: "Refresh and print the payment onboarding status of a partner",
			run:         runPaymentsStatus,
		},
		"notification-stats": {
			name:        "notification-stats",
			description: "Print notification queue counts by status",
			run:         runNotificationStats,
		},
		"list-failed-notifications": {
			name:        "list-failed-notifications",
			description: "List notification jobs that exhausted their delivery attempts",
			run:         runListFailedNotifications,
		},
	}
}

func printUsage() error {
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	if err := writef(os.Stderr, "usage: partnerctl <command> [flags]\n\ncommands:\n"); err != nil {
		return err
	}
	for _, name := range names {
		if err := writef(os.Stderr, "  %-28s%s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func runMigrate(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 5*time.Minute)
	defer cancel()

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeQuietly(db, cmdCtx.Logger)

	return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
}

func runSeedDev(cmdCtx *commandContext, _ []string) error {
	if !cmdCtx.Config.IsDev {
		return fmt.Errorf("seed-dev only runs against a development configuration (DEV=true)")
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	db, services, err := openServices(cmdCtx)
	if err != nil {
		return err
	}
	defer closeQuietly(db, cmdCtx.Logger)
	defer services.Notifications.StopNotifier()

	cmdCtx.Logger.Info("ensuring database migrations are current")
	if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
		return fmt.Errorf("run migrations: %w", migrateErr)
	}

	cmdCtx.Logger.Info("seeding development data")
	if seedErr := devseed.Run(ctx, devseed.Services{
		Registration: services.Registration,
		Lifecycle:    services.Lifecycle,
		Catalog:      services.Catalog,
		Partners:     data.NewPartnerRepo(db),
	}, cmdCtx.Logger); seedErr != nil {
		return fmt.Errorf("seed data: %w", seedErr)
	}

	cmdCtx.Logger.Info("database seeding completed successfully")
	return nil
}
