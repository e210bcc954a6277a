package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vitrineapp/partner-go/internal/bootstrap"
)

// connectDB opens the database connection used by a single command run.
// partnerctl never needs Redis; the rate limiter only matters to the worker.
func connectDB(cmdCtx *commandContext) (*sql.DB, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cmdCtx.Config.Postgres,
		Logger:   cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return db, nil
}

// openServices connects the database and wires the full service container.
func openServices(cmdCtx *commandContext) (*sql.DB, bootstrap.ServiceContainer, error) {
	db, err := connectDB(cmdCtx)
	if err != nil {
		return nil, bootstrap.ServiceContainer{}, err
	}

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config: &cmdCtx.Config,
		DB:     db,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		closeQuietly(db, cmdCtx.Logger)
		return nil, bootstrap.ServiceContainer{}, fmt.Errorf("wire services: %w", err)
	}

	return db, services, nil
}

// serviceSet names the container commands receive.
type serviceSet = bootstrap.ServiceContainer

// withServices runs fn against a freshly wired service container with the
// default command timeout, closing the database afterwards.
func withServices(cmdCtx *commandContext, fn func(context.Context, serviceSet) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	db, services, err := openServices(cmdCtx)
	if err != nil {
		return err
	}
	defer closeQuietly(db, cmdCtx.Logger)
	defer services.Notifications.StopNotifier()

	return fn(ctx, services)
}

func closeQuietly(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil && logger != nil {
		logger.Error("close db failed", "error", err)
	}
}
