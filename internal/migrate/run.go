// Package migrate applies the embedded schema migrations for the partner
// platform. Files under migrations/ run once each, in lexical order, and the
// applied versions are recorded in schema_migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run brings the schema up to date. Already-applied versions are skipped, so
// every process can call it at startup.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("ensure schema_migrations ledger: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("list embedded migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		step := migrationStep{
			version: strings.TrimSuffix(f, ".sql"),
			file:    f,
		}
		if applyErr := applyStep(ctx, db, step); applyErr != nil {
			return applyErr
		}
	}
	return nil
}

type migrationStep struct {
	version string
	file    string
}

func stepApplied(ctx context.Context, db *sql.DB, step migrationStep) (bool, error) {
	var applied bool
	query := `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`
	if err := db.QueryRowContext(ctx, query, step.version).Scan(&applied); err != nil {
		return false, fmt.Errorf("look up migration %s: %w", step.file, err)
	}
	return applied, nil
}

func recordStep(ctx context.Context, tx *sql.Tx, step migrationStep) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, step.version); err != nil {
		return fmt.Errorf("record migration %s: %w", step.file, err)
	}
	return nil
}

// applyStep executes one migration file and records its version in the same
// transaction, so a failed statement leaves the ledger untouched.
func applyStep(ctx context.Context, db *sql.DB, step migrationStep) error {
	applied, err := stepApplied(ctx, db, step)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	sqlBytes, err := migrationsFS.ReadFile("migrations/" + step.file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", step.file, err)
	}

	logger := slog.Default().With("component", "migrations")
	logger.InfoContext(ctx, "applying migration", "version", step.version)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			logger.ErrorContext(ctx, "rollback of migration failed",
				"error", rollbackErr,
				"migration_file", step.file,
			)
		}
	}()

	if _, execErr := tx.ExecContext(ctx, string(sqlBytes)); execErr != nil {
		return fmt.Errorf("exec migration %s: %w", step.file, execErr)
	}
	if recordErr := recordStep(ctx, tx, step); recordErr != nil {
		return recordErr
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit migration %s: %w", step.file, commitErr)
	}

	return nil
}
