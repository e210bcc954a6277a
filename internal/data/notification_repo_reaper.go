package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/data/pgxutil"
)

// Advisory lock namespace for reaper operations.
// Using two-arg pg_try_advisory_xact_lock(major, minor) for proper namespacing.
const (
	advisoryLockReaperMajor  = 1000
	advisoryLockReaperDelete = 1 // minor key for DeleteOldNotifications
)

// DeleteOldNotifications deletes terminal notification jobs older than MaxAge.
// Only delivered and failed rows are eligible; pending and processing rows are
// never reaped. Processes up to BatchSize rows per call so large tables do not
// hold long locks, and takes an advisory lock so concurrent reaper instances
// do not conflict. Returns the number of rows deleted.
func (r *NotificationRepo) DeleteOldNotifications(ctx context.Context, params core.DeleteOldNotificationsParams) (int64, error) {
	if !params.Status.Terminal() {
		return 0, fmt.Errorf("status %q is not reapable", params.Status)
	}
	if params.BatchSize <= 0 {
		return 0, errors.New("batch size must be greater than zero")
	}
	if params.MaxAge <= 0 {
		return 0, errors.New("max age must be greater than zero")
	}

	var rowsAffected int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			var locked bool
			if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1, $2)", advisoryLockReaperMajor, advisoryLockReaperDelete).Scan(&locked); err != nil {
				return fmt.Errorf("acquire advisory lock: %w", err)
			}
			if !locked {
				rowsAffected = 0
				return nil
			}

			cutoffTime := r.timeProvider.Now().Add(-params.MaxAge).UTC()

			res, err := tx.ExecContext(ctx, `
				DELETE FROM notification_jobs
				WHERE id IN (
					SELECT id FROM notification_jobs
					WHERE status = $1
					  AND (delivered_at < $2 OR (delivered_at IS NULL AND updated_at < $2))
					ORDER BY COALESCE(delivered_at, updated_at)
					LIMIT $3
				)
			`, params.Status, cutoffTime, params.BatchSize)
			if err != nil {
				return fmt.Errorf("delete old notifications: %w", err)
			}

			ra, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			rowsAffected = ra
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}
