package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/vitrineapp/partner-go/internal/data/pgxutil"
	"github.com/vitrineapp/partner-go/internal/domain/model"
)

// notifyChannel is the LISTEN/NOTIFY channel that wakes idle workers.
const notifyChannel = "notification_added"

// defaultBackoffBaseSeconds is the delay after the first failed attempt; it
// doubles on every subsequent failure.
const defaultBackoffBaseSeconds = 2

// NotificationRepoConfig holds configuration options for the notification repository.
type NotificationRepoConfig struct {
	BackoffBaseSeconds int
	Logger             *slog.Logger
	TimeProvider       TimeProvider
}

// NotificationRepo provides the durable notification queue over Postgres.
// The claim step is serialized with FOR UPDATE SKIP LOCKED so a job is held
// by at most one worker at a time.
type NotificationRepo struct {
	DB           *sql.DB
	cfg          NotificationRepoConfig
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewNotificationRepo creates a new NotificationRepo with the given database connection and configuration.
func NewNotificationRepo(db *sql.DB, cfg NotificationRepoConfig) *NotificationRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &NotificationRepo{
		DB:           db,
		cfg:          cfg,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const notificationColumns = `
  id,
  kind,
  recipient,
  context,
  status,
  attempts,
  max_attempts,
  last_error,
  scheduled_at,
  lease_expires_at,
  delivered_at,
  created_at,
  updated_at
`

func (r *NotificationRepo) backoffBase() int {
	if r.cfg.BackoffBaseSeconds > 0 {
		return r.cfg.BackoffBaseSeconds
	}
	return defaultBackoffBaseSeconds
}

// SQL used by ReserveNext to atomically claim the next due job.
const reserveNextNotificationSQL = `
  WITH cte AS (
    SELECT id FROM notification_jobs
    WHERE status = 'pending' AND scheduled_at <= $1
    ORDER BY scheduled_at ASC, created_at ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
  )
  UPDATE notification_jobs n
  SET
    status = 'processing',
    lease_expires_at = $2,
    updated_at = $3
  FROM cte
  WHERE n.id = cte.id
  RETURNING n.id, n.kind, n.recipient, n.context, n.status, n.attempts, n.max_attempts, n.last_error, n.scheduled_at, n.lease_expires_at, n.delivered_at, n.created_at, n.updated_at`

// Enqueue durably writes a notification job and wakes a worker. It performs
// no rendering and no network I/O; callers get an acknowledgment as soon as
// the row is committed.
func (r *NotificationRepo) Enqueue(
	ctx context.Context,
	req *model.EnqueueNotificationRequest,
) (*model.NotificationJob, error) {
	if req == nil {
		return nil, errors.New("enqueue request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var job *model.NotificationJob
	if txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			var insertErr error
			job, insertErr = r.insertInPgxTx(ctx, tx, req)
			return insertErr
		},
	}); txErr != nil {
		return nil, txErr
	}

	return job, nil
}

// EnqueueInTx inserts a notification job within an existing SQL transaction,
// for callers that want the job to commit together with their own writes.
func (r *NotificationRepo) EnqueueInTx(
	ctx context.Context,
	sqlTx *sql.Tx,
	req *model.EnqueueNotificationRequest,
) (*model.NotificationJob, error) {
	if sqlTx == nil {
		return nil, errors.New("transaction is required")
	}
	if req == nil {
		return nil, errors.New("enqueue request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query, args, err := r.buildInsertQuery(req)
	if err != nil {
		return nil, err
	}

	row := sqlTx.QueryRowContext(ctx, query, args...)
	job, scanErr := scanNotificationFromRow(row)
	if scanErr != nil {
		return nil, fmt.Errorf("collect notification: %w", scanErr)
	}

	if _, notifyErr := sqlTx.ExecContext(ctx, `SELECT pg_notify($1::text, $2::text)`, notifyChannel, job.ID); notifyErr != nil {
		return nil, fmt.Errorf("send notification wakeup: %w", notifyErr)
	}

	return job, nil
}

// insertInPgxTx inserts a job within a pgx.Tx and returns the created job.
func (r *NotificationRepo) insertInPgxTx(
	ctx context.Context,
	tx pgx.Tx,
	req *model.EnqueueNotificationRequest,
) (*model.NotificationJob, error) {
	query, args, err := r.buildInsertQuery(req)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	job, collectErr := collectNotificationFromRows(rows)
	rows.Close()
	if collectErr != nil {
		return nil, fmt.Errorf("collect notification: %w", collectErr)
	}

	if _, execErr := tx.Exec(ctx, `SELECT pg_notify($1::text, $2::text)`, notifyChannel, job.ID); execErr != nil {
		return nil, fmt.Errorf("send notification wakeup: %w", execErr)
	}

	return job, nil
}

// buildInsertQuery builds the INSERT statement for a notification job.
func (r *NotificationRepo) buildInsertQuery(req *model.EnqueueNotificationRequest) (string, []any, error) {
	contextJSON, err := json.Marshal(req.Context)
	if err != nil {
		return "", nil, fmt.Errorf("marshal notification context: %w", err)
	}

	var scheduledAt time.Time
	if req.ScheduledAt != nil {
		scheduledAt = req.ScheduledAt.UTC()
	} else {
		scheduledAt = r.timeProvider.Now().UTC()
	}

	query := `
      INSERT INTO notification_jobs(kind, recipient, context, status, attempts, max_attempts, scheduled_at)
      VALUES ($1, $2, $3, 'pending', 0, $4, $5)
      RETURNING ` + notificationColumns

	args := []any{
		req.Kind,
		model.NormalizeEmail(req.Recipient),
		contextJSON,
		model.DefaultMaxAttempts,
		scheduledAt,
	}
	return query, args, nil
}

// collectNotificationFromRows collects a single job from pgx rows.
func collectNotificationFromRows(rows pgx.Rows) (*model.NotificationJob, error) {
	job, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.NotificationJob])
	if err != nil {
		return nil, err
	}
	return &job, nil
}

type notificationRowScanner interface {
	Scan(dest ...any) error
}

// scanNotificationFromRow scans a job from a database/sql row.
func scanNotificationFromRow(scanner notificationRowScanner) (*model.NotificationJob, error) {
	job := &model.NotificationJob{}
	var (
		contextRaw     []byte
		lastError      sql.NullString
		leaseExpiresAt sql.NullTime
		deliveredAt    sql.NullTime
	)
	if err := scanner.Scan(
		&job.ID,
		&job.Kind,
		&job.Recipient,
		&contextRaw,
		&job.Status,
		&job.Attempts,
		&job.MaxAttempts,
		&lastError,
		&job.ScheduledAt,
		&leaseExpiresAt,
		&deliveredAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(contextRaw) > 0 {
		if err := json.Unmarshal(contextRaw, &job.Context); err != nil {
			return nil, fmt.Errorf("unmarshal notification context: %w", err)
		}
	}
	if lastError.Valid {
		v := lastError.String
		job.LastError = &v
	}
	if leaseExpiresAt.Valid {
		t := leaseExpiresAt.Time.UTC()
		job.LeaseExpiresAt = &t
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time.UTC()
		job.DeliveredAt = &t
	}
	return job, nil
}

// Advisory lock namespace for requeueExpired so concurrent workers do not
// race on the same scan.
const (
	advisoryLockRequeueMajor int64 = 1001
	advisoryLockRequeueMinor int64 = 1
)

// requeueExpired returns expired processing jobs to pending and reports how many were requeued.
func (r *NotificationRepo) requeueExpired(ctx context.Context) (int64, error) {
	var rowsAffected int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			var locked bool
			if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1::integer, $2::integer)", advisoryLockRequeueMajor, advisoryLockRequeueMinor).Scan(&locked); err != nil {
				return fmt.Errorf("acquire advisory lock: %w", err)
			}
			if !locked {
				rowsAffected = 0
				return nil
			}

			currentTime := r.timeProvider.Now()
			res, err := tx.ExecContext(ctx, `
          UPDATE notification_jobs
          SET status = 'pending', lease_expires_at = NULL
          WHERE status = 'processing'
            AND lease_expires_at IS NOT NULL
            AND lease_expires_at < $1
        `, currentTime.UTC())
			if err != nil {
				return fmt.Errorf("requeue expired: %w", err)
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

// ReserveNext claims the next due pending job for processing under a lease.
// Returns model.ErrNoNotificationsAvailable when nothing is due.
func (r *NotificationRepo) ReserveNext(ctx context.Context, leaseSeconds int) (*model.NotificationJob, error) {
	if leaseSeconds <= 0 {
		return nil, errors.New("leaseSeconds must be positive")
	}

	if _, err := r.requeueExpired(ctx); err != nil {
		return nil, fmt.Errorf("requeue expired notifications: %w", err)
	}

	var job *model.NotificationJob
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{
			Isolation: sql.LevelReadCommitted,
			ReadOnly:  false,
		},
		Fn: func(tx pgx.Tx) error {
			currentTime := r.timeProvider.Now()
			leaseExpiresAt := currentTime.Add(time.Duration(leaseSeconds) * time.Second)

			rows, qerr := tx.Query(
				ctx,
				reserveNextNotificationSQL,
				currentTime.UTC(),
				leaseExpiresAt.UTC(),
				currentTime.UTC(),
			)
			if qerr != nil {
				return fmt.Errorf("reserve notification: %w", qerr)
			}
			defer rows.Close()

			j, cerr := collectNotificationFromRows(rows)
			if errors.Is(cerr, pgx.ErrNoRows) {
				return model.ErrNoNotificationsAvailable
			}
			if cerr != nil {
				return fmt.Errorf("reserve notification: %w", cerr)
			}
			job = j
			return nil
		},
	})
	if err != nil {
		if errors.Is(err, model.ErrNoNotificationsAvailable) {
			return nil, model.ErrNoNotificationsAvailable
		}
		return nil, err
	}
	return job, nil
}

// Heartbeat refreshes the lease on a processing job.
func (r *NotificationRepo) Heartbeat(ctx context.Context, id string, leaseSeconds int) (bool, error) {
	if leaseSeconds <= 0 {
		return false, errors.New("leaseSeconds must be positive")
	}

	currentTime := r.timeProvider.Now().UTC()
	leaseExpiration := currentTime.Add(time.Duration(leaseSeconds) * time.Second)

	res, err := r.DB.ExecContext(ctx, `
		UPDATE notification_jobs
		SET lease_expires_at = $2,
		    updated_at = $3
		WHERE id = $1 AND status = 'processing'
	`, id, leaseExpiration, currentTime)
	if err != nil {
		return false, fmt.Errorf("heartbeat notification: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("heartbeat rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Complete marks a processing job as delivered. Calling it again for an
// already-delivered job is a no-op, so a simulated re-delivery cannot move
// the job beyond its terminal state.
func (r *NotificationRepo) Complete(ctx context.Context, id string) (bool, error) {
	currentTime := r.timeProvider.Now().UTC()

	res, err := r.DB.ExecContext(ctx, `
		UPDATE notification_jobs
		SET status = 'delivered',
		    delivered_at = $2,
		    updated_at = $2,
		    lease_expires_at = NULL,
		    last_error = NULL
		WHERE id = $1 AND status = 'processing'
	`, id, currentTime)
	if err != nil {
		return false, fmt.Errorf("complete notification: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("complete rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Fail records a failed delivery attempt. While attempts remain the job goes
// back to pending with an exponentially growing delay (2s, 4s, 8s); once
// attempts are exhausted it becomes failed and is never claimed again.
func (r *NotificationRepo) Fail(ctx context.Context, id, errMsg string) (bool, error) {
	currentTime := r.timeProvider.Now()

	query := `
      UPDATE notification_jobs
      SET
        last_error = $2,
        attempts = attempts + 1,
        status = CASE WHEN attempts + 1 >= max_attempts THEN 'failed' ELSE 'pending' END,
        lease_expires_at = NULL,
        scheduled_at = CASE WHEN attempts + 1 >= max_attempts THEN scheduled_at
                            ELSE $3::timestamptz + make_interval(secs => $4 * power(2, attempts)) END,
        updated_at = $3
      WHERE id = $1 AND status = 'processing'
      RETURNING status, attempts
    `

	var status string
	var attempts int
	if err := r.DB.QueryRowContext(ctx, query, id, errMsg, currentTime.UTC(), r.backoffBase()).Scan(&status, &attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("fail notification: %w", err)
	}

	if status == string(model.NotificationStatusFailed) && r.logger != nil {
		r.logger.WarnContext(ctx, "notification failed permanently",
			"notification_id", id,
			"attempts", attempts,
			"last_error", errMsg,
		)
	}

	return true, nil
}

// FailPermanently moves a processing job straight to failed regardless of
// remaining attempts. Used for errors that retrying cannot fix, such as a
// missing template or a rejected payload.
func (r *NotificationRepo) FailPermanently(ctx context.Context, id, errMsg string) (bool, error) {
	currentTime := r.timeProvider.Now().UTC()

	res, err := r.DB.ExecContext(ctx, `
		UPDATE notification_jobs
		SET status = 'failed',
		    last_error = $2,
		    attempts = attempts + 1,
		    lease_expires_at = NULL,
		    updated_at = $3
		WHERE id = $1 AND status = 'processing'
	`, id, errMsg, currentTime)
	if err != nil {
		return false, fmt.Errorf("fail notification permanently: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("fail permanently rows affected: %w", err)
	}

	if rowsAffected > 0 && r.logger != nil {
		r.logger.WarnContext(ctx, "notification failed permanently",
			"notification_id", id,
			"last_error", errMsg,
		)
	}
	return rowsAffected > 0, nil
}

// Release returns a processing job to pending without counting an attempt,
// rescheduling it delaySeconds into the future. Used when delivery was never
// tried, such as a rate-limited recipient.
func (r *NotificationRepo) Release(ctx context.Context, id string, delaySeconds int) (bool, error) {
	if delaySeconds < 0 {
		return false, errors.New("delaySeconds must not be negative")
	}

	currentTime := r.timeProvider.Now().UTC()

	res, err := r.DB.ExecContext(ctx, `
		UPDATE notification_jobs
		SET status = 'pending',
		    lease_expires_at = NULL,
		    scheduled_at = $2::timestamptz + make_interval(secs => $3),
		    updated_at = $2
		WHERE id = $1 AND status = 'processing'
	`, id, currentTime, delaySeconds)
	if err != nil {
		return false, fmt.Errorf("release notification: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("release rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Stats returns counts of notification jobs per delivery state.
func (r *NotificationRepo) Stats(ctx context.Context) (*model.NotificationStats, error) {
	var s model.NotificationStats
	err := r.DB.QueryRowContext(ctx, `
  SELECT
    count(*) FILTER (WHERE status = 'pending')    AS pending,
    count(*) FILTER (WHERE status = 'processing') AS processing,
    count(*) FILTER (WHERE status = 'delivered')  AS delivered,
    count(*) FILTER (WHERE status = 'failed')     AS failed
  FROM notification_jobs
  `).Scan(
		&s.Pending,
		&s.Processing,
		&s.Delivered,
		&s.Failed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification stats: %w", err)
	}
	return &s, nil
}

// WaitForNotification blocks until a wakeup arrives on the queue channel or
// the context is done.
func (r *NotificationRepo) WaitForNotification(ctx context.Context) error {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			_ = cerr
		}
	}()

	quoted := pgx.Identifier{notifyChannel}.Sanitize()

	if _, execErr := conn.ExecContext(ctx, "LISTEN "+quoted); execErr != nil {
		return fmt.Errorf("listen %s: %w", notifyChannel, execErr)
	}
	defer func() {
		if _, execErr := conn.ExecContext(context.Background(), "UNLISTEN "+quoted); execErr != nil {
			_ = execErr
		}
	}()

	return conn.Raw(func(dc any) error {
		sc, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		_, notifyErr := sc.Conn().WaitForNotification(ctx)
		return notifyErr
	})
}

// GetByID retrieves a notification job by its ID.
func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*model.NotificationJob, error) {
	var job *model.NotificationJob
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, qerr := pgxConn.Query(ctx, `
			SELECT `+notificationColumns+`
			FROM notification_jobs
			WHERE id = $1
		`, id)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var cerr error
		job, cerr = collectNotificationFromRows(rows)
		return cerr
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return job, nil
}

// ListFailed returns permanently failed jobs, newest first, for operator inspection.
func (r *NotificationRepo) ListFailed(ctx context.Context, limit, offset int) ([]*model.NotificationJob, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.NotificationJob
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+notificationColumns+`
			FROM notification_jobs
			WHERE status = 'failed'
			ORDER BY updated_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.NotificationJob])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list failed notifications: %w", err)
	}

	res := make([]*model.NotificationJob, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Delete removes a job that is not being processed under an active lease.
func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	currentTime := r.timeProvider.Now()
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM notification_jobs
		WHERE id = $1
		  AND status IN ('pending', 'delivered', 'failed')
		  AND (lease_expires_at IS NULL OR lease_expires_at <= $2)
	`, id, currentTime.UTC())
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("re-check notification after delete attempt: %w", err)
	}
	return ErrNotificationNotDeletable
}
