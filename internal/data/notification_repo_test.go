package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	"github.com/vitrineapp/partner-go/internal/testutil"
)

func newTestNotificationRepo(db *sql.DB) *NotificationRepo {
	return NewNotificationRepo(db, NotificationRepoConfig{})
}

func enqueueTestJob(t *testing.T, repo *NotificationRepo, recipient string) *model.NotificationJob {
	t.Helper()
	job, err := repo.Enqueue(context.Background(), testutil.EnqueueRequestFixture(recipient))
	require.NoError(t, err)
	return job
}

func TestNotificationRepo_Enqueue(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := newTestNotificationRepo(db)

		job := enqueueTestJob(t, repo, "owner@partner.example")
		require.NotEmpty(t, job.ID)
		assert.Equal(t, model.KindPartnerWelcome, job.Kind)
		assert.Equal(t, model.NotificationStatusPending, job.Status)
		assert.Equal(t, 0, job.Attempts)
		assert.Equal(t, 3, job.MaxAttempts)
		assert.Equal(t, "Boulangerie Martin", job.Context["partner_name"])
	})
}

func TestNotificationRepo_Enqueue_ValidatesContext(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := newTestNotificationRepo(db)

		req := testutil.EnqueueRequestFixture("owner@partner.example")
		delete(req.Context, "partner_name")
		_, err := repo.Enqueue(context.Background(), req)
		require.Error(t, err)
	})
}

func TestNotificationRepo_ReserveNext_ClaimsOldestDue(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		first := enqueueTestJob(t, repo, "first@partner.example")
		enqueueTestJob(t, repo, "second@partner.example")

		claimed, err := repo.ReserveNext(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, first.ID, claimed.ID)
		assert.Equal(t, model.NotificationStatusProcessing, claimed.Status)
		require.NotNil(t, claimed.LeaseExpiresAt)
		assert.WithinDuration(t, time.Now().Add(30*time.Second), *claimed.LeaseExpiresAt, 5*time.Second)

		// Second claim gets the second job, third finds nothing.
		_, err = repo.ReserveNext(ctx, 30)
		require.NoError(t, err)

		_, err = repo.ReserveNext(ctx, 30)
		require.ErrorIs(t, err, model.ErrNoNotificationsAvailable)
	})
}

func TestNotificationRepo_ReserveNext_SkipsFutureJobs(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		req := testutil.EnqueueRequestFixture("later@partner.example")
		future := time.Now().Add(time.Hour)
		req.ScheduledAt = &future
		_, err := repo.Enqueue(ctx, req)
		require.NoError(t, err)

		_, err = repo.ReserveNext(ctx, 30)
		require.ErrorIs(t, err, model.ErrNoNotificationsAvailable)
	})
}

func TestNotificationRepo_Complete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		enqueueTestJob(t, repo, "owner@partner.example")
		claimed, err := repo.ReserveNext(ctx, 30)
		require.NoError(t, err)

		ok, err := repo.Complete(ctx, claimed.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(ctx, claimed.ID)
		require.NoError(t, err)
		assert.Equal(t, model.NotificationStatusDelivered, got.Status)
		assert.NotNil(t, got.DeliveredAt)
		assert.Nil(t, got.LeaseExpiresAt)

		// Completing a job that is not processing reports no rows.
		ok, err = repo.Complete(ctx, claimed.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestNotificationRepo_RetryThenDeliver(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		job := enqueueTestJob(t, repo, "owner@partner.example")

		// First delivery attempt hits a transient failure.
		claimed, err := repo.ReserveNext(ctx, 30)
		require.NoError(t, err)
		require.Equal(t, job.ID, claimed.ID)

		ok, err := repo.Fail(ctx, claimed.ID, "smtp timeout")
		require.NoError(t, err)
		assert.True(t, ok)

		// Skip past the backoff so the retry is due.
		_, err = db.ExecContext(ctx,
			"UPDATE notification_jobs SET scheduled_at = now() WHERE id = $1", job.ID)
		require.NoError(t, err)

		retried, err := repo.ReserveNext(ctx, 30)
		require.NoError(t, err)
		require.Equal(t, job.ID, retried.ID)
		assert.Equal(t, 1, retried.Attempts)

		ok, err = repo.Complete(ctx, retried.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.NotificationStatusDelivered, got.Status)
		assert.Equal(t, 1, got.Attempts)
		assert.NotNil(t, got.DeliveredAt)

		// Delivered jobs never come back from the queue.
		_, err = repo.ReserveNext(ctx, 30)
		require.ErrorIs(t, err, model.ErrNoNotificationsAvailable)
	})
}

func TestNotificationRepo_Fail_RetriesWithBackoff(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		enqueueTestJob(t, repo, "owner@partner.example")
		claimed, err := repo.ReserveNext(ctx, 30)
		require.NoError(t, err)

		ok, err := repo.Fail(ctx, claimed.ID, "smtp timeout")
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(ctx, claimed.ID)
		require.NoError(t, err)
		assert.Equal(t, model.NotificationStatusPending, got.Status)
		assert.Equal(t, 1, got.Attempts)
		require.NotNil(t, got.LastError)
		assert.Equal(t, "smtp timeout", *got.LastError)

		// First retry is pushed 2s out, so it is not immediately claimable.
		assert.WithinDuration(t, time.Now().Add(2*time.Second), got.ScheduledAt, 2*time.Second)
		_, err = repo.ReserveNext(ctx, 30)
		require.ErrorIs(t, err, model.ErrNoNotificationsAvailable)
	})
}

func TestNotificationRepo_Fail_ExhaustsAttempts(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		job := enqueueTestJob(t, repo, "owner@partner.example")

		for attempt := 1; attempt <= 3; attempt++ {
			// Make the job due again regardless of backoff.
			_, err := db.ExecContext(ctx,
				"UPDATE notification_jobs SET scheduled_at = now() WHERE id = $1", job.ID)
			require.NoError(t, err)

			claimed, err := repo.ReserveNext(ctx, 30)
			require.NoError(t, err)
			require.Equal(t, job.ID, claimed.ID)

			ok, failErr := repo.Fail(ctx, claimed.ID, "smtp timeout")
			require.NoError(t, failErr)
			assert.True(t, ok)
		}

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.NotificationStatusFailed, got.Status)
		assert.Equal(t, 3, got.Attempts)

		failed, err := repo.ListFailed(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, job.ID, failed[0].ID)
	})
}

func TestNotificationRepo_FailPermanently(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		enqueueTestJob(t, repo, "owner@partner.example")
		claimed, err := repo.ReserveNext(ctx, 30)
		require.NoError(t, err)

		ok, err := repo.FailPermanently(ctx, claimed.ID, "template missing")
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(ctx, claimed.ID)
		require.NoError(t, err)
		assert.Equal(t, model.NotificationStatusFailed, got.Status)
		assert.Equal(t, 1, got.Attempts)
	})
}

func TestNotificationRepo_Release_DoesNotBurnAttempt(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		enqueueTestJob(t, repo, "owner@partner.example")
		claimed, err := repo.ReserveNext(ctx, 30)
		require.NoError(t, err)

		ok, err := repo.Release(ctx, claimed.ID, 60)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(ctx, claimed.ID)
		require.NoError(t, err)
		assert.Equal(t, model.NotificationStatusPending, got.Status)
		assert.Equal(t, 0, got.Attempts)
		assert.WithinDuration(t, time.Now().Add(time.Minute), got.ScheduledAt, 5*time.Second)
	})
}

func TestNotificationRepo_Heartbeat(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		enqueueTestJob(t, repo, "owner@partner.example")
		claimed, err := repo.ReserveNext(ctx, 5)
		require.NoError(t, err)

		ok, err := repo.Heartbeat(ctx, claimed.ID, 120)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(ctx, claimed.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LeaseExpiresAt)
		assert.WithinDuration(t, time.Now().Add(2*time.Minute), *got.LeaseExpiresAt, 5*time.Second)
	})
}

func TestNotificationRepo_ExpiredLeaseIsRequeued(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		job := enqueueTestJob(t, repo, "owner@partner.example")
		_, err := repo.ReserveNext(ctx, 30)
		require.NoError(t, err)

		// Force the lease into the past; the next reserve requeues and reclaims it.
		_, err = db.ExecContext(ctx,
			"UPDATE notification_jobs SET lease_expires_at = now() - interval '1 minute' WHERE id = $1", job.ID)
		require.NoError(t, err)

		reclaimed, err := repo.ReserveNext(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, job.ID, reclaimed.ID)
	})
}

func TestNotificationRepo_Stats(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		enqueueTestJob(t, repo, "a@partner.example")
		enqueueTestJob(t, repo, "b@partner.example")
		claimed, err := repo.ReserveNext(ctx, 30)
		require.NoError(t, err)
		_, err = repo.Complete(ctx, claimed.ID)
		require.NoError(t, err)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Pending)
		assert.Equal(t, 0, stats.Processing)
		assert.Equal(t, 1, stats.Delivered)
		assert.Equal(t, 0, stats.Failed)
	})
}

func TestNotificationRepo_Delete_RefusesActiveLease(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestNotificationRepo(db)

		enqueueTestJob(t, repo, "owner@partner.example")
		claimed, err := repo.ReserveNext(ctx, 60)
		require.NoError(t, err)

		err = repo.Delete(ctx, claimed.ID)
		require.ErrorIs(t, err, ErrNotificationNotDeletable)

		_, err = repo.Complete(ctx, claimed.ID)
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, claimed.ID))
		_, err = repo.GetByID(ctx, claimed.ID)
		require.ErrorIs(t, err, ErrNotificationNotFound)
	})
}
