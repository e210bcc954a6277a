package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
	"github.com/vitrineapp/partner-go/internal/testutil"
)

func newTestRegistrationRepo(db *sql.DB) *RegistrationRepo {
	return NewRegistrationRepo(db, NewPartnerRepo(db), NewCredentialRepo(db))
}

func TestRegistrationRepo_CreatePartnerWithOwner(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestRegistrationRepo(db)

		req := testutil.UniqueRegisterRequest(1)
		partner, owner, err := repo.CreatePartnerWithOwner(ctx, core.CreatePartnerWithOwnerParams{
			Partner:         &req.Partner,
			OwnerEmail:      req.ResolvedOwnerEmail(),
			OwnerSecretHash: "$2b$10$fakehashfakehashfakehash",
		})
		require.NoError(t, err)
		require.NotEmpty(t, partner.ID)
		assert.Equal(t, model.PartnerStatusPending, partner.Status)

		require.NotNil(t, owner)
		assert.Equal(t, partner.ID, owner.PartnerID)
		assert.Equal(t, model.CredentialRoleOwner, owner.Role)
		assert.Equal(t, req.ResolvedOwnerEmail(), owner.Email)
	})
}

func TestRegistrationRepo_CredentialConflictRollsBackPartner(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestRegistrationRepo(db)
		partners := NewPartnerRepo(db)

		first := testutil.UniqueRegisterRequest(1)
		_, _, err := repo.CreatePartnerWithOwner(ctx, core.CreatePartnerWithOwnerParams{
			Partner:         &first.Partner,
			OwnerEmail:      first.ResolvedOwnerEmail(),
			OwnerSecretHash: "hash-1",
		})
		require.NoError(t, err)

		// Second registration reuses the first owner email; the whole
		// transaction must roll back, leaving no partner row behind.
		second := testutil.UniqueRegisterRequest(2)
		_, _, err = repo.CreatePartnerWithOwner(ctx, core.CreatePartnerWithOwnerParams{
			Partner:         &second.Partner,
			OwnerEmail:      first.ResolvedOwnerEmail(),
			OwnerSecretHash: "hash-2",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))

		exists, err := partners.ExistsByEmail(ctx, second.Partner.Email)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestRegistrationRepo_SIRETConflict(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := newTestRegistrationRepo(db)

		first := testutil.UniqueRegisterRequest(1)
		_, _, err := repo.CreatePartnerWithOwner(ctx, core.CreatePartnerWithOwnerParams{
			Partner:         &first.Partner,
			OwnerEmail:      first.ResolvedOwnerEmail(),
			OwnerSecretHash: "hash-1",
		})
		require.NoError(t, err)

		second := testutil.UniqueRegisterRequest(2)
		second.Partner.SIRET = first.Partner.SIRET
		_, _, err = repo.CreatePartnerWithOwner(ctx, core.CreatePartnerWithOwnerParams{
			Partner:         &second.Partner,
			OwnerEmail:      second.ResolvedOwnerEmail(),
			OwnerSecretHash: "hash-2",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})
}
