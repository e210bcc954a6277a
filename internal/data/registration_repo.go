package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/data/pgxutil"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
)

// RegistrationRepo commits a partner and its owner credential as one atomic
// unit. Either both rows persist or neither does; a failure on the credential
// insert rolls back the partner insert.
type RegistrationRepo struct {
	DB          *sql.DB
	partners    *PartnerRepo
	credentials *CredentialRepo
}

// NewRegistrationRepo creates a RegistrationRepo over the given repositories.
func NewRegistrationRepo(db *sql.DB, partners *PartnerRepo, credentials *CredentialRepo) *RegistrationRepo {
	return &RegistrationRepo{DB: db, partners: partners, credentials: credentials}
}

// CreatePartnerWithOwner inserts the partner (status pending) and its owner
// credential in a single transaction and returns both rows.
func (r *RegistrationRepo) CreatePartnerWithOwner(
	ctx context.Context,
	params core.CreatePartnerWithOwnerParams,
) (*model.Partner, *model.Credential, error) {
	if params.Partner == nil {
		return nil, nil, errors.New("create partner request is required")
	}
	if params.OwnerSecretHash == "" {
		return nil, nil, errors.New("owner secret hash is required")
	}

	var (
		partner    *model.Partner
		credential *model.Credential
	)
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			p, perr := r.partners.CreateInTx(ctx, tx, params.Partner)
			if perr != nil {
				return perr
			}

			c, cerr := r.credentials.CreateInTx(ctx, tx, &model.CreateCredentialRequest{
				PartnerID: p.ID,
				Email:     params.OwnerEmail,
				Secret:    params.OwnerSecretHash,
				Role:      model.CredentialRoleOwner,
			})
			if cerr != nil {
				return cerr
			}

			partner = p
			credential = c
			return nil
		},
	})
	if err != nil {
		return nil, nil, mapRegistrationErr(err)
	}
	return partner, credential, nil
}

// mapRegistrationErr converts unique-violation sentinels raised inside the
// transaction into typed conflicts. Preconditions are checked by the caller,
// but concurrent registrations can still trip the indexes.
func mapRegistrationErr(err error) error {
	switch {
	case errors.Is(err, ErrPartnerEmailExists):
		return apperrors.ConflictField("email", "a partner with this email already exists")
	case errors.Is(err, ErrCredentialEmailExists):
		return apperrors.ConflictField("email", "a credential with this email already exists")
	case errors.Is(err, ErrPartnerSIRETExists):
		return apperrors.ConflictField("siret", "a partner with this SIRET already exists")
	default:
		return err
	}
}
