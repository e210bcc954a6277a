package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vitrineapp/partner-go/internal/data/pgxutil"
	"github.com/vitrineapp/partner-go/internal/domain/model"
)

// CredentialRepo provides database operations for partner credentials.
type CredentialRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCredentialRepo creates a new CredentialRepo with real time provider.
func NewCredentialRepo(db *sql.DB) *CredentialRepo {
	return &CredentialRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewCredentialRepoWithTimeProvider creates a new CredentialRepo with a custom time provider.
func NewCredentialRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *CredentialRepo {
	return &CredentialRepo{DB: db, timeProvider: tp}
}

const credentialColumns = `
  id,
  partner_id,
  email,
  secret_hash,
  role,
  active,
  created_at,
  updated_at
`

// Create inserts a new credential. The Secret field of the request must
// already be hashed by the caller.
func (r *CredentialRepo) Create(ctx context.Context, req *model.CreateCredentialRequest) (*model.Credential, error) {
	if req == nil {
		return nil, errors.New("create credential request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Credential
	if err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			cred, insertErr := r.CreateInTx(ctx, tx, req)
			if insertErr != nil {
				return insertErr
			}
			out = *cred
			return nil
		},
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateInTx inserts a credential within an existing pgx transaction.
func (r *CredentialRepo) CreateInTx(
	ctx context.Context,
	tx pgx.Tx,
	req *model.CreateCredentialRequest,
) (*model.Credential, error) {
	if tx == nil {
		return nil, errors.New("transaction is required")
	}
	if req == nil {
		return nil, errors.New("create credential request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	createdAt := r.timeProvider.Now().UTC()
	rows, err := tx.Query(ctx, `
		INSERT INTO credentials (
			partner_id, email, secret_hash, role, active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, TRUE, $5, $5
		) RETURNING `+credentialColumns,
		req.PartnerID,
		model.NormalizeEmail(req.Email),
		req.Secret,
		req.Role,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert credential: %w", err)
	}
	defer rows.Close()

	out, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Credential])
	if err != nil {
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

// GetByEmail retrieves a credential by email.
func (r *CredentialRepo) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	return r.getByQuery(ctx, `
		SELECT `+credentialColumns+`
		FROM credentials
		WHERE email = $1`, "failed to get credential by email", model.NormalizeEmail(email))
}

// GetOwnerByPartnerID retrieves the owner credential of a partner.
func (r *CredentialRepo) GetOwnerByPartnerID(ctx context.Context, partnerID string) (*model.Credential, error) {
	return r.getByQuery(ctx, `
		SELECT `+credentialColumns+`
		FROM credentials
		WHERE partner_id = $1 AND role = $2`,
		"failed to get owner credential", partnerID, model.CredentialRoleOwner)
}

// ExistsByEmail reports whether any credential with the email exists.
// Unlike partner emails, credential emails are unique across the whole
// namespace, deleted partners included.
func (r *CredentialRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT 1 FROM credentials WHERE email = $1
	)`, model.NormalizeEmail(email)).Scan(&exists); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return exists, nil
}

// SetActive toggles the active flag of a credential.
func (r *CredentialRepo) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE credentials
		SET active = $2,
		    updated_at = $3
		WHERE id = $1
	`, id, active, r.timeProvider.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("set credential active: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

// UpdateSecretHash replaces the stored secret hash of a credential.
func (r *CredentialRepo) UpdateSecretHash(ctx context.Context, id, secretHash string) (bool, error) {
	if secretHash == "" {
		return false, errors.New("secret hash is required")
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE credentials
		SET secret_hash = $2,
		    updated_at = $3
		WHERE id = $1
	`, id, secretHash, r.timeProvider.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update secret hash: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

// getByQuery executes a query expected to return a single credential.
func (r *CredentialRepo) getByQuery(
	ctx context.Context,
	q string,
	errMsg string,
	args ...any,
) (*model.Credential, error) {
	var cred model.Credential
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		cred, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Credential])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return &cred, nil
}

func (r *CredentialRepo) mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrCredentialEmailExists
	}
	return err
}
