package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/data/database"
	"github.com/vitrineapp/partner-go/internal/data/pgxutil"
	"github.com/vitrineapp/partner-go/internal/domain/model"
)

// PartnerRepo provides database operations for partners.
type PartnerRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewPartnerRepo creates a new PartnerRepo with real time provider.
func NewPartnerRepo(db *sql.DB) *PartnerRepo {
	return &PartnerRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewPartnerRepoWithTimeProvider creates a new PartnerRepo with a custom time provider (useful for tests).
func NewPartnerRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *PartnerRepo {
	return &PartnerRepo{DB: db, timeProvider: tp}
}

const partnerColumns = `
  id,
  name,
  contact_name,
  email,
  phone,
  address,
  siret,
  status,
  commission_rate,
  payment_account_id,
  payment_onboarded,
  reject_reason,
  created_at,
  updated_at,
  deleted_at
`

// Create inserts a new partner with status pending.
func (r *PartnerRepo) Create(ctx context.Context, req *model.CreatePartnerRequest) (*model.Partner, error) {
	if req == nil {
		return nil, errors.New("create partner request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Partner
	if err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			partner, insertErr := r.CreateInTx(ctx, tx, req)
			if insertErr != nil {
				return insertErr
			}
			out = *partner
			return nil
		},
	}); err != nil {
		return nil, r.mapWriteErr(err, false)
	}
	return &out, nil
}

// CreateInTx inserts a partner within an existing pgx transaction.
// The registration saga uses this to commit the partner and its owner
// credential as one atomic unit.
func (r *PartnerRepo) CreateInTx(
	ctx context.Context,
	tx pgx.Tx,
	req *model.CreatePartnerRequest,
) (*model.Partner, error) {
	if tx == nil {
		return nil, errors.New("transaction is required")
	}
	if req == nil {
		return nil, errors.New("create partner request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	createdAt := r.timeProvider.Now().UTC()
	rows, err := tx.Query(ctx, `
		INSERT INTO partners (
			name, contact_name, email, phone, address, siret, status, commission_rate, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $9
		) RETURNING `+partnerColumns,
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.ContactName),
		model.NormalizeEmail(req.Email),
		req.Phone,
		req.Address,
		strings.TrimSpace(req.SIRET),
		model.PartnerStatusPending,
		req.CommissionRate,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert partner: %w", err)
	}
	defer rows.Close()

	out, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Partner])
	if err != nil {
		return nil, r.mapWriteErr(err, false)
	}
	return &out, nil
}

// GetByID retrieves a partner by ID, including soft-deleted rows.
func (r *PartnerRepo) GetByID(ctx context.Context, id string) (*model.Partner, error) {
	return r.getByQuery(ctx, partnerGetByIDQuery, "failed to get partner by ID", id)
}

// GetByEmail retrieves a non-deleted partner by email.
func (r *PartnerRepo) GetByEmail(ctx context.Context, email string) (*model.Partner, error) {
	return r.getByQuery(ctx, partnerGetByEmailQuery, "failed to get partner by email", model.NormalizeEmail(email))
}

// GetBySIRET retrieves a non-deleted partner by SIRET.
func (r *PartnerRepo) GetBySIRET(ctx context.Context, siret string) (*model.Partner, error) {
	return r.getByQuery(ctx, partnerGetBySIRETQuery, "failed to get partner by SIRET", strings.TrimSpace(siret))
}

// ExistsByEmail reports whether a non-deleted partner with the email exists.
func (r *PartnerRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (
		SELECT 1 FROM partners WHERE email = $1 AND deleted_at IS NULL
	)`, model.NormalizeEmail(email))
}

// ExistsBySIRET reports whether a non-deleted partner with the SIRET exists.
func (r *PartnerRepo) ExistsBySIRET(ctx context.Context, siret string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (
		SELECT 1 FROM partners WHERE siret = $1 AND deleted_at IS NULL
	)`, strings.TrimSpace(siret))
}

// ListWithOptions retrieves partners with optional filters and paging.
func (r *PartnerRepo) ListWithOptions(
	ctx context.Context,
	opts model.PartnersListOptions,
) ([]*model.Partner, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := max(opts.Offset, 0)

	queryOpts := []database.ListQueryOption{
		database.WithColumns(partnerColumnList()...),
		database.WithLimit(limit),
		database.WithOffset(offset),
		database.WithOrderBy("created_at", sortDirDesc),
	}
	if opts.Q != nil && strings.TrimSpace(*opts.Q) != "" {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("name", database.ILike, "%"+strings.TrimSpace(*opts.Q)+"%"),
		))
	}
	if opts.Status != nil {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereCond("status", database.Equal, *opts.Status),
		))
	}
	if !opts.IncludeDeleted {
		queryOpts = append(queryOpts, database.WithCondition(
			database.WhereRawCond("deleted_at IS NULL"),
		))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions("partners", queryOpts...))

	var rowsOut []model.Partner
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Partner])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}

	res := make([]*model.Partner, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// UpdateStatus applies a status transition with a compare-and-set on the
// current status. Returns the updated partner, or ErrPartnerNotFound when no
// non-deleted row matched id+From (either missing or concurrently moved).
func (r *PartnerRepo) UpdateStatus(
	ctx context.Context,
	id string,
	params core.UpdatePartnerStatusParams,
) (*model.Partner, error) {
	if !params.From.Valid() || !params.To.Valid() {
		return nil, fmt.Errorf("invalid status transition: %s -> %s", params.From, params.To)
	}

	var out model.Partner
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			UPDATE partners
			SET status = $3,
			    reject_reason = CASE WHEN $3 = 'rejected' THEN $4 ELSE reject_reason END,
			    updated_at = $5
			WHERE id = $1 AND status = $2 AND deleted_at IS NULL
			RETURNING `+partnerColumns,
			id, params.From, params.To, params.Reason, r.timeProvider.Now().UTC(),
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var cerr error
		out, cerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Partner])
		return cerr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("update partner status: %w", err)
	}
	return &out, nil
}

// UpdateCommissionRate updates the commission rate of a non-deleted partner.
func (r *PartnerRepo) UpdateCommissionRate(ctx context.Context, id string, rate float64) (*model.Partner, error) {
	var out model.Partner
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			UPDATE partners
			SET commission_rate = $2,
			    updated_at = $3
			WHERE id = $1 AND deleted_at IS NULL
			RETURNING `+partnerColumns,
			id, rate, r.timeProvider.Now().UTC(),
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var cerr error
		out, cerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Partner])
		return cerr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("update commission rate: %w", err)
	}
	return &out, nil
}

// SetPaymentAccount records the external payment account reference for a partner.
func (r *PartnerRepo) SetPaymentAccount(ctx context.Context, id, accountID string) (bool, error) {
	if strings.TrimSpace(accountID) == "" {
		return false, errors.New("payment account id is required")
	}
	return r.execOne(ctx, `
		UPDATE partners
		SET payment_account_id = $2,
		    updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`, id, accountID, r.timeProvider.Now().UTC())
}

// MarkPaymentOnboarded flags a partner's payment onboarding as complete.
func (r *PartnerRepo) MarkPaymentOnboarded(ctx context.Context, id string) (bool, error) {
	return r.execOne(ctx, `
		UPDATE partners
		SET payment_onboarded = TRUE,
		    updated_at = $2
		WHERE id = $1 AND payment_account_id IS NOT NULL AND deleted_at IS NULL
	`, id, r.timeProvider.Now().UTC())
}

// SoftDelete logically removes a partner. The row is retained; uniqueness
// constraints only consider non-deleted rows.
func (r *PartnerRepo) SoftDelete(ctx context.Context, id string) (bool, error) {
	now := r.timeProvider.Now().UTC()
	return r.execOne(ctx, `
		UPDATE partners
		SET deleted_at = $2,
		    updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, id, now)
}

// --- helpers ---

const (
	partnerGetByIDQuery = `
		SELECT ` + partnerColumns + `
		FROM partners
		WHERE id = $1`

	partnerGetByEmailQuery = `
		SELECT ` + partnerColumns + `
		FROM partners
		WHERE email = $1 AND deleted_at IS NULL`

	partnerGetBySIRETQuery = `
		SELECT ` + partnerColumns + `
		FROM partners
		WHERE siret = $1 AND deleted_at IS NULL`
)

// partnerColumnList returns the standard column list for dynamic partner queries.
func partnerColumnList() []string {
	return []string{
		"id",
		"name",
		"contact_name",
		"email",
		"phone",
		"address",
		"siret",
		"status",
		"commission_rate",
		"payment_account_id",
		"payment_onboarded",
		"reject_reason",
		"created_at",
		"updated_at",
		"deleted_at",
	}
}

// getByQuery executes a query expected to return a single partner.
func (r *PartnerRepo) getByQuery(
	ctx context.Context,
	q string,
	errMsg string,
	args ...any,
) (*model.Partner, error) {
	var partner model.Partner
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		partner, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Partner])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return &partner, nil
}

func (r *PartnerRepo) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return exists, nil
}

func (r *PartnerRepo) execOne(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update partner: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *PartnerRepo) mapWriteErr(err error, includeNotFound bool) error {
	if err == nil {
		return nil
	}
	if includeNotFound && errors.Is(err, pgx.ErrNoRows) {
		return ErrPartnerNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "siret") {
			return ErrPartnerSIRETExists
		}
		return ErrPartnerEmailExists
	}
	return err
}
