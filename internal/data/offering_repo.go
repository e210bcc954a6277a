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

// OfferingRepo provides database operations for partner catalog offerings.
type OfferingRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewOfferingRepo creates a new OfferingRepo with real time provider.
func NewOfferingRepo(db *sql.DB) *OfferingRepo {
	return &OfferingRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewOfferingRepoWithTimeProvider creates a new OfferingRepo with a custom time provider.
func NewOfferingRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *OfferingRepo {
	return &OfferingRepo{DB: db, timeProvider: tp}
}

const offeringColumns = `
  id,
  partner_id,
  name,
  description,
  price_cents,
  active,
  created_at,
  updated_at
`

// Create inserts a new active offering for a partner.
func (r *OfferingRepo) Create(ctx context.Context, req *model.CreateOfferingRequest) (*model.Offering, error) {
	if req == nil {
		return nil, errors.New("create offering request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	createdAt := r.timeProvider.Now().UTC()
	var out model.Offering
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			INSERT INTO partner_offerings (
				partner_id, name, description, price_cents, active, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, TRUE, $5, $5
			) RETURNING `+offeringColumns,
			req.PartnerID,
			req.Name,
			req.Description,
			req.PriceCents,
			createdAt,
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var cerr error
		out, cerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Offering])
		return cerr
	})
	if err != nil {
		return nil, r.mapWriteErr(err)
	}
	return &out, nil
}

// GetByID retrieves an offering by id.
func (r *OfferingRepo) GetByID(ctx context.Context, id string) (*model.Offering, error) {
	var out model.Offering
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+offeringColumns+`
			FROM partner_offerings
			WHERE id = $1`, id)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var cerr error
		out, cerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Offering])
		return cerr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOfferingNotFound
		}
		return nil, fmt.Errorf("failed to get offering: %w", err)
	}
	return &out, nil
}

// ListByPartner retrieves the offerings of a partner, newest first.
func (r *OfferingRepo) ListByPartner(ctx context.Context, partnerID string) ([]*model.Offering, error) {
	var rowsOut []model.Offering
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+offeringColumns+`
			FROM partner_offerings
			WHERE partner_id = $1
			ORDER BY created_at DESC`, partnerID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var cerr error
		rowsOut, cerr = pgx.CollectRows(rows, pgx.RowToStructByName[model.Offering])
		return cerr
	})
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}

	res := make([]*model.Offering, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Delete removes an offering belonging to the given partner. The partner
// scope on the delete keeps one partner from removing another's rows.
func (r *OfferingRepo) Delete(ctx context.Context, id, partnerID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM partner_offerings
		WHERE id = $1 AND partner_id = $2
	`, id, partnerID)
	if err != nil {
		return false, fmt.Errorf("delete offering: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *OfferingRepo) mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrOfferingNameExists
		case "23503":
			return ErrPartnerNotFound
		}
	}
	return err
}
