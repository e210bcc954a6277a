package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
)

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Offerings core.OfferingRepository // Required: offering repository
	Partners  core.PartnerRepository  // Required: partner repository for the gate
	Logger    *slog.Logger            // Optional: structured logger
}

// CatalogService manages partner offerings. Every mutation consults the
// CanOfferServices gate; non-approved partners get NotEligible.
type CatalogService struct {
	offerings core.OfferingRepository
	partners  core.PartnerRepository
	logger    *slog.Logger
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(opts CatalogServiceOptions) (*CatalogService, error) {
	if opts.Offerings == nil {
		return nil, errors.New("OfferingRepository is required")
	}
	if opts.Partners == nil {
		return nil, errors.New("PartnerRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "catalog_service")
	}

	return &CatalogService{
		offerings: opts.Offerings,
		partners:  opts.Partners,
		logger:    logger,
	}, nil
}

// AddOffering creates a catalog offering for an approved partner.
func (s *CatalogService) AddOffering(
	ctx context.Context,
	req *model.CreateOfferingRequest,
) (*model.Offering, error) {
	if req == nil {
		return nil, apperrors.Validation("create offering request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	if err := s.requireEligible(ctx, req.PartnerID); err != nil {
		return nil, err
	}

	offering, err := s.offerings.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create offering: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "offering added",
			"offering_id", offering.ID,
			"partner_id", offering.PartnerID,
		)
	}
	return offering, nil
}

// RemoveOffering deletes an offering owned by the partner.
func (s *CatalogService) RemoveOffering(ctx context.Context, id, partnerID string) (bool, error) {
	if err := s.requireEligible(ctx, partnerID); err != nil {
		return false, err
	}

	removed, err := s.offerings.Delete(ctx, id, partnerID)
	if err != nil {
		return false, fmt.Errorf("delete offering: %w", err)
	}
	return removed, nil
}

// ListOfferings retrieves a partner's offerings. Reads are not gated; a
// suspended partner can still inspect its own catalog.
func (s *CatalogService) ListOfferings(ctx context.Context, partnerID string) ([]*model.Offering, error) {
	return s.offerings.ListByPartner(ctx, partnerID)
}

// requireEligible loads the partner and applies the capability gate.
func (s *CatalogService) requireEligible(ctx context.Context, partnerID string) error {
	partner, err := s.partners.GetByID(ctx, partnerID)
	if err != nil {
		return fmt.Errorf("get partner: %w", err)
	}
	if !CanOfferServices(partner) {
		return apperrors.NotEligiblef(
			"partner %s has status %s and cannot offer services", partner.ID, partner.Status,
		)
	}
	return nil
}
