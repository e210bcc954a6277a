// Package devseed populates a development database with a demo partner so the
// worker and CLI have something to act on right after `partnerd` starts.
package devseed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/data"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
	"github.com/vitrineapp/partner-go/internal/service"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Registration *service.RegistrationService
	Lifecycle    *service.LifecycleService
	Catalog      *service.CatalogService
	Partners     core.PartnerRepository
}

// Run executes the development seeding workflow. Seeding is idempotent:
// records that already exist are left alone.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	partnerID, err := seedPartner(ctx, svcs, logger)
	if err != nil {
		return err
	}

	if err := approvePartner(ctx, svcs.Lifecycle, partnerID, logger); err != nil {
		return err
	}

	failures := seedOfferings(ctx, svcs.Catalog, partnerID, logger)
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func demoRegistration() *model.RegisterPartnerRequest {
	phone := "+33 1 42 00 00 00"
	address := "12 rue des Halles, 75001 Paris"
	return &model.RegisterPartnerRequest{
		Partner: model.CreatePartnerRequest{
			Name:           "Fromagerie Dubois",
			ContactName:    "Paul Dubois",
			Email:          "contact@fromagerie-dubois.fr",
			Phone:          &phone,
			Address:        &address,
			SIRET:          "98765432109876",
			CommissionRate: 12.5,
		},
		OwnerSecret: "dev-only-passphrase",
	}
}

func seedPartner(ctx context.Context, svcs Services, logger *slog.Logger) (string, error) {
	req := demoRegistration()

	result, err := svcs.Registration.Register(ctx, req)
	if err == nil {
		if logger != nil {
			logger.InfoContext(ctx, "created demo partner",
				"partner_id", result.Partner.ID,
				"name", req.Partner.Name,
			)
		}
		return result.Partner.ID, nil
	}

	if !apperrors.IsConflict(err) {
		return "", fmt.Errorf("register demo partner: %w", err)
	}

	existing, getErr := svcs.Partners.GetByEmail(ctx, req.Partner.Email)
	if getErr != nil {
		return "", fmt.Errorf("load existing demo partner: %w", getErr)
	}
	if logger != nil {
		logger.InfoContext(ctx, "demo partner already exists", "partner_id", existing.ID)
	}
	return existing.ID, nil
}

func approvePartner(ctx context.Context, svc *service.LifecycleService, id string, logger *slog.Logger) error {
	partner, err := svc.Approve(ctx, id)
	if err != nil {
		if apperrors.IsInvalidTransition(err) {
			if logger != nil {
				logger.InfoContext(ctx, "demo partner already left pending state", "partner_id", id)
			}
			return nil
		}
		return fmt.Errorf("approve demo partner: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "approved demo partner", "partner_id", partner.ID)
	}
	return nil
}

func seedOfferings(ctx context.Context, svc *service.CatalogService, partnerID string, logger *slog.Logger) int {
	failures := 0
	for _, req := range defaultOfferings(partnerID) {
		created, err := createOffering(ctx, svc, req)
		if err != nil {
			if logger != nil {
				logger.ErrorContext(ctx, "failed to create offering", "name", req.Name, "error", err)
			}
			failures++
			continue
		}
		if logger != nil {
			msg := "offering already exists"
			if created {
				msg = "created offering"
			}
			logger.InfoContext(ctx, msg, "name", req.Name)
		}
	}
	return failures
}

func defaultOfferings(partnerID string) []*model.CreateOfferingRequest {
	comte := "Comté 18 mois, meule au lait cru"
	plateau := "Plateau dégustation pour 6 personnes"
	return []*model.CreateOfferingRequest{
		{PartnerID: partnerID, Name: "Comté affiné", Description: &comte, PriceCents: 3200},
		{PartnerID: partnerID, Name: "Plateau de fromages", Description: &plateau, PriceCents: 5400},
	}
}

func createOffering(ctx context.Context, svc *service.CatalogService, req *model.CreateOfferingRequest) (bool, error) {
	if _, err := svc.AddOffering(ctx, req); err != nil {
		if errors.Is(err, data.ErrOfferingNameExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
