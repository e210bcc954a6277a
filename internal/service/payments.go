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

// PaymentServiceOptions groups dependencies for PaymentService.
type PaymentServiceOptions struct {
	Partners core.PartnerRepository // Required: partner repository
	Provider core.PaymentProvider   // Required: external payment platform
	Logger   *slog.Logger           // Optional: structured logger
}

// PaymentService drives payment onboarding against the external provider.
// Only approved partners may start onboarding; the provider account id is
// persisted as an opaque reference on the partner row.
type PaymentService struct {
	partners core.PartnerRepository
	provider core.PaymentProvider
	logger   *slog.Logger
}

// NewPaymentService constructs a new PaymentService.
func NewPaymentService(opts PaymentServiceOptions) (*PaymentService, error) {
	if opts.Partners == nil {
		return nil, errors.New("PartnerRepository is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("PaymentProvider is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "payment_service")
	}

	return &PaymentService{
		partners: opts.Partners,
		provider: opts.Provider,
		logger:   logger,
	}, nil
}

// StartOnboarding provisions a provider account for an approved partner (if
// one does not exist yet) and returns the time-limited onboarding link.
func (s *PaymentService) StartOnboarding(ctx context.Context, partnerID string) (*core.OnboardingLink, error) {
	partner, err := s.partners.GetByID(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("get partner: %w", err)
	}
	if partner.Status != model.PartnerStatusApproved {
		return nil, apperrors.NotEligiblef(
			"partner %s has status %s and cannot onboard payments", partner.ID, partner.Status,
		)
	}

	accountID, err := s.ensureAccount(ctx, partner)
	if err != nil {
		return nil, err
	}

	link, err := s.provider.OnboardingLink(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("onboarding link: %w", err)
	}
	return link, nil
}

// RefreshOnboardingStatus asks the provider whether the partner's account
// finished onboarding and persists the flag when it flipped.
func (s *PaymentService) RefreshOnboardingStatus(ctx context.Context, partnerID string) (bool, error) {
	partner, err := s.partners.GetByID(ctx, partnerID)
	if err != nil {
		return false, fmt.Errorf("get partner: %w", err)
	}
	if partner.PaymentAccountID == nil {
		return false, nil
	}
	if partner.PaymentOnboarded {
		return true, nil
	}

	done, err := s.provider.AccountOnboarded(ctx, *partner.PaymentAccountID)
	if err != nil {
		return false, fmt.Errorf("check provider account: %w", err)
	}
	if !done {
		return false, nil
	}

	if _, err := s.partners.MarkPaymentOnboarded(ctx, partner.ID); err != nil {
		return false, fmt.Errorf("mark payment onboarded: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "partner payment onboarding completed",
			"partner_id", partner.ID,
		)
	}
	return true, nil
}

// HandleSuspension records that a suspended partner still carries a provider
// account. Payouts are paused on the provider side by support tooling; the
// account reference itself stays intact so reinstatement needs no re-onboarding.
func (s *PaymentService) HandleSuspension(ctx context.Context, partner *model.Partner) {
	if partner == nil || partner.PaymentAccountID == nil {
		return
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "suspended partner has an active payment account",
			"partner_id", partner.ID,
			"payment_account_id", *partner.PaymentAccountID,
		)
	}
}

// ensureAccount returns the existing provider account id or creates one and
// persists the reference.
func (s *PaymentService) ensureAccount(ctx context.Context, partner *model.Partner) (string, error) {
	if partner.PaymentAccountID != nil && *partner.PaymentAccountID != "" {
		return *partner.PaymentAccountID, nil
	}

	account, err := s.provider.CreateAccount(ctx, partner)
	if err != nil {
		return "", fmt.Errorf("create provider account: %w", err)
	}

	if _, err := s.partners.SetPaymentAccount(ctx, partner.ID, account.ID); err != nil {
		return "", fmt.Errorf("persist payment account: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "payment account created",
			"partner_id", partner.ID,
		)
	}
	return account.ID, nil
}
