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

// SuspendHook runs after a partner is suspended. No notification is enqueued
// on suspension; this is the extension point for anything that needs to react.
type SuspendHook func(ctx context.Context, partner *model.Partner)

// LifecycleServiceOptions groups dependencies for LifecycleService.
type LifecycleServiceOptions struct {
	Deps   LifecycleDeps
	Logger *slog.Logger // Optional: structured logger
}

// LifecycleDeps groups the repositories and collaborators of the lifecycle manager.
type LifecycleDeps struct {
	Partners    core.PartnerRepository
	Credentials core.CredentialRepository
	Queue       core.NotificationQueue // Optional: nil disables lifecycle notifications
	OnSuspend   SuspendHook            // Optional
}

// LifecycleService governs partner status transitions and the capability
// gate derived from them.
type LifecycleService struct {
	partners    core.PartnerRepository
	credentials core.CredentialRepository
	queue       core.NotificationQueue
	onSuspend   SuspendHook
	logger      *slog.Logger
}

// NewLifecycleService constructs a new LifecycleService.
func NewLifecycleService(opts LifecycleServiceOptions) (*LifecycleService, error) {
	if opts.Deps.Partners == nil {
		return nil, errors.New("PartnerRepository is required")
	}
	if opts.Deps.Credentials == nil {
		return nil, errors.New("CredentialRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "lifecycle_service")
	}

	return &LifecycleService{
		partners:    opts.Deps.Partners,
		credentials: opts.Deps.Credentials,
		queue:       opts.Deps.Queue,
		onSuspend:   opts.Deps.OnSuspend,
		logger:      logger,
	}, nil
}

// CanOfferServices is the single capability gate derived from partner status.
// Every catalog mutation consults it; keeping it here keeps the rule
// centralized and testable.
func CanOfferServices(partner *model.Partner) bool {
	return partner != nil &&
		partner.DeletedAt == nil &&
		partner.Status == model.PartnerStatusApproved
}

// CanOfferServices reports whether the partner may mutate its catalog.
func (s *LifecycleService) CanOfferServices(partner *model.Partner) bool {
	return CanOfferServices(partner)
}

// GetByID retrieves a partner by id.
func (s *LifecycleService) GetByID(ctx context.Context, id string) (*model.Partner, error) {
	partner, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get partner by id: %w", err)
	}
	return partner, nil
}

// List retrieves partners with paging and filtering.
func (s *LifecycleService) List(ctx context.Context, opts model.PartnersListOptions) ([]*model.Partner, error) {
	return s.partners.ListWithOptions(ctx, opts)
}

// Approve moves a pending partner to approved and notifies its owner.
func (s *LifecycleService) Approve(ctx context.Context, id string) (*model.Partner, error) {
	partner, err := s.transition(ctx, id, model.PartnerStatusApproved, nil)
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, partner, model.KindPartnerApproved, nil)
	return partner, nil
}

// Reject moves a pending partner to rejected, recording the optional reason
// and carrying it in the notification context.
func (s *LifecycleService) Reject(ctx context.Context, id string, reason *string) (*model.Partner, error) {
	partner, err := s.transition(ctx, id, model.PartnerStatusRejected, reason)
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, partner, model.KindPartnerRejected, reason)
	return partner, nil
}

// Suspend moves an approved partner to suspended. No notification is
// enqueued; the suspend hook runs when configured.
func (s *LifecycleService) Suspend(ctx context.Context, id string) (*model.Partner, error) {
	partner, err := s.transition(ctx, id, model.PartnerStatusSuspended, nil)
	if err != nil {
		return nil, err
	}

	if s.onSuspend != nil {
		s.onSuspend(ctx, partner)
	}
	return partner, nil
}

// UpdateCommissionRate updates the partner's commission rate after bounds
// validation.
func (s *LifecycleService) UpdateCommissionRate(ctx context.Context, id string, rate float64) (*model.Partner, error) {
	if rate < 0 || rate > 100 {
		return nil, apperrors.ValidationField("commission_rate", "commission_rate must be between 0 and 100")
	}

	partner, err := s.partners.UpdateCommissionRate(ctx, id, rate)
	if err != nil {
		return nil, fmt.Errorf("update commission rate: %w", err)
	}
	return partner, nil
}

// SoftDelete marks a partner deleted, freeing its email and SIRET for reuse.
func (s *LifecycleService) SoftDelete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.partners.SoftDelete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("soft delete partner: %w", err)
	}
	return deleted, nil
}

// transition loads the partner, checks the state machine guard, and applies
// the compare-and-set update. A guard failure mutates nothing.
func (s *LifecycleService) transition(
	ctx context.Context,
	id string,
	target model.PartnerStatus,
	reason *string,
) (*model.Partner, error) {
	partner, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get partner: %w", err)
	}
	if partner.DeletedAt != nil {
		return nil, apperrors.NotFoundf("partner %s is deleted", id)
	}

	if !partner.Status.CanTransitionTo(target) {
		return nil, apperrors.InvalidTransitionf(
			"cannot transition partner from %s to %s", partner.Status, target,
		)
	}

	updated, err := s.partners.UpdateStatus(ctx, id, core.UpdatePartnerStatusParams{
		From:   partner.Status,
		To:     target,
		Reason: reason,
	})
	if err != nil {
		// The compare-and-set misses when another caller moved the partner
		// between our read and the update.
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInvalidTransition,
			"transition partner to %s", target)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "partner status changed",
			"partner_id", updated.ID,
			"from", partner.Status,
			"to", updated.Status,
		)
	}
	return updated, nil
}

// notifyOwner enqueues a lifecycle notification addressed to the partner's
// owner credential. A missing owner or a failed enqueue is logged and
// swallowed; notification failures never corrupt lifecycle state.
func (s *LifecycleService) notifyOwner(
	ctx context.Context,
	partner *model.Partner,
	kind model.NotificationKind,
	reason *string,
) {
	if s.queue == nil {
		return
	}

	owner, err := s.credentials.GetOwnerByPartnerID(ctx, partner.ID)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "owner credential lookup failed, skipping notification",
				"partner_id", partner.ID,
				"kind", kind,
				"error", err,
			)
		}
		return
	}

	notifCtx := model.NotificationContext{
		model.ContextKeyPartnerName: partner.Name,
		model.ContextKeyContactName: partner.ContactName,
	}
	if reason != nil && *reason != "" {
		notifCtx[model.ContextKeyReason] = *reason
	}

	if _, err := s.queue.Enqueue(ctx, &model.EnqueueNotificationRequest{
		Kind:      kind,
		Recipient: owner.Email,
		Context:   notifCtx,
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "lifecycle notification enqueue failed",
			"partner_id", partner.ID,
			"kind", kind,
			"error", err,
		)
	}
}
