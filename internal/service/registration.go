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

// RegistrationStores groups the repositories the registration saga touches.
type RegistrationStores struct {
	Store       core.RegistrationStore
	Partners    core.PartnerRepository
	Credentials core.CredentialRepository
}

// RegistrationServiceOptions groups dependencies for RegistrationService.
type RegistrationServiceOptions struct {
	Stores RegistrationStores
	Side   RegistrationSideEffects
	Logger *slog.Logger // Optional: structured logger
}

// RegistrationSideEffects groups the non-transactional collaborators.
type RegistrationSideEffects struct {
	Queue  core.NotificationQueue
	Hasher core.SecretHasher
}

// RegistrationService orchestrates partner registration: cross-entity
// uniqueness checks, the atomic partner+owner commit, and the best-effort
// welcome notification.
type RegistrationService struct {
	store       core.RegistrationStore
	partners    core.PartnerRepository
	credentials core.CredentialRepository
	queue       core.NotificationQueue
	hasher      core.SecretHasher
	logger      *slog.Logger
}

// NewRegistrationService constructs a new RegistrationService.
func NewRegistrationService(opts RegistrationServiceOptions) (*RegistrationService, error) {
	if opts.Stores.Store == nil {
		return nil, errors.New("RegistrationStore is required")
	}
	if opts.Stores.Partners == nil {
		return nil, errors.New("PartnerRepository is required")
	}
	if opts.Stores.Credentials == nil {
		return nil, errors.New("CredentialRepository is required")
	}
	if opts.Side.Hasher == nil {
		return nil, errors.New("SecretHasher is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "registration_service")
	}

	return &RegistrationService{
		store:       opts.Stores.Store,
		partners:    opts.Stores.Partners,
		credentials: opts.Stores.Credentials,
		queue:       opts.Side.Queue,
		hasher:      opts.Side.Hasher,
		logger:      logger,
	}, nil
}

// RegistrationResult is the outcome of a successful registration.
type RegistrationResult struct {
	Partner         *model.Partner
	Owner           *model.Credential
	WelcomeEnqueued bool
}

// Register creates a partner (status pending) and its owner credential as one
// atomic unit, then enqueues a welcome notification. Registration success is
// defined purely by the committed partner record; an enqueue failure is
// logged and reported through WelcomeEnqueued, never as an error.
func (s *RegistrationService) Register(
	ctx context.Context,
	req *model.RegisterPartnerRequest,
) (*RegistrationResult, error) {
	if req == nil {
		return nil, apperrors.Validation("register request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	if err := s.checkUniqueness(ctx, req); err != nil {
		return nil, err
	}

	secretHash, err := s.resolveSecretHash(req.OwnerSecret)
	if err != nil {
		return nil, fmt.Errorf("hash owner secret: %w", err)
	}

	partner, owner, err := s.store.CreatePartnerWithOwner(ctx, core.CreatePartnerWithOwnerParams{
		Partner:         &req.Partner,
		OwnerEmail:      req.ResolvedOwnerEmail(),
		OwnerSecretHash: secretHash,
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, err
		}
		return nil, fmt.Errorf("commit registration: %w", err)
	}

	enqueued := s.enqueueWelcome(ctx, partner, owner)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "partner registered",
			"partner_id", partner.ID,
			"status", partner.Status,
			"welcome_enqueued", enqueued,
		)
	}

	return &RegistrationResult{
		Partner:         partner,
		Owner:           owner,
		WelcomeEnqueued: enqueued,
	}, nil
}

// checkUniqueness runs the precondition checks in a fixed order so callers
// always see the same conflict first: partner email, credential email, SIRET.
// The database unique indexes remain the authority under concurrency; these
// checks exist to name the offending field.
func (s *RegistrationService) checkUniqueness(ctx context.Context, req *model.RegisterPartnerRequest) error {
	emailTaken, err := s.partners.ExistsByEmail(ctx, req.Partner.Email)
	if err != nil {
		return fmt.Errorf("check partner email: %w", err)
	}
	if emailTaken {
		return apperrors.ConflictField("email", "a partner with this email already exists")
	}

	credTaken, err := s.credentials.ExistsByEmail(ctx, req.ResolvedOwnerEmail())
	if err != nil {
		return fmt.Errorf("check credential email: %w", err)
	}
	if credTaken {
		return apperrors.ConflictField("email", "a credential with this email already exists")
	}

	siretTaken, err := s.partners.ExistsBySIRET(ctx, req.Partner.SIRET)
	if err != nil {
		return fmt.Errorf("check siret: %w", err)
	}
	if siretTaken {
		return apperrors.ConflictField("siret", "a partner with this SIRET already exists")
	}

	return nil
}

// resolveSecretHash hashes the owner secret unless it already carries a
// bcrypt prefix (seed and import paths hand us pre-hashed secrets).
func (s *RegistrationService) resolveSecretHash(secret string) (string, error) {
	if s.hasher.LooksHashed(secret) {
		return secret, nil
	}
	return s.hasher.Hash(secret)
}

// enqueueWelcome enqueues the partner-welcome notification after the commit.
func (s *RegistrationService) enqueueWelcome(
	ctx context.Context,
	partner *model.Partner,
	owner *model.Credential,
) bool {
	if s.queue == nil {
		return false
	}

	_, err := s.queue.Enqueue(ctx, &model.EnqueueNotificationRequest{
		Kind:      model.KindPartnerWelcome,
		Recipient: owner.Email,
		Context: model.NotificationContext{
			model.ContextKeyPartnerName: partner.Name,
			model.ContextKeyContactName: partner.ContactName,
		},
	})
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "welcome notification enqueue failed",
				"partner_id", partner.ID,
				"error", err,
			)
		}
		return false
	}
	return true
}
