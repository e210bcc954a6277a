package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vitrineapp/partner-go/internal/domain/model"
)

// This file contains the port definitions between the service layer and the
// data layer and outbound adapters. Service implementations depend on these
// interfaces, not on concrete implementations.

// UpdatePartnerStatusParams groups parameters for a compare-and-set status
// transition. Reason is only persisted for rejections.
type UpdatePartnerStatusParams struct {
	From   model.PartnerStatus
	To     model.PartnerStatus
	Reason *string
}

// PartnerRepository defines the interface for partner data operations.
type PartnerRepository interface {
	Create(ctx context.Context, req *model.CreatePartnerRequest) (*model.Partner, error)
	GetByID(ctx context.Context, id string) (*model.Partner, error)
	GetByEmail(ctx context.Context, email string) (*model.Partner, error)
	GetBySIRET(ctx context.Context, siret string) (*model.Partner, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsBySIRET(ctx context.Context, siret string) (bool, error)
	ListWithOptions(ctx context.Context, opts model.PartnersListOptions) ([]*model.Partner, error)
	UpdateStatus(ctx context.Context, id string, params UpdatePartnerStatusParams) (*model.Partner, error)
	UpdateCommissionRate(ctx context.Context, id string, rate float64) (*model.Partner, error)
	SetPaymentAccount(ctx context.Context, id, accountID string) (bool, error)
	MarkPaymentOnboarded(ctx context.Context, id string) (bool, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
}

// PartnerRepositoryTx defines optional transactional partner creation support.
type PartnerRepositoryTx interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, req *model.CreatePartnerRequest) (*model.Partner, error)
}

// CredentialRepository defines the interface for credential data operations.
type CredentialRepository interface {
	Create(ctx context.Context, req *model.CreateCredentialRequest) (*model.Credential, error)
	GetByEmail(ctx context.Context, email string) (*model.Credential, error)
	GetOwnerByPartnerID(ctx context.Context, partnerID string) (*model.Credential, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetActive(ctx context.Context, id string, active bool) (bool, error)
	UpdateSecretHash(ctx context.Context, id, secretHash string) (bool, error)
}

// OfferingRepository defines the interface for catalog offering data operations.
type OfferingRepository interface {
	Create(ctx context.Context, req *model.CreateOfferingRequest) (*model.Offering, error)
	GetByID(ctx context.Context, id string) (*model.Offering, error)
	ListByPartner(ctx context.Context, partnerID string) ([]*model.Offering, error)
	Delete(ctx context.Context, id, partnerID string) (bool, error)
}

// CreatePartnerWithOwnerParams groups the inputs of a registration commit.
// OwnerSecretHash must already be hashed by the caller.
type CreatePartnerWithOwnerParams struct {
	Partner         *model.CreatePartnerRequest
	OwnerEmail      string
	OwnerSecretHash string
}

// RegistrationStore commits a partner together with its owner credential as
// one atomic unit.
type RegistrationStore interface {
	CreatePartnerWithOwner(
		ctx context.Context,
		params CreatePartnerWithOwnerParams,
	) (*model.Partner, *model.Credential, error)
}

// NotificationQueue defines the interface for the persistent notification
// job queue.
type NotificationQueue interface {
	Enqueue(ctx context.Context, req *model.EnqueueNotificationRequest) (*model.NotificationJob, error)
	GetByID(ctx context.Context, id string) (*model.NotificationJob, error)
	ReserveNext(ctx context.Context, leaseSeconds int) (*model.NotificationJob, error)
	WaitForNotification(ctx context.Context) error
	Heartbeat(ctx context.Context, id string, leaseSeconds int) (bool, error)
	Complete(ctx context.Context, id string) (bool, error)
	Fail(ctx context.Context, id, errMsg string) (bool, error)
	// FailPermanently marks a claimed job failed regardless of remaining
	// attempts. For errors that retrying cannot fix.
	FailPermanently(ctx context.Context, id, errMsg string) (bool, error)
	// Release returns a claimed job to pending without counting an attempt,
	// rescheduled delaySeconds into the future.
	Release(ctx context.Context, id string, delaySeconds int) (bool, error)
	Stats(ctx context.Context) (*model.NotificationStats, error)
	ListFailed(ctx context.Context, limit, offset int) ([]*model.NotificationJob, error)
	Delete(ctx context.Context, id string) error
}

// DeleteOldNotificationsParams groups parameters for DeleteOldNotifications.
type DeleteOldNotificationsParams struct {
	Status    model.NotificationStatus
	MaxAge    time.Duration
	BatchSize int
}

// ReaperRepository defines the interface for notification cleanup operations.
type ReaperRepository interface {
	// DeleteOldNotifications deletes terminal notification jobs older than
	// MaxAge. Processes up to BatchSize rows per call to prevent long locks.
	// Returns the number of rows deleted.
	DeleteOldNotifications(ctx context.Context, params DeleteOldNotificationsParams) (int64, error)
}

// RenderedMessage is the output of rendering a notification template.
type RenderedMessage struct {
	Subject string
	HTML    string
}

// TemplateRenderer renders a notification kind and its context into a
// deliverable message.
type TemplateRenderer interface {
	Render(kind model.NotificationKind, context model.NotificationContext) (*RenderedMessage, error)
}

// SendMailParams groups the inputs of a mail delivery.
type SendMailParams struct {
	To      string
	Subject string
	HTML    string
}

// MailTransport delivers rendered messages to a recipient address.
type MailTransport interface {
	Send(ctx context.Context, params SendMailParams) error
}

// SecretHasher hashes and verifies credential secrets.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
	// LooksHashed reports whether the value is already a stored hash rather
	// than a plaintext secret.
	LooksHashed(value string) bool
}

// PaymentAccount is a provider-side account attached to a partner.
type PaymentAccount struct {
	ID          string
	OnboardedAt *time.Time
}

// OnboardingLink is a time-limited URL where a partner completes
// provider-side onboarding. ExpiresAt is nil when the provider did not
// report an expiry.
type OnboardingLink struct {
	URL       string
	ExpiresAt *time.Time
}

// PaymentProvider defines the interface for the external payment platform.
type PaymentProvider interface {
	// CreateAccount provisions a provider account for the partner and
	// returns its identifier.
	CreateAccount(ctx context.Context, partner *model.Partner) (*PaymentAccount, error)
	// OnboardingLink returns a URL where the partner completes onboarding,
	// together with its expiry.
	OnboardingLink(ctx context.Context, accountID string) (*OnboardingLink, error)
	// AccountOnboarded reports whether the provider account finished onboarding.
	AccountOnboarded(ctx context.Context, accountID string) (bool, error)
}

// RecipientLimiter rate-limits deliveries per recipient address.
type RecipientLimiter interface {
	// Allow reports whether another delivery to the recipient is permitted
	// right now and records the attempt when it is.
	Allow(ctx context.Context, recipient string) (bool, error)
}
