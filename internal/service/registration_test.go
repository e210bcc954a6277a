package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
	"github.com/vitrineapp/partner-go/internal/mocks"
	"go.uber.org/mock/gomock"
)

type registrationMocks struct {
	store       *mocks.MockRegistrationStore
	partners    *mocks.MockPartnerRepository
	credentials *mocks.MockCredentialRepository
	queue       *mocks.MockNotificationQueue
	hasher      *mocks.MockSecretHasher
}

func newTestRegistrationService(t *testing.T) (*RegistrationService, registrationMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := registrationMocks{
		store:       mocks.NewMockRegistrationStore(ctrl),
		partners:    mocks.NewMockPartnerRepository(ctrl),
		credentials: mocks.NewMockCredentialRepository(ctrl),
		queue:       mocks.NewMockNotificationQueue(ctrl),
		hasher:      mocks.NewMockSecretHasher(ctrl),
	}

	svc, err := NewRegistrationService(RegistrationServiceOptions{
		Stores: RegistrationStores{
			Store:       m.store,
			Partners:    m.partners,
			Credentials: m.credentials,
		},
		Side: RegistrationSideEffects{
			Queue:  m.queue,
			Hasher: m.hasher,
		},
	})
	require.NoError(t, err)
	return svc, m
}

func validRegisterRequest() *model.RegisterPartnerRequest {
	return &model.RegisterPartnerRequest{
		Partner: model.CreatePartnerRequest{
			Name:           "Atelier Dupont",
			ContactName:    "Marie Dupont",
			Email:          "a@x.com",
			SIRET:          "12345678901234",
			CommissionRate: 12.5,
		},
		OwnerSecret: "s3cret",
	}
}

func TestNewRegistrationService(t *testing.T) {
	ctrl := gomock.NewController(t)

	t.Run("requires registration store", func(t *testing.T) {
		_, err := NewRegistrationService(RegistrationServiceOptions{
			Stores: RegistrationStores{
				Partners:    mocks.NewMockPartnerRepository(ctrl),
				Credentials: mocks.NewMockCredentialRepository(ctrl),
			},
			Side: RegistrationSideEffects{Hasher: mocks.NewMockSecretHasher(ctrl)},
		})
		require.Error(t, err)
	})

	t.Run("requires hasher", func(t *testing.T) {
		_, err := NewRegistrationService(RegistrationServiceOptions{
			Stores: RegistrationStores{
				Store:       mocks.NewMockRegistrationStore(ctrl),
				Partners:    mocks.NewMockPartnerRepository(ctrl),
				Credentials: mocks.NewMockCredentialRepository(ctrl),
			},
		})
		require.Error(t, err)
	})
}

func TestRegistrationService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success enqueues welcome notification", func(t *testing.T) {
		svc, m := newTestRegistrationService(t)
		req := validRegisterRequest()

		partner := &model.Partner{
			ID:     "p-1",
			Name:   req.Partner.Name,
			Email:  "a@x.com",
			Status: model.PartnerStatusPending,
		}
		owner := &model.Credential{
			ID:        "c-1",
			PartnerID: "p-1",
			Email:     "a@x.com",
			Role:      model.CredentialRoleOwner,
		}

		m.partners.EXPECT().ExistsByEmail(ctx, "a@x.com").Return(false, nil)
		m.credentials.EXPECT().ExistsByEmail(ctx, "a@x.com").Return(false, nil)
		m.partners.EXPECT().ExistsBySIRET(ctx, "12345678901234").Return(false, nil)
		m.hasher.EXPECT().LooksHashed("s3cret").Return(false)
		m.hasher.EXPECT().Hash("s3cret").Return("$2a$10$hash", nil)
		m.store.EXPECT().
			CreatePartnerWithOwner(ctx, core.CreatePartnerWithOwnerParams{
				Partner:         &req.Partner,
				OwnerEmail:      "a@x.com",
				OwnerSecretHash: "$2a$10$hash",
			}).
			Return(partner, owner, nil)
		m.queue.EXPECT().
			Enqueue(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, enq *model.EnqueueNotificationRequest) (*model.NotificationJob, error) {
				assert.Equal(t, model.KindPartnerWelcome, enq.Kind)
				assert.Equal(t, "a@x.com", enq.Recipient)
				assert.Equal(t, req.Partner.Name, enq.Context[model.ContextKeyPartnerName])
				return &model.NotificationJob{ID: "n-1"}, nil
			})

		result, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, model.PartnerStatusPending, result.Partner.Status)
		assert.Equal(t, model.CredentialRoleOwner, result.Owner.Role)
		assert.True(t, result.WelcomeEnqueued)
	})

	t.Run("pre-hashed secret is stored as-is", func(t *testing.T) {
		svc, m := newTestRegistrationService(t)
		req := validRegisterRequest()
		req.OwnerSecret = "$2b$12$already-hashed"

		m.partners.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		m.credentials.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		m.partners.EXPECT().ExistsBySIRET(ctx, gomock.Any()).Return(false, nil)
		m.hasher.EXPECT().LooksHashed(req.OwnerSecret).Return(true)
		m.store.EXPECT().
			CreatePartnerWithOwner(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, params core.CreatePartnerWithOwnerParams) (*model.Partner, *model.Credential, error) {
				assert.Equal(t, req.OwnerSecret, params.OwnerSecretHash)
				return &model.Partner{ID: "p-1", Status: model.PartnerStatusPending},
					&model.Credential{ID: "c-1"}, nil
			})
		m.queue.EXPECT().Enqueue(ctx, gomock.Any()).Return(&model.NotificationJob{}, nil)

		_, err := svc.Register(ctx, req)
		require.NoError(t, err)
	})

	t.Run("partner email conflict checked first", func(t *testing.T) {
		svc, m := newTestRegistrationService(t)

		m.partners.EXPECT().ExistsByEmail(ctx, "a@x.com").Return(true, nil)

		_, err := svc.Register(ctx, validRegisterRequest())
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, "email", apperrors.GetField(err))
	})

	t.Run("credential email conflict", func(t *testing.T) {
		svc, m := newTestRegistrationService(t)

		m.partners.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		m.credentials.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(true, nil)

		_, err := svc.Register(ctx, validRegisterRequest())
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, "email", apperrors.GetField(err))
	})

	t.Run("siret conflict", func(t *testing.T) {
		svc, m := newTestRegistrationService(t)

		m.partners.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		m.credentials.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		m.partners.EXPECT().ExistsBySIRET(ctx, "12345678901234").Return(true, nil)

		_, err := svc.Register(ctx, validRegisterRequest())
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, "siret", apperrors.GetField(err))
	})

	t.Run("invalid request", func(t *testing.T) {
		svc, _ := newTestRegistrationService(t)

		req := validRegisterRequest()
		req.Partner.SIRET = "123"

		_, err := svc.Register(ctx, req)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("enqueue failure does not fail registration", func(t *testing.T) {
		svc, m := newTestRegistrationService(t)
		req := validRegisterRequest()

		m.partners.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		m.credentials.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		m.partners.EXPECT().ExistsBySIRET(ctx, gomock.Any()).Return(false, nil)
		m.hasher.EXPECT().LooksHashed(gomock.Any()).Return(false)
		m.hasher.EXPECT().Hash(gomock.Any()).Return("$2a$10$hash", nil)
		m.store.EXPECT().
			CreatePartnerWithOwner(ctx, gomock.Any()).
			Return(&model.Partner{ID: "p-1", Status: model.PartnerStatusPending},
				&model.Credential{ID: "c-1", Email: "a@x.com"}, nil)
		m.queue.EXPECT().Enqueue(ctx, gomock.Any()).Return(nil, errors.New("queue down"))

		result, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.False(t, result.WelcomeEnqueued)
	})

	t.Run("commit conflict passes through", func(t *testing.T) {
		svc, m := newTestRegistrationService(t)

		m.partners.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		m.credentials.EXPECT().ExistsByEmail(ctx, gomock.Any()).Return(false, nil)
		m.partners.EXPECT().ExistsBySIRET(ctx, gomock.Any()).Return(false, nil)
		m.hasher.EXPECT().LooksHashed(gomock.Any()).Return(false)
		m.hasher.EXPECT().Hash(gomock.Any()).Return("$2a$10$hash", nil)
		m.store.EXPECT().
			CreatePartnerWithOwner(ctx, gomock.Any()).
			Return(nil, nil, apperrors.ConflictField("siret", "a partner with this SIRET already exists"))

		_, err := svc.Register(ctx, validRegisterRequest())
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, "siret", apperrors.GetField(err))
	})
}
