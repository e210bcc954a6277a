package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
	"github.com/vitrineapp/partner-go/internal/mocks"
	"go.uber.org/mock/gomock"
)

func newTestPaymentService(t *testing.T) (*PaymentService, *mocks.MockPartnerRepository, *mocks.MockPaymentProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)

	partners := mocks.NewMockPartnerRepository(ctrl)
	provider := mocks.NewMockPaymentProvider(ctrl)

	svc, err := NewPaymentService(PaymentServiceOptions{
		Partners: partners,
		Provider: provider,
	})
	require.NoError(t, err)
	return svc, partners, provider
}

func TestPaymentService_StartOnboarding(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and returns link", func(t *testing.T) {
		svc, partners, provider := newTestPaymentService(t)
		partner := &model.Partner{ID: "p-1", Status: model.PartnerStatusApproved}

		expiresAt := time.Now().Add(30 * time.Minute)
		partners.EXPECT().GetByID(ctx, "p-1").Return(partner, nil)
		provider.EXPECT().CreateAccount(ctx, partner).
			Return(&core.PaymentAccount{ID: "acct_123"}, nil)
		partners.EXPECT().SetPaymentAccount(ctx, "p-1", "acct_123").Return(true, nil)
		provider.EXPECT().OnboardingLink(ctx, "acct_123").
			Return(&core.OnboardingLink{
				URL:       "https://pay.example/onboard/acct_123",
				ExpiresAt: &expiresAt,
			}, nil)

		link, err := svc.StartOnboarding(ctx, "p-1")
		require.NoError(t, err)
		assert.Contains(t, link.URL, "acct_123")
		require.NotNil(t, link.ExpiresAt)
		assert.True(t, link.ExpiresAt.Equal(expiresAt))
	})

	t.Run("reuses existing account", func(t *testing.T) {
		svc, partners, provider := newTestPaymentService(t)
		accountID := "acct_existing"
		partner := &model.Partner{
			ID:               "p-1",
			Status:           model.PartnerStatusApproved,
			PaymentAccountID: &accountID,
		}

		partners.EXPECT().GetByID(ctx, "p-1").Return(partner, nil)
		provider.EXPECT().OnboardingLink(ctx, accountID).
			Return(&core.OnboardingLink{URL: "https://pay.example/onboard/acct_existing"}, nil)

		link, err := svc.StartOnboarding(ctx, "p-1")
		require.NoError(t, err)
		assert.Contains(t, link.URL, accountID)
	})

	t.Run("non-approved partner is not eligible", func(t *testing.T) {
		svc, partners, _ := newTestPaymentService(t)

		partners.EXPECT().GetByID(ctx, "p-1").
			Return(&model.Partner{ID: "p-1", Status: model.PartnerStatusPending}, nil)

		_, err := svc.StartOnboarding(ctx, "p-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotEligible(err))
	})
}

func TestPaymentService_RefreshOnboardingStatus(t *testing.T) {
	ctx := context.Background()
	accountID := "acct_123"

	t.Run("marks partner onboarded when provider confirms", func(t *testing.T) {
		svc, partners, provider := newTestPaymentService(t)
		partner := &model.Partner{
			ID:               "p-1",
			Status:           model.PartnerStatusApproved,
			PaymentAccountID: &accountID,
		}

		partners.EXPECT().GetByID(ctx, "p-1").Return(partner, nil)
		provider.EXPECT().AccountOnboarded(ctx, accountID).Return(true, nil)
		partners.EXPECT().MarkPaymentOnboarded(ctx, "p-1").Return(true, nil)

		done, err := svc.RefreshOnboardingStatus(ctx, "p-1")
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("no account means not onboarded", func(t *testing.T) {
		svc, partners, _ := newTestPaymentService(t)

		partners.EXPECT().GetByID(ctx, "p-1").
			Return(&model.Partner{ID: "p-1", Status: model.PartnerStatusApproved}, nil)

		done, err := svc.RefreshOnboardingStatus(ctx, "p-1")
		require.NoError(t, err)
		assert.False(t, done)
	})

	t.Run("already onboarded short-circuits", func(t *testing.T) {
		svc, partners, _ := newTestPaymentService(t)
		partner := &model.Partner{
			ID:               "p-1",
			PaymentAccountID: &accountID,
			PaymentOnboarded: true,
		}

		partners.EXPECT().GetByID(ctx, "p-1").Return(partner, nil)

		done, err := svc.RefreshOnboardingStatus(ctx, "p-1")
		require.NoError(t, err)
		assert.True(t, done)
	})
}
