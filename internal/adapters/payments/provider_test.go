package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientOptions{
		BaseURL:   srv.URL,
		APIKey:    "sk_test_key",
		ReturnURL: "https://vitrine.example/partners/onboarded",
	})
	require.NoError(t, err)
	return client
}

func TestClient_CreateAccount(t *testing.T) {
	ctx := context.Background()
	partner := &model.Partner{
		Name:        "Atelier Dupont",
		ContactName: "Marie Dupont",
		Email:       "a@x.com",
		SIRET:       "12345678901234",
	}

	t.Run("sends partner identity", func(t *testing.T) {
		var got map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/accounts", r.URL.Path)
			assert.Equal(t, "Bearer sk_test_key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"id":"acct_123"}`))
		})

		account, err := client.CreateAccount(ctx, partner)
		require.NoError(t, err)
		assert.Equal(t, "acct_123", account.ID)
		assert.Nil(t, account.OnboardedAt)
		assert.Equal(t, "12345678901234", got["registration_number"])
	})

	t.Run("provider error is a transport failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := client.CreateAccount(ctx, partner)
		require.Error(t, err)
		assert.True(t, apperrors.IsTransportFailure(err))
	})

	t.Run("empty account id fails", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.CreateAccount(ctx, partner)
		require.Error(t, err)
	})
}

func TestClient_OnboardingLink(t *testing.T) {
	ctx := context.Background()

	t.Run("returns url with expiry", func(t *testing.T) {
		expiresAt := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second)
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/account_links", r.URL.Path)

			var got map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, "acct_123", got["account_id"])
			assert.Equal(t, "https://vitrine.example/partners/onboarded", got["return_url"])

			_, _ = w.Write([]byte(
				`{"url":"https://pay.example/onboard/acct_123","expires_at":"` +
					expiresAt.Format(time.RFC3339) + `"}`,
			))
		})

		link, err := client.OnboardingLink(ctx, "acct_123")
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/onboard/acct_123", link.URL)
		require.NotNil(t, link.ExpiresAt)
		assert.True(t, link.ExpiresAt.Equal(expiresAt))
	})

	t.Run("expiry is optional", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"url":"https://pay.example/onboard/acct_123"}`))
		})

		link, err := client.OnboardingLink(ctx, "acct_123")
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/onboard/acct_123", link.URL)
		assert.Nil(t, link.ExpiresAt)
	})

	t.Run("empty url fails", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.OnboardingLink(ctx, "acct_123")
		require.Error(t, err)
		assert.True(t, apperrors.IsTransportFailure(err))
	})
}

func TestClient_AccountOnboarded(t *testing.T) {
	ctx := context.Background()

	t.Run("onboarded account", func(t *testing.T) {
		onboardedAt := time.Now().UTC().Format(time.RFC3339)
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/accounts/acct_123", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"acct_123","onboarded_at":"` + onboardedAt + `"}`))
		})

		done, err := client.AccountOnboarded(ctx, "acct_123")
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("pending account", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":"acct_123"}`))
		})

		done, err := client.AccountOnboarded(ctx, "acct_123")
		require.NoError(t, err)
		assert.False(t, done)
	})

	t.Run("requires account id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		_, err := client.AccountOnboarded(ctx, "")
		require.Error(t, err)
	})
}
