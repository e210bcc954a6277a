// Package payments provides the HTTP client for the external payment platform.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vitrineapp/partner-go/internal/core"
	"github.com/vitrineapp/partner-go/internal/domain/model"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
)

const (
	defaultTimeout       = 15 * time.Second
	maxResponseBodyBytes = 1 << 20
)

// ClientOptions configures the payment platform client.
type ClientOptions struct {
	BaseURL string
	APIKey  string

	// ReturnURL is where the provider redirects the partner after onboarding.
	ReturnURL string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the payment platform's connected-accounts API.
type Client struct {
	baseURL   string
	apiKey    string
	returnURL string
	http      *http.Client
	logger    *slog.Logger
}

// NewClient constructs a payment platform client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if opts.APIKey == "" {
		return nil, errors.New("api key is required")
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   opts.BaseURL,
		apiKey:    opts.APIKey,
		returnURL: opts.ReturnURL,
		http:      hc,
		logger:    logger.With("component", "payment_client"),
	}, nil
}

type accountResponse struct {
	ID          string     `json:"id"`
	OnboardedAt *time.Time `json:"onboarded_at,omitempty"`
}

type accountLinkResponse struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateAccount provisions a provider account holding the partner's legal
// identity. The partner's SIRET is the provider-side business registration
// number.
func (c *Client) CreateAccount(ctx context.Context, partner *model.Partner) (*core.PaymentAccount, error) {
	if partner == nil {
		return nil, errors.New("partner is required")
	}

	payload := map[string]any{
		"business_name":       partner.Name,
		"contact_name":        partner.ContactName,
		"email":               partner.Email,
		"registration_number": partner.SIRET,
	}

	var resp accountResponse
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", payload, &resp); err != nil {
		return nil, fmt.Errorf("create payment account: %w", err)
	}
	if resp.ID == "" {
		return nil, apperrors.TransportFailure("payment provider returned empty account id", nil)
	}

	return &core.PaymentAccount{ID: resp.ID, OnboardedAt: resp.OnboardedAt}, nil
}

// OnboardingLink returns a single-use URL where the partner completes
// provider-side onboarding, along with the expiry the provider attached
// to it.
func (c *Client) OnboardingLink(ctx context.Context, accountID string) (*core.OnboardingLink, error) {
	if accountID == "" {
		return nil, errors.New("account id is required")
	}

	payload := map[string]any{
		"account_id": accountID,
		"return_url": c.returnURL,
	}

	var resp accountLinkResponse
	if err := c.do(ctx, http.MethodPost, "/v1/account_links", payload, &resp); err != nil {
		return nil, fmt.Errorf("create onboarding link: %w", err)
	}
	if resp.URL == "" {
		return nil, apperrors.TransportFailure("payment provider returned empty onboarding url", nil)
	}

	return &core.OnboardingLink{URL: resp.URL, ExpiresAt: resp.ExpiresAt}, nil
}

// AccountOnboarded reports whether the provider account finished onboarding.
func (c *Client) AccountOnboarded(ctx context.Context, accountID string) (bool, error) {
	if accountID == "" {
		return false, errors.New("account id is required")
	}

	var resp accountResponse
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/"+accountID, nil, &resp); err != nil {
		return false, fmt.Errorf("get payment account: %w", err)
	}

	return resp.OnboardedAt != nil, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		// The provider deduplicates mutating calls on this key.
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.TransportFailure("payment provider request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return apperrors.TransportFailure("read payment provider response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "payment provider error response",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return apperrors.TransportFailure(
			fmt.Sprintf("payment provider status %d", resp.StatusCode),
			errors.New(string(respBody)),
		)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode payment provider response: %w", err)
		}
	}

	return nil
}

var _ core.PaymentProvider = (*Client)(nil)
