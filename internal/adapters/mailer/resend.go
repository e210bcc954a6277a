// Package mailer provides outbound mail transports for notification delivery.
package mailer

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

	"github.com/vitrineapp/partner-go/internal/core"
	apperrors "github.com/vitrineapp/partner-go/internal/errors"
)

const (
	defaultEndpoint      = "https://api.resend.com/emails"
	defaultTimeout       = 10 * time.Second
	maxResponseBodyBytes = 1 << 20
)

// ResendTransportOptions configures the Resend mail transport.
type ResendTransportOptions struct {
	APIKey      string
	FromAddress string
	FromName    string

	// Endpoint overrides the Resend API URL; used by tests.
	Endpoint string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// ResendTransport delivers rendered messages over the Resend HTTP API.
type ResendTransport struct {
	apiKey   string
	from     string
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// NewResendTransport constructs a ResendTransport.
func NewResendTransport(opts ResendTransportOptions) (*ResendTransport, error) {
	if opts.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	if opts.FromAddress == "" {
		return nil, errors.New("from address is required")
	}

	from := opts.FromAddress
	if opts.FromName != "" {
		from = fmt.Sprintf("%s <%s>", opts.FromName, opts.FromAddress)
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ResendTransport{
		apiKey:   opts.APIKey,
		from:     from,
		endpoint: endpoint,
		http:     hc,
		logger:   logger.With("component", "resend_transport"),
	}, nil
}

// Send delivers one message. Network errors and 5xx/429 responses come back
// as transport failures so the queue retries them; other 4xx responses are
// permanent because resending the same payload cannot succeed.
func (t *ResendTransport) Send(ctx context.Context, params core.SendMailParams) error {
	payload := map[string]any{
		"from":    t.from,
		"to":      []string{params.To},
		"subject": params.Subject,
		"html":    params.HTML,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.http.Do(req)
	if err != nil {
		return apperrors.TransportFailure("send mail request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return apperrors.TransportFailure("read mail response", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		t.logger.DebugContext(ctx, "mail accepted",
			slog.String("to", params.To),
			slog.Int("status", resp.StatusCode),
		)
		return nil
	}

	apiMsg := decodeErrorMessage(respBody)
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return apperrors.TransportFailure(
			fmt.Sprintf("mail provider status %d", resp.StatusCode),
			errors.New(apiMsg),
		)
	}
	return apperrors.PermanentFailuref("mail provider rejected message: status %d: %s", resp.StatusCode, apiMsg)
}

func decodeErrorMessage(body []byte) string {
	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}
	return "unknown provider error"
}

var _ core.MailTransport = (*ResendTransport)(nil)
