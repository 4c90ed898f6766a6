package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/ougajs-sys/easyflows-backend/pkg/config"
)

// SMSSender delivers one text message to one phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// HTTPSMSSender posts messages to the configured SMS gateway, retrying
// transient failures with exponential backoff.
type HTTPSMSSender struct {
	client      *http.Client
	apiURL      string
	apiKey      string
	sender      string
	maxAttempts int
}

// NewHTTPSMSSender builds the gateway client from config.
func NewHTTPSMSSender(cfg config.SMSConfig) (*HTTPSMSSender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("notifications: sms gateway not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &HTTPSMSSender{
		client:      &http.Client{Timeout: timeout},
		apiURL:      cfg.APIURL,
		apiKey:      cfg.APIKey,
		sender:      cfg.Sender,
		maxAttempts: maxAttempts,
	}, nil
}

type smsPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send posts the message. Gateway 5xx responses and transport errors are
// retried; 4xx responses fail immediately.
func (s *HTTPSMSSender) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(smsPayload{From: s.sender, To: phone, Message: message})
	if err != nil {
		return fmt.Errorf("encoding sms payload: %w", err)
	}

	backoff := retry.WithMaxRetries(uint64(s.maxAttempts-1), retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.apiKey)

		resp, err := s.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("sms gateway returned %d", resp.StatusCode))
		default:
			return fmt.Errorf("sms gateway rejected message: %d", resp.StatusCode)
		}
	})
}

// NoopSender drops messages. Used when no gateway is configured.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, phone, message string) error { return nil }
