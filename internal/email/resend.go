package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const resendAPIURL = "https://api.resend.com/emails"

// ResendSender implements the Sender interface using the Resend API.
// Calls go through a circuit breaker so a provider outage fails fast
// instead of stalling every chase dispatch behind timeouts.
type ResendSender struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

type resendEmail struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	ReplyTo string            `json:"reply_to,omitempty"`
	Subject string            `json:"subject"`
	Html    string            `json:"html,omitempty"`
	Text    string            `json:"text,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ResendOption customizes a ResendSender.
type ResendOption func(*ResendSender)

// WithResendBaseURL overrides the API endpoint. Used in tests.
func WithResendBaseURL(url string) ResendOption {
	return func(r *ResendSender) {
		r.baseURL = url
	}
}

// WithResendHTTPClient overrides the HTTP client. Used in tests.
func WithResendHTTPClient(c *http.Client) ResendOption {
	return func(r *ResendSender) {
		r.client = c
	}
}

// NewResendSender creates a new Resend email sender.
func NewResendSender(apiKey string, opts ...ResendOption) *ResendSender {
	s := &ResendSender{
		apiKey:  apiKey,
		baseURL: resendAPIURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "resend",
			MaxRequests: 1,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send sends an email via Resend and returns the provider message ID.
func (r *ResendSender) Send(ctx context.Context, email *Email) (string, error) {
	from := email.From
	if email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", email.FromName, email.From)
	}

	payload := resendEmail{
		From:    from,
		To:      email.To,
		ReplyTo: email.ReplyTo,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
		Headers: email.Headers,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email payload: %w", err)
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.send(ctx, jsonData)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (r *ResendSender) send(ctx context.Context, jsonData []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr resendError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return "", fmt.Errorf("resend API error (status %d): %s: %s", resp.StatusCode, apiErr.Name, apiErr.Message)
		}
		return "", fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result resendResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.ID, nil
}
