// Package notify sends transactional email outside the request path.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ResendEndpoint is the Resend send-email API.
const ResendEndpoint = "https://api.resend.com/emails"

// Email 一封待发送的邮件
type Email struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	ReplyTo string            `json:"reply_to,omitempty"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Mailer sends one email and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, email Email) (string, error)
}

// ErrNoRecipient is returned for emails without a To address.
var ErrNoRecipient = errors.New("email has no recipient")

// ResendMailer 通过 Resend HTTP API 发送邮件
type ResendMailer struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewResendMailer creates a mailer. An empty endpoint uses ResendEndpoint.
func NewResendMailer(apiKey, endpoint string) *ResendMailer {
	if endpoint == "" {
		endpoint = ResendEndpoint
	}
	return &ResendMailer{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Send 发送邮件
func (m *ResendMailer) Send(ctx context.Context, email Email) (string, error) {
	if len(email.To) == 0 || email.To[0] == "" {
		return "", ErrNoRecipient
	}

	payload, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("resend responded %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &out)
	return out.ID, nil
}

// LogMailer 只记录日志，不发送（未配置 RESEND_API_KEY 时使用）
type LogMailer struct {
	Log zerolog.Logger
}

// Send logs the email envelope.
func (m LogMailer) Send(ctx context.Context, email Email) (string, error) {
	m.Log.Info().
		Strs("to", email.To).
		Str("subject", email.Subject).
		Msg("email not sent: mail provider not configured")
	return "", nil
}
