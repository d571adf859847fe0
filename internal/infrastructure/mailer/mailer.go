package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"mollywear-backend/pkg/logger"

	json "github.com/goccy/go-json"
)

// Client sends transactional email through an HTTP email API.
type Client struct {
	baseURL    string
	apiKey     string
	fromEmail  string
	httpClient *http.Client
}

// NewClient returns nil when the API key is missing. With a nil client
// OTP codes are logged instead of mailed, which keeps local dev usable.
func NewClient(baseURL, apiKey, fromEmail string) *Client {
	if apiKey == "" {
		logger.Get().Warn().Msg("mailer API key not configured, OTP codes will be logged only")
		return nil
	}
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		fromEmail: fromEmail,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type emailAddress struct {
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      emailAddress   `json:"sender"`
	To          []emailAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (c *Client) SendOTP(ctx context.Context, toEmail, code string, expiresIn time.Duration) error {
	if c == nil {
		logger.Get().Info().Str("email", toEmail).Str("code", code).Msg("mailer disabled, OTP logged")
		return nil
	}

	html := fmt.Sprintf(
		"<p>Your Mollywear login code is <strong>%s</strong>.</p><p>It expires in %d minutes.</p>",
		code, int(expiresIn.Minutes()),
	)
	body, err := json.Marshal(sendRequest{
		Sender:      emailAddress{Email: c.fromEmail},
		To:          []emailAddress{{Email: toEmail}},
		Subject:     "Your Mollywear login code",
		HTMLContent: html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("mailer error (status %d): %s", resp.StatusCode, string(raw))
	}
	return nil
}
