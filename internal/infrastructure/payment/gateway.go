package payment

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

// Client talks to the hosted payment gateway's order API. Amounts are
// sent in the smallest currency unit (paise).
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// NewClient returns nil when credentials are missing; a nil client
// reports gateway payments as unavailable instead of failing checkout.
func NewClient(baseURL, keyID, keySecret string) *Client {
	if keyID == "" || keySecret == "" {
		logger.Get().Warn().Msg("payment gateway credentials not configured, online payments disabled")
		return nil
	}
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreatePaymentOrder registers the amount with the gateway and returns
// the gateway-side order ID the storefront uses to open the payment
// widget.
func (c *Client) CreatePaymentOrder(ctx context.Context, amount float64, receipt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("payment gateway is not configured")
	}

	body, err := json.Marshal(orderRequest{
		Amount:   int64(amount * 100),
		Currency: "INR",
		Receipt:  receipt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(raw))
	}

	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("gateway returned an empty order id")
	}
	return out.ID, nil
}
