// Package financialmanager implements the HTTP client for the external
// receipt-issuing service (the "financial manager").
package financialmanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nau/billing/internal/domain/billing"
)

const (
	// sendTimeout bounds the transaction submission call.
	sendTimeout = 30 * time.Second
	// receiptTimeout bounds the receipt link lookup.
	receiptTimeout = 10 * time.Second
	// maxResponseSize is the maximum allowed response size (1MB).
	maxResponseSize = 1 * 1024 * 1024
)

// PartnerConfig holds the per-partner integration settings. URL and Token
// are required for sends; ReceiptLinkURL for receipt lookups.
type PartnerConfig struct {
	URL            string
	ReceiptLinkURL string
	Token          string
}

// Config maps lowercased partner short codes to their settings. A partner
// without an entry has the integration disabled.
type Config map[string]PartnerConfig

// Client talks to the financial manager on behalf of configured partners.
type Client struct {
	partners      Config
	sendClient    *http.Client
	receiptClient *http.Client
}

// NewClient creates a financial manager client for the given partner map.
func NewClient(partners Config) *Client {
	return &Client{
		partners:      partners,
		sendClient:    &http.Client{Timeout: sendTimeout},
		receiptClient: &http.Client{Timeout: receiptTimeout},
	}
}

// Enabled reports whether the partner has a financial manager entry.
func (c *Client) Enabled(partner string) bool {
	_, ok := c.partners[strings.ToLower(partner)]
	return ok
}

// config returns the partner's settings or ErrNotConfigured.
func (c *Client) config(partner string) (PartnerConfig, error) {
	cfg, ok := c.partners[strings.ToLower(partner)]
	if !ok {
		return PartnerConfig{}, fmt.Errorf("%w: %s", billing.ErrNotConfigured, strings.ToLower(partner))
	}
	return cfg, nil
}

// requireSetting fails fast when a partner entry is missing a required key.
func requireSetting(partner, key, value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%w: financial_manager.partners.%s.%s", billing.ErrMissingSetting, strings.ToLower(partner), key)
	}
	return value, nil
}

// SendTransaction posts the payload to the partner's transaction endpoint
// and returns the raw status code and body. Non-2xx statuses are returned
// in the result, not as errors: the domain state machine interprets them.
func (c *Client) SendTransaction(ctx context.Context, partner string, payload *billing.TransactionPayload) (*billing.SendResult, error) {
	cfg, err := c.config(partner)
	if err != nil {
		return nil, err
	}
	endpoint, err := requireSetting(partner, "url", cfg.URL)
	if err != nil {
		return nil, err
	}
	token, err := requireSetting(partner, "token", cfg.Token)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("financial manager: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("financial manager: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := c.sendClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("financial manager: send failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("financial manager: failed to read response: %w", err)
	}

	return &billing.SendResult{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// ReceiptLink fetches the receipt link for a transaction id from the
// partner's receipt endpoint. A 200 response body is the link; any other
// status means no receipt is available.
func (c *Client) ReceiptLink(ctx context.Context, partner, transactionID string) (string, error) {
	cfg, err := c.config(partner)
	if err != nil {
		return "", err
	}
	base, err := requireSetting(partner, "receipt_link_url", cfg.ReceiptLinkURL)
	if err != nil {
		return "", err
	}
	token, err := requireSetting(partner, "token", cfg.Token)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimSuffix(base, "/") + "/" + transactionID + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("financial manager: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", token)

	resp, err := c.receiptClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("financial manager: receipt link lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("financial manager: failed to read response: %w", err)
	}
	return string(body), nil
}

// Ensure Client implements the FinancialManager port
var _ billing.FinancialManager = (*Client)(nil)
