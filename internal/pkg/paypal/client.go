package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/litera-app/litera/internal/pkg/env"
)

const (
	sandboxAPIBase = "https://api-m.sandbox.paypal.com"
	liveAPIBase    = "https://api-m.paypal.com"
)

// ErrNoApprovalURL is returned when a created payment carries no approval link.
var ErrNoApprovalURL = errors.New("paypal payment has no approval_url link")

// Config holds the PayPal REST credentials and mode.
type Config struct {
	ClientID     string
	ClientSecret string
	Mode         string // "sandbox" or "live"
	ReturnURL    string
	CancelURL    string
}

// LoadConfig reads PayPal configuration from environment variables.
func LoadConfig() Config {
	return Config{
		ClientID:     env.GetEnv("PAYPAL_CLIENT_ID", ""),
		ClientSecret: env.GetEnv("PAYPAL_CLIENT_SECRET", ""),
		Mode:         env.GetEnv("PAYPAL_MODE", "sandbox"),
		ReturnURL:    env.GetEnv("PAYPAL_RETURN_URL", "http://localhost:8080/api/payment/success"),
		CancelURL:    env.GetEnv("PAYPAL_CANCEL_URL", "http://localhost:8080/api/payment/cancel"),
	}
}

// IsConfigured returns true if credentials are present.
func (c Config) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (c Config) apiBase() string {
	if c.Mode == "live" {
		return liveAPIBase
	}
	return sandboxAPIBase
}

// CreatedPayment is the result of creating a payment: the provider-side
// payment ID and the URL the buyer must visit to approve it.
type CreatedPayment struct {
	PaymentID   string
	ApprovalURL string
}

// ExecutedPayment is the result of executing an approved payment.
type ExecutedPayment struct {
	PaymentID string
	State     string
	PayerID   string
}

// Approved reports whether the provider considers the payment settled.
func (e ExecutedPayment) Approved() bool {
	return e.State == "approved" || e.State == "completed"
}

// Client talks to the PayPal REST API. Access tokens are fetched via the
// client-credentials grant and cached until shortly before expiry.
type Client struct {
	config     Config
	httpClient *http.Client

	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a PayPal API client.
func NewClient(cfg Config) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.apiBase()+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.config.ClientID, c.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request returned status %d: %s", resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tok.AccessToken
	// Refresh a minute early so in-flight requests never race the expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

type paymentLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type paymentResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Payer struct {
		PayerInfo struct {
			PayerID string `json:"payer_id"`
		} `json:"payer_info"`
	} `json:"payer"`
	Links []paymentLink `json:"links"`
}

// CreatePayment creates a one-time sale payment and returns the provider
// payment ID plus the approval URL the buyer is redirected to.
func (c *Client) CreatePayment(ctx context.Context, amount decimal.Decimal, currency, description string) (*CreatedPayment, error) {
	payload := map[string]interface{}{
		"intent": "sale",
		"payer": map[string]interface{}{
			"payment_method": "paypal",
		},
		"transactions": []map[string]interface{}{
			{
				"amount": map[string]interface{}{
					"total":    amount.StringFixed(2),
					"currency": currency,
				},
				"description": description,
			},
		},
		"redirect_urls": map[string]interface{}{
			"return_url": c.config.ReturnURL,
			"cancel_url": c.config.CancelURL,
		},
	}

	var result paymentResponse
	if err := c.post(ctx, "/v1/payments/payment", payload, &result); err != nil {
		return nil, err
	}

	for _, link := range result.Links {
		if link.Rel == "approval_url" {
			return &CreatedPayment{PaymentID: result.ID, ApprovalURL: link.Href}, nil
		}
	}
	return nil, ErrNoApprovalURL
}

// ExecutePayment completes a buyer-approved payment.
func (c *Client) ExecutePayment(ctx context.Context, paymentID, payerID string) (*ExecutedPayment, error) {
	payload := map[string]interface{}{
		"payer_id": payerID,
	}

	var result paymentResponse
	path := fmt.Sprintf("/v1/payments/payment/%s/execute", paymentID)
	if err := c.post(ctx, path, payload, &result); err != nil {
		return nil, err
	}

	return &ExecutedPayment{
		PaymentID: result.ID,
		State:     result.State,
		PayerID:   result.Payer.PayerInfo.PayerID,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	accessToken, err := c.token(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.apiBase()+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("paypal API returned status %d for %s: %s", resp.StatusCode, path, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
