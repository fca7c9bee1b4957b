package pms

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ClientConfig represents the configuration for the platform API client.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	Timeout   time.Duration // Default: 60 seconds
}

// Client is a booking-platform transactions-transfer API client.
//
// A fetch failure is fatal for the caller's run: the client performs no
// retries, it returns the first error it sees.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	secretKey  string
	now        func() time.Time
}

// NewClient creates a new platform API client.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   config.BaseURL,
		apiKey:    config.APIKey,
		secretKey: config.SecretKey,
		now:       time.Now,
	}
}

// fetchRequest is the window payload every transfer endpoint accepts.
type fetchRequest struct {
	APIKey   string `json:"apiKey"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

// envelope is the platform's usual response wrapper. Some endpoint
// versions return the bare array instead.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// AuthKey returns the daily request credential: the MD5 hex digest of the
// secret key concatenated with the current date as dd/mm/yyyy.
func (c *Client) AuthKey() string {
	dateStr := c.now().Format("02/01/2006")
	sum := md5.Sum([]byte(c.secretKey + dateStr))
	return fmt.Sprintf("%x", sum)
}

// fetch posts the date window to an endpoint and returns the raw record
// array, unwrapping the status envelope when present.
func (c *Client) fetch(endpoint string, from, to time.Time) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, endpoint)

	payload := fetchRequest{
		APIKey:   c.apiKey,
		DateFrom: from.Format("2006-01-02 15:04"),
		DateTo:   to.Format("2006-01-02 15:04"),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("authKey", c.AuthKey())

	slog.Debug("Fetching from platform", "endpoint", endpoint,
		"from", payload.DateFrom, "to", payload.DateTo)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("platform API error (status %d): %s", resp.StatusCode, string(raw))
	}

	// Wrapped response first, bare array second.
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		if env.Status != 0 && env.Status != http.StatusOK {
			return nil, fmt.Errorf("platform API returned status %d: %s", env.Status, env.Message)
		}
		return env.Data, nil
	}

	var list json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil || len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("platform API returned unexpected response: %s", string(raw))
	}
	return list, nil
}

// FetchInvoices fetches invoices for the window. Reversed invoices and
// invoices created after the window end are excluded here, before any
// matching can see them.
func (c *Client) FetchInvoices(from, to time.Time) ([]Invoice, error) {
	data, err := c.fetch("Getinvoices", from, to)
	if err != nil {
		return nil, err
	}

	var all []Invoice
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}

	valid := make([]Invoice, 0, len(all))
	for _, inv := range all {
		if inv.IsReversed {
			continue
		}
		if created, err := ParseTimestamp(inv.CreationDate); err == nil && created.After(to) {
			slog.Debug("Excluding invoice created after window end",
				"invoice", inv.InvoiceNumber, "created", created)
			continue
		}
		valid = append(valid, inv)
	}

	slog.Info("Fetched invoices", "total", len(all), "valid", len(valid))
	return valid, nil
}

// FetchReceipts fetches receipt vouchers for the window, excluding
// cancelled ones.
func (c *Client) FetchReceipts(from, to time.Time) ([]Voucher, error) {
	return c.fetchVouchers("GetReceiptVouchers", from, to)
}

// FetchRefunds fetches refund vouchers for the window, excluding
// cancelled ones.
func (c *Client) FetchRefunds(from, to time.Time) ([]Voucher, error) {
	return c.fetchVouchers("GetRefundVouchers", from, to)
}

func (c *Client) fetchVouchers(endpoint string, from, to time.Time) ([]Voucher, error) {
	data, err := c.fetch(endpoint, from, to)
	if err != nil {
		return nil, err
	}

	var all []Voucher
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to decode vouchers: %w", err)
	}

	valid := make([]Voucher, 0, len(all))
	for _, v := range all {
		if v.IsCanceled {
			continue
		}
		valid = append(valid, v)
	}

	slog.Info("Fetched vouchers", "endpoint", endpoint, "total", len(all), "valid", len(valid))
	return valid, nil
}
