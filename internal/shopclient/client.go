// Package shopclient talks to the storefront API on behalf of a local cart.
package shopclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/loganlanou/chsn-merch/internal/catalog"
)

const (
	CheckoutPath = "/api/create-checkout-session"
	CatalogPath  = "/api/catalog"
)

// ErrCartEmpty is returned before any request is made when there is nothing
// to check out.
var ErrCartEmpty = errors.New("cart is empty")

// ErrMissingURL is returned when the server accepted the checkout but sent
// no redirect URL.
var ErrMissingURL = errors.New("missing checkout url")

// RequestError carries a failed checkout response. Message is the server's
// own error text, if it sent one.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type checkoutRequest struct {
	Items []catalog.Item `json:"items"`
}

type checkoutResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// CreateCheckoutSession posts items and returns the hosted checkout URL.
// No request is sent when items is empty, and failures are not retried.
func (c *Client) CreateCheckoutSession(ctx context.Context, items []catalog.Item) (string, error) {
	if len(items) == 0 {
		return "", ErrCartEmpty
	}

	body, err := json.Marshal(checkoutRequest{Items: items})
	if err != nil {
		return "", fmt.Errorf("failed to encode checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CheckoutPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	// a body that is not JSON is treated like an empty object
	var data checkoutResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(raw, &data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RequestError{Status: resp.StatusCode, Message: data.Error}
	}
	if data.URL == "" {
		return "", ErrMissingURL
	}
	return data.URL, nil
}

type catalogResponse struct {
	Sizes    []string          `json:"sizes"`
	Products []catalog.Product `json:"products"`
}

// Catalog fetches the canonical product catalog from the server.
func (c *Client) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+CatalogPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{Status: resp.StatusCode}
	}

	var data catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return catalog.New(data.Products...), nil
}
