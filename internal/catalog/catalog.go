// Package catalog fetches read-only product data from the public catalog API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/pregled/internal/imaging"
	"github.com/erazemk/pregled/internal/model"
	"github.com/erazemk/pregled/internal/store"
)

// DefaultURL lists every product of the public demo catalog in one page.
const DefaultURL = "https://dummyjson.com/products?limit=0"

// DefaultTimeout bounds every catalog call.
const DefaultTimeout = 10 * time.Second

const maxCatalogBytes = 32 << 20

// ServiceName labels catalog calls in metrics.
const ServiceName = "catalog"

// StatusError is a non-2xx answer from the catalog.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog returned status %d for %s", e.Status, e.URL)
}

// Client reads the catalog.
type Client struct {
	URL        string
	HTTPClient *http.Client
	Observer   store.Observer
}

// New returns a client for the listing at url.
func New(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{URL: url, HTTPClient: &http.Client{Timeout: timeout}}
}

// listing is the catalog response envelope. Only products is required.
type listing struct {
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Products fetches and normalizes the whole catalog. A response without a
// "products" array fails with model.ErrMalformedResponse.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	body, err := c.get(ctx, c.URL, maxCatalogBytes)
	if err != nil {
		return nil, err
	}

	raw, err := model.DecodeCollection(body, "products")
	if err != nil {
		c.observe(store.OutcomeMalformed)
		slog.Error("catalog response is malformed", "url", c.URL, "error", err)
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products := make([]model.Product, 0, len(raw))
	for i, r := range raw {
		p, err := model.NormalizeProduct(r)
		if err != nil {
			c.observe(store.OutcomeMalformed)
			return nil, fmt.Errorf("listing products: element %d: %w: %v", i, model.ErrMalformedResponse, err)
		}
		products = append(products, p)
	}

	var meta listing
	if json.Unmarshal(body, &meta) == nil && meta.Total > len(products) {
		slog.Warn("catalog listing is partial", "received", len(products), "total", meta.Total)
	}

	c.observe(store.OutcomeOK)
	return products, nil
}

// FetchImage downloads an image of at most imaging.MaxSourceBytes.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("product has no image")
	}
	body, err := c.get(ctx, url, imaging.MaxSourceBytes)
	if err != nil {
		return nil, err
	}
	c.observe(store.OutcomeOK)
	return body, nil
}

func (c *Client) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		c.observe(store.OutcomeError)
		slog.Error("catalog request failed", "url", url, "error", err)
		return nil, fmt.Errorf("calling catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(store.OutcomeStatus)
		slog.Error("catalog returned an error", "url", url, "status", resp.StatusCode)
		return nil, &StatusError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		c.observe(store.OutcomeError)
		return nil, fmt.Errorf("reading catalog response: %w", err)
	}
	return body, nil
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) observe(outcome string) {
	if c.Observer != nil {
		c.Observer.ObserveUpstream(ServiceName, outcome)
	}
}
