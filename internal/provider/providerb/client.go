// Package providerb adapts the crowd-sourced packaged-product
// directory upstream to the common product shape.
package providerb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nutrisync/foodsearch/internal/food"
)

// Client handles communication with the provider B term search,
// barcode lookup and bulk listing endpoints. Search works without a
// credential; the API key, when configured, is sent on every request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport, primarily for testing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a provider B client. An empty apiKey is valid;
// the upstream serves unauthenticated reads.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		userAgent:  "foodsearch/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source identifies this adapter's provider.
func (c *Client) Source() food.Source {
	return food.SourceProviderB
}

// searchResponse mirrors the upstream term-search payload. Count is
// exact, unlike provider A's approximate totals.
type searchResponse struct {
	Count    int       `json:"count"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Products []product `json:"products"`
}

type productResponse struct {
	Status  int      `json:"status"`
	Product *product `json:"product"`
}

// product is one upstream record. Nutriments carry string-keyed
// values; energy keys without a unit suffix are kJ.
type product struct {
	Code            string             `json:"code"`
	ProductName     string             `json:"product_name"`
	Brands          string             `json:"brands,omitempty"`
	ImageURL        string             `json:"image_url,omitempty"`
	ServingSize     string             `json:"serving_size,omitempty"`
	ServingQuantity float64            `json:"serving_quantity,omitempty"`
	Nutriments      map[string]float64 `json:"nutriments"`
}

// Search runs a term search. Pages are numbered from 1.
func (c *Client) Search(ctx context.Context, term string, page, pageSize int) (food.ProviderResult, error) {
	params := url.Values{}
	params.Set("search_terms", term)
	params.Set("search_simple", "1")
	params.Set("json", "1")
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))

	var resp searchResponse
	if err := c.getJSON(ctx, "/cgi/search.pl", params, &resp); err != nil {
		return food.ProviderResult{}, err
	}

	products := make([]food.NormalizedProduct, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, normalizeProduct(p))
	}
	return food.ProviderResult{Products: products, Total: resp.Count}, nil
}

// LookupBarcode resolves a scanned code to a single product. A missing
// product is food.ErrNotFound, distinct from upstream failure.
func (c *Client) LookupBarcode(ctx context.Context, code string) (food.NormalizedProduct, error) {
	var resp productResponse
	err := c.getJSON(ctx, "/api/v2/product/"+url.PathEscape(code)+".json", url.Values{}, &resp)
	if err != nil {
		if isStatusErr(err, http.StatusNotFound) {
			return food.NormalizedProduct{}, fmt.Errorf("barcode %s: %w", code, food.ErrNotFound)
		}
		return food.NormalizedProduct{}, err
	}
	if resp.Status != 1 || resp.Product == nil {
		return food.NormalizedProduct{}, fmt.Errorf("barcode %s: %w", code, food.ErrNotFound)
	}
	return normalizeProduct(*resp.Product), nil
}

// ListProducts fetches one page of the bulk catalog. An empty page
// means the listing is exhausted.
func (c *Client) ListProducts(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))

	var resp searchResponse
	if err := c.getJSON(ctx, "/api/v2/search", params, &resp); err != nil {
		return nil, err
	}

	products := make([]food.NormalizedProduct, 0, len(resp.Products))
	for _, p := range resp.Products {
		products = append(products, normalizeProduct(p))
	}
	return products, nil
}

// statusError preserves the upstream HTTP status for callers that need
// to distinguish 404 from other failures.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", food.ErrUpstreamUnavailable, e.status, e.body)
}

func (e *statusError) Unwrap() error {
	return food.ErrUpstreamUnavailable
}

func isStatusErr(err error, status int) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status == status
	}
	return false
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", food.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{status: resp.StatusCode, body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
