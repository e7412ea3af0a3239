// Package providera adapts the whole-food nutrient directory upstream
// to the common product shape.
package providera

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nutrisync/foodsearch/internal/food"
)

// Client handles communication with the provider A search and bulk
// listing endpoints. It does not rate-limit; scrapers own their own
// request spacing.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport, primarily for testing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a provider A client.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source identifies this adapter's provider.
func (c *Client) Source() food.Source {
	return food.SourceProviderA
}

// searchResponse mirrors the upstream search payload.
type searchResponse struct {
	TotalHits int    `json:"totalHits"`
	Foods     []item `json:"foods"`
}

// item is one upstream food record.
type item struct {
	FdcID           int64      `json:"fdcId"`
	Description     string     `json:"description"`
	BrandOwner      string     `json:"brandOwner,omitempty"`
	BrandName       string     `json:"brandName,omitempty"`
	ServingSize     float64    `json:"servingSize,omitempty"`
	ServingSizeUnit string     `json:"servingSizeUnit,omitempty"`
	HouseholdText   string     `json:"householdServingFullText,omitempty"`
	Nutrients       []nutrient `json:"foodNutrients"`
	LabelCalories   float64    `json:"labelCalories,omitempty"`
}

// nutrient is keyed by the upstream's numeric nutrient IDs.
type nutrient struct {
	NutrientID int     `json:"nutrientId"`
	UnitName   string  `json:"unitName,omitempty"`
	Value      float64 `json:"value"`
}

// Search queries the upstream directory and normalizes the results.
func (c *Client) Search(ctx context.Context, query string, limit int) (food.ProviderResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("api_key", c.apiKey)

	var resp searchResponse
	if err := c.getJSON(ctx, "/v1/foods/search", params, &resp); err != nil {
		return food.ProviderResult{}, err
	}

	products := make([]food.NormalizedProduct, 0, len(resp.Foods))
	for _, f := range resp.Foods {
		products = append(products, normalizeItem(f))
	}
	return food.ProviderResult{Products: products, Total: resp.TotalHits}, nil
}

// ListFoods fetches one page of the bulk catalog listing. Pages are
// numbered from 1; an empty page means the listing is exhausted. The
// upstream total is approximate and not reported here.
func (c *Client) ListFoods(ctx context.Context, page, pageSize int) ([]food.NormalizedProduct, error) {
	params := url.Values{}
	params.Set("pageNumber", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("api_key", c.apiKey)

	var items []item
	if err := c.getJSON(ctx, "/v1/foods/list", params, &items); err != nil {
		return nil, err
	}

	products := make([]food.NormalizedProduct, 0, len(items))
	for _, f := range items {
		products = append(products, normalizeItem(f))
	}
	return products, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", food.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", food.ErrUpstreamUnavailable, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
