package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nutrisync/foodsearch/internal/food"
)

// Client calls the external translation collaborator.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient builds a translation client. Returns
// food.ErrConfigurationMissing when no API key is configured, so the
// caller can disable the feature instead of failing requests.
func NewClient(endpoint, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("translation api key: %w", food.ErrConfigurationMissing)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}, nil
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate converts text to English and reports the detected source
// language.
func (c *Client) Translate(ctx context.Context, text string) (string, string, error) {
	form := url.Values{}
	form.Set("q", text)
	form.Set("target", "en")
	form.Set("format", "text")
	form.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", food.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", "", fmt.Errorf("%w: status %d: %s", food.ErrUpstreamUnavailable, resp.StatusCode, body)
	}

	var payload translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Data.Translations) == 0 {
		return "", "", fmt.Errorf("empty translation response")
	}
	tr := payload.Data.Translations[0]
	return tr.TranslatedText, tr.DetectedSourceLanguage, nil
}
