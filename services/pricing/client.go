package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"coolie/models"
)

// Client is the pricing service collaborator. Both lookups return ErrNotFound
// on a 404.
type Client interface {
	Custom(ctx context.Context, postalCode string) ([]models.PriceRecord, error)
	District(ctx context.Context, name string) ([]models.PriceRecord, error)
}

// HTTPClient talks to the pricing endpoints of the core API.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPClient builds a pricing client rooted at baseURL.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

func (c *HTTPClient) Custom(ctx context.Context, postalCode string) ([]models.PriceRecord, error) {
	return c.get(ctx, "/locations/custom/"+url.PathEscape(postalCode))
}

func (c *HTTPClient) District(ctx context.Context, name string) ([]models.PriceRecord, error) {
	return c.get(ctx, "/locations/district/"+url.PathEscape(name))
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]models.PriceRecord, error) {
	reqURL := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Status: resp.StatusCode, URL: reqURL}
	}

	var records []models.PriceRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode pricing response: %w", err)
	}
	return records, nil
}
