package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"coolie/models"
)

// Client reads generic catalog data from the catalog service.
type Client interface {
	Categories(ctx context.Context) ([]models.Category, error)
	SubCategories(ctx context.Context) ([]models.SubCategory, error)
	Services(ctx context.Context) ([]models.Service, error)
	ServicesFiltered(ctx context.Context, categoryID, subCategoryID string) ([]models.Service, error)
}

// HTTPClient implements Client over the core REST API.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

func (c *HTTPClient) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	return out, c.getJSON(ctx, "categories", "/categories", &out)
}

func (c *HTTPClient) SubCategories(ctx context.Context) ([]models.SubCategory, error) {
	var out []models.SubCategory
	return out, c.getJSON(ctx, "sub-categories", "/sub-categories", &out)
}

func (c *HTTPClient) Services(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	return out, c.getJSON(ctx, "services", "/services", &out)
}

// ServicesFiltered unwraps the {"data": [...]} envelope of the filter endpoint.
func (c *HTTPClient) ServicesFiltered(ctx context.Context, categoryID, subCategoryID string) ([]models.Service, error) {
	var envelope struct {
		Data []models.Service `json:"data"`
	}
	path := "/services/filter/" + url.PathEscape(categoryID) + "/" + url.PathEscape(subCategoryID)
	if err := c.getJSON(ctx, "services", path, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, resource, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return &FetchError{Resource: resource, Err: err}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &FetchError{Resource: resource, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Resource: resource, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Resource: resource, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
