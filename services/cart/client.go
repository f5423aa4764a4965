package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"coolie/models"
)

// Client is the remote cart service. Callers re-fetch after every mutation
// rather than trusting a local copy.
type Client interface {
	Fetch(ctx context.Context, userID string) ([]models.CartItem, error)
	Create(ctx context.Context, userID string, items []models.CartItem) error
	Clear(ctx context.Context, userID string) error
	RemoveItem(ctx context.Context, userID, itemID string) error
}

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

type remoteCart struct {
	ID     string       `json:"_id"`
	UserID string       `json:"userId"`
	Items  []remoteItem `json:"items"`
}

type remoteItem struct {
	ID            string          `json:"_id"`
	ServiceID     json.RawMessage `json:"serviceId"`
	CategoryID    json.RawMessage `json:"categoryId"`
	SubCategoryID json.RawMessage `json:"subCategoryId"`
	Quantity      int             `json:"quantity"`
	PriceAtAdd    float64         `json:"priceAtAdd"`
}

// populatedRef covers both a bare id string and a populated document.
type populatedRef struct {
	ID       string                  `json:"_id"`
	Variants []models.ServiceVariant `json:"serviceVariants"`
}

func decodeRef(raw json.RawMessage) populatedRef {
	var ref populatedRef
	if len(raw) == 0 || string(raw) == "null" {
		return ref
	}
	if raw[0] == '"' {
		_ = json.Unmarshal(raw, &ref.ID)
		return ref
	}
	_ = json.Unmarshal(raw, &ref)
	return ref
}

func (it remoteItem) toModel() models.CartItem {
	svc := decodeRef(it.ServiceID)
	item := models.CartItem{
		ID:            it.ID,
		ServiceID:     svc.ID,
		CategoryID:    decodeRef(it.CategoryID).ID,
		SubCategoryID: decodeRef(it.SubCategoryID).ID,
		Quantity:      it.Quantity,
	}
	switch {
	case it.PriceAtAdd > 0:
		item.PriceAtAdd = it.PriceAtAdd
	case len(svc.Variants) > 0:
		item.PriceAtAdd = svc.Variants[0].Price
	}
	return item
}

// Fetch returns all items across the user's carts. A 404 is an empty cart.
func (c *HTTPClient) Fetch(ctx context.Context, userID string) ([]models.CartItem, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/cart/"+url.PathEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return []models.CartItem{}, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch cart: status %d", status)
	}

	var carts []remoteCart
	if err := json.Unmarshal(body, &carts); err != nil {
		var single remoteCart
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return nil, fmt.Errorf("decode cart: %w", err)
		}
		carts = []remoteCart{single}
	}

	items := []models.CartItem{}
	for _, cart := range carts {
		for _, it := range cart.Items {
			items = append(items, it.toModel())
		}
	}
	return items, nil
}

func (c *HTTPClient) Create(ctx context.Context, userID string, items []models.CartItem) error {
	type lineItem struct {
		ServiceID     string  `json:"serviceId"`
		CategoryID    string  `json:"categoryId,omitempty"`
		SubCategoryID string  `json:"subCategoryId,omitempty"`
		Quantity      int     `json:"quantity"`
		PriceAtAdd    float64 `json:"priceAtAdd,omitempty"`
	}
	payload := struct {
		UserID string     `json:"userId"`
		Items  []lineItem `json:"items"`
	}{UserID: userID}
	for _, it := range items {
		payload.Items = append(payload.Items, lineItem{it.ServiceID, it.CategoryID, it.SubCategoryID, it.Quantity, it.PriceAtAdd})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.mutate(ctx, http.MethodPost, "/cart/create-cart", data)
}

func (c *HTTPClient) Clear(ctx context.Context, userID string) error {
	return c.mutate(ctx, http.MethodDelete, "/cart/"+url.PathEscape(userID), nil)
}

func (c *HTTPClient) RemoveItem(ctx context.Context, userID, itemID string) error {
	return c.mutate(ctx, http.MethodDelete, "/cart/"+url.PathEscape(userID)+"/"+url.PathEscape(itemID), nil)
}

func (c *HTTPClient) mutate(ctx context.Context, method, path string, body []byte) error {
	_, status, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%s %s: status %d", method, path, status)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}
