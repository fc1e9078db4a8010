// Package shopify is a minimal Shopify Admin REST client covering the
// storefront operations the reasoning agent needs, plus the store tools
// built on top of it.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const apiVersion = "2024-04"

// ErrNotFound is returned when the requested resource does not exist.
var ErrNotFound = errors.New("shopify: resource not found")

// Config holds the store credentials.
type Config struct {
	// Shop is the myshopify.com store handle.
	Shop string
	// Token is the Admin API access token.
	Token string
	// ShopGID is the numeric shop ID used in customer-facing order links.
	ShopGID string
}

// Configured reports whether the store credentials are present.
func (c Config) Configured() bool {
	return c.Shop != "" && c.Token != ""
}

// Client talks to the Shopify Admin REST API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient builds a client for the configured store.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", cfg.Shop, apiVersion),
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL points the client at a custom endpoint, used by
// tests.
func NewClientWithBaseURL(baseURL, token string) *Client {
	return &Client{baseURL: baseURL, token: token, httpc: http.DefaultClient}
}

// Product is one store product with its options, variants and images.
type Product struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Status   string          `json:"status"`
	Options  []ProductOption `json:"options"`
	Variants []Variant       `json:"variants"`
	Images   []Image         `json:"images"`
}

// ProductOption is a named axis of variation, such as Size or Flavor.
type ProductOption struct {
	Name string `json:"name"`
}

// Variant is one purchasable variation of a product.
type Variant struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Price   string `json:"price"`
	SKU     string `json:"sku"`
	ImageID int64  `json:"image_id"`
}

// Image is one product image.
type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

// LineItem is one entry of a draft order.
type LineItem struct {
	Title        string `json:"title,omitempty"`
	Quantity     int64  `json:"quantity"`
	Price        string `json:"price,omitempty"`
	VariantID    int64  `json:"variant_id"`
	ProductID    int64  `json:"product_id,omitempty"`
	SKU          string `json:"sku,omitempty"`
	VariantTitle string `json:"variant_title,omitempty"`
}

// DraftOrder is the cart representation: an uncompleted order.
type DraftOrder struct {
	ID         int64      `json:"id"`
	TotalPrice string     `json:"total_price"`
	OrderID    int64      `json:"order_id"`
	LineItems  []LineItem `json:"line_items"`
}

// Order is a completed order.
type Order struct {
	ID                int64  `json:"id"`
	FulfillmentStatus string `json:"fulfillment_status"`
}

// Products lists every product of the store.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var payload struct {
		Products []Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products.json", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// Product fetches one product by ID.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var payload struct {
		Product Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d.json", id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload.Product, nil
}

// CreateDraftOrder opens a new draft order holding the given line items.
func (c *Client) CreateDraftOrder(ctx context.Context, items []LineItem) (*DraftOrder, error) {
	body := map[string]any{"draft_order": map[string]any{"line_items": items}}
	var payload struct {
		DraftOrder DraftOrder `json:"draft_order"`
	}
	if err := c.do(ctx, http.MethodPost, "/draft_orders.json", body, &payload); err != nil {
		return nil, err
	}
	return &payload.DraftOrder, nil
}

// DraftOrder fetches a draft order by ID.
func (c *Client) DraftOrder(ctx context.Context, id int64) (*DraftOrder, error) {
	var payload struct {
		DraftOrder DraftOrder `json:"draft_order"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/draft_orders/%d.json", id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload.DraftOrder, nil
}

// UpdateDraftOrder replaces the line items of a draft order.
func (c *Client) UpdateDraftOrder(ctx context.Context, id int64, items []LineItem) (*DraftOrder, error) {
	body := map[string]any{"draft_order": map[string]any{"id": id, "line_items": items}}
	var payload struct {
		DraftOrder DraftOrder `json:"draft_order"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/draft_orders/%d.json", id), body, &payload); err != nil {
		return nil, err
	}
	return &payload.DraftOrder, nil
}

// DeleteDraftOrder removes a draft order entirely.
func (c *Client) DeleteDraftOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/draft_orders/%d.json", id), nil, nil)
}

// CompleteDraftOrder submits a draft order, turning it into a real order.
func (c *Client) CompleteDraftOrder(ctx context.Context, id int64) (*DraftOrder, error) {
	var payload struct {
		DraftOrder DraftOrder `json:"draft_order"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/draft_orders/%d/complete.json", id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload.DraftOrder, nil
}

// Order fetches a completed order by ID.
func (c *Client) Order(ctx context.Context, id int64) (*Order, error) {
	var payload struct {
		Order Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d.json", id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload.Order, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("shopify: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("shopify: build %s %s: %w", method, path, err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("shopify: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("shopify: %s %s returned status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("shopify: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}
