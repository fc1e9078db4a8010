package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdmin is an in-memory Shopify Admin REST API. It serves the product
// catalog it is seeded with and keeps draft orders across calls so cart
// flows can be exercised end to end.
type fakeAdmin struct {
	mu          sync.Mutex
	products    map[int64]Product
	drafts      map[int64]*DraftOrder
	orders      map[int64]Order
	nextDraftID int64
	nextOrderID int64
	requests    []string
	lastToken   string
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{
		products:    make(map[int64]Product),
		drafts:      make(map[int64]*DraftOrder),
		orders:      make(map[int64]Order),
		nextDraftID: 9000,
		nextOrderID: 5000,
	}
}

func (f *fakeAdmin) addProduct(p Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}

func (f *fakeAdmin) addOrder(o Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
}

func (f *fakeAdmin) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// pricedLineItems fills title, price and SKU from the catalog the way the
// real API enriches submitted line items.
func (f *fakeAdmin) pricedLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		enriched := item
		for _, p := range f.products {
			for _, v := range p.Variants {
				if v.ID == item.VariantID {
					enriched.Title = p.Title
					enriched.Price = v.Price
					enriched.SKU = v.SKU
					enriched.ProductID = p.ID
					enriched.VariantTitle = v.Title
				}
			}
		}
		out = append(out, enriched)
	}
	return out
}

func (f *fakeAdmin) totalPrice(items []LineItem) string {
	var total float64
	for _, item := range items {
		price, _ := strconv.ParseFloat(item.Price, 64)
		total += price * float64(item.Quantity)
	}
	return strconv.FormatFloat(total, 'f', 2, 64)
}

func (f *fakeAdmin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.lastToken = r.Header.Get("X-Shopify-Access-Token")

	path := strings.TrimSuffix(r.URL.Path, ".json")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	writeJSON := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.Method == http.MethodGet && path == "/products":
		list := make([]Product, 0, len(f.products))
		for _, p := range f.products {
			list = append(list, p)
		}
		writeJSON(map[string]any{"products": list})

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "products":
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		p, ok := f.products[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(map[string]any{"product": p})

	case r.Method == http.MethodPost && path == "/draft_orders":
		var body struct {
			DraftOrder struct {
				LineItems []LineItem `json:"line_items"`
			} `json:"draft_order"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.nextDraftID++
		draft := &DraftOrder{
			ID:        f.nextDraftID,
			LineItems: f.pricedLineItems(body.DraftOrder.LineItems),
		}
		draft.TotalPrice = f.totalPrice(draft.LineItems)
		f.drafts[draft.ID] = draft
		writeJSON(map[string]any{"draft_order": draft})

	case len(parts) == 3 && parts[0] == "draft_orders" && parts[2] == "complete":
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		draft, ok := f.drafts[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if draft.OrderID == 0 {
			f.nextOrderID++
			draft.OrderID = f.nextOrderID
			f.orders[draft.OrderID] = Order{ID: draft.OrderID}
		}
		writeJSON(map[string]any{"draft_order": draft})

	case len(parts) == 2 && parts[0] == "draft_orders":
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		draft, ok := f.drafts[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(map[string]any{"draft_order": draft})
		case http.MethodPut:
			var body struct {
				DraftOrder struct {
					LineItems []LineItem `json:"line_items"`
				} `json:"draft_order"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			draft.LineItems = f.pricedLineItems(body.DraftOrder.LineItems)
			draft.TotalPrice = f.totalPrice(draft.LineItems)
			writeJSON(map[string]any{"draft_order": draft})
		case http.MethodDelete:
			delete(f.drafts, id)
			writeJSON(map[string]any{})
		}

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "orders":
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		order, ok := f.orders[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(map[string]any{"order": order})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// newTestClient spins up a fake Admin API and a client pointed at it.
func newTestClient(t *testing.T) (*Client, *fakeAdmin) {
	t.Helper()
	admin := newFakeAdmin()
	server := httptest.NewServer(admin)
	t.Cleanup(server.Close)
	return NewClientWithBaseURL(server.URL, "test-token"), admin
}

func seedCatalog(admin *fakeAdmin) {
	admin.addProduct(Product{
		ID:     101,
		Title:  "Margherita Pizza",
		Status: "active",
		Options: []ProductOption{
			{Name: "Size"},
		},
		Variants: []Variant{
			{ID: 1001, Title: "Small", Price: "10.00", SKU: "PIZZA-M-S"},
			{ID: 1002, Title: "Large", Price: "15.00", SKU: "PIZZA-M-L", ImageID: 42},
		},
		Images: []Image{
			{ID: 41, Src: "https://cdn.example.com/margherita.png"},
			{ID: 42, Src: "https://cdn.example.com/margherita-large.png"},
		},
	})
	admin.addProduct(Product{
		ID:     102,
		Title:  "Retired Pizza",
		Status: "draft",
		Variants: []Variant{
			{ID: 1003, Title: "Default", Price: "1.00", SKU: "PIZZA-R"},
		},
	})
}

func TestClient_Products(t *testing.T) {
	client, admin := newTestClient(t)
	seedCatalog(admin)

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, "test-token", admin.lastToken)
}

func TestClient_Product(t *testing.T) {
	client, admin := newTestClient(t)
	seedCatalog(admin)

	t.Run("found", func(t *testing.T) {
		product, err := client.Product(context.Background(), 101)
		require.NoError(t, err)
		assert.Equal(t, "Margherita Pizza", product.Title)
		assert.Len(t, product.Variants, 2)
	})

	t.Run("missing returns ErrNotFound", func(t *testing.T) {
		_, err := client.Product(context.Background(), 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestClient_DraftOrderLifecycle(t *testing.T) {
	client, admin := newTestClient(t)
	seedCatalog(admin)
	ctx := context.Background()

	created, err := client.CreateDraftOrder(ctx, []LineItem{{VariantID: 1001, Quantity: 2}})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "20.00", created.TotalPrice)

	fetched, err := client.DraftOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.LineItems, 1)
	assert.Equal(t, "Margherita Pizza", fetched.LineItems[0].Title)

	updated, err := client.UpdateDraftOrder(ctx, created.ID, []LineItem{
		{VariantID: 1001, Quantity: 2},
		{VariantID: 1002, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "35.00", updated.TotalPrice)

	completed, err := client.CompleteDraftOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.NotZero(t, completed.OrderID)

	order, err := client.Order(ctx, completed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, completed.OrderID, order.ID)

	require.NoError(t, client.DeleteDraftOrder(ctx, created.ID))
	_, err = client.DraftOrder(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL, "")
	_, err := client.Products(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestConfig_Configured(t *testing.T) {
	assert.False(t, Config{}.Configured())
	assert.False(t, Config{Shop: "store"}.Configured())
	assert.True(t, Config{Shop: "store", Token: "tok"}.Configured())
}
