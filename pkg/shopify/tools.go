package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/8090-inc/xrx-sample-apps/pkg/session"
	"github.com/8090-inc/xrx-sample-apps/pkg/tools"
)

// Session keys the store tools read and write.
const (
	cartIDKey         = "cart_id"
	submittedOrderKey = "submitted_order_id"
)

// StoreTools builds the storefront tools backed by the given client. The
// customer's cart and submitted order IDs live in the request session.
func StoreTools(client *Client) []tools.Tool {
	s := &storefront{client: client}
	return []tools.Tool{
		tools.NewFuncTool("get_products",
			"Fetches all active products from the shop and returns a dictionary describing every available product. Use it to look up a product_id or to see which options a product offers. Returns JSON keyed by product ID with product_id, product_title and options.",
			nil, s.getProducts),
		tools.NewFuncTool("get_product_details",
			"Retrieves detailed information about a specific product by its ID, including every variant with its price and SKU. Only use it once get_products has supplied the exact product_id.",
			[]tools.Parameter{{Name: "product_id", Description: "product_id (int): The ID of the product."}},
			s.getProductDetails),
		tools.NewFuncTool("add_item_to_cart",
			"Adds a quantity of the specified product variant to the customer's cart and returns the updated cart summary. Only use it once get_product_details has supplied the exact variant_id and the customer has asked for the item.",
			[]tools.Parameter{
				{Name: "variant_id", Description: "variant_id (int): The ID of the product variant."},
				{Name: "quantity", Description: "quantity (int): The quantity to add to the cart."},
			},
			s.addItemToCart),
		tools.NewFuncTool("delete_item_from_cart",
			"Removes an item from the current cart by its variant ID and returns the updated cart summary. If the last item is removed the cart is deleted.",
			[]tools.Parameter{{Name: "variant_id", Description: "variant_id (int): The ID of the product variant."}},
			s.deleteItemFromCart),
		tools.NewFuncTool("get_cart_summary",
			"Returns a detailed summary of the current cart: the total price and every line item. If no cart exists, returns an empty cart summary.",
			nil, s.getCartSummary),
		tools.NewFuncTool("submit_cart_for_order",
			"Finalizes and submits the current cart for processing as an order. Returns a confirmation message with the order's confirmation number. Only use it once the customer explicitly asks to submit the cart.",
			nil, s.submitCartForOrder),
		tools.NewFuncTool("get_order_status",
			"Checks and returns the fulfillment status of the submitted order.",
			nil, s.getOrderStatus),
	}
}

type storefront struct {
	client *Client
}

func (s *storefront) getProducts(ctx context.Context, _ *session.Session, _ map[string]any) (string, error) {
	products, err := s.client.Products(ctx)
	if err != nil {
		return "", err
	}

	out := make(map[string]any, len(products))
	for _, p := range products {
		if p.Status != "active" {
			continue
		}
		options := make([]any, 0, len(p.Options))
		for _, opt := range p.Options {
			options = append(options, map[string]any{"option_title": opt.Name})
		}
		out[strconv.FormatInt(p.ID, 10)] = map[string]any{
			"product_id":    p.ID,
			"product_title": p.Title,
			"options":       options,
		}
	}
	return marshalJSON(out)
}

func (s *storefront) getProductDetails(ctx context.Context, _ *session.Session, params map[string]any) (string, error) {
	productID, err := int64Param(params, "product_id")
	if err != nil {
		return "", err
	}

	product, err := s.client.Product(ctx, productID)
	if err == ErrNotFound {
		return fmt.Sprintf("Product with ID %d not found.", productID), nil
	}
	if err != nil {
		return "", err
	}

	variants := make([]any, 0, len(product.Variants))
	for _, v := range product.Variants {
		variants = append(variants, map[string]any{
			"variant_id":          v.ID,
			"variant_name":        v.Title,
			"price":               v.Price,
			"product_variant_sku": v.SKU,
		})
	}
	return marshalJSON(map[string]any{
		"product_id":       product.ID,
		"product_title":    product.Title,
		"product_variants": variants,
	})
}

func (s *storefront) addItemToCart(ctx context.Context, sess *session.Session, params map[string]any) (string, error) {
	variantID, err := int64Param(params, "variant_id")
	if err != nil {
		return "", err
	}
	quantity, err := int64Param(params, "quantity")
	if err != nil {
		return "", err
	}

	cartID, hasCart := sessionInt64(sess, cartIDKey)
	var cart *DraftOrder
	if !hasCart {
		cart, err = s.client.CreateDraftOrder(ctx, []LineItem{{VariantID: variantID, Quantity: quantity}})
		if err != nil {
			return "", err
		}
		sess.Set(cartIDKey, cart.ID)
		slog.Info("no cart found in session, created a new cart", "cart_id", cart.ID)
	} else {
		existing, err := s.client.DraftOrder(ctx, cartID)
		if err != nil {
			return "", err
		}
		items := make([]LineItem, 0, len(existing.LineItems)+1)
		for _, li := range existing.LineItems {
			items = append(items, LineItem{VariantID: li.VariantID, Quantity: li.Quantity})
		}
		items = append(items, LineItem{VariantID: variantID, Quantity: quantity})
		cart, err = s.client.UpdateDraftOrder(ctx, cartID, items)
		if err != nil {
			return "", err
		}
	}
	return marshalJSON(cartSummary(cart))
}

func (s *storefront) deleteItemFromCart(ctx context.Context, sess *session.Session, params map[string]any) (string, error) {
	variantID, err := int64Param(params, "variant_id")
	if err != nil {
		return "", err
	}

	cartID, hasCart := sessionInt64(sess, cartIDKey)
	if !hasCart {
		return "No cart exists to delete items from. Please add items to the cart first.", nil
	}

	cart, err := s.client.DraftOrder(ctx, cartID)
	if err != nil {
		return "", err
	}

	remaining := make([]LineItem, 0, len(cart.LineItems))
	for _, li := range cart.LineItems {
		if li.VariantID != variantID {
			remaining = append(remaining, LineItem{VariantID: li.VariantID, Quantity: li.Quantity})
		}
	}

	if len(remaining) == 0 {
		if err := s.client.DeleteDraftOrder(ctx, cartID); err != nil {
			return "", err
		}
		sess.Delete(cartIDKey)
		return marshalJSON(emptyCartSummary())
	}

	updated, err := s.client.UpdateDraftOrder(ctx, cartID, remaining)
	if err != nil {
		return "", err
	}
	return marshalJSON(cartSummary(updated))
}

func (s *storefront) getCartSummary(ctx context.Context, sess *session.Session, _ map[string]any) (string, error) {
	cartID, hasCart := sessionInt64(sess, cartIDKey)
	if !hasCart {
		return marshalJSON(emptyCartSummary())
	}

	cart, err := s.client.DraftOrder(ctx, cartID)
	if err != nil {
		return "", err
	}
	return marshalJSON(cartSummary(cart))
}

func (s *storefront) submitCartForOrder(ctx context.Context, sess *session.Session, _ map[string]any) (string, error) {
	cartID, hasCart := sessionInt64(sess, cartIDKey)
	if !hasCart {
		return "No cart exists to complete. Please add items to the cart first.", nil
	}

	completed, err := s.client.CompleteDraftOrder(ctx, cartID)
	if err != nil {
		return "", err
	}

	if submitted, ok := sessionInt64(sess, submittedOrderKey); ok {
		return "Your cart has already been submitted with confirmation number: " + strconv.FormatInt(submitted, 10), nil
	}

	sess.Set(submittedOrderKey, completed.OrderID)
	return "Your cart has been submitted with confirmation number: " + strconv.FormatInt(completed.OrderID, 10), nil
}

func (s *storefront) getOrderStatus(ctx context.Context, sess *session.Session, _ map[string]any) (string, error) {
	submitted, ok := sessionInt64(sess, submittedOrderKey)
	if !ok {
		return "No order has been submitted yet.", nil
	}

	order, err := s.client.Order(ctx, submitted)
	if err != nil {
		return "", err
	}
	if order.FulfillmentStatus == "" {
		return "The order is confirmed and being processed with confirmation number: " + strconv.FormatInt(submitted, 10), nil
	}
	return "The order has been delivered.", nil
}

func cartSummary(cart *DraftOrder) map[string]any {
	items := make([]any, 0, len(cart.LineItems))
	for _, li := range cart.LineItems {
		var variantTitle any
		if li.VariantTitle != "" {
			variantTitle = li.VariantTitle
		}
		items = append(items, map[string]any{
			"name":             li.Title,
			"quantity":         li.Quantity,
			"price":            li.Price,
			"variant_id":       li.VariantID,
			"product_id":       li.ProductID,
			"item_variant_sku": li.SKU,
			"variant_title":    variantTitle,
		})
	}
	return map[string]any{
		"cart_summary": map[string]any{
			"total_price": cart.TotalPrice,
			"line_items":  items,
		},
	}
}

func emptyCartSummary() map[string]any {
	return map[string]any{
		"cart_summary": map[string]any{
			"total_price": 0,
			"line_items":  []any{},
		},
	}
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func int64Param(params map[string]any, key string) (int64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("%s parameter is required", key)
	}
	return coerceInt64(v, key)
}

func sessionInt64(sess *session.Session, key string) (int64, bool) {
	v, ok := sess.Get(key)
	if !ok {
		return 0, false
	}
	n, err := coerceInt64(v, key)
	return n, err == nil
}

func coerceInt64(v any, key string) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number, got %q", key, n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}
