package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/8090-inc/xrx-sample-apps/pkg/graph"
	"github.com/8090-inc/xrx-sample-apps/pkg/models"
)

// Widget payload types rendered by the frontend.
const (
	WidgetProductList       = "shopify-product-list"
	WidgetProductDetails    = "shopify-product-details"
	WidgetCartSummary       = "shopify-cart-summary"
	WidgetOrderConfirmation = "shopify-order-confirmation"
	WidgetOrderStatus       = "shopify-order-status"
)

// WidgetImagePopulator attaches product image URLs to tool outputs before
// they are rendered. Implemented by the storefront image cache.
type WidgetImagePopulator interface {
	PopulateProductList(ctx context.Context, products map[string]any)
	PopulateProductDetails(ctx context.Context, product map[string]any)
	PopulateCartSummary(ctx context.Context, summary map[string]any)
}

// Widget deterministically maps a tool output to the widget payload the
// frontend renders alongside the spoken response. Terminal.
type Widget struct {
	graph.BaseNode
	images  WidgetImagePopulator
	shopGID string
}

// NewWidget builds the widget renderer. images may be nil to skip image
// enrichment; shopGID feeds the customer-facing order link.
func NewWidget(images WidgetImagePopulator, shopGID string) *Widget {
	return &Widget{
		BaseNode: graph.BaseNode{NodeID: NodeWidget},
		images:   images,
		shopGID:  shopGID,
	}
}

func (n *Widget) Process(ctx context.Context, _ *graph.ExecContext, _ []models.Message, input graph.Input, emit graph.EmitFunc) error {
	widget, err := n.matchWidget(ctx, input.Tool, input.Output)
	if err != nil {
		return err
	}

	parameters := input.Parameters
	if parameters == nil {
		parameters = map[string]any{}
	}
	emit(graph.Result{
		"node":       n.ID(),
		"reason":     "hard coded widget creation",
		"output":     widget,
		"memory":     input.Memory,
		"parameters": parameters,
	})
	return nil
}

// Successors returns none; the widget ends the path.
func (n *Widget) Successors(graph.Result) ([]graph.Successor, error) {
	return nil, nil
}

// matchWidget builds the widget payload for a tool output. Tools without a
// mapping produce an empty payload.
func (n *Widget) matchWidget(ctx context.Context, tool string, output any) (map[string]any, error) {
	switch tool {
	case "get_products":
		if products, ok := output.(map[string]any); ok && n.images != nil {
			n.images.PopulateProductList(ctx, products)
		}
		return n.widgetPayload(WidgetProductList, output, "get_product_details", []any{"product_id"})

	case "get_product_details":
		if product, ok := output.(map[string]any); ok && n.images != nil {
			n.images.PopulateProductDetails(ctx, product)
		}
		return n.widgetPayload(WidgetProductDetails, output, "add_item_to_cart", []any{"variant_id"})

	case "add_item_to_cart", "delete_item_from_cart", "get_cart_summary":
		if summary, ok := output.(map[string]any); ok && n.images != nil {
			n.images.PopulateCartSummary(ctx, summary)
		}
		return n.widgetPayload(WidgetCartSummary, output, "submit_cart_for_order", []any{})

	case "submit_cart_for_order":
		details, ok := n.confirmationDetails(output)
		if !ok {
			return map[string]any{}, nil
		}
		return n.widgetPayload(WidgetOrderConfirmation, details, "get_order_status", []any{})

	case "get_order_status":
		details, ok := n.confirmationDetails(output)
		if !ok {
			return map[string]any{}, nil
		}
		data, err := json.Marshal(details)
		if err != nil {
			return nil, fmt.Errorf("encode widget details: %w", err)
		}
		// The order status widget is purely informational and offers no
		// follow-up actions.
		return map[string]any{
			"type":    WidgetOrderStatus,
			"details": string(data),
		}, nil

	default:
		return map[string]any{}, nil
	}
}

func (n *Widget) widgetPayload(widgetType string, details any, nextTool string, arguments []any) (map[string]any, error) {
	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode widget details: %w", err)
	}
	return map[string]any{
		"type":    widgetType,
		"details": string(data),
		"available-tools": []any{
			map[string]any{
				"tool":      nextTool,
				"arguments": arguments,
			},
		},
	}, nil
}

// confirmationDetails turns an order tool's sentence into a structured
// payload with the confirmation number and a customer-facing link. Replies
// without a confirmation number pass through unchanged; a reply that names
// one but cannot be parsed yields ok=false, which renders an empty widget.
func (n *Widget) confirmationDetails(output any) (any, bool) {
	text, ok := output.(string)
	if !ok {
		return output, true
	}
	if !strings.Contains(text, "confirmation number") {
		return text, true
	}

	_, after, found := strings.Cut(text, "confirmation number:")
	if !found {
		return nil, false
	}
	number, err := strconv.Atoi(strings.TrimSpace(after))
	if err != nil {
		return nil, false
	}
	return map[string]any{
		"message":             text,
		"confirmation_number": number,
		"confirmation_link":   fmt.Sprintf("https://shopify.com/%s/account/orders/%d", n.shopGID, number),
	}, true
}
