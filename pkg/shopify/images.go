package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/8090-inc/xrx-sample-apps/pkg/kv"
)

// ImageCache resolves product image URLs through the shared key-value store
// so repeated widget renders do not re-fetch the same product. Lookup
// failures degrade to a missing image rather than failing the widget.
type ImageCache struct {
	client *Client
	store  kv.Store
}

// NewImageCache builds an image cache over the given client and store.
func NewImageCache(client *Client, store kv.Store) *ImageCache {
	return &ImageCache{client: client, store: store}
}

func imageKey(productID int64, variantID int64) string {
	if variantID != 0 {
		return fmt.Sprintf("product-image-%d-%d", productID, variantID)
	}
	return fmt.Sprintf("product-image-%d", productID)
}

// ProductImage returns the URL of the image for a product, preferring the
// image attached to the given variant when variantID is non-zero. Returns
// "" when the product has no images or the lookup fails.
func (c *ImageCache) ProductImage(ctx context.Context, productID, variantID int64) string {
	key := imageKey(productID, variantID)
	if cached, ok, err := c.store.Get(ctx, key); err == nil && ok {
		return cached
	}

	product, err := c.client.Product(ctx, productID)
	if err != nil {
		slog.Error("fetching product image failed",
			"product_id", productID, "variant_id", variantID, "error", err)
		return ""
	}
	if len(product.Images) == 0 {
		return ""
	}

	src := product.Images[0].Src
	if variantID != 0 {
		for _, v := range product.Variants {
			if v.ID != variantID || v.ImageID == 0 {
				continue
			}
			for _, img := range product.Images {
				if img.ID == v.ImageID {
					src = img.Src
					break
				}
			}
			break
		}
	}

	if err := c.store.Set(ctx, key, src); err != nil {
		slog.Error("caching product image failed", "key", key, "error", err)
	}
	return src
}

// PopulateProductList attaches product_image_src to each entry of a product
// list, as returned by the get_products tool. Entries without an image are
// left untouched.
func (c *ImageCache) PopulateProductList(ctx context.Context, products map[string]any) {
	for id, entry := range products {
		info, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		productID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		if src := c.ProductImage(ctx, productID, 0); src != "" {
			info["product_image_src"] = src
		}
	}
}

// PopulateProductDetails attaches product_image_src to a product detail
// object and to each of its variants, as returned by get_product_details.
func (c *ImageCache) PopulateProductDetails(ctx context.Context, product map[string]any) {
	productID, ok := asInt64(product["product_id"])
	if !ok {
		return
	}
	product["product_image_src"] = orNil(c.ProductImage(ctx, productID, 0))
	variants, _ := product["product_variants"].([]any)
	for _, entry := range variants {
		variant, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		variantID, ok := asInt64(variant["variant_id"])
		if !ok {
			continue
		}
		variant["product_image_src"] = orNil(c.ProductImage(ctx, productID, variantID))
	}
}

// PopulateCartSummary attaches product_image_src to each line item of a
// cart summary, as returned by the cart tools.
func (c *ImageCache) PopulateCartSummary(ctx context.Context, summary map[string]any) {
	cart, ok := summary["cart_summary"].(map[string]any)
	if !ok {
		return
	}
	items, _ := cart["line_items"].([]any)
	for _, entry := range items {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		productID, ok := asInt64(item["product_id"])
		if !ok {
			continue
		}
		item["product_image_src"] = orNil(c.ProductImage(ctx, productID, 0))
	}
}

func orNil(src string) any {
	if src == "" {
		return nil
	}
	return src
}

// asInt64 coerces the numeric shapes a decoded JSON value can take.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		parsed, err := n.Int64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
