package catalog

import (
	"sort"
	"strings"
)

// Sizes lists the apparel sizes a cart line may carry, in display order.
var Sizes = []string{"S", "M", "L", "XL", "2XL", "3XL"}

// DefaultSize is assigned to legacy cart keys that predate size selection.
const DefaultSize = "M"

type Product struct {
	SKU        string   `json:"sku"`
	Name       string   `json:"name"`
	UnitAmount int64    `json:"unitAmount"`
	ImagePaths []string `json:"imagePaths"`

	// PriceID references a price registered with Stripe. When set, checkout
	// reuses it instead of sending inline price data.
	PriceID string `json:"-"`

	// Purchasable is false for products that are listed but cannot be bought.
	Purchasable bool `json:"purchasable"`
}

// Catalog is an immutable SKU -> Product lookup.
type Catalog struct {
	products map[string]Product
}

func New(products ...Product) *Catalog {
	c := &Catalog{products: make(map[string]Product, len(products))}
	for _, p := range products {
		p.SKU = strings.TrimSpace(p.SKU)
		if p.SKU == "" {
			continue
		}
		p.ImagePaths = append([]string(nil), p.ImagePaths...)
		c.products[p.SKU] = p
	}
	return c
}

// Default returns the store's product lineup. Prices are in cents.
func Default() *Catalog {
	return New(
		Product{SKU: "MERCH-01", Name: "CHSN-T1", UnitAmount: 4000, ImagePaths: []string{"assets/chsn-t1.jpg", "assets/chsn-t1-2.png"}, Purchasable: true},
		Product{SKU: "MERCH-02", Name: "CHSN-H1", UnitAmount: 8500, ImagePaths: []string{"assets/chsn-h1.jpg", "assets/chsn-h1-2.png"}, Purchasable: true},
		Product{SKU: "MERCH-03", Name: "CHSN-T2", UnitAmount: 4500, ImagePaths: []string{"assets/chsn-t2.png"}, Purchasable: true},
	)
}

// Lookup returns the product for sku, if known.
func (c *Catalog) Lookup(sku string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	p, ok := c.products[sku]
	return p, ok
}

// Purchasable reports whether sku exists and may be added to a cart.
func (c *Catalog) Purchasable(sku string) bool {
	p, ok := c.Lookup(sku)
	return ok && p.Purchasable
}

// Products returns every product sorted by SKU.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// WithPriceIDs returns a copy of the catalog with Stripe price IDs attached.
// Unknown SKUs and empty IDs are ignored.
func (c *Catalog) WithPriceIDs(ids map[string]string) *Catalog {
	products := c.Products()
	for i, p := range products {
		if id := strings.TrimSpace(ids[p.SKU]); id != "" {
			products[i].PriceID = id
		}
	}
	return New(products...)
}

// ValidSize reports whether size (already upper-cased) is an allowed size.
func ValidSize(size string) bool {
	for _, s := range Sizes {
		if s == size {
			return true
		}
	}
	return false
}
