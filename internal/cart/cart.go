package cart

import (
	"sort"

	"github.com/loganlanou/chsn-merch/internal/catalog"
)

// Cart maps a cart key ("sku::SIZE") to its quantity.
type Cart map[string]int

// Add puts qty more of sku in size into the cart. qty is clamped to the
// allowed quantity range first, as the product form does.
func (c Cart) Add(sku, size string, qty int) string {
	key := catalog.MakeKey(sku, size)
	c[key] += catalog.ClampQuantity(qty)
	return key
}

// Adjust changes the quantity of key by delta and removes the line once it
// drops to zero or below.
func (c Cart) Adjust(key string, delta int) {
	qty := c[key] + delta
	if qty <= 0 {
		delete(c, key)
		return
	}
	c[key] = qty
}

// Set replaces the quantity of key; qty <= 0 removes the line.
func (c Cart) Set(key string, qty int) {
	if qty <= 0 {
		delete(c, key)
		return
	}
	c[key] = qty
}

func (c Cart) Remove(key string) {
	delete(c, key)
}

func (c Cart) Clear() {
	for key := range c {
		delete(c, key)
	}
}

// Count is the total number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, qty := range c {
		n += qty
	}
	return n
}

// Keys returns the cart keys in sorted order.
func (c Cart) Keys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Line is a cart entry resolved against the catalog.
type Line struct {
	Key      string
	Product  catalog.Product
	Size     string
	Quantity int
}

// Subtotal is the line price in minor units.
func (l Line) Subtotal() int64 {
	return l.Product.UnitAmount * int64(l.Quantity)
}

// Lines resolves every parseable key with a known product, in key order.
func (c Cart) Lines(products *catalog.Catalog) []Line {
	lines := make([]Line, 0, len(c))
	for _, key := range c.Keys() {
		sku, size, ok := catalog.ParseKey(key)
		if !ok {
			continue
		}
		product, ok := products.Lookup(sku)
		if !ok {
			continue
		}
		lines = append(lines, Line{Key: key, Product: product, Size: size, Quantity: c[key]})
	}
	return lines
}

// Total is the cart value in minor units.
func (c Cart) Total(products *catalog.Catalog) int64 {
	var total int64
	for _, line := range c.Lines(products) {
		total += line.Subtotal()
	}
	return total
}

// Items is the checkout request payload for the cart. Keys that do not parse
// are skipped.
func (c Cart) Items() []catalog.Item {
	items := make([]catalog.Item, 0, len(c))
	for _, key := range c.Keys() {
		sku, size, ok := catalog.ParseKey(key)
		if !ok {
			continue
		}
		items = append(items, catalog.Item{SKU: sku, Size: size, Quantity: c[key]})
	}
	return items
}
