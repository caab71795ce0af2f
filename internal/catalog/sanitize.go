package catalog

import (
	"math"
	"strings"
)

// Sanitize rebuilds a persisted cart mapping against the catalog.
//
// Entries are dropped when the SKU is unknown or not purchasable, or when the
// quantity is not a finite number >= 1. Fractional quantities are floored.
// Legacy keys that carry only a SKU are moved to DefaultSize. Keys that
// resolve to the same line are summed, and every resulting quantity is
// clamped to [MinQuantity, MaxQuantity].
func Sanitize(raw map[string]any, c *Catalog) map[string]int {
	return sanitize(raw, c.Purchasable)
}

// SanitizeShape applies the Sanitize rules that do not need a catalog: keys
// must parse (legacy keys move to DefaultSize) and quantities are floored and
// clamped. Every SKU is accepted.
func SanitizeShape(raw map[string]any) map[string]int {
	return sanitize(raw, func(string) bool { return true })
}

func sanitize(raw map[string]any, known func(sku string) bool) map[string]int {
	sums := make(map[string]float64, len(raw))

	for rawKey, rawQty := range raw {
		qty, ok := toNumber(rawQty)
		if !ok || math.IsNaN(qty) || math.IsInf(qty, 0) || qty < 1 {
			continue
		}
		qty = math.Floor(qty)

		if sku, size, ok := ParseKey(rawKey); ok {
			if !known(sku) {
				continue
			}
			sums[MakeKey(sku, size)] += qty
			continue
		}

		legacySKU := strings.TrimSpace(rawKey)
		if legacySKU == "" || strings.Contains(legacySKU, KeySeparator) || !known(legacySKU) {
			continue
		}
		sums[MakeKey(legacySKU, DefaultSize)] += qty
	}

	out := make(map[string]int, len(sums))
	for key, qty := range sums {
		out[key] = ClampQuantity(qty)
	}
	return out
}

// NormalizeItems validates items received from an untrusted client. raw is
// the decoded JSON value of the request's "items" field. Items with an
// unknown SKU or an invalid size are skipped; quantities are clamped.
func NormalizeItems(raw any, c *Catalog) []Item {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	items := make([]Item, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		sku := strings.TrimSpace(stringField(obj["sku"]))
		size := strings.ToUpper(strings.TrimSpace(stringField(obj["size"])))
		quantity := ClampQuantity(obj["quantity"])

		if !c.Purchasable(sku) || !ValidSize(size) {
			continue
		}

		items = append(items, Item{SKU: sku, Size: size, Quantity: quantity})
	}
	return items
}
