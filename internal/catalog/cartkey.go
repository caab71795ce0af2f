package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// KeySeparator joins SKU and size in a cart key, e.g. "MERCH-01::L".
const KeySeparator = "::"

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Item is one cart line on the wire.
type Item struct {
	SKU      string `json:"sku"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

func MakeKey(sku, size string) string {
	return sku + KeySeparator + size
}

// ParseKey splits a cart key into SKU and size. The size is upper-cased and
// must be one of Sizes.
func ParseKey(key string) (sku, size string, ok bool) {
	parts := strings.Split(key, KeySeparator)
	if len(parts) != 2 {
		return "", "", false
	}

	sku = strings.TrimSpace(parts[0])
	size = strings.ToUpper(strings.TrimSpace(parts[1]))
	if sku == "" || !ValidSize(size) {
		return "", "", false
	}
	return sku, size, true
}

// ClampInt floors v and clamps it into [min, max]. Values that are not finite
// numbers (including text that does not parse) yield min.
func ClampInt(v any, min, max int) int {
	f, ok := toNumber(v)
	if !ok {
		return min
	}
	f = math.Floor(f)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return min
	}
	if f < float64(min) {
		return min
	}
	if f > float64(max) {
		return max
	}
	return int(f)
}

// ClampQuantity applies the cart quantity bounds.
func ClampQuantity(v any) int {
	return ClampInt(v, MinQuantity, MaxQuantity)
}

// toNumber converts a decoded JSON value to a float the way a loosely typed
// client would: numeric strings parse, blank strings and null are zero,
// booleans are 0/1. Anything else is not a number.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// stringField renders a loosely typed JSON scalar as text. Missing values and
// non-scalars become "".
func stringField(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == 0 {
			return ""
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		if s {
			return "true"
		}
		return ""
	default:
		return ""
	}
}
