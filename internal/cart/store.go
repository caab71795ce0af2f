package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/loganlanou/chsn-merch/internal/catalog"
)

// Persisted state keys.
const (
	CartKey           = "bw_cart_v1"
	PromoDismissedKey = "bw_promo_dismissed_v1"
	NavKey            = "bw_nav_v1"
)

// KV is the local persistent storage the store writes to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Store persists the cart and the small UI preferences. It assumes a single
// writer: Save overwrites whatever is stored.
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// LoadRaw returns the persisted mapping as decoded JSON. Missing or corrupt
// data yields an empty mapping.
func (s *Store) LoadRaw(ctx context.Context) map[string]any {
	value, ok, err := s.kv.Get(ctx, CartKey)
	if err != nil {
		slog.Warn("failed to read cart", "error", err)
		return map[string]any{}
	}
	if !ok || strings.TrimSpace(value) == "" {
		return map[string]any{}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(value), &raw); err != nil || raw == nil {
		slog.Warn("discarding corrupt cart", "error", err)
		return map[string]any{}
	}
	return raw
}

// Load reads the cart and sanitizes it against products. With a nil catalog
// only the key and quantity rules apply, so a cart is never emptied just
// because the catalog is unavailable.
func (s *Store) Load(ctx context.Context, products *catalog.Catalog) Cart {
	return sanitize(s.LoadRaw(ctx), products)
}

func sanitize(raw map[string]any, products *catalog.Catalog) Cart {
	if products == nil {
		return Cart(catalog.SanitizeShape(raw))
	}
	return Cart(catalog.Sanitize(raw, products))
}

// Save overwrites the persisted cart.
func (s *Store) Save(ctx context.Context, c Cart) error {
	if c == nil {
		c = Cart{}
	}
	encoded, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return s.kv.Set(ctx, CartKey, string(encoded))
}

// PromoDismissed reports whether the promotional panel was closed.
func (s *Store) PromoDismissed(ctx context.Context) bool {
	value, ok, err := s.kv.Get(ctx, PromoDismissedKey)
	if err != nil || !ok {
		return false
	}
	dismissed, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && dismissed
}

func (s *Store) SetPromoDismissed(ctx context.Context, dismissed bool) error {
	return s.kv.Set(ctx, PromoDismissedKey, strconv.FormatBool(dismissed))
}

// Nav returns the last active navigation selection, or fallback when none
// was recorded.
func (s *Store) Nav(ctx context.Context, fallback string) string {
	value, ok, err := s.kv.Get(ctx, NavKey)
	if err != nil || !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func (s *Store) SetNav(ctx context.Context, nav string) error {
	return s.kv.Set(ctx, NavKey, nav)
}
