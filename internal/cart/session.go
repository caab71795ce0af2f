package cart

import (
	"context"
	"encoding/json"
	"maps"

	"github.com/loganlanou/chsn-merch/internal/catalog"
)

// Session is the live cart of one client: every change is sanitized against
// the catalog and written back to the store.
type Session struct {
	store    *Store
	products *catalog.Catalog
	cart     Cart
}

// Open loads the persisted cart. When a catalog is available the sanitized
// result is written back immediately so stale entries heal on first use.
func Open(ctx context.Context, store *Store, products *catalog.Catalog) (*Session, error) {
	s := &Session{
		store:    store,
		products: products,
		cart:     store.Load(ctx, products),
	}
	if products != nil {
		if err := store.Save(ctx, s.cart); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Cart returns a copy of the current cart.
func (s *Session) Cart() Cart {
	return maps.Clone(s.cart)
}

func (s *Session) Products() *catalog.Catalog {
	return s.products
}

// Update applies mutate to a copy of the cart, sanitizes the result and
// persists it. Without a catalog unknown SKUs are kept but keys and
// quantities are still normalized.
func (s *Session) Update(ctx context.Context, mutate func(Cart)) error {
	next := s.Cart()
	if next == nil {
		next = Cart{}
	}
	mutate(next)

	next = sanitize(toRaw(next), s.products)
	if err := s.store.Save(ctx, next); err != nil {
		return err
	}
	s.cart = next
	return nil
}

func toRaw(c Cart) map[string]any {
	raw := make(map[string]any, len(c))
	for key, qty := range c {
		raw[key] = float64(qty)
	}
	return raw
}

// CatalogCacheKey holds the last catalog fetched from the server.
const CatalogCacheKey = "bw_catalog_v1"

// SaveCatalog caches products for offline use.
func (s *Store) SaveCatalog(ctx context.Context, products *catalog.Catalog) error {
	encoded, err := json.Marshal(products.Products())
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, CatalogCacheKey, string(encoded))
}

// CachedCatalog returns the cached catalog, or nil when there is none.
func (s *Store) CachedCatalog(ctx context.Context) *catalog.Catalog {
	value, ok, err := s.kv.Get(ctx, CatalogCacheKey)
	if err != nil || !ok {
		return nil
	}
	var products []catalog.Product
	if err := json.Unmarshal([]byte(value), &products); err != nil || len(products) == 0 {
		return nil
	}
	return catalog.New(products...)
}
