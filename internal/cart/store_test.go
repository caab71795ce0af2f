package cart

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/loganlanou/chsn-merch/internal/catalog"
	"github.com/loganlanou/chsn-merch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *storage.Storage) {
	t.Helper()

	db, cleanup, err := storage.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return NewStore(db), db
}

func TestStore_LoadMissingAndCorrupt(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	assert.Empty(t, store.Load(ctx, catalog.Default()))

	for _, corrupt := range []string{"{not json", "[1,2]", "null", "42", `"text"`} {
		require.NoError(t, db.Set(ctx, CartKey, corrupt))
		assert.Empty(t, store.Load(ctx, catalog.Default()), "value %q", corrupt)
	}
}

func TestStore_LoadSanitizesLegacyKeys(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, CartKey, `{"MERCH-01":2,"MERCH-01::M":1,"GONE::L":3,"MERCH-02::xl":1.5}`))

	got := store.Load(ctx, catalog.Default())
	want := Cart{"MERCH-01::M": 3, "MERCH-02::XL": 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_LoadWithoutCatalogKeepsLines(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, CartKey, `{"MERCH-01::M":2,"NEW-SKU::S":1,"bad":"x","frac::M":1.5,"big::xl":400,"odd::XS":1,"LEGACY":2}`))

	got := store.Load(ctx, nil)
	want := Cart{"MERCH-01::M": 2, "NEW-SKU::S": 1, "frac::M": 1, "big::XL": 99, "LEGACY::M": 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SaveRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	c := Cart{}
	c.Add("MERCH-03", "L", 2)
	require.NoError(t, store.Save(ctx, c))

	assert.Equal(t, Cart{"MERCH-03::L": 2}, store.Load(ctx, catalog.Default()))

	require.NoError(t, store.Save(ctx, nil))
	assert.Empty(t, store.Load(ctx, catalog.Default()))
}

func TestStore_Preferences(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	assert.False(t, store.PromoDismissed(ctx))
	assert.Equal(t, "shop", store.Nav(ctx, "shop"))

	require.NoError(t, store.SetPromoDismissed(ctx, true))
	require.NoError(t, store.SetNav(ctx, "cart"))
	assert.True(t, store.PromoDismissed(ctx))
	assert.Equal(t, "cart", store.Nav(ctx, "shop"))

	require.NoError(t, db.Set(ctx, PromoDismissedKey, "garbage"))
	assert.False(t, store.PromoDismissed(ctx))
}
