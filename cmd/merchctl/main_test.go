package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeServer(t *testing.T, checkouts *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/catalog", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sizes":["S","M","L","XL","2XL","3XL"],"products":[
			{"sku":"MERCH-01","name":"CHSN-T1","unitAmount":4000,"price":"$40","imagePaths":["assets/a.jpg"],"purchasable":true},
			{"sku":"MERCH-02","name":"CHSN-H1","unitAmount":8500,"price":"$85","imagePaths":["assets/b.jpg"],"purchasable":true}
		]}`))
	})
	mux.HandleFunc("POST /api/create-checkout-session", func(w http.ResponseWriter, r *http.Request) {
		checkouts.Add(1)
		var body struct {
			Items []map[string]any `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Items) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Cart is empty."}`))
			return
		}
		_, _ = w.Write([]byte(`{"url":"https://checkout.stripe.com/c/pay/cs_test_cli"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_CartLifecycle(t *testing.T) {
	var checkouts atomic.Int32
	srv := newFakeServer(t, &checkouts)
	dbPath := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	exec := func(args ...string) (string, error) {
		var stdout, stderr bytes.Buffer
		err := run(ctx, append([]string{"--server", srv.URL, "--db", dbPath}, args...), &stdout, &stderr)
		return stdout.String() + stderr.String(), err
	}

	out, err := exec("catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "CHSN-H1")
	assert.Contains(t, out, "FREE100")

	require.NoError(t, mustRun(exec("promo", "dismiss")))
	out, err = exec("catalog")
	require.NoError(t, err)
	assert.NotContains(t, out, "FREE100")

	// empty cart never reaches the server
	_, err = exec("checkout")
	require.Error(t, err)
	assert.Zero(t, checkouts.Load())

	out, err = exec("add", "MERCH-02", "xl", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Items: 2")
	assert.Contains(t, out, "Total: $170")

	_, err = exec("add", "NOPE")
	assert.Error(t, err)
	_, err = exec("add", "MERCH-01", "XS")
	assert.Error(t, err)

	out, err = exec("set", "MERCH-02::XL", "500")
	require.NoError(t, err)
	assert.Contains(t, out, "Items: 99")

	out, err = exec("dec", "MERCH-02::XL")
	require.NoError(t, err)
	assert.Contains(t, out, "Items: 98")

	out, err = exec("checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "Continue to checkout: https://checkout.stripe.com/c/pay/cs_test_cli")
	assert.Equal(t, int32(1), checkouts.Load())

	out, err = exec("clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")
}

func TestRun_OfflineUsesCachedCatalog(t *testing.T) {
	var checkouts atomic.Int32
	srv := newFakeServer(t, &checkouts)
	dbPath := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, []string{"--server", srv.URL, "--db", dbPath, "add", "MERCH-01"}, &out, &out))
	srv.Close()

	out.Reset()
	require.NoError(t, run(ctx, []string{"--server", srv.URL, "--db", dbPath, "show"}, &out, &out))
	assert.Contains(t, out.String(), "CHSN-T1 / M")
	assert.Contains(t, out.String(), "Total: $40")
}

func TestRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"--db", filepath.Join(t.TempDir(), "s.db"), "--server", "http://127.0.0.1:1", "bogus"}, &out, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), `unknown command "bogus"`)
}

func TestNavFor(t *testing.T) {
	assert.Equal(t, "shop", navFor("catalog"))
	assert.Equal(t, "cart", navFor("add"))
	assert.Equal(t, "checkout", navFor("checkout"))
	assert.Empty(t, navFor("promo"))
}

func mustRun(_ string, err error) error {
	return err
}
