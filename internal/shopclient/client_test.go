package shopclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/loganlanou/chsn-merch/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return New(srv.URL+"/", srv.Client()), &hits
}

func TestCreateCheckoutSession_EmptyCartMakesNoRequest(t *testing.T) {
	client, hits := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.CreateCheckoutSession(context.Background(), nil)
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Zero(t, hits.Load())
}

func TestCreateCheckoutSession_Success(t *testing.T) {
	var got struct {
		Items []catalog.Item `json:"items"`
	}
	client, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, CheckoutPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	items := []catalog.Item{{SKU: "MERCH-03", Size: "L", Quantity: 2}}
	url, err := client.CreateCheckoutSession(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", url)
	assert.Equal(t, items, got.Items)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCreateCheckoutSession_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		wantErr error
	}{
		{"server message", http.StatusBadRequest, `{"error":"Cart is empty."}`, "Cart is empty.", nil},
		{"no message", http.StatusBadGateway, `<html>bad gateway</html>`, "request failed with status 502", nil},
		{"success without url", http.StatusOK, `{}`, "missing checkout url", ErrMissingURL},
		{"success with garbage", http.StatusOK, `not json`, "missing checkout url", ErrMissingURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, hits := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.CreateCheckoutSession(context.Background(), []catalog.Item{{SKU: "MERCH-01", Size: "M", Quantity: 1}})
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, int32(1), hits.Load(), "no retries")
		})
	}
}

func TestCreateCheckoutSession_RequestErrorStatus(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Checkout is temporarily disabled."}`))
	})

	_, err := client.CreateCheckoutSession(context.Background(), []catalog.Item{{SKU: "MERCH-01", Size: "M", Quantity: 1}})

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusServiceUnavailable, reqErr.Status)
}

func TestCatalog(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, CatalogPath, r.URL.Path)
		_, _ = w.Write([]byte(`{"sizes":["S","M"],"products":[
			{"sku":"MERCH-01","name":"CHSN-T1","unitAmount":4000,"price":"$40","imagePaths":["assets/a.jpg"],"purchasable":true}
		]}`))
	})

	c, err := client.Catalog(context.Background())
	require.NoError(t, err)

	p, ok := c.Lookup("MERCH-01")
	require.True(t, ok)
	assert.Equal(t, int64(4000), p.UnitAmount)
	assert.True(t, c.Purchasable("MERCH-01"))
}

func TestCatalog_ErrorStatus(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Catalog(context.Background())
	assert.Error(t, err)
}
