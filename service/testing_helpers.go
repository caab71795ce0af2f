package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/chsn-merch/internal/catalog"
	"github.com/loganlanou/chsn-merch/internal/promo"
	"github.com/stripe/stripe-go/v80"
)

// fakePayments records every session request and answers with url or err.
type fakePayments struct {
	mu     sync.Mutex
	params []*stripe.CheckoutSessionParams
	url    string
	err    error
}

func (f *fakePayments) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_123", URL: f.url}, nil
}

func (f *fakePayments) calls() []*stripe.CheckoutSessionParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*stripe.CheckoutSessionParams(nil), f.params...)
}

// fakeEnsurer counts promotion code provisioning calls.
type fakeEnsurer struct {
	count atomic.Int32
}

func (f *fakeEnsurer) EnsureFreePromotionCode(_ context.Context, code string) (*stripe.PromotionCode, error) {
	f.count.Add(1)
	return &stripe.PromotionCode{ID: "promo_test", Code: code, Active: true}, nil
}

// setupTestService creates a service with sandbox config and fake Stripe
// collaborators.
func setupTestService(t *testing.T) (*Service, *fakePayments, *fakeEnsurer) {
	t.Helper()

	config := &Config{
		Environment: "test",
		Port:        "4242",
	}
	config.Stripe.SecretKey = "sk_test_123"
	config.Stripe.PriceIDs = map[string]string{}
	config.Checkout.Enabled = true
	config.Checkout.AutoFreePromoCode = DefaultSandboxPromoCode

	payments := &fakePayments{url: "https://checkout.stripe.com/c/pay/cs_test_123"}
	ensurer := &fakeEnsurer{}

	svc := &Service{
		config:    config,
		catalog:   catalog.Default(),
		payments:  payments,
		freePromo: promo.NewOnce(ensurer, config.Checkout.AutoFreePromoCode),
	}
	return svc, payments, ensurer
}

// setupTestEcho creates an Echo instance with routes and the JSON error
// handler registered.
func setupTestEcho(t *testing.T, svc *Service) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	svc.RegisterRoutes(e)
	return e
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
