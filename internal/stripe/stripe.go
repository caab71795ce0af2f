package stripe

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
)

// StripeService wraps the Stripe API calls the checkout flow needs. Each
// service carries its own key so tests can point it at a fake backend.
type StripeService struct {
	api *client.API
}

// NewStripeService builds a service for secretKey. A nil backends uses the
// live Stripe endpoints.
func NewStripeService(secretKey string, backends *stripe.Backends) *StripeService {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeService{api: api}
}

func (s *StripeService) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx
	return s.api.CheckoutSessions.New(params)
}

// IsTestKey reports whether key belongs to a Stripe sandbox account.
func IsTestKey(key string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), "sk_test_")
}

// ErrorDetails extracts Stripe's error classification, if err came from the
// Stripe API.
func ErrorDetails(err error) (errType, code string, ok bool) {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return "", "", false
	}
	return string(stripeErr.Type), string(stripeErr.Code), true
}
