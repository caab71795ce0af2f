package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/chsn-merch/internal/catalog"
	"github.com/loganlanou/chsn-merch/internal/checkout"
	"github.com/loganlanou/chsn-merch/internal/promo"
	stripeutil "github.com/loganlanou/chsn-merch/internal/stripe"
	"github.com/oklog/ulid/v2"
	"github.com/stripe/stripe-go/v80"
)

const (
	msgMethodNotAllowed  = "Method Not Allowed"
	msgCheckoutDisabled  = "Checkout is temporarily disabled."
	msgMissingSecretKey  = "Missing STRIPE_SECRET_KEY in server environment."
	msgCartEmpty         = "Cart is empty."
	msgNoDomain          = "Unable to determine site domain. Set DOMAIN."
	msgSessionFailed     = "Failed to create Checkout Session."
	maxCheckoutBodyBytes = 64 << 10
)

// Payments creates hosted checkout sessions.
type Payments interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type Service struct {
	config    *Config
	catalog   *catalog.Catalog
	payments  Payments
	freePromo *promo.Once
}

func New(config *Config) *Service {
	products := catalog.Default().WithPriceIDs(config.Stripe.PriceIDs)

	svc := &Service{
		config:  config,
		catalog: products,
	}

	if config.Stripe.SecretKey == "" {
		slog.Warn("STRIPE_SECRET_KEY not set, checkout will fail until it is configured")
		return svc
	}

	stripeService := stripeutil.NewStripeService(config.Stripe.SecretKey, nil)
	svc.payments = stripeService
	svc.freePromo = promo.NewOnce(stripeService, config.Checkout.AutoFreePromoCode)

	slog.Info("checkout configured",
		"enabled", config.Checkout.Enabled,
		"sandbox", stripeutil.IsTestKey(config.Stripe.SecretKey),
		"price_ids", len(config.Stripe.PriceIDs),
		"auto_promo", svc.freePromo.Enabled(),
	)
	return svc
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.handleHealth)

	// API
	e.GET("/api/catalog", s.handleCatalog)
	// Any, so a wrong method gets the JSON 405 instead of the router's.
	e.Any("/api/create-checkout-session", s.handleCreateCheckoutSession)

	if s.config.PublicDir != "" {
		e.Static("/", s.config.PublicDir)
	}
}

func (s *Service) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":          "healthy",
		"environment":     s.config.Environment,
		"checkoutEnabled": s.config.Checkout.Enabled,
	})
}

type catalogProduct struct {
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	UnitAmount  int64    `json:"unitAmount"`
	Price       string   `json:"price"`
	ImagePaths  []string `json:"imagePaths"`
	Purchasable bool     `json:"purchasable"`
}

type catalogResponse struct {
	Sizes    []string         `json:"sizes"`
	Products []catalogProduct `json:"products"`
}

func (s *Service) handleCatalog(c echo.Context) error {
	resp := catalogResponse{Sizes: catalog.Sizes}
	for _, p := range s.catalog.Products() {
		if !p.Purchasable {
			continue
		}
		resp.Products = append(resp.Products, catalogProduct{
			SKU:         p.SKU,
			Name:        p.Name,
			UnitAmount:  p.UnitAmount,
			Price:       catalog.FormatMinorUnits(p.UnitAmount),
			ImagePaths:  p.ImagePaths,
			Purchasable: true,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// handleCreateCheckoutSession turns a client cart into a hosted Checkout
// Session and returns its URL. Prices always come from the server catalog.
func (s *Service) handleCreateCheckoutSession(c echo.Context) error {
	req := c.Request()
	ctx := req.Context()

	if req.Method != http.MethodPost {
		return clientError(http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}
	if !s.config.Checkout.Enabled {
		return disabledError(msgCheckoutDisabled)
	}
	if s.config.Stripe.SecretKey == "" || s.payments == nil {
		return configError(msgMissingSecretKey, nil)
	}

	payload, err := readPayload(req.Body)
	if err != nil {
		return fmt.Errorf("failed to decode checkout request: %w", err)
	}

	items := catalog.NormalizeItems(payload["items"], s.catalog)
	if len(items) == 0 {
		return clientError(http.StatusBadRequest, msgCartEmpty)
	}

	baseURL, err := checkout.ResolveBaseURL(s.config.Domain, req)
	if err != nil {
		return configError(msgNoDomain, err)
	}

	// Best effort: checkout proceeds whether or not the code exists.
	s.freePromo.Ensure(ctx)

	ref := ulid.Make().String()
	params, err := checkout.BuildSessionParams(items, s.catalog, baseURL, ref)
	if err != nil {
		return upstreamError(msgSessionFailed, err)
	}
	params.IdempotencyKey = stripe.String(uuid.NewString())

	session, err := s.payments.CreateCheckoutSession(ctx, params)
	if err != nil {
		return upstreamError(msgSessionFailed, err)
	}
	if session == nil || session.URL == "" {
		return upstreamError(msgSessionFailed, nil)
	}

	slog.Info("checkout session created",
		"session_id", session.ID,
		"checkout_ref", ref,
		"items", len(items),
	)
	return c.JSON(http.StatusOK, checkoutResponse{URL: session.URL})
}

// readPayload decodes the request body. An empty body is an empty object and
// a non-object body carries no items.
func readPayload(body io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxCheckoutBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	obj, _ := decoded.(map[string]any)
	return obj, nil
}
