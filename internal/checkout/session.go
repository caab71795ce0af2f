package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/loganlanou/chsn-merch/internal/catalog"
	"github.com/stripe/stripe-go/v80"
)

const (
	SuccessPath = "/success.html"
	CancelPath  = "/cancel.html"
)

// ErrNoDomain is returned when no absolute site URL can be determined.
var ErrNoDomain = errors.New("unable to determine site domain")

// ResolveBaseURL returns the externally visible origin of the site. An
// explicit override wins; otherwise it is inferred from the forwarded
// protocol (default https) and the Host header.
func ResolveBaseURL(override string, r *http.Request) (string, error) {
	candidate := strings.TrimSpace(override)
	if candidate == "" && r != nil {
		proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))
		if i := strings.IndexByte(proto, ','); i >= 0 {
			proto = strings.TrimSpace(proto[:i])
		}
		if proto == "" {
			proto = "https"
		}

		host := strings.TrimSpace(r.Host)
		if host == "" {
			host = strings.TrimSpace(r.Header.Get("Host"))
		}
		if host != "" {
			candidate = proto + "://" + host
		}
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrNoDomain
	}
	return strings.TrimRight(candidate, "/"), nil
}

// AbsoluteAssetURL resolves a site-relative asset path against baseURL. It
// returns "" when the path is empty or the URL cannot be built.
func AbsoluteAssetURL(baseURL, assetPath string) string {
	cleaned := strings.TrimLeft(assetPath, "/")
	if cleaned == "" {
		return ""
	}

	base := baseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" || b.Host == "" {
		return ""
	}
	ref, err := url.Parse(cleaned)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}

// BuildLineItems maps normalized cart items to Stripe line items. Products
// with a registered Stripe price are referenced by ID; the rest get inline
// price data.
func BuildLineItems(items []catalog.Item, c *catalog.Catalog, baseURL string) ([]*stripe.CheckoutSessionLineItemParams, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))

	for _, item := range items {
		product, ok := c.Lookup(item.SKU)
		if !ok {
			return nil, fmt.Errorf("unknown sku %s", item.SKU)
		}

		if product.PriceID != "" {
			lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
				Price:    stripe.String(product.PriceID),
				Quantity: stripe.Int64(int64(item.Quantity)),
			})
			continue
		}

		lineItem := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(catalog.CurrencyCode()),
				UnitAmount: stripe.Int64(product.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(product.Name),
					Description: stripe.String("Size: " + item.Size),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		}

		var images []*string
		for _, path := range product.ImagePaths {
			if u := AbsoluteAssetURL(baseURL, path); u != "" {
				images = append(images, stripe.String(u))
			}
		}
		if len(images) > 0 {
			lineItem.PriceData.ProductData.Images = images
		}

		lineItems = append(lineItems, lineItem)
	}

	return lineItems, nil
}

// BuildSessionParams assembles a one-time payment Checkout Session request.
// The normalized items are kept in metadata for reconciliation.
func BuildSessionParams(items []catalog.Item, c *catalog.Catalog, baseURL, ref string) (*stripe.CheckoutSessionParams, error) {
	lineItems, err := BuildLineItems(items, c, baseURL)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items metadata: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:                stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:           lineItems,
		AllowPromotionCodes: stripe.Bool(true),
		SuccessURL:          stripe.String(baseURL + SuccessPath),
		CancelURL:           stripe.String(baseURL + CancelPath),
	}
	params.Metadata = map[string]string{
		"items": string(encoded),
	}
	if ref != "" {
		params.Metadata["checkout_ref"] = ref
	}

	return params, nil
}
