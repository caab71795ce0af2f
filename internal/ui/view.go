package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/loganlanou/chsn-merch/internal/cart"
	"github.com/loganlanou/chsn-merch/internal/catalog"
	"github.com/loganlanou/chsn-merch/internal/shopclient"
	"github.com/skip2/go-qrcode"
)

// CartState is the cart the view renders and mutates.
type CartState interface {
	Cart() cart.Cart
	Products() *catalog.Catalog
	Update(ctx context.Context, mutate func(cart.Cart)) error
}

// Checkouter creates a hosted checkout session for the given items.
type Checkouter interface {
	CreateCheckoutSession(ctx context.Context, items []catalog.Item) (string, error)
}

// View renders the storefront to a terminal.
type View struct {
	out      io.Writer
	state    CartState
	checkout Checkouter
	button   *Button
}

func NewView(out io.Writer, state CartState, checkout Checkouter) *View {
	return &View{
		out:      out,
		state:    state,
		checkout: checkout,
		button:   NewButton("Checkout"),
	}
}

// CheckoutButton exposes the button guarding Checkout.
func (v *View) CheckoutButton() *Button {
	return v.button
}

// RenderCatalog lists every product with its price and sizes.
func (v *View) RenderCatalog() {
	w := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tNAME\tPRICE\t")
	for _, p := range v.state.Products().Products() {
		name := p.Name
		if !p.Purchasable {
			name += " (unavailable)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", p.SKU, name, catalog.FormatMinorUnits(p.UnitAmount))
	}
	w.Flush()
	fmt.Fprintf(v.out, "Sizes: %s\n", strings.Join(catalog.Sizes, ", "))
}

// RenderCart prints the cart lines, the unit count and the total.
func (v *View) RenderCart() {
	c := v.state.Cart()
	products := v.state.Products()

	lines := c.Lines(products)
	if len(lines) == 0 {
		fmt.Fprintln(v.out, "Your cart is empty.")
		fmt.Fprintf(v.out, "Total: %s\n", catalog.FormatMinorUnits(0))
		return
	}

	w := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tQTY\tPRICE\tKEY\t")
	for _, line := range lines {
		fmt.Fprintf(w, "%s / %s\t%d\t%s\t%s\t\n",
			line.Product.Name, line.Size, line.Quantity,
			catalog.FormatMinorUnits(line.Product.UnitAmount), line.Key)
	}
	w.Flush()

	fmt.Fprintf(v.out, "Items: %d\n", c.Count())
	fmt.Fprintf(v.out, "Total: %s\n", catalog.FormatMinorUnits(c.Total(products)))
}

// RenderPromo prints the promotional panel unless it was dismissed.
func (v *View) RenderPromo(dismissed bool, message string) {
	if dismissed || message == "" {
		return
	}
	fmt.Fprintf(v.out, "* %s (dismiss with: merchctl promo dismiss)\n", message)
}

// Checkout sends the cart to the server and hands the buyer off to the
// hosted checkout page. The checkout button stays disabled until it returns.
func (v *View) Checkout(ctx context.Context) (string, error) {
	items := v.state.Cart().Items()
	if len(items) == 0 {
		fmt.Fprintln(v.out, Message(shopclient.ErrCartEmpty))
		return "", shopclient.ErrCartEmpty
	}

	release, ok := v.button.Acquire("Loading…")
	if !ok {
		return "", errors.New("checkout already in progress")
	}
	defer release()

	url, err := v.checkout.CreateCheckoutSession(ctx, items)
	if err != nil {
		slog.Error("checkout failed", "error", err)
		v.notify(err)
		return "", err
	}

	v.Redirect(url)
	return url, nil
}

// Redirect prints the hosted page URL with a QR code so it can be opened on
// another device.
func (v *View) Redirect(url string) {
	fmt.Fprintf(v.out, "Continue to checkout: %s\n", url)

	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		slog.Debug("failed to render checkout qr code", "error", err)
		return
	}
	fmt.Fprint(v.out, qr.ToSmallString(false))
}

func (v *View) notify(err error) {
	fmt.Fprintf(v.out, "! %s\n", Message(err))
}

// Message turns a checkout error into the text shown to the buyer.
func Message(err error) string {
	var reqErr *shopclient.RequestError
	switch {
	case errors.Is(err, shopclient.ErrCartEmpty):
		return "Your cart is empty."
	case errors.Is(err, shopclient.ErrMissingURL):
		return "Missing Checkout URL."
	case errors.As(err, &reqErr):
		if reqErr.Message != "" {
			return reqErr.Message
		}
		return fmt.Sprintf("Request failed (%d)", reqErr.Status)
	default:
		return "Checkout failed. Make sure the checkout server is running and STRIPE_SECRET_KEY is set."
	}
}
