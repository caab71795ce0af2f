// Command merchctl is a terminal storefront: it keeps a cart in a local
// SQLite file and hands checkout off to the storefront server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/loganlanou/chsn-merch/internal/cart"
	"github.com/loganlanou/chsn-merch/internal/catalog"
	"github.com/loganlanou/chsn-merch/internal/logging"
	"github.com/loganlanou/chsn-merch/internal/shopclient"
	"github.com/loganlanou/chsn-merch/internal/ui"
	"github.com/loganlanou/chsn-merch/storage"
	"github.com/spf13/pflag"
)

const promoMessage = "Use code FREE100 at checkout while the shop is in preview."

const usage = `usage: merchctl [flags] <command> [args]

commands:
  catalog                    list products
  show                       show the cart
  add <sku> [size] [qty]     add to the cart (size defaults to M)
  inc <key> | dec <key>      change a line by one
  set <key> <qty>            set a line quantity
  remove <key>               remove a line
  clear                      empty the cart
  checkout                   start a hosted checkout
  promo dismiss              hide the promo banner

flags:
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := pflag.NewFlagSet("merchctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	serverURL := flags.StringP("server", "s", envOr("MERCH_SERVER_URL", "http://localhost:4242"), "storefront server base URL")
	dbPath := flags.String("db", envOr("MERCH_STATE_DB", defaultDBPath()), "local state database")
	timeout := flags.Duration("timeout", 15*time.Second, "request timeout")
	verbose := flags.BoolP("verbose", "v", false, "debug logging")

	if err := flags.Parse(args); err != nil {
		return err
	}
	setupLogging(stderr, *verbose)

	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("missing command")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	db, err := storage.New(*dbPath)
	if err != nil {
		slog.Error("failed to open local state", "error", err, "path", *dbPath)
		return err
	}
	defer db.Close()

	client := shopclient.New(*serverURL, &http.Client{Timeout: *timeout})
	store := cart.NewStore(db)

	session, err := cart.Open(ctx, store, loadCatalog(ctx, client, store))
	if err != nil {
		slog.Error("failed to open cart", "error", err)
		return err
	}

	view := ui.NewView(stdout, session, client)
	cmd := &command{store: store, session: session, view: view, out: stdout}

	if err := cmd.dispatch(ctx, flags.Arg(0), flags.Args()[1:]); err != nil {
		if !errors.Is(err, shopclient.ErrCartEmpty) && !errors.Is(err, errCheckoutFailed) {
			fmt.Fprintf(stderr, "merchctl: %v\n", err)
		}
		return err
	}
	return nil
}

// loadCatalog prefers the server's catalog and falls back to the last cached
// copy. With neither the cart is loaded without sanitizing.
func loadCatalog(ctx context.Context, client *shopclient.Client, store *cart.Store) *catalog.Catalog {
	products, err := client.Catalog(ctx)
	if err == nil && len(products.Products()) > 0 {
		if err := store.SaveCatalog(ctx, products); err != nil {
			slog.Warn("failed to cache catalog", "error", err)
		}
		return products
	}
	slog.Debug("catalog unavailable, using cache", "error", err)
	return store.CachedCatalog(ctx)
}

var errCheckoutFailed = errors.New("checkout failed")

type command struct {
	store   *cart.Store
	session *cart.Session
	view    *ui.View
	out     io.Writer
}

func (c *command) dispatch(ctx context.Context, name string, args []string) error {
	if nav := navFor(name); nav != "" {
		if err := c.store.SetNav(ctx, nav); err != nil {
			slog.Warn("failed to record navigation", "error", err)
		}
	}

	switch name {
	case "catalog":
		if c.session.Products() == nil {
			return errors.New("catalog unavailable: is the server running?")
		}
		c.view.RenderPromo(c.store.PromoDismissed(ctx), promoMessage)
		c.view.RenderCatalog()
		return nil

	case "show", "cart":
		c.view.RenderCart()
		return nil

	case "add":
		if len(args) < 1 {
			return errors.New("add needs a sku")
		}
		if c.session.Products() == nil {
			return errors.New("catalog unavailable: is the server running?")
		}
		sku := args[0]
		size := catalog.DefaultSize
		if len(args) > 1 {
			size = strings.ToUpper(args[1])
		}
		qty := 1
		if len(args) > 2 {
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
			qty = n
		}
		if !c.session.Products().Purchasable(sku) {
			return fmt.Errorf("unknown product %q", sku)
		}
		if !catalog.ValidSize(size) {
			return fmt.Errorf("invalid size %q (choose from %s)", size, strings.Join(catalog.Sizes, ", "))
		}
		return c.update(ctx, func(ct cart.Cart) { ct.Add(sku, size, qty) })

	case "inc", "dec":
		if len(args) != 1 {
			return fmt.Errorf("%s needs a cart key", name)
		}
		delta := 1
		if name == "dec" {
			delta = -1
		}
		return c.update(ctx, func(ct cart.Cart) { ct.Adjust(args[0], delta) })

	case "set":
		if len(args) != 2 {
			return errors.New("set needs a cart key and a quantity")
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		return c.update(ctx, func(ct cart.Cart) { ct.Set(args[0], qty) })

	case "remove", "rm":
		if len(args) != 1 {
			return errors.New("remove needs a cart key")
		}
		return c.update(ctx, func(ct cart.Cart) { ct.Remove(args[0]) })

	case "clear":
		return c.update(ctx, func(ct cart.Cart) { ct.Clear() })

	case "checkout":
		if _, err := c.view.Checkout(ctx); err != nil {
			if errors.Is(err, shopclient.ErrCartEmpty) {
				return err
			}
			return errors.Join(errCheckoutFailed, err)
		}
		return nil

	case "promo":
		if len(args) != 1 || args[0] != "dismiss" {
			return errors.New("usage: merchctl promo dismiss")
		}
		return c.store.SetPromoDismissed(ctx, true)

	default:
		return fmt.Errorf("unknown command %q", name)
	}
}

func (c *command) update(ctx context.Context, mutate func(cart.Cart)) error {
	if err := c.session.Update(ctx, mutate); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	c.view.RenderCart()
	return nil
}

// navFor maps a command to the storefront section it shows.
func navFor(command string) string {
	switch command {
	case "catalog":
		return "shop"
	case "show", "cart", "add", "inc", "dec", "set", "remove", "rm", "clear":
		return "cart"
	case "checkout":
		return "checkout"
	default:
		return ""
	}
}

// setupLogging keeps the terminal quiet unless something goes wrong.
func setupLogging(w io.Writer, verbose bool) {
	opts := logging.Options{Level: slog.LevelWarn, Console: true}
	if verbose {
		opts = logging.ForEnvironment("development", slog.LevelDebug)
	}
	logging.Setup(w, opts)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "merchctl.db")
	}
	return filepath.Join(dir, "chsn-merch", "state.db")
}
