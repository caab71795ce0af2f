package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/loganlanou/chsn-merch/internal/catalog"
	"github.com/loganlanou/chsn-merch/internal/logging"
	stripeutil "github.com/loganlanou/chsn-merch/internal/stripe"
	"github.com/spf13/viper"
)

// DefaultSandboxPromoCode is provisioned automatically with sandbox keys
// unless AUTO_FREE_PROMO_CODE says otherwise.
const DefaultSandboxPromoCode = "FREE100"

type Config struct {
	Environment string
	Port        string
	PublicDir   string
	LogLevel    slog.Level

	// Domain overrides the externally visible base URL. When empty it is
	// inferred per request from X-Forwarded-Proto and Host.
	Domain string

	Stripe struct {
		SecretKey string
		// PriceIDs maps SKU -> pre-registered Stripe price.
		PriceIDs map[string]string
	}

	Checkout struct {
		Enabled           bool
		AutoFreePromoCode string
	}
}

// LoadConfig reads configuration from the environment and, when configFile is
// set, from that file. Environment variables win over the file.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("environment", "development")
	v.SetDefault("port", "4242")
	v.SetDefault("public_dir", "")
	v.SetDefault("domain", "")
	v.SetDefault("checkout_enabled", "true")
	v.SetDefault("log_level", "info")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	config := &Config{
		Environment: v.GetString("environment"),
		Port:        v.GetString("port"),
		PublicDir:   strings.TrimSpace(v.GetString("public_dir")),
		Domain:      strings.TrimSpace(v.GetString("domain")),
	}

	logLevel, err := logging.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, err
	}
	config.LogLevel = logLevel

	// Stripe
	config.Stripe.SecretKey = strings.TrimSpace(v.GetString("stripe_secret_key"))
	config.Stripe.PriceIDs = map[string]string{}
	for _, p := range catalog.Default().Products() {
		if id := strings.TrimSpace(v.GetString(PriceIDKey(p.SKU))); id != "" {
			config.Stripe.PriceIDs[p.SKU] = id
		}
	}

	// Checkout
	config.Checkout.Enabled = parseEnabled(v.GetString("checkout_enabled"))
	config.Checkout.AutoFreePromoCode = autoFreePromoCode(v.GetString("auto_free_promo_code"), config.Stripe.SecretKey)

	return config, nil
}

// PriceIDKey is the config key holding the Stripe price for sku, e.g.
// "stripe_price_merch_01" (env STRIPE_PRICE_MERCH_01).
func PriceIDKey(sku string) string {
	return "stripe_price_" + strings.ToLower(strings.ReplaceAll(sku, "-", "_"))
}

// parseEnabled treats everything except "false" as on.
func parseEnabled(value string) bool {
	return strings.ToLower(strings.TrimSpace(value)) != "false"
}

// autoFreePromoCode returns the configured code, falling back to
// DefaultSandboxPromoCode for sandbox keys when none is set. An empty env var
// counts as unset; a whitespace-only value disables provisioning.
func autoFreePromoCode(configured, secretKey string) string {
	if configured != "" {
		return strings.TrimSpace(configured)
	}
	if stripeutil.IsTestKey(secretKey) {
		return DefaultSandboxPromoCode
	}
	return ""
}
