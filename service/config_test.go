package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("CHECKOUT_ENABLED", "")
	t.Setenv("AUTO_FREE_PROMO_CODE", "")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "4242", config.Port)
	assert.Equal(t, slog.LevelInfo, config.LogLevel)
	assert.True(t, config.Checkout.Enabled)
	assert.Empty(t, config.Stripe.SecretKey)
	assert.Empty(t, config.Checkout.AutoFreePromoCode, "no promo code without a sandbox key")
	assert.Empty(t, config.Stripe.PriceIDs)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", " sk_test_abc ")
	t.Setenv("STRIPE_PRICE_MERCH_02", "price_hoodie")
	t.Setenv("DOMAIN", "https://merch.example.org")
	t.Setenv("AUTO_FREE_PROMO_CODE", "")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "sk_test_abc", config.Stripe.SecretKey)
	assert.Equal(t, map[string]string{"MERCH-02": "price_hoodie"}, config.Stripe.PriceIDs)
	assert.Equal(t, "https://merch.example.org", config.Domain)
	assert.Equal(t, DefaultSandboxPromoCode, config.Checkout.AutoFreePromoCode)
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("PORT", "")

	path := filepath.Join(t.TempDir(), "merch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9000\"\nstripe_secret_key: sk_live_abc\ncheckout_enabled: \"false\"\n"), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", config.Port)
	assert.Equal(t, "sk_live_abc", config.Stripe.SecretKey)
	assert.False(t, config.Checkout.Enabled)
	assert.Empty(t, config.Checkout.AutoFreePromoCode)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseEnabled(t *testing.T) {
	tests := map[string]bool{
		"":        true,
		"true":    true,
		"0":       true,
		"no":      true,
		"false":   false,
		"FALSE":   false,
		" false ": false,
	}
	for value, want := range tests {
		assert.Equal(t, want, parseEnabled(value), "value %q", value)
	}
}

func TestAutoFreePromoCode(t *testing.T) {
	assert.Equal(t, "FREE100", autoFreePromoCode("", "sk_test_x"))
	assert.Equal(t, "", autoFreePromoCode("", "sk_live_x"))
	assert.Equal(t, "LAUNCH", autoFreePromoCode(" LAUNCH ", "sk_live_x"))
	assert.Equal(t, "", autoFreePromoCode("   ", "sk_test_x"), "whitespace override disables provisioning")
}

func TestPriceIDKey(t *testing.T) {
	assert.Equal(t, "stripe_price_merch_01", PriceIDKey("MERCH-01"))
}

func TestLoadConfig_AutoFreePromoCodeOverrides(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_abc")

	t.Setenv("AUTO_FREE_PROMO_CODE", "")
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSandboxPromoCode, config.Checkout.AutoFreePromoCode, "empty env var is unset")

	t.Setenv("AUTO_FREE_PROMO_CODE", "  ")
	config, err = LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, config.Checkout.AutoFreePromoCode)

	t.Setenv("AUTO_FREE_PROMO_CODE", " launch50 ")
	config, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "launch50", config.Checkout.AutoFreePromoCode)
}

func TestLoadConfig_LogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, config.LogLevel)

	t.Setenv("LOG_LEVEL", "chatty")
	_, err = LoadConfig("")
	assert.Error(t, err)
}
