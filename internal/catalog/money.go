package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Currency is the only currency the store charges in.
var Currency = currency.USD

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// FromMinorUnits converts cents to a Money value in the store currency.
func FromMinorUnits(cents int64) Money {
	return Money{
		Amount:   decimal.New(cents, -2),
		Currency: Currency,
	}
}

// String formats the amount for display: "$45" for whole amounts and
// "$42.50" otherwise.
func (m Money) String() string {
	symbol := "$"
	if m.Currency != currency.USD {
		symbol = m.Currency.String() + " "
	}

	if m.Amount.Equal(m.Amount.Truncate(0)) {
		return symbol + m.Amount.StringFixed(0)
	}
	return symbol + m.Amount.StringFixed(2)
}

// CurrencyCode returns the lower-case ISO code Stripe expects, e.g. "usd".
func CurrencyCode() string {
	return strings.ToLower(Currency.String())
}

// FormatMinorUnits is shorthand for FromMinorUnits(cents).String().
func FormatMinorUnits(cents int64) string {
	return FromMinorUnits(cents).String()
}
