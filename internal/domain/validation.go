package domain

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxMoneyAmount caps single movements; anything above it is a typo
	// or an attack, not a payment.
	MaxMoneyAmount = "1000000000"
	// MoneyScale is the maximum number of fraction digits on any amount.
	MoneyScale = 2
)

// Valid currency codes (ISO 4217 subset accepted by the gateway + FX providers).
var validCurrencies = map[string]bool{
	"ZAR": true, "USD": true, "EUR": true, "GBP": true,
	"NGN": true, "KES": true, "GHS": true, "BWP": true,
	"AUD": true, "CAD": true, "JPY": true, "CNY": true,
	"INR": true, "BRL": true, "CHF": true, "NZD": true,
}

// ValidateCurrency validates a currency code.
func ValidateCurrency(currency string) error {
	if !validCurrencies[strings.ToUpper(strings.TrimSpace(currency))] {
		return fmt.Errorf("%w: %q is not a supported ISO 4217 currency code", ErrInvalidArgument, currency)
	}
	return nil
}

// ValidateAmount enforces the money invariants shared by every entry
// point: strictly positive, at most 2 fraction digits, bounded.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.Exponent() < -MoneyScale {
		return ErrInvalidAmount
	}
	max, _ := decimal.NewFromString(MaxMoneyAmount)
	if amount.GreaterThan(max) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxMoneyAmount)
	}
	return nil
}

// ValidateRedirectURL accepts only absolute http(s) URLs. Anything else is
// dropped before it can enter a signed gateway payload.
func ValidateRedirectURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: malformed URL", ErrInvalidArgument)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: URL scheme %q not allowed", ErrInvalidArgument, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: URL must be absolute", ErrInvalidArgument)
	}
	return nil
}

// ClampLimit normalizes a page size into [1, 100] with a default of 20.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	}
	return limit
}
