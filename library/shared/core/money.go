package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code supported by the library.
type Currency string

const (
	CurrencyRON Currency = "RON"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// PenaltyCurrency is the currency every paid penalty is settled in, regardless of the book's rent currency.
const PenaltyCurrency = CurrencyRON

var knownCurrencies = []Currency{CurrencyRON, CurrencyUSD, CurrencyEUR, CurrencyGBP}

// ParseCurrency maps a case-insensitive currency code to a Currency.
func ParseCurrency(code string) (Currency, error) {
	for _, c := range knownCurrencies {
		if strings.EqualFold(strings.TrimSpace(code), string(c)) {
			return c, nil
		}
	}

	return "", ErrUnknownCurrency
}

// IsValid reports whether c is one of the supported currencies.
func (c Currency) IsValid() bool {
	for _, known := range knownCurrencies {
		if c == known {
			return true
		}
	}

	return false
}

// Money is an exact decimal amount in a currency.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

// NewMoney builds a Money value, rejecting negative amounts and unknown currencies.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if amount.IsNegative() {
		return Money{}, ErrNegativeAmount
	}

	if !currency.IsValid() {
		return Money{}, ErrUnknownCurrency
	}

	return Money{Amount: amount, Currency: currency}, nil
}

// ZeroMoney returns an amount of 0 in the given currency.
func ZeroMoney(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// IsZero reports whether the amount is 0.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Equal compares amount by value and currency by code, so 2.5 RON equals 2.50 RON.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + string(m.Currency)
}
