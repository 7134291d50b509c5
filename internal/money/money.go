package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is one of the two currencies the books are kept in.
type Currency string

const (
	Primary   Currency = "AFG"
	Secondary Currency = "USD"
)

const (
	// AmountScale is the number of decimal places kept for recorded amounts.
	AmountScale = 2
	// CostScale is the number of decimal places kept for unit costs and rates.
	CostScale = 6
)

// Currencies lists both currencies, primary first.
var Currencies = []Currency{Primary, Secondary}

// ParseCurrency accepts a currency code or the words "primary"/"secondary".
func ParseCurrency(s string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Primary), "PRIMARY", "AFN":
		return Primary, nil
	case string(Secondary), "SECONDARY":
		return Secondary, nil
	}

	return "", fmt.Errorf("unknown currency %q", s)
}

func (c Currency) Valid() bool {
	return c == Primary || c == Secondary
}

// Money is an amount tagged with its currency.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

func New(amount decimal.Decimal, currency Currency) Money {
	return Money{Amount: amount, Currency: currency}
}

func Zero(currency Currency) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add returns m + other. Amounts in different currencies are never combined.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Amounts in different currencies are never combined.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}

	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

func (m Money) IsZero() bool     { return m.Amount.IsZero() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

func (m Money) String() string {
	return m.Amount.StringFixed(AmountScale) + " " + string(m.Currency)
}

func (m Money) sameCurrency(other Money) error {
	if m.Currency != other.Currency {
		return fmt.Errorf("money: currency mismatch: %s != %s", m.Currency, other.Currency)
	}

	return nil
}
