package respond

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

// Amount is a request amount in one currency with the rate of the day.
type Amount struct {
	Value        decimal.Decimal `json:"value"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

func (a Amount) Books() bookkeeping.Amount {
	return bookkeeping.Amount{
		Value:    a.Value,
		Currency: money.Currency(strings.ToUpper(strings.TrimSpace(a.Currency))),
		Rate:     a.ExchangeRate,
	}
}

type Pair struct {
	Primary      decimal.Decimal `json:"primary"`
	Secondary    decimal.Decimal `json:"secondary"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

func FromPair(p money.Pair) Pair {
	return Pair{Primary: p.Primary, Secondary: p.Secondary, ExchangeRate: p.Rate}
}

type Cost struct {
	Primary   decimal.Decimal `json:"primary"`
	Secondary decimal.Decimal `json:"secondary"`
}

func FromCost(c money.Cost) Cost {
	return Cost{Primary: c.Primary, Secondary: c.Secondary}
}

// Currency reads the ?currency= query value, defaulting to the primary currency.
func Currency(s string) money.Currency {
	if s == "" {
		return money.Primary
	}

	return money.Currency(strings.ToUpper(s))
}
