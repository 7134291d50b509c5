package money

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
)

// Pair is a monetary fact recorded in both currencies together with the rate
// that related them when it was recorded (Rate = Primary / Secondary).
//
// A persisted Pair is never recomputed from a later rate.
type Pair struct {
	Primary   decimal.Decimal
	Secondary decimal.Decimal
	Rate      decimal.Decimal
}

// NewPair validates a caller supplied pair.
func NewPair(primary, secondary, rate decimal.Decimal) (Pair, error) {
	p := Pair{Primary: primary, Secondary: secondary, Rate: rate}
	if err := p.Validate(); err != nil {
		return Pair{}, err
	}

	return p, nil
}

// FromPrimary derives the secondary amount from a primary amount and rate.
func FromPrimary(amount, rate decimal.Decimal) (Pair, error) {
	if !rate.IsPositive() {
		return Pair{}, apperr.Invalid("exchange_rate", "must be greater than zero")
	}

	secondary := amount.DivRound(rate, AmountScale)
	if amount.IsPositive() && secondary.IsZero() {
		return Pair{}, roundsToZero(amount, Primary, rate)
	}

	return NewPair(amount, secondary, rate)
}

// FromSecondary derives the primary amount from a secondary amount and rate.
func FromSecondary(amount, rate decimal.Decimal) (Pair, error) {
	if !rate.IsPositive() {
		return Pair{}, apperr.Invalid("exchange_rate", "must be greater than zero")
	}

	primary := amount.Mul(rate).Round(AmountScale)
	if amount.IsPositive() && primary.IsZero() {
		return Pair{}, roundsToZero(amount, Secondary, rate)
	}

	return NewPair(primary, amount, rate)
}

func roundsToZero(amount decimal.Decimal, c Currency, rate decimal.Decimal) error {
	return apperr.Invalidf("amount", "%s %s is zero in the other currency at exchange rate %s",
		amount.String(), c, rate.String())
}

// In returns the amount of p in currency c.
func (p Pair) In(c Currency) decimal.Decimal {
	if c == Secondary {
		return p.Secondary
	}

	return p.Primary
}

func (p Pair) Money(c Currency) Money { return New(p.In(c), c) }

func (p Pair) IsZero() bool {
	return p.Primary.IsZero() && p.Secondary.IsZero()
}

// rateTolerance is half a minor unit, the most a derived side moves when it is
// rounded to AmountScale.
var rateTolerance = decimal.New(5, -(AmountScale + 1))

// Consistent reports whether Rate relates the two amounts, allowing for the
// rounding of whichever side was derived from the other.
func (p Pair) Consistent() bool {
	if !p.Rate.IsPositive() {
		return false
	}

	if p.Primary.Div(p.Rate).Sub(p.Secondary).Abs().LessThanOrEqual(rateTolerance) {
		return true
	}

	return p.Secondary.Mul(p.Rate).Sub(p.Primary).Abs().LessThanOrEqual(rateTolerance)
}

// Validate checks amounts are non-negative, the rate is strictly positive and
// the rate agrees with the amounts. A pair is either zero in both currencies
// or positive in both.
func (p Pair) Validate() error {
	var errs []error

	if p.Primary.IsNegative() {
		errs = append(errs, apperr.Invalid("amount_primary", "must not be negative"))
	}

	if p.Secondary.IsNegative() {
		errs = append(errs, apperr.Invalid("amount_secondary", "must not be negative"))
	}

	if !p.Rate.IsPositive() {
		errs = append(errs, apperr.Invalid("exchange_rate", "must be greater than zero"))
	}

	if len(errs) > 0 || p.IsZero() {
		return errors.Join(errs...)
	}

	switch {
	case p.Primary.IsZero():
		return apperr.Invalid("amount_primary", "must be greater than zero when amount_secondary is set")
	case p.Secondary.IsZero():
		return apperr.Invalid("amount_secondary", "must be greater than zero when amount_primary is set")
	case !p.Consistent():
		return apperr.Invalidf("exchange_rate", "%s does not match %s / %s",
			p.Rate.String(), p.Primary.String(), p.Secondary.String())
	}

	return nil
}

// Mul scales both amounts by qty and rounds them to AmountScale. The rate is kept.
func (p Pair) Mul(qty decimal.Decimal) Pair {
	return Pair{
		Primary:   p.Primary.Mul(qty).Round(AmountScale),
		Secondary: p.Secondary.Mul(qty).Round(AmountScale),
		Rate:      p.Rate,
	}
}

// Round rounds both amounts to AmountScale.
func (p Pair) Round() Pair {
	return Pair{
		Primary:   p.Primary.Round(AmountScale),
		Secondary: p.Secondary.Round(AmountScale),
		Rate:      p.Rate,
	}
}

// Cost is a per-unit cost kept in both currencies. Unlike Pair it carries no
// rate: a weighted average blends inflows recorded at different rates.
type Cost struct {
	Primary   decimal.Decimal
	Secondary decimal.Decimal
}

// UnitCost divides a recorded total by a quantity.
func UnitCost(total Pair, qty decimal.Decimal) Cost {
	return Cost{
		Primary:   total.Primary.DivRound(qty, CostScale),
		Secondary: total.Secondary.DivRound(qty, CostScale),
	}
}

func CostOf(p Pair) Cost {
	return Cost{Primary: p.Primary, Secondary: p.Secondary}
}

func (c Cost) In(cur Currency) decimal.Decimal {
	if cur == Secondary {
		return c.Secondary
	}

	return c.Primary
}

func (c Cost) IsNegative() bool {
	return c.Primary.IsNegative() || c.Secondary.IsNegative()
}

// Total returns qty * c in both currencies, rounded to AmountScale.
func (c Cost) Total(qty decimal.Decimal) Cost {
	return Cost{
		Primary:   c.Primary.Mul(qty).Round(AmountScale),
		Secondary: c.Secondary.Mul(qty).Round(AmountScale),
	}
}

// Per divides c by qty, keeping CostScale places.
func (c Cost) Per(qty decimal.Decimal) Cost {
	return Cost{
		Primary:   c.Primary.DivRound(qty, CostScale),
		Secondary: c.Secondary.DivRound(qty, CostScale),
	}
}

func (c Cost) Equal(o Cost) bool {
	return c.Primary.Equal(o.Primary) && c.Secondary.Equal(o.Secondary)
}

func (c Cost) Add(o Cost) Cost {
	return Cost{Primary: c.Primary.Add(o.Primary), Secondary: c.Secondary.Add(o.Secondary)}
}

// Pair attaches the implied rate of the cost. A zero secondary cost falls back to fallback.
func (c Cost) Pair(fallback decimal.Decimal) Pair {
	rate := fallback
	if c.Secondary.IsPositive() {
		rate = c.Primary.DivRound(c.Secondary, CostScale)
	}

	return Pair{Primary: c.Primary, Secondary: c.Secondary, Rate: rate}
}
