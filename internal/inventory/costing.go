package inventory

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

var hundred = decimal.NewFromInt(100)

// FormulaTolerance bounds how far a formula's percentages, taken as fractions of
// the whole, may drift from 1.
var FormulaTolerance = decimal.RequireFromString("0.01")

func checkPool(op string, p Pool) error {
	if p.Stock.IsNegative() {
		return apperr.Inconsistent(op, "pool %s has negative stock %s", p.Name, p.Stock)
	}

	if p.UnitCost.IsNegative() {
		return apperr.Inconsistent(op, "pool %s has negative average cost", p.Name)
	}

	return nil
}

// ApplyInflow blends qty units at unitCost into the pool's weighted average.
// An empty pool takes unitCost exactly. p is not modified; on error the
// returned pool is the zero value.
func ApplyInflow(p Pool, qty decimal.Decimal, unitCost money.Cost) (Pool, Movement, error) {
	if !qty.IsPositive() {
		return Pool{}, Movement{}, apperr.Invalid("quantity", "must be greater than zero")
	}

	if unitCost.IsNegative() {
		return Pool{}, Movement{}, apperr.Invalid("unit_cost", "must not be negative")
	}

	if err := checkPool("inflow", p); err != nil {
		return Pool{}, Movement{}, err
	}

	next := p
	next.Stock = p.Stock.Add(qty)

	if p.Stock.IsZero() {
		next.UnitCost = unitCost
	} else {
		next.UnitCost = money.Cost{
			Primary:   blend(p.Stock, p.UnitCost.Primary, qty, unitCost.Primary),
			Secondary: blend(p.Stock, p.UnitCost.Secondary, qty, unitCost.Secondary),
		}
	}

	return next, movement(p, next, In, qty, unitCost), nil
}

// blend is (oldQty*oldCost + qty*cost) / (oldQty+qty), unrounded until the division.
func blend(oldQty, oldCost, qty, cost decimal.Decimal) decimal.Decimal {
	return oldQty.Mul(oldCost).Add(qty.Mul(cost)).DivRound(oldQty.Add(qty), money.CostScale)
}

// ApplyOutflow removes qty units at the current average. The average never changes.
func ApplyOutflow(p Pool, qty decimal.Decimal) (Pool, Movement, error) {
	if !qty.IsPositive() {
		return Pool{}, Movement{}, apperr.Invalid("quantity", "must be greater than zero")
	}

	if err := checkPool("outflow", p); err != nil {
		return Pool{}, Movement{}, err
	}

	if qty.GreaterThan(p.Stock) {
		return Pool{}, Movement{}, &apperr.InsufficientStockError{Shortages: []apperr.Shortage{
			{PoolID: p.ID, Name: p.Name, Required: qty, Available: p.Stock},
		}}
	}

	next := p
	next.Stock = p.Stock.Sub(qty)

	return next, movement(p, next, Out, qty, p.UnitCost), nil
}

func movement(before, after Pool, dir Direction, qty decimal.Decimal, unitCost money.Cost) Movement {
	return Movement{
		ID:          uuid.New(),
		PoolID:      before.ID,
		Direction:   dir,
		Quantity:    qty,
		UnitCost:    unitCost,
		StockBefore: before.Stock,
		StockAfter:  after.Stock,
		AvgBefore:   before.UnitCost,
		AvgAfter:    after.UnitCost,
	}
}

// ValidateFormula checks a recipe before it is stored or used.
func ValidateFormula(name string, ingredients []Ingredient) error {
	var errs []error

	if strings.TrimSpace(name) == "" {
		errs = append(errs, apperr.Invalid("name", "is required"))
	}

	if len(ingredients) == 0 {
		errs = append(errs, apperr.Invalid("ingredients", "at least one ingredient is required"))
	}

	seen := make(map[uuid.UUID]bool, len(ingredients))
	sum := decimal.Zero

	for i, in := range ingredients {
		if in.MaterialID == uuid.Nil {
			errs = append(errs, apperr.Invalidf("ingredients", "line %d has no material", i+1))
		} else if seen[in.MaterialID] {
			errs = append(errs, apperr.Invalidf("ingredients", "material %s appears more than once", in.MaterialID))
		}

		seen[in.MaterialID] = true

		if !in.Percentage.IsPositive() {
			errs = append(errs, apperr.Invalidf("ingredients", "line %d percentage must be greater than zero", i+1))
		}

		sum = sum.Add(in.Percentage)
	}

	if len(ingredients) > 0 && sum.Div(hundred).Sub(decimal.NewFromInt(1)).Abs().GreaterThan(FormulaTolerance) {
		errs = append(errs, apperr.Invalidf("ingredients", "percentages sum to %s, expected 100", sum))
	}

	return errors.Join(errs...)
}

// Requirement is the draw one batch makes on one material.
type Requirement struct {
	Material   Pool
	Percentage decimal.Decimal
	Quantity   decimal.Decimal
	Cost       money.Cost
}

// Plan is the costed bill of materials for a batch. Building it mutates nothing.
type Plan struct {
	Formula      *Formula
	Quantity     decimal.Decimal
	Requirements []Requirement
	Shortages    []apperr.Shortage
	TotalCost    money.Cost
	UnitCost     money.Cost
}

// Err returns an InsufficientStockError naming every short material, or nil.
func (p *Plan) Err() error {
	if len(p.Shortages) == 0 {
		return nil
	}

	return &apperr.InsufficientStockError{Shortages: p.Shortages}
}

// PlanBatch works out what producing qty of f would consume and cost, using the
// materials' current stock and averages. materials must hold every ingredient.
func PlanBatch(f *Formula, materials map[uuid.UUID]Pool, qty decimal.Decimal) (*Plan, error) {
	if !qty.IsPositive() {
		return nil, apperr.Invalid("quantity", "must be greater than zero")
	}

	if err := ValidateFormula(f.Name, f.Ingredients); err != nil {
		return nil, err
	}

	plan := &Plan{Formula: f, Quantity: qty}

	for _, in := range f.Ingredients {
		m, ok := materials[in.MaterialID]
		if !ok {
			return nil, apperr.NotFound("material", in.MaterialID)
		}

		if err := checkPool("plan batch", m); err != nil {
			return nil, err
		}

		required := qty.Mul(in.Percentage).DivRound(hundred, money.CostScale)
		cost := m.UnitCost.Total(required)

		plan.Requirements = append(plan.Requirements, Requirement{
			Material:   m,
			Percentage: in.Percentage,
			Quantity:   required,
			Cost:       cost,
		})
		plan.TotalCost = plan.TotalCost.Add(cost)

		if required.GreaterThan(m.Stock) {
			plan.Shortages = append(plan.Shortages, apperr.Shortage{
				PoolID:    m.ID,
				Name:      m.Name,
				Required:  required,
				Available: m.Stock,
			})
		}
	}

	plan.UnitCost = plan.TotalCost.Per(qty)

	return plan, nil
}
