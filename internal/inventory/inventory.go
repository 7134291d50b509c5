package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

// Kind separates purchased ingredients from produced feed.
type Kind string

const (
	KindRawMaterial  Kind = "raw_material"
	KindFinishedFeed Kind = "finished_feed"
)

func (k Kind) Valid() bool {
	return k == KindRawMaterial || k == KindFinishedFeed
}

// Pool is one stock-holding item valued at weighted-average cost.
type Pool struct {
	ID        uuid.UUID
	Kind      Kind
	Name      string
	Unit      string
	Stock     decimal.Decimal
	UnitCost  money.Cost
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Value is stock times the current average, in both currencies.
func (p *Pool) Value() money.Cost {
	return p.UnitCost.Total(p.Stock)
}

// Direction of a stock movement.
type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// RefKind names what caused a movement.
type RefKind string

const (
	RefOpeningStock RefKind = "opening_stock"
	RefPurchase     RefKind = "purchase"
	RefSale         RefKind = "sale"
	RefBatchInput   RefKind = "batch_input"
	RefBatchOutput  RefKind = "batch_output"
	RefFeedIssue    RefKind = "feed_issue"
)

type Reference struct {
	Kind RefKind
	ID   uuid.UUID
}

// Movement is the audit row written for every pool mutation. It holds enough to
// recompute the pool's state on either side of the change.
type Movement struct {
	ID          uuid.UUID
	Seq         int64
	PoolID      uuid.UUID
	Direction   Direction
	Quantity    decimal.Decimal
	UnitCost    money.Cost
	StockBefore decimal.Decimal
	StockAfter  decimal.Decimal
	AvgBefore   money.Cost
	AvgAfter    money.Cost
	Reference   Reference
	CreatedAt   time.Time
}

// Ingredient is one line of a formula, in recipe order.
type Ingredient struct {
	MaterialID uuid.UUID
	Percentage decimal.Decimal
}

// Formula is a named recipe. It carries no cost of its own.
type Formula struct {
	ID          uuid.UUID
	Name        string
	Ingredients []Ingredient
	CreatedAt   time.Time
}

// Batch is one immutable production run.
type Batch struct {
	ID         uuid.UUID
	FormulaID  uuid.UUID
	FeedPoolID uuid.UUID
	Quantity   decimal.Decimal
	TotalCost  money.Cost
	UnitCost   money.Cost
	ProducedAt time.Time
}
