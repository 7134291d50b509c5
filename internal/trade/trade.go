package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

// Basis says whether a record was settled on the spot or left on account.
type Basis string

const (
	Cash   Basis = "cash"
	Credit Basis = "credit"
)

func (b Basis) Valid() bool {
	return b == Cash || b == Credit
}

type Sale struct {
	ID         uuid.UUID
	PartyID    uuid.UUID
	Date       time.Time
	Product    string
	PoolID     *uuid.UUID // set when the sale draws down a stock pool
	Quantity   decimal.Decimal
	UnitPrice  money.Cost
	Total      money.Pair
	Cost       money.Cost // cost of goods at the pool's average when sold
	Basis      Basis
	EntryID    uuid.UUID
	PaymentID  *uuid.UUID
	MovementID *uuid.UUID
	CreatedAt  time.Time
}

type Purchase struct {
	ID         uuid.UUID
	PartyID    uuid.UUID
	Date       time.Time
	PoolID     uuid.UUID
	Quantity   decimal.Decimal
	UnitPrice  money.Cost
	Total      money.Pair
	Basis      Basis
	EntryID    uuid.UUID
	PaymentID  *uuid.UUID
	MovementID uuid.UUID
	CreatedAt  time.Time
}

type Expense struct {
	ID          uuid.UUID
	PartyID     *uuid.UUID
	Date        time.Time
	Category    string
	Description string
	Amount      money.Pair
	Basis       Basis
	EntryID     *uuid.UUID
	PaymentID   *uuid.UUID
	CreatedAt   time.Time
}

// PaymentDirection is seen from the farm: money received from or paid to a party.
type PaymentDirection string

const (
	Received PaymentDirection = "received"
	Paid     PaymentDirection = "paid"
)

func (d PaymentDirection) Valid() bool {
	return d == Received || d == Paid
}

// Origin names what a payment settles.
type Origin string

const (
	OriginAccount  Origin = "account"
	OriginSale     Origin = "sale"
	OriginPurchase Origin = "purchase"
	OriginExpense  Origin = "expense"
)

type Payment struct {
	ID          uuid.UUID
	PartyID     uuid.UUID
	Date        time.Time
	Direction   PaymentDirection
	Description string
	Amount      money.Pair
	Origin      Origin
	OriginID    *uuid.UUID
	EntryID     uuid.UUID
	CreatedAt   time.Time
}

// FeedIssue is finished feed handed to a shed, valued at the pool's average.
type FeedIssue struct {
	ID         uuid.UUID
	ShedID     uuid.UUID
	PoolID     uuid.UUID
	Date       time.Time
	Quantity   decimal.Decimal
	UnitCost   money.Cost
	Total      money.Cost
	MovementID uuid.UUID
	CreatedAt  time.Time
}

type Shed struct {
	ID        uuid.UUID
	Name      string
	Farm      string
	CreatedAt time.Time
}

// Filter narrows list queries. Zero fields are ignored.
type Filter struct {
	PartyID *uuid.UUID
	From    *time.Time
	To      *time.Time
}
