package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

// PartyKind distinguishes customers from suppliers.
type PartyKind string

const (
	PartyCustomer PartyKind = "customer"
	PartySupplier PartyKind = "supplier"
)

func (k PartyKind) Valid() bool {
	return k == PartyCustomer || k == PartySupplier
}

// Party is a counterparty with one running account.
type Party struct {
	ID        uuid.UUID
	Code      string
	Name      string
	Kind      PartyKind
	CreatedAt time.Time
}

// PartyCode derives the unique human code of a party from its name.
func PartyCode(name string) string {
	return slug.Make(name)
}

// Direction is the side of an entry.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// RefKind names the kind of record an entry originates from.
type RefKind string

const (
	RefSale       RefKind = "sale"
	RefPurchase   RefKind = "purchase"
	RefExpense    RefKind = "expense"
	RefPayment    RefKind = "payment"
	RefAdjustment RefKind = "adjustment"
	RefReversal   RefKind = "reversal"
)

// Reference links an entry to the record it was posted for.
type Reference struct {
	Kind RefKind
	ID   uuid.UUID
}

// Entry is one immutable debit or credit against a party's account.
// Exactly one side is non-zero.
type Entry struct {
	ID              uuid.UUID
	Seq             int64 // insertion order, tie-break for same-date entries
	PartyID         uuid.UUID
	Date            time.Time
	Description     string
	DebitPrimary    decimal.Decimal
	CreditPrimary   decimal.Decimal
	DebitSecondary  decimal.Decimal
	CreditSecondary decimal.Decimal
	Rate            decimal.Decimal
	Reference       Reference
	ReversesID      *uuid.UUID
	CreatedAt       time.Time
}

func (e *Entry) Direction() Direction {
	if e.CreditPrimary.IsPositive() || e.CreditSecondary.IsPositive() {
		return Credit
	}

	return Debit
}

// Amount returns the recorded pair regardless of side.
func (e *Entry) Amount() money.Pair {
	if e.Direction() == Credit {
		return money.Pair{Primary: e.CreditPrimary, Secondary: e.CreditSecondary, Rate: e.Rate}
	}

	return money.Pair{Primary: e.DebitPrimary, Secondary: e.DebitSecondary, Rate: e.Rate}
}

// Net returns debit minus credit in currency c.
func (e *Entry) Net(c money.Currency) decimal.Decimal {
	if c == money.Secondary {
		return e.DebitSecondary.Sub(e.CreditSecondary)
	}

	return e.DebitPrimary.Sub(e.CreditPrimary)
}

// DateRange is an inclusive range of dates. Zero bounds are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}

	if !r.To.IsZero() && t.After(r.To) {
		return false
	}

	return true
}

// EntryFilter narrows ListEntries.
type EntryFilter struct {
	AsOf *time.Time
}
