// Package bookkeeping implements the farm's business operations. Each one runs as
// a single unit of work: the record, its ledger postings and its stock movements
// commit together or not at all.
//
// Parameters are validated before the write lock is taken. Every operation
// accepts an optional idempotency key; replaying a key returns the record the
// first call created.
package bookkeeping

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
	"github.com/MrJamesThe3rd/farmbook/internal/unitofwork"
)

// Operation kinds, as recorded against idempotency keys and in metrics.
const (
	OpRecordSale          = "record_sale"
	OpRecordPurchase      = "record_purchase"
	OpRecordPurchases     = "record_purchases"
	OpRecordExpense       = "record_expense"
	OpRecordPayment       = "record_payment"
	OpProduceFeedBatch    = "produce_feed_batch"
	OpIssueFeed           = "issue_feed"
	OpPostLedgerEntry     = "post_ledger_entry"
	OpReverseEntry        = "reverse_entry"
	OpCreatePool          = "create_pool"
	OpCreateFormula       = "create_formula"
	OpCreateShed          = "create_shed"
	OpReceiveOpeningStock = "receive_opening_stock"
)

type Service struct {
	uow    *unitofwork.Coordinator
	books  ledger.Repository
	stock  inventory.Repository
	trades trade.Repository
	now    func() time.Time
}

// NewService wires the coordinator with read-side repositories used to return
// records on an idempotent replay.
func NewService(uow *unitofwork.Coordinator, books ledger.Repository, stock inventory.Repository, trades trade.Repository) *Service {
	return &Service{
		uow:    uow,
		books:  books,
		stock:  stock,
		trades: trades,
		now:    time.Now,
	}
}

// date defaults a missing business date to today.
func (s *Service) date(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}

	return ledger.Day(t)
}

// Amount is a figure entered in one currency together with the exchange rate
// (primary per secondary) of the day it was recorded.
type Amount struct {
	Value    decimal.Decimal
	Currency money.Currency
	Rate     decimal.Decimal
}

func (a Amount) Validate(field string) error {
	var errs []error

	if !a.Value.IsPositive() {
		errs = append(errs, apperr.Invalid(field, "must be greater than zero"))
	}

	if !a.Currency.Valid() {
		errs = append(errs, apperr.Invalidf("currency", "unknown currency %q", a.Currency))
	}

	if !a.Rate.IsPositive() {
		errs = append(errs, apperr.Invalid("exchange_rate", "must be greater than zero"))
	}

	return errors.Join(errs...)
}

// Pair records the amount in both currencies, deriving the other side at Rate.
func (a Amount) Pair() (money.Pair, error) {
	return a.pair(a.Value.Round(money.AmountScale))
}

// Times prices qty units at a unit amount.
func (a Amount) Times(qty decimal.Decimal) (money.Pair, error) {
	return a.pair(a.Value.Mul(qty).Round(money.AmountScale))
}

func (a Amount) pair(v decimal.Decimal) (money.Pair, error) {
	if a.Currency == money.Secondary {
		return money.FromSecondary(v, a.Rate)
	}

	return money.FromPrimary(v, a.Rate)
}

// UnitCost is the amount taken as a per-unit cost in both currencies.
func (a Amount) UnitCost() money.Cost {
	if a.Currency == money.Secondary {
		return money.Cost{Primary: a.Value.Mul(a.Rate).Round(money.CostScale), Secondary: a.Value}
	}

	return money.Cost{Primary: a.Value, Secondary: a.Value.DivRound(a.Rate, money.CostScale)}
}

// settle stores p and posts its ledger entry. Money received credits the party,
// money paid out debits it.
func settle(ctx context.Context, tx *unitofwork.Tx, p trade.Payment) (*trade.Payment, error) {
	p.ID = uuid.New()

	if p.Origin == "" {
		p.Origin = trade.OriginAccount
	}

	ref := ledger.Reference{Kind: ledger.RefPayment, ID: p.ID}

	post := ledger.DebitOf(p.PartyID, p.Date, p.Description, p.Amount, ref)
	if p.Direction == trade.Received {
		post = ledger.CreditOf(p.PartyID, p.Date, p.Description, p.Amount, ref)
	}

	e, err := ledger.Post(ctx, tx.Ledger, post)
	if err != nil {
		return nil, err
	}

	p.EntryID = e.ID

	if err := tx.Trade.CreatePayment(ctx, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func partyOfKind(ctx context.Context, tx *unitofwork.Tx, id uuid.UUID, kind ledger.PartyKind) (*ledger.Party, error) {
	p, err := tx.Ledger.GetParty(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Kind != kind {
		return nil, apperr.Invalidf("party_id", "%s is a %s, not a %s", p.Name, p.Kind, kind)
	}

	return p, nil
}
