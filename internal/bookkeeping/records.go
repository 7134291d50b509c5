package bookkeeping

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// Sales

type SaleParams struct {
	Key       string
	PartyID   uuid.UUID
	Date      time.Time
	Product   string
	PoolID    *uuid.UUID // draw the quantity from this finished-feed pool
	Quantity  decimal.Decimal
	UnitPrice Amount
	Basis     trade.Basis
}

func (p SaleParams) Validate() error {
	var errs []error

	if p.PartyID == uuid.Nil {
		errs = append(errs, apperr.Invalid("party_id", "is required"))
	}

	if strings.TrimSpace(p.Product) == "" && p.PoolID == nil {
		errs = append(errs, apperr.Invalid("product", "is required when no pool is given"))
	}

	if !p.Quantity.IsPositive() {
		errs = append(errs, apperr.Invalid("quantity", "must be greater than zero"))
	}

	if !p.Basis.Valid() {
		errs = append(errs, apperr.Invalidf("basis", "must be %q or %q", trade.Cash, trade.Credit))
	}

	errs = append(errs, p.UnitPrice.Validate("unit_price"))

	return errors.Join(errs...)
}

// RecordSale debits the customer for the sale total. When the sale draws on a
// pool, the stock leaves at the pool's average cost and that cost is kept on the
// sale. A cash sale also records the receipt, so the customer nets to zero.
func (s *Service) RecordSale(ctx context.Context, params SaleParams) (*trade.Sale, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	total, err := params.UnitPrice.Times(params.Quantity)
	if err != nil {
		return nil, err
	}

	var sale *trade.Sale

	res, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpRecordSale,
		Key:  params.Key,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			if _, err := partyOfKind(ctx, tx, params.PartyID, ledger.PartyCustomer); err != nil {
				return uuid.Nil, err
			}

			r := &trade.Sale{
				ID:        uuid.New(),
				PartyID:   params.PartyID,
				Date:      s.date(params.Date),
				Product:   strings.TrimSpace(params.Product),
				PoolID:    params.PoolID,
				Quantity:  params.Quantity,
				UnitPrice: params.UnitPrice.UnitCost(),
				Total:     total,
				Cost:      money.Cost{Primary: decimal.Zero, Secondary: decimal.Zero},
				Basis:     params.Basis,
			}

			if params.PoolID != nil {
				pool, err := tx.Inventory.GetPool(ctx, *params.PoolID)
				if err != nil {
					return uuid.Nil, err
				}

				if pool.Kind != inventory.KindFinishedFeed {
					return uuid.Nil, apperr.Invalidf("pool_id", "pool %s is not a finished feed pool", pool.Name)
				}

				if r.Product == "" {
					r.Product = pool.Name
				}

				mv, err := inventory.Issue(ctx, tx.Inventory, pool.ID, params.Quantity,
					inventory.Reference{Kind: inventory.RefSale, ID: r.ID})
				if err != nil {
					return uuid.Nil, err
				}

				r.Cost = mv.UnitCost.Total(params.Quantity)
				r.MovementID = &mv.ID
			}

			desc := fmt.Sprintf("Sale: %s x %s", r.Product, r.Quantity)

			e, err := ledger.Post(ctx, tx.Ledger,
				ledger.DebitOf(r.PartyID, r.Date, desc, total, ledger.Reference{Kind: ledger.RefSale, ID: r.ID}))
			if err != nil {
				return uuid.Nil, err
			}

			r.EntryID = e.ID

			if r.Basis == trade.Cash {
				pay, err := settle(ctx, tx, trade.Payment{
					PartyID:     r.PartyID,
					Date:        r.Date,
					Direction:   trade.Received,
					Description: "Cash received for " + desc,
					Amount:      total,
					Origin:      trade.OriginSale,
					OriginID:    &r.ID,
				})
				if err != nil {
					return uuid.Nil, err
				}

				r.PaymentID = &pay.ID
			}

			if err := tx.Trade.CreateSale(ctx, r); err != nil {
				return uuid.Nil, err
			}

			sale = r

			return r.ID, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		return s.trades.GetSale(ctx, res.RecordID)
	}

	return sale, nil
}

// Purchases

type PurchaseParams struct {
	Key       string
	PartyID   uuid.UUID
	Date      time.Time
	PoolID    uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice Amount
	Basis     trade.Basis
}

func (p PurchaseParams) Validate() error {
	var errs []error

	if p.PartyID == uuid.Nil {
		errs = append(errs, apperr.Invalid("party_id", "is required"))
	}

	if p.PoolID == uuid.Nil {
		errs = append(errs, apperr.Invalid("pool_id", "is required"))
	}

	if !p.Quantity.IsPositive() {
		errs = append(errs, apperr.Invalid("quantity", "must be greater than zero"))
	}

	if !p.Basis.Valid() {
		errs = append(errs, apperr.Invalidf("basis", "must be %q or %q", trade.Cash, trade.Credit))
	}

	errs = append(errs, p.UnitPrice.Validate("unit_price"))

	return errors.Join(errs...)
}

// RecordPurchase receives stock at the purchase price and credits the supplier.
// A cash purchase also records the payment made.
func (s *Service) RecordPurchase(ctx context.Context, params PurchaseParams) (*trade.Purchase, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var purchase *trade.Purchase

	res, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpRecordPurchase,
		Key:  params.Key,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			r, err := s.purchase(ctx, tx, params)
			if err != nil {
				return uuid.Nil, err
			}

			purchase = r

			return r.ID, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		return s.trades.GetPurchase(ctx, res.RecordID)
	}

	return purchase, nil
}

// ImportResult is the outcome of RecordPurchases. A replayed import applies
// nothing and carries no purchases.
type ImportResult struct {
	Purchases []*trade.Purchase
	Replayed  bool
}

// RecordPurchases records many purchases as one unit of work: either every row
// is booked or none is. Validation errors name the row.
func (s *Service) RecordPurchases(ctx context.Context, key string, rows []PurchaseParams) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, apperr.Invalid("purchases", "at least one purchase is required")
	}

	var errs []error

	for i, row := range rows {
		if err := row.Validate(); err != nil {
			errs = append(errs, rowErrors(i+1, err)...)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	out := &ImportResult{}

	res, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpRecordPurchases,
		Key:  key,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			for i, row := range rows {
				r, err := s.purchase(ctx, tx, row)
				if err != nil {
					return uuid.Nil, fmt.Errorf("row %d: %w", i+1, err)
				}

				out.Purchases = append(out.Purchases, r)
			}

			return out.Purchases[0].ID, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		return &ImportResult{Replayed: true}, nil
	}

	return out, nil
}

func rowErrors(row int, err error) []error {
	var out []error

	for _, ve := range apperr.Validations(err) {
		out = append(out, apperr.Invalidf(fmt.Sprintf("row %d %s", row, ve.Field), "%s", ve.Reason))
	}

	return out
}

func (s *Service) purchase(ctx context.Context, tx *unitofwork.Tx, params PurchaseParams) (*trade.Purchase, error) {
	if _, err := partyOfKind(ctx, tx, params.PartyID, ledger.PartySupplier); err != nil {
		return nil, err
	}

	total, err := params.UnitPrice.Times(params.Quantity)
	if err != nil {
		return nil, err
	}

	r := &trade.Purchase{
		ID:        uuid.New(),
		PartyID:   params.PartyID,
		Date:      s.date(params.Date),
		PoolID:    params.PoolID,
		Quantity:  params.Quantity,
		UnitPrice: params.UnitPrice.UnitCost(),
		Total:     total,
		Basis:     params.Basis,
	}

	mv, err := inventory.Receive(ctx, tx.Inventory, r.PoolID, r.Quantity, r.UnitPrice,
		inventory.Reference{Kind: inventory.RefPurchase, ID: r.ID})
	if err != nil {
		return nil, err
	}

	r.MovementID = mv.ID

	pool, err := tx.Inventory.GetPool(ctx, r.PoolID)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Purchase: %s x %s", pool.Name, r.Quantity)

	e, err := ledger.Post(ctx, tx.Ledger,
		ledger.CreditOf(r.PartyID, r.Date, desc, total, ledger.Reference{Kind: ledger.RefPurchase, ID: r.ID}))
	if err != nil {
		return nil, err
	}

	r.EntryID = e.ID

	if r.Basis == trade.Cash {
		pay, err := settle(ctx, tx, trade.Payment{
			PartyID:     r.PartyID,
			Date:        r.Date,
			Direction:   trade.Paid,
			Description: "Cash paid for " + desc,
			Amount:      total,
			Origin:      trade.OriginPurchase,
			OriginID:    &r.ID,
		})
		if err != nil {
			return nil, err
		}

		r.PaymentID = &pay.ID
	}

	if err := tx.Trade.CreatePurchase(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

// Expenses

type ExpenseParams struct {
	Key         string
	PartyID     *uuid.UUID // the payee, when the expense is owed to someone on account
	Date        time.Time
	Category    string
	Description string
	Amount      Amount
	Basis       trade.Basis
}

func (p ExpenseParams) Validate() error {
	var errs []error

	if strings.TrimSpace(p.Category) == "" {
		errs = append(errs, apperr.Invalid("category", "is required"))
	}

	if !p.Basis.Valid() {
		errs = append(errs, apperr.Invalidf("basis", "must be %q or %q", trade.Cash, trade.Credit))
	}

	if p.Basis == trade.Credit && p.PartyID == nil {
		errs = append(errs, apperr.Invalid("party_id", "is required for an expense on credit"))
	}

	errs = append(errs, p.Amount.Validate("amount"))

	return errors.Join(errs...)
}

// RecordExpense books an operating cost. With a party it is credited to them,
// and a cash expense also records the payment. Without a party only the expense
// record is kept.
func (s *Service) RecordExpense(ctx context.Context, params ExpenseParams) (*trade.Expense, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	amount, err := params.Amount.Pair()
	if err != nil {
		return nil, err
	}

	var expense *trade.Expense

	res, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpRecordExpense,
		Key:  params.Key,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			r := &trade.Expense{
				ID:          uuid.New(),
				PartyID:     params.PartyID,
				Date:        s.date(params.Date),
				Category:    strings.TrimSpace(params.Category),
				Description: strings.TrimSpace(params.Description),
				Amount:      amount,
				Basis:       params.Basis,
			}

			if r.Description == "" {
				r.Description = r.Category
			}

			if r.PartyID != nil {
				desc := "Expense: " + r.Description

				e, err := ledger.Post(ctx, tx.Ledger,
					ledger.CreditOf(*r.PartyID, r.Date, desc, amount, ledger.Reference{Kind: ledger.RefExpense, ID: r.ID}))
				if err != nil {
					return uuid.Nil, err
				}

				r.EntryID = &e.ID

				if r.Basis == trade.Cash {
					pay, err := settle(ctx, tx, trade.Payment{
						PartyID:     *r.PartyID,
						Date:        r.Date,
						Direction:   trade.Paid,
						Description: "Cash paid for " + desc,
						Amount:      amount,
						Origin:      trade.OriginExpense,
						OriginID:    &r.ID,
					})
					if err != nil {
						return uuid.Nil, err
					}

					r.PaymentID = &pay.ID
				}
			}

			if err := tx.Trade.CreateExpense(ctx, r); err != nil {
				return uuid.Nil, err
			}

			expense = r

			return r.ID, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		return s.trades.GetExpense(ctx, res.RecordID)
	}

	return expense, nil
}

// Payments

type PaymentParams struct {
	Key         string
	PartyID     uuid.UUID
	Date        time.Time
	Direction   trade.PaymentDirection
	Description string
	Amount      Amount
}

func (p PaymentParams) Validate() error {
	var errs []error

	if p.PartyID == uuid.Nil {
		errs = append(errs, apperr.Invalid("party_id", "is required"))
	}

	if !p.Direction.Valid() {
		errs = append(errs, apperr.Invalidf("direction", "must be %q or %q", trade.Received, trade.Paid))
	}

	errs = append(errs, p.Amount.Validate("amount"))

	return errors.Join(errs...)
}

// RecordPayment settles part of a party's account: money received is credited
// to the party, money paid out is debited.
func (s *Service) RecordPayment(ctx context.Context, params PaymentParams) (*trade.Payment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	amount, err := params.Amount.Pair()
	if err != nil {
		return nil, err
	}

	var payment *trade.Payment

	res, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpRecordPayment,
		Key:  params.Key,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			desc := strings.TrimSpace(params.Description)
			if desc == "" {
				desc = "Payment received"
				if params.Direction == trade.Paid {
					desc = "Payment made"
				}
			}

			p, err := settle(ctx, tx, trade.Payment{
				PartyID:     params.PartyID,
				Date:        s.date(params.Date),
				Direction:   params.Direction,
				Description: desc,
				Amount:      amount,
				Origin:      trade.OriginAccount,
			})
			if err != nil {
				return uuid.Nil, err
			}

			payment = p

			return p.ID, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		return s.trades.GetPayment(ctx, res.RecordID)
	}

	return payment, nil
}
