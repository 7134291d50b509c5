package bookkeeping_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/database"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	inventorystore "github.com/MrJamesThe3rd/farmbook/internal/inventory/store"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	ledgerstore "github.com/MrJamesThe3rd/farmbook/internal/ledger/store"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
	tradestore "github.com/MrJamesThe3rd/farmbook/internal/trade/store"
	"github.com/MrJamesThe3rd/farmbook/internal/unitofwork"
)

type fixture struct {
	svc       *bookkeeping.Service
	ledger    *ledger.Service
	inventory *inventory.Service
	trades    *tradestore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.New(database.DriverSQLite, database.SQLiteDSN(filepath.Join(t.TempDir(), "books.db")))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	ls, is, ts := ledgerstore.New(db), inventorystore.New(db), tradestore.New(db)
	uow := unitofwork.New(db, zaptest.NewLogger(t), nil)

	return &fixture{
		svc:       bookkeeping.NewService(uow, ls, is, ts),
		ledger:    ledger.NewService(ls),
		inventory: inventory.NewService(is),
		trades:    ts,
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func afg(v string) bookkeeping.Amount {
	return bookkeeping.Amount{Value: d(v), Currency: money.Primary, Rate: d("70")}
}

func usd(v string) bookkeeping.Amount {
	return bookkeeping.Amount{Value: d(v), Currency: money.Secondary, Rate: d("70")}
}

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func (f *fixture) party(t *testing.T, name string, kind ledger.PartyKind) uuid.UUID {
	t.Helper()

	p, err := f.ledger.CreateParty(context.Background(), ledger.CreatePartyParams{Name: name, Kind: kind})
	require.NoError(t, err)

	return p.ID
}

func (f *fixture) material(t *testing.T, name, qty, unitCost string) uuid.UUID {
	t.Helper()

	ctx := context.Background()

	p, err := f.svc.CreateMaterial(ctx, name, "kg")
	require.NoError(t, err)

	if qty != "" {
		_, err = f.svc.ReceiveOpeningStock(ctx, bookkeeping.OpeningStockParams{
			PoolID:   p.ID,
			Quantity: d(qty),
			UnitCost: afg(unitCost),
		})
		require.NoError(t, err)
	}

	return p.ID
}

func (f *fixture) balance(t *testing.T, partyID uuid.UUID, c money.Currency) decimal.Decimal {
	t.Helper()

	b, err := f.ledger.Balance(context.Background(), partyID, c, nil)
	require.NoError(t, err)

	return b
}

func (f *fixture) pool(t *testing.T, id uuid.UUID) *inventory.Pool {
	t.Helper()

	p, err := f.inventory.GetPool(context.Background(), id)
	require.NoError(t, err)

	return p
}

func TestRecordSale(t *testing.T) {
	tests := []struct {
		name          string
		unitPrice     bookkeeping.Amount
		basis         trade.Basis
		wantPrimary   string
		wantSecondary string
		wantBalance   string
		wantPayment   bool
	}{
		{
			name:          "CreditSaleLeavesReceivable",
			unitPrice:     afg("35"),
			basis:         trade.Credit,
			wantPrimary:   "350",
			wantSecondary: "5",
			wantBalance:   "350",
		},
		{
			name:          "CashSaleNetsToZero",
			unitPrice:     afg("35"),
			basis:         trade.Cash,
			wantPrimary:   "350",
			wantSecondary: "5",
			wantBalance:   "0",
			wantPayment:   true,
		},
		{
			name:          "PricedInSecondaryCurrency",
			unitPrice:     usd("2"),
			basis:         trade.Credit,
			wantPrimary:   "1400",
			wantSecondary: "20",
			wantBalance:   "1400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			customer := f.party(t, "Bazaar Traders", ledger.PartyCustomer)

			sale, err := f.svc.RecordSale(context.Background(), bookkeeping.SaleParams{
				PartyID:   customer,
				Date:      day,
				Product:   "Eggs",
				Quantity:  d("10"),
				UnitPrice: tt.unitPrice,
				Basis:     tt.basis,
			})
			require.NoError(t, err)

			assert.True(t, sale.Total.Primary.Equal(d(tt.wantPrimary)), "primary %s", sale.Total.Primary)
			assert.True(t, sale.Total.Secondary.Equal(d(tt.wantSecondary)), "secondary %s", sale.Total.Secondary)
			assert.True(t, f.balance(t, customer, money.Primary).Equal(d(tt.wantBalance)))
			assert.Equal(t, tt.wantPayment, sale.PaymentID != nil)

			stored, err := f.trades.GetSale(context.Background(), sale.ID)
			require.NoError(t, err)
			assert.Equal(t, sale.EntryID, stored.EntryID)
		})
	}
}

func TestRecordSale_RejectsSupplier(t *testing.T) {
	f := newFixture(t)
	supplier := f.party(t, "Grain Co", ledger.PartySupplier)

	_, err := f.svc.RecordSale(context.Background(), bookkeeping.SaleParams{
		PartyID:   supplier,
		Product:   "Eggs",
		Quantity:  d("1"),
		UnitPrice: afg("10"),
		Basis:     trade.Credit,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRecordSale_ValidatesBeforeWriting(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordSale(context.Background(), bookkeeping.SaleParams{
		Quantity:  decimal.Zero,
		UnitPrice: bookkeeping.Amount{Value: d("10"), Currency: "EUR"},
		Basis:     "barter",
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	fields := map[string]bool{}
	for _, ve := range apperr.Validations(err) {
		fields[ve.Field] = true
	}

	assert.True(t, fields["party_id"])
	assert.True(t, fields["product"])
	assert.True(t, fields["quantity"])
	assert.True(t, fields["basis"])
	assert.True(t, fields["currency"])
	assert.True(t, fields["exchange_rate"])
}

func TestRecordSale_FromFeedPoolRollsBackOnShortage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.party(t, "Bazaar Traders", ledger.PartyCustomer)

	feed, err := f.svc.CreateFeedPool(ctx, "Layer Mash", "kg")
	require.NoError(t, err)

	_, err = f.svc.ReceiveOpeningStock(ctx, bookkeeping.OpeningStockParams{PoolID: feed.ID, Quantity: d("5"), UnitCost: afg("14")})
	require.NoError(t, err)

	_, err = f.svc.RecordSale(ctx, bookkeeping.SaleParams{
		PartyID:   customer,
		PoolID:    &feed.ID,
		Quantity:  d("8"),
		UnitPrice: afg("20"),
		Basis:     trade.Cash,
	})

	var stockErr *apperr.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortages, 1)
	assert.True(t, stockErr.Shortages[0].Available.Equal(d("5")))

	assert.True(t, f.balance(t, customer, money.Primary).IsZero())
	assert.True(t, f.pool(t, feed.ID).Stock.Equal(d("5")))

	sales, err := f.trades.ListSales(ctx, trade.Filter{})
	require.NoError(t, err)
	assert.Empty(t, sales)

	sale, err := f.svc.RecordSale(ctx, bookkeeping.SaleParams{
		PartyID:   customer,
		PoolID:    &feed.ID,
		Quantity:  d("2"),
		UnitPrice: afg("20"),
		Basis:     trade.Credit,
	})
	require.NoError(t, err)
	assert.Equal(t, "Layer Mash", sale.Product)
	assert.True(t, sale.Cost.Primary.Equal(d("28")))
	assert.True(t, f.pool(t, feed.ID).Stock.Equal(d("3")))
}

func TestRecordSale_IdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.party(t, "Bazaar Traders", ledger.PartyCustomer)

	params := bookkeeping.SaleParams{
		Key:       "sale-form-7",
		PartyID:   customer,
		Product:   "Eggs",
		Quantity:  d("10"),
		UnitPrice: afg("35"),
		Basis:     trade.Credit,
	}

	first, err := f.svc.RecordSale(ctx, params)
	require.NoError(t, err)

	again, err := f.svc.RecordSale(ctx, params)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.True(t, f.balance(t, customer, money.Primary).Equal(d("350")))
}

func TestRecordPurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supplier := f.party(t, "Grain Co", ledger.PartySupplier)
	maize := f.material(t, "Maize", "", "")

	first, err := f.svc.RecordPurchase(ctx, bookkeeping.PurchaseParams{
		PartyID:   supplier,
		Date:      day,
		PoolID:    maize,
		Quantity:  d("100"),
		UnitPrice: afg("10"),
		Basis:     trade.Credit,
	})
	require.NoError(t, err)
	assert.Nil(t, first.PaymentID)

	second, err := f.svc.RecordPurchase(ctx, bookkeeping.PurchaseParams{
		PartyID:   supplier,
		Date:      day.AddDate(0, 0, 1),
		PoolID:    maize,
		Quantity:  d("50"),
		UnitPrice: afg("16"),
		Basis:     trade.Cash,
	})
	require.NoError(t, err)
	assert.NotNil(t, second.PaymentID)

	pool := f.pool(t, maize)
	assert.True(t, pool.Stock.Equal(d("150")))
	assert.True(t, pool.UnitCost.Primary.Equal(d("12")), "average %s", pool.UnitCost.Primary)

	// The credit purchase is still owed, the cash one is settled.
	assert.True(t, f.balance(t, supplier, money.Primary).Equal(d("-1000")))
}

func TestRecordPurchases_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supplier := f.party(t, "Grain Co", ledger.PartySupplier)
	maize := f.material(t, "Maize", "", "")

	_, err := f.svc.RecordPurchases(ctx, "", []bookkeeping.PurchaseParams{
		{PartyID: supplier, PoolID: maize, Quantity: d("100"), UnitPrice: afg("10"), Basis: trade.Credit},
		{PartyID: supplier, PoolID: uuid.New(), Quantity: d("5"), UnitPrice: afg("10"), Basis: trade.Credit},
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), "row 2")

	assert.True(t, f.pool(t, maize).Stock.IsZero())
	assert.True(t, f.balance(t, supplier, money.Primary).IsZero())

	res, err := f.svc.RecordPurchases(ctx, "import-1", []bookkeeping.PurchaseParams{
		{PartyID: supplier, PoolID: maize, Quantity: d("100"), UnitPrice: afg("10"), Basis: trade.Credit},
		{PartyID: supplier, PoolID: maize, Quantity: d("50"), UnitPrice: afg("16"), Basis: trade.Credit},
	})
	require.NoError(t, err)
	assert.Len(t, res.Purchases, 2)

	replay, err := f.svc.RecordPurchases(ctx, "import-1", []bookkeeping.PurchaseParams{
		{PartyID: supplier, PoolID: maize, Quantity: d("100"), UnitPrice: afg("10"), Basis: trade.Credit},
	})
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.True(t, f.pool(t, maize).Stock.Equal(d("150")))
}

func TestRecordPurchases_NamesInvalidRows(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordPurchases(context.Background(), "", []bookkeeping.PurchaseParams{
		{PartyID: uuid.New(), PoolID: uuid.New(), Quantity: d("1"), UnitPrice: afg("1"), Basis: trade.Credit},
		{PartyID: uuid.New(), PoolID: uuid.New(), Quantity: d("-1"), UnitPrice: afg("1"), Basis: trade.Credit},
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	ves := apperr.Validations(err)
	require.Len(t, ves, 1)
	assert.Equal(t, "row 2 quantity", ves[0].Field)
}

func TestRecordExpense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vet := f.party(t, "District Vet", ledger.PartySupplier)

	t.Run("WithoutPartyHasNoEntry", func(t *testing.T) {
		e, err := f.svc.RecordExpense(ctx, bookkeeping.ExpenseParams{
			Category: "fuel",
			Amount:   afg("700"),
			Basis:    trade.Cash,
		})
		require.NoError(t, err)
		assert.Nil(t, e.EntryID)
		assert.Equal(t, "fuel", e.Description)
	})

	t.Run("OnCreditOwesParty", func(t *testing.T) {
		e, err := f.svc.RecordExpense(ctx, bookkeeping.ExpenseParams{
			PartyID:  &vet,
			Category: "veterinary",
			Amount:   usd("10"),
			Basis:    trade.Credit,
		})
		require.NoError(t, err)
		require.NotNil(t, e.EntryID)
		assert.True(t, f.balance(t, vet, money.Secondary).Equal(d("-10")))
		assert.True(t, f.balance(t, vet, money.Primary).Equal(d("-700")))
	})

	t.Run("CreditNeedsParty", func(t *testing.T) {
		_, err := f.svc.RecordExpense(ctx, bookkeeping.ExpenseParams{
			Category: "fuel",
			Amount:   afg("700"),
			Basis:    trade.Credit,
		})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.party(t, "Bazaar Traders", ledger.PartyCustomer)

	_, err := f.svc.RecordSale(ctx, bookkeeping.SaleParams{
		PartyID:   customer,
		Date:      day,
		Product:   "Eggs",
		Quantity:  d("10"),
		UnitPrice: afg("35"),
		Basis:     trade.Credit,
	})
	require.NoError(t, err)

	p, err := f.svc.RecordPayment(ctx, bookkeeping.PaymentParams{
		PartyID:   customer,
		Date:      day.AddDate(0, 0, 3),
		Direction: trade.Received,
		Amount:    afg("150"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Payment received", p.Description)
	assert.Equal(t, trade.OriginAccount, p.Origin)

	assert.True(t, f.balance(t, customer, money.Primary).Equal(d("200")))

	_, err = f.svc.RecordPayment(ctx, bookkeeping.PaymentParams{
		PartyID:   uuid.New(),
		Direction: trade.Received,
		Amount:    afg("1"),
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecordPayment_RejectsAmountLostInConversion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.party(t, "Bazaar Traders", ledger.PartyCustomer)

	_, err := f.svc.RecordPayment(ctx, bookkeeping.PaymentParams{
		PartyID:   customer,
		Date:      day,
		Direction: trade.Received,
		Amount:    afg("0.01"),
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)

	assert.True(t, f.balance(t, customer, money.Primary).IsZero())
	assert.True(t, f.balance(t, customer, money.Secondary).IsZero())
}

func TestPostLedgerEntry_RejectsUnbalancedPairs(t *testing.T) {
	tests := []struct {
		name      string
		amount    money.Pair
		wantField string
	}{
		{
			name:      "PrimaryOnly",
			amount:    money.Pair{Primary: d("500"), Secondary: decimal.Zero, Rate: d("70")},
			wantField: "amount_secondary",
		},
		{
			name:      "SecondaryOnly",
			amount:    money.Pair{Primary: decimal.Zero, Secondary: d("10"), Rate: d("70")},
			wantField: "amount_primary",
		},
		{
			name:      "RateContradictsAmounts",
			amount:    money.Pair{Primary: d("500"), Secondary: d("10"), Rate: d("70")},
			wantField: "exchange_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			customer := f.party(t, "Bazaar Traders", ledger.PartyCustomer)

			_, err := f.svc.PostLedgerEntry(ctx, "", ledger.DebitOf(customer, day, "Opening balance", tt.amount, ledger.Reference{}))
			require.ErrorIs(t, err, apperr.ErrValidation)

			var fields []string
			for _, ve := range apperr.Validations(err) {
				fields = append(fields, ve.Field)
			}

			assert.Contains(t, fields, tt.wantField)
			assert.True(t, f.balance(t, customer, money.Primary).IsZero())
		})
	}
}

func TestProduceFeedBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	maize := f.material(t, "Maize", "100", "10")
	soy := f.material(t, "Soybean Meal", "50", "20")

	feed, err := f.svc.CreateFeedPool(ctx, "Layer Mash", "kg")
	require.NoError(t, err)

	formula, err := f.svc.CreateFormula(ctx, bookkeeping.FormulaParams{
		Name: "Layer 60/40",
		Ingredients: []inventory.Ingredient{
			{MaterialID: maize, Percentage: d("60")},
			{MaterialID: soy, Percentage: d("40")},
		},
	})
	require.NoError(t, err)

	t.Run("ShortageChangesNothing", func(t *testing.T) {
		_, err := f.svc.ProduceFeedBatch(ctx, bookkeeping.BatchParams{
			FormulaID:  formula.ID,
			FeedPoolID: feed.ID,
			Quantity:   d("200"),
		})

		var stockErr *apperr.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Len(t, stockErr.Shortages, 2)

		assert.True(t, f.pool(t, maize).Stock.Equal(d("100")))
		assert.True(t, f.pool(t, soy).Stock.Equal(d("50")))
		assert.True(t, f.pool(t, feed.ID).Stock.IsZero())

		batches, err := f.inventory.ListBatches(ctx)
		require.NoError(t, err)
		assert.Empty(t, batches)
	})

	t.Run("Produces", func(t *testing.T) {
		b, err := f.svc.ProduceFeedBatch(ctx, bookkeeping.BatchParams{
			Key:        "batch-1",
			FormulaID:  formula.ID,
			FeedPoolID: feed.ID,
			Quantity:   d("100"),
		})
		require.NoError(t, err)

		assert.True(t, b.TotalCost.Primary.Equal(d("1400")), "total %s", b.TotalCost.Primary)
		assert.True(t, b.TotalCost.Secondary.Equal(d("20")), "total %s", b.TotalCost.Secondary)
		assert.True(t, b.UnitCost.Primary.Equal(d("14")))

		assert.True(t, f.pool(t, maize).Stock.Equal(d("40")))
		assert.True(t, f.pool(t, soy).Stock.Equal(d("10")))

		fp := f.pool(t, feed.ID)
		assert.True(t, fp.Stock.Equal(d("100")))
		assert.True(t, fp.UnitCost.Primary.Equal(d("14")))

		// Raw-material averages are untouched by the outflow.
		assert.True(t, f.pool(t, maize).UnitCost.Primary.Equal(d("10")))

		replay, err := f.svc.ProduceFeedBatch(ctx, bookkeeping.BatchParams{
			Key:        "batch-1",
			FormulaID:  formula.ID,
			FeedPoolID: feed.ID,
			Quantity:   d("100"),
		})
		require.NoError(t, err)
		assert.Equal(t, b.ID, replay.ID)
		assert.True(t, f.pool(t, feed.ID).Stock.Equal(d("100")))
	})

	t.Run("IssueToShed", func(t *testing.T) {
		shed, err := f.svc.CreateShed(ctx, "Shed A", "North farm")
		require.NoError(t, err)

		issue, err := f.svc.IssueFeed(ctx, bookkeeping.IssueParams{
			ShedID:   shed.ID,
			PoolID:   feed.ID,
			Quantity: d("30"),
		})
		require.NoError(t, err)
		assert.True(t, issue.Total.Primary.Equal(d("420")))
		assert.True(t, f.pool(t, feed.ID).Stock.Equal(d("70")))

		_, err = f.svc.IssueFeed(ctx, bookkeeping.IssueParams{ShedID: shed.ID, PoolID: maize, Quantity: d("1")})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestCreateFormula_RejectsFeedIngredient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	feed, err := f.svc.CreateFeedPool(ctx, "Layer Mash", "kg")
	require.NoError(t, err)

	_, err = f.svc.CreateFormula(ctx, bookkeeping.FormulaParams{
		Name:        "Recycled",
		Ingredients: []inventory.Ingredient{{MaterialID: feed.ID, Percentage: d("100")}},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	formulas, err := f.inventory.ListFormulas(ctx)
	require.NoError(t, err)
	assert.Empty(t, formulas)
}

func TestReverseEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.party(t, "Bazaar Traders", ledger.PartyCustomer)

	amount, err := money.FromPrimary(d("700"), d("70"))
	require.NoError(t, err)

	e, err := f.svc.PostLedgerEntry(ctx, "", ledger.DebitOf(customer, day, "Opening balance", amount, ledger.Reference{}))
	require.NoError(t, err)
	assert.Equal(t, ledger.RefAdjustment, e.Reference.Kind)
	assert.True(t, f.balance(t, customer, money.Secondary).Equal(d("10")))

	rev, err := f.svc.ReverseEntry(ctx, "", e.ID, day.AddDate(0, 0, 1), "")
	require.NoError(t, err)
	require.NotNil(t, rev.ReversesID)
	assert.Equal(t, e.ID, *rev.ReversesID)
	assert.True(t, rev.Rate.Equal(d("70")))
	assert.True(t, f.balance(t, customer, money.Primary).IsZero())

	_, err = f.svc.ReverseEntry(ctx, "", e.ID, day, "again")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.ReverseEntry(ctx, "", rev.ID, day, "undo the undo")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
