package catalog_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/catalog"
	"github.com/MrJamesThe3rd/farmbook/internal/database"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	inventorystore "github.com/MrJamesThe3rd/farmbook/internal/inventory/store"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	ledgerstore "github.com/MrJamesThe3rd/farmbook/internal/ledger/store"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
	tradestore "github.com/MrJamesThe3rd/farmbook/internal/trade/store"
	"github.com/MrJamesThe3rd/farmbook/internal/unitofwork"
)

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := catalog.Parse(strings.NewReader("parties:\n  - name: X\n    kind: customer\n    colour: red\n"))
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	c, err := catalog.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Parties)
}

func TestSeeder_Apply(t *testing.T) {
	db, err := database.New(database.DriverSQLite, database.SQLiteDSN(filepath.Join(t.TempDir(), "seed.db")))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	ls, is, ts := ledgerstore.New(db), inventorystore.New(db), tradestore.New(db)
	log := zaptest.NewLogger(t)

	var (
		ledgerSvc = ledger.NewService(ls)
		stockSvc  = inventory.NewService(is)
		books     = bookkeeping.NewService(unitofwork.New(db, log, nil), ls, is, ts)
		seeder    = catalog.NewSeeder(books, ledgerSvc, stockSvc, trade.NewService(ts), log)
	)

	c, err := catalog.Load(filepath.Join("testdata", "farm.yaml"))
	require.NoError(t, err)

	ctx := context.Background()

	sum, err := seeder.Apply(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, catalog.Summary{Parties: 2, Sheds: 2, Materials: 3, Feeds: 1, Formulas: 1}, *sum)

	soy, err := stockSvc.GetPoolByName(ctx, "Soybean Meal")
	require.NoError(t, err)
	assert.True(t, soy.Stock.Equal(decimal.NewFromInt(50)))
	assert.True(t, soy.UnitCost.Primary.Equal(decimal.RequireFromString("17.5")), "unit cost %s", soy.UnitCost.Primary)

	again, err := seeder.Apply(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, catalog.Summary{}, *again)

	maize, err := stockSvc.GetPoolByName(ctx, "Maize")
	require.NoError(t, err)
	assert.True(t, maize.Stock.Equal(decimal.NewFromInt(100)))

	f, err := stockSvc.GetFormulaByName(ctx, "Layer 60/40")
	require.NoError(t, err)
	require.Len(t, f.Ingredients, 2)
	assert.Equal(t, maize.ID, f.Ingredients[0].MaterialID)
}
