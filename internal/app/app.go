// Package app wires the stores, services and coordinator shared by the API
// server and the terminal UI.
package app

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/catalog"
	"github.com/MrJamesThe3rd/farmbook/internal/export"
	farmHttp "github.com/MrJamesThe3rd/farmbook/internal/http"
	exportHandler "github.com/MrJamesThe3rd/farmbook/internal/http/export"
	inventoryHandler "github.com/MrJamesThe3rd/farmbook/internal/http/inventory"
	ledgerHandler "github.com/MrJamesThe3rd/farmbook/internal/http/ledger"
	tradeHandler "github.com/MrJamesThe3rd/farmbook/internal/http/trade"
	"github.com/MrJamesThe3rd/farmbook/internal/importer"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	inventoryStore "github.com/MrJamesThe3rd/farmbook/internal/inventory/store"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/farmbook/internal/ledger/store"
	"github.com/MrJamesThe3rd/farmbook/internal/logger"
	"github.com/MrJamesThe3rd/farmbook/internal/metrics"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
	tradeStore "github.com/MrJamesThe3rd/farmbook/internal/trade/store"
	"github.com/MrJamesThe3rd/farmbook/internal/unitofwork"
)

type App struct {
	Ledger    *ledger.Service
	Inventory *inventory.Service
	Trade     *trade.Service
	Books     *bookkeeping.Service
	Importer  *importer.Service
	Exporter  *export.Service
	Seeder    *catalog.Seeder

	log      *zap.Logger
	gatherer prometheus.Gatherer
}

// New builds every service on db. Metrics are registered with reg; a nil reg
// uses the default prometheus registry.
func New(db *sql.DB, log *zap.Logger, reg *prometheus.Registry) *App {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)

	if reg != nil {
		registerer, gatherer = reg, reg
	}

	var (
		ls = ledgerStore.New(db)
		is = inventoryStore.New(db)
		ts = tradeStore.New(db)
	)

	uow := unitofwork.New(db, logger.Named(log, "unitofwork"), metrics.NewUnitOfWork(registerer))

	var (
		ledgerService    = ledger.NewService(ls)
		inventoryService = inventory.NewService(is)
		tradeService     = trade.NewService(ts)
		books            = bookkeeping.NewService(uow, ls, is, ts)
	)

	return &App{
		Ledger:    ledgerService,
		Inventory: inventoryService,
		Trade:     tradeService,
		Books:     books,
		Importer:  importer.NewService(ledgerService, inventoryService),
		Exporter:  export.NewService(ledgerService),
		Seeder:    catalog.NewSeeder(books, ledgerService, inventoryService, tradeService, logger.Named(log, "catalog")),
		log:       log,
		gatherer:  gatherer,
	}
}

// Handler returns the HTTP API with /metrics served from the app's registry.
func (a *App) Handler(corsOrigins []string) http.Handler {
	httpLog := logger.Named(a.log, "http")

	var (
		ledgerH    = ledgerHandler.NewHandler(a.Ledger, a.Books, httpLog)
		tradeH     = tradeHandler.NewHandler(a.Trade, a.Books, a.Importer, httpLog)
		inventoryH = inventoryHandler.NewHandler(a.Inventory, a.Trade, a.Books, httpLog)
		exportH    = exportHandler.NewHandler(a.Exporter, httpLog)
	)

	return farmHttp.New(ledgerH, tradeH, inventoryH, exportH, farmHttp.Options{
		CORSOrigins: corsOrigins,
		Gatherer:    a.gatherer,
		Log:         httpLog,
	})
}
