// Package catalog seeds a fresh book from a YAML file: parties, sheds,
// materials with their opening stock, feed pools and formulas.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
)

type Catalog struct {
	Parties   []Party   `yaml:"parties"`
	Sheds     []Shed    `yaml:"sheds"`
	Materials []Pool    `yaml:"materials"`
	Feeds     []Pool    `yaml:"feeds"`
	Formulas  []Formula `yaml:"formulas"`
}

type Party struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

type Shed struct {
	Name string `yaml:"name"`
	Farm string `yaml:"farm"`
}

// Pool is a stock pool, optionally with stock already on hand.
type Pool struct {
	Name         string          `yaml:"name"`
	Unit         string          `yaml:"unit"`
	OpeningStock decimal.Decimal `yaml:"opening_stock"`
	UnitCost     decimal.Decimal `yaml:"unit_cost"`
	Currency     string          `yaml:"currency"`
	Rate         decimal.Decimal `yaml:"rate"`
}

type Formula struct {
	Name        string       `yaml:"name"`
	Ingredients []Ingredient `yaml:"ingredients"`
}

type Ingredient struct {
	Material   string          `yaml:"material"`
	Percentage decimal.Decimal `yaml:"percentage"`
}

func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return &c, nil
}

// Summary counts what Apply created. Existing records are left untouched.
type Summary struct {
	Parties   int
	Sheds     int
	Materials int
	Feeds     int
	Formulas  int
}

type Seeder struct {
	books  *bookkeeping.Service
	ledger *ledger.Service
	stock  *inventory.Service
	trades *trade.Service
	log    *zap.Logger
}

func NewSeeder(books *bookkeeping.Service, ledgerSvc *ledger.Service, stock *inventory.Service, trades *trade.Service, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}

	return &Seeder{books: books, ledger: ledgerSvc, stock: stock, trades: trades, log: log}
}

// Apply creates whatever in c does not exist yet, matching parties by code and
// everything else by name. Running it twice is a no-op.
func (s *Seeder) Apply(ctx context.Context, c *Catalog) (*Summary, error) {
	var sum Summary

	for _, p := range c.Parties {
		created, err := s.party(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("party %q: %w", p.Name, err)
		}

		if created {
			sum.Parties++
		}
	}

	for _, sh := range c.Sheds {
		created, err := s.shed(ctx, sh)
		if err != nil {
			return nil, fmt.Errorf("shed %q: %w", sh.Name, err)
		}

		if created {
			sum.Sheds++
		}
	}

	for _, m := range c.Materials {
		created, err := s.pool(ctx, inventory.KindRawMaterial, m)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", m.Name, err)
		}

		if created {
			sum.Materials++
		}
	}

	for _, fp := range c.Feeds {
		created, err := s.pool(ctx, inventory.KindFinishedFeed, fp)
		if err != nil {
			return nil, fmt.Errorf("feed %q: %w", fp.Name, err)
		}

		if created {
			sum.Feeds++
		}
	}

	for _, f := range c.Formulas {
		created, err := s.formula(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("formula %q: %w", f.Name, err)
		}

		if created {
			sum.Formulas++
		}
	}

	s.log.Info("catalog applied",
		zap.Int("parties", sum.Parties),
		zap.Int("sheds", sum.Sheds),
		zap.Int("materials", sum.Materials),
		zap.Int("feeds", sum.Feeds),
		zap.Int("formulas", sum.Formulas),
	)

	return &sum, nil
}

func (s *Seeder) party(ctx context.Context, p Party) (bool, error) {
	_, err := s.ledger.GetPartyByCode(ctx, ledger.PartyCode(p.Name))
	if exists, err := found(err); exists || err != nil {
		return false, err
	}

	if _, err := s.ledger.CreateParty(ctx, ledger.CreatePartyParams{Name: p.Name, Kind: ledger.PartyKind(p.Kind)}); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Seeder) shed(ctx context.Context, sh Shed) (bool, error) {
	_, err := s.trades.GetShedByName(ctx, strings.TrimSpace(sh.Name))
	if exists, err := found(err); exists || err != nil {
		return false, err
	}

	if _, err := s.books.CreateShed(ctx, sh.Name, sh.Farm); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Seeder) pool(ctx context.Context, kind inventory.Kind, p Pool) (bool, error) {
	_, err := s.stock.GetPoolByName(ctx, strings.TrimSpace(p.Name))
	if exists, err := found(err); exists || err != nil {
		return false, err
	}

	create := s.books.CreateMaterial
	if kind == inventory.KindFinishedFeed {
		create = s.books.CreateFeedPool
	}

	pool, err := create(ctx, p.Name, p.Unit)
	if err != nil {
		return false, err
	}

	if !p.OpeningStock.IsPositive() {
		return true, nil
	}

	cur := money.Primary
	if p.Currency != "" {
		if cur, err = money.ParseCurrency(p.Currency); err != nil {
			return false, apperr.Invalid("currency", err.Error())
		}
	}

	_, err = s.books.ReceiveOpeningStock(ctx, bookkeeping.OpeningStockParams{
		Key:      "seed:opening:" + pool.ID.String(),
		PoolID:   pool.ID,
		Quantity: p.OpeningStock,
		UnitCost: bookkeeping.Amount{Value: p.UnitCost, Currency: cur, Rate: p.Rate},
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *Seeder) formula(ctx context.Context, f Formula) (bool, error) {
	_, err := s.stock.GetFormulaByName(ctx, strings.TrimSpace(f.Name))
	if exists, err := found(err); exists || err != nil {
		return false, err
	}

	params := bookkeeping.FormulaParams{Name: f.Name}

	for _, in := range f.Ingredients {
		m, err := s.stock.GetPoolByName(ctx, strings.TrimSpace(in.Material))
		if err != nil {
			return false, err
		}

		params.Ingredients = append(params.Ingredients, inventory.Ingredient{MaterialID: m.ID, Percentage: in.Percentage})
	}

	if _, err := s.books.CreateFormula(ctx, params); err != nil {
		return false, err
	}

	return true, nil
}

// found reports whether a lookup hit, treating NotFound as a clean miss.
func found(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperr.ErrNotFound):
		return false, nil
	}

	return false, err
}
