package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=lookup_mock.go -package=importer
type Parties interface {
	GetPartyByCode(ctx context.Context, code string) (*ledger.Party, error)
}

type Pools interface {
	GetPoolByName(ctx context.Context, name string) (*inventory.Pool, error)
}

// Service turns purchase sheets into bookkeeping parameters, resolving
// supplier and material names against the books.
type Service struct {
	parties Parties
	pools   Pools
}

func NewService(parties Parties, pools Pools) *Service {
	return &Service{parties: parties, pools: pools}
}

// Purchases parses r and resolves every row. Nothing is recorded; the caller
// books the result with bookkeeping.RecordPurchases so the sheet lands atomically.
func (s *Service) Purchases(ctx context.Context, r io.Reader) ([]bookkeeping.PurchaseParams, error) {
	rows, err := ParsePurchases(r)
	if err != nil {
		return nil, err
	}

	suppliers := make(map[string]*ledger.Party)
	materials := make(map[string]*inventory.Pool)

	var (
		out  []bookkeeping.PurchaseParams
		errs []error
	)

	for _, row := range rows {
		supplier, err := s.supplier(ctx, suppliers, row)
		if err != nil {
			errs = append(errs, err)
		}

		material, err := s.material(ctx, materials, row)
		if err != nil {
			errs = append(errs, err)
		}

		if supplier == nil || material == nil {
			continue
		}

		out = append(out, bookkeeping.PurchaseParams{
			PartyID:   supplier.ID,
			Date:      row.Date,
			PoolID:    material.ID,
			Quantity:  row.Quantity,
			UnitPrice: bookkeeping.Amount{Value: row.UnitPrice, Currency: row.Currency, Rate: row.Rate},
			Basis:     row.Basis,
		})
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Service) supplier(ctx context.Context, seen map[string]*ledger.Party, row PurchaseRow) (*ledger.Party, error) {
	code := ledger.PartyCode(row.Supplier)

	if p, ok := seen[code]; ok {
		return p, nil
	}

	p, err := s.parties.GetPartyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Invalidf(fmt.Sprintf("row %d supplier", row.Line), "unknown supplier %q", row.Supplier)
		}

		return nil, err
	}

	if p.Kind != ledger.PartySupplier {
		return nil, apperr.Invalidf(fmt.Sprintf("row %d supplier", row.Line), "%s is not a supplier", p.Name)
	}

	seen[code] = p

	return p, nil
}

func (s *Service) material(ctx context.Context, seen map[string]*inventory.Pool, row PurchaseRow) (*inventory.Pool, error) {
	if p, ok := seen[row.Material]; ok {
		return p, nil
	}

	p, err := s.pools.GetPoolByName(ctx, row.Material)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Invalidf(fmt.Sprintf("row %d material", row.Line), "unknown material %q", row.Material)
		}

		return nil, err
	}

	seen[row.Material] = p

	return p, nil
}
