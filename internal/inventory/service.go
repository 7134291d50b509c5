package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=inventory
type Repository interface {
	CreatePool(ctx context.Context, p *Pool) error
	GetPool(ctx context.Context, id uuid.UUID) (*Pool, error)
	GetPoolByName(ctx context.Context, name string) (*Pool, error)
	ListPools(ctx context.Context, kind *Kind) ([]*Pool, error)
	UpdatePool(ctx context.Context, p *Pool) error

	AppendMovement(ctx context.Context, mv *Movement) error
	ListMovements(ctx context.Context, poolID uuid.UUID) ([]*Movement, error)

	CreateFormula(ctx context.Context, f *Formula) error
	GetFormula(ctx context.Context, id uuid.UUID) (*Formula, error)
	GetFormulaByName(ctx context.Context, name string) (*Formula, error)
	ListFormulas(ctx context.Context) ([]*Formula, error)

	CreateBatch(ctx context.Context, b *Batch) error
	GetBatch(ctx context.Context, id uuid.UUID) (*Batch, error)
	ListBatches(ctx context.Context) ([]*Batch, error)
}

// Service answers inventory queries against committed state.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreatePoolParams struct {
	Kind Kind
	Name string
	Unit string
}

func (p CreatePoolParams) Validate() error {
	var errs []error

	if !p.Kind.Valid() {
		errs = append(errs, apperr.Invalidf("kind", "must be %q or %q", KindRawMaterial, KindFinishedFeed))
	}

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, apperr.Invalid("name", "is required"))
	}

	return errors.Join(errs...)
}

// NewPool builds an empty pool from validated params.
func NewPool(params CreatePoolParams) (*Pool, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	unit := strings.TrimSpace(params.Unit)
	if unit == "" {
		unit = "kg"
	}

	return &Pool{
		ID:       uuid.New(),
		Kind:     params.Kind,
		Name:     strings.TrimSpace(params.Name),
		Unit:     unit,
		Stock:    decimal.Zero,
		UnitCost: money.Cost{Primary: decimal.Zero, Secondary: decimal.Zero},
	}, nil
}

func (s *Service) GetPool(ctx context.Context, id uuid.UUID) (*Pool, error) {
	return s.repo.GetPool(ctx, id)
}

func (s *Service) GetPoolByName(ctx context.Context, name string) (*Pool, error) {
	return s.repo.GetPoolByName(ctx, name)
}

func (s *Service) ListPools(ctx context.Context, kind *Kind) ([]*Pool, error) {
	return s.repo.ListPools(ctx, kind)
}

// Movements returns a pool's audit trail, oldest first.
func (s *Service) Movements(ctx context.Context, poolID uuid.UUID) ([]*Movement, error) {
	if _, err := s.repo.GetPool(ctx, poolID); err != nil {
		return nil, err
	}

	return s.repo.ListMovements(ctx, poolID)
}

func (s *Service) GetFormula(ctx context.Context, id uuid.UUID) (*Formula, error) {
	return s.repo.GetFormula(ctx, id)
}

func (s *Service) GetFormulaByName(ctx context.Context, name string) (*Formula, error) {
	return s.repo.GetFormulaByName(ctx, name)
}

func (s *Service) ListFormulas(ctx context.Context) ([]*Formula, error) {
	return s.repo.ListFormulas(ctx)
}

func (s *Service) GetBatch(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return s.repo.GetBatch(ctx, id)
}

func (s *Service) ListBatches(ctx context.Context) ([]*Batch, error) {
	return s.repo.ListBatches(ctx)
}

// PlanBatch previews producing qty of a formula without touching stock.
func (s *Service) PlanBatch(ctx context.Context, formulaID uuid.UUID, qty decimal.Decimal) (*Plan, error) {
	f, err := s.repo.GetFormula(ctx, formulaID)
	if err != nil {
		return nil, err
	}

	materials, err := loadMaterials(ctx, s.repo, f)
	if err != nil {
		return nil, err
	}

	return PlanBatch(f, materials, qty)
}

type ValuationLine struct {
	Pool     *Pool
	Stock    decimal.Decimal
	UnitCost decimal.Decimal
	Value    decimal.Decimal
}

// Valuation is stock on hand priced at weighted-average cost in one currency.
type Valuation struct {
	Currency money.Currency
	Lines    []ValuationLine
	Total    decimal.Decimal
}

// Valuation prices every pool, optionally only those of one kind.
func (s *Service) Valuation(ctx context.Context, c money.Currency, kind *Kind) (*Valuation, error) {
	if !c.Valid() {
		return nil, apperr.Invalidf("currency", "unknown currency %q", c)
	}

	pools, err := s.repo.ListPools(ctx, kind)
	if err != nil {
		return nil, err
	}

	v := &Valuation{Currency: c, Total: decimal.Zero}

	for _, p := range pools {
		value := p.Value().In(c)

		v.Lines = append(v.Lines, ValuationLine{
			Pool:     p,
			Stock:    p.Stock,
			UnitCost: p.UnitCost.In(c),
			Value:    value,
		})
		v.Total = v.Total.Add(value)
	}

	return v, nil
}
