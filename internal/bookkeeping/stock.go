package bookkeeping

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
	"github.com/MrJamesThe3rd/farmbook/internal/unitofwork"
)

// CreateMaterial registers an empty raw-material pool.
func (s *Service) CreateMaterial(ctx context.Context, name, unit string) (*inventory.Pool, error) {
	return s.createPool(ctx, inventory.CreatePoolParams{Kind: inventory.KindRawMaterial, Name: name, Unit: unit})
}

// CreateFeedPool registers an empty finished-feed pool.
func (s *Service) CreateFeedPool(ctx context.Context, name, unit string) (*inventory.Pool, error) {
	return s.createPool(ctx, inventory.CreatePoolParams{Kind: inventory.KindFinishedFeed, Name: name, Unit: unit})
}

func (s *Service) createPool(ctx context.Context, params inventory.CreatePoolParams) (*inventory.Pool, error) {
	pool, err := inventory.NewPool(params)
	if err != nil {
		return nil, err
	}

	_, err = s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpCreatePool,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			return pool.ID, tx.Inventory.CreatePool(ctx, pool)
		},
	})
	if err != nil {
		return nil, err
	}

	return pool, nil
}

type OpeningStockParams struct {
	Key      string
	PoolID   uuid.UUID
	Quantity decimal.Decimal
	UnitCost Amount
}

func (p OpeningStockParams) Validate() error {
	var errs []error

	if p.PoolID == uuid.Nil {
		errs = append(errs, apperr.Invalid("pool_id", "is required"))
	}

	if !p.Quantity.IsPositive() {
		errs = append(errs, apperr.Invalid("quantity", "must be greater than zero"))
	}

	errs = append(errs, p.UnitCost.Validate("unit_cost"))

	return errors.Join(errs...)
}

// ReceiveOpeningStock brings stock on hand into a pool at a known unit cost,
// without a supplier. It returns the pool after the receipt.
func (s *Service) ReceiveOpeningStock(ctx context.Context, params OpeningStockParams) (*inventory.Pool, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	_, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpReceiveOpeningStock,
		Key:  params.Key,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			mv, err := inventory.Receive(ctx, tx.Inventory, params.PoolID, params.Quantity, params.UnitCost.UnitCost(),
				inventory.Reference{Kind: inventory.RefOpeningStock, ID: uuid.New()})
			if err != nil {
				return uuid.Nil, err
			}

			return mv.ID, nil
		},
	})
	if err != nil {
		return nil, err
	}

	return s.stock.GetPool(ctx, params.PoolID)
}

type FormulaParams struct {
	Name        string
	Ingredients []inventory.Ingredient
}

// CreateFormula stores a recipe. Every ingredient must be an existing
// raw-material pool.
func (s *Service) CreateFormula(ctx context.Context, params FormulaParams) (*inventory.Formula, error) {
	if err := inventory.ValidateFormula(params.Name, params.Ingredients); err != nil {
		return nil, err
	}

	f := &inventory.Formula{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(params.Name),
		Ingredients: params.Ingredients,
	}

	_, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpCreateFormula,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			for i, in := range f.Ingredients {
				m, err := tx.Inventory.GetPool(ctx, in.MaterialID)
				if err != nil {
					return uuid.Nil, err
				}

				if m.Kind != inventory.KindRawMaterial {
					return uuid.Nil, apperr.Invalidf("ingredients", "line %d: %s is not a raw material", i+1, m.Name)
				}
			}

			return f.ID, tx.Inventory.CreateFormula(ctx, f)
		},
	})
	if err != nil {
		return nil, err
	}

	return f, nil
}

// CreateShed registers a shed that can receive feed.
func (s *Service) CreateShed(ctx context.Context, name, farm string) (*trade.Shed, error) {
	shed := &trade.Shed{
		ID:   uuid.New(),
		Name: strings.TrimSpace(name),
		Farm: strings.TrimSpace(farm),
	}

	if shed.Name == "" {
		return nil, apperr.Invalid("name", "is required")
	}

	_, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpCreateShed,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			return shed.ID, tx.Trade.CreateShed(ctx, shed)
		},
	})
	if err != nil {
		return nil, err
	}

	return shed, nil
}

type BatchParams struct {
	Key        string
	FormulaID  uuid.UUID
	FeedPoolID uuid.UUID
	Quantity   decimal.Decimal
	Date       time.Time
}

func (p BatchParams) Validate() error {
	var errs []error

	if p.FormulaID == uuid.Nil {
		errs = append(errs, apperr.Invalid("formula_id", "is required"))
	}

	if p.FeedPoolID == uuid.Nil {
		errs = append(errs, apperr.Invalid("feed_pool_id", "is required"))
	}

	if !p.Quantity.IsPositive() {
		errs = append(errs, apperr.Invalid("quantity", "must be greater than zero"))
	}

	return errors.Join(errs...)
}

// ProduceFeedBatch turns raw materials into finished feed following a formula.
// Every ingredient is drawn at its current average; the feed pool receives the
// batch at the summed cost. A shortage in any ingredient fails the whole batch
// and lists every short material.
func (s *Service) ProduceFeedBatch(ctx context.Context, params BatchParams) (*inventory.Batch, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	at := params.Date
	if at.IsZero() {
		at = s.now()
	}

	var batch *inventory.Batch

	res, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpProduceFeedBatch,
		Key:  params.Key,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			b, err := inventory.Produce(ctx, tx.Inventory, params.FormulaID, params.FeedPoolID, params.Quantity, at)
			if err != nil {
				return uuid.Nil, err
			}

			batch = b

			return b.ID, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		return s.stock.GetBatch(ctx, res.RecordID)
	}

	return batch, nil
}

type IssueParams struct {
	Key      string
	ShedID   uuid.UUID
	PoolID   uuid.UUID
	Quantity decimal.Decimal
	Date     time.Time
}

func (p IssueParams) Validate() error {
	var errs []error

	if p.ShedID == uuid.Nil {
		errs = append(errs, apperr.Invalid("shed_id", "is required"))
	}

	if p.PoolID == uuid.Nil {
		errs = append(errs, apperr.Invalid("pool_id", "is required"))
	}

	if !p.Quantity.IsPositive() {
		errs = append(errs, apperr.Invalid("quantity", "must be greater than zero"))
	}

	return errors.Join(errs...)
}

// IssueFeed hands finished feed to a shed at the pool's current average.
func (s *Service) IssueFeed(ctx context.Context, params IssueParams) (*trade.FeedIssue, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var issue *trade.FeedIssue

	res, err := s.uow.Execute(ctx, unitofwork.Operation{
		Kind: OpIssueFeed,
		Key:  params.Key,
		Run: func(ctx context.Context, tx *unitofwork.Tx) (uuid.UUID, error) {
			if _, err := tx.Trade.GetShed(ctx, params.ShedID); err != nil {
				return uuid.Nil, err
			}

			pool, err := tx.Inventory.GetPool(ctx, params.PoolID)
			if err != nil {
				return uuid.Nil, err
			}

			if pool.Kind != inventory.KindFinishedFeed {
				return uuid.Nil, apperr.Invalidf("pool_id", "pool %s is not a finished feed pool", pool.Name)
			}

			r := &trade.FeedIssue{
				ID:       uuid.New(),
				ShedID:   params.ShedID,
				PoolID:   pool.ID,
				Date:     s.date(params.Date),
				Quantity: params.Quantity,
			}

			mv, err := inventory.Issue(ctx, tx.Inventory, pool.ID, params.Quantity,
				inventory.Reference{Kind: inventory.RefFeedIssue, ID: r.ID})
			if err != nil {
				return uuid.Nil, err
			}

			r.UnitCost = mv.UnitCost
			r.Total = mv.UnitCost.Total(params.Quantity)
			r.MovementID = mv.ID

			if err := tx.Trade.CreateFeedIssue(ctx, r); err != nil {
				return uuid.Nil, err
			}

			issue = r

			return r.ID, nil
		},
	})
	if err != nil {
		return nil, err
	}

	if res.Replayed {
		return s.trades.GetFeedIssue(ctx, res.RecordID)
	}

	return issue, nil
}
