package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

// Writer is the write surface the costing engine needs. Stores bound to a
// unit-of-work transaction satisfy it.
type Writer interface {
	GetPool(ctx context.Context, id uuid.UUID) (*Pool, error)
	UpdatePool(ctx context.Context, p *Pool) error
	AppendMovement(ctx context.Context, mv *Movement) error
}

// BatchWriter additionally reads formulas and stores batches.
type BatchWriter interface {
	Writer
	GetFormula(ctx context.Context, id uuid.UUID) (*Formula, error)
	CreateBatch(ctx context.Context, b *Batch) error
}

// Receive adds qty at unitCost to a pool and records the movement.
func Receive(ctx context.Context, w Writer, poolID uuid.UUID, qty decimal.Decimal, unitCost money.Cost, ref Reference) (*Movement, error) {
	p, err := w.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	next, mv, err := ApplyInflow(*p, qty, unitCost)
	if err != nil {
		return nil, err
	}

	return persist(ctx, w, &next, mv, ref)
}

// Issue takes qty out of a pool at its current average and records the movement.
func Issue(ctx context.Context, w Writer, poolID uuid.UUID, qty decimal.Decimal, ref Reference) (*Movement, error) {
	p, err := w.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	next, mv, err := ApplyOutflow(*p, qty)
	if err != nil {
		return nil, err
	}

	return persist(ctx, w, &next, mv, ref)
}

func persist(ctx context.Context, w Writer, p *Pool, mv Movement, ref Reference) (*Movement, error) {
	mv.Reference = ref

	if err := w.UpdatePool(ctx, p); err != nil {
		return nil, fmt.Errorf("updating pool %s: %w", p.Name, err)
	}

	if err := w.AppendMovement(ctx, &mv); err != nil {
		return nil, fmt.Errorf("recording movement: %w", err)
	}

	return &mv, nil
}

// Produce runs one batch of formulaID into the finished-feed pool feedPoolID.
// Every ingredient is checked before any stock is touched; if one is short the
// call fails listing all of them and nothing changes.
func Produce(ctx context.Context, w BatchWriter, formulaID, feedPoolID uuid.UUID, qty decimal.Decimal, at time.Time) (*Batch, error) {
	if !qty.IsPositive() {
		return nil, apperr.Invalid("quantity", "must be greater than zero")
	}

	f, err := w.GetFormula(ctx, formulaID)
	if err != nil {
		return nil, err
	}

	feed, err := w.GetPool(ctx, feedPoolID)
	if err != nil {
		return nil, err
	}

	if feed.Kind != KindFinishedFeed {
		return nil, apperr.Invalidf("feed_pool_id", "pool %s is not a finished feed pool", feed.Name)
	}

	materials, err := loadMaterials(ctx, w, f)
	if err != nil {
		return nil, err
	}

	if _, ok := materials[feed.ID]; ok {
		return nil, apperr.Invalidf("feed_pool_id", "pool %s is also an ingredient of %s", feed.Name, f.Name)
	}

	plan, err := PlanBatch(f, materials, qty)
	if err != nil {
		return nil, err
	}

	if err := plan.Err(); err != nil {
		return nil, err
	}

	b := &Batch{
		ID:         uuid.New(),
		FormulaID:  f.ID,
		FeedPoolID: feed.ID,
		Quantity:   qty,
		TotalCost:  plan.TotalCost,
		UnitCost:   plan.UnitCost,
		ProducedAt: at.UTC(),
	}

	for _, req := range plan.Requirements {
		if _, err := Issue(ctx, w, req.Material.ID, req.Quantity, Reference{Kind: RefBatchInput, ID: b.ID}); err != nil {
			return nil, err
		}
	}

	if _, err := Receive(ctx, w, feed.ID, qty, plan.UnitCost, Reference{Kind: RefBatchOutput, ID: b.ID}); err != nil {
		return nil, err
	}

	if err := w.CreateBatch(ctx, b); err != nil {
		return nil, fmt.Errorf("creating batch: %w", err)
	}

	return b, nil
}

type poolReader interface {
	GetPool(ctx context.Context, id uuid.UUID) (*Pool, error)
}

func loadMaterials(ctx context.Context, r poolReader, f *Formula) (map[uuid.UUID]Pool, error) {
	materials := make(map[uuid.UUID]Pool, len(f.Ingredients))

	for _, in := range f.Ingredients {
		m, err := r.GetPool(ctx, in.MaterialID)
		if err != nil {
			return nil, err
		}

		materials[m.ID] = *m
	}

	return materials, nil
}
