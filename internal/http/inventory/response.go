package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/http/respond"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
)

type poolResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      inventory.Kind  `json:"kind"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Stock     decimal.Decimal `json:"stock"`
	UnitCost  respond.Cost    `json:"unit_cost"`
	Value     respond.Cost    `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type movementResponse struct {
	ID          uuid.UUID           `json:"id"`
	Direction   inventory.Direction `json:"direction"`
	Quantity    decimal.Decimal     `json:"quantity"`
	UnitCost    respond.Cost        `json:"unit_cost"`
	StockBefore decimal.Decimal     `json:"stock_before"`
	StockAfter  decimal.Decimal     `json:"stock_after"`
	AvgBefore   respond.Cost        `json:"avg_before"`
	AvgAfter    respond.Cost        `json:"avg_after"`
	RefKind     inventory.RefKind   `json:"reference_kind"`
	RefID       uuid.UUID           `json:"reference_id"`
	CreatedAt   time.Time           `json:"created_at"`
}

type valuationLineResponse struct {
	PoolID   uuid.UUID       `json:"pool_id"`
	Name     string          `json:"name"`
	Kind     inventory.Kind  `json:"kind"`
	Stock    decimal.Decimal `json:"stock"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Value    decimal.Decimal `json:"value"`
}

type valuationResponse struct {
	Currency string                  `json:"currency"`
	Lines    []valuationLineResponse `json:"lines"`
	Total    decimal.Decimal         `json:"total"`
}

type ingredientResponse struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Percentage decimal.Decimal `json:"percentage"`
}

type formulaResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Ingredients []ingredientResponse `json:"ingredients"`
	CreatedAt   time.Time            `json:"created_at"`
}

type requirementResponse struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	Quantity   decimal.Decimal `json:"quantity"`
	Available  decimal.Decimal `json:"available"`
	Cost       respond.Cost    `json:"cost"`
}

type shortageResponse struct {
	PoolID    uuid.UUID       `json:"pool_id"`
	Name      string          `json:"name"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
}

type planResponse struct {
	FormulaID    uuid.UUID             `json:"formula_id"`
	Quantity     decimal.Decimal       `json:"quantity"`
	Requirements []requirementResponse `json:"requirements"`
	Shortages    []shortageResponse    `json:"shortages"`
	TotalCost    respond.Cost          `json:"total_cost"`
	UnitCost     respond.Cost          `json:"unit_cost"`
	Feasible     bool                  `json:"feasible"`
}

type batchResponse struct {
	ID         uuid.UUID       `json:"id"`
	FormulaID  uuid.UUID       `json:"formula_id"`
	FeedPoolID uuid.UUID       `json:"feed_pool_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	TotalCost  respond.Cost    `json:"total_cost"`
	UnitCost   respond.Cost    `json:"unit_cost"`
	ProducedAt respond.Date    `json:"produced_at"`
}

type issueResponse struct {
	ID         uuid.UUID       `json:"id"`
	ShedID     uuid.UUID       `json:"shed_id"`
	PoolID     uuid.UUID       `json:"pool_id"`
	Date       respond.Date    `json:"date"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   respond.Cost    `json:"unit_cost"`
	Total      respond.Cost    `json:"total"`
	MovementID uuid.UUID       `json:"movement_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

func toPoolResponse(p *inventory.Pool) poolResponse {
	return poolResponse{
		ID:        p.ID,
		Kind:      p.Kind,
		Name:      p.Name,
		Unit:      p.Unit,
		Stock:     p.Stock,
		UnitCost:  respond.FromCost(p.UnitCost),
		Value:     respond.FromCost(p.Value()),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toMovementResponse(mv *inventory.Movement) movementResponse {
	return movementResponse{
		ID:          mv.ID,
		Direction:   mv.Direction,
		Quantity:    mv.Quantity,
		UnitCost:    respond.FromCost(mv.UnitCost),
		StockBefore: mv.StockBefore,
		StockAfter:  mv.StockAfter,
		AvgBefore:   respond.FromCost(mv.AvgBefore),
		AvgAfter:    respond.FromCost(mv.AvgAfter),
		RefKind:     mv.Reference.Kind,
		RefID:       mv.Reference.ID,
		CreatedAt:   mv.CreatedAt,
	}
}

func toValuationResponse(v *inventory.Valuation) valuationResponse {
	resp := valuationResponse{
		Currency: string(v.Currency),
		Lines:    make([]valuationLineResponse, len(v.Lines)),
		Total:    v.Total,
	}

	for i, l := range v.Lines {
		resp.Lines[i] = valuationLineResponse{
			PoolID:   l.Pool.ID,
			Name:     l.Pool.Name,
			Kind:     l.Pool.Kind,
			Stock:    l.Stock,
			UnitCost: l.UnitCost,
			Value:    l.Value,
		}
	}

	return resp
}

func toFormulaResponse(f *inventory.Formula) formulaResponse {
	resp := formulaResponse{
		ID:          f.ID,
		Name:        f.Name,
		Ingredients: make([]ingredientResponse, len(f.Ingredients)),
		CreatedAt:   f.CreatedAt,
	}

	for i, in := range f.Ingredients {
		resp.Ingredients[i] = ingredientResponse{MaterialID: in.MaterialID, Percentage: in.Percentage}
	}

	return resp
}

func toPlanResponse(p *inventory.Plan) planResponse {
	resp := planResponse{
		FormulaID:    p.Formula.ID,
		Quantity:     p.Quantity,
		Requirements: make([]requirementResponse, len(p.Requirements)),
		Shortages:    make([]shortageResponse, len(p.Shortages)),
		TotalCost:    respond.FromCost(p.TotalCost),
		UnitCost:     respond.FromCost(p.UnitCost),
		Feasible:     len(p.Shortages) == 0,
	}

	for i, req := range p.Requirements {
		resp.Requirements[i] = requirementResponse{
			MaterialID: req.Material.ID,
			Name:       req.Material.Name,
			Percentage: req.Percentage,
			Quantity:   req.Quantity,
			Available:  req.Material.Stock,
			Cost:       respond.FromCost(req.Cost),
		}
	}

	for i, s := range p.Shortages {
		resp.Shortages[i] = shortageResponse{PoolID: s.PoolID, Name: s.Name, Required: s.Required, Available: s.Available}
	}

	return resp
}

func toBatchResponse(b *inventory.Batch) batchResponse {
	return batchResponse{
		ID:         b.ID,
		FormulaID:  b.FormulaID,
		FeedPoolID: b.FeedPoolID,
		Quantity:   b.Quantity,
		TotalCost:  respond.FromCost(b.TotalCost),
		UnitCost:   respond.FromCost(b.UnitCost),
		ProducedAt: respond.Date{Time: b.ProducedAt},
	}
}

func toIssueResponse(fi *trade.FeedIssue) issueResponse {
	return issueResponse{
		ID:         fi.ID,
		ShedID:     fi.ShedID,
		PoolID:     fi.PoolID,
		Date:       respond.Date{Time: fi.Date},
		Quantity:   fi.Quantity,
		UnitCost:   respond.FromCost(fi.UnitCost),
		Total:      respond.FromCost(fi.Total),
		MovementID: fi.MovementID,
		CreatedAt:  fi.CreatedAt,
	}
}
