package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/http/respond"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
)

type saleResponse struct {
	ID         uuid.UUID       `json:"id"`
	PartyID    uuid.UUID       `json:"party_id"`
	Date       respond.Date    `json:"date"`
	Product    string          `json:"product"`
	PoolID     *uuid.UUID      `json:"pool_id,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  respond.Cost    `json:"unit_price"`
	Total      respond.Pair    `json:"total"`
	Cost       respond.Cost    `json:"cost_of_goods"`
	Basis      trade.Basis     `json:"basis"`
	EntryID    uuid.UUID       `json:"entry_id"`
	PaymentID  *uuid.UUID      `json:"payment_id,omitempty"`
	MovementID *uuid.UUID      `json:"movement_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type purchaseResponse struct {
	ID         uuid.UUID       `json:"id"`
	PartyID    uuid.UUID       `json:"party_id"`
	Date       respond.Date    `json:"date"`
	PoolID     uuid.UUID       `json:"pool_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  respond.Cost    `json:"unit_price"`
	Total      respond.Pair    `json:"total"`
	Basis      trade.Basis     `json:"basis"`
	EntryID    uuid.UUID       `json:"entry_id"`
	PaymentID  *uuid.UUID      `json:"payment_id,omitempty"`
	MovementID uuid.UUID       `json:"movement_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

type importResponse struct {
	Imported  int                `json:"imported"`
	Replayed  bool               `json:"replayed"`
	Purchases []purchaseResponse `json:"purchases"`
}

type expenseResponse struct {
	ID          uuid.UUID    `json:"id"`
	PartyID     *uuid.UUID   `json:"party_id,omitempty"`
	Date        respond.Date `json:"date"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Amount      respond.Pair `json:"amount"`
	Basis       trade.Basis  `json:"basis"`
	EntryID     *uuid.UUID   `json:"entry_id,omitempty"`
	PaymentID   *uuid.UUID   `json:"payment_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

type paymentResponse struct {
	ID          uuid.UUID              `json:"id"`
	PartyID     uuid.UUID              `json:"party_id"`
	Date        respond.Date           `json:"date"`
	Direction   trade.PaymentDirection `json:"direction"`
	Description string                 `json:"description"`
	Amount      respond.Pair           `json:"amount"`
	Origin      trade.Origin           `json:"origin"`
	OriginID    *uuid.UUID             `json:"origin_id,omitempty"`
	EntryID     uuid.UUID              `json:"entry_id"`
	CreatedAt   time.Time              `json:"created_at"`
}

type shedResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Farm      string    `json:"farm,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toSaleResponse(s *trade.Sale) saleResponse {
	return saleResponse{
		ID:         s.ID,
		PartyID:    s.PartyID,
		Date:       respond.Date{Time: s.Date},
		Product:    s.Product,
		PoolID:     s.PoolID,
		Quantity:   s.Quantity,
		UnitPrice:  respond.FromCost(s.UnitPrice),
		Total:      respond.FromPair(s.Total),
		Cost:       respond.FromCost(s.Cost),
		Basis:      s.Basis,
		EntryID:    s.EntryID,
		PaymentID:  s.PaymentID,
		MovementID: s.MovementID,
		CreatedAt:  s.CreatedAt,
	}
}

func toPurchaseResponse(p *trade.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:         p.ID,
		PartyID:    p.PartyID,
		Date:       respond.Date{Time: p.Date},
		PoolID:     p.PoolID,
		Quantity:   p.Quantity,
		UnitPrice:  respond.FromCost(p.UnitPrice),
		Total:      respond.FromPair(p.Total),
		Basis:      p.Basis,
		EntryID:    p.EntryID,
		PaymentID:  p.PaymentID,
		MovementID: p.MovementID,
		CreatedAt:  p.CreatedAt,
	}
}

func toExpenseResponse(e *trade.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		PartyID:     e.PartyID,
		Date:        respond.Date{Time: e.Date},
		Category:    e.Category,
		Description: e.Description,
		Amount:      respond.FromPair(e.Amount),
		Basis:       e.Basis,
		EntryID:     e.EntryID,
		PaymentID:   e.PaymentID,
		CreatedAt:   e.CreatedAt,
	}
}

func toPaymentResponse(p *trade.Payment) paymentResponse {
	return paymentResponse{
		ID:          p.ID,
		PartyID:     p.PartyID,
		Date:        respond.Date{Time: p.Date},
		Direction:   p.Direction,
		Description: p.Description,
		Amount:      respond.FromPair(p.Amount),
		Origin:      p.Origin,
		OriginID:    p.OriginID,
		EntryID:     p.EntryID,
		CreatedAt:   p.CreatedAt,
	}
}

func toShedResponse(s *trade.Shed) shedResponse {
	return shedResponse{ID: s.ID, Name: s.Name, Farm: s.Farm, CreatedAt: s.CreatedAt}
}
