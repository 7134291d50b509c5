package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/http/respond"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
)

type partyResponse struct {
	ID        uuid.UUID        `json:"id"`
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	Kind      ledger.PartyKind `json:"kind"`
	CreatedAt time.Time        `json:"created_at"`
}

type totalsResponse struct {
	Primary   decimal.Decimal `json:"primary"`
	Secondary decimal.Decimal `json:"secondary"`
}

type partyBalanceResponse struct {
	Party   partyResponse  `json:"party"`
	Balance totalsResponse `json:"balance"`
}

type balanceResponse struct {
	PartyID  uuid.UUID       `json:"party_id"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

type entryResponse struct {
	ID          uuid.UUID        `json:"id"`
	PartyID     uuid.UUID        `json:"party_id"`
	Date        respond.Date     `json:"date"`
	Description string           `json:"description"`
	Direction   ledger.Direction `json:"direction"`
	Amount      respond.Pair     `json:"amount"`
	RefKind     ledger.RefKind   `json:"reference_kind"`
	RefID       uuid.UUID        `json:"reference_id"`
	ReversesID  *uuid.UUID       `json:"reverses_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

type lineResponse struct {
	Entry   entryResponse   `json:"entry"`
	Balance decimal.Decimal `json:"balance"`
}

type statementLineResponse struct {
	Entry   entryResponse  `json:"entry"`
	Balance totalsResponse `json:"balance"`
}

type statementResponse struct {
	PartyID uuid.UUID               `json:"party_id"`
	From    respond.Date            `json:"from"`
	To      respond.Date            `json:"to"`
	Opening totalsResponse          `json:"opening"`
	Lines   []statementLineResponse `json:"lines"`
	Closing totalsResponse          `json:"closing"`
}

func toPartyResponse(p *ledger.Party) partyResponse {
	return partyResponse{ID: p.ID, Code: p.Code, Name: p.Name, Kind: p.Kind, CreatedAt: p.CreatedAt}
}

func toTotals(t ledger.Totals) totalsResponse {
	return totalsResponse{Primary: t.Primary, Secondary: t.Secondary}
}

func toEntryResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		PartyID:     e.PartyID,
		Date:        respond.Date{Time: e.Date},
		Description: e.Description,
		Direction:   e.Direction(),
		Amount:      respond.FromPair(e.Amount()),
		RefKind:     e.Reference.Kind,
		RefID:       e.Reference.ID,
		ReversesID:  e.ReversesID,
		CreatedAt:   e.CreatedAt,
	}
}

func toStatementResponse(st *ledger.Statement) statementResponse {
	resp := statementResponse{
		PartyID: st.PartyID,
		From:    respond.Date{Time: st.Range.From},
		To:      respond.Date{Time: st.Range.To},
		Opening: toTotals(st.Opening),
		Lines:   make([]statementLineResponse, len(st.Lines)),
		Closing: toTotals(st.Closing),
	}

	for i, l := range st.Lines {
		resp.Lines[i] = statementLineResponse{Entry: toEntryResponse(l.Entry), Balance: toTotals(l.Balance)}
	}

	return resp
}
