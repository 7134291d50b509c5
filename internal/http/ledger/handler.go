package ledger

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/http/respond"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
)

type Handler struct {
	svc   *ledger.Service
	books *bookkeeping.Service
	log   *zap.Logger
}

func NewHandler(svc *ledger.Service, books *bookkeeping.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, books: books, log: log}
}

func (h *Handler) PartyRoutes(r chi.Router) {
	r.Post("/", h.createParty)
	r.Get("/", h.listParties)
	r.Get("/balances", h.balances)
	r.Get("/{id}", h.getParty)
	r.Get("/{id}/balance", h.balance)
	r.Get("/{id}/ledger", h.running)
	r.Get("/{id}/statement", h.statement)
}

func (h *Handler) EntryRoutes(r chi.Router) {
	r.Post("/entries", h.post)
	r.Get("/entries/{id}", h.getEntry)
	r.Post("/entries/{id}/reverse", h.reverse)
}

type createPartyRequest struct {
	Name string           `json:"name"`
	Kind ledger.PartyKind `json:"kind"`
}

func (h *Handler) createParty(w http.ResponseWriter, r *http.Request) {
	var req createPartyRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	p, err := h.svc.CreateParty(r.Context(), ledger.CreatePartyParams{Name: req.Name, Kind: req.Kind})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toPartyResponse(p))
}

func (h *Handler) listParties(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFilter(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	parties, err := h.svc.ListParties(r.Context(), kind)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]partyResponse, len(parties))
	for i, p := range parties {
		resp[i] = toPartyResponse(p)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) balances(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFilter(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	asOf, err := respond.QueryDate(r, "as_of")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	rows, err := h.svc.Balances(r.Context(), kind, asOf)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]partyBalanceResponse, len(rows))
	for i, row := range rows {
		resp[i] = partyBalanceResponse{Party: toPartyResponse(row.Party), Balance: toTotals(row.Balance)}
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) getParty(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	p, err := h.svc.GetParty(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toPartyResponse(p))
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	asOf, err := respond.QueryDate(r, "as_of")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	c := respond.Currency(r.URL.Query().Get("currency"))

	b, err := h.svc.Balance(r.Context(), id, c, asOf)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, balanceResponse{PartyID: id, Currency: string(c), Balance: b})
}

func (h *Handler) running(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	c := respond.Currency(r.URL.Query().Get("currency"))

	lines, err := h.svc.RunningBalance(r.Context(), id, c)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]lineResponse, len(lines))
	for i, l := range lines {
		resp[i] = lineResponse{Entry: toEntryResponse(l.Entry), Balance: l.Balance}
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	rng, err := respond.QueryRange(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	st, err := h.svc.Statement(r.Context(), id, rng)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toStatementResponse(st))
}

type postEntryRequest struct {
	PartyID     uuid.UUID        `json:"party_id"`
	Date        respond.Date     `json:"date"`
	Description string           `json:"description"`
	Direction   ledger.Direction `json:"direction"`
	Amount      respond.Amount   `json:"amount"`
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var req postEntryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	amount := req.Amount.Books()
	if err := amount.Validate("amount"); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	pair, err := amount.Pair()
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	var params ledger.PostParams

	switch req.Direction {
	case ledger.Debit:
		params = ledger.DebitOf(req.PartyID, req.Date.Time, req.Description, pair, ledger.Reference{})
	case ledger.Credit:
		params = ledger.CreditOf(req.PartyID, req.Date.Time, req.Description, pair, ledger.Reference{})
	default:
		respond.Error(w, h.log, apperr.Invalidf("direction", "must be %q or %q", ledger.Debit, ledger.Credit))
		return
	}

	e, err := h.books.PostLedgerEntry(r.Context(), respond.Key(r), params)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toEntryResponse(e))
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	e, err := h.svc.GetEntry(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toEntryResponse(e))
}

type reverseRequest struct {
	Date   respond.Date `json:"date"`
	Reason string       `json:"reason"`
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	var req reverseRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	e, err := h.books.ReverseEntry(r.Context(), respond.Key(r), id, req.Date.Time, req.Reason)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toEntryResponse(e))
}

func kindFilter(r *http.Request) (*ledger.PartyKind, error) {
	s := r.URL.Query().Get("kind")
	if s == "" {
		return nil, nil
	}

	k := ledger.PartyKind(s)
	if !k.Valid() {
		return nil, apperr.Invalidf("kind", "must be %q or %q", ledger.PartyCustomer, ledger.PartySupplier)
	}

	return &k, nil
}
