package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/http/respond"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
)

type Handler struct {
	svc    *inventory.Service
	trades *trade.Service
	books  *bookkeeping.Service
	log    *zap.Logger
}

func NewHandler(svc *inventory.Service, trades *trade.Service, books *bookkeeping.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, trades: trades, books: books, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/pools", func(r chi.Router) {
		r.Post("/", h.createPool)
		r.Get("/", h.listPools)
		r.Get("/{id}", h.getPool)
		r.Get("/{id}/movements", h.movements)
		r.Post("/{id}/opening-stock", h.openingStock)
	})

	r.Get("/valuation", h.valuation)

	r.Route("/formulas", func(r chi.Router) {
		r.Post("/", h.createFormula)
		r.Get("/", h.listFormulas)
		r.Get("/{id}", h.getFormula)
		r.Get("/{id}/plan", h.plan)
	})

	r.Route("/batches", func(r chi.Router) {
		r.Post("/", h.produce)
		r.Get("/", h.listBatches)
		r.Get("/{id}", h.getBatch)
	})

	r.Route("/issues", func(r chi.Router) {
		r.Post("/", h.issue)
		r.Get("/", h.listIssues)
	})
}

type poolRequest struct {
	Kind inventory.Kind `json:"kind"`
	Name string         `json:"name"`
	Unit string         `json:"unit"`
}

func (h *Handler) createPool(w http.ResponseWriter, r *http.Request) {
	var req poolRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	var (
		p   *inventory.Pool
		err error
	)

	switch req.Kind {
	case inventory.KindRawMaterial:
		p, err = h.books.CreateMaterial(r.Context(), req.Name, req.Unit)
	case inventory.KindFinishedFeed:
		p, err = h.books.CreateFeedPool(r.Context(), req.Name, req.Unit)
	default:
		err = apperr.Invalidf("kind", "must be %q or %q", inventory.KindRawMaterial, inventory.KindFinishedFeed)
	}

	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toPoolResponse(p))
}

func (h *Handler) listPools(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFilter(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	pools, err := h.svc.ListPools(r.Context(), kind)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]poolResponse, len(pools))
	for i, p := range pools {
		resp[i] = toPoolResponse(p)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) getPool(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	p, err := h.svc.GetPool(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toPoolResponse(p))
}

func (h *Handler) movements(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	mvs, err := h.svc.Movements(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]movementResponse, len(mvs))
	for i, mv := range mvs {
		resp[i] = toMovementResponse(mv)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

type openingStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost respond.Amount  `json:"unit_cost"`
}

func (h *Handler) openingStock(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	var req openingStockRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	p, err := h.books.ReceiveOpeningStock(r.Context(), bookkeeping.OpeningStockParams{
		Key:      respond.Key(r),
		PoolID:   id,
		Quantity: req.Quantity,
		UnitCost: req.UnitCost.Books(),
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toPoolResponse(p))
}

func (h *Handler) valuation(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFilter(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	v, err := h.svc.Valuation(r.Context(), respond.Currency(r.URL.Query().Get("currency")), kind)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toValuationResponse(v))
}

type formulaRequest struct {
	Name        string              `json:"name"`
	Ingredients []ingredientRequest `json:"ingredients"`
}

type ingredientRequest struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Percentage decimal.Decimal `json:"percentage"`
}

func (h *Handler) createFormula(w http.ResponseWriter, r *http.Request) {
	var req formulaRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	params := bookkeeping.FormulaParams{Name: req.Name}
	for _, in := range req.Ingredients {
		params.Ingredients = append(params.Ingredients, inventory.Ingredient{MaterialID: in.MaterialID, Percentage: in.Percentage})
	}

	f, err := h.books.CreateFormula(r.Context(), params)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toFormulaResponse(f))
}

func (h *Handler) listFormulas(w http.ResponseWriter, r *http.Request) {
	formulas, err := h.svc.ListFormulas(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]formulaResponse, len(formulas))
	for i, f := range formulas {
		resp[i] = toFormulaResponse(f)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) getFormula(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	f, err := h.svc.GetFormula(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toFormulaResponse(f))
}

// plan previews a batch. Shortages are reported in the body, not as an error.
func (h *Handler) plan(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	qty, err := decimal.NewFromString(r.URL.Query().Get("quantity"))
	if err != nil {
		respond.Error(w, h.log, apperr.Invalid("quantity", "must be a number"))
		return
	}

	p, err := h.svc.PlanBatch(r.Context(), id, qty)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toPlanResponse(p))
}

type batchRequest struct {
	FormulaID  uuid.UUID       `json:"formula_id"`
	FeedPoolID uuid.UUID       `json:"feed_pool_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Date       respond.Date    `json:"date"`
}

func (h *Handler) produce(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	b, err := h.books.ProduceFeedBatch(r.Context(), bookkeeping.BatchParams{
		Key:        respond.Key(r),
		FormulaID:  req.FormulaID,
		FeedPoolID: req.FeedPoolID,
		Quantity:   req.Quantity,
		Date:       req.Date.Time,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toBatchResponse(b))
}

func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := h.svc.ListBatches(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]batchResponse, len(batches))
	for i, b := range batches {
		resp[i] = toBatchResponse(b)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	b, err := h.svc.GetBatch(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toBatchResponse(b))
}

type issueRequest struct {
	ShedID   uuid.UUID       `json:"shed_id"`
	PoolID   uuid.UUID       `json:"pool_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Date     respond.Date    `json:"date"`
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	fi, err := h.books.IssueFeed(r.Context(), bookkeeping.IssueParams{
		Key:      respond.Key(r),
		ShedID:   req.ShedID,
		PoolID:   req.PoolID,
		Quantity: req.Quantity,
		Date:     req.Date.Time,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toIssueResponse(fi))
}

func (h *Handler) listIssues(w http.ResponseWriter, r *http.Request) {
	shedID, err := respond.QueryID(r, "shed_id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	issues, err := h.trades.ListFeedIssues(r.Context(), shedID)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]issueResponse, len(issues))
	for i, fi := range issues {
		resp[i] = toIssueResponse(fi)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func kindFilter(r *http.Request) (*inventory.Kind, error) {
	s := r.URL.Query().Get("kind")
	if s == "" {
		return nil, nil
	}

	k := inventory.Kind(s)
	if !k.Valid() {
		return nil, apperr.Invalidf("kind", "must be %q or %q", inventory.KindRawMaterial, inventory.KindFinishedFeed)
	}

	return &k, nil
}
