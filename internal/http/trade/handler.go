package trade

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/http/respond"
	"github.com/MrJamesThe3rd/farmbook/internal/importer"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
)

const maxUpload = 10 << 20

type Handler struct {
	svc      *trade.Service
	books    *bookkeeping.Service
	importer *importer.Service
	log      *zap.Logger
}

func NewHandler(svc *trade.Service, books *bookkeeping.Service, imp *importer.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, books: books, importer: imp, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/sales", func(r chi.Router) {
		r.Post("/", h.createSale)
		r.Get("/", h.listSales)
		r.Get("/{id}", h.getSale)
	})

	r.Route("/purchases", func(r chi.Router) {
		r.Post("/", h.createPurchase)
		r.Post("/import", h.importPurchases)
		r.Get("/", h.listPurchases)
		r.Get("/{id}", h.getPurchase)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Post("/", h.createExpense)
		r.Get("/", h.listExpenses)
		r.Get("/{id}", h.getExpense)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.createPayment)
		r.Get("/", h.listPayments)
		r.Get("/{id}", h.getPayment)
	})

	r.Route("/sheds", func(r chi.Router) {
		r.Post("/", h.createShed)
		r.Get("/", h.listSheds)
	})
}

type saleRequest struct {
	PartyID   uuid.UUID       `json:"party_id"`
	Date      respond.Date    `json:"date"`
	Product   string          `json:"product"`
	PoolID    *uuid.UUID      `json:"pool_id,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice respond.Amount  `json:"unit_price"`
	Basis     trade.Basis     `json:"basis"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	s, err := h.books.RecordSale(r.Context(), bookkeeping.SaleParams{
		Key:       respond.Key(r),
		PartyID:   req.PartyID,
		Date:      req.Date.Time,
		Product:   req.Product,
		PoolID:    req.PoolID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice.Books(),
		Basis:     req.Basis,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toSaleResponse(s))
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	sales, err := h.svc.ListSales(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]saleResponse, len(sales))
	for i, s := range sales {
		resp[i] = toSaleResponse(s)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	s, err := h.svc.GetSale(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toSaleResponse(s))
}

type purchaseRequest struct {
	PartyID   uuid.UUID       `json:"party_id"`
	Date      respond.Date    `json:"date"`
	PoolID    uuid.UUID       `json:"pool_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice respond.Amount  `json:"unit_price"`
	Basis     trade.Basis     `json:"basis"`
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	p, err := h.books.RecordPurchase(r.Context(), bookkeeping.PurchaseParams{
		Key:       respond.Key(r),
		PartyID:   req.PartyID,
		Date:      req.Date.Time,
		PoolID:    req.PoolID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice.Books(),
		Basis:     req.Basis,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toPurchaseResponse(p))
}

// importPurchases books a whole supplier sheet in one unit of work. A sheet
// with any bad row records nothing.
func (h *Handler) importPurchases(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.Error(w, h.log, apperr.Invalidf("file", "failed to parse form: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, h.log, apperr.Invalid("file", "is required"))
		return
	}
	defer file.Close()

	rows, err := h.importer.Purchases(r.Context(), file)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	res, err := h.books.RecordPurchases(r.Context(), respond.Key(r), rows)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := importResponse{
		Imported:  len(res.Purchases),
		Replayed:  res.Replayed,
		Purchases: make([]purchaseResponse, len(res.Purchases)),
	}

	for i, p := range res.Purchases {
		resp.Purchases[i] = toPurchaseResponse(p)
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}

	respond.JSON(w, h.log, status, resp)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	purchases, err := h.svc.ListPurchases(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]purchaseResponse, len(purchases))
	for i, p := range purchases {
		resp[i] = toPurchaseResponse(p)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	p, err := h.svc.GetPurchase(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toPurchaseResponse(p))
}

type expenseRequest struct {
	PartyID     *uuid.UUID     `json:"party_id,omitempty"`
	Date        respond.Date   `json:"date"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Amount      respond.Amount `json:"amount"`
	Basis       trade.Basis    `json:"basis"`
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	e, err := h.books.RecordExpense(r.Context(), bookkeeping.ExpenseParams{
		Key:         respond.Key(r),
		PartyID:     req.PartyID,
		Date:        req.Date.Time,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount.Books(),
		Basis:       req.Basis,
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toExpenseResponse(e))
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	expenses, err := h.svc.ListExpenses(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toExpenseResponse(e)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) getExpense(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	e, err := h.svc.GetExpense(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toExpenseResponse(e))
}

type paymentRequest struct {
	PartyID     uuid.UUID              `json:"party_id"`
	Date        respond.Date           `json:"date"`
	Direction   trade.PaymentDirection `json:"direction"`
	Description string                 `json:"description"`
	Amount      respond.Amount         `json:"amount"`
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	p, err := h.books.RecordPayment(r.Context(), bookkeeping.PaymentParams{
		Key:         respond.Key(r),
		PartyID:     req.PartyID,
		Date:        req.Date.Time,
		Direction:   req.Direction,
		Description: req.Description,
		Amount:      req.Amount.Books(),
	})
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toPaymentResponse(p))
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	payments, err := h.svc.ListPayments(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	p, err := h.svc.GetPayment(r.Context(), id)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, toPaymentResponse(p))
}

type shedRequest struct {
	Name string `json:"name"`
	Farm string `json:"farm"`
}

func (h *Handler) createShed(w http.ResponseWriter, r *http.Request) {
	var req shedRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, h.log, err)
		return
	}

	s, err := h.books.CreateShed(r.Context(), req.Name, req.Farm)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusCreated, toShedResponse(s))
}

func (h *Handler) listSheds(w http.ResponseWriter, r *http.Request) {
	sheds, err := h.svc.ListSheds(r.Context())
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := make([]shedResponse, len(sheds))
	for i, s := range sheds {
		resp[i] = toShedResponse(s)
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func listFilter(r *http.Request) (trade.Filter, error) {
	var (
		f   trade.Filter
		err error
	)

	if f.PartyID, err = respond.QueryID(r, "party_id"); err != nil {
		return f, err
	}

	if f.From, err = respond.QueryDate(r, "from"); err != nil {
		return f, err
	}

	if f.To, err = respond.QueryDate(r, "to"); err != nil {
		return f, err
	}

	return f, nil
}
