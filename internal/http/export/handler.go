package export

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/export"
	"github.com/MrJamesThe3rd/farmbook/internal/http/respond"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
)

type Handler struct {
	svc *export.Service
	log *zap.Logger
}

func NewHandler(svc *export.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/statements", h.metadata)
	r.Get("/statements.zip", h.download)
}

type statementSummary struct {
	PartyID string       `json:"party_id"`
	Code    string       `json:"code"`
	Name    string       `json:"name"`
	Kind    string       `json:"kind"`
	Entries int          `json:"entries"`
	File    string       `json:"file"`
	Opening respond.Cost `json:"opening"`
	Closing respond.Cost `json:"closing"`
}

type exportMetadataResponse struct {
	Statements []statementSummary `json:"statements"`
	Summary    string             `json:"summary"`
}

func (h *Handler) filter(r *http.Request) (export.Filter, error) {
	var f export.Filter

	rng, err := respond.QueryRange(r)
	if err != nil {
		return f, err
	}

	f.Range = rng

	if s := r.URL.Query().Get("kind"); s != "" {
		k := ledger.PartyKind(s)
		if !k.Valid() {
			return f, apperr.Invalidf("kind", "must be %q or %q", ledger.PartyCustomer, ledger.PartySupplier)
		}

		f.Kind = &k
	}

	return f, nil
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	items, err := h.svc.Statements(r.Context(), f)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	resp := exportMetadataResponse{
		Statements: make([]statementSummary, len(items)),
		Summary:    export.Summary(items),
	}

	for i, it := range items {
		resp.Statements[i] = statementSummary{
			PartyID: it.Party.ID.String(),
			Code:    it.Party.Code,
			Name:    it.Party.Name,
			Kind:    string(it.Party.Kind),
			Entries: len(it.Statement.Lines),
			File:    it.FileName(),
			Opening: totals(it.Statement.Opening),
			Closing: totals(it.Statement.Closing),
		}
	}

	respond.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	// Build in memory so a failure can still be reported as JSON.
	var buf bytes.Buffer

	items, err := h.svc.Archive(r.Context(), &buf, f)
	if err != nil {
		respond.Error(w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"statements_%s.zip\"", time.Now().Format("20060102")))

	if _, err := buf.WriteTo(w); err != nil {
		h.log.Error("failed to write archive", zap.Error(err), zap.Int("statements", len(items)))
	}
}

func totals(t ledger.Totals) respond.Cost {
	return respond.Cost{Primary: t.Primary, Secondary: t.Secondary}
}
