// Package respond holds the JSON plumbing shared by the API handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
)

// IdempotencyHeader carries the client's retry key for write requests.
const IdempotencyHeader = "Idempotency-Key"

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type consistencyResponse struct {
	Op     string `json:"op"`
	Detail string `json:"detail"`
}

type shortageResponse struct {
	PoolID    uuid.UUID `json:"pool_id"`
	Name      string    `json:"name"`
	Required  string    `json:"required"`
	Available string    `json:"available"`
}

func JSON(w http.ResponseWriter, log *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", zap.Error(err))
	}
}

// Status maps an error kind to its HTTP status.
func Status(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindInsufficientStock:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// Error writes err as a structured body. Consistency violations name the
// operation and the broken constraint; other internal errors are logged and
// their text is not exposed.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := Status(err)
	body := errorResponse{Error: kind, Message: err.Error()}

	switch kind {
	case apperr.KindValidation:
		var fields []fieldError
		for _, v := range apperr.Validations(err) {
			fields = append(fields, fieldError{Field: v.Field, Reason: v.Reason})
		}

		body.Details = fields
	case apperr.KindInsufficientStock:
		var ise *apperr.InsufficientStockError
		if errors.As(err, &ise) {
			shortages := make([]shortageResponse, len(ise.Shortages))
			for i, s := range ise.Shortages {
				shortages[i] = shortageResponse{
					PoolID:    s.PoolID,
					Name:      s.Name,
					Required:  s.Required.String(),
					Available: s.Available.String(),
				}
			}

			body.Details = shortages
		}
	case apperr.KindNotFound:
	case apperr.KindConsistency:
		log.Error("request failed", zap.String("kind", kind), zap.Error(err))

		var ce *apperr.ConsistencyError
		if errors.As(err, &ce) {
			body.Message = ce.Error()
			body.Details = []consistencyResponse{{Op: ce.Op, Detail: ce.Detail}}
		}
	default:
		log.Error("request failed", zap.String("kind", kind), zap.Error(err))
		body.Message = "internal error"
	}

	JSON(w, log, status, body)
}

// Decode reads a JSON body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return apperr.Invalidf("body", "malformed json: %v", err)
	}

	return nil
}

// ID parses the named URL parameter as a uuid.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, "must be a uuid")
	}

	return id, nil
}

// QueryID parses an optional uuid query parameter.
func QueryID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperr.Invalid(name, "must be a uuid")
	}

	return &id, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, apperr.Invalidf(name, "must be a date like %s", time.DateOnly)
	}

	return &t, nil
}

// QueryRange reads the optional from and to query parameters.
func QueryRange(r *http.Request) (ledger.DateRange, error) {
	var rng ledger.DateRange

	from, err := QueryDate(r, "from")
	if err != nil {
		return rng, err
	}

	to, err := QueryDate(r, "to")
	if err != nil {
		return rng, err
	}

	if from != nil {
		rng.From = *from
	}

	if to != nil {
		rng.To = *to
	}

	return rng, nil
}

// Key returns the request's idempotency key, if any.
func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(IdempotencyHeader))
}

// Date is a calendar day in request and response bodies. It also accepts a
// full RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}

	return fmt.Errorf("date %q is not %s", s, time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(d.Format(time.DateOnly))
}
