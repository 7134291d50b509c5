// Package apperr defines the error taxonomy returned by the book-keeping core.
//
// Every error that leaves a service is one of the four kinds below (possibly
// joined or wrapped), so callers can branch with errors.Is on the sentinels and
// pull structured details with errors.As.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("not found")
	ErrConsistency       = errors.New("consistency violation")
)

// Kind names used in structured responses.
const (
	KindValidation        = "validation"
	KindInsufficientStock = "insufficient_stock"
	KindNotFound          = "not_found"
	KindConsistency       = "consistency"
	KindInternal          = "internal"
)

// ValidationError reports malformed input. It is always raised before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func Invalidf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Shortage describes one pool that cannot cover a requested outflow.
type Shortage struct {
	PoolID    uuid.UUID
	Name      string
	Required  decimal.Decimal
	Available decimal.Decimal
}

// InsufficientStockError carries every deficient pool found, not just the first.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		parts[i] = fmt.Sprintf("%s (required %s, available %s)", s.Name, s.Required.String(), s.Available.String())
	}

	return "insufficient stock: " + strings.Join(parts, ", ")
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(kind string, id any) error {
	return &NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}

// ConsistencyError reports an internal invariant that would be broken. It is a
// programming fault: the operation is rolled back, the process keeps running.
type ConsistencyError struct {
	Op     string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation in %s: %s", e.Op, e.Detail)
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrConsistency }

func Inconsistent(op, format string, args ...any) error {
	return &ConsistencyError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// KindOf classifies err into one of the Kind constants.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConsistency):
		return KindConsistency
	}

	return KindInternal
}

// Validations collects every ValidationError in err, including joined ones.
func Validations(err error) []*ValidationError {
	var out []*ValidationError

	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}

		if ve, ok := e.(*ValidationError); ok {
			out = append(out, ve)
			return
		}

		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)

	return out
}
