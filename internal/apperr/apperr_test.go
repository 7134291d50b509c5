package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Nil", nil, ""},
		{"Validation", apperr.Invalid("quantity", "must be positive"), apperr.KindValidation},
		{"Joined validation", errors.Join(apperr.Invalid("a", "x"), apperr.Invalid("b", "y")), apperr.KindValidation},
		{"Wrapped not found", fmt.Errorf("loading: %w", apperr.NotFound("party", "p1")), apperr.KindNotFound},
		{"Insufficient stock", &apperr.InsufficientStockError{}, apperr.KindInsufficientStock},
		{"Consistency", apperr.Inconsistent("post", "both sides set"), apperr.KindConsistency},
		{"Anything else", errors.New("disk full"), apperr.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.KindOf(tt.err))
		})
	}
}

func TestValidations(t *testing.T) {
	err := fmt.Errorf("row 2: %w", errors.Join(
		apperr.Invalid("quantity", "must be positive"),
		errors.Join(apperr.Invalid("currency", "unknown")),
		errors.New("not a validation error"),
	))

	got := apperr.Validations(err)

	if assert.Len(t, got, 2) {
		assert.Equal(t, "quantity", got[0].Field)
		assert.Equal(t, "currency", got[1].Field)
	}

	assert.Empty(t, apperr.Validations(errors.New("plain")))
}

func TestInsufficientStockError_NamesEveryShortage(t *testing.T) {
	err := &apperr.InsufficientStockError{Shortages: []apperr.Shortage{
		{Name: "Maize", Required: decimal.NewFromInt(600), Available: decimal.NewFromInt(500)},
		{Name: "Soy", Required: decimal.NewFromInt(300), Available: decimal.NewFromInt(0)},
	}}

	assert.Equal(t, "insufficient stock: Maize (required 600, available 500), Soy (required 300, available 0)", err.Error())
	assert.ErrorIs(t, fmt.Errorf("produce: %w", err), apperr.ErrInsufficientStock)
}
