package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

func TestNewPool(t *testing.T) {
	tests := []struct {
		name     string
		params   inventory.CreatePoolParams
		wantUnit string
		wantErr  bool
	}{
		{name: "DefaultsUnit", params: inventory.CreatePoolParams{Kind: inventory.KindRawMaterial, Name: " Maize "}, wantUnit: "kg"},
		{name: "KeepsUnit", params: inventory.CreatePoolParams{Kind: inventory.KindFinishedFeed, Name: "Layer mash", Unit: "bag"}, wantUnit: "bag"},
		{name: "BadKind", params: inventory.CreatePoolParams{Kind: "tools", Name: "Spade"}, wantErr: true},
		{name: "NoName", params: inventory.CreatePoolParams{Kind: inventory.KindRawMaterial}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := inventory.NewPool(tt.params)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantUnit, p.Unit)
			assert.True(t, p.Stock.IsZero())
			assert.NotEqual(t, uuid.Nil, p.ID)
		})
	}
}

func TestService_Valuation(t *testing.T) {
	maize := emptyPool("Maize")
	maize.Stock = dec("30")
	maize.UnitCost = cost("12", "0.171428")

	mash := emptyPool("Layer mash")
	mash.Kind = inventory.KindFinishedFeed
	mash.Stock = dec("10")
	mash.UnitCost = cost("25.5", "0.36")

	t.Run("Primary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := inventory.NewMockRepository(ctrl)
		repo.EXPECT().ListPools(gomock.Any(), nil).Return([]*inventory.Pool{&maize, &mash}, nil)

		v, err := inventory.NewService(repo).Valuation(context.Background(), money.Primary, nil)
		require.NoError(t, err)
		require.Len(t, v.Lines, 2)
		assert.True(t, v.Lines[0].Value.Equal(dec("360")))
		assert.True(t, v.Lines[1].Value.Equal(dec("255")))
		assert.True(t, v.Total.Equal(dec("615")))
	})

	t.Run("Secondary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := inventory.NewMockRepository(ctrl)
		repo.EXPECT().ListPools(gomock.Any(), nil).Return([]*inventory.Pool{&maize, &mash}, nil)

		v, err := inventory.NewService(repo).Valuation(context.Background(), money.Secondary, nil)
		require.NoError(t, err)

		// 30 * 0.171428 = 5.14284 -> 5.14; 10 * 0.36 = 3.60
		assert.True(t, v.Total.Equal(dec("8.74")))
		assert.True(t, v.Lines[0].UnitCost.Equal(dec("0.171428")))
	})

	t.Run("Empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		kind := inventory.KindFinishedFeed

		repo := inventory.NewMockRepository(ctrl)
		repo.EXPECT().ListPools(gomock.Any(), &kind).Return(nil, nil)

		v, err := inventory.NewService(repo).Valuation(context.Background(), money.Primary, &kind)
		require.NoError(t, err)
		assert.Empty(t, v.Lines)
		assert.True(t, v.Total.IsZero())
	})

	t.Run("UnknownCurrency", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, err := inventory.NewService(inventory.NewMockRepository(ctrl)).Valuation(context.Background(), "EUR", nil)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("RepoError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := inventory.NewMockRepository(ctrl)
		repo.EXPECT().ListPools(gomock.Any(), nil).Return(nil, errors.New("db error"))

		_, err := inventory.NewService(repo).Valuation(context.Background(), money.Primary, nil)
		assert.Error(t, err)
	})
}

func TestService_Movements_UnknownPool(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := inventory.NewMockRepository(ctrl)
	repo.EXPECT().GetPool(gomock.Any(), id).Return(nil, apperr.NotFound("pool", id))

	_, err := inventory.NewService(repo).Movements(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProduce_ShortageTouchesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	matA := emptyPool("A")
	matA.Stock = dec("40")
	matA.UnitCost = cost("10", "0.1")

	matB := emptyPool("B")
	matB.Stock = dec("60")
	matB.UnitCost = cost("20", "0.2")

	feed := emptyPool("Mash")
	feed.Kind = inventory.KindFinishedFeed

	f := &inventory.Formula{ID: uuid.New(), Name: "Half and half", Ingredients: []inventory.Ingredient{
		{MaterialID: matA.ID, Percentage: dec("50")},
		{MaterialID: matB.ID, Percentage: dec("50")},
	}}

	// Only reads are expected: no UpdatePool, AppendMovement or CreateBatch.
	repo := inventory.NewMockRepository(ctrl)
	repo.EXPECT().GetFormula(gomock.Any(), f.ID).Return(f, nil)
	repo.EXPECT().GetPool(gomock.Any(), feed.ID).Return(&feed, nil)
	repo.EXPECT().GetPool(gomock.Any(), matA.ID).Return(&matA, nil)
	repo.EXPECT().GetPool(gomock.Any(), matB.ID).Return(&matB, nil)

	_, err := inventory.Produce(context.Background(), repo, f.ID, feed.ID, dec("100"), day())
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	var stockErr *apperr.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortages, 1)
	assert.Equal(t, "A", stockErr.Shortages[0].Name)
}

func TestProduce_RejectsRawMaterialTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	target := emptyPool("Maize")
	f := &inventory.Formula{ID: uuid.New(), Name: "Solo"}

	repo := inventory.NewMockRepository(ctrl)
	repo.EXPECT().GetFormula(gomock.Any(), f.ID).Return(f, nil)
	repo.EXPECT().GetPool(gomock.Any(), target.ID).Return(&target, nil)

	_, err := inventory.Produce(context.Background(), repo, f.ID, target.ID, dec("10"), day())
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
