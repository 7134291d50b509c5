package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

func TestService_CreateParty(t *testing.T) {
	type testCase struct {
		name      string
		params    ledger.CreatePartyParams
		setupMock func(m *ledger.MockRepository)
		wantCode  string
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: ledger.CreatePartyParams{Name: "  Herat Grain Traders ", Kind: ledger.PartySupplier},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CreateParty(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: "herat-grain-traders",
		},
		{
			name:    "InvalidKind",
			params:  ledger.CreatePartyParams{Name: "Someone", Kind: "friend"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "EmptyName",
			params:  ledger.CreatePartyParams{Name: " ", Kind: ledger.PartyCustomer},
			wantErr: apperr.ErrValidation,
		},
		{
			name:   "RepoError",
			params: ledger.CreatePartyParams{Name: "Bazaar", Kind: ledger.PartyCustomer},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().CreateParty(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo)
			got, err := svc.CreateParty(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, apperr.ErrValidation) {
					assert.ErrorIs(t, err, apperr.ErrValidation)
				}

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestService_Balance(t *testing.T) {
	partyID := uuid.New()
	party := &ledger.Party{ID: partyID, Name: "Customer"}

	e1 := debitEntry(1, day(2024, 3, 1), "500")
	e2 := creditEntry(2, day(2024, 3, 3), "200")

	t.Run("AllHistory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		repo.EXPECT().GetParty(gomock.Any(), partyID).Return(party, nil)
		repo.EXPECT().ListEntries(gomock.Any(), partyID, ledger.EntryFilter{}).Return([]*ledger.Entry{e1, e2}, nil)

		got, err := ledger.NewService(repo).Balance(context.Background(), partyID, money.Primary, nil)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("300")))
	})

	t.Run("AsOfIsTruncatedToDay", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		asOf := day(2024, 3, 2).Add(18 * time.Hour)
		wantDay := day(2024, 3, 2)

		repo := ledger.NewMockRepository(ctrl)
		repo.EXPECT().GetParty(gomock.Any(), partyID).Return(party, nil)
		repo.EXPECT().
			ListEntries(gomock.Any(), partyID, ledger.EntryFilter{AsOf: &wantDay}).
			Return([]*ledger.Entry{e1}, nil)

		got, err := ledger.NewService(repo).Balance(context.Background(), partyID, money.Primary, &asOf)
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("500")))
	})

	t.Run("NoEntries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		repo.EXPECT().GetParty(gomock.Any(), partyID).Return(party, nil)
		repo.EXPECT().ListEntries(gomock.Any(), partyID, ledger.EntryFilter{}).Return(nil, nil)

		got, err := ledger.NewService(repo).Balance(context.Background(), partyID, money.Secondary, nil)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("UnknownParty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		repo.EXPECT().GetParty(gomock.Any(), partyID).Return(nil, apperr.NotFound("party", partyID))

		_, err := ledger.NewService(repo).Balance(context.Background(), partyID, money.Primary, nil)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("UnknownCurrency", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)

		_, err := ledger.NewService(repo).Balance(context.Background(), partyID, money.Currency("EUR"), nil)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestService_Statement_RejectsInvertedRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)

	_, err := ledger.NewService(repo).Statement(context.Background(), uuid.New(), ledger.DateRange{
		From: day(2024, 5, 1),
		To:   day(2024, 4, 1),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Balances(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a := &ledger.Party{ID: uuid.New(), Name: "A"}
	b := &ledger.Party{ID: uuid.New(), Name: "B"}

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().ListParties(gomock.Any(), nil).Return([]*ledger.Party{a, b}, nil)
	repo.EXPECT().GetParty(gomock.Any(), a.ID).Return(a, nil)
	repo.EXPECT().GetParty(gomock.Any(), b.ID).Return(b, nil)
	repo.EXPECT().ListEntries(gomock.Any(), a.ID, ledger.EntryFilter{}).Return([]*ledger.Entry{debitEntry(1, day(2024, 1, 1), "140")}, nil)
	repo.EXPECT().ListEntries(gomock.Any(), b.ID, ledger.EntryFilter{}).Return(nil, nil)

	got, err := ledger.NewService(repo).Balances(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Balance.Primary.Equal(dec("140")))
	assert.True(t, got[0].Balance.Secondary.Equal(dec("2")))
	assert.True(t, got[1].Balance.Primary.IsZero())
}
