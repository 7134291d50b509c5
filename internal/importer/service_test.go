package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/importer"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

const sheet = "date;supplier;material;qty;price;currency;rate\n" +
	"2026-03-01;Kabul Grain Co;Maize;100;10;AFG;70\n" +
	"2026-03-02;Kabul Grain Co;Maize;50;16;AFG;70\n"

func TestService_Purchases(t *testing.T) {
	supplier := &ledger.Party{ID: uuid.New(), Code: "kabul-grain-co", Name: "Kabul Grain Co", Kind: ledger.PartySupplier}
	maize := &inventory.Pool{ID: uuid.New(), Name: "Maize", Kind: inventory.KindRawMaterial}

	type testCase struct {
		name       string
		setupMock  func(p *importer.MockParties, m *importer.MockPools)
		wantFields []string
		wantErr    error
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(p *importer.MockParties, m *importer.MockPools) {
				p.EXPECT().GetPartyByCode(gomock.Any(), "kabul-grain-co").Return(supplier, nil).Times(1)
				m.EXPECT().GetPoolByName(gomock.Any(), "Maize").Return(maize, nil).Times(1)
			},
		},
		{
			name: "UnknownNames",
			setupMock: func(p *importer.MockParties, m *importer.MockPools) {
				p.EXPECT().GetPartyByCode(gomock.Any(), "kabul-grain-co").Return(nil, apperr.NotFound("party", "kabul-grain-co")).Times(2)
				m.EXPECT().GetPoolByName(gomock.Any(), "Maize").Return(nil, apperr.NotFound("pool", "Maize")).Times(2)
			},
			wantFields: []string{"row 2 supplier", "row 2 material", "row 3 supplier", "row 3 material"},
		},
		{
			name: "NotASupplier",
			setupMock: func(p *importer.MockParties, m *importer.MockPools) {
				customer := *supplier
				customer.Kind = ledger.PartyCustomer

				p.EXPECT().GetPartyByCode(gomock.Any(), "kabul-grain-co").Return(&customer, nil).Times(2)
				m.EXPECT().GetPoolByName(gomock.Any(), "Maize").Return(maize, nil).Times(1)
			},
			wantFields: []string{"row 2 supplier", "row 3 supplier"},
		},
		{
			name: "LookupFails",
			setupMock: func(p *importer.MockParties, m *importer.MockPools) {
				p.EXPECT().GetPartyByCode(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error")).Times(2)
				m.EXPECT().GetPoolByName(gomock.Any(), "Maize").Return(maize, nil).Times(1)
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			parties := importer.NewMockParties(ctrl)
			pools := importer.NewMockPools(ctrl)
			tt.setupMock(parties, pools)

			svc := importer.NewService(parties, pools)
			got, err := svc.Purchases(context.Background(), strings.NewReader(sheet))

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				assert.Nil(t, got)

				return
			}

			if tt.wantFields != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				var fields []string
				for _, v := range apperr.Validations(err) {
					fields = append(fields, v.Field)
				}

				assert.ElementsMatch(t, tt.wantFields, fields)

				return
			}

			require.NoError(t, err)
			require.Len(t, got, 2)

			for _, p := range got {
				assert.Equal(t, supplier.ID, p.PartyID)
				assert.Equal(t, maize.ID, p.PoolID)
				assert.Equal(t, money.Primary, p.UnitPrice.Currency)
			}

			assert.Equal(t, "100", got[0].Quantity.String())
			assert.Equal(t, "16", got[1].UnitPrice.Value.String())
		})
	}
}

func TestService_Purchases_BadSheetSkipsLookups(t *testing.T) {
	ctrl := gomock.NewController(t)

	svc := importer.NewService(importer.NewMockParties(ctrl), importer.NewMockPools(ctrl))

	_, err := svc.Purchases(context.Background(), strings.NewReader("nothing useful\n"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
