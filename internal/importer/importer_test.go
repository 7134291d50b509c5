package importer_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	"github.com/MrJamesThe3rd/farmbook/internal/importer"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParsePurchases(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		want  []importer.PurchaseRow
	}{
		{
			name: "SemicolonWithDecimalComma",
			sheet: "date;supplier;material;qty;unit price;currency;rate;basis\n" +
				"2026-03-01;Kabul Grain Co;Maize;1.000,5;12,75;AFG;70;cash\n",
			want: []importer.PurchaseRow{{
				Line:      2,
				Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				Supplier:  "Kabul Grain Co",
				Material:  "Maize",
				Quantity:  dec("1000.5"),
				UnitPrice: dec("12.75"),
				Currency:  money.Primary,
				Rate:      dec("70"),
				Basis:     trade.Cash,
			}},
		},
		{
			name: "CommaWithAliasesDefaultsToCredit",
			sheet: "Date,Vendor,Item,Quantity,Price,Currency,Exchange Rate\n" +
				"01/03/2026,Herat Feeds,Soybean Meal,50,0.25,usd,70\n",
			want: []importer.PurchaseRow{{
				Line:      2,
				Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				Supplier:  "Herat Feeds",
				Material:  "Soybean Meal",
				Quantity:  dec("50"),
				UnitPrice: dec("0.25"),
				Currency:  money.Secondary,
				Rate:      dec("70"),
				Basis:     trade.Credit,
			}},
		},
		{
			name: "TitleAndBlankLinesSkipped",
			sheet: "\nPurchases March\n\n" +
				"Date;Supplier;Material;Qty;Price;Currency;Rate\n" +
				";;;;;;\n" +
				"2026-03-02;Kabul Grain Co;Maize;10;5;AFG;70\n",
			want: []importer.PurchaseRow{{
				Line:      6,
				Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
				Supplier:  "Kabul Grain Co",
				Material:  "Maize",
				Quantity:  dec("10"),
				UnitPrice: dec("5"),
				Currency:  money.Primary,
				Rate:      dec("70"),
				Basis:     trade.Credit,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.ParsePurchases(strings.NewReader(tt.sheet))
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))

			for i, w := range tt.want {
				g := got[i]
				assert.Equal(t, w.Line, g.Line)
				assert.True(t, w.Date.Equal(g.Date), "date %s", g.Date)
				assert.Equal(t, w.Supplier, g.Supplier)
				assert.Equal(t, w.Material, g.Material)
				assert.True(t, w.Quantity.Equal(g.Quantity), "quantity %s", g.Quantity)
				assert.True(t, w.UnitPrice.Equal(g.UnitPrice), "unit price %s", g.UnitPrice)
				assert.Equal(t, w.Currency, g.Currency)
				assert.True(t, w.Rate.Equal(g.Rate), "rate %s", g.Rate)
				assert.Equal(t, w.Basis, g.Basis)
			}
		})
	}
}

func TestParsePurchases_Errors(t *testing.T) {
	tests := []struct {
		name   string
		sheet  string
		fields []string
	}{
		{
			name:   "MissingColumns",
			sheet:  "date,supplier,material,qty,price\n2026-03-01,A,B,1,2\n",
			fields: []string{"header"},
		},
		{
			name:   "NoHeader",
			sheet:  "x,y\n1,2\n",
			fields: []string{"header"},
		},
		{
			name:   "HeaderOnly",
			sheet:  "date,supplier,material,qty,price,currency,rate\n",
			fields: []string{"file"},
		},
		{
			name: "EveryBadCellNamedByRow",
			sheet: "date,supplier,material,qty,price,currency,rate,basis\n" +
				"2026-03-01,Kabul Grain Co,Maize,abc,10,EUR,70,\n" +
				"2026-03-01,Kabul Grain Co,Maize,5,10,AFG,70,\n" +
				"yesterday,,Maize,-1,10,AFG,70,barter\n",
			fields: []string{
				"row 2 quantity", "row 2 currency",
				"row 4 date", "row 4 supplier", "row 4 quantity", "row 4 basis",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.ParsePurchases(strings.NewReader(tt.sheet))
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, apperr.ErrValidation))

			var fields []string
			for _, v := range apperr.Validations(err) {
				fields = append(fields, v.Field)
			}

			assert.ElementsMatch(t, tt.fields, fields)
		})
	}
}

func TestParsePurchases_MissingColumnsNamed(t *testing.T) {
	_, err := importer.ParsePurchases(strings.NewReader("date;supplier;material;qty;price\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currency, rate")
}
