package http_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/MrJamesThe3rd/farmbook/internal/app"
	"github.com/MrJamesThe3rd/farmbook/internal/database"
)

func setup(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.New(database.DriverSQLite, database.SQLiteDSN(filepath.Join(t.TempDir(), "api.db")))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	a := app.New(db, zaptest.NewLogger(t), prometheus.NewRegistry())

	return a.Handler([]string{"https://books.example"})
}

func do(t *testing.T, h http.Handler, method, path string, body any, key string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

type created struct {
	ID uuid.UUID `json:"id"`
}

func create(t *testing.T, h http.Handler, path string, body any) uuid.UUID {
	t.Helper()

	rec := do(t, h, http.MethodPost, path, body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var c created
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))

	return c.ID
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details []json.RawMessage `json:"details"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body
}

func amount(v string) map[string]string {
	return map[string]string{"value": v, "currency": "AFG", "exchange_rate": "70"}
}

func TestAPI_PurchaseFlow(t *testing.T) {
	h := setup(t)

	supplier := create(t, h, "/api/v1/parties", map[string]string{"name": "Kabul Grain Co", "kind": "supplier"})
	maize := create(t, h, "/api/v1/inventory/pools", map[string]string{"kind": "raw_material", "name": "Maize", "unit": "kg"})

	purchase := map[string]any{
		"party_id":   supplier,
		"date":       "2026-03-01",
		"pool_id":    maize,
		"quantity":   "100",
		"unit_price": amount("10"),
		"basis":      "credit",
	}

	first := do(t, h, http.MethodPost, "/api/v1/purchases", purchase, "purchase-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	var a, b created
	require.NoError(t, json.NewDecoder(first.Body).Decode(&a))

	retry := do(t, h, http.MethodPost, "/api/v1/purchases", purchase, "purchase-1")
	require.Equal(t, http.StatusCreated, retry.Code)
	require.NoError(t, json.NewDecoder(retry.Body).Decode(&b))
	assert.Equal(t, a.ID, b.ID)

	rec := do(t, h, http.MethodGet, "/api/v1/parties/"+supplier.String()+"/balance", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var bal struct {
		Balance decimal.Decimal `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bal))
	assert.True(t, bal.Balance.Equal(decimal.NewFromInt(-1000)), "balance %s", bal.Balance)

	rec = do(t, h, http.MethodGet, "/api/v1/inventory/pools/"+maize.String(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var pool struct {
		Stock    decimal.Decimal `json:"stock"`
		UnitCost struct {
			Primary decimal.Decimal `json:"primary"`
		} `json:"unit_cost"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pool))
	assert.True(t, pool.Stock.Equal(decimal.NewFromInt(100)))
	assert.True(t, pool.UnitCost.Primary.Equal(decimal.NewFromInt(10)))

	rec = do(t, h, http.MethodGet, "/api/v1/parties/"+supplier.String()+"/statement?from=2026-01-01&to=2026-12-31", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st struct {
		Lines []json.RawMessage `json:"lines"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Len(t, st.Lines, 1)
}

func TestAPI_Errors(t *testing.T) {
	h := setup(t)

	customer := create(t, h, "/api/v1/parties", map[string]string{"name": "Mazar Poultry", "kind": "customer"})
	feed := create(t, h, "/api/v1/inventory/pools", map[string]string{"kind": "finished_feed", "name": "Layer Mash"})

	t.Run("Validation", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/purchases", map[string]any{}, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeError(t, rec)
		assert.Equal(t, "validation", body.Error)
		assert.NotEmpty(t, body.Details)
	})

	t.Run("UnknownField", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/parties", map[string]string{"name": "X", "kind": "customer", "colour": "red"}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
			"party_id":   customer,
			"product":    "Layer Mash",
			"pool_id":    feed,
			"quantity":   "5",
			"unit_price": amount("30"),
			"basis":      "credit",
		}, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

		body := decodeError(t, rec)
		assert.Equal(t, "insufficient_stock", body.Error)
		assert.Len(t, body.Details, 1)

		rec = do(t, h, http.MethodGet, "/api/v1/sales", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("NotFound", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/parties/"+uuid.NewString(), nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", decodeError(t, rec).Error)
	})

	t.Run("BadID", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/inventory/pools/not-a-uuid", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAPI_ImportPurchases(t *testing.T) {
	h := setup(t)

	create(t, h, "/api/v1/parties", map[string]string{"name": "Kabul Grain Co", "kind": "supplier"})
	create(t, h, "/api/v1/inventory/pools", map[string]string{"kind": "raw_material", "name": "Maize"})

	sheet := "date;supplier;material;qty;price;currency;rate\n" +
		"2026-03-01;Kabul Grain Co;Maize;100;10;AFG;70\n" +
		"2026-03-02;Kabul Grain Co;Maize;50;16;AFG;70\n"

	upload := func(sheet string) *httptest.ResponseRecorder {
		var buf bytes.Buffer

		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "march.csv")
		require.NoError(t, err)

		_, err = fw.Write([]byte(sheet))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec
	}

	rec := upload(sheet)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, 2, res.Imported)

	rec = upload("date;supplier;material;qty;price;currency;rate\n2026-03-03;Nobody;Maize;1;1;AFG;70\n")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "row 2 supplier")

	rec = do(t, h, http.MethodGet, "/api/v1/inventory/valuation", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var v struct {
		Total decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	assert.True(t, v.Total.Equal(decimal.NewFromInt(1800)), "total %s", v.Total)
}

func TestAPI_MetricsAndCORS(t *testing.T) {
	h := setup(t)

	create(t, h, "/api/v1/inventory/pools", map[string]string{"kind": "raw_material", "name": "Maize"})

	rec := do(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "farmbook_operations_total")

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sales", nil)
	req.Header.Set("Origin", "https://books.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://books.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPI_ExportStatements(t *testing.T) {
	h := setup(t)

	supplier := create(t, h, "/api/v1/parties", map[string]string{"name": "Kabul Grain Co", "kind": "supplier"})
	maize := create(t, h, "/api/v1/inventory/pools", map[string]string{"kind": "raw_material", "name": "Maize", "unit": "kg"})
	create(t, h, "/api/v1/parties", map[string]string{"name": "Idle Customer", "kind": "customer"})

	create(t, h, "/api/v1/purchases", map[string]any{
		"party_id":   supplier,
		"date":       "2026-03-01",
		"pool_id":    maize,
		"quantity":   "100",
		"unit_price": amount("10"),
		"basis":      "credit",
	})

	rec := do(t, h, http.MethodGet, "/api/v1/exports/statements?from=2026-03-01&to=2026-03-31", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var meta struct {
		Statements []struct {
			Code    string `json:"code"`
			Entries int    `json:"entries"`
			File    string `json:"file"`
		} `json:"statements"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&meta))
	require.Len(t, meta.Statements, 1)
	assert.Equal(t, "kabul-grain-co", meta.Statements[0].Code)
	assert.Equal(t, 1, meta.Statements[0].Entries)
	assert.Equal(t, "statements/kabul-grain-co.csv", meta.Statements[0].File)

	rec = do(t, h, http.MethodGet, "/api/v1/exports/statements.zip", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	assert.Len(t, zr.File, 2)

	rec = do(t, h, http.MethodGet, "/api/v1/exports/statements?kind=vendor", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decodeError(t, rec).Error)
}
