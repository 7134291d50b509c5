// Package importer reads supplier purchase sheets exported from spreadsheets.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/apperr"
	enc "github.com/MrJamesThe3rd/farmbook/internal/encoding"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
)

// PurchaseRow is one sheet line, still in the supplier's terms.
type PurchaseRow struct {
	Line      int
	Date      time.Time
	Supplier  string
	Material  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Currency  money.Currency
	Rate      decimal.Decimal
	Basis     trade.Basis
}

type field string

const (
	fieldDate      field = "date"
	fieldSupplier  field = "supplier"
	fieldMaterial  field = "material"
	fieldQuantity  field = "quantity"
	fieldUnitPrice field = "unit_price"
	fieldCurrency  field = "currency"
	fieldRate      field = "rate"
	fieldBasis     field = "basis"
)

var required = []field{fieldDate, fieldSupplier, fieldMaterial, fieldQuantity, fieldUnitPrice, fieldCurrency, fieldRate}

// aliases maps normalised header text to a field. Sheets come from different
// suppliers, so a few spellings are accepted.
var aliases = map[string]field{
	"date":          fieldDate,
	"purchase date": fieldDate,
	"supplier":      fieldSupplier,
	"vendor":        fieldSupplier,
	"material":      fieldMaterial,
	"item":          fieldMaterial,
	"quantity":      fieldQuantity,
	"qty":           fieldQuantity,
	"unit_price":    fieldUnitPrice,
	"unit price":    fieldUnitPrice,
	"price":         fieldUnitPrice,
	"currency":      fieldCurrency,
	"rate":          fieldRate,
	"exchange_rate": fieldRate,
	"exchange rate": fieldRate,
	"basis":         fieldBasis,
	"payment":       fieldBasis,
}

var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02"}

// colIndex maps fields to their column in the row.
type colIndex map[field]int

// record is a csv row with the sheet line it started on.
type record struct {
	line  int
	cells []string
}

// ParsePurchases reads a purchase sheet separated by ';' or ','. Any encoding
// the UTF-8 reader can detect is accepted. Every malformed cell is reported,
// named by its row; blank lines are skipped.
func ParsePurchases(r io.Reader) ([]PurchaseRow, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = separator(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var records []record

	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		records = append(records, record{line: line, cells: cells})
	}

	cols, headerIdx, err := detectHeader(records)
	if err != nil {
		return nil, err
	}

	var (
		out  []PurchaseRow
		errs []error
	)

	for _, rec := range records[headerIdx+1:] {
		if blank(rec.cells) {
			continue
		}

		p, rowErrs := parseRow(cols, rec.cells, rec.line)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}

		out = append(out, p)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if len(out) == 0 {
		return nil, apperr.Invalid("file", "no purchase rows found")
	}

	return out, nil
}

// separator picks ';' when the first line holding any separator has more
// semicolons than commas. Title lines above the header are skipped.
func separator(data []byte) rune {
	for line := range bytes.Lines(data) {
		semis, commas := bytes.Count(line, []byte(";")), bytes.Count(line, []byte(","))
		if semis == 0 && commas == 0 {
			continue
		}

		if semis > commas {
			return ';'
		}

		return ','
	}

	return ','
}

func detectHeader(records []record) (colIndex, int, error) {
	for idx, rec := range records {
		cols := make(colIndex)

		for i, name := range rec.cells {
			if f, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
				cols[f] = i
			}
		}

		if len(cols) == 0 {
			continue
		}

		var missing []string

		for _, f := range required {
			if _, ok := cols[f]; !ok {
				missing = append(missing, string(f))
			}
		}

		if len(missing) > 0 {
			return nil, 0, apperr.Invalidf("header", "missing columns: %s", strings.Join(missing, ", "))
		}

		return cols, idx, nil
	}

	return nil, 0, apperr.Invalid("header", "no header row found")
}

func parseRow(cols colIndex, row []string, line int) (PurchaseRow, []error) {
	var errs []error

	bad := func(f field, format string, args ...any) {
		errs = append(errs, apperr.Invalidf(fmt.Sprintf("row %d %s", line, f), format, args...))
	}

	p := PurchaseRow{
		Line:     line,
		Supplier: cell(row, cols, fieldSupplier),
		Material: cell(row, cols, fieldMaterial),
		Basis:    trade.Credit,
	}

	if d, ok := parseDate(cell(row, cols, fieldDate)); ok {
		p.Date = d
	} else {
		bad(fieldDate, "unrecognised date %q", cell(row, cols, fieldDate))
	}

	if p.Supplier == "" {
		bad(fieldSupplier, "is required")
	}

	if p.Material == "" {
		bad(fieldMaterial, "is required")
	}

	number := func(f field) decimal.Decimal {
		raw := cell(row, cols, f)

		v, err := parseNumber(raw)
		if err != nil {
			bad(f, "not a number: %q", raw)
			return decimal.Zero
		}

		if !v.IsPositive() {
			bad(f, "must be greater than zero")
		}

		return v
	}

	p.Quantity = number(fieldQuantity)
	p.UnitPrice = number(fieldUnitPrice)
	p.Rate = number(fieldRate)

	cur, err := money.ParseCurrency(cell(row, cols, fieldCurrency))
	if err != nil {
		bad(fieldCurrency, "%s", err.Error())
	}

	p.Currency = cur

	if raw := cell(row, cols, fieldBasis); raw != "" {
		p.Basis = trade.Basis(strings.ToLower(raw))
		if !p.Basis.Valid() {
			bad(fieldBasis, "must be %q or %q", trade.Cash, trade.Credit)
		}
	}

	return p, errs
}

func cell(row []string, cols colIndex, f field) string {
	idx, ok := cols[f]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseNumber accepts "1234.5", "1,234.50", "1.234,50" and "12,5". When both
// separators appear the last one is the decimal point.
func parseNumber(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, " ", "")

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")

	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	return decimal.NewFromString(s)
}
