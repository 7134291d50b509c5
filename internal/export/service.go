package export

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
)

// Ledger is the read side the exporter needs.
type Ledger interface {
	Balances(ctx context.Context, kind *ledger.PartyKind, asOf *time.Time) ([]ledger.PartyBalance, error)
	Statement(ctx context.Context, partyID uuid.UUID, r ledger.DateRange) (*ledger.Statement, error)
}

// Filter selects which statements to export.
type Filter struct {
	Kind  *ledger.PartyKind
	Range ledger.DateRange
}

// Item is one party's statement for the filtered range.
type Item struct {
	Party     *ledger.Party
	Statement *ledger.Statement
}

// FileName is the archive path of the item's CSV.
func (i Item) FileName() string {
	return "statements/" + i.Party.Code + ".csv"
}

// Service exports party statements as CSV files.
type Service struct {
	ledger Ledger
}

func NewService(l Ledger) *Service {
	return &Service{ledger: l}
}

// Statements returns the statement of every party that has activity in the
// range or carries a balance into it. Parties with neither are skipped.
func (s *Service) Statements(ctx context.Context, f Filter) ([]Item, error) {
	var asOf *time.Time
	if !f.Range.To.IsZero() {
		asOf = &f.Range.To
	}

	balances, err := s.ledger.Balances(ctx, f.Kind, asOf)
	if err != nil {
		return nil, fmt.Errorf("listing balances: %w", err)
	}

	items := make([]Item, 0, len(balances))

	for _, b := range balances {
		st, err := s.ledger.Statement(ctx, b.Party.ID, f.Range)
		if err != nil {
			return nil, fmt.Errorf("statement for %s: %w", b.Party.Code, err)
		}

		if len(st.Lines) == 0 && isZero(st.Closing) {
			continue
		}

		items = append(items, Item{Party: b.Party, Statement: st})
	}

	return items, nil
}

// Archive writes a zip with one CSV per exported statement plus summary.txt.
func (s *Service) Archive(ctx context.Context, w io.Writer, f Filter) ([]Item, error) {
	items, err := s.Statements(ctx, f)
	if err != nil {
		return nil, err
	}

	zw := zip.NewWriter(w)

	for _, it := range items {
		fw, err := zw.Create(it.FileName())
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", it.FileName(), err)
		}

		if err := WriteCSV(fw, it.Statement); err != nil {
			return nil, fmt.Errorf("writing %s: %w", it.FileName(), err)
		}
	}

	fw, err := zw.Create("summary.txt")
	if err != nil {
		return nil, fmt.Errorf("creating summary: %w", err)
	}

	if _, err := io.WriteString(fw, Summary(items)); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}

	return items, nil
}

var header = []string{
	"date", "description", "reference",
	"debit_afg", "credit_afg", "debit_usd", "credit_usd", "rate",
	"balance_afg", "balance_usd",
}

// WriteCSV renders a statement with an opening row, one row per entry and a
// closing row. Amounts are plain decimals so spreadsheets can sum them.
func WriteCSV(w io.Writer, st *ledger.Statement) error {
	cw := csv.NewWriter(w)

	_ = cw.Write(header)
	_ = cw.Write(totalsRow(st.Range.From, "Opening balance", st.Opening))

	for _, l := range st.Lines {
		e := l.Entry

		_ = cw.Write([]string{
			date(e.Date),
			e.Description,
			string(e.Reference.Kind),
			amount(e.DebitPrimary),
			amount(e.CreditPrimary),
			amount(e.DebitSecondary),
			amount(e.CreditSecondary),
			e.Rate.String(),
			l.Balance.Primary.StringFixed(2),
			l.Balance.Secondary.StringFixed(2),
		})
	}

	_ = cw.Write(totalsRow(st.Range.To, "Closing balance", st.Closing))

	cw.Flush()

	return cw.Error()
}

func totalsRow(t time.Time, label string, b ledger.Totals) []string {
	return []string{date(t), label, "", "", "", "", "", "", b.Primary.StringFixed(2), b.Secondary.StringFixed(2)}
}

// Summary lists one line per exported statement with its closing balances.
func Summary(items []Item) string {
	var sb strings.Builder

	for _, it := range items {
		fmt.Fprintf(&sb, "* %s | %s | %d entries | %s AFG | %s USD\n",
			it.Party.Name,
			it.Party.Kind,
			len(it.Statement.Lines),
			it.Statement.Closing.Primary.StringFixed(2),
			it.Statement.Closing.Secondary.StringFixed(2),
		)
	}

	return sb.String()
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.DateOnly)
}

func amount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}

	return d.StringFixed(2)
}

func isZero(t ledger.Totals) bool {
	return t.Primary.IsZero() && t.Secondary.IsZero()
}
