package ledger

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

// Line is an entry annotated with the party balance right after it.
type Line struct {
	Entry   *Entry
	Balance decimal.Decimal
}

// Totals holds a balance in both currencies. They are never converted into each other.
type Totals struct {
	Primary   decimal.Decimal
	Secondary decimal.Decimal
}

func (t Totals) In(c money.Currency) decimal.Decimal {
	if c == money.Secondary {
		return t.Secondary
	}

	return t.Primary
}

func (t Totals) add(e *Entry) Totals {
	return Totals{
		Primary:   t.Primary.Add(e.Net(money.Primary)),
		Secondary: t.Secondary.Add(e.Net(money.Secondary)),
	}
}

// StatementLine is an entry annotated with the cumulative balance in both currencies.
type StatementLine struct {
	Entry   *Entry
	Balance Totals
}

// Statement is the slice of a party's history that falls in a date range. Balances
// are cumulative over the full history, so Opening carries everything before the range.
type Statement struct {
	PartyID uuid.UUID
	Range   DateRange
	Opening Totals
	Lines   []StatementLine
	Closing Totals
}

// SortEntries orders entries by (date, insertion order).
func SortEntries(entries []*Entry) {
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}

		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}

		return 0
	})
}

// Balance sums debit minus credit in currency c. No entries yield zero.
func Balance(entries []*Entry, c money.Currency) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Net(c))
	}

	return total
}

// Running replays entries in (date, insertion order) and returns each with the balance after it.
func Running(entries []*Entry, c money.Currency) []Line {
	ordered := slices.Clone(entries)
	SortEntries(ordered)

	lines := make([]Line, 0, len(ordered))
	balance := decimal.Zero

	for _, e := range ordered {
		balance = balance.Add(e.Net(c))
		lines = append(lines, Line{Entry: e, Balance: balance})
	}

	return lines
}

// BuildStatement restricts the full history to r while carrying balances from before it.
func BuildStatement(partyID uuid.UUID, entries []*Entry, r DateRange) Statement {
	ordered := slices.Clone(entries)
	SortEntries(ordered)

	st := Statement{
		PartyID: partyID,
		Range:   r,
		Lines:   []StatementLine{},
	}

	var running Totals

	for _, e := range ordered {
		running = running.add(e)

		switch {
		case !r.From.IsZero() && e.Date.Before(r.From):
			st.Opening = running
		case r.Contains(e.Date):
			st.Lines = append(st.Lines, StatementLine{Entry: e, Balance: running})
			st.Closing = running
		}
	}

	if len(st.Lines) == 0 {
		st.Closing = st.Opening
	}

	return st
}

// Day truncates t to its calendar day in UTC. Entry dates are stored as days.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
