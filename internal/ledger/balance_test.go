package ledger_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debitEntry(seq int64, date time.Time, primary string) *ledger.Entry {
	return &ledger.Entry{
		ID:              uuid.New(),
		Seq:             seq,
		Date:            date,
		DebitPrimary:    dec(primary),
		DebitSecondary:  dec(primary).DivRound(dec("70"), 2),
		CreditPrimary:   decimal.Zero,
		CreditSecondary: decimal.Zero,
		Rate:            dec("70"),
	}
}

func creditEntry(seq int64, date time.Time, primary string) *ledger.Entry {
	return &ledger.Entry{
		ID:              uuid.New(),
		Seq:             seq,
		Date:            date,
		DebitPrimary:    decimal.Zero,
		DebitSecondary:  decimal.Zero,
		CreditPrimary:   dec(primary),
		CreditSecondary: dec(primary).DivRound(dec("70"), 2),
		Rate:            dec("70"),
	}
}

func TestBalance_DebitThenCredit(t *testing.T) {
	e1 := debitEntry(1, day(2024, 3, 1), "500")
	e2 := creditEntry(2, day(2024, 3, 3), "200")

	// Deliberately out of order: the replay must sort by date.
	entries := []*ledger.Entry{e2, e1}

	assert.True(t, ledger.Balance(entries, money.Primary).Equal(dec("300")))

	lines := ledger.Running(entries, money.Primary)
	require.Len(t, lines, 2)
	assert.Equal(t, e1, lines[0].Entry)
	assert.True(t, lines[0].Balance.Equal(dec("500")))
	assert.Equal(t, e2, lines[1].Entry)
	assert.True(t, lines[1].Balance.Equal(dec("300")))
}

func TestBalance_Empty(t *testing.T) {
	assert.True(t, ledger.Balance(nil, money.Primary).IsZero())
	assert.Empty(t, ledger.Running(nil, money.Secondary))
}

func TestBalance_CurrenciesAreIndependent(t *testing.T) {
	e := &ledger.Entry{
		Seq:             1,
		Date:            day(2024, 1, 1),
		DebitPrimary:    dec("7000"),
		DebitSecondary:  dec("100"),
		CreditPrimary:   decimal.Zero,
		CreditSecondary: decimal.Zero,
		Rate:            dec("70"),
	}
	// Paid later at a different rate: primary nets to zero, secondary does not.
	p := &ledger.Entry{
		Seq:             2,
		Date:            day(2024, 2, 1),
		DebitPrimary:    decimal.Zero,
		DebitSecondary:  decimal.Zero,
		CreditPrimary:   dec("7000"),
		CreditSecondary: dec("97.22"),
		Rate:            dec("72"),
	}

	entries := []*ledger.Entry{e, p}
	assert.True(t, ledger.Balance(entries, money.Primary).IsZero())
	assert.True(t, ledger.Balance(entries, money.Secondary).Equal(dec("2.78")))
}

func TestRunning_SameDateUsesInsertionOrder(t *testing.T) {
	d := day(2024, 5, 5)
	a := debitEntry(10, d, "100")
	b := creditEntry(11, d, "40")
	c := debitEntry(12, d, "5")

	lines := ledger.Running([]*ledger.Entry{c, a, b}, money.Primary)
	require.Len(t, lines, 3)
	assert.Equal(t, []*ledger.Entry{a, b, c}, []*ledger.Entry{lines[0].Entry, lines[1].Entry, lines[2].Entry})
	assert.True(t, lines[2].Balance.Equal(dec("65")))
}

func TestRunning_AgreesWithBalance(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	var entries []*ledger.Entry

	for i := range 200 {
		date := day(2024, 1, 1).AddDate(0, 0, rng.IntN(60))
		amount := decimal.New(int64(rng.IntN(100000)+1), -2).String()

		if rng.IntN(2) == 0 {
			entries = append(entries, debitEntry(int64(i+1), date, amount))
		} else {
			entries = append(entries, creditEntry(int64(i+1), date, amount))
		}
	}

	for _, c := range money.Currencies {
		lines := ledger.Running(entries, c)
		require.Len(t, lines, len(entries))

		replayed := decimal.Zero
		for _, l := range lines {
			replayed = replayed.Add(l.Entry.Net(c))
			assert.True(t, replayed.Equal(l.Balance))
		}

		assert.True(t, ledger.Balance(entries, c).Equal(lines[len(lines)-1].Balance), "currency %s", c)
	}
}

func TestBuildStatement_CarriesOpeningBalance(t *testing.T) {
	partyID := uuid.New()
	e1 := debitEntry(1, day(2024, 1, 10), "1000")
	e2 := creditEntry(2, day(2024, 2, 5), "300")
	e3 := debitEntry(3, day(2024, 2, 20), "50")
	e4 := creditEntry(4, day(2024, 3, 2), "100")

	st := ledger.BuildStatement(partyID, []*ledger.Entry{e1, e2, e3, e4}, ledger.DateRange{
		From: day(2024, 2, 1),
		To:   day(2024, 2, 29),
	})

	assert.Equal(t, partyID, st.PartyID)
	assert.True(t, st.Opening.Primary.Equal(dec("1000")))
	require.Len(t, st.Lines, 2)
	assert.Equal(t, e2, st.Lines[0].Entry)
	assert.True(t, st.Lines[0].Balance.Primary.Equal(dec("700")))
	assert.Equal(t, e3, st.Lines[1].Entry)
	assert.True(t, st.Lines[1].Balance.Primary.Equal(dec("750")))
	assert.True(t, st.Closing.Primary.Equal(dec("750")))
}

func TestBuildStatement_EmptyRange(t *testing.T) {
	e1 := debitEntry(1, day(2024, 1, 10), "1000")

	st := ledger.BuildStatement(uuid.New(), []*ledger.Entry{e1}, ledger.DateRange{
		From: day(2024, 6, 1),
		To:   day(2024, 6, 30),
	})

	assert.Empty(t, st.Lines)
	assert.True(t, st.Opening.Primary.Equal(dec("1000")))
	assert.True(t, st.Closing.Primary.Equal(dec("1000")))
}
