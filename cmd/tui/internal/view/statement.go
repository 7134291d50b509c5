package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

type statementState int

const (
	statementStatePeriod statementState = iota
	statementStateTable
)

// StatementModel shows one party's entries in a period with running balances.
type StatementModel struct {
	CommonModel
	ledger *ledger.Service
	party  *ledger.Party

	state    statementState
	picker   PeriodPicker
	label    string
	currency money.Currency

	table     table.Model
	statement *ledger.Statement
	err       error
}

func NewStatementModel(svc *ledger.Service, party *ledger.Party) StatementModel {
	return StatementModel{
		ledger:   svc,
		party:    party,
		picker:   NewPeriodPicker(),
		currency: money.Primary,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Description", Width: 34},
			{Title: "Debit", Width: 14},
			{Title: "Credit", Width: 14},
			{Title: "Balance", Width: 16},
		}),
	}
}

func (m StatementModel) ShortHelp() string {
	if m.state == statementStatePeriod {
		return "Esc: back to parties"
	}

	return "Esc: change period | c: toggle currency"
}

func (m StatementModel) Init() tea.Cmd {
	return nil
}

type statementLoadedMsg struct {
	statement *ledger.Statement
	err       error
}

func (m StatementModel) loadCmd(r ledger.DateRange) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := m.ledger.Statement(ctx, m.party.ID, r)

		return statementLoadedMsg{statement: st, err: err}
	}
}

func (m StatementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PeriodSelectedMsg:
		m.label = msg.Label
		m.state = statementStateTable

		return m, m.loadCmd(msg.Range)

	case statementLoadedMsg:
		m.err = msg.err
		m.statement = msg.statement
		m.refreshTable()

		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)

	if m.state == statementStatePeriod {
		if isKey && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, func() tea.Msg { return closeStatementMsg{} }
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	if isKey {
		switch keyMsg.String() {
		case "esc":
			m.state = statementStatePeriod
			m.picker = NewPeriodPicker()
			m.statement = nil

			return m, nil
		case "c":
			if m.currency == money.Primary {
				m.currency = money.Secondary
			} else {
				m.currency = money.Primary
			}

			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *StatementModel) refreshTable() {
	if m.statement == nil {
		m.table.SetRows(nil)
		return
	}

	rows := make([]table.Row, 0, len(m.statement.Lines))

	for _, l := range m.statement.Lines {
		debit, credit := l.Entry.DebitPrimary, l.Entry.CreditPrimary
		if m.currency == money.Secondary {
			debit, credit = l.Entry.DebitSecondary, l.Entry.CreditSecondary
		}

		rows = append(rows, table.Row{
			FormatDate(l.Entry.Date),
			l.Entry.Description,
			blankZero(debit),
			blankZero(credit),
			FormatMoney(l.Balance.In(m.currency)),
		})
	}

	m.table.SetRows(rows)
}

func blankZero(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}

	return FormatMoney(d)
}

func (m StatementModel) View() string {
	header := titleStyle.Render(fmt.Sprintf("%s (%s)", m.party.Name, m.party.Kind))

	if m.state == statementStatePeriod {
		return padStyle.Render(header + "\n\n" + m.picker.View())
	}

	if m.err != nil {
		return padStyle.Render(header + "\n\n" + errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.statement == nil {
		return padStyle.Render(header + "\n\nLoading...")
	}

	summary := fmt.Sprintf("%s  |  %s  |  opening %s  |  closing %s",
		m.label,
		m.currency,
		FormatMoney(m.statement.Opening.In(m.currency)),
		FormatMoney(m.statement.Closing.In(m.currency)),
	)

	return padStyle.Render(
		header + "\n" + dimStyle.Render(summary) + "\n\n" + m.table.View() + "\n\n" + dimStyle.Render(m.ShortHelp()),
	)
}
