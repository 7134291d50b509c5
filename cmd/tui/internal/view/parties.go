package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
)

type PartiesModel struct {
	CommonModel
	ledger *ledger.Service

	table     table.Model
	rows      []ledger.PartyBalance
	kindIdx   int
	statement *StatementModel

	loading bool
	err     error
}

var kindFilters = []*ledger.PartyKind{nil, new(ledger.PartyCustomer), new(ledger.PartySupplier)}

func NewPartiesModel(svc *ledger.Service) PartiesModel {
	return PartiesModel{
		ledger: svc,
		table: newTable([]table.Column{
			{Title: "Code", Width: 20},
			{Title: "Name", Width: 28},
			{Title: "Kind", Width: 10},
			{Title: "Balance AFG", Width: 16},
			{Title: "Balance USD", Width: 14},
		}),
		loading: true,
	}
}

func (m PartiesModel) Title() string { return "Parties" }

func (m PartiesModel) ShortHelp() string {
	if m.statement != nil {
		return m.statement.ShortHelp()
	}

	return "Esc: back | Enter: statement | k: kind filter | r: refresh"
}

func (m PartiesModel) Init() tea.Cmd {
	return m.loadCmd()
}

type partiesLoadedMsg struct {
	rows []ledger.PartyBalance
	err  error
}

type closeStatementMsg struct{}

func (m PartiesModel) loadCmd() tea.Cmd {
	kind := kindFilters[m.kindIdx]

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rows, err := m.ledger.Balances(ctx, kind, nil)

		return partiesLoadedMsg{rows: rows, err: err}
	}
}

func (m PartiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case partiesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.rows = msg.rows
		m.refreshTable()

		return m, nil

	case closeStatementMsg:
		m.statement = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
	}

	if m.statement != nil {
		next, cmd := m.statement.Update(msg)
		st := next.(StatementModel)
		m.statement = &st

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "k":
			m.kindIdx = (m.kindIdx + 1) % len(kindFilters)
			m.loading = true

			return m, m.loadCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.rows) {
				return m, nil
			}

			st := NewStatementModel(m.ledger, m.rows[idx].Party)
			m.statement = &st
			m.table.Blur()

			return m, st.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *PartiesModel) refreshTable() {
	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		rows[i] = table.Row{
			r.Party.Code,
			r.Party.Name,
			string(r.Party.Kind),
			FormatMoney(r.Balance.Primary),
			FormatMoney(r.Balance.Secondary),
		}
	}

	m.table.SetRows(rows)
}

func (m PartiesModel) View() string {
	if m.statement != nil {
		return m.statement.View()
	}

	filter := "all"
	if k := kindFilters[m.kindIdx]; k != nil {
		filter = string(*k)
	}

	header := titleStyle.Render("Parties") + dimStyle.Render(fmt.Sprintf("  (showing %s, debit balance is owed to the farm)", filter))

	body := m.table.View()

	switch {
	case m.err != nil:
		body = errStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.loading:
		body = "Loading..."
	case len(m.rows) == 0:
		body = dimStyle.Render("No parties yet.")
	}

	return padStyle.Render(header + "\n\n" + body + "\n\n" + dimStyle.Render(m.ShortHelp()))
}
