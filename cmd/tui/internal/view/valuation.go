package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
)

// ValuationModel lists stock on hand at weighted-average cost.
type ValuationModel struct {
	CommonModel
	inventory *inventory.Service

	table     table.Model
	valuation *inventory.Valuation
	currency  money.Currency
	kindIdx   int

	err error
}

var poolKinds = []*inventory.Kind{nil, new(inventory.KindRawMaterial), new(inventory.KindFinishedFeed)}

func NewValuationModel(svc *inventory.Service) ValuationModel {
	return ValuationModel{
		inventory: svc,
		currency:  money.Primary,
		table: newTable([]table.Column{
			{Title: "Pool", Width: 24},
			{Title: "Kind", Width: 14},
			{Title: "Stock", Width: 12},
			{Title: "Unit", Width: 6},
			{Title: "Avg Cost", Width: 14},
			{Title: "Value", Width: 16},
		}),
	}
}

func (m ValuationModel) Title() string { return "Inventory Valuation" }

func (m ValuationModel) ShortHelp() string {
	return "Esc: back | c: toggle currency | k: kind filter | r: refresh"
}

func (m ValuationModel) Init() tea.Cmd {
	return m.loadCmd()
}

type valuationLoadedMsg struct {
	valuation *inventory.Valuation
	err       error
}

func (m ValuationModel) loadCmd() tea.Cmd {
	c, kind := m.currency, poolKinds[m.kindIdx]

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		v, err := m.inventory.Valuation(ctx, c, kind)

		return valuationLoadedMsg{valuation: v, err: err}
	}
}

func (m ValuationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case valuationLoadedMsg:
		m.err = msg.err
		m.valuation = msg.valuation
		m.refreshTable()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "c":
			if m.currency == money.Primary {
				m.currency = money.Secondary
			} else {
				m.currency = money.Primary
			}

			return m, m.loadCmd()
		case "k":
			m.kindIdx = (m.kindIdx + 1) % len(poolKinds)
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *ValuationModel) refreshTable() {
	if m.valuation == nil {
		m.table.SetRows(nil)
		return
	}

	rows := make([]table.Row, len(m.valuation.Lines))
	for i, l := range m.valuation.Lines {
		rows[i] = table.Row{
			l.Pool.Name,
			string(l.Pool.Kind),
			FormatQty(l.Stock),
			l.Pool.Unit,
			FormatMoney(l.UnitCost),
			FormatMoney(l.Value),
		}
	}

	m.table.SetRows(rows)
}

func (m ValuationModel) View() string {
	header := titleStyle.Render("Inventory valuation")

	if m.err != nil {
		return padStyle.Render(header + "\n\n" + errStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.valuation == nil {
		return padStyle.Render(header + "\n\nLoading...")
	}

	filter := "all pools"
	if k := poolKinds[m.kindIdx]; k != nil {
		filter = string(*k)
	}

	total := okStyle.Render(fmt.Sprintf("Total %s %s", FormatMoney(m.valuation.Total), m.valuation.Currency))

	return padStyle.Render(
		header + dimStyle.Render("  ("+filter+")") + "\n\n" + m.table.View() + "\n\n" + total + "\n\n" + dimStyle.Render(m.ShortHelp()),
	)
}
