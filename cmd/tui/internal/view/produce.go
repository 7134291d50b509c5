package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/inventory"
)

type produceState int

const (
	produceStateLoading produceState = iota
	produceStateForm
	producePreview
	produceStateRunning
	produceStateResult
)

// batchInput is shared by pointer so huh bindings survive model copies.
type batchInput struct {
	formulaID string
	poolID    string
	quantity  string
}

// ProduceModel collects a batch, previews its bill of materials and then
// produces it.
type ProduceModel struct {
	CommonModel
	inventory *inventory.Service
	books     *bookkeeping.Service

	state   produceState
	form    *huh.Form
	input   *batchInput
	spinner spinner.Model

	formulas []*inventory.Formula
	feeds    []*inventory.Pool

	plan  *inventory.Plan
	key   string
	batch *inventory.Batch
	err   error
}

func NewProduceModel(inv *inventory.Service, books *bookkeeping.Service) ProduceModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ProduceModel{
		inventory: inv,
		books:     books,
		input:     &batchInput{},
		spinner:   s,
	}
}

func (m ProduceModel) Title() string { return "Produce Feed Batch" }

func (m ProduceModel) ShortHelp() string {
	switch m.state {
	case producePreview:
		return "Enter: produce | Esc: edit"
	case produceStateResult:
		return "Esc: back to menu | n: new batch"
	}

	return "Esc: back"
}

type produceOptionsMsg struct {
	formulas []*inventory.Formula
	feeds    []*inventory.Pool
	err      error
}

type planMsg struct {
	plan *inventory.Plan
	err  error
}

type batchDoneMsg struct {
	batch *inventory.Batch
	err   error
}

func (m ProduceModel) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		formulas, err := m.inventory.ListFormulas(ctx)
		if err != nil {
			return produceOptionsMsg{err: err}
		}

		feeds, err := m.inventory.ListPools(ctx, new(inventory.KindFinishedFeed))

		return produceOptionsMsg{formulas: formulas, feeds: feeds, err: err}
	}
}

func (m ProduceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case produceOptionsMsg:
		if msg.err == nil && (len(msg.formulas) == 0 || len(msg.feeds) == 0) {
			msg.err = errors.New("create a formula and a finished-feed pool first")
		}

		if msg.err != nil {
			m.err = msg.err
			m.state = produceStateResult

			return m, nil
		}

		m.formulas, m.feeds = msg.formulas, msg.feeds
		m.form = m.buildForm()
		m.state = produceStateForm

		return m, m.form.Init()

	case planMsg:
		m.plan, m.err = msg.plan, msg.err
		m.key = uuid.NewString()
		m.state = producePreview

		return m, nil

	case batchDoneMsg:
		m.batch, m.err = msg.batch, msg.err
		m.state = produceStateResult

		return m, nil
	}

	keyMsg, isKey := msg.(tea.KeyMsg)

	switch m.state {
	case produceStateLoading:
		if isKey && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

	case produceStateForm:
		if isKey && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		return m, m.planCmd()

	case producePreview:
		if !isKey {
			return m, nil
		}

		switch keyMsg.Type {
		case tea.KeyEsc:
			m.form = m.buildForm()
			m.state = produceStateForm
			m.plan, m.err = nil, nil

			return m, m.form.Init()
		case tea.KeyEnter:
			if m.err != nil || m.plan == nil || len(m.plan.Shortages) > 0 {
				return m, nil
			}

			m.state = produceStateRunning

			return m, tea.Batch(m.spinner.Tick, m.produceCmd())
		}

	case produceStateRunning:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case produceStateResult:
		if !isKey {
			return m, nil
		}

		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			next := NewProduceModel(m.inventory, m.books)
			return next, next.Init()
		}
	}

	return m, nil
}

func (m ProduceModel) buildForm() *huh.Form {
	formulas := make([]huh.Option[string], len(m.formulas))
	for i, f := range m.formulas {
		formulas[i] = huh.NewOption(f.Name, f.ID.String())
	}

	feeds := make([]huh.Option[string], len(m.feeds))
	for i, p := range m.feeds {
		feeds[i] = huh.NewOption(fmt.Sprintf("%s (%s %s on hand)", p.Name, FormatQty(p.Stock), p.Unit), p.ID.String())
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Formula").
				Options(formulas...).
				Value(&m.input.formulaID),

			huh.NewSelect[string]().
				Title("Into feed pool").
				Options(feeds...).
				Value(&m.input.poolID),

			huh.NewInput().
				Title("Quantity").
				Placeholder("e.g. 500").
				Value(&m.input.quantity).
				Validate(positiveDecimal),
		),
	).WithWidth(60).WithShowHelp(false)
}

func positiveDecimal(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a number")
	}

	if !d.IsPositive() {
		return errors.New("must be greater than zero")
	}

	return nil
}

func (m ProduceModel) params() (bookkeeping.BatchParams, error) {
	formulaID, err := uuid.Parse(m.input.formulaID)
	if err != nil {
		return bookkeeping.BatchParams{}, fmt.Errorf("pick a formula")
	}

	poolID, err := uuid.Parse(m.input.poolID)
	if err != nil {
		return bookkeeping.BatchParams{}, fmt.Errorf("pick a feed pool")
	}

	qty, err := decimal.NewFromString(strings.TrimSpace(m.input.quantity))
	if err != nil {
		return bookkeeping.BatchParams{}, fmt.Errorf("quantity: %w", err)
	}

	return bookkeeping.BatchParams{Key: m.key, FormulaID: formulaID, FeedPoolID: poolID, Quantity: qty}, nil
}

func (m ProduceModel) planCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := m.params()
		if err != nil {
			return planMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		plan, err := m.inventory.PlanBatch(ctx, p.FormulaID, p.Quantity)

		return planMsg{plan: plan, err: err}
	}
}

func (m ProduceModel) produceCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := m.params()
		if err != nil {
			return batchDoneMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		b, err := m.books.ProduceFeedBatch(ctx, p)

		return batchDoneMsg{batch: b, err: err}
	}
}

func (m ProduceModel) View() string {
	header := titleStyle.Render("Produce feed batch")

	switch m.state {
	case produceStateLoading:
		return padStyle.Render(header + "\n\nLoading formulas...")
	case produceStateForm:
		return padStyle.Render(header + "\n\n" + m.form.View())
	case producePreview:
		return padStyle.Render(header + "\n\n" + m.viewPlan() + "\n\n" + dimStyle.Render(m.ShortHelp()))
	case produceStateRunning:
		return padStyle.Render(fmt.Sprintf("%s Producing batch...", m.spinner.View()))
	}

	if m.err != nil {
		return padStyle.Render(header + "\n\n" + errStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + dimStyle.Render(m.ShortHelp()))
	}

	return padStyle.Render(
		okStyle.Render("Batch produced") + "\n\n" +
			fmt.Sprintf("Quantity:   %s\n", FormatQty(m.batch.Quantity)) +
			fmt.Sprintf("Total cost: %s AFG / %s USD\n", FormatMoney(m.batch.TotalCost.Primary), FormatMoney(m.batch.TotalCost.Secondary)) +
			fmt.Sprintf("Unit cost:  %s AFG / %s USD\n", m.batch.UnitCost.Primary.StringFixed(4), m.batch.UnitCost.Secondary.StringFixed(4)) +
			"\n" + dimStyle.Render(m.ShortHelp()),
	)
}

func (m ProduceModel) viewPlan() string {
	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s x %s\n\n", m.plan.Formula.Name, FormatQty(m.plan.Quantity))
	fmt.Fprintf(&b, "%-24s %8s %12s %12s %14s\n", "Material", "%", "Needed", "On hand", "Cost AFG")

	for _, r := range m.plan.Requirements {
		fmt.Fprintf(&b, "%-24s %8s %12s %12s %14s\n",
			r.Material.Name,
			r.Percentage.String(),
			FormatQty(r.Quantity.Round(3)),
			FormatQty(r.Material.Stock),
			FormatMoney(r.Cost.Primary),
		)
	}

	fmt.Fprintf(&b, "\nTotal %s AFG, %s AFG per unit\n", FormatMoney(m.plan.TotalCost.Primary), m.plan.UnitCost.Primary.StringFixed(4))

	if len(m.plan.Shortages) > 0 {
		b.WriteString("\n")

		for _, s := range m.plan.Shortages {
			b.WriteString(errStyle.Render(fmt.Sprintf("Short of %s: need %s, have %s", s.Name, FormatQty(s.Required), FormatQty(s.Available))))
			b.WriteString("\n")
		}
	}

	return b.String()
}
