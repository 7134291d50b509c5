package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
	"github.com/MrJamesThe3rd/farmbook/internal/money"
	"github.com/MrJamesThe3rd/farmbook/internal/trade"
)

type paymentInput struct {
	partyID     string
	direction   string
	currency    string
	amount      string
	rate        string
	description string
	date        string
}

type PaymentModel struct {
	CommonModel
	ledger *ledger.Service
	books  *bookkeeping.Service

	form    *huh.Form
	input   *paymentInput
	parties []*ledger.Party
	key     string

	saving  bool
	payment *trade.Payment
	err     error
}

func NewPaymentModel(l *ledger.Service, books *bookkeeping.Service) PaymentModel {
	in := &paymentInput{direction: string(trade.Received), currency: string(money.Primary)}

	return PaymentModel{
		ledger: l,
		books:  books,
		input:  in,
	}
}

func (m PaymentModel) Title() string { return "Record Payment" }

func (m PaymentModel) ShortHelp() string {
	if m.payment != nil || (m.err != nil && m.form == nil) {
		return "Esc: back to menu | n: new payment"
	}

	return "Esc: back"
}

type paymentPartiesMsg struct {
	parties []*ledger.Party
	err     error
}

type paymentDoneMsg struct {
	payment *trade.Payment
	err     error
}

func (m PaymentModel) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		parties, err := m.ledger.ListParties(ctx, nil)
		if err == nil && len(parties) == 0 {
			err = errors.New("no parties yet")
		}

		return paymentPartiesMsg{parties: parties, err: err}
	}
}

func (m PaymentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case paymentPartiesMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.parties = msg.parties
		m.key = uuid.NewString()
		m.form = m.buildForm()

		return m, m.form.Init()

	case paymentDoneMsg:
		m.saving = false
		m.payment, m.err = msg.payment, msg.err

		if m.err != nil {
			m.form = nil
		}

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if msg.String() == "n" && (m.payment != nil || m.form == nil) && !m.saving {
			next := NewPaymentModel(m.ledger, m.books)
			return next, next.Init()
		}
	}

	if m.form == nil || m.saving || m.payment != nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.saving = true

	return m, m.saveCmd()
}

func (m PaymentModel) buildForm() *huh.Form {
	parties := make([]huh.Option[string], len(m.parties))
	for i, p := range m.parties {
		parties[i] = huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.Kind), p.ID.String())
	}

	currencies := make([]huh.Option[string], len(money.Currencies))
	for i, c := range money.Currencies {
		currencies[i] = huh.NewOption(string(c), string(c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Party").
				Options(parties...).
				Value(&m.input.partyID),

			huh.NewSelect[string]().
				Title("Direction").
				Options(
					huh.NewOption("Received from party", string(trade.Received)),
					huh.NewOption("Paid to party", string(trade.Paid)),
				).
				Value(&m.input.direction),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Currency").
				Options(currencies...).
				Value(&m.input.currency),

			huh.NewInput().
				Title("Amount").
				Value(&m.input.amount).
				Validate(positiveDecimal),

			huh.NewInput().
				Title("Exchange rate (AFG per USD)").
				Placeholder("e.g. 70").
				Value(&m.input.rate).
				Validate(positiveDecimal),

			huh.NewInput().
				Title("Description").
				Placeholder("optional").
				Value(&m.input.description),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD, blank for today").
				Value(&m.input.date).
				Validate(optionalDate),
		),
	).WithWidth(60).WithShowHelp(false)
}

func optionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return errors.New("use YYYY-MM-DD")
	}

	return nil
}

func (m PaymentModel) params() (bookkeeping.PaymentParams, error) {
	in := m.input

	partyID, err := uuid.Parse(in.partyID)
	if err != nil {
		return bookkeeping.PaymentParams{}, errors.New("pick a party")
	}

	currency, err := money.ParseCurrency(in.currency)
	if err != nil {
		return bookkeeping.PaymentParams{}, err
	}

	value, err := decimal.NewFromString(strings.TrimSpace(in.amount))
	if err != nil {
		return bookkeeping.PaymentParams{}, fmt.Errorf("amount: %w", err)
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(in.rate))
	if err != nil {
		return bookkeeping.PaymentParams{}, fmt.Errorf("exchange rate: %w", err)
	}

	var date time.Time
	if s := strings.TrimSpace(in.date); s != "" {
		if date, err = time.Parse(time.DateOnly, s); err != nil {
			return bookkeeping.PaymentParams{}, fmt.Errorf("date: %w", err)
		}
	}

	return bookkeeping.PaymentParams{
		Key:         m.key,
		PartyID:     partyID,
		Date:        date,
		Direction:   trade.PaymentDirection(in.direction),
		Description: in.description,
		Amount:      bookkeeping.Amount{Value: value, Currency: currency, Rate: rate},
	}, nil
}

func (m PaymentModel) saveCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := m.params()
		if err != nil {
			return paymentDoneMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		payment, err := m.books.RecordPayment(ctx, p)

		return paymentDoneMsg{payment: payment, err: err}
	}
}

func (m PaymentModel) View() string {
	header := titleStyle.Render("Record payment")

	switch {
	case m.err != nil:
		return padStyle.Render(header + "\n\n" + errStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + dimStyle.Render(m.ShortHelp()))
	case m.payment != nil:
		p := m.payment

		return padStyle.Render(
			okStyle.Render("Payment recorded") + "\n\n" +
				fmt.Sprintf("%s  %s\n", FormatDate(p.Date), p.Description) +
				fmt.Sprintf("%s AFG / %s USD at %s\n", FormatMoney(p.Amount.Primary), FormatMoney(p.Amount.Secondary), p.Amount.Rate.String()) +
				"\n" + dimStyle.Render(m.ShortHelp()),
		)
	case m.saving:
		return padStyle.Render(header + "\n\nSaving...")
	case m.form == nil:
		return padStyle.Render(header + "\n\nLoading parties...")
	}

	return padStyle.Render(header + "\n\n" + m.form.View())
}
