package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/farmbook/internal/ledger"
)

// Period is a preset statement range.
type Period int

const (
	PeriodThisMonth Period = iota
	PeriodLastMonth
	PeriodLast90Days
	PeriodThisYear
	PeriodAll
	PeriodCustom
)

func (p Period) String() string {
	switch p {
	case PeriodThisMonth:
		return "This Month"
	case PeriodLastMonth:
		return "Last Month"
	case PeriodLast90Days:
		return "Last 90 Days"
	case PeriodThisYear:
		return "This Year"
	case PeriodAll:
		return "All Time"
	case PeriodCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// periodRange resolves p against today. Ledger dates are whole days, so both
// bounds are midnight UTC and inclusive. PeriodAll is the open range.
func periodRange(p Period, now time.Time) ledger.DateRange {
	today := ledger.Day(now)

	switch p {
	case PeriodThisMonth:
		return ledger.DateRange{From: today.AddDate(0, 0, 1-today.Day()), To: today}
	case PeriodLastMonth:
		first := today.AddDate(0, 0, 1-today.Day())
		return ledger.DateRange{From: first.AddDate(0, -1, 0), To: first.AddDate(0, 0, -1)}
	case PeriodLast90Days:
		return ledger.DateRange{From: today.AddDate(0, 0, -89), To: today}
	case PeriodThisYear:
		return ledger.DateRange{From: time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC), To: today}
	}

	return ledger.DateRange{}
}

// PeriodSelectedMsg carries the chosen range. Zero bounds are open.
type PeriodSelectedMsg struct {
	Range ledger.DateRange
	Label string
}

type pickerState int

const (
	pickerStateSelect pickerState = iota
	pickerStateCustom
)

// PeriodPicker lets the user choose a preset or type a custom range.
type PeriodPicker struct {
	state    pickerState
	selected Period

	fromInput  textinput.Model
	toInput    textinput.Model
	focusIndex int

	err error
	now func() time.Time
}

func NewPeriodPicker() PeriodPicker {
	from := textinput.New()
	from.Placeholder = "YYYY-MM-DD"
	from.CharLimit = 10
	from.Width = 12
	from.Prompt = "From: "

	to := textinput.New()
	to.Placeholder = "YYYY-MM-DD"
	to.CharLimit = 10
	to.Width = 12
	to.Prompt = "To:   "

	return PeriodPicker{
		state:     pickerStateSelect,
		selected:  PeriodThisMonth,
		fromInput: from,
		toInput:   to,
		now:       time.Now,
	}
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.state == pickerStateSelect {
			return m.updateSelect(keyMsg)
		}

		if next, cmd, handled := m.updateCustom(keyMsg); handled {
			return next, cmd
		}
	}

	if m.state == pickerStateCustom {
		var from, to tea.Cmd

		m.fromInput, from = m.fromInput.Update(msg)
		m.toInput, to = m.toInput.Update(msg)

		return m, tea.Batch(from, to)
	}

	return m, nil
}

func (m PeriodPicker) updateSelect(msg tea.KeyMsg) (PeriodPicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > PeriodThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < PeriodCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == PeriodCustom {
			m.state = pickerStateCustom
			m.focusIndex = 0
			m.fromInput.Focus()

			return m, textinput.Blink
		}

		sel := PeriodSelectedMsg{Range: periodRange(m.selected, m.now()), Label: m.selected.String()}

		return m, func() tea.Msg { return sel }
	}

	return m, nil
}

func (m PeriodPicker) updateCustom(msg tea.KeyMsg) (PeriodPicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = 1 - m.focusIndex
		m.fromInput.Blur()
		m.toInput.Blur()

		if m.focusIndex == 0 {
			m.fromInput.Focus()
		} else {
			m.toInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		r, err := parseRange(m.fromInput.Value(), m.toInput.Value())
		if err != nil {
			m.err = err
			return m, nil, true
		}

		m.err = nil
		sel := PeriodSelectedMsg{Range: r, Label: fmt.Sprintf("%s to %s", FormatDate(r.From), FormatDate(r.To))}

		return m, func() tea.Msg { return sel }, true

	case "esc":
		m.state = pickerStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

// parseRange reads a custom range. Either bound may be left blank.
func parseRange(from, to string) (ledger.DateRange, error) {
	var r ledger.DateRange

	if s := strings.TrimSpace(from); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return r, fmt.Errorf("invalid from date (YYYY-MM-DD)")
		}

		r.From = t
	}

	if s := strings.TrimSpace(to); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return r, fmt.Errorf("invalid to date (YYYY-MM-DD)")
		}

		r.To = t
	}

	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, fmt.Errorf("to date is before from date")
	}

	return r, nil
}

func (m PeriodPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == pickerStateCustom {
		return fmt.Sprintf(
			"Statement range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.fromInput.View(),
			m.toInput.View(),
			errStr,
		)
	}

	var b strings.Builder

	b.WriteString("Statement period:\n\n")

	for p := PeriodThisMonth; p <= PeriodCustom; p++ {
		cursor := " "
		if m.selected == p {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, p)
	}

	b.WriteString("\n(Enter to select, Esc to back)")

	return b.String() + errStr
}

// IsSelecting reports whether the picker is on the preset list.
func (m PeriodPicker) IsSelecting() bool {
	return m.state == pickerStateSelect
}
