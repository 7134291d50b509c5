package view

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/farmbook/internal/bookkeeping"
	"github.com/MrJamesThe3rd/farmbook/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateReading
	importStatePreview
	importStateImporting
	importStateResult
)

// ImportModel books a supplier purchase sheet. The sheet is previewed first
// and then recorded all-or-nothing; importing the same file twice is a replay.
type ImportModel struct {
	CommonModel
	books         *bookkeeping.Service
	importService *importer.Service

	state      importState
	filePicker filepicker.Model
	path       string

	rows    []importer.PurchaseRow
	params  []bookkeeping.PurchaseParams
	key     string
	preview list.Model

	status string
	err    error
}

func NewImportModel(books *bookkeeping.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		books:         books,
		importService: impSvc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Purchases" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStatePreview:
		return "Enter: book all rows | Esc: pick another file"
	case importStateResult:
		return "Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStatePreview {
			return m.updatePreview(msg)
		}

	case sheetReadMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.rows, m.params, m.key = msg.rows, msg.params, msg.key
		m.state = importStatePreview

		items := make([]list.Item, len(m.rows))
		for i, r := range m.rows {
			items[i] = rowItem{row: r}
		}

		m.preview = list.New(items, rowDelegate{}, 100, 20)
		m.preview.Title = fmt.Sprintf("%d purchases in %s", len(m.rows), m.path)
		m.preview.SetShowStatusBar(false)
		m.preview.SetFilteringEnabled(false)
		m.preview.SetShowHelp(false)

		return m, nil

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d purchases.", len(msg.result.Purchases))
		if msg.result.Replayed {
			m.status = "This sheet was already imported; nothing was booked again."
		}

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateReading
		m.path = path
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.readCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStatePreview, importStateResult:
		m.state = importStateFilePick
		m.rows, m.params = nil, nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	case importStateReading, importStateImporting:
		return m, nil
	}

	return m, Back
}

func (m ImportModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		m.state = importStateImporting
		m.status = "Booking purchases..."

		return m, m.importCmd()
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return padStyle.Render(
			titleStyle.Render("Import purchases") + "\n\nSelect a supplier sheet (CSV):\n\n" + m.filePicker.View(),
		)
	case importStateReading, importStateImporting:
		return padStyle.Render(m.status)
	case importStatePreview:
		return padStyle.Render(m.preview.View() + "\n" + dimStyle.Render(m.ShortHelp()))
	case importStateResult:
		style := okStyle
		if m.err != nil {
			style = errStyle
		}

		return padStyle.Render(style.Render(m.status) + "\n\n" + dimStyle.Render("(Esc to go back)"))
	}

	return ""
}

// Messages

type sheetReadMsg struct {
	rows   []importer.PurchaseRow
	params []bookkeeping.PurchaseParams
	key    string
	err    error
}

type importResultMsg struct {
	result *bookkeeping.ImportResult
	err    error
}

// sheetKey identifies a sheet by content so a second import of the same file
// replays instead of booking twice.
func sheetKey(data []byte) string {
	sum := sha256.Sum256(data)
	return "sheet:" + hex.EncodeToString(sum[:])
}

func (m ImportModel) readCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return sheetReadMsg{err: err}
		}

		rows, err := importer.ParsePurchases(bytes.NewReader(data))
		if err != nil {
			return sheetReadMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		params, err := m.importService.Purchases(ctx, bytes.NewReader(data))
		if err != nil {
			return sheetReadMsg{err: err}
		}

		return sheetReadMsg{rows: rows, params: params, key: sheetKey(data)}
	}
}

func (m ImportModel) importCmd() tea.Cmd {
	params, key := m.params, m.key

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := m.books.RecordPurchases(ctx, key, params)

		return importResultMsg{result: res, err: err}
	}
}

// Preview list item

type rowItem struct {
	row importer.PurchaseRow
}

func (i rowItem) Title() string       { return "" }
func (i rowItem) Description() string { return "" }
func (i rowItem) FilterValue() string { return i.row.Supplier }

type rowDelegate struct{}

func (d rowDelegate) Height() int                             { return 2 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(rowItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	r := item.row

	line1 := fmt.Sprintf("%s%s  %s  %s %s @ %s %s",
		cursor,
		FormatDate(r.Date),
		r.Supplier,
		FormatQty(r.Quantity),
		r.Material,
		FormatMoney(r.UnitPrice),
		r.Currency,
	)

	line2 := fmt.Sprintf("      line %d, rate %s, %s", r.Line, r.Rate.String(), r.Basis)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
