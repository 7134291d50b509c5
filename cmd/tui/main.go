package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/farmbook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/farmbook/internal/app"
	"github.com/MrJamesThe3rd/farmbook/internal/config"
	"github.com/MrJamesThe3rd/farmbook/internal/database"
	"github.com/MrJamesThe3rd/farmbook/internal/logger"
)

type model struct {
	farm *app.App

	currentView View

	partiesView   view.PartiesModel
	valuationView view.ValuationModel
	produceView   view.ProduceModel
	paymentView   view.PaymentModel
	importView    view.ImportModel
	exportView    view.ExportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewParties   View = 1
	ViewValuation View = 2
	ViewProduce   View = 3
	ViewPayment   View = 4
	ViewImport    View = 5
	ViewExport    View = 6
)

func initialModel(farm *app.App) model {
	return model{
		farm:          farm,
		currentView:   ViewMenu,
		partiesView:   view.NewPartiesModel(farm.Ledger),
		valuationView: view.NewValuationModel(farm.Inventory),
		produceView:   view.NewProduceModel(farm.Inventory, farm.Books),
		paymentView:   view.NewPaymentModel(farm.Ledger, farm.Books),
		importView:    view.NewImportModel(farm.Books, farm.Importer),
		exportView:    view.NewExportModel(farm.Exporter),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewParties
				m.partiesView = view.NewPartiesModel(m.farm.Ledger)

				return m, m.partiesView.Init()
			case "2":
				m.currentView = ViewValuation
				m.valuationView = view.NewValuationModel(m.farm.Inventory)

				return m, m.valuationView.Init()
			case "3":
				m.currentView = ViewProduce
				m.produceView = view.NewProduceModel(m.farm.Inventory, m.farm.Books)

				return m, m.produceView.Init()
			case "4":
				m.currentView = ViewPayment
				m.paymentView = view.NewPaymentModel(m.farm.Ledger, m.farm.Books)

				return m, m.paymentView.Init()
			case "5":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.farm.Books, m.farm.Importer)

				return m, m.importView.Init()
			case "6":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.farm.Exporter)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewParties:
		var newModel tea.Model
		newModel, cmd = m.partiesView.Update(msg)
		m.partiesView = newModel.(view.PartiesModel)
	case ViewValuation:
		var newModel tea.Model
		newModel, cmd = m.valuationView.Update(msg)
		m.valuationView = newModel.(view.ValuationModel)
	case ViewProduce:
		var newModel tea.Model
		newModel, cmd = m.produceView.Update(msg)
		m.produceView = newModel.(view.ProduceModel)
	case ViewPayment:
		var newModel tea.Model
		newModel, cmd = m.paymentView.Update(msg)
		m.paymentView = newModel.(view.PaymentModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Farmbook\n\n" +
				"1. Parties & Balances\n" +
				"2. Inventory Valuation\n" +
				"3. Produce Feed Batch\n" +
				"4. Record Payment\n" +
				"5. Import Purchase Sheet\n" +
				"6. Export Statements\n\n" +
				"q. Quit",
		)
	case ViewParties:
		return m.partiesView.View()
	case ViewValuation:
		return m.valuationView.View()
	case ViewProduce:
		return m.produceView.View()
	case ViewPayment:
		return m.paymentView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewFile(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	driver, err := cfg.Driver()
	if err != nil {
		return err
	}

	db, err := database.New(driver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	p := tea.NewProgram(initialModel(app.New(db, log, nil)))
	if _, err := p.Run(); err != nil {
		log.Error("failed to run TUI", zap.Error(err))
		return err
	}

	return nil
}
