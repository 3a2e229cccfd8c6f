package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/apexrecon/internal/app"
	"github.com/MrJamesThe3rd/apexrecon/internal/config"
	"github.com/MrJamesThe3rd/apexrecon/internal/database"
)

type model struct {
	orgID    uuid.UUID
	services *app.Services

	currentView View

	importView   view.ImportModel
	ledgersView  view.InvoiceLedgersModel
	depositsView view.DepositsModel
	reportView   view.ReportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewImport   View = 1
	ViewLedgers  View = 2
	ViewDeposits View = 3
	ViewReport   View = 4
)

func initialModel() (model, error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, err
	}

	if cfg.Operator.OrganizationID == uuid.Nil {
		return model{}, fmt.Errorf("ORGANIZATION_ID must be set")
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return model{}, fmt.Errorf("failed to connect to database: %w", err)
	}

	svc := app.New(db)
	orgID := cfg.Operator.OrganizationID

	return model{
		orgID:       orgID,
		services:    svc,
		currentView: ViewMenu,
		importView:  view.NewImportModel(orgID, svc.Bank, svc.Importer),
	}, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.orgID, m.services.Bank, m.services.Importer)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewLedgers
				m.ledgersView = view.NewInvoiceLedgersModel(m.orgID, m.services.Ledgers)

				return m, m.ledgersView.Init()
			case "3":
				m.currentView = ViewDeposits
				m.depositsView = view.NewDepositsModel(m.orgID, m.services.Ledgers, m.services.Matching, m.services.Reconciliation)

				return m, m.depositsView.Init()
			case "4":
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.orgID, m.services.Reports)

				return m, m.reportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewLedgers:
		var newModel tea.Model
		newModel, cmd = m.ledgersView.Update(msg)
		m.ledgersView = newModel.(view.InvoiceLedgersModel)
	case ViewDeposits:
		var newModel tea.Model
		newModel, cmd = m.depositsView.Update(msg)
		m.depositsView = newModel.(view.DepositsModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Apexrecon TUI\n" +
				lipgloss.NewStyle().Faint(true).Render(m.orgID.String()) + "\n\n" +
				"1. Import Statement\n" +
				"2. Invoice Ledgers\n" +
				"3. Unmatched Deposits\n" +
				"4. Reconciliation Report\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View()
	case ViewLedgers:
		return m.ledgersView.View()
	case ViewDeposits:
		return m.depositsView.View()
	case ViewReport:
		return m.reportView.View()
	}

	return "Unknown View"
}

func main() {
	m, err := initialModel()
	if err != nil {
		slog.Error("failed to start TUI", "error", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
