package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
)

var statusFilters = []struct {
	label    string
	statuses []ledger.InvoiceStatus
}{
	{label: "Open", statuses: []ledger.InvoiceStatus{ledger.InvoiceOpen, ledger.InvoicePartiallyPaid}},
	{label: "Partially Paid", statuses: []ledger.InvoiceStatus{ledger.InvoicePartiallyPaid}},
	{label: "Paid", statuses: []ledger.InvoiceStatus{ledger.InvoicePaid}},
	{label: "Void", statuses: []ledger.InvoiceStatus{ledger.InvoiceVoid}},
	{label: "All"},
}

// InvoiceLedgersModel lists invoice ledgers and what is still owed on them.
type InvoiceLedgersModel struct {
	CommonModel
	ledgerService *ledger.Service

	table   table.Model
	ledgers []*ledger.InvoiceLedger

	statusFilterIdx int

	loading bool
	err     error
}

func NewInvoiceLedgersModel(orgID uuid.UUID, svc *ledger.Service) InvoiceLedgersModel {
	return InvoiceLedgersModel{
		CommonModel:   CommonModel{OrganizationID: orgID},
		ledgerService: svc,
		loading:       true,
		table: newTable([]table.Column{
			{Title: "Due Date", Width: 12},
			{Title: "Status", Width: 16},
			{Title: "Original", Width: 12},
			{Title: "Due", Width: 12},
			{Title: "Customer", Width: 38},
		}),
	}
}

func (m InvoiceLedgersModel) Title() string { return "Invoice Ledgers" }

func (m InvoiceLedgersModel) ShortHelp() string {
	return "Esc: back | s: status filter | r: refresh"
}

func (m InvoiceLedgersModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoiceLedgersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoiceLedgersMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.ledgers = msg.ledgers
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
			m.loading = true
			return m, m.loadCmd()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			m.loading = true

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoiceLedgersModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoice ledgers...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("Filter: [s] Status: %s | %d ledger(s)",
		activeStyle(statusFilters[m.statusFilterIdx].label), len(m.ledgers))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			tableView,
		),
	)
}

func (m *InvoiceLedgersModel) refreshTable() {
	today := clock.Today(clock.System{})

	rows := make([]table.Row, 0, len(m.ledgers))
	for _, l := range m.ledgers {
		status := string(l.Status())
		if l.Outstanding().IsPositive() && l.DueDate.Before(today) {
			status += " !"
		}

		rows = append(rows, table.Row{
			FormatDate(l.DueDate),
			status,
			FormatAmount(l.OriginalAmount()),
			FormatAmount(l.Outstanding()),
			l.CustomerID.String(),
		})
	}

	m.table.SetRows(rows)
}

type loadInvoiceLedgersMsg struct {
	ledgers []*ledger.InvoiceLedger
	err     error
}

func (m InvoiceLedgersModel) loadCmd() tea.Cmd {
	filter := ledger.InvoiceFilter{
		OrganizationID: m.OrganizationID,
		Statuses:       statusFilters[m.statusFilterIdx].statuses,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		ledgers, err := m.ledgerService.ListInvoiceLedgers(ctx, filter)

		return loadInvoiceLedgersMsg{ledgers: ledgers, err: err}
	}
}
