package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/apexrecon/internal/ledger"
	"github.com/MrJamesThe3rd/apexrecon/internal/matching"
	"github.com/MrJamesThe3rd/apexrecon/internal/money"
	"github.com/MrJamesThe3rd/apexrecon/internal/payment"
	"github.com/MrJamesThe3rd/apexrecon/internal/reconciliation"
)

type depositsState int

const (
	depositsStateBrowse depositsState = iota
	depositsStateLoadingCandidates
	depositsStateAllocate
	depositsStateSaving
)

// allocationForm holds the form bindings; huh writes through these pointers.
type allocationForm struct {
	invoiceID string
	amount    string
	reference string
}

// DepositsModel lists bank deposits with unmatched funds and allocates them
// to open invoices.
type DepositsModel struct {
	CommonModel
	ledgerService   *ledger.Service
	matchingService *matching.Service
	reconService    *reconciliation.Service

	state   depositsState
	table   table.Model
	ledgers []*ledger.BankTransactionLedger

	candidates *matching.Candidates
	form       *huh.Form
	values     *allocationForm

	loading bool
	err     error
	status  string
}

func NewDepositsModel(orgID uuid.UUID, ledgerSvc *ledger.Service, matchSvc *matching.Service, reconSvc *reconciliation.Service) DepositsModel {
	return DepositsModel{
		CommonModel:     CommonModel{OrganizationID: orgID},
		ledgerService:   ledgerSvc,
		matchingService: matchSvc,
		reconService:    reconSvc,
		loading:         true,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Status", Width: 18},
			{Title: "Amount", Width: 12},
			{Title: "Unmatched", Width: 12},
			{Title: "Description", Width: 40},
		}),
	}
}

func (m DepositsModel) Title() string { return "Unmatched Deposits" }

func (m DepositsModel) ShortHelp() string {
	if m.state == depositsStateAllocate {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: allocate | r: refresh"
}

func (m DepositsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DepositsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDepositsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.ledgers = msg.ledgers
		m.refreshTable()

		return m, nil

	case candidatesMsg:
		if msg.err != nil {
			m.state = depositsStateBrowse
			m.status = fmt.Sprintf("Error loading candidates: %v", msg.err)

			return m, nil
		}

		if len(msg.candidates.Invoices) == 0 {
			m.state = depositsStateBrowse
			m.status = "No open invoices to allocate to."

			return m, nil
		}

		return m.enterAllocate(msg.candidates)

	case allocatedMsg:
		m.state = depositsStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error allocating: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Allocated %s to invoice %s.", FormatAmount(msg.allocation.Amount), msg.allocation.InvoiceID)
		m.loading = true

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case depositsStateBrowse:
		return m.updateBrowse(msg)
	case depositsStateAllocate:
		return m.updateAllocate(msg)
	}

	return m, nil
}

func (m DepositsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.ledgers) {
				return m, nil
			}

			m.state = depositsStateLoadingCandidates
			m.status = ""

			return m, m.candidatesCmd(m.ledgers[idx].BankTransactionID)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DepositsModel) enterAllocate(c *matching.Candidates) (tea.Model, tea.Cmd) {
	best := c.Invoices[0]

	m.candidates = c
	m.values = &allocationForm{
		invoiceID: best.ID.String(),
		amount:    FormatAmount(decimal.Min(best.AmountDue(), c.BankLedger.AmountUnmatched())),
		reference: c.BankLedger.Description,
	}

	options := make([]huh.Option[string], len(c.Invoices))
	for i, inv := range c.Invoices {
		label := fmt.Sprintf("%s  due %s  %s", FormatDate(inv.DueDate), FormatAmount(inv.AmountDue()), inv.ID.String()[:8])
		options[i] = huh.NewOption(label, inv.ID.String())
	}

	unmatched := c.BankLedger.AmountUnmatched()

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("invoice").
				Title("Invoice").
				Options(options...).
				Value(&m.values.invoiceID),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.values.amount).
				Validate(func(s string) error {
					d, err := money.Parse(s)
					if err != nil {
						return fmt.Errorf("not a valid amount")
					}

					if !d.IsPositive() {
						return fmt.Errorf("amount must be positive")
					}

					if d.GreaterThan(unmatched) {
						return fmt.Errorf("only %s left on this deposit", FormatAmount(unmatched))
					}

					return nil
				}),

			huh.NewInput().
				Key("reference").
				Title("Payment reference").
				Value(&m.values.reference),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = depositsStateAllocate
	m.table.Blur()

	return m, m.form.Init()
}

func (m DepositsModel) updateAllocate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = depositsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = depositsStateSaving

	return m, m.allocateCmd()
}

func (m DepositsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading deposits...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	switch m.state {
	case depositsStateLoadingCandidates:
		content = lipgloss.JoinVertical(lipgloss.Left, content, "Finding candidate invoices...")
	case depositsStateSaving:
		content = lipgloss.JoinVertical(lipgloss.Left, content, "Allocating...")
	case depositsStateAllocate:
		suggestion := "no customer mapping"
		if m.candidates.CustomerID != nil {
			suggestion = "customer " + m.candidates.CustomerID.String()
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(fmt.Sprintf("Allocate Deposit\n\n%s\nUnmatched: %s (%s)\n\n%s",
				m.candidates.BankLedger.RawDescription,
				FormatAmount(m.candidates.BankLedger.AmountUnmatched()),
				suggestion,
				m.form.View(),
			))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *DepositsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.ledgers))
	for _, l := range m.ledgers {
		rows = append(rows, table.Row{
			FormatDate(l.TransactionDate),
			string(l.Status()),
			FormatAmount(l.Amount()),
			FormatAmount(l.AmountUnmatched()),
			l.Description,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadDepositsMsg struct {
	ledgers []*ledger.BankTransactionLedger
	err     error
}

type candidatesMsg struct {
	candidates *matching.Candidates
	err        error
}

type allocatedMsg struct {
	allocation payment.Allocation
	err        error
}

func (m DepositsModel) loadCmd() tea.Cmd {
	orgID := m.OrganizationID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		ledgers, err := m.ledgerService.UnmatchedBankLedgers(ctx, orgID)

		return loadDepositsMsg{ledgers: ledgers, err: err}
	}
}

func (m DepositsModel) candidatesCmd(bankTransactionID uuid.UUID) tea.Cmd {
	orgID := m.OrganizationID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := m.matchingService.Candidates(ctx, orgID, bankTransactionID)

		return candidatesMsg{candidates: c, err: err}
	}
}

// allocateCmd records the deposit as a payment of the chosen amount and
// applies it to the selected invoice.
func (m DepositsModel) allocateCmd() tea.Cmd {
	orgID := m.OrganizationID
	bank := m.candidates.BankLedger
	values := *m.values

	return func() tea.Msg {
		invoiceID, err := uuid.Parse(values.invoiceID)
		if err != nil {
			return allocatedMsg{err: err}
		}

		amount, err := money.Parse(values.amount)
		if err != nil {
			return allocatedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		pay, err := m.reconService.CreatePayment(ctx, reconciliation.CreatePaymentParams{
			OrganizationID: orgID,
			PaymentDate:    bank.TransactionDate,
			TotalAmount:    amount,
			Reference:      values.reference,
		})
		if err != nil {
			return allocatedMsg{err: err}
		}

		alloc, err := m.reconService.Allocate(ctx, reconciliation.AllocateParams{
			OrganizationID:    orgID,
			PaymentID:         pay.ID,
			InvoiceID:         invoiceID,
			BankTransactionID: bank.BankTransactionID,
			Amount:            amount,
		})

		return allocatedMsg{allocation: alloc, err: err}
	}
}
