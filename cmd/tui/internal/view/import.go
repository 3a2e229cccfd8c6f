package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/bank"
	"github.com/MrJamesThe3rd/apexrecon/internal/importer"
)

const ingestTimeout = 2 * time.Minute

type importStep int

const (
	stepConnection importStep = iota
	stepFile
	stepIngesting
	stepReview
	stepDone
)

// ImportModel loads a statement file for one bank connection. Rows that look
// like transactions already on the connection are held back for review.
type ImportModel struct {
	CommonModel
	bankService   *bank.Service
	importService *importer.Service

	step        importStep
	connections []*bank.Connection
	connTable   table.Model
	conn        *bank.Connection
	picker      filepicker.Model

	fresh       []bank.TransactionParams
	conflicts   []bank.Conflict
	keep        []bool
	reviewTable table.Model

	notice string
	err    error
}

func NewImportModel(orgID uuid.UUID, bankSvc *bank.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.SetHeight(15)

	return ImportModel{
		CommonModel:   CommonModel{OrganizationID: orgID},
		bankService:   bankSvc,
		importService: impSvc,
		picker:        fp,
		connTable: newTable([]table.Column{
			{Title: "Account", Width: 24},
			{Title: "Mask", Width: 10},
			{Title: "Provider", Width: 8},
			{Title: "Last Sync", Width: 12},
			{Title: "State", Width: 8},
		}),
		reviewTable: newTable([]table.Column{
			{Title: "Keep", Width: 4},
			{Title: "Date", Width: 12},
			{Title: "Amount", Width: 12},
			{Title: "Incoming", Width: 30},
			{Title: "Existing", Width: 30},
		}),
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	switch m.step {
	case stepReview:
		return "Space: keep/drop | a: keep all | n: drop all | Enter: import | Esc: cancel"
	case stepIngesting:
		return "Importing..."
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.connectionsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case connectionsLoadedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}

		m.connections = msg.connections
		m.connTable.SetRows(connectionRows(msg.connections))

		return m, nil

	case statementIngestedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}

		if len(msg.result.Conflicts) > 0 {
			m.fresh = msg.result.New
			m.conflicts = msg.result.Conflicts
			m.keep = make([]bool, len(msg.result.Conflicts))
			m.step = stepReview
			m.refreshReview()

			return m, nil
		}

		m.step = stepDone
		m.notice = fmt.Sprintf("Imported %d deposit(s); %d outgoing movement(s) skipped.",
			len(msg.result.Imported), msg.skipped)

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.back()
		}
	}

	switch m.step {
	case stepConnection:
		return m.updateConnection(msg)
	case stepFile:
		return m.updateFile(msg)
	case stepReview:
		return m.updateReview(msg)
	}

	return m, nil
}

func (m ImportModel) fail(err error) (tea.Model, tea.Cmd) {
	m.step = stepDone
	m.err = err

	return m, nil
}

func (m ImportModel) back() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepFile, stepReview:
		m.step = stepConnection
		m.conflicts, m.fresh, m.keep = nil, nil, nil

		return m, nil
	case stepDone:
		m.step = stepConnection
		m.err = nil
		m.notice = ""

		return m, m.connectionsCmd()
	}

	return m, Back
}

func (m ImportModel) updateConnection(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		idx := m.connTable.Cursor()
		if idx < 0 || idx >= len(m.connections) {
			return m, nil
		}

		c := m.connections[idx]
		if !c.Active() {
			m.notice = fmt.Sprintf("%s is revoked; reactivate it before importing.", c.AccountName)
			return m, nil
		}

		m.conn = c
		m.notice = ""
		m.step = stepFile

		return m, m.picker.Init()
	}

	var cmd tea.Cmd
	m.connTable, cmd = m.connTable.Update(msg)

	return m, cmd
}

func (m ImportModel) updateFile(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.step = stepIngesting
		m.notice = "Importing " + path + "..."

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case " ":
			if i := m.reviewTable.Cursor(); i >= 0 && i < len(m.keep) {
				m.keep[i] = !m.keep[i]
			}

			m.refreshReview()

			return m, nil
		case "a", "n":
			for i := range m.keep {
				m.keep[i] = key.String() == "a"
			}

			m.refreshReview()

			return m, nil
		case "enter":
			m.step = stepIngesting
			m.notice = "Importing reviewed rows..."

			return m, m.confirmCmd()
		}
	}

	var cmd tea.Cmd
	m.reviewTable, cmd = m.reviewTable.Update(msg)

	return m, cmd
}

func (m *ImportModel) refreshReview() {
	rows := make([]table.Row, len(m.conflicts))

	for i, c := range m.conflicts {
		mark := "[ ]"
		if m.keep[i] {
			mark = "[x]"
		}

		rows[i] = table.Row{
			mark,
			FormatDate(c.Incoming.TransactionDate),
			FormatAmount(c.Incoming.Amount),
			c.Incoming.RawDescription,
			c.Existing.RawDescription,
		}
	}

	m.reviewTable.SetRows(rows)
}

func connectionRows(conns []*bank.Connection) []table.Row {
	rows := make([]table.Row, len(conns))

	for i, c := range conns {
		synced, state := "never", "active"
		if ts := c.LastSync(); ts != nil {
			synced = FormatDate(*ts)
		}

		if !c.Active() {
			state = "revoked"
		}

		rows[i] = table.Row{c.AccountName, c.AccountMask, string(c.Provider), synced, state}
	}

	return rows
}

func (m ImportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1)

	switch m.step {
	case stepConnection:
		body := "Bank connection:\n\n" + m.connTable.View()
		if len(m.connections) == 0 {
			body += "\n  (no connections)"
		}

		if m.notice != "" {
			body += "\n\n" + errorStyle(m.notice)
		}

		return pad.Render(body)
	case stepFile:
		return pad.Render(fmt.Sprintf("Statement for %s (%s):\n\n%s",
			m.conn.AccountName, m.conn.Provider, m.picker.View()))
	case stepIngesting:
		return pad.Render(m.notice)
	case stepReview:
		header := fmt.Sprintf("%d new row(s); %d possible duplicate(s). Keep the ones that are genuine:",
			len(m.fresh), len(m.conflicts))

		return pad.Render(lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			m.reviewTable.View(),
		))
	case stepDone:
		if m.err != nil {
			return pad.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
		}

		return pad.Render(successStyle(m.notice) + "\n\n(Esc to go back)")
	}

	return ""
}

type connectionsLoadedMsg struct {
	connections []*bank.Connection
	err         error
}

type statementIngestedMsg struct {
	result  *bank.IngestResult
	skipped int
	err     error
}

func (m ImportModel) connectionsCmd() tea.Cmd {
	svc, orgID := m.bankService, m.OrganizationID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		conns, err := svc.ListConnections(ctx, orgID)

		return connectionsLoadedMsg{connections: conns, err: err}
	}
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	imp, conn := m.importService, m.conn

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return statementIngestedMsg{err: err}
		}
		defer f.Close()

		stmt, err := imp.Import(conn.Provider, f)
		if err != nil {
			return statementIngestedMsg{err: err}
		}

		res, err := m.ingest(stmt.Incoming, false)

		return statementIngestedMsg{result: res, skipped: stmt.SkippedOutgoing, err: err}
	}
}

// confirmCmd imports the new rows plus the reviewed duplicates the user kept.
func (m ImportModel) confirmCmd() tea.Cmd {
	rows := append([]bank.TransactionParams(nil), m.fresh...)

	for i, c := range m.conflicts {
		if m.keep[i] {
			rows = append(rows, c.Incoming)
		}
	}

	return func() tea.Msg {
		res, err := m.ingest(rows, true)
		return statementIngestedMsg{result: res, err: err}
	}
}

func (m ImportModel) ingest(rows []bank.TransactionParams, reviewed bool) (*bank.IngestResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	return m.bankService.Ingest(ctx, bank.IngestParams{
		OrganizationID:  m.OrganizationID,
		ConnectionID:    m.conn.ID,
		Transactions:    rows,
		AllowDuplicates: reviewed,
	})
}
