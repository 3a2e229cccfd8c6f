package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/apexrecon/internal/report"
)

type reportState int

const (
	reportStateBuilding reportState = iota
	reportStateSummary
	reportStatePath
	reportStateWriting
	reportStateResult
)

type ReportModel struct {
	CommonModel
	reportService *report.Service

	state   reportState
	err     error
	rep     *report.Report
	form    *huh.Form
	path    *string
	spinner spinner.Model
	written string
}

func NewReportModel(orgID uuid.UUID, svc *report.Service) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	path := "./reports"

	return ReportModel{
		CommonModel:   CommonModel{OrganizationID: orgID},
		reportService: svc,
		state:         reportStateBuilding,
		path:          &path,
		spinner:       s,
	}
}

func (m ReportModel) Title() string { return "Reconciliation Report" }

func (m ReportModel) ShortHelp() string {
	switch m.state {
	case reportStateSummary:
		return "Esc: back | w: write CSV | r: refresh"
	case reportStateBuilding, reportStateWriting:
		return "Working..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ReportModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.buildCmd())
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case reportStateBuilding:
		return m.updateBuilding(msg)
	case reportStateSummary:
		return m.updateSummary(msg)
	case reportStatePath:
		return m.updatePath(msg)
	case reportStateWriting:
		return m.updateWriting(msg)
	case reportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = reportStateSummary
			m.err = nil

			return m, nil
		}
	}

	return m, nil
}

func (m ReportModel) updateBuilding(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportBuiltMsg:
		if msg.err != nil {
			m.state = reportStateResult
			m.err = msg.err

			return m, nil
		}

		m.rep = msg.rep
		m.state = reportStateSummary

		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ReportModel) updateSummary(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "r":
		m.state = reportStateBuilding
		return m, tea.Batch(m.spinner.Tick, m.buildCmd())
	case "w":
		m.form = m.buildPathForm()
		m.state = reportStatePath

		return m, m.form.Init()
	}

	return m, nil
}

func (m ReportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = reportStateSummary
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = reportStateWriting

	return m, tea.Batch(m.spinner.Tick, m.writeCmd(*m.path))
}

func (m ReportModel) updateWriting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(reportWrittenMsg); ok {
		m.state = reportStateResult
		m.err = result.err
		m.written = result.path

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m ReportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./reports").
				Value(m.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ReportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case reportStateBuilding:
		return style.Render(fmt.Sprintf("%s Building reconciliation report...", m.spinner.View()))
	case reportStateSummary:
		return style.Render(report.Summary(m.rep))
	case reportStatePath:
		return style.Render(m.form.View())
	case reportStateWriting:
		return style.Render(fmt.Sprintf("%s Writing report...", m.spinner.View()))
	case reportStateResult:
		if m.err != nil {
			return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
		}

		return style.Render(successStyle("Report written to "+m.written) + "\n\n(Esc to go back)")
	}

	return ""
}

type reportBuiltMsg struct {
	rep *report.Report
	err error
}

type reportWrittenMsg struct {
	path string
	err  error
}

func (m ReportModel) buildCmd() tea.Cmd {
	orgID := m.OrganizationID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		rep, err := m.reportService.Build(ctx, orgID)

		return reportBuiltMsg{rep: rep, err: err}
	}
}

func (m ReportModel) writeCmd(dir string) tea.Cmd {
	rep := m.rep

	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return reportWrittenMsg{err: err}
		}

		path := filepath.Join(dir, fmt.Sprintf("reconciliation_%s.csv", rep.GeneratedAt.Format("20060102")))

		f, err := os.Create(path)
		if err != nil {
			return reportWrittenMsg{err: err}
		}

		if err := report.WriteCSV(f, rep); err != nil {
			f.Close()
			return reportWrittenMsg{err: err}
		}

		if err := f.Close(); err != nil {
			return reportWrittenMsg{err: err}
		}

		return reportWrittenMsg{path: path}
	}
}
