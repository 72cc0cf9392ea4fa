package tui

import (
	"fmt"
	"strings"

	"github.com/avero-hq/avero/internal/aggregate"
	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/tui/components"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.tab {
	case TabDashboard:
		body = m.renderDashboard()
	case TabScheduling:
		body = m.renderScheduling()
	case TabTasks:
		body = m.renderTasks()
	case TabAssistant:
		body = m.renderAssistant()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		"",
		body,
		"",
		m.renderStatusBar(),
		m.help.View(m.keymap),
	)
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			tabs[i] = m.theme.ActiveTab.Render(name)
		} else {
			tabs[i] = m.theme.Tab.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// rawDataRows caps the table under the dashboard chart.
const rawDataRows = 12

func (m Model) renderDashboard() string {
	if len(m.datasets) == 0 {
		return m.muted("No datasets configured")
	}

	picker := make([]string, len(m.datasets))
	for i, name := range m.datasets {
		if i == m.dataset {
			picker[i] = m.theme.Selected.Render(" " + name + " ")
		} else {
			picker[i] = m.theme.Normal.Render(" " + name + " ")
		}
	}

	sections := []string{
		m.theme.Title.Render("Business Dashboard"),
		lipgloss.JoinHorizontal(lipgloss.Top, picker...),
		"",
	}

	if m.loadErr != nil || m.view.Dataset == nil {
		sections = append(sections, m.theme.StatusError.Render(errText(m.loadErr)))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections,
		components.RenderKPIs(m.theme, components.SummaryKPIs(m.view.Summary), m.width),
		"",
		m.theme.Subtitle.Render(fmt.Sprintf("%s over time  (←/→ to change)", metricLabel(m.currentMetric()))),
	)
	points, err := aggregate.Series(m.view.Dataset, m.currentMetric())
	if err != nil {
		sections = append(sections, m.theme.StatusError.Render(err.Error()))
	} else {
		sections = append(sections, components.BarChart(m.theme, points, min(m.width, 100)))
	}
	sections = append(sections,
		"",
		m.theme.Subtitle.Render("Raw Data"),
		components.DataTable(m.theme, m.view.Dataset, rawDataRows),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderScheduling() string {
	sections := []string{
		m.theme.Title.Render("Book an Appointment"),
		m.appointmentForm.View(),
		m.muted("↑/↓ move between fields, Enter books"),
		"",
		m.theme.Subtitle.Render("Appointments"),
	}

	if len(m.view.Appointments) == 0 {
		sections = append(sections, m.muted("No appointments yet"))
	}
	for _, a := range m.view.Appointments {
		assignee := a.Assignee
		if assignee == "" {
			assignee = "unassigned"
		}
		sections = append(sections, m.theme.Normal.Render(fmt.Sprintf("%s %s  %-30s %s",
			a.Date.Format(model.DateLayout), a.Time, a.Description, assignee)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTasks() string {
	sections := []string{m.theme.Title.Render("Task Board")}

	if m.addingTask {
		sections = append(sections,
			m.taskForm.View(),
			m.muted("↑/↓ move between fields, Enter adds, Esc cancels"),
			"")
	}

	if len(m.view.Tasks) == 0 {
		sections = append(sections, m.muted("No tasks yet, press a to add one"))
	}
	for i, t := range m.view.Tasks {
		check := "[ ]"
		if t.Complete {
			check = m.theme.StatusSuccess.Render("[x]")
		}
		line := fmt.Sprintf("%s %-24s %-12s est %s → %s  actual %s → %s",
			check, t.Name, t.Assignee,
			t.EstimatedStart.Format(model.DateLayout), t.EstimatedFinish.Format(model.DateLayout),
			t.ActualStart.Format(model.DateLayout), t.ActualFinish.Format(model.DateLayout))
		if i == m.taskCursor && !m.addingTask {
			line = m.theme.Selected.Render(line)
		}
		sections = append(sections, line)
	}

	done := 0
	for _, t := range m.view.Tasks {
		if t.Complete {
			done++
		}
	}
	if len(m.view.Tasks) > 0 {
		sections = append(sections, "", m.muted(fmt.Sprintf("%d of %d complete", done, len(m.view.Tasks))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderAssistant() string {
	sections := []string{
		m.theme.Title.Render("Ask about " + m.currentDataset()),
		m.questionInput.View(),
		"",
	}

	switch {
	case m.loadErr != nil:
		sections = append(sections, m.theme.StatusError.Render(errText(m.loadErr)))
	case m.view.Answer != "":
		sections = append(sections, m.theme.BorderedBox.Width(min(m.width-2, 80)).Render(m.view.Answer))
		if m.ctrl.CanSpeak() {
			sections = append(sections, m.muted("Ctrl+S to hear the answer"))
		}
	default:
		sections = append(sections, m.muted("Type a question and press Enter"))
	}

	if m.speaking {
		sections = append(sections, m.theme.StatusInfo.Render("Synthesizing speech..."))
	}
	if m.warning != "" {
		sections = append(sections, m.theme.StatusWarning.Render("⚠ "+m.warning))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatusBar() string {
	left := m.theme.StatusInfo.Render(m.tab.String())
	var right string
	switch {
	case m.err != nil:
		right = m.theme.StatusError.Render(m.err.Error())
	case m.notice != "":
		right = m.theme.StatusSuccess.Render(m.notice)
	}
	return strings.TrimRight(left+"  "+right, " ")
}

func (m Model) muted(s string) string {
	return lipgloss.NewStyle().Foreground(m.theme.Muted).Render(s)
}

func errText(err error) string {
	if err == nil {
		return "No dataset loaded"
	}
	return err.Error()
}

func metricLabel(metric aggregate.Metric) string {
	s := string(metric)
	return strings.ToUpper(s[:1]) + s[1:]
}
