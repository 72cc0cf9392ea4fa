// Package tui is the terminal dashboard. Every frame is rebuilt from
// Controller.Render and every submit or toggle is dispatched as one event.
package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/avero-hq/avero/internal/aggregate"
	"github.com/avero-hq/avero/internal/model"
	"github.com/avero-hq/avero/internal/narrator"
	"github.com/avero-hq/avero/internal/session"
	"github.com/avero-hq/avero/internal/tui/components"
	"github.com/avero-hq/avero/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Tab is one page of the dashboard.
type Tab int

// Tabs in display order.
const (
	TabDashboard Tab = iota
	TabScheduling
	TabTasks
	TabAssistant
)

var tabNames = []string{"Dashboard", "Scheduling", "Task Board", "Assistant"}

func (t Tab) String() string {
	return tabNames[t]
}

// Appointment form fields.
const (
	apptDate = iota
	apptTime
	apptDescription
	apptAssignee
)

// Model holds the dashboard state.
type Model struct {
	ctx      context.Context
	ctrl     Controller
	config   Config
	theme    themes.Theme
	keymap   KeyMap
	help     help.Model
	view     session.View
	err      error
	loadErr  error
	notice   string
	warning  string
	datasets []string
	question string

	appointmentForm components.FormModel
	taskForm        components.FormModel
	questionInput   textinput.Model

	tab        Tab
	dataset    int
	metric     int
	taskCursor int
	width      int
	height     int
	addingTask bool
	speaking   bool
	quitting   bool
}

// NewModel creates the dashboard model. It renders once so the first frame
// has data.
func NewModel(ctx context.Context, opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Controller == nil {
		return Model{}, fmt.Errorf("controller is required")
	}

	question := textinput.New()
	question.Placeholder = "How is the business doing?"
	question.CharLimit = 200

	m := Model{
		ctx:      ctx,
		ctrl:     cfg.Controller,
		config:   cfg,
		theme:    cfg.Theme,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		datasets: cfg.Datasets,
		width:    cfg.Width,
		height:   cfg.Height,
		appointmentForm: components.NewForm(cfg.Theme,
			components.Field{Label: "Date", Placeholder: model.DateLayout},
			components.Field{Label: "Time", Placeholder: "HH:MM"},
			components.Field{Label: "Description"},
			components.Field{Label: "Assignee", Placeholder: "optional"},
		),
		taskForm: components.NewForm(cfg.Theme,
			components.Field{Label: "Name"},
			components.Field{Label: "Assignee"},
			components.Field{Label: "Estimated start", Placeholder: model.DateLayout},
			components.Field{Label: "Estimated finish", Placeholder: model.DateLayout},
			components.Field{Label: "Actual start", Placeholder: "defaults to estimated"},
			components.Field{Label: "Actual finish", Placeholder: "defaults to estimated"},
		),
		questionInput: question,
	}
	m.refresh()
	return m, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case speechDoneMsg:
		m.speaking = false
		m.handleSpeech(msg.result)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.NextTab):
		m.switchTab((m.tab + 1) % Tab(len(tabNames)))
		return m, nil
	case key.Matches(msg, m.keymap.PrevTab):
		m.switchTab((m.tab - 1 + Tab(len(tabNames))) % Tab(len(tabNames)))
		return m, nil
	}

	var cmd tea.Cmd
	switch m.tab {
	case TabDashboard:
		cmd = m.updateDashboard(msg)
	case TabScheduling:
		cmd = m.updateScheduling(msg)
	case TabTasks:
		cmd = m.updateTasks(msg)
	case TabAssistant:
		cmd = m.updateAssistant(msg)
	}
	if m.quitting {
		return m, tea.Quit
	}
	m.refresh()
	return m, cmd
}

func (m *Model) switchTab(t Tab) {
	m.tab = t
	m.err = nil
	m.notice = ""
	if t == TabAssistant {
		m.questionInput.Focus()
	} else {
		m.questionInput.Blur()
	}
	m.refresh()
}

// commandKeys handles the keys shared by the tabs without text entry.
func (m *Model) commandKeys(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	default:
		return false
	}
	return true
}

func (m *Model) updateDashboard(msg tea.KeyMsg) tea.Cmd {
	if m.commandKeys(msg) {
		return nil
	}
	switch {
	case key.Matches(msg, m.keymap.Up):
		if len(m.datasets) > 0 {
			m.dataset = (m.dataset - 1 + len(m.datasets)) % len(m.datasets)
		}
	case key.Matches(msg, m.keymap.Down):
		if len(m.datasets) > 0 {
			m.dataset = (m.dataset + 1) % len(m.datasets)
		}
	case key.Matches(msg, m.keymap.Left):
		m.metric = (m.metric - 1 + len(aggregate.Metrics)) % len(aggregate.Metrics)
	case key.Matches(msg, m.keymap.Right):
		m.metric = (m.metric + 1) % len(aggregate.Metrics)
	}
	return nil
}

func (m *Model) updateScheduling(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyUp:
		m.appointmentForm = m.appointmentForm.Prev()
		return nil
	case msg.Type == tea.KeyDown:
		m.appointmentForm = m.appointmentForm.Next()
		return nil
	case key.Matches(msg, m.keymap.Submit):
		m.submitAppointment()
		return nil
	}

	var cmd tea.Cmd
	m.appointmentForm, cmd = m.appointmentForm.Update(msg)
	return cmd
}

func (m *Model) submitAppointment() {
	v := m.appointmentForm.Values()
	appt, err := model.NewAppointment(v[apptDate], v[apptTime], v[apptDescription], v[apptAssignee])
	if err != nil {
		m.err = err
		return
	}
	if _, err := m.ctrl.Dispatch(session.AddAppointment(uuid.NewString(), appt)); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.notice = fmt.Sprintf("Appointment booked for %s at %s", appt.Date.Format(model.DateLayout), appt.Time)
	m.appointmentForm = m.appointmentForm.Reset()
}

func (m *Model) updateTasks(msg tea.KeyMsg) tea.Cmd {
	if m.addingTask {
		switch {
		case key.Matches(msg, m.keymap.Cancel):
			m.addingTask = false
			m.taskForm = m.taskForm.Reset()
			return nil
		case msg.Type == tea.KeyUp:
			m.taskForm = m.taskForm.Prev()
			return nil
		case msg.Type == tea.KeyDown:
			m.taskForm = m.taskForm.Next()
			return nil
		case key.Matches(msg, m.keymap.Submit):
			m.submitTask()
			return nil
		}
		var cmd tea.Cmd
		m.taskForm, cmd = m.taskForm.Update(msg)
		return cmd
	}

	if m.commandKeys(msg) {
		return nil
	}
	switch {
	case key.Matches(msg, m.keymap.Up):
		m.taskCursor = max(0, m.taskCursor-1)
	case key.Matches(msg, m.keymap.Down):
		m.taskCursor = min(max(0, len(m.view.Tasks)-1), m.taskCursor+1)
	case key.Matches(msg, m.keymap.Add):
		m.addingTask = true
		m.taskForm = m.taskForm.Reset()
	case key.Matches(msg, m.keymap.Toggle):
		m.toggleTask()
	}
	return nil
}

func (m *Model) submitTask() {
	v := m.taskForm.Values()
	task, err := model.NewTask(model.TaskInput{
		Name:            v[0],
		Assignee:        v[1],
		EstimatedStart:  v[2],
		EstimatedFinish: v[3],
		ActualStart:     v[4],
		ActualFinish:    v[5],
	})
	if err != nil {
		m.err = err
		return
	}
	out, err := m.ctrl.Dispatch(session.AddTask(uuid.NewString(), task))
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.notice = fmt.Sprintf("Added task %q", task.Name)
	m.addingTask = false
	m.taskCursor = out.Index
	m.taskForm = m.taskForm.Reset()
}

func (m *Model) toggleTask() {
	if m.taskCursor >= len(m.view.Tasks) {
		return
	}
	current := m.view.Tasks[m.taskCursor]
	if _, err := m.ctrl.Dispatch(session.SetTaskComplete(uuid.NewString(), m.taskCursor, !current.Complete)); err != nil {
		m.err = err
		return
	}
	m.err = nil
}

func (m *Model) updateAssistant(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Submit):
		m.question = m.questionInput.Value()
		m.warning = ""
		return nil
	case key.Matches(msg, m.keymap.Speak):
		return m.speak()
	}

	var cmd tea.Cmd
	m.questionInput, cmd = m.questionInput.Update(msg)
	return cmd
}

// speak starts synthesis of the current answer. The answer stays on screen
// whether or not speech succeeds.
func (m *Model) speak() tea.Cmd {
	if m.view.Answer == "" || m.speaking {
		return nil
	}
	m.speaking = true
	m.warning = ""
	ch := m.ctrl.Speak(m.ctx, m.view.Answer)
	return func() tea.Msg {
		return speechDoneMsg{result: <-ch}
	}
}

func (m *Model) handleSpeech(res narrator.SpeechResult) {
	if res.Warning != nil {
		m.warning = res.Warning.Error()
		return
	}
	if m.config.SpeechPath == "" {
		m.notice = fmt.Sprintf("Speech ready (%d bytes)", len(res.Audio))
		return
	}
	if err := os.WriteFile(m.config.SpeechPath, res.Audio, 0o600); err != nil {
		m.warning = fmt.Sprintf("speech: write %s: %v", m.config.SpeechPath, err)
		return
	}
	m.notice = "Speech saved to " + m.config.SpeechPath
}

// refresh re-runs the render pipeline. A dataset that fails to load still
// leaves the schedule visible.
func (m *Model) refresh() {
	req := session.Request{Dataset: m.currentDataset()}
	if m.tab == TabAssistant {
		req.Question = m.question
	}

	view, err := m.ctrl.Render(m.ctx, req)
	m.loadErr = err
	if err != nil {
		m.config.Logger.Warn("render failed", "dataset", req.Dataset, "error", err)
		if view, err = m.ctrl.Render(m.ctx, session.Request{}); err != nil {
			return
		}
	}
	m.view = view
	if m.taskCursor >= len(view.Tasks) {
		m.taskCursor = max(0, len(view.Tasks)-1)
	}
}

func (m Model) currentDataset() string {
	if len(m.datasets) == 0 {
		return ""
	}
	return m.datasets[m.dataset]
}

func (m Model) currentMetric() aggregate.Metric {
	return aggregate.Metrics[m.metric]
}
