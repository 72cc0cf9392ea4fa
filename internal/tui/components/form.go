package components

import (
	"slices"
	"strings"

	"github.com/avero-hq/avero/internal/tui/themes"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Field describes one input of a form.
type Field struct {
	Label       string
	Placeholder string
}

// FormModel is a vertical list of text inputs with one focused at a time.
type FormModel struct {
	theme  themes.Theme
	labels []string
	inputs []textinput.Model
	focus  int
}

// NewForm creates a form; the first field is focused.
func NewForm(theme themes.Theme, fields ...Field) FormModel {
	f := FormModel{theme: theme}
	for _, field := range fields {
		in := textinput.New()
		in.Placeholder = field.Placeholder
		in.Prompt = ""
		in.CharLimit = 120
		f.labels = append(f.labels, field.Label)
		f.inputs = append(f.inputs, in)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

// Next moves focus down, wrapping around.
func (f FormModel) Next() FormModel {
	return f.focusAt((f.focus + 1) % len(f.inputs))
}

// Prev moves focus up, wrapping around.
func (f FormModel) Prev() FormModel {
	return f.focusAt((f.focus - 1 + len(f.inputs)) % len(f.inputs))
}

func (f FormModel) focusAt(i int) FormModel {
	f.inputs = slices.Clone(f.inputs)
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[f.focus].Focus()
	return f
}

// Update forwards msg to the focused input.
func (f FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	if len(f.inputs) == 0 {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs = slices.Clone(f.inputs)
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// Values returns the trimmed input values in field order.
func (f FormModel) Values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

// SetValue replaces the value of field i.
func (f FormModel) SetValue(i int, v string) FormModel {
	f.inputs = slices.Clone(f.inputs)
	f.inputs[i].SetValue(v)
	return f
}

// Reset clears every input and focuses the first.
func (f FormModel) Reset() FormModel {
	f.inputs = slices.Clone(f.inputs)
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	return f.focusAt(0)
}

// Focused returns the index of the focused field.
func (f FormModel) Focused() int {
	return f.focus
}

// View renders the form.
func (f FormModel) View() string {
	labelWidth := 0
	for _, l := range f.labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}

	lines := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		label := f.theme.Subtitle.Width(labelWidth + 2).Render(f.labels[i])
		if i == f.focus {
			label = f.theme.Bold.Width(labelWidth + 2).Render(f.labels[i])
		}
		lines[i] = label + in.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
