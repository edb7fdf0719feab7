package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/josephgoksu/backlog/models"
)

var (
	// ErrPickCancelled is returned when the user leaves the picker.
	ErrPickCancelled = errors.New("selection cancelled")
	// ErrNothingToPick is returned when there are no tasks to choose from.
	ErrNothingToPick = errors.New("no tasks to choose from")
)

const pickerPageSize = 12

// PickTask prompts the user to choose one of tasks and returns its id.
func PickTask(title string, tasks []models.Task) (string, error) {
	if len(tasks) == 0 {
		return "", ErrNothingToPick
	}

	p := tea.NewProgram(newPickerModel(title, tasks))
	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("run task picker: %w", err)
	}

	result := finalModel.(pickerModel)
	if result.quit {
		return "", ErrPickCancelled
	}
	return result.selectedID, nil
}

type pickerModel struct {
	title      string
	tasks      []models.Task
	visible    []int
	filter     textinput.Model
	cursor     int
	selectedID string
	quit       bool
}

func newPickerModel(title string, tasks []models.Task) pickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = "/ "
	ti.Focus()

	m := pickerModel{title: title, tasks: tasks, filter: ti}
	m.applyFilter()
	return m
}

func (m *pickerModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, t := range m.tasks {
		if q == "" || strings.Contains(strings.ToLower(t.ID+" "+t.Title), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quit = true
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if len(m.visible) == 0 {
				return m, nil
			}
			m.selectedID = m.tasks[m.visible[m.cursor]].ID
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m pickerModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n" + StyleSelectTitle.Render(m.title) + "\n")
	sb.WriteString(m.filter.View() + "\n\n")

	if len(m.visible) == 0 {
		sb.WriteString(StyleSelectDim.Render("  no matching tasks") + "\n")
	}

	start := 0
	if m.cursor >= pickerPageSize {
		start = m.cursor - pickerPageSize + 1
	}
	end := min(start+pickerPageSize, len(m.visible))
	for i := start; i < end; i++ {
		t := m.tasks[m.visible[i]]
		cursor := "  "
		style := StyleSelectNormal
		if i == m.cursor {
			cursor = "▶ "
			style = StyleSelectActive
		}
		line := cursor + style.Render(fmt.Sprintf("%-10s %s", t.ID, Truncate(t.Title, 60)))
		line += StyleSelectBadge.Render(" " + t.Status)
		if t.Source == models.SourceRemote {
			line += StyleSelectDim.Render(" @" + t.Branch)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n" + StyleSelectDim.Render("↑/↓ navigate • enter select • esc cancel") + "\n")
	return sb.String()
}
