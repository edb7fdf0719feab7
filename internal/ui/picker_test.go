package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/backlog/models"
)

func pickerTasks() []models.Task {
	return []models.Task{
		{ID: "task-1", Title: "Parse frontmatter", Status: "Done"},
		{ID: "task-2", Title: "Render board", Status: "To Do"},
		{ID: "task-3", Title: "Remote index", Status: "In Progress", Source: models.SourceRemote, Branch: "origin/dev"},
	}
}

func press(t *testing.T, m pickerModel, keys ...tea.KeyMsg) (pickerModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(pickerModel)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_NavigateAndSelect(t *testing.T) {
	m := newPickerModel("Pick a task", pickerTasks())

	m, cmd := press(t, m,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	assert.Equal(t, "task-2", m.selectedID)
	assert.False(t, m.quit)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPicker_Filter(t *testing.T) {
	m := newPickerModel("Pick a task", pickerTasks())

	m, _ = press(t, m, runes("remote"))
	require.Len(t, m.visible, 1)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "task-3", m.selectedID)
}

func TestPicker_FilterWithoutMatches(t *testing.T) {
	m := newPickerModel("Pick a task", pickerTasks())

	m, _ = press(t, m, runes("zzz"), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, m.selectedID)
	assert.Contains(t, m.View(), "no matching tasks")
}

func TestPicker_Cancel(t *testing.T) {
	m := newPickerModel("Pick a task", pickerTasks())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.True(t, m.quit)
}

func TestPicker_View(t *testing.T) {
	view := newPickerModel("Pick a task", pickerTasks()).View()

	assert.Contains(t, view, "Pick a task")
	assert.Contains(t, view, "task-1")
	assert.Contains(t, view, "Render board")
	assert.Contains(t, view, "@origin/dev")
}

func TestPickTask_Empty(t *testing.T) {
	_, err := PickTask("Pick", nil)
	assert.ErrorIs(t, err, ErrNothingToPick)
}
