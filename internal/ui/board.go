package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/josephgoksu/backlog/internal/taskutil"
	"github.com/josephgoksu/backlog/models"
)

// BoardLoader returns the tasks shown on the board.
type BoardLoader func(ctx context.Context) ([]models.Task, error)

const otherColumn = "Other"

// RunBoard shows an interactive kanban board until the user quits.
func RunBoard(ctx context.Context, title string, statuses []string, load BoardLoader) error {
	m := newBoardModel(ctx, title, statuses, load)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("run board: %w", err)
	}
	if bm, ok := finalModel.(boardModel); ok && bm.err != nil {
		return bm.err
	}
	return nil
}

type boardLoadedMsg struct {
	tasks []models.Task
	err   error
}

type boardColumn struct {
	status string
	tasks  []models.Task
}

type boardModel struct {
	ctx      context.Context
	title    string
	statuses []string
	load     BoardLoader

	columns []boardColumn
	col     int
	row     int

	loading  bool
	err      error
	spinner  spinner.Model
	viewport viewport.Model
	detail   bool
	width    int
	height   int
}

func newBoardModel(ctx context.Context, title string, statuses []string, load BoardLoader) boardModel {
	if len(statuses) == 0 {
		statuses = models.DefaultStatuses
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StylePrimary

	return boardModel{
		ctx:      ctx,
		title:    title,
		statuses: statuses,
		load:     load,
		loading:  true,
		spinner:  s,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		tasks, err := m.load(m.ctx)
		return boardLoadedMsg{tasks: tasks, err: err}
	}
}

// groupByStatus builds one column per configured status, in order, plus a
// trailing column for tasks whose status is not configured.
func groupByStatus(tasks []models.Task, statuses []string) []boardColumn {
	cols := make([]boardColumn, len(statuses))
	for i, s := range statuses {
		cols[i].status = s
	}
	var other []models.Task
	for _, t := range tasks {
		placed := false
		for i, s := range statuses {
			if strings.EqualFold(t.Status, s) {
				cols[i].tasks = append(cols[i].tasks, t)
				placed = true
				break
			}
		}
		if !placed {
			other = append(other, t)
		}
	}
	if len(other) > 0 {
		cols = append(cols, boardColumn{status: otherColumn, tasks: other})
	}
	for i := range cols {
		sortColumn(cols[i].tasks)
	}
	return cols
}

// sortColumn puts tasks with an ordinal first, then higher priorities.
// Ties keep id order.
func sortColumn(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.Ordinal != nil && b.Ordinal != nil:
			if *a.Ordinal != *b.Ordinal {
				return *a.Ordinal < *b.Ordinal
			}
		case a.Ordinal != nil:
			return true
		case b.Ordinal != nil:
			return false
		}
		return taskutil.PriorityRank(a.Priority) > taskutil.PriorityRank(b.Priority)
	})
}

func (m boardModel) selected() (models.Task, bool) {
	if m.col >= len(m.columns) || m.row >= len(m.columns[m.col].tasks) {
		return models.Task{}, false
	}
	return m.columns[m.col].tasks[m.row], true
}

func (m *boardModel) clampRow() {
	if m.col >= len(m.columns) {
		m.col, m.row = 0, 0
		return
	}
	if n := len(m.columns[m.col].tasks); m.row >= n {
		m.row = max(n-1, 0)
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-3, 1)
		return m, nil

	case boardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.columns = groupByStatus(msg.tasks, m.statuses)
		m.clampRow()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.detail {
			return m.updateDetail(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
		case "left", "h":
			if m.col > 0 {
				m.col--
				m.clampRow()
			}
		case "right", "l":
			if m.col < len(m.columns)-1 {
				m.col++
				m.clampRow()
			}
		case "up", "k":
			if m.row > 0 {
				m.row--
			}
		case "down", "j":
			if m.col < len(m.columns) && m.row < len(m.columns[m.col].tasks)-1 {
				m.row++
			}
		case "enter":
			if t, ok := m.selected(); ok {
				var b strings.Builder
				NewRenderer(&b, false, m.statuses).TaskDetail(t)
				m.viewport.SetContent(b.String())
				m.viewport.GotoTop()
				m.detail = true
			}
		}
	}
	return m, nil
}

func (m boardModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "enter":
		m.detail = false
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m boardModel) View() string {
	if m.loading {
		return fmt.Sprintf("\n %s Loading tasks...\n", m.spinner.View())
	}
	if m.err != nil {
		return StyleError.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.detail {
		return m.viewport.View() + "\n" + StyleSelectDim.Render("↑/↓ scroll • esc back")
	}

	header := StyleHeader.Render(m.title)
	if len(m.columns) == 0 {
		return header + "\n" + StyleSubtle.Render("No tasks.") + "\n"
	}

	colWidth := max(m.width/len(m.columns)-4, 16)
	rendered := make([]string, len(m.columns))
	for i, c := range m.columns {
		rendered[i] = m.renderColumn(i, c, colWidth)
	}

	help := StyleSelectDim.Render("←/→ column • ↑/↓ task • enter details • r reload • q quit")
	return header + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n" + help
}

func (m boardModel) renderColumn(idx int, c boardColumn, width int) string {
	var sb strings.Builder
	title := fmt.Sprintf("%s (%d)", c.status, len(c.tasks))
	sb.WriteString(StatusStyle(c.status, m.statuses).Bold(true).Render(title) + "\n")

	for r, t := range c.tasks {
		line := Truncate(t.ID+" "+t.Title, width)
		style := StyleText
		if t.Source == models.SourceRemote {
			style = StyleRemote
		}
		if idx == m.col && r == m.row {
			style = StyleSelectActive
			line = Truncate("▶ "+t.ID+" "+t.Title, width)
		}
		sb.WriteString(style.Render(line) + "\n")
	}

	style := StyleColumn
	if idx == m.col {
		style = StyleColumnFocused
	}
	return style.Width(width).Render(strings.TrimRight(sb.String(), "\n"))
}
