package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTable_Widths(t *testing.T) {
	tests := []struct {
		name  string
		table *Table
		want  []int
	}{
		{
			name: "widest cell wins",
			table: &Table{
				Columns: []Column{{Title: "ID"}, {Title: "TITLE"}, {Title: "STATUS"}},
				Rows: [][]string{
					{"task-1", "Ship it", "To Do"},
					{"task-12", "Write the migration notes", "In Progress"},
				},
			},
			want: []int{7, 25, 11},
		},
		{
			name:  "double width runes",
			table: NewTable(true, 0, "TITLE").withRow("日本語"),
			want:  []int{6},
		},
		{
			name:  "capped",
			table: NewTable(true, 12, "ID", "TITLE").withRow("task-1", "A title well past the cap"),
			want:  []int{6, 12},
		},
		{
			name:  "header wider than cells",
			table: NewTable(true, 0, "ASSIGNEE").withRow("@a"),
			want:  []int{8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.table.widths())
		})
	}
}

func (t *Table) withRow(cells ...string) *Table {
	t.AddRow(cells...)
	return t
}

func TestTable_Render_Plain(t *testing.T) {
	table := NewTable(true, 0, "ID", "STATUS").withRow("task-1", "Done").withRow("task-22", "To Do")

	want := " ID       STATUS\n" +
		" ---------------\n" +
		" task-1   Done\n" +
		" task-22  To Do\n"
	assert.Equal(t, want, table.Render())
}

func TestTable_Render_Styled(t *testing.T) {
	table := NewTable(false, 0, "ID", "STATUS").withRow("task-1", "Done")

	out := table.Render()
	assert.Contains(t, out, "task-1")
	assert.Contains(t, out, "─")
}

func TestTable_Render_Truncates(t *testing.T) {
	out := NewTable(true, 10, "TITLE").withRow("Export tasks as CSV").Render()
	assert.Contains(t, out, "Export ta…")
	assert.NotContains(t, out, "CSV")
}

func TestTable_Render_ShortRows(t *testing.T) {
	out := NewTable(true, 0, "ID", "TITLE", "LABELS").withRow("task-1", "Only two").Render()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, " task-1  Only two", lines[2])
}

func TestTable_Render_NoColumns(t *testing.T) {
	assert.Empty(t, (&Table{}).Render())
}

func TestTable_ColorBy(t *testing.T) {
	var seen []string
	table := NewTable(false, 0, "ID", "STATUS").
		ColorBy("STATUS", func(v string) lipgloss.Style {
			seen = append(seen, v)
			return StyleSuccess
		}).
		ColorBy("MISSING", func(string) lipgloss.Style { return StyleError })
	table.AddRow("task-1", "Done")
	table.AddRow("task-2", "To Do")

	table.Render()
	assert.Equal(t, []string{"Done", "To Do"}, seen)
	assert.Nil(t, table.Columns[0].Style)
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"hello", 5, "hello"},
		{"longer", 3, "longer"},
		{"", 3, "   "},
		{"日本", 5, "日本 "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, padRight(tt.in, tt.width))
	}
}
