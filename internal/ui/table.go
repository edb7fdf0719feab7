package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column is one table column.
type Column struct {
	Title string
	// Max caps the column width in terminal cells. Zero is unbounded.
	Max int
	// Style picks a style from the raw cell value. Nil renders plain text.
	Style func(value string) lipgloss.Style
}

// Table lays out task, document and decision listings.
type Table struct {
	Columns []Column
	Rows    [][]string
	// Plain disables colors and uses ASCII rules.
	Plain bool
}

// NewTable returns a table with one column per title, each capped at limit cells.
func NewTable(plain bool, limit int, titles ...string) *Table {
	t := &Table{Plain: plain}
	for _, title := range titles {
		t.Columns = append(t.Columns, Column{Title: title, Max: limit})
	}
	return t
}

// ColorBy sets the cell style function of the column titled title.
func (t *Table) ColorBy(title string, fn func(string) lipgloss.Style) *Table {
	for i := range t.Columns {
		if t.Columns[i].Title == title {
			t.Columns[i].Style = fn
		}
	}
	return t
}

// AddRow appends a row. Missing trailing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = lipgloss.Width(col.Title)
		for _, row := range t.Rows {
			if i < len(row) {
				widths[i] = max(widths[i], lipgloss.Width(row[i]))
			}
		}
		if col.Max > 0 {
			widths[i] = min(widths[i], col.Max)
		}
	}
	return widths
}

// Render returns the table with a header, a rule and one line per row.
func (t *Table) Render() string {
	if len(t.Columns) == 0 {
		return ""
	}
	widths := t.widths()
	header := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	text := lipgloss.NewStyle().Foreground(ColorText)

	var sb strings.Builder
	titles := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		titles[i] = col.Title
	}
	sb.WriteString(t.line(titles, widths, func(int, string) lipgloss.Style { return header }))

	rule, joint := "─", "──"
	if t.Plain {
		rule, joint = "-", "--"
	}
	segments := make([]string, len(widths))
	for i, w := range widths {
		segments[i] = strings.Repeat(rule, w)
	}
	sb.WriteString(" " + t.paint(StyleSubtle, strings.Join(segments, joint)) + "\n")

	for _, row := range t.Rows {
		sb.WriteString(t.line(row, widths, func(i int, value string) lipgloss.Style {
			if fn := t.Columns[i].Style; fn != nil {
				return fn(value)
			}
			return text
		}))
	}
	return sb.String()
}

func (t *Table) line(cells []string, widths []int, style func(int, string) lipgloss.Style) string {
	parts := make([]string, len(t.Columns))
	for i := range t.Columns {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		parts[i] = t.paint(style(i, value), padRight(Truncate(value, widths[i]), widths[i]))
	}
	return strings.TrimRight(" "+strings.Join(parts, "  "), " ") + "\n"
}

func (t *Table) paint(s lipgloss.Style, text string) string {
	if t.Plain {
		return text
	}
	return s.Render(text)
}
