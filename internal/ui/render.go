package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/josephgoksu/backlog/internal/section"
	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/models"
)

// Renderer writes human readable views of backlog records.
type Renderer struct {
	W          io.Writer
	Plain      bool
	Statuses   []string
	DateFormat string
	// Width wraps section prose. Zero leaves it unwrapped.
	Width int
}

// NewRenderer returns a renderer for w. plain disables colors.
func NewRenderer(w io.Writer, plain bool, statuses []string) *Renderer {
	if len(statuses) == 0 {
		statuses = models.DefaultStatuses
	}
	r := &Renderer{W: w, Plain: plain, Statuses: statuses, DateFormat: "2006-01-02"}
	if !plain {
		r.Width = min(TerminalWidth(100), 100)
	}
	return r
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if r.Plain {
		return text
	}
	return s.Render(text)
}

func (r *Renderer) date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(r.DateFormat)
}

// TaskList renders tasks as a table.
func (r *Renderer) TaskList(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(r.W, r.style(StyleSubtle, "No tasks found."))
		return
	}

	table := NewTable(r.Plain, 48, "ID", "STATUS", "PRI", "TITLE", "ASSIGNEE", "LABELS").
		ColorBy("STATUS", func(v string) lipgloss.Style { return StatusStyle(v, r.Statuses) }).
		ColorBy("PRI", func(v string) lipgloss.Style { return PriorityStyle(models.TaskPriority(v)) })
	remote := false
	for _, t := range tasks {
		title := t.Title
		if t.Source == models.SourceRemote {
			title += " @" + t.Branch
			remote = true
		}
		table.AddRow(t.ID, t.Status, string(t.Priority), title,
			strings.Join(t.Assignees, ","), strings.Join(t.Labels, ","))
	}
	fmt.Fprint(r.W, table.Render())

	summary := fmt.Sprintf("%d task(s)", len(tasks))
	if remote {
		summary += ", @branch marks copies read from other branches"
	}
	fmt.Fprintln(r.W, r.style(StyleSubtle, summary))
}

// TaskDetail renders one task with its structured sections.
func (r *Renderer) TaskDetail(t models.Task) {
	header := fmt.Sprintf("%s - %s", t.ID, t.Title)
	fmt.Fprintln(r.W, r.style(StyleHeader, header))

	status := r.style(StatusStyle(t.Status, r.Statuses), StatusIcon(t.Status, r.Statuses)+" "+t.Status)
	r.field("Status", status)
	if t.Priority != "" {
		r.field("Priority", r.style(PriorityStyle(t.Priority), string(t.Priority)))
	}
	r.field("Assignee", strings.Join(t.Assignees, ", "))
	r.field("Reporter", t.Reporter)
	r.field("Labels", strings.Join(t.Labels, ", "))
	r.field("Milestone", t.Milestone)
	r.field("Parent", t.ParentTaskID)
	r.field("Depends on", strings.Join(t.Dependencies, ", "))
	r.field("Created", r.date(t.CreatedDate))
	r.field("Updated", r.date(t.UpdatedDate))
	if t.Source == models.SourceRemote {
		if r.Plain {
			r.field("Branch", t.Branch+" (read-only)")
		} else {
			fmt.Fprintln(r.W, Callout("Read-only copy", "from "+t.Branch, ColorCyan, 0))
		}
	}

	if desc, ok := section.Extract(t.Body, section.Description); ok && desc != "" {
		r.heading(section.Description)
		fmt.Fprintln(r.W, WrapText(desc, r.Width))
	}

	if items := t.AcceptanceCriteriaItems; len(items) > 0 {
		r.heading(section.AcceptanceCriteria)
		done := 0
		for _, c := range items {
			box := "[ ]"
			style := StyleText
			if c.Checked {
				box, style = "[x]", StyleSuccess
				done++
			}
			fmt.Fprintf(r.W, "%s #%d %s\n", r.style(style, box), c.Index, c.Text)
		}
		fmt.Fprintln(r.W, r.style(StyleSubtle, fmt.Sprintf("%d/%d complete", done, len(items))))
	}

	for _, title := range []section.Title{section.ImplementationPlan, section.ImplementationNotes} {
		if content, ok := section.Extract(t.Body, title); ok && content != "" {
			r.heading(title)
			fmt.Fprintln(r.W, WrapText(content, r.Width))
		}
	}
}

func (r *Renderer) field(label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(r.W, "%s %s\n", r.style(StyleSubtle, fmt.Sprintf("%-11s", label+":")), value)
}

func (r *Renderer) heading(t section.Title) {
	fmt.Fprintln(r.W)
	fmt.Fprintln(r.W, r.style(StyleSectionTitle, string(t)))
}

// Sequences renders leveled task groups. tasks supplies titles.
func (r *Renderer) Sequences(seqs []task.Sequence, tasks []models.Task) {
	if len(seqs) == 0 {
		fmt.Fprintln(r.W, r.style(StyleSubtle, "No tasks to sequence."))
		return
	}
	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	for i, seq := range seqs {
		if i > 0 {
			fmt.Fprintln(r.W)
		}
		fmt.Fprintln(r.W, r.style(StyleSequence, fmt.Sprintf("Sequence %d:", seq.Index)))
		for _, id := range seq.TaskIDs {
			t := byID[id]
			line := fmt.Sprintf("  %s - %s", id, t.Title)
			if t.Status != "" {
				line += " " + r.style(StatusStyle(t.Status, r.Statuses), "["+t.Status+"]")
			}
			fmt.Fprintln(r.W, line)
		}
	}
}

// Documents renders a document listing.
func (r *Renderer) Documents(docs []models.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(r.W, r.style(StyleSubtle, "No documents found."))
		return
	}
	table := NewTable(r.Plain, 48, "ID", "TYPE", "TITLE", "TAGS")
	for _, d := range docs {
		table.AddRow(d.ID, string(d.Type), d.Title, strings.Join(d.Tags, ","))
	}
	fmt.Fprint(r.W, table.Render())
}

// Document renders one document.
func (r *Renderer) Document(d models.Document) {
	fmt.Fprintln(r.W, r.style(StyleHeader, fmt.Sprintf("%s - %s", d.ID, d.Title)))
	r.field("Type", string(d.Type))
	r.field("Tags", strings.Join(d.Tags, ", "))
	r.field("Created", r.date(d.CreatedDate))
	if body := strings.TrimSpace(d.Body); body != "" {
		fmt.Fprintln(r.W)
		fmt.Fprintln(r.W, body)
	}
}

// Decisions renders a decision log listing.
func (r *Renderer) Decisions(decs []models.Decision) {
	if len(decs) == 0 {
		fmt.Fprintln(r.W, r.style(StyleSubtle, "No decisions found."))
		return
	}
	table := NewTable(r.Plain, 48, "ID", "STATUS", "DATE", "TITLE")
	for _, d := range decs {
		table.AddRow(d.ID, string(d.Status), r.date(d.Date), d.Title)
	}
	fmt.Fprint(r.W, table.Render())
}

// Decision renders one decision record.
func (r *Renderer) Decision(d models.Decision) {
	fmt.Fprintln(r.W, r.style(StyleHeader, fmt.Sprintf("%s - %s", d.ID, d.Title)))
	r.field("Status", string(d.Status))
	r.field("Date", r.date(d.Date))
	if body := strings.TrimSpace(d.Body); body != "" {
		fmt.Fprintln(r.W)
		fmt.Fprintln(r.W, body)
	}
}
