package mcp

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/backlog/internal/section"
	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/models"
)

// FormatTask converts a task into concise Markdown.
func FormatTask(t models.Task, statuses []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s %s\n", statusIcon(t.Status, statuses), t.Title))
	sb.WriteString(fmt.Sprintf("**ID**: `%s` | **Status**: %s", t.ID, t.Status))
	if t.Priority != "" {
		sb.WriteString(fmt.Sprintf(" | **Priority**: %s", t.Priority))
	}
	sb.WriteString("\n")
	if len(t.Assignees) > 0 {
		sb.WriteString(fmt.Sprintf("**Assignees**: %s\n", strings.Join(t.Assignees, ", ")))
	}
	if len(t.Labels) > 0 {
		sb.WriteString(fmt.Sprintf("**Labels**: %s\n", strings.Join(t.Labels, ", ")))
	}
	if len(t.Dependencies) > 0 {
		sb.WriteString(fmt.Sprintf("**Depends on**: %s\n", strings.Join(t.Dependencies, ", ")))
	}
	if t.Source == models.SourceRemote {
		sb.WriteString(fmt.Sprintf("**Branch**: %s (read-only)\n", t.Branch))
	}

	if desc := t.Description(); desc != "" {
		sb.WriteString("\n")
		sb.WriteString(desc)
		sb.WriteString("\n")
	}

	if len(t.AcceptanceCriteriaItems) > 0 {
		sb.WriteString("\n### Acceptance Criteria\n")
		for _, c := range t.AcceptanceCriteriaItems {
			box := "[ ]"
			if c.Checked {
				box = "[x]"
			}
			sb.WriteString(fmt.Sprintf("- %s #%d %s\n", box, c.Index, c.Text))
		}
	}

	for _, title := range []section.Title{section.ImplementationPlan, section.ImplementationNotes} {
		if content, ok := section.Extract(t.Body, title); ok && content != "" {
			sb.WriteString(fmt.Sprintf("\n### %s\n%s\n", title, content))
		}
	}
	return strings.TrimSpace(sb.String())
}

// FormatTaskList converts tasks into a compact Markdown list.
func FormatTaskList(tasks []models.Task, statuses []string) string {
	if len(tasks) == 0 {
		return "No tasks found."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Tasks (%d)\n", len(tasks)))
	for _, t := range tasks {
		line := fmt.Sprintf("- %s `%s` %s [%s]", statusIcon(t.Status, statuses), t.ID, t.Title, t.Status)
		if t.Source == models.SourceRemote {
			line += " @" + t.Branch
		}
		sb.WriteString(line + "\n")
	}
	return strings.TrimSpace(sb.String())
}

// FormatSequences renders dependency levels as Markdown.
func FormatSequences(seqs []task.Sequence, tasks []models.Task) string {
	if len(seqs) == 0 {
		return "No tasks to sequence."
	}
	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	var sb strings.Builder
	for _, seq := range seqs {
		sb.WriteString(fmt.Sprintf("### Sequence %d\n", seq.Index))
		for _, id := range seq.TaskIDs {
			sb.WriteString(fmt.Sprintf("- `%s` %s\n", id, byID[id].Title))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// FormatError returns a standardized Markdown error message.
func FormatError(message string) string {
	return fmt.Sprintf("## ❌ Error\n\n**Details**: %s", message)
}

// FormatValidationError returns a Markdown error for validation failures.
func FormatValidationError(field, message string) string {
	return fmt.Sprintf("## ❌ Validation Error\n\n**Field**: `%s`\n**Details**: %s", field, message)
}

func statusIcon(status string, statuses []string) string {
	if len(statuses) == 0 {
		return "•"
	}
	switch {
	case strings.EqualFold(status, statuses[len(statuses)-1]):
		return "✅"
	case strings.EqualFold(status, statuses[0]):
		return "⏳"
	case models.ValidStatus(status, statuses):
		return "🔄"
	}
	return "•"
}
