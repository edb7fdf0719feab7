package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/backlog/internal/section"
	"github.com/josephgoksu/backlog/internal/task"
	"github.com/josephgoksu/backlog/models"
)

func sampleTask(t *testing.T) models.Task {
	t.Helper()
	tk := models.NewTask("task-7", "Wire the exporter")
	tk.Status = "In Progress"
	tk.Priority = models.PriorityHigh
	tk.Assignees = []string{"@ana"}
	tk.Labels = []string{"backend", "export"}
	tk.Dependencies = []string{"task-3"}
	tk.CreatedDate = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	body := section.Set("", section.Description, "Export tasks as CSV.")
	body = section.AddCriteria(body, "CSV has a header", "Dates are ISO formatted")
	body, err := section.CheckCriterion(body, 1, true)
	require.NoError(t, err)
	body = section.Set(body, section.ImplementationNotes, "Used encoding/csv.")
	tk.Body = body
	tk.RefreshDerived()
	return *tk
}

func TestRenderer_TaskDetail(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, true, nil).TaskDetail(sampleTask(t))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "task-7 - Wire the exporter\n"))
	for _, want := range []string{
		"Status:     ◐ In Progress",
		"Priority:   high",
		"Assignee:   @ana",
		"Labels:     backend, export",
		"Depends on: task-3",
		"Created:    2025-03-01",
		"Description\nExport tasks as CSV.",
		"[x] #1 CSV has a header",
		"[ ] #2 Dates are ISO formatted",
		"1/2 complete",
		"Implementation Notes\nUsed encoding/csv.",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Implementation Plan")
	assert.NotContains(t, out, "Reporter:")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderer_TaskDetail_Remote(t *testing.T) {
	tk := sampleTask(t)
	tk.Source = models.SourceRemote
	tk.Branch = "origin/feature"

	var buf bytes.Buffer
	NewRenderer(&buf, true, nil).TaskDetail(tk)
	assert.Contains(t, buf.String(), "Branch:     origin/feature (read-only)")
}

func TestRenderer_TaskDetail_StyledRemote(t *testing.T) {
	tk := sampleTask(t)
	tk.Source = models.SourceRemote
	tk.Branch = "origin/feature"

	var buf bytes.Buffer
	r := NewRenderer(&buf, false, nil)
	r.Width = 12
	r.TaskDetail(tk)
	out := buf.String()

	assert.Contains(t, out, "Read-only copy")
	assert.Contains(t, out, "from origin/feature")
	assert.NotContains(t, out, "Branch:")
	assert.Contains(t, out, "Export tasks\nas CSV.")
}

func TestRenderer_TaskList(t *testing.T) {
	local := sampleTask(t)
	remote := models.NewTask("task-9", "Remote work")
	remote.Source = models.SourceRemote
	remote.Branch = "origin/dev"

	var buf bytes.Buffer
	NewRenderer(&buf, true, nil).TaskList([]models.Task{local, *remote})
	out := buf.String()

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "task-7  In Progress")
	assert.Contains(t, out, "Remote work @origin/dev")
	assert.Contains(t, out, "2 task(s), @branch marks copies read from other branches")
}

func TestRenderer_EmptyLists(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true, nil)
	r.TaskList(nil)
	r.Sequences(nil, nil)
	r.Documents(nil)
	r.Decisions(nil)

	assert.Equal(t, "No tasks found.\nNo tasks to sequence.\nNo documents found.\nNo decisions found.\n", buf.String())
}

func TestRenderer_Sequences(t *testing.T) {
	tasks := []models.Task{
		{ID: "task-1", Title: "Schema", Status: "Done"},
		{ID: "task-2", Title: "API", Status: "To Do"},
		{ID: "task-3", Title: "UI", Status: "To Do"},
	}
	seqs := []task.Sequence{
		{Index: 1, TaskIDs: []string{"task-1"}},
		{Index: 2, TaskIDs: []string{"task-2", "task-3"}},
	}

	var buf bytes.Buffer
	NewRenderer(&buf, true, nil).Sequences(seqs, tasks)

	expected := "Sequence 1:\n" +
		"  task-1 - Schema [Done]\n" +
		"\n" +
		"Sequence 2:\n" +
		"  task-2 - API [To Do]\n" +
		"  task-3 - UI [To Do]\n"
	assert.Equal(t, expected, buf.String())
}

func TestRenderer_DocumentsAndDecisions(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true, nil)

	r.Documents([]models.Document{{ID: "doc-1", Title: "Onboarding", Type: models.DocTypeGuide, Tags: []string{"team"}}})
	r.Document(models.Document{ID: "doc-1", Title: "Onboarding", Type: models.DocTypeGuide, Body: "\nWelcome.\n"})
	r.Decisions([]models.Decision{{ID: "decision-2", Title: "Use YAML", Status: models.DecisionAccepted, Date: time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)}})
	r.Decision(models.Decision{ID: "decision-2", Title: "Use YAML", Status: models.DecisionAccepted, Body: models.DecisionTemplate})

	out := buf.String()
	assert.Contains(t, out, "doc-1  guide  Onboarding  team")
	assert.Contains(t, out, "doc-1 - Onboarding\nType:       guide\n\nWelcome.\n")
	assert.Contains(t, out, "decision-2  accepted  2025-05-04  Use YAML")
	assert.Contains(t, out, "Status:     accepted")
	assert.Contains(t, out, "## Consequences")
}
