package task

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/backlog/internal/section"
	"github.com/josephgoksu/backlog/models"
	"github.com/josephgoksu/backlog/store"
)

type recordingCommitter struct {
	messages []string
	paths    [][]string
	err      error
}

func (c *recordingCommitter) CommitChange(_ context.Context, message string, paths ...string) error {
	c.messages = append(c.messages, message)
	c.paths = append(c.paths, paths)
	return c.err
}

func newTestService(t *testing.T) (*Service, *store.FileStore) {
	t.Helper()
	st := store.NewFileStore(afero.NewMemMapFs(), "backlog")
	require.NoError(t, st.Init())
	svc := NewService(st, Options{})
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc, st
}

func mustCreate(t *testing.T, svc *Service, in CreateInput) models.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), in)
	require.NoError(t, err)
	return task
}

func TestService_CreateTask(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateInput{
		Title:       "Add login",
		Description: "Users can sign in",
		Criteria:    []string{"Form renders", "Errors shown"},
		Labels:      []string{"auth"},
		Priority:    "High",
	})
	require.NoError(t, err)

	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, models.StatusToDo, task.Status)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	assert.Equal(t, "Users can sign in", task.Description())
	require.Len(t, task.AcceptanceCriteriaItems, 2)
	assert.Equal(t, "Errors shown", task.AcceptanceCriteriaItems[1].Text)

	stored, err := st.GetTask("task-1")
	require.NoError(t, err)
	assert.Equal(t, "Add login", stored.Title)
	assert.Equal(t, []string{"auth"}, stored.Labels)

	second := mustCreate(t, svc, CreateInput{Title: "Second"})
	assert.Equal(t, "task-2", second.ID)
}

func TestService_CreateTask_Invalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, CreateInput{Title: "   "})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateTask(ctx, CreateInput{Title: "x", Status: "Blocked"})
	assert.ErrorIs(t, err, models.ErrInvalidStatus)

	_, err = svc.CreateTask(ctx, CreateInput{Title: "x", Priority: "someday"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateTask(ctx, CreateInput{Title: "x", Parent: "task-9"})
	assert.Error(t, err)
}

func TestService_CreateTask_CanonicalStatus(t *testing.T) {
	svc, _ := newTestService(t)
	task := mustCreate(t, svc, CreateInput{Title: "x", Status: "in progress"})
	assert.Equal(t, models.StatusInProgress, task.Status)
}

func TestService_CreateSubtasks(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, CreateInput{Title: "Parent"})

	first := mustCreate(t, svc, CreateInput{Title: "Child one", Parent: "1"})
	second := mustCreate(t, svc, CreateInput{Title: "Child two", Parent: "task-1"})
	top := mustCreate(t, svc, CreateInput{Title: "Top level"})

	assert.Equal(t, "task-1.1", first.ID)
	assert.Equal(t, "task-1", first.ParentTaskID)
	assert.Equal(t, "task-1.2", second.ID)
	assert.Equal(t, "task-2", top.ID)

	children, err := svc.ListTasks(context.Background(), Filter{Parent: "1"})
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestService_GetTask(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "One"})

	got, err := svc.GetTask(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "One", got.Title)

	got, err = svc.GetTask(ctx, "TASK-1")
	require.NoError(t, err)
	assert.Equal(t, "task-1", got.ID)

	_, err = svc.GetTask(ctx, "task-42")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestService_GetTask_RemoteOnly(t *testing.T) {
	svc, _ := newTestService(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	remoteCopy := models.Task{ID: "task-5", Title: "Elsewhere", Status: models.StatusToDo, CreatedDate: base}
	g := &fakeRemoteGit{
		branches: []string{"origin/feature"},
		files: map[string][]remoteFile{
			"origin/feature": {{path: testTasksDir + "/task-5 - Elsewhere.md", content: serialized(t, remoteCopy), mod: base}},
		},
	}
	svc.SetRemoteLoader(NewRemoteLoader(g, RemoteOptions{Enabled: true, TasksDir: testTasksDir}))

	got, err := svc.GetTask(context.Background(), "task-5")
	require.NoError(t, err)
	assert.Equal(t, "Elsewhere", got.Title)
	assert.Equal(t, "origin/feature", got.Branch)

	// remote copies are read-only
	_, err = svc.SetStatus(context.Background(), "task-5", models.StatusDone)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestService_ListTasks_Filter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "a", Labels: []string{"ui"}, Assignees: []string{"@alice"}})
	mustCreate(t, svc, CreateInput{Title: "b", Status: models.StatusDone, Priority: "low"})
	mustCreate(t, svc, CreateInput{Title: "c", Labels: []string{"UI"}})

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"task-1", "task-2", "task-3"}},
		{"status", Filter{Status: "done"}, []string{"task-2"}},
		{"label ignores case", Filter{Label: "ui"}, []string{"task-1", "task-3"}},
		{"assignee without at", Filter{Assignee: "alice"}, []string{"task-1"}},
		{"priority", Filter{Priority: "LOW"}, []string{"task-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ListTasks(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, taskIDs(got))
		})
	}
}

func TestService_RemoveCriteria_UsesOriginalNumbering(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "x", Criteria: []string{"one", "two", "three", "four"}})

	task, err := svc.RemoveCriteria(ctx, "task-1", 1, 3, 3)
	require.NoError(t, err)

	require.Len(t, task.AcceptanceCriteriaItems, 2)
	assert.Equal(t, section.Criterion{Index: 1, Text: "two"}, task.AcceptanceCriteriaItems[0])
	assert.Equal(t, section.Criterion{Index: 2, Text: "four"}, task.AcceptanceCriteriaItems[1])
}

func TestService_RemoveCriteria_MissingIndexLeavesFileUntouched(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "x", Criteria: []string{"one", "two"}})

	_, err := svc.RemoveCriteria(ctx, "task-1", 1, 7)
	assert.ErrorIs(t, err, section.ErrCriterionNotFound)

	stored, err := st.GetTask("task-1")
	require.NoError(t, err)
	assert.Len(t, stored.AcceptanceCriteriaItems, 2)
}

func TestService_CheckAndAddCriteria(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "x", Criteria: []string{"one"}})

	task, err := svc.AddCriteria(ctx, "task-1", "two")
	require.NoError(t, err)
	require.Len(t, task.AcceptanceCriteriaItems, 2)

	task, err = svc.CheckCriteria(ctx, "task-1", true, 2)
	require.NoError(t, err)
	assert.False(t, task.AcceptanceCriteriaItems[0].Checked)
	assert.True(t, task.AcceptanceCriteriaItems[1].Checked)
	assert.False(t, task.UpdatedDate.IsZero())
}

func TestService_SectionsAndNotes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "x", Description: "first"})

	task, err := svc.SetSection(ctx, "task-1", section.ImplementationPlan, "1. do it")
	require.NoError(t, err)
	plan, ok := section.Extract(task.Body, section.ImplementationPlan)
	require.True(t, ok)
	assert.Equal(t, "1. do it", plan)

	_, err = svc.AppendNotes(ctx, "task-1", "started")
	require.NoError(t, err)
	task, err = svc.AppendNotes(ctx, "task-1", "finished")
	require.NoError(t, err)
	notes, _ := section.Extract(task.Body, section.ImplementationNotes)
	assert.Equal(t, "started\n\nfinished", notes)
	assert.Equal(t, "first", task.Description())
}

func TestService_SetStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "x"})

	task, err := svc.SetStatus(ctx, "task-1", "done")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, task.Status)

	_, err = svc.SetStatus(ctx, "task-1", "Nope")
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestService_UpdateTask_RenamesOnTitleChange(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, CreateInput{Title: "Old name"})

	updated, err := svc.UpdateTask(ctx, "task-1", func(t *models.Task) error {
		t.Title = "New name"
		return nil
	})
	require.NoError(t, err)
	assert.NotEqual(t, created.FilePath, updated.FilePath)
	assert.True(t, strings.HasSuffix(updated.FilePath, store.FileName("task-1", "New name")))

	exists, err := afero.Exists(st.Fs(), created.FilePath)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestService_UpdateTask_CallbackErrorAborts(t *testing.T) {
	svc, st := newTestService(t)
	mustCreate(t, svc, CreateInput{Title: "x"})
	boom := errors.New("boom")

	_, err := svc.UpdateTask(context.Background(), "task-1", func(t *models.Task) error {
		t.Title = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := st.GetTask("task-1")
	require.NoError(t, err)
	assert.Equal(t, "x", stored.Title)
}

func TestService_Dependencies(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "a"})
	mustCreate(t, svc, CreateInput{Title: "b", Dependencies: []string{"1"}})

	task, err := svc.AddDependency(ctx, "task-2", "task-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"task-1"}, task.Dependencies)

	// closing a cycle is recorded, only warned about
	task, err = svc.AddDependency(ctx, "task-1", "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"task-2"}, task.Dependencies)

	task, err = svc.RemoveDependency(ctx, "task-1", "task-2")
	require.NoError(t, err)
	assert.Empty(t, task.Dependencies)
}

func TestService_Dependencies_ZeroPaddedIDs(t *testing.T) {
	svc, st := newTestService(t)
	st.SetZeroPadding(3)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "schema"})
	b := mustCreate(t, svc, CreateInput{Title: "api", Dependencies: []string{"1"}})
	mustCreate(t, svc, CreateInput{Title: "docs"})
	assert.Equal(t, "task-002", b.ID)
	assert.Equal(t, []string{"task-001"}, b.Dependencies)

	c, err := svc.EditTask(ctx, "3", Edit{AddDependencies: []string{"TASK-2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"task-002"}, c.Dependencies)

	seqs, err := svc.Sequences(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"task-001"}, {"task-002"}, {"task-003"}}, levels(seqs))

	local, err := st.ListTasks()
	require.NoError(t, err)
	assert.ErrorIs(t, WouldCycle(local, "task-001", "3"), ErrCycle)

	// unknown ids stay dangling in their normalized form
	a, err := svc.AddDependency(ctx, "1", "42")
	require.NoError(t, err)
	assert.Equal(t, []string{"task-42"}, a.Dependencies)
}

func TestService_ArchiveAndComplete(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "a"})
	mustCreate(t, svc, CreateInput{Title: "b"})

	archived, err := svc.ArchiveTask(ctx, "task-1")
	require.NoError(t, err)
	assert.Contains(t, archived.FilePath, store.ArchiveDir)

	completed, err := svc.CompleteTask(ctx, "task-2")
	require.NoError(t, err)
	assert.Contains(t, completed.FilePath, store.CompletedDir)

	_, err = svc.GetTask(ctx, "task-1")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	next, err := st.NextTaskID()
	require.NoError(t, err)
	assert.Equal(t, "task-3", next)
}

func TestService_Sequences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, CreateInput{Title: "a", Status: models.StatusDone})
	mustCreate(t, svc, CreateInput{Title: "b", Dependencies: []string{"task-1"}})
	mustCreate(t, svc, CreateInput{Title: "c", Dependencies: []string{"task-2"}})

	active, err := svc.Sequences(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"task-2"}, {"task-3"}}, levels(active))

	all, err := svc.Sequences(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"task-1"}, {"task-2"}, {"task-3"}}, levels(all))
}

func TestService_AutoCommit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	c := &recordingCommitter{}
	svc.SetCommitter(c)

	mustCreate(t, svc, CreateInput{Title: "Quiet"})
	assert.Empty(t, c.messages, "auto-commit is off by default")

	svc.opts.AutoCommit = true
	mustCreate(t, svc, CreateInput{Title: "Loud"})
	_, err := svc.UpdateTask(ctx, "task-2", func(t *models.Task) error {
		t.Title = "Louder"
		return nil
	})
	require.NoError(t, err)

	require.Len(t, c.messages, 2)
	assert.Equal(t, "backlog: create task-2 Loud", c.messages[0])
	assert.Equal(t, "backlog: update task-2 Louder", c.messages[1])
	assert.Len(t, c.paths[1], 2, "a rename commits both paths")

	c.err = errors.New("hook rejected")
	_, err = svc.SetStatus(ctx, "task-2", models.StatusDone)
	assert.NoError(t, err, "commit failures do not fail the operation")
}

func TestNextSubtaskID(t *testing.T) {
	ids := []string{"task-3", "task-3.1", "task-3.4", "task-3.4.1", "task-30.9"}
	assert.Equal(t, "task-3.5", nextSubtaskID("task-3", ids))
	assert.Equal(t, "task-3.4.2", nextSubtaskID("task-3.4", ids))
	assert.Equal(t, "task-7.1", nextSubtaskID("task-7", ids))
}
