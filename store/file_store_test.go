package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephgoksu/backlog/internal/section"
	"github.com/josephgoksu/backlog/models"
)

func setupTestStore(t *testing.T) *FileStore {
	t.Helper()

	s := NewFileStore(afero.NewMemMapFs(), DefaultDir)
	if err := s.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	return s
}

func newTask(id, title string) *models.Task {
	task := models.NewTask(id, title)
	task.CreatedDate = time.Date(2025, 6, 3, 14, 22, 0, 0, time.UTC)
	return task
}

func TestFileStore_BasicOperations(t *testing.T) {
	s := setupTestStore(t)
	assert.True(t, s.Initialized())

	task := newTask("task-1", "Fix login")
	task.Body = section.Set("", section.Description, "Users cannot log in")
	task.Body = section.AddCriteria(task.Body, "Login works")

	path, err := s.SaveTask(task)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DefaultDir, TasksDir, "task-1 - Fix-login.md"), path)
	assert.Equal(t, path, task.FilePath)

	got, err := s.GetTask("task-1")
	require.NoError(t, err)
	assert.Equal(t, "Fix login", got.Title)
	assert.Equal(t, models.StatusToDo, got.Status)
	assert.Equal(t, models.SourceLocal, got.Source)
	assert.Equal(t, path, got.FilePath)
	assert.Equal(t, "Users cannot log in", got.Description())
	assert.Equal(t, []section.Criterion{{Index: 1, Text: "Login works"}}, got.AcceptanceCriteriaItems)

	_, err = s.GetTask("task-2")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestFileStore_SaveTaskRenamesOnTitleChange(t *testing.T) {
	s := setupTestStore(t)
	task := newTask("task-3", "Old name")
	_, err := s.SaveTask(task)
	require.NoError(t, err)

	task.Title = "New name"
	path, err := s.SaveTask(task)
	require.NoError(t, err)

	files, err := afero.ReadDir(s.Fs(), filepath.Join(DefaultDir, TasksDir))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "task-3 - New-name.md", files[0].Name())
	assert.Equal(t, filepath.Join(DefaultDir, TasksDir, "task-3 - New-name.md"), path)
}

func TestFileStore_ListTasksOrderAndSkipsMalformed(t *testing.T) {
	s := setupTestStore(t)
	for _, id := range []string{"task-10", "task-2", "task-1"} {
		_, err := s.SaveTask(newTask(id, "Task "+id))
		require.NoError(t, err)
	}
	dir := filepath.Join(DefaultDir, TasksDir)
	require.NoError(t, afero.WriteFile(s.Fs(), filepath.Join(dir, "task-4 - Broken.md"), []byte("no frontmatter"), 0o644))
	require.NoError(t, afero.WriteFile(s.Fs(), filepath.Join(dir, "README.md"), []byte("# readme"), 0o644))

	tasks, err := s.ListTasks()
	require.NoError(t, err)

	var ids []string
	for _, tk := range tasks {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []string{"task-1", "task-2", "task-10"}, ids)
}

func TestFileStore_ListTasksMissingDirectory(t *testing.T) {
	s := NewFileStore(afero.NewMemMapFs(), DefaultDir)
	assert.False(t, s.Initialized())

	tasks, err := s.ListTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestFileStore_NextTaskID(t *testing.T) {
	s := setupTestStore(t)

	id, err := s.NextTaskID()
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)

	_, err = s.SaveTask(newTask("task-1", "One"))
	require.NoError(t, err)
	_, err = s.SaveTask(newTask("task-2", "Two"))
	require.NoError(t, err)
	_, err = s.ArchiveTask("task-2")
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(s.Fs(), filepath.Join(DefaultDir, DraftsDir, "task-5 - Draft.md"), []byte("---\nid: task-5\n---\n"), 0o644))

	id, err = s.NextTaskID()
	require.NoError(t, err)
	assert.Equal(t, "task-6", id)

	s.SetZeroPadding(3)
	id, err = s.NextTaskID()
	require.NoError(t, err)
	assert.Equal(t, "task-006", id)
}

func TestFileStore_ArchiveTask(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.SaveTask(newTask("task-7", "Retire"))
	require.NoError(t, err)

	archived, err := s.ArchiveTask("task-7")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DefaultDir, ArchiveDir, TasksDir, "task-7 - Retire.md"), archived.FilePath)

	_, err = s.GetTask("task-7")
	assert.ErrorIs(t, err, ErrTaskNotFound)

	list, err := s.ListArchivedTasks()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "task-7", list[0].ID)

	_, err = s.ArchiveTask("task-7")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestFileStore_CompleteTask(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.SaveTask(newTask("task-8", "Finish"))
	require.NoError(t, err)

	done, err := s.CompleteTask("task-8")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(DefaultDir, CompletedDir, "task-8 - Finish.md"), done.FilePath)
}

func TestFileStore_GetTaskIgnoresZeroPadding(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.SaveTask(newTask("task-007", "Padded"))
	require.NoError(t, err)

	got, err := s.GetTask("task-7")
	require.NoError(t, err)
	assert.Equal(t, "task-007", got.ID)
}

func TestFileStore_ModTime(t *testing.T) {
	s := setupTestStore(t)
	path, err := s.SaveTask(newTask("task-1", "Stamp"))
	require.NoError(t, err)

	assert.False(t, s.ModTime(path).IsZero())
	assert.True(t, s.ModTime("missing.md").IsZero())
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"Fix login":           "task-1 - Fix-login.md",
		"  spaced   out  ":    "task-1 - spaced-out.md",
		"a/b\\c:d":            "task-1 - a-b-c-d.md",
		"":                    "task-1.md",
		"Ünïcode títle":       "task-1 - Ünïcode-títle.md",
		"Add v1.2 release":    "task-1 - Add-v1.2-release.md",
		"What? Why! (really)": "task-1 - What-Why-really.md",
	}
	for title, want := range tests {
		assert.Equal(t, want, FileName("task-1", title), title)
	}
}
