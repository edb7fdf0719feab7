package store

import (
	"time"

	"github.com/josephgoksu/backlog/models"
)

// TaskStore defines the interface for task persistence.
// FileStore is the only production implementation; services depend on
// this interface so tests can substitute their own.
type TaskStore interface {
	// ListTasks returns the local tasks ordered by id.
	ListTasks() ([]models.Task, error)

	// GetTask retrieves a task by id. It returns ErrTaskNotFound when no
	// file carries that id.
	GetTask(id string) (models.Task, error)

	// SaveTask writes the task and returns the path written. A title
	// change renames the file.
	SaveTask(task *models.Task) (string, error)

	// ArchiveTask moves the task out of the active set.
	ArchiveTask(id string) (models.Task, error)

	// CompleteTask moves the task into the completed directory.
	CompleteTask(id string) (models.Task, error)

	// NextTaskID returns the next unused task id.
	NextTaskID() (string, error)

	// ModTime reports when the file at path was last written.
	ModTime(path string) time.Time
}

var _ TaskStore = (*FileStore)(nil)
