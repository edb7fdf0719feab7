package store

import (
	"fmt"
	"path/filepath"

	"github.com/josephgoksu/backlog/models"
)

// ArchiveTask moves the task file of id into archive/tasks and returns the
// archived task. Archived ids stay reserved.
func (s *FileStore) ArchiveTask(id string) (models.Task, error) {
	return s.moveTask(id, s.dir(ArchiveDir, TasksDir))
}

// CompleteTask moves the task file of id into completed/.
func (s *FileStore) CompleteTask(id string) (models.Task, error) {
	return s.moveTask(id, s.dir(CompletedDir))
}

func (s *FileStore) moveTask(id, destDir string) (models.Task, error) {
	src, ok, err := s.findTaskFile(s.dir(TasksDir), id)
	if err != nil {
		return models.Task{}, err
	}
	if !ok {
		return models.Task{}, fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}
	if err := s.fs.MkdirAll(destDir, 0o755); err != nil {
		return models.Task{}, fmt.Errorf("create directory %s: %w", destDir, err)
	}

	dest := filepath.Join(destDir, filepath.Base(src))
	if err := s.fs.Rename(src, dest); err != nil {
		return models.Task{}, fmt.Errorf("move %s to %s: %w", src, dest, err)
	}
	return s.readTask(dest)
}
