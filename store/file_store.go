package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/josephgoksu/backlog/internal/util"
	"github.com/josephgoksu/backlog/models"
)

// DefaultDir is the project directory holding all backlog records.
const DefaultDir = "backlog"

// Subdirectories of the backlog directory.
const (
	TasksDir     = "tasks"
	DraftsDir    = "drafts"
	ArchiveDir   = "archive"
	CompletedDir = "completed"
	DocsDir      = "docs"
	DecisionsDir = "decisions"
)

// Errors returned by the store.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrDecisionNotFound = errors.New("decision not found")
)

// FileStore persists tasks, documents and decisions as markdown files with
// YAML frontmatter. It uses an afero.Fs so tests can run in memory.
type FileStore struct {
	fs   afero.Fs
	root string
	pad  int
}

// NewFileStore creates a store rooted at root (usually "backlog").
// Use afero.NewOsFs() for real filesystem operations,
// or afero.NewMemMapFs() for testing.
func NewFileStore(fs afero.Fs, root string) *FileStore {
	return &FileStore{fs: fs, root: root}
}

// NewOsFileStore creates a FileStore on the operating system filesystem.
func NewOsFileStore(root string) *FileStore {
	return NewFileStore(afero.NewOsFs(), root)
}

// SetZeroPadding makes new ids zero padded to width digits. Zero disables it.
func (s *FileStore) SetZeroPadding(width int) {
	s.pad = width
}

// Root returns the backlog directory.
func (s *FileStore) Root() string { return s.root }

// Fs returns the underlying filesystem.
func (s *FileStore) Fs() afero.Fs { return s.fs }

func (s *FileStore) dir(parts ...string) string {
	return filepath.Join(append([]string{s.root}, parts...)...)
}

// Init creates the directory layout. Existing directories are kept.
func (s *FileStore) Init() error {
	for _, d := range []string{
		s.dir(TasksDir),
		s.dir(DraftsDir),
		s.dir(ArchiveDir, TasksDir),
		s.dir(CompletedDir),
		s.dir(DocsDir),
		s.dir(DecisionsDir),
	} {
		if err := s.fs.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return nil
}

// Initialized reports whether the tasks directory exists.
func (s *FileStore) Initialized() bool {
	ok, err := afero.DirExists(s.fs, s.dir(TasksDir))
	return err == nil && ok
}

// markdownFiles lists *.md files directly inside dir. A missing directory
// yields no files.
func (s *FileStore) markdownFiles(dir string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// ListTasks loads every task in the tasks directory, ordered by id.
// Malformed files are skipped with a warning.
func (s *FileStore) ListTasks() ([]models.Task, error) {
	return s.listTasksIn(s.dir(TasksDir))
}

// ListDrafts loads every draft task.
func (s *FileStore) ListDrafts() ([]models.Task, error) {
	return s.listTasksIn(s.dir(DraftsDir))
}

// ListArchivedTasks loads every archived task.
func (s *FileStore) ListArchivedTasks() ([]models.Task, error) {
	return s.listTasksIn(s.dir(ArchiveDir, TasksDir))
}

func (s *FileStore) listTasksIn(dir string) ([]models.Task, error) {
	files, err := s.markdownFiles(dir)
	if err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(files))
	for _, path := range files {
		if _, ok := util.TaskIDFromFilename(path); !ok {
			continue
		}
		task, err := s.readTask(path)
		if err != nil {
			slog.Warn("skipping malformed task file", "path", path, "error", err)
			continue
		}
		tasks = append(tasks, task)
	}
	sort.SliceStable(tasks, func(i, j int) bool { return util.CompareTaskIDs(tasks[i].ID, tasks[j].ID) < 0 })
	return tasks, nil
}

func (s *FileStore) readTask(path string) (models.Task, error) {
	content, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return models.Task{}, fmt.Errorf("read %s: %w", path, err)
	}
	task, err := ParseTask(content)
	if err != nil {
		return models.Task{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if task.ID == "" {
		task.ID, _ = util.TaskIDFromFilename(path)
	}
	task.Source = models.SourceLocal
	task.FilePath = path
	task.LastModified = s.ModTime(path)
	return task, nil
}

// findTaskFile returns the file of id inside dir.
func (s *FileStore) findTaskFile(dir, id string) (string, bool, error) {
	files, err := s.markdownFiles(dir)
	if err != nil {
		return "", false, err
	}
	for _, path := range files {
		if fileID, ok := util.TaskIDFromFilename(path); ok && util.SameTaskID(fileID, id) {
			return path, true, nil
		}
	}
	return "", false, nil
}

// GetTask loads the task with the given id from the tasks directory.
func (s *FileStore) GetTask(id string) (models.Task, error) {
	path, ok, err := s.findTaskFile(s.dir(TasksDir), id)
	if err != nil {
		return models.Task{}, err
	}
	if !ok {
		return models.Task{}, fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}
	return s.readTask(path)
}

// SaveTask writes task to the tasks directory. When the title changed the
// previous file is renamed. The written path is stored in task.FilePath.
func (s *FileStore) SaveTask(task *models.Task) (string, error) {
	dir := s.dir(TasksDir)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}
	content, err := SerializeTask(*task)
	if err != nil {
		return "", err
	}

	target := filepath.Join(dir, FileName(task.ID, task.Title))
	old, exists, err := s.findTaskFile(dir, task.ID)
	if err != nil {
		return "", err
	}
	if err := afero.WriteFile(s.fs, target, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	if exists && old != target {
		if err := s.fs.Remove(old); err != nil {
			return "", fmt.Errorf("remove previous file %s: %w", old, err)
		}
		slog.Debug("task file renamed", "from", old, "to", target)
	}

	task.FilePath = target
	task.Source = models.SourceLocal
	task.LastModified = s.ModTime(target)
	return target, nil
}

// NextTaskID returns the id following the highest one in use across tasks,
// drafts, archived and completed tasks.
func (s *FileStore) NextTaskID() (string, error) {
	var ids []string
	for _, dir := range []string{
		s.dir(TasksDir),
		s.dir(DraftsDir),
		s.dir(ArchiveDir, TasksDir),
		s.dir(CompletedDir),
	} {
		files, err := s.markdownFiles(dir)
		if err != nil {
			return "", err
		}
		for _, f := range files {
			if id, ok := util.TaskIDFromFilename(f); ok {
				ids = append(ids, id)
			}
		}
	}
	return util.NextID(util.TaskPrefix, ids, s.pad), nil
}

// ModTime returns the modification time of path, or the zero time.
func (s *FileStore) ModTime(path string) time.Time {
	info, err := s.fs.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

var unsafeTitleChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

const maxTitleSlug = 64

// FileName builds "<id> - <Title-slug>.md".
func FileName(id, title string) string {
	slug := unsafeTitleChars.ReplaceAllString(strings.TrimSpace(title), "-")
	slug = strings.Trim(slug, "-.")
	if runes := []rune(slug); len(runes) > maxTitleSlug {
		slug = strings.TrimRight(string(runes[:maxTitleSlug]), "-.")
	}
	if slug == "" {
		return id + ".md"
	}
	return id + " - " + slug + ".md"
}
